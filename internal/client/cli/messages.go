package cli

import (
	"errors"
	"io"
	"strings"

	"github.com/dmitrijs2005/dragoncontacts/internal/common"
	"github.com/dmitrijs2005/dragoncontacts/internal/filex"
)

// userMessage turns a command error into a short notification. Superseded
// address searches produce no message.
func userMessage(err error) string {
	switch {
	case err == nil, errors.Is(err, common.ErrStaleResponse):
		return ""
	case errors.Is(err, io.EOF):
		return "Input cancelled."
	case errors.Is(err, common.ErrInvalidCredential):
		return "Invalid email or password."
	case errors.Is(err, common.ErrDuplicateEmail):
		return "This email is already registered."
	case errors.Is(err, common.ErrDuplicateCpf):
		return "A contact with this CPF already exists."
	case errors.Is(err, common.ErrNotAuthenticated):
		return "Your session has expired. Please log in again."
	case errors.Is(err, common.ErrValidation):
		return "Please check the form:\n" + validationDetails(err)
	case errors.Is(err, common.ErrNotFound):
		return "Not found."
	case errors.Is(err, common.ErrExternalService):
		return "External service is unavailable. Try again later."
	case errors.Is(err, common.ErrMalformedStoredData):
		return corruptedMessage(err)
	case errors.Is(err, filex.ErrFileTooLarge):
		return "Photo is too large (max 5 MB)."
	}
	return "Error: " + err.Error()
}

// validationDetails lists one "field: reason" per line.
func validationDetails(err error) string {
	prefix := common.ErrValidation.Error() + ": "
	lines := strings.Split(err.Error(), "\n")
	out := make([]string, 0, len(lines))
	for _, l := range lines {
		if i := strings.Index(l, prefix); i >= 0 {
			l = l[i+len(prefix):]
		}
		out = append(out, "  - "+l)
	}
	return strings.Join(out, "\n")
}

// corruptedMessage names the damaged collection when it is known.
func corruptedMessage(err error) string {
	var sde *common.StoredDataError
	if !errors.As(err, &sde) {
		return "Stored data is corrupted and was left untouched."
	}
	if sde.Key == common.UsersKey {
		return "Stored accounts are corrupted and were left untouched."
	}
	return "Stored contacts are corrupted and were left untouched."
}
