package services

import (
	"context"
	"regexp"
	"strings"
	"sync/atomic"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/client"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/models"
	"github.com/dmitrijs2005/dragoncontacts/internal/common"
)

// embeddedCEP finds a postal code that is not part of a longer digit run.
var embeddedCEP = regexp.MustCompile(`(?:^|\D)(\d{5}-?\d{3})(?:\D|$)`)

// AddressFinder turns free-text input into address candidates.
//
// Each call takes a new generation number. A call whose lookup completes
// after a newer call has started returns common.ErrStaleResponse instead of
// its result, so a slow answer never replaces a fresher one.
type AddressFinder struct {
	lookup client.PostalLookup
	gen    atomic.Uint64
}

func NewAddressFinder(lookup client.PostalLookup) *AddressFinder {
	return &AddressFinder{lookup: lookup}
}

// Search resolves query. A postal code anywhere in the text is looked up
// directly; otherwise the text is read as "street, city, state".
// Candidates are de-duplicated and keep their first-seen order.
func (f *AddressFinder) Search(ctx context.Context, query string) ([]models.PostalAddress, error) {
	gen := f.gen.Add(1)

	var (
		found []models.PostalAddress
		err   error
	)
	if m := embeddedCEP.FindStringSubmatch(query); m != nil {
		cep := m[1]
		var addr *models.PostalAddress
		addr, err = f.lookup.LookupCEP(ctx, cep)
		if addr != nil {
			found = []models.PostalAddress{*addr}
		}
	} else {
		street, city, state, perr := splitLocation(query)
		if perr != nil {
			return nil, perr
		}
		found, err = f.lookup.SearchByLocation(ctx, state, city, street)
	}

	if f.gen.Load() != gen {
		return nil, common.ErrStaleResponse
	}
	if err != nil {
		return nil, err
	}
	return dedupe(found), nil
}

// LookupCEP resolves a single postal code under the same fencing as Search.
func (f *AddressFinder) LookupCEP(ctx context.Context, cep string) (*models.PostalAddress, error) {
	gen := f.gen.Add(1)
	addr, err := f.lookup.LookupCEP(ctx, cep)
	if f.gen.Load() != gen {
		return nil, common.ErrStaleResponse
	}
	return addr, err
}

// splitLocation reads "street, city, state". The last two parts are city
// and state; anything before them, house numbers included, is the street.
func splitLocation(query string) (street, city, state string, err error) {
	parts := strings.Split(query, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	n := len(parts)
	if n < 3 || parts[n-1] == "" || parts[n-2] == "" {
		return "", "", "", common.ValidationError("address search", `use "street, city, state" or a postal code`)
	}
	street = strings.Join(parts[:n-2], ", ")
	if street == "" {
		return "", "", "", common.ValidationError("address search", `use "street, city, state" or a postal code`)
	}
	return street, parts[n-2], parts[n-1], nil
}

func dedupe(in []models.PostalAddress) []models.PostalAddress {
	seen := make(map[models.PostalKey]struct{}, len(in))
	out := make([]models.PostalAddress, 0, len(in))
	for _, a := range in {
		k := a.Key()
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, a)
	}
	return out
}
