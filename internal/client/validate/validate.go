// Package validate implements the form rules applied to user input before it
// reaches the services: Brazilian documents (CPF, CEP, phone), e-mail
// addresses, names and passwords.
//
// Every check returns nil or an error wrapping common.ErrValidation that
// names the offending field.
package validate

import (
	"regexp"
	"strings"

	"github.com/dmitrijs2005/dragoncontacts/internal/common"
)

var (
	emailRe = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)
	cepRe   = regexp.MustCompile(`^\d{5}-?\d{3}$`)
	stateRe = regexp.MustCompile(`^[A-Za-z]{2}$`)
)

const (
	minNameLen     = 3
	minPasswordLen = 6
)

// NormalizeDigits drops every non-digit rune from s.
func NormalizeDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ValidCPF checks length, repeated digits and both check digits.
func ValidCPF(cpf string) error {
	d := NormalizeDigits(cpf)
	if len(d) != 11 {
		return common.ValidationError("cpf", "must have 11 digits")
	}
	if strings.Count(d, d[:1]) == len(d) {
		return common.ValidationError("cpf", "invalid number")
	}
	if cpfDigit(d[:9]) != d[9] || cpfDigit(d[:10]) != d[10] {
		return common.ValidationError("cpf", "invalid check digits")
	}
	return nil
}

// cpfDigit computes the check digit following base.
func cpfDigit(base string) byte {
	sum := 0
	weight := len(base) + 1
	for i := 0; i < len(base); i++ {
		sum += int(base[i]-'0') * (weight - i)
	}
	rest := 11 - sum%11
	if rest > 9 {
		rest = 0
	}
	return byte('0' + rest)
}

// FormatCPF renders the digits of cpf as 999.999.999-99, progressively for
// partial input.
func FormatCPF(cpf string) string {
	d := NormalizeDigits(cpf)
	if len(d) > 11 {
		d = d[:11]
	}
	switch {
	case len(d) <= 3:
		return d
	case len(d) <= 6:
		return d[:3] + "." + d[3:]
	case len(d) <= 9:
		return d[:3] + "." + d[3:6] + "." + d[6:]
	default:
		return d[:3] + "." + d[3:6] + "." + d[6:9] + "-" + d[9:]
	}
}

// ValidPhone accepts mobile numbers with area code (11 digits).
func ValidPhone(phone string) error {
	if len(NormalizeDigits(phone)) != 11 {
		return common.ValidationError("phone", "must have 11 digits: (99) 99999-9999")
	}
	return nil
}

// FormatPhone renders phone as (99) 99999-9999, or (99) 9999-9999 for
// ten-digit landlines.
func FormatPhone(phone string) string {
	d := NormalizeDigits(phone)
	if len(d) > 11 {
		d = d[:11]
	}
	switch {
	case len(d) <= 2:
		return d
	case len(d) <= 6:
		return "(" + d[:2] + ") " + d[2:]
	case len(d) <= 10:
		return "(" + d[:2] + ") " + d[2:6] + "-" + d[6:]
	default:
		return "(" + d[:2] + ") " + d[2:7] + "-" + d[7:]
	}
}

func ValidEmail(email string) error {
	if !emailRe.MatchString(strings.TrimSpace(email)) {
		return common.ValidationError("email", "invalid format")
	}
	return nil
}

// ValidCEP accepts NNNNN-NNN or eight bare digits.
func ValidCEP(cep string) error {
	if !cepRe.MatchString(strings.TrimSpace(cep)) {
		return common.ValidationError("postal code", "use the format 99999-999")
	}
	return nil
}

// FormatCEP renders eight digits as NNNNN-NNN. Other input is returned as digits.
func FormatCEP(cep string) string {
	d := NormalizeDigits(cep)
	if len(d) != 8 {
		return d
	}
	return d[:5] + "-" + d[5:]
}

// ValidState accepts a two-letter federative unit code.
func ValidState(uf string) error {
	if !stateRe.MatchString(uf) {
		return common.ValidationError("state", "use the 2-letter code")
	}
	return nil
}

func ValidName(name string) error {
	if len([]rune(strings.TrimSpace(name))) < minNameLen {
		return common.ValidationError("name", "must have at least 3 characters")
	}
	return nil
}

// ValidPassword requires 6+ characters with an upper-case letter, a digit and
// a symbol.
func ValidPassword(password string) error {
	if len([]rune(password)) < minPasswordLen {
		return common.ValidationError("password", "must have at least 6 characters")
	}

	var upper, digit, special bool
	for _, r := range password {
		switch {
		case r >= 'A' && r <= 'Z':
			upper = true
		case r >= '0' && r <= '9':
			digit = true
		case r >= 'a' && r <= 'z':
		default:
			special = true
		}
	}

	switch {
	case !upper:
		return common.ValidationError("password", "must contain an upper-case letter")
	case !digit:
		return common.ValidationError("password", "must contain a digit")
	case !special:
		return common.ValidationError("password", "must contain a special character")
	}
	return nil
}

// Required fails when value is blank.
func Required(field, value string) error {
	if strings.TrimSpace(value) == "" {
		return common.ValidationError(field, "is required")
	}
	return nil
}
