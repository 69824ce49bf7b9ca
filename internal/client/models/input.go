package models

import (
	"errors"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/validate"
)

// ContactInput carries the caller-supplied fields of a new contact.
type ContactInput struct {
	Name    string
	Email   string
	Phone   string
	CPF     string
	Photo   string
	Address *Address
}

// Validate applies the contact form rules. A non-nil address must be complete.
func (in ContactInput) Validate() error {
	errs := []error{
		validate.ValidName(in.Name),
		validate.ValidEmail(in.Email),
		validate.ValidPhone(in.Phone),
		validate.ValidCPF(in.CPF),
	}
	if in.Address != nil {
		errs = append(errs, validateAddress(in.Address))
	}
	return errors.Join(errs...)
}

func validateAddress(a *Address) error {
	return errors.Join(
		validate.Required("street", a.Street),
		validate.Required("number", a.Number),
		validate.Required("neighborhood", a.Neighborhood),
		validate.Required("city", a.City),
		validate.ValidState(a.State),
		validate.ValidCEP(a.PostalCode),
	)
}

// AddressPatch changes individual address fields; nil means unchanged.
type AddressPatch struct {
	Street       *string
	Number       *string
	Complement   *string
	Neighborhood *string
	City         *string
	State        *string
	PostalCode   *string
}

// IsZero reports whether p changes nothing.
func (p *AddressPatch) IsZero() bool {
	return p == nil || (p.Street == nil && p.Number == nil && p.Complement == nil &&
		p.Neighborhood == nil && p.City == nil && p.State == nil && p.PostalCode == nil)
}

// Apply returns a copy of a with p applied. a may be nil.
func (p *AddressPatch) Apply(a *Address) *Address {
	if p.IsZero() {
		return a
	}
	var out Address
	if a != nil {
		out = *a
	}
	set(&out.Street, p.Street)
	set(&out.Number, p.Number)
	set(&out.Complement, p.Complement)
	set(&out.Neighborhood, p.Neighborhood)
	set(&out.City, p.City)
	set(&out.State, p.State)
	set(&out.PostalCode, p.PostalCode)
	return &out
}

// ContactPatch is a partial update of a contact; nil fields are left as stored.
type ContactPatch struct {
	Name    *string
	Email   *string
	Phone   *string
	CPF     *string
	Photo   *string
	Address *AddressPatch
}

// Apply returns c with p applied. c's address is not modified in place.
func (p ContactPatch) Apply(c Contact) Contact {
	set(&c.Name, p.Name)
	set(&c.Email, p.Email)
	set(&c.Phone, p.Phone)
	set(&c.CPF, p.CPF)
	set(&c.Photo, p.Photo)
	c.Address = p.Address.Apply(c.Address)
	return c
}

// Validate checks only the fields p sets.
func (p ContactPatch) Validate() error {
	var errs []error
	if p.Name != nil {
		errs = append(errs, validate.ValidName(*p.Name))
	}
	if p.Email != nil {
		errs = append(errs, validate.ValidEmail(*p.Email))
	}
	if p.Phone != nil {
		errs = append(errs, validate.ValidPhone(*p.Phone))
	}
	if p.CPF != nil {
		errs = append(errs, validate.ValidCPF(*p.CPF))
	}
	if a := p.Address; a != nil {
		if a.State != nil {
			errs = append(errs, validate.ValidState(*a.State))
		}
		if a.PostalCode != nil {
			errs = append(errs, validate.ValidCEP(*a.PostalCode))
		}
	}
	return errors.Join(errs...)
}

func set(dst *string, v *string) {
	if v != nil {
		*dst = *v
	}
}
