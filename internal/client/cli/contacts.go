package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/models"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/validate"
	"github.com/dmitrijs2005/dragoncontacts/internal/common"
)

// contactID takes the id from args or asks for it.
func (a *App) contactID(args []string) (string, error) {
	if len(args) > 0 {
		return args[0], nil
	}
	id, err := GetSimpleText(a.reader, "Enter contact id", a.out)
	if err != nil {
		return "", err
	}
	if id == "" {
		return "", common.ValidationError("id", "is required")
	}
	return id, nil
}

// Add walks through the contact form and stores the result.
func (a *App) Add(ctx context.Context) error {
	var in models.ContactInput
	var err error

	if in.Name, err = GetSimpleText(a.reader, "Name", a.out); err != nil {
		return err
	}
	if in.Email, err = GetSimpleText(a.reader, "Email", a.out); err != nil {
		return err
	}
	if in.Phone, err = GetSimpleText(a.reader, "Phone (11 digits)", a.out); err != nil {
		return err
	}
	if in.CPF, err = GetSimpleText(a.reader, "CPF", a.out); err != nil {
		return err
	}
	if in.Address, err = a.promptAddress(ctx, nil); err != nil {
		return err
	}

	if err := in.Validate(); err != nil {
		return err
	}

	c, err := a.contacts.Create(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderCard(*c, ""))
	return nil
}

// Edit shows every field with its current value; empty answers keep it.
func (a *App) Edit(ctx context.Context, args []string) error {
	id, err := a.contactID(args)
	if err != nil {
		return err
	}
	c, err := a.contacts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var patch models.ContactPatch
	for _, f := range []struct {
		label string
		cur   string
		dst   **string
	}{
		{"Name", c.Name, &patch.Name},
		{"Email", c.Email, &patch.Email},
		{"Phone", c.Phone, &patch.Phone},
		{"CPF", c.CPF, &patch.CPF},
	} {
		v, err := GetTextWithDefault(a.reader, f.label, f.cur, a.out)
		if err != nil {
			return err
		}
		*f.dst = changed(f.cur, v)
	}

	addr, err := a.promptAddress(ctx, c.Address)
	if err != nil {
		return err
	}
	patch.Address = addressPatch(c.Address, addr)

	if err := patch.Validate(); err != nil {
		return err
	}

	updated, err := a.contacts.Update(ctx, id, patch)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, renderCard(*updated, ""))
	return nil
}

func changed(old, v string) *string {
	if old == v {
		return nil
	}
	return &v
}

func addressPatch(old, v *models.Address) *models.AddressPatch {
	if v == nil || (old != nil && *old == *v) {
		return nil
	}
	var o models.Address
	if old != nil {
		o = *old
	}
	return &models.AddressPatch{
		Street:       changed(o.Street, v.Street),
		Number:       changed(o.Number, v.Number),
		Complement:   changed(o.Complement, v.Complement),
		Neighborhood: changed(o.Neighborhood, v.Neighborhood),
		City:         changed(o.City, v.City),
		State:        changed(o.State, v.State),
		PostalCode:   changed(o.PostalCode, v.PostalCode),
	}
}

// promptAddress optionally collects an address. A new valid CEP is looked
// up first and prefills the remaining fields. It returns current unchanged when
// the user declines.
func (a *App) promptAddress(ctx context.Context, current *models.Address) (*models.Address, error) {
	question := "Add an address?"
	if current != nil {
		question = "Edit the address?"
	}
	ok, err := GetConfirm(a.reader, question, a.out)
	if err != nil || !ok {
		return current, err
	}

	var addr models.Address
	if current != nil {
		addr = *current
	}

	cep, err := GetTextWithDefault(a.reader, "CEP", addr.PostalCode, a.out)
	if err != nil {
		return nil, err
	}
	fresh := validate.NormalizeDigits(cep) != validate.NormalizeDigits(addr.PostalCode)
	if fresh && validate.ValidCEP(cep) == nil {
		a.prefill(ctx, cep, &addr)
	}
	addr.PostalCode = validate.NormalizeDigits(cep)

	for _, f := range []struct {
		label string
		dst   *string
	}{
		{"Street", &addr.Street},
		{"Number", &addr.Number},
		{"Complement", &addr.Complement},
		{"Neighborhood", &addr.Neighborhood},
		{"City", &addr.City},
		{"State (UF)", &addr.State},
	} {
		v, err := GetTextWithDefault(a.reader, f.label, *f.dst, a.out)
		if err != nil {
			return nil, err
		}
		*f.dst = v
	}
	addr.State = strings.ToUpper(addr.State)
	return &addr, nil
}

// prefill copies the postal lookup result into addr. Lookup failures are
// reported and leave addr for manual entry.
func (a *App) prefill(ctx context.Context, cep string, addr *models.Address) {
	p, err := a.addresses.LookupCEP(ctx, cep)
	switch {
	case err == nil:
		addr.Street = p.Street
		addr.Neighborhood = p.Neighborhood
		addr.City = p.City
		addr.State = p.State
		if p.Complement != "" {
			addr.Complement = p.Complement
		}
		fmt.Fprintln(a.out, "Found:", formatPostal(*p))
	case errors.Is(err, common.ErrNotFound):
		fmt.Fprintln(a.out, "CEP not found, fill in the address manually.")
	default:
		if msg := userMessage(err); msg != "" {
			fmt.Fprintln(a.out, msg)
		}
	}
}

// parseListArgs reads "list [term] [asc|desc]". A trailing sort order is
// taken off; the remaining words form the search term.
func parseListArgs(args []string) models.ContactFilter {
	var f models.ContactFilter
	if n := len(args); n > 0 {
		if o, ok := models.ParseSortOrder(args[n-1]); ok {
			f.Order = o
			args = args[:n-1]
		}
	}
	f.Term = strings.Join(args, " ")
	return f
}

func (a *App) List(ctx context.Context, args []string) error {
	contacts, err := a.contacts.Search(ctx, parseListArgs(args))
	if err != nil {
		return err
	}
	if len(contacts) == 0 {
		fmt.Fprintln(a.out, "No contacts found.")
		return nil
	}
	fmt.Fprint(a.out, renderList(contacts))
	return nil
}

func (a *App) Show(ctx context.Context, args []string) error {
	id, err := a.contactID(args)
	if err != nil {
		return err
	}
	c, err := a.contacts.GetByID(ctx, id)
	if err != nil {
		return err
	}

	var photoURL string
	if c.Photo != "" && a.photos != nil {
		if photoURL, err = a.photos.URL(ctx, c.Photo); err != nil {
			a.log.Warn(ctx, "presign photo url", "contact_id", c.ID, "error", err)
		}
	}
	fmt.Fprintln(a.out, renderCard(*c, photoURL))
	return nil
}

func (a *App) Delete(ctx context.Context, args []string) error {
	id, err := a.contactID(args)
	if err != nil {
		return err
	}
	c, err := a.contacts.GetByID(ctx, id)
	if err != nil {
		return err
	}
	ok, err := GetConfirm(a.reader, fmt.Sprintf("Delete %s?", c.Name), a.out)
	if err != nil || !ok {
		return err
	}
	if err := a.contacts.Remove(ctx, id); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Contact deleted.")
	return nil
}

// Map lists contacts that carry coordinates with a link to each location.
func (a *App) Map(ctx context.Context) error {
	located, err := a.contacts.Located(ctx)
	if err != nil {
		return err
	}
	if len(located) == 0 {
		fmt.Fprintln(a.out, "No contacts with a location yet.")
		return nil
	}
	for _, c := range located {
		fmt.Fprintf(a.out, "%s  %s  %s\n", titleStyle.Render(c.Name), formatCoordinates(*c.Location), mapsLink(*c.Location))
	}
	return nil
}

// Photo uploads an image for a contact: "photo <id> <path>".
func (a *App) Photo(ctx context.Context, args []string) error {
	if a.photos == nil {
		fmt.Fprintln(a.out, "Photo storage is not configured.")
		return nil
	}
	id, err := a.contactID(args)
	if err != nil {
		return err
	}
	if _, err := a.contacts.GetByID(ctx, id); err != nil {
		return err
	}

	var path string
	if len(args) > 1 {
		path = args[1]
	} else if path, err = GetSimpleText(a.reader, "Path to image", a.out); err != nil {
		return err
	}

	key, err := a.photos.Upload(ctx, id, path)
	if err != nil {
		return err
	}
	if _, err := a.contacts.Update(ctx, id, models.ContactPatch{Photo: &key}); err != nil {
		return err
	}
	fmt.Fprintln(a.out, "Photo uploaded.")
	return nil
}
