package cli

import (
	"context"
	"fmt"
	"strings"
)

// LookupCEP prints the address of a postal code: "cep <code>".
func (a *App) LookupCEP(ctx context.Context, args []string) error {
	var cep string
	var err error
	if len(args) > 0 {
		cep = args[0]
	} else if cep, err = GetSimpleText(a.reader, "Enter CEP", a.out); err != nil {
		return err
	}

	p, err := a.addresses.LookupCEP(ctx, cep)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, formatPostal(*p))
	return nil
}

// FindAddress searches by CEP or by "street, city, state".
func (a *App) FindAddress(ctx context.Context, args []string) error {
	query := strings.Join(args, " ")
	if query == "" {
		var err error
		if query, err = GetSimpleText(a.reader, "Enter a CEP or \"street, city, state\"", a.out); err != nil {
			return err
		}
	}

	found, err := a.addresses.Search(ctx, query)
	if err != nil {
		return err
	}
	if len(found) == 0 {
		fmt.Fprintln(a.out, "No addresses found.")
		return nil
	}
	for i, p := range found {
		fmt.Fprintf(a.out, "%d. %s\n", i+1, formatPostal(p))
	}
	return nil
}
