package models

// PostalAddress is an address candidate returned by the postal lookup.
type PostalAddress struct {
	PostalCode   string
	Street       string
	Complement   string
	Neighborhood string
	City         string
	State        string
}

// PostalKey identifies a candidate for de-duplication.
type PostalKey struct {
	PostalCode, Street, Neighborhood, City, State string
}

func (p PostalAddress) Key() PostalKey {
	return PostalKey{
		PostalCode:   p.PostalCode,
		Street:       p.Street,
		Neighborhood: p.Neighborhood,
		City:         p.City,
		State:        p.State,
	}
}

// ToAddress builds a contact address from the candidate and a house number.
func (p PostalAddress) ToAddress(number string) *Address {
	return &Address{
		Street:       p.Street,
		Number:       number,
		Complement:   p.Complement,
		Neighborhood: p.Neighborhood,
		City:         p.City,
		State:        p.State,
		PostalCode:   p.PostalCode,
	}
}
