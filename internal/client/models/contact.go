// Package models defines the records persisted by the client: users and
// their contacts, plus the input shapes used to create and edit contacts.
package models

import (
	"strings"
	"time"
)

// Coordinates is a geocoded position.
type Coordinates struct {
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}

// Address is the optional postal address of a contact.
type Address struct {
	Street       string `json:"street,omitempty"`
	Number       string `json:"number,omitempty"`
	Complement   string `json:"complement,omitempty"`
	Neighborhood string `json:"neighborhood,omitempty"`
	City         string `json:"city,omitempty"`
	State        string `json:"state,omitempty"`
	PostalCode   string `json:"postalCode,omitempty"`
}

// Locator holds the address fields that determine a geocoding result.
// Two addresses geocode alike iff their Locators are equal.
type Locator struct {
	Street string
	Number string
	City   string
	State  string
}

// Locator returns the geocoding key of a. A nil address yields the zero Locator.
func (a *Address) Locator() Locator {
	if a == nil {
		return Locator{}
	}
	return Locator{Street: a.Street, Number: a.Number, City: a.City, State: a.State}
}

// Geocodable reports whether a carries enough to be geocoded: street and city.
func (a *Address) Geocodable() bool {
	return a != nil && strings.TrimSpace(a.Street) != "" && strings.TrimSpace(a.City) != ""
}

// GeocodeQuery renders the free-text query sent to the geocoder.
func (a *Address) GeocodeQuery() string {
	l := a.Locator()
	return strings.Join([]string{l.Street, l.Number, l.City, l.State, "Brazil"}, ", ")
}

// Contact is a stored contact record.
type Contact struct {
	ID        string       `json:"id"`
	Name      string       `json:"name"`
	Email     string       `json:"email"`
	Phone     string       `json:"phone"`
	CPF       string       `json:"cpf"`
	Address   *Address     `json:"address,omitempty"`
	Location  *Coordinates `json:"location,omitempty"`
	Photo     string       `json:"photo,omitempty"`
	CreatedAt time.Time    `json:"createdAt"`
	UpdatedAt time.Time    `json:"updatedAt"`
}

// SortOrder orders contacts by name.
type SortOrder string

const (
	SortAsc  SortOrder = "asc"
	SortDesc SortOrder = "desc"
)

// ParseSortOrder accepts "asc" or "desc" in any case; anything else is false.
func ParseSortOrder(s string) (SortOrder, bool) {
	switch SortOrder(strings.ToLower(s)) {
	case SortAsc:
		return SortAsc, true
	case SortDesc:
		return SortDesc, true
	}
	return "", false
}

// ContactFilter narrows and orders a contact listing. An empty Term matches
// everything; an empty Order keeps insertion order.
type ContactFilter struct {
	Term  string
	Order SortOrder
}
