package models

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/dmitrijs2005/dragoncontacts/internal/common"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ptr(s string) *string { return &s }

func sampleAddress() *Address {
	return &Address{
		Street:       "Avenida Paulista",
		Number:       "1000",
		Neighborhood: "Bela Vista",
		City:         "São Paulo",
		State:        "SP",
		PostalCode:   "01311-000",
	}
}

func TestAddress_LocatorAndQuery(t *testing.T) {
	a := sampleAddress()
	assert.Equal(t, Locator{Street: "Avenida Paulista", Number: "1000", City: "São Paulo", State: "SP"}, a.Locator())
	assert.Equal(t, "Avenida Paulista, 1000, São Paulo, SP, Brazil", a.GeocodeQuery())

	b := *a
	b.Complement = "apto 12"
	b.Neighborhood = "Centro"
	assert.Equal(t, a.Locator(), b.Locator(), "non-locator fields do not matter")

	b.City = "Campinas"
	assert.NotEqual(t, a.Locator(), b.Locator())

	var nilAddr *Address
	assert.Equal(t, Locator{}, nilAddr.Locator())
	assert.False(t, nilAddr.Geocodable())
	assert.True(t, a.Geocodable())
	assert.False(t, (&Address{Street: "Rua A"}).Geocodable())
}

func TestContact_JSONTimestampsAreRFC3339(t *testing.T) {
	ts := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c := Contact{ID: "c1", Name: "Ana", CPF: "123.456.789-09", CreatedAt: ts, UpdatedAt: ts}

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Contains(t, string(b), `"createdAt":"2025-01-02T03:04:05Z"`)
	assert.NotContains(t, string(b), `"address"`)
	assert.NotContains(t, string(b), `"location"`)
}

func TestParseSortOrder(t *testing.T) {
	o, ok := ParseSortOrder("DESC")
	assert.True(t, ok)
	assert.Equal(t, SortDesc, o)

	_, ok = ParseSortOrder("sideways")
	assert.False(t, ok)
}

func TestUser_DisplayName(t *testing.T) {
	var u *User
	assert.Equal(t, "User", u.DisplayName())
	assert.Equal(t, "User", (&User{}).DisplayName())
	assert.Equal(t, "Ana", (&User{FullName: "Ana"}).DisplayName())
}

func TestContactPatch_Apply(t *testing.T) {
	orig := Contact{ID: "c1", Name: "Ana", Phone: "11987654321", Address: sampleAddress()}

	got := ContactPatch{
		Name:    ptr("Ana Maria"),
		Address: &AddressPatch{City: ptr("Campinas")},
	}.Apply(orig)

	want := orig
	want.Name = "Ana Maria"
	want.Address = sampleAddress()
	want.Address.City = "Campinas"

	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("Apply mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, "São Paulo", orig.Address.City, "original address must not change")
}

func TestAddressPatch_ApplyToNilAddress(t *testing.T) {
	var p *AddressPatch
	assert.Nil(t, p.Apply(nil))

	got := (&AddressPatch{Street: ptr("Rua A"), City: ptr("Recife")}).Apply(nil)
	require.NotNil(t, got)
	assert.Equal(t, Address{Street: "Rua A", City: "Recife"}, *got)
}

func TestContactInput_Validate(t *testing.T) {
	valid := ContactInput{
		Name:  "Ana Silva",
		Email: "ana@example.com",
		Phone: "(11) 98765-4321",
		CPF:   "123.456.789-09",
	}
	require.NoError(t, valid.Validate())

	withAddr := valid
	withAddr.Address = sampleAddress()
	require.NoError(t, withAddr.Validate())

	bad := valid
	bad.CPF = "123.456.789-00"
	bad.Phone = "123"
	err := bad.Validate()
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "cpf")
	assert.Contains(t, err.Error(), "phone")

	incomplete := valid
	incomplete.Address = &Address{Street: "Rua A"}
	err = incomplete.Validate()
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "city")
}

func TestContactPatch_Validate(t *testing.T) {
	require.NoError(t, ContactPatch{}.Validate())
	require.NoError(t, ContactPatch{Name: ptr("Bruno")}.Validate())

	err := ContactPatch{Email: ptr("nope"), Address: &AddressPatch{State: ptr("XYZ")}}.Validate()
	require.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "email")
	assert.Contains(t, err.Error(), "state")
}
