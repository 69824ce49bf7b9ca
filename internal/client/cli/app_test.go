package cli

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/kvstore"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/models"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/services"
	"github.com/dmitrijs2005/dragoncontacts/internal/common"
	"github.com/dmitrijs2005/dragoncontacts/internal/logging"
)

const (
	testEmail    = "ana@example.com"
	testPassword = "Secret1!"
	validCPF     = "52998224725"
)

// fakeFinder answers postal lookups from a map.
type fakeFinder struct {
	byCEP map[string]models.PostalAddress
	found []models.PostalAddress
	err   error
}

func (f *fakeFinder) Search(context.Context, string) ([]models.PostalAddress, error) {
	return f.found, f.err
}

func (f *fakeFinder) LookupCEP(_ context.Context, cep string) (*models.PostalAddress, error) {
	if f.err != nil {
		return nil, f.err
	}
	p, ok := f.byCEP[cep]
	if !ok {
		return nil, common.ErrNotFound
	}
	return &p, nil
}

type fakePhotos struct {
	uploads []string
	err     error
}

func (f *fakePhotos) Upload(_ context.Context, contactID, path string) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.uploads = append(f.uploads, contactID+":"+path)
	return "contacts/" + contactID + "/photo.png", nil
}

func (f *fakePhotos) URL(_ context.Context, key string) (string, error) {
	return "https://photos.example/" + key, nil
}

type fixedGeocoder struct{}

func (fixedGeocoder) Geocode(context.Context, string) (*models.Coordinates, error) {
	return &models.Coordinates{Latitude: -23.55, Longitude: -46.63}, nil
}

var se = models.PostalAddress{
	PostalCode:   "01001-000",
	Street:       "Praça da Sé",
	Neighborhood: "Sé",
	City:         "São Paulo",
	State:        "SP",
}

type harness struct {
	store    kvstore.Store
	app      *App
	out      *bytes.Buffer
	auth     services.AuthService
	contacts services.ContactService
	finder   *fakeFinder
}

// stubPasswords makes getPassword return the given values in order.
func stubPasswords(t *testing.T, pws ...string) {
	t.Helper()
	old := getPassword
	t.Cleanup(func() { getPassword = old })

	var mu sync.Mutex
	getPassword = func(string, io.Writer) (string, error) {
		mu.Lock()
		defer mu.Unlock()
		if len(pws) == 0 {
			return "", errors.New("no more passwords")
		}
		pw := pws[0]
		pws = pws[1:]
		return pw, nil
	}
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	store := kvstore.NewMemoryStore()
	log := logging.Nop()
	auth := services.NewAuthService(store, services.AuthOptions{}, log)
	contacts := services.NewContactService(store, auth, fixedGeocoder{}, "", log)
	finder := &fakeFinder{byCEP: map[string]models.PostalAddress{"01001-000": se, "01001000": se}}
	out := &bytes.Buffer{}

	return &harness{
		store: store,
		app: &App{
			auth:      auth,
			contacts:  contacts,
			addresses: finder,
			log:       log,
			reader:    rdr(""),
			out:       out,
		},
		out:      out,
		auth:     auth,
		contacts: contacts,
		finder:   finder,
	}
}

// loggedIn registers the default user and returns the harness.
func loggedIn(t *testing.T) *harness {
	t.Helper()
	h := newHarness(t)
	_, err := h.auth.Register(context.Background(), "Ana Souza", testEmail, testPassword)
	require.NoError(t, err)
	return h
}

func (h *harness) input(s string) {
	h.app.reader = rdr(s)
}

func (h *harness) addContact(t *testing.T, name, cpf string) *models.Contact {
	t.Helper()
	c, err := h.contacts.Create(context.Background(), models.ContactInput{
		Name:  name,
		Email: "contact@example.com",
		Phone: "11987654321",
		CPF:   cpf,
	})
	require.NoError(t, err)
	return c
}

func TestRegisterLogsIn(t *testing.T) {
	h := newHarness(t)
	stubPasswords(t, testPassword, testPassword)
	h.input("Ana Souza\n" + testEmail + "\n")

	require.NoError(t, h.app.Register(context.Background()))
	assert.Contains(t, h.out.String(), "Account created")
	assert.True(t, h.app.isLoggedIn(context.Background()))
}

func TestRegisterPasswordMismatch(t *testing.T) {
	h := newHarness(t)
	stubPasswords(t, testPassword, "Other1!x")
	h.input("Ana Souza\n" + testEmail + "\n")

	err := h.app.Register(context.Background())
	require.ErrorIs(t, err, common.ErrValidation)
	assert.False(t, h.app.isLoggedIn(context.Background()))
}

func TestLoginAndLogout(t *testing.T) {
	ctx := context.Background()
	h := loggedIn(t)
	require.NoError(t, h.auth.Logout(ctx))

	stubPasswords(t, "wrong", testPassword)

	h.input(testEmail + "\n")
	require.ErrorIs(t, h.app.Login(ctx), common.ErrInvalidCredential)

	h.input(testEmail + "\n")
	require.NoError(t, h.app.Login(ctx))
	assert.Contains(t, h.out.String(), "Welcome, Ana Souza!")
	assert.Equal(t, "Ana Souza", h.app.status(ctx))

	require.NoError(t, h.app.Logout(ctx))
	assert.False(t, h.app.isLoggedIn(ctx))
	assert.Equal(t, "", h.app.status(ctx))
}

func TestExpiryNoticeShownOnceAndNotAfterLogout(t *testing.T) {
	ctx := context.Background()
	h := loggedIn(t)

	h.app.onSessionExpired()
	h.app.status(ctx)
	h.app.status(ctx)
	assert.Equal(t, 1, bytes.Count(h.out.Bytes(), []byte("Your session has expired")))

	h.out.Reset()
	require.NoError(t, h.app.Logout(ctx))
	h.app.onSessionExpired()
	h.app.status(ctx)
	assert.NotContains(t, h.out.String(), "Your session has expired")
}

func TestWhoAmIAndAccount(t *testing.T) {
	ctx := context.Background()
	h := loggedIn(t)

	require.NoError(t, h.app.WhoAmI(ctx))
	assert.Contains(t, h.out.String(), "Ana Souza")
	assert.Contains(t, h.out.String(), testEmail)

	h.input("Ana Maria Souza\nn\n")
	require.NoError(t, h.app.Account(ctx))

	u, err := h.auth.CurrentUser(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Ana Maria Souza", u.FullName)
}

func TestAccountChangesPassword(t *testing.T) {
	ctx := context.Background()
	h := loggedIn(t)
	stubPasswords(t, "Newpass2@", "Newpass2@")

	h.input("\ny\n")
	require.NoError(t, h.app.Account(ctx))

	require.NoError(t, h.auth.Logout(ctx))
	_, err := h.auth.Login(ctx, testEmail, "Newpass2@")
	require.NoError(t, err)
}

func TestDeleteAccountPurgesContacts(t *testing.T) {
	ctx := context.Background()
	h := loggedIn(t)
	h.addContact(t, "Bruno Lima", validCPF)

	stubPasswords(t, testPassword)
	h.input("y\n")
	require.NoError(t, h.app.DeleteAccount(ctx))
	assert.Contains(t, h.out.String(), "Account deleted.")
	assert.False(t, h.app.isLoggedIn(ctx))

	_, err := h.auth.Login(ctx, testEmail, testPassword)
	require.ErrorIs(t, err, common.ErrNotFound)

	// a new account with the same email starts empty
	_, err = h.auth.Register(ctx, "Ana Souza", testEmail, testPassword)
	require.NoError(t, err)
	list, err := h.contacts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDeleteAccountDeclined(t *testing.T) {
	ctx := context.Background()
	h := loggedIn(t)

	h.input("n\n")
	require.NoError(t, h.app.DeleteAccount(ctx))
	assert.True(t, h.app.isLoggedIn(ctx))
}

func TestAddWithCEPPrefill(t *testing.T) {
	ctx := context.Background()
	h := loggedIn(t)

	h.input("Bruno Lima\nbruno@example.com\n(11) 98765-4321\n529.982.247-25\n" +
		"y\n01001-000\n\n100\n\n\n\n\n")
	require.NoError(t, h.app.Add(ctx))

	out := h.out.String()
	assert.Contains(t, out, "Found: Praça da Sé")
	assert.Contains(t, out, "Bruno Lima")
	assert.Contains(t, out, "529.982.247-25")

	list, err := h.contacts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	c := list[0]
	require.NotNil(t, c.Address)
	assert.Equal(t, "Praça da Sé", c.Address.Street)
	assert.Equal(t, "100", c.Address.Number)
	assert.Equal(t, "01001000", c.Address.PostalCode)
	assert.Equal(t, "SP", c.Address.State)
	require.NotNil(t, c.Location)
}

func TestAddUnknownCEPFallsBackToManualEntry(t *testing.T) {
	ctx := context.Background()
	h := loggedIn(t)

	h.input("Bruno Lima\nbruno@example.com\n11987654321\n" + validCPF + "\n" +
		"y\n99999-999\nRua Nova\n7\n\nCentro\nRecife\npe\n")
	require.NoError(t, h.app.Add(ctx))
	assert.Contains(t, h.out.String(), "CEP not found")

	list, err := h.contacts.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Recife", list[0].Address.City)
	assert.Equal(t, "PE", list[0].Address.State)
}

func TestAddInvalidForm(t *testing.T) {
	ctx := context.Background()
	h := loggedIn(t)

	h.input("Bo\nnot-an-email\n123\n11111111111\nn\n")
	err := h.app.Add(ctx)
	require.ErrorIs(t, err, common.ErrValidation)

	msg := userMessage(err)
	assert.Contains(t, msg, "name")
	assert.Contains(t, msg, "cpf")

	list, err := h.contacts.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestEditKeepsUnchangedFields(t *testing.T) {
	ctx := context.Background()
	h := loggedIn(t)
	c := h.addContact(t, "Bruno Lima", validCPF)

	h.input("Bruno Souza\n\n\n\nn\n")
	require.NoError(t, h.app.Edit(ctx, []string{c.ID}))

	got, err := h.contacts.GetByID(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, "Bruno Souza", got.Name)
	assert.Equal(t, c.Email, got.Email)
	assert.Equal(t, c.CPF, got.CPF)
	assert.Equal(t, c.CreatedAt, got.CreatedAt)
}

func TestEditUnknownContact(t *testing.T) {
	h := loggedIn(t)
	require.ErrorIs(t, h.app.Edit(context.Background(), []string{"missing"}), common.ErrNotFound)
}

func TestListShowAndDelete(t *testing.T) {
	ctx := context.Background()
	h := loggedIn(t)
	c := h.addContact(t, "Bruno Lima", validCPF)
	h.addContact(t, "Álvaro Dias", "12345678909")

	require.NoError(t, h.app.List(ctx, []string{"bruno"}))
	assert.Contains(t, h.out.String(), "Bruno Lima")
	assert.NotContains(t, h.out.String(), "Álvaro Dias")

	h.out.Reset()
	require.NoError(t, h.app.List(ctx, []string{"nobody"}))
	assert.Contains(t, h.out.String(), "No contacts found.")

	h.out.Reset()
	require.NoError(t, h.app.Show(ctx, []string{c.ID}))
	assert.Contains(t, h.out.String(), "(11) 98765-4321")

	h.input("n\n")
	require.NoError(t, h.app.Delete(ctx, []string{c.ID}))
	_, err := h.contacts.GetByID(ctx, c.ID)
	require.NoError(t, err)

	h.input("y\n")
	require.NoError(t, h.app.Delete(ctx, []string{c.ID}))
	_, err = h.contacts.GetByID(ctx, c.ID)
	require.ErrorIs(t, err, common.ErrNotFound)
}

func TestContactIDPrompt(t *testing.T) {
	h := loggedIn(t)

	h.input("\n")
	_, err := h.app.contactID(nil)
	require.ErrorIs(t, err, common.ErrValidation)

	h.input("abc\n")
	id, err := h.app.contactID(nil)
	require.NoError(t, err)
	assert.Equal(t, "abc", id)
}

func TestParseListArgs(t *testing.T) {
	tests := []struct {
		args []string
		want models.ContactFilter
	}{
		{nil, models.ContactFilter{}},
		{[]string{"asc"}, models.ContactFilter{Order: models.SortAsc}},
		{[]string{"ana", "souza", "DESC"}, models.ContactFilter{Term: "ana souza", Order: models.SortDesc}},
		{[]string{"529.982"}, models.ContactFilter{Term: "529.982"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, parseListArgs(tt.args), "args %v", tt.args)
	}
}

func TestMap(t *testing.T) {
	ctx := context.Background()
	h := loggedIn(t)

	require.NoError(t, h.app.Map(ctx))
	assert.Contains(t, h.out.String(), "No contacts with a location yet.")

	_, err := h.contacts.Create(ctx, models.ContactInput{
		Name: "Bruno Lima", Email: "b@example.com", Phone: "11987654321", CPF: validCPF,
		Address: se.ToAddress("100"),
	})
	require.NoError(t, err)

	h.out.Reset()
	require.NoError(t, h.app.Map(ctx))
	assert.Contains(t, h.out.String(), "Bruno Lima")
	assert.Contains(t, h.out.String(), "https://www.google.com/maps?q=-23.550000,-46.630000")
}

func TestPhoto(t *testing.T) {
	ctx := context.Background()

	t.Run("not configured", func(t *testing.T) {
		h := loggedIn(t)
		require.NoError(t, h.app.Photo(ctx, []string{"id", "x.png"}))
		assert.Contains(t, h.out.String(), "Photo storage is not configured.")
	})

	t.Run("upload and show", func(t *testing.T) {
		h := loggedIn(t)
		ps := &fakePhotos{}
		h.app.photos = ps
		c := h.addContact(t, "Bruno Lima", validCPF)

		require.NoError(t, h.app.Photo(ctx, []string{c.ID, "/tmp/me.png"}))
		assert.Equal(t, []string{c.ID + ":/tmp/me.png"}, ps.uploads)

		got, err := h.contacts.GetByID(ctx, c.ID)
		require.NoError(t, err)
		assert.Equal(t, "contacts/"+c.ID+"/photo.png", got.Photo)

		h.out.Reset()
		require.NoError(t, h.app.Show(ctx, []string{c.ID}))
		assert.Contains(t, h.out.String(), "https://photos.example/contacts/"+c.ID+"/photo.png")
	})

	t.Run("unknown contact", func(t *testing.T) {
		h := loggedIn(t)
		h.app.photos = &fakePhotos{}
		require.ErrorIs(t, h.app.Photo(ctx, []string{"missing", "x.png"}), common.ErrNotFound)
	})
}

func TestLookupCEPAndFindAddress(t *testing.T) {
	ctx := context.Background()
	h := newHarness(t)

	require.NoError(t, h.app.LookupCEP(ctx, []string{"01001-000"}))
	assert.Contains(t, h.out.String(), "Praça da Sé - Sé - São Paulo/SP - 01001-000")

	require.ErrorIs(t, h.app.LookupCEP(ctx, []string{"99999-999"}), common.ErrNotFound)

	h.out.Reset()
	h.finder.found = []models.PostalAddress{se, {PostalCode: "01002000", Street: "Rua Direita", City: "São Paulo", State: "SP"}}
	require.NoError(t, h.app.FindAddress(ctx, []string{"rua", "direita,", "são", "paulo,", "sp"}))
	assert.Contains(t, h.out.String(), "1. Praça da Sé")
	assert.Contains(t, h.out.String(), "2. Rua Direita")

	h.out.Reset()
	h.finder.found = nil
	require.NoError(t, h.app.FindAddress(ctx, []string{"x,", "y,", "z"}))
	assert.Contains(t, h.out.String(), "No addresses found.")
}

func TestRunExitsAndClosesStore(t *testing.T) {
	defer goleak.VerifyNone(t)

	h := loggedIn(t)
	closed := false
	h.app.closer = func() error { closed = true; return nil }
	h.app.checkInterval = 10 * time.Millisecond
	h.input("whoami\nexit\n")

	require.NoError(t, h.app.Run(context.Background()))
	assert.True(t, closed)
	assert.Contains(t, h.out.String(), "Dragon Contacts CLI")
	assert.Contains(t, h.out.String(), testEmail)
	assert.Contains(t, h.out.String(), "Bye!")
}
