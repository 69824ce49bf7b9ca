package services

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/client"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/kvstore"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/models"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/validate"
	"github.com/dmitrijs2005/dragoncontacts/internal/common"
	"github.com/dmitrijs2005/dragoncontacts/internal/logging"
	"github.com/dmitrijs2005/dragoncontacts/internal/session"
	"github.com/google/uuid"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"
)

// SessionSource yields the current valid session, if any.
type SessionSource interface {
	CurrentSession(ctx context.Context) (session.Session, bool, error)
}

// ContactService stores the contacts of the current user.
//
// The whole collection is kept as a single JSON document under a key derived
// from the session subject, so distinct users never share contacts.
type ContactService interface {
	List(ctx context.Context) ([]models.Contact, error)
	GetByID(ctx context.Context, id string) (*models.Contact, error)
	Create(ctx context.Context, in models.ContactInput) (*models.Contact, error)
	Update(ctx context.Context, id string, patch models.ContactPatch) (*models.Contact, error)
	Remove(ctx context.Context, id string) error
	Search(ctx context.Context, f models.ContactFilter) ([]models.Contact, error)
	Located(ctx context.Context) ([]models.Contact, error)
	Purge(ctx context.Context, userID string) error
}

type contactService struct {
	store     kvstore.Store
	sessions  SessionSource
	geocoder  client.Geocoder
	namespace string
	log       logging.Logger
	now       func() time.Time
	newID     func() string

	mu sync.Mutex
}

// NewContactService constructs a ContactService. geocoder may be nil, in
// which case contacts are stored without coordinates.
func NewContactService(store kvstore.Store, sessions SessionSource, geocoder client.Geocoder, namespace string, log logging.Logger) ContactService {
	if namespace == "" {
		namespace = common.DefaultNamespace
	}
	return &contactService{
		store:     store,
		sessions:  sessions,
		geocoder:  geocoder,
		namespace: namespace,
		log:       log.With("component", "contacts"),
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// storageKey derives the collection key from the current session.
func (s *contactService) storageKey(ctx context.Context) (string, error) {
	sess, ok, err := s.sessions.CurrentSession(ctx)
	if err != nil {
		return "", err
	}
	if !ok {
		return s.namespace, nil
	}
	return s.userKey(sess.SubjectID), nil
}

func (s *contactService) userKey(userID string) string {
	return s.namespace + "_" + userID
}

func (s *contactService) load(ctx context.Context) (string, []models.Contact, error) {
	key, err := s.storageKey(ctx)
	if err != nil {
		return "", nil, err
	}
	contacts, err := loadJSON[models.Contact](ctx, s.store, key)
	if err != nil {
		return "", nil, err
	}
	return key, contacts, nil
}

func (s *contactService) List(ctx context.Context) ([]models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, contacts, err := s.load(ctx)
	return contacts, err
}

func (s *contactService) GetByID(ctx context.Context, id string) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, contacts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(contacts, id)
	if idx < 0 {
		return nil, fmt.Errorf("contact %s: %w", id, common.ErrNotFound)
	}
	c := contacts[idx]
	return &c, nil
}

// cpfTaken reports whether another contact than exceptID has cpf.
func cpfTaken(contacts []models.Contact, cpf, exceptID string) bool {
	for _, c := range contacts {
		if c.ID != exceptID && validate.NormalizeDigits(c.CPF) == cpf {
			return true
		}
	}
	return false
}

func normalizedCPF(cpf string) (string, error) {
	d := validate.NormalizeDigits(cpf)
	if d == "" {
		return "", common.ValidationError("cpf", "is required")
	}
	return d, nil
}

// geocode resolves addr. Failures are logged and reported as nil.
func (s *contactService) geocode(ctx context.Context, addr *models.Address) *models.Coordinates {
	if s.geocoder == nil || !addr.Geocodable() {
		return nil
	}
	query := addr.GeocodeQuery()
	coords, err := s.geocoder.Geocode(ctx, query)
	if err != nil {
		s.log.Warn(ctx, "geocoding failed", "address", query, "error", err)
		return nil
	}
	return coords
}

func (s *contactService) Create(ctx context.Context, in models.ContactInput) (*models.Contact, error) {
	cpf, err := normalizedCPF(in.CPF)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	key, contacts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	if cpfTaken(contacts, cpf, "") {
		return nil, common.ErrDuplicateCpf
	}

	now := s.now()
	c := models.Contact{
		ID:        s.newID(),
		Name:      in.Name,
		Email:     in.Email,
		Phone:     in.Phone,
		CPF:       in.CPF,
		Photo:     in.Photo,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if in.Address != nil {
		addr := *in.Address
		c.Address = &addr
		c.Location = s.geocode(ctx, c.Address)
	}

	contacts = append(contacts, c)
	if err := saveJSON(ctx, s.store, key, contacts); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "contact created", "id", c.ID, "geocoded", c.Location != nil)
	return &c, nil
}

func (s *contactService) Update(ctx context.Context, id string, patch models.ContactPatch) (*models.Contact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, contacts, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	idx := indexOf(contacts, id)
	if idx < 0 {
		return nil, fmt.Errorf("contact %s: %w", id, common.ErrNotFound)
	}

	if patch.CPF != nil {
		cpf, err := normalizedCPF(*patch.CPF)
		if err != nil {
			return nil, err
		}
		if cpfTaken(contacts, cpf, id) {
			return nil, common.ErrDuplicateCpf
		}
	}

	existing := contacts[idx]
	updated := patch.Apply(existing)

	if updated.Address.Locator() != existing.Address.Locator() {
		if coords := s.geocode(ctx, updated.Address); coords != nil {
			updated.Location = coords
		}
	}
	updated.UpdatedAt = s.now()

	contacts[idx] = updated
	if err := saveJSON(ctx, s.store, key, contacts); err != nil {
		return nil, err
	}

	s.log.Info(ctx, "contact updated", "id", id)
	return &updated, nil
}

func (s *contactService) Remove(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	key, contacts, err := s.load(ctx)
	if err != nil {
		return err
	}
	idx := indexOf(contacts, id)
	if idx < 0 {
		return nil
	}

	contacts = slices.Delete(contacts, idx, idx+1)
	if err := saveJSON(ctx, s.store, key, contacts); err != nil {
		return err
	}
	s.log.Info(ctx, "contact removed", "id", id)
	return nil
}

// Search filters by a case-insensitive name match or a CPF substring and
// sorts by name with Brazilian Portuguese collation.
func (s *contactService) Search(ctx context.Context, f models.ContactFilter) ([]models.Contact, error) {
	contacts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}

	term := strings.TrimSpace(f.Term)
	out := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if matches(c, term) {
			out = append(out, c)
		}
	}

	if f.Order != "" {
		col := collate.New(language.BrazilianPortuguese, collate.IgnoreCase)
		sort.SliceStable(out, func(i, j int) bool {
			cmp := col.CompareString(out[i].Name, out[j].Name)
			if f.Order == models.SortDesc {
				return cmp > 0
			}
			return cmp < 0
		})
	}
	return out, nil
}

func matches(c models.Contact, term string) bool {
	if term == "" {
		return true
	}
	if strings.Contains(strings.ToLower(c.Name), strings.ToLower(term)) {
		return true
	}
	if strings.Contains(c.CPF, term) {
		return true
	}
	digits := validate.NormalizeDigits(term)
	return digits != "" && strings.Contains(validate.NormalizeDigits(c.CPF), digits)
}

// Located lists the contacts that carry coordinates.
func (s *contactService) Located(ctx context.Context) ([]models.Contact, error) {
	contacts, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.Contact, 0, len(contacts))
	for _, c := range contacts {
		if c.Location != nil {
			out = append(out, c)
		}
	}
	return out, nil
}

// Purge drops the whole collection of userID.
func (s *contactService) Purge(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Delete(ctx, s.userKey(userID)); err != nil {
		return fmt.Errorf("purge contacts: %w", err)
	}
	s.log.Info(ctx, "contacts purged", "user_id", userID)
	return nil
}

func indexOf(contacts []models.Contact, id string) int {
	return slices.IndexFunc(contacts, func(c models.Contact) bool { return c.ID == id })
}
