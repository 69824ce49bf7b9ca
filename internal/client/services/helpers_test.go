package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/kvstore"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/models"
	"github.com/dmitrijs2005/dragoncontacts/internal/logging"
	"github.com/dmitrijs2005/dragoncontacts/internal/session"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = t
}

func newAuth(t *testing.T, store kvstore.Store) (*authService, *fakeClock) {
	t.Helper()
	clk := &fakeClock{t: t0}
	a := NewAuthService(store, AuthOptions{}, logging.Nop()).(*authService)
	a.now = clk.Now
	return a, clk
}

func register(t *testing.T, a AuthService, email string) string {
	t.Helper()
	_, err := a.Register(context.Background(), "Ana Silva", email, "Secret1!")
	require.NoError(t, err)
	s, ok, err := a.CurrentSession(context.Background())
	require.NoError(t, err)
	require.True(t, ok)
	return s.SubjectID
}

// fixedSession is a SessionSource with a settable session.
type fixedSession struct {
	s  session.Session
	ok bool
}

func (f *fixedSession) CurrentSession(context.Context) (session.Session, bool, error) {
	return f.s, f.ok, nil
}

type geocodeResult struct {
	coords *models.Coordinates
	err    error
}

// fakeGeocoder answers from a queue and records the queries.
type fakeGeocoder struct {
	mu      sync.Mutex
	queries []string
	results []geocodeResult
}

func (g *fakeGeocoder) push(lat, lng float64) {
	g.results = append(g.results, geocodeResult{coords: &models.Coordinates{Latitude: lat, Longitude: lng}})
}

func (g *fakeGeocoder) fail(err error) {
	g.results = append(g.results, geocodeResult{err: err})
}

func (g *fakeGeocoder) Geocode(_ context.Context, address string) (*models.Coordinates, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.queries = append(g.queries, address)
	if len(g.results) == 0 {
		return nil, nil
	}
	r := g.results[0]
	g.results = g.results[1:]
	return r.coords, r.err
}

func (g *fakeGeocoder) calls() []string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return append([]string(nil), g.queries...)
}

func newMemStore() *kvstore.MemoryStore {
	return kvstore.NewMemoryStore()
}
