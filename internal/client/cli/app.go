package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dmitrijs2005/dragoncontacts/internal/client/client"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/config"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/kvstore"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/models"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/photos"
	"github.com/dmitrijs2005/dragoncontacts/internal/client/services"
	"github.com/dmitrijs2005/dragoncontacts/internal/logging"
	"github.com/dmitrijs2005/dragoncontacts/internal/netx"
)

// addressFinder is the address search surface used by the add/edit flows.
type addressFinder interface {
	Search(ctx context.Context, query string) ([]models.PostalAddress, error)
	LookupCEP(ctx context.Context, cep string) (*models.PostalAddress, error)
}

// photoStore uploads contact photos and hands out download links.
type photoStore interface {
	Upload(ctx context.Context, contactID, path string) (string, error)
	URL(ctx context.Context, key string) (string, error)
}

type App struct {
	auth          services.AuthService
	contacts      services.ContactService
	addresses     addressFinder
	photos        photoStore
	log           logging.Logger
	checkInterval time.Duration
	reader        *bufio.Reader
	out           io.Writer
	closer        func() error

	// expired is set by the session watcher and reported at the next prompt.
	expired atomic.Bool
	// signedOut suppresses the expiry notice after an explicit logout.
	signedOut atomic.Bool
}

// NewApp opens the configured storage and builds the services on top of it.
// Geocoding is disabled without an API key and photos without a bucket.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	store, err := kvstore.Open(ctx, c.StoreOptions())
	if err != nil {
		return nil, fmt.Errorf("open storage: %w", err)
	}

	hc := netx.NewHTTPClient(c.HTTPTimeout)

	auth := services.NewAuthService(store, services.AuthOptions{
		Lifetime:      c.SessionLifetime,
		RenewalWindow: c.RenewalWindow,
	}, log)

	var geocoder client.Geocoder
	if c.GeocoderAPIKey != "" {
		geocoder = client.NewGoogleGeocoder(c.GeocoderBaseURL, c.GeocoderAPIKey, hc)
	} else {
		log.Warn(ctx, "geocoder API key not set, contacts will be stored without coordinates")
	}

	var ps photoStore
	if opts := c.PhotoOptions(); opts.Enabled() {
		ps = photos.NewS3Store(opts, hc)
	}

	return &App{
		auth:          auth,
		contacts:      services.NewContactService(store, auth, geocoder, c.Namespace, log),
		addresses:     services.NewAddressFinder(client.NewViaCEP(c.ViaCEPBaseURL, hc)),
		photos:        ps,
		log:           log,
		checkInterval: c.SessionCheckInterval,
		reader:        bufio.NewReader(os.Stdin),
		out:           os.Stdout,
		closer:        store.Close,
	}, nil
}

// Run starts the REPL and the session watcher and blocks until the user
// exits or ctx is cancelled. Storage is closed on return.
func (a *App) Run(ctx context.Context) error {
	defer a.close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)

	watcher := services.NewSessionWatcher(a.auth, a.checkInterval, a.onSessionExpired, a.log)
	g.Go(func() error {
		return watcher.Run(gctx)
	})

	g.Go(func() error {
		defer cancel()
		fmt.Fprintln(a.out, "Dragon Contacts CLI (type 'help' for commands)")
		runREPL(gctx, a, a.status, a.reader, a.out)
		return nil
	})

	return g.Wait()
}

func (a *App) close() {
	if a.closer == nil {
		return
	}
	if err := a.closer(); err != nil {
		a.log.Error(context.Background(), "close storage", "error", err)
	}
}

func (a *App) onSessionExpired() {
	if !a.signedOut.Load() {
		a.expired.Store(true)
	}
}

func (a *App) isLoggedIn(ctx context.Context) bool {
	ok, err := a.auth.IsAuthenticated(ctx)
	if err != nil {
		a.log.Warn(ctx, "session check failed", "error", err)
		return false
	}
	return ok
}

// status returns the prompt decoration: the user's display name when
// logged in. A pending expiry notice is printed once.
func (a *App) status(ctx context.Context) string {
	if a.expired.Swap(false) {
		fmt.Fprintln(a.out, "Your session has expired. Please log in again.")
	}
	if !a.isLoggedIn(ctx) {
		return ""
	}
	u, err := a.auth.CurrentUser(ctx)
	if err != nil {
		return ""
	}
	return u.DisplayName()
}
