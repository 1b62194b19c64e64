package cli

import (
	"bufio"
	"context"
	"os"
	"time"

	"github.com/enyard/portal/internal/client/analytics"
	"github.com/enyard/portal/internal/client/api"
	"github.com/enyard/portal/internal/client/config"
	"github.com/enyard/portal/internal/client/identity"
	"github.com/enyard/portal/internal/client/pipeline"
	"github.com/enyard/portal/internal/client/recaptcha"
	"github.com/enyard/portal/internal/client/session"
	"github.com/enyard/portal/internal/client/storage"
	"github.com/enyard/portal/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config  *config.Config
	log     logging.Logger
	repo    *storage.SQLiteRepository
	device  *identity.Provider
	store   *session.Store
	pipe    *pipeline.Pipeline
	tracker analytics.Tracker
	reader  *bufio.Reader
}

func NewApp(c *config.Config) (*App, error) {

	ctx := context.Background()
	log := logging.Setup(c.LogLevel)

	repo, err := storage.InitDatabase(ctx, c.DatabasePath)
	if err != nil {
		log.Error(ctx, "error initializing database", "error", err)
		return nil, err
	}

	device := identity.NewProvider(repo)
	tracker := analytics.New(c.GAMeasurementID, c.GAAPISecret, repo, log)

	// The token source reads the store at call time so a login during the
	// process lifetime is picked up immediately.
	var store *session.Store
	apiClient := api.NewHTTPClient(c.APIBaseURL, func(ctx context.Context) string {
		return store.Token(ctx)
	}, log).WithTimeout(c.RequestTimeout)
	store = session.NewStore(apiClient, repo, device, tracker, log)

	app := &App{
		config:  c,
		log:     log,
		repo:    repo,
		device:  device,
		store:   store,
		tracker: tracker,
		reader:  bufio.NewReader(os.Stdin),
	}

	app.pipe = pipeline.New(apiClient, store, repo, device, app.captchaProvider(), tracker, log)

	return app, nil
}

// captchaProvider selects how CAPTCHA tokens are obtained. Without a site key
// gated submissions go out untokened and the backend decides; with one, the
// user pastes a token minted out of band (the web portal's widget).
func (a *App) captchaProvider() recaptcha.Provider {
	if a.config.RecaptchaSiteKey == "" {
		return recaptcha.Disabled{}
	}
	return recaptcha.FuncProvider(func(ctx context.Context, action string) (string, error) {
		return getSimpleText(a.reader, "Enter reCAPTCHA token for "+action, os.Stdout)
	})
}

func (a *App) Run(ctx context.Context) {
	defer a.repo.Close()

	if err := a.store.Restore(ctx); err != nil {
		a.log.Warn(ctx, "failed to restore session", "error", err)
	}

	// Reconcile the restored session in the background; the REPL is usable
	// immediately with the optimistic state.
	go func() {
		cctx, cancel := context.WithTimeout(ctx, api.DefaultTimeout)
		defer cancel()
		if err := a.store.CheckAuth(cctx); err != nil {
			a.log.Warn(cctx, "startup auth check failed", "error", err)
		}
	}()

	a.Root(ctx)
}

func (a *App) isLoggedIn() bool {
	return a.store.IsAuthenticated()
}

// afterLogin runs the post-authentication hooks shared by every login path:
// resubmitting a waiting-list form saved before the auth redirect.
func (a *App) afterLogin(ctx context.Context) {
	cctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	done, err := a.pipe.ResubmitPendingWaitingList(cctx)
	if err != nil {
		a.log.Warn(cctx, "failed to resubmit saved waiting-list form", "error", err)
		return
	}
	if done {
		printlnFn("Your saved waiting-list signup has been submitted.")
	}
}
