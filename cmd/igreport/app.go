package main

import (
	"context"
	stderrors "errors"
	"fmt"
	"os"

	"igreport/pkg/auth"
	"igreport/pkg/cache"
	"igreport/pkg/config"
	"igreport/pkg/history"
	"igreport/pkg/instagram"
	"igreport/pkg/logger"
	"igreport/pkg/pacing"
	"igreport/pkg/ratelimit"
	"igreport/pkg/scanner"
	"igreport/pkg/stats"
	"igreport/pkg/ui"
)

// PasswordEnv supplies the login password without a prompt
const PasswordEnv = "IGREPORT_LOGIN_PASSWORD"

// sessionSource resolves stored sessions. *auth.Manager satisfies it.
type sessionSource interface {
	Session(username string) (*instagram.Session, error)
}

// app is the wiring shared by the scan commands
type app struct {
	cfg      *config.Config
	log      logger.Logger
	client   *instagram.Client
	cache    cache.Cache
	history  history.Store
	sessions sessionSource
	notifier *ui.Notifier
	password func() (string, error)
}

func newApp(ctx context.Context, cfg *config.Config) (*app, error) {
	log := logger.GetLogger()

	limiter, err := ratelimit.New(cfg.Scan.Limiter, cfg.Scan.RequestsPerMinute)
	if err != nil {
		return nil, err
	}

	client := instagram.NewClient(cfg.Scan.RequestTimeout, log,
		instagram.WithBaseURL(cfg.Instagram.BaseURL),
		instagram.WithLimiter(limiter),
		instagram.WithPageSize(cfg.Scan.PageSize),
	)
	if cfg.Instagram.UserAgent != "" {
		client.SetHeader("User-Agent", cfg.Instagram.UserAgent)
	}

	c, err := cache.New(cfg.Cache, log)
	if err != nil {
		return nil, err
	}

	store, err := history.Open(ctx, cfg.History, log)
	if err != nil {
		c.Close()
		return nil, err
	}

	a := &app{
		cfg:      cfg,
		log:      log,
		client:   client,
		cache:    c,
		history:  store,
		notifier: ui.NewNotifier(cfg.Notifications, ui.Output, ui.PlatformSender()),
		password: promptPassword,
	}

	if manager, err := auth.NewManager(); err != nil {
		logger.LogDegraded(log, "stored sessions unavailable", err)
	} else {
		a.sessions = manager
	}

	return a, nil
}

// Close releases the cache and history connections
func (a *app) Close() {
	if err := a.cache.Close(); err != nil {
		a.log.WithError(err).Warn("Failed to close cache")
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.log.WithError(err).Warn("Failed to close history")
		}
	}
}

// newScanner builds a scanner reporting to view, which may be nil
func (a *app) newScanner(view ui.ScanView) (*scanner.Scanner, error) {
	loc, err := a.cfg.Location()
	if err != nil {
		return nil, err
	}

	pacerOpts := []pacing.Option{pacing.WithLogger(a.log)}
	observers := []scanner.Observer{a.notifications()}
	if view != nil {
		pacerOpts = append(pacerOpts, pacing.WithListener(ui.Listener(view)))
		observers = append(observers, view)
	}

	return scanner.New(a.client, pacing.NewRandom(a.cfg.Scan.PacingMin, a.cfg.Scan.PacingMax, pacerOpts...),
		scanner.WithLogger(a.log),
		scanner.WithObserver(scanner.Observers(observers...)),
		scanner.WithCompetitorPacer(pacing.NewFixed(a.cfg.Scan.CompetitorDelay, pacing.WithLogger(a.log))),
		scanner.WithCache(a.cache, a.cfg.Cache.TTL),
		scanner.WithAccumulatorOptions(stats.WithLocation(loc)),
	), nil
}

func (a *app) notifications() scanner.Observer {
	return scanner.Hooks{
		OnFinished: func(username string, result *stats.ProfileStats, err error) {
			if err != nil {
				a.notifier.ScanFailed(username, err)
				return
			}
			a.notifier.ScanComplete(result)
		},
	}
}

// request builds a scan request, attaching whichever session applies:
// a named stored account, the configured cookie session, the default
// stored account, or a password login when none of those exist.
func (a *app) request(username, account string, limit int) (scanner.Request, error) {
	req := scanner.Request{Username: username, PostLimit: limit}

	session, err := a.session(account)
	if err != nil {
		return req, err
	}
	req.Session = session

	if session == nil && a.cfg.Instagram.LoginUser != "" {
		password, err := a.password()
		if err != nil {
			return req, fmt.Errorf("failed to read password: %w", err)
		}
		req.Login = &instagram.Credentials{Username: a.cfg.Instagram.LoginUser, Password: password}
	}

	return req, nil
}

// Session resolves sessions for the MCP handlers the way scan commands do
func (a *app) Session(account string) (*instagram.Session, error) {
	return a.session(account)
}

func (a *app) session(account string) (*instagram.Session, error) {
	if account != "" {
		if a.sessions == nil {
			return nil, auth.ErrStoreUnavailable
		}
		session, err := a.sessions.Session(account)
		if err != nil {
			return nil, fmt.Errorf("account %s: %w (see 'igreport auth list')", account, err)
		}
		a.log.WithField("account", account).Info("Using stored session")
		return session, nil
	}

	if a.cfg.HasSession() {
		return &instagram.Session{
			SessionID: a.cfg.Instagram.SessionID,
			CSRFToken: a.cfg.Instagram.CSRFToken,
			UserAgent: a.cfg.Instagram.UserAgent,
		}, nil
	}

	if a.sessions == nil {
		return nil, nil
	}
	session, err := a.sessions.Session("")
	if err != nil {
		if !stderrors.Is(err, auth.ErrSessionNotFound) {
			logger.LogDegraded(a.log, "stored session lookup failed", err)
		}
		return nil, nil
	}
	a.log.WithField("account", session.Username).Info("Using default stored session")
	return session, nil
}

// promptPassword reads the login password from the environment or the terminal
func promptPassword() (string, error) {
	if p := os.Getenv(PasswordEnv); p != "" {
		return p, nil
	}
	return newPrompter().Secret("Instagram password: ")
}

// progressView picks the console progress display for the global flags
func progressView() ui.ScanView {
	if quiet {
		return nil
	}
	return ui.NewProgressDisplay(ui.Output, verbose)
}
