package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/dmitrijs2005/loginflow/internal/client/client"
	"github.com/dmitrijs2005/loginflow/internal/client/config"
	"github.com/dmitrijs2005/loginflow/internal/client/services"
	"github.com/dmitrijs2005/loginflow/internal/client/session"
	"github.com/dmitrijs2005/loginflow/internal/filex"
	"github.com/dmitrijs2005/loginflow/internal/logging"
)

// Exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1 // login or profile failure
	ExitError   = 2 // usage, configuration, network or storage error
)

// Streams are the process's standard streams.
type Streams struct {
	In  io.Reader
	Out io.Writer
	Err io.Writer
}

// App wires configuration, the session store, the API client and the login
// flow for one command invocation.
type App struct {
	config *config.Config
	logger logging.Logger
	store  session.Store
	flow   *services.LoginFlow

	in     *bufio.Reader
	out    io.Writer
	errOut io.Writer

	closers []func() error
}

// NewApp builds an App from cfg. Status lines go to streams.Out, or to
// streams.Err when statusToStderr is set so that stdout carries only data.
func NewApp(ctx context.Context, cfg *config.Config, streams Streams, statusToStderr bool) (*App, error) {
	a := &App{
		config: cfg,
		in:     bufio.NewReader(streams.In),
		out:    streams.Out,
		errOut: streams.Err,
	}

	logger, err := a.openLogger()
	if err != nil {
		return nil, err
	}
	a.logger = logger

	store, err := a.openStore(ctx)
	if err != nil {
		_ = a.Close()
		return nil, err
	}
	a.store = store

	statusOut := streams.Out
	if statusToStderr {
		statusOut = streams.Err
	}

	api := client.New(cfg.APIURL, client.WithTimeout(cfg.RequestTimeout))
	a.flow = services.NewLoginFlow(api, store, newStatusLine(statusOut),
		services.WithLogger(logger),
		services.WithClearOnProfileFailure(cfg.ClearOnProfileFailure),
	)

	logger.Debug(ctx, "app initialised", "api_url", api.BaseURL(), "store", a.storeName(), "timeout", cfg.RequestTimeout)
	return a, nil
}

func (a *App) openLogger() (logging.Logger, error) {
	w := a.errOut
	if a.config.LogFile != "" {
		f, err := filex.OpenAppend(a.config.LogFile)
		if err != nil {
			return nil, fmt.Errorf("open log file: %w", err)
		}
		a.closers = append(a.closers, f.Close)
		w = f
	}

	l, err := logging.New(w, a.config.LogLevel)
	if err != nil {
		return nil, err
	}
	return l, nil
}

func (a *App) openStore(ctx context.Context) (session.Store, error) {
	if a.config.Ephemeral {
		s := session.NewMemoryStore()
		a.closers = append(a.closers, s.Close)
		return s, nil
	}

	if _, err := filex.EnsureParentDir(a.config.StorePath); err != nil {
		return nil, fmt.Errorf("create store directory: %w", err)
	}
	s, err := session.OpenSQLite(ctx, a.config.StorePath)
	if err != nil {
		return nil, err
	}
	a.closers = append(a.closers, s.Close)
	return s, nil
}

func (a *App) storeName() string {
	if a.config.Ephemeral {
		return "memory"
	}
	return a.config.StorePath
}

// Close releases the store and the log file, in reverse order of opening.
func (a *App) Close() error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			errs = append(errs, err)
		}
	}
	a.closers = nil
	return errors.Join(errs...)
}

// exitCodeFor maps a flow error to a process exit code.
func exitCodeFor(err error) int {
	var apiErr *client.APIError
	switch {
	case err == nil:
		return ExitOK
	case errors.Is(err, client.ErrUnavailable):
		return ExitError
	case errors.As(err, &apiErr),
		errors.Is(err, client.ErrMalformedResponse),
		errors.Is(err, services.ErrMissingAccessToken),
		errors.Is(err, services.ErrProfileUnavailable),
		errors.Is(err, services.ErrNotLoggedIn),
		errors.Is(err, services.ErrNoRefreshToken),
		errors.Is(err, services.ErrSubmitInProgress):
		return ExitFailure
	default:
		return ExitError
	}
}
