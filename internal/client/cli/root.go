package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dmitrijs2005/loginflow/internal/client/config"
)

// rootOptions holds the global flags and the exit code chosen by the
// command that ran.
type rootOptions struct {
	configFile            string
	envFile               string
	apiURL                string
	storePath             string
	ephemeral             bool
	timeout               time.Duration
	logLevel              string
	logFile               string
	clearOnProfileFailure bool

	streams  Streams
	exitCode int
}

// Execute runs the command line given by args and returns the process exit code.
func Execute(ctx context.Context, args []string, streams Streams) int {
	root, opts := newRootCommand(streams)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(streams.Err, "Error:", err)
		return ExitError
	}
	return opts.exitCode
}

func newRootCommand(streams Streams) (*cobra.Command, *rootOptions) {
	o := &rootOptions{streams: streams}

	root := &cobra.Command{
		Use:   config.AppName,
		Short: "Log in to a JWT-protected API from the terminal",
		Long: `loginflow signs in to a REST API, keeps the returned access and refresh
tokens in a local session store, and greets you with your profile.

Settings are read from defaults, then --config (JSON), then .env and the
environment, then flags; later sources win.

Environment Variables:
  LOGINFLOW_API_URL                   API base URL (default: http://localhost:8000)
  LOGINFLOW_STORE                     Session database path
  LOGINFLOW_EPHEMERAL                 Keep the session in memory only
  LOGINFLOW_TIMEOUT                   Per-request timeout, e.g. 10s
  LOGINFLOW_LOG_LEVEL                 debug, info, warn or error
  LOGINFLOW_LOG_FILE                  Write diagnostics to this file
  LOGINFLOW_CLEAR_ON_PROFILE_FAILURE  Log out when the profile cannot be fetched`,
		SilenceErrors: true,
		SilenceUsage:  true,
	}
	root.SetIn(streams.In)
	root.SetOut(streams.Out)
	root.SetErr(streams.Err)

	pf := root.PersistentFlags()
	pf.StringVar(&o.configFile, "config", "", "JSON config file")
	pf.StringVar(&o.envFile, "env-file", ".env", "dotenv file to load if present")
	pf.StringVar(&o.apiURL, "api-url", "", "API base URL (overrides LOGINFLOW_API_URL)")
	pf.StringVar(&o.storePath, "store", "", "session database path (overrides LOGINFLOW_STORE)")
	pf.BoolVar(&o.ephemeral, "ephemeral", false, "keep the session in memory only")
	pf.DurationVar(&o.timeout, "timeout", 0, "per-request timeout (overrides LOGINFLOW_TIMEOUT)")
	pf.StringVar(&o.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&o.logFile, "log-file", "", "write diagnostics to this file instead of stderr")
	pf.BoolVar(&o.clearOnProfileFailure, "clear-on-profile-failure", false, "log out when the profile cannot be fetched after login")

	root.AddCommand(
		newLoginCommand(o),
		newProfileCommand(o),
		newRefreshCommand(o),
		newLogoutCommand(o),
		newStatusCommand(o),
		newREPLCommand(o),
		newVersionCommand(o),
	)
	return root, o
}

// loadConfig layers the flags that were set explicitly over config.LoadConfig.
func (o *rootOptions) loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.LoadConfig(config.Options{ConfigFile: o.configFile, EnvFile: o.envFile})
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	if flags.Changed("api-url") {
		cfg.APIURL = o.apiURL
	}
	if flags.Changed("store") {
		cfg.StorePath = o.storePath
	}
	if flags.Changed("ephemeral") {
		cfg.Ephemeral = o.ephemeral
	}
	if flags.Changed("timeout") {
		cfg.RequestTimeout = o.timeout
	}
	if flags.Changed("log-level") {
		cfg.LogLevel = o.logLevel
	}
	if flags.Changed("log-file") {
		cfg.LogFile = o.logFile
	}
	if flags.Changed("clear-on-profile-failure") {
		cfg.ClearOnProfileFailure = o.clearOnProfileFailure
	}
	return cfg, nil
}

// run builds an App for cmd, hands it to fn and records fn's exit code.
// Errors building the App are returned to cobra and end in ExitError.
func (o *rootOptions) run(cmd *cobra.Command, statusToStderr bool, fn func(ctx context.Context, a *App) int) error {
	cfg, err := o.loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	app, err := NewApp(ctx, cfg, o.streams, statusToStderr)
	if err != nil {
		return err
	}
	defer func() {
		if err := app.Close(); err != nil {
			fmt.Fprintln(o.streams.Err, "Error:", err)
		}
	}()

	o.exitCode = fn(ctx, app)
	return nil
}
