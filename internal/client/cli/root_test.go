package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrijs2005/loginflow/internal/apitest"
	"github.com/dmitrijs2005/loginflow/internal/client/client"
	"github.com/dmitrijs2005/loginflow/internal/client/services"
	"github.com/dmitrijs2005/loginflow/internal/client/session"
)

var alice = apitest.User{ID: 7, Username: "alice", Email: "a@b.com", Password: "secret"}

type cliResult struct {
	code   int
	stdout string
	stderr string
}

// cliEnv runs commands against one API and one session database.
type cliEnv struct {
	t     *testing.T
	api   *apitest.Server
	store string
}

func newCLIEnv(t *testing.T, users ...apitest.User) *cliEnv {
	t.Helper()
	stubTerminal(t, false)
	return &cliEnv{
		t:     t,
		api:   apitest.NewServer(t, users...),
		store: filepath.Join(t.TempDir(), "session.db"),
	}
}

func (e *cliEnv) run(stdin string, args ...string) cliResult {
	e.t.Helper()
	base := []string{"--api-url", e.api.URL, "--store", e.store, "--env-file", ""}
	return runCLI(e.t, stdin, append(base, args...)...)
}

func runCLI(t *testing.T, stdin string, args ...string) cliResult {
	t.Helper()
	var out, errb bytes.Buffer
	code := Execute(context.Background(), args, Streams{In: strings.NewReader(stdin), Out: &out, Err: &errb})
	return cliResult{code: code, stdout: out.String(), stderr: errb.String()}
}

func TestLogin_PasswordStdin_Success(t *testing.T) {
	env := newCLIEnv(t, alice)

	res := env.run("secret\n", "login", "--username", "alice", "--password-stdin")
	require.Equal(t, ExitOK, res.code, res.stderr)

	assert.Contains(t, res.stdout, services.MsgSigningIn)
	assert.Contains(t, res.stdout, services.MsgFetchingProfile)
	assert.Contains(t, res.stdout, "Welcome, a@b.com")

	// The session survives the process.
	res = env.run("", "status", "--json")
	require.Equal(t, ExitOK, res.code, res.stderr)

	var report map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &report))
	assert.Equal(t, true, report["logged_in"])
	assert.Equal(t, true, report["has_refresh_token"])
	assert.Equal(t, "alice", report["subject"])
	assert.Equal(t, env.api.URL, report["api_url"])
	assert.Equal(t, env.store, report["store"])
}

func TestLogin_LinePrompts(t *testing.T) {
	env := newCLIEnv(t, alice)

	res := env.run("  alice \nsecret\n", "login")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, "Welcome, a@b.com")
	assert.Contains(t, res.stderr, "Username")
}

func TestLogin_Rejected(t *testing.T) {
	env := newCLIEnv(t, alice)

	res := env.run("wrong\n", "login", "-u", "alice", "--password-stdin")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stdout, "No active account found with the given credentials")

	res = env.run("", "status")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stdout, "Logged in:     no")
}

func TestLogin_ServerErrorWithoutJSON(t *testing.T) {
	env := newCLIEnv(t, alice)
	env.api.Override(apitest.LoginPath, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	res := env.run("secret\n", "login", "-u", "alice", "--password-stdin")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stdout, "Login failed (500)")
}

func TestLogin_NetworkError(t *testing.T) {
	env := newCLIEnv(t, alice)
	env.api.Close()

	res := env.run("secret\n", "login", "-u", "alice", "--password-stdin", "--timeout", "2s")
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stdout, services.MsgNetworkError)
	assert.Contains(t, res.stderr, "login request failed", "the cause goes to the diagnostic log")
}

func TestLogin_LogFile(t *testing.T) {
	env := newCLIEnv(t, alice)
	env.api.Close()
	logPath := filepath.Join(t.TempDir(), "loginflow.log")

	res := env.run("secret\n", "login", "-u", "alice", "--password-stdin", "--log-file", logPath)
	assert.Equal(t, ExitError, res.code)
	assert.NotContains(t, res.stderr, "login request failed")

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), "login request failed")
	assert.Contains(t, string(data), "attempt=")
}

func TestLogin_BlankUsernamePromptMakesNoRequest(t *testing.T) {
	env := newCLIEnv(t, alice)

	res := env.run("   \nsecret\n", "login")
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "username is required")
	assert.Zero(t, env.api.Hits(apitest.LoginPath))
}

func TestLogin_PasswordStdinNeedsUsername(t *testing.T) {
	env := newCLIEnv(t, alice)

	res := env.run("secret\n", "login", "--password-stdin")
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "pass --username with --password-stdin")
	assert.Zero(t, env.api.Hits(apitest.LoginPath))
}

func TestLogin_ClearOnProfileFailure(t *testing.T) {
	env := newCLIEnv(t, alice)
	env.api.Override(apitest.ProfilePath, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	res := env.run("secret\n", "login", "-u", "alice", "--password-stdin")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stdout, services.MsgProfileFailed)
	assert.Equal(t, ExitOK, env.run("", "status").code, "tokens are kept by default")

	res = env.run("secret\n", "login", "-u", "alice", "--password-stdin", "--clear-on-profile-failure")
	assert.Equal(t, ExitFailure, res.code)
	assert.Equal(t, ExitFailure, env.run("", "status").code, "tokens are cleared on request")
}

func TestProfile(t *testing.T) {
	env := newCLIEnv(t, alice)

	res := env.run("", "profile")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stdout, services.MsgNotLoggedIn)
	assert.Zero(t, env.api.Hits(apitest.ProfilePath))

	require.Equal(t, ExitOK, env.run("secret\n", "login", "-u", "alice", "--password-stdin").code)

	res = env.run("", "profile")
	assert.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stdout, "Welcome, a@b.com")

	res = env.run("", "profile", "--json")
	require.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stderr, "Welcome, a@b.com", "status moves to stderr with --json")

	var p map[string]any
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &p))
	assert.Equal(t, "a@b.com", p["email"])
	assert.Equal(t, float64(7), p["id"])
}

func TestRefreshAndLogout(t *testing.T) {
	env := newCLIEnv(t, alice)

	res := env.run("", "refresh")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stdout, services.MsgNoRefreshToken)

	require.Equal(t, ExitOK, env.run("secret\n", "login", "-u", "alice", "--password-stdin").code)

	res = env.run("", "refresh")
	assert.Equal(t, ExitOK, res.code, res.stderr)
	assert.Contains(t, res.stdout, services.MsgSessionRefreshed)
	assert.Equal(t, 1, env.api.Hits(apitest.RefreshPath))

	res = env.run("", "logout")
	assert.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stdout, services.MsgLoggedOut)

	res = env.run("", "status")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stdout, "Refresh token: no")
}

func TestREPL_LoginThenProfile(t *testing.T) {
	env := newCLIEnv(t, alice)

	res := env.run("login\nalice\nsecret\nprofile\nstatus\nlogout\nexit\n", "repl")
	require.Equal(t, ExitOK, res.code, res.stderr)

	assert.Contains(t, res.stdout, "loginflow> ")
	assert.Contains(t, res.stdout, "loginflow (alice)> ")
	assert.Contains(t, res.stdout, "Welcome, a@b.com")
	assert.Contains(t, res.stdout, "Subject:       alice")
	assert.Contains(t, res.stdout, services.MsgLoggedOut)
	assert.Contains(t, res.stdout, "Bye!")
	assert.Equal(t, 2, env.api.Hits(apitest.ProfilePath))
}

func TestEphemeralStore(t *testing.T) {
	env := newCLIEnv(t, alice)

	res := env.run("secret\n", "--ephemeral", "login", "-u", "alice", "--password-stdin")
	require.Equal(t, ExitOK, res.code, res.stderr)

	res = env.run("", "--ephemeral", "status")
	assert.Equal(t, ExitFailure, res.code)
	assert.Contains(t, res.stdout, "Store:         memory")

	_, err := os.Stat(env.store)
	assert.True(t, errors.Is(err, os.ErrNotExist), "nothing is written to disk")
}

func TestFlagsOverrideEnvironment(t *testing.T) {
	env := newCLIEnv(t, alice)
	t.Setenv("LOGINFLOW_API_URL", "http://127.0.0.1:1")

	res := env.run("secret\n", "login", "-u", "alice", "--password-stdin")
	assert.Equal(t, ExitOK, res.code, res.stderr)
}

func TestEnvironmentConfiguresStore(t *testing.T) {
	env := newCLIEnv(t, alice)
	storePath := filepath.Join(t.TempDir(), "nested", "env.db")
	t.Setenv("LOGINFLOW_STORE", storePath)

	res := runCLI(t, "secret\n", "--api-url", env.api.URL, "--env-file", "", "login", "-u", "alice", "--password-stdin")
	require.Equal(t, ExitOK, res.code, res.stderr)

	st, err := session.OpenSQLite(context.Background(), storePath)
	require.NoError(t, err)
	defer st.Close()
	pair, err := session.LoadTokens(context.Background(), st)
	require.NoError(t, err)
	assert.NotEmpty(t, pair.Access)
}

func TestConfigFile(t *testing.T) {
	env := newCLIEnv(t, alice)
	cfgPath := filepath.Join(t.TempDir(), "config.json")
	body := fmt.Sprintf(`{"api_url": %q, "store_path": %q}`, env.api.URL, env.store)
	require.NoError(t, os.WriteFile(cfgPath, []byte(body), 0o600))

	res := runCLI(t, "secret\n", "--config", cfgPath, "--env-file", "", "login", "-u", "alice", "--password-stdin")
	require.Equal(t, ExitOK, res.code, res.stderr)
	assert.Equal(t, ExitOK, env.run("", "status").code)
}

func TestUsageErrors(t *testing.T) {
	res := runCLI(t, "", "--no-such-flag")
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "unknown flag")

	res = runCLI(t, "", "login", "extra-arg")
	assert.Equal(t, ExitError, res.code)

	res = runCLI(t, "", "--env-file", "", "--store", filepath.Join(t.TempDir(), "s.db"), "--log-level", "loud", "status")
	assert.Equal(t, ExitError, res.code)
	assert.Contains(t, res.stderr, "loud")
}

func TestVersion(t *testing.T) {
	res := runCLI(t, "", "version")
	assert.Equal(t, ExitOK, res.code)
	assert.Contains(t, res.stdout, "Build version: ")

	res = runCLI(t, "", "version", "--json")
	assert.Equal(t, ExitOK, res.code)
	var v map[string]string
	require.NoError(t, json.Unmarshal([]byte(res.stdout), &v))
	assert.Contains(t, v, "commit")
}

func TestExitCodeFor(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{nil, ExitOK},
		{fmt.Errorf("x: %w", client.ErrUnavailable), ExitError},
		{fmt.Errorf("%w: %w", services.ErrLoginRejected, &client.APIError{StatusCode: 401}), ExitFailure},
		{&client.APIError{StatusCode: 400}, ExitFailure},
		{client.ErrMalformedResponse, ExitFailure},
		{services.ErrMissingAccessToken, ExitFailure},
		{services.ErrProfileUnavailable, ExitFailure},
		{services.ErrNotLoggedIn, ExitFailure},
		{services.ErrNoRefreshToken, ExitFailure},
		{services.ErrSubmitInProgress, ExitFailure},
		{errors.New("disk full"), ExitError},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, exitCodeFor(tt.err), "%v", tt.err)
	}
}

func TestFormatStatusHuman(t *testing.T) {
	exp := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	out := formatStatusHuman(statusReport{
		APIURL: "http://api",
		Store:  "memory",
		SessionInfo: services.SessionInfo{
			LoggedIn:  true,
			UserID:    "42",
			ExpiresAt: &exp,
			Expired:   true,
		},
	})

	assert.Equal(t, `API:           http://api
Store:         memory
Logged in:     yes
Refresh token: no
User ID:       42
Expires:       2026-01-02T03:04:05Z (expired)`, out)
}
