package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
}

func (f *fakeExec) isLoggedIn(context.Context) bool { return f.loggedIn }
func (f *fakeExec) Login(context.Context) error {
	f.calls = append(f.calls, "login")
	f.loggedIn = true
	return nil
}
func (f *fakeExec) Profile(context.Context) error { f.calls = append(f.calls, "profile"); return nil }
func (f *fakeExec) Refresh(context.Context) error { f.calls = append(f.calls, "refresh"); return nil }
func (f *fakeExec) Status(context.Context) error  { f.calls = append(f.calls, "status"); return nil }
func (f *fakeExec) Logout(context.Context) error {
	f.calls = append(f.calls, "logout")
	f.loggedIn = false
	return nil
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"me",
		"refresh",
		"status",
		"foobar",
		"logout",
		"exit",
		"profile",
	}, "\n")

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func(context.Context) string { return " (s)" }, rdr(input), &out)

	assert.Equal(t, []string{"login", "profile", "refresh", "status", "logout"}, exec.calls)

	text := out.String()
	assert.Contains(t, text, "loginflow (s)> ")
	assert.Contains(t, text, "Available commands: login, status, exit")
	assert.Contains(t, text, "Available commands: profile, refresh, status, logout, login, exit")
	assert.Contains(t, text, "Unknown command: foobar")
	assert.Contains(t, text, "Bye!")
}

func TestRunREPL_StopsOnEOF(t *testing.T) {
	exec := &fakeExec{loggedIn: true}
	var out bytes.Buffer
	runREPL(context.Background(), exec, func(context.Context) string { return "" }, rdr("status"), &out)

	assert.Equal(t, []string{"status"}, exec.calls, "a final line without newline still runs")
	assert.NotContains(t, out.String(), "Bye!")
}

func TestRunREPL_StopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	var out bytes.Buffer
	runREPL(ctx, exec, func(context.Context) string { return "" }, rdr("login\n"), &out)

	assert.Empty(t, exec.calls)
}
