package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"

	"github.com/dmitrijs2005/loginflow/internal/client/models"
)

// readPassword is a test seam for term.ReadPassword.
// In tests you can replace it with a stub to avoid touching the terminal.
var readPassword = term.ReadPassword

// stdinIsTerminal reports whether stdin is an interactive terminal.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

// getSimpleText, getPassword and runForm are indirections used to facilitate
// testing. They point to interactive input helpers and can be swapped in tests.
var (
	getSimpleText = GetSimpleText
	getPassword   = GetPassword
	runForm       = runCredentialForm
)

var errUsernameRequired = errors.New("username is required")

// GetSimpleText prints a prompt to w and reads a single line of input from reader.
// The line is trimmed. If EOF occurs after some input was read, the partial
// line is returned.
//
// Example prompt format:
//
//	Prompt text
//	> _
func GetSimpleText(reader *bufio.Reader, prompt string, w io.Writer) (string, error) {
	if _, err := fmt.Fprint(w, prompt+"\n> "); err != nil {
		return "", err
	}
	line, err := reader.ReadString('\n')
	if err != nil {
		if errors.Is(err, io.EOF) && len(line) > 0 {
			return strings.TrimSpace(line), nil
		}
		return "", err
	}
	return strings.TrimSpace(line), nil
}

// GetPassword prints a password prompt to w and reads a password
// from the user's terminal without echo. A newline is printed after
// the read to keep the UI tidy.
func GetPassword(w io.Writer) ([]byte, error) {
	if _, err := fmt.Fprint(w, "Password: "); err != nil {
		return nil, err
	}
	pw, err := readPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(w)
	if err != nil {
		return nil, err
	}
	return pw, nil
}

// ReadSecretLine reads one line from reader and strips only the line
// terminator, so surrounding spaces in a password survive. A final line
// without a terminator is accepted.
func ReadSecretLine(reader *bufio.Reader) (string, error) {
	line, err := reader.ReadString('\n')
	if err != nil && !(errors.Is(err, io.EOF) && len(line) > 0) {
		return "", err
	}
	return strings.TrimRight(line, "\r\n"), nil
}

// requireUsername rejects usernames that are empty once trimmed.
func requireUsername(s string) error {
	if strings.TrimSpace(s) == "" {
		return errUsernameRequired
	}
	return nil
}

// runCredentialForm asks for the missing credentials with an interactive form.
func runCredentialForm(ctx context.Context, creds *models.Credentials) error {
	var fields []huh.Field
	if creds.Username == "" {
		fields = append(fields, huh.NewInput().
			Title("Username").
			Validate(requireUsername).
			Value(&creds.Username))
	}
	fields = append(fields, huh.NewInput().
		Title("Password").
		EchoMode(huh.EchoModePassword).
		Value(&creds.Password))

	return huh.NewForm(huh.NewGroup(fields...)).
		WithTheme(formTheme()).
		RunWithContext(ctx)
}

func formTheme() *huh.Theme {
	t := huh.ThemeBase()
	t.Focused.Title = lipgloss.NewStyle().Foreground(colorSuccess).Bold(true)
	t.Focused.ErrorIndicator = lipgloss.NewStyle().Foreground(colorError)
	t.Focused.ErrorMessage = lipgloss.NewStyle().Foreground(colorError)
	return t
}

// promptCredentials asks for credentials line by line. The password is read
// without echo on a terminal and as a plain line otherwise.
func (a *App) promptCredentials(username string) (models.Credentials, error) {
	creds := models.Credentials{Username: username}

	if creds.Username == "" {
		u, err := getSimpleText(a.in, "Username", a.errOut)
		if err != nil {
			return creds, err
		}
		if err := requireUsername(u); err != nil {
			return creds, err
		}
		creds.Username = u
	}

	if stdinIsTerminal() {
		pw, err := getPassword(a.errOut)
		if err != nil {
			return creds, err
		}
		creds.Password = string(pw)
		return creds, nil
	}

	if _, err := fmt.Fprint(a.errOut, "Password: "); err != nil {
		return creds, err
	}
	pw, err := ReadSecretLine(a.in)
	fmt.Fprintln(a.errOut)
	if err != nil {
		return creds, err
	}
	creds.Password = pw
	return creds, nil
}

// readCredentials gathers credentials for the login command.
func (a *App) readCredentials(ctx context.Context, username string, passwordStdin bool) (models.Credentials, error) {
	if passwordStdin {
		if err := requireUsername(username); err != nil {
			return models.Credentials{}, fmt.Errorf("%w: pass --username with --password-stdin", err)
		}
		pw, err := ReadSecretLine(a.in)
		if err != nil {
			return models.Credentials{}, fmt.Errorf("read password from stdin: %w", err)
		}
		return models.Credentials{Username: username, Password: pw}, nil
	}

	if stdinIsTerminal() {
		creds := models.Credentials{Username: username}
		if err := runForm(ctx, &creds); err != nil {
			return models.Credentials{}, err
		}
		if err := requireUsername(creds.Username); err != nil {
			return models.Credentials{}, err
		}
		return creds, nil
	}

	return a.promptCredentials(username)
}
