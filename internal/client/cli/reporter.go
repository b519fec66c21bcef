package cli

import (
	"fmt"
	"io"
	"sync"

	"github.com/charmbracelet/lipgloss"

	"github.com/dmitrijs2005/loginflow/internal/client/services"
)

// Status colours.
var (
	colorError   = lipgloss.Color("#dc2626") // Red-600
	colorSuccess = lipgloss.Color("#16a34a") // Green-600
)

// statusLine renders services.Status values, one line each, in the error or
// success colour. Colour is dropped automatically when w is not a terminal.
type statusLine struct {
	mu     sync.Mutex
	w      io.Writer
	errSty lipgloss.Style
	okSty  lipgloss.Style
}

func newStatusLine(w io.Writer) *statusLine {
	r := lipgloss.NewRenderer(w)
	return &statusLine{
		w:      w,
		errSty: r.NewStyle().Foreground(colorError).Bold(true),
		okSty:  r.NewStyle().Foreground(colorSuccess),
	}
}

func (s *statusLine) Report(st services.Status) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sty := s.okSty
	if st.IsError {
		sty = s.errSty
	}
	fmt.Fprintln(s.w, sty.Render(st.Message))
}
