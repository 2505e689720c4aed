package cli

import (
	"os"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Output modes.
const (
	ModeAuto  = "auto"
	ModeText  = "text"
	ModePlain = "plain"
	ModeJSON  = "json"
)

// Styles holds the lipgloss styles used for terminal output.
type Styles struct {
	Error   lipgloss.Style
	Warning lipgloss.Style
	Success lipgloss.Style
	Header  lipgloss.Style
	Muted   lipgloss.Style
}

// DefaultStyles returns the standard style set.
func DefaultStyles() *Styles {
	return &Styles{
		Error:   lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		Warning: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		Success: lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
		Header:  lipgloss.NewStyle().Bold(true),
		Muted:   lipgloss.NewStyle().Foreground(lipgloss.Color("8")),
	}
}

// effectiveMode resolves "auto" by checking whether stdout is a terminal.
func effectiveMode(mode string) string {
	if mode != ModeAuto && mode != "" {
		return mode
	}
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return ModeText
	}
	return ModePlain
}
