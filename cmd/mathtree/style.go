package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)
	resultStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
	labelStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("33"))
	exprStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
)

// caret renders a marker under column col of an expression echoed after a
// prompt of width w.
func caret(w, col int) string {
	if col < 1 {
		col = 1
	}
	return strings.Repeat(" ", w+col-1) + errorStyle.Render("^")
}
