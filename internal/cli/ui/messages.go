package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// Level is the severity of a message
type Level int

const (
	LevelError Level = iota
	LevelWarning
	LevelInfo
)

// Message describes a formatted status message
type Message struct {
	Level       Level
	Context     string
	Problem     string
	Suggestions []string
	Help        []string
	NoColor     bool
}

// Format renders the message.
//
// Example output:
//
//	✗ UNKNOWN MODEL: Colr
//	   Did you mean: Color?
//
//	   → See all models: enumbler list
func (m Message) Format() string {
	var b strings.Builder

	var head *color.Color
	var symbol string
	switch m.Level {
	case LevelWarning:
		head, symbol = newColor(m.NoColor, color.FgYellow, color.Bold), "!"
	case LevelInfo:
		head, symbol = newColor(m.NoColor, color.FgCyan, color.Bold), "i"
	default:
		head, symbol = newColor(m.NoColor, color.FgRed, color.Bold), "✗"
	}

	if m.Context != "" {
		head.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(m.Context), m.Problem)
	} else {
		head.Fprintf(&b, "%s %s\n", symbol, m.Problem)
	}

	if len(m.Suggestions) > 0 {
		newColor(m.NoColor, color.FgYellow).Fprintf(&b, "   Did you mean: %s?\n", strings.Join(m.Suggestions, ", "))
	}

	if len(m.Help) > 0 {
		b.WriteString("\n")
		cyan := newColor(m.NoColor, color.FgCyan)
		for _, h := range m.Help {
			cyan.Fprintf(&b, "   → %s\n", h)
		}
	}
	return b.String()
}

// Write prints the formatted message to w
func (m Message) Write(w io.Writer) {
	fmt.Fprint(w, m.Format())
}

// UnknownModel formats a lookup of a model that is not configured
func UnknownModel(name string, known []string, noColor bool) string {
	return Message{
		Context:     "unknown model",
		Problem:     name,
		Suggestions: Suggest(name, known),
		Help:        []string{"See all models: enumbler list"},
		NoColor:     noColor,
	}.Format()
}

// ConfigError formats a configuration failure
func ConfigError(err error, noColor bool) string {
	return Message{
		Context: "configuration error",
		Problem: err.Error(),
		Help:    []string{"View config: cat enumbler.yaml", "Get help: enumbler --help"},
		NoColor: noColor,
	}.Format()
}

// Warning formats a warning
func Warning(message string, noColor bool) string {
	return Message{Level: LevelWarning, Problem: message, NoColor: noColor}.Format()
}

// FormatSuccess formats a success line
func FormatSuccess(message string, noColor bool) string {
	return newColor(noColor, color.FgGreen, color.Bold).Sprintf("✓ %s", message)
}

// WriteSuccess writes a success line to w
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}
