package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"github.com/mattn/go-isatty"
)

// statusKind is the severity shown in check lines and branch status cells.
type statusKind string

const (
	statusInfo  statusKind = "INFO"
	statusOK    statusKind = "OK"
	statusWarn  statusKind = "WARN"
	statusError statusKind = "ERROR"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiGreen  = "\x1b[32m"
	ansiYellow = "\x1b[33m"
	ansiBlue   = "\x1b[34m"
)

const (
	statusLabelWidth = 22
	statusIndent     = "  "
)

var statusColors = map[statusKind]string{
	statusOK:    ansiGreen,
	statusWarn:  ansiYellow,
	statusError: ansiRed,
}

func (k statusKind) color() string {
	if c, ok := statusColors[k]; ok {
		return c
	}
	return ansiBlue
}

// paint wraps text in the colour of kind when colorize is set.
func paint(kind statusKind, text string, colorize bool) string {
	if !colorize || text == "" {
		return text
	}
	return kind.color() + text + ansiReset
}

// renderStatusLine formats "  Label:   [KIND] message" for the check command.
func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	status := "[" + string(kind) + "]"
	if message != "" {
		status += " " + message
	}
	return paint(kind, fmt.Sprintf("%s%-*s %s", statusIndent, statusLabelWidth, label+":", status), colorize)
}

// renderSectionHeader returns the title line and an underline sized to it.
func renderSectionHeader(title string, colorize bool) []string {
	line := "== " + strings.TrimSpace(title) + " =="
	rule := strings.Repeat("-", utf8.RuneCountInString(line))
	return []string{paint(statusInfo, line, colorize), paint(statusInfo, rule, colorize)}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
