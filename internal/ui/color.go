// Package ui holds the colored status output of the CLI. Everything goes to
// stderr so generated artifacts can be piped cleanly.
package ui

import (
	"os"

	"github.com/fatih/color"
)

var (
	red    = color.New(color.FgRed)
	yellow = color.New(color.FgYellow)
	green  = color.New(color.FgGreen)
	cyan   = color.New(color.FgCyan)
)

// Infof prints a cyan status line.
func Infof(format string, args ...any) {
	_, _ = cyan.Fprintf(os.Stderr, format+"\n", args...)
}

// Warnf prints a yellow warning line.
func Warnf(format string, args ...any) {
	_, _ = yellow.Fprintf(os.Stderr, "warning: "+format+"\n", args...)
}

// Errorf prints a red error line.
func Errorf(format string, args ...any) {
	_, _ = red.Fprintf(os.Stderr, "error: "+format+"\n", args...)
}

// Successf prints a green completion line.
func Successf(format string, args ...any) {
	_, _ = green.Fprintf(os.Stderr, format+"\n", args...)
}
