// SPDX-License-Identifier: MIT
package termstyle

import (
	"github.com/liggitt/tabwriter"

	"github.com/skaphos/gitopen/internal/model"
)

const (
	Reset   = "\x1b[0m"
	Green   = "\x1b[32m"
	Brown   = "\x1b[33m"
	Red     = "\x1b[31m"
	Blue    = "\x1b[34m"
	Magenta = "\x1b[35m"
	Cyan    = "\x1b[36m"

	// Semantic aliases used by table output.
	OK    = Green
	Warn  = Brown
	Error = Red
	Info  = Blue
)

// Colorize wraps a value in ANSI escapes when color output is enabled.
func Colorize(enabled bool, value, color string) string {
	if !enabled || value == "" || color == "" {
		return value
	}
	// Hide ANSI sequences from tabwriter width calculations so columns align.
	esc := string([]byte{tabwriter.Escape})
	return esc + color + esc + value + esc + Reset + esc
}

// ProviderColor picks the color used for a provider tag. Unknown providers
// are shown as errors since no link can be built for them.
func ProviderColor(p model.Provider) string {
	switch p {
	case model.ProviderGitHub:
		return Info
	case model.ProviderGitLab:
		return Warn
	case model.ProviderBitbucket:
		return Cyan
	case model.ProviderAzure:
		return Magenta
	default:
		return Error
	}
}

// Provider colorizes a provider tag.
func Provider(enabled bool, p model.Provider) string {
	return Colorize(enabled, string(p), ProviderColor(p))
}
