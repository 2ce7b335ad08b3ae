/*
Copyright (C) 2023-2026  Carl-Philip Hänsch

    This program is free software: you can redistribute it and/or modify
    it under the terms of the GNU General Public License as published by
    the Free Software Foundation, either version 3 of the License, or
    (at your option) any later version.

    This program is distributed in the hope that it will be useful,
    but WITHOUT ANY WARRANTY; without even the implied warranty of
    MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
    GNU General Public License for more details.

    You should have received a copy of the GNU General Public License
    along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

package main

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// Globals holds the flags every subcommand reads.
type Globals struct {
	NoColor bool
	Quiet   bool
	JSON    bool
}

var (
	okColor    = color.New(color.FgGreen)
	warnColor  = color.New(color.FgYellow)
	errColor   = color.New(color.FgRed, color.Bold)
	headColor  = color.New(color.FgCyan, color.Bold)
)

// initColors disables fatih/color output when stdout is not a terminal or
// the caller asked for --no-color/NO_COLOR, matching the teacher's
// TTY-detection idiom rather than always emitting escape codes.
func initColors(noColor bool) {
	if noColor || !isatty.IsTerminal(os.Stdout.Fd()) {
		color.NoColor = true
	}
}

func flushColors() {
	// fatih/color has no buffered writer to flush; present for symmetry
	// with onexit.Register's cleanup-hook pattern (storage/settings.go).
}

func errorColor(s string) string  { return errColor.Sprint(s) }
func okString(s string) string    { return okColor.Sprint(s) }
func warnString(s string) string  { return warnColor.Sprint(s) }
func headString(s string) string  { return headColor.Sprint(s) }
