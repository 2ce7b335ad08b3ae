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
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	flag "github.com/spf13/pflag"

	"github.com/launix-de/memvault/vault"
)

const (
	replPrompt   = "\033[32mmemvault>\033[0m "
	replErrColor = "\033[31m"
	replReset    = "\033[0m"
)

// runRepl opens the vault and drives an interactive command shell, in the
// spirit of memcp's scm.Repl (scm/prompt.go): a readline loop with history
// that dispatches each line to the same vault operations the one-shot
// subcommands call, so the only thing that changes is the input source.
func runRepl(args []string, g Globals) error {
	fs := flag.NewFlagSet("repl", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: memvaultctl repl <path>")
	}

	v, err := vault.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            replPrompt,
		HistoryFile:       ".memvaultctl-history.tmp",
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer rl.Close()
	rl.CaptureExitSignal()

	fmt.Println("memvaultctl interactive shell. Commands: find, ask, timeline, stat, doctor, commit, exit")

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			continue
		} else if err == io.EOF {
			break
		} else if err != nil {
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			break
		}
		if err := dispatchReplLine(v, line); err != nil {
			fmt.Printf("%serror: %v%s\n", replErrColor, err, replReset)
		}
	}
	return nil
}

func dispatchReplLine(v *vault.Vault, line string) error {
	fields := strings.Fields(line)
	cmd, rest := fields[0], fields[1:]

	switch cmd {
	case "find":
		resp, err := v.Search(vault.SearchRequest{Query: strings.Join(rest, " "), TopK: 10, SnippetChars: 200})
		if err != nil {
			return err
		}
		for i, h := range resp.Hits {
			fmt.Printf("%d. %s  %s\n", i+1, h.Title, h.URI)
		}
		return nil
	case "ask":
		ctx, err := v.Ask(strings.Join(rest, " "), 8)
		if err != nil {
			return err
		}
		fmt.Println(ctx)
		return nil
	case "timeline":
		if len(rest) != 2 {
			return fmt.Errorf("usage: timeline <from-unix> <to-unix>")
		}
		from, err := strconv.ParseInt(rest[0], 10, 64)
		if err != nil {
			return err
		}
		to, err := strconv.ParseInt(rest[1], 10, 64)
		if err != nil {
			return err
		}
		for _, e := range v.Timeline(from, to) {
			fmt.Printf("frame=%d ts=%d\n", e.FrameID, e.Timestamp)
		}
		return nil
	case "stat":
		s, err := v.Stats()
		if err != nil {
			return err
		}
		fmt.Printf("frames=%d file_bytes=%d wal_bytes=%d\n", s.FrameCount, s.FileBytes, s.WALBytes)
		return nil
	case "doctor":
		report, err := v.Doctor(vault.DoctorOptions{})
		if err != nil {
			return err
		}
		fmt.Printf("checksum_ok=%v frames=%d\n", report.ChecksumOK, report.FrameCount)
		return nil
	case "commit":
		return v.Commit()
	default:
		return fmt.Errorf("unknown command %q", cmd)
	}
}
