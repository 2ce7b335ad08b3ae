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

// memvaultctl operates a single-file memvault: create/open it, put and
// search frames, run background maintenance, and inspect its health.
//
// Usage:
//
//	memvaultctl config                      Show effective configuration
//	memvaultctl init <path>                 Create a new empty vault file
//	memvaultctl put <path> <file...>        Ingest one or more files
//	memvaultctl find <path> <query>         Run a search
//	memvaultctl ask <path> <question>       Synthesize an answer context
//	memvaultctl timeline <path> <from> <to> List frames in a time window
//	memvaultctl commit <path>               Flush pending writes to disk
//	memvaultctl doctor <path>               Verify and optionally repair
//	memvaultctl stat <path>                 Report size/index accounting
//	memvaultctl lock <path>                 Encrypt the vault file in place
//	memvaultctl unlock <src> <dst>          Decrypt a locked vault file
//	memvaultctl serve <path>                Expose Prometheus metrics
//	memvaultctl repl <path>                 Interactive command shell
//	memvaultctl mirror push <path> <key>    Upload a snapshot to the configured mirror
//	memvaultctl mirror pull <key> <dst>     Download a snapshot from the configured mirror
//	memvaultctl mirror list <path> [prefix] List snapshots under a key prefix
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/dc0d/onexit"
)

var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	var (
		showVersion = flag.BoolP("version", "V", false, "Show version and exit")
		noColor     = flag.Bool("no-color", false, "Disable color output")
		quiet       = flag.BoolP("quiet", "q", false, "Suppress progress and informational output")
		jsonOut     = flag.Bool("json", false, "Output machine-readable JSON where supported")
	)
	flag.SetInterspersed(false)
	flag.Usage = printUsage

	flag.Parse()

	if *showVersion {
		fmt.Printf("memvaultctl %s (%s)\n", version, commit)
		os.Exit(0)
	}
	if os.Getenv("NO_COLOR") != "" {
		*noColor = true
	}

	globals := Globals{NoColor: *noColor, Quiet: *quiet, JSON: *jsonOut}
	initColors(globals.NoColor)
	onexit.Register(func() { flushColors() })

	args := flag.Args()
	if len(args) == 0 {
		flag.Usage()
		os.Exit(1)
	}

	cmd, rest := args[0], args[1:]
	var err error
	switch cmd {
	case "config":
		err = runConfig(rest, globals)
	case "init":
		err = runInit(rest, globals)
	case "put":
		err = runPut(rest, globals)
	case "find":
		err = runFind(rest, globals)
	case "ask":
		err = runAsk(rest, globals)
	case "timeline":
		err = runTimeline(rest, globals)
	case "commit":
		err = runCommit(rest, globals)
	case "doctor":
		err = runDoctor(rest, globals)
	case "stat":
		err = runStat(rest, globals)
	case "lock":
		err = runLock(rest, globals)
	case "unlock":
		err = runUnlock(rest, globals)
	case "serve":
		err = runServe(rest, globals)
	case "repl":
		err = runRepl(rest, globals)
	case "mirror":
		err = runMirror(rest, globals)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n", cmd)
		flag.Usage()
		os.Exit(1)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, errorColor(fmt.Sprintf("error: %v", err)))
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprint(os.Stderr, `memvaultctl - operate a single-file memvault

Usage:
  memvaultctl <command> [arguments] [flags]

Commands:
  config     Show or write out ~/.memvault/config.yaml defaults
  init       Create a new empty vault file
  put        Ingest one or more files as frames
  find       Run a search and print ranked hits
  ask        Synthesize a bounded answer context for a question
  timeline   List frames anchored within a time window
  commit     Flush pending writes (segments, WAL, footer/header)
  doctor     Verify checksums and optionally rebuild indexes
  stat       Report byte/segment/index accounting
  lock       Encrypt the vault file in place with a password
  unlock     Decrypt a locked vault file to a new path
  serve      Expose Prometheus metrics for a vault
  repl       Interactive command shell
  mirror     Push/pull/list vault snapshots on a configured S3/Ceph backend

Global flags:
  --json        Machine-readable JSON output where supported
  --no-color    Disable color output (respects NO_COLOR)
  -q, --quiet   Suppress progress bars and informational logging
  -V, --version Show version and exit

Run 'memvaultctl <command> --help' for command-specific flags.
`)
}
