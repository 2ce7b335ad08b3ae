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
	"encoding/json"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/launix-de/memvault/vault"
)

func runDoctor(args []string, g Globals) error {
	fs := flag.NewFlagSet("doctor", flag.ExitOnError)
	rebuildLex := fs.Bool("rebuild-lex-index", false, "Rebuild the lexical index from frame payload bytes")
	rebuildTime := fs.Bool("rebuild-time-index", false, "Rebuild the time index from frame payload bytes")
	rebuildVec := fs.Bool("rebuild-vec-index", false, "Clear the vector index (it cannot be recovered, only re-populated by Put/Update)")
	vacuum := fs.Bool("vacuum", false, "Report on (deferred) compaction of superseded/deleted payload bytes")
	dryRun := fs.Bool("dry-run", false, "Report findings without changing in-memory state")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: memvaultctl doctor <path>")
	}

	v, err := vault.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	report, err := v.Doctor(vault.DoctorOptions{
		RebuildLexIndex:  *rebuildLex,
		RebuildTimeIndex: *rebuildTime,
		RebuildVecIndex:  *rebuildVec,
		Vacuum:           *vacuum,
		DryRun:           *dryRun,
		Quiet:            g.Quiet,
	})
	if err != nil {
		return err
	}

	if !*dryRun {
		if err := v.Commit(); err != nil {
			return err
		}
	}

	if g.JSON {
		return json.NewEncoder(os.Stdout).Encode(report)
	}

	status := okString("checksum OK")
	if !report.ChecksumOK {
		status = errorColor("checksum MISMATCH")
	}
	fmt.Printf("%s\n", status)
	fmt.Printf("frames: %d active, %d superseded, %d deleted (%d total)\n",
		report.ActiveFrames, report.SupersededFrames, report.DeletedFrames, report.FrameCount)
	for _, note := range report.Notes {
		fmt.Println(warnString("note: " + note))
	}
	return nil
}
