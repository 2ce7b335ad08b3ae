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
	"os"
	"path/filepath"

	flag "github.com/spf13/pflag"
	"github.com/schollz/progressbar/v3"

	"github.com/launix-de/memvault/vault"
)

func runPut(args []string, g Globals) error {
	fs := flag.NewFlagSet("put", flag.ExitOnError)
	track := fs.String("track", "", "Track to file the frame(s) under")
	title := fs.String("title", "", "Title for a single-file put (ignored for bulk ingest)")
	asText := fs.Bool("text", true, "Treat input bytes as text and normalize them before indexing")
	commit := fs.Bool("commit", true, "Commit after ingesting")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: memvaultctl put <path> <file...>")
	}
	vaultPath := fs.Arg(0)
	files := fs.Args()[1:]

	v, err := vault.Open(vaultPath, vault.WithTrack(*track))
	if err != nil {
		return err
	}
	defer v.Close()

	var bar *progressbar.ProgressBar
	if !g.Quiet && len(files) > 1 {
		bar = progressbar.NewOptions(len(files),
			progressbar.OptionSetDescription("ingesting"),
			progressbar.OptionShowCount(),
			progressbar.OptionSetWriter(os.Stderr),
		)
	}

	for _, path := range files {
		raw, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		t := *title
		if t == "" || len(files) > 1 {
			t = filepath.Base(path)
		}
		result, err := v.Put(raw, vault.PutOptions{
			URI:    "file://" + path,
			Title:  t,
			Track:  *track,
			AsText: *asText,
		})
		if err != nil {
			return err
		}
		if bar != nil {
			_ = bar.Add(1)
		} else if !g.Quiet {
			fmt.Println(okString(fmt.Sprintf("%s frame=%d decision=%v", path, result.FrameID, result.Decision)))
		}
	}
	if bar != nil {
		_ = bar.Finish()
	}

	if *commit {
		if err := v.Commit(); err != nil {
			return err
		}
	}
	return nil
}
