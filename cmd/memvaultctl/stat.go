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

	"github.com/docker/go-units"
	flag "github.com/spf13/pflag"

	"github.com/launix-de/memvault/vault"
)

func runStat(args []string, g Globals) error {
	fs := flag.NewFlagSet("stat", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: memvaultctl stat <path>")
	}

	v, err := vault.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	s, err := v.Stats()
	if err != nil {
		return err
	}

	if g.JSON {
		return json.NewEncoder(os.Stdout).Encode(s)
	}

	fmt.Printf("%s %s (%s payload)\n", headString("file:"), units.HumanSize(float64(s.FileBytes)), units.HumanSize(float64(s.PayloadBytes)))
	fmt.Printf("frames: %d active, %d superseded, %d deleted (%d total)\n", s.ActiveFrames, s.SupersededFrames, s.DeletedFrames, s.FrameCount)
	fmt.Printf("segments: lex %s, vec %s, time %s, wal %s\n",
		units.HumanSize(float64(s.LexSegmentBytes)), units.HumanSize(float64(s.VecSegmentBytes)),
		units.HumanSize(float64(s.TimeSegmentBytes)), units.HumanSize(float64(s.WALBytes)))
	fmt.Printf("mesh: %d nodes, %d edges  sketch: %d entries  memory cards: %d\n",
		s.MeshNodes, s.MeshEdges, s.SketchEntries, s.MemoryCards)
	return nil
}
