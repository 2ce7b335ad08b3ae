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

	flag "github.com/spf13/pflag"

	"github.com/launix-de/memvault/vault"
)

func runCommit(args []string, g Globals) error {
	fs := flag.NewFlagSet("commit", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: memvaultctl commit <path>")
	}

	v, err := vault.Open(fs.Arg(0))
	if err != nil {
		return err
	}
	defer v.Close()

	if err := v.Commit(); err != nil {
		return err
	}
	if !g.Quiet {
		fmt.Println(okString("committed"))
	}
	return nil
}
