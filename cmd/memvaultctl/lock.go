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
	"bufio"
	"fmt"
	"os"
	"strings"

	flag "github.com/spf13/pflag"

	"github.com/launix-de/memvault/vault"
)

func runLock(args []string, g Globals) error {
	fs := flag.NewFlagSet("lock", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: memvaultctl lock <path>")
	}

	v, err := vault.Open(fs.Arg(0))
	if err != nil {
		return err
	}

	password, err := readPassword("password: ")
	if err != nil {
		v.Close()
		return err
	}

	if err := v.Lock(password); err != nil {
		return err
	}
	if !g.Quiet {
		fmt.Println(okString("locked"))
	}
	return nil
}

func runUnlock(args []string, g Globals) error {
	fs := flag.NewFlagSet("unlock", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: memvaultctl unlock <src> <dst>")
	}

	password, err := readPassword("password: ")
	if err != nil {
		return err
	}

	if err := vault.Unlock(fs.Arg(0), fs.Arg(1), password); err != nil {
		return err
	}
	if !g.Quiet {
		fmt.Println(okString("unlocked"))
	}
	return nil
}

// readPassword reads one line from stdin. It does not suppress terminal
// echo (no terminal-control dependency is part of this module's stack);
// callers piping a password in via a file or MEMVAULTCTL_PASSWORD-style
// redirection avoid the echo entirely.
func readPassword(prompt string) ([]byte, error) {
	if env := os.Getenv("MEMVAULTCTL_PASSWORD"); env != "" {
		return []byte(env), nil
	}
	fmt.Fprint(os.Stderr, prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		return nil, err
	}
	return []byte(strings.TrimRight(line, "\r\n")), nil
}
