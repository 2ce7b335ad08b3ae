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
	"strconv"
	"strings"
	"time"

	flag "github.com/spf13/pflag"

	"github.com/launix-de/memvault/vault"
)

func runFind(args []string, g Globals) error {
	fs := flag.NewFlagSet("find", flag.ExitOnError)
	topK := fs.Int("top", 10, "Maximum number of hits to return")
	scope := fs.String("scope", "", "Restrict results to a track/scope prefix")
	snippet := fs.Int("snippet-chars", 200, "Snippet length in characters")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: memvaultctl find <path> <query...>")
	}
	vaultPath := fs.Arg(0)
	query := strings.Join(fs.Args()[1:], " ")

	v, err := vault.Open(vaultPath)
	if err != nil {
		return err
	}
	defer v.Close()

	resp, err := v.Search(vault.SearchRequest{
		Query: query, TopK: *topK, Scope: *scope, SnippetChars: *snippet,
	})
	if err != nil {
		return err
	}

	if g.JSON {
		return json.NewEncoder(os.Stdout).Encode(resp)
	}

	if len(resp.Hits) == 0 {
		fmt.Println(warnString("no hits"))
		return nil
	}
	for i, h := range resp.Hits {
		fmt.Printf("%s %s  %s\n", headString(strconv.Itoa(i+1)+"."), h.Title, h.URI)
		for _, snip := range h.Snippets {
			fmt.Printf("    %s\n", snip.Text)
		}
	}
	return nil
}

func runAsk(args []string, g Globals) error {
	fs := flag.NewFlagSet("ask", flag.ExitOnError)
	topK := fs.Int("top", 8, "Number of documents to fold into the answer context")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 2 {
		return fmt.Errorf("usage: memvaultctl ask <path> <question...>")
	}
	vaultPath := fs.Arg(0)
	question := strings.Join(fs.Args()[1:], " ")

	v, err := vault.Open(vaultPath)
	if err != nil {
		return err
	}
	defer v.Close()

	ctx, err := v.Ask(question, *topK)
	if err != nil {
		return err
	}
	fmt.Println(ctx)
	return nil
}

func runTimeline(args []string, g Globals) error {
	fs := flag.NewFlagSet("timeline", flag.ExitOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 3 {
		return fmt.Errorf("usage: memvaultctl timeline <path> <from-unix> <to-unix>")
	}
	vaultPath := fs.Arg(0)
	from, err := strconv.ParseInt(fs.Arg(1), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid from timestamp: %w", err)
	}
	to, err := strconv.ParseInt(fs.Arg(2), 10, 64)
	if err != nil {
		return fmt.Errorf("invalid to timestamp: %w", err)
	}

	v, err := vault.Open(vaultPath)
	if err != nil {
		return err
	}
	defer v.Close()

	entries := v.Timeline(from, to)
	if g.JSON {
		return json.NewEncoder(os.Stdout).Encode(entries)
	}
	for _, e := range entries {
		fmt.Printf("%s  frame=%d\n", time.Unix(e.Timestamp, 0).UTC().Format(time.RFC3339), e.FrameID)
	}
	return nil
}
