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
	"context"
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/launix-de/memvault/internal/mirror"
	"github.com/launix-de/memvault/vault"
)

// runMirror dispatches "mirror push|pull|list", backed by the S3 or Ceph
// backend selected by MEMVAULT_MIRROR_BACKEND (default "s3"); bucket and
// credentials come from the usual AWS_*/MEMVAULT_MIRROR_* environment
// variables rather than flags, matching readPassword's env-first style.
func runMirror(args []string, g Globals) error {
	if len(args) < 2 {
		return fmt.Errorf("usage: memvaultctl mirror <push|pull|list> <path> [key]")
	}
	sub, rest := args[0], args[1:]
	fs := flag.NewFlagSet("mirror", flag.ExitOnError)
	if err := fs.Parse(rest); err != nil {
		return err
	}

	m, err := mirrorFromEnv()
	if err != nil {
		return err
	}

	switch sub {
	case "push":
		if fs.NArg() != 2 {
			return fmt.Errorf("usage: memvaultctl mirror push <path> <key>")
		}
		v, err := vault.Open(fs.Arg(0), vault.WithMirror(m))
		if err != nil {
			return err
		}
		defer v.Close()
		if err := v.MirrorPush(context.Background(), fs.Arg(1)); err != nil {
			return err
		}
		if !g.Quiet {
			fmt.Println(okString(fmt.Sprintf("pushed %s to %s:%s", fs.Arg(0), m.Name(), fs.Arg(1))))
		}
	case "pull":
		if fs.NArg() != 2 {
			return fmt.Errorf("usage: memvaultctl mirror pull <key> <dst-path>")
		}
		// No vault handle is needed on this side: the destination file
		// doesn't exist yet, so Pull talks to the backend directly.
		if err := m.Pull(context.Background(), fs.Arg(0), fs.Arg(1)); err != nil {
			return err
		}
		if !g.Quiet {
			fmt.Println(okString(fmt.Sprintf("pulled %s:%s to %s", m.Name(), fs.Arg(0), fs.Arg(1))))
		}
	case "list":
		if fs.NArg() < 1 || fs.NArg() > 2 {
			return fmt.Errorf("usage: memvaultctl mirror list <path> [prefix]")
		}
		v, err := vault.Open(fs.Arg(0), vault.WithMirror(m))
		if err != nil {
			return err
		}
		defer v.Close()
		prefix := ""
		if fs.NArg() > 1 {
			prefix = fs.Arg(1)
		}
		objs, err := v.MirrorList(context.Background(), prefix)
		if err != nil {
			return err
		}
		for _, o := range objs {
			fmt.Printf("%s\t%d\t%d\n", o.Key, o.SizeBytes, o.LastModified)
		}
	default:
		return fmt.Errorf("unknown mirror subcommand: %s", sub)
	}
	return nil
}

// mirrorFromEnv builds the configured Mirror backend from environment
// variables; MEMVAULT_MIRROR_BACKEND selects "s3" (default) or "ceph".
func mirrorFromEnv() (mirror.Mirror, error) {
	backend := os.Getenv("MEMVAULT_MIRROR_BACKEND")
	bucket := os.Getenv("MEMVAULT_MIRROR_BUCKET")
	if bucket == "" {
		return nil, fmt.Errorf("MEMVAULT_MIRROR_BUCKET must be set")
	}
	switch backend {
	case "ceph":
		return mirror.NewCephMirror(mirror.CephConfig{
			UserName:    os.Getenv("MEMVAULT_MIRROR_CEPH_USER"),
			ClusterName: os.Getenv("MEMVAULT_MIRROR_CEPH_CLUSTER"),
			ConfFile:    os.Getenv("MEMVAULT_MIRROR_CEPH_CONF"),
			Pool:        bucket,
			Prefix:      os.Getenv("MEMVAULT_MIRROR_PREFIX"),
		}), nil
	default:
		return mirror.NewS3Mirror(mirror.S3Config{
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
			Region:          os.Getenv("AWS_REGION"),
			Endpoint:        os.Getenv("MEMVAULT_MIRROR_ENDPOINT"),
			Bucket:          bucket,
			Prefix:          os.Getenv("MEMVAULT_MIRROR_PREFIX"),
			ForcePathStyle:  os.Getenv("MEMVAULT_MIRROR_PATH_STYLE") != "",
		}), nil
	}
}
