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

package vault

import (
	"context"

	"github.com/launix-de/memvault/internal/mirror"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// MirrorPush commits any pending writes, then uploads the file's current
// bytes to the mirror backend attached via WithMirror under key. Returns an
// error if no mirror was configured (SPEC_FULL.md §11, optional S3/Ceph
// snapshot exporter).
func (v *Vault) MirrorPush(ctx context.Context, key string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mirror == nil {
		return vaulterr.Newf(vaulterr.KindLifecycle, "vault.MirrorPush", "no mirror configured; open the vault with vault.WithMirror")
	}
	if err := v.commitLocked(); err != nil {
		return err
	}
	if err := v.f.Sync(); err != nil {
		return vaulterr.New(vaulterr.KindResource, "vault.MirrorPush", err)
	}
	return v.mirror.Push(ctx, key, v.path)
}

// MirrorPull downloads the blob under key from the mirror backend to
// localPath, leaving this handle's own open file untouched. Use vault.Open
// on localPath afterward to inspect or restore the fetched snapshot.
func (v *Vault) MirrorPull(ctx context.Context, key string, localPath string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mirror == nil {
		return vaulterr.Newf(vaulterr.KindLifecycle, "vault.MirrorPull", "no mirror configured; open the vault with vault.WithMirror")
	}
	return v.mirror.Pull(ctx, key, localPath)
}

// MirrorList enumerates snapshots previously pushed under prefix.
func (v *Vault) MirrorList(ctx context.Context, prefix string) ([]mirror.Object, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	if v.mirror == nil {
		return nil, vaulterr.Newf(vaulterr.KindLifecycle, "vault.MirrorList", "no mirror configured; open the vault with vault.WithMirror")
	}
	return v.mirror.List(ctx, prefix)
}
