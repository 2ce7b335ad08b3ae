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
	"os"

	"github.com/launix-de/memvault/internal/crypt"
)

func replaceFile(src, dst string) error {
	return os.Rename(src, dst)
}

// Lock commits any pending writes, closes the handle, and replaces the
// vault file in place with its encryption-capsule-wrapped form. The Vault
// must not be used again after Lock returns successfully; reopen the
// locked file via Unlock first.
func (v *Vault) Lock(password []byte) error {
	if err := v.Commit(); err != nil {
		return err
	}
	v.mu.Lock()
	path := v.path
	f := v.f
	v.mu.Unlock()

	if err := f.Close(); err != nil {
		return err
	}
	tmp := path + ".locking"
	if err := crypt.LockFile(path, tmp, password); err != nil {
		return err
	}
	return replaceFile(tmp, path)
}

// Unlock decrypts a locked vault file at srcPath into outPath without
// opening it; call Open(outPath) afterward.
func Unlock(srcPath, outPath string, password []byte) error {
	return crypt.UnlockFile(srcPath, outPath, password)
}
