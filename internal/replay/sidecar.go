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

package replay

import (
	"os"
	"strings"

	"github.com/launix-de/memvault/internal/vaulterr"
)

// sidecarMagic distinguishes an active-session sidecar from the completed-
// session in-file segment, so a half-written sidecar is never mistaken for
// the main format (spec.md §4.10).
const sidecarMagic = "MV2ASES!"

// SidecarPath derives the sidecar path from the vault's file path by
// replacing a trailing ".mv2" with ".session" (or appending ".session" when
// the path has no ".mv2" suffix).
func SidecarPath(vaultPath string) string {
	return strings.TrimSuffix(vaultPath, ".mv2") + ".session"
}

// WriteSidecar persists the active session so it survives a process
// restart mid-recording.
func WriteSidecar(path string, s *Session) error {
	payload := EncodeSession(s)
	out := make([]byte, 0, len(sidecarMagic)+len(payload))
	out = append(out, sidecarMagic...)
	out = append(out, payload...)
	if err := os.WriteFile(path, out, 0o600); err != nil {
		return vaulterr.New(vaulterr.KindResource, "replay.WriteSidecar", err)
	}
	return nil
}

// ReadSidecar loads an active session sidecar, if one exists. A missing
// file is not an error: it returns (nil, nil).
func ReadSidecar(path string) (*Session, error) {
	buf, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, vaulterr.New(vaulterr.KindResource, "replay.ReadSidecar", err)
	}
	if len(buf) < len(sidecarMagic) || string(buf[:len(sidecarMagic)]) != sidecarMagic {
		return nil, vaulterr.Newf(vaulterr.KindFormat, "replay.ReadSidecar", "bad sidecar magic")
	}
	return DecodeSession(buf[len(sidecarMagic):])
}

// RemoveSidecar deletes the sidecar once its session has been folded into
// the main segment.
func RemoveSidecar(path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return vaulterr.New(vaulterr.KindResource, "replay.RemoveSidecar", err)
	}
	return nil
}
