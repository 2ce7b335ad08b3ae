//go:build !ceph

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

package mirror

import (
	"context"
	"io"

	"github.com/launix-de/memvault/internal/vaulterr"
)

// CephConfig mirrors the real backend's configuration shape so callers can
// build one without a build-tag switch at the call site.
type CephConfig struct {
	UserName    string
	ClusterName string
	ConfFile    string
	Pool        string
	Prefix      string
}

// CephMirror is a stand-in used when the binary is built without the ceph
// tag (librados cgo bindings are not always available). Every method
// reports KindResource rather than panicking, so a misconfigured deployment
// fails as an ordinary admission error instead of crashing the process.
type CephMirror struct {
	cfg CephConfig
}

func NewCephMirror(cfg CephConfig) *CephMirror {
	return &CephMirror{cfg: cfg}
}

func (m *CephMirror) Name() string { return "ceph" }

var errCephNotBuilt = vaulterr.Newf(vaulterr.KindResource, "mirror.CephMirror", "Ceph support not compiled in. Build with: go build -tags=ceph")

func (m *CephMirror) Push(ctx context.Context, key, localPath string) error {
	return errCephNotBuilt
}

func (m *CephMirror) PushReader(ctx context.Context, key string, r io.Reader, size int64) error {
	return errCephNotBuilt
}

func (m *CephMirror) Pull(ctx context.Context, key, localPath string) error {
	return errCephNotBuilt
}

func (m *CephMirror) List(ctx context.Context, prefix string) ([]Object, error) {
	return nil, errCephNotBuilt
}

func (m *CephMirror) Remove(ctx context.Context, key string) error {
	return errCephNotBuilt
}
