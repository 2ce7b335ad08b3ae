//go:build ceph

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
	"os"
	"path"
	"strings"
	"sync"

	"github.com/ceph/go-ceph/rados"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// CephConfig configures a RADOS-backed mirror.
type CephConfig struct {
	UserName    string // e.g. "client.admin"
	ClusterName string // often "ceph"
	ConfFile    string // optional
	Pool        string
	Prefix      string
}

// CephMirror implements Mirror over a RADOS object pool. Requires building
// with -tags=ceph (librados cgo bindings); see ceph_stub.go otherwise.
type CephMirror struct {
	cfg CephConfig

	mu     sync.Mutex
	conn   *rados.Conn
	ioctx  *rados.IOContext
	opened bool
}

func NewCephMirror(cfg CephConfig) *CephMirror {
	return &CephMirror{cfg: cfg}
}

func (m *CephMirror) Name() string { return "ceph" }

func (m *CephMirror) ensureOpen() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opened {
		return nil
	}

	conn, err := rados.NewConnWithClusterAndUser(m.cfg.ClusterName, m.cfg.UserName)
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.CephMirror.ensureOpen", err)
	}
	if m.cfg.ConfFile != "" {
		if err := conn.ReadConfigFile(m.cfg.ConfFile); err != nil {
			return vaulterr.New(vaulterr.KindResource, "mirror.CephMirror.ensureOpen", err)
		}
	} else {
		_ = conn.ReadDefaultConfigFile()
	}
	if err := conn.Connect(); err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.CephMirror.ensureOpen", err)
	}
	ioctx, err := conn.OpenIOContext(m.cfg.Pool)
	if err != nil {
		conn.Shutdown()
		return vaulterr.New(vaulterr.KindResource, "mirror.CephMirror.ensureOpen", err)
	}

	m.conn = conn
	m.ioctx = ioctx
	m.opened = true
	return nil
}

func (m *CephMirror) obj(key string) string {
	return path.Join(strings.TrimSuffix(m.cfg.Prefix, "/"), key)
}

func (m *CephMirror) Push(ctx context.Context, key, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.CephMirror.Push", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.CephMirror.Push", err)
	}
	return m.PushReader(ctx, key, f, info.Size())
}

func (m *CephMirror) PushReader(ctx context.Context, key string, r io.Reader, size int64) error {
	if err := m.ensureOpen(); err != nil {
		return err
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.CephMirror.PushReader", err)
	}
	if err := m.ioctx.WriteFull(m.obj(key), data); err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.CephMirror.PushReader", err)
	}
	return nil
}

func (m *CephMirror) Pull(ctx context.Context, key, localPath string) error {
	if err := m.ensureOpen(); err != nil {
		return err
	}
	obj := m.obj(key)
	stat, err := m.ioctx.Stat(obj)
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.CephMirror.Pull", err)
	}
	data := make([]byte, stat.Size)
	if _, err := m.ioctx.Read(obj, data, 0); err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.CephMirror.Pull", err)
	}
	if err := os.WriteFile(localPath, data, 0o644); err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.CephMirror.Pull", err)
	}
	return nil
}

func (m *CephMirror) List(ctx context.Context, prefix string) ([]Object, error) {
	if err := m.ensureOpen(); err != nil {
		return nil, err
	}
	iter, err := m.ioctx.Iter()
	if err != nil {
		return nil, vaulterr.New(vaulterr.KindResource, "mirror.CephMirror.List", err)
	}
	defer iter.Close()

	full := m.obj(prefix)
	var out []Object
	for iter.Next() {
		name := iter.Value()
		if !strings.HasPrefix(name, full) {
			continue
		}
		stat, statErr := m.ioctx.Stat(name)
		var sz int64
		if statErr == nil {
			sz = int64(stat.Size)
		}
		out = append(out, Object{Key: name, SizeBytes: sz})
	}
	return out, nil
}

func (m *CephMirror) Remove(ctx context.Context, key string) error {
	if err := m.ensureOpen(); err != nil {
		return err
	}
	if err := m.ioctx.Delete(m.obj(key)); err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.CephMirror.Remove", err)
	}
	return nil
}
