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
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/launix-de/memvault/internal/vaulterr"
)

// S3Config configures an S3 (or S3-compatible, e.g. MinIO) mirror backend.
type S3Config struct {
	AccessKeyID     string
	SecretAccessKey string
	Region          string
	Endpoint        string // custom endpoint for S3-compatible storage
	Bucket          string
	Prefix          string
	ForcePathStyle  bool // required by MinIO and similar
}

// S3Mirror implements Mirror over an S3-compatible bucket.
type S3Mirror struct {
	cfg S3Config

	mu     sync.Mutex
	client *s3.Client
	opened bool
}

// NewS3Mirror constructs a mirror; the client connects lazily on first use.
func NewS3Mirror(cfg S3Config) *S3Mirror {
	return &S3Mirror{cfg: cfg}
}

func (m *S3Mirror) Name() string { return "s3" }

func (m *S3Mirror) ensureOpen(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.opened {
		return nil
	}

	var opts []func(*config.LoadOptions) error
	if m.cfg.Region != "" {
		opts = append(opts, config.WithRegion(m.cfg.Region))
	}
	if m.cfg.AccessKeyID != "" && m.cfg.SecretAccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(m.cfg.AccessKeyID, m.cfg.SecretAccessKey, ""),
		))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.S3Mirror.ensureOpen", err)
	}

	var s3Opts []func(*s3.Options)
	if m.cfg.Endpoint != "" {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.BaseEndpoint = aws.String(m.cfg.Endpoint) })
	}
	if m.cfg.ForcePathStyle {
		s3Opts = append(s3Opts, func(o *s3.Options) { o.UsePathStyle = true })
	}

	m.client = s3.NewFromConfig(awsCfg, s3Opts...)
	m.opened = true
	return nil
}

func (m *S3Mirror) fullKey(key string) string {
	pfx := strings.TrimSuffix(m.cfg.Prefix, "/")
	if pfx == "" {
		return key
	}
	return pfx + "/" + key
}

func (m *S3Mirror) Push(ctx context.Context, key, localPath string) error {
	f, err := os.Open(localPath)
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.S3Mirror.Push", err)
	}
	defer f.Close()
	info, err := f.Stat()
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.S3Mirror.Push", err)
	}
	return m.PushReader(ctx, key, f, info.Size())
}

func (m *S3Mirror) PushReader(ctx context.Context, key string, r io.Reader, size int64) error {
	if err := m.ensureOpen(ctx); err != nil {
		return err
	}
	_, err := m.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(m.cfg.Bucket),
		Key:           aws.String(m.fullKey(key)),
		Body:          r,
		ContentLength: aws.Int64(size),
	})
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.S3Mirror.PushReader", err)
	}
	return nil
}

func (m *S3Mirror) Pull(ctx context.Context, key, localPath string) error {
	if err := m.ensureOpen(ctx); err != nil {
		return err
	}
	resp, err := m.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(m.fullKey(key)),
	})
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.S3Mirror.Pull", err)
	}
	defer resp.Body.Close()

	out, err := os.Create(localPath)
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.S3Mirror.Pull", err)
	}
	defer out.Close()
	if _, err := io.Copy(out, resp.Body); err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.S3Mirror.Pull", err)
	}
	return nil
}

func (m *S3Mirror) List(ctx context.Context, prefix string) ([]Object, error) {
	if err := m.ensureOpen(ctx); err != nil {
		return nil, err
	}
	var out []Object
	paginator := s3.NewListObjectsV2Paginator(m.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(m.cfg.Bucket),
		Prefix: aws.String(m.fullKey(prefix)),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, vaulterr.New(vaulterr.KindResource, "mirror.S3Mirror.List", err)
		}
		for _, obj := range page.Contents {
			var sz int64
			if obj.Size != nil {
				sz = *obj.Size
			}
			var mtime int64
			if obj.LastModified != nil {
				mtime = obj.LastModified.Unix()
			}
			out = append(out, Object{Key: aws.ToString(obj.Key), SizeBytes: sz, LastModified: mtime})
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].LastModified > out[j].LastModified })
	return out, nil
}

func (m *S3Mirror) Remove(ctx context.Context, key string) error {
	if err := m.ensureOpen(ctx); err != nil {
		return err
	}
	_, err := m.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(m.cfg.Bucket),
		Key:    aws.String(m.fullKey(key)),
	})
	if err != nil {
		return vaulterr.New(vaulterr.KindResource, "mirror.S3Mirror.Remove", fmt.Errorf("%s: %w", key, err))
	}
	return nil
}
