package publish

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog/log"

	"github.com/atlasdatatech/geoframe/dict"
)

const (
	TypeDir = "dir"

	ConfigKeyPath = "path"
)

var ErrName = errors.New("publish: artifact name must be a relative path inside the target")

func init() {
	Register(TypeDir, func(config dict.Dicter) (Publisher, error) {
		path, err := config.String(ConfigKeyPath, nil)
		if err != nil {
			return nil, err
		}
		return &Dir{Path: path}, nil
	})
}

// Dir writes artifacts below Path, creating directories as needed.
type Dir struct {
	Path string
}

func (d *Dir) Publish(ctx context.Context, name string, r io.Reader, contentType string) (string, error) {
	if !filepath.IsLocal(name) {
		return "", fmt.Errorf("%w: %q", ErrName, name)
	}
	dst := filepath.Join(d.Path, filepath.FromSlash(name))
	if err := os.MkdirAll(filepath.Dir(dst), 0755); err != nil {
		return "", err
	}

	// a failed copy leaves no partial file behind
	tmp, err := os.CreateTemp(filepath.Dir(dst), ".publish-*")
	if err != nil {
		return "", err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, readerWithContext{ctx, r})
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", err
	}
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", err
	}
	log.Debug().Str("path", dst).Str("content_type", contentType).Int64("bytes", n).Msg("published")
	return dst, nil
}

type readerWithContext struct {
	ctx context.Context
	r   io.Reader
}

func (r readerWithContext) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	return r.r.Read(p)
}
