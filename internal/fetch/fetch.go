// Package fetch downloads world saves from any go-getter source.
package fetch

import (
	"context"
	"log/slog"
	"net/url"
	"os"

	getter "github.com/hashicorp/go-getter"
	"github.com/pkg/errors"
)

// Fetcher downloads a source tree into a local directory.
type Fetcher struct {
	log *slog.Logger
	pwd string
}

// New returns a Fetcher that resolves relative local sources against the
// current working directory.
func New(log *slog.Logger) (*Fetcher, error) {
	pwd, err := os.Getwd()
	if err != nil {
		return nil, errors.Wrap(err, "get working directory")
	}
	return &Fetcher{log: log, pwd: pwd}, nil
}

// Fetch replaces dst with the contents of src. src is any address go-getter
// understands: a local path, an http(s) archive, "git::", "s3::" and so on.
// Local directories are copied rather than symlinked, so dst stays valid
// when src moves.
func (f *Fetcher) Fetch(ctx context.Context, src, dst string) error {
	if src == "" {
		return errors.New("fetch: empty source")
	}
	if dst == "" {
		return errors.New("fetch: empty destination")
	}

	if err := os.RemoveAll(dst); err != nil {
		return errors.Wrapf(err, "clear %s", dst)
	}

	f.log.Info("start downloading world", "src", src, "dst", dst)

	local, err := f.localDir(src)
	if err != nil {
		return err
	}
	if local != "" {
		if err := os.CopyFS(dst, os.DirFS(local)); err != nil {
			return errors.Wrapf(err, "copy %s", local)
		}
	} else {
		client := &getter.Client{
			Ctx:  ctx,
			Src:  src,
			Dst:  dst,
			Pwd:  f.pwd,
			Mode: getter.ClientModeAny,
		}
		if err := client.Get(); err != nil {
			return errors.Wrapf(err, "download %s", src)
		}
	}

	f.log.Info("done downloading world", "dst", dst)
	return nil
}

// localDir returns the filesystem path src resolves to when it names an
// existing local directory, and "" otherwise.
func (f *Fetcher) localDir(src string) (string, error) {
	detected, err := getter.Detect(src, f.pwd, getter.Detectors)
	if err != nil {
		return "", errors.Wrapf(err, "detect %s", src)
	}
	if _, subDir := getter.SourceDirSubdir(detected); subDir != "" {
		return "", nil
	}

	u, err := url.Parse(detected)
	if err != nil || u.Scheme != "file" {
		return "", nil
	}
	info, err := os.Stat(u.Path)
	if err != nil || !info.IsDir() {
		return "", nil
	}
	return u.Path, nil
}
