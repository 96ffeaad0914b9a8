package export

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// copyStats counts what a copy produced.
type copyStats struct {
	files atomic.Int64
	bytes atomic.Int64
}

// copyTree copies the directories and regular files below src into dst.
// Symlinks and special files are skipped. At most limit files are copied concurrently.
func copyTree(ctx context.Context, src, dst string, limit int) (files int, bytes int64, err error) {
	var stats copyStats

	g, gctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}

	walkErr := filepath.WalkDir(src, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := gctx.Err(); err != nil {
			return err
		}

		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)

		switch {
		case d.IsDir():
			return os.MkdirAll(target, 0755)
		case d.Type().IsRegular():
			g.Go(func() error {
				n, err := copyFile(path, target)
				if err != nil {
					return err
				}
				stats.files.Add(1)
				stats.bytes.Add(n)
				return nil
			})
			return nil
		default:
			slog.Debug("Skipping non-regular entry", "path", rel, "mode", d.Type().String())
			return nil
		}
	})

	waitErr := g.Wait()
	if walkErr != nil {
		return 0, 0, fmt.Errorf("failed to copy %s: %w", src, walkErr)
	}
	if waitErr != nil {
		return 0, 0, fmt.Errorf("failed to copy %s: %w", src, waitErr)
	}
	return int(stats.files.Load()), stats.bytes.Load(), nil
}

// copyFile copies one regular file, preserving its permission bits.
func copyFile(src, dst string) (_ int64, err error) {
	in, err := os.Open(src)
	if err != nil {
		return 0, err
	}
	defer func() { _ = in.Close() }()

	info, err := in.Stat()
	if err != nil {
		return 0, err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm()|0200)
	if err != nil {
		return 0, err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return io.Copy(out, in)
}

// copyAssets copies every file of assets into dst and returns the count.
func copyAssets(assets fs.FS, dst string) (int, error) {
	count := 0
	err := fs.WalkDir(assets, ".", func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		target := filepath.Join(dst, filepath.FromSlash(path))
		if d.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !d.Type().IsRegular() {
			return nil
		}

		data, err := fs.ReadFile(assets, path)
		if err != nil {
			return err
		}
		if err := os.WriteFile(target, data, 0644); err != nil {
			return err
		}
		count++
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to copy viewer assets: %w", err)
	}
	return count, nil
}
