package scan

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"io"
	"io/fs"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/codescan-dev/codescan/internal/model"
)

// Collector walks a codebase directory and produces one CodebaseResource
// per file, with content digests and MIME types computed concurrently.
//
// Design decision: Collection is two-phase (walk, then hash) because:
// 1. The walk is cheap and produces a stable, ordered resource list up front
// 2. Hashing dominates the cost and parallelizes cleanly over that list
// 3. Each goroutine writes only its own slot, so results stay ordered
type Collector struct {
	// workers is the maximum number of concurrent digest goroutines.
	workers int

	// maxFileSize is the size above which file contents are not read.
	// Oversized files keep their size metadata but get no digest or MIME
	// type.
	maxFileSize int64

	// logger is used for per-file warnings.
	logger *slog.Logger
}

// CollectorOption configures a Collector.
type CollectorOption func(*Collector)

// WithWorkers sets the number of concurrent digest workers.
func WithWorkers(n int) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithMaxFileSize sets the per-file content read cap in bytes.
func WithMaxFileSize(n int64) CollectorOption {
	return func(c *Collector) {
		if n > 0 {
			c.maxFileSize = n
		}
	}
}

// WithCollectorLogger sets a custom logger.
func WithCollectorLogger(logger *slog.Logger) CollectorOption {
	return func(c *Collector) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewCollector creates a Collector with defaults matching the application
// configuration defaults.
func NewCollector(opts ...CollectorOption) *Collector {
	c := &Collector{
		workers:     8,
		maxFileSize: 256 * 1024 * 1024,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.logger == nil {
		c.logger = slog.Default()
	}
	return c
}

// Collect walks root and returns one resource per file in walk (lexical)
// order. Symlinks are recorded without content; .git directories are
// skipped. A file that cannot be read is kept with empty digest fields so
// a single unreadable file never aborts collection.
func (c *Collector) Collect(ctx context.Context, root string) ([]model.CodebaseResource, error) {
	var resources []model.CodebaseResource
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == ".git" {
				return filepath.SkipDir
			}
			return nil
		}

		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)

		info, err := d.Info()
		if err != nil {
			return err
		}

		res := model.CodebaseResource{
			Path:      rel,
			Type:      model.ResourceFile,
			Name:      d.Name(),
			Extension: strings.ToLower(filepath.Ext(d.Name())),
			Size:      info.Size(),
			Tag:       resourceTag(rel),
		}
		if d.Type()&fs.ModeSymlink != 0 {
			res.Type = model.ResourceSymlink
		}
		resources = append(resources, res)
		return nil
	})
	if err != nil {
		return nil, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)
	for i := range resources {
		g.Go(func() error {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
			}

			res := &resources[i]
			if res.Type != model.ResourceFile {
				return nil
			}
			if res.Size > c.maxFileSize {
				c.logger.Warn("file exceeds size cap, skipping digest",
					"path", res.Path, "size", res.Size)
				return nil
			}

			sum, mimeType, err := digestFile(filepath.Join(root, filepath.FromSlash(res.Path)))
			if err != nil {
				c.logger.Warn("failed to digest file", "path", res.Path, "error", err)
				return nil
			}
			res.SHA256 = sum
			res.MimeType = mimeType
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return resources, nil
}

// digestFile computes the sha256 digest and sniffs the MIME type from the
// first 512 bytes in a single pass over the file.
func digestFile(path string) (sum, mimeType string, err error) {
	file, err := os.Open(path)
	if err != nil {
		return "", "", err
	}
	defer file.Close()

	head := make([]byte, 512)
	n, err := io.ReadFull(file, head)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", "", err
	}
	head = head[:n]
	mimeType = http.DetectContentType(head)

	hash := sha256.New()
	hash.Write(head)
	if _, err := io.Copy(hash, file); err != nil {
		return "", "", err
	}
	return hex.EncodeToString(hash.Sum(nil)), mimeType, nil
}

// resourceTag labels resources for deploy-to-develop mapping: files under
// the top-level from/ and to/ directories carry the matching tag.
func resourceTag(relPath string) string {
	first, _, found := strings.Cut(relPath, "/")
	if !found {
		return ""
	}
	switch first {
	case model.TagFrom:
		return model.TagFrom
	case model.TagTo:
		return model.TagTo
	}
	return ""
}
