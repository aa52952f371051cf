package docker

import (
	"archive/tar"
	"bufio"
	"compress/gzip"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"strings"
)

// Overlay whiteout markers as written into image layer tarballs. A file
// named ".wh.<name>" deletes <name> from lower layers; the special
// ".wh..wh..opq" entry hides everything the lower layers placed in its
// directory.
const (
	whiteoutPrefix = ".wh."
	opaqueWhiteout = ".wh..wh..opq"
)

// ErrNoImage is returned when the input directory holds no image archive.
var ErrNoImage = errors.New("no docker image archive found")

// LocateImage finds the image archive inside an input directory. Exactly
// one .tar, .tar.gz or .tgz file must be present.
func LocateImage(dir string) (string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return "", fmt.Errorf("failed to read input directory: %w", err)
	}

	var candidates []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := strings.ToLower(entry.Name())
		if strings.HasSuffix(name, ".tar") || strings.HasSuffix(name, ".tar.gz") || strings.HasSuffix(name, ".tgz") {
			candidates = append(candidates, entry.Name())
		}
	}

	switch len(candidates) {
	case 0:
		return "", fmt.Errorf("%w in %s", ErrNoImage, dir)
	case 1:
		return filepath.Join(dir, candidates[0]), nil
	default:
		return "", fmt.Errorf("multiple image archives found in %s: %s", dir, strings.Join(candidates, ", "))
	}
}

// ImageInfo describes the image an extraction unpacked.
type ImageInfo struct {
	// RepoTags are the repository tags recorded in the image manifest,
	// such as "acme/app:1.0". OCI layouts may record none.
	RepoTags []string `json:"repo_tags"`

	// Layers are the layer archive names in application order.
	Layers []string `json:"layers"`
}

// Extractor unpacks saved container images.
type Extractor struct {
	// maxExtractSize caps the total bytes written during one image
	// extraction, outer archive and layers combined. Guards against
	// decompression bombs.
	maxExtractSize int64

	// logger is used for per-layer progress.
	logger *slog.Logger
}

// ExtractorOption configures an Extractor.
type ExtractorOption func(*Extractor)

// WithMaxExtractSize sets the total extraction byte cap.
func WithMaxExtractSize(n int64) ExtractorOption {
	return func(e *Extractor) {
		if n > 0 {
			e.maxExtractSize = n
		}
	}
}

// WithExtractorLogger sets a custom logger.
func WithExtractorLogger(logger *slog.Logger) ExtractorOption {
	return func(e *Extractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// NewExtractor creates an Extractor with defaults matching the
// application configuration defaults.
func NewExtractor(opts ...ExtractorOption) *Extractor {
	e := &Extractor{
		maxExtractSize: 4 * 1024 * 1024 * 1024,
		logger:         slog.Default(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// ExtractImage unpacks the image archive at imagePath into dest. The
// scratch directory receives the raw archive contents (manifests and
// layer tarballs) and can be discarded once extraction returns.
//
// Design decision: extraction is two-phase (unpack the outer archive to
// scratch, then apply layers from scratch files) rather than streamed.
// The manifest that fixes layer order may sit anywhere in the outer tar,
// so a streaming reader cannot know which entries are layers until it
// has seen the whole archive. Unpacking first keeps layer application a
// simple ordered loop over regular files.
func (e *Extractor) ExtractImage(ctx context.Context, imagePath, dest, scratch string) (*ImageInfo, error) {
	budget := e.maxExtractSize

	if err := e.applyArchive(ctx, imagePath, scratch, &budget, false); err != nil {
		return nil, fmt.Errorf("failed to unpack image archive: %w", err)
	}

	info, layerPaths, err := readImageManifest(scratch)
	if err != nil {
		return nil, err
	}

	for i, layerPath := range layerPaths {
		e.logger.Debug("applying image layer",
			"layer", info.Layers[i], "index", i+1, "total", len(layerPaths))
		if err := e.applyArchive(ctx, layerPath, dest, &budget, true); err != nil {
			return nil, fmt.Errorf("failed to apply layer %s: %w", info.Layers[i], err)
		}
	}
	return info, nil
}

// dockerManifest is one entry of the docker-save manifest.json array.
type dockerManifest struct {
	Config   string   `json:"Config"`
	RepoTags []string `json:"RepoTags"`
	Layers   []string `json:"Layers"`
}

// ociDescriptor is a content-addressed reference inside an OCI layout.
type ociDescriptor struct {
	MediaType string `json:"mediaType"`
	Digest    string `json:"digest"`
}

type ociIndex struct {
	Manifests []ociDescriptor `json:"manifests"`
}

type ociManifest struct {
	Layers []ociDescriptor `json:"layers"`
}

// readImageManifest reads the unpacked archive's manifest and resolves
// the ordered list of layer file paths. The docker-save layout takes
// precedence since docker also writes an OCI index alongside it.
func readImageManifest(scratch string) (*ImageInfo, []string, error) {
	data, err := os.ReadFile(filepath.Join(scratch, "manifest.json"))
	switch {
	case err == nil:
		return readDockerManifest(scratch, data)
	case errors.Is(err, fs.ErrNotExist):
	default:
		return nil, nil, fmt.Errorf("failed to read image manifest: %w", err)
	}

	data, err = os.ReadFile(filepath.Join(scratch, "index.json"))
	switch {
	case err == nil:
		return readOCIIndex(scratch, data)
	case errors.Is(err, fs.ErrNotExist):
		return nil, nil, errors.New("archive holds neither a docker-save manifest.json nor an OCI index.json")
	default:
		return nil, nil, fmt.Errorf("failed to read image index: %w", err)
	}
}

func readDockerManifest(scratch string, data []byte) (*ImageInfo, []string, error) {
	var manifests []dockerManifest
	if err := json.Unmarshal(data, &manifests); err != nil {
		return nil, nil, fmt.Errorf("failed to decode manifest.json: %w", err)
	}
	if len(manifests) == 0 {
		return nil, nil, errors.New("manifest.json lists no images")
	}

	manifest := manifests[0]
	info := &ImageInfo{RepoTags: manifest.RepoTags, Layers: manifest.Layers}
	layerPaths := make([]string, 0, len(manifest.Layers))
	for _, layer := range manifest.Layers {
		layerPath, err := securePath(scratch, layer)
		if err != nil {
			return nil, nil, err
		}
		layerPaths = append(layerPaths, layerPath)
	}
	return info, layerPaths, nil
}

func readOCIIndex(scratch string, data []byte) (*ImageInfo, []string, error) {
	var index ociIndex
	if err := json.Unmarshal(data, &index); err != nil {
		return nil, nil, fmt.Errorf("failed to decode index.json: %w", err)
	}
	if len(index.Manifests) == 0 {
		return nil, nil, errors.New("index.json lists no manifests")
	}

	manifestPath, err := blobPath(scratch, index.Manifests[0].Digest)
	if err != nil {
		return nil, nil, err
	}
	manifestData, err := os.ReadFile(manifestPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to read image manifest blob: %w", err)
	}
	var manifest ociManifest
	if err := json.Unmarshal(manifestData, &manifest); err != nil {
		return nil, nil, fmt.Errorf("failed to decode image manifest blob: %w", err)
	}

	info := &ImageInfo{}
	var layerPaths []string
	for _, layer := range manifest.Layers {
		layerPath, err := blobPath(scratch, layer.Digest)
		if err != nil {
			return nil, nil, err
		}
		layerPaths = append(layerPaths, layerPath)
		info.Layers = append(info.Layers, layer.Digest)
	}
	return info, layerPaths, nil
}

// blobPath maps an OCI digest like "sha256:<hex>" to its blob file.
func blobPath(scratch, digest string) (string, error) {
	algo, hex, found := strings.Cut(digest, ":")
	if !found || algo == "" || hex == "" {
		return "", fmt.Errorf("malformed blob digest %q", digest)
	}
	return securePath(scratch, path.Join("blobs", algo, hex))
}

// applyArchive unpacks one tarball (gzipped or plain) into dest. With
// whiteouts enabled the archive is treated as an image layer: whiteout
// entries delete paths placed by earlier layers instead of creating
// files.
func (e *Extractor) applyArchive(ctx context.Context, archivePath, dest string, budget *int64, whiteouts bool) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("failed to open archive: %w", err)
	}
	defer file.Close()

	reader, err := maybeGzip(file)
	if err != nil {
		return fmt.Errorf("failed to read archive header: %w", err)
	}

	tr := tar.NewReader(reader)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		hdr, err := tr.Next()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read archive entry: %w", err)
		}

		target, err := securePath(dest, hdr.Name)
		if err != nil {
			return err
		}

		if whiteouts {
			if applied, err := applyWhiteout(dest, target, hdr.Name); err != nil {
				return err
			} else if applied {
				continue
			}
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, 0750); err != nil {
				return fmt.Errorf("failed to create directory: %w", err)
			}
		case tar.TypeReg:
			*budget -= hdr.Size
			if *budget < 0 {
				return fmt.Errorf("image exceeds the %d byte extraction cap", e.maxExtractSize)
			}
			if err := writeArchiveFile(target, hdr.FileInfo().Mode(), tr); err != nil {
				return err
			}
		case tar.TypeSymlink:
			if err := replaceWithLink(target, hdr.Linkname, os.Symlink); err != nil {
				return err
			}
		case tar.TypeLink:
			linkTarget, err := securePath(dest, hdr.Linkname)
			if err != nil {
				return err
			}
			if err := replaceWithLink(target, linkTarget, os.Link); err != nil {
				return err
			}
		default:
			// Device nodes and FIFOs carry no analyzable content.
		}
	}
}

// applyWhiteout handles overlay whiteout entries. It reports whether the
// entry was a whiteout and has been consumed.
func applyWhiteout(dest, target, name string) (bool, error) {
	base := path.Base(name)
	if base == opaqueWhiteout {
		dir := filepath.Dir(target)
		if err := removeDirContents(dir); err != nil {
			return false, fmt.Errorf("failed to apply opaque whiteout: %w", err)
		}
		return true, nil
	}
	if strings.HasPrefix(base, whiteoutPrefix) {
		victim := filepath.Join(filepath.Dir(target), strings.TrimPrefix(base, whiteoutPrefix))
		if err := os.RemoveAll(victim); err != nil {
			return false, fmt.Errorf("failed to apply whiteout: %w", err)
		}
		return true, nil
	}
	return false, nil
}

// removeDirContents clears a directory without removing the directory
// itself. A directory that does not exist yet is already clear.
func removeDirContents(dir string) error {
	entries, err := os.ReadDir(dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if err := os.RemoveAll(filepath.Join(dir, entry.Name())); err != nil {
			return err
		}
	}
	return nil
}

// writeArchiveFile writes one regular file from the archive, replacing
// whatever an earlier layer put at the same path.
func writeArchiveFile(target string, mode fs.FileMode, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to replace existing path: %w", err)
	}

	// Keep the image's permission bits but guarantee the analysis
	// process can read what it just wrote.
	file, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, mode.Perm()|0400)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := io.Copy(file, r); err != nil {
		file.Close()
		return fmt.Errorf("failed to write file contents: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("failed to close file: %w", err)
	}
	return nil
}

// replaceWithLink creates a symlink or hardlink, replacing whatever an
// earlier layer put at the same path.
func replaceWithLink(target, linkname string, link func(oldname, newname string) error) error {
	if err := os.MkdirAll(filepath.Dir(target), 0750); err != nil {
		return fmt.Errorf("failed to create parent directory: %w", err)
	}
	if err := os.RemoveAll(target); err != nil {
		return fmt.Errorf("failed to replace existing path: %w", err)
	}
	if err := link(linkname, target); err != nil {
		return fmt.Errorf("failed to create link: %w", err)
	}
	return nil
}

// maybeGzip wraps the reader with gzip decompression when the stream
// starts with the gzip magic bytes.
func maybeGzip(r io.Reader) (io.Reader, error) {
	br := bufio.NewReader(r)
	head, err := br.Peek(2)
	if err == nil && head[0] == 0x1f && head[1] == 0x8b {
		return gzip.NewReader(br)
	}
	return br, nil
}

// securePath joins an archive entry name onto the extraction root,
// rejecting names that would escape it.
func securePath(root, name string) (string, error) {
	cleaned := filepath.Clean(filepath.FromSlash(strings.TrimPrefix(name, "/")))
	if cleaned == "." {
		return root, nil
	}
	if cleaned == ".." || strings.HasPrefix(cleaned, ".."+string(os.PathSeparator)) {
		return "", fmt.Errorf("archive entry %q escapes the extraction root", name)
	}
	return filepath.Join(root, cleaned), nil
}
