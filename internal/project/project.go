package project

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/codescan-dev/codescan/internal/database"
	"github.com/codescan-dev/codescan/internal/model"
)

// Project is the handle pipeline steps work against: the project row, its
// workspace directories, the shared database, and a logger.
type Project struct {
	// Meta is the persisted project row.
	Meta model.Project

	// Dir is the project's root directory inside the workspace.
	Dir string

	// DB is the shared workspace database.
	DB *database.Workspace

	// Logger receives step diagnostics.
	Logger *slog.Logger
}

// Create makes a new project: a unique row in the workspace database plus
// the input/codebase/output/tmp directory tree under
// <workspaceDir>/projects/<slug>.
func Create(ctx context.Context, ws *database.Workspace, workspaceDir, name string, logger *slog.Logger) (*Project, error) {
	if name == "" {
		return nil, fmt.Errorf("project name must not be empty")
	}
	slug := model.Slugify(name)
	if slug == "" {
		return nil, fmt.Errorf("project name %q has no usable characters", name)
	}
	if logger == nil {
		logger = slog.Default()
	}

	meta := model.Project{
		ID:   uuid.NewString(),
		Name: name,
		Slug: slug,
	}
	if err := ws.CreateProject(ctx, &meta); err != nil {
		return nil, err
	}

	p := &Project{
		Meta:   meta,
		Dir:    filepath.Join(workspaceDir, "projects", slug),
		DB:     ws,
		Logger: logger,
	}
	for _, dir := range []string{p.InputDir(), p.CodebaseDir(), p.OutputDir(), p.TmpDir()} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create project directory: %w", err)
		}
	}

	return p, nil
}

// Open loads an existing project by name. The directory tree is created if
// missing so a restored database stays usable.
func Open(ctx context.Context, ws *database.Workspace, workspaceDir, name string, logger *slog.Logger) (*Project, error) {
	meta, err := ws.GetProjectByName(ctx, name)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, fmt.Errorf("%w: %q", ErrProjectNotFound, name)
	}
	if logger == nil {
		logger = slog.Default()
	}

	p := &Project{
		Meta:   *meta,
		Dir:    filepath.Join(workspaceDir, "projects", meta.Slug),
		DB:     ws,
		Logger: logger,
	}
	for _, dir := range []string{p.InputDir(), p.CodebaseDir(), p.OutputDir(), p.TmpDir()} {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return nil, fmt.Errorf("failed to create project directory: %w", err)
		}
	}

	return p, nil
}

// InputDir holds registered input files. Steps read them but never write.
func (p *Project) InputDir() string {
	return filepath.Join(p.Dir, "input")
}

// CodebaseDir is the working tree that collection steps walk and
// extraction steps populate.
func (p *Project) CodebaseDir() string {
	return filepath.Join(p.Dir, "codebase")
}

// OutputDir receives generated reports.
func (p *Project) OutputDir() string {
	return filepath.Join(p.Dir, "output")
}

// TmpDir is scratch space for steps. ResetTmp clears it between runs.
func (p *Project) TmpDir() string {
	return filepath.Join(p.Dir, "tmp")
}

// ResetTmp empties the scratch directory.
func (p *Project) ResetTmp() error {
	if err := os.RemoveAll(p.TmpDir()); err != nil {
		return fmt.Errorf("failed to clear tmp directory: %w", err)
	}
	if err := os.MkdirAll(p.TmpDir(), 0750); err != nil {
		return fmt.Errorf("failed to recreate tmp directory: %w", err)
	}
	return nil
}

// AddInput copies a file into the project's input directory and returns
// the destination path.
func (p *Project) AddInput(src string) (string, error) {
	in, err := os.Open(src)
	if err != nil {
		return "", fmt.Errorf("failed to open input: %w", err)
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return "", fmt.Errorf("failed to stat input: %w", err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("input %s is a directory; register files individually", src)
	}

	dst := filepath.Join(p.InputDir(), filepath.Base(src))
	out, err := os.Create(dst)
	if err != nil {
		return "", fmt.Errorf("failed to create input copy: %w", err)
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return "", fmt.Errorf("failed to copy input: %w", err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("failed to finish input copy: %w", err)
	}

	p.Logger.Debug("input registered",
		slog.String("project", p.Meta.Name),
		slog.String("file", filepath.Base(src)))
	return dst, nil
}

// Inputs lists the registered input file paths in lexical order.
func (p *Project) Inputs() ([]string, error) {
	entries, err := os.ReadDir(p.InputDir())
	if err != nil {
		return nil, fmt.Errorf("failed to read input directory: %w", err)
	}

	var inputs []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		inputs = append(inputs, filepath.Join(p.InputDir(), entry.Name()))
	}
	return inputs, nil
}
