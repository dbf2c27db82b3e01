// Package workspace provides request-scoped scratch directories.
//
// Every request owns exactly one Workspace: a uniquely named directory that
// holds all ingested files and the generated artifact, created at request
// start and removed unconditionally when the request finishes.
package workspace

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"pdfserve/internal/metrics"
)

// dirPrefix namespaces workspace directories under the temp root.
const dirPrefix = "pdfserve-"

// Manager creates workspaces under a configured temp root.
// The root is explicit configuration, not hidden process-wide state.
type Manager struct {
	root string
	log  *zap.Logger
}

// NewManager returns a Manager rooted at root, creating it if needed.
// An empty root means the operating system default temp directory.
func NewManager(root string, log *zap.Logger) (*Manager, error) {
	if log == nil {
		log = zap.NewNop()
	}
	if root == "" {
		root = os.TempDir()
	} else if err := os.MkdirAll(root, 0o700); err != nil {
		return nil, fmt.Errorf("creating workspace root: %w", err)
	}
	return &Manager{root: root, log: log}, nil
}

// Acquire creates a fresh workspace directory with a random unique name.
// os.Mkdir is atomic, so two concurrent requests can never share a directory
// even if the random suffix were to collide.
func (m *Manager) Acquire() (*Workspace, error) {
	dir := filepath.Join(m.root, dirPrefix+uuid.NewString())
	if err := os.Mkdir(dir, 0o700); err != nil {
		return nil, fmt.Errorf("creating workspace: %w", err)
	}
	return &Workspace{
		dir: dir,
		log: m.log.With(zap.String("workspace", dir)),
	}, nil
}

// Workspace is an exclusively-owned scratch directory for one request.
type Workspace struct {
	dir  string
	log  *zap.Logger
	once sync.Once
}

// Dir returns the workspace directory path.
func (w *Workspace) Dir() string {
	return w.dir
}

// Join returns the path for a file named name inside the workspace.
// The name is reduced to its base component, so a crafted filename like
// "../../etc/passwd" cannot escape the directory.
func (w *Workspace) Join(name string) string {
	return filepath.Join(w.dir, sanitizeName(name))
}

// JoinIn returns the path for a file named name inside subdirectory sub of
// the workspace, creating the subdirectory if needed. Both components are
// base-sanitized like Join. Files placed through JoinIn can never collide
// across different sub values, even when their names are identical.
func (w *Workspace) JoinIn(sub, name string) (string, error) {
	dir := filepath.Join(w.dir, sanitizeName(sub))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("creating part directory: %w", err)
	}
	return filepath.Join(dir, sanitizeName(name)), nil
}

func sanitizeName(name string) string {
	base := filepath.Base(filepath.Clean(name))
	if base == "." || base == string(filepath.Separator) || base == ".." {
		base = "unnamed"
	}
	return base
}

// Release deletes the workspace and everything in it. Safe to call more than
// once; only the first call acts. Cleanup failure is logged and counted but
// never escalated, so response delivery is never broken by teardown.
func (w *Workspace) Release() {
	w.once.Do(func() {
		if err := os.RemoveAll(w.dir); err != nil {
			metrics.WorkspaceCleanupFailures.Inc()
			w.log.Error("workspace cleanup failed", zap.Error(err))
		}
	})
}
