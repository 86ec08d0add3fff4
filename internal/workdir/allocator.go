package workdir

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/google/uuid"
)

// Allocator hands out isolated scratch directories, one per download task.
// Directories are never shared between tasks and are destroyed when the
// task reaches a terminal state.
type Allocator struct {
	base string
}

func NewAllocator(base string) (*Allocator, error) {
	if err := os.MkdirAll(base, 0755); err != nil {
		return nil, fmt.Errorf("failed to create work base %s: %w", base, err)
	}
	return &Allocator{base: base}, nil
}

// Create makes a fresh exclusively-owned directory for one task.
func (a *Allocator) Create() (string, error) {
	dir := filepath.Join(a.base, "dl-"+uuid.NewString())
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create task dir: %w", err)
	}
	return dir, nil
}

// Remove destroys a task directory and everything in it. Removing a
// directory that is already gone is a no-op.
func (a *Allocator) Remove(dir string) error {
	if dir == "" {
		return nil
	}
	return os.RemoveAll(dir)
}
