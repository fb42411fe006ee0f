package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/foodcart/core/internal/domain/entities"
	"github.com/foodcart/core/internal/infrastructure/logger"
	"github.com/foodcart/core/internal/ports"
)

const (
	UsersDocument = "users.json"
	CartsDocument = "cart.json"
)

// Document is a single JSON file holding one value of type T. Reads and
// writes always cover the whole document. Every operation holds the
// document mutex, so Update is a serialized read-modify-write cycle.
type Document[T any] struct {
	name     string
	path     string
	empty    func() T
	observer ports.StoreObserver

	mu sync.Mutex
}

func newDocument[T any](dir, name string, empty func() T, observer ports.StoreObserver) *Document[T] {
	return &Document[T]{
		name:     name,
		path:     filepath.Join(dir, name),
		empty:    empty,
		observer: observer,
	}
}

// Name returns the document file name.
func (d *Document[T]) Name() string {
	return d.name
}

// Path returns the document location on disk.
func (d *Document[T]) Path() string {
	return d.path
}

// Read loads and decodes the entire document.
func (d *Document[T]) Read(ctx context.Context) (T, error) {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	v, err := d.read(ctx)
	d.observer.ObserveStoreOperation(d.name, "read", time.Since(start), err)
	return v, err
}

// Write replaces the entire document with v.
func (d *Document[T]) Write(ctx context.Context, v T) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.write(ctx, v)
	d.observer.ObserveStoreOperation(d.name, "write", time.Since(start), err)
	return err
}

// Update reads the document, applies fn and writes the result back. Nothing
// is written when fn returns an error; that error is returned unchanged.
func (d *Document[T]) Update(ctx context.Context, fn func(v *T) error) error {
	start := time.Now()
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.update(ctx, fn)
	d.observer.ObserveStoreOperation(d.name, "update", time.Since(start), err)
	return err
}

func (d *Document[T]) update(ctx context.Context, fn func(v *T) error) error {
	v, err := d.read(ctx)
	if err != nil {
		return err
	}
	if err := fn(&v); err != nil {
		return err
	}
	return d.write(ctx, v)
}

func (d *Document[T]) read(ctx context.Context) (T, error) {
	var zero T
	if err := ctx.Err(); err != nil {
		return zero, err
	}

	data, err := os.ReadFile(d.path)
	if err != nil {
		return zero, fmt.Errorf("read %s: %w", d.name, err)
	}

	v := d.empty()
	if err := json.Unmarshal(data, &v); err != nil {
		return zero, fmt.Errorf("%w: %s: %v", entities.ErrCorruptDocument, d.name, err)
	}
	return v, nil
}

// write encodes v into a temporary file next to the document and renames it
// over the document, so readers never observe a partial write.
func (d *Document[T]) write(ctx context.Context, v T) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", d.name, err)
	}

	tmp, err := os.CreateTemp(filepath.Dir(d.path), "."+d.name+".tmp-*")
	if err != nil {
		return fmt.Errorf("write %s: %w", d.name, err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if _, err = tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", d.name, err)
	}
	if err = tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync %s: %w", d.name, err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", d.name, err)
	}
	if err = os.Chmod(tmpName, 0o644); err != nil {
		return fmt.Errorf("chmod %s: %w", d.name, err)
	}
	if err = os.Rename(tmpName, d.path); err != nil {
		return fmt.Errorf("replace %s: %w", d.name, err)
	}
	return nil
}

// ensure creates the document with its empty value if it does not exist.
func (d *Document[T]) ensure() (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, err := os.Stat(d.path)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, fs.ErrNotExist) {
		return false, fmt.Errorf("stat %s: %w", d.name, err)
	}
	if err := d.write(context.Background(), d.empty()); err != nil {
		return false, err
	}
	return true, nil
}

// FileStore owns the users and carts documents inside one data directory.
type FileStore struct {
	dataDir string
	logger  *logger.Logger

	Users *Document[[]entities.User]
	Carts *Document[entities.Carts]
}

// NewFileStore creates a store rooted at dataDir. Call Initialize before use.
func NewFileStore(dataDir string, observer ports.StoreObserver, appLogger *logger.Logger) *FileStore {
	if observer == nil {
		observer = ports.NopStoreObserver{}
	}
	return &FileStore{
		dataDir: dataDir,
		logger:  appLogger.WithComponent("file_store"),
		Users: newDocument(dataDir, UsersDocument, func() []entities.User {
			return []entities.User{}
		}, observer),
		Carts: newDocument(dataDir, CartsDocument, func() entities.Carts {
			return entities.Carts{}
		}, observer),
	}
}

// DataDir returns the directory holding the documents.
func (s *FileStore) DataDir() string {
	return s.dataDir
}

// Initialize creates the data directory and any missing document. It is
// safe to call on every start.
func (s *FileStore) Initialize() error {
	if err := os.MkdirAll(s.dataDir, 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	created, err := s.Users.ensure()
	if err != nil {
		return fmt.Errorf("initialize %s: %w", UsersDocument, err)
	}
	if created {
		s.logger.Infow("Created document", "document", UsersDocument, "path", s.Users.Path())
	}

	created, err = s.Carts.ensure()
	if err != nil {
		return fmt.Errorf("initialize %s: %w", CartsDocument, err)
	}
	if created {
		s.logger.Infow("Created document", "document", CartsDocument, "path", s.Carts.Path())
	}

	return nil
}

// HealthCheck verifies both documents are present.
func (s *FileStore) HealthCheck() error {
	for _, path := range []string{s.Users.Path(), s.Carts.Path()} {
		if _, err := os.Stat(path); err != nil {
			return fmt.Errorf("file store health check failed: %w", err)
		}
	}
	return nil
}
