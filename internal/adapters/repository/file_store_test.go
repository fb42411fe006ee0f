package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/foodcart/core/internal/domain/entities"
	"github.com/foodcart/core/internal/infrastructure/logger"
)

func newTestStore(t *testing.T) *FileStore {
	t.Helper()
	store := NewFileStore(filepath.Join(t.TempDir(), "data"), nil, logger.NewNop())
	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	return store
}

func TestInitializeCreatesEmptyDocuments(t *testing.T) {
	store := newTestStore(t)

	users, err := os.ReadFile(store.Users.Path())
	if err != nil {
		t.Fatalf("read users: %v", err)
	}
	if strings.TrimSpace(string(users)) != "[]" {
		t.Fatalf("users.json = %q, want []", users)
	}

	carts, err := os.ReadFile(store.Carts.Path())
	if err != nil {
		t.Fatalf("read carts: %v", err)
	}
	if strings.TrimSpace(string(carts)) != "{}" {
		t.Fatalf("cart.json = %q, want {}", carts)
	}
}

func TestInitializeIsIdempotent(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := []entities.User{{Username: "alice", Password: "pw1"}}
	if err := store.Users.Write(ctx, want); err != nil {
		t.Fatalf("write: %v", err)
	}

	if err := store.Initialize(); err != nil {
		t.Fatalf("second initialize: %v", err)
	}

	got, err := store.Users.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("users = %v, want %v", got, want)
	}
}

func TestInitializeFailsWhenDirectoryCannotBeCreated(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker: %v", err)
	}

	store := NewFileStore(filepath.Join(blocker, "data"), nil, logger.NewNop())
	if err := store.Initialize(); err == nil {
		t.Fatal("expected initialize to fail under a regular file")
	}
}

func TestDocumentRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	want := entities.Carts{
		"alice": {"Chicken Biryani": 2, "Vegetable Curry": 1},
		"bob":   {},
	}
	if err := store.Carts.Write(ctx, want); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := store.Carts.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("carts = %v, want %v", got, want)
	}
}

func TestDocumentWriteLeavesNoTempFiles(t *testing.T) {
	store := newTestStore(t)
	if err := store.Carts.Write(context.Background(), entities.Carts{"alice": {"x": 1}}); err != nil {
		t.Fatalf("write: %v", err)
	}

	entries, err := os.ReadDir(store.DataDir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	for _, entry := range entries {
		if entry.Name() != UsersDocument && entry.Name() != CartsDocument {
			t.Fatalf("unexpected file %q left in data dir", entry.Name())
		}
	}
}

func TestDocumentReadCorrupt(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.Carts.Path(), []byte("{not json"), 0o644); err != nil {
		t.Fatalf("corrupt: %v", err)
	}

	_, err := store.Carts.Read(context.Background())
	if !errors.Is(err, entities.ErrCorruptDocument) {
		t.Fatalf("err = %v, want ErrCorruptDocument", err)
	}
}

func TestDocumentReadMissing(t *testing.T) {
	store := newTestStore(t)
	if err := os.Remove(store.Users.Path()); err != nil {
		t.Fatalf("remove: %v", err)
	}

	_, err := store.Users.Read(context.Background())
	if err == nil || errors.Is(err, entities.ErrCorruptDocument) {
		t.Fatalf("err = %v, want an I/O error", err)
	}
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("err = %v, want wrapped not-exist", err)
	}
}

func TestDocumentUpdateErrorSkipsWrite(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()
	boom := errors.New("boom")

	err := store.Users.Update(ctx, func(users *[]entities.User) error {
		*users = append(*users, entities.User{Username: "ghost"})
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("err = %v, want boom", err)
	}

	users, err := store.Users.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if len(users) != 0 {
		t.Fatalf("users = %v, want none", users)
	}
}

func TestDocumentHonoursCancelledContext(t *testing.T) {
	store := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := store.Users.Read(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
}

type recordingObserver struct {
	mu  sync.Mutex
	ops []string
}

func (o *recordingObserver) ObserveStoreOperation(document, operation string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	result := "ok"
	if err != nil {
		result = "error"
	}
	o.ops = append(o.ops, fmt.Sprintf("%s/%s/%s", document, operation, result))
}

func TestDocumentReportsOperations(t *testing.T) {
	observer := &recordingObserver{}
	store := NewFileStore(t.TempDir(), observer, logger.NewNop())
	if err := store.Initialize(); err != nil {
		t.Fatalf("initialize: %v", err)
	}
	ctx := context.Background()

	if _, err := store.Carts.Read(ctx); err != nil {
		t.Fatalf("read: %v", err)
	}
	if err := store.Carts.Update(ctx, func(*entities.Carts) error { return nil }); err != nil {
		t.Fatalf("update: %v", err)
	}

	want := []string{"cart.json/read/ok", "cart.json/update/ok"}
	if !reflect.DeepEqual(observer.ops, want) {
		t.Fatalf("ops = %v, want %v", observer.ops, want)
	}
}
