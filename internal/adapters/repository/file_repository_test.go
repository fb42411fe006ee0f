package repository

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"sync"
	"testing"

	"github.com/foodcart/core/internal/domain/entities"
)

func TestFileUserRepositoryCreateRejectsDuplicate(t *testing.T) {
	store := newTestStore(t)
	repo := NewFileUserRepository(store)
	ctx := context.Background()

	if err := repo.Create(ctx, &entities.User{Username: "alice", Password: "pw1"}); err != nil {
		t.Fatalf("create: %v", err)
	}
	err := repo.Create(ctx, &entities.User{Username: "alice", Password: "pw2"})
	if !errors.Is(err, entities.ErrUsernameTaken) {
		t.Fatalf("err = %v, want ErrUsernameTaken", err)
	}

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 || users[0].Password != "pw1" {
		t.Fatalf("users = %+v, want one record with pw1", users)
	}
}

func TestFileUserRepositoryGetByUsername(t *testing.T) {
	store := newTestStore(t)
	repo := NewFileUserRepository(store)
	ctx := context.Background()

	for _, name := range []string{"alice", "bob"} {
		if err := repo.Create(ctx, &entities.User{Username: name, Password: name + "-pw"}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	user, err := repo.GetByUsername(ctx, "bob")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if user.Password != "bob-pw" {
		t.Fatalf("password = %q, want bob-pw", user.Password)
	}

	if _, err := repo.GetByUsername(ctx, "carol"); !errors.Is(err, entities.ErrUserNotFound) {
		t.Fatalf("err = %v, want ErrUserNotFound", err)
	}
}

func TestFileUserRepositoryListKeepsInsertionOrder(t *testing.T) {
	store := newTestStore(t)
	repo := NewFileUserRepository(store)
	ctx := context.Background()

	names := []string{"zoe", "alice", "mike"}
	for _, name := range names {
		if err := repo.Create(ctx, &entities.User{Username: name, Password: "x"}); err != nil {
			t.Fatalf("create %s: %v", name, err)
		}
	}

	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	var got []string
	for _, u := range users {
		got = append(got, u.Username)
	}
	if !reflect.DeepEqual(got, names) {
		t.Fatalf("order = %v, want %v", got, names)
	}
}

func TestFileCartRepositoryGetAbsentIsEmpty(t *testing.T) {
	store := newTestStore(t)
	repo := NewFileCartRepository(store)

	cart, err := repo.Get(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if cart == nil || len(cart) != 0 {
		t.Fatalf("cart = %#v, want empty", cart)
	}
}

func TestFileCartRepositorySetItem(t *testing.T) {
	store := newTestStore(t)
	repo := NewFileCartRepository(store)
	ctx := context.Background()

	cart, err := repo.SetItem(ctx, "alice", "Chicken Biryani", 2)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if !reflect.DeepEqual(cart, entities.Cart{"Chicken Biryani": 2}) {
		t.Fatalf("cart = %v", cart)
	}

	cart, err = repo.SetItem(ctx, "alice", "Chicken Biryani", 0)
	if err != nil {
		t.Fatalf("remove: %v", err)
	}
	if len(cart) != 0 {
		t.Fatalf("cart = %v, want empty", cart)
	}

	stored, err := repo.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if _, ok := stored["Chicken Biryani"]; ok {
		t.Fatalf("item still present: %v", stored)
	}
}

func TestFileCartRepositoryReplaceAndClear(t *testing.T) {
	store := newTestStore(t)
	repo := NewFileCartRepository(store)
	ctx := context.Background()

	cart, err := repo.Replace(ctx, "alice", entities.Cart{"Vegetable Curry": 3, "Paneer Butter Masala": 0})
	if err != nil {
		t.Fatalf("replace: %v", err)
	}
	if !reflect.DeepEqual(cart, entities.Cart{"Vegetable Curry": 3}) {
		t.Fatalf("cart = %v", cart)
	}

	previous, err := repo.Clear(ctx, "alice")
	if err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !reflect.DeepEqual(previous, entities.Cart{"Vegetable Curry": 3}) {
		t.Fatalf("previous = %v", previous)
	}

	carts, err := store.Carts.Read(ctx)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	stored, ok := carts["alice"]
	if !ok || len(stored) != 0 {
		t.Fatalf("stored cart = %#v (present %v), want empty entry", stored, ok)
	}
}

func TestFileCartRepositoryToleratesNullDocument(t *testing.T) {
	store := newTestStore(t)
	if err := os.WriteFile(store.Carts.Path(), []byte("null"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	repo := NewFileCartRepository(store)

	cart, err := repo.SetItem(context.Background(), "alice", "Vegetable Curry", 1)
	if err != nil {
		t.Fatalf("set: %v", err)
	}
	if cart["Vegetable Curry"] != 1 {
		t.Fatalf("cart = %v", cart)
	}
}

func TestFileCartRepositoryConcurrentUpdatesAreNotLost(t *testing.T) {
	store := newTestStore(t)
	repo := NewFileCartRepository(store)
	ctx := context.Background()

	const workers = 20
	var wg sync.WaitGroup
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := repo.SetItem(ctx, "alice", fmt.Sprintf("item-%02d", i), i+1); err != nil {
				errs <- err
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatalf("set: %v", err)
	}

	cart, err := repo.Get(ctx, "alice")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(cart) != workers {
		t.Fatalf("cart has %d items, want %d: %v", len(cart), workers, cart)
	}
	for i := 0; i < workers; i++ {
		if got := cart[fmt.Sprintf("item-%02d", i)]; got != i+1 {
			t.Fatalf("item-%02d = %d, want %d", i, got, i+1)
		}
	}
}

func TestFileUserRepositoryConcurrentRegistrationKeepsOneRecord(t *testing.T) {
	store := newTestStore(t)
	repo := NewFileUserRepository(store)
	ctx := context.Background()

	const attempts = 10
	var (
		wg      sync.WaitGroup
		mu      sync.Mutex
		created int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			err := repo.Create(ctx, &entities.User{Username: "alice", Password: fmt.Sprint(i)})
			if err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			} else if !errors.Is(err, entities.ErrUsernameTaken) {
				t.Errorf("create: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if created != 1 {
		t.Fatalf("created = %d, want 1", created)
	}
	users, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(users) != 1 {
		t.Fatalf("users = %d, want 1", len(users))
	}
}
