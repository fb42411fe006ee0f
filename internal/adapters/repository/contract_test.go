package repository

import (
	"context"
	"errors"
	"net"
	"os"
	"reflect"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/foodcart/core/internal/domain/entities"
	"github.com/foodcart/core/internal/infrastructure/config"
	"github.com/foodcart/core/internal/infrastructure/database"
	"github.com/foodcart/core/internal/infrastructure/logger"
	"github.com/foodcart/core/internal/infrastructure/redisstore"
)

// testBackendContract exercises behaviour every storage driver shares.
func testBackendContract(t *testing.T, backend *Backend) {
	ctx := context.Background()

	t.Run("users", func(t *testing.T) {
		if err := backend.Users.Create(ctx, &entities.User{Username: "alice", Password: "pw1"}); err != nil {
			t.Fatalf("create alice: %v", err)
		}
		if err := backend.Users.Create(ctx, &entities.User{Username: "bob", Password: "pw2"}); err != nil {
			t.Fatalf("create bob: %v", err)
		}
		err := backend.Users.Create(ctx, &entities.User{Username: "alice", Password: "other"})
		if !errors.Is(err, entities.ErrUsernameTaken) {
			t.Fatalf("duplicate err = %v, want ErrUsernameTaken", err)
		}

		user, err := backend.Users.GetByUsername(ctx, "alice")
		if err != nil || user.Password != "pw1" {
			t.Fatalf("get alice = %+v, %v", user, err)
		}
		if _, err := backend.Users.GetByUsername(ctx, "carol"); !errors.Is(err, entities.ErrUserNotFound) {
			t.Fatalf("get carol err = %v, want ErrUserNotFound", err)
		}

		users, err := backend.Users.List(ctx)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		var names []string
		for _, u := range users {
			names = append(names, u.Username)
		}
		if !reflect.DeepEqual(names, []string{"alice", "bob"}) {
			t.Fatalf("names = %v", names)
		}
	})

	t.Run("carts", func(t *testing.T) {
		cart, err := backend.Carts.Get(ctx, "alice")
		if err != nil || len(cart) != 0 {
			t.Fatalf("initial cart = %v, %v", cart, err)
		}

		if _, err := backend.Carts.SetItem(ctx, "alice", "Chicken Biryani", 2); err != nil {
			t.Fatalf("set: %v", err)
		}
		cart, err = backend.Carts.SetItem(ctx, "alice", "Vegetable Curry", 1)
		if err != nil {
			t.Fatalf("set: %v", err)
		}
		if !reflect.DeepEqual(cart, entities.Cart{"Chicken Biryani": 2, "Vegetable Curry": 1}) {
			t.Fatalf("cart = %v", cart)
		}

		cart, err = backend.Carts.SetItem(ctx, "alice", "Vegetable Curry", -3)
		if err != nil {
			t.Fatalf("remove: %v", err)
		}
		if !reflect.DeepEqual(cart, entities.Cart{"Chicken Biryani": 2}) {
			t.Fatalf("cart after removal = %v", cart)
		}

		cart, err = backend.Carts.Replace(ctx, "alice", entities.Cart{"Paneer Butter Masala": 4, "Chicken Biryani": 0})
		if err != nil {
			t.Fatalf("replace: %v", err)
		}
		if !reflect.DeepEqual(cart, entities.Cart{"Paneer Butter Masala": 4}) {
			t.Fatalf("replaced cart = %v", cart)
		}

		previous, err := backend.Carts.Clear(ctx, "alice")
		if err != nil {
			t.Fatalf("clear: %v", err)
		}
		if !reflect.DeepEqual(previous, entities.Cart{"Paneer Butter Masala": 4}) {
			t.Fatalf("previous = %v", previous)
		}

		cart, err = backend.Carts.Get(ctx, "alice")
		if err != nil || len(cart) != 0 {
			t.Fatalf("cart after clear = %v, %v", cart, err)
		}
	})

	t.Run("health", func(t *testing.T) {
		if err := backend.HealthCheck(); err != nil {
			t.Fatalf("health: %v", err)
		}
	})
}

func TestFileBackendContract(t *testing.T) {
	testBackendContract(t, NewFileBackend(newTestStore(t)))
}

// FOODCART_TEST_REDIS_ADDR enables the redis contract, e.g. localhost:6379.
func TestRedisBackendContract(t *testing.T) {
	addr := os.Getenv("FOODCART_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("FOODCART_TEST_REDIS_ADDR not set")
	}
	host, port := splitHostPort(t, addr)

	client, err := redisstore.New(context.Background(), config.RedisConfig{
		Host:        host,
		Port:        port,
		KeyPrefix:   "foodcart-test-" + uuid.NewString(),
		PoolSize:    4,
		DialTimeout: 2 * time.Second,
		MaxRetries:  1,
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	backend := NewRedisBackend(client)
	t.Cleanup(func() {
		ctx := context.Background()
		keys, _ := client.Keys(ctx, client.Key("*")).Result()
		if len(keys) > 0 {
			client.Del(ctx, keys...)
		}
		backend.Close()
	})

	testBackendContract(t, backend)
}

// FOODCART_TEST_DATABASE_HOST enables the postgres contract against a
// database named by FOODCART_TEST_DATABASE_NAME (default foodcart_test).
// The tables are dropped first.
func TestPostgresBackendContract(t *testing.T) {
	host := os.Getenv("FOODCART_TEST_DATABASE_HOST")
	if host == "" {
		t.Skip("FOODCART_TEST_DATABASE_HOST not set")
	}
	name := os.Getenv("FOODCART_TEST_DATABASE_NAME")
	if name == "" {
		name = "foodcart_test"
	}

	db, err := database.New(context.Background(), config.DatabaseConfig{
		Host:         host,
		Port:         5432,
		Name:         name,
		User:         envOr("FOODCART_TEST_DATABASE_USER", "postgres"),
		Password:     os.Getenv("FOODCART_TEST_DATABASE_PASSWORD"),
		SSLMode:      "disable",
		MaxOpenConns: 4,
		MaxIdleConns: 2,
	}, logger.NewNop())
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	if _, err := db.Migrate("down"); err != nil {
		t.Fatalf("migrate down: %v", err)
	}
	if _, err := db.Migrate("up"); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	backend := NewPostgresBackend(db)
	t.Cleanup(func() { backend.Close() })

	testBackendContract(t, backend)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func splitHostPort(t *testing.T, addr string) (string, int) {
	t.Helper()
	host, rawPort, err := net.SplitHostPort(addr)
	if err != nil {
		t.Fatalf("bad redis address %q: %v", addr, err)
	}
	port, err := strconv.Atoi(rawPort)
	if err != nil {
		t.Fatalf("bad port in %q: %v", addr, err)
	}
	return host, port
}
