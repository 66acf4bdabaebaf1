package storage

import (
	"context"
	"os"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/rl1809/storefront/internal/core/domain"
)

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestRedisAdapter_SaveLoadCart(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute)
	session := uuid.NewString()

	if err := adapter.SaveCart(ctx, session, domain.Cart{101: 2, 302: 1}); err != nil {
		t.Fatalf("SaveCart failed: %v", err)
	}

	cart, err := adapter.LoadCart(ctx, session)
	if err != nil {
		t.Fatalf("LoadCart failed: %v", err)
	}
	if cart.Quantity(101) != 2 || cart.Quantity(302) != 1 || len(cart) != 2 {
		t.Errorf("unexpected cart: %v", cart)
	}

	ttl := client.TTL(ctx, cartKey(session)).Val()
	if ttl <= 0 || ttl > time.Minute {
		t.Errorf("expected ttl within a minute, got %v", ttl)
	}

	// Overwrite replaces the previous entries
	adapter.SaveCart(ctx, session, domain.Cart{101: 5})
	cart, _ = adapter.LoadCart(ctx, session)
	if len(cart) != 1 || cart.Quantity(101) != 5 {
		t.Errorf("expected {101:5}, got %v", cart)
	}

	// Empty cart removes the key
	adapter.SaveCart(ctx, session, domain.Cart{})
	if n := client.Exists(ctx, cartKey(session)).Val(); n != 0 {
		t.Error("expected cart key to be deleted")
	}
}

func TestRedisAdapter_LoadCartSkipsMalformed(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute)
	session := uuid.NewString()
	defer client.Del(ctx, cartKey(session))

	client.HSet(ctx, cartKey(session), "101", "2", "abc", "1", "102", "x", "103", "-1")

	cart, err := adapter.LoadCart(ctx, session)
	if err != nil {
		t.Fatalf("LoadCart failed: %v", err)
	}
	if len(cart) != 1 || cart.Quantity(101) != 2 {
		t.Errorf("expected only {101:2}, got %v", cart)
	}
}

func TestRedisAdapter_PopCart(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute)
	session := uuid.NewString()

	adapter.SaveCart(ctx, session, domain.Cart{201: 3})

	cart, err := adapter.PopCart(ctx, session)
	if err != nil {
		t.Fatalf("PopCart failed: %v", err)
	}
	if cart.Quantity(201) != 3 {
		t.Errorf("expected quantity 3, got %d", cart.Quantity(201))
	}

	cart, err = adapter.PopCart(ctx, session)
	if err != nil {
		t.Fatalf("PopCart failed: %v", err)
	}
	if !cart.IsEmpty() {
		t.Errorf("expected empty cart on second pop, got %v", cart)
	}
}

func TestRedisAdapter_PopCart_Concurrent(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute)
	session := uuid.NewString()
	adapter.SaveCart(ctx, session, domain.Cart{201: 1})

	var nonEmpty atomic.Int32
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			cart, err := adapter.PopCart(ctx, session)
			if err != nil {
				t.Errorf("unexpected error: %v", err)
				return
			}
			if !cart.IsEmpty() {
				nonEmpty.Add(1)
			}
		}()
	}
	wg.Wait()

	// Only one caller may see the cart
	if nonEmpty.Load() != 1 {
		t.Errorf("expected exactly 1 non-empty pop, got %d", nonEmpty.Load())
	}
}

func TestRedisAdapter_FlashIsReadOnce(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	adapter := NewRedisAdapter(client, time.Minute)
	session := uuid.NewString()

	if err := adapter.SetFlash(ctx, session, "Added 2 × Little Black Dress!"); err != nil {
		t.Fatalf("SetFlash failed: %v", err)
	}

	msg, err := adapter.PopFlash(ctx, session)
	if err != nil {
		t.Fatalf("PopFlash failed: %v", err)
	}
	if msg != "Added 2 × Little Black Dress!" {
		t.Errorf("unexpected message %q", msg)
	}

	msg, err = adapter.PopFlash(ctx, session)
	if err != nil {
		t.Fatalf("PopFlash failed: %v", err)
	}
	if msg != "" {
		t.Errorf("expected empty message on second read, got %q", msg)
	}
}
