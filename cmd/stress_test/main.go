package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"sync"
	"sync/atomic"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/rl1809/storefront/internal/adapter/storage"
	"github.com/rl1809/storefront/internal/config"
	"github.com/rl1809/storefront/internal/core/domain"
	"github.com/rl1809/storefront/internal/core/service"
)

const (
	itemID        = 990001
	initialStock  = 20
	totalRequests = 50
)

func main() {
	ctx := context.Background()

	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = config.Default.MySQLDSN
	}

	db, err := sqlx.Open("mysql", dsn)
	if err != nil {
		log.Fatalf("failed to open mysql: %v", err)
	}
	defer db.Close()
	db.SetMaxOpenConns(totalRequests)

	if err := db.PingContext(ctx); err != nil {
		log.Fatalf("failed to connect mysql: %v", err)
	}

	// Reset the stress item
	_, err = db.ExecContext(ctx, `
		INSERT INTO inventory (id, item_name, unit_price, qty_initial_bought, qty_sold)
		VALUES (?, 'Stress Item', 100.00, ?, 0)
		ON DUPLICATE KEY UPDATE qty_initial_bought = VALUES(qty_initial_bought), qty_sold = 0`,
		itemID, initialStock)
	if err != nil {
		log.Fatalf("failed to reset item: %v", err)
	}

	inventory := storage.NewMySQLAdapter(db)
	checkout := service.NewCheckoutService(inventory, nil, decimal.Zero)

	// Counters
	var successCount atomic.Int32
	var stockCount atomic.Int32
	var errorCount atomic.Int32

	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := checkout.Checkout(ctx, domain.Cart{itemID: 1})
			switch {
			case err == nil:
				successCount.Add(1)
			case errors.Is(err, service.ErrStockExceeded):
				stockCount.Add(1)
			default:
				errorCount.Add(1)
				log.Printf("checkout error: %v", err)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	success := successCount.Load()
	rejected := stockCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Initial Stock:    %d\n", initialStock)
	fmt.Printf("Total Checkouts:  %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Out of stock:     %d\n", rejected)
	fmt.Printf("Errors:           %d\n", errorCount.Load())
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == initialStock && rejected == totalRequests-initialStock {
		fmt.Printf("PASS: Exactly %d checkouts succeeded, %d rejected\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: Expected %d success/%d rejected, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, rejected)
	}

	item, err := inventory.GetItem(ctx, itemID)
	if err != nil || item == nil {
		log.Fatalf("failed to read item: %v", err)
	}
	fmt.Printf("Final Sold:       %d / %d\n", item.Sold, item.Bought)

	if item.Sold == item.Bought {
		fmt.Println("PASS: Stock depleted with no oversell")
	} else {
		fmt.Printf("FAIL: Expected sold %d, got %d\n", item.Bought, item.Sold)
	}
}
