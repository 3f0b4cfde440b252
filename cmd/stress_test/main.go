package main

import (
	"context"
	"fmt"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/rl1809/storefront-cart/internal/adapter/notify"
	"github.com/rl1809/storefront-cart/internal/adapter/storage"
	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/core/service"
)

const (
	redisAddr     = "localhost:6379"
	productID     = int64(42)
	initialStock  = 20
	totalRequests = 50
)

// fixedStock serves one product with a constant stock level.
type fixedStock struct{}

func (fixedStock) GetProduct(ctx context.Context, id int64) (domain.Product, error) {
	return domain.Product{ID: id, Title: "Tênis de Caminhada", Price: 179.9}, nil
}

func (fixedStock) GetStock(ctx context.Context, id int64) (domain.Stock, error) {
	return domain.Stock{ProductID: id, Amount: initialStock}, nil
}

func main() {
	ctx := context.Background()

	// Initialize Redis
	rdb := redis.NewClient(&redis.Options{Addr: redisAddr})
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("failed to connect redis: %v", err)
	}
	defer rdb.Close()

	logger := zap.NewNop()
	session := uuid.NewString()
	key := "cart:" + session
	defer rdb.Del(ctx, key)

	cartService := service.NewCartService(
		storage.NewRedisAdapter(rdb, time.Hour),
		fixedStock{}, fixedStock{},
		notify.NewLogNotifier(logger),
		logger,
	)

	// Counters
	var successCount atomic.Int32
	var failCount atomic.Int32

	// Spawn concurrent adds against one session
	var wg sync.WaitGroup
	start := time.Now()

	for i := 0; i < totalRequests; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			_, err := cartService.AddItem(ctx, session, productID)
			if err == nil {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}

	wg.Wait()
	elapsed := time.Since(start)

	// Results
	success := successCount.Load()
	fail := failCount.Load()

	fmt.Println("========== STRESS TEST RESULTS ==========")
	fmt.Printf("Stock:            %d\n", initialStock)
	fmt.Printf("Total Requests:   %d\n", totalRequests)
	fmt.Printf("Successful:       %d\n", success)
	fmt.Printf("Failed:           %d\n", fail)
	fmt.Printf("Duration:         %v\n", elapsed)
	fmt.Println("==========================================")

	if success == int32(initialStock) && fail == int32(totalRequests-initialStock) {
		fmt.Printf("PASS: exactly %d adds succeeded, %d rejected\n", initialStock, totalRequests-initialStock)
	} else {
		fmt.Printf("FAIL: expected %d success/%d fail, got %d/%d\n",
			initialStock, totalRequests-initialStock, success, fail)
	}

	// Verify the stored cart from a fresh manager, as after a restart
	m, err := service.NewCartManager(ctx, key, storage.NewRedisAdapter(rdb, 0), fixedStock{}, fixedStock{}, logger)
	if err != nil {
		log.Fatalf("failed to reload cart: %v", err)
	}

	cart := m.Snapshot()
	if len(cart) == 1 && cart[0].Amount == initialStock {
		fmt.Printf("PASS: stored amount is %d\n", initialStock)
	} else {
		fmt.Printf("FAIL: expected one item with amount %d, got %+v\n", initialStock, cart)
	}
}
