package storage

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"

	_ "github.com/go-sql-driver/mysql"

	"github.com/rl1809/storefront-cart/internal/port"
)

func getMySQLDB(t *testing.T) *sql.DB {
	dsn := os.Getenv("MYSQL_DSN")
	if dsn == "" {
		dsn = "root:root@tcp(localhost:3306)/storefront?parseTime=true"
	}

	db, err := sql.Open("mysql", dsn)
	if err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	if err := db.Ping(); err != nil {
		t.Skipf("MySQL not available: %v", err)
	}

	return db
}

func TestGetProduct(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	// Setup
	_, err := db.ExecContext(ctx, `
		INSERT INTO products (id, title, price, image) VALUES (9001, 'Tênis VR Caminhada', 139.9, 'https://example.com/9001.jpg')
		ON DUPLICATE KEY UPDATE title = VALUES(title), price = VALUES(price), image = VALUES(image)`)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM products WHERE id = 9001`)

	p, err := adapter.GetProduct(ctx, 9001)
	if err != nil {
		t.Fatalf("GetProduct failed: %v", err)
	}

	if p.ID != 9001 {
		t.Errorf("expected id 9001, got %d", p.ID)
	}
	if p.Title != "Tênis VR Caminhada" {
		t.Errorf("unexpected title %q", p.Title)
	}
	if p.Price != 139.9 {
		t.Errorf("expected price 139.9, got %v", p.Price)
	}
}

func TestGetProduct_NotFound(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	adapter := NewMySQLAdapter(db)

	_, err := adapter.GetProduct(context.Background(), -1)
	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}

func TestGetStock(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	ctx := context.Background()
	adapter := NewMySQLAdapter(db)

	// Setup
	_, err := db.ExecContext(ctx, `
		INSERT INTO stock (product_id, amount) VALUES (9002, 5)
		ON DUPLICATE KEY UPDATE amount = 5`)
	if err != nil {
		t.Fatalf("setup failed: %v", err)
	}
	defer db.ExecContext(ctx, `DELETE FROM stock WHERE product_id = 9002`)

	s, err := adapter.GetStock(ctx, 9002)
	if err != nil {
		t.Fatalf("GetStock failed: %v", err)
	}
	if s.ProductID != 9002 || s.Amount != 5 {
		t.Errorf("expected {9002 5}, got %+v", s)
	}
}

func TestGetStock_NotFound(t *testing.T) {
	db := getMySQLDB(t)
	defer db.Close()

	adapter := NewMySQLAdapter(db)

	_, err := adapter.GetStock(context.Background(), -1)
	if !errors.Is(err, port.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got: %v", err)
	}
}
