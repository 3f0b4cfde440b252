package service

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/rl1809/storefront-cart/internal/core/domain"
	"github.com/rl1809/storefront-cart/internal/port"
)

const defaultKeyPrefix = "cart:"

type session struct {
	mu       sync.Mutex
	manager  *CartManager
	// lastUsed is guarded by CartService.mu.
	lastUsed time.Time
}

// CartService keeps one CartManager per browser session and serializes the
// operations issued against the same session.
type CartService struct {
	store     port.CartStore
	catalog   port.CatalogReader
	stock     port.StockReader
	notifier  port.Notifier
	logger    *zap.Logger
	keyPrefix string

	mu       sync.Mutex
	sessions map[string]*session
}

type Option func(*CartService)

func WithKeyPrefix(prefix string) Option {
	return func(s *CartService) {
		s.keyPrefix = prefix
	}
}

func NewCartService(store port.CartStore, catalog port.CatalogReader, stock port.StockReader, notifier port.Notifier, logger *zap.Logger, opts ...Option) *CartService {
	s := &CartService{
		store:     store,
		catalog:   catalog,
		stock:     stock,
		notifier:  notifier,
		logger:    logger,
		keyPrefix: defaultKeyPrefix,
		sessions:  make(map[string]*session),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *CartService) Cart(ctx context.Context, sessionID string) (domain.Cart, error) {
	res, err := s.withManager(ctx, sessionID, func(m *CartManager) (Result, error) {
		return Result{Cart: m.Snapshot()}, nil
	})
	if err != nil {
		s.logger.Warn("cart read failed", zap.String("session", sessionID), zap.Error(err))
		return nil, err
	}
	return res.Cart, nil
}

func (s *CartService) AddItem(ctx context.Context, sessionID string, productID int64) (Result, error) {
	res, err := s.withManager(ctx, sessionID, func(m *CartManager) (Result, error) {
		return m.AddItem(ctx, productID)
	})
	s.report(ctx, sessionID, res, err)
	return res, err
}

func (s *CartService) RemoveItem(ctx context.Context, sessionID string, productID int64) (Result, error) {
	res, err := s.withManager(ctx, sessionID, func(m *CartManager) (Result, error) {
		return m.RemoveItem(ctx, productID)
	})
	s.report(ctx, sessionID, res, err)
	return res, err
}

func (s *CartService) SetAmount(ctx context.Context, sessionID string, productID int64, amount int) (Result, error) {
	res, err := s.withManager(ctx, sessionID, func(m *CartManager) (Result, error) {
		return m.SetAmount(ctx, productID, amount)
	})
	s.report(ctx, sessionID, res, err)
	return res, err
}

func (s *CartService) withManager(ctx context.Context, sessionID string, fn func(*CartManager) (Result, error)) (Result, error) {
	s.mu.Lock()
	sess, ok := s.sessions[sessionID]
	if !ok {
		sess = &session{}
		s.sessions[sessionID] = sess
	}
	sess.lastUsed = time.Now()
	s.mu.Unlock()

	sess.mu.Lock()
	defer sess.mu.Unlock()

	if sess.manager == nil {
		m, err := NewCartManager(ctx, s.keyPrefix+sessionID, s.store, s.catalog, s.stock, s.logger)
		if err != nil {
			return Result{}, opError("load cart", 0, ErrCartUnavailable, err)
		}
		sess.manager = m
	}

	return fn(sess.manager)
}

// EvictIdle drops the managers of sessions not used since now-maxIdle and
// returns how many were dropped. Carts stay in the store and are reloaded on
// the next request. Sessions with an operation in flight are kept.
func (s *CartService) EvictIdle(now time.Time, maxIdle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	evicted := 0
	for id, sess := range s.sessions {
		if now.Sub(sess.lastUsed) < maxIdle {
			continue
		}
		if !sess.mu.TryLock() {
			continue
		}
		delete(s.sessions, id)
		sess.mu.Unlock()
		evicted++
	}

	return evicted
}

// RunEviction calls EvictIdle every interval until ctx is done.
func (s *CartService) RunEviction(ctx context.Context, interval, maxIdle time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			if n := s.EvictIdle(now, maxIdle); n > 0 {
				s.logger.Debug("evicted idle cart sessions", zap.Int("count", n))
			}
		}
	}
}

func (s *CartService) sessionCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

func (s *CartService) report(ctx context.Context, sessionID string, res Result, err error) {
	if err != nil {
		s.logger.Warn("cart operation failed", zap.String("session", sessionID), zap.Error(err))
		s.notifier.Error(ctx, sessionID, UserMessage(err))
		return
	}
	if res.Ignored || res.Message == "" {
		return
	}
	s.notifier.Success(ctx, sessionID, res.Message)
}
