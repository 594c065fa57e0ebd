package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aniscentsapp/aniscents/internal/cache"
	"github.com/aniscentsapp/aniscents/internal/db"
	"github.com/aniscentsapp/aniscents/internal/logging"
	"github.com/aniscentsapp/aniscents/internal/models"
)

var ErrDashboardUnavailable = errors.New("dashboard service unavailable")

// dashboardTTL bounds staleness of the cached projections.
const dashboardTTL = 5 * time.Minute

type DashboardService struct {
	orders   *db.OrderStore
	products *db.ProductStore
	users    *db.UserStore
	cache    cache.Provider
	logger   *slog.Logger
}

func NewDashboardService(orders *db.OrderStore, products *db.ProductStore, users *db.UserStore, cacheProvider cache.Provider, logger *slog.Logger) *DashboardService {
	return &DashboardService{
		orders:   orders,
		products: products,
		users:    users,
		cache:    cacheProvider,
		logger:   logger,
	}
}

func (s *DashboardService) loggerFromContext(ctx context.Context) *slog.Logger {
	return logging.FromContext(ctx, s.logger)
}

// SalesDashboard is the admin sales overview.
type SalesDashboard struct {
	RevenueKobo    int64                        `json:"revenue_kobo"`
	OrdersByStatus map[models.OrderStatus]int64 `json:"orders_by_status"`
	TotalOrders    int64                        `json:"total_orders"`
	CustomerCount  int64                        `json:"customer_count"`
	TopProducts    []*db.ProductSales           `json:"top_products"`
	GeneratedAt    time.Time                    `json:"generated_at"`
}

// InventoryDashboard lists products at or below their low stock threshold.
type InventoryDashboard struct {
	LowStock    []*models.Product `json:"low_stock"`
	GeneratedAt time.Time         `json:"generated_at"`
}

func (s *DashboardService) Sales(ctx context.Context) (*SalesDashboard, error) {
	if s == nil || s.orders == nil || s.users == nil {
		return nil, ErrDashboardUnavailable
	}

	var cached SalesDashboard
	if s.fromCache(ctx, "sales", &cached) {
		return &cached, nil
	}

	revenue, err := s.orders.Revenue(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to compute revenue: %w", err)
	}
	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count orders: %w", err)
	}
	customers, err := s.users.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to count customers: %w", err)
	}
	topProducts, err := s.orders.TopProducts(ctx, 10)
	if err != nil {
		return nil, fmt.Errorf("failed to load top products: %w", err)
	}

	dashboard := &SalesDashboard{
		RevenueKobo:    revenue,
		OrdersByStatus: counts,
		CustomerCount:  customers,
		TopProducts:    topProducts,
		GeneratedAt:    time.Now(),
	}
	for _, count := range counts {
		dashboard.TotalOrders += count
	}

	s.toCache(ctx, "sales", dashboard)
	return dashboard, nil
}

func (s *DashboardService) Inventory(ctx context.Context) (*InventoryDashboard, error) {
	if s == nil || s.products == nil {
		return nil, ErrDashboardUnavailable
	}

	var cached InventoryDashboard
	if s.fromCache(ctx, "inventory", &cached) {
		return &cached, nil
	}

	lowStock, err := s.products.LowStock(ctx, 50)
	if err != nil {
		return nil, fmt.Errorf("failed to load low stock products: %w", err)
	}

	dashboard := &InventoryDashboard{
		LowStock:    lowStock,
		GeneratedAt: time.Now(),
	}
	s.toCache(ctx, "inventory", dashboard)
	return dashboard, nil
}

// Invalidate drops a cached projection so the next read recomputes it.
func (s *DashboardService) Invalidate(ctx context.Context, scope string) {
	if s == nil || s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.DashboardKey(scope)); err != nil && !errors.Is(err, cache.ErrNotFound) {
		s.loggerFromContext(ctx).Warn("failed to invalidate dashboard cache", "scope", scope, "error", err)
	}
}

func (s *DashboardService) fromCache(ctx context.Context, scope string, out any) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, cache.DashboardKey(scope))
	if err != nil {
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.loggerFromContext(ctx).Warn("failed to decode cached dashboard", "scope", scope, "error", err)
		return false
	}
	return true
}

func (s *DashboardService) toCache(ctx context.Context, scope string, value any) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		s.loggerFromContext(ctx).Warn("failed to encode dashboard for cache", "scope", scope, "error", err)
		return
	}
	if err := s.cache.Set(ctx, cache.DashboardKey(scope), string(raw), dashboardTTL); err != nil {
		s.loggerFromContext(ctx).Warn("failed to cache dashboard", "scope", scope, "error", err)
	}
}
