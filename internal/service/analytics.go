package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"spiceshop-service/internal/apperr"
	"spiceshop-service/internal/model"
	"spiceshop-service/internal/repository"

	"github.com/shopspring/decimal"
)

const (
	defaultSalesWindow = 30 * 24 * time.Hour
	activeUserWindow   = 30 * 24 * time.Hour
	dayLayout          = "2006-01-02"
)

// DailySales is the revenue of one UTC day
type DailySales struct {
	Date        string          `json:"date"`
	TotalSales  decimal.Decimal `json:"total_sales"`
	OrdersCount int             `json:"orders_count"`
}

// ProductStats is the per-product view merchants get
type ProductStats struct {
	ID            uint    `json:"id"`
	Name          string  `json:"name"`
	StockQuantity int     `json:"stock_quantity"`
	RatingAverage float64 `json:"rating_average"`
	ReviewCount   int     `json:"review_count"`
}

// AnalyticsService computes read-only sales and user reports
type AnalyticsService struct {
	store *repository.Store
	now   func() time.Time
}

// NewAnalyticsService creates the analytics service
func NewAnalyticsService(store *repository.Store) *AnalyticsService {
	return &AnalyticsService{store: store, now: time.Now}
}

// Range resolves the start and end query values. Missing start means 30
// days before end, missing end means now. A bare date as end covers that
// whole day.
func (s *AnalyticsService) Range(start, end string) (time.Time, time.Time, error) {
	to := s.now().UTC()
	if end = strings.TrimSpace(end); end != "" {
		t, dateOnly, err := parseRangeTime(end)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.New(apperr.ErrValidation, "end must be a date (YYYY-MM-DD) or RFC 3339 time.")
		}
		if dateOnly {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		to = t
	}

	from := to.Add(-defaultSalesWindow)
	if start = strings.TrimSpace(start); start != "" {
		t, _, err := parseRangeTime(start)
		if err != nil {
			return time.Time{}, time.Time{}, apperr.New(apperr.ErrValidation, "start must be a date (YYYY-MM-DD) or RFC 3339 time.")
		}
		from = t
	}

	if from.After(to) {
		return time.Time{}, time.Time{}, apperr.New(apperr.ErrValidation, "start must not be after end.")
	}
	return from, to, nil
}

// Sales totals every order per day in [from, to]
func (s *AnalyticsService) Sales(ctx context.Context, from, to time.Time) ([]DailySales, error) {
	orders, err := s.store.Orders.ListBetween(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return groupByDay(orders, func(o model.Order) (decimal.Decimal, bool) {
		return o.TotalAmount, true
	}), nil
}

// MerchantSales totals only merchantID's lines per day in [from, to]
func (s *AnalyticsService) MerchantSales(ctx context.Context, merchantID uint, from, to time.Time) ([]DailySales, error) {
	orders, err := s.store.Orders.ListByMerchant(ctx, merchantID, &from, &to)
	if err != nil {
		return nil, err
	}
	return groupByDay(orders, func(o model.Order) (decimal.Decimal, bool) {
		total := decimal.Zero
		owned := false
		for _, it := range o.Items {
			if it.MerchantID == merchantID {
				total = total.Add(it.LineTotal())
				owned = true
			}
		}
		return total, owned
	}), nil
}

// Users counts accounts per role and how many logged in within 30 days
func (s *AnalyticsService) Users(ctx context.Context) ([]repository.RoleActivity, error) {
	return s.store.Users.RoleActivity(ctx, s.now().Add(-activeUserWindow))
}

// MerchantProducts lists the merchant's products, most reviewed first
func (s *AnalyticsService) MerchantProducts(ctx context.Context, merchantID uint) ([]ProductStats, error) {
	products, err := s.store.Products.ListByMerchant(ctx, merchantID, "review_count DESC, id ASC")
	if err != nil {
		return nil, err
	}
	stats := make([]ProductStats, 0, len(products))
	for _, p := range products {
		stats = append(stats, ProductStats{
			ID:            p.ID,
			Name:          p.Name,
			StockQuantity: p.StockQuantity,
			RatingAverage: p.RatingAverage,
			ReviewCount:   p.ReviewCount,
		})
	}
	return stats, nil
}

func groupByDay(orders []model.Order, amount func(model.Order) (decimal.Decimal, bool)) []DailySales {
	byDay := make(map[string]*DailySales)
	for _, o := range orders {
		total, ok := amount(o)
		if !ok {
			continue
		}
		day := o.OrderDate.UTC().Format(dayLayout)
		d, found := byDay[day]
		if !found {
			d = &DailySales{Date: day, TotalSales: decimal.Zero}
			byDay[day] = d
		}
		d.TotalSales = d.TotalSales.Add(total)
		d.OrdersCount++
	}

	days := make([]DailySales, 0, len(byDay))
	for _, d := range byDay {
		days = append(days, *d)
	}
	sort.Slice(days, func(i, j int) bool { return days[i].Date < days[j].Date })
	return days
}

func parseRangeTime(v string) (time.Time, bool, error) {
	if t, err := time.Parse(dayLayout, v); err == nil {
		return t.UTC(), true, nil
	}
	t, err := time.Parse(time.RFC3339, v)
	if err != nil {
		return time.Time{}, false, err
	}
	return t.UTC(), false, nil
}
