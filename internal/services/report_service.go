package services

import (
	"context"

	"ecomapp/internal/domain"
	"ecomapp/internal/repos"
	"ecomapp/internal/validate"

	"github.com/jmoiron/sqlx"
)

const (
	DefaultTopProducts = 5
	MaxTopProducts     = 50
)

type ReportService struct {
	db *sqlx.DB
}

func NewReportService(db *sqlx.DB) *ReportService { return &ReportService{db: db} }

func (s *ReportService) SalesByPeriod(ctx context.Context, period string) ([]repos.PeriodSales, error) {
	p, ok := validate.Period(period)
	if !ok {
		return nil, domain.Invalid("period", "period must be one of day, week, month")
	}
	rows, err := repos.NewReportRepo(s.db).SalesByPeriod(ctx, p)
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
	}
	return rows, err
}

func (s *ReportService) SalesByStatus(ctx context.Context) ([]repos.StatusSales, error) {
	rows, err := repos.NewReportRepo(s.db).SalesByStatus(ctx)
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
	}
	return rows, err
}

// TopProducts clamps limit to [1, MaxTopProducts]; zero means the default.
func (s *ReportService) TopProducts(ctx context.Context, limit int) ([]repos.ProductSales, error) {
	switch {
	case limit <= 0:
		limit = DefaultTopProducts
	case limit > MaxTopProducts:
		limit = MaxTopProducts
	}
	rows, err := repos.NewReportRepo(s.db).TopProducts(ctx, limit)
	for i := range rows {
		rows[i].Revenue = rows[i].Revenue.Round(2)
	}
	return rows, err
}
