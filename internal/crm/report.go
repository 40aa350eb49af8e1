package crm

import (
	"context"

	"github.com/montanaflynn/stats"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/talkincode/toughcrm/internal/domain"
)

// GenerateReport aggregates customer and order totals. The three reads run concurrently
// outside a transaction, so the counts may be taken at slightly different instants.
// Any failure is returned as an AggregationFailure carrying the reason.
func (s *Service) GenerateReport(ctx context.Context) (*domain.Report, error) {
	var (
		customers int64
		orders    int64
		totals    []decimal.Decimal
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		customers, err = s.repo.CountCustomers(gctx)
		return err
	})
	g.Go(func() (err error) {
		orders, err = s.repo.CountOrders(gctx, OrderFilter{})
		return err
	})
	g.Go(func() (err error) {
		totals, err = s.repo.OrderTotals(gctx)
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, domain.NewAggregationError(err)
	}

	report := &domain.Report{
		TotalCustomers: customers,
		TotalOrders:    orders,
		TotalRevenue:   decimal.Sum(decimal.Zero, totals...),
		GeneratedAt:    s.now(),
	}
	if len(totals) > 0 {
		values := make(stats.Float64Data, 0, len(totals))
		for _, t := range totals {
			values = append(values, t.InexactFloat64())
		}
		mean, _ := values.Mean()
		median, _ := values.Median()
		report.AverageOrder, _ = stats.Round(mean, 2)
		report.MedianOrder, _ = stats.Round(median, 2)
	}
	return report, nil
}
