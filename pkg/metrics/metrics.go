package metrics

import (
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/nakabonne/tstorage"
	"github.com/pkg/errors"
)

// Metric names
const (
	CrmCustomersCreated = "crm_customers_created"
	CrmProductsCreated  = "crm_products_created"
	CrmOrdersCreated    = "crm_orders_created"
	CrmOrderAmount      = "crm_order_amount"
	CrmRestockUpdated   = "crm_restock_updated"
	CrmJobRuns          = "crm_job_runs"
	CrmJobFailures      = "crm_job_failures"
	CrmProcessMemory    = "crm_process_memuse"
	CrmProcessCPU       = "crm_process_cpuuse"
)

var (
	mu      sync.RWMutex
	storage tstorage.Storage
)

type Point struct {
	Timestamp int64   `json:"timestamp"`
	Value     float64 `json:"value"`
}

// InitMetrics opens the time series storage under <workdir>/data/metrics.
func InitMetrics(workdir string) error {
	mu.Lock()
	defer mu.Unlock()
	if storage != nil {
		return nil
	}
	dataPath := filepath.Join(workdir, "data", "metrics")
	if err := os.MkdirAll(dataPath, 0o755); err != nil {
		return errors.Wrap(err, "create metrics dir")
	}
	s, err := tstorage.NewStorage(
		tstorage.WithDataPath(dataPath),
		tstorage.WithTimestampPrecision(tstorage.Seconds),
		tstorage.WithPartitionDuration(6*time.Hour),
		tstorage.WithRetention(30*24*time.Hour),
	)
	if err != nil {
		return errors.Wrap(err, "open metrics storage")
	}
	storage = s
	return nil
}

// Close flushes and closes the storage. Safe to call when metrics were never initialized.
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if storage == nil {
		return nil
	}
	err := storage.Close()
	storage = nil
	return err
}

func insert(metric string, value float64) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return
	}
	_ = storage.InsertRows([]tstorage.Row{{
		Metric:    metric,
		DataPoint: tstorage.DataPoint{Timestamp: time.Now().Unix(), Value: value},
	}})
}

// Inc records one occurrence of metric.
func Inc(metric string) {
	insert(metric, 1)
}

// Add records value for a counter style metric.
func Add(metric string, value float64) {
	insert(metric, value)
}

// SetGauge records the current value of a gauge.
func SetGauge(metric string, value int64) {
	insert(metric, float64(value))
}

// Points returns data points in [start, end) (unix seconds).
func Points(metric string, start, end int64) ([]Point, error) {
	mu.RLock()
	defer mu.RUnlock()
	if storage == nil {
		return nil, nil
	}
	dps, err := storage.Select(metric, nil, start, end)
	if errors.Is(err, tstorage.ErrNoDataPoints) {
		return []Point{}, nil
	}
	if err != nil {
		return nil, err
	}
	out := make([]Point, 0, len(dps))
	for _, dp := range dps {
		out = append(out, Point{Timestamp: dp.Timestamp, Value: dp.Value})
	}
	return out, nil
}

// Sum adds up the values recorded for metric during the last window.
func Sum(metric string, window time.Duration) float64 {
	now := time.Now()
	points, err := Points(metric, now.Add(-window).Unix(), now.Unix()+1)
	if err != nil {
		return 0
	}
	var total float64
	for _, p := range points {
		total += p.Value
	}
	return total
}
