package jobs

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/talkincode/toughcrm/internal/domain"
)

const RestockJobName = "restock"

// Restocker replenishes low stock products
type Restocker interface {
	RestockLowStock(ctx context.Context) ([]domain.Product, error)
}

// RestockJob runs the low stock replenishment and appends the updated products
type RestockJob struct {
	log       *FileLog
	restocker Restocker
}

func NewRestockJob(log *FileLog, restocker Restocker) *RestockJob {
	return &RestockJob{log: log, restocker: restocker}
}

func (j *RestockJob) Name() string { return RestockJobName }

// RestockLine renders the products updated by one run
func RestockLine(products []domain.Product) string {
	if len(products) == 0 {
		return "Updated Products: none"
	}
	items := make([]string, 0, len(products))
	for _, p := range products {
		items = append(items, fmt.Sprintf("%s (stock %d)", p.Name, p.Stock))
	}
	return "Updated Products: " + strings.Join(items, ", ")
}

func (j *RestockJob) Run(ctx context.Context) (string, error) {
	products, err := j.restocker.RestockLowStock(ctx)
	if err != nil {
		if werr := j.log.Write(fmt.Sprintf("Error during stock update: %s", err.Error())); werr != nil {
			return "", werr
		}
		return "", errors.Wrap(err, "stock update")
	}
	line := RestockLine(products)
	return line, j.log.Write(line)
}
