package jobs

import (
	"context"
	"fmt"

	"github.com/talkincode/toughcrm/internal/domain"
)

const ReportJobName = "report"

// Reporter produces the CRM summary
type Reporter interface {
	GenerateReport(ctx context.Context) (*domain.Report, error)
}

// ReportJob appends the weekly CRM summary
type ReportJob struct {
	log      *FileLog
	reporter Reporter
}

func NewReportJob(log *FileLog, reporter Reporter) *ReportJob {
	return &ReportJob{log: log, reporter: reporter}
}

func (j *ReportJob) Name() string { return ReportJobName }

// ReportLine renders the summary line of a report
func ReportLine(r *domain.Report) string {
	return fmt.Sprintf("Report: %d customers, %d orders, $%s revenue",
		r.TotalCustomers, r.TotalOrders, r.TotalRevenue.StringFixed(2))
}

func (j *ReportJob) Run(ctx context.Context) (string, error) {
	report, err := j.reporter.GenerateReport(ctx)
	if err != nil {
		if !domain.IsKind(err, domain.AggregationFailure) {
			err = domain.NewAggregationError(err)
		}
		if werr := j.log.Write(err.Error()); werr != nil {
			return "", werr
		}
		return "", err
	}
	line := ReportLine(report)
	return line, j.log.Write(line)
}
