package jobs

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/pkg/common"
)

// JobStore persists registered jobs and the outcome of their runs
type JobStore interface {
	// Ensure creates the job row if missing and refreshes its schedule, returning the stored state
	Ensure(ctx context.Context, name, schedule, remark string) (*domain.CrmJob, error)

	// RecordRun stores the outcome of one execution
	RecordRun(ctx context.Context, name string, at time.Time, result, message string) error

	List(ctx context.Context) ([]domain.CrmJob, error)
}

// GormJobStore keeps job state in the crm_job table
type GormJobStore struct {
	db *gorm.DB
}

var _ JobStore = (*GormJobStore)(nil)

func NewGormJobStore(db *gorm.DB) *GormJobStore {
	return &GormJobStore{db: db}
}

func (s *GormJobStore) Ensure(ctx context.Context, name, schedule, remark string) (*domain.CrmJob, error) {
	job := &domain.CrmJob{
		ID:       common.UUIDint64(),
		Name:     name,
		Schedule: schedule,
		Status:   common.ENABLED,
		Remark:   remark,
	}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"schedule", "remark", "updated_at"}),
	}).Create(job).Error
	if err != nil {
		return nil, errors.Wrapf(err, "ensure job %s", name)
	}
	var stored domain.CrmJob
	if err := s.db.WithContext(ctx).Where("name = ?", name).First(&stored).Error; err != nil {
		return nil, errors.Wrapf(err, "load job %s", name)
	}
	return &stored, nil
}

func (s *GormJobStore) RecordRun(ctx context.Context, name string, at time.Time, result, message string) error {
	if len(message) > 1024 {
		message = message[:1024]
	}
	err := s.db.WithContext(ctx).
		Model(&domain.CrmJob{}).
		Where("name = ?", name).
		Updates(map[string]interface{}{
			"last_run_at":  at,
			"last_result":  result,
			"last_message": message,
		}).Error
	return errors.Wrapf(err, "record run of job %s", name)
}

func (s *GormJobStore) List(ctx context.Context) ([]domain.CrmJob, error) {
	var jobs []domain.CrmJob
	err := s.db.WithContext(ctx).Order("name ASC").Find(&jobs).Error
	return jobs, errors.Wrap(err, "list jobs")
}
