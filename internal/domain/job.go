package domain

import "time"

// CrmJob persisted state of a registered scheduled job
type CrmJob struct {
	ID          int64     `json:"id,string" form:"id"`
	Name        string    `gorm:"size:64;uniqueIndex" json:"name" form:"name"` // Job name (heartbeat, report, restock, ...)
	Schedule    string    `gorm:"size:64" json:"schedule" form:"schedule"`     // Cron spec, empty when only run on demand
	Status      string    `gorm:"size:20" json:"status" form:"status"`         // enabled/disabled
	LastRunAt   time.Time `json:"last_run_at"`                                  // Last execution time
	LastResult  string    `gorm:"size:20" json:"last_result"`                   // success/failed
	LastMessage string    `gorm:"size:1024" json:"last_message"`                // Last execution message or error
	Remark      string    `json:"remark" form:"remark"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// TableName Specify table name
func (CrmJob) TableName() string {
	return "crm_job"
}
