package app

import (
	"time"

	"github.com/talkincode/toughcrm/internal/jobs"
)

// initJobs registers the maintenance jobs. Triggers start with StartJobs.
func (a *Application) initJobs() error {
	cfg := a.appConfig.Jobs
	loc, err := time.LoadLocation(a.appConfig.System.Location)
	if err != nil {
		loc = time.Local
	}
	a.sched, err = jobs.NewScheduler(loc, cfg.Workers, a.jobStore)
	if err != nil {
		return err
	}

	registry := []struct {
		job      jobs.Job
		schedule string
		remark   string
	}{
		{
			job:      jobs.NewHeartbeatJob(jobs.NewFileLog(cfg.HeartbeatLog), a.upstream),
			schedule: cfg.HeartbeatSchedule,
			remark:   "Records that the CRM is alive and probes the GraphQL endpoint",
		},
		{
			job:      jobs.NewReportJob(jobs.NewFileLog(cfg.ReportLog), a.crmService),
			schedule: cfg.ReportSchedule,
			remark:   "Weekly customers, orders and revenue summary",
		},
		{
			job:      jobs.NewRestockJob(jobs.NewFileLog(cfg.RestockLog), a.crmService),
			schedule: cfg.RestockSchedule,
			remark:   "Adds stock to products running low",
		},
		{
			job:      jobs.NewReminderJob(jobs.NewFileLog(cfg.ReminderLog), a.upstream, a.mailer, cfg.ReminderDays),
			schedule: cfg.ReminderSchedule,
			remark:   "Lists recent orders and mails reminders",
		},
	}
	for _, r := range registry {
		if err := a.sched.Register(r.job, r.schedule, r.remark); err != nil {
			return err
		}
	}
	return nil
}
