package app

import (
	"context"

	"go.uber.org/zap"
)

// StartJobs stores the job registry and starts the cron triggers when jobs are enabled.
func (a *Application) StartJobs(ctx context.Context) error {
	if !a.appConfig.Jobs.Enabled {
		zap.L().Info("scheduled jobs disabled", zap.String("namespace", "jobs"))
		_, err := a.sched.Sync(ctx)
		return err
	}
	return a.sched.Start(ctx)
}

// RunJobNow triggers a job immediately on the worker pool
func (a *Application) RunJobNow(name string) error {
	return a.sched.RunNow(name)
}

// RunJob executes a job in the caller's goroutine
func (a *Application) RunJob(ctx context.Context, name string) (string, error) {
	if _, err := a.sched.Sync(ctx); err != nil {
		return "", err
	}
	return a.sched.Run(ctx, name)
}
