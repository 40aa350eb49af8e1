package jobs

import (
	"context"
	"os"

	"github.com/shirou/gopsutil/process"
	"go.uber.org/zap"

	"github.com/talkincode/toughcrm/pkg/metrics"
)

const HeartbeatJobName = "heartbeat"

// HelloClient probes the GraphQL endpoint
type HelloClient interface {
	Hello(ctx context.Context) (string, error)
}

// HeartbeatJob records that the CRM is alive, samples the process and probes the endpoint.
// The endpoint check is informative and never fails the job.
type HeartbeatJob struct {
	log    *FileLog
	client HelloClient
}

func NewHeartbeatJob(log *FileLog, client HelloClient) *HeartbeatJob {
	return &HeartbeatJob{log: log, client: client}
}

func (j *HeartbeatJob) Name() string { return HeartbeatJobName }

func (j *HeartbeatJob) Run(ctx context.Context) (string, error) {
	const msg = "CRM is alive"
	if err := j.log.Write(msg); err != nil {
		return "", err
	}
	sampleProcess()

	if j.client == nil {
		return msg, nil
	}
	hello, err := j.client.Hello(ctx)
	if err != nil {
		zap.L().Warn("GraphQL check failed", zap.Error(err), zap.String("namespace", "jobs"))
		return msg + ", GraphQL check failed", nil
	}
	zap.L().Info("GraphQL responded", zap.String("hello", hello), zap.String("namespace", "jobs"))
	return msg + ", GraphQL responded", nil
}

// sampleProcess stores the process memory and cpu usage gauges
func sampleProcess() {
	defer func() {
		if err := recover(); err != nil {
			zap.S().Error(err)
		}
	}()

	p, err := process.NewProcess(int32(os.Getpid())) //nolint:gosec // G115: PID is always within int32 range
	if err != nil {
		return
	}
	if cpuuse, err := p.CPUPercent(); err == nil {
		metrics.SetGauge(metrics.CrmProcessCPU, int64(cpuuse*100)) // percentage * 100
	}
	if meminfo, err := p.MemoryInfo(); err == nil {
		metrics.SetGauge(metrics.CrmProcessMemory, int64(meminfo.RSS/1024/1024)) //nolint:gosec // G115: memory MB value fits in int64
	}
}
