package adminapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/spf13/cast"

	"github.com/talkincode/toughcrm/internal/domain"
	"github.com/talkincode/toughcrm/internal/jobs"
	"github.com/talkincode/toughcrm/internal/webserver"
	"github.com/talkincode/toughcrm/pkg/common"
)

// jobView is a stored job with its next trigger time
type jobView struct {
	domain.CrmJob
	NextRunAt *time.Time `json:"next_run_at,omitempty"`
}

// jobUpdatePayload changes the operator status of a job
type jobUpdatePayload struct {
	Status string `json:"status" validate:"required,oneof=enabled disabled"`
}

// registerJobRoutes registers scheduled job API routes
func registerJobRoutes() {
	webserver.ApiGET("/crm/jobs", ListJobs)
	webserver.ApiPUT("/crm/jobs/:name", UpdateJob)
	webserver.ApiPOST("/crm/jobs/:name/run", TriggerJob)
}

// ListJobs returns the registered jobs with their last outcome
func ListJobs(c echo.Context) error {
	appCtx := GetAppContext(c)
	sched := appCtx.Scheduler()
	if _, err := sched.Sync(c.Request().Context()); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query jobs", err.Error())
	}
	stored, err := appCtx.JobStore().List(c.Request().Context())
	if err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query jobs", err.Error())
	}
	views := make([]jobView, 0, len(stored))
	for _, j := range stored {
		if !sched.Has(j.Name) {
			continue
		}
		v := jobView{CrmJob: j}
		if next := sched.NextRun(j.Name); !next.IsZero() {
			v.NextRunAt = &next
		}
		views = append(views, v)
	}
	return ok(c, views)
}

// UpdateJob enables or disables a job. The change applies when the scheduler next starts.
func UpdateJob(c echo.Context) error {
	name := c.Param("name")
	if !GetAppContext(c).Scheduler().Has(name) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
	}
	var payload jobUpdatePayload
	if err := c.Bind(&payload); err != nil {
		return fail(c, http.StatusBadRequest, "INVALID_REQUEST", "Unable to parse request parameters", err.Error())
	}
	if err := c.Validate(&payload); err != nil {
		return handleValidationError(c, err)
	}
	if _, err := GetAppContext(c).Scheduler().Sync(c.Request().Context()); err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query jobs", err.Error())
	}
	var job domain.CrmJob
	if err := GetDB(c).Where("name = ?", name).First(&job).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "DATABASE_ERROR", "Failed to query job", err.Error())
	}
	if err := GetDB(c).Model(&job).Updates(map[string]interface{}{
		"status":     payload.Status,
		"updated_at": time.Now(),
	}).Error; err != nil {
		return fail(c, http.StatusInternalServerError, "UPDATE_FAILED", "Failed to update job", err.Error())
	}
	job.Status = payload.Status
	return ok(c, job)
}

// TriggerJob queues a job on the worker pool, or runs it inline with ?wait=true.
func TriggerJob(c echo.Context) error {
	name := c.Param("name")
	appCtx := GetAppContext(c)

	if cast.ToBool(c.QueryParam("wait")) {
		msg, err := appCtx.RunJob(c.Request().Context(), name)
		if errors.Is(err, jobs.ErrUnknownJob) {
			return fail(c, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
		}
		if err != nil {
			return fail(c, http.StatusInternalServerError, "RUN_FAILED", "Job failed", err.Error())
		}
		return ok(c, map[string]string{"job": name, "result": common.SUCCESS, "message": msg})
	}

	if err := appCtx.RunJobNow(name); errors.Is(err, jobs.ErrUnknownJob) {
		return fail(c, http.StatusNotFound, "NOT_FOUND", "Job not found", nil)
	} else if err != nil {
		return fail(c, http.StatusInternalServerError, "RUN_FAILED", "Failed to run job", err.Error())
	}
	return c.JSON(http.StatusAccepted, Response{Code: "SUCCESS", Data: map[string]string{"job": name}})
}
