// controllers/jobs.go
package controllers

import (
	"context"
	"errors"
	"net/http"

	"recruit-reminder-backend/services"
	"recruit-reminder-backend/utils"

	"github.com/gin-gonic/gin"
)

type JobRunner interface {
	RunNow(ctx context.Context, name string) (*services.RunReport, error)
	JobNames() []string
}

type JobController struct {
	Runner JobRunner
}

// ListJobs returns the registered job names.
func (jc *JobController) ListJobs(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"jobs": jc.Runner.JobNames()})
}

// RunJob runs a scheduled job immediately and returns its report.
func (jc *JobController) RunJob(c *gin.Context) {
	report, err := jc.Runner.RunNow(c.Request.Context(), c.Param("name"))
	switch {
	case errors.Is(err, services.ErrUnknownJob):
		utils.RespondWithError(c, http.StatusNotFound, "Job not found")
	case errors.Is(err, services.ErrJobRunning):
		utils.RespondWithError(c, http.StatusConflict, "Job is already running")
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error(), "report": report})
	default:
		c.JSON(http.StatusOK, report)
	}
}
