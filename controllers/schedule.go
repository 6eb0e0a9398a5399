// controllers/schedule.go
package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"recruit-reminder-backend/models"
	"recruit-reminder-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// ScheduleStore is the storage the HTTP layer needs.
type ScheduleStore interface {
	CreateSchedule(ctx context.Context, messagingID string, schedule *models.Schedule) (uuid.UUID, error)
	ListUserSchedules(ctx context.Context, messagingID, month string) ([]models.Schedule, error)
	TouchUser(ctx context.Context, messagingID string, at time.Time) error
}

type ScheduleController struct {
	Store    ScheduleStore
	Location *time.Location
	Now      func() time.Time
}

type CreateScheduleInput struct {
	MessagingID  string  `json:"messagingId" binding:"required"`
	TypeCode     string  `json:"typeCode" binding:"required"`
	CompanyName  string  `json:"companyName" binding:"required"`
	ScheduleDate string  `json:"scheduleDate" binding:"required"`
	ScheduleTime *string `json:"scheduleTime"`
	Location     *string `json:"location"`
	Memo         *string `json:"memo"`
}

type ScheduleResponse struct {
	ID           uuid.UUID `json:"id"`
	TypeCode     string    `json:"typeCode"`
	TypeName     string    `json:"typeName"`
	CompanyName  string    `json:"companyName"`
	ScheduleDate string    `json:"scheduleDate"`
	ScheduleTime *string   `json:"scheduleTime,omitempty"`
	Location     *string   `json:"location,omitempty"`
	Memo         *string   `json:"memo,omitempty"`
	DaysLeft     int       `json:"daysLeft"`
}

func (sc *ScheduleController) loc() *time.Location {
	if sc.Location == nil {
		return time.Local
	}
	return sc.Location
}

func (sc *ScheduleController) now() time.Time {
	if sc.Now != nil {
		return sc.Now().In(sc.loc())
	}
	return time.Now().In(sc.loc())
}

func (sc *ScheduleController) toResponse(s models.Schedule) ScheduleResponse {
	// dates come back from storage at UTC midnight; rebuild them in our zone
	date, _ := utils.ParseDate(s.DateString(), sc.loc())
	return ScheduleResponse{
		ID:           s.ID,
		TypeCode:     s.Type.String(),
		TypeName:     s.Type.DisplayName(),
		CompanyName:  s.CompanyName,
		ScheduleDate: s.DateString(),
		ScheduleTime: s.ScheduleTime,
		Location:     s.Location,
		Memo:         s.Memo,
		DaysLeft:     utils.DaysBetween(sc.now(), date),
	}
}

// CreateSchedule registers a schedule entered through the calendar UI.
func (sc *ScheduleController) CreateSchedule(c *gin.Context) {
	var input CreateScheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid input: "+err.Error())
		return
	}

	date, err := utils.ParseDate(input.ScheduleDate, sc.loc())
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid scheduleDate, expected YYYY-MM-DD")
		return
	}
	if input.ScheduleTime != nil && !utils.ValidateTime(*input.ScheduleTime) {
		utils.RespondWithError(c, http.StatusBadRequest, "Invalid scheduleTime, expected HH:MM")
		return
	}
	company := strings.TrimSpace(input.CompanyName)
	if company == "" {
		utils.RespondWithError(c, http.StatusBadRequest, "companyName must not be blank")
		return
	}

	schedule := models.Schedule{
		Type:         models.ParseScheduleType(input.TypeCode),
		CompanyName:  company,
		ScheduleDate: date,
		ScheduleTime: input.ScheduleTime,
		Location:     input.Location,
		Memo:         input.Memo,
	}
	if _, err := sc.Store.CreateSchedule(c.Request.Context(), input.MessagingID, &schedule); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to create schedule")
		return
	}

	c.JSON(http.StatusCreated, sc.toResponse(schedule))
}

// GetSchedules lists a user's schedules, optionally filtered by ?month=YYYY-MM.
func (sc *ScheduleController) GetSchedules(c *gin.Context) {
	messagingID := c.Param("messagingId")
	month := c.Query("month")
	if month != "" {
		if _, err := time.Parse("2006-01", month); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Invalid month, expected YYYY-MM")
			return
		}
	}

	schedules, err := sc.Store.ListUserSchedules(c.Request.Context(), messagingID, month)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Failed to retrieve schedules")
		return
	}

	out := make([]ScheduleResponse, 0, len(schedules))
	for _, s := range schedules {
		out = append(out, sc.toResponse(s))
	}
	c.JSON(http.StatusOK, gin.H{"schedules": out})
}

// GetScheduleTypes lists the selectable schedule types.
func GetScheduleTypes(c *gin.Context) {
	types := make([]gin.H, 0, len(models.AllScheduleTypes))
	for _, t := range models.AllScheduleTypes {
		types = append(types, gin.H{"code": t.String(), "name": t.DisplayName(), "glyph": t.Glyph()})
	}
	c.JSON(http.StatusOK, gin.H{"types": types})
}
