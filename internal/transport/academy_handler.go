package transport

import (
	"net/http"
	"time"

	"academy-platform/internal/domain"
	"academy-platform/internal/middleware"
	"academy-platform/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const dateLayout = "2006-01-02"

// AttendanceRecordRequest is one student's mark
type AttendanceRecordRequest struct {
	StudentID string `json:"studentId" validate:"required,uuid"`
	Status    string `json:"status" validate:"required,oneof=present absent late excused"`
}

// MarkAttendanceRequest represents the attendance register payload
type MarkAttendanceRequest struct {
	Date    string                    `json:"date" validate:"required,datetime=2006-01-02"`
	Notes   string                    `json:"notes" validate:"max=2000"`
	Records []AttendanceRecordRequest `json:"records" validate:"max=500,dive"`
}

// CopyGroupRequest represents the group copy payload
type CopyGroupRequest struct {
	Name string `json:"name" validate:"max=255"`
}

// AttendanceRecordResponse is a stored mark
type AttendanceRecordResponse struct {
	StudentID string `json:"studentId"`
	Status    string `json:"status"`
}

// AttendanceResponse is a group's register for one day
type AttendanceResponse struct {
	ID      string                     `json:"id"`
	GroupID string                     `json:"groupId"`
	Date    string                     `json:"date"`
	Notes   string                     `json:"notes"`
	Records []AttendanceRecordResponse `json:"records"`
}

// GroupResponse represents a training group
type GroupResponse struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	TrainerName string   `json:"trainerName,omitempty"`
	Schedule    string   `json:"schedule,omitempty"`
	IsActive    bool     `json:"isActive"`
	StudentIDs  []string `json:"studentIds"`
}

// AcademyHandler handles dashboard group and attendance requests
type AcademyHandler struct {
	academy service.AcademyService
	logger  *zap.Logger
}

// NewAcademyHandler creates a new AcademyHandler
func NewAcademyHandler(academy service.AcademyService, logger *zap.Logger) *AcademyHandler {
	return &AcademyHandler{
		academy: academy,
		logger:  logger,
	}
}

// RegisterRoutes registers academy routes
func (h *AcademyHandler) RegisterRoutes(r chi.Router, authMiddleware func(http.Handler) http.Handler) {
	r.Route("/api/dashboard/groups/{groupID}", func(r chi.Router) {
		r.Use(authMiddleware)
		r.Get("/attendance", h.GetAttendance)
		r.Put("/attendance", h.MarkAttendance)
		r.With(middleware.RequireRole([]string{middleware.RoleOwner, middleware.RoleManager}, h.logger)).
			Post("/copy", h.CopyGroup)
	})
}

func groupIDParam(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	groupID, err := uuid.Parse(chi.URLParam(r, "groupID"))
	if err != nil {
		middleware.RespondWithLocalizedError(w, r, http.StatusNotFound, middleware.MsgNotFound)
		return uuid.Nil, false
	}
	return groupID, true
}

// MarkAttendance records the register of a group for one day
func (h *AcademyHandler) MarkAttendance(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	var req MarkAttendanceRequest
	if !decodeRequest(w, r, h.logger, &req) {
		return
	}

	date, _ := time.Parse(dateLayout, req.Date)
	input := service.MarkAttendanceInput{
		GroupID: groupID,
		Date:    date,
		Notes:   req.Notes,
		Marks:   make([]service.AttendanceMark, 0, len(req.Records)),
	}
	for _, rec := range req.Records {
		input.Marks = append(input.Marks, service.AttendanceMark{
			StudentID: uuid.MustParse(rec.StudentID),
			Status:    domain.AttendanceStatus(rec.Status),
		})
	}

	session, err := h.academy.MarkAttendance(r.Context(), scope, input)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Attendance marking")
		return
	}

	h.logger.Info("Attendance recorded",
		zap.String("group_id", groupID.String()),
		zap.String("date", req.Date),
		zap.Int("records", len(session.Records)),
	)

	middleware.RespondWithJSON(w, http.StatusOK, toAttendanceResponse(session))
}

// GetAttendance returns the register of a group for ?date=
func (h *AcademyHandler) GetAttendance(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	date, err := time.Parse(dateLayout, r.URL.Query().Get("date"))
	if err != nil {
		middleware.RespondWithValidationErrors(w, r, []middleware.ValidationError{
			{Field: "date", Message: "Must be a date in the format " + dateLayout},
		})
		return
	}

	session, err := h.academy.GetAttendance(r.Context(), scope, groupID, date)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Attendance lookup")
		return
	}

	middleware.RespondWithJSON(w, http.StatusOK, toAttendanceResponse(session))
}

// CopyGroup duplicates a group together with its roster
func (h *AcademyHandler) CopyGroup(w http.ResponseWriter, r *http.Request) {
	scope, ok := requireScope(w, r)
	if !ok {
		return
	}
	groupID, ok := groupIDParam(w, r)
	if !ok {
		return
	}

	var req CopyGroupRequest
	if r.ContentLength != 0 {
		if !decodeRequest(w, r, h.logger, &req) {
			return
		}
	}

	group, err := h.academy.CopyGroup(r.Context(), scope, groupID, req.Name)
	if err != nil {
		respondServiceError(w, r, h.logger, err, "Group copy")
		return
	}

	middleware.RespondWithJSON(w, http.StatusCreated, toGroupResponse(group))
}

func toAttendanceResponse(session *domain.AttendanceSession) AttendanceResponse {
	resp := AttendanceResponse{
		ID:      session.ID.String(),
		GroupID: session.GroupID.String(),
		Date:    session.SessionDate.Format(dateLayout),
		Notes:   session.Notes,
		Records: make([]AttendanceRecordResponse, 0, len(session.Records)),
	}
	for _, rec := range session.Records {
		resp.Records = append(resp.Records, AttendanceRecordResponse{
			StudentID: rec.StudentID.String(),
			Status:    string(rec.Status),
		})
	}
	return resp
}

func toGroupResponse(group *domain.Group) GroupResponse {
	resp := GroupResponse{
		ID:          group.ID.String(),
		Name:        group.Name,
		TrainerName: group.TrainerName,
		Schedule:    group.Schedule,
		IsActive:    group.IsActive,
		StudentIDs:  make([]string, 0, len(group.StudentIDs)),
	}
	for _, id := range group.StudentIDs {
		resp.StudentIDs = append(resp.StudentIDs, id.String())
	}
	return resp
}
