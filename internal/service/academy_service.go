package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"academy-platform/internal/domain"
	"academy-platform/internal/repository"
	"academy-platform/internal/tenant"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// AttendanceMark is the status given to one student.
type AttendanceMark struct {
	StudentID uuid.UUID
	Status    domain.AttendanceStatus
}

// MarkAttendanceInput records a group's register for one day
type MarkAttendanceInput struct {
	GroupID uuid.UUID
	Date    time.Time
	Notes   string
	Marks   []AttendanceMark
}

// AcademyService defines group and attendance business logic
type AcademyService interface {
	CopyGroup(ctx context.Context, scope tenant.Scope, groupID uuid.UUID, name string) (*domain.Group, error)
	MarkAttendance(ctx context.Context, scope tenant.Scope, input MarkAttendanceInput) (*domain.AttendanceSession, error)
	GetAttendance(ctx context.Context, scope tenant.Scope, groupID uuid.UUID, date time.Time) (*domain.AttendanceSession, error)
}

type academyService struct {
	groups     repository.GroupRepository
	attendance repository.AttendanceRepository
	logger     *zap.Logger
	now        func() time.Time
}

// NewAcademyService creates a new instance of AcademyService
func NewAcademyService(groups repository.GroupRepository, attendance repository.AttendanceRepository, logger *zap.Logger) AcademyService {
	return &academyService{
		groups:     groups,
		attendance: attendance,
		logger:     logger,
		now:        time.Now,
	}
}

// CopyGroup duplicates a group with its roster. An empty name yields
// "<source name> (copy)".
func (s *academyService) CopyGroup(ctx context.Context, scope tenant.Scope, groupID uuid.UUID, name string) (*domain.Group, error) {
	source, err := s.groups.FindByID(ctx, scope, groupID)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}

	name = strings.TrimSpace(name)
	if name == "" {
		name = source.Name + " (copy)"
	}

	now := s.now().UTC()
	target := &domain.Group{
		ID:        uuid.New(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.groups.Copy(ctx, scope, source.ID, target); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to copy group: %w", err)
	}

	s.logger.Info("Group copied",
		zap.String("source_id", source.ID.String()),
		zap.String("group_id", target.ID.String()),
		zap.Int("students", len(target.StudentIDs)),
	)

	return target, nil
}

func validStatus(status domain.AttendanceStatus) bool {
	switch status {
	case domain.AttendancePresent, domain.AttendanceAbsent, domain.AttendanceLate, domain.AttendanceExcused:
		return true
	}
	return false
}

// MarkAttendance upserts the session for (group, date) and one record per
// mark. Every student must belong to the group and appear at most once.
func (s *academyService) MarkAttendance(ctx context.Context, scope tenant.Scope, input MarkAttendanceInput) (*domain.AttendanceSession, error) {
	group, err := s.groups.FindByID(ctx, scope, input.GroupID)
	if err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}

	members := make(map[uuid.UUID]bool, len(group.StudentIDs))
	for _, id := range group.StudentIDs {
		members[id] = true
	}

	verr := &ValidationError{}
	if input.Date.IsZero() {
		verr.add("date", "is required")
	}

	seen := make(map[uuid.UUID]bool, len(input.Marks))
	records := make([]domain.AttendanceRecord, 0, len(input.Marks))
	for i, mark := range input.Marks {
		field := fmt.Sprintf("records[%d]", i)
		switch {
		case !members[mark.StudentID]:
			verr.add(field+".studentId", "student is not a member of this group")
		case seen[mark.StudentID]:
			verr.add(field+".studentId", "student is listed more than once")
		}
		if !validStatus(mark.Status) {
			verr.add(field+".status", "must be one of present, absent, late, excused")
		}
		seen[mark.StudentID] = true
		records = append(records, domain.AttendanceRecord{StudentID: mark.StudentID, Status: mark.Status})
	}

	if err := verr.orNil(); err != nil {
		return nil, err
	}

	session := &domain.AttendanceSession{
		GroupID:     group.ID,
		SessionDate: input.Date,
		Notes:       strings.TrimSpace(input.Notes),
		Records:     records,
	}

	if err := s.attendance.Upsert(ctx, scope, session); err != nil {
		if errors.Is(err, repository.ErrGroupNotFound) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to save attendance: %w", err)
	}

	return session, nil
}

func (s *academyService) GetAttendance(ctx context.Context, scope tenant.Scope, groupID uuid.UUID, date time.Time) (*domain.AttendanceSession, error) {
	session, err := s.attendance.FindByGroupAndDate(ctx, scope, groupID, date)
	if err != nil {
		if errors.Is(err, repository.ErrAttendanceSessionNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("failed to find attendance: %w", err)
	}
	return session, nil
}
