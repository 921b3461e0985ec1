package domain

import (
	"time"

	"github.com/google/uuid"
)

// Group is a training group run by a dealer.
type Group struct {
	ID          uuid.UUID   `json:"id" db:"id"`
	DealerID    uuid.UUID   `json:"dealer_id" db:"dealer_id"`
	Name        string      `json:"name" db:"name"`
	TrainerName string      `json:"trainer_name" db:"trainer_name"`
	Schedule    string      `json:"schedule" db:"schedule"`
	IsActive    bool        `json:"is_active" db:"is_active"`
	StudentIDs  []uuid.UUID `json:"student_ids" db:"-"`
	CreatedAt   time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at" db:"updated_at"`
}

// AttendanceStatus is the mark given to a student for one session.
type AttendanceStatus string

const (
	AttendancePresent AttendanceStatus = "present"
	AttendanceAbsent  AttendanceStatus = "absent"
	AttendanceLate    AttendanceStatus = "late"
	AttendanceExcused AttendanceStatus = "excused"
)

// AttendanceSession is the register for a group on a given date.
type AttendanceSession struct {
	ID          uuid.UUID          `json:"id" db:"id"`
	DealerID    uuid.UUID          `json:"dealer_id" db:"dealer_id"`
	GroupID     uuid.UUID          `json:"group_id" db:"group_id"`
	SessionDate time.Time          `json:"session_date" db:"session_date"`
	Notes       string             `json:"notes" db:"notes"`
	Records     []AttendanceRecord `json:"records" db:"-"`
	CreatedAt   time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time          `json:"updated_at" db:"updated_at"`
}

type AttendanceRecord struct {
	ID        uuid.UUID        `json:"id" db:"id"`
	SessionID uuid.UUID        `json:"session_id" db:"session_id"`
	StudentID uuid.UUID        `json:"student_id" db:"student_id"`
	Status    AttendanceStatus `json:"status" db:"status"`
}
