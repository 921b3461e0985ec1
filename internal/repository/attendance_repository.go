package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"academy-platform/internal/domain"
	"academy-platform/internal/tenant"

	"github.com/google/uuid"
)

var (
	ErrAttendanceSessionNotFound = errors.New("attendance session not found")
)

const sessionDateLayout = "2006-01-02"

// AttendanceRepository defines data access for attendance registers
type AttendanceRepository interface {
	Upsert(ctx context.Context, scope tenant.Scope, session *domain.AttendanceSession) error
	FindByGroupAndDate(ctx context.Context, scope tenant.Scope, groupID uuid.UUID, date time.Time) (*domain.AttendanceSession, error)
}

type attendanceRepository struct {
	db *sql.DB
}

// NewAttendanceRepository creates a new instance of AttendanceRepository
func NewAttendanceRepository(db *sql.DB) AttendanceRepository {
	return &attendanceRepository{db: db}
}

// Upsert writes the session for (group, date) and one record per student in
// a single transaction. An existing session keeps its id; existing records
// for the same student are overwritten. On success session reflects what is
// stored, including records written by earlier calls.
func (r *attendanceRepository) Upsert(ctx context.Context, scope tenant.Scope, session *domain.AttendanceSession) error {
	if err := scope.Check(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	sessionQuery := `
		INSERT INTO attendance_sessions (id, dealer_id, group_id, session_date, notes, created_at, updated_at)
		SELECT $1, g.dealer_id, g.id, $3::date, $4, $5, $5
		FROM training_groups g
		WHERE g.id = $2 AND g.dealer_id = $6
		ON CONFLICT (group_id, session_date)
		DO UPDATE SET notes = EXCLUDED.notes, updated_at = EXCLUDED.updated_at
		RETURNING id, dealer_id, created_at, updated_at
	`

	now := time.Now().UTC()
	if session.ID == uuid.Nil {
		session.ID = uuid.New()
	}

	err = tx.QueryRowContext(
		ctx,
		sessionQuery,
		session.ID,
		session.GroupID,
		session.SessionDate.Format(sessionDateLayout),
		nullString(session.Notes),
		now,
		scope.DealerID(),
	).Scan(&session.ID, &session.DealerID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to upsert attendance session: %w", err)
	}

	recordQuery := `
		INSERT INTO attendance_records (id, session_id, student_id, status, updated_at)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (session_id, student_id)
		DO UPDATE SET status = EXCLUDED.status, updated_at = EXCLUDED.updated_at
	`

	for _, record := range session.Records {
		_, err := tx.ExecContext(ctx, recordQuery, uuid.New(), session.ID, record.StudentID, record.Status, now)
		if err != nil {
			return fmt.Errorf("failed to upsert attendance record: %w", err)
		}
	}

	records, err := listRecords(ctx, tx, session.ID)
	if err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit attendance: %w", err)
	}

	session.Records = records
	return nil
}

// FindByGroupAndDate retrieves the register of a group for one day
func (r *attendanceRepository) FindByGroupAndDate(ctx context.Context, scope tenant.Scope, groupID uuid.UUID, date time.Time) (*domain.AttendanceSession, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, dealer_id, group_id, session_date, notes, created_at, updated_at
		FROM attendance_sessions
		WHERE group_id = $1 AND session_date = $2::date AND dealer_id = $3
	`

	var (
		session domain.AttendanceSession
		notes   sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, groupID, date.Format(sessionDateLayout), scope.DealerID()).Scan(
		&session.ID,
		&session.DealerID,
		&session.GroupID,
		&session.SessionDate,
		&notes,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAttendanceSessionNotFound
		}
		return nil, fmt.Errorf("failed to find attendance session: %w", err)
	}
	session.Notes = notes.String

	records, err := listRecords(ctx, r.db, session.ID)
	if err != nil {
		return nil, err
	}
	session.Records = records

	return &session, nil
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

func listRecords(ctx context.Context, q queryer, sessionID uuid.UUID) ([]domain.AttendanceRecord, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, session_id, student_id, status
		FROM attendance_records
		WHERE session_id = $1
		ORDER BY student_id
	`, sessionID)
	if err != nil {
		return nil, fmt.Errorf("failed to list attendance records: %w", err)
	}
	defer rows.Close()

	records := []domain.AttendanceRecord{}
	for rows.Next() {
		var record domain.AttendanceRecord
		if err := rows.Scan(&record.ID, &record.SessionID, &record.StudentID, &record.Status); err != nil {
			return nil, fmt.Errorf("failed to scan attendance record: %w", err)
		}
		records = append(records, record)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating attendance records: %w", err)
	}

	return records, nil
}
