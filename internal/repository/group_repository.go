package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"academy-platform/internal/domain"
	"academy-platform/internal/tenant"

	"github.com/google/uuid"
)

var (
	ErrGroupNotFound = errors.New("group not found")
)

// GroupRepository defines data access for training groups and their rosters
type GroupRepository interface {
	FindByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Group, error)
	Copy(ctx context.Context, scope tenant.Scope, sourceID uuid.UUID, target *domain.Group) error
}

type groupRepository struct {
	db *sql.DB
}

// NewGroupRepository creates a new instance of GroupRepository
func NewGroupRepository(db *sql.DB) GroupRepository {
	return &groupRepository{db: db}
}

// FindByID retrieves a group together with the ids of its students
func (r *groupRepository) FindByID(ctx context.Context, scope tenant.Scope, id uuid.UUID) (*domain.Group, error) {
	if err := scope.Check(); err != nil {
		return nil, err
	}

	query := `
		SELECT id, dealer_id, name, trainer_name, schedule, is_active, created_at, updated_at
		FROM training_groups
		WHERE id = $1 AND dealer_id = $2
	`

	var (
		group             domain.Group
		trainer, schedule sql.NullString
	)
	err := r.db.QueryRowContext(ctx, query, id, scope.DealerID()).Scan(
		&group.ID,
		&group.DealerID,
		&group.Name,
		&trainer,
		&schedule,
		&group.IsActive,
		&group.CreatedAt,
		&group.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrGroupNotFound
		}
		return nil, fmt.Errorf("failed to find group: %w", err)
	}
	group.TrainerName = trainer.String
	group.Schedule = schedule.String

	rows, err := r.db.QueryContext(ctx, `SELECT student_id FROM group_students WHERE group_id = $1 ORDER BY joined_at, student_id`, group.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list group students: %w", err)
	}
	defer rows.Close()

	group.StudentIDs = []uuid.UUID{}
	for rows.Next() {
		var studentID uuid.UUID
		if err := rows.Scan(&studentID); err != nil {
			return nil, fmt.Errorf("failed to scan group student: %w", err)
		}
		group.StudentIDs = append(group.StudentIDs, studentID)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating group students: %w", err)
	}

	return &group, nil
}

// Copy creates target as a duplicate of the source group, including its
// roster. target supplies the new id, name and timestamps; trainer, schedule
// and active flag are taken from the source.
func (r *groupRepository) Copy(ctx context.Context, scope tenant.Scope, sourceID uuid.UUID, target *domain.Group) error {
	if err := scope.Check(); err != nil {
		return err
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	groupQuery := `
		INSERT INTO training_groups (id, dealer_id, name, trainer_name, schedule, is_active, created_at, updated_at)
		SELECT $1, g.dealer_id, $2, g.trainer_name, g.schedule, g.is_active, $3, $4
		FROM training_groups g
		WHERE g.id = $5 AND g.dealer_id = $6
		RETURNING dealer_id, trainer_name, schedule, is_active
	`

	var trainer, schedule sql.NullString
	err = tx.QueryRowContext(
		ctx,
		groupQuery,
		target.ID,
		target.Name,
		target.CreatedAt,
		target.UpdatedAt,
		sourceID,
		scope.DealerID(),
	).Scan(&target.DealerID, &trainer, &schedule, &target.IsActive)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrGroupNotFound
		}
		return fmt.Errorf("failed to copy group: %w", err)
	}
	target.TrainerName = trainer.String
	target.Schedule = schedule.String

	rosterQuery := `
		INSERT INTO group_students (group_id, student_id, joined_at)
		SELECT $1, student_id, $2
		FROM group_students
		WHERE group_id = $3
		RETURNING student_id
	`

	rows, err := tx.QueryContext(ctx, rosterQuery, target.ID, target.CreatedAt, sourceID)
	if err != nil {
		return fmt.Errorf("failed to copy group students: %w", err)
	}

	target.StudentIDs = []uuid.UUID{}
	for rows.Next() {
		var studentID uuid.UUID
		if err := rows.Scan(&studentID); err != nil {
			rows.Close()
			return fmt.Errorf("failed to scan group student: %w", err)
		}
		target.StudentIDs = append(target.StudentIDs, studentID)
	}
	rows.Close()

	if err = rows.Err(); err != nil {
		return fmt.Errorf("error iterating group students: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit group copy: %w", err)
	}

	return nil
}
