package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"babymind/internal/database"
	"babymind/internal/models"
)

const entityColumns = `id, baby_id, kind, category, title, notes, priority, points,
	scheduled_at, is_completed, completed_at, points_awarded, notified_at, created_at`

// EntityRepository stores tracked records in SQL
type EntityRepository struct {
	db database.DBTX
}

// NewEntityRepository creates a new entity repository
func NewEntityRepository(db database.DBTX) *EntityRepository {
	return &EntityRepository{db: db}
}

// Create inserts a new entity
func (r *EntityRepository) Create(e *models.Entity) error {
	query := "INSERT INTO entities (" + entityColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query,
		e.ID,
		e.BabyID,
		string(e.Kind),
		e.Category,
		e.Title,
		e.Notes,
		string(e.Priority),
		e.Points,
		utc(e.ScheduledAt),
		e.IsCompleted,
		nullTime(e.CompletedAt),
		e.PointsAwarded,
		nullTime(e.NotifiedAt),
		utc(e.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to create entity: %w", err)
	}
	return nil
}

// Get retrieves an entity owned by babyID
func (r *EntityRepository) Get(babyID, id uuid.UUID) (*models.Entity, error) {
	query := "SELECT " + entityColumns + " FROM entities WHERE baby_id = ? AND id = ?"
	e, err := scanEntity(r.db.QueryRow(query, babyID, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get entity: %w", err)
	}
	return e, nil
}

// Update writes the mutable fields of an entity
func (r *EntityRepository) Update(e *models.Entity) error {
	query := `
		UPDATE entities
		SET category = ?, title = ?, notes = ?, priority = ?, points = ?, scheduled_at = ?,
		    is_completed = ?, completed_at = ?, points_awarded = ?, notified_at = ?
		WHERE baby_id = ? AND id = ?
	`
	_, err := r.db.Exec(query,
		e.Category,
		e.Title,
		e.Notes,
		string(e.Priority),
		e.Points,
		utc(e.ScheduledAt),
		e.IsCompleted,
		nullTime(e.CompletedAt),
		e.PointsAwarded,
		nullTime(e.NotifiedAt),
		e.BabyID,
		e.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update entity: %w", err)
	}
	return nil
}

// Delete removes an entity permanently
func (r *EntityRepository) Delete(babyID, id uuid.UUID) error {
	_, err := r.db.Exec("DELETE FROM entities WHERE baby_id = ? AND id = ?", babyID, id)
	if err != nil {
		return fmt.Errorf("failed to delete entity: %w", err)
	}
	return nil
}

// ListByBaby retrieves every entity of a baby ordered by schedule
func (r *EntityRepository) ListByBaby(babyID uuid.UUID) ([]models.Entity, error) {
	query := "SELECT " + entityColumns + " FROM entities WHERE baby_id = ? ORDER BY scheduled_at ASC, created_at ASC"
	return r.list(query, babyID)
}

// ListDueReminders retrieves reminders across babies that should fire at or before at
func (r *EntityRepository) ListDueReminders(at time.Time) ([]models.Entity, error) {
	dialect := r.db.GetDialect()
	query := "SELECT " + entityColumns + ` FROM entities
		WHERE kind = ? AND is_completed = ` + dialect.BoolValue(false) + `
		  AND notified_at IS NULL AND scheduled_at <= ?
		ORDER BY scheduled_at ASC`
	return r.list(query, string(models.KindReminder), utc(at))
}

func (r *EntityRepository) list(query string, args ...interface{}) ([]models.Entity, error) {
	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query entities: %w", err)
	}
	defer rows.Close()

	var entities []models.Entity
	for rows.Next() {
		e, err := scanEntity(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		entities = append(entities, *e)
	}
	return entities, rows.Err()
}

func scanEntity(row rowScanner) (*models.Entity, error) {
	e := &models.Entity{}
	var kind, priority string
	var completedAt, notifiedAt sql.NullTime

	err := row.Scan(
		&e.ID,
		&e.BabyID,
		&kind,
		&e.Category,
		&e.Title,
		&e.Notes,
		&priority,
		&e.Points,
		&e.ScheduledAt,
		&e.IsCompleted,
		&completedAt,
		&e.PointsAwarded,
		&notifiedAt,
		&e.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	e.Kind = models.EntityKind(kind)
	e.Priority = models.Priority(priority)
	if completedAt.Valid {
		e.CompletedAt = &completedAt.Time
	}
	if notifiedAt.Valid {
		e.NotifiedAt = &notifiedAt.Time
	}
	return e, nil
}

// utc normalizes stored times so SQLite's text comparison orders them correctly
func utc(t time.Time) time.Time {
	return t.UTC().Truncate(time.Microsecond)
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: utc(*t), Valid: true}
}
