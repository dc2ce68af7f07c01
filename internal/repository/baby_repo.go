package repository

import (
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"babymind/internal/database"
	"babymind/internal/models"
)

const babyColumns = "id, name, birth_date, gender, birth_weight_grams, birth_height_cm, created_at, updated_at"

// BabyRepository handles database operations for baby profiles
type BabyRepository struct {
	db database.DBTX
}

// NewBabyRepository creates a new baby repository
func NewBabyRepository(db database.DBTX) *BabyRepository {
	return &BabyRepository{db: db}
}

// CreateBaby inserts a new baby profile
func (r *BabyRepository) CreateBaby(baby *models.Baby) error {
	query := "INSERT INTO babies (" + babyColumns + ") VALUES (?, ?, ?, ?, ?, ?, ?, ?)"
	_, err := r.db.Exec(query,
		baby.ID,
		baby.Name,
		baby.BirthDate.UTC(),
		string(baby.Gender),
		baby.BirthWeightGrams,
		baby.BirthHeightCm,
		baby.CreatedAt.UTC(),
		baby.UpdatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to create baby: %w", err)
	}
	return nil
}

// GetBabyByID retrieves a baby by ID
func (r *BabyRepository) GetBabyByID(id uuid.UUID) (*models.Baby, error) {
	query := "SELECT " + babyColumns + " FROM babies WHERE id = ?"
	baby, err := scanBaby(r.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get baby: %w", err)
	}
	return baby, nil
}

// ListBabies retrieves all babies ordered by creation time
func (r *BabyRepository) ListBabies() ([]models.Baby, error) {
	query := "SELECT " + babyColumns + " FROM babies ORDER BY created_at ASC"
	rows, err := r.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query babies: %w", err)
	}
	defer rows.Close()

	var babies []models.Baby
	for rows.Next() {
		baby, err := scanBaby(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan baby: %w", err)
		}
		babies = append(babies, *baby)
	}
	return babies, rows.Err()
}

// UpdateBaby updates a baby's profile fields
func (r *BabyRepository) UpdateBaby(baby *models.Baby) error {
	query := `
		UPDATE babies
		SET name = ?, birth_date = ?, gender = ?, birth_weight_grams = ?, birth_height_cm = ?, updated_at = ?
		WHERE id = ?
	`
	_, err := r.db.Exec(query,
		baby.Name,
		baby.BirthDate.UTC(),
		string(baby.Gender),
		baby.BirthWeightGrams,
		baby.BirthHeightCm,
		baby.UpdatedAt.UTC(),
		baby.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update baby: %w", err)
	}
	return nil
}

// DeleteBaby deletes a baby profile and, through the foreign key, its records
func (r *BabyRepository) DeleteBaby(id uuid.UUID) error {
	_, err := r.db.Exec("DELETE FROM babies WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete baby: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBaby(row rowScanner) (*models.Baby, error) {
	baby := &models.Baby{}
	var gender string
	err := row.Scan(
		&baby.ID,
		&baby.Name,
		&baby.BirthDate,
		&gender,
		&baby.BirthWeightGrams,
		&baby.BirthHeightCm,
		&baby.CreatedAt,
		&baby.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	baby.Gender = models.Gender(gender)
	return baby, nil
}
