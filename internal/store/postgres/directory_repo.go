package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/uptrace/bun"

	"tutora/backend/internal/domain"
	"tutora/backend/internal/store"
)

// DirectoryRepo reads the instructor and subject tables maintained by the
// accounts service.
type DirectoryRepo struct {
	db *bun.DB
}

func NewDirectoryRepo(db *bun.DB) *DirectoryRepo {
	return &DirectoryRepo{db: db}
}

func (r *DirectoryRepo) Instructor(ctx context.Context, id string) (domain.Instructor, error) {
	var in domain.Instructor
	err := r.db.NewSelect().
		Model(&in).
		Where("id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Instructor{}, store.ErrNotFound
		}
		return domain.Instructor{}, err
	}
	return in, nil
}

func (r *DirectoryRepo) Teaches(ctx context.Context, instructorID, subjectID string) (bool, error) {
	return r.db.NewSelect().
		Table("instructor_subjects").
		Where("instructor_id = ?", instructorID).
		Where("subject_id = ?", subjectID).
		Exists(ctx)
}
