package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"tutora/backend/internal/domain"
)

type AvailabilityRepo struct {
	db *bun.DB
}

func NewAvailabilityRepo(db *bun.DB) *AvailabilityRepo {
	return &AvailabilityRepo{db: db}
}

func (r *AvailabilityRepo) FindRulesByInstructor(ctx context.Context, instructorID string) ([]domain.AvailabilityRule, error) {
	rows := make([]domain.AvailabilityRule, 0)
	err := r.db.NewSelect().
		Model(&rows).
		Where("instructor_id = ?", instructorID).
		OrderExpr("day_of_week ASC").
		Scan(ctx)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// ReplaceAllRules deletes every rule of the instructor and inserts the new set
// in one transaction. Readers see the old set or the new one, never a mix.
func (r *AvailabilityRepo) ReplaceAllRules(ctx context.Context, instructorID string, rules []domain.AvailabilityRule) ([]domain.AvailabilityRule, error) {
	out := make([]domain.AvailabilityRule, 0, len(rules))
	err := r.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if err := lockInstructorCalendar(ctx, tx, instructorID); err != nil {
			return err
		}

		_, err := tx.NewDelete().
			Model((*domain.AvailabilityRule)(nil)).
			Where("instructor_id = ?", instructorID).
			Exec(ctx)
		if err != nil {
			return err
		}

		if len(rules) == 0 {
			return nil
		}

		rows := make([]domain.AvailabilityRule, 0, len(rules))
		for _, rule := range rules {
			rule.InstructorID = instructorID
			rows = append(rows, rule)
		}
		if _, err := tx.NewInsert().Model(&rows).Exec(ctx); err != nil {
			return err
		}
		out = append(out, rows...)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
