package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/jmoiron/sqlx"
)

// ConsumeDailyQuota is the check-then-increment of a user's daily counter.
// It runs in one transaction with the counter row locked, so two concurrent
// calls for the same user can never both pass on the last remaining unit.
// Returns the count after the call and whether the unit was granted.
func (r *Repository) ConsumeDailyQuota(ctx context.Context, userID int64, day string, limit int) (int, bool, error) {
	var (
		used    int
		allowed bool
	)

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("daily_counters").
			SetMap(map[string]interface{}{
				"user_id": userID,
				"day":     day,
				"count":   0,
			}).
			Suffix("ON CONFLICT (user_id, day) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to ensure counter row: %w", err)
		}

		query, args, err = squirrel.
			Select("count").
			From("daily_counters").
			Where(squirrel.Eq{"user_id": userID, "day": day}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		var current int
		if err = tx.GetContext(ctx, &current, query, args...); err != nil {
			return fmt.Errorf("failed to lock counter row: %w", err)
		}

		if current >= limit {
			used = current
			allowed = false
			return nil
		}

		query, args, err = squirrel.
			Update("daily_counters").
			Set("count", squirrel.Expr("count + 1")).
			Where(squirrel.Eq{"user_id": userID, "day": day}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to increment counter: %w", err)
		}

		used = current + 1
		allowed = true
		return nil
	})
	if err != nil {
		return 0, false, err
	}

	return used, allowed, nil
}

func (r *Repository) GetDailyCount(ctx context.Context, userID int64, day string) (int, error) {
	query, args, err := squirrel.
		Select("count").
		From("daily_counters").
		Where(squirrel.Eq{"user_id": userID, "day": day}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get daily counter: %w", err)
	}

	return count, nil
}

// DeleteCountersBefore removes counter rows with a day key strictly older
// than cutoff. Housekeeping only: absent keys already read as zero.
func (r *Repository) DeleteCountersBefore(ctx context.Context, cutoff string) (int64, error) {
	query, args, err := squirrel.
		Delete("daily_counters").
		Where(squirrel.Lt{"day": cutoff}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete old counters: %w", err)
	}

	return result.RowsAffected()
}
