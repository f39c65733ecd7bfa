package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lenabot/internal/model"

	"github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

func (r *Repository) GetBonusCount(ctx context.Context, userID int64) (int, error) {
	query, args, err := squirrel.
		Select("bonus_count").
		From("bonus_messages").
		Where(squirrel.Eq{"user_id": userID}).
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
		return 0, fmt.Errorf("failed to get bonus count: %w", err)
	}

	return count, nil
}

// AdjustBonus applies delta to the user's bonus balance, flooring at zero,
// and records an audit row. The row lock keeps the mutation atomic against
// concurrent quota admits reading the same balance.
func (r *Repository) AdjustBonus(ctx context.Context, userID int64, delta int, actorID int64, now time.Time) (*model.BonusChange, error) {
	change := &model.BonusChange{
		ID:        uuid.New(),
		UserID:    userID,
		Delta:     delta,
		ActorID:   actorID,
		CreatedAt: now,
	}

	err := r.Transaction(ctx, func(tx *sqlx.Tx) error {
		query, args, err := squirrel.
			Insert("bonus_messages").
			SetMap(map[string]interface{}{
				"user_id":     userID,
				"bonus_count": 0,
				"updated_at":  now,
			}).
			Suffix("ON CONFLICT (user_id) DO NOTHING").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to ensure bonus row: %w", err)
		}

		query, args, err = squirrel.
			Select("bonus_count").
			From("bonus_messages").
			Where(squirrel.Eq{"user_id": userID}).
			Suffix("FOR UPDATE").
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}

		var current int
		if err = tx.GetContext(ctx, &current, query, args...); err != nil {
			return fmt.Errorf("failed to lock bonus row: %w", err)
		}

		resulting := current + delta
		if resulting < 0 {
			resulting = 0
		}
		change.ResultingBonus = resulting

		query, args, err = squirrel.
			Update("bonus_messages").
			SetMap(map[string]interface{}{
				"bonus_count": resulting,
				"updated_at":  now,
			}).
			Where(squirrel.Eq{"user_id": userID}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to update bonus count: %w", err)
		}

		query, args, err = squirrel.
			Insert("bonus_audit").
			SetMap(map[string]interface{}{
				"id":              change.ID,
				"user_id":         userID,
				"delta":           delta,
				"resulting_bonus": resulting,
				"actor_id":        actorID,
				"created_at":      now,
			}).
			PlaceholderFormat(squirrel.Dollar).
			ToSql()
		if err != nil {
			return err
		}
		if _, err = tx.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("failed to insert audit row: %w", err)
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return change, nil
}

type userUsage struct {
	UserID        int64 `db:"user_id"`
	UsedToday     int   `db:"used_today"`
	BonusMessages int   `db:"bonus_count"`
}

// GetUserUsage returns today's counter and bonus balance for a set of
// users in one round trip. Used by the ops stats endpoint.
func (r *Repository) GetUserUsage(ctx context.Context, userIDs []int64, day string) ([]*model.UserUsage, error) {
	if len(userIDs) == 0 {
		return nil, nil
	}

	const query = `
		SELECT u.user_id,
		       COALESCE(dc.count, 0)        AS used_today,
		       COALESCE(bm.bonus_count, 0)  AS bonus_count
		FROM unnest($1::bigint[]) AS u(user_id)
		LEFT JOIN daily_counters dc ON dc.user_id = u.user_id AND dc.day = $2
		LEFT JOIN bonus_messages bm ON bm.user_id = u.user_id`

	var rows []userUsage
	err := r.db.SelectContext(ctx, &rows, query, pq.Array(userIDs), day)
	if err != nil {
		return nil, fmt.Errorf("failed to get user usage: %w", err)
	}

	usages := make([]*model.UserUsage, len(rows))
	for i, row := range rows {
		usages[i] = &model.UserUsage{
			UserID:        row.UserID,
			UsedToday:     row.UsedToday,
			BonusMessages: row.BonusMessages,
		}
	}

	return usages, nil
}
