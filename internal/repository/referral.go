package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"lenabot/internal/model"

	"github.com/Masterminds/squirrel"
)

type referral struct {
	InvitedID  int64     `db:"invited_id"`
	ReferrerID int64     `db:"referrer_id"`
	CreatedAt  time.Time `db:"created_at"`
}

// CreateReferral stores the edge iff the invited user has no referrer yet.
// Returns false when the edge already exists.
func (r *Repository) CreateReferral(ctx context.Context, invitedID, referrerID int64, createdAt time.Time) (bool, error) {
	query, args, err := squirrel.
		Insert("referrals").
		SetMap(map[string]interface{}{
			"invited_id":  invitedID,
			"referrer_id": referrerID,
			"created_at":  createdAt,
		}).
		Suffix("ON CONFLICT (invited_id) DO NOTHING").
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return false, fmt.Errorf("failed to build referral insert query: %w", err)
	}

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("failed to insert referral: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return false, err
	}

	return rows > 0, nil
}

func (r *Repository) GetReferral(ctx context.Context, invitedID int64) (*model.Referral, error) {
	var ref referral
	query, args, err := squirrel.
		Select("invited_id", "referrer_id", "created_at").
		From("referrals").
		Where(squirrel.Eq{"invited_id": invitedID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return nil, err
	}

	err = r.db.GetContext(ctx, &ref, query, args...)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	return &model.Referral{
		InvitedID:  ref.InvitedID,
		ReferrerID: ref.ReferrerID,
		CreatedAt:  ref.CreatedAt,
	}, nil
}

func (r *Repository) GetReferralCount(ctx context.Context, referrerID int64) (int, error) {
	query, args, err := squirrel.
		Select("COUNT(*)").
		From("referrals").
		Where(squirrel.Eq{"referrer_id": referrerID}).
		PlaceholderFormat(squirrel.Dollar).
		ToSql()
	if err != nil {
		return 0, err
	}

	var count int
	err = r.db.GetContext(ctx, &count, query, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to get referral count: %w", err)
	}

	return count, nil
}
