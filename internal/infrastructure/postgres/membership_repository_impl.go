package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saasbase-io/accounts/internal/domain/entity"
	repo "github.com/saasbase-io/accounts/internal/domain/repository"
)

type MembershipRepository struct {
	pool *pgxpool.Pool
}

func NewMembershipRepository(pool *pgxpool.Pool) *MembershipRepository {
	return &MembershipRepository{pool: pool}
}

func (r *MembershipRepository) Insert(ctx context.Context, m *entity.Membership) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO account_memberships (user_id, account_id, account_role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.UserID, m.AccountID, string(m.Role), m.CreatedAt, m.UpdatedAt)
	return mapUniqueViolation(err)
}

func (r *MembershipRepository) Get(ctx context.Context, accountID, userID string) (*entity.Membership, error) {
	m := &entity.Membership{}
	row := r.pool.QueryRow(ctx, `
		SELECT user_id, account_id, account_role, created_at, updated_at
		FROM account_memberships
		WHERE account_id = $1 AND user_id = $2
	`, accountID, userID)
	if err := row.Scan(&m.UserID, &m.AccountID, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return m, nil
}

func (r *MembershipRepository) ListByAccount(ctx context.Context, accountID string) ([]*entity.Membership, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT user_id, account_id, account_role, created_at, updated_at
		FROM account_memberships
		WHERE account_id = $1
		ORDER BY created_at, user_id
	`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Membership
	for rows.Next() {
		m := &entity.Membership{}
		if err := rows.Scan(&m.UserID, &m.AccountID, &m.Role, &m.CreatedAt, &m.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *MembershipRepository) UpdateRole(ctx context.Context, accountID, userID string, role entity.Role) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE account_memberships
		SET account_role = $1, updated_at = now()
		WHERE account_id = $2 AND user_id = $3
	`, string(role), accountID, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *MembershipRepository) Delete(ctx context.Context, accountID, userID string) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM account_memberships
		WHERE account_id = $1 AND user_id = $2
	`, accountID, userID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

var _ repo.MembershipRepository = (*MembershipRepository)(nil)
