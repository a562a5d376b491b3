package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saasbase-io/accounts/internal/domain/entity"
	repo "github.com/saasbase-io/accounts/internal/domain/repository"
)

type InvitationRepository struct {
	pool *pgxpool.Pool
}

func NewInvitationRepository(pool *pgxpool.Pool) *InvitationRepository {
	return &InvitationRepository{pool: pool}
}

func (r *InvitationRepository) Create(ctx context.Context, inv *entity.Invitation) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO invitations (id, account_id, account_name, account_role, token,
			invitation_type, invited_by_user_id, email, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, inv.ID, inv.AccountID, inv.AccountName, string(inv.Role), inv.Token,
		string(inv.InvitationType), inv.InvitedByUserID, inv.Email, inv.CreatedAt, inv.UpdatedAt)
	return mapUniqueViolation(err)
}

func (r *InvitationRepository) GetByToken(ctx context.Context, token string) (*entity.Invitation, error) {
	inv := &entity.Invitation{}
	row := r.pool.QueryRow(ctx, `
		SELECT id, account_id, account_name, account_role, token,
			invitation_type, invited_by_user_id, email, created_at, updated_at
		FROM invitations
		WHERE token = $1
	`, token)
	if err := row.Scan(&inv.ID, &inv.AccountID, &inv.AccountName, &inv.Role, &inv.Token,
		&inv.InvitationType, &inv.InvitedByUserID, &inv.Email, &inv.CreatedAt, &inv.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	return inv, nil
}

func (r *InvitationRepository) Delete(ctx context.Context, accountID, invitationID string) error {
	res, err := r.pool.Exec(ctx, `
		DELETE FROM invitations
		WHERE account_id = $1 AND id = $2
	`, accountID, invitationID)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *InvitationRepository) Accept(ctx context.Context, inv *entity.Invitation, m *entity.Membership) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO account_memberships (user_id, account_id, account_role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, m.UserID, m.AccountID, string(m.Role), m.CreatedAt, m.UpdatedAt)
	if err != nil {
		return mapUniqueViolation(err)
	}

	if inv.InvitationType == entity.InvitationOneTime {
		res, err := tx.Exec(ctx, `DELETE FROM invitations WHERE id = $1`, inv.ID)
		if err != nil {
			return err
		}
		// a concurrent accept already consumed it
		if res.RowsAffected() == 0 {
			return repo.ErrNotFound
		}
	}
	return tx.Commit(ctx)
}

var _ repo.InvitationRepository = (*InvitationRepository)(nil)
