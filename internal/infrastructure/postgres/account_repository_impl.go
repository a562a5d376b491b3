package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/saasbase-io/accounts/internal/domain/entity"
	repo "github.com/saasbase-io/accounts/internal/domain/repository"
)

type AccountRepository struct {
	pool *pgxpool.Pool
}

func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return &AccountRepository{pool: pool}
}

const accountColumns = `id, name, slug, personal_account, primary_owner_user_id,
		public_metadata, private_metadata, created_at, updated_at, created_by, updated_by`

func scanAccount(row pgx.Row) (*entity.Account, error) {
	a := &entity.Account{}
	var slug *string
	if err := row.Scan(&a.ID, &a.Name, &slug, &a.PersonalAccount, &a.PrimaryOwnerUserID,
		&a.PublicMetadata, &a.PrivateMetadata, &a.CreatedAt, &a.UpdatedAt, &a.CreatedBy, &a.UpdatedBy); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		return nil, err
	}
	if slug != nil {
		a.Slug = *slug
	}
	return a, nil
}

// slugParam maps the empty slug of personal accounts to NULL so the unique
// index only applies to team accounts.
func slugParam(a *entity.Account) *string {
	if a.Slug == "" {
		return nil
	}
	s := a.Slug
	return &s
}

func (r *AccountRepository) CreateWithOwner(ctx context.Context, a *entity.Account, owner *entity.Membership) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{IsoLevel: pgx.Serializable})
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx, `
		INSERT INTO accounts (id, name, slug, personal_account, primary_owner_user_id,
			public_metadata, private_metadata, created_at, updated_at, created_by, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`, a.ID, a.Name, slugParam(a), a.PersonalAccount, a.PrimaryOwnerUserID,
		metadataParam(a.PublicMetadata), metadataParam(a.PrivateMetadata),
		a.CreatedAt, a.UpdatedAt, a.CreatedBy, a.UpdatedBy)
	if err != nil {
		return mapUniqueViolation(err)
	}

	if owner != nil {
		_, err = tx.Exec(ctx, `
			INSERT INTO account_memberships (user_id, account_id, account_role, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5)
		`, owner.UserID, owner.AccountID, string(owner.Role), owner.CreatedAt, owner.UpdatedAt)
		if err != nil {
			return mapUniqueViolation(err)
		}
	}
	return tx.Commit(ctx)
}

func metadataParam(m map[string]any) map[string]any {
	if m == nil {
		return map[string]any{}
	}
	return m
}

func (r *AccountRepository) GetByID(ctx context.Context, id string) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE id = $1
	`, id))
}

func (r *AccountRepository) GetBySlug(ctx context.Context, slug string) (*entity.Account, error) {
	return scanAccount(r.pool.QueryRow(ctx, `
		SELECT `+accountColumns+`
		FROM accounts
		WHERE slug = $1
	`, slug))
}

func (r *AccountRepository) ListForUser(ctx context.Context, userID string) ([]*entity.Account, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT a.id, a.name, a.slug, a.personal_account, a.primary_owner_user_id,
			a.public_metadata, a.private_metadata, a.created_at, a.updated_at, a.created_by, a.updated_by
		FROM accounts a
		JOIN account_memberships m ON m.account_id = a.id
		WHERE m.user_id = $1
		ORDER BY a.created_at, a.id
	`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*entity.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (r *AccountRepository) Update(ctx context.Context, a *entity.Account) error {
	res, err := r.pool.Exec(ctx, `
		UPDATE accounts
		SET name = $1, slug = $2, personal_account = $3, primary_owner_user_id = $4,
			public_metadata = $5, private_metadata = $6, updated_at = $7, updated_by = $8
		WHERE id = $9
	`, a.Name, slugParam(a), a.PersonalAccount, a.PrimaryOwnerUserID,
		metadataParam(a.PublicMetadata), metadataParam(a.PrivateMetadata),
		a.UpdatedAt, a.UpdatedBy, a.ID)
	if err != nil {
		return mapUniqueViolation(err)
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

func (r *AccountRepository) Delete(ctx context.Context, id string) error {
	// memberships and invitations cascade via FK
	res, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if res.RowsAffected() == 0 {
		return repo.ErrNotFound
	}
	return nil
}

var _ repo.AccountRepository = (*AccountRepository)(nil)
