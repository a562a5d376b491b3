package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"

	repo "github.com/saasbase-io/accounts/internal/domain/repository"
)

const pgUniqueViolation = "23505"

// mapUniqueViolation translates a 23505 into the matching sentinel by
// constraint name; other errors pass through unchanged.
func mapUniqueViolation(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) || pgErr.Code != pgUniqueViolation {
		return err
	}
	switch pgErr.ConstraintName {
	case "accounts_pkey":
		return repo.ErrDuplicateAccount
	case "accounts_slug_key":
		return repo.ErrDuplicateSlug
	case "account_memberships_pkey":
		return repo.ErrDuplicateMembership
	}
	return err
}
