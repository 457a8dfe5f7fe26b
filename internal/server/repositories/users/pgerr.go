package users

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// 23505 is the Postgres unique_violation class; for users it can only come
// from the email index.
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
