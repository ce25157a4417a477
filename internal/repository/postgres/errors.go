package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/vedran77/linkup/internal/repository"
)

// mapDuplicate translates a Postgres unique violation into
// repository.ErrDuplicate so services can recover without knowing pg codes.
func mapDuplicate(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23505" {
		return repository.ErrDuplicate
	}
	return err
}
