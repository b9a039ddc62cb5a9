package sqlnet

import (
	"errors"

	"github.com/go-sql-driver/mysql"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/osse101/FlightShop_Go/internal/database"
	"github.com/osse101/FlightShop_Go/internal/retry"
	"github.com/osse101/FlightShop_Go/internal/storage"
)

// IsRetryable is the default classification for networked SQL failures. Server errors are
// judged by SQLSTATE; everything else falls back to connectivity checks.
func IsRetryable(err error) bool {
	switch {
	case err == nil:
		return false
	case errors.Is(err, database.ErrPoolExhausted):
		return true
	case errors.Is(err, database.ErrPoolClosed), errors.Is(err, storage.ErrClosed):
		return false
	case errors.Is(err, mysql.ErrInvalidConn):
		return true
	}

	var myErr *mysql.MySQLError
	if errors.As(err, &myErr) {
		return retry.IsRetryableSQLState(string(myErr.SQLState[:]))
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return retry.IsRetryableSQLState(pgErr.Code)
	}

	var connectErr *pgconn.ConnectError
	if errors.As(err, &connectErr) || pgconn.SafeToRetry(err) {
		return true
	}

	return retry.IsTransient(err)
}
