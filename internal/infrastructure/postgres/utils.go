package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jhoicas/Confecciones-api/internal/domain"
)

// Querier abstrae pgxpool.Pool y pgx.Tx para que los repositorios funcionen con o sin transacción.
type Querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// isUniqueViolation verifica si un error es una violación de constraint único (23505).
func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505" // unique_violation
	}
	return strings.Contains(err.Error(), "23505")
}

// isLockNotAvailable detecta el fallo de FOR UPDATE NOWAIT (55P03).
func isLockNotAvailable(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "55P03" // lock_not_available
}

// lockError traduce el error de un SELECT ... FOR UPDATE NOWAIT. Sin fila devuelve (false, nil).
func lockError(err error, what string) (bool, error) {
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, pgx.ErrNoRows):
		return false, nil
	case isLockNotAvailable(err):
		return false, fmt.Errorf("%w: %s bloqueado por otra operación", domain.ErrConflict, what)
	default:
		return false, fmt.Errorf("lock %s: %w", what, err)
	}
}

// nullable convierte "" en NULL para referencias opcionales.
func nullable(s string) any {
	if s == "" {
		return nil
	}
	return s
}
