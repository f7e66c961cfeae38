package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	// ErrDuplicate нарушение уникального ограничения
	ErrDuplicate = errors.New("duplicate record")
	// ErrOverlap нарушение exclusion-ограничения (пересечение интервалов)
	ErrOverlap = errors.New("overlapping record")
)

const (
	pgUniqueViolation    = "23505"
	pgExclusionViolation = "23P01"
)

// mapPgError переводит ошибки ограничений Postgres в ошибки репозитория
func mapPgError(err error) error {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}

	switch pgErr.Code {
	case pgUniqueViolation:
		return fmt.Errorf("%w: %s", ErrDuplicate, pgErr.ConstraintName)
	case pgExclusionViolation:
		return fmt.Errorf("%w: %s", ErrOverlap, pgErr.ConstraintName)
	default:
		return err
	}
}

type scanner interface {
	Scan(dest ...any) error
}

func statusStrings[T ~string](statuses []T) []string {
	out := make([]string, 0, len(statuses))
	for _, s := range statuses {
		out = append(out, string(s))
	}
	return out
}
