package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/dto"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/delivery/http/middleware"
	"github.com/obadakatsha-ayatgroup/domecare-app/internal/domain/entity"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"
)

var (
	ErrUnauthenticated   = errors.New("user not found in context")
	ErrForbidden         = errors.New("access denied")
	ErrInvalidDateFormat = errors.New("invalid date format, use YYYY-MM-DD")
	ErrNothingToUpdate   = errors.New("no fields to update")
	ErrInvalidID         = errors.New("invalid id")
)

const (
	defaultPageLimit = 20
	dateLayout       = "2006-01-02"
)

// caller returns the authenticated user and role placed on ctx by the auth middleware.
func caller(ctx context.Context) (uuid.UUID, int, error) {
	userID, ok := middleware.GetUserIDFromContext(ctx)
	if !ok {
		return uuid.Nil, 0, ErrUnauthenticated
	}
	roleID, ok := middleware.GetRoleIDFromContext(ctx)
	if !ok {
		return uuid.Nil, 0, ErrUnauthenticated
	}
	return userID, roleID, nil
}

func toPage(req dto.PageRequest) entity.Page {
	page := entity.Page{Page: req.Page, Limit: req.Limit}
	if page.Page < 1 {
		page.Page = 1
	}
	if page.Limit < 1 {
		page.Limit = defaultPageLimit
	}
	return page
}

// calendarDate returns midnight UTC of t's calendar day in loc. Dates are
// stored this way so that a DATE column round-trips without shifting.
func calendarDate(t time.Time, loc *time.Location) time.Time {
	local := t.In(loc)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}

func parseDate(s string) (time.Time, error) {
	d, err := time.Parse(dateLayout, s)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return d, nil
}

func parseID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, ErrInvalidID
	}
	return id, nil
}

// isUniqueViolation checks for a PostgreSQL unique_violation (23505) or the
// translated gorm error.
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

// isForeignKeyViolation checks for a PostgreSQL foreign_key_violation (23503).
func isForeignKeyViolation(err error) bool {
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23503"
}
