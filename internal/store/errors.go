package store

import (
	"database/sql"
	stdErrors "errors"
	"fmt"
	"net/http"

	goerrors "github.com/goliatone/go-errors"
	"github.com/lib/pq"
	"github.com/mattn/go-sqlite3"
)

const (
	TextCodeNotFound         = "NOT_FOUND"
	TextCodeRelationNotFound = "RELATION_NOT_FOUND"
	TextCodeConflict         = "CONFLICT"
)

// pg error classes, see https://www.postgresql.org/docs/current/errcodes-appendix.html
const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// NotFound reports a missing resource looked up by key.
func NotFound(resource, key string, value any) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("%s with %s %v not found", resource, key, value),
		goerrors.CategoryNotFound,
	).
		WithCode(http.StatusNotFound).
		WithTextCode(TextCodeNotFound)
}

// relationNotFound reports a connect against a related record that does not exist.
func relationNotFound(resource, relation, key string, value any) *goerrors.Error {
	return goerrors.New(
		fmt.Sprintf("cannot connect %s: no %s record found with %s %v", resource, relation, key, value),
		goerrors.CategoryBadInput,
	).
		WithCode(http.StatusBadRequest).
		WithTextCode(TextCodeRelationNotFound).
		WithMetadata(map[string]any{
			"resource": resource,
			"relation": relation,
			"key":      key,
		})
}

// mapError categorizes driver errors while keeping the store message verbatim.
// Errors the store cannot classify are returned unchanged.
func mapError(resource string, err error) error {
	if err == nil {
		return nil
	}

	var categorized *goerrors.Error
	if stdErrors.As(err, &categorized) {
		return err
	}

	if stdErrors.Is(err, sql.ErrNoRows) {
		result := goerrors.New(resource+" not found", goerrors.CategoryNotFound).
			WithCode(http.StatusNotFound).
			WithTextCode(TextCodeNotFound)
		result.Source = err
		return result
	}

	switch {
	case isUniqueViolation(err):
		result := goerrors.New(err.Error(), goerrors.CategoryConflict).
			WithCode(http.StatusConflict).
			WithTextCode(TextCodeConflict).
			WithMetadata(map[string]any{"resource": resource})
		result.Source = err
		return result
	case isForeignKeyViolation(err):
		result := goerrors.New(err.Error(), goerrors.CategoryBadInput).
			WithCode(http.StatusBadRequest).
			WithTextCode(TextCodeRelationNotFound).
			WithMetadata(map[string]any{"resource": resource})
		result.Source = err
		return result
	}

	return err
}

func isUniqueViolation(err error) bool {
	var liteErr sqlite3.Error
	if stdErrors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			liteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	var pgErr *pq.Error
	if stdErrors.As(err, &pgErr) {
		return string(pgErr.Code) == pgUniqueViolation
	}
	return false
}

func isForeignKeyViolation(err error) bool {
	var liteErr sqlite3.Error
	if stdErrors.As(err, &liteErr) {
		return liteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	var pgErr *pq.Error
	if stdErrors.As(err, &pgErr) {
		return string(pgErr.Code) == pgForeignKeyViolation
	}
	return false
}

// IsNotFound reports whether err marks a missing record.
func IsNotFound(err error) bool {
	var categorized *goerrors.Error
	if !stdErrors.As(err, &categorized) {
		return false
	}
	return categorized.Category == goerrors.CategoryNotFound
}

// IsRelationNotFound reports whether err marks a failed connect.
func IsRelationNotFound(err error) bool {
	var categorized *goerrors.Error
	if !stdErrors.As(err, &categorized) {
		return false
	}
	return categorized.TextCode == TextCodeRelationNotFound
}

// IsConflict reports whether err marks a unique constraint violation.
func IsConflict(err error) bool {
	var categorized *goerrors.Error
	if !stdErrors.As(err, &categorized) {
		return false
	}
	return categorized.Category == goerrors.CategoryConflict
}
