package graph

import (
	"context"
	stdErrors "errors"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"

	school "github.com/goliatone/go-school"
)

// ErrorEncoder turns a store or resolver error into the error reported in
// the GraphQL errors array.
type ErrorEncoder func(ctx context.Context, err error, op string) error

// ResolverError is a categorized error exposed with GraphQL extensions.
type ResolverError struct {
	err       *goerrors.Error
	op        string
	requestID string
}

func (e *ResolverError) Error() string {
	return e.err.Message
}

func (e *ResolverError) Unwrap() error {
	return e.err
}

// Category returns the go-errors category name.
func (e *ResolverError) Category() string {
	return string(e.err.Category)
}

// TextCode returns the machine readable code, e.g. RELATION_NOT_FOUND.
func (e *ResolverError) TextCode() string {
	return e.err.TextCode
}

// Extensions is picked up by graph-gophers and serialized under "extensions".
func (e *ResolverError) Extensions() map[string]any {
	ext := map[string]any{
		"category": e.Category(),
		"code":     e.err.Code,
		"textCode": e.err.TextCode,
	}
	if e.op != "" {
		ext["operation"] = e.op
	}
	if e.requestID != "" {
		ext["requestId"] = e.requestID
	}
	if len(e.err.Metadata) > 0 {
		ext["metadata"] = e.err.Metadata
	}
	return ext
}

// DefaultErrorEncoder maps errors with go-errors and logs them with the
// request identifiers carried by ctx.
func DefaultErrorEncoder(logger school.Logger) ErrorEncoder {
	mappers := goerrors.DefaultErrorMappers()

	return func(ctx context.Context, err error, op string) error {
		if err == nil {
			return nil
		}

		var resolved *ResolverError
		if stdErrors.As(err, &resolved) {
			return resolved
		}

		var mapped *goerrors.Error
		if !stdErrors.As(err, &mapped) {
			for _, mapper := range mappers {
				if mapped = mapper(err); mapped != nil {
					break
				}
			}
		}
		// store errors are reported with their original message
		if mapped == nil {
			mapped = goerrors.Wrap(err, goerrors.CategoryInternal, err.Error())
		}

		if mapped.Code <= 0 {
			mapped.WithCode(statusFor(mapped))
		}
		if strings.TrimSpace(mapped.TextCode) == "" {
			mapped.WithTextCode(goerrors.HTTPStatusToTextCode(mapped.Code))
		}
		if strings.TrimSpace(mapped.Message) == "" {
			mapped.Message = err.Error()
		}

		out := &ResolverError{
			err:       mapped,
			op:        op,
			requestID: school.RequestIDFromContext(ctx),
		}

		school.LoggerFromContext(ctx, logger).Error("%s failed: %s (%s)", op, out.Error(), out.TextCode())
		return out
	}
}

func statusFor(err *goerrors.Error) int {
	switch err.Category {
	case goerrors.CategoryValidation:
		return http.StatusUnprocessableEntity
	case goerrors.CategoryNotFound:
		return http.StatusNotFound
	case goerrors.CategoryConflict:
		return http.StatusConflict
	case goerrors.CategoryBadInput:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
