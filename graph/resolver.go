package graph

import (
	"context"
	"strconv"
	"strings"

	"github.com/graph-gophers/graphql-go"

	school "github.com/goliatone/go-school"
	"github.com/goliatone/go-school/internal/store"
)

// Resolver is the root resolver for both Query and Mutation.
type Resolver struct {
	store  *store.Store
	logger school.Logger
	encode ErrorEncoder
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger used for resolver errors.
func WithLogger(logger school.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithErrorEncoder replaces the default go-errors encoder.
func WithErrorEncoder(encoder ErrorEncoder) Option {
	return func(r *Resolver) {
		if encoder != nil {
			r.encode = encoder
		}
	}
}

// NewResolver builds the root resolver over s.
func NewResolver(s *store.Store, opts ...Option) *Resolver {
	r := &Resolver{
		store:  s,
		logger: school.NopLogger(),
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.encode == nil {
		r.encode = DefaultErrorEncoder(r.logger)
	}
	return r
}

func (r *Resolver) fail(ctx context.Context, op string, err error) error {
	return r.encode(ctx, err, op)
}

// parseID reads a GraphQL ID as a numeric primary key.
func parseID(id graphql.ID) (int64, bool) {
	value, err := strconv.ParseInt(strings.TrimSpace(string(id)), 10, 64)
	if err != nil || value <= 0 {
		return 0, false
	}
	return value, true
}

func toID(id int64) graphql.ID {
	return graphql.ID(strconv.FormatInt(id, 10))
}
