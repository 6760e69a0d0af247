package store

import (
	"context"

	"github.com/uptrace/bun"

	school "github.com/goliatone/go-school"
)

// Filter narrows a select query, in the same shape as repository select criteria.
type Filter func(*bun.SelectQuery) *bun.SelectQuery

// WhereEq matches rows whose column equals value.
func WhereEq(column string, value any) Filter {
	return func(q *bun.SelectQuery) *bun.SelectQuery {
		return q.Where("?TableAlias.? = ?", bun.Ident(column), value)
	}
}

// Store is the data access adapter shared by every resolver. It holds no
// state besides the database handle.
type Store struct {
	db     bun.IDB
	logger school.Logger

	students    *Students
	departments *Departments
	teachers    *Teachers
	courses     *Courses
}

type Option func(*Store)

func WithLogger(logger school.Logger) Option {
	return func(s *Store) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// New builds a Store over db. db is usually the process wide *bun.DB.
func New(db bun.IDB, opts ...Option) *Store {
	s := &Store{
		db:     db,
		logger: school.NopLogger(),
	}
	for _, opt := range opts {
		opt(s)
	}

	s.students = &Students{collection: newCollection[school.Student](db, "Student"), logger: s.logger}
	s.departments = &Departments{collection: newCollection[school.Department](db, "Department"), logger: s.logger}
	s.teachers = &Teachers{collection: newCollection[school.Teacher](db, "Teacher"), logger: s.logger}
	s.courses = &Courses{collection: newCollection[school.Course](db, "Course"), logger: s.logger}

	return s
}

func (s *Store) Students() *Students       { return s.students }
func (s *Store) Departments() *Departments { return s.departments }
func (s *Store) Teachers() *Teachers       { return s.teachers }
func (s *Store) Courses() *Courses         { return s.courses }

type collection[T any] struct {
	db       bun.IDB
	resource string
}

func newCollection[T any](db bun.IDB, resource string) collection[T] {
	return collection[T]{db: db, resource: resource}
}

// FindByID returns the record with the given id or a not found error.
func (c collection[T]) FindByID(ctx context.Context, id int64) (*T, error) {
	record := new(T)
	err := c.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		if err = mapError(c.resource, err); IsNotFound(err) {
			return nil, NotFound(c.resource, "id", id)
		}
		return nil, err
	}
	return record, nil
}

// FindMany returns every record matching filters, ordered by id.
func (c collection[T]) FindMany(ctx context.Context, filters ...Filter) ([]*T, error) {
	records := make([]*T, 0)
	query := c.db.NewSelect().Model(&records)
	for _, filter := range filters {
		if filter != nil {
			query = filter(query)
		}
	}
	if err := query.OrderExpr("?TableAlias.id ASC").Scan(ctx); err != nil {
		return nil, mapError(c.resource, err)
	}
	return records, nil
}

// findOne returns the first record matching filters, using db (which may be a tx).
func findOne[T any](ctx context.Context, db bun.IDB, resource string, filters ...Filter) (*T, error) {
	record := new(T)
	query := db.NewSelect().Model(record)
	for _, filter := range filters {
		query = filter(query)
	}
	if err := query.Limit(1).Scan(ctx); err != nil {
		return nil, mapError(resource, err)
	}
	return record, nil
}

func exists[T any](ctx context.Context, db bun.IDB, filters ...Filter) (bool, error) {
	query := db.NewSelect().Model((*T)(nil))
	for _, filter := range filters {
		query = filter(query)
	}
	return query.Exists(ctx)
}
