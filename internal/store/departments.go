package store

import (
	"context"
	"strings"

	school "github.com/goliatone/go-school"
)

type DepartmentInput struct {
	Name        string
	Description *string
}

type Departments struct {
	collection[school.Department]
	logger school.Logger
}

// Create inserts a department without relationships.
func (d *Departments) Create(ctx context.Context, in DepartmentInput) (*school.Department, error) {
	dept := &school.Department{
		Name:        strings.TrimSpace(in.Name),
		Description: in.Description,
	}

	if _, err := d.db.NewInsert().Model(dept).Exec(ctx); err != nil {
		return nil, mapError("Department", err)
	}

	d.logger.Debug("created department %d (%s)", dept.ID, dept.Name)
	return dept, nil
}
