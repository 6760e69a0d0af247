package store

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	school "github.com/goliatone/go-school"
)

// StudentInput carries the fields accepted when registering a student.
type StudentInput struct {
	Email    string
	FullName string
	DeptID   int64
}

type Students struct {
	collection[school.Student]
	logger school.Logger
}

// Create registers a student connected to an existing department. The
// department lookup and the insert share one transaction so a failed connect
// leaves no row behind.
func (s *Students) Create(ctx context.Context, in StudentInput) (*school.Student, error) {
	student := &school.Student{
		Email:    strings.TrimSpace(in.Email),
		FullName: strings.TrimSpace(in.FullName),
		DeptID:   in.DeptID,
	}

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		found, err := exists[school.Department](ctx, tx, WhereEq("id", in.DeptID))
		if err != nil {
			return mapError("Department", err)
		}
		if !found {
			return relationNotFound("Student", "Department", "id", in.DeptID)
		}

		if _, err := tx.NewInsert().Model(student).Exec(ctx); err != nil {
			return mapError("Student", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("registered student %d (%s) in department %d", student.ID, student.Email, student.DeptID)
	return student, nil
}

// Enroll flags the student as enrolled. Enrolling twice is a no-op.
func (s *Students) Enroll(ctx context.Context, id int64) (*school.Student, error) {
	var student *school.Student

	err := s.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		current, err := findOne[school.Student](ctx, tx, "Student", WhereEq("id", id))
		if err != nil {
			if IsNotFound(err) {
				return NotFound("Student", "id", id)
			}
			return err
		}

		if !current.Enrolled {
			current.Enrolled = true
			if _, err := tx.NewUpdate().
				Model(current).
				Column("enrolled", "updated_at").
				WherePK().
				Exec(ctx); err != nil {
				return mapError("Student", err)
			}
		}

		student = current
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Debug("student %d enrolled", student.ID)
	return student, nil
}

// Enrolled lists the students whose enrolled flag is set.
func (s *Students) Enrolled(ctx context.Context) ([]*school.Student, error) {
	return s.FindMany(ctx, WhereEq("enrolled", true))
}

// ByDepartment lists the students that belong to the department.
func (s *Students) ByDepartment(ctx context.Context, deptID int64) ([]*school.Student, error) {
	return s.FindMany(ctx, WhereEq("dept_id", deptID))
}
