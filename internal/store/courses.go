package store

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	school "github.com/goliatone/go-school"
)

// CourseInput carries a new course and the optional records it connects to.
type CourseInput struct {
	Code         string
	Title        string
	Description  *string
	TeacherEmail *string
	DeptID       *int64
}

type Courses struct {
	collection[school.Course]
	logger school.Logger
}

// Create inserts a course, connecting it to the teacher with TeacherEmail and
// to the department DeptID when given. A blank email connects no teacher. A
// missing related record aborts the insert.
func (c *Courses) Create(ctx context.Context, in CourseInput) (*school.Course, error) {
	course := &school.Course{
		Code:        strings.TrimSpace(in.Code),
		Title:       strings.TrimSpace(in.Title),
		Description: in.Description,
	}

	err := c.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if email := trimmed(in.TeacherEmail); email != "" {
			teacher, err := findOne[school.Teacher](ctx, tx, "Teacher", WhereEq("email", email))
			if err != nil {
				if IsNotFound(err) {
					return relationNotFound("Course", "Teacher", "email", email)
				}
				return err
			}
			course.TeacherID = &teacher.ID
		}

		if in.DeptID != nil {
			found, err := exists[school.Department](ctx, tx, WhereEq("id", *in.DeptID))
			if err != nil {
				return mapError("Department", err)
			}
			if !found {
				return relationNotFound("Course", "Department", "id", *in.DeptID)
			}
			deptID := *in.DeptID
			course.DeptID = &deptID
		}

		if _, err := tx.NewInsert().Model(course).Exec(ctx); err != nil {
			return mapError("Course", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	c.logger.Debug("created course %d (%s)", course.ID, course.Code)
	return course, nil
}

func trimmed(s *string) string {
	if s == nil {
		return ""
	}
	return strings.TrimSpace(*s)
}

// ByTeacher lists the courses taught by the teacher.
func (c *Courses) ByTeacher(ctx context.Context, teacherID int64) ([]*school.Course, error) {
	return c.FindMany(ctx, WhereEq("teacher_id", teacherID))
}

// ByDepartment lists the courses offered by the department.
func (c *Courses) ByDepartment(ctx context.Context, deptID int64) ([]*school.Course, error) {
	return c.FindMany(ctx, WhereEq("dept_id", deptID))
}
