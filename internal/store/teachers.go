package store

import (
	"context"
	"strings"

	"github.com/uptrace/bun"

	school "github.com/goliatone/go-school"
)

// CourseSpec describes a course created alongside its teacher.
type CourseSpec struct {
	Code        string
	Title       string
	Description *string
}

type TeacherInput struct {
	Email    string
	FullName string
	Type     school.TeacherType
	Courses  []CourseSpec
}

type Teachers struct {
	collection[school.Teacher]
	logger school.Logger
}

// Create inserts the teacher and its nested courses in one transaction.
func (t *Teachers) Create(ctx context.Context, in TeacherInput) (*school.Teacher, error) {
	teacherType := in.Type
	if teacherType == "" {
		teacherType = school.TeacherFullTime
	}

	teacher := &school.Teacher{
		Email:    strings.TrimSpace(in.Email),
		FullName: strings.TrimSpace(in.FullName),
		Type:     teacherType,
	}

	err := t.db.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		if _, err := tx.NewInsert().Model(teacher).Exec(ctx); err != nil {
			return mapError("Teacher", err)
		}

		if len(in.Courses) == 0 {
			return nil
		}

		courses := make([]*school.Course, 0, len(in.Courses))
		for _, spec := range in.Courses {
			teacherID := teacher.ID
			courses = append(courses, &school.Course{
				Code:        strings.TrimSpace(spec.Code),
				Title:       strings.TrimSpace(spec.Title),
				Description: spec.Description,
				TeacherID:   &teacherID,
			})
		}

		if _, err := tx.NewInsert().Model(&courses).Exec(ctx); err != nil {
			return mapError("Course", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	t.logger.Debug("created teacher %d (%s) with %d courses", teacher.ID, teacher.Email, len(in.Courses))
	return teacher, nil
}

// FindByEmail looks a teacher up by its unique email.
func (t *Teachers) FindByEmail(ctx context.Context, email string) (*school.Teacher, error) {
	email = strings.TrimSpace(email)
	teacher, err := findOne[school.Teacher](ctx, t.db, "Teacher", WhereEq("email", email))
	if err != nil {
		if IsNotFound(err) {
			return nil, NotFound("Teacher", "email", email)
		}
		return nil, err
	}
	return teacher, nil
}
