package graph

import (
	"context"

	"github.com/graph-gophers/graphql-go"

	school "github.com/goliatone/go-school"
	"github.com/goliatone/go-school/internal/store"
)

type TeacherCreateInput struct {
	Email    string
	FullName string
	Type     *string
	Courses  *[]CourseCreateWithoutTeacherInput
}

type CourseCreateWithoutTeacherInput struct {
	Code        string
	Title       string
	Description *string
}

func (r *Resolver) RegisterStudent(ctx context.Context, args struct {
	Email    string
	FullName string
	DeptID   int32
}) (*studentResolver, error) {
	student, err := r.store.Students().Create(ctx, store.StudentInput{
		Email:    args.Email,
		FullName: args.FullName,
		DeptID:   int64(args.DeptID),
	})
	if err != nil {
		return nil, r.fail(ctx, "registerStudent", err)
	}
	return r.wrapStudent(student), nil
}

// Enroll marks the student enrolled. Unlike the lookups, an unknown id is an
// error here.
func (r *Resolver) Enroll(ctx context.Context, args struct{ ID graphql.ID }) (*studentResolver, error) {
	id, ok := parseID(args.ID)
	if !ok {
		return nil, r.fail(ctx, "enroll", store.NotFound("Student", "id", string(args.ID)))
	}

	student, err := r.store.Students().Enroll(ctx, id)
	if err != nil {
		return nil, r.fail(ctx, "enroll", err)
	}
	return r.wrapStudent(student), nil
}

func (r *Resolver) CreateTeacher(ctx context.Context, args struct{ Data TeacherCreateInput }) (*teacherResolver, error) {
	in := store.TeacherInput{
		Email:    args.Data.Email,
		FullName: args.Data.FullName,
	}
	if args.Data.Type != nil {
		in.Type = school.TeacherType(*args.Data.Type)
	}
	if args.Data.Courses != nil {
		for _, c := range *args.Data.Courses {
			in.Courses = append(in.Courses, store.CourseSpec{
				Code:        c.Code,
				Title:       c.Title,
				Description: c.Description,
			})
		}
	}

	teacher, err := r.store.Teachers().Create(ctx, in)
	if err != nil {
		return nil, r.fail(ctx, "createTeacher", err)
	}
	return r.wrapTeacher(teacher), nil
}

func (r *Resolver) CreateCourse(ctx context.Context, args struct {
	Code         string
	Title        string
	TeacherEmail *string
	DeptID       *int32
}) (*courseResolver, error) {
	in := store.CourseInput{
		Code:         args.Code,
		Title:        args.Title,
		TeacherEmail: args.TeacherEmail,
	}
	if args.DeptID != nil {
		deptID := int64(*args.DeptID)
		in.DeptID = &deptID
	}

	course, err := r.store.Courses().Create(ctx, in)
	if err != nil {
		return nil, r.fail(ctx, "createCourse", err)
	}
	return r.wrapCourse(course), nil
}

func (r *Resolver) CreateDepartment(ctx context.Context, args struct {
	Name        string
	Description *string
}) (*departmentResolver, error) {
	dept, err := r.store.Departments().Create(ctx, store.DepartmentInput{
		Name:        args.Name,
		Description: args.Description,
	})
	if err != nil {
		return nil, r.fail(ctx, "createDepartment", err)
	}
	return r.wrapDepartment(dept), nil
}
