package graph

import (
	"context"

	"github.com/graph-gophers/graphql-go"

	"github.com/goliatone/go-school/internal/store"
)

type idArgs struct {
	ID graphql.ID
}

func (r *Resolver) Enrollment(ctx context.Context) (*[]*studentResolver, error) {
	students, err := r.store.Students().Enrolled(ctx)
	if err != nil {
		return nil, r.fail(ctx, "enrollment", err)
	}
	list := r.wrapStudents(students)
	return &list, nil
}

func (r *Resolver) Students(ctx context.Context) (*[]*studentResolver, error) {
	students, err := r.store.Students().FindMany(ctx)
	if err != nil {
		return nil, r.fail(ctx, "students", err)
	}
	list := r.wrapStudents(students)
	return &list, nil
}

// Student returns null for a malformed or unknown id.
func (r *Resolver) Student(ctx context.Context, args idArgs) (*studentResolver, error) {
	id, ok := parseID(args.ID)
	if !ok {
		return nil, nil
	}
	student, err := r.store.Students().FindByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, r.fail(ctx, "student", err)
	}
	return r.wrapStudent(student), nil
}

func (r *Resolver) Departments(ctx context.Context) ([]*departmentResolver, error) {
	departments, err := r.store.Departments().FindMany(ctx)
	if err != nil {
		return nil, r.fail(ctx, "departments", err)
	}
	return r.wrapDepartments(departments), nil
}

func (r *Resolver) Department(ctx context.Context, args idArgs) (*departmentResolver, error) {
	id, ok := parseID(args.ID)
	if !ok {
		return nil, nil
	}
	dept, err := r.store.Departments().FindByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, r.fail(ctx, "department", err)
	}
	return r.wrapDepartment(dept), nil
}

func (r *Resolver) Courses(ctx context.Context) ([]*courseResolver, error) {
	courses, err := r.store.Courses().FindMany(ctx)
	if err != nil {
		return nil, r.fail(ctx, "courses", err)
	}
	return r.wrapCourses(courses), nil
}

func (r *Resolver) Course(ctx context.Context, args idArgs) (*courseResolver, error) {
	id, ok := parseID(args.ID)
	if !ok {
		return nil, nil
	}
	course, err := r.store.Courses().FindByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, r.fail(ctx, "course", err)
	}
	return r.wrapCourse(course), nil
}

func (r *Resolver) Teachers(ctx context.Context) ([]*teacherResolver, error) {
	teachers, err := r.store.Teachers().FindMany(ctx)
	if err != nil {
		return nil, r.fail(ctx, "teachers", err)
	}
	return r.wrapTeachers(teachers), nil
}

func (r *Resolver) Teacher(ctx context.Context, args idArgs) (*teacherResolver, error) {
	id, ok := parseID(args.ID)
	if !ok {
		return nil, nil
	}
	teacher, err := r.store.Teachers().FindByID(ctx, id)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, r.fail(ctx, "teacher", err)
	}
	return r.wrapTeacher(teacher), nil
}
