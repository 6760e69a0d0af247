package graph

import (
	"context"
	"time"

	"github.com/graph-gophers/graphql-go"

	school "github.com/goliatone/go-school"
	"github.com/goliatone/go-school/internal/store"
)

func timestamp(t time.Time) *string {
	if t.IsZero() {
		return nil
	}
	s := t.UTC().Format(time.RFC3339)
	return &s
}

type studentResolver struct {
	r     *Resolver
	model *school.Student
}

func (s *studentResolver) ID() graphql.ID     { return toID(s.model.ID) }
func (s *studentResolver) Email() string      { return s.model.Email }
func (s *studentResolver) FullName() string   { return s.model.FullName }
func (s *studentResolver) Enrolled() *bool    { return &s.model.Enrolled }
func (s *studentResolver) CreatedAt() *string { return timestamp(s.model.CreatedAt) }
func (s *studentResolver) UpdatedAt() *string { return timestamp(s.model.UpdatedAt) }

// Dept loads the owning department by the student's foreign key.
func (s *studentResolver) Dept(ctx context.Context) (*departmentResolver, error) {
	dept, err := s.r.store.Departments().FindByID(ctx, s.model.DeptID)
	if err != nil {
		return nil, s.r.fail(ctx, "Student.dept", err)
	}
	return s.r.wrapDepartment(dept), nil
}

type departmentResolver struct {
	r     *Resolver
	model *school.Department
}

func (d *departmentResolver) ID() graphql.ID       { return toID(d.model.ID) }
func (d *departmentResolver) Name() string         { return d.model.Name }
func (d *departmentResolver) Description() *string { return d.model.Description }
func (d *departmentResolver) CreatedAt() *string   { return timestamp(d.model.CreatedAt) }
func (d *departmentResolver) UpdatedAt() *string   { return timestamp(d.model.UpdatedAt) }

func (d *departmentResolver) Students(ctx context.Context) (*[]*studentResolver, error) {
	students, err := d.r.store.Students().ByDepartment(ctx, d.model.ID)
	if err != nil {
		return nil, d.r.fail(ctx, "Department.students", err)
	}
	list := d.r.wrapStudents(students)
	return &list, nil
}

func (d *departmentResolver) Courses(ctx context.Context) (*[]*courseResolver, error) {
	courses, err := d.r.store.Courses().ByDepartment(ctx, d.model.ID)
	if err != nil {
		return nil, d.r.fail(ctx, "Department.courses", err)
	}
	list := d.r.wrapCourses(courses)
	return &list, nil
}

type teacherResolver struct {
	r     *Resolver
	model *school.Teacher
}

func (t *teacherResolver) ID() graphql.ID     { return toID(t.model.ID) }
func (t *teacherResolver) Email() string      { return t.model.Email }
func (t *teacherResolver) FullName() string   { return t.model.FullName }
func (t *teacherResolver) CreatedAt() *string { return timestamp(t.model.CreatedAt) }
func (t *teacherResolver) UpdatedAt() *string { return timestamp(t.model.UpdatedAt) }

func (t *teacherResolver) Type() *string {
	if !t.model.Type.Valid() {
		return nil
	}
	value := string(t.model.Type)
	return &value
}

func (t *teacherResolver) Courses(ctx context.Context) (*[]*courseResolver, error) {
	courses, err := t.r.store.Courses().ByTeacher(ctx, t.model.ID)
	if err != nil {
		return nil, t.r.fail(ctx, "Teacher.courses", err)
	}
	list := t.r.wrapCourses(courses)
	return &list, nil
}

type courseResolver struct {
	r     *Resolver
	model *school.Course
}

func (c *courseResolver) ID() graphql.ID       { return toID(c.model.ID) }
func (c *courseResolver) Code() string         { return c.model.Code }
func (c *courseResolver) Title() string        { return c.model.Title }
func (c *courseResolver) Description() *string { return c.model.Description }
func (c *courseResolver) CreatedAt() *string   { return timestamp(c.model.CreatedAt) }
func (c *courseResolver) UpdatedAt() *string   { return timestamp(c.model.UpdatedAt) }

// Teacher is null when the course has no teacher connected.
func (c *courseResolver) Teacher(ctx context.Context) (*teacherResolver, error) {
	if c.model.TeacherID == nil {
		return nil, nil
	}
	teacher, err := c.r.store.Teachers().FindByID(ctx, *c.model.TeacherID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, c.r.fail(ctx, "Course.teacher", err)
	}
	return c.r.wrapTeacher(teacher), nil
}

func (c *courseResolver) Dept(ctx context.Context) (*departmentResolver, error) {
	if c.model.DeptID == nil {
		return nil, nil
	}
	dept, err := c.r.store.Departments().FindByID(ctx, *c.model.DeptID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, nil
		}
		return nil, c.r.fail(ctx, "Course.dept", err)
	}
	return c.r.wrapDepartment(dept), nil
}

func (r *Resolver) wrapStudent(m *school.Student) *studentResolver {
	return &studentResolver{r: r, model: m}
}

func (r *Resolver) wrapDepartment(m *school.Department) *departmentResolver {
	return &departmentResolver{r: r, model: m}
}

func (r *Resolver) wrapTeacher(m *school.Teacher) *teacherResolver {
	return &teacherResolver{r: r, model: m}
}

func (r *Resolver) wrapCourse(m *school.Course) *courseResolver {
	return &courseResolver{r: r, model: m}
}

func (r *Resolver) wrapStudents(models []*school.Student) []*studentResolver {
	out := make([]*studentResolver, 0, len(models))
	for _, m := range models {
		out = append(out, r.wrapStudent(m))
	}
	return out
}

func (r *Resolver) wrapDepartments(models []*school.Department) []*departmentResolver {
	out := make([]*departmentResolver, 0, len(models))
	for _, m := range models {
		out = append(out, r.wrapDepartment(m))
	}
	return out
}

func (r *Resolver) wrapTeachers(models []*school.Teacher) []*teacherResolver {
	out := make([]*teacherResolver, 0, len(models))
	for _, m := range models {
		out = append(out, r.wrapTeacher(m))
	}
	return out
}

func (r *Resolver) wrapCourses(models []*school.Course) []*courseResolver {
	out := make([]*courseResolver, 0, len(models))
	for _, m := range models {
		out = append(out, r.wrapCourse(m))
	}
	return out
}
