package store_test

import (
	"context"
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/extra/bundebug"

	school "github.com/goliatone/go-school"
	"github.com/goliatone/go-school/internal/store"
)

func setupStore(t *testing.T) (*store.Store, *bun.DB) {
	t.Helper()

	ctx := context.Background()
	client, err := school.SetupDatabase(ctx, school.DatabaseOptions{
		Driver: school.DriverSQLite,
		DSN:    school.MemoryDSN(t.Name()),
	})
	require.NoError(t, err)

	db := client.DB()
	if os.Getenv("TEST_SQL_DEBUG") != "" {
		db.AddQueryHook(bundebug.NewQueryHook(bundebug.WithVerbose(true)))
	}

	require.NoError(t, school.MigrateSchema(ctx, db))

	t.Cleanup(func() {
		_ = client.Close()
	})

	return store.New(db), db
}

func strPtr(s string) *string { return &s }

func TestStudents_CreateConnectsDepartment(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	dept, err := s.Departments().Create(ctx, store.DepartmentInput{Name: "CS", Description: strPtr("Computer Science")})
	require.NoError(t, err)
	assert.Equal(t, int64(1), dept.ID)

	student, err := s.Students().Create(ctx, store.StudentInput{
		Email:    "a@x.com",
		FullName: "A",
		DeptID:   dept.ID,
	})
	require.NoError(t, err)
	assert.NotZero(t, student.ID)
	assert.False(t, student.Enrolled)
	assert.False(t, student.CreatedAt.IsZero())

	found, err := s.Students().FindByID(ctx, student.ID)
	require.NoError(t, err)
	assert.Equal(t, "a@x.com", found.Email)
	assert.Equal(t, "A", found.FullName)
	assert.Equal(t, dept.ID, found.DeptID)
}

func TestStudents_CreateMissingDepartmentLeavesNoRow(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()

	_, err := s.Students().Create(ctx, store.StudentInput{
		Email:    "ghost@x.com",
		FullName: "Ghost",
		DeptID:   42,
	})
	require.Error(t, err)
	assert.True(t, store.IsRelationNotFound(err))
	assert.False(t, store.IsNotFound(err))

	count, err := db.NewSelect().Model((*school.Student)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestStudents_DuplicateEmailIsConflict(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	dept, err := s.Departments().Create(ctx, store.DepartmentInput{Name: "CS"})
	require.NoError(t, err)

	_, err = s.Students().Create(ctx, store.StudentInput{Email: "dup@x.com", FullName: "One", DeptID: dept.ID})
	require.NoError(t, err)

	_, err = s.Students().Create(ctx, store.StudentInput{Email: "dup@x.com", FullName: "Two", DeptID: dept.ID})
	require.Error(t, err)
	assert.True(t, store.IsConflict(err))
}

func TestStudents_EnrollIsIdempotent(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	dept, err := s.Departments().Create(ctx, store.DepartmentInput{Name: "CS"})
	require.NoError(t, err)
	student, err := s.Students().Create(ctx, store.StudentInput{Email: "e@x.com", FullName: "E", DeptID: dept.ID})
	require.NoError(t, err)

	first, err := s.Students().Enroll(ctx, student.ID)
	require.NoError(t, err)
	assert.True(t, first.Enrolled)

	second, err := s.Students().Enroll(ctx, student.ID)
	require.NoError(t, err)
	assert.True(t, second.Enrolled)

	_, err = s.Students().Enroll(ctx, 999)
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}

func TestStudents_EnrolledReturnsExactSubset(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	dept, err := s.Departments().Create(ctx, store.DepartmentInput{Name: "CS"})
	require.NoError(t, err)

	emails := []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"}
	ids := make([]int64, 0, len(emails))
	for _, email := range emails {
		student, err := s.Students().Create(ctx, store.StudentInput{Email: email, FullName: email, DeptID: dept.ID})
		require.NoError(t, err)
		ids = append(ids, student.ID)
	}

	_, err = s.Students().Enroll(ctx, ids[1])
	require.NoError(t, err)
	_, err = s.Students().Enroll(ctx, ids[3])
	require.NoError(t, err)

	enrolled, err := s.Students().Enrolled(ctx)
	require.NoError(t, err)
	require.Len(t, enrolled, 2)
	assert.Equal(t, ids[1], enrolled[0].ID)
	assert.Equal(t, ids[3], enrolled[1].ID)

	all, err := s.Students().FindMany(ctx)
	require.NoError(t, err)
	for _, student := range all {
		inSubset := false
		for _, e := range enrolled {
			if e.ID == student.ID {
				inSubset = true
			}
		}
		assert.Equal(t, student.Enrolled, inSubset, "student %d", student.ID)
	}
}

func TestTeachers_CreateWithNestedCourses(t *testing.T) {
	s, _ := setupStore(t)
	ctx := context.Background()

	teacher, err := s.Teachers().Create(ctx, store.TeacherInput{
		Email:    "t@x.com",
		FullName: "Teacher",
		Courses: []store.CourseSpec{
			{Code: "CS101", Title: "Intro"},
			{Code: "CS102", Title: "Data Structures", Description: strPtr("Lists and trees")},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, school.TeacherFullTime, teacher.Type)

	courses, err := s.Courses().ByTeacher(ctx, teacher.ID)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	for _, course := range courses {
		require.NotNil(t, course.TeacherID)
		assert.Equal(t, teacher.ID, *course.TeacherID)
	}
	assert.Equal(t, "CS101", courses[0].Code)
	require.NotNil(t, courses[1].Description)
	assert.Equal(t, "Lists and trees", *courses[1].Description)

	byEmail, err := s.Teachers().FindByEmail(ctx, "t@x.com")
	require.NoError(t, err)
	assert.Equal(t, teacher.ID, byEmail.ID)
}

func TestCourses_CreateConnectsTeacherByEmail(t *testing.T) {
	s, db := setupStore(t)
	ctx := context.Background()

	teacher, err := s.Teachers().Create(ctx, store.TeacherInput{Email: "t@x.com", FullName: "T", Type: school.TeacherPartTime})
	require.NoError(t, err)
	dept, err := s.Departments().Create(ctx, store.DepartmentInput{Name: "CS"})
	require.NoError(t, err)

	course, err := s.Courses().Create(ctx, store.CourseInput{
		Code:         "CS201",
		Title:        "Algorithms",
		TeacherEmail: strPtr("t@x.com"),
		DeptID:       &dept.ID,
	})
	require.NoError(t, err)
	require.NotNil(t, course.TeacherID)
	assert.Equal(t, teacher.ID, *course.TeacherID)
	require.NotNil(t, course.DeptID)
	assert.Equal(t, dept.ID, *course.DeptID)

	_, err = s.Courses().Create(ctx, store.CourseInput{
		Code:         "CS999",
		Title:        "Nobody",
		TeacherEmail: strPtr("missing@x.com"),
	})
	require.Error(t, err)
	assert.True(t, store.IsRelationNotFound(err))

	count, err := db.NewSelect().Model((*school.Course)(nil)).Count(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	inDept, err := s.Courses().ByDepartment(ctx, dept.ID)
	require.NoError(t, err)
	require.Len(t, inDept, 1)
	assert.Equal(t, course.ID, inDept[0].ID)
}

func TestCollection_FindByIDMissing(t *testing.T) {
	s, _ := setupStore(t)

	_, err := s.Departments().FindByID(context.Background(), 7)
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))

	_, err = s.Teachers().FindByEmail(context.Background(), "nobody@x.com")
	require.Error(t, err)
	assert.True(t, store.IsNotFound(err))
}
