package school

import (
	"context"
	"time"

	"github.com/uptrace/bun"
)

// TeacherType is the employment type of a Teacher.
type TeacherType string

const (
	TeacherFullTime TeacherType = "FULLTIME"
	TeacherPartTime TeacherType = "PARTTIME"
)

// Valid reports whether t is one of the known employment types.
func (t TeacherType) Valid() bool {
	switch t {
	case TeacherFullTime, TeacherPartTime:
		return true
	}
	return false
}

// Department owns students and courses (has-many relations).
type Department struct {
	bun.BaseModel `bun:"table:departments,alias:d"`
	ID            int64     `bun:"id,pk,autoincrement" json:"id"`
	Name          string    `bun:"name,notnull" json:"name"`
	Description   *string   `bun:"description" json:"description,omitempty"`
	Students      []Student `bun:"rel:has-many,join:id=dept_id" json:"students,omitempty"`
	Courses       []Course  `bun:"rel:has-many,join:id=dept_id" json:"courses,omitempty"`
	CreatedAt     time.Time `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Student belongs to exactly one Department.
type Student struct {
	bun.BaseModel `bun:"table:students,alias:s"`
	ID            int64       `bun:"id,pk,autoincrement" json:"id"`
	Email         string      `bun:"email,notnull,unique" json:"email"`
	FullName      string      `bun:"full_name,notnull" json:"full_name"`
	Enrolled      bool        `bun:"enrolled,notnull,default:false" json:"enrolled"`
	DeptID        int64       `bun:"dept_id,notnull" json:"dept_id"`
	Dept          *Department `bun:"rel:belongs-to,join:dept_id=id" json:"dept,omitempty"`
	CreatedAt     time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Teacher owns zero or more courses.
type Teacher struct {
	bun.BaseModel `bun:"table:teachers,alias:t"`
	ID            int64       `bun:"id,pk,autoincrement" json:"id"`
	Email         string      `bun:"email,notnull,unique" json:"email"`
	FullName      string      `bun:"full_name,notnull" json:"full_name"`
	Type          TeacherType `bun:"type,notnull,default:'FULLTIME'" json:"type"`
	Courses       []Course    `bun:"rel:has-many,join:id=teacher_id" json:"courses,omitempty"`
	CreatedAt     time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

// Course optionally belongs to a Teacher and a Department.
type Course struct {
	bun.BaseModel `bun:"table:courses,alias:c"`
	ID            int64       `bun:"id,pk,autoincrement" json:"id"`
	Code          string      `bun:"code,notnull" json:"code"`
	Title         string      `bun:"title,notnull" json:"title"`
	Description   *string     `bun:"description" json:"description,omitempty"`
	TeacherID     *int64      `bun:"teacher_id" json:"teacher_id,omitempty"`
	DeptID        *int64      `bun:"dept_id" json:"dept_id,omitempty"`
	Teacher       *Teacher    `bun:"rel:belongs-to,join:teacher_id=id" json:"teacher,omitempty"`
	Dept          *Department `bun:"rel:belongs-to,join:dept_id=id" json:"dept,omitempty"`
	CreatedAt     time.Time   `bun:"created_at,nullzero,notnull,default:current_timestamp" json:"created_at"`
	UpdatedAt     time.Time   `bun:"updated_at,nullzero,notnull,default:current_timestamp" json:"updated_at"`
}

var (
	_ bun.BeforeAppendModelHook = (*Department)(nil)
	_ bun.BeforeAppendModelHook = (*Student)(nil)
	_ bun.BeforeAppendModelHook = (*Teacher)(nil)
	_ bun.BeforeAppendModelHook = (*Course)(nil)
)

func (d *Department) BeforeAppendModel(_ context.Context, query bun.Query) error {
	touch(query, &d.CreatedAt, &d.UpdatedAt)
	return nil
}

func (s *Student) BeforeAppendModel(_ context.Context, query bun.Query) error {
	touch(query, &s.CreatedAt, &s.UpdatedAt)
	return nil
}

func (t *Teacher) BeforeAppendModel(_ context.Context, query bun.Query) error {
	if t.Type == "" {
		t.Type = TeacherFullTime
	}
	touch(query, &t.CreatedAt, &t.UpdatedAt)
	return nil
}

func (c *Course) BeforeAppendModel(_ context.Context, query bun.Query) error {
	touch(query, &c.CreatedAt, &c.UpdatedAt)
	return nil
}

// touch stamps created/updated timestamps so inserted records carry them
// without a second read.
func touch(query bun.Query, createdAt, updatedAt *time.Time) {
	now := time.Now().UTC()
	switch query.(type) {
	case *bun.InsertQuery:
		if createdAt.IsZero() {
			*createdAt = now
		}
		*updatedAt = now
	case *bun.UpdateQuery:
		*updatedAt = now
	}
}
