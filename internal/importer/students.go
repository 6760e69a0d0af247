package importer

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/ettle/strcase"
	goerrors "github.com/goliatone/go-errors"
	"github.com/xuri/excelize/v2"

	school "github.com/goliatone/go-school"
	"github.com/goliatone/go-school/internal/store"
)

const TextCodeInvalidWorkbook = "INVALID_WORKBOOK"

var headerAliases = map[string]string{
	"email":         "email",
	"e_mail":        "email",
	"email_address": "email",
	"full_name":     "full_name",
	"name":          "full_name",
	"student_name":  "full_name",
}

// StudentCreator is the part of the store the importer writes through.
type StudentCreator interface {
	Create(ctx context.Context, in store.StudentInput) (*school.Student, error)
}

// RowError describes a spreadsheet row that was not imported.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

// Result summarizes an import run.
type Result struct {
	Imported int        `json:"imported"`
	Skipped  int        `json:"skipped"`
	Errors   []RowError `json:"errors,omitempty"`
}

type Importer struct {
	students StudentCreator
	logger   school.Logger
}

func New(students StudentCreator, logger school.Logger) *Importer {
	if logger == nil {
		logger = school.NopLogger()
	}
	return &Importer{students: students, logger: logger}
}

// ImportStudents registers every row of the first sheet as a student of
// department deptID. The first row is the header and must name an email and
// a full name column. Rows that are blank or rejected by the store are counted
// as skipped. An unknown department aborts the import.
func (i *Importer) ImportStudents(ctx context.Context, r io.Reader, deptID int64) (Result, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Result{}, invalidWorkbook("failed to open workbook", err)
	}
	defer func() {
		if err := f.Close(); err != nil {
			i.logger.Error("close workbook: %v", err)
		}
	}()

	sheet := f.GetSheetName(0)
	if sheet == "" {
		return Result{}, invalidWorkbook("workbook has no sheets", nil)
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return Result{}, invalidWorkbook(fmt.Sprintf("failed to read sheet %s", sheet), err)
	}
	if len(rows) == 0 {
		return Result{}, invalidWorkbook("sheet "+sheet+" is empty", nil)
	}

	columns := headerColumns(rows[0])
	emailCol, okEmail := columns["email"]
	nameCol, okName := columns["full_name"]
	if !okEmail || !okName {
		return Result{}, invalidWorkbook("header row must contain email and full name columns", nil)
	}

	result := Result{}
	for idx, row := range rows[1:] {
		line := idx + 2
		email := cell(row, emailCol)
		name := cell(row, nameCol)

		if email == "" && name == "" {
			continue
		}
		if email == "" || name == "" {
			result.skip(line, "missing email or full name")
			continue
		}

		_, err := i.students.Create(ctx, store.StudentInput{
			Email:    email,
			FullName: name,
			DeptID:   deptID,
		})
		if err != nil {
			if store.IsRelationNotFound(err) {
				return result, err
			}
			i.logger.Debug("import row %d skipped: %v", line, err)
			result.skip(line, err.Error())
			continue
		}
		result.Imported++
	}

	i.logger.Info("imported %d students into department %d (%d skipped)", result.Imported, deptID, result.Skipped)
	return result, nil
}

func (r *Result) skip(row int, message string) {
	r.Skipped++
	r.Errors = append(r.Errors, RowError{Row: row, Message: message})
}

func headerColumns(header []string) map[string]int {
	out := make(map[string]int, len(header))
	for idx, title := range header {
		key, ok := headerAliases[strcase.ToSnake(strings.TrimSpace(title))]
		if !ok {
			continue
		}
		if _, seen := out[key]; !seen {
			out[key] = idx
		}
	}
	return out
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func invalidWorkbook(message string, source error) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode(TextCodeInvalidWorkbook)
	if source != nil {
		err.Source = source
	}
	return err
}
