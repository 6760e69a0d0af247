package server_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	school "github.com/goliatone/go-school"
	"github.com/goliatone/go-school/graph"
	"github.com/goliatone/go-school/internal/importer"
	"github.com/goliatone/go-school/internal/server"
	"github.com/goliatone/go-school/internal/store"
)

func buildTestServer(t *testing.T, ping func(context.Context) error) *fiber.App {
	t.Helper()

	ctx := context.Background()
	client, err := school.SetupDatabase(ctx, school.DatabaseOptions{
		Driver: school.DriverSQLite,
		DSN:    school.MemoryDSN(t.Name()),
	})
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = client.Close()
	})

	db := client.DB()
	require.NoError(t, school.MigrateSchema(ctx, db))

	s := store.New(db)
	schema, err := graph.NewSchema(s, graph.SchemaConfig{})
	require.NoError(t, err)

	if ping == nil {
		ping = db.PingContext
	}

	srv := server.New(server.Config{Playground: true}, server.Deps{
		Schema:   schema,
		Importer: importer.New(s.Students(), nil),
		Ping:     ping,
	})
	return srv.App()
}

type gqlResponse struct {
	Data   map[string]json.RawMessage `json:"data"`
	Errors []struct {
		Message    string         `json:"message"`
		Extensions map[string]any `json:"extensions"`
	} `json:"errors"`
}

func postGraphQL(t *testing.T, app *fiber.App, query string, vars map[string]any) (*http.Response, gqlResponse) {
	t.Helper()

	body, err := json.Marshal(map[string]any{"query": query, "variables": vars})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, server.GraphQLPath, bytes.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)

	out := gqlResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return resp, out
}

func TestGraphQL_CreateAndQuery(t *testing.T) {
	app := buildTestServer(t, nil)

	resp, out := postGraphQL(t, app, `mutation { createDepartment(name: "CS", description: "Computer Science") { id name } }`, nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `{"id":"1","name":"CS"}`, string(out.Data["createDepartment"]))
	assert.NotEmpty(t, resp.Header.Get(server.HeaderRequestID))

	_, out = postGraphQL(t, app, `mutation($email: String!, $deptId: Int!) {
  registerStudent(email: $email, fullName: "A", deptId: $deptId) { email dept { id name } }
}`, map[string]any{"email": "a@x.com", "deptId": 1})
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `{"email":"a@x.com","dept":{"id":"1","name":"CS"}}`, string(out.Data["registerStudent"]))

	req := httptest.NewRequest(http.MethodGet, server.GraphQLPath+"?query="+url.QueryEscape(`{ students { email } }`), nil)
	getResp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, getResp.StatusCode)

	got := gqlResponse{}
	require.NoError(t, json.NewDecoder(getResp.Body).Decode(&got))
	assert.JSONEq(t, `[{"email":"a@x.com"}]`, string(got.Data["students"]))
}

func TestGraphQL_GetRejectsMutations(t *testing.T) {
	app := buildTestServer(t, nil)

	documents := map[string]url.Values{
		"anonymous mutation": {"query": {`mutation { createDepartment(name: "viaGET") { id } }`}},
		"named mutation": {
			"query":         {`query q { departments { id } } mutation m { createDepartment(name: "viaGET") { id } }`},
			"operationName": {"m"},
		},
	}

	for name, params := range documents {
		t.Run(name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, server.GraphQLPath+"?"+params.Encode(), nil)
			resp, err := app.Test(req, -1)
			require.NoError(t, err)
			assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
			assert.Equal(t, http.MethodPost, resp.Header.Get(fiber.HeaderAllow))
		})
	}

	_, out := postGraphQL(t, app, `{ departments { name } }`, nil)
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `[]`, string(out.Data["departments"]))

	params := url.Values{
		"query":         {`query q { departments { name } } mutation m { createDepartment(name: "viaGET") { id } }`},
		"operationName": {"q"},
	}
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, server.GraphQLPath+"?"+params.Encode(), nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode, "a named query next to a mutation still runs")
}

func TestGraphQL_ErrorCarriesRequestID(t *testing.T) {
	app := buildTestServer(t, nil)

	body := `{"query":"mutation { enroll(id: \"5\") { id } }"}`
	req := httptest.NewRequest(http.MethodPost, server.GraphQLPath, strings.NewReader(body))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(server.HeaderRequestID, "req-123")

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, "req-123", resp.Header.Get(server.HeaderRequestID))

	out := gqlResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	require.Len(t, out.Errors, 1)
	assert.Equal(t, "req-123", out.Errors[0].Extensions["requestId"])
	assert.Equal(t, "not_found", out.Errors[0].Extensions["category"])
}

func TestGraphQL_RejectsEmptyQuery(t *testing.T) {
	app := buildTestServer(t, nil)

	req := httptest.NewRequest(http.MethodPost, server.GraphQLPath, strings.NewReader(`{"query":"  "}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)

	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestHealth(t *testing.T) {
	t.Run("up", func(t *testing.T) {
		app := buildTestServer(t, nil)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, server.HealthPath, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("down", func(t *testing.T) {
		app := buildTestServer(t, func(context.Context) error { return errors.New("database is gone") })

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, server.HealthPath, nil), -1)
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		out := map[string]string{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
		assert.Equal(t, "unavailable", out["status"])
	})
}

func TestPlayground(t *testing.T) {
	app := buildTestServer(t, nil)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, server.PlaygroundPath, nil), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	html, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(html), server.GraphQLPath)
}

func uploadRequest(t *testing.T, deptID string, rows ...[]any) *http.Request {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		values := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &values))
	}
	xlsx, err := f.WriteToBuffer()
	require.NoError(t, err)

	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)
	require.NoError(t, w.WriteField("deptId", deptID))
	part, err := w.CreateFormFile("file", "roster.xlsx")
	require.NoError(t, err)
	_, err = io.Copy(part, xlsx)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, server.ImportPath, body)
	req.Header.Set(fiber.HeaderContentType, w.FormDataContentType())
	return req
}

func TestImportStudents(t *testing.T) {
	app := buildTestServer(t, nil)
	_, out := postGraphQL(t, app, `mutation { createDepartment(name: "CS") { id } }`, nil)
	require.Empty(t, out.Errors)

	resp, err := app.Test(uploadRequest(t, "1",
		[]any{"Email", "Full Name"},
		[]any{"ada@school.test", "Ada Lovelace"},
		[]any{"alan@school.test", "Alan Turing"},
	), -1)
	require.NoError(t, err)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	result := importer.Result{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 2, result.Imported)
	assert.Zero(t, result.Skipped)

	_, out = postGraphQL(t, app, `{ department(id: "1") { students { email } } }`, nil)
	require.Empty(t, out.Errors)
	assert.JSONEq(t, `{"students":[{"email":"ada@school.test"},{"email":"alan@school.test"}]}`, string(out.Data["department"]))
}

func TestImportStudents_BadRequests(t *testing.T) {
	app := buildTestServer(t, nil)

	resp, err := app.Test(uploadRequest(t, "abc", []any{"Email", "Full Name"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, err = app.Test(uploadRequest(t, "9", []any{"Email", "Full Name"}, []any{"a@x.com", "A"}), -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode, "unknown department")
}
