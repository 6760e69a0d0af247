package server

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/99designs/gqlgen/graphql/playground"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-router"
	"github.com/graph-gophers/graphql-go"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"

	school "github.com/goliatone/go-school"
	"github.com/goliatone/go-school/internal/importer"
)

const (
	GraphQLPath    = "/graphql"
	PlaygroundPath = "/playground"
	HealthPath     = "/healthz"
	ImportPath     = "/import/students"
)

// Config controls the fiber application.
type Config struct {
	AppName      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Playground   bool
	HealthWait   time.Duration
}

// Deps are the collaborators the routes call into.
type Deps struct {
	Schema   *graphql.Schema
	Importer *importer.Importer
	Ping     func(ctx context.Context) error
	Logger   school.Logger
}

type Server struct {
	app    router.Server[*fiber.App]
	deps   Deps
	cfg    Config
	logger school.Logger
}

// New wires every route onto a go-router fiber adapter.
func New(cfg Config, deps Deps) *Server {
	if cfg.AppName == "" {
		cfg.AppName = "go-school"
	}
	if cfg.HealthWait <= 0 {
		cfg.HealthWait = 2 * time.Second
	}

	logger := deps.Logger
	if logger == nil {
		logger = school.NopLogger()
	}

	app := router.NewFiberAdapter(func(_ *fiber.App) *fiber.App {
		return fiber.New(fiber.Config{
			AppName:               cfg.AppName,
			ReadTimeout:           cfg.ReadTimeout,
			WriteTimeout:          cfg.WriteTimeout,
			DisableStartupMessage: true,
		})
	})

	// the adapter router must exist before we reach for the wrapped app
	_ = app.Router()

	s := &Server{
		app:    app,
		deps:   deps,
		cfg:    cfg,
		logger: logger,
	}
	s.routes(app.WrappedRouter())

	return s
}

func (s *Server) routes(app *fiber.App) {
	app.Use(requestContext(s.logger))

	app.Post(GraphQLPath, s.graphql)
	app.Get(GraphQLPath, s.graphql)
	app.Get(HealthPath, s.health)

	if s.deps.Importer != nil {
		app.Post(ImportPath, s.importStudents)
	}

	if s.cfg.Playground {
		app.Get(PlaygroundPath, adaptor.HTTPHandler(playground.Handler("GraphQL playground", GraphQLPath)))
		app.Get("/", func(c *fiber.Ctx) error {
			return c.Redirect(PlaygroundPath, fiber.StatusTemporaryRedirect)
		})
	}
}

// App exposes the fiber application, mostly for tests.
func (s *Server) App() *fiber.App {
	return s.app.WrappedRouter()
}

func (s *Server) Serve(addr string) error {
	s.logger.Info("GraphQL endpoint ready at http://localhost%s%s", addr, GraphQLPath)
	if s.cfg.Playground {
		s.logger.Info("Playground available at http://localhost%s%s", addr, PlaygroundPath)
	}
	return s.app.Serve(addr)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.app.Shutdown(ctx)
}

type graphqlParams struct {
	Query         string         `json:"query"`
	OperationName string         `json:"operationName"`
	Variables     map[string]any `json:"variables"`
}

func (s *Server) graphql(c *fiber.Ctx) error {
	params := graphqlParams{}

	switch c.Method() {
	case fiber.MethodGet:
		params.Query = c.Query("query")
		params.OperationName = c.Query("operationName")
		if raw := c.Query("variables"); raw != "" {
			if err := json.Unmarshal([]byte(raw), &params.Variables); err != nil {
				return writeError(c, badRequest("variables must be a JSON object", err))
			}
		}
	default:
		if err := json.Unmarshal(c.Body(), &params); err != nil {
			return writeError(c, badRequest("request body must be a GraphQL JSON payload", err))
		}
	}

	if strings.TrimSpace(params.Query) == "" {
		return writeError(c, badRequest("query is required", nil))
	}

	if c.Method() == fiber.MethodGet && !readOnly(params.Query, params.OperationName) {
		c.Set(fiber.HeaderAllow, fiber.MethodPost)
		return writeError(c, methodNotAllowed())
	}

	resp := s.deps.Schema.Exec(c.UserContext(), params.Query, params.OperationName, params.Variables)
	return c.JSON(resp)
}

func (s *Server) health(c *fiber.Ctx) error {
	if s.deps.Ping == nil {
		return c.JSON(fiber.Map{"status": "ok"})
	}

	ctx, cancel := context.WithTimeout(c.UserContext(), s.cfg.HealthWait)
	defer cancel()

	if err := s.deps.Ping(ctx); err != nil {
		school.LoggerFromContext(c.UserContext(), s.logger).Error("health check failed: %v", err)
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unavailable",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) importStudents(c *fiber.Ctx) error {
	deptID, err := strconv.ParseInt(strings.TrimSpace(c.FormValue("deptId")), 10, 64)
	if err != nil || deptID <= 0 {
		return writeError(c, badRequest("deptId must be a positive integer", err))
	}

	header, err := c.FormFile("file")
	if err != nil {
		return writeError(c, badRequest("file is required", err))
	}

	file, err := header.Open()
	if err != nil {
		return writeError(c, badRequest("failed to read upload", err))
	}
	defer file.Close()

	result, err := s.deps.Importer.ImportStudents(c.UserContext(), file, deptID)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(result)
}

// readOnly reports whether the operation a GET request would run is a query.
// Documents that do not parse are left to the executor to report.
func readOnly(query, operationName string) bool {
	doc, err := parser.ParseQuery(&ast.Source{Input: query})
	if err != nil {
		return true
	}
	if op := doc.Operations.ForName(operationName); op != nil {
		return op.Operation == ast.Query
	}
	for _, op := range doc.Operations {
		if op.Operation != ast.Query {
			return false
		}
	}
	return true
}

func methodNotAllowed() *goerrors.Error {
	return goerrors.New("only queries can be sent with GET, use POST for mutations", goerrors.CategoryBadInput).
		WithCode(http.StatusMethodNotAllowed).
		WithTextCode("METHOD_NOT_ALLOWED")
}

func badRequest(message string, source error) *goerrors.Error {
	err := goerrors.New(message, goerrors.CategoryBadInput).
		WithCode(http.StatusBadRequest).
		WithTextCode("BAD_REQUEST")
	if source != nil {
		err.Source = source
	}
	return err
}

// writeError renders err as a go-errors problem response.
func writeError(c *fiber.Ctx, err error) error {
	mapped := goerrors.MapToError(err, goerrors.DefaultErrorMappers())

	status := mapped.Code
	if status <= 0 {
		status = http.StatusInternalServerError
		mapped.WithCode(status)
	}
	if strings.TrimSpace(mapped.TextCode) == "" {
		mapped.WithTextCode(goerrors.HTTPStatusToTextCode(status))
	}
	if id := school.RequestIDFromContext(c.UserContext()); id != "" {
		mapped.WithRequestID(id)
	}

	return c.Status(status).JSON(mapped.ToErrorResponse(false, nil), "application/problem+json")
}
