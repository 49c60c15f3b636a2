package testutil

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/bytedance/sonic"
	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"taskflow/internal/tasks"
)

// RecordedRequest is a request seen by APIServer.
type RecordedRequest struct {
	Method        string
	Path          string
	Authorization string
	ContentType   string
	Body          string
}

// APIServer is an in-process implementation of the task REST API for
// end-to-end tests. Tokens are HS256 JWTs whose subject is the user email.
type APIServer struct {
	*httptest.Server

	mu       sync.Mutex
	secret   []byte
	users    map[string]string       // email -> password
	tasks    map[string][]tasks.Task // email -> tasks
	requests []RecordedRequest
	failures map[string]int    // "METHOD /path" -> status
	static   map[string]string // token -> email
}

// NewAPIServer starts a server that is closed when the test ends.
func NewAPIServer(t *testing.T) *APIServer {
	t.Helper()
	s := &APIServer{
		secret:   []byte("taskflow-test-secret"),
		users:    make(map[string]string),
		tasks:    make(map[string][]tasks.Task),
		failures: make(map[string]int),
		static:   make(map[string]string),
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(s.record, s.inject)

	e.POST("/api/auth/login", s.login)
	e.POST("/api/auth/register", s.register)

	g := e.Group("/api/tasks", s.authenticate)
	g.GET("", s.listTasks)
	g.POST("", s.createTask)
	g.PUT("/:id", s.updateTask)
	g.DELETE("/:id", s.deleteTask)

	s.Server = httptest.NewServer(e)
	t.Cleanup(s.Server.Close)
	return s
}

// AddUser registers credentials.
func (s *APIServer) AddUser(email, password string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[email] = password
}

// UseStaticToken makes login/register for email return token verbatim
// instead of a JWT, and accepts it on task routes.
func (s *APIServer) UseStaticToken(email, token string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.static[token] = email
}

// AddTask stores a task for email. Empty IDs are assigned.
func (s *APIServer) AddTask(email string, t tasks.Task) tasks.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t.ID == "" {
		t.ID = tasks.ID(uuid.NewString())
	}
	s.tasks[email] = append(s.tasks[email], t)
	return t
}

// Tasks returns a copy of email's tasks.
func (s *APIServer) Tasks(email string) []tasks.Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]tasks.Task(nil), s.tasks[email]...)
}

// Fail makes every request matching method and path answer with status.
// A status of 0 removes the failure.
func (s *APIServer) Fail(method, path string, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := method + " " + path
	if status == 0 {
		delete(s.failures, key)
		return
	}
	s.failures[key] = status
}

// Requests returns every request received so far.
func (s *APIServer) Requests() []RecordedRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]RecordedRequest(nil), s.requests...)
}

// IssueToken signs a token for email.
func (s *APIServer) IssueToken(email string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": email,
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	return token.SignedString(s.secret)
}

func (s *APIServer) record(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()
		var body []byte
		if req.Body != nil {
			body, _ = io.ReadAll(req.Body)
			req.Body = io.NopCloser(strings.NewReader(string(body)))
		}
		s.mu.Lock()
		s.requests = append(s.requests, RecordedRequest{
			Method:        req.Method,
			Path:          req.URL.Path,
			Authorization: req.Header.Get(echo.HeaderAuthorization),
			ContentType:   req.Header.Get(echo.HeaderContentType),
			Body:          string(body),
		})
		s.mu.Unlock()
		return next(c)
	}
}

func (s *APIServer) inject(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		status, ok := s.failures[c.Request().Method+" "+c.Request().URL.Path]
		s.mu.Unlock()
		if ok {
			return c.JSON(status, map[string]string{"message": http.StatusText(status)})
		}
		return next(c)
	}
}

type credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *APIServer) login(c echo.Context) error {
	var creds credentials
	if err := decodeBody(c, &creds); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid body"})
	}
	s.mu.Lock()
	pw, ok := s.users[creds.Email]
	s.mu.Unlock()
	if !ok || pw != creds.Password {
		return c.JSON(http.StatusUnauthorized, map[string]string{"message": "Invalid credentials"})
	}
	return s.respondToken(c, http.StatusOK, creds.Email)
}

func (s *APIServer) register(c echo.Context) error {
	var creds credentials
	if err := decodeBody(c, &creds); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid body"})
	}
	if creds.Email == "" || creds.Password == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Email and password required"})
	}
	s.mu.Lock()
	if _, exists := s.users[creds.Email]; exists {
		s.mu.Unlock()
		return c.JSON(http.StatusConflict, map[string]string{"message": "User already exists"})
	}
	s.users[creds.Email] = creds.Password
	s.mu.Unlock()
	return s.respondToken(c, http.StatusCreated, creds.Email)
}

func (s *APIServer) respondToken(c echo.Context, status int, email string) error {
	s.mu.Lock()
	var token string
	for tok, owner := range s.static {
		if owner == email {
			token = tok
		}
	}
	s.mu.Unlock()
	if token == "" {
		var err error
		if token, err = s.IssueToken(email); err != nil {
			return err
		}
	}
	return c.JSON(status, map[string]string{"token": token, "email": email})
}

const userKey = "user"

func (s *APIServer) authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		email, err := s.userFromHeader(c.Request().Header.Get(echo.HeaderAuthorization))
		if err != nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"message": err.Error()})
		}
		c.Set(userKey, email)
		return next(c)
	}
}

func (s *APIServer) userFromHeader(header string) (string, error) {
	raw, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || raw == "" {
		return "", errors.New("missing bearer token")
	}
	s.mu.Lock()
	email, isStatic := s.static[raw]
	s.mu.Unlock()
	if isStatic {
		return email, nil
	}
	tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !tok.Valid {
		return "", errors.New("invalid token")
	}
	claims, ok := tok.Claims.(jwt.MapClaims)
	if !ok {
		return "", errors.New("invalid claims")
	}
	sub, _ := claims["sub"].(string)
	if sub == "" {
		return "", errors.New("invalid subject")
	}
	return sub, nil
}

func (s *APIServer) listTasks(c echo.Context) error {
	email := c.Get(userKey).(string)
	s.mu.Lock()
	list := append([]tasks.Task{}, s.tasks[email]...)
	s.mu.Unlock()
	return c.JSON(http.StatusOK, list)
}

func (s *APIServer) createTask(c echo.Context) error {
	email := c.Get(userKey).(string)
	var nt tasks.NewTask
	if err := decodeBody(c, &nt); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid body"})
	}
	if strings.TrimSpace(nt.Title) == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Title is required"})
	}
	t := tasks.Task{
		ID:          tasks.ID(uuid.NewString()),
		Title:       nt.Title,
		Description: nt.Description,
		Status:      nt.Status,
		Priority:    nt.Priority,
		Created:     tasks.Timestamp(time.Now().UTC().Format(time.RFC3339)),
	}
	s.mu.Lock()
	s.tasks[email] = append(s.tasks[email], t)
	s.mu.Unlock()
	return c.JSON(http.StatusCreated, t)
}

func (s *APIServer) updateTask(c echo.Context) error {
	email := c.Get(userKey).(string)
	var patch tasks.Patch
	if err := decodeBody(c, &patch); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"message": "Invalid body"})
	}
	id := tasks.ID(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.tasks[email]
	for i := range list {
		if list[i].ID == id {
			applyPatch(&list[i], patch)
			return c.JSON(http.StatusOK, list[i])
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"message": "Task not found"})
}

func (s *APIServer) deleteTask(c echo.Context) error {
	email := c.Get(userKey).(string)
	id := tasks.ID(c.Param("id"))
	s.mu.Lock()
	defer s.mu.Unlock()
	list := s.tasks[email]
	for i := range list {
		if list[i].ID == id {
			s.tasks[email] = append(list[:i], list[i+1:]...)
			return c.JSON(http.StatusOK, map[string]string{"message": "Deleted"})
		}
	}
	return c.JSON(http.StatusNotFound, map[string]string{"message": "Task not found"})
}

func decodeBody(c echo.Context, v any) error {
	return sonic.ConfigStd.NewDecoder(c.Request().Body).Decode(v)
}
