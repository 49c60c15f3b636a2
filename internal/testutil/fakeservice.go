// Package testutil provides testing utilities.
package testutil

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"

	"taskflow/internal/api"
	"taskflow/internal/service"
	"taskflow/internal/tasks"
)

// Call names recorded by FakeService.
const (
	CallLogin    = "Login"
	CallRegister = "Register"
	CallList     = "ListTasks"
	CallCreate   = "CreateTask"
	CallUpdate   = "UpdateTask"
	CallDelete   = "DeleteTask"
)

// Call is one recorded FakeService invocation.
type Call struct {
	Name  string
	Token string
	ID    tasks.ID
	New   tasks.NewTask
	Patch tasks.Patch
}

// FakeService is an in-memory implementation of service.Service for testing.
// Tokens other than Token are rejected with an HTTP 401 error.
type FakeService struct {
	mu     sync.Mutex
	tasks  []tasks.Task
	users  map[string]string // email -> password
	nextID int
	calls  []Call

	// Token is the only bearer credential accepted by task calls and the
	// token returned by Login/Register.
	Token string

	// Error injection for testing
	LoginErr    error
	RegisterErr error
	ListErr     error
	CreateErr   error
	UpdateErr   error
	DeleteErr   error
}

// NewFakeService creates a new FakeService accepting token.
func NewFakeService(token string) *FakeService {
	return &FakeService{
		Token: token,
		users: make(map[string]string),
	}
}

// AddUser registers credentials accepted by Login.
func (f *FakeService) AddUser(email, password string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[email] = password
}

// AddTask appends a task to the collection.
func (f *FakeService) AddTask(t tasks.Task) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.tasks = append(f.tasks, t)
}

// Tasks returns a copy of the collection.
func (f *FakeService) Tasks() []tasks.Task {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tasks.Task(nil), f.tasks...)
}

// Calls returns the recorded invocations in order.
func (f *FakeService) Calls() []Call {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Call(nil), f.calls...)
}

// CallNames returns the recorded invocation names in order.
func (f *FakeService) CallNames() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, len(f.calls))
	for i, c := range f.calls {
		names[i] = c.Name
	}
	return names
}

// ResetCalls forgets recorded invocations.
func (f *FakeService) ResetCalls() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = nil
}

func (f *FakeService) record(c Call) {
	f.calls = append(f.calls, c)
}

func (f *FakeService) checkToken(token string) error {
	if token == "" || token != f.Token {
		return Unauthorized()
	}
	return nil
}

// Login implements service.Service.
func (f *FakeService) Login(ctx context.Context, creds service.Credentials) (service.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: CallLogin})

	if f.LoginErr != nil {
		return service.AuthResult{}, f.LoginErr
	}
	if pw, ok := f.users[creds.Email]; !ok || pw != creds.Password {
		return service.AuthResult{}, HTTPError(http.StatusUnauthorized, "Invalid credentials")
	}
	return service.AuthResult{Token: f.Token, Email: creds.Email}, nil
}

// Register implements service.Service.
func (f *FakeService) Register(ctx context.Context, creds service.Credentials) (service.AuthResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: CallRegister})

	if f.RegisterErr != nil {
		return service.AuthResult{}, f.RegisterErr
	}
	if _, ok := f.users[creds.Email]; ok {
		return service.AuthResult{}, HTTPError(http.StatusConflict, "User already exists")
	}
	f.users[creds.Email] = creds.Password
	return service.AuthResult{Token: f.Token, Email: creds.Email}, nil
}

// ListTasks implements service.Service.
func (f *FakeService) ListTasks(ctx context.Context, token string) ([]tasks.Task, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: CallList, Token: token})

	if err := f.checkToken(token); err != nil {
		return nil, err
	}
	if f.ListErr != nil {
		return nil, f.ListErr
	}
	return append([]tasks.Task{}, f.tasks...), nil
}

// CreateTask implements service.Service.
func (f *FakeService) CreateTask(ctx context.Context, token string, nt tasks.NewTask) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: CallCreate, Token: token, New: nt})

	if err := f.checkToken(token); err != nil {
		return err
	}
	if f.CreateErr != nil {
		return f.CreateErr
	}
	f.nextID++
	f.tasks = append(f.tasks, tasks.Task{
		ID:          tasks.ID("new-" + strconv.Itoa(f.nextID)),
		Title:       nt.Title,
		Description: nt.Description,
		Status:      nt.Status,
		Priority:    nt.Priority,
		Created:     "2025-01-01T00:00:00Z",
	})
	return nil
}

// UpdateTask implements service.Service.
func (f *FakeService) UpdateTask(ctx context.Context, token string, id tasks.ID, patch tasks.Patch) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: CallUpdate, Token: token, ID: id, Patch: patch})

	if err := f.checkToken(token); err != nil {
		return err
	}
	if f.UpdateErr != nil {
		return f.UpdateErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			applyPatch(&f.tasks[i], patch)
			return nil
		}
	}
	return HTTPError(http.StatusNotFound, fmt.Sprintf("Task %s not found", id))
}

// DeleteTask implements service.Service.
func (f *FakeService) DeleteTask(ctx context.Context, token string, id tasks.ID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.record(Call{Name: CallDelete, Token: token, ID: id})

	if err := f.checkToken(token); err != nil {
		return err
	}
	if f.DeleteErr != nil {
		return f.DeleteErr
	}
	for i := range f.tasks {
		if f.tasks[i].ID == id {
			f.tasks = append(f.tasks[:i], f.tasks[i+1:]...)
			return nil
		}
	}
	return HTTPError(http.StatusNotFound, fmt.Sprintf("Task %s not found", id))
}

func applyPatch(t *tasks.Task, p tasks.Patch) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
}

// HTTPError builds the error the API client returns for a non-2xx status.
func HTTPError(status int, message string) *api.HTTPError {
	body := map[string]any{}
	if message != "" {
		body["message"] = message
	}
	return &api.HTTPError{Status: status, Body: body}
}

// Unauthorized is the error for a rejected bearer token.
func Unauthorized() *api.HTTPError {
	return HTTPError(http.StatusUnauthorized, "Unauthorized")
}
