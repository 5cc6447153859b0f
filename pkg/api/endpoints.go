package api

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"taskflow/pkg/tasks"
)

// Credentials are sent to the register and login endpoints
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginResponse struct {
	AccessToken string `json:"access_token"`
}

// Register creates an account
func (c *Client) Register(ctx context.Context, creds Credentials) error {
	return c.do(ctx, http.MethodPost, "/api/register", false, creds, nil)
}

// Login exchanges credentials for a bearer token
func (c *Client) Login(ctx context.Context, creds Credentials) (string, error) {
	var out loginResponse
	if err := c.do(ctx, http.MethodPost, "/api/login", false, creds, &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", errors.New("login response carried no access token")
	}
	return out.AccessToken, nil
}

// ListTasks returns every task of the logged-in user
func (c *Client) ListTasks(ctx context.Context) ([]tasks.Task, error) {
	var out []tasks.Task
	if err := c.do(ctx, http.MethodGet, "/api/tasks", true, nil, &out); err != nil {
		return nil, err
	}
	logIntegrity(out...)
	return out, nil
}

// CreateTask validates n against today and creates it
func (c *Client) CreateTask(ctx context.Context, n tasks.NewTask, today tasks.Date) (tasks.Task, error) {
	if err := n.Validate(today); err != nil {
		return tasks.Task{}, err
	}
	var out tasks.Task
	if err := c.do(ctx, http.MethodPost, "/api/tasks", true, n, &out); err != nil {
		return tasks.Task{}, err
	}
	logIntegrity(out)
	return out, nil
}

// EditTask changes title and description. The caller checks tasks.CanEdit
// on its cached copy first; the API enforces it again.
func (c *Client) EditTask(ctx context.Context, id tasks.ID, edit tasks.Edit) (tasks.Task, error) {
	if err := edit.Validate(); err != nil {
		return tasks.Task{}, err
	}
	var out tasks.Task
	if err := c.do(ctx, http.MethodPut, taskPath(string(id)), true, edit, &out); err != nil {
		return tasks.Task{}, err
	}
	return out, nil
}

type completedBody struct {
	Completed bool `json:"completed"`
}

// SetCompleted toggles the completed flag of a one-off task
func (c *Client) SetCompleted(ctx context.Context, id tasks.ID, completed bool) (bool, error) {
	var out completedBody
	if err := c.do(ctx, http.MethodPut, taskPath(string(id)), true, completedBody{Completed: completed}, &out); err != nil {
		return false, err
	}
	return out.Completed, nil
}

// CompleteTask records a completion event and returns the dates the API
// computed for it
func (c *Client) CompleteTask(ctx context.Context, id tasks.ID) (tasks.CompletionResult, error) {
	var out tasks.CompletionResult
	if err := c.do(ctx, http.MethodPost, taskPath(string(id))+"/complete", true, struct{}{}, &out); err != nil {
		return tasks.CompletionResult{}, err
	}
	return out, nil
}

// DeleteTask removes a task for good
func (c *Client) DeleteTask(ctx context.Context, id tasks.ID) error {
	return c.do(ctx, http.MethodDelete, taskPath(string(id)), true, nil, nil)
}

func logIntegrity(list ...tasks.Task) {
	for _, task := range list {
		for _, w := range tasks.CheckIntegrity(task) {
			zap.L().Warn("task violates data contract",
				zap.String("task_id", string(w.TaskID)),
				zap.String("field", w.Field),
				zap.String("reason", w.Reason))
		}
	}
}
