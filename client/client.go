// client is a small Go client for the board server: CRUD on tasks with the
// version gate surfaced as a typed conflict error, conflict resolution, and
// a websocket subscription for conflict events.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io/ioutil"
	"net/http"
	"net/url"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/kalyan021004/todoboard/internal/api/models/common"
	apiConflict "github.com/kalyan021004/todoboard/internal/api/models/conflict"
	"github.com/kalyan021004/todoboard/internal/api/models/task"
	"github.com/kalyan021004/todoboard/internal/domain/actor"
	"github.com/kalyan021004/todoboard/internal/domain/board"
	domainConflict "github.com/kalyan021004/todoboard/internal/domain/conflict"
	domainTask "github.com/kalyan021004/todoboard/internal/domain/task"
	"github.com/kalyan021004/todoboard/internal/infra/server/routing"
)

// ApiError is a non-2xx response other than a version conflict.
type ApiError struct {
	StatusCode int
	Body       common.Body
}

func (e *ApiError) Error() string {
	return fmt.Sprintf("server returned [%d]: %s", e.StatusCode, e.Body.Message)
}

// VersionConflictError is the structured 409 a gated write comes back with
// when the claimed version is stale. The embedded Response carries the
// conflict id and the resolution endpoint.
type VersionConflictError struct {
	Response apiConflict.Response
}

func (e *VersionConflictError) Error() string {
	return fmt.Sprintf("version conflict [%s] on task [%s], resolve at [%s]",
		e.Response.Conflict.ID, e.Response.Conflict.Task.ID, e.Response.Conflict.ResolutionEndpoint)
}

// Todoboard is a client bound to one server and one acting user.
type Todoboard struct {
	baseUrl    string
	by         actor.Actor
	httpClient *http.Client
}

func New(baseUrl string, by actor.Actor, httpClient *http.Client) *Todoboard {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Todoboard{
		baseUrl:    strings.TrimRight(baseUrl, "/"),
		by:         by,
		httpClient: httpClient,
	}
}

func (c *Todoboard) CreateTask(ctx context.Context, boardName board.Name, newTask *task.NewTask) (*task.Task, error) {
	var created task.Task
	if err := c.do(ctx, http.MethodPost, c.tasksPath(boardName), newTask, &created); err != nil {
		return nil, err
	}
	return &created, nil
}

func (c *Todoboard) GetTask(ctx context.Context, boardName board.Name, taskId domainTask.Id) (*task.Task, error) {
	var got task.Task
	if err := c.do(ctx, http.MethodGet, c.taskPath(boardName, taskId), nil, &got); err != nil {
		return nil, err
	}
	return &got, nil
}

func (c *Todoboard) ListTasks(ctx context.Context, boardName board.Name) ([]task.Task, error) {
	var listed []task.Task
	if err := c.do(ctx, http.MethodGet, c.tasksPath(boardName), nil, &listed); err != nil {
		return nil, err
	}
	return listed, nil
}

// UpdateTask runs a gated update. A stale claimed version comes back as a
// *VersionConflictError.
func (c *Todoboard) UpdateTask(ctx context.Context, boardName board.Name, taskId domainTask.Id, update *task.TaskUpdate) (*task.Task, error) {
	var updated task.Task
	if err := c.do(ctx, http.MethodPut, c.taskPath(boardName, taskId), update, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

func (c *Todoboard) RepositionTask(ctx context.Context, boardName board.Name, taskId domainTask.Id, reposition *task.TaskReposition) (*task.Task, error) {
	var moved task.Task
	if err := c.do(ctx, http.MethodPut, c.taskPath(boardName, taskId)+"/position", reposition, &moved); err != nil {
		return nil, err
	}
	return &moved, nil
}

func (c *Todoboard) DeleteTask(ctx context.Context, boardName board.Name, taskId domainTask.Id, taskDelete *task.TaskDelete) error {
	return c.do(ctx, http.MethodDelete, c.taskPath(boardName, taskId), taskDelete, nil)
}

func (c *Todoboard) GetConflict(ctx context.Context, conflictId domainConflict.Id) (*apiConflict.Record, error) {
	var record apiConflict.Record
	if err := c.do(ctx, http.MethodGet, "/api/conflicts/"+url.PathEscape(string(conflictId)), nil, &record); err != nil {
		return nil, err
	}
	return &record, nil
}

func (c *Todoboard) ResolveConflict(ctx context.Context, boardName board.Name, taskId domainTask.Id, request *apiConflict.ResolutionRequest) (*apiConflict.ResolutionResponse, error) {
	var response apiConflict.ResolutionResponse
	if err := c.do(ctx, http.MethodPost, c.taskPath(boardName, taskId)+"/resolve-conflict", request, &response); err != nil {
		return nil, err
	}
	return &response, nil
}

// EventStream is an open websocket subscription for conflict events.
type EventStream struct {
	conn *websocket.Conn
}

// Next blocks until the next event arrives or the stream closes.
func (s *EventStream) Next() (*domainConflict.Event, error) {
	var event domainConflict.Event
	if err := s.conn.ReadJSON(&event); err != nil {
		return nil, err
	}
	return &event, nil
}

func (s *EventStream) Close() error {
	return s.conn.Close()
}

// SubscribeEvents opens the websocket stream of conflict events addressed
// to this client's actor.
func (c *Todoboard) SubscribeEvents(ctx context.Context) (*EventStream, error) {
	wsUrl := strings.Replace(c.baseUrl, "http", "ws", 1) + "/api/events"
	header := http.Header{}
	c.setActorHeaders(header)
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, wsUrl, header)
	if err != nil {
		if resp != nil {
			return nil, &ApiError{StatusCode: resp.StatusCode}
		}
		return nil, err
	}
	return &EventStream{conn: conn}, nil
}

func (c *Todoboard) tasksPath(boardName board.Name) string {
	return "/api/boards/" + url.PathEscape(string(boardName)) + "/tasks"
}

func (c *Todoboard) taskPath(boardName board.Name, taskId domainTask.Id) string {
	return c.tasksPath(boardName) + "/" + url.PathEscape(string(taskId))
}

func (c *Todoboard) setActorHeaders(header http.Header) {
	header.Set(routing.ActorIdHeaderKey, string(c.by.ID))
	header.Set(routing.ActorNameHeaderKey, string(c.by.Name))
}

func (c *Todoboard) do(ctx context.Context, method string, path string, body interface{}, out interface{}) error {
	var bodyReader *bytes.Reader
	if body != nil {
		asBytes, err := json.Marshal(body)
		if err != nil {
			return err
		}
		bodyReader = bytes.NewReader(asBytes)
	} else {
		bodyReader = bytes.NewReader(nil)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseUrl+path, bodyReader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	c.setActorHeaders(req.Header)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if 200 <= resp.StatusCode && resp.StatusCode <= 299 {
		if out == nil {
			return nil
		}
		return json.NewDecoder(resp.Body).Decode(out)
	}

	raw, err := ioutil.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode == http.StatusConflict {
		var conflictResp apiConflict.Response
		if err := json.Unmarshal(raw, &conflictResp); err == nil && conflictResp.Code == "VERSION_CONFLICT" {
			return &VersionConflictError{Response: conflictResp}
		}
	}

	var errBody common.Body
	_ = json.Unmarshal(raw, &errBody)
	return &ApiError{StatusCode: resp.StatusCode, Body: errBody}
}
