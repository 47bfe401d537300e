package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	boardController "github.com/kalyan021004/todoboard/internal/api/controllers/board"
	"github.com/kalyan021004/todoboard/internal/api/models/common"
	apiConflict "github.com/kalyan021004/todoboard/internal/api/models/conflict"
	"github.com/kalyan021004/todoboard/internal/api/models/task"
	"github.com/kalyan021004/todoboard/internal/domain/actor"
	domainBoard "github.com/kalyan021004/todoboard/internal/domain/board"
	domainConflict "github.com/kalyan021004/todoboard/internal/domain/conflict"
	domainTask "github.com/kalyan021004/todoboard/internal/domain/task"
	"github.com/kalyan021004/todoboard/internal/infra/server/binding/validation"
)

func init() {
	validation.SetUpValidators()
}

func actorHeaders() http.Header {
	h := http.Header{}
	h.Set(ActorIdHeaderKey, "abc")
	h.Set(ActorNameHeaderKey, "Abby")
	return h
}

func setupRouter() (*gin.Engine, *mockBoardController) {
	engine := gin.Default()
	mockController := mockBoardController{}
	boardsHandler := BoardsRoutesHandler{Controller: &mockController}
	boardsHandler.RegisterRoutes(engine)
	conflictsHandler := ConflictsRoutesHandler{Controller: &mockController}
	conflictsHandler.RegisterRoutes(engine)

	return engine, &mockController
}

func performRequest(r http.Handler, method, url string, body interface{}, header http.Header) *httptest.ResponseRecorder {
	var bodyToSend io.Reader
	if body != nil {
		asBytes, _ := json.Marshal(body)
		bodyToSend = bytes.NewBuffer(asBytes)
	}
	req, _ := http.NewRequest(method, url, bodyToSend)
	if header != nil {
		req.Header = header
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestTaskCreate_Ok(t *testing.T) {
	router, mockController := setupRouter()
	newTask := task.NewTask{
		Title: "write the launch notes",
	}
	resp := performRequest(router, http.MethodPost, "/api/boards/b/tasks", newTask, actorHeaders())
	assert.EqualValues(t, http.StatusCreated, resp.Code)
	assert.EqualValues(t, 1, mockController.createCalled)
	var respTask task.Task
	if err := json.Unmarshal(resp.Body.Bytes(), &respTask); err != nil {
		t.Error(err)
	} else {
		assert.EqualValues(t, "mock", respTask.ID)
	}
}

func TestTaskCreate_NoActorHeader(t *testing.T) {
	router, mockController := setupRouter()
	newTask := task.NewTask{
		Title: "write the launch notes",
	}
	resp := performRequest(router, http.MethodPost, "/api/boards/b/tasks", newTask, nil)
	assert.EqualValues(t, 0, mockController.createCalled)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTaskCreate_InvalidBoardName(t *testing.T) {
	router, mockController := setupRouter()
	newTask := task.NewTask{
		Title: "write the launch notes",
	}
	resp := performRequest(router, http.MethodPost, "/api/boards/+b/tasks", newTask, actorHeaders())
	assert.EqualValues(t, 0, mockController.createCalled)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTaskCreate_InvalidStatus(t *testing.T) {
	router, mockController := setupRouter()
	bogus := "sideways"
	newTask := task.NewTask{
		Title:  "write the launch notes",
		Status: &bogus,
	}
	resp := performRequest(router, http.MethodPost, "/api/boards/b/tasks", newTask, actorHeaders())
	assert.EqualValues(t, 0, mockController.createCalled)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTaskList_Ok(t *testing.T) {
	router, mockController := setupRouter()
	resp := performRequest(router, http.MethodGet, "/api/boards/b/tasks", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, mockController.listCalled)
	var respTasks []task.Task
	if err := json.Unmarshal(resp.Body.Bytes(), &respTasks); err != nil {
		t.Error(err, resp)
	} else {
		assert.Len(t, respTasks, 1)
	}
}

func TestTaskGet_Ok(t *testing.T) {
	router, mockController := setupRouter()
	resp := performRequest(router, http.MethodGet, "/api/boards/b/tasks/1", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, mockController.getCalled)
}

func TestTaskGet_NotFound(t *testing.T) {
	router, mockController := setupRouter()
	apiErr := common.ApiError{
		StatusCode: http.StatusNotFound,
		Body: common.Body{
			Code: common.CodeTaskNotFound,
		},
	}
	mockController.getOverride = func(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id) (*task.Task, *common.ApiError) {
		return nil, &apiErr
	}
	resp := performRequest(router, http.MethodGet, "/api/boards/b/tasks/1", nil, nil)
	assert.Equal(t, apiErr.StatusCode, resp.Code)
	assert.EqualValues(t, 1, mockController.getCalled)
}

func TestTaskUpdate_Ok(t *testing.T) {
	router, mockController := setupRouter()
	version := uint64(4)
	newTitle := "better title"
	update := task.TaskUpdate{Version: &version, Title: &newTitle}
	resp := performRequest(router, http.MethodPut, "/api/boards/b/tasks/1", update, actorHeaders())
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, mockController.updateCalled)
}

func TestTaskUpdate_Conflict(t *testing.T) {
	router, mockController := setupRouter()
	conflictBody := apiConflict.Response{
		Success: false,
		Code:    "VERSION_CONFLICT",
		Conflict: apiConflict.Conflict{
			ID:                 "conflict-1",
			ResolutionEndpoint: "/api/boards/b/tasks/1/resolve-conflict",
		},
	}
	mockController.updateOverride = func(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, update *task.TaskUpdate, by actor.Actor) (*boardController.WriteResult, *common.ApiError) {
		return &boardController.WriteResult{Conflict: &conflictBody}, nil
	}
	version := uint64(3)
	newTitle := "better title"
	update := task.TaskUpdate{Version: &version, Title: &newTitle}
	resp := performRequest(router, http.MethodPut, "/api/boards/b/tasks/1", update, actorHeaders())
	assert.Equal(t, http.StatusConflict, resp.Code)
	var respBody apiConflict.Response
	if err := json.Unmarshal(resp.Body.Bytes(), &respBody); err != nil {
		t.Error(err)
	} else {
		assert.Equal(t, "VERSION_CONFLICT", respBody.Code)
		assert.False(t, respBody.Success)
		assert.EqualValues(t, "conflict-1", respBody.Conflict.ID)
	}
}

func TestTaskUpdate_NoActorHeader(t *testing.T) {
	router, mockController := setupRouter()
	version := uint64(4)
	update := task.TaskUpdate{Version: &version}
	resp := performRequest(router, http.MethodPut, "/api/boards/b/tasks/1", update, nil)
	assert.EqualValues(t, 0, mockController.updateCalled)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTaskReposition_Ok(t *testing.T) {
	router, mockController := setupRouter()
	version := uint64(4)
	position := 250.0
	reposition := task.TaskReposition{Version: &version, Position: &position}
	resp := performRequest(router, http.MethodPut, "/api/boards/b/tasks/1/position", reposition, actorHeaders())
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, mockController.repositionCalled)
}

func TestTaskReposition_MissingPosition(t *testing.T) {
	router, mockController := setupRouter()
	version := uint64(4)
	reposition := task.TaskReposition{Version: &version}
	resp := performRequest(router, http.MethodPut, "/api/boards/b/tasks/1/position", reposition, actorHeaders())
	assert.EqualValues(t, 0, mockController.repositionCalled)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestTaskDelete_Ok(t *testing.T) {
	router, mockController := setupRouter()
	version := uint64(4)
	taskDelete := task.TaskDelete{Version: &version}
	resp := performRequest(router, http.MethodDelete, "/api/boards/b/tasks/1", taskDelete, actorHeaders())
	assert.Equal(t, http.StatusNoContent, resp.Code)
	assert.EqualValues(t, 1, mockController.deleteCalled)
}

func TestResolveConflict_Ok(t *testing.T) {
	router, mockController := setupRouter()
	request := apiConflict.ResolutionRequest{
		ConflictId: "conflict-1",
		Action:     "overwrite",
	}
	resp := performRequest(router, http.MethodPost, "/api/boards/b/tasks/1/resolve-conflict", request, actorHeaders())
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, mockController.resolveCalled)
	var respBody apiConflict.ResolutionResponse
	if err := json.Unmarshal(resp.Body.Bytes(), &respBody); err != nil {
		t.Error(err)
	} else {
		assert.True(t, respBody.Success)
	}
}

func TestResolveConflict_InvalidAction(t *testing.T) {
	router, mockController := setupRouter()
	request := apiConflict.ResolutionRequest{
		ConflictId: "conflict-1",
		Action:     "shrug",
	}
	resp := performRequest(router, http.MethodPost, "/api/boards/b/tasks/1/resolve-conflict", request, actorHeaders())
	assert.EqualValues(t, 0, mockController.resolveCalled)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestResolveConflict_MissingConflictId(t *testing.T) {
	router, mockController := setupRouter()
	request := apiConflict.ResolutionRequest{
		Action: "overwrite",
	}
	resp := performRequest(router, http.MethodPost, "/api/boards/b/tasks/1/resolve-conflict", request, actorHeaders())
	assert.EqualValues(t, 0, mockController.resolveCalled)
	assert.Equal(t, http.StatusBadRequest, resp.Code)
}

func TestConflictGet_Ok(t *testing.T) {
	router, mockController := setupRouter()
	resp := performRequest(router, http.MethodGet, "/api/conflicts/conflict-1", nil, nil)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.EqualValues(t, 1, mockController.getConflictCalled)
}

func TestConflictGet_NotFound(t *testing.T) {
	router, mockController := setupRouter()
	apiErr := common.ApiError{
		StatusCode: http.StatusNotFound,
		Body: common.Body{
			Code: common.CodeConflictNotFound,
		},
	}
	mockController.getConflictOverride = func(ctx context.Context, id domainConflict.Id) (*apiConflict.Record, *common.ApiError) {
		return nil, &apiErr
	}
	resp := performRequest(router, http.MethodGet, "/api/conflicts/nope", nil, nil)
	assert.Equal(t, apiErr.StatusCode, resp.Code)
}

var mockApiTask = task.Task{
	ID:     "mock",
	Board:  "b",
	Title:  "A",
	Status: "todo",
}

type mockBoardController struct {
	createCalled        uint
	createOverride      func(ctx context.Context, boardName domainBoard.Name, newTask *task.NewTask, by actor.Actor) (*task.Task, *common.ApiError)
	getCalled           uint
	getOverride         func(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id) (*task.Task, *common.ApiError)
	listCalled          uint
	listOverride        func(ctx context.Context, boardName domainBoard.Name) ([]task.Task, *common.ApiError)
	updateCalled        uint
	updateOverride      func(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, update *task.TaskUpdate, by actor.Actor) (*boardController.WriteResult, *common.ApiError)
	repositionCalled    uint
	repositionOverride  func(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, reposition *task.TaskReposition, by actor.Actor) (*boardController.WriteResult, *common.ApiError)
	deleteCalled        uint
	deleteOverride      func(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, taskDelete *task.TaskDelete, by actor.Actor) (*boardController.WriteResult, *common.ApiError)
	getConflictCalled   uint
	getConflictOverride func(ctx context.Context, id domainConflict.Id) (*apiConflict.Record, *common.ApiError)
	resolveCalled       uint
	resolveOverride     func(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, request *apiConflict.ResolutionRequest, by actor.Actor) (*apiConflict.ResolutionResponse, *common.ApiError)
}

func (m *mockBoardController) CreateTask(ctx context.Context, boardName domainBoard.Name, newTask *task.NewTask, by actor.Actor) (*task.Task, *common.ApiError) {
	m.createCalled++
	if m.createOverride != nil {
		return m.createOverride(ctx, boardName, newTask, by)
	}
	copied := mockApiTask
	return &copied, nil
}

func (m *mockBoardController) GetTask(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id) (*task.Task, *common.ApiError) {
	m.getCalled++
	if m.getOverride != nil {
		return m.getOverride(ctx, boardName, taskId)
	}
	copied := mockApiTask
	return &copied, nil
}

func (m *mockBoardController) ListTasks(ctx context.Context, boardName domainBoard.Name) ([]task.Task, *common.ApiError) {
	m.listCalled++
	if m.listOverride != nil {
		return m.listOverride(ctx, boardName)
	}
	return []task.Task{mockApiTask}, nil
}

func (m *mockBoardController) UpdateTask(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, update *task.TaskUpdate, by actor.Actor) (*boardController.WriteResult, *common.ApiError) {
	m.updateCalled++
	if m.updateOverride != nil {
		return m.updateOverride(ctx, boardName, taskId, update, by)
	}
	copied := mockApiTask
	return &boardController.WriteResult{Task: &copied}, nil
}

func (m *mockBoardController) RepositionTask(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, reposition *task.TaskReposition, by actor.Actor) (*boardController.WriteResult, *common.ApiError) {
	m.repositionCalled++
	if m.repositionOverride != nil {
		return m.repositionOverride(ctx, boardName, taskId, reposition, by)
	}
	copied := mockApiTask
	return &boardController.WriteResult{Task: &copied}, nil
}

func (m *mockBoardController) DeleteTask(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, taskDelete *task.TaskDelete, by actor.Actor) (*boardController.WriteResult, *common.ApiError) {
	m.deleteCalled++
	if m.deleteOverride != nil {
		return m.deleteOverride(ctx, boardName, taskId, taskDelete, by)
	}
	return &boardController.WriteResult{}, nil
}

func (m *mockBoardController) GetConflict(ctx context.Context, id domainConflict.Id) (*apiConflict.Record, *common.ApiError) {
	m.getConflictCalled++
	if m.getConflictOverride != nil {
		return m.getConflictOverride(ctx, id)
	}
	return &apiConflict.Record{ID: "conflict-1", Status: "pending"}, nil
}

func (m *mockBoardController) ResolveConflict(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, request *apiConflict.ResolutionRequest, by actor.Actor) (*apiConflict.ResolutionResponse, *common.ApiError) {
	m.resolveCalled++
	if m.resolveOverride != nil {
		return m.resolveOverride(ctx, boardName, taskId, request, by)
	}
	return &apiConflict.ResolutionResponse{Success: true, Conflict: apiConflict.Record{ID: request.ConflictId, Status: "resolved"}}, nil
}
