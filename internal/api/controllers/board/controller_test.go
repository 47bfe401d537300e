package board

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/kalyan021004/todoboard/internal/api/models/common"
	apiConflict "github.com/kalyan021004/todoboard/internal/api/models/conflict"
	"github.com/kalyan021004/todoboard/internal/domain/actor"
	domainBoard "github.com/kalyan021004/todoboard/internal/domain/board"
	domainConflict "github.com/kalyan021004/todoboard/internal/domain/conflict"
	domainMetadata "github.com/kalyan021004/todoboard/internal/domain/metadata"
	domainTask "github.com/kalyan021004/todoboard/internal/domain/task"

	"github.com/kalyan021004/todoboard/internal/api/models/task"
)

var ctx = context.Background()

var testBoard = domainBoard.Name("b")

var carol = actor.Actor{ID: "carol-id", Name: "Carol"}
var dave = actor.Actor{ID: "dave-id", Name: "Dave"}

var controllerNow = time.Date(2020, 3, 14, 15, 9, 26, 0, time.UTC)

func storedTask() domainTask.Task {
	return domainTask.Task{
		ID:    "mock",
		Board: testBoard,
		Fields: domainTask.Fields{
			Title:    "A",
			Status:   domainTask.TODO,
			Priority: domainTask.NORMAL,
			Position: 100,
		},
		ModifiedBy: &carol,
		Metadata: domainMetadata.Metadata{
			CreatedAt:  domainMetadata.CreatedAt(controllerNow),
			ModifiedAt: domainMetadata.ModifiedAt(controllerNow),
			Version:    4,
			StoreTerm:  domainMetadata.StoreTerm{SeqNum: 7, PrimaryTerm: 1},
		},
	}
}

type testHarness struct {
	tasks     *domainTask.MockTasksService
	conflicts *domainConflict.MockConflictsService
	fanout    *domainConflict.MockFanout
}

func buildController(h *testHarness) Controller {
	gate := domainConflict.NewGate(h.tasks, h.conflicts, domainConflict.NewNotifier(h.fanout))
	gate.SetUTCGetter(func() time.Time { return controllerNow })
	resolver := domainConflict.NewResolver(h.tasks, h.conflicts, 1)
	resolver.SetUTCGetter(func() time.Time { return controllerNow })
	return New(h.tasks, h.conflicts, gate, resolver)
}

func newHarness() *testHarness {
	return &testHarness{
		tasks:     &domainTask.MockTasksService{},
		conflicts: &domainConflict.MockConflictsService{},
		fanout:    &domainConflict.MockFanout{},
	}
}

func TestNewController(t *testing.T) {
	h := newHarness()
	assert.NotPanics(t, func() { buildController(h) })
}

func Test_impl_CreateTask(t *testing.T) {
	h := newHarness()
	controller := buildController(h)
	created, apiErr := controller.CreateTask(ctx, testBoard, &task.NewTask{Title: "write docs"}, carol)
	assert.Nil(t, apiErr)
	assert.EqualValues(t, 1, h.tasks.CreateCalled)
	assert.NotNil(t, created)
}

func Test_impl_CreateTask_invalidStatus(t *testing.T) {
	h := newHarness()
	controller := buildController(h)
	bogus := "sideways"
	_, apiErr := controller.CreateTask(ctx, testBoard, &task.NewTask{Title: "write docs", Status: &bogus}, carol)
	assert.NotNil(t, apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, common.CodeInvalidBody, apiErr.Body.Code)
	assert.EqualValues(t, 0, h.tasks.CreateCalled)
}

func Test_impl_GetTask(t *testing.T) {
	h := newHarness()
	stored := storedTask()
	h.tasks.GetOverride = func() (*domainTask.Task, error) {
		return &stored, nil
	}
	controller := buildController(h)
	got, apiErr := controller.GetTask(ctx, testBoard, "mock")
	assert.Nil(t, apiErr)
	assert.EqualValues(t, "mock", got.ID)
	assert.EqualValues(t, 4, got.Metadata.Version)
}

func Test_impl_GetTask_notFound(t *testing.T) {
	h := newHarness()
	h.tasks.GetOverride = func() (*domainTask.Task, error) {
		return nil, domainTask.NotFound{ID: "nope", BoardName: testBoard}
	}
	controller := buildController(h)
	_, apiErr := controller.GetTask(ctx, testBoard, "nope")
	assert.NotNil(t, apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, common.CodeTaskNotFound, apiErr.Body.Code)
}

func Test_impl_ListTasks(t *testing.T) {
	h := newHarness()
	controller := buildController(h)
	listed, apiErr := controller.ListTasks(ctx, testBoard)
	assert.Nil(t, apiErr)
	assert.Len(t, listed, 1)
}

func Test_impl_UpdateTask_versionRequired(t *testing.T) {
	h := newHarness()
	controller := buildController(h)
	newTitle := "B"
	_, apiErr := controller.UpdateTask(ctx, testBoard, "mock", &task.TaskUpdate{Title: &newTitle}, dave)
	assert.NotNil(t, apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, common.CodeVersionRequired, apiErr.Body.Code)
	assert.EqualValues(t, 0, h.tasks.GetCalled)
}

func Test_impl_UpdateTask_admitted(t *testing.T) {
	h := newHarness()
	stored := storedTask()
	h.tasks.GetOverride = func() (*domainTask.Task, error) {
		copied := stored
		return &copied, nil
	}
	h.tasks.UpdateOverride = func(updated *domainTask.Task) (*domainTask.Task, error) {
		written := *updated
		written.Metadata.Version++
		return &written, nil
	}
	controller := buildController(h)
	version := uint64(4)
	newTitle := "B"
	result, apiErr := controller.UpdateTask(ctx, testBoard, "mock", &task.TaskUpdate{Version: &version, Title: &newTitle}, dave)
	assert.Nil(t, apiErr)
	assert.True(t, result.Admitted())
	assert.Equal(t, "B", result.Task.Title)
	assert.EqualValues(t, 5, result.Task.Metadata.Version)
	assert.EqualValues(t, 0, h.conflicts.CreateCalled)
}

func Test_impl_UpdateTask_staleVersion(t *testing.T) {
	h := newHarness()
	stored := storedTask()
	h.tasks.GetOverride = func() (*domainTask.Task, error) {
		copied := stored
		return &copied, nil
	}
	controller := buildController(h)
	version := uint64(3)
	newTitle := "B"
	result, apiErr := controller.UpdateTask(ctx, testBoard, "mock", &task.TaskUpdate{Version: &version, Title: &newTitle}, dave)
	assert.Nil(t, apiErr)
	assert.False(t, result.Admitted())
	assert.Equal(t, "VERSION_CONFLICT", result.Conflict.Code)
	assert.False(t, result.Conflict.Success)
	assert.Equal(t, "A", result.Conflict.Conflict.Task.Title)
	assert.EqualValues(t, 4, result.Conflict.Conflict.Versions.Current.Version)
	assert.EqualValues(t, 3, result.Conflict.Conflict.Versions.Yours.Version)
	assert.Equal(t, "/api/boards/b/tasks/mock/resolve-conflict", result.Conflict.Conflict.ResolutionEndpoint)
	assert.EqualValues(t, 1, h.conflicts.CreateCalled)
	assert.EqualValues(t, 0, h.tasks.UpdateCalled)
	// both writers get told
	assert.EqualValues(t, 2, h.fanout.PublishCalled)
}

func Test_impl_RepositionTask_versionRequired(t *testing.T) {
	h := newHarness()
	controller := buildController(h)
	position := 250.0
	_, apiErr := controller.RepositionTask(ctx, testBoard, "mock", &task.TaskReposition{Position: &position}, dave)
	assert.NotNil(t, apiErr)
	assert.Equal(t, common.CodeVersionRequired, apiErr.Body.Code)
}

func Test_impl_RepositionTask_admitted(t *testing.T) {
	h := newHarness()
	stored := storedTask()
	h.tasks.GetOverride = func() (*domainTask.Task, error) {
		copied := stored
		return &copied, nil
	}
	h.tasks.UpdateOverride = func(updated *domainTask.Task) (*domainTask.Task, error) {
		written := *updated
		written.Metadata.Version++
		return &written, nil
	}
	controller := buildController(h)
	version := uint64(4)
	position := 250.0
	result, apiErr := controller.RepositionTask(ctx, testBoard, "mock", &task.TaskReposition{Version: &version, Position: &position}, dave)
	assert.Nil(t, apiErr)
	assert.True(t, result.Admitted())
	assert.Equal(t, 250.0, result.Task.Position)
}

func Test_impl_DeleteTask_admitted(t *testing.T) {
	h := newHarness()
	stored := storedTask()
	h.tasks.GetOverride = func() (*domainTask.Task, error) {
		copied := stored
		return &copied, nil
	}
	controller := buildController(h)
	version := uint64(4)
	result, apiErr := controller.DeleteTask(ctx, testBoard, "mock", &task.TaskDelete{Version: &version}, dave)
	assert.Nil(t, apiErr)
	assert.True(t, result.Admitted())
	assert.Nil(t, result.Task)
	assert.EqualValues(t, 1, h.tasks.DeleteCalled)
}

func Test_impl_DeleteTask_versionRequired(t *testing.T) {
	h := newHarness()
	controller := buildController(h)
	_, apiErr := controller.DeleteTask(ctx, testBoard, "mock", &task.TaskDelete{}, dave)
	assert.NotNil(t, apiErr)
	assert.Equal(t, common.CodeVersionRequired, apiErr.Body.Code)
	assert.EqualValues(t, 0, h.tasks.DeleteCalled)
}

func pendingRecord() domainConflict.Record {
	stored := storedTask()
	incoming := stored.Fields
	incoming.Title = "B"
	record := domainConflict.NewDetected(
		testBoard,
		"mock",
		domainConflict.UPDATE,
		nil,
		domainConflict.Snapshot{Data: incoming, Version: 3, ModifiedAt: controllerNow, ModifiedBy: &dave},
		domainConflict.Snapshot{Data: stored.Fields, Version: 4, ModifiedAt: controllerNow, ModifiedBy: &carol},
		controllerNow,
	)
	record.ID = "conflict-1"
	return record
}

func Test_impl_GetConflict(t *testing.T) {
	h := newHarness()
	record := pendingRecord()
	h.conflicts.GetOverride = func() (*domainConflict.Record, error) {
		return &record, nil
	}
	controller := buildController(h)
	got, apiErr := controller.GetConflict(ctx, "conflict-1")
	assert.Nil(t, apiErr)
	assert.EqualValues(t, "conflict-1", got.ID)
	assert.Equal(t, "pending", got.Status)
	assert.NotEmpty(t, got.Diffs)
}

func Test_impl_GetConflict_notFound(t *testing.T) {
	h := newHarness()
	h.conflicts.GetOverride = func() (*domainConflict.Record, error) {
		return nil, domainConflict.NotFound{ID: "nope"}
	}
	controller := buildController(h)
	_, apiErr := controller.GetConflict(ctx, "nope")
	assert.NotNil(t, apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, common.CodeConflictNotFound, apiErr.Body.Code)
}

func Test_impl_ResolveConflict_overwrite(t *testing.T) {
	h := newHarness()
	record := pendingRecord()
	h.conflicts.GetOverride = func() (*domainConflict.Record, error) {
		copied := record
		return &copied, nil
	}
	stored := storedTask()
	h.tasks.GetOverride = func() (*domainTask.Task, error) {
		copied := stored
		return &copied, nil
	}
	h.tasks.UpdateOverride = func(updated *domainTask.Task) (*domainTask.Task, error) {
		written := *updated
		written.Metadata.Version++
		return &written, nil
	}
	controller := buildController(h)
	request := apiConflict.ResolutionRequest{ConflictId: "conflict-1", Action: "overwrite"}
	response, apiErr := controller.ResolveConflict(ctx, testBoard, "mock", &request, dave)
	assert.Nil(t, apiErr)
	assert.True(t, response.Success)
	assert.Equal(t, "resolved", response.Conflict.Status)
	assert.NotNil(t, response.Task)
	assert.Equal(t, "B", response.Task.Title)
}

func Test_impl_ResolveConflict_merge(t *testing.T) {
	h := newHarness()
	record := pendingRecord()
	h.conflicts.GetOverride = func() (*domainConflict.Record, error) {
		copied := record
		return &copied, nil
	}
	stored := storedTask()
	h.tasks.GetOverride = func() (*domainTask.Task, error) {
		copied := stored
		return &copied, nil
	}
	h.tasks.UpdateOverride = func(updated *domainTask.Task) (*domainTask.Task, error) {
		written := *updated
		written.Metadata.Version++
		return &written, nil
	}
	controller := buildController(h)
	request := apiConflict.ResolutionRequest{
		ConflictId:      "conflict-1",
		Action:          "merge",
		FieldSelections: map[string]string{"title": "theirs", "status": "mine"},
	}
	response, apiErr := controller.ResolveConflict(ctx, testBoard, "mock", &request, dave)
	assert.Nil(t, apiErr)
	assert.Equal(t, "B", response.Task.Title)
	assert.Equal(t, "todo", response.Task.Status)
}

func Test_impl_ResolveConflict_wrongTask(t *testing.T) {
	h := newHarness()
	record := pendingRecord()
	h.conflicts.GetOverride = func() (*domainConflict.Record, error) {
		copied := record
		return &copied, nil
	}
	controller := buildController(h)
	request := apiConflict.ResolutionRequest{ConflictId: "conflict-1", Action: "overwrite"}
	_, apiErr := controller.ResolveConflict(ctx, testBoard, "other-task", &request, dave)
	assert.NotNil(t, apiErr)
	assert.Equal(t, http.StatusNotFound, apiErr.StatusCode)
	assert.Equal(t, common.CodeConflictNotFound, apiErr.Body.Code)
	assert.EqualValues(t, 0, h.conflicts.UpdateCalled)
}

func Test_impl_ResolveConflict_invalidAction(t *testing.T) {
	h := newHarness()
	controller := buildController(h)
	request := apiConflict.ResolutionRequest{ConflictId: "conflict-1", Action: "shrug"}
	_, apiErr := controller.ResolveConflict(ctx, testBoard, "mock", &request, dave)
	assert.NotNil(t, apiErr)
	assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
	assert.Equal(t, common.CodeInvalidBody, apiErr.Body.Code)
}

func Test_impl_ResolveConflict_alreadyResolved(t *testing.T) {
	h := newHarness()
	record := pendingRecord()
	assert.NoError(t, record.IntoResolved(domainConflict.DISCARD, controllerNow, nil))
	h.conflicts.GetOverride = func() (*domainConflict.Record, error) {
		copied := record
		return &copied, nil
	}
	controller := buildController(h)
	request := apiConflict.ResolutionRequest{ConflictId: "conflict-1", Action: "overwrite"}
	_, apiErr := controller.ResolveConflict(ctx, testBoard, "mock", &request, dave)
	assert.NotNil(t, apiErr)
	assert.Equal(t, http.StatusConflict, apiErr.StatusCode)
	assert.Equal(t, common.CodeConflictAlreadyResolved, apiErr.Body.Code)
}

func Test_handleErr(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		wantCode int
	}{
		{"random errors should 500", fmt.Errorf("wtf"), 500},
		{"InvalidPersistedData errors should 500", domainTask.InvalidPersistedData{}, 500},
		{"task NotFound errors should 404", domainTask.NotFound{}, 404},
		{"InvalidVersion errors should 409", domainTask.InvalidVersion{}, 409},
		{"AlreadyExists errors should 409", domainTask.AlreadyExists{}, 409},
		{"conflict NotFound errors should 404", domainConflict.NotFound{}, 404},
		{"AlreadyResolved errors should 409", domainConflict.AlreadyResolved{}, 409},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantCode, handleErr(tt.err).StatusCode)
		})
	}
}
