package board

import (
	"context"
	"net/http"

	"github.com/kalyan021004/todoboard/internal/api/models/common"
	apiConflict "github.com/kalyan021004/todoboard/internal/api/models/conflict"
	"github.com/kalyan021004/todoboard/internal/domain/actor"
	domainBoard "github.com/kalyan021004/todoboard/internal/domain/board"
	domainConflict "github.com/kalyan021004/todoboard/internal/domain/conflict"
	domainMetadata "github.com/kalyan021004/todoboard/internal/domain/metadata"
	domainTask "github.com/kalyan021004/todoboard/internal/domain/task"

	"github.com/kalyan021004/todoboard/internal/api/models/task"
)

// WriteResult is what a gated write comes back with: the written Task when
// the write was admitted, or the structured conflict body when it was
// diverted. For an admitted delete both are nil.
type WriteResult struct {
	Task     *task.Task
	Conflict *apiConflict.Response
}

// Admitted returns true if the write went through.
func (r *WriteResult) Admitted() bool {
	return r.Conflict == nil
}

// Controller is an interface that defines the methods that are available to
// the routing layer. It is framework-agnostic
type Controller interface {

	// CreateTask persists a NewTask on the given board.
	//
	// Never pass a nil here; it's a pointer because the struct isn't small
	CreateTask(ctx context.Context, boardName domainBoard.Name, newTask *task.NewTask, by actor.Actor) (*task.Task, *common.ApiError)

	// GetTask returns a Task based on the passed in board and taskId
	GetTask(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id) (*task.Task, *common.ApiError)

	// ListTasks returns the Tasks on a board, ordered by position.
	ListTasks(ctx context.Context, boardName domainBoard.Name) ([]task.Task, *common.ApiError)

	// UpdateTask runs a gated field update against a Task.
	UpdateTask(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, update *task.TaskUpdate, by actor.Actor) (*WriteResult, *common.ApiError)

	// RepositionTask runs a gated position change against a Task.
	RepositionTask(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, reposition *task.TaskReposition, by actor.Actor) (*WriteResult, *common.ApiError)

	// DeleteTask runs a gated delete against a Task.
	DeleteTask(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, delete *task.TaskDelete, by actor.Actor) (*WriteResult, *common.ApiError)

	// GetConflict returns the full conflict Record, diffs included.
	GetConflict(ctx context.Context, id domainConflict.Id) (*apiConflict.Record, *common.ApiError)

	// ResolveConflict applies a human decision to a pending conflict on the
	// given task.
	ResolveConflict(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, request *apiConflict.ResolutionRequest, by actor.Actor) (*apiConflict.ResolutionResponse, *common.ApiError)
}

func New(tasksService domainTask.Service, conflictsService domainConflict.Service, gate *domainConflict.Gate, resolver *domainConflict.Resolver) Controller {
	return &impl{
		tasksService:     tasksService,
		conflictsService: conflictsService,
		gate:             gate,
		resolver:         resolver,
	}
}

type impl struct {
	tasksService     domainTask.Service
	conflictsService domainConflict.Service
	gate             *domainConflict.Gate
	resolver         *domainConflict.Resolver
}

func (c *impl) CreateTask(ctx context.Context, boardName domainBoard.Name, newTask *task.NewTask, by actor.Actor) (*task.Task, *common.ApiError) {
	domainNewTask, err := newTask.ToDomainNewTask(boardName)
	if err != nil {
		return nil, invalidBody(err)
	}
	domainNewTask.By = &by
	result, err := c.tasksService.Create(ctx, &domainNewTask)
	if err != nil {
		return nil, handleErr(err)
	} else {
		t := task.FromDomainTask(result)
		return &t, nil
	}
}

func (c *impl) GetTask(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id) (*task.Task, *common.ApiError) {
	result, err := c.tasksService.Get(ctx, boardName, taskId)
	if err != nil {
		return nil, handleErr(err)
	} else {
		t := task.FromDomainTask(result)
		return &t, nil
	}
}

func (c *impl) ListTasks(ctx context.Context, boardName domainBoard.Name) ([]task.Task, *common.ApiError) {
	result, err := c.tasksService.List(ctx, boardName)
	if err != nil {
		return nil, handleErr(err)
	} else {
		apiTasks := make([]task.Task, 0, len(result))
		for _, dTask := range result {
			apiTasks = append(apiTasks, task.FromDomainTask(&dTask))
		}
		return apiTasks, nil
	}
}

func (c *impl) UpdateTask(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, update *task.TaskUpdate, by actor.Actor) (*WriteResult, *common.ApiError) {
	if update.Version == nil {
		return nil, versionRequired()
	}
	claimed := domainMetadata.Version(*update.Version)
	changes, err := update.ToDomainChanges()
	if err != nil {
		return nil, invalidBody(err)
	}
	outcome, err := c.gate.Update(ctx, boardName, taskId, claimed, changes, declaredBase(update.Base, claimed), by)
	if err != nil {
		return nil, handleErr(err)
	}
	return fromOutcome(outcome), nil
}

func (c *impl) RepositionTask(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, reposition *task.TaskReposition, by actor.Actor) (*WriteResult, *common.ApiError) {
	if reposition.Version == nil {
		return nil, versionRequired()
	}
	claimed := domainMetadata.Version(*reposition.Version)
	position := domainTask.Position(*reposition.Position)
	outcome, err := c.gate.Reposition(ctx, boardName, taskId, claimed, position, nil, by)
	if err != nil {
		return nil, handleErr(err)
	}
	return fromOutcome(outcome), nil
}

func (c *impl) DeleteTask(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, delete *task.TaskDelete, by actor.Actor) (*WriteResult, *common.ApiError) {
	if delete.Version == nil {
		return nil, versionRequired()
	}
	claimed := domainMetadata.Version(*delete.Version)
	outcome, err := c.gate.Delete(ctx, boardName, taskId, claimed, declaredBase(delete.Base, claimed), by)
	if err != nil {
		return nil, handleErr(err)
	}
	return fromOutcome(outcome), nil
}

func (c *impl) GetConflict(ctx context.Context, id domainConflict.Id) (*apiConflict.Record, *common.ApiError) {
	result, err := c.conflictsService.Get(ctx, id)
	if err != nil {
		return nil, handleErr(err)
	} else {
		record := apiConflict.FullFromDomainRecord(result)
		return &record, nil
	}
}

func (c *impl) ResolveConflict(ctx context.Context, boardName domainBoard.Name, taskId domainTask.Id, request *apiConflict.ResolutionRequest, by actor.Actor) (*apiConflict.ResolutionResponse, *common.ApiError) {
	resolution, err := request.ToDomainResolution()
	if err != nil {
		return nil, invalidBody(err)
	}
	// The endpoint is task-scoped, so a conflict id pasted from another
	// task's prompt must not resolve here.
	record, err := c.conflictsService.Get(ctx, request.ConflictId)
	if err != nil {
		return nil, handleErr(err)
	}
	if record.Board != boardName || record.TaskId != taskId {
		return nil, conflictNotFound(domainConflict.NotFound{ID: request.ConflictId})
	}
	result, err := c.resolver.Resolve(ctx, request.ConflictId, resolution, by)
	if err != nil {
		return nil, handleErr(err)
	}
	response := apiConflict.ResolutionResponse{
		Success:  true,
		Conflict: apiConflict.FullFromDomainRecord(result.Conflict),
	}
	if result.Task != nil {
		t := task.FromDomainTask(result.Task)
		response.Task = &t
	}
	return &response, nil
}

// declaredBase lifts a client-declared base snapshot into a domain conflict
// Snapshot tagged with the claimed version. Nil stays nil; the gate then
// synthesises a base from the claimed version alone.
func declaredBase(base *task.Snapshot, claimed domainMetadata.Version) *domainConflict.Snapshot {
	if base == nil {
		return nil
	}
	return &domainConflict.Snapshot{
		Data:    base.ToDomainFields(),
		Version: claimed,
	}
}

func fromOutcome(outcome *domainConflict.Outcome) *WriteResult {
	result := WriteResult{}
	if outcome.Conflict != nil {
		response := apiConflict.FromDomainRecord(outcome.Conflict)
		result.Conflict = &response
	}
	if outcome.Task != nil {
		t := task.FromDomainTask(outcome.Task)
		result.Task = &t
	}
	return &result
}

func handleErr(err error) *common.ApiError {
	switch v := err.(type) {
	case domainTask.NotFound:
		return taskNotFound(v)
	case domainTask.AlreadyExists:
		return alreadyExists(v)
	case domainTask.InvalidVersion:
		return versionConflict(v)
	case domainTask.InvalidPersistedData:
		return invalidPersistedData(v)
	case domainConflict.NotFound:
		return conflictNotFound(v)
	case domainConflict.AlreadyResolved:
		return alreadyResolved(v)
	default:
		return unhandledErr(v)
	}
}

func versionRequired() *common.ApiError {
	return &common.ApiError{
		StatusCode: http.StatusBadRequest,
		Body: common.Body{
			Code:    common.CodeVersionRequired,
			Message: "The request must carry the version the client last read",
		},
	}
}

func invalidBody(err error) *common.ApiError {
	return &common.ApiError{
		StatusCode: http.StatusBadRequest,
		Body: common.Body{
			Code:    common.CodeInvalidBody,
			Message: err.Error(),
		},
	}
}

func taskNotFound(notFound domainTask.NotFound) *common.ApiError {
	return &common.ApiError{
		StatusCode: http.StatusNotFound,
		Body: common.Body{
			Code:    common.CodeTaskNotFound,
			Message: notFound.Error(),
		},
	}
}

func alreadyExists(alreadyExists domainTask.AlreadyExists) *common.ApiError {
	return &common.ApiError{
		StatusCode: http.StatusConflict,
		Body: common.Body{
			Code:    common.CodeInternalError,
			Message: alreadyExists.Error(),
		},
	}
}

func versionConflict(versionConflict domainTask.InvalidVersion) *common.ApiError {
	return &common.ApiError{
		StatusCode: http.StatusConflict,
		Body: common.Body{
			Code:    common.CodeVersionConflict,
			Message: versionConflict.Error(),
		},
	}
}

func invalidPersistedData(err domainTask.InvalidPersistedData) *common.ApiError {
	return &common.ApiError{
		StatusCode: http.StatusInternalServerError,
		Body: common.Body{
			Code:    common.CodeInternalError,
			Message: err.Error(),
		},
	}
}

func conflictNotFound(notFound domainConflict.NotFound) *common.ApiError {
	return &common.ApiError{
		StatusCode: http.StatusNotFound,
		Body: common.Body{
			Code:    common.CodeConflictNotFound,
			Message: notFound.Error(),
		},
	}
}

func alreadyResolved(alreadyResolved domainConflict.AlreadyResolved) *common.ApiError {
	return &common.ApiError{
		StatusCode: http.StatusConflict,
		Body: common.Body{
			Code:    common.CodeConflictAlreadyResolved,
			Message: alreadyResolved.Error(),
		},
	}
}

func unhandledErr(err error) *common.ApiError {
	return &common.ApiError{
		StatusCode: http.StatusInternalServerError,
		Body: common.Body{
			Code:    common.CodeInternalError,
			Message: err.Error(),
		},
	}
}
