package routing

import (
	"fmt"
	"net/http"
	"strings"

	boardController "github.com/kalyan021004/todoboard/internal/api/controllers/board"
	"github.com/kalyan021004/todoboard/internal/config"
	"github.com/kalyan021004/todoboard/internal/domain/actor"
	domainBoard "github.com/kalyan021004/todoboard/internal/domain/board"
	domainTask "github.com/kalyan021004/todoboard/internal/domain/task"

	"github.com/gin-gonic/gin"

	"github.com/kalyan021004/todoboard/internal/api/models/common"
	"github.com/kalyan021004/todoboard/internal/api/models/conflict"
	"github.com/kalyan021004/todoboard/internal/api/models/task"
)

var boardsRootPath = "/api/boards"
var ActorIdHeaderKey = "X-TODOBOARD-ACTOR-ID"
var ActorNameHeaderKey = "X-TODOBOARD-ACTOR-NAME"
var taskIdPathKey = "task_id"
var boardPathKey = "board"

type BoardsRoutesHandler struct {
	AuthSettings *config.Auth
	Controller   boardController.Controller
}

func (h *BoardsRoutesHandler) RegisterRoutes(ginEngine *gin.Engine) {
	routerGroup := NewRoutesGroup(h.AuthSettings, ginEngine, boardsRootPath)

	tasksPath := "/:" + boardPathKey + "/tasks"
	taskPath := tasksPath + "/:" + taskIdPathKey
	routerGroup.POST(tasksPath, h.create)
	routerGroup.GET(tasksPath, h.list)
	routerGroup.GET(taskPath, h.get)
	routerGroup.PUT(taskPath, h.update)
	routerGroup.PUT(taskPath+"/position", h.reposition)
	routerGroup.DELETE(taskPath, h.delete)
	routerGroup.POST(taskPath+"/resolve-conflict", h.resolveConflict)
}

// @Summary Add a new Task to a board
// @ID create-task
// @Tags tasks
// @Description Creates a new Task on the given board
// @Accept  json
// @Produce  json
// @Param   board path string true "The board to create the Task on"
// @Param   newTask body task.NewTask true "The request body"
// @Param X-TODOBOARD-ACTOR-ID header string true "Actor ID"
// @Success 201 {object} task.Task
// @Failure 400 {object} common.Body "Invalid JSON"
// @Router /api/boards/{board}/tasks [post]
func (h *BoardsRoutesHandler) create(c *gin.Context) {
	boardName, apiErr := boardNameOrErr(c)
	if apiErr != nil {
		HandleApiErr(c, apiErr)
		return
	}
	by, apiErr := getActorOrErr(c)
	if apiErr != nil {
		HandleApiErr(c, apiErr)
		return
	}
	var newTask task.NewTask
	if err := c.ShouldBindJSON(&newTask); err != nil {
		HandleJsonSerdesErr(c, err)
	} else {
		if t, err := h.Controller.CreateTask(c.Request.Context(), *boardName, &newTask, *by); err == nil {
			c.JSON(http.StatusCreated, t)
		} else {
			c.JSON(err.StatusCode, err.Body)
		}
	}
}

// @Summary List the Tasks on a board
// @ID list-tasks
// @Tags tasks
// @Description Lists the Tasks on the given board, ordered by position
// @Accept  json
// @Produce  json
// @Param   board path string true "The board to list"
// @Success 200 {array} task.Task
// @Router /api/boards/{board}/tasks [get]
func (h *BoardsRoutesHandler) list(c *gin.Context) {
	boardName, apiErr := boardNameOrErr(c)
	if apiErr != nil {
		HandleApiErr(c, apiErr)
		return
	}
	if tasks, err := h.Controller.ListTasks(c.Request.Context(), *boardName); err == nil {
		c.JSON(http.StatusOK, tasks)
	} else {
		c.JSON(err.StatusCode, err.Body)
	}
}

// @Summary Get a Task
// @ID get-existing-task
// @Tags tasks
// @Description Retrieves a persisted Task
// @Accept  json
// @Produce  json
// @Param   board path string true "The board of the Task"
// @Param   id path string true "The id of the Task"
// @Success 200 {object} task.Task
// @Failure 404 {object} common.Body "Task does not exist"
// @Router /api/boards/{board}/tasks/{id} [get]
func (h *BoardsRoutesHandler) get(c *gin.Context) {
	boardName, apiErr := boardNameOrErr(c)
	if apiErr != nil {
		HandleApiErr(c, apiErr)
		return
	}
	taskId := domainTask.Id(c.Param(taskIdPathKey))
	if t, err := h.Controller.GetTask(c.Request.Context(), *boardName, taskId); err == nil {
		c.JSON(http.StatusOK, t)
	} else {
		c.JSON(err.StatusCode, err.Body)
	}
}

// @Summary Update a Task
// @ID update-existing-task
// @Tags tasks
// @Description Updates the fields of a Task. The body must carry the version
// @Description the client last read; a stale version gets a structured 409
// @Description with a link to the resolution endpoint instead of a write.
// @Accept  json
// @Produce  json
// @Param   board path string true "The board of the Task"
// @Param   id path string true "The id of the Task"
// @Param   taskUpdate body task.TaskUpdate true "The request body"
// @Param X-TODOBOARD-ACTOR-ID header string true "Actor ID"
// @Success 200 {object} task.Task
// @Failure 400 {object} common.Body "Version missing from the request"
// @Failure 404 {object} common.Body "Task does not exist"
// @Failure 409 {object} conflict.Response "The claimed version is stale"
// @Router /api/boards/{board}/tasks/{id} [put]
func (h *BoardsRoutesHandler) update(c *gin.Context) {
	boardName, apiErr := boardNameOrErr(c)
	if apiErr != nil {
		HandleApiErr(c, apiErr)
		return
	}
	by, apiErr := getActorOrErr(c)
	if apiErr != nil {
		HandleApiErr(c, apiErr)
		return
	}
	taskId := domainTask.Id(c.Param(taskIdPathKey))
	var update task.TaskUpdate
	if err := c.ShouldBindJSON(&update); err != nil {
		HandleJsonSerdesErr(c, err)
	} else {
		if result, err := h.Controller.UpdateTask(c.Request.Context(), *boardName, taskId, &update, *by); err == nil {
			handleWriteResult(c, result, http.StatusOK)
		} else {
			c.JSON(err.StatusCode, err.Body)
		}
	}
}

// @Summary Move a Task
// @ID reposition-existing-task
// @Tags tasks
// @Description Moves a Task to a new position on its board, version-gated
// @Description exactly like update.
// @Accept  json
// @Produce  json
// @Param   board path string true "The board of the Task"
// @Param   id path string true "The id of the Task"
// @Param   taskReposition body task.TaskReposition true "The request body"
// @Param X-TODOBOARD-ACTOR-ID header string true "Actor ID"
// @Success 200 {object} task.Task
// @Failure 400 {object} common.Body "Version missing from the request"
// @Failure 404 {object} common.Body "Task does not exist"
// @Failure 409 {object} conflict.Response "The claimed version is stale"
// @Router /api/boards/{board}/tasks/{id}/position [put]
func (h *BoardsRoutesHandler) reposition(c *gin.Context) {
	boardName, apiErr := boardNameOrErr(c)
	if apiErr != nil {
		HandleApiErr(c, apiErr)
		return
	}
	by, apiErr := getActorOrErr(c)
	if apiErr != nil {
		HandleApiErr(c, apiErr)
		return
	}
	taskId := domainTask.Id(c.Param(taskIdPathKey))
	var reposition task.TaskReposition
	if err := c.ShouldBindJSON(&reposition); err != nil {
		HandleJsonSerdesErr(c, err)
	} else {
		if result, err := h.Controller.RepositionTask(c.Request.Context(), *boardName, taskId, &reposition, *by); err == nil {
			handleWriteResult(c, result, http.StatusOK)
		} else {
			c.JSON(err.StatusCode, err.Body)
		}
	}
}

// @Summary Delete a Task
// @ID delete-existing-task
// @Tags tasks
// @Description Deletes a Task, version-gated exactly like update.
// @Accept  json
// @Produce  json
// @Param   board path string true "The board of the Task"
// @Param   id path string true "The id of the Task"
// @Param   taskDelete body task.TaskDelete true "The request body"
// @Param X-TODOBOARD-ACTOR-ID header string true "Actor ID"
// @Success 204 "Deleted"
// @Failure 400 {object} common.Body "Version missing from the request"
// @Failure 404 {object} common.Body "Task does not exist"
// @Failure 409 {object} conflict.Response "The claimed version is stale"
// @Router /api/boards/{board}/tasks/{id} [delete]
func (h *BoardsRoutesHandler) delete(c *gin.Context) {
	boardName, apiErr := boardNameOrErr(c)
	if apiErr != nil {
		HandleApiErr(c, apiErr)
		return
	}
	by, apiErr := getActorOrErr(c)
	if apiErr != nil {
		HandleApiErr(c, apiErr)
		return
	}
	taskId := domainTask.Id(c.Param(taskIdPathKey))
	var taskDelete task.TaskDelete
	if err := c.ShouldBindJSON(&taskDelete); err != nil {
		HandleJsonSerdesErr(c, err)
	} else {
		if result, err := h.Controller.DeleteTask(c.Request.Context(), *boardName, taskId, &taskDelete, *by); err == nil {
			handleWriteResult(c, result, http.StatusNoContent)
		} else {
			c.JSON(err.StatusCode, err.Body)
		}
	}
}

// @Summary Resolve a conflict on a Task
// @ID resolve-task-conflict
// @Tags conflicts
// @Description Applies a resolution decision (overwrite, discard or merge)
// @Description to a pending conflict on the given Task.
// @Accept  json
// @Produce  json
// @Param   board path string true "The board of the Task"
// @Param   id path string true "The id of the Task"
// @Param   resolution body conflict.ResolutionRequest true "The request body"
// @Param X-TODOBOARD-ACTOR-ID header string true "Actor ID"
// @Success 200 {object} conflict.ResolutionResponse
// @Failure 404 {object} common.Body "No such pending conflict on this Task"
// @Failure 409 {object} common.Body "The conflict was already resolved"
// @Router /api/boards/{board}/tasks/{id}/resolve-conflict [post]
func (h *BoardsRoutesHandler) resolveConflict(c *gin.Context) {
	boardName, apiErr := boardNameOrErr(c)
	if apiErr != nil {
		HandleApiErr(c, apiErr)
		return
	}
	by, apiErr := getActorOrErr(c)
	if apiErr != nil {
		HandleApiErr(c, apiErr)
		return
	}
	taskId := domainTask.Id(c.Param(taskIdPathKey))
	var request conflict.ResolutionRequest
	if err := c.ShouldBindJSON(&request); err != nil {
		HandleJsonSerdesErr(c, err)
	} else {
		if response, err := h.Controller.ResolveConflict(c.Request.Context(), *boardName, taskId, &request, *by); err == nil {
			c.JSON(http.StatusOK, response)
		} else {
			c.JSON(err.StatusCode, err.Body)
		}
	}
}

// handleWriteResult renders a gated write: the admitted status and body when
// the write went through, the structured 409 when it was diverted.
func handleWriteResult(c *gin.Context, result *boardController.WriteResult, admittedStatus int) {
	if !result.Admitted() {
		c.JSON(http.StatusConflict, result.Conflict)
	} else if result.Task != nil {
		c.JSON(admittedStatus, result.Task)
	} else {
		c.Status(admittedStatus)
	}
}

var noActorIdApiErr = common.ApiError{
	StatusCode: http.StatusBadRequest,
	Body: common.Body{
		Message: fmt.Sprintf("Actor Id header [%s] not sent", ActorIdHeaderKey),
	},
}

func getActorOrErr(c *gin.Context) (*actor.Actor, *common.ApiError) {
	actorIdStr := strings.TrimSpace(c.Request.Header.Get(ActorIdHeaderKey))
	if len(actorIdStr) == 0 {
		return nil, &noActorIdApiErr
	} else {
		by := actor.Actor{
			ID:   actor.Id(actorIdStr),
			Name: actor.Name(strings.TrimSpace(c.Request.Header.Get(ActorNameHeaderKey))),
		}
		return &by, nil
	}
}

func boardNameOrErr(c *gin.Context) (*domainBoard.Name, *common.ApiError) {
	boardName, err := domainBoard.NameFromString(c.Param(boardPathKey))
	if err != nil {
		return nil, &common.ApiError{
			StatusCode: http.StatusBadRequest,
			Body: common.Body{
				Message: err.Error(),
			},
		}
	}
	return boardName, nil
}
