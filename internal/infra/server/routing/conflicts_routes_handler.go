package routing

import (
	"net/http"

	boardController "github.com/kalyan021004/todoboard/internal/api/controllers/board"
	"github.com/kalyan021004/todoboard/internal/config"
	domainConflict "github.com/kalyan021004/todoboard/internal/domain/conflict"

	"github.com/gin-gonic/gin"
)

var conflictsRootPath = "/api/conflicts"
var conflictIdPathKey = "conflict_id"

type ConflictsRoutesHandler struct {
	AuthSettings *config.Auth
	Controller   boardController.Controller
}

func (h *ConflictsRoutesHandler) RegisterRoutes(ginEngine *gin.Engine) {
	routerGroup := NewRoutesGroup(h.AuthSettings, ginEngine, conflictsRootPath)
	routerGroup.GET("/:"+conflictIdPathKey, h.get)
}

// @Summary Get a conflict
// @ID get-existing-conflict
// @Tags conflicts
// @Description Retrieves a conflict record with its snapshots and the
// @Description field-by-field diff between the stored and attempted data.
// @Accept  json
// @Produce  json
// @Param   id path string true "The id of the conflict"
// @Success 200 {object} conflict.Record
// @Failure 404 {object} common.Body "Conflict does not exist"
// @Router /api/conflicts/{id} [get]
func (h *ConflictsRoutesHandler) get(c *gin.Context) {
	conflictId := domainConflict.Id(c.Param(conflictIdPathKey))
	if record, err := h.Controller.GetConflict(c.Request.Context(), conflictId); err == nil {
		c.JSON(http.StatusOK, record)
	} else {
		c.JSON(err.StatusCode, err.Body)
	}
}
