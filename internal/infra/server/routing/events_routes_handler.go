package routing

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/rs/zerolog/log"

	"github.com/kalyan021004/todoboard/internal/infra/notification"
)

var eventsPath = "/api/events"

// EventsRoutesHandler upgrades subscribers onto the notification Hub so they
// receive conflict events for their actor id as they happen.
type EventsRoutesHandler struct {
	Hub *notification.Hub
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser clients connect from the board UI's origin, which is not
	// necessarily ours.
	CheckOrigin: func(r *http.Request) bool { return true },
}

func (h *EventsRoutesHandler) RegisterRoutes(ginEngine *gin.Engine) {
	ginEngine.GET(eventsPath, h.subscribe)
}

// @Summary Subscribe to conflict events
// @ID subscribe-conflict-events
// @Tags events
// @Description Upgrades to a websocket that streams conflict events for the
// @Description actor identified by the actor id header.
// @Param X-TODOBOARD-ACTOR-ID header string true "Actor ID"
// @Success 101 "Switching protocols"
// @Failure 400 {object} common.Body "Actor id header missing"
// @Router /api/events [get]
func (h *EventsRoutesHandler) subscribe(c *gin.Context) {
	by, apiErr := getActorOrErr(c)
	if apiErr != nil {
		HandleApiErr(c, apiErr)
		return
	}
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Warn().Err(err).Msg("Websocket upgrade failed")
		return
	}
	h.Hub.ServeConn(conn, by.ID)
}
