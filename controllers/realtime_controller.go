package controllers

import (
	"net/http"
	"strconv"

	"github.com/aliasrafbd/hostel-management-server/apperror"
	"github.com/aliasrafbd/hostel-management-server/middlewares"
	"github.com/aliasrafbd/hostel-management-server/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

type RealtimeController struct {
	RT       *services.RealtimeHub
	upgrader websocket.Upgrader
}

// NewRealtimeController accepts upgrades only from the allowed origins;
// an empty list allows any origin.
func NewRealtimeController(rt *services.RealtimeHub, origins []string) *RealtimeController {
	allowed := make(map[string]bool, len(origins))
	for _, o := range origins {
		allowed[o] = true
	}
	return &RealtimeController{
		RT: rt,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return len(allowed) == 0 || origin == "" || allowed[origin]
			},
		},
	}
}

// MealsWS streams meal events; ?mealId= narrows the feed to one meal.
func (rc *RealtimeController) MealsWS(c *gin.Context) {
	var mealID uint
	if v := c.Query("mealId"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			middlewares.Fail(c, apperror.Validation("invalid mealId"))
			return
		}
		mealID = uint(id)
	}

	conn, err := rc.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		return
	}
	cl := services.NewWSClient(mealID, conn)
	rc.RT.Register(cl)

	// read loop ends on client close/error
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			rc.RT.Unregister(cl)
			return
		}
	}
}
