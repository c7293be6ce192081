package api

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"olexvol/liftlog/internal/realtime"
)

// WSHandler exposes the realtime hub over an authenticated endpoint.
type WSHandler struct {
	hub *realtime.Hub
}

// NewWSHandler creates a new WSHandler.
func NewWSHandler(hub *realtime.Hub) *WSHandler {
	return &WSHandler{hub: hub}
}

// Serve upgrades the request to a websocket connection. Browsers cannot set
// an Authorization header on websocket requests, so the auth middleware also
// accepts a "token" query parameter.
func (h *WSHandler) Serve(c *gin.Context) {
	if _, err := getUserIDFromContext(c); err != nil {
		abortWithError(c, http.StatusUnauthorized, "Unable to identify user from token.")
		return
	}
	if err := h.hub.ServeWS(c.Writer, c.Request); err != nil {
		// The upgrader has already written the failure response.
		log.Printf("WARN: websocket upgrade failed: %v", err)
	}
}
