package handlers

import (
	"context"
	"net/http"

	"pod-tracker-api/services"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	log "github.com/sirupsen/logrus"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// LiveWebSocket streams every event published on the live channel to the
// client as-is. Server-push only: inbound frames are read solely to detect
// disconnects. There is no replay; a client only sees events published while
// it is connected.
func LiveWebSocket(cache *services.CacheService) gin.HandlerFunc {
	return func(c *gin.Context) {
		pubsub := cache.Subscribe(c.Request.Context(), services.LiveChannel)
		if pubsub == nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"error": "live channel unavailable"})
			return
		}
		defer pubsub.Close()

		conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
		if err != nil {
			log.WithError(err).Warn("websocket upgrade failed")
			return
		}
		defer conn.Close()

		ctx, cancel := context.WithCancel(c.Request.Context())
		defer cancel()

		// Read pump: detect client disconnect
		go func() {
			defer cancel()
			for {
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()

		ch := pubsub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				if err := conn.WriteMessage(websocket.TextMessage, []byte(msg.Payload)); err != nil {
					log.WithError(err).Debug("ws write error")
					return
				}
			}
		}
	}
}
