package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"github.com/c9s/ordmap/pkg/types"
)

const streamWriteTimeout = 10 * time.Second

// streamEntries sends the entries in the requested order over a websocket, one
// message per entry, and closes the connection normally after the last one.
func (s *Server) streamEntries(c *gin.Context) {
	order, err := types.ParseOrder(c.Query("order"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	limit := 0
	if v := c.Query("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
	}

	upgrader := websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     s.checkOrigin,
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// the upgrader has already replied with an error status
		log.WithError(err).Warn("websocket upgrade failed")
		return
	}
	defer conn.Close()

	entries := s.Tree.Snapshot(order, limit)
	for _, entry := range entries {
		_ = conn.SetWriteDeadline(time.Now().Add(streamWriteTimeout))
		if err := conn.WriteJSON(entry); err != nil {
			log.WithError(err).Warn("websocket write failed")
			return
		}
	}

	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, strconv.Itoa(len(entries)))
	if err := conn.WriteControl(websocket.CloseMessage, message, time.Now().Add(streamWriteTimeout)); err != nil {
		log.WithError(err).Warn("websocket close failed")
	}
}

func (s *Server) checkOrigin(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}

	for _, allowed := range s.Config.AllowOrigins {
		if allowed == "*" || allowed == origin {
			return true
		}
	}

	return false
}
