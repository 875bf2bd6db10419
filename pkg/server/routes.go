package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/multierr"

	"github.com/c9s/ordmap/pkg/metrics"
	"github.com/c9s/ordmap/pkg/rbtree"
	"github.com/c9s/ordmap/pkg/types"
)

const requestIDHeader = "X-Request-Id"

func (s *Server) Engine() *gin.Engine {
	r := gin.Default()
	r.Use(cors.New(cors.Config{
		AllowOrigins:     s.Config.AllowOrigins,
		AllowHeaders:     []string{"Origin", "Content-Type", requestIDHeader},
		ExposeHeaders:    []string{"Content-Length", requestIDHeader},
		AllowMethods:     []string{"GET", "PUT", "DELETE"},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}))
	r.Use(requestID())

	if s.limiter != nil {
		r.Use(s.rateLimit())
	}

	r.GET("/api/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	r.GET("/api/keys", s.listKeys)
	r.GET("/api/keys/:key", s.getKey)
	r.PUT("/api/keys/:key", s.putKey)
	r.DELETE("/api/keys/:key", s.deleteKey)
	r.GET("/api/keys/:key/successor", s.successor)
	r.GET("/api/keys/:key/predecessor", s.predecessor)

	r.GET("/api/stats", func(c *gin.Context) {
		c.JSON(http.StatusOK, s.status())
	})

	r.GET("/api/validate", s.validate)
	r.GET("/api/stream", s.streamEntries)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	return r
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set("requestID", id)
		c.Header(requestIDHeader, id)
		c.Next()
	}
}

func (s *Server) rateLimit() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !s.limiter.Allow() {
			c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "rate limit exceeded"})
			return
		}
		c.Next()
	}
}

func (s *Server) listKeys(c *gin.Context) {
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

	c.JSON(http.StatusOK, gin.H{
		"order":   order,
		"entries": s.Tree.Snapshot(order, limit),
	})
}

func (s *Server) getKey(c *gin.Context) {
	key, ok := parseKey(c)
	if !ok {
		return
	}

	value, err := s.Tree.Get(key)
	metrics.ObserveOperation("search", err)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, types.Entry[int64, string]{Key: key, Value: value})
}

func (s *Server) putKey(c *gin.Context) {
	key, ok := parseKey(c)
	if !ok {
		return
	}

	payload := struct {
		Value string `json:"value"`
	}{}

	if err := c.BindJSON(&payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing arguments"})
		return
	}

	inserted := s.Tree.Upsert(key, payload.Value)
	metrics.ObserveOperation("upsert", nil)
	s.updateMetrics()

	status := http.StatusOK
	if inserted {
		status = http.StatusCreated
	}

	c.JSON(status, gin.H{"key": key, "value": payload.Value, "inserted": inserted})
}

func (s *Server) deleteKey(c *gin.Context) {
	key, ok := parseKey(c)
	if !ok {
		return
	}

	err := s.Tree.Delete(key)
	metrics.ObserveOperation("delete", err)
	if err != nil {
		respondError(c, err)
		return
	}

	s.updateMetrics()
	c.JSON(http.StatusOK, gin.H{"key": key, "deleted": true})
}

func (s *Server) successor(c *gin.Context) {
	s.neighbor(c, "successor", s.Tree.Successor)
}

func (s *Server) predecessor(c *gin.Context) {
	s.neighbor(c, "predecessor", s.Tree.Predecessor)
}

func (s *Server) neighbor(c *gin.Context, name string, lookup func(int64) (types.Entry[int64, string], bool, error)) {
	key, ok := parseKey(c)
	if !ok {
		return
	}

	entry, found, err := lookup(key)
	metrics.ObserveOperation(name, err)
	if err != nil {
		respondError(c, err)
		return
	}

	if !found {
		c.JSON(http.StatusNotFound, gin.H{"error": "key " + strconv.FormatInt(key, 10) + " has no " + name})
		return
	}

	c.JSON(http.StatusOK, entry)
}

func (s *Server) validate(c *gin.Context) {
	err := s.Tree.Validate()
	if err == nil {
		c.JSON(http.StatusOK, gin.H{"valid": true})
		return
	}

	var violations []string
	for _, e := range multierr.Errors(err) {
		violations = append(violations, e.Error())
	}

	log.WithError(err).Error("tree validation failed")
	c.JSON(http.StatusInternalServerError, gin.H{"valid": false, "errors": violations})
}

func parseKey(c *gin.Context) (int64, bool) {
	key, err := strconv.ParseInt(c.Param("key"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "key must be an integer"})
		return 0, false
	}

	return key, true
}

func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, rbtree.ErrKeyNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
