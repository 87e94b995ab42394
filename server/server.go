// Package server exposes the duplicate filter over HTTP.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/siskinc/zijiyou/dedup"
	"github.com/siskinc/zijiyou/fingerprint"
)

type APIResponse struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   string      `json:"error,omitempty"`
}

type FingerprintRequest struct {
	Inputs []string `json:"inputs"`
	URL    bool     `json:"url"`
}

type CheckRequest struct {
	ID      string `json:"id"`
	Content string `json:"content" binding:"required"`
}

type CheckResult struct {
	Duplicate   bool                    `json:"duplicate"`
	Fingerprint fingerprint.Fingerprint `json:"fingerprint"`
}

type TopRequest struct {
	Content string `json:"content" binding:"required"`
	N       int    `json:"n"`
}

type Server struct {
	filter *dedup.Filter
	logger logrus.FieldLogger
	router *gin.Engine
}

func New(filter *dedup.Filter, logger logrus.FieldLogger) *Server {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	s := &Server{filter: filter, logger: logger}
	r := gin.New()
	r.Use(gin.Recovery(), s.accessLog())
	api := r.Group("/api")
	{
		api.POST("/fingerprint", s.fingerprint)
		api.POST("/check", s.check)
		api.POST("/top", s.top)
		api.GET("/stats", s.stats)
	}
	s.router = r
	return s
}

func (s *Server) Handler() http.Handler {
	return s.router
}

// ListenAndServe serves on addr until ctx is done.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s.router}
	errCh := make(chan error, 1)
	go func() {
		s.logger.Infof("http server listening on %s", addr)
		errCh <- srv.ListenAndServe()
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func (s *Server) accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		s.logger.WithFields(logrus.Fields{
			"method":  c.Request.Method,
			"path":    c.Request.URL.Path,
			"status":  c.Writer.Status(),
			"latency": time.Since(start),
		}).Debug("http request")
	}
}

func badRequest(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, APIResponse{Error: err.Error()})
}

func (s *Server) fingerprint(c *gin.Context) {
	var req FingerprintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	fp := fingerprint.Generate(req.Inputs, req.URL)
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"fingerprint": fp}})
}

func (s *Server) check(c *gin.Context) {
	var req CheckRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	isDup, fp := s.filter.CheckDuplicate(req.Content)
	if isDup {
		s.logger.WithFields(logrus.Fields{"id": req.ID, "md5": fp}).Info("duplicate document")
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: CheckResult{Duplicate: isDup, Fingerprint: fp}})
}

func (s *Server) top(c *gin.Context) {
	var req TopRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	n := req.N
	if n <= 0 {
		n = dedup.DefaultTopN
	}
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"sentences": s.filter.TopSentences(req.Content, n)}})
}

func (s *Server) stats(c *gin.Context) {
	c.JSON(http.StatusOK, APIResponse{Success: true, Data: gin.H{"fingerprints": s.filter.Len()}})
}
