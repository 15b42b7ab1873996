// Copyright 2025 The WasteWise Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes disposal lookups and classification as a JSON API.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rotisserie/eris"
	"github.com/wastewise/wastewise/classify"
	"github.com/wastewise/wastewise/disposal"
	"github.com/wastewise/wastewise/wastetype"
	"go.uber.org/zap"
)

// RequestIDHeader carries the request id, generated when the client sent
// none.
const RequestIDHeader = "X-Request-ID"

const maxUploadBytes = 20 << 20

// Resolver answers disposal lookups.
type Resolver interface {
	Resolve(ctx context.Context, address, wasteType string) *disposal.Report
}

// Pinger checks that an upstream dependency is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Options wires the server dependencies. Nil models fall back to the
// heuristics.
type Options struct {
	Disposal     Resolver
	TextModel    *classify.TextModel
	ImageModel   classify.ImageModel
	ImageClasses []string
	Status       Pinger
	CORSOrigins  []string
}

// Server is the HTTP API.
type Server struct {
	options Options
}

// New creates a Server.
func New(options Options) *Server {
	if len(options.ImageClasses) == 0 {
		options.ImageClasses = classify.ImageClassNames()
	}

	return &Server{options: options}
}

// Handler returns the routed gin engine.
func (s *Server) Handler() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), requestID(), accessLog())

	if len(s.options.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:  s.options.CORSOrigins,
			AllowMethods:  []string{http.MethodGet, http.MethodPost, http.MethodOptions},
			AllowHeaders:  []string{"Origin", "Content-Type", RequestIDHeader},
			ExposeHeaders: []string{RequestIDHeader},
			MaxAge:        12 * time.Hour,
		}))
	}

	r.MaxMultipartMemory = maxUploadBytes

	api := r.Group("/api")
	api.GET("/waste-types", s.listWasteTypes)
	api.GET("/disposal", s.disposal)
	api.POST("/classify/text", s.classifyText)
	api.POST("/classify/image", s.classifyImage)
	api.GET("/status", s.status)

	return r
}

// Run serves on addr until ctx is canceled.
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		zap.L().Info("http server listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}

		return eris.Wrap(err, "serving http")
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		zap.L().Info("shutting down http server")

		return eris.Wrap(srv.Shutdown(shutdownCtx), "shutting down http server")
	}
}

func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}

		c.Set("request_id", id)
		c.Header(RequestIDHeader, id)
		c.Next()
	}
}

func accessLog() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		zap.L().Info("http request",
			zap.String("method", c.Request.Method),
			zap.String("path", path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("latency", time.Since(start)),
			zap.String("request_id", c.GetString("request_id")),
		)
	}
}

// errorResponse is the error body of every endpoint.
type errorResponse struct {
	Error string `json:"error"`
}

type wasteTypeView struct {
	Code          string `json:"code"`
	Upstream      string `json:"upstream"`
	Name          string `json:"name"`
	Display       string `json:"display"`
	HomeCollected bool   `json:"home_collected"`
}

func (s *Server) listWasteTypes(c *gin.Context) {
	all := wastetype.All()
	out := make([]wasteTypeView, 0, len(all))

	for _, t := range all {
		out = append(out, wasteTypeView{
			Code:          t.Code(),
			Upstream:      t.Upstream(),
			Name:          t.Name(),
			Display:       t.Display(),
			HomeCollected: t.HomeCollected(),
		})
	}

	c.JSON(http.StatusOK, out)
}

func (s *Server) disposal(c *gin.Context) {
	if s.options.Disposal == nil {
		c.JSON(http.StatusServiceUnavailable, errorResponse{Error: "disposal lookup is not configured"})

		return
	}

	report := s.options.Disposal.Resolve(c.Request.Context(), c.Query("address"), c.Query("type"))
	c.JSON(http.StatusOK, report)
}

// classification is a classify.Result with its sorting advice.
type classification struct {
	classify.Result
	Advice *wastetype.Advice `json:"advice,omitempty"`
}

func withAdvice(r classify.Result) classification {
	out := classification{Result: r}
	if a, ok := r.Advice(); ok {
		out.Advice = &a
	}

	return out
}

type classifyTextRequest struct {
	Description string `json:"description"`
}

func (s *Server) classifyText(c *gin.Context) {
	var req classifyTextRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body"})

		return
	}

	r := classify.PredictText(req.Description, s.options.TextModel)
	if r.NoInput() {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "description is required"})

		return
	}

	c.JSON(http.StatusOK, withAdvice(r))
}

func (s *Server) classifyImage(c *gin.Context) {
	fh, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "image form field is required"})

		return
	}

	if fh.Size > maxUploadBytes {
		c.JSON(http.StatusRequestEntityTooLarge, errorResponse{Error: "image too large"})

		return
	}

	f, err := fh.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "unreadable upload"})

		return
	}
	defer f.Close() //nolint:errcheck

	img, err := classify.DecodeImage(f)
	if err != nil {
		zap.L().Warn("rejecting image upload", zap.String("filename", fh.Filename), zap.Error(err))
		c.JSON(http.StatusBadRequest, errorResponse{Error: "unsupported or corrupt image"})

		return
	}

	r := classify.PredictImage(c.Request.Context(), img, s.options.ImageModel, s.options.ImageClasses)
	if r.NoInput() {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "empty image"})

		return
	}

	c.JSON(http.StatusOK, withAdvice(r))
}

type statusResponse struct {
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

func (s *Server) status(c *gin.Context) {
	if s.options.Status == nil {
		c.JSON(http.StatusOK, statusResponse{Status: "ok"})

		return
	}

	if err := s.options.Status.Ping(c.Request.Context()); err != nil {
		zap.L().Warn("open data portal unreachable", zap.Error(err))
		c.JSON(http.StatusServiceUnavailable, statusResponse{Status: "unavailable", Error: err.Error()})

		return
	}

	c.JSON(http.StatusOK, statusResponse{Status: "ok"})
}
