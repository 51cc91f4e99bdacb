// Package server exposes the pipeline over a small HTTP API.
package server

import (
	"encoding/base64"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/rechnungswerk/einvoice/internal/model"
	"github.com/rechnungswerk/einvoice/pkg/einvoice"
)

// Config holds server configuration.
type Config struct {
	Address      string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	Debug        bool
}

// Server represents the HTTP API server.
type Server struct {
	config    *Config
	router    *gin.Engine
	processor *einvoice.Processor
	logger    *zap.Logger
}

// NewServer creates an API server around an already-constructed processor.
func NewServer(config *Config, processor *einvoice.Processor, logger *zap.Logger) *Server {
	if !config.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	router := gin.New()
	router.Use(gin.Recovery())
	if config.Debug {
		router.Use(gin.Logger())
	}

	s := &Server{
		config:    config,
		router:    router,
		processor: processor,
		logger:    logger,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	s.router.GET("/health", s.handleHealth)

	v1 := s.router.Group("/api/v1")
	{
		v1.POST("/extract", s.handleExtract)
		v1.POST("/validate", s.handleValidate)
		v1.POST("/generate", s.handleGenerate)
		v1.POST("/export/datev", s.handleExportDATEV)
		v1.POST("/export/xlsx", s.handleExportXLSX)
		v1.POST("/draft", s.handleDraft)
	}
}

// Run starts the HTTP server.
func (s *Server) Run() error {
	srv := &http.Server{
		Addr:         s.config.Address,
		Handler:      s.router,
		ReadTimeout:  s.config.ReadTimeout,
		WriteTimeout: s.config.WriteTimeout,
	}
	return srv.ListenAndServe()
}

// Handler returns the http.Handler for use with custom servers.
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "ok",
		"validator": s.processor.ValidatorName(),
		"time":      time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleExtract(c *gin.Context) {
	body, ok := rawBody(c)
	if !ok {
		return
	}

	res, err := s.processor.Extract(body, c.Query("filename"))
	if err != nil {
		s.writeError(c, http.StatusUnprocessableEntity, err)
		return
	}

	c.JSON(http.StatusOK, ExtractResponse{
		Dialect: string(res.Dialect),
		Profile: string(res.Profile),
		Version: res.Version,
		Source:  res.Source,
		XML:     string(res.XML),
	})
}

func (s *Server) handleValidate(c *gin.Context) {
	body, ok := rawBody(c)
	if !ok {
		return
	}

	result, err := s.processor.Validate(c.Request.Context(), body, c.Query("filename"))
	if err != nil {
		status := http.StatusUnprocessableEntity
		if model.IsCode(err, model.ErrCodeValidationTimeout) {
			status = http.StatusGatewayTimeout
		} else if model.IsCode(err, model.ErrCodeToolUnavailable) {
			status = http.StatusServiceUnavailable
		}
		s.writeError(c, status, err)
		return
	}

	c.JSON(http.StatusOK, ValidateResponse{
		Valid:       result.Valid,
		Findings:    result.Findings,
		Profile:     string(result.Profile),
		Version:     result.Version,
		ToolVersion: result.ToolVersion,
		ElapsedMS:   result.Elapsed.Milliseconds(),
	})
}

func (s *Server) handleGenerate(c *gin.Context) {
	var req GenerateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.PDF {
		data, name, err := s.processor.GeneratePDF(req.Invoice, nil)
		if err != nil {
			s.writeError(c, http.StatusUnprocessableEntity, err)
			return
		}
		c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
		c.Data(http.StatusOK, "application/pdf", data)
		return
	}

	dialect := model.Dialect(req.Dialect)
	if dialect == "" {
		dialect = model.DialectCII
	}

	data, name, err := s.processor.Generate(req.Invoice, dialect)
	if err != nil {
		s.writeError(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="`+name+`"`)
	c.Data(http.StatusOK, "application/xml", data)
}

func (s *Server) handleExportDATEV(c *gin.Context) {
	inputs, ok := exportInputs(c)
	if !ok {
		return
	}

	data, err := s.processor.ExportDATEV(inputs)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if model.IsCode(err, model.ErrCodeInvalidExportInput) {
			status = http.StatusBadRequest
		}
		s.writeError(c, status, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="EXTF_Buchungsstapel.csv"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", data)
}

func (s *Server) handleExportXLSX(c *gin.Context) {
	inputs, ok := exportInputs(c)
	if !ok {
		return
	}

	data, err := s.processor.ExportWorkbook(inputs)
	if err != nil {
		s.writeError(c, http.StatusUnprocessableEntity, err)
		return
	}
	c.Header("Content-Disposition", `attachment; filename="buchungen.xlsx"`)
	c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
}

func (s *Server) handleDraft(c *gin.Context) {
	body, ok := rawBody(c)
	if !ok {
		return
	}

	// Accept base64 for clients that cannot post binary bodies.
	if decoded, err := base64.StdEncoding.DecodeString(string(body)); err == nil && len(decoded) > 4 && string(decoded[:4]) == "%PDF" {
		body = decoded
	}

	result, err := s.processor.DraftFromPDF(c.Request.Context(), body)
	if err != nil {
		status := http.StatusUnprocessableEntity
		if model.IsCode(err, model.ErrCodeToolUnavailable) {
			status = http.StatusServiceUnavailable
		}
		s.writeError(c, status, err)
		return
	}

	c.JSON(http.StatusOK, DraftResponse{
		Invoice:     result.Invoice,
		Confidence:  result.Confidence,
		Warnings:    result.Warnings,
		NeedsReview: result.NeedsReview,
	})
}

func rawBody(c *gin.Context) ([]byte, bool) {
	body, err := c.GetRawData()
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "failed to read request body"})
		return nil, false
	}
	if len(body) == 0 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "empty request body"})
		return nil, false
	}
	return body, true
}

func exportInputs(c *gin.Context) ([]einvoice.ExportInput, bool) {
	var req ExportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return nil, false
	}

	inputs := make([]einvoice.ExportInput, len(req.Invoices))
	for i, in := range req.Invoices {
		inputs[i] = einvoice.ExportInput{Invoice: in.Invoice, Valid: in.Valid}
	}
	return inputs, true
}

func (s *Server) writeError(c *gin.Context, status int, err error) {
	resp := ErrorResponse{Error: err.Error()}

	var perr *model.PipelineError
	if errors.As(err, &perr) {
		resp.Code = perr.Code
	}

	s.logger.Debug("request failed", zap.Int("status", status), zap.Error(err))
	c.JSON(status, resp)
}
