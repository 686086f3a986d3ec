package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/jinford/drive-rag/internal/core/ask"
	"github.com/jinford/drive-rag/internal/core/ingestion"
)

const shutdownTimeout = 10 * time.Second

// Processor はファイル取り込み処理のインターフェース
type Processor interface {
	ProcessFile(ctx context.Context, fileName string) (*ingestion.ProcessResult, error)
}

// Asker は質問応答処理のインターフェース
type Asker interface {
	Ask(ctx context.Context, params ask.AskParams) (*ask.AskResult, error)
}

// Server はHTTP APIサーバー
type Server struct {
	processor Processor
	asker     Asker
	logger    *slog.Logger
	engine    *gin.Engine
}

type serverOptions struct {
	logger *slog.Logger
}

// ServerOption は Server のオプション設定
type ServerOption func(*serverOptions)

// WithServerLogger は Server にロガーを設定する
func WithServerLogger(logger *slog.Logger) ServerOption {
	return func(o *serverOptions) {
		o.logger = logger
	}
}

// New は新しい Server を作成する
func New(processor Processor, asker Asker, opts ...ServerOption) *Server {
	options := serverOptions{
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(&options)
	}
	if options.logger == nil {
		options.logger = slog.Default()
	}

	s := &Server{
		processor: processor,
		asker:     asker,
		logger:    options.logger,
	}

	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery())

	api := engine.Group("/api")
	api.POST("/process", s.handleProcess)
	api.POST("/query", s.handleQuery)
	engine.GET("/health", s.handleHealth)

	s.engine = engine
	return s
}

// Handler はHTTPハンドラを返す（テスト用）
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run はサーバーを起動し、ctxのキャンセルでグレースフルに停止する
func (s *Server) Run(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: s.engine,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("HTTPサーバーを起動", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server error: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("HTTPサーバーを停止します")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}

	return nil
}

// processRequest は POST /api/process のリクエストボディ
type processRequest struct {
	FileName string `json:"file_name" binding:"required"`
}

// processResponse は POST /api/process のレスポンス
type processResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

func (s *Server) handleProcess(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file_name is required"})
		return
	}

	result, err := s.processor.ProcessFile(c.Request.Context(), req.FileName)
	if err != nil {
		s.logger.Error("ファイル取り込みに失敗", "fileName", req.FileName, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to process file"})
		return
	}

	if !result.Indexed {
		c.JSON(http.StatusOK, processResponse{
			Success: false,
			Message: fmt.Sprintf("ファイル '%s' は見つからないか、テキストを抽出できませんでした", req.FileName),
		})
		return
	}

	c.JSON(http.StatusOK, processResponse{
		Success: true,
		Message: fmt.Sprintf("ファイル '%s' を %d チャンクとして保存しました", result.FileName, result.ChunkCount),
	})
}

// queryRequest は POST /api/query のリクエストボディ
type queryRequest struct {
	Query string `json:"query" binding:"required"`
	Limit int    `json:"limit"`
}

// queryResponse は POST /api/query のレスポンス
type queryResponse struct {
	Answer         string            `json:"answer"`
	ThoughtProcess []string          `json:"thought_process"`
	EnoughContext  bool              `json:"enough_context"`
	Sources        []sourceReference `json:"sources"`
}

type sourceReference struct {
	FileName   string  `json:"file_name"`
	FileID     string  `json:"file_id"`
	ChunkIndex int     `json:"chunk_index"`
	Score      float64 `json:"score"`
}

func (s *Server) handleQuery(c *gin.Context) {
	var req queryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query is required"})
		return
	}

	result, err := s.asker.Ask(c.Request.Context(), ask.AskParams{
		Query: req.Query,
		Limit: req.Limit,
	})
	if err != nil {
		s.logger.Error("質問応答に失敗", "query", req.Query, "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to answer query"})
		return
	}

	sources := make([]sourceReference, 0, len(result.Sources))
	for _, src := range result.Sources {
		sources = append(sources, sourceReference{
			FileName:   src.FileName,
			FileID:     src.FileID,
			ChunkIndex: src.ChunkIndex,
			Score:      src.Score,
		})
	}

	c.JSON(http.StatusOK, queryResponse{
		Answer:         result.Response.Answer,
		ThoughtProcess: result.Response.ThoughtProcess,
		EnoughContext:  result.Response.EnoughContext,
		Sources:        sources,
	})
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
