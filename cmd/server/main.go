// Command server exposes the ASR pipeline's control surface over HTTP:
// checking and validating models, starting and stopping a recognition
// session, and streaming emitted Subtitle events as newline-delimited
// JSON to whichever UI collaborator is listening. It does not download
// models.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"asrstream/internal/config"
	"asrstream/internal/frontend"
	"asrstream/internal/orchestrator"
	"asrstream/internal/paraformer"
	"asrstream/internal/sensevoice"
	"asrstream/internal/storage"
	"asrstream/internal/token"
	"asrstream/internal/vad"
	"asrstream/internal/version"
)

// server bundles the long-lived state a running recognition session
// needs across requests: only one session runs at a time, guarded by mu.
type server struct {
	mu     sync.Mutex
	cfg    config.Config
	engine *orchestrator.Engine
	cancel context.CancelFunc
}

func main() {
	_ = godotenv.Load()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	modelDir := os.Getenv("ASRSTREAM_MODEL_DIR")
	if modelDir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal(err)
		}
		modelDir = filepath.Join(home, ".asrstream", "models")
	}

	dbPath := os.Getenv("ASRSTREAM_DB_PATH")
	if dbPath == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			log.Fatal(err)
		}
		dbPath = filepath.Join(home, ".asrstream", "transcripts.db")
	}

	db, err := storage.Open(dbPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer db.Close()
	log.Printf("Database initialized at %s", dbPath)

	srv := &server{
		cfg: config.Config{ModelDir: modelDir, Language: "auto"},
	}
	transcripts := storage.NewTranscriptRepository(db)

	e := echo.New()
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok", "version": version.Version})
	})
	e.GET("/models_exists", srv.modelsExistsHandler)
	e.POST("/init", srv.initHandler)
	e.POST("/start_speech_recognition", srv.startHandler(transcripts))
	e.POST("/stop_speech_recognition", srv.stopHandler)
	e.GET("/subtitles", srv.subtitlesHandler)
	e.GET("/transcripts", srv.transcriptsHandler(transcripts))

	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh
		log.Println("Shutting down...")
		srv.stopEngine()
		e.Close()
	}()

	log.Printf("Starting asrstream v%s on port %s", version.Version, port)
	if err := e.Start(fmt.Sprintf(":%s", port)); err != nil {
		log.Println("Server stopped")
	}
}

func (s *server) modelsExistsHandler(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]bool{"exists": s.cfg.ModelsExist()})
}

func (s *server) initHandler(c echo.Context) error {
	if err := s.cfg.Validate(); err != nil {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (s *server) startHandler(transcripts *storage.TranscriptRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		s.mu.Lock()
		defer s.mu.Unlock()
		if s.engine != nil {
			return c.JSON(http.StatusConflict, map[string]string{"error": "recognition already running"})
		}
		if err := s.cfg.Validate(); err != nil {
			return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
		}

		engine, err := buildEngine(s.cfg, transcripts)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		if err := engine.StartCapture(nil, 16000); err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}

		ctx, cancel := context.WithCancel(context.Background())
		s.engine = engine
		s.cancel = cancel
		go func() {
			if err := engine.Run(ctx); err != nil {
				log.Printf("recognition loop stopped: %v", err)
			}
		}()

		return c.JSON(http.StatusOK, map[string]string{"status": "started"})
	}
}

func (s *server) stopHandler(c echo.Context) error {
	s.stopEngine()
	return c.JSON(http.StatusOK, map[string]string{"status": "stopped"})
}

func (s *server) stopEngine() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.engine == nil {
		return
	}
	s.engine.Stop()
	s.cancel()
	s.engine = nil
}

// subtitlesHandler streams emitted Subtitle events as newline-delimited
// JSON over a chunked response, the echo-idiomatic analogue of the
// original's Tauri event channel.
func (s *server) subtitlesHandler(c echo.Context) error {
	s.mu.Lock()
	engine := s.engine
	s.mu.Unlock()
	if engine == nil {
		return c.JSON(http.StatusConflict, map[string]string{"error": "recognition not running"})
	}

	c.Response().Header().Set(echo.HeaderContentType, "application/x-ndjson")
	c.Response().WriteHeader(http.StatusOK)
	enc := json.NewEncoder(c.Response())

	for {
		select {
		case sub, ok := <-engine.Subtitles:
			if !ok {
				return nil
			}
			if err := enc.Encode(map[string]string{"kind": sub.Kind.String(), "text": sub.Text}); err != nil {
				return nil
			}
			c.Response().Flush()
		case <-c.Request().Context().Done():
			return nil
		}
	}
}

func (s *server) transcriptsHandler(transcripts *storage.TranscriptRepository) echo.HandlerFunc {
	return func(c echo.Context) error {
		recent, err := transcripts.Recent(c.Request().Context(), 50)
		if err != nil {
			return c.JSON(http.StatusInternalServerError, map[string]string{"error": err.Error()})
		}
		return c.JSON(http.StatusOK, recent)
	}
}

func buildEngine(cfg config.Config, transcripts *storage.TranscriptRepository) (*orchestrator.Engine, error) {
	vadCMVN, err := frontend.LoadCMVN(cfg.Path(config.VADCMVNFile))
	if err != nil {
		return nil, err
	}
	paraformerCMVN, err := frontend.LoadCMVN(cfg.Path(config.ParaformerCMVNFile))
	if err != nil {
		return nil, err
	}
	senseVoiceCMVN, err := frontend.LoadCMVN(cfg.Path(config.SenseVoiceCMVNFile))
	if err != nil {
		return nil, err
	}

	vadModel, err := vad.NewRecognizer(cfg.Path(config.VADModel), vadCMVN)
	if err != nil {
		return nil, err
	}

	paraformerTokens, err := token.ReadTokens(cfg.Path(config.ParaformerTokens))
	if err != nil {
		return nil, err
	}
	pf, err := paraformer.NewRecognizer(cfg.Path(config.ParaformerEncoder), cfg.Path(config.ParaformerDecoder), paraformerCMVN, paraformerTokens)
	if err != nil {
		return nil, err
	}

	senseVoiceTokens, err := token.ReadTokens(cfg.Path(config.SenseVoiceTokens))
	if err != nil {
		return nil, err
	}
	lang, _ := sensevoice.ParseLanguage(cfg.Language)
	sv, err := sensevoice.NewRecognizer(cfg.Path(config.SenseVoiceModel), senseVoiceCMVN, senseVoiceTokens, lang)
	if err != nil {
		return nil, err
	}

	return orchestrator.New(cfg, vadModel, pf, sv, transcripts), nil
}
