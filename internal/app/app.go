package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"digitcam/internal/config"
	"digitcam/internal/logger"
	"digitcam/internal/repository/sqlite"
	"digitcam/internal/route"
	"digitcam/internal/service"
	"digitcam/internal/service/ai"
	"digitcam/internal/service/ai/dnn"
	"digitcam/internal/service/ai/tflite"
	"digitcam/internal/service/camera"
	"digitcam/internal/service/camera/still"
	"digitcam/internal/service/camera/webcam"
	"digitcam/internal/service/emitter"
	"digitcam/internal/service/storage"
	"digitcam/internal/service/websocket"
)

const shutdownTimeout = 5 * time.Second

type App struct {
	config     *config.Config
	logger     *logger.Logger
	db         *sqlite.DB
	source     camera.Source
	classifier *ai.Classifier
	buffer     *storage.BufferService
	hub        *websocket.HubService
	mqtt       *emitter.MQTTEmitter
	scheduler  *service.Scheduler
	handler    http.Handler
}

func NewApp() (*App, error) {
	cfg := config.Load()
	log := logger.NewLogger(cfg)

	if err := os.MkdirAll(cfg.DataDirectory, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	classifier, err := loadClassifier(cfg)
	if err != nil {
		return nil, err
	}

	source, err := openSource(cfg)
	if err != nil {
		classifier.Close()
		return nil, err
	}

	db, err := openDatabase(cfg.DatabasePath)
	if err != nil {
		source.Close()
		classifier.Close()
		return nil, err
	}
	resultRepo := sqlite.NewResultRepository(db)

	buffer := storage.NewBufferService(resultRepo, log)
	hub := websocket.NewHubService(log)
	recorder := service.NewResultRecorder(storage.NewResultLog(cfg.ResultLogPath), log, buffer, hub)

	var mqtt *emitter.MQTTEmitter
	if cfg.MQTTBroker != "" {
		mqtt = emitter.NewMQTTEmitter(cfg.MQTTBroker, cfg.MQTTClientID, cfg.MQTTTopic, log)
		if err := mqtt.Connect(); err != nil {
			// Results still go to the log; the client keeps retrying in the background.
			log.Warning("MQTT broker unavailable: %v", err)
		}
		recorder.AddSink(mqtt)
	}

	frameWidth, frameHeight := frameGeometry(cfg, source, log)
	store := storage.NewConfigStore(cfg.RegionsPath, log)
	regions := service.NewRegionSet(store.Load(), store, frameWidth, frameHeight, log)
	log.Info("Loaded %d rectangles from %s", len(regions.Current()), cfg.RegionsPath)

	scheduler := service.NewScheduler(source, service.NewBatchClassifier(classifier), regions, recorder,
		service.SystemClock{}, log, cfg.QueueTimeout, cfg.BackgroundPeriod)

	router := route.SetupRoutes(cfg, log, scheduler, regions, recorder, resultRepo, hub, buffer)

	return &App{
		config:     cfg,
		logger:     log,
		db:         db,
		source:     source,
		classifier: classifier,
		buffer:     buffer,
		hub:        hub,
		mqtt:       mqtt,
		scheduler:  scheduler,
		handler:    router,
	}, nil
}

// Run serves HTTP and the background services until SIGINT/SIGTERM.
func (a *App) Run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go a.buffer.Run(ctx)
	go a.hub.Run(ctx)

	dispatchDone := make(chan struct{})
	go func() {
		a.scheduler.Run(ctx)
		close(dispatchDone)
	}()

	server := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.config.Port),
		Handler: a.handler,
	}

	a.logger.Info("Digit camera server listening on http://localhost:%d", a.config.Port)
	a.logger.Info("Engine: %s, model: %s", a.config.Engine, a.config.ModelPath)
	a.logger.Info("Camera: %s (%s)", a.config.CameraSource, a.config.CameraMode)

	serveErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var err error
	select {
	case <-ctx.Done():
		a.logger.Info("Shutting down")
	case err = <-serveErr:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if shutdownErr := server.Shutdown(shutdownCtx); shutdownErr != nil {
		a.logger.Error("HTTP shutdown: %v", shutdownErr)
	}

	a.scheduler.Close()
	<-dispatchDone
	a.close()
	return err
}

func (a *App) close() {
	a.buffer.Flush()
	if a.mqtt != nil {
		a.mqtt.Disconnect()
	}
	if err := a.source.Close(); err != nil {
		a.logger.Error("Failed to close camera: %v", err)
	}
	if err := a.classifier.Close(); err != nil {
		a.logger.Error("Failed to close model: %v", err)
	}
	if err := a.db.Close(); err != nil {
		a.logger.Error("Failed to close database: %v", err)
	}
}

// openDatabase creates the database directory and opens the result history.
func openDatabase(path string) (*sqlite.DB, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}
	return sqlite.New(path)
}

// loadClassifier opens the configured inference engine.
func loadClassifier(cfg *config.Config) (*ai.Classifier, error) {
	var engine ai.Engine
	switch cfg.Engine {
	case "dnn":
		e, err := dnn.Load(cfg.ModelPath, cfg.ModelConfigPath)
		if err != nil {
			return nil, err
		}
		engine = e
	case "tflite", "":
		e, err := tflite.Load(cfg.ModelPath, cfg.NumThreads)
		if err != nil {
			return nil, err
		}
		engine = e
	default:
		return nil, fmt.Errorf("unknown engine %q", cfg.Engine)
	}

	classifier, err := ai.NewClassifier(engine)
	if err != nil {
		engine.Close()
		return nil, err
	}
	return classifier, nil
}

// openSource opens the configured frame source.
func openSource(cfg *config.Config) (camera.Source, error) {
	switch cfg.CameraMode {
	case "still":
		return still.Open(cfg.CameraSource)
	case "webcam", "":
		return webcam.Open(cfg.CameraSource, cfg.FrameWidth, cfg.FrameHeight)
	default:
		return nil, fmt.Errorf("unknown camera mode %q", cfg.CameraMode)
	}
}

// frameGeometry returns the configured frame size, probing the source once
// when it is not configured. 0×0 disables the bounds check on uploads.
func frameGeometry(cfg *config.Config, source camera.Source, log *logger.Logger) (int, int) {
	if cfg.FrameWidth > 0 && cfg.FrameHeight > 0 {
		return cfg.FrameWidth, cfg.FrameHeight
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	frame, err := source.Acquire(ctx)
	if err != nil {
		log.Warning("Could not probe frame size, uploaded rectangles are not bounds-checked: %v", err)
		return 0, 0
	}
	defer source.Release(frame)
	log.Info("Frame size %dx%d", frame.Width, frame.Height)
	return frame.Width, frame.Height
}
