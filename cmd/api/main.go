package main

import (
	"database/sql"
	"net/http"
	"os"

	"github.com/Shariar-hash/WheellWise/internal/config"
	"github.com/Shariar-hash/WheellWise/internal/feed"
	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/chat/send"
	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/event"
	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/job"
	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/mysql"
	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/room/create"
	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/room/join"
	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/room/options"
	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/room/snapshot"
	"github.com/Shariar-hash/WheellWise/internal/http-server/handlers/room/spin"
	"github.com/Shariar-hash/WheellWise/internal/http-server/middleware/logger"
	"github.com/Shariar-hash/WheellWise/internal/lib/logger/handler/slogpretty"
	"github.com/Shariar-hash/WheellWise/internal/lib/logger/sl"
	"github.com/Shariar-hash/WheellWise/internal/repository"
	"github.com/Shariar-hash/WheellWise/internal/room"
	"github.com/Shariar-hash/WheellWise/internal/wheel"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gorilla/websocket"
	"github.com/pusher/pusher-http-go/v5"
	"golang.org/x/exp/slog"
)

const (
	envLocal = "local"
	envDev   = "dev"
	envProd  = "prod"
)

func main() {
	cfg := config.MustLoad()

	log := setupLogger(cfg.Env)

	log.Info("Starting server...", slog.String("env", cfg.Env))
	log.Debug("debug messages are enabled")

	db, err := sql.Open("mysql", cfg.StorageDSN)
	if err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	if err = db.Ping(); err != nil {
		log.Error("Failed to init storage", sl.Err(err))
		os.Exit(1)
	}

	handler := mysql.New(db)

	roomRepo := repository.NewRoomRepository(*handler)
	chatRepo := repository.NewChatRepository(*handler)
	spinEventRepo := repository.NewSpinEventRepository(*handler)

	queue := job.NewQueue(128)
	job.NewWorkerPool(4, queue).Start()

	broker := feed.NewBroker(log)
	publisher := setupPublisher(cfg, log, broker)

	coordinator := room.NewCoordinator(log, roomRepo, spinEventRepo, publisher, queue,
		wheel.NewRandomSource(), cfg.Spin)

	createRoom := create.New(log, roomRepo)
	joinRoom := join.New(log, roomRepo)
	spinRoom := spin.New(log, roomRepo, coordinator)
	updateOptions := options.New(log, roomRepo, publisher)
	roomSnapshot := snapshot.New(log, roomRepo, chatRepo, cfg.Feed)
	sendMessage := send.New(log, roomRepo, chatRepo, publisher)

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(logger.New(log))
	router.Use(middleware.Recoverer)
	router.Use(middleware.URLFormat)

	router.Post("/room/create", createRoom.New())
	router.Post("/room/join", joinRoom.New())
	router.Get("/room/{code}", roomSnapshot.New())
	router.Post("/room/{code}/spin", spinRoom.New())
	router.Put("/room/{code}/options", updateOptions.New())
	router.Post("/room/{code}/message", sendMessage.New())

	log.Info("Server started", slog.String("address", cfg.HTTPServer.Address))

	srv := &http.Server{
		Addr:         cfg.HTTPServer.Address,
		Handler:      router,
		ReadTimeout:  cfg.HTTPServer.Timeout,
		WriteTimeout: cfg.HTTPServer.Timeout,
		IdleTimeout:  cfg.HTTPServer.IdleTimeout,
	}

	if err = srv.ListenAndServe(); err != nil {
		log.Error("Server failed", sl.Err(err))
	}

	log.Error("Server stopped")
}

// setupPublisher picks the push transport once at startup: Pusher when
// credentials are configured, otherwise the self-hosted ws relay. The
// in-process broker is always included so local subscribers stay in
// sync even with no external transport at all.
func setupPublisher(cfg *config.Config, log *slog.Logger, broker *feed.Broker) feed.Publisher {
	if cfg.Pusher.AppID != "" {
		client := &pusher.Client{
			AppID:   cfg.Pusher.AppID,
			Key:     cfg.Pusher.Key,
			Secret:  cfg.Pusher.Secret,
			Cluster: cfg.Pusher.Cluster,
		}

		return feed.MultiPublisher(broker, event.NewPusherEvent(log, client))
	}

	conn, _, err := websocket.DefaultDialer.Dial("ws://"+cfg.WSServer.Address+"/ws", nil)
	if err != nil {
		log.Warn("ws relay unavailable, running with in-process push only", sl.Err(err))

		return broker
	}

	return feed.MultiPublisher(broker, event.NewWSEvent(log, conn))
}

func setupLogger(env string) *slog.Logger {
	var log *slog.Logger

	switch env {
	case envLocal:
		log = setupPrettySlogLogger()
	case envDev:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))
	case envProd:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	default:
		log = slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	}

	return log
}

func setupPrettySlogLogger() *slog.Logger {
	opts := slogpretty.PrettyHandlerOptions{
		SlogOpts: &slog.HandlerOptions{
			Level: slog.LevelDebug,
		},
	}

	handler := opts.NewPrettyHandler(os.Stdout)

	return slog.New(handler)
}
