package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/maxxlamenaace/roomio-be/internal/api"
	"github.com/maxxlamenaace/roomio-be/internal/config"
	"github.com/maxxlamenaace/roomio-be/internal/database"
	"github.com/maxxlamenaace/roomio-be/internal/logger"
	"github.com/maxxlamenaace/roomio-be/internal/monitoring"
	"github.com/maxxlamenaace/roomio-be/internal/services"
	"github.com/maxxlamenaace/roomio-be/internal/websocket"
)

func main() {
	logger.Init()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Set up database
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	if err := database.Migrate(db); err != nil {
		log.Fatalf("Failed to apply database migrations: %v", err)
	}

	// Set up WebSocket Hub
	hub := websocket.NewHub()
	go hub.Run()

	// Set up services
	userService := services.NewUserService(db)
	topicService := services.NewTopicService(db)
	roomService := services.NewRoomService(db, topicService)
	messageService := services.NewMessageService(db)
	eventService := services.NewEventService(db)

	// Set up and run the background stats updater
	statUpdater := monitoring.NewStatUpdater(db, hub)
	go statUpdater.Run()

	// Set up and run the background activity pruner
	scheduler, err := monitoring.NewScheduler(eventService, cfg.PruneSchedule, cfg.PruneMaxAge)
	if err != nil {
		log.Fatalf("Failed to initialize scheduler: %v", err)
	}
	go scheduler.Run()

	// Set up router
	router := api.NewRouter(hub, userService, topicService, roomService, messageService, eventService)

	// Set up server
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.ServerPort),
		Handler: router,
	}

	// Graceful shutdown
	go func() {
		log.Printf("Server starting on port %d\n", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != http.ErrServerClosed {
			log.Fatalf("ListenAndServe(): %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	statUpdater.Stop()
	scheduler.Stop()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exiting")
}
