package main

import (
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/Parth482/Collaborative-Whiteboard/internal/api"
	"github.com/Parth482/Collaborative-Whiteboard/internal/config"
	"github.com/Parth482/Collaborative-Whiteboard/internal/db"
	"github.com/Parth482/Collaborative-Whiteboard/internal/presence"
	"github.com/Parth482/Collaborative-Whiteboard/internal/registry"
	"github.com/Parth482/Collaborative-Whiteboard/internal/sweeper"
	"github.com/Parth482/Collaborative-Whiteboard/internal/ws"
)

func main() {
	cfg := config.Load()

	database, err := db.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer database.Close()

	rooms := registry.New()
	cursors := presence.NewTracker(cfg.CursorTTL)

	hub := ws.NewHub(rooms, cursors, database)
	go hub.Run()

	sweep := sweeper.New(rooms, cursors, sweeper.Config{
		Interval: cfg.SweepInterval,
		RoomTTL:  cfg.RoomTTL,
	})
	sweep.Start()

	apiHandler := api.New(hub, database)

	// WebSocket endpoint
	http.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ws.ServeWs(hub, w, r)
	})

	http.HandleFunc("/health", apiHandler.HealthHandler)
	http.HandleFunc("/api/stats", apiHandler.StatsHandler)
	http.HandleFunc("/api/rooms", apiHandler.RoomsRouter)
	http.HandleFunc("/api/rooms/", apiHandler.RoomsRouter)

	// Apply CORS middleware
	handler := corsMiddleware(http.DefaultServeMux)

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		log.Println("Shutting down server...")
		sweep.Stop()
		database.Close()
		os.Exit(0)
	}()

	log.Printf("🎨 Whiteboard server starting on :%s", cfg.Port)
	log.Printf("📁 Database: %s", cfg.DBPath)
	log.Println("Endpoints:")
	log.Println("  - WebSocket: /ws")
	log.Println("  - Health:    GET /health")
	log.Println("  - Stats:     GET /api/stats")
	log.Println("  - Join:      POST /api/rooms/join")
	log.Println("  - Room:      GET /api/rooms/{id}")
	log.Println("  - Save:      POST /api/rooms/{id}/drawing")
	log.Println("  - Clear:     POST /api/rooms/{id}/clear")

	if err := http.ListenAndServe(":"+cfg.Port, handler); err != nil {
		log.Fatal("ListenAndServe: ", err)
	}
}

func corsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
