package main

import (
	"log"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/api/handlers"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/api/middleware"
	"github.com/progate-hackathon-strawberry-flavor/GITRIS-judge/internal/config"
)

func main() {
	config.LoadEnv()
	cfg := config.Load()

	replayHandler := handlers.NewReplayHandler(cfg.ReplayDir, cfg.AllowedOrigins)

	r := mux.NewRouter()
	r.Use(middleware.CORSHandler(cfg.AllowedOrigins))
	// ゲームログの一覧、全フレーム取得、WebSocketでの再生
	replayHandler.RegisterRoutes(r)

	log.Printf("[Viewer] serving replays from %s", cfg.ReplayDir)
	log.Printf("Server starting on :%s", cfg.Port)
	log.Fatal(http.ListenAndServe(":"+cfg.Port, r))
}
