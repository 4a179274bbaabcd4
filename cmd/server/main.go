package main

import (
	log "github.com/sirupsen/logrus"

	_ "taskboard/docs"
	"taskboard/internal/config"
	"taskboard/internal/server"
)

// @title           Team Kanban API
// @version         1.0
// @description     Team kanban board: tasks, comments, history, invitations and reports.

// @contact.name   octaview
// @contact.url    t.me/octaview
// @contact.email  octaviewes@gmail.com

// @host      localhost:8080
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @schemes http
func main() {
	cfg := config.Load()

	s, err := server.Init(cfg)
	if err != nil {
		log.Fatalf("❌ Server initialization failed: %v", err)
	}

	s.Run()
}
