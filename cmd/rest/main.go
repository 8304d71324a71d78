package main

import (
	"context"
	"log"

	"voice-agent-be/internal/bootstrap"
	"voice-agent-be/internal/config"
	"voice-agent-be/internal/server"
	"voice-agent-be/internal/tracer"
)

func main() {
	// 0. Initialize Tracer (no-op unless OTEL_ENABLED=true)
	shutdownTracer := tracer.InitTracer()
	defer shutdownTracer(context.Background())

	// 1. Load Configuration
	cfg := config.Load()

	// 2. Bootstrap Dependencies (Container)
	container := bootstrap.NewContainer(cfg)

	// 3. Start Background Services
	go func() {
		log.Println("Background: Starting Monitor Service...")
		if err := container.MonitorService.Consume(context.Background()); err != nil {
			log.Printf("Background Monitor Error: %v", err)
		}
	}()

	// 4. Initialize Server
	srv := server.New(cfg, container)

	// 5. Run Server
	log.Fatal(srv.Run())
}
