package bootstrap

import (
	"log"
	"os"
	"time"

	"voice-agent-be/internal/adapter"
	"voice-agent-be/internal/config"
	"voice-agent-be/internal/controller"
	"voice-agent-be/internal/handler"
	"voice-agent-be/internal/pkg/logger"
	"voice-agent-be/internal/repository/memory"
	"voice-agent-be/internal/service"
	"voice-agent-be/internal/websocket"
	"voice-agent-be/pkg/llm/factory"
	"voice-agent-be/pkg/speech/stt/assemblyai"
	"voice-agent-be/pkg/speech/tts/murf"

	pktNats "voice-agent-be/pkg/nats"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
)

type Container struct {
	// Controllers
	AgentController  controller.IAgentController
	AdminController  controller.IAdminController
	HealthController controller.IHealthController

	// Background Services (Exposed for main.go to run)
	MonitorService service.IMonitorService

	// WebSockets
	MonitorHandler *handler.MonitorHandler
	WebSocketHub   *websocket.Hub

	Logger logger.ILogger
}

func NewContainer(cfg *config.Config) *Container {
	// 1. Core Facades
	sysLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")

	for _, warning := range cfg.Warnings() {
		log.Printf("[WARN] %s", warning)
	}
	if err := os.MkdirAll(cfg.App.UploadsDir, 0o755); err != nil {
		log.Printf("[WARN] Failed to create uploads directory %s: %v", cfg.App.UploadsDir, err)
	}

	// 2. Event Bus
	watermillLogger := watermill.NewStdLogger(false, false)
	pubSub := gochannel.NewGoChannel(
		gochannel.Config{},
		watermillLogger,
	)

	// NATS mirror is optional: the bus stays in-process when no URL is set
	var natsPub *pktNats.Publisher
	if cfg.App.NatsURL != "" {
		pub, err := pktNats.NewPublisher(cfg.App.NatsURL)
		if err != nil {
			log.Printf("[WARN] Failed to connect to NATS Publisher: %v", err)
		} else {
			natsPub = pub
		}
	}

	// 3. Providers
	llmProvider, err := factory.NewLLMProvider(
		cfg.Ai.LLMProvider,
		cfg.Ai.LLMModel,
		cfg.Ai.OllamaBaseURL,
		llmAPIKey(cfg),
		time.Duration(cfg.Agent.APITimeoutSeconds)*time.Second,
	)
	if err != nil {
		log.Fatalf("[FATAL] Failed to initialize LLM Provider: %v", err)
	}
	log.Printf("[INFO] Using LLM Provider: %s (%s)", cfg.Ai.LLMProvider, cfg.Ai.LLMModel)

	sttProvider := assemblyai.New(cfg.Keys.AssemblyAI)
	ttsProvider := murf.New(cfg.Keys.Murf)

	// 4. Adapters
	flags := adapter.NewAvailabilityFlags()
	heuristic := adapter.NewHeuristicResponder()

	transcriptionAdapter := adapter.NewTranscriptionAdapter(
		flags,
		sttProvider,
		time.Duration(cfg.Agent.STTTimeoutSeconds)*time.Second,
		sysLogger,
	)
	responseAdapter := adapter.NewResponseAdapter(
		flags,
		llmProvider,
		heuristic,
		cfg.Agent.MaxTextLength,
		cfg.Agent.MaxConversationHistory,
		time.Duration(cfg.Agent.APITimeoutSeconds)*time.Second,
		sysLogger,
	)
	synthesisAdapter := adapter.NewSynthesisAdapter(
		flags,
		ttsProvider,
		cfg.Agent.MaxTextLength,
		cfg.Agent.VoiceID,
		cfg.Agent.VoiceStyle,
		time.Duration(cfg.Agent.TTSTimeoutSeconds)*time.Second,
		sysLogger,
	)

	// 5. Session Storage
	sessionRepo := memory.NewSessionRepository(time.Duration(cfg.Agent.SessionTTLMinutes) * time.Minute)

	// 6. WebSocket Hub
	wsLogger := logger.NewIsolatedLogger("logs/monitor.log")
	wsHub := websocket.NewHub(wsLogger)
	go wsHub.Run()

	// 7. Services
	publisherService := service.NewPublisherService(cfg.Agent.ExchangeTopic, pubSub)
	monitorService := service.NewMonitorService(pubSub, cfg.Agent.ExchangeTopic, wsHub)
	conversationService := service.NewConversationService(sessionRepo, sysLogger)

	agentService := service.NewAgentService(
		conversationService,
		transcriptionAdapter,
		responseAdapter,
		synthesisAdapter,
		flags,
		cfg,
		publisherService,
		natsPub,
		sysLogger,
	)

	// 8. Controllers
	agentController := controller.NewAgentController(
		agentService,
		conversationService,
		cfg.App.UploadsDir,
		cfg.Agent.MaxUploadSizeMB,
		sysLogger,
	)
	adminController := controller.NewAdminController(agentService)
	healthController := controller.NewHealthController(agentService)
	monitorHandler := handler.NewMonitorHandler(wsHub, cfg.App.UploadsDir, wsLogger)

	return &Container{
		AgentController:  agentController,
		AdminController:  adminController,
		HealthController: healthController,
		MonitorService:   monitorService,
		MonitorHandler:   monitorHandler,
		WebSocketHub:     wsHub,
		Logger:           sysLogger,
	}
}

// llmAPIKey picks the key matching the configured backend. Ollama is local
// and needs none.
func llmAPIKey(cfg *config.Config) string {
	switch cfg.Ai.LLMProvider {
	case "openai":
		return cfg.Keys.OpenAI
	case "ollama":
		return ""
	default:
		return cfg.Keys.GoogleGemini
	}
}
