package controller

import (
	"time"

	"voice-agent-be/internal/constant"
	"voice-agent-be/internal/dto"
	"voice-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

type IHealthController interface {
	RegisterRoutes(r fiber.Router)
	Health(ctx *fiber.Ctx) error
}

type healthController struct {
	agentService service.IAgentService
}

func NewHealthController(agentService service.IAgentService) IHealthController {
	return &healthController{agentService: agentService}
}

func (c *healthController) RegisterRoutes(r fiber.Router) {
	r.Get("/health", c.Health)
}

func (c *healthController) Health(ctx *fiber.Ctx) error {
	return ctx.JSON(dto.HealthResponse{
		Status:    "healthy",
		Version:   constant.AppVersion,
		Timestamp: float64(time.Now().UnixMilli()) / 1000.0,
		Services:  c.agentService.ServiceStatus(),
	})
}
