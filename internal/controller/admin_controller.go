package controller

import (
	"fmt"

	"voice-agent-be/internal/adapter"
	"voice-agent-be/internal/constant"
	"voice-agent-be/internal/dto"
	"voice-agent-be/internal/pkg/serverutils"
	"voice-agent-be/internal/service"

	"github.com/gofiber/fiber/v2"
)

// IAdminController exposes the outage-simulation surface: an operator can
// disable any upstream provider to watch the pipeline degrade, then restore it.
type IAdminController interface {
	RegisterRoutes(r fiber.Router)
	SimulateError(ctx *fiber.Ctx) error
	ErrorStatus(ctx *fiber.Ctx) error
	ServiceStatus(ctx *fiber.Ctx) error
}

type adminController struct {
	agentService service.IAgentService
}

func NewAdminController(agentService service.IAgentService) IAdminController {
	return &adminController{agentService: agentService}
}

func (c *adminController) RegisterRoutes(r fiber.Router) {
	h := r.Group("/admin")
	h.Post("/simulate-error/:service", c.SimulateError)
	h.Get("/error-status", c.ErrorStatus)
	h.Get("/service-status", c.ServiceStatus)
}

func (c *adminController) SimulateError(ctx *fiber.Ctx) error {
	req := dto.ErrorSimulationRequest{
		Service: ctx.Params("service"),
		Action:  ctx.Query("action", "disable"),
	}
	if err := serverutils.ValidateRequest(req); err != nil {
		return err
	}
	enabled := req.Action == "enable"

	if err := c.agentService.SetAvailability(ctx.UserContext(), req.Service, enabled); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	affected := []string{req.Service}
	if req.Service == adapter.ServiceAll {
		affected = []string{adapter.ServiceSTT, adapter.ServiceLLM, adapter.ServiceTTS}
	}

	res := dto.ErrorSimulationResponse{ErrorType: req.Service}
	if enabled {
		res.Message = fmt.Sprintf(constant.AdminRestoredMessage, req.Service)
		res.ApisRestored = affected
	} else {
		res.Message = fmt.Sprintf(constant.AdminDisabledMessage, req.Service)
		res.ApisDisabled = affected
	}
	return ctx.JSON(serverutils.SuccessResponse("Availability updated", res))
}

func (c *adminController) ErrorStatus(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Error simulation status", c.agentService.ErrorStatus()))
}

func (c *adminController) ServiceStatus(ctx *fiber.Ctx) error {
	return ctx.JSON(serverutils.SuccessResponse("Service status", c.agentService.ServiceStatus()))
}
