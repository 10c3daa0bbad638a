package api

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/kabudata/tachibana-adapter/internal/poller"
	"github.com/kabudata/tachibana-adapter/internal/store"
)

// Handler serves the operational HTTP surface: liveness, loop status and the
// cached latest quote per issue.
type Handler struct {
	Logger *zap.Logger
	Store  store.Store
	Poller *poller.Poller
}

func (h *Handler) Register(app *fiber.App) {
	app.Get("/healthz", h.health)
	app.Get("/status", h.status)
	app.Get("/quotes/:code", h.latestQuote)
}

func (h *Handler) health(c *fiber.Ctx) error {
	if err := h.Store.HealthCheck(c.Context()); err != nil {
		h.Logger.Warn("api.health_check_failed", zap.Error(err))
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "unhealthy",
			"error":  err.Error(),
		})
	}
	return c.JSON(fiber.Map{"status": "ok"})
}

func (h *Handler) status(c *fiber.Ctx) error {
	cycles, errs, rows := h.Poller.Counts()
	return c.JSON(fiber.Map{
		"state":  h.Poller.State().String(),
		"cycles": cycles,
		"errors": errs,
		"rows":   rows,
	})
}

func (h *Handler) latestQuote(c *fiber.Ctx) error {
	code := c.Params("code")
	snap, err := h.Store.LatestSnapshot(c.Context(), code)
	if err != nil {
		if errors.Is(err, store.ErrCacheDisabled) {
			return c.Status(fiber.StatusNotImplemented).JSON(fiber.Map{"error": "quote cache disabled"})
		}
		h.Logger.Warn("api.latest_quote_failed", zap.String("code", code), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "lookup failed"})
	}
	if snap == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "no quote for " + code})
	}
	return c.JSON(snap)
}
