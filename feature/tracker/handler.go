package tracker

import (
	"invest-tracker/core/logger"
	"invest-tracker/feature/ledger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// Handler exposes the reconcile trigger and read-only ledger endpoints.
type Handler struct {
	engine   *Engine
	store    ledger.Store
	archiver *Archiver // nil when archiving is disabled
	log      *zap.Logger
}

// NewHandler creates a new HTTP handler.
func NewHandler(engine *Engine, store ledger.Store, archiver *Archiver, log *zap.Logger) *Handler {
	return &Handler{engine: engine, store: store, archiver: archiver, log: log}
}

// RegisterRoutes registers the tracker routes.
func (h *Handler) RegisterRoutes(app fiber.Router) {
	app.Post("/reconcile", h.HandleReconcile)
	app.Get("/ledgers", h.HandleListLedgers)
	app.Get("/ledgers/:asset", h.HandleGetLedger)
}

// HandleReconcile triggers one reconciliation cycle and returns its report.
func (h *Handler) HandleReconcile(c *fiber.Ctx) error {
	l := logger.WithRayID(h.log, c)
	l.Info("Reconcile cycle triggered")

	report, err := h.engine.RunCycle(c.Context())
	if err != nil {
		l.Error("Cycle failed", zap.Error(err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error":  err.Error(),
			"report": report,
		})
	}

	if h.archiver != nil {
		if archiveErr := h.archiver.Archive(c.Context(), report); archiveErr != nil {
			// The cycle itself succeeded; a failed archive only gets logged.
			l.Error("Report archive failed", zap.Error(archiveErr))
		}
	}

	return c.JSON(report)
}

// HandleListLedgers returns every stored ledger.
func (h *Handler) HandleListLedgers(c *fiber.Ctx) error {
	ledgers, err := h.store.List(c.Context())
	if err != nil {
		logger.WithRayID(h.log, c).Error("Listing ledgers failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	return c.JSON(fiber.Map{"ledgers": ledgerViews(ledgers)})
}

// HandleGetLedger returns one asset's ledger with its full history.
func (h *Handler) HandleGetLedger(c *fiber.Ctx) error {
	asset := c.Params("asset")

	l, err := h.store.Get(c.Context(), asset)
	if err != nil {
		logger.WithRayID(h.log, c).Error("Ledger lookup failed",
			zap.String("asset", asset), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
	if l == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no ledger for asset " + asset,
		})
	}

	return c.JSON(ledgerView(l))
}

// ledgerView is the JSON shape of a ledger on the read endpoints.
func ledgerView(l *ledger.Ledger) fiber.Map {
	return fiber.Map{
		"asset":     l.Asset,
		"available": l.Available.String(),
		"average":   l.Average.String(),
		"history":   l.History.Entries,
	}
}

func ledgerViews(ledgers []*ledger.Ledger) []fiber.Map {
	views := make([]fiber.Map, 0, len(ledgers))
	for _, l := range ledgers {
		views = append(views, ledgerView(l))
	}
	return views
}
