package handlers

import (
	"bufio"

	"github.com/gofiber/fiber/v2"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/spec-kit/field-report-service/internal/service"
	"github.com/spec-kit/field-report-service/internal/stream"
)

// StreamHandler promotes admin connections onto the live report feed.
type StreamHandler struct {
	hub     *stream.Hub
	reports *service.ReportService
	logger  *zap.Logger
}

// NewStreamHandler constructs handler.
func NewStreamHandler(hub *stream.Hub, reportService *service.ReportService, logger *zap.Logger) *StreamHandler {
	return &StreamHandler{hub: hub, reports: reportService, logger: logger}
}

// Stream handles GET /api/admin/reports/stream. Authorization has already run
// in the route chain; from here the connection belongs to the stream session
// until the client disconnects. The session must not capture the fiber
// context: the body writer runs after this handler returns.
func (h *StreamHandler) Stream(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/event-stream; charset=utf-8")
	c.Set(fiber.HeaderCacheControl, "no-cache")
	c.Set(fiber.HeaderConnection, "keep-alive")

	session := stream.NewSession(h.hub, h.reports.Snapshot, h.logger)
	reqCtx := c.Context()
	reqCtx.SetBodyStreamWriter(fasthttp.StreamWriter(func(w *bufio.Writer) {
		session.Run(reqCtx, w)
	}))
	return nil
}
