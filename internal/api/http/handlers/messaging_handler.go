package handlers

import (
	"bytes"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/field-report-service/internal/config"
	apperrors "github.com/spec-kit/field-report-service/pkg/util"
)

// MessagingHandler is a direct pass-through to the outbound messaging API.
// The upstream status and body are returned verbatim.
type MessagingHandler struct {
	cfg    config.MessagingConfig
	client *http.Client
}

// NewMessagingHandler constructs handler.
func NewMessagingHandler(cfg config.MessagingConfig) *MessagingHandler {
	return &MessagingHandler{
		cfg:    cfg,
		client: &http.Client{Timeout: 30 * time.Second},
	}
}

// SendMessage handles POST /api/actions/sendMessage.
func (h *MessagingHandler) SendMessage(c *fiber.Ctx) error {
	return h.proxy(c, "/actions/sendMessage")
}

// SendMedia handles POST /api/actions/sendMedia.
func (h *MessagingHandler) SendMedia(c *fiber.Ctx) error {
	return h.proxy(c, "/actions/sendMedia")
}

func (h *MessagingHandler) proxy(c *fiber.Ctx, actionPath string) error {
	upstreamURL := strings.TrimRight(h.cfg.BaseURL, "/") + actionPath

	req, err := http.NewRequestWithContext(c.Context(), http.MethodPost, upstreamURL, bytes.NewReader(c.Body()))
	if err != nil {
		return apperrors.NewInternalError(err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+h.cfg.Token)

	resp, err := h.client.Do(req)
	if err != nil {
		return apperrors.NewUpstreamFailure(err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return apperrors.NewUpstreamFailure(err)
	}

	if contentType := resp.Header.Get("Content-Type"); contentType != "" {
		c.Set(fiber.HeaderContentType, contentType)
	}
	return c.Status(resp.StatusCode).Send(body)
}
