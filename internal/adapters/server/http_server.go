package server

import (
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v3"
	"github.com/shieldbox/shieldbox/internal/core"
	"github.com/shieldbox/shieldbox/internal/risk"
	"go.uber.org/zap"
)

// HTTPServer exposes the scan pipeline over HTTP for the browser extension.
type HTTPServer struct {
	service    *core.ScanService
	dispatcher core.Dispatcher
	normalizer *risk.Normalizer
	logger     *zap.Logger
	listenAddr string
	emailTopic string
	urlTopic   string
	alertTopic string
	app        *fiber.App
}

// NewHTTPServer creates a new HTTP scan server
func NewHTTPServer(
	service *core.ScanService,
	dispatcher core.Dispatcher,
	normalizer *risk.Normalizer,
	logger *zap.Logger,
	listenAddr string,
	emailTopic string,
	urlTopic string,
	alertTopic string,
) *HTTPServer {
	return &HTTPServer{
		service:    service,
		dispatcher: dispatcher,
		normalizer: normalizer,
		logger:     logger,
		listenAddr: listenAddr,
		emailTopic: emailTopic,
		urlTopic:   urlTopic,
		alertTopic: alertTopic,
	}
}

type scanEmailRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type scanEmailAutoRequest struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
	// IoTEnabled defaults to true when the field is absent.
	IoTEnabled *bool `json:"iot_enabled"`
}

type scanLinkRequest struct {
	URL string `json:"url"`
}

// Start starts the HTTP server
func (s *HTTPServer) Start() error {
	s.app = fiber.New(fiber.Config{
		AppName: "ShieldBox",
	})

	s.app.Get("/health", func(c fiber.Ctx) error {
		return c.JSON(fiber.Map{"status": "ok"})
	})

	s.app.Post("/scan-email", s.handleScanEmail)
	s.app.Post("/scan-email-auto", s.handleScanEmailAuto)
	s.app.Post("/scan-link", s.handleScanLink)
	s.app.Get("/forward-alert", s.handleForwardAlert)

	s.logger.Info("HTTP server starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.app.Listen(s.listenAddr); err != nil {
			s.logger.Error("HTTP server error", zap.Error(err))
		}
	}()

	return nil
}

// Stop stops the HTTP server
func (s *HTTPServer) Stop() error {
	if s.app != nil {
		return s.app.Shutdown()
	}
	return nil
}

// handleScanEmail classifies an email without any downstream notification.
// The extension's on-demand scan uses this route.
func (s *HTTPServer) handleScanEmail(c fiber.Ctx) error {
	var req scanEmailRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	if req.Subject == "" && req.Body == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "missing subject and body"})
	}

	verdict := s.service.Classify(c.Context(), req.Subject+" "+req.Body)

	return c.JSON(fiber.Map{
		"status":  verdict.Label,
		"reason":  verdict.Reason,
		"subject": req.Subject,
		"body":    req.Body,
	})
}

// handleScanEmailAuto classifies an email and fans the verdict out to the
// notification sinks. An empty inbox is reported as a no_mail heartbeat so
// the alerting device can show the idle state.
func (s *HTTPServer) handleScanEmailAuto(c fiber.Ctx) error {
	var req scanEmailAutoRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	iotEnabled := req.IoTEnabled == nil || *req.IoTEnabled

	if req.Subject == "" && req.Body == "" {
		if iotEnabled {
			s.dispatcher.Dispatch(core.LabelNoMail, s.emailTopic, s.normalizer.Normalize(core.LabelNoMail, nil), "auto")
		}
		return c.JSON(fiber.Map{
			"status": core.LabelNoMail,
			"reason": "no email content",
		})
	}

	verdict := s.service.Classify(c.Context(), req.Subject+" "+req.Body)

	if iotEnabled {
		s.dispatcher.Dispatch(verdict.Label, s.emailTopic, s.normalizer.Normalize(verdict.Label, nil), "auto")
	}

	return c.JSON(fiber.Map{
		"status": verdict.Label,
		"reason": verdict.Reason,
	})
}

// handleScanLink classifies a URL. Anything that is not an http(s) URL is
// rejected as invalid before it reaches the classifier.
func (s *HTTPServer) handleScanLink(c fiber.Ctx) error {
	var req scanLinkRequest
	if err := c.Bind().Body(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request"})
	}

	if !strings.HasPrefix(req.URL, "http") {
		return c.JSON(fiber.Map{
			"url":    req.URL,
			"status": core.LabelInvalid,
			"reason": "not a valid URL",
		})
	}

	verdict := s.service.Classify(c.Context(), req.URL)
	riskValue := s.normalizer.Normalize(verdict.Label, nil)

	s.dispatcher.Dispatch(verdict.Label, s.urlTopic, riskValue, "url")

	return c.JSON(fiber.Map{
		"url":    req.URL,
		"status": verdict.Label,
		"reason": verdict.Reason,
		"risk":   riskValue,
	})
}

// handleForwardAlert forwards a pre-labelled alert to the alerting device.
// An optional risk query parameter overrides the drawn risk value.
func (s *HTTPServer) handleForwardAlert(c fiber.Ctx) error {
	label := core.Label(c.Query("type", string(core.LabelSafe)))

	var provided *float64
	if raw := c.Query("risk"); raw != "" {
		value, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid risk value"})
		}
		provided = &value
	}

	s.dispatcher.Dispatch(label, s.alertTopic, s.normalizer.Normalize(label, provided), "extension")

	return c.JSON(fiber.Map{
		"status": "sent",
		"type":   label,
	})
}
