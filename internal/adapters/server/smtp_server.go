package server

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"net/mail"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-smtp"
	"github.com/shieldbox/shieldbox/internal/core"
	"github.com/shieldbox/shieldbox/internal/risk"
	"go.uber.org/zap"
)

// SMTPServer is an inbound content filter: messages are classified,
// annotated with verdict headers, optionally relayed upstream, and fanned
// out to the notification sinks.
type SMTPServer struct {
	service      *core.ScanService
	dispatcher   core.Dispatcher
	normalizer   *risk.Normalizer
	logger       *zap.Logger
	listenAddr   string
	domain       string
	relayAddr    string
	emailTopic   string
	labelHeader  string
	reasonHeader string
	server       *smtp.Server
}

// NewSMTPServer creates a new SMTP scan server
func NewSMTPServer(
	service *core.ScanService,
	dispatcher core.Dispatcher,
	normalizer *risk.Normalizer,
	logger *zap.Logger,
	listenAddr string,
	domain string,
	relayAddr string,
	emailTopic string,
	labelHeader string,
	reasonHeader string,
) *SMTPServer {
	return &SMTPServer{
		service:      service,
		dispatcher:   dispatcher,
		normalizer:   normalizer,
		logger:       logger,
		listenAddr:   listenAddr,
		domain:       domain,
		relayAddr:    relayAddr,
		emailTopic:   emailTopic,
		labelHeader:  labelHeader,
		reasonHeader: reasonHeader,
	}
}

// Start starts the SMTP server
func (s *SMTPServer) Start() error {
	s.server = smtp.NewServer(&smtpBackend{server: s})

	s.server.Addr = s.listenAddr
	s.server.Domain = s.domain
	s.server.ReadTimeout = 30 * time.Second
	s.server.WriteTimeout = 30 * time.Second
	s.server.MaxMessageBytes = 30 * 1024 * 1024 // 30MB
	s.server.MaxRecipients = 50
	s.server.AllowInsecureAuth = true

	s.logger.Info("SMTP server starting", zap.String("address", s.listenAddr))

	go func() {
		if err := s.server.ListenAndServe(); err != nil {
			if err != smtp.ErrServerClosed {
				s.logger.Error("SMTP server error", zap.Error(err))
			}
		}
	}()

	return nil
}

// Stop stops the SMTP server
func (s *SMTPServer) Stop() error {
	if s.server != nil {
		return s.server.Close()
	}
	return nil
}

// annotate inserts the verdict headers at the top of the raw message.
func (s *SMTPServer) annotate(raw []byte, verdict core.Verdict) []byte {
	headers := fmt.Sprintf("%s: %s\r\n%s: %s\r\n",
		s.labelHeader, verdict.Label,
		s.reasonHeader, verdict.Reason)

	annotated := make([]byte, 0, len(headers)+len(raw))
	annotated = append(annotated, headers...)
	annotated = append(annotated, raw...)
	return annotated
}

// relay forwards the annotated message to the upstream SMTP server.
func (s *SMTPServer) relay(sender string, recipients []string, data []byte) error {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "localhost"
	}

	conn, err := net.DialTimeout("tcp", s.relayAddr, 10*time.Second)
	if err != nil {
		return fmt.Errorf("failed to connect to relay: %w", err)
	}

	if err := conn.SetDeadline(time.Now().Add(30 * time.Second)); err != nil {
		conn.Close()
		return fmt.Errorf("failed to set connection deadline: %w", err)
	}

	c := smtp.NewClient(conn)
	defer c.Close()

	if err := c.Hello(hostname); err != nil {
		return fmt.Errorf("EHLO failed: %w", err)
	}
	if err := c.Mail(sender, nil); err != nil {
		return fmt.Errorf("MAIL FROM failed: %w", err)
	}

	accepted := false
	for _, recipient := range recipients {
		if err := c.Rcpt(recipient, nil); err != nil {
			s.logger.Warn("Relay rejected recipient",
				zap.String("recipient", recipient),
				zap.Error(err))
		} else {
			accepted = true
		}
	}
	if !accepted {
		return fmt.Errorf("all recipients were rejected")
	}

	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("DATA command failed: %w", err)
	}
	if _, err := wc.Write(data); err != nil {
		wc.Close()
		return fmt.Errorf("failed to send message data: %w", err)
	}
	if err := wc.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	if err := c.Quit(); err != nil {
		s.logger.Warn("QUIT command failed", zap.Error(err))
	}

	return nil
}

// smtpBackend implements the go-smtp Backend interface
type smtpBackend struct {
	server *SMTPServer
}

// NewSession creates a new SMTP session
func (b *smtpBackend) NewSession(_ *smtp.Conn) (smtp.Session, error) {
	return &smtpSession{
		server:     b.server,
		recipients: make([]string, 0),
	}, nil
}

// smtpSession implements the go-smtp Session interface
type smtpSession struct {
	server     *SMTPServer
	sender     string
	recipients []string
}

// Reset resets the session state
func (s *smtpSession) Reset() {
	s.sender = ""
	s.recipients = make([]string, 0)
}

// AuthPlain handles PLAIN authentication (not used by the filter)
func (s *smtpSession) AuthPlain(_ []byte) error {
	return smtp.ErrAuthUnsupported
}

// Mail sets the sender address
func (s *smtpSession) Mail(from string, _ *smtp.MailOptions) error {
	s.sender = from
	return nil
}

// Rcpt adds a recipient
func (s *smtpSession) Rcpt(to string, _ *smtp.RcptOptions) error {
	s.recipients = append(s.recipients, to)
	return nil
}

// Logout closes the session
func (s *smtpSession) Logout() error {
	return nil
}

// Data classifies the message, dispatches the verdict and relays the
// annotated copy upstream when a relay is configured.
func (s *smtpSession) Data(r io.Reader) error {
	raw, err := io.ReadAll(r)
	if err != nil {
		s.server.logger.Error("Failed to read message data", zap.Error(err))
		return err
	}

	msg, err := mail.ReadMessage(bytes.NewReader(raw))
	if err != nil {
		s.server.logger.Error("Failed to parse message", zap.Error(err))
		return err
	}

	subject := decodeHeader(msg.Header.Get("Subject"))
	body, err := extractScanText(msg)
	if err != nil {
		s.server.logger.Error("Failed to extract message text", zap.Error(err))
		return err
	}

	senderDomain := "unknown"
	if parts := strings.Split(s.sender, "@"); len(parts) == 2 {
		senderDomain = parts[1]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	request := core.ScanRequest{
		Text:   subject + " " + body,
		Source: "smtp",
		Topic:  s.server.emailTopic,
	}
	verdict := s.server.service.Scan(ctx, request)

	s.server.logger.Info("Message classified",
		zap.String("sender", s.sender),
		zap.String("sender_domain", senderDomain),
		zap.String("label", string(verdict.Label)),
		zap.String("reason", verdict.Reason))

	s.server.dispatcher.Dispatch(verdict.Label, request.Topic,
		s.server.normalizer.Normalize(verdict.Label, nil), request.Source)

	if s.server.relayAddr != "" {
		annotated := s.server.annotate(raw, verdict)
		if err := s.server.relay(s.sender, s.recipients, annotated); err != nil {
			s.server.logger.Error("Failed to relay message", zap.Error(err))
			return err
		}
	}

	return nil
}
