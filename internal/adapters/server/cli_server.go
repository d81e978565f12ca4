package server

import (
	"context"
	"fmt"
	"time"

	"github.com/shieldbox/shieldbox/internal/core"
	"github.com/shieldbox/shieldbox/internal/risk"
	"go.uber.org/zap"
)

// CLIServer runs a one-shot scan and prints the result to stdout.
type CLIServer struct {
	service    *core.ScanService
	dispatcher core.Dispatcher
	normalizer *risk.Normalizer
	logger     *zap.Logger
	verbose    bool
}

// NewCLIServer creates a new CLI scan front-end
func NewCLIServer(
	service *core.ScanService,
	dispatcher core.Dispatcher,
	normalizer *risk.Normalizer,
	logger *zap.Logger,
	verbose bool,
) *CLIServer {
	return &CLIServer{
		service:    service,
		dispatcher: dispatcher,
		normalizer: normalizer,
		logger:     logger,
		verbose:    verbose,
	}
}

// ScanText classifies text and prints a human-readable report.
// When topic is non-empty the verdict is also dispatched to the sinks.
func (s *CLIServer) ScanText(ctx context.Context, subject, body, topic string) (core.Verdict, error) {
	fmt.Printf("\n=== Scan Input ===\n")
	fmt.Printf("Subject: %s\n", subject)
	fmt.Printf("Body length: %d bytes\n", len(body))

	if s.verbose {
		preview := body
		if len(preview) > 500 {
			preview = preview[:500] + "..."
		}
		fmt.Printf("\nBody preview:\n%s\n", preview)
	}

	fmt.Printf("\n=== Analysis ===\n")
	startTime := time.Now()
	verdict := s.service.Classify(ctx, subject+" "+body)
	duration := time.Since(startTime)

	riskValue := s.normalizer.Normalize(verdict.Label, nil)

	fmt.Printf("\n=== Results ===\n")
	fmt.Printf("Label: %s\n", verdict.Label)
	fmt.Printf("Reason: %s\n", verdict.Reason)
	fmt.Printf("Risk: %.2f%%\n", riskValue)
	fmt.Printf("Processing time: %v\n", duration)

	if topic != "" {
		s.dispatcher.Dispatch(verdict.Label, topic, riskValue, "cli")
	}

	return verdict, nil
}

// Start is a no-op for the CLI front-end
func (s *CLIServer) Start() error {
	return nil
}

// Stop is a no-op for the CLI front-end
func (s *CLIServer) Stop() error {
	return nil
}
