package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/shieldbox/shieldbox/internal/core"
	"github.com/shieldbox/shieldbox/internal/di"
	"github.com/shieldbox/shieldbox/internal/notify"
	"go.uber.org/zap"
)

func main() {
	// Build the dependency injection container
	container, err := di.BuildContainer()
	if err != nil {
		fmt.Printf("Failed to build dependency container: %v\n", err)
		os.Exit(1)
	}

	// Run the application
	if err := container.Invoke(run); err != nil {
		fmt.Printf("Application error: %v\n", err)
		os.Exit(1)
	}
}

// run is the main application function that gets all dependencies injected
func run(
	logger *zap.Logger,
	scanServer core.ScanServer,
	dispatcher *notify.Dispatcher,
	publisher core.Publisher,
	predictor core.Predictor,
	cache core.VerdictCache,
) error {
	defer logger.Sync()

	// Start the notification workers before the front-end so nothing is
	// dispatched into a dead queue.
	dispatcher.Start()

	if err := scanServer.Start(); err != nil {
		logger.Fatal("Failed to start scan server", zap.Error(err))
		return err
	}

	// Handle graceful shutdown
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	<-sigCh
	logger.Info("Shutting down...")

	if err := scanServer.Stop(); err != nil {
		logger.Error("Failed to stop scan server", zap.Error(err))
	}

	// Drain queued notifications before tearing the sinks down.
	dispatcher.Stop()

	if closer, ok := publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close publisher", zap.Error(err))
		}
	}
	if closer, ok := predictor.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close predictor", zap.Error(err))
		}
	}
	if closer, ok := cache.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close cache", zap.Error(err))
		}
	}

	logger.Info("Shutdown complete")
	return nil
}
