package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"net/mail"
	"os"

	"github.com/shieldbox/shieldbox/internal/adapters/server"
	"github.com/shieldbox/shieldbox/internal/config"
	"github.com/shieldbox/shieldbox/internal/core"
	"github.com/shieldbox/shieldbox/internal/dedup"
	"github.com/shieldbox/shieldbox/internal/factory"
	"github.com/shieldbox/shieldbox/internal/logging"
	"github.com/shieldbox/shieldbox/internal/notify"
	"github.com/shieldbox/shieldbox/internal/patterns"
	"github.com/shieldbox/shieldbox/internal/risk"
	"go.uber.org/zap"
)

var (
	// Model provider flags
	provider     = flag.String("provider", "local", "Model provider (local, pipeline, openai, gemini, bedrock)")
	bundlePath   = flag.String("bundle", "", "Path to a local model bundle file")
	pipelinePath = flag.String("pipeline", "", "Path to a model pipeline file")
	maxTokens    = flag.Int("max-tokens", 1000, "Maximum tokens for model response")
	temperature  = flag.Float64("temperature", 0.1, "Temperature for model generation")
	topP         = flag.Float64("top-p", 0.9, "Top-p for model generation")
	maxTextSize  = flag.Int("max-text-size", 4096, "Maximum text size to send to the model")

	// Bedrock flags
	bedrockRegion  = flag.String("bedrock-region", "us-east-1", "AWS region for Bedrock")
	bedrockModelID = flag.String("bedrock-model", "anthropic.claude-v2", "Bedrock model ID")

	// Gemini flags
	geminiAPIKey    = flag.String("gemini-api-key", "", "API key for Google Gemini")
	geminiModelName = flag.String("gemini-model", "gemini-pro", "Gemini model name")

	// OpenAI flags
	openaiAPIKey    = flag.String("openai-api-key", "", "API key for OpenAI")
	openaiModelName = flag.String("openai-model", "gpt-4", "OpenAI model name")

	// Notification flags
	notifySinks = flag.Bool("notify", false, "Publish the verdict to the configured broker")
	topic       = flag.String("topic", "shieldbox/email_scan", "Broker topic for the verdict")

	// Input flags
	inputFile  = flag.String("file", "", "Input email file (use stdin if not specified)")
	verbose    = flag.Bool("verbose", false, "Enable verbose logging")
	jsonLog    = flag.Bool("json-log", false, "Output logs in JSON format")
	configFile = flag.String("config", "", "Path to config file (overrides command line flags)")
)

func main() {
	flag.Parse()

	logger, err := logging.InitConsoleLogger(*verbose, *jsonLog)
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	var cfg *config.Config
	if *configFile != "" {
		cfg, err = config.New()
		if err != nil {
			logger.Fatal("Failed to load configuration", zap.Error(err))
		}
		logger.Info("Loaded configuration from file", zap.String("file", cfg.GetViper().ConfigFileUsed()))
	} else {
		cfg = createConfigFromFlags()
	}

	// Resolve the predictor
	textProcessor := factory.NewTextProcessorFactory(logger).CreateTextProcessor()
	predictor, err := factory.NewPredictorFactory(cfg, logger, textProcessor).CreatePredictor()
	if err != nil {
		logger.Fatal("Failed to create predictor", zap.Error(err))
	}

	library, err := patterns.NewLibrary(cfg.GetPatterns(), logger)
	if err != nil {
		logger.Fatal("Failed to build pattern library", zap.Error(err))
	}

	scanCfg := cfg.GetScan()
	service := core.NewScanService(predictor, nil, library, logger, core.ScanServiceParams{
		CacheEnabled:        false, // one-shot scan, nothing to memoize
		MinLength:           scanCfg.MinLength,
		PrefixBytes:         scanCfg.CachePrefixBytes,
		Buckets:             scanCfg.CacheBuckets,
		SuspiciousThreshold: scanCfg.SuspiciousThreshold,
		ModelTimeout:        cfg.GetModel().Timeout,
	})

	// Wire the notification sinks
	sinkFactory := factory.NewSinkFactory(cfg, logger)
	publisher, err := sinkFactory.CreatePublisher()
	if err != nil {
		logger.Fatal("Failed to create publisher", zap.Error(err))
	}
	alerter, err := sinkFactory.CreateAlerter()
	if err != nil {
		logger.Fatal("Failed to create alerter", zap.Error(err))
	}

	notifyCfg := cfg.GetNotify()
	dispatcher := notify.NewDispatcher(publisher, alerter, dedup.NewGate(), logger,
		notifyCfg.QueueSize, notifyCfg.Workers, notifyCfg.SinkTimeout)
	dispatcher.Start()

	normalizer := risk.NewNormalizer(risk.DefaultBands())
	cli := server.NewCLIServer(service, dispatcher, normalizer, logger, *verbose)

	// Read the email from file or stdin
	var emailReader io.Reader
	if *inputFile != "" {
		file, err := os.Open(*inputFile)
		if err != nil {
			logger.Fatal("Failed to open input file", zap.Error(err), zap.String("file", *inputFile))
		}
		defer file.Close()
		emailReader = file
		logger.Info("Reading email from file", zap.String("file", *inputFile))
	} else {
		emailReader = os.Stdin
		logger.Info("Reading email from stdin")
	}

	subject, body, err := parseEmail(emailReader)
	if err != nil {
		logger.Fatal("Failed to parse email", zap.Error(err))
	}

	dispatchTopic := ""
	if *notifySinks {
		dispatchTopic = *topic
	}

	if _, err := cli.ScanText(context.Background(), subject, body, dispatchTopic); err != nil {
		logger.Fatal("Scan failed", zap.Error(err))
	}

	// Drain the queue before closing the sinks.
	dispatcher.Stop()
	if closer, ok := publisher.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			logger.Error("Failed to close publisher", zap.Error(err))
		}
	}
}

// parseEmail extracts the subject and body text of an RFC 5322 message.
func parseEmail(r io.Reader) (string, string, error) {
	msg, err := mail.ReadMessage(bufio.NewReader(r))
	if err != nil {
		return "", "", fmt.Errorf("failed to read message: %w", err)
	}

	body, err := io.ReadAll(msg.Body)
	if err != nil {
		return "", "", fmt.Errorf("failed to read message body: %w", err)
	}

	return msg.Header.Get("Subject"), string(body), nil
}

// createConfigFromFlags creates a configuration from command line flags
func createConfigFromFlags() *config.Config {
	v := config.NewEmptyViper()

	v.Set("server.mode", "cli")
	v.Set("cli.verbose", *verbose)
	v.Set("cache.enabled", false)
	v.Set("mqtt.enabled", *notifySinks)
	v.Set("telegram.enabled", false)

	v.Set("model.provider", *provider)
	if *bundlePath != "" {
		v.Set("model.bundle_path", *bundlePath)
	}
	if *pipelinePath != "" {
		v.Set("model.pipeline_path", *pipelinePath)
	}

	switch *provider {
	case "bedrock":
		v.Set("bedrock.region", *bedrockRegion)
		v.Set("bedrock.model_id", *bedrockModelID)
		v.Set("bedrock.max_tokens", *maxTokens)
		v.Set("bedrock.temperature", *temperature)
		v.Set("bedrock.top_p", *topP)
		v.Set("bedrock.max_text_size", *maxTextSize)
	case "gemini":
		v.Set("gemini.api_key", *geminiAPIKey)
		v.Set("gemini.model_name", *geminiModelName)
		v.Set("gemini.max_tokens", *maxTokens)
		v.Set("gemini.temperature", *temperature)
		v.Set("gemini.top_p", *topP)
		v.Set("gemini.max_text_size", *maxTextSize)
	case "openai":
		v.Set("openai.api_key", *openaiAPIKey)
		v.Set("openai.model_name", *openaiModelName)
		v.Set("openai.max_tokens", *maxTokens)
		v.Set("openai.temperature", *temperature)
		v.Set("openai.top_p", *topP)
		v.Set("openai.max_text_size", *maxTextSize)
	}

	return config.NewFromViper(v)
}
