package config

import (
	"strings"
	"time"

	"github.com/shieldbox/shieldbox/internal/patterns"
)

// ServerConfig represents the front-end server configuration
type ServerConfig struct {
	Mode              string
	ListenAddress     string
	SMTPListenAddress string
	SMTPDomain        string
	SMTPRelayAddress  string
	LabelHeader       string
	ReasonHeader      string
}

// ModelConfig represents the predictor resolution configuration
type ModelConfig struct {
	Provider     string
	BundlePath   string
	PipelinePath string
	Timeout      time.Duration
}

// OpenAIConfig represents the configuration for OpenAI
type OpenAIConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// GeminiConfig represents the configuration for Google Gemini
type GeminiConfig struct {
	APIKey      string
	ModelName   string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// BedrockConfig represents the configuration for Amazon Bedrock
type BedrockConfig struct {
	Region      string
	ModelID     string
	MaxTokens   int
	Temperature float32
	TopP        float32
	MaxTextSize int
}

// ScanConfig represents the classifier tuning configuration
type ScanConfig struct {
	MinLength           int
	CachePrefixBytes    int
	CacheBuckets        uint32
	SuspiciousThreshold int
}

// CacheConfig represents the verdict cache configuration
type CacheConfig struct {
	Type           string
	Enabled        bool
	Capacity       int
	SQLitePath     string
	MySQLDSN       string
	RedisAddr      string
	RedisPassword  string
	RedisDB        int
	RedisKeyPrefix string
}

// MQTTConfig represents the broker sink configuration
type MQTTConfig struct {
	Enabled        bool
	BrokerURL      string
	ClientID       string
	QoS            byte
	ConnectTimeout time.Duration
}

// TelegramConfig represents the chat sink configuration
type TelegramConfig struct {
	Enabled  bool
	BotToken string
	ChatID   int64
}

// NotifyConfig represents the dispatcher configuration
type NotifyConfig struct {
	QueueSize   int
	Workers     int
	SinkTimeout time.Duration
	EmailTopic  string
	URLTopic    string
	AlertTopic  string
}

// GetServer returns the server configuration
func (c *Config) GetServer() ServerConfig {
	return ServerConfig{
		Mode:              c.GetString("server.mode"),
		ListenAddress:     c.GetString("server.listen_address"),
		SMTPListenAddress: c.GetString("server.smtp_listen_address"),
		SMTPDomain:        c.GetString("server.smtp_domain"),
		SMTPRelayAddress:  c.GetString("server.smtp_relay_address"),
		LabelHeader:       c.GetString("server.headers.label"),
		ReasonHeader:      c.GetString("server.headers.reason"),
	}
}

// GetModel returns the model resolution configuration
func (c *Config) GetModel() ModelConfig {
	timeout, err := c.GetDuration("model.timeout")
	if err != nil {
		timeout = 10 * time.Second
	}
	return ModelConfig{
		Provider:     c.GetString("model.provider"),
		BundlePath:   c.GetString("model.bundle_path"),
		PipelinePath: c.GetString("model.pipeline_path"),
		Timeout:      timeout,
	}
}

// GetOpenAI returns the OpenAI configuration
func (c *Config) GetOpenAI() OpenAIConfig {
	return OpenAIConfig{
		APIKey:      c.GetString("openai.api_key"),
		ModelName:   c.GetString("openai.model_name"),
		MaxTokens:   c.GetInt("openai.max_tokens"),
		Temperature: float32(c.GetFloat64("openai.temperature")),
		TopP:        float32(c.GetFloat64("openai.top_p")),
		MaxTextSize: c.GetInt("openai.max_text_size"),
	}
}

// GetGemini returns the Gemini configuration
func (c *Config) GetGemini() GeminiConfig {
	return GeminiConfig{
		APIKey:      c.GetString("gemini.api_key"),
		ModelName:   c.GetString("gemini.model_name"),
		MaxTokens:   c.GetInt("gemini.max_tokens"),
		Temperature: float32(c.GetFloat64("gemini.temperature")),
		TopP:        float32(c.GetFloat64("gemini.top_p")),
		MaxTextSize: c.GetInt("gemini.max_text_size"),
	}
}

// GetBedrock returns the Bedrock configuration
func (c *Config) GetBedrock() BedrockConfig {
	return BedrockConfig{
		Region:      c.GetString("bedrock.region"),
		ModelID:     c.GetString("bedrock.model_id"),
		MaxTokens:   c.GetInt("bedrock.max_tokens"),
		Temperature: float32(c.GetFloat64("bedrock.temperature")),
		TopP:        float32(c.GetFloat64("bedrock.top_p")),
		MaxTextSize: c.GetInt("bedrock.max_text_size"),
	}
}

// GetScan returns the classifier tuning configuration
func (c *Config) GetScan() ScanConfig {
	return ScanConfig{
		MinLength:           c.GetInt("scan.min_length"),
		CachePrefixBytes:    c.GetInt("scan.cache_prefix_bytes"),
		CacheBuckets:        uint32(c.GetInt("scan.cache_buckets")),
		SuspiciousThreshold: c.GetInt("scan.suspicious_threshold"),
	}
}

// GetPatterns returns the heuristic lists. Empty lists fall back to the
// library's built-in defaults. Pairs are encoded as comma-joined keywords,
// e.g. "urgent,sponsor".
func (c *Config) GetPatterns() patterns.Config {
	return patterns.Config{
		AllowlistDomains:   c.GetStringSlice("patterns.allowlist_domains"),
		FraudFragments:     c.GetStringSlice("patterns.fraud_fragments"),
		DonationPairs:      splitPairs(c.GetStringSlice("patterns.donation_pairs")),
		SpamPairs:          splitPairs(c.GetStringSlice("patterns.spam_pairs")),
		SuspiciousKeywords: c.GetStringSlice("patterns.suspicious_keywords"),
	}
}

func splitPairs(encoded []string) [][]string {
	pairs := make([][]string, 0, len(encoded))
	for _, entry := range encoded {
		var keywords []string
		for _, keyword := range strings.Split(entry, ",") {
			keyword = strings.TrimSpace(keyword)
			if keyword != "" {
				keywords = append(keywords, keyword)
			}
		}
		if len(keywords) > 0 {
			pairs = append(pairs, keywords)
		}
	}
	return pairs
}

// GetCache returns the verdict cache configuration
func (c *Config) GetCache() CacheConfig {
	return CacheConfig{
		Type:           c.GetString("cache.type"),
		Enabled:        c.GetBool("cache.enabled"),
		Capacity:       c.GetInt("cache.capacity"),
		SQLitePath:     c.GetString("cache.sqlite_path"),
		MySQLDSN:       c.GetString("cache.mysql_dsn"),
		RedisAddr:      c.GetString("cache.redis_addr"),
		RedisPassword:  c.GetString("cache.redis_password"),
		RedisDB:        c.GetInt("cache.redis_db"),
		RedisKeyPrefix: c.GetString("cache.redis_key_prefix"),
	}
}

// GetMQTT returns the broker sink configuration
func (c *Config) GetMQTT() MQTTConfig {
	timeout, err := c.GetDuration("mqtt.connect_timeout")
	if err != nil {
		timeout = 5 * time.Second
	}
	return MQTTConfig{
		Enabled:        c.GetBool("mqtt.enabled"),
		BrokerURL:      c.GetString("mqtt.broker_url"),
		ClientID:       c.GetString("mqtt.client_id"),
		QoS:            byte(c.GetInt("mqtt.qos")),
		ConnectTimeout: timeout,
	}
}

// GetTelegram returns the chat sink configuration
func (c *Config) GetTelegram() TelegramConfig {
	return TelegramConfig{
		Enabled:  c.GetBool("telegram.enabled"),
		BotToken: c.GetString("telegram.bot_token"),
		ChatID:   c.GetInt64("telegram.chat_id"),
	}
}

// GetNotify returns the dispatcher configuration
func (c *Config) GetNotify() NotifyConfig {
	timeout, err := c.GetDuration("notify.sink_timeout")
	if err != nil {
		timeout = 2 * time.Second
	}
	return NotifyConfig{
		QueueSize:   c.GetInt("notify.queue_size"),
		Workers:     c.GetInt("notify.workers"),
		SinkTimeout: timeout,
		EmailTopic:  c.GetString("notify.topics.email"),
		URLTopic:    c.GetString("notify.topics.url"),
		AlertTopic:  c.GetString("notify.topics.alert"),
	}
}
