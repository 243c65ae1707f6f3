package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig               `mapstructure:"app"`
	Camunda       CamundaConfig           `mapstructure:"camunda"`
	Database      DatabaseConfig          `mapstructure:"database"`
	Kafka         KafkaConfig             `mapstructure:"kafka"`
	Workers       map[string]WorkerConfig `mapstructure:"workers"`
	Assistant     AssistantConfig         `mapstructure:"assistant"`
	Providers     ProvidersConfig         `mapstructure:"providers"`
	Notifications NotificationConfig      `mapstructure:"notifications"`
	HTTP          HTTPConfig              `mapstructure:"http"`
	Logging       LoggingConfig           `mapstructure:"logging"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	MaxJobsActive  int    `mapstructure:"max_jobs_active"`
	Timeout        int    `mapstructure:"timeout"`         // milliseconds
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	URL       string   `mapstructure:"url"` // single URL, used when addresses is empty
}

// GetURL returns the first address or the URL field
func (e ElasticsearchConfig) GetURL() string {
	if e.URL != "" {
		return e.URL
	}
	if len(e.Addresses) > 0 {
		return e.Addresses[0]
	}
	return ""
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// KafkaConfig configures the exchange event stream.
type KafkaConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// WorkerConfig holds the core settings applicable to every worker.
type WorkerConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	MaxJobsActive int  `mapstructure:"max_jobs_active"`
	Timeout       int  `mapstructure:"timeout"`     // milliseconds
	MaxRetries    int  `mapstructure:"max_retries"` // For error handling
}

// --- Assistant ---

// AssistantConfig holds the assistant core wiring. Defaults seeds the
// runtime settings used when the settings store has nothing better.
type AssistantConfig struct {
	CatalogPath         string            `mapstructure:"catalog_path"`
	RegistryPath        string            `mapstructure:"registry_path"`
	ProviderTimeout     int               `mapstructure:"provider_timeout"`     // milliseconds
	ExchangeLogTimeout  int               `mapstructure:"exchange_log_timeout"` // milliseconds
	EscalationTimeout   int               `mapstructure:"escalation_timeout"`   // milliseconds
	SettingsCacheTTL    int               `mapstructure:"settings_cache_ttl"`   // seconds
	StreamWordsPerDelta int               `mapstructure:"stream_words_per_delta"`
	ExchangeLog         ExchangeLogConfig `mapstructure:"exchange_log"`
	Defaults            SettingsDefaults  `mapstructure:"defaults"`
}

// ExchangeLogConfig selects which sinks receive exchanges.
type ExchangeLogConfig struct {
	Postgres      bool   `mapstructure:"postgres"`
	Elasticsearch bool   `mapstructure:"elasticsearch"`
	Kafka         bool   `mapstructure:"kafka"`
	Index         string `mapstructure:"index"`
}

type SettingsDefaults struct {
	EmergencyDetection bool    `mapstructure:"emergency_detection"`
	LegalAdviceRefusal bool    `mapstructure:"legal_advice_refusal"`
	ObjectionHandling  bool    `mapstructure:"objection_handling"`
	Streaming          bool    `mapstructure:"streaming"`
	UseKnowledgeBase   bool    `mapstructure:"use_knowledge_base"`
	MaxResponseLength  int     `mapstructure:"max_response_length"`
	Temperature        float64 `mapstructure:"temperature"`
	PromptVerbosity    string  `mapstructure:"prompt_verbosity"`
	ActiveModel        string  `mapstructure:"active_model"`
}

// ProvidersConfig holds credentials and endpoints for the model providers.
type ProvidersConfig struct {
	OpenAI struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"openai"`

	Anthropic struct {
		APIKey  string `mapstructure:"api_key"`
		BaseURL string `mapstructure:"base_url"`
	} `mapstructure:"anthropic"`

	GenAI struct {
		BaseURL    string `mapstructure:"base_url"`
		APIKey     string `mapstructure:"api_key"`
		Timeout    int    `mapstructure:"timeout"` // milliseconds
		MaxRetries int    `mapstructure:"max_retries"`
	} `mapstructure:"genai"`
}

// NotificationConfig holds settings for emergency alerts and lead intake mail.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	SNS struct {
		Enabled           bool   `mapstructure:"enabled"`
		EmergencyTopicARN string `mapstructure:"emergency_topic_arn"`
	} `mapstructure:"sns"`
	SES struct {
		Enabled     bool   `mapstructure:"enabled"`
		FromEmail   string `mapstructure:"from_email"`
		IntakeEmail string `mapstructure:"intake_email"`
	} `mapstructure:"ses"`
}

// HTTPConfig configures the chat API and health endpoints.
type HTTPConfig struct {
	Address        string   `mapstructure:"address"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
	MaxBodyBytes   int64    `mapstructure:"max_body_bytes"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
