package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"CardPulse/internal/domain/models"
	"CardPulse/internal/services/analytics"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`

	Server struct {
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"15s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"20s"`
	} `yaml:"server"`

	Logging struct {
		Level  string `yaml:"level" default:"info"`
		Format string `yaml:"format" default:"json"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"logging"`

	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`

	// Backend selects where collected observations are routed: straight into
	// ClickHouse, or through Kafka for the consumer to persist.
	Backend struct {
		Type         string        `yaml:"type" default:"clickhouse" validate:"oneof=kafka clickhouse"`
		BatchSize    int           `yaml:"batch_size" default:"200"`
		BatchTimeout time.Duration `yaml:"batch_timeout" default:"5s"`
	} `yaml:"backend"`

	Kafka struct {
		Brokers        []string `yaml:"brokers"`
		Topic          string   `yaml:"topic" default:"cardpulse.observations"`
		SnapshotsTopic string   `yaml:"snapshots_topic" default:"cardpulse.index-snapshots"`
		LogsTopic      string   `yaml:"logs_topic" default:"cardpulse.logs"`
		RequiredAcks   int      `yaml:"required_acks" default:"1"`
		Compression    string   `yaml:"compression" default:"snappy"`
		Producer       struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"100ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
			Async        bool          `yaml:"async" default:"true"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID     string        `yaml:"group_id" default:"cardpulse-ingest"`
			Workers     int           `yaml:"workers" default:"4"`
			BufferSize  int           `yaml:"buffer_size" default:"256"`
			RetryMax    int           `yaml:"retry_max" default:"3"`
			BackoffMin  time.Duration `yaml:"backoff_min" default:"250ms"`
			BackoffMax  time.Duration `yaml:"backoff_max" default:"5s"`
			DLQTopic    string        `yaml:"dlq_topic" default:"cardpulse.observations-dlq"`
			MinBytes    int           `yaml:"min_bytes" default:"1"`
			MaxBytes    int           `yaml:"max_bytes" default:"10485760"`
			OffsetReset string        `yaml:"offset_reset" default:"earliest"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`

	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"cardpulse"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		AsyncInsert      bool          `yaml:"async_insert" default:"true"`
		WaitForAsync     bool          `yaml:"wait_for_async_insert"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		WriteTimeout     time.Duration `yaml:"write_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`

	// Feed is the upstream marketplace price stream.
	Feed struct {
		APIKey         string        `yaml:"api_key"`
		WebSocketURL   string        `yaml:"websocket_url" validate:"required"`
		ProductIDs     []string      `yaml:"product_ids"`
		ReconnectDelay time.Duration `yaml:"reconnect_delay" default:"5s"`
		PingInterval   time.Duration `yaml:"ping_interval" default:"30s"`
	} `yaml:"feed"`

	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr" default:"localhost:6379"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`

	Cache struct {
		OverviewTTL time.Duration `yaml:"overview_ttl" default:"60s"`
		SeriesTTL   time.Duration `yaml:"series_ttl" default:"120s"`
		ProductTTL  time.Duration `yaml:"product_ttl" default:"120s"`
	} `yaml:"cache"`

	Recompute struct {
		Workers    int           `yaml:"workers" default:"2"`
		Debounce   time.Duration `yaml:"debounce" default:"30s"`
		JobTimeout time.Duration `yaml:"job_timeout" default:"60s"`
	} `yaml:"recompute"`

	Notifier struct {
		Enabled    bool          `yaml:"enabled"`
		WebhookURL string        `yaml:"webhook_url"`
		Timeout    time.Duration `yaml:"timeout" default:"10s"`
		MaxRetries int           `yaml:"max_retries" default:"3"`
	} `yaml:"notifier"`

	API struct {
		RateLimitPerMinute int `yaml:"rate_limit_per_minute" default:"120"`
		RateLimitBurst     int `yaml:"rate_limit_burst" default:"20"`
	} `yaml:"api"`

	Engine EngineConfig `yaml:"engine"`
}

// EngineConfig is the YAML shape of the analytics tunables. Absent values
// fall back to the built-in defaults rather than zeroes.
type EngineConfig struct {
	TrendUpThreshold   *float64 `yaml:"trend_up_threshold"`
	TrendDownThreshold *float64 `yaml:"trend_down_threshold"`
	TrendWindowDays    *int     `yaml:"trend_window_days"`

	RSIPeriod          *int     `yaml:"rsi_period"`
	VolWindowDays      *int     `yaml:"vol_window_days"`
	TradingDaysPerYear *float64 `yaml:"trading_days_per_year"`
	RiskFreeRate       *float64 `yaml:"risk_free_rate"`
	MinMomentSample    *int     `yaml:"min_moment_sample"`
	VaRConfidence      *float64 `yaml:"var_confidence"`

	StopWords   []string           `yaml:"stop_words"`
	Fusions     map[string]string  `yaml:"fusions"`
	TypeWeights map[string]float64 `yaml:"type_weights"`

	Scoring struct {
		PremiumWeight        *float64 `yaml:"premium_weight"`
		TrendWeight          *float64 `yaml:"trend_weight"`
		StabilityWeight      *float64 `yaml:"stability_weight"`
		PremiumScale         *float64 `yaml:"premium_scale"`
		TrendScale           *float64 `yaml:"trend_scale"`
		StabilityScale       *float64 `yaml:"stability_scale"`
		ReliabilityFloor     *float64 `yaml:"reliability_floor"`
		FreshnessHorizonDays *float64 `yaml:"freshness_horizon_days"`
	} `yaml:"scoring"`
}

// Load reads, defaults, and validates a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("default config: %w", err)
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("FEED_API_KEY"); v != "" {
		c.Feed.APIKey = v
	}
	if v := os.Getenv("FEED_WEBSOCKET_URL"); v != "" {
		c.Feed.WebSocketURL = v
	}
	if v := os.Getenv("BACKEND"); v != "" {
		c.Backend.Type = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("KAFKA_TOPIC"); v != "" {
		c.Kafka.Topic = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Addr = v
		c.Redis.Enabled = true
	}
	if v := os.Getenv("CLICKHOUSE_HOST"); v != "" {
		c.ClickHouse.Host = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}

	return c, nil
}

// Validate checks structural constraints and the cross-field rules the tag
// validator cannot express.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}
	if c.Backend.Type == "kafka" && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka backend requires kafka.brokers")
	}
	if c.Notifier.Enabled && c.Notifier.WebhookURL == "" {
		return fmt.Errorf("notifier.webhook_url is required when the notifier is enabled")
	}
	if sum := weightSum(c.Engine.TypeWeights); len(c.Engine.TypeWeights) > 0 && sum <= 0 {
		return fmt.Errorf("engine.type_weights must sum to a positive value")
	}
	return nil
}

func weightSum(w map[string]float64) float64 {
	var sum float64
	for _, v := range w {
		sum += v
	}
	return sum
}

// EngineSettings materializes the analytics configuration: the built-in
// defaults overlaid with whatever the YAML provides.
func (c *Config) EngineSettings() analytics.Config {
	out := analytics.DefaultConfig()
	e := c.Engine

	if e.TrendUpThreshold != nil {
		out.TrendUpThreshold = *e.TrendUpThreshold
	}
	if e.TrendDownThreshold != nil {
		out.TrendDownThreshold = *e.TrendDownThreshold
	}
	if e.TrendWindowDays != nil {
		out.TrendWindowDays = *e.TrendWindowDays
	}
	if e.RSIPeriod != nil {
		out.RSIPeriod = *e.RSIPeriod
	}
	if e.VolWindowDays != nil {
		out.VolWindowDays = *e.VolWindowDays
	}
	if e.TradingDaysPerYear != nil {
		out.TradingDaysPerYear = *e.TradingDaysPerYear
	}
	if e.RiskFreeRate != nil {
		out.RiskFreeRate = *e.RiskFreeRate
	}
	if e.MinMomentSample != nil {
		out.MinMomentSample = *e.MinMomentSample
	}
	if e.VaRConfidence != nil {
		out.VaRConfidence = *e.VaRConfidence
	}
	if len(e.StopWords) > 0 {
		out.StopWords = e.StopWords
	}
	if len(e.Fusions) > 0 {
		out.Fusions = e.Fusions
	}
	if len(e.TypeWeights) > 0 {
		weights := make(map[models.ProductType]float64, len(e.TypeWeights))
		for k, v := range e.TypeWeights {
			weights[models.ProductType(k)] = v
		}
		out.TypeWeights = weights
	}

	s := e.Scoring
	if s.PremiumWeight != nil {
		out.Scoring.PremiumWeight = *s.PremiumWeight
	}
	if s.TrendWeight != nil {
		out.Scoring.TrendWeight = *s.TrendWeight
	}
	if s.StabilityWeight != nil {
		out.Scoring.StabilityWeight = *s.StabilityWeight
	}
	if s.PremiumScale != nil {
		out.Scoring.PremiumScale = *s.PremiumScale
	}
	if s.TrendScale != nil {
		out.Scoring.TrendScale = *s.TrendScale
	}
	if s.StabilityScale != nil {
		out.Scoring.StabilityScale = *s.StabilityScale
	}
	if s.ReliabilityFloor != nil {
		out.Scoring.ReliabilityFloor = *s.ReliabilityFloor
	}
	if s.FreshnessHorizonDays != nil {
		out.Scoring.FreshnessHorizonDays = *s.FreshnessHorizonDays
	}
	return out
}
