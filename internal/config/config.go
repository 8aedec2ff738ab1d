package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Catalog  CatalogConfig  `yaml:"catalog"`
	Redis    RedisConfig    `yaml:"redis"`
	Bedrock  BedrockConfig  `yaml:"bedrock"`
	Planner  PlannerConfig  `yaml:"planner"`
	Creative CreativeConfig `yaml:"creative"`
	QA       QAConfig       `yaml:"qa"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port int    `yaml:"port"`
	Host string `yaml:"host"`
}

// GetHost returns the server host, with container detection
func (c ServerConfig) GetHost() string {
	// On ECS/container, listen on all interfaces
	if os.Getenv("ECS_CONTAINER_METADATA_URI") != "" || os.Getenv("AWS_EXECUTION_ENV") != "" {
		return "0.0.0.0"
	}
	if host := os.Getenv("SERVER_HOST"); host != "" {
		return host
	}
	return c.Host
}

// CatalogConfig holds product catalog data source configuration.
// When DatabaseURL is empty the in-memory catalog seeded from CSVPath
// is used instead.
type CatalogConfig struct {
	DatabaseURL    string `yaml:"database_url"`
	CSVPath        string `yaml:"csv_path"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

// Timeout returns the configured timeout as a duration
func (c CatalogConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// RedisConfig holds the Redis connection used by the event sink.
type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	Stream   string `yaml:"stream"`
	Enabled  bool   `yaml:"enabled"`
}

// BedrockConfig holds the AWS Bedrock text-completion configuration.
type BedrockConfig struct {
	ModelID        string  `yaml:"model_id"`
	Region         string  `yaml:"region"`
	MaxTokens      int     `yaml:"max_tokens"`
	Temperature    float64 `yaml:"temperature"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	Enabled        bool    `yaml:"enabled"`
}

// Timeout returns the configured timeout as a duration
func (c BedrockConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// Proportions holds the tier budget proportions. Values are normalized
// over non-empty tiers at allocation time.
type Proportions struct {
	High   float64 `yaml:"high"`
	Medium float64 `yaml:"medium"`
	Low    float64 `yaml:"low"`
}

// PlannerConfig holds the scoring, grouping, allocation and structure
// thresholds for the decision pipeline.
type PlannerConfig struct {
	ProductLimit           int         `yaml:"product_limit"`
	HighScoreThreshold     float64     `yaml:"high_score_threshold"`
	MediumScoreThreshold   float64     `yaml:"medium_score_threshold"`
	LowBudgetThreshold     float64     `yaml:"low_budget_threshold"`     // scorer price-fit pivot
	MinViableBudget        float64     `yaml:"min_viable_budget"`        // below this: BudgetTooSmall
	SmallCampaignThreshold float64     `yaml:"small_campaign_threshold"` // below this: single adset
	LargeBudgetThreshold   float64     `yaml:"large_budget_threshold"`   // bidding cap trigger
	BudgetProportions      Proportions `yaml:"budget_proportions"`
	StageTimeoutSeconds    int         `yaml:"stage_timeout_seconds"`
}

// StageTimeout returns the per-run deadline as a duration.
func (c PlannerConfig) StageTimeout() time.Duration {
	return time.Duration(c.StageTimeoutSeconds) * time.Second
}

// CreativeConfig holds generation settings.
type CreativeConfig struct {
	VariantCount    int    `yaml:"variant_count"`
	MaxAttempts     int    `yaml:"max_attempts"`
	BaseDelayMillis int    `yaml:"base_delay_millis"`
	MaxDelaySeconds int    `yaml:"max_delay_seconds"`
	Concurrency     int    `yaml:"concurrency"`
	PolicyPath      string `yaml:"policy_path"`
}

// BaseDelay returns the first backoff delay as a duration.
func (c CreativeConfig) BaseDelay() time.Duration {
	return time.Duration(c.BaseDelayMillis) * time.Millisecond
}

// MaxDelay returns the backoff cap as a duration.
func (c CreativeConfig) MaxDelay() time.Duration {
	return time.Duration(c.MaxDelaySeconds) * time.Second
}

// PlatformRules holds per-platform copy limits for QA.
type PlatformRules struct {
	PrimaryTextMax int  `yaml:"primary_text_max"`
	HeadlineMax    int  `yaml:"headline_max"`
	NoSuperlatives bool `yaml:"no_superlatives"`
	NoSecondPerson bool `yaml:"no_second_person"`
}

// QAConfig holds creative validation rules.
type QAConfig struct {
	BannedWords []string                 `yaml:"banned_words"`
	Platforms   map[string]PlatformRules `yaml:"platforms"`
}

// RulesFor returns the rules for a platform, falling back to the
// reference platform limits when the platform is unknown.
func (c QAConfig) RulesFor(platform string) PlatformRules {
	if r, ok := c.Platforms[platform]; ok {
		return r
	}
	return PlatformRules{PrimaryTextMax: 200, HeadlineMax: 60}
}

// Load reads and parses the configuration file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Catalog.TimeoutSeconds == 0 {
		cfg.Catalog.TimeoutSeconds = 10
	}
	if cfg.Catalog.CSVPath == "" {
		cfg.Catalog.CSVPath = "config/products.csv"
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Redis.Stream == "" {
		cfg.Redis.Stream = "adplanner:events"
	}
	if cfg.Bedrock.ModelID == "" {
		cfg.Bedrock.ModelID = "anthropic.claude-3-sonnet-20240229-v1:0"
	}
	if cfg.Bedrock.Region == "" {
		cfg.Bedrock.Region = "us-east-1"
	}
	if cfg.Bedrock.MaxTokens == 0 {
		cfg.Bedrock.MaxTokens = 1000
	}
	if cfg.Bedrock.Temperature == 0 {
		cfg.Bedrock.Temperature = 0.7
	}
	if cfg.Bedrock.TimeoutSeconds == 0 {
		cfg.Bedrock.TimeoutSeconds = 30
	}
	if cfg.Planner.ProductLimit == 0 {
		cfg.Planner.ProductLimit = 10
	}
	if cfg.Planner.HighScoreThreshold == 0 {
		cfg.Planner.HighScoreThreshold = 0.75
	}
	if cfg.Planner.MediumScoreThreshold == 0 {
		cfg.Planner.MediumScoreThreshold = 0.45
	}
	if cfg.Planner.LowBudgetThreshold == 0 {
		cfg.Planner.LowBudgetThreshold = 1000
	}
	if cfg.Planner.MinViableBudget == 0 {
		cfg.Planner.MinViableBudget = 100
	}
	if cfg.Planner.SmallCampaignThreshold == 0 {
		cfg.Planner.SmallCampaignThreshold = 1000
	}
	if cfg.Planner.LargeBudgetThreshold == 0 {
		cfg.Planner.LargeBudgetThreshold = 5000
	}
	if cfg.Planner.BudgetProportions == (Proportions{}) {
		cfg.Planner.BudgetProportions = Proportions{High: 0.65, Medium: 0.25, Low: 0.10}
	}
	if cfg.Planner.StageTimeoutSeconds == 0 {
		cfg.Planner.StageTimeoutSeconds = 120
	}
	if cfg.Creative.VariantCount < 2 {
		cfg.Creative.VariantCount = 2
	}
	if cfg.Creative.MaxAttempts == 0 {
		cfg.Creative.MaxAttempts = 3
	}
	if cfg.Creative.BaseDelayMillis == 0 {
		cfg.Creative.BaseDelayMillis = 500
	}
	if cfg.Creative.MaxDelaySeconds == 0 {
		cfg.Creative.MaxDelaySeconds = 10
	}
	if cfg.Creative.Concurrency == 0 {
		cfg.Creative.Concurrency = 4
	}
	if cfg.Creative.PolicyPath == "" {
		cfg.Creative.PolicyPath = "config/creative_policy.yaml"
	}
	if len(cfg.QA.BannedWords) == 0 {
		cfg.QA.BannedWords = []string{"spam", "free money", "guaranteed", "click here"}
	}
	if len(cfg.QA.Platforms) == 0 {
		cfg.QA.Platforms = map[string]PlatformRules{
			"facebook":  {PrimaryTextMax: 125, HeadlineMax: 40},
			"instagram": {PrimaryTextMax: 125, HeadlineMax: 40, NoSuperlatives: true},
			"tiktok":    {PrimaryTextMax: 220, HeadlineMax: 80},
			"google":    {PrimaryTextMax: 90, HeadlineMax: 30, NoSecondPerson: true},
		}
	}

	// Platform entries may set only the style flags; zero limits would
	// fail every variant and truncate fallback copy to nothing.
	for name, rules := range cfg.QA.Platforms {
		if rules.PrimaryTextMax <= 0 {
			rules.PrimaryTextMax = 200
		}
		if rules.HeadlineMax <= 0 {
			rules.HeadlineMax = 60
		}
		cfg.QA.Platforms[name] = rules
	}

	if err := cfg.Planner.validateProportions(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// validateProportions rejects tier proportions outside their allowed
// policy ranges (high 60-70%, medium 20-30%, low 0-20%).
func (c PlannerConfig) validateProportions() error {
	p := c.BudgetProportions
	if p.High < 0.60 || p.High > 0.70 {
		return fmt.Errorf("budget_proportions.high %.2f outside [0.60, 0.70]", p.High)
	}
	if p.Medium < 0.20 || p.Medium > 0.30 {
		return fmt.Errorf("budget_proportions.medium %.2f outside [0.20, 0.30]", p.Medium)
	}
	if p.Low < 0 || p.Low > 0.20 {
		return fmt.Errorf("budget_proportions.low %.2f outside [0.00, 0.20]", p.Low)
	}
	return nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env
// vars, so secrets can live in .env locally and in real env vars on ECS.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if dbURL := os.Getenv("DATABASE_URL"); dbURL != "" {
		cfg.Catalog.DatabaseURL = dbURL
	}
	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		cfg.Redis.Addr = addr
		cfg.Redis.Enabled = true
	}
	if pw := os.Getenv("REDIS_PASSWORD"); pw != "" {
		cfg.Redis.Password = pw
	}
	if model := os.Getenv("BEDROCK_MODEL_ID"); model != "" {
		cfg.Bedrock.ModelID = model
	}
	if region := os.Getenv("AWS_REGION"); region != "" {
		cfg.Bedrock.Region = region
	}
	if v := os.Getenv("BEDROCK_ENABLED"); v != "" {
		cfg.Bedrock.Enabled = v == "true" || v == "1"
	}
	if v := os.Getenv("PLANNER_PRODUCT_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Planner.ProductLimit = n
		}
	}
	if v := os.Getenv("CREATIVE_CONCURRENCY"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Creative.Concurrency = n
		}
	}

	return cfg, nil
}
