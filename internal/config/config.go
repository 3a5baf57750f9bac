package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"budgetgrader/internal/domain"
)

// Config holds all application configuration.
type Config struct {
	Server  ServerConfig
	Grading GradingConfig
	Upload  UploadConfig
	Parser  ParserConfig
	CORS    CORSConfig
}

// CORSConfig holds CORS settings.
type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GradingConfig holds the validator defaults and the grading strategy.
type GradingConfig struct {
	InflationRate    float64            `mapstructure:"inflation_rate"`
	Tolerance        float64            `mapstructure:"tolerance"`
	Mode             domain.GradingMode `mapstructure:"mode"`
	BatchConcurrency int                `mapstructure:"batch_concurrency"`
}

// Options returns the configured defaults as GradingOptions.
func (g *GradingConfig) Options() domain.GradingOptions {
	return domain.GradingOptions{InflationRate: g.InflationRate, Tolerance: g.Tolerance}
}

// Validate checks ranges and the grading mode.
func (g *GradingConfig) Validate() error {
	if err := g.Options().Validate(); err != nil {
		return err
	}
	switch g.Mode {
	case domain.GradingModeRuleBased, domain.GradingModeRemote:
		return nil
	default:
		return fmt.Errorf("unknown grading mode %q", g.Mode)
	}
}

// UploadConfig holds upload limits.
type UploadConfig struct {
	MaxFileSizeMB int64 `mapstructure:"max_file_size_mb"`
}

// MaxBytes returns the upload limit in bytes.
func (u *UploadConfig) MaxBytes() int64 {
	return u.MaxFileSizeMB << 20
}

// ParserProviderConfig holds settings for a single LLM provider.
type ParserProviderConfig struct {
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
}

// ParserConfig holds remote extraction/grading settings with multi-provider support.
type ParserConfig struct {
	// Legacy flat fields (backwards-compatible)
	Provider     string `mapstructure:"provider"`
	APIKey       string `mapstructure:"api_key"`
	DefaultModel string `mapstructure:"default_model"`
	BaseURL      string `mapstructure:"base_url"`
	MaxRetries   int    `mapstructure:"max_retries"`
	TimeoutSecs  int    `mapstructure:"timeout_secs"`
	MaxTokens    int    `mapstructure:"max_tokens"`

	// Multi-provider fields
	Primary   ParserProviderConfig `mapstructure:"primary"`
	Secondary ParserProviderConfig `mapstructure:"secondary"`
	Tertiary  ParserProviderConfig `mapstructure:"tertiary"`
}

// Enabled reports whether any remote provider is configured.
func (p *ParserConfig) Enabled() bool {
	return p.PrimaryConfig().Provider != ""
}

// PrimaryConfig returns the primary provider config, falling back to legacy flat fields.
func (p *ParserConfig) PrimaryConfig() *ParserProviderConfig {
	if p.Primary.Provider != "" {
		return &p.Primary
	}
	return &ParserProviderConfig{
		Provider:     p.Provider,
		APIKey:       p.APIKey,
		DefaultModel: p.DefaultModel,
		BaseURL:      p.BaseURL,
		MaxRetries:   p.MaxRetries,
		TimeoutSecs:  p.TimeoutSecs,
	}
}

// SecondaryConfig returns the secondary provider config, or nil if not configured.
func (p *ParserConfig) SecondaryConfig() *ParserProviderConfig {
	if p.Secondary.Provider != "" {
		return &p.Secondary
	}
	return nil
}

// TertiaryConfig returns the tertiary provider config, or nil if not configured.
func (p *ParserConfig) TertiaryConfig() *ParserProviderConfig {
	if p.Tertiary.Provider != "" {
		return &p.Tertiary
	}
	return nil
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment"`
}

const envPrefix = "BUDGETGRADER"

// Load reads configuration from environment variables with the BUDGETGRADER_ prefix.
func Load() (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Server defaults
	v.SetDefault("server.port", ":8080")
	v.SetDefault("server.read_timeout", "30s")
	v.SetDefault("server.write_timeout", "180s")
	v.SetDefault("server.environment", "development")

	// Grading defaults
	v.SetDefault("grading.inflation_rate", domain.DefaultInflationRate)
	v.SetDefault("grading.tolerance", domain.DefaultTolerance)
	v.SetDefault("grading.mode", string(domain.GradingModeRuleBased))
	v.SetDefault("grading.batch_concurrency", 4)

	// Upload defaults
	v.SetDefault("upload.max_file_size_mb", 20)

	// CORS defaults (localhost origins for development)
	v.SetDefault("cors.allowed_origins", "http://localhost:3000,http://127.0.0.1:3000,http://localhost:8501")

	// Parser defaults (legacy flat). An empty provider disables remote extraction.
	v.SetDefault("parser.provider", "")
	v.SetDefault("parser.api_key", "")
	v.SetDefault("parser.default_model", "")
	v.SetDefault("parser.base_url", "")
	v.SetDefault("parser.max_retries", 2)
	v.SetDefault("parser.timeout_secs", 120)
	v.SetDefault("parser.max_tokens", 4000)

	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		v.SetDefault("parser."+tier+".provider", "")
		v.SetDefault("parser."+tier+".api_key", "")
		v.SetDefault("parser."+tier+".default_model", "")
		v.SetDefault("parser."+tier+".base_url", "")
		v.SetDefault("parser."+tier+".max_retries", 2)
		v.SetDefault("parser."+tier+".timeout_secs", 120)
	}

	// Bind environment variables explicitly for nested keys
	envBindings := map[string]string{
		"server.port":               "BUDGETGRADER_SERVER_PORT",
		"server.read_timeout":       "BUDGETGRADER_SERVER_READ_TIMEOUT",
		"server.write_timeout":      "BUDGETGRADER_SERVER_WRITE_TIMEOUT",
		"server.environment":        "BUDGETGRADER_SERVER_ENVIRONMENT",
		"grading.inflation_rate":    "BUDGETGRADER_GRADING_INFLATION_RATE",
		"grading.tolerance":         "BUDGETGRADER_GRADING_TOLERANCE",
		"grading.mode":              "BUDGETGRADER_GRADING_MODE",
		"grading.batch_concurrency": "BUDGETGRADER_GRADING_BATCH_CONCURRENCY",
		"upload.max_file_size_mb":   "BUDGETGRADER_UPLOAD_MAX_FILE_SIZE_MB",
		"cors.allowed_origins":      "BUDGETGRADER_CORS_ALLOWED_ORIGINS",
		"parser.provider":           "BUDGETGRADER_PARSER_PROVIDER",
		"parser.api_key":            "BUDGETGRADER_PARSER_API_KEY",
		"parser.default_model":      "BUDGETGRADER_PARSER_DEFAULT_MODEL",
		"parser.base_url":           "BUDGETGRADER_PARSER_BASE_URL",
		"parser.max_retries":        "BUDGETGRADER_PARSER_MAX_RETRIES",
		"parser.timeout_secs":       "BUDGETGRADER_PARSER_TIMEOUT_SECS",
		"parser.max_tokens":         "BUDGETGRADER_PARSER_MAX_TOKENS",
	}
	for _, tier := range []string{"primary", "secondary", "tertiary"} {
		for _, field := range []string{"provider", "api_key", "default_model", "base_url", "max_retries", "timeout_secs"} {
			key := "parser." + tier + "." + field
			envBindings[key] = envPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		}
	}
	for key, env := range envBindings {
		_ = v.BindEnv(key, env)
	}

	cfg := &Config{}

	// Railway/Heroku/Render set a PORT env var. Use it if BUDGETGRADER_SERVER_PORT is not explicitly set.
	serverPort := v.GetString("server.port")
	if port := os.Getenv("PORT"); port != "" && os.Getenv("BUDGETGRADER_SERVER_PORT") == "" {
		serverPort = ":" + port
	}

	cfg.Server = ServerConfig{
		Port:         serverPort,
		ReadTimeout:  v.GetDuration("server.read_timeout"),
		WriteTimeout: v.GetDuration("server.write_timeout"),
		Environment:  v.GetString("server.environment"),
	}
	cfg.Grading = GradingConfig{
		InflationRate:    v.GetFloat64("grading.inflation_rate"),
		Tolerance:        v.GetFloat64("grading.tolerance"),
		Mode:             domain.GradingMode(strings.ToLower(v.GetString("grading.mode"))),
		BatchConcurrency: v.GetInt("grading.batch_concurrency"),
	}
	if err := cfg.Grading.Validate(); err != nil {
		return nil, fmt.Errorf("config: grading: %w", err)
	}
	cfg.Upload = UploadConfig{
		MaxFileSizeMB: v.GetInt64("upload.max_file_size_mb"),
	}
	// Parse CORS allowed origins from comma-separated string
	var corsOrigins []string
	for _, o := range strings.Split(v.GetString("cors.allowed_origins"), ",") {
		o = strings.TrimSpace(o)
		if o != "" {
			corsOrigins = append(corsOrigins, o)
		}
	}
	cfg.CORS = CORSConfig{
		AllowedOrigins: corsOrigins,
	}

	tier := func(name string) ParserProviderConfig {
		return ParserProviderConfig{
			Provider:     v.GetString("parser." + name + ".provider"),
			APIKey:       v.GetString("parser." + name + ".api_key"),
			DefaultModel: v.GetString("parser." + name + ".default_model"),
			BaseURL:      v.GetString("parser." + name + ".base_url"),
			MaxRetries:   v.GetInt("parser." + name + ".max_retries"),
			TimeoutSecs:  v.GetInt("parser." + name + ".timeout_secs"),
		}
	}
	cfg.Parser = ParserConfig{
		Provider:     v.GetString("parser.provider"),
		APIKey:       v.GetString("parser.api_key"),
		DefaultModel: v.GetString("parser.default_model"),
		BaseURL:      v.GetString("parser.base_url"),
		MaxRetries:   v.GetInt("parser.max_retries"),
		TimeoutSecs:  v.GetInt("parser.timeout_secs"),
		MaxTokens:    v.GetInt("parser.max_tokens"),
		Primary:      tier("primary"),
		Secondary:    tier("secondary"),
		Tertiary:     tier("tertiary"),
	}

	if cfg.Grading.Mode == domain.GradingModeRemote && !cfg.Parser.Enabled() {
		return nil, fmt.Errorf("config: grading mode %q requires BUDGETGRADER_PARSER_PROVIDER", cfg.Grading.Mode)
	}

	return cfg, nil
}
