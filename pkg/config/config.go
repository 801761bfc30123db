// Package config loads the service configuration from a YAML file with
// environment variable overrides for deployment secrets.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Store backend names accepted in store_backend.
const (
	BackendMemory   = "memory"
	BackendMongo    = "mongo"
	BackendPostgres = "postgres"
	BackendSupabase = "supabase"
)

// News provider names accepted in news_provider.
const (
	NewsProviderTavily     = "tavily"
	NewsProviderGoogleNews = "googlenews"
)

// Config holds all service configuration.
type Config struct {
	ListenAddr string `yaml:"listen_addr"`

	StoreBackend    string `yaml:"store_backend"`
	MongoURI        string `yaml:"mongo_uri"`
	MongoDatabase   string `yaml:"mongo_database"`
	MongoCollection string `yaml:"mongo_collection"`
	PostgresDSN     string `yaml:"postgres_dsn"`
	SupabaseURL     string `yaml:"supabase_url"`
	SupabaseKey     string `yaml:"supabase_key"`
	SupabasePass    string `yaml:"supabase_password"`

	NewsProvider string `yaml:"news_provider"`
	TavilyAPIKey string `yaml:"tavily_api_key"`
	OpenAIAPIKey string `yaml:"openai_api_key"`
	OpenAIModel  string `yaml:"openai_model"`
	MaxResults   int    `yaml:"max_results"`

	// NominatimEmail identifies this deployment to the geocoding service,
	// per its usage policy.
	NominatimEmail string `yaml:"nominatim_email"`

	// ScanSchedule is an optional cron expression; when set, the server
	// scans ScanRegion/ScanTopic on that schedule.
	ScanSchedule string `yaml:"scan_schedule"`
	ScanRegion   string `yaml:"scan_region"`
	ScanTopic    string `yaml:"scan_topic"`
}

// Defaults returns a Config with all default values set.
func Defaults() Config {
	return Config{
		ListenAddr:      ":3000",
		StoreBackend:    BackendMemory,
		MongoDatabase:   "disaster_db",
		MongoCollection: "incidents",
		NewsProvider:    NewsProviderGoogleNews,
		OpenAIModel:     "gpt-4o-mini",
		MaxResults:      5,
		NominatimEmail:  "disasterscout_demo@example.com",
	}
}

// Load reads the YAML file at path (skipped when the file does not exist)
// and applies environment overrides. SCOUT_CONFIG overrides the path
// itself.
func Load(path string) (Config, error) {
	if envPath := os.Getenv("SCOUT_CONFIG"); envPath != "" {
		path = envPath
	}

	cfg := Defaults()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return Config{}, fmt.Errorf("parsing config file: %w", err)
			}
		case !os.IsNotExist(err):
			return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func applyEnvOverrides(cfg *Config) {
	overrides := map[string]*string{
		"SCOUT_LISTEN_ADDR": &cfg.ListenAddr,
		"SCOUT_STORE":       &cfg.StoreBackend,
		"MONGO_URI":         &cfg.MongoURI,
		"MONGO_DB_NAME":     &cfg.MongoDatabase,
		"POSTGRES_DSN":      &cfg.PostgresDSN,
		"SUPABASE_URL":      &cfg.SupabaseURL,
		"SUPABASE_KEY":      &cfg.SupabaseKey,
		"SUPABASE_PASSWORD": &cfg.SupabasePass,
		"TAVILY_API_KEY":    &cfg.TavilyAPIKey,
		"OPENAI_API_KEY":    &cfg.OpenAIAPIKey,
	}
	for key, target := range overrides {
		if value := os.Getenv(key); value != "" {
			*target = value
		}
	}
}

// Validate checks that required fields are present and values are valid.
func (c *Config) Validate() error {
	switch c.StoreBackend {
	case BackendMemory:
	case BackendMongo:
		if c.MongoURI == "" {
			return fmt.Errorf("mongo_uri is required for the mongo store backend")
		}
	case BackendPostgres:
		if c.PostgresDSN == "" {
			return fmt.Errorf("postgres_dsn is required for the postgres store backend")
		}
	case BackendSupabase:
		if c.SupabaseURL == "" {
			return fmt.Errorf("supabase_url is required for the supabase store backend")
		}
	default:
		return fmt.Errorf("unknown store_backend %q", c.StoreBackend)
	}

	switch c.NewsProvider {
	case NewsProviderGoogleNews:
	case NewsProviderTavily:
		if c.TavilyAPIKey == "" {
			return fmt.Errorf("tavily_api_key is required for the tavily news provider")
		}
	default:
		return fmt.Errorf("unknown news_provider %q", c.NewsProvider)
	}

	if c.OpenAIAPIKey == "" {
		return fmt.Errorf("openai_api_key is required")
	}

	if c.ScanSchedule != "" && (c.ScanRegion == "" || c.ScanTopic == "") {
		return fmt.Errorf("scan_region and scan_topic are required when scan_schedule is set")
	}

	return nil
}
