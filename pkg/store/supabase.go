package store

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	supabase "github.com/supabase-community/supabase-go"
)

// SupabaseConfig holds configuration required to reach a Supabase-hosted
// Postgres database.
type SupabaseConfig struct {
	// ConnectionString is the full Postgres connection string. If empty it
	// is constructed from SupabaseURL and Password.
	ConnectionString string

	// SupabaseURL is the project URL, e.g. "https://[project-ref].supabase.co".
	SupabaseURL string

	// SupabaseKey is the API key used to initialize the SDK client
	// (service_role key for server-side use).
	SupabaseKey string

	// Password is the database password, not the API key.
	Password string
}

// SupabaseStore is the Postgres incident store backed by a Supabase
// project: the SDK client handles project-level access while the incident
// rows live in the project's Postgres database.
type SupabaseStore struct {
	*PostgresStore
	sdk *supabase.Client
}

// NewSupabaseStore initializes the SDK client, derives the Postgres
// connection string from the project URL when none is given, and opens the
// incident table through the Postgres store.
func NewSupabaseStore(ctx context.Context, cfg SupabaseConfig) (*SupabaseStore, error) {
	var sdk *supabase.Client
	if cfg.SupabaseURL != "" && cfg.SupabaseKey != "" {
		client, err := supabase.NewClient(cfg.SupabaseURL, cfg.SupabaseKey, nil)
		if err != nil {
			return nil, fmt.Errorf("initialize supabase SDK: %w", err)
		}
		sdk = client
	}

	connStr := cfg.ConnectionString
	if connStr == "" {
		built, err := buildSupabaseConnectionString(cfg)
		if err != nil {
			return nil, err
		}
		connStr = built
	}

	// Disable the prepared statement cache; Supabase's pooled connections
	// conflict with it under parallel execution.
	connStr = addConnectionParam(connStr, "statement_cache_capacity", "0")
	connStr = addConnectionParam(connStr, "default_query_exec_mode", "simple_protocol")

	pg, err := NewPostgresStore(ctx, PostgresConfig{DSN: connStr})
	if err != nil {
		return nil, fmt.Errorf("open supabase postgres: %w", err)
	}

	return &SupabaseStore{PostgresStore: pg, sdk: sdk}, nil
}

// SDK returns the Supabase SDK client, or nil when URL/key were not given.
func (s *SupabaseStore) SDK() *supabase.Client {
	return s.sdk
}

// buildSupabaseConnectionString constructs a Postgres connection string
// from the project URL and database password.
func buildSupabaseConnectionString(cfg SupabaseConfig) (string, error) {
	if cfg.SupabaseURL == "" {
		return "", fmt.Errorf("supabase URL is required when connection string is not provided")
	}
	if cfg.Password == "" {
		return "", fmt.Errorf("supabase password is required when connection string is not provided")
	}

	// URL format: https://[project-ref].supabase.co
	parsedURL, err := url.Parse(cfg.SupabaseURL)
	if err != nil {
		return "", fmt.Errorf("parse supabase URL: %w", err)
	}
	parts := strings.Split(parsedURL.Host, ".")
	if len(parts) < 2 {
		return "", fmt.Errorf("invalid supabase URL format: expected [project-ref].supabase.co")
	}
	projectRef := parts[0]

	encodedPassword := url.QueryEscape(cfg.Password)
	return fmt.Sprintf("postgresql://postgres:%s@db.%s.supabase.co:5432/postgres?sslmode=require",
		encodedPassword, projectRef), nil
}

// addConnectionParam adds a query parameter to the connection string if not
// already present.
func addConnectionParam(connStr, key, value string) string {
	if strings.Contains(connStr, key+"=") {
		return connStr
	}
	separator := "?"
	if strings.Contains(connStr, "?") {
		separator = "&"
	}
	return connStr + separator + key + "=" + value
}
