// Command scan runs one ingestion pass from the command line and prints the
// result, without starting the HTTP server.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"disaster-scout/pkg/classify"
	"disaster-scout/pkg/config"
	"disaster-scout/pkg/extract"
	"disaster-scout/pkg/geocode"
	"disaster-scout/pkg/httpclient"
	"disaster-scout/pkg/news"
	"disaster-scout/pkg/openai"
	"disaster-scout/pkg/scan"
	"disaster-scout/pkg/store"
)

func main() {
	configPath := flag.String("config", "scout.yaml", "path to the YAML config file")
	region := flag.String("region", "", "region to scan, e.g. \"California\"")
	topic := flag.String("topic", "", "topic to scan, e.g. \"wildfire\"")
	flag.Parse()

	if *region == "" || *topic == "" {
		fmt.Fprintln(os.Stderr, "both -region and -topic are required")
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := openStore(ctx, cfg)
	if err != nil {
		log.Fatalf("Failed to open %s store: %v", cfg.StoreBackend, err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := st.Close(closeCtx); err != nil {
			log.Printf("Store close failed: %v", err)
		}
	}()

	chatClient := openai.NewClient(cfg.OpenAIAPIKey, cfg.OpenAIModel, nil)
	scanner := scan.NewScanner(
		newsSource(cfg),
		extractor(cfg),
		classify.NewOpenAIClassifier(chatClient),
		geocode.NewNominatimGeocoder(cfg.NominatimEmail),
		st,
	)

	result, err := scanner.Scan(ctx, *region, *topic)
	if err != nil {
		log.Fatalf("Scan failed: %v", err)
	}

	fmt.Println(result.Message)
}

func openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendMongo:
		return store.NewMongoStore(ctx, cfg.MongoURI, cfg.MongoDatabase, cfg.MongoCollection)
	case config.BackendPostgres:
		return store.NewPostgresStore(ctx, store.PostgresConfig{DSN: cfg.PostgresDSN})
	case config.BackendSupabase:
		return store.NewSupabaseStore(ctx, store.SupabaseConfig{
			SupabaseURL: cfg.SupabaseURL,
			SupabaseKey: cfg.SupabaseKey,
			Password:    cfg.SupabasePass,
		})
	default:
		return store.NewMemoryStore(), nil
	}
}

func newsSource(cfg config.Config) news.Source {
	if cfg.NewsProvider == config.NewsProviderTavily {
		return news.NewTavilySource(cfg.TavilyAPIKey, cfg.MaxResults, nil)
	}
	return news.NewGoogleNewsSource(cfg.MaxResults)
}

func extractor(cfg config.Config) extract.Extractor {
	if cfg.NewsProvider == config.NewsProviderTavily {
		return extract.NewTavilyExtractor(cfg.TavilyAPIKey, nil)
	}
	return extract.NewReadabilityExtractor(httpclient.BrowserClient)
}
