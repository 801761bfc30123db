package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"disaster-scout/pkg/brief"
	"disaster-scout/pkg/classify"
	"disaster-scout/pkg/config"
	"disaster-scout/pkg/extract"
	"disaster-scout/pkg/geocode"
	"disaster-scout/pkg/httpclient"
	"disaster-scout/pkg/news"
	"disaster-scout/pkg/openai"
	"disaster-scout/pkg/query"
	"disaster-scout/pkg/scan"
	"disaster-scout/pkg/server"
	"disaster-scout/pkg/store"
)

func main() {
	configPath := flag.String("config", "scout.yaml", "path to the YAML config file")
	flag.Parse()

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
	engine := query.NewEngine(st)
	composer := brief.NewComposer(scanner, engine, brief.NewOpenAIGenerator(chatClient))

	if cfg.ScanSchedule != "" {
		scheduler := cron.New()
		_, err := scheduler.AddFunc(cfg.ScanSchedule, func() {
			runCtx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
			defer cancel()
			result, err := scanner.Scan(runCtx, cfg.ScanRegion, cfg.ScanTopic)
			if err != nil {
				log.Printf("Scheduled scan failed for %s/%s: %v", cfg.ScanRegion, cfg.ScanTopic, err)
				return
			}
			log.Printf("Scheduled scan: %s", result.Message)
		})
		if err != nil {
			log.Fatalf("Invalid scan_schedule %q: %v", cfg.ScanSchedule, err)
		}
		scheduler.Start()
		defer scheduler.Stop()
		log.Printf("Scheduled scans of %s/%s at %q", cfg.ScanRegion, cfg.ScanTopic, cfg.ScanSchedule)
	}

	srv := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           server.New(engine, scanner, composer).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Printf("Listening on %s (store=%s, news=%s)", cfg.ListenAddr, cfg.StoreBackend, cfg.NewsProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
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
