// cmd/bailey-worker/main.go
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"bailey-assistant/internal/api"
	"bailey-assistant/internal/assistant"
	"bailey-assistant/internal/assistant/dispatch"
	"bailey-assistant/internal/assistant/escalation"
	"bailey-assistant/internal/assistant/exchangelog"
	"bailey-assistant/internal/assistant/knowledge"
	"bailey-assistant/internal/assistant/settings"
	awssvc "bailey-assistant/internal/common/aws"
	"bailey-assistant/internal/common/camunda"
	"bailey-assistant/internal/common/config"
	"bailey-assistant/internal/common/database"
	"bailey-assistant/internal/common/logger"
	"bailey-assistant/internal/common/observability"
	"bailey-assistant/pkg/registry"

	ccm "bailey-assistant/internal/workers/ai-conversation/classify-chat-message"
	gcr "bailey-assistant/internal/workers/ai-conversation/generate-chat-response"
)

func main() {
	bootLog := logger.New("info", "console")

	cfg, err := config.Load()
	if err != nil {
		bootLog.Fatal("config load failed", zap.Error(err))
	}
	_ = bootLog.Sync()

	zapLog := logger.NewWithOutput(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	if err := run(cfg, log); err != nil {
		zapLog.Fatal("bailey worker failed", zap.Error(err))
	}
	zapLog.Info("bailey worker stopped gracefully")
}

func run(cfg *config.Config, log logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.Info("starting bailey worker", map[string]interface{}{
		"app":         cfg.App.Name,
		"version":     cfg.App.Version,
		"environment": cfg.App.Environment,
	})

	obs, err := observability.New(cfg.App.Name)
	if err != nil {
		log.Warn("otel exporter unavailable, continuing without it", map[string]interface{}{"error": err.Error()})
	}
	defer obs.Shutdown(context.Background())

	readiness := database.NewReadiness()

	// --- Catalog and model registry ---
	catalog, err := loadCatalog(cfg.Assistant.CatalogPath)
	if err != nil {
		return err
	}
	reg, err := loadRegistry(cfg.Assistant.RegistryPath)
	if err != nil {
		return err
	}
	log.Info("catalog loaded", map[string]interface{}{"entries": catalog.Len(), "models": len(reg.Models)})

	// --- PostgreSQL ---
	var pg *database.PostgresClient
	if cfg.Database.Postgres.Host != "" {
		err = camunda.RetryWithBackoff(ctx, 15, 2*time.Second, log, "postgres connection", func() error {
			client, err := database.NewPostgres(cfg.Database.Postgres)
			if err != nil {
				return err
			}
			if err := client.Connect(ctx); err != nil {
				return err
			}
			pg = client
			return nil
		})
		if err != nil {
			return fmt.Errorf("postgres: %w", err)
		}
		defer pg.Close()

		if err := pg.Migrate(ctx, settings.Migration, exchangelog.Migration, exchangelog.SessionIndexMigration); err != nil {
			return fmt.Errorf("postgres migrations: %w", err)
		}
		readiness.Add("postgres", pg)
	}

	// --- Redis ---
	var rdb *database.RedisClient
	if cfg.Database.Redis.Address != "" {
		rdb = database.NewRedis(cfg.Database.Redis)
		defer rdb.Close()
		if err := rdb.Ping(ctx); err != nil {
			log.Warn("redis unreachable at startup, settings fall back to defaults", map[string]interface{}{"error": err.Error()})
		}
		readiness.Add("redis", rdb)
	}

	// --- Elasticsearch ---
	var es *database.ElasticsearchClient
	if cfg.Assistant.ExchangeLog.Elasticsearch {
		es, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		readiness.Add("elasticsearch", es)
	}

	// --- Settings ---
	defaults := settings.FromConfig(cfg.Assistant.Defaults)
	var store settings.Store = settings.NewStaticStore(defaults)
	if rdb != nil {
		var source settings.Source
		if pg != nil {
			source = settings.NewPostgresSource(pg.DB)
		}
		store = settings.NewCachedStore(rdb.Client, source, defaults,
			time.Duration(cfg.Assistant.SettingsCacheTTL)*time.Second, log)
	}

	// --- Exchange log sinks ---
	var sinks []exchangelog.Repository
	if cfg.Assistant.ExchangeLog.Postgres && pg != nil {
		sinks = append(sinks, exchangelog.NewPostgresRepository(pg.DB))
	}
	if es != nil {
		sinks = append(sinks, exchangelog.NewElasticsearchRepository(es.Client, cfg.Assistant.ExchangeLog.Index))
	}
	if cfg.Assistant.ExchangeLog.Kafka {
		kafkaRepo := exchangelog.NewKafkaRepository(exchangelog.NewKafkaWriter(cfg.Kafka.Brokers, cfg.Kafka.Topic))
		defer kafkaRepo.Close()
		sinks = append(sinks, kafkaRepo)
	}
	exchanges := exchangelog.NewAsyncLogger(exchangelog.NewMultiRepository(sinks...),
		config.GetDuration(cfg.Assistant.ExchangeLogTimeout), log)
	log.Info("exchange log configured", map[string]interface{}{"sinks": len(sinks)})

	// --- Escalation ---
	escalator, err := newEscalator(ctx, cfg, log)
	if err != nil {
		return err
	}

	// --- Engine ---
	dispatcher := dispatch.NewDispatcher(reg, dispatch.NewProviders(cfg.Providers),
		config.GetDuration(cfg.Assistant.ProviderTimeout), log)

	engine, err := assistant.New(assistant.Deps{
		Catalog:       catalog,
		Dispatcher:    dispatcher,
		Settings:      store,
		Exchanges:     exchanges,
		Escalator:     escalator,
		Observability: obs,
		Logger:        log,
		WordsPerDelta: cfg.Assistant.StreamWordsPerDelta,
	})
	if err != nil {
		return err
	}

	// --- Zeebe workers ---
	var workers *camunda.WorkerSet
	if cfg.Camunda.Enabled {
		zeebe, err := camunda.Connect(ctx, camunda.ClientConfig{
			GatewayAddress:         cfg.Camunda.BrokerAddress,
			UsePlaintextConnection: true,
			ConnectionTimeout:      config.GetDuration(cfg.Camunda.RequestTimeout),
		}, log)
		if err != nil {
			return fmt.Errorf("zeebe: %w", err)
		}
		defer zeebe.Close()
		readiness.Add("zeebe", zeebe)

		workers = camunda.NewWorkerSet(zeebe, log)

		gcrCfg := config.GetWorkerConfig(cfg, gcr.TaskType)
		workers.Start(gcr.TaskType, gcrCfg, gcr.NewHandler(gcr.LoadConfig(gcrCfg), engine, obs, log).Handle)

		ccmCfg := config.GetWorkerConfig(cfg, ccm.TaskType)
		workers.Start(ccm.TaskType, ccmCfg, ccm.NewHandler(ccm.LoadConfig(ccmCfg), engine, store, obs, log).Handle)
	}

	// --- Chat API ---
	server := api.NewServer(cfg.HTTP, engine, store, readiness, log)
	serverErr := make(chan error, 1)
	go func() { serverErr <- server.Start() }()

	select {
	case <-ctx.Done():
		log.Info("shutdown signal received", nil)
	case err := <-serverErr:
		if err != nil {
			log.Error("chat api failed", map[string]interface{}{"error": err.Error()})
		}
	}

	// --- Graceful shutdown ---
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("error stopping chat api", map[string]interface{}{"error": err.Error()})
	}
	if workers != nil {
		workers.Close()
	}
	if err := exchanges.Close(shutdownCtx); err != nil {
		log.Warn("exchange log did not drain", map[string]interface{}{"error": err.Error()})
	}
	if err := escalator.Close(shutdownCtx); err != nil {
		log.Warn("escalations did not drain", map[string]interface{}{"error": err.Error()})
	}
	return nil
}

func loadCatalog(path string) (*knowledge.Catalog, error) {
	if path == "" {
		return knowledge.DefaultCatalog()
	}
	c, err := knowledge.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog %s: %w", path, err)
	}
	return c, nil
}

func loadRegistry(path string) (*registry.ModelRegistry, error) {
	if path == "" {
		return registry.DefaultRegistry(), nil
	}
	reg, err := registry.LoadRegistry(path)
	if err != nil {
		return nil, fmt.Errorf("model registry %s: %w", path, err)
	}
	return reg, nil
}

// newEscalator builds the SNS and SES clients for whichever channels are
// enabled. A disabled channel is left as a nil interface.
func newEscalator(ctx context.Context, cfg *config.Config, log logger.Logger) (*escalation.Escalator, error) {
	n := cfg.Notifications

	var snsSvc awssvc.SNSService
	if n.SNS.Enabled {
		c, err := awssvc.NewSNSClient(ctx, n.AWS.Region)
		if err != nil {
			return nil, err
		}
		snsSvc = c
	}

	var sesSvc awssvc.SESService
	if n.SES.Enabled {
		c, err := awssvc.NewSESClient(ctx, n.AWS.Region)
		if err != nil {
			return nil, err
		}
		sesSvc = c
	}

	return escalation.New(snsSvc, sesSvc, escalation.Config{
		EmergencyTopicARN: n.SNS.EmergencyTopicARN,
		FromEmail:         n.SES.FromEmail,
		IntakeEmail:       n.SES.IntakeEmail,
		Timeout:           config.GetDuration(cfg.Assistant.EscalationTimeout),
	}, log), nil
}
