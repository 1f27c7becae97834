package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	behandlerhandler "isdialogmelding/internal/behandler/handler"
	behandlermetrics "isdialogmelding/internal/behandler/metrics"
	behandlerservice "isdialogmelding/internal/behandler/service"
	behandlerstore "isdialogmelding/internal/behandler/store"
	apprecconsumer "isdialogmelding/internal/dialogmelding/apprec/consumer"
	apprecmetrics "isdialogmelding/internal/dialogmelding/apprec/metrics"
	apprecservice "isdialogmelding/internal/dialogmelding/apprec/service"
	apprecstore "isdialogmelding/internal/dialogmelding/apprec/store"
	bestillingconsumer "isdialogmelding/internal/dialogmelding/bestilling/consumer"
	bestillingstore "isdialogmelding/internal/dialogmelding/bestilling/store"
	httpapi "isdialogmelding/internal/http"
	"isdialogmelding/internal/platform/config"
	"isdialogmelding/internal/platform/httpserver"
	"isdialogmelding/internal/platform/kafka/consumer"
	"isdialogmelding/internal/platform/logger"
	"isdialogmelding/internal/platform/metrics"
	"isdialogmelding/internal/platform/postgres"
	platformredis "isdialogmelding/internal/platform/redis"
	"isdialogmelding/internal/registry/fastlege"
	"isdialogmelding/internal/registry/partnerinfo"
	"isdialogmelding/internal/sykmelding"
	txcontext "isdialogmelding/pkg/platform/tx"
)

// infra holds process-wide resources that outlive a single request.
type infra struct {
	cfg     *config.Config
	log     *slog.Logger
	db      *sql.DB
	redis   *platformredis.Client
	reg     *prometheus.Registry
	metrics *metrics.Metrics
}

func (i *infra) close() {
	if i.redis != nil {
		_ = i.redis.Close()
	}
	if i.db != nil {
		_ = i.db.Close()
	}
}

// runServer serves HTTP and consumes Kafka until SIGINT/SIGTERM or the first
// component fails.
func runServer(parent context.Context, cfg *config.Config) error {
	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	in, err := buildInfra(ctx, cfg)
	if err != nil {
		return err
	}
	defer in.close()

	txRunner := txcontext.NewRunner(in.db, cfg.Postgres.TxTimeout)

	// Behandler
	behandlerStore := behandlerstore.NewPostgres(in.db)
	behandlerMetrics := behandlermetrics.New(in.reg)
	ledger := behandlerservice.NewLedger(behandlerStore, txRunner, in.log,
		behandlerservice.WithLedgerMetrics(behandlerMetrics),
	)
	behandlerService := behandlerservice.New(
		ledger,
		behandlerStore,
		fastlege.New(cfg.Registry.FastlegeURL, cfg.Registry.Timeout, in.log),
		partnerinfo.New(cfg.Registry.PartnerinfoURL, cfg.Registry.Timeout, partnerCache(in), in.log),
		in.log,
		behandlerservice.WithSykmeldereEnabled(cfg.Behandler.SykmeldereEnabled),
		behandlerservice.WithMetrics(behandlerMetrics),
	)

	router := httpapi.NewRouter(httpapi.Config{
		Logger:   in.log,
		Metrics:  in.metrics,
		Gatherer: in.reg,
		Checks:   readinessChecks(in),
	}, behandlerhandler.New(behandlerService, in.log))
	srv := httpserver.New(cfg.Server, router, in.log)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return srv.Run(gctx)
	})

	if cfg.Kafka.Enabled {
		kafkaConsumer, err := buildConsumer(in, behandlerStore, ledger, txRunner)
		if err != nil {
			stop()
			_ = g.Wait()
			return err
		}
		defer kafkaConsumer.Close()
		g.Go(func() error {
			return kafkaConsumer.Run(gctx)
		})
	} else {
		in.log.Warn("kafka disabled, consumers not started")
	}

	in.log.Info("isdialogmelding started", "addr", cfg.Server.Addr, "kafka_enabled", cfg.Kafka.Enabled)
	if err := g.Wait(); err != nil {
		in.log.Error("service stopped with error", "error", err)
		return err
	}
	in.log.Info("isdialogmelding stopped")
	return nil
}

func buildInfra(ctx context.Context, cfg *config.Config) (*infra, error) {
	in := &infra{
		cfg: cfg,
		log: logger.New(cfg.Log.Level, cfg.Log.Format),
		reg: prometheus.NewRegistry(),
	}
	in.reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	in.metrics = metrics.New(in.reg)

	if cfg.Postgres.MigrateOnStart {
		if err := postgres.RunMigrate(in.log, cfg.Postgres.URL, "up", nil); err != nil {
			return nil, fmt.Errorf("migrate on start: %w", err)
		}
	}

	db, err := postgres.Open(ctx, cfg.Postgres)
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	in.db = db

	rdb, err := platformredis.New(ctx, cfg.Redis)
	if err != nil {
		in.close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	in.redis = rdb
	if rdb == nil {
		in.log.Info("redis not configured, partnerinfo lookups cached in memory")
	}
	return in, nil
}

func partnerCache(in *infra) partnerinfo.Cache {
	if in.redis != nil {
		return partnerinfo.NewRedisCache(in.redis.Client, in.cfg.Registry.CacheTTL)
	}
	return partnerinfo.NewInMemoryCache(in.cfg.Registry.CacheTTL)
}

func readinessChecks(in *infra) map[string]httpapi.ReadinessCheck {
	checks := map[string]httpapi.ReadinessCheck{
		"postgres": in.db.PingContext,
	}
	if in.redis != nil {
		checks["redis"] = in.redis.Health
	}
	return checks
}

// buildConsumer routes the apprec, bestilling and sykmelding topics through
// one consumer group.
func buildConsumer(
	in *infra,
	behandlerStore *behandlerstore.PostgresStore,
	ledger *behandlerservice.Ledger,
	txRunner *txcontext.Runner,
) (*consumer.Consumer, error) {
	kcfg := in.cfg.Kafka
	bestillinger := bestillingstore.NewPostgres(in.db)

	reconciler := apprecservice.NewReconciler(
		apprecstore.NewPostgres(in.db),
		bestillinger,
		behandlerStore,
		txRunner,
		in.log,
		apprecservice.WithMetrics(apprecmetrics.New(in.reg)),
	)

	router := consumer.NewRouter(in.log, nil)
	router.Register(kcfg.ApprecTopic, apprecconsumer.NewHandler(reconciler, in.log))
	router.Register(kcfg.BestillingTopic, bestillingconsumer.NewHandler(behandlerStore, bestillinger, in.log))
	router.Register(kcfg.SykmeldingTopic, sykmelding.NewHandler(ledger, in.log))

	return consumer.New(consumer.Config{
		Brokers:      kcfg.Brokers,
		GroupID:      kcfg.GroupID,
		Topics:       router.Topics(),
		RetryBackoff: kcfg.RetryBackoff,
	}, router, in.log, consumer.WithMetrics(in.metrics))
}
