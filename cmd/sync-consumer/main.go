package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"golang.org/x/sync/errgroup"

	"github.com/mmdatafocus/sitesync/broker"
	"github.com/mmdatafocus/sitesync/config"
	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/reportsync"
	"github.com/mmdatafocus/sitesync/source"
	"github.com/mmdatafocus/sitesync/warehouse"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "sync-consumer: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	settings, err := config.LoadSettings()
	if err != nil {
		return err
	}
	logger := config.GetLogger(settings.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectDatabase(ctx, settings, logger)
	if err != nil {
		return err
	}
	sqlDB, err := db.DB()
	if err != nil {
		return err
	}
	defer sqlDB.Close()

	if !settings.SkipMigrations {
		if err := models.MigrateTable(db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	} else {
		logger.WithFields(logrus.Fields{"field": "migrations"}).Warn("SKIP_MIGRATIONS=true; skipping AutoMigrate on startup")
	}

	mongoClient, mongoDB, err := config.ConnectMongo(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer mongoClient.Disconnect(context.Background())

	conn, err := config.DialRabbit(ctx, settings, logger)
	if err != nil {
		return err
	}
	defer conn.Close()

	topology := broker.NewTopology(settings.SyncExchange)
	if err := declare(conn, topology); err != nil {
		return err
	}

	registry := reportsync.NewRegistry(source.NewMongoStore(mongoDB), warehouse.New(db, logger), logger)
	dispatcher := broker.NewDispatcher(registry, topology, settings.SyncPrefetch, db, logger)

	srv := &http.Server{
		Addr: ":" + settings.Port,
		Handler: newRouter(logger, map[string]probe{
			"database": sqlDB.PingContext,
			"mongo": func(ctx context.Context) error {
				return mongoClient.Ping(ctx, readpref.Primary())
			},
			"rabbitmq": func(context.Context) error {
				if conn.IsClosed() {
					return amqp.ErrClosed
				}
				return nil
			},
		}),
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		return dispatcher.Run(gctx, conn)
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	logger.WithFields(logrus.Fields{"field": "server", "port": settings.Port, "queues": topology.Queues()}).Info("sync consumer started")
	if err := g.Wait(); err != nil {
		config.LogError(logger, "sync-consumer", "run", "consumer stopped", nil, err)
		return err
	}
	return nil
}

func declare(conn *amqp.Connection, topology broker.Topology) error {
	ch, err := conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()
	if err := topology.Declare(ch); err != nil {
		return fmt.Errorf("declare topology: %w", err)
	}
	return nil
}
