package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/sitesync/backfill"
	"github.com/mmdatafocus/sitesync/config"
	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/reportsync"
	"github.com/mmdatafocus/sitesync/source"
	"github.com/mmdatafocus/sitesync/utils"
	"github.com/mmdatafocus/sitesync/warehouse"
)

func main() {
	jobsiteId := flag.String("jobsite", "", "Optional: backfill only one jobsite (ObjectID hex). If empty, backfills all jobsites.")
	year := flag.Int("year", 0, "Optional: only daily reports dated in this calendar year (UTC).")
	limit := flag.Int("limit", 0, "Optional: stop after this many daily reports.")
	dryRun := flag.Bool("dry-run", false, "Fetch and validate without writing to the warehouse.")
	flag.Parse()

	opts := backfill.Options{
		JobsiteId: strings.TrimSpace(*jobsiteId),
		Year:      *year,
		Limit:     *limit,
		DryRun:    *dryRun,
	}
	res, err := run(opts)
	if res != nil {
		if out, merr := utils.MarshalIndent(res); merr == nil {
			fmt.Println(string(out))
		}
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "backfill failed: %v\n", err)
		os.Exit(1)
	}
}

func run(opts backfill.Options) (*backfill.Result, error) {
	settings, err := config.LoadSettings()
	if err != nil {
		return nil, err
	}
	logger := config.GetLogger(settings.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := config.ConnectDatabase(ctx, settings, logger)
	if err != nil {
		return nil, err
	}
	if sqlDB, err := db.DB(); err == nil {
		defer sqlDB.Close()
	}
	if !settings.SkipMigrations && !opts.DryRun {
		if err := models.MigrateTable(db); err != nil {
			return nil, fmt.Errorf("migrate: %w", err)
		}
	}

	mongoClient, mongoDB, err := config.ConnectMongo(ctx, settings, logger)
	if err != nil {
		return nil, err
	}
	defer mongoClient.Disconnect(context.Background())

	store := source.NewMongoStore(mongoDB)
	registry := reportsync.NewRegistry(store, warehouse.New(db, logger), logger)
	job := backfill.NewJob(store, registry, db, logger)

	rdb, locker, err := config.ConnectRedis(ctx, settings, logger)
	if err != nil {
		return nil, err
	}
	if rdb != nil {
		defer rdb.Close()
		job.Locker = backfill.NewRedisLocker(locker, logger)
	}

	gcs, err := config.ConnectStorage(ctx, settings)
	if err != nil {
		return nil, err
	}
	if gcs != nil {
		defer gcs.Close()
		job.Reporter = backfill.NewGCSReporter(gcs, settings.BackfillReportBucket)
		logger.WithFields(logrus.Fields{"field": "backfill", "bucket": settings.BackfillReportBucket}).Info("run summaries will be uploaded")
	}

	return job.Run(ctx, opts)
}
