// Package backfill replays the whole source, or a filtered slice of it,
// through the same handlers the consumer uses.
package backfill

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mmdatafocus/sitesync/appctx"
	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/reportsync"
	"github.com/mmdatafocus/sitesync/source"
	"github.com/mmdatafocus/sitesync/utils"
)

type Syncer interface {
	Sync(ctx context.Context, entity string, naturalId string, action reportsync.Action) (reportsync.Outcome, error)
}

type Options struct {
	JobsiteId string `json:"jobsite,omitempty"`
	Year      int    `json:"year,omitempty"`
	Limit     int    `json:"limit,omitempty"`
	DryRun    bool   `json:"dryRun"`
}

type Result struct {
	RunId  string  `json:"runId"`
	Status string  `json:"status"`
	Filter Options `json:"filter"`
	reportsync.Stats
	Skipped    int       `json:"skipped"`
	Errors     int       `json:"errors"`
	StartedAt  time.Time `json:"startedAt"`
	FinishedAt time.Time `json:"finishedAt"`
}

// status follows the integration run rules: any error with nothing synced
// fails the run, any error otherwise makes it partial.
func (r *Result) status() string {
	switch {
	case r.Errors > 0 && r.Records() == 0:
		return models.SyncRunStatusFailed
	case r.Errors > 0:
		return models.SyncRunStatusPartial
	default:
		return models.SyncRunStatusSuccess
	}
}

type Job struct {
	Store  source.Store
	Syncer Syncer
	// DB records sync_runs and sync_errors; nil disables bookkeeping.
	DB       *gorm.DB
	Locker   Locker
	Reporter Reporter
	Logger   *logrus.Logger

	now func() time.Time
}

func NewJob(store source.Store, syncer Syncer, db *gorm.DB, logger *logrus.Logger) *Job {
	return &Job{
		Store:  store,
		Syncer: syncer,
		DB:     db,
		Locker: NoopLocker{},
		Logger: logger,
		now:    time.Now,
	}
}

// Run walks jobsites, then daily reports, then invoices. Entity failures are
// counted and recorded; only a source or bookkeeping failure returns an
// error.
func (j *Job) Run(ctx context.Context, opts Options) (*Result, error) {
	unlock, err := j.Locker.Lock(ctx)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err := unlock(context.WithoutCancel(ctx)); err != nil {
			j.log().WithError(err).Warn("release backfill lock")
		}
	}()

	res := &Result{
		RunId:     uuid.NewString(),
		Filter:    opts,
		StartedAt: j.now().UTC(),
	}
	run, err := j.startRun(ctx, res)
	if err != nil {
		return nil, err
	}

	ctx = reportsync.WithStats(ctx, &res.Stats)
	ctx = appctx.Set(ctx, appctx.ContextKeyCorrelationId, res.RunId)
	ctx = appctx.Set(ctx, appctx.ContextKeySource, models.SyncSourceBackfill)
	ctx = appctx.Set(ctx, appctx.ContextKeyDryRun, opts.DryRun)
	log := j.log().WithFields(logrus.Fields{"run_id": res.RunId, "dry_run": opts.DryRun})
	log.WithField("filter", opts).Info("backfill started")

	runErr := j.walk(ctx, run, res, opts)

	res.FinishedAt = j.now().UTC()
	res.Status = res.status()
	if runErr != nil {
		res.Status = models.SyncRunStatusFailed
	}
	if err := j.finishRun(ctx, run, res); err != nil && runErr == nil {
		runErr = err
	}
	j.upload(ctx, res)

	log.WithFields(logrus.Fields{
		"status":  res.Status,
		"records": res.Records(),
		"skipped": res.Skipped,
		"errors":  res.Errors,
	}).Info("backfill finished")
	return res, runErr
}

func (j *Job) walk(ctx context.Context, run *models.SyncRun, res *Result, opts Options) error {
	var jobsites []source.Jobsite
	err := j.Store.ScanJobsites(ctx, source.JobsiteFilter{JobsiteId: opts.JobsiteId}, func(doc *source.Jobsite) error {
		jobsites = append(jobsites, *doc)
		j.sync(ctx, run, res, reportsync.EntityJobsite, doc.ID)
		return ctx.Err()
	})
	if err != nil {
		return fmt.Errorf("scan jobsites: %w", err)
	}

	filter := source.ReportFilter{JobsiteId: opts.JobsiteId, Year: opts.Year, Limit: opts.Limit}
	err = j.Store.ScanDailyReports(ctx, filter, func(doc *source.DailyReport) error {
		j.sync(ctx, run, res, reportsync.EntityDailyReport, doc.ID)
		return ctx.Err()
	})
	if err != nil {
		return fmt.Errorf("scan daily reports: %w", err)
	}

	for _, jobsite := range jobsites {
		ids, err := j.invoiceIds(ctx, jobsite)
		if err != nil {
			return fmt.Errorf("invoices of jobsite %s: %w", jobsite.ID, err)
		}
		for _, id := range ids {
			if err := ctx.Err(); err != nil {
				return err
			}
			j.sync(ctx, run, res, reportsync.EntityInvoice, id)
		}
	}
	return nil
}

// invoiceIds lists every invoice a jobsite owns directly or through its
// jobsite materials.
func (j *Job) invoiceIds(ctx context.Context, jobsite source.Jobsite) ([]string, error) {
	ids := append(append([]string{}, jobsite.RevenueInvoices...), jobsite.ExpenseInvoices...)
	materials, err := j.Store.JobsiteMaterials(ctx, jobsite.Materials)
	if err != nil {
		return nil, err
	}
	for _, m := range materials {
		ids = append(ids, m.Invoices...)
	}
	return utils.UniqueSlice(ids), nil
}

func (j *Job) sync(ctx context.Context, run *models.SyncRun, res *Result, entity, id string) {
	outcome, err := j.Syncer.Sync(ctx, entity, id, reportsync.ActionUpdated)
	switch {
	case err != nil:
		res.Errors++
		j.recordError(ctx, run, entity, id, err)
	case outcome == reportsync.OutcomeSkipped:
		res.Skipped++
	}
}

func (j *Job) recordError(ctx context.Context, run *models.SyncRun, entity, id string, cause error) {
	log := j.log().WithFields(logrus.Fields{"entity": entity, "natural_id": id})
	log.WithError(cause).Error("backfill entity failed")
	if run == nil {
		return
	}
	rec := models.SyncError{
		SyncRunId:  &run.ID,
		Source:     models.SyncSourceBackfill,
		EntityType: entity,
		NaturalId:  id,
		Action:     string(reportsync.ActionUpdated),
		ErrorKind:  string(reportsync.Classify(cause)),
		Message:    cause.Error(),
	}
	if err := models.CreateSyncError(context.WithoutCancel(ctx), j.DB, rec); err != nil {
		log.WithError(err).Error("record sync error")
	}
}

// startRun records the run unless this is a dry run or bookkeeping is off.
func (j *Job) startRun(ctx context.Context, res *Result) (*models.SyncRun, error) {
	if j.DB == nil || res.Filter.DryRun {
		return nil, nil
	}
	filters, err := utils.MarshalToJSON(res.Filter)
	if err != nil {
		return nil, err
	}
	run := &models.SyncRun{
		RunId:       res.RunId,
		Kind:        models.SyncRunKindBackfill,
		Status:      models.SyncRunStatusRunning,
		FiltersJSON: []byte(filters),
		StartedAt:   &res.StartedAt,
	}
	if err := j.DB.WithContext(ctx).Create(run).Error; err != nil {
		return nil, fmt.Errorf("create sync run: %w", err)
	}
	return run, nil
}

func (j *Job) finishRun(ctx context.Context, run *models.SyncRun, res *Result) error {
	if run == nil {
		return nil
	}
	stats, err := utils.MarshalToJSON(res.Stats)
	if err != nil {
		return err
	}
	err = j.DB.WithContext(context.WithoutCancel(ctx)).Model(run).Updates(map[string]any{
		"status":         res.Status,
		"finished_at":    res.FinishedAt,
		"duration_ms":    res.FinishedAt.Sub(res.StartedAt).Milliseconds(),
		"records_synced": res.Records(),
		"error_count":    res.Errors,
		"stats_json":     []byte(stats),
	}).Error
	if err != nil {
		return fmt.Errorf("finish sync run: %w", err)
	}
	return nil
}

func (j *Job) upload(ctx context.Context, res *Result) {
	if j.Reporter == nil {
		return
	}
	if err := j.Reporter.Report(context.WithoutCancel(ctx), res); err != nil {
		j.log().WithError(err).WithField("run_id", res.RunId).Warn("upload backfill report")
	}
}

func (j *Job) log() *logrus.Entry {
	return j.Logger.WithField("field", "backfill")
}
