package backfill

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/reportsync"
	"github.com/mmdatafocus/sitesync/source"
	"github.com/mmdatafocus/sitesync/testutil"
	"github.com/mmdatafocus/sitesync/warehouse"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

func seed(store *source.MemoryStore) {
	store.Put(
		source.Company{ID: "co1", Name: "Quarry"},
		source.Jobsite{ID: "j1", Name: "North", RevenueInvoices: []string{"i1"}},
		source.Jobsite{ID: "j2", Name: "South"},
		source.Crew{ID: "c1", Name: "Base"},
		source.Employee{ID: "e1", Name: "Ann", Rates: []source.Rate{{Rate: 20, Date: at(2024, 1, 1, 0)}}},
		source.EmployeeWork{ID: "w1", Employee: "e1", StartTime: at(2024, 2, 1, 8), EndTime: at(2024, 2, 1, 16)},
		source.EmployeeWork{ID: "w2", Employee: "e1", StartTime: at(2023, 6, 1, 8), EndTime: at(2023, 6, 1, 12)},
		source.DailyReport{ID: "r1", Date: at(2024, 2, 1, 0), Jobsite: "j1", Crew: "c1", EmployeeWork: []string{"w1"}},
		source.DailyReport{ID: "r2", Date: at(2023, 6, 1, 0), Jobsite: "j1", Crew: "c1", EmployeeWork: []string{"w2"}},
		source.DailyReport{ID: "r3", Date: at(2024, 3, 1, 0), Jobsite: "j1", Crew: "c1", Archived: true},
		source.Invoice{ID: "i1", Company: "co1", Cost: 500, Date: at(2024, 2, 1, 0)},
	)
}

func newJob(t *testing.T) (*Job, *source.MemoryStore, *gorm.DB) {
	t.Helper()
	db := testutil.OpenDB(t)
	store := source.NewMemoryStore()
	seed(store)
	logger := testutil.Logger()
	registry := reportsync.NewRegistry(store, warehouse.New(db, logger), logger)
	return NewJob(store, registry, db, logger), store, db
}

func count(t *testing.T, db *gorm.DB, model any) int64 {
	t.Helper()
	var n int64
	if err := db.Model(model).Count(&n).Error; err != nil {
		t.Fatalf("count %T: %v", model, err)
	}
	return n
}

func TestRunLoadsEverything(t *testing.T) {
	job, _, db := newJob(t)

	res, err := job.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Jobsites != 2 || res.Reports != 2 || res.EmployeeWork != 2 || res.Invoices != 1 {
		t.Fatalf("counters = %+v", res.Stats)
	}
	if res.Errors != 0 || res.Status != models.SyncRunStatusSuccess {
		t.Fatalf("status = %s errors = %d", res.Status, res.Errors)
	}

	var row models.FactEmployeeWork
	if err := db.Where("mongo_id = ?", "w1").First(&row).Error; err != nil {
		t.Fatalf("load fact: %v", err)
	}
	if !row.Hours.Equal(decimal.NewFromInt(8)) || !row.TotalCost.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("fact hours=%s total=%s", row.Hours, row.TotalCost)
	}
	if n := count(t, db, &models.DimDailyReport{}); n != 2 {
		t.Fatalf("archived source report was loaded, reports = %d", n)
	}

	var run models.SyncRun
	if err := db.Where("run_id = ?", res.RunId).First(&run).Error; err != nil {
		t.Fatalf("load sync run: %v", err)
	}
	if run.Status != models.SyncRunStatusSuccess || run.RecordsSynced != res.Records() || run.FinishedAt == nil {
		t.Fatalf("sync run = %+v", run)
	}
}

// A backfill and the live path share handlers, so replaying what the
// consumer already loaded changes nothing.
func TestRunMatchesLivePath(t *testing.T) {
	job, _, db := newJob(t)
	if _, err := job.Syncer.Sync(context.Background(), reportsync.EntityDailyReport, "r1", reportsync.ActionCreated); err != nil {
		t.Fatalf("live sync: %v", err)
	}
	var live models.FactEmployeeWork
	if err := db.Where("mongo_id = ?", "w1").First(&live).Error; err != nil {
		t.Fatalf("load live fact: %v", err)
	}

	if _, err := job.Run(context.Background(), Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	var replayed models.FactEmployeeWork
	if err := db.Where("mongo_id = ?", "w1").First(&replayed).Error; err != nil {
		t.Fatalf("load replayed fact: %v", err)
	}
	if live.ID != replayed.ID || !live.TotalCost.Equal(replayed.TotalCost) || !live.HourlyRate.Equal(replayed.HourlyRate) {
		t.Fatalf("live %+v != replayed %+v", live, replayed)
	}
	if n := count(t, db, &models.FactEmployeeWork{}); n != 2 {
		t.Fatalf("fact rows = %d, want 2", n)
	}
}

// A report archived in the source ends up with no live rows whether the
// consumer sees it or a backfill skips it.
func TestArchivedReportMatchesLivePath(t *testing.T) {
	ctx := context.Background()
	job, store, db := newJob(t)
	if _, err := job.Run(ctx, Options{}); err != nil {
		t.Fatalf("Run: %v", err)
	}

	store.Put(source.DailyReport{ID: "r1", Date: at(2024, 2, 1, 0), Jobsite: "j1", Crew: "c1", EmployeeWork: []string{"w1"}, Archived: true})
	for _, id := range []string{"r1", "r3"} {
		got, err := job.Syncer.Sync(ctx, reportsync.EntityDailyReport, id, reportsync.ActionUpdated)
		if err != nil || got != reportsync.OutcomeDone {
			t.Fatalf("live sync %s = %s, %v", id, got, err)
		}
	}
	res, err := job.Run(ctx, Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reports != 1 || res.EmployeeWork != 1 {
		t.Fatalf("counters = %+v", res.Stats)
	}

	var live []string
	db.Model(&models.DimDailyReport{}).Where("archived_at IS NULL").Pluck("mongo_id", &live)
	if len(live) != 1 || live[0] != "r2" {
		t.Fatalf("live reports = %v, want [r2]", live)
	}
	var work models.FactEmployeeWork
	if err := db.Where("mongo_id = ?", "w1").First(&work).Error; err != nil {
		t.Fatalf("load fact: %v", err)
	}
	if work.ArchivedAt == nil {
		t.Fatalf("fact of an archived report left live")
	}
}

func TestRunFilters(t *testing.T) {
	job, _, db := newJob(t)

	res, err := job.Run(context.Background(), Options{JobsiteId: "j1", Year: 2024})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Jobsites != 1 || res.Reports != 1 {
		t.Fatalf("counters = %+v", res.Stats)
	}
	var report models.DimDailyReport
	if err := db.First(&report).Error; err != nil {
		t.Fatalf("load report: %v", err)
	}
	if report.MongoId != "r1" {
		t.Fatalf("loaded report %s, want r1", report.MongoId)
	}
}

func TestRunLimit(t *testing.T) {
	job, _, _ := newJob(t)
	res, err := job.Run(context.Background(), Options{Limit: 1})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reports != 1 {
		t.Fatalf("reports = %d, want 1", res.Reports)
	}
}

func TestDryRunWritesNothing(t *testing.T) {
	job, _, db := newJob(t)

	res, err := job.Run(context.Background(), Options{DryRun: true})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Reports != 2 || res.EmployeeWork != 2 || res.Invoices != 1 {
		t.Fatalf("counters = %+v", res.Stats)
	}
	for _, model := range []any{&models.DimJobsite{}, &models.FactEmployeeWork{}, &models.FactInvoice{}, &models.SyncRun{}} {
		if n := count(t, db, model); n != 0 {
			t.Fatalf("dry run wrote %d %T rows", n, model)
		}
	}
}

type failingSyncer struct {
	Syncer
	failId string
}

func (f failingSyncer) Sync(ctx context.Context, entity, id string, action reportsync.Action) (reportsync.Outcome, error) {
	if id == f.failId {
		return reportsync.OutcomeFailed, errors.New("boom")
	}
	return f.Syncer.Sync(ctx, entity, id, action)
}

func TestRunRecordsEntityErrors(t *testing.T) {
	job, _, db := newJob(t)
	job.Syncer = failingSyncer{Syncer: job.Syncer, failId: "r2"}

	res, err := job.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Errors != 1 || res.Status != models.SyncRunStatusPartial {
		t.Fatalf("status = %s errors = %d", res.Status, res.Errors)
	}

	var rec models.SyncError
	if err := db.First(&rec).Error; err != nil {
		t.Fatalf("load sync error: %v", err)
	}
	if rec.NaturalId != "r2" || rec.SyncRunId == nil || rec.Source != models.SyncSourceBackfill {
		t.Fatalf("sync error = %+v", rec)
	}
}

func TestResultStatus(t *testing.T) {
	cases := []struct {
		res  Result
		want string
	}{
		{Result{}, models.SyncRunStatusSuccess},
		{Result{Errors: 2}, models.SyncRunStatusFailed},
		{Result{Errors: 1, Stats: reportsync.Stats{Reports: 3}}, models.SyncRunStatusPartial},
	}
	for _, tc := range cases {
		if got := tc.res.status(); got != tc.want {
			t.Fatalf("status(%+v) = %s, want %s", tc.res, got, tc.want)
		}
	}
}

type busyLocker struct{}

func (busyLocker) Lock(context.Context) (func(context.Context) error, error) {
	return nil, ErrAlreadyRunning
}

func TestRunRespectsLock(t *testing.T) {
	job, _, db := newJob(t)
	job.Locker = busyLocker{}

	if _, err := job.Run(context.Background(), Options{}); !errors.Is(err, ErrAlreadyRunning) {
		t.Fatalf("Run err = %v, want ErrAlreadyRunning", err)
	}
	if n := count(t, db, &models.SyncRun{}); n != 0 {
		t.Fatalf("locked run recorded %d runs", n)
	}
}

type captureReporter struct {
	got *Result
}

func (c *captureReporter) Report(_ context.Context, res *Result) error {
	c.got = res
	return nil
}

func TestRunReportsSummary(t *testing.T) {
	job, _, _ := newJob(t)
	rep := &captureReporter{}
	job.Reporter = rep

	res, err := job.Run(context.Background(), Options{})
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if rep.got == nil || rep.got.RunId != res.RunId {
		t.Fatalf("reporter got %+v", rep.got)
	}
	if name := ReportObjectName(res.RunId); name != "backfill/"+res.RunId+".json" {
		t.Fatalf("object name = %s", name)
	}
}
