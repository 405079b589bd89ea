package reportsync

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/mmdatafocus/sitesync/appctx"
	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/source"
	"github.com/mmdatafocus/sitesync/testutil"
	"github.com/mmdatafocus/sitesync/warehouse"
)

func at(y int, m time.Month, d, h int) time.Time {
	return time.Date(y, m, d, h, 0, 0, 0, time.UTC)
}

type fixture struct {
	store *source.MemoryStore
	db    *gorm.DB
	reg   *Registry
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testutil.OpenDB(t)
	store := source.NewMemoryStore()
	logger := testutil.Logger()
	return &fixture{
		store: store,
		db:    db,
		reg:   NewRegistry(store, warehouse.New(db, logger), logger),
	}
}

// seedReport puts jobsite j1, crew c1, employee e1 at $20/h from 2024-01-01,
// and report r1 on 2024-02-01 with one 08:00-16:00 shift w1.
func (f *fixture) seedReport() {
	f.store.Put(
		source.Jobsite{ID: "j1", Name: "North"},
		source.Crew{ID: "c1", Name: "Base"},
		source.Employee{ID: "e1", Name: "Ann", Rates: []source.Rate{{Rate: 20, Date: at(2024, 1, 1, 0)}}},
		source.EmployeeWork{ID: "w1", Employee: "e1", StartTime: at(2024, 2, 1, 8), EndTime: at(2024, 2, 1, 16)},
		source.DailyReport{ID: "r1", Date: at(2024, 2, 1, 0), Jobsite: "j1", Crew: "c1", EmployeeWork: []string{"w1"}},
	)
}

func (f *fixture) sync(t *testing.T, entity, id string, action Action) Outcome {
	t.Helper()
	got, err := f.reg.Sync(context.Background(), entity, id, action)
	if err != nil {
		t.Fatalf("sync %s %s: %v", entity, id, err)
	}
	return got
}

func (f *fixture) employeeWork(t *testing.T, id string) models.FactEmployeeWork {
	t.Helper()
	var row models.FactEmployeeWork
	if err := f.db.Where("mongo_id = ?", id).First(&row).Error; err != nil {
		t.Fatalf("load fact %s: %v", id, err)
	}
	return row
}

func assertShift(t *testing.T, row models.FactEmployeeWork) {
	t.Helper()
	if !row.Hours.Equal(decimal.NewFromInt(8)) {
		t.Fatalf("hours = %s, want 8", row.Hours)
	}
	if !row.HourlyRate.Equal(decimal.NewFromInt(20)) {
		t.Fatalf("rate = %s, want 20", row.HourlyRate)
	}
	if !row.TotalCost.Equal(decimal.NewFromInt(160)) {
		t.Fatalf("total = %s, want 160", row.TotalCost)
	}
	if row.ArchivedAt != nil {
		t.Fatalf("fact unexpectedly archived at %v", row.ArchivedAt)
	}
}

func TestDailyReportSyncLoadsWorkFact(t *testing.T) {
	f := newFixture(t)
	f.seedReport()

	if got := f.sync(t, EntityDailyReport, "r1", ActionCreated); got != OutcomeDone {
		t.Fatalf("outcome = %s", got)
	}
	assertShift(t, f.employeeWork(t, "w1"))
}

func TestDailyReportSyncIsIdempotent(t *testing.T) {
	f := newFixture(t)
	f.seedReport()

	f.sync(t, EntityDailyReport, "r1", ActionCreated)
	first := f.employeeWork(t, "w1")
	f.sync(t, EntityDailyReport, "r1", ActionUpdated)
	second := f.employeeWork(t, "w1")

	if first.ID != second.ID {
		t.Fatalf("surrogate id changed %d -> %d", first.ID, second.ID)
	}
	var n int64
	f.db.Model(&models.FactEmployeeWork{}).Count(&n)
	if n != 1 {
		t.Fatalf("fact rows = %d, want 1", n)
	}
	assertShift(t, second)
}

func TestChildBeforeParentConverges(t *testing.T) {
	f := newFixture(t)
	f.seedReport()

	if got := f.sync(t, EntityEmployeeWork, "w1", ActionCreated); got != OutcomeDone {
		t.Fatalf("child outcome = %s", got)
	}
	f.sync(t, EntityEmployee, "e1", ActionCreated)
	f.sync(t, EntityDailyReport, "r1", ActionCreated)

	assertShift(t, f.employeeWork(t, "w1"))
	var n int64
	f.db.Model(&models.DimJobsite{}).Count(&n)
	if n != 1 {
		t.Fatalf("jobsite rows = %d, want 1", n)
	}
}

func TestChildWithoutParentIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.store.Put(source.EmployeeWork{ID: "w9", Employee: "e1", StartTime: at(2024, 2, 1, 8), EndTime: at(2024, 2, 1, 9)})

	if got := f.sync(t, EntityEmployeeWork, "w9", ActionCreated); got != OutcomeSkipped {
		t.Fatalf("outcome = %s, want skipped", got)
	}
}

func TestRemovedChildIsArchivedAndRestored(t *testing.T) {
	f := newFixture(t)
	f.seedReport()
	f.sync(t, EntityDailyReport, "r1", ActionCreated)

	f.store.Put(source.DailyReport{ID: "r1", Date: at(2024, 2, 1, 0), Jobsite: "j1", Crew: "c1"})
	f.sync(t, EntityDailyReport, "r1", ActionUpdated)
	if row := f.employeeWork(t, "w1"); row.ArchivedAt == nil {
		t.Fatalf("removed child not archived")
	}

	f.seedReport()
	f.sync(t, EntityDailyReport, "r1", ActionUpdated)
	assertShift(t, f.employeeWork(t, "w1"))
}

func TestDailyReportDeleteArchivesFacts(t *testing.T) {
	f := newFixture(t)
	f.seedReport()
	f.sync(t, EntityDailyReport, "r1", ActionCreated)

	f.store.Remove(source.CollectionDailyReports, "r1")
	if got := f.sync(t, EntityDailyReport, "r1", ActionDeleted); got != OutcomeDone {
		t.Fatalf("outcome = %s", got)
	}
	var report models.DimDailyReport
	if err := f.db.Where("mongo_id = ?", "r1").First(&report).Error; err != nil {
		t.Fatalf("load report: %v", err)
	}
	if report.ArchivedAt == nil {
		t.Fatalf("report dimension not archived")
	}
	if row := f.employeeWork(t, "w1"); row.ArchivedAt == nil {
		t.Fatalf("report fact not archived")
	}
}

func TestReportMissingCrewIsSkipped(t *testing.T) {
	f := newFixture(t)
	f.seedReport()
	f.store.Remove(source.CollectionCrews, "c1")

	if got := f.sync(t, EntityDailyReport, "r1", ActionUpdated); got != OutcomeSkipped {
		t.Fatalf("outcome = %s, want skipped", got)
	}
	var n int64
	f.db.Model(&models.FactEmployeeWork{}).Count(&n)
	if n != 0 {
		t.Fatalf("fact rows = %d, want 0", n)
	}
}

func TestMissingSourceIsSkipped(t *testing.T) {
	f := newFixture(t)
	for _, entity := range f.reg.Entities() {
		if got := f.sync(t, entity, "nope", ActionUpdated); got != OutcomeSkipped {
			t.Fatalf("%s outcome = %s, want skipped", entity, got)
		}
	}
}

func TestUnknownEntity(t *testing.T) {
	f := newFixture(t)
	if _, err := f.reg.Sync(context.Background(), "timesheet", "x", ActionUpdated); err == nil {
		t.Fatalf("expected error for unknown entity")
	}
}

func TestDryRunCountsReportWithoutWriting(t *testing.T) {
	f := newFixture(t)
	f.seedReport()

	var stats Stats
	ctx := appctx.Set(WithStats(context.Background(), &stats), appctx.ContextKeyDryRun, true)
	got, err := f.reg.Sync(ctx, EntityDailyReport, "r1", ActionUpdated)
	if err != nil || got != OutcomeDone {
		t.Fatalf("Sync = %s, %v", got, err)
	}
	if stats.Reports != 1 || stats.EmployeeWork != 1 {
		t.Fatalf("stats = %+v", stats)
	}
	var n int64
	f.db.Model(&models.DimDailyReport{}).Count(&n)
	if n != 0 {
		t.Fatalf("dry run wrote %d reports", n)
	}
}

func TestInvoiceDirection(t *testing.T) {
	f := newFixture(t)
	f.store.Put(
		source.Company{ID: "co1", Name: "Quarry"},
		source.Material{ID: "m1", Name: "Gravel"},
		source.Jobsite{ID: "j1", Name: "North", Materials: []string{"jm1"}, RevenueInvoices: []string{"i1"}, ExpenseInvoices: []string{"i2"}},
		source.JobsiteMaterial{ID: "jm1", Jobsite: "j1", Material: "m1", Supplier: "co1", Invoices: []string{"i3"}},
		source.Invoice{ID: "i1", Company: "co1", Cost: 100, Date: at(2024, 3, 1, 0)},
		source.Invoice{ID: "i2", Company: "co1", Cost: 50, Date: at(2024, 3, 1, 0), Internal: true},
		source.Invoice{ID: "i3", Company: "co1", Cost: 75, Date: at(2024, 3, 1, 0), Accrual: true, Internal: true},
		source.Invoice{ID: "i4", Company: "co1", Cost: 10, Date: at(2024, 3, 1, 0)},
	)

	for _, id := range []string{"i1", "i2", "i3"} {
		if got := f.sync(t, EntityInvoice, id, ActionCreated); got != OutcomeDone {
			t.Fatalf("%s outcome = %s", id, got)
		}
	}
	if got := f.sync(t, EntityInvoice, "i4", ActionCreated); got != OutcomeDone {
		t.Fatalf("ownerless invoice outcome = %s, want done", got)
	}
	var n int64
	f.db.Model(&models.FactInvoice{}).Where("mongo_id = ?", "i4").Count(&n)
	if n != 0 {
		t.Fatalf("ownerless invoice loaded")
	}

	want := map[string]struct {
		direction   models.InvoiceDirection
		invoiceType models.InvoiceType
		material    bool
	}{
		"i1": {models.InvoiceDirectionRevenue, models.InvoiceTypeExternal, false},
		"i2": {models.InvoiceDirectionExpense, models.InvoiceTypeInternal, false},
		"i3": {models.InvoiceDirectionExpense, models.InvoiceTypeAccrual, true},
	}
	for id, w := range want {
		var row models.FactInvoice
		if err := f.db.Where("mongo_id = ?", id).First(&row).Error; err != nil {
			t.Fatalf("load invoice %s: %v", id, err)
		}
		if row.Direction != w.direction || row.InvoiceType != w.invoiceType {
			t.Fatalf("%s = %s/%s, want %s/%s", id, row.Direction, row.InvoiceType, w.direction, w.invoiceType)
		}
		if (row.JobsiteMaterialId != nil) != w.material {
			t.Fatalf("%s jobsite material = %v, want set %v", id, row.JobsiteMaterialId, w.material)
		}
	}
}

func TestShipmentMovesBetweenFamilies(t *testing.T) {
	f := newFixture(t)
	f.seedReport()
	f.store.Put(
		source.Company{ID: "co1", Name: "Quarry"},
		source.Material{ID: "m1", Name: "Gravel"},
		source.JobsiteMaterial{ID: "jm1", Jobsite: "j1", Material: "m1", Supplier: "co1", Unit: "tonnes",
			Rates: []source.MaterialRate{{Rate: 9, Date: at(2024, 1, 1, 0)}}},
		source.Jobsite{ID: "j1", Name: "North", Materials: []string{"jm1"}},
		source.MaterialShipment{ID: "s1", JobsiteMaterial: "jm1", Quantity: 3, Unit: "tonnes"},
		source.DailyReport{ID: "r1", Date: at(2024, 2, 1, 0), Jobsite: "j1", Crew: "c1", MaterialShipment: []string{"s1"}},
	)
	f.sync(t, EntityDailyReport, "r1", ActionUpdated)

	var costed models.FactMaterialShipment
	if err := f.db.Where("mongo_id = ?", "s1").First(&costed).Error; err != nil {
		t.Fatalf("load shipment: %v", err)
	}
	if !costed.TotalCost.Equal(decimal.NewFromInt(27)) {
		t.Fatalf("total = %s, want 27", costed.TotalCost)
	}

	f.store.Put(source.MaterialShipment{ID: "s1", NoJobsiteMaterial: true, Supplier: "Pit", Quantity: 3, Unit: "tonnes"})
	if got := f.sync(t, EntityMaterialShipment, "s1", ActionUpdated); got != OutcomeDone {
		t.Fatalf("outcome = %s", got)
	}
	if err := f.db.Where("mongo_id = ?", "s1").First(&costed).Error; err != nil {
		t.Fatalf("reload shipment: %v", err)
	}
	if costed.ArchivedAt == nil {
		t.Fatalf("costed fact not archived after move")
	}
	var nonCosted models.FactNonCostedMaterial
	if err := f.db.Where("mongo_id = ?", "s1").First(&nonCosted).Error; err != nil {
		t.Fatalf("load non-costed: %v", err)
	}
	if nonCosted.ArchivedAt != nil {
		t.Fatalf("non-costed fact archived")
	}
}

func (f *fixture) archivedAt(t *testing.T, model any, id string) *time.Time {
	t.Helper()
	var row struct {
		ArchivedAt *time.Time
	}
	res := f.db.Model(model).Select("archived_at").Where("mongo_id = ?", id).Scan(&row)
	if res.Error != nil || res.RowsAffected == 0 {
		t.Fatalf("load %T %s: %v", model, id, res.Error)
	}
	return row.ArchivedAt
}

func (f *fixture) syncWithStats(t *testing.T, entity, id string, dryRun bool) (Outcome, Stats) {
	t.Helper()
	var stats Stats
	ctx := appctx.Set(WithStats(context.Background(), &stats), appctx.ContextKeyDryRun, dryRun)
	got, err := f.reg.Sync(ctx, entity, id, ActionUpdated)
	if err != nil {
		t.Fatalf("sync %s %s: %v", entity, id, err)
	}
	return got, stats
}

func TestDetachedInvoiceIsArchived(t *testing.T) {
	f := newFixture(t)
	f.store.Put(
		source.Company{ID: "co1", Name: "Quarry"},
		source.Jobsite{ID: "j1", Name: "North", RevenueInvoices: []string{"i1", "i2"}},
		source.Invoice{ID: "i1", Company: "co1", Cost: 100, Date: at(2024, 3, 1, 0)},
		source.Invoice{ID: "i2", Company: "co1", Cost: 40, Date: at(2024, 3, 1, 0)},
	)
	for _, id := range []string{"i1", "i2"} {
		f.sync(t, EntityInvoice, id, ActionCreated)
	}

	f.store.Put(source.Jobsite{ID: "j1", Name: "North"})
	if got := f.sync(t, EntityJobsite, "j1", ActionUpdated); got != OutcomeDone {
		t.Fatalf("jobsite outcome = %s", got)
	}
	for _, id := range []string{"i1", "i2"} {
		if f.archivedAt(t, &models.FactInvoice{}, id) == nil {
			t.Fatalf("%s no longer listed by its jobsite but still live", id)
		}
	}
	if got := f.sync(t, EntityInvoice, "i1", ActionUpdated); got != OutcomeDone {
		t.Fatalf("detached invoice outcome = %s, want done", got)
	}
	if f.archivedAt(t, &models.FactInvoice{}, "i1") == nil {
		t.Fatalf("invoice sync restored a detached invoice")
	}

	f.store.Put(source.Jobsite{ID: "j1", Name: "North", ExpenseInvoices: []string{"i1"}})
	f.sync(t, EntityInvoice, "i1", ActionUpdated)
	var row models.FactInvoice
	if err := f.db.Where("mongo_id = ?", "i1").First(&row).Error; err != nil {
		t.Fatalf("load invoice: %v", err)
	}
	if row.ArchivedAt != nil || row.Direction != models.InvoiceDirectionExpense {
		t.Fatalf("reattached invoice archived_at=%v direction=%s", row.ArchivedAt, row.Direction)
	}
}

func TestReportCountsOnlyLoadedChildren(t *testing.T) {
	f := newFixture(t)
	f.seedReport()
	f.store.Put(
		source.EmployeeWork{ID: "w2", Employee: "ghost", StartTime: at(2024, 2, 1, 8), EndTime: at(2024, 2, 1, 10)},
		source.DailyReport{ID: "r1", Date: at(2024, 2, 1, 0), Jobsite: "j1", Crew: "c1", EmployeeWork: []string{"w1", "w2"}},
	)

	for _, dryRun := range []bool{true, false} {
		got, stats := f.syncWithStats(t, EntityDailyReport, "r1", dryRun)
		if got != OutcomeDone {
			t.Fatalf("dry run %v: outcome = %s", dryRun, got)
		}
		if stats.Reports != 1 || stats.EmployeeWork != 1 {
			t.Fatalf("dry run %v: stats = %+v", dryRun, stats)
		}
	}
	var n int64
	f.db.Model(&models.FactEmployeeWork{}).Count(&n)
	if n != 1 {
		t.Fatalf("fact rows = %d, want 1", n)
	}

	got, stats := f.syncWithStats(t, EntityEmployeeWork, "w2", false)
	if got != OutcomeSkipped || stats.Records() != 0 {
		t.Fatalf("child without employee: outcome = %s stats = %+v", got, stats)
	}
}

func TestArchivedSourceReportIsArchived(t *testing.T) {
	f := newFixture(t)
	f.seedReport()
	f.sync(t, EntityDailyReport, "r1", ActionCreated)

	f.store.Put(source.DailyReport{ID: "r1", Date: at(2024, 2, 1, 0), Jobsite: "j1", Crew: "c1", EmployeeWork: []string{"w1"}, Archived: true})
	got, stats := f.syncWithStats(t, EntityDailyReport, "r1", false)
	if got != OutcomeDone || stats.Records() != 0 {
		t.Fatalf("outcome = %s stats = %+v", got, stats)
	}
	if f.archivedAt(t, &models.DimDailyReport{}, "r1") == nil {
		t.Fatalf("archived source report left live")
	}
	if f.archivedAt(t, &models.FactEmployeeWork{}, "w1") == nil {
		t.Fatalf("fact of an archived report left live")
	}

	if got := f.sync(t, EntityEmployeeWork, "w1", ActionUpdated); got != OutcomeDone {
		t.Fatalf("child outcome = %s", got)
	}
	if f.archivedAt(t, &models.FactEmployeeWork{}, "w1") == nil {
		t.Fatalf("child sync restored a fact of an archived report")
	}
	if f.archivedAt(t, &models.DimDailyReport{}, "r1") == nil {
		t.Fatalf("child sync restored an archived report")
	}
}

// seedMaterials puts jobsite materials jm1 and jm2 of gravel from co1 on j1.
func (f *fixture) seedMaterials() {
	f.store.Put(
		source.Company{ID: "co1", Name: "Quarry"},
		source.Material{ID: "m1", Name: "Gravel"},
		source.JobsiteMaterial{ID: "jm1", Jobsite: "j1", Material: "m1", Supplier: "co1", Unit: "tonnes",
			Rates: []source.MaterialRate{{Rate: 9, Date: at(2024, 1, 1, 0)}}},
		source.JobsiteMaterial{ID: "jm2", Jobsite: "j1", Material: "m1", Supplier: "co1", Unit: "tonnes"},
		source.Jobsite{ID: "j1", Name: "North", Materials: []string{"jm1", "jm2"}},
	)
}

func TestJobsiteArchivesDroppedMaterials(t *testing.T) {
	f := newFixture(t)
	f.seedMaterials()
	if got := f.sync(t, EntityJobsite, "j1", ActionCreated); got != OutcomeDone {
		t.Fatalf("jobsite outcome = %s", got)
	}
	if f.archivedAt(t, &models.DimJobsiteMaterial{}, "jm2") != nil {
		t.Fatalf("listed jobsite material archived")
	}

	f.store.Put(source.Jobsite{ID: "j1", Name: "North", Materials: []string{"jm1"}})
	f.sync(t, EntityJobsite, "j1", ActionUpdated)
	if f.archivedAt(t, &models.DimJobsiteMaterial{}, "jm2") == nil {
		t.Fatalf("jobsite material dropped from the jobsite left live")
	}
	if f.archivedAt(t, &models.DimJobsiteMaterial{}, "jm1") != nil {
		t.Fatalf("jm1 archived but still listed")
	}

	if got := f.sync(t, EntityJobsiteMaterial, "jm2", ActionUpdated); got != OutcomeDone {
		t.Fatalf("jobsite material outcome = %s", got)
	}
	if f.archivedAt(t, &models.DimJobsiteMaterial{}, "jm2") == nil {
		t.Fatalf("jobsite material sync restored a dropped material")
	}
}

func TestJobsiteMaterialDeleteArchivesShipments(t *testing.T) {
	f := newFixture(t)
	f.seedReport()
	f.seedMaterials()
	f.store.Put(
		source.MaterialShipment{ID: "s1", JobsiteMaterial: "jm1", Quantity: 3, Unit: "tonnes"},
		source.DailyReport{ID: "r1", Date: at(2024, 2, 1, 0), Jobsite: "j1", Crew: "c1", MaterialShipment: []string{"s1"}},
	)
	f.sync(t, EntityDailyReport, "r1", ActionCreated)

	f.store.Remove(source.CollectionJobsiteMaterials, "jm1")
	if got := f.sync(t, EntityJobsiteMaterial, "jm1", ActionDeleted); got != OutcomeDone {
		t.Fatalf("outcome = %s", got)
	}
	if f.archivedAt(t, &models.DimJobsiteMaterial{}, "jm1") == nil {
		t.Fatalf("jobsite material not archived")
	}
	if f.archivedAt(t, &models.FactMaterialShipment{}, "s1") == nil {
		t.Fatalf("shipment costed to a deleted jobsite material left live")
	}
	if f.archivedAt(t, &models.DimDailyReport{}, "r1") != nil {
		t.Fatalf("report archived with a jobsite material")
	}
}

func TestJobsiteDeleteCascades(t *testing.T) {
	f := newFixture(t)
	f.seedReport()
	f.sync(t, EntityDailyReport, "r1", ActionCreated)

	f.store.Remove(source.CollectionJobsites, "j1")
	if got := f.sync(t, EntityJobsite, "j1", ActionDeleted); got != OutcomeDone {
		t.Fatalf("outcome = %s", got)
	}
	for _, c := range []struct {
		model any
		id    string
	}{
		{&models.DimJobsite{}, "j1"},
		{&models.DimDailyReport{}, "r1"},
		{&models.FactEmployeeWork{}, "w1"},
	} {
		if f.archivedAt(t, c.model, c.id) == nil {
			t.Fatalf("%T %s not archived with its jobsite", c.model, c.id)
		}
	}
	if f.archivedAt(t, &models.DimEmployee{}, "e1") != nil {
		t.Fatalf("employee archived with a jobsite")
	}
}

func TestMasterDeleteArchivesOnlyDimension(t *testing.T) {
	f := newFixture(t)
	f.seedReport()
	f.store.Put(
		source.Vehicle{ID: "v1", Name: "Loader", Rates: []source.Rate{{Rate: 50, Date: at(2024, 1, 1, 0)}}},
		source.VehicleWork{ID: "vw1", Vehicle: "v1", Hours: 2},
		source.DailyReport{ID: "r1", Date: at(2024, 2, 1, 0), Jobsite: "j1", Crew: "c1",
			EmployeeWork: []string{"w1"}, VehicleWork: []string{"vw1"}},
	)
	f.sync(t, EntityDailyReport, "r1", ActionCreated)

	deletes := []struct {
		entity, id, collection string
		model                  any
	}{
		{EntityEmployee, "e1", source.CollectionEmployees, &models.DimEmployee{}},
		{EntityVehicle, "v1", source.CollectionVehicles, &models.DimVehicle{}},
		{EntityCrew, "c1", source.CollectionCrews, &models.DimCrew{}},
	}
	for _, d := range deletes {
		f.store.Remove(d.collection, d.id)
		if got := f.sync(t, d.entity, d.id, ActionDeleted); got != OutcomeDone {
			t.Fatalf("%s delete outcome = %s", d.entity, got)
		}
		if f.archivedAt(t, d.model, d.id) == nil {
			t.Fatalf("%s %s not archived", d.entity, d.id)
		}
	}

	assertShift(t, f.employeeWork(t, "w1"))
	var vw models.FactVehicleWork
	if err := f.db.Where("mongo_id = ?", "vw1").First(&vw).Error; err != nil {
		t.Fatalf("load vehicle work: %v", err)
	}
	if vw.ArchivedAt != nil || !vw.TotalCost.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("vehicle work archived_at=%v total=%s", vw.ArchivedAt, vw.TotalCost)
	}
	if f.archivedAt(t, &models.DimDailyReport{}, "r1") != nil {
		t.Fatalf("report archived with its crew")
	}
}

func TestReportLoadsTrucking(t *testing.T) {
	f := newFixture(t)
	f.seedReport()
	f.store.Put(
		source.Jobsite{ID: "j1", Name: "North", TruckingRates: []source.TruckingRateSchedule{
			{ID: "t1", Title: "Tandem per load", Rates: []source.TruckingRate{{Rate: 7, Date: at(2024, 1, 1, 0), Type: "Quantity"}}},
		}},
		source.MaterialShipment{ID: "s1", NoJobsiteMaterial: true, Supplier: "Pit", Quantity: 4, Unit: "loads",
			VehicleObject: &source.VehicleObject{VehicleType: "Tandem", TruckingRateId: "t1"}},
		source.DailyReport{ID: "r1", Date: at(2024, 2, 1, 0), Jobsite: "j1", Crew: "c1", MaterialShipment: []string{"s1"}},
	)

	got, stats := f.syncWithStats(t, EntityDailyReport, "r1", false)
	if got != OutcomeDone || stats.Trucking != 1 || stats.NonCostedMaterials != 1 {
		t.Fatalf("outcome = %s stats = %+v", got, stats)
	}
	var row models.FactTrucking
	if err := f.db.Where("mongo_id = ?", "s1").First(&row).Error; err != nil {
		t.Fatalf("load trucking: %v", err)
	}
	if row.TruckingType != models.TruckingRateTypeQuantity || !row.TotalCost.Equal(decimal.NewFromInt(28)) {
		t.Fatalf("trucking type %s total %s", row.TruckingType, row.TotalCost)
	}

	f.store.Put(source.MaterialShipment{ID: "s1", NoJobsiteMaterial: true, Supplier: "Pit", Quantity: 4, Unit: "loads"})
	f.sync(t, EntityMaterialShipment, "s1", ActionUpdated)
	if f.archivedAt(t, &models.FactTrucking{}, "s1") == nil {
		t.Fatalf("trucking fact left live after its schedule reference was removed")
	}
}
