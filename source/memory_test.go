package source

import (
	"context"
	"testing"
	"time"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestMemoryStoreScanDailyReportsFilters(t *testing.T) {
	store := NewMemoryStore()
	store.Put(
		DailyReport{ID: "r1", Jobsite: "j1", Crew: "c1", Date: date(2023, time.December, 31)},
		DailyReport{ID: "r2", Jobsite: "j1", Crew: "c1", Date: date(2024, time.January, 1)},
		DailyReport{ID: "r3", Jobsite: "j2", Crew: "c1", Date: date(2024, time.May, 1)},
		DailyReport{ID: "r4", Jobsite: "j1", Crew: "c1", Date: date(2024, time.June, 1), Archived: true},
		DailyReport{ID: "r5", Jobsite: "j1", Crew: "c1", Date: date(2025, time.January, 1)},
	)

	collect := func(f ReportFilter) []string {
		var ids []string
		err := store.ScanDailyReports(context.Background(), f, func(r *DailyReport) error {
			ids = append(ids, r.ID)
			return nil
		})
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		return ids
	}

	if got := collect(ReportFilter{}); len(got) != 4 {
		t.Fatalf("expected 4 non-archived reports, got %v", got)
	}
	got := collect(ReportFilter{Year: 2024})
	if len(got) != 2 || got[0] != "r2" || got[1] != "r3" {
		t.Fatalf("year filter: got %v", got)
	}
	got = collect(ReportFilter{Year: 2024, JobsiteId: "j1"})
	if len(got) != 1 || got[0] != "r2" {
		t.Fatalf("jobsite+year filter: got %v", got)
	}
	got = collect(ReportFilter{Limit: 2})
	if len(got) != 2 || got[0] != "r1" || got[1] != "r2" {
		t.Fatalf("limit: got %v", got)
	}
}

func TestMemoryStoreContainmentLookups(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	store.Put(
		Jobsite{ID: "j1", Name: "North", RevenueInvoices: []string{"i1"}, ExpenseInvoices: []string{"i2"}},
		JobsiteMaterial{ID: "jm1", Jobsite: "j1", Invoices: []string{"i3"}},
		DailyReport{ID: "r1", Jobsite: "j1", Crew: "c1", EmployeeWork: []string{"ew1"}},
	)

	j, err := store.JobsiteByInvoice(ctx, InvoiceListRevenue, "i1")
	if err != nil || j == nil || j.ID != "j1" {
		t.Fatalf("revenue lookup: %v %v", j, err)
	}
	j, _ = store.JobsiteByInvoice(ctx, InvoiceListRevenue, "i2")
	if j != nil {
		t.Fatalf("expense invoice must not match revenue list")
	}
	jm, _ := store.JobsiteMaterialByInvoice(ctx, "i3")
	if jm == nil || jm.ID != "jm1" {
		t.Fatalf("jobsite material lookup: %v", jm)
	}
	r, _ := store.DailyReportByChild(ctx, ChildEmployeeWork, "ew1")
	if r == nil || r.ID != "r1" {
		t.Fatalf("report by child: %v", r)
	}
	r, _ = store.DailyReportByChild(ctx, ChildVehicleWork, "ew1")
	if r != nil {
		t.Fatalf("wrong child field must not match")
	}

	store.Remove(CollectionDailyReports, "r1")
	if r, _ := store.DailyReport(ctx, "r1"); r != nil {
		t.Fatalf("expected removed report to be missing")
	}
}
