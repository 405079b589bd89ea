package source

import (
	"context"
	"time"

	"github.com/mmdatafocus/sitesync/utils"
)

// Collection names in the operational database.
const (
	CollectionJobsites          = "jobsites"
	CollectionJobsiteMaterials  = "jobsitematerials"
	CollectionMaterials         = "materials"
	CollectionCompanies         = "companies"
	CollectionCrews             = "crews"
	CollectionEmployees         = "employees"
	CollectionVehicles          = "vehicles"
	CollectionDailyReports      = "dailyreports"
	CollectionEmployeeWorks     = "employeeworks"
	CollectionVehicleWorks      = "vehicleworks"
	CollectionProductions       = "productions"
	CollectionMaterialShipments = "materialshipments"
	CollectionInvoices          = "invoices"
)

// ChildField names the daily report array that references a child document.
type ChildField string

const (
	ChildEmployeeWork     ChildField = "employeeWork"
	ChildVehicleWork      ChildField = "vehicleWork"
	ChildProduction       ChildField = "production"
	ChildMaterialShipment ChildField = "materialShipment"
)

// InvoiceList names a containment list that can reference an invoice.
type InvoiceList string

const (
	InvoiceListRevenue         InvoiceList = "revenueInvoices"
	InvoiceListExpense         InvoiceList = "expenseInvoices"
	InvoiceListJobsiteMaterial InvoiceList = "invoices"
)

type ReportFilter struct {
	JobsiteId string
	Year      int
	Limit     int
}

// Range returns the [from, to) window for Year, or zero times when unset.
func (f ReportFilter) Range() (time.Time, time.Time) {
	if f.Year <= 0 {
		return time.Time{}, time.Time{}
	}
	return utils.YearRange(f.Year)
}

type JobsiteFilter struct {
	JobsiteId string
}

// Store reads current source state. Single-document getters return nil, nil
// when the document does not exist; batch getters silently omit missing ids.
type Store interface {
	Jobsite(ctx context.Context, id string) (*Jobsite, error)
	JobsiteMaterial(ctx context.Context, id string) (*JobsiteMaterial, error)
	JobsiteMaterials(ctx context.Context, ids []string) ([]JobsiteMaterial, error)
	Material(ctx context.Context, id string) (*Material, error)
	Company(ctx context.Context, id string) (*Company, error)
	Crew(ctx context.Context, id string) (*Crew, error)
	Employee(ctx context.Context, id string) (*Employee, error)
	Vehicle(ctx context.Context, id string) (*Vehicle, error)
	DailyReport(ctx context.Context, id string) (*DailyReport, error)
	Invoice(ctx context.Context, id string) (*Invoice, error)

	EmployeeWork(ctx context.Context, id string) (*EmployeeWork, error)
	VehicleWork(ctx context.Context, id string) (*VehicleWork, error)
	Production(ctx context.Context, id string) (*Production, error)
	MaterialShipment(ctx context.Context, id string) (*MaterialShipment, error)
	EmployeeWorks(ctx context.Context, ids []string) ([]EmployeeWork, error)
	VehicleWorks(ctx context.Context, ids []string) ([]VehicleWork, error)
	Productions(ctx context.Context, ids []string) ([]Production, error)
	MaterialShipments(ctx context.Context, ids []string) ([]MaterialShipment, error)

	// DailyReportByChild finds the report whose field array contains childId.
	DailyReportByChild(ctx context.Context, field ChildField, childId string) (*DailyReport, error)
	// JobsiteByInvoice finds the jobsite whose list contains invoiceId.
	JobsiteByInvoice(ctx context.Context, list InvoiceList, invoiceId string) (*Jobsite, error)
	// JobsiteMaterialByInvoice finds the jobsite material whose invoice list
	// contains invoiceId.
	JobsiteMaterialByInvoice(ctx context.Context, invoiceId string) (*JobsiteMaterial, error)

	ScanJobsites(ctx context.Context, filter JobsiteFilter, fn func(*Jobsite) error) error
	// ScanDailyReports streams non-archived reports in date order.
	ScanDailyReports(ctx context.Context, filter ReportFilter, fn func(*DailyReport) error) error
}
