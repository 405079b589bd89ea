package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Dimension rows are keyed by the source document id (MongoId). Re-syncing a
// document updates the row in place; removal from the source only sets ArchivedAt.

type DimJobsite struct {
	ID          uint       `gorm:"primary_key" json:"id"`
	MongoId     string     `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	Name        string     `gorm:"size:255;not null" json:"name"`
	Jobcode     string     `gorm:"size:100" json:"jobcode"`
	Description string     `gorm:"type:text" json:"description"`
	Active      bool       `gorm:"default:false" json:"active"`
	ArchivedAt  *time.Time `gorm:"index" json:"archived_at"`
	SyncedAt    time.Time  `gorm:"not null" json:"synced_at"`
}

func (DimJobsite) TableName() string { return "dim_jobsites" }

type DimCrew struct {
	ID         uint       `gorm:"primary_key" json:"id"`
	MongoId    string     `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	CrewType   string     `gorm:"size:100" json:"crew_type"`
	ArchivedAt *time.Time `gorm:"index" json:"archived_at"`
	SyncedAt   time.Time  `gorm:"not null" json:"synced_at"`
}

func (DimCrew) TableName() string { return "dim_crews" }

type DimEmployee struct {
	ID         uint       `gorm:"primary_key" json:"id"`
	MongoId    string     `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	JobTitle   string     `gorm:"size:255" json:"job_title"`
	ArchivedAt *time.Time `gorm:"index" json:"archived_at"`
	SyncedAt   time.Time  `gorm:"not null" json:"synced_at"`
}

func (DimEmployee) TableName() string { return "dim_employees" }

type DimVehicle struct {
	ID            uint       `gorm:"primary_key" json:"id"`
	MongoId       string     `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	Name          string     `gorm:"size:255;not null" json:"name"`
	VehicleCode   string     `gorm:"size:100" json:"vehicle_code"`
	VehicleType   string     `gorm:"size:100" json:"vehicle_type"`
	IsRental      bool       `gorm:"default:false" json:"is_rental"`
	SourceCompany string     `gorm:"size:255" json:"source_company"`
	ArchivedAt    *time.Time `gorm:"index" json:"archived_at"`
	SyncedAt      time.Time  `gorm:"not null" json:"synced_at"`
}

func (DimVehicle) TableName() string { return "dim_vehicles" }

type DimMaterial struct {
	ID         uint       `gorm:"primary_key" json:"id"`
	MongoId    string     `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	ArchivedAt *time.Time `gorm:"index" json:"archived_at"`
	SyncedAt   time.Time  `gorm:"not null" json:"synced_at"`
}

func (DimMaterial) TableName() string { return "dim_materials" }

type DimCompany struct {
	ID         uint       `gorm:"primary_key" json:"id"`
	MongoId    string     `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	Name       string     `gorm:"size:255;not null" json:"name"`
	ArchivedAt *time.Time `gorm:"index" json:"archived_at"`
	SyncedAt   time.Time  `gorm:"not null" json:"synced_at"`
}

func (DimCompany) TableName() string { return "dim_companies" }

// DimJobsiteMaterial pairs a material and its supplier on one jobsite and owns
// the rate schedule shipments are costed against.
type DimJobsiteMaterial struct {
	ID         uint            `gorm:"primary_key" json:"id"`
	MongoId    string          `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	JobsiteId  uint            `gorm:"index;not null" json:"jobsite_id"`
	MaterialId uint            `gorm:"index;not null" json:"material_id"`
	SupplierId uint            `gorm:"index;not null" json:"supplier_id"`
	Quantity   decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Unit       string          `gorm:"size:50" json:"unit"`
	CostType   CostType        `gorm:"size:20" json:"cost_type"`
	Delivered  bool            `gorm:"default:false" json:"delivered"`
	ArchivedAt *time.Time      `gorm:"index" json:"archived_at"`
	SyncedAt   time.Time       `gorm:"not null" json:"synced_at"`
}

func (DimJobsiteMaterial) TableName() string { return "dim_jobsite_materials" }

// DimDailyReport is the per-report grain every report-scoped fact hangs off.
type DimDailyReport struct {
	ID              uint       `gorm:"primary_key" json:"id"`
	MongoId         string     `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	JobsiteId       uint       `gorm:"index;not null" json:"jobsite_id"`
	CrewId          uint       `gorm:"index;not null" json:"crew_id"`
	ReportDate      time.Time  `gorm:"index;not null" json:"report_date"`
	Approved        bool       `gorm:"default:false" json:"approved"`
	PayrollComplete bool       `gorm:"default:false" json:"payroll_complete"`
	ArchivedAt      *time.Time `gorm:"index" json:"archived_at"`
	SyncedAt        time.Time  `gorm:"not null" json:"synced_at"`
}

func (DimDailyReport) TableName() string { return "dim_daily_reports" }
