package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Fact rows are keyed by the id of the source child document they measure.
// They are never deleted: a child that disappears from its report is archived.

type FactEmployeeWork struct {
	ID            uint            `gorm:"primary_key" json:"id"`
	MongoId       string          `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	DailyReportId uint            `gorm:"index;not null" json:"daily_report_id"`
	JobsiteId     uint            `gorm:"index;not null" json:"jobsite_id"`
	CrewId        uint            `gorm:"index;not null" json:"crew_id"`
	EmployeeId    uint            `gorm:"index;not null" json:"employee_id"`
	WorkDate      time.Time       `gorm:"index;not null" json:"work_date"`
	StartTime     time.Time       `json:"start_time"`
	EndTime       time.Time       `json:"end_time"`
	JobTitle      string          `gorm:"size:255" json:"job_title"`
	Hours         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"hours"`
	HourlyRate    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"hourly_rate"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_cost"`
	ArchivedAt    *time.Time      `gorm:"index" json:"archived_at"`
	SyncedAt      time.Time       `gorm:"not null" json:"synced_at"`
}

func (FactEmployeeWork) TableName() string { return "fact_employee_work" }

type FactVehicleWork struct {
	ID            uint            `gorm:"primary_key" json:"id"`
	MongoId       string          `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	DailyReportId uint            `gorm:"index;not null" json:"daily_report_id"`
	JobsiteId     uint            `gorm:"index;not null" json:"jobsite_id"`
	CrewId        uint            `gorm:"index;not null" json:"crew_id"`
	VehicleId     uint            `gorm:"index;not null" json:"vehicle_id"`
	WorkDate      time.Time       `gorm:"index;not null" json:"work_date"`
	JobTitle      string          `gorm:"size:255" json:"job_title"`
	Hours         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"hours"`
	HourlyRate    decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"hourly_rate"`
	TotalCost     decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"total_cost"`
	ArchivedAt    *time.Time      `gorm:"index" json:"archived_at"`
	SyncedAt      time.Time       `gorm:"not null" json:"synced_at"`
}

func (FactVehicleWork) TableName() string { return "fact_vehicle_work" }

type FactMaterialShipment struct {
	ID                uint                `gorm:"primary_key" json:"id"`
	MongoId           string              `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	DailyReportId     uint                `gorm:"index;not null" json:"daily_report_id"`
	JobsiteId         uint                `gorm:"index;not null" json:"jobsite_id"`
	CrewId            uint                `gorm:"index;not null" json:"crew_id"`
	JobsiteMaterialId uint                `gorm:"index;not null" json:"jobsite_material_id"`
	MaterialId        uint                `gorm:"index;not null" json:"material_id"`
	SupplierId        uint                `gorm:"index;not null" json:"supplier_id"`
	WorkDate          time.Time           `gorm:"index;not null" json:"work_date"`
	Quantity          decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Unit              string              `gorm:"size:50" json:"unit"`
	Tonnes            decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"tonnes"`
	CostType          CostType            `gorm:"size:20" json:"cost_type"`
	Rate              decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"rate"`
	Estimated         bool                `gorm:"default:false" json:"estimated"`
	TotalCost         decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"total_cost"`
	VehicleSource     string              `gorm:"size:255" json:"vehicle_source"`
	VehicleType       string              `gorm:"size:100" json:"vehicle_type"`
	VehicleCode       string              `gorm:"size:100" json:"vehicle_code"`
	ArchivedAt        *time.Time          `gorm:"index" json:"archived_at"`
	SyncedAt          time.Time           `gorm:"not null" json:"synced_at"`
}

func (FactMaterialShipment) TableName() string { return "fact_material_shipments" }

// FactNonCostedMaterial records shipments that are not tied to a jobsite
// material and therefore carry no rate.
type FactNonCostedMaterial struct {
	ID            uint                `gorm:"primary_key" json:"id"`
	MongoId       string              `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	DailyReportId uint                `gorm:"index;not null" json:"daily_report_id"`
	JobsiteId     uint                `gorm:"index;not null" json:"jobsite_id"`
	CrewId        uint                `gorm:"index;not null" json:"crew_id"`
	WorkDate      time.Time           `gorm:"index;not null" json:"work_date"`
	ShipmentType  string              `gorm:"size:255" json:"shipment_type"`
	SupplierName  string              `gorm:"size:255" json:"supplier_name"`
	Quantity      decimal.Decimal     `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Unit          string              `gorm:"size:50" json:"unit"`
	Tonnes        decimal.NullDecimal `gorm:"type:decimal(20,4)" json:"tonnes"`
	VehicleType   string              `gorm:"size:100" json:"vehicle_type"`
	VehicleCode   string              `gorm:"size:100" json:"vehicle_code"`
	ArchivedAt    *time.Time          `gorm:"index" json:"archived_at"`
	SyncedAt      time.Time           `gorm:"not null" json:"synced_at"`
}

func (FactNonCostedMaterial) TableName() string { return "fact_non_costed_materials" }

// FactTrucking is derived from a shipment that references a jobsite trucking
// schedule; it shares the shipment's natural key.
type FactTrucking struct {
	ID            uint             `gorm:"primary_key" json:"id"`
	MongoId       string           `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	DailyReportId uint             `gorm:"index;not null" json:"daily_report_id"`
	JobsiteId     uint             `gorm:"index;not null" json:"jobsite_id"`
	CrewId        uint             `gorm:"index;not null" json:"crew_id"`
	WorkDate      time.Time        `gorm:"index;not null" json:"work_date"`
	ScheduleId    string           `gorm:"size:24" json:"schedule_id"`
	TruckingType  TruckingRateType `gorm:"size:20" json:"trucking_type"`
	Quantity      decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Hours         decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"hours"`
	Rate          decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"rate"`
	TotalCost     decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"total_cost"`
	VehicleSource string           `gorm:"size:255" json:"vehicle_source"`
	VehicleType   string           `gorm:"size:100" json:"vehicle_type"`
	VehicleCode   string           `gorm:"size:100" json:"vehicle_code"`
	ArchivedAt    *time.Time       `gorm:"index" json:"archived_at"`
	SyncedAt      time.Time        `gorm:"not null" json:"synced_at"`
}

func (FactTrucking) TableName() string { return "fact_trucking" }

type FactProduction struct {
	ID            uint            `gorm:"primary_key" json:"id"`
	MongoId       string          `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	DailyReportId uint            `gorm:"index;not null" json:"daily_report_id"`
	JobsiteId     uint            `gorm:"index;not null" json:"jobsite_id"`
	CrewId        uint            `gorm:"index;not null" json:"crew_id"`
	WorkDate      time.Time       `gorm:"index;not null" json:"work_date"`
	JobTitle      string          `gorm:"size:255" json:"job_title"`
	Quantity      decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"quantity"`
	Unit          string          `gorm:"size:50" json:"unit"`
	Hours         decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"hours"`
	Description   string          `gorm:"type:text" json:"description"`
	ArchivedAt    *time.Time      `gorm:"index" json:"archived_at"`
	SyncedAt      time.Time       `gorm:"not null" json:"synced_at"`
}

func (FactProduction) TableName() string { return "fact_production" }

type FactInvoice struct {
	ID                uint             `gorm:"primary_key" json:"id"`
	MongoId           string           `gorm:"uniqueIndex;size:24;not null" json:"mongo_id"`
	JobsiteId         uint             `gorm:"index;not null" json:"jobsite_id"`
	CompanyId         uint             `gorm:"index;not null" json:"company_id"`
	JobsiteMaterialId *uint            `gorm:"index" json:"jobsite_material_id"`
	Direction         InvoiceDirection `gorm:"size:20;not null" json:"direction"`
	InvoiceType       InvoiceType      `gorm:"size:20;not null" json:"invoice_type"`
	Amount            decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"amount"`
	InvoiceNumber     string           `gorm:"size:100" json:"invoice_number"`
	InvoiceDate       time.Time        `gorm:"index;not null" json:"invoice_date"`
	Description       string           `gorm:"type:text" json:"description"`
	ArchivedAt        *time.Time       `gorm:"index" json:"archived_at"`
	SyncedAt          time.Time        `gorm:"not null" json:"synced_at"`
}

func (FactInvoice) TableName() string { return "fact_invoices" }
