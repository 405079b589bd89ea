package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Rate sub-tables are replaced wholesale whenever their owning dimension syncs.

type DimEmployeeRate struct {
	ID            uint            `gorm:"primary_key" json:"id"`
	EmployeeId    uint            `gorm:"index:idx_employee_rate_date,priority:1;not null" json:"employee_id"`
	Rate          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate"`
	EffectiveDate time.Time       `gorm:"index:idx_employee_rate_date,priority:2;not null" json:"effective_date"`
	SyncedAt      time.Time       `gorm:"not null" json:"synced_at"`
}

func (DimEmployeeRate) TableName() string { return "dim_employee_rates" }

type DimVehicleRate struct {
	ID            uint            `gorm:"primary_key" json:"id"`
	VehicleId     uint            `gorm:"index:idx_vehicle_rate_date,priority:1;not null" json:"vehicle_id"`
	Rate          decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate"`
	EffectiveDate time.Time       `gorm:"index:idx_vehicle_rate_date,priority:2;not null" json:"effective_date"`
	SyncedAt      time.Time       `gorm:"not null" json:"synced_at"`
}

func (DimVehicleRate) TableName() string { return "dim_vehicle_rates" }

const (
	MaterialRateKindStandard  = "standard"
	MaterialRateKindDelivered = "delivered"
)

// DimJobsiteMaterialRate holds both the standard schedule and every delivered
// schedule (one per delivered-rate title) of a jobsite material.
type DimJobsiteMaterialRate struct {
	ID                uint            `gorm:"primary_key" json:"id"`
	JobsiteMaterialId uint            `gorm:"index;not null" json:"jobsite_material_id"`
	Kind              string          `gorm:"size:20;not null" json:"kind"`
	ScheduleId        string          `gorm:"size:24" json:"schedule_id"`
	Title             string          `gorm:"size:255" json:"title"`
	Rate              decimal.Decimal `gorm:"type:decimal(20,4);default:0" json:"rate"`
	EffectiveDate     time.Time       `gorm:"not null" json:"effective_date"`
	Estimated         bool            `gorm:"default:false" json:"estimated"`
	SyncedAt          time.Time       `gorm:"not null" json:"synced_at"`
}

func (DimJobsiteMaterialRate) TableName() string { return "dim_jobsite_material_rates" }

type DimJobsiteTruckingRate struct {
	ID            uint             `gorm:"primary_key" json:"id"`
	JobsiteId     uint             `gorm:"index;not null" json:"jobsite_id"`
	ScheduleId    string           `gorm:"index;size:24;not null" json:"schedule_id"`
	Title         string           `gorm:"size:255" json:"title"`
	Rate          decimal.Decimal  `gorm:"type:decimal(20,4);default:0" json:"rate"`
	EffectiveDate time.Time        `gorm:"not null" json:"effective_date"`
	RateType      TruckingRateType `gorm:"size:20;not null" json:"rate_type"`
	SyncedAt      time.Time        `gorm:"not null" json:"synced_at"`
}

func (DimJobsiteTruckingRate) TableName() string { return "dim_jobsite_trucking_rates" }
