package warehouse

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/source"
)

const rateBatchSize = 100

// replaceRows deletes every row owned by owner and inserts rows in its place.
func replaceRows[T any](ctx context.Context, db *gorm.DB, ownerColumn string, owner any, rows []T) error {
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where(ownerColumn+" = ?", owner).Delete(new(T)).Error; err != nil {
			return fmt.Errorf("clear %T: %w", new(T), err)
		}
		if len(rows) == 0 {
			return nil
		}
		if err := tx.CreateInBatches(&rows, rateBatchSize).Error; err != nil {
			return fmt.Errorf("insert %T: %w", new(T), err)
		}
		return nil
	})
}

func (w *Warehouse) ReplaceEmployeeRates(ctx context.Context, employeeId uint, rates []source.Rate) error {
	now := w.now()
	rows := make([]models.DimEmployeeRate, 0, len(rates))
	for _, r := range rates {
		rows = append(rows, models.DimEmployeeRate{
			EmployeeId:    employeeId,
			Rate:          decimal.NewFromFloat(r.Rate),
			EffectiveDate: r.Date.UTC(),
			SyncedAt:      now,
		})
	}
	return replaceRows(ctx, w.db, "employee_id", employeeId, rows)
}

func (w *Warehouse) ReplaceVehicleRates(ctx context.Context, vehicleId uint, rates []source.Rate) error {
	now := w.now()
	rows := make([]models.DimVehicleRate, 0, len(rates))
	for _, r := range rates {
		rows = append(rows, models.DimVehicleRate{
			VehicleId:     vehicleId,
			Rate:          decimal.NewFromFloat(r.Rate),
			EffectiveDate: r.Date.UTC(),
			SyncedAt:      now,
		})
	}
	return replaceRows(ctx, w.db, "vehicle_id", vehicleId, rows)
}

// ReplaceJobsiteMaterialRates stores the standard schedule and every delivered
// schedule of doc under one owner.
func (w *Warehouse) ReplaceJobsiteMaterialRates(ctx context.Context, jobsiteMaterialId uint, doc source.JobsiteMaterial) error {
	now := w.now()
	var rows []models.DimJobsiteMaterialRate
	for _, r := range doc.Rates {
		rows = append(rows, models.DimJobsiteMaterialRate{
			JobsiteMaterialId: jobsiteMaterialId,
			Kind:              models.MaterialRateKindStandard,
			Rate:              decimal.NewFromFloat(r.Rate),
			EffectiveDate:     r.Date.UTC(),
			Estimated:         r.Estimated,
			SyncedAt:          now,
		})
	}
	for _, schedule := range doc.DeliveredRates {
		for _, r := range schedule.Rates {
			rows = append(rows, models.DimJobsiteMaterialRate{
				JobsiteMaterialId: jobsiteMaterialId,
				Kind:              models.MaterialRateKindDelivered,
				ScheduleId:        schedule.ID,
				Title:             schedule.Title,
				Rate:              decimal.NewFromFloat(r.Rate),
				EffectiveDate:     r.Date.UTC(),
				Estimated:         r.Estimated,
				SyncedAt:          now,
			})
		}
	}
	return replaceRows(ctx, w.db, "jobsite_material_id", jobsiteMaterialId, rows)
}

func (w *Warehouse) ReplaceTruckingRates(ctx context.Context, jobsiteId uint, schedules []source.TruckingRateSchedule) error {
	now := w.now()
	var rows []models.DimJobsiteTruckingRate
	for _, schedule := range schedules {
		for _, r := range schedule.Rates {
			rows = append(rows, models.DimJobsiteTruckingRate{
				JobsiteId:     jobsiteId,
				ScheduleId:    schedule.ID,
				Title:         schedule.Title,
				Rate:          decimal.NewFromFloat(r.Rate),
				EffectiveDate: r.Date.UTC(),
				RateType:      truckingRateType(r.Type),
				SyncedAt:      now,
			})
		}
	}
	return replaceRows(ctx, w.db, "jobsite_id", jobsiteId, rows)
}

func truckingRateType(v string) models.TruckingRateType {
	if strings.EqualFold(v, string(models.TruckingRateTypeQuantity)) {
		return models.TruckingRateTypeQuantity
	}
	return models.TruckingRateTypeHour
}

// LatestEffective returns the row with the newest effective date on or before
// date. Among rows sharing that date the last one wins.
func LatestEffective[T any](rows []T, date time.Time, effective func(T) time.Time) (T, bool) {
	var best T
	var bestDate time.Time
	found := false
	for _, row := range rows {
		d := effective(row)
		if d.After(date) {
			continue
		}
		if !found || !d.Before(bestDate) {
			best, bestDate, found = row, d, true
		}
	}
	return best, found
}

func (w *Warehouse) warnMissingRate(kind string, ownerId uint, date time.Time) {
	w.log(logrus.Fields{
		"rate_kind": kind,
		"owner_id":  ownerId,
		"date":      date.Format(time.DateOnly),
	}).Warn("no effective rate, using 0")
}

// EmployeeRateForDate returns the employee's rate in effect on date, or 0.
func (w *Warehouse) EmployeeRateForDate(ctx context.Context, employeeId uint, date time.Time) (decimal.Decimal, error) {
	var rows []models.DimEmployeeRate
	if err := w.db.WithContext(ctx).Where("employee_id = ?", employeeId).Order("id").Find(&rows).Error; err != nil {
		return decimal.Zero, fmt.Errorf("employee rates %d: %w", employeeId, err)
	}
	row, ok := LatestEffective(rows, date, func(r models.DimEmployeeRate) time.Time { return r.EffectiveDate })
	if !ok {
		w.warnMissingRate("employee", employeeId, date)
		return decimal.Zero, nil
	}
	return row.Rate, nil
}

// VehicleRateForDate returns the vehicle's rate in effect on date, or 0.
func (w *Warehouse) VehicleRateForDate(ctx context.Context, vehicleId uint, date time.Time) (decimal.Decimal, error) {
	var rows []models.DimVehicleRate
	if err := w.db.WithContext(ctx).Where("vehicle_id = ?", vehicleId).Order("id").Find(&rows).Error; err != nil {
		return decimal.Zero, fmt.Errorf("vehicle rates %d: %w", vehicleId, err)
	}
	row, ok := LatestEffective(rows, date, func(r models.DimVehicleRate) time.Time { return r.EffectiveDate })
	if !ok {
		w.warnMissingRate("vehicle", vehicleId, date)
		return decimal.Zero, nil
	}
	return row.Rate, nil
}

type MaterialRate struct {
	Rate      decimal.Decimal
	Estimated bool
}

// MaterialRateForDate prices a shipment of a jobsite material. Delivered
// pricing uses the delivered schedule titled after the vehicle type and falls
// back to the standard schedule, which marks the rate estimated.
func (w *Warehouse) MaterialRateForDate(ctx context.Context, jobsiteMaterialId uint, costType models.CostType, vehicleType string, date time.Time) (MaterialRate, error) {
	if costType == models.CostTypeInvoice {
		return MaterialRate{Rate: decimal.Zero}, nil
	}

	var rows []models.DimJobsiteMaterialRate
	if err := w.db.WithContext(ctx).Where("jobsite_material_id = ?", jobsiteMaterialId).Order("id").Find(&rows).Error; err != nil {
		return MaterialRate{}, fmt.Errorf("jobsite material rates %d: %w", jobsiteMaterialId, err)
	}
	effective := func(r models.DimJobsiteMaterialRate) time.Time { return r.EffectiveDate }

	var standard, delivered []models.DimJobsiteMaterialRate
	for _, r := range rows {
		switch {
		case r.Kind == models.MaterialRateKindStandard:
			standard = append(standard, r)
		case vehicleType != "" && strings.EqualFold(strings.TrimSpace(r.Title), strings.TrimSpace(vehicleType)):
			delivered = append(delivered, r)
		}
	}

	if costType == models.CostTypeDeliveredRate {
		if row, ok := LatestEffective(delivered, date, effective); ok {
			return MaterialRate{Rate: row.Rate, Estimated: row.Estimated}, nil
		}
		if row, ok := LatestEffective(standard, date, effective); ok {
			return MaterialRate{Rate: row.Rate, Estimated: true}, nil
		}
		w.warnMissingRate("jobsite_material", jobsiteMaterialId, date)
		return MaterialRate{Rate: decimal.Zero, Estimated: true}, nil
	}

	if row, ok := LatestEffective(standard, date, effective); ok {
		return MaterialRate{Rate: row.Rate, Estimated: row.Estimated}, nil
	}
	w.warnMissingRate("jobsite_material", jobsiteMaterialId, date)
	return MaterialRate{Rate: decimal.Zero, Estimated: true}, nil
}

// TruckingRateForDate selects from one trucking schedule of a jobsite.
func (w *Warehouse) TruckingRateForDate(ctx context.Context, jobsiteId uint, scheduleId string, date time.Time) (models.DimJobsiteTruckingRate, bool, error) {
	var rows []models.DimJobsiteTruckingRate
	err := w.db.WithContext(ctx).
		Where("jobsite_id = ? AND schedule_id = ?", jobsiteId, scheduleId).
		Order("id").
		Find(&rows).Error
	if err != nil {
		return models.DimJobsiteTruckingRate{}, false, fmt.Errorf("trucking rates %d/%s: %w", jobsiteId, scheduleId, err)
	}
	row, ok := LatestEffective(rows, date, func(r models.DimJobsiteTruckingRate) time.Time { return r.EffectiveDate })
	return row, ok, nil
}
