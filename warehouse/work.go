package warehouse

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/source"
)

func (w *Warehouse) UpsertEmployeeWork(ctx context.Context, scope ReportScope, doc source.EmployeeWork, employeeId uint) error {
	rate, err := w.EmployeeRateForDate(ctx, employeeId, scope.Date)
	if err != nil {
		return err
	}
	hours := hoursBetween(doc.StartTime, doc.EndTime)
	row := models.FactEmployeeWork{
		MongoId:       doc.ID,
		DailyReportId: scope.DailyReportId,
		JobsiteId:     scope.JobsiteId,
		CrewId:        scope.CrewId,
		EmployeeId:    employeeId,
		WorkDate:      scope.Date,
		StartTime:     doc.StartTime.UTC(),
		EndTime:       doc.EndTime.UTC(),
		JobTitle:      doc.JobTitle,
		Hours:         hours,
		HourlyRate:    rate,
		TotalCost:     hours.Mul(rate),
		SyncedAt:      w.now(),
	}
	_, err = upsert(ctx, w.db, &row, doc.ID,
		"daily_report_id", "jobsite_id", "crew_id", "employee_id", "work_date",
		"start_time", "end_time", "job_title", "hours", "hourly_rate", "total_cost")
	return err
}

// UpsertVehicleWork takes hours from the document and only derives them from
// start/end when none were entered.
func (w *Warehouse) UpsertVehicleWork(ctx context.Context, scope ReportScope, doc source.VehicleWork, vehicleId uint) error {
	rate, err := w.VehicleRateForDate(ctx, vehicleId, scope.Date)
	if err != nil {
		return err
	}
	hours := decimal.NewFromFloat(doc.Hours)
	if hours.IsZero() {
		hours = hoursBetweenPtr(doc.StartTime, doc.EndTime)
	}
	row := models.FactVehicleWork{
		MongoId:       doc.ID,
		DailyReportId: scope.DailyReportId,
		JobsiteId:     scope.JobsiteId,
		CrewId:        scope.CrewId,
		VehicleId:     vehicleId,
		WorkDate:      scope.Date,
		JobTitle:      doc.JobTitle,
		Hours:         hours,
		HourlyRate:    rate,
		TotalCost:     hours.Mul(rate),
		SyncedAt:      w.now(),
	}
	_, err = upsert(ctx, w.db, &row, doc.ID,
		"daily_report_id", "jobsite_id", "crew_id", "vehicle_id", "work_date",
		"job_title", "hours", "hourly_rate", "total_cost")
	return err
}

func (w *Warehouse) UpsertProduction(ctx context.Context, scope ReportScope, doc source.Production) error {
	row := models.FactProduction{
		MongoId:       doc.ID,
		DailyReportId: scope.DailyReportId,
		JobsiteId:     scope.JobsiteId,
		CrewId:        scope.CrewId,
		WorkDate:      scope.Date,
		JobTitle:      doc.JobTitle,
		Quantity:      decimal.NewFromFloat(doc.Quantity),
		Unit:          doc.Unit,
		Hours:         hoursBetween(doc.StartTime, doc.EndTime),
		Description:   doc.Description,
		SyncedAt:      w.now(),
	}
	_, err := upsert(ctx, w.db, &row, doc.ID,
		"daily_report_id", "jobsite_id", "crew_id", "work_date",
		"job_title", "quantity", "unit", "hours", "description")
	return err
}
