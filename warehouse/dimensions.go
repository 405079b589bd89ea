package warehouse

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/source"
)

func (w *Warehouse) UpsertJobsite(ctx context.Context, doc source.Jobsite) (uint, error) {
	row := models.DimJobsite{
		MongoId:     doc.ID,
		Name:        doc.Name,
		Jobcode:     doc.Jobcode,
		Description: doc.Description,
		Active:      doc.Active,
		SyncedAt:    w.now(),
	}
	return upsert(ctx, w.db, &row, doc.ID, "name", "jobcode", "description", "active")
}

func (w *Warehouse) UpsertCrew(ctx context.Context, doc source.Crew) (uint, error) {
	row := models.DimCrew{
		MongoId:  doc.ID,
		Name:     doc.Name,
		CrewType: doc.Type,
		SyncedAt: w.now(),
	}
	return upsert(ctx, w.db, &row, doc.ID, "name", "crew_type")
}

func (w *Warehouse) UpsertEmployee(ctx context.Context, doc source.Employee) (uint, error) {
	row := models.DimEmployee{
		MongoId:  doc.ID,
		Name:     doc.Name,
		JobTitle: doc.JobTitle,
		SyncedAt: w.now(),
	}
	return upsert(ctx, w.db, &row, doc.ID, "name", "job_title")
}

func (w *Warehouse) UpsertVehicle(ctx context.Context, doc source.Vehicle) (uint, error) {
	row := models.DimVehicle{
		MongoId:       doc.ID,
		Name:          doc.Name,
		VehicleCode:   doc.VehicleCode,
		VehicleType:   doc.VehicleType,
		IsRental:      doc.Rental,
		SourceCompany: doc.SourceCompany,
		SyncedAt:      w.now(),
	}
	return upsert(ctx, w.db, &row, doc.ID, "name", "vehicle_code", "vehicle_type", "is_rental", "source_company")
}

func (w *Warehouse) UpsertMaterial(ctx context.Context, doc source.Material) (uint, error) {
	row := models.DimMaterial{MongoId: doc.ID, Name: doc.Name, SyncedAt: w.now()}
	return upsert(ctx, w.db, &row, doc.ID, "name")
}

func (w *Warehouse) UpsertCompany(ctx context.Context, doc source.Company) (uint, error) {
	row := models.DimCompany{MongoId: doc.ID, Name: doc.Name, SyncedAt: w.now()}
	return upsert(ctx, w.db, &row, doc.ID, "name")
}

// JobsiteMaterialRefs are the surrogate ids a jobsite material row points at.
type JobsiteMaterialRefs struct {
	JobsiteId  uint
	MaterialId uint
	SupplierId uint
}

func (w *Warehouse) UpsertJobsiteMaterial(ctx context.Context, doc source.JobsiteMaterial, refs JobsiteMaterialRefs) (uint, error) {
	row := models.DimJobsiteMaterial{
		MongoId:    doc.ID,
		JobsiteId:  refs.JobsiteId,
		MaterialId: refs.MaterialId,
		SupplierId: refs.SupplierId,
		Quantity:   decimal.NewFromFloat(doc.Quantity),
		Unit:       doc.Unit,
		CostType:   CostTypeOf(doc),
		Delivered:  doc.Delivered,
		SyncedAt:   w.now(),
	}
	return upsert(ctx, w.db, &row, doc.ID,
		"jobsite_id", "material_id", "supplier_id", "quantity", "unit", "cost_type", "delivered")
}

// CostTypeOf defaults an unset cost type to rate.
func CostTypeOf(doc source.JobsiteMaterial) models.CostType {
	switch models.CostType(doc.CostType) {
	case models.CostTypeDeliveredRate:
		return models.CostTypeDeliveredRate
	case models.CostTypeInvoice:
		return models.CostTypeInvoice
	default:
		return models.CostTypeRate
	}
}

// ReportScope is the report grain every report-scoped fact references.
type ReportScope struct {
	DailyReportId uint
	JobsiteId     uint
	CrewId        uint
	Date          time.Time
}

func (w *Warehouse) UpsertDailyReport(ctx context.Context, doc source.DailyReport, jobsiteId uint, crewId uint) (ReportScope, error) {
	date := doc.Date.UTC()
	row := models.DimDailyReport{
		MongoId:         doc.ID,
		JobsiteId:       jobsiteId,
		CrewId:          crewId,
		ReportDate:      date,
		Approved:        doc.Approved,
		PayrollComplete: doc.PayrollComplete,
		SyncedAt:        w.now(),
	}
	id, err := upsert(ctx, w.db, &row, doc.ID,
		"jobsite_id", "crew_id", "report_date", "approved", "payroll_complete")
	if err != nil {
		return ReportScope{}, err
	}
	return ReportScope{DailyReportId: id, JobsiteId: jobsiteId, CrewId: crewId, Date: date}, nil
}

func (w *Warehouse) JobsiteId(ctx context.Context, mongoId string) (uint, bool, error) {
	return idByMongoId[models.DimJobsite](ctx, w.db, mongoId)
}

func (w *Warehouse) CrewId(ctx context.Context, mongoId string) (uint, bool, error) {
	return idByMongoId[models.DimCrew](ctx, w.db, mongoId)
}

func (w *Warehouse) EmployeeId(ctx context.Context, mongoId string) (uint, bool, error) {
	return idByMongoId[models.DimEmployee](ctx, w.db, mongoId)
}

func (w *Warehouse) VehicleId(ctx context.Context, mongoId string) (uint, bool, error) {
	return idByMongoId[models.DimVehicle](ctx, w.db, mongoId)
}

func (w *Warehouse) CompanyId(ctx context.Context, mongoId string) (uint, bool, error) {
	return idByMongoId[models.DimCompany](ctx, w.db, mongoId)
}

func (w *Warehouse) JobsiteMaterialId(ctx context.Context, mongoId string) (uint, bool, error) {
	return idByMongoId[models.DimJobsiteMaterial](ctx, w.db, mongoId)
}

func (w *Warehouse) DailyReportId(ctx context.Context, mongoId string) (uint, bool, error) {
	return idByMongoId[models.DimDailyReport](ctx, w.db, mongoId)
}

func (w *Warehouse) MaterialId(ctx context.Context, mongoId string) (uint, bool, error) {
	return idByMongoId[models.DimMaterial](ctx, w.db, mongoId)
}
