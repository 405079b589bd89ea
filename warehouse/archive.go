package warehouse

import (
	"context"
	"fmt"

	"github.com/mmdatafocus/sitesync/models"
)

// ReportFacts lists every fact family scoped to a daily report.
func ReportFacts() []any {
	return []any{
		&models.FactEmployeeWork{},
		&models.FactVehicleWork{},
		&models.FactMaterialShipment{},
		&models.FactNonCostedMaterial{},
		&models.FactTrucking{},
		&models.FactProduction{},
	}
}

func jobsiteFacts() []any {
	return append(ReportFacts(), &models.FactInvoice{})
}

// archiveWhere stamps archived_at on live rows of model matching cond.
func (w *Warehouse) archiveWhere(ctx context.Context, model any, cond string, args ...any) (int64, error) {
	now := w.now()
	res := w.db.WithContext(ctx).Model(model).
		Where("archived_at IS NULL").
		Where(cond, args...).
		Updates(map[string]any{"archived_at": now, "synced_at": now})
	if res.Error != nil {
		return 0, fmt.Errorf("archive %T: %w", model, res.Error)
	}
	return res.RowsAffected, nil
}

// archiveExcept archives the live rows of model owned through ownerColumn
// whose natural key is not in keep. An empty keep archives them all.
func (w *Warehouse) archiveExcept(ctx context.Context, model any, ownerColumn string, ownerId uint, keep []string) (int64, error) {
	if len(keep) == 0 {
		return w.archiveWhere(ctx, model, ownerColumn+" = ?", ownerId)
	}
	return w.archiveWhere(ctx, model, ownerColumn+" = ? AND mongo_id NOT IN ?", ownerId, keep)
}

// ArchiveOrphans archives the facts of one family scoped to a report whose
// natural key is not in keep. An empty keep archives the whole family.
func (w *Warehouse) ArchiveOrphans(ctx context.Context, model any, dailyReportId uint, keep []string) (int64, error) {
	return w.archiveExcept(ctx, model, "daily_report_id", dailyReportId, keep)
}

// ArchiveDetachedInvoices archives the jobsite's invoices that none of its
// lists reference any more.
func (w *Warehouse) ArchiveDetachedInvoices(ctx context.Context, jobsiteId uint, keep []string) (int64, error) {
	return w.archiveExcept(ctx, &models.FactInvoice{}, "jobsite_id", jobsiteId, keep)
}

// ArchiveDetachedMaterialInvoices is ArchiveDetachedInvoices for the list of
// one jobsite material.
func (w *Warehouse) ArchiveDetachedMaterialInvoices(ctx context.Context, jobsiteMaterialId uint, keep []string) (int64, error) {
	return w.archiveExcept(ctx, &models.FactInvoice{}, "jobsite_material_id", jobsiteMaterialId, keep)
}

// ArchiveDroppedMaterials archives the jobsite materials of a jobsite whose
// natural key is not in keep, with the shipments costed to them.
func (w *Warehouse) ArchiveDroppedMaterials(ctx context.Context, jobsiteId uint, keep []string) (int64, error) {
	q := w.db.WithContext(ctx).Model(&models.DimJobsiteMaterial{}).
		Where("jobsite_id = ? AND archived_at IS NULL", jobsiteId)
	if len(keep) > 0 {
		q = q.Where("mongo_id NOT IN ?", keep)
	}
	var dropped []string
	if err := q.Pluck("mongo_id", &dropped).Error; err != nil {
		return 0, fmt.Errorf("find dropped jobsite materials: %w", err)
	}
	for _, mongoId := range dropped {
		if err := w.ArchiveJobsiteMaterial(ctx, mongoId); err != nil {
			return 0, err
		}
	}
	return int64(len(dropped)), nil
}

func (w *Warehouse) ArchiveByMongoId(ctx context.Context, model any, mongoId string) (int64, error) {
	return w.archiveWhere(ctx, model, "mongo_id = ?", mongoId)
}

func (w *Warehouse) ArchiveEmployee(ctx context.Context, mongoId string) error {
	_, err := w.ArchiveByMongoId(ctx, &models.DimEmployee{}, mongoId)
	return err
}

func (w *Warehouse) ArchiveVehicle(ctx context.Context, mongoId string) error {
	_, err := w.ArchiveByMongoId(ctx, &models.DimVehicle{}, mongoId)
	return err
}

func (w *Warehouse) ArchiveCrew(ctx context.Context, mongoId string) error {
	_, err := w.ArchiveByMongoId(ctx, &models.DimCrew{}, mongoId)
	return err
}

func (w *Warehouse) ArchiveInvoice(ctx context.Context, mongoId string) error {
	_, err := w.ArchiveByMongoId(ctx, &models.FactInvoice{}, mongoId)
	return err
}

// ArchiveShipment archives every fact derived from one material shipment.
func (w *Warehouse) ArchiveShipment(ctx context.Context, mongoId string) error {
	for _, model := range []any{&models.FactMaterialShipment{}, &models.FactNonCostedMaterial{}, &models.FactTrucking{}} {
		if _, err := w.ArchiveByMongoId(ctx, model, mongoId); err != nil {
			return err
		}
	}
	return nil
}

// ArchiveDailyReport archives the report grain and every fact scoped to it.
func (w *Warehouse) ArchiveDailyReport(ctx context.Context, mongoId string) error {
	if _, err := w.ArchiveByMongoId(ctx, &models.DimDailyReport{}, mongoId); err != nil {
		return err
	}
	id, found, err := w.DailyReportId(ctx, mongoId)
	if err != nil || !found {
		return err
	}
	for _, model := range ReportFacts() {
		if _, err := w.archiveWhere(ctx, model, "daily_report_id = ?", id); err != nil {
			return err
		}
	}
	return nil
}

// ArchiveJobsite archives the jobsite, its reports and jobsite materials, and
// every fact on the jobsite including invoices.
func (w *Warehouse) ArchiveJobsite(ctx context.Context, mongoId string) error {
	if _, err := w.ArchiveByMongoId(ctx, &models.DimJobsite{}, mongoId); err != nil {
		return err
	}
	id, found, err := w.JobsiteId(ctx, mongoId)
	if err != nil || !found {
		return err
	}
	targets := append([]any{&models.DimDailyReport{}, &models.DimJobsiteMaterial{}}, jobsiteFacts()...)
	for _, model := range targets {
		if _, err := w.archiveWhere(ctx, model, "jobsite_id = ?", id); err != nil {
			return err
		}
	}
	return nil
}

// ArchiveJobsiteMaterial archives the pairing with the shipments costed to it
// and the invoices on its list.
func (w *Warehouse) ArchiveJobsiteMaterial(ctx context.Context, mongoId string) error {
	if _, err := w.ArchiveByMongoId(ctx, &models.DimJobsiteMaterial{}, mongoId); err != nil {
		return err
	}
	id, found, err := w.JobsiteMaterialId(ctx, mongoId)
	if err != nil || !found {
		return err
	}
	for _, model := range []any{&models.FactMaterialShipment{}, &models.FactInvoice{}} {
		if _, err := w.archiveWhere(ctx, model, "jobsite_material_id = ?", id); err != nil {
			return err
		}
	}
	return nil
}
