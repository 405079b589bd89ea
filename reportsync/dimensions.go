package reportsync

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/sitesync/source"
	"github.com/mmdatafocus/sitesync/utils"
	"github.com/mmdatafocus/sitesync/warehouse"
)

// materialBundle is a jobsite material with the documents it points at.
// Material and supplier may be nil when the source no longer has them.
type materialBundle struct {
	doc      source.JobsiteMaterial
	material *source.Material
	supplier *source.Company
}

type jobsiteBundle struct {
	jobsite   source.Jobsite
	materials []materialBundle
}

func fetchMaterialBundle(ctx context.Context, store source.Store, doc source.JobsiteMaterial) (materialBundle, error) {
	mb := materialBundle{doc: doc}
	var err error
	if doc.Material != "" {
		if mb.material, err = store.Material(ctx, doc.Material); err != nil {
			return mb, err
		}
	}
	if doc.Supplier != "" {
		if mb.supplier, err = store.Company(ctx, doc.Supplier); err != nil {
			return mb, err
		}
	}
	return mb, nil
}

// fetchJobsiteBundle reads a jobsite and the jobsite materials on its list.
func fetchJobsiteBundle(ctx context.Context, store source.Store, id string) (*jobsiteBundle, error) {
	jobsite, err := store.Jobsite(ctx, id)
	if err != nil || jobsite == nil {
		return nil, err
	}

	docs, err := store.JobsiteMaterials(ctx, utils.UniqueSlice(jobsite.Materials))
	if err != nil {
		return nil, err
	}

	b := &jobsiteBundle{jobsite: *jobsite}
	for _, doc := range docs {
		mb, err := fetchMaterialBundle(ctx, store, doc)
		if err != nil {
			return nil, err
		}
		b.materials = append(b.materials, mb)
	}
	return b, nil
}

// loadJobsiteDimension upserts the jobsite row and its trucking schedules.
func loadJobsiteDimension(ctx context.Context, tx *warehouse.Warehouse, doc source.Jobsite) (uint, error) {
	id, err := tx.UpsertJobsite(ctx, doc)
	if err != nil {
		return 0, err
	}
	if err := tx.ReplaceTruckingRates(ctx, id, doc.TruckingRates); err != nil {
		return 0, err
	}
	return id, nil
}

// loadJobsite upserts the jobsite and every loadable jobsite material, keyed
// by jobsite material natural key. Jobsite materials and invoices the jobsite
// no longer lists are archived.
func loadJobsite(ctx context.Context, tx *warehouse.Warehouse, b *jobsiteBundle, log *logrus.Entry) (uint, map[string]warehouse.CostedMaterial, error) {
	jobsiteId, err := loadJobsiteDimension(ctx, tx, b.jobsite)
	if err != nil {
		return 0, nil, err
	}
	costed := make(map[string]warehouse.CostedMaterial, len(b.materials))
	for _, mb := range b.materials {
		if err := validateStruct(&mb.doc); err != nil {
			log.WithFields(logrus.Fields{"jobsite_material": mb.doc.ID}).WithError(err).Warn("skipping incomplete jobsite material")
			continue
		}
		m, err := loadJobsiteMaterial(ctx, tx, jobsiteId, mb)
		if err != nil {
			return 0, nil, err
		}
		costed[mb.doc.ID] = m
	}

	keep := make([]string, 0, len(costed))
	invoices := append(append([]string{}, b.jobsite.RevenueInvoices...), b.jobsite.ExpenseInvoices...)
	for _, mb := range b.materials {
		if _, ok := costed[mb.doc.ID]; ok {
			keep = append(keep, mb.doc.ID)
			invoices = append(invoices, mb.doc.Invoices...)
		}
	}
	dropped, err := tx.ArchiveDroppedMaterials(ctx, jobsiteId, keep)
	if err != nil {
		return 0, nil, err
	}
	detached, err := tx.ArchiveDetachedInvoices(ctx, jobsiteId, utils.UniqueSlice(invoices))
	if err != nil {
		return 0, nil, err
	}
	if dropped > 0 || detached > 0 {
		log.WithFields(logrus.Fields{"jobsite_materials": dropped, "invoices": detached}).Info("archived rows the jobsite no longer lists")
	}
	return jobsiteId, costed, nil
}

func loadJobsiteMaterial(ctx context.Context, tx *warehouse.Warehouse, jobsiteId uint, mb materialBundle) (warehouse.CostedMaterial, error) {
	materialId, err := ensureMaterial(ctx, tx, mb.doc.Material, mb.material)
	if err != nil {
		return warehouse.CostedMaterial{}, err
	}
	supplierId, err := ensureCompany(ctx, tx, mb.doc.Supplier, mb.supplier)
	if err != nil {
		return warehouse.CostedMaterial{}, err
	}
	id, err := tx.UpsertJobsiteMaterial(ctx, mb.doc, warehouse.JobsiteMaterialRefs{
		JobsiteId:  jobsiteId,
		MaterialId: materialId,
		SupplierId: supplierId,
	})
	if err != nil {
		return warehouse.CostedMaterial{}, err
	}
	if err := tx.ReplaceJobsiteMaterialRates(ctx, id, mb.doc); err != nil {
		return warehouse.CostedMaterial{}, err
	}
	if _, err := tx.ArchiveDetachedMaterialInvoices(ctx, id, mb.doc.Invoices); err != nil {
		return warehouse.CostedMaterial{}, err
	}
	return warehouse.CostedMaterial{
		Id:         id,
		MaterialId: materialId,
		SupplierId: supplierId,
		CostType:   warehouse.CostTypeOf(mb.doc),
	}, nil
}

// ensureMaterial upserts the material when its document is known, and
// otherwise reuses (or creates a bare) row for the referenced id.
func ensureMaterial(ctx context.Context, tx *warehouse.Warehouse, id string, doc *source.Material) (uint, error) {
	if doc != nil {
		return tx.UpsertMaterial(ctx, *doc)
	}
	return ensureBare(ctx, id, tx.MaterialId, func() (uint, error) {
		return tx.UpsertMaterial(ctx, source.Material{ID: id})
	})
}

func ensureCompany(ctx context.Context, tx *warehouse.Warehouse, id string, doc *source.Company) (uint, error) {
	if doc != nil {
		return tx.UpsertCompany(ctx, *doc)
	}
	return ensureBare(ctx, id, tx.CompanyId, func() (uint, error) {
		return tx.UpsertCompany(ctx, source.Company{ID: id})
	})
}

func ensureBare(ctx context.Context, id string, lookup func(context.Context, string) (uint, bool, error), create func() (uint, error)) (uint, error) {
	existing, found, err := lookup(ctx, id)
	if err != nil {
		return 0, err
	}
	if found {
		return existing, nil
	}
	return create()
}

// ensureEmployee loads an employee and its rates. Without a document it falls
// back to an already synced row; found is false when there is none.
func ensureEmployee(ctx context.Context, tx *warehouse.Warehouse, id string, doc *source.Employee) (uint, bool, error) {
	if doc == nil {
		return tx.EmployeeId(ctx, id)
	}
	employeeId, err := tx.UpsertEmployee(ctx, *doc)
	if err != nil {
		return 0, false, err
	}
	if err := tx.ReplaceEmployeeRates(ctx, employeeId, doc.Rates); err != nil {
		return 0, false, err
	}
	return employeeId, true, nil
}

func ensureVehicle(ctx context.Context, tx *warehouse.Warehouse, id string, doc *source.Vehicle) (uint, bool, error) {
	if doc == nil {
		return tx.VehicleId(ctx, id)
	}
	vehicleId, err := tx.UpsertVehicle(ctx, *doc)
	if err != nil {
		return 0, false, err
	}
	if err := tx.ReplaceVehicleRates(ctx, vehicleId, doc.Rates); err != nil {
		return 0, false, err
	}
	return vehicleId, true, nil
}

func requireDoc[T any](doc *T, what string) error {
	if doc == nil {
		return fmt.Errorf("%w: %s missing", ErrValidation, what)
	}
	return nil
}
