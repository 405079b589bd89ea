package reportsync

import (
	"context"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/sitesync/source"
	"github.com/mmdatafocus/sitesync/warehouse"
)

func (s *Syncers) employeeHandler() Handler[source.Employee] {
	return Handler[source.Employee]{
		Entity: EntityEmployee,
		Fetch: func(ctx context.Context, id string) (*source.Employee, error) {
			return s.store.Employee(ctx, id)
		},
		Validate: func(doc *source.Employee) error {
			return validateStruct(doc)
		},
		Load: func(ctx context.Context, doc *source.Employee) error {
			return s.wh.Tx(ctx, func(tx *warehouse.Warehouse) error {
				_, _, err := ensureEmployee(ctx, tx, doc.ID, doc)
				return err
			})
		},
		// Work facts keep their employee: they are owned by their report.
		Delete: func(ctx context.Context, id string) error {
			return s.wh.ArchiveEmployee(ctx, id)
		},
		Logger: s.logger,
	}
}

func (s *Syncers) vehicleHandler() Handler[source.Vehicle] {
	return Handler[source.Vehicle]{
		Entity: EntityVehicle,
		Fetch: func(ctx context.Context, id string) (*source.Vehicle, error) {
			return s.store.Vehicle(ctx, id)
		},
		Validate: func(doc *source.Vehicle) error {
			return validateStruct(doc)
		},
		Load: func(ctx context.Context, doc *source.Vehicle) error {
			return s.wh.Tx(ctx, func(tx *warehouse.Warehouse) error {
				_, _, err := ensureVehicle(ctx, tx, doc.ID, doc)
				return err
			})
		},
		// Work facts keep their vehicle: they are owned by their report.
		Delete: func(ctx context.Context, id string) error {
			return s.wh.ArchiveVehicle(ctx, id)
		},
		Logger: s.logger,
	}
}

func (s *Syncers) crewHandler() Handler[source.Crew] {
	return Handler[source.Crew]{
		Entity: EntityCrew,
		Fetch: func(ctx context.Context, id string) (*source.Crew, error) {
			return s.store.Crew(ctx, id)
		},
		Validate: func(doc *source.Crew) error {
			return validateStruct(doc)
		},
		Load: func(ctx context.Context, doc *source.Crew) error {
			_, err := s.wh.UpsertCrew(ctx, *doc)
			return err
		},
		// Reports keep their crew: they are archived with their own report.
		Delete: func(ctx context.Context, id string) error {
			return s.wh.ArchiveCrew(ctx, id)
		},
		Logger: s.logger,
	}
}

func (s *Syncers) jobsiteHandler() Handler[jobsiteBundle] {
	return Handler[jobsiteBundle]{
		Entity: EntityJobsite,
		Fetch: func(ctx context.Context, id string) (*jobsiteBundle, error) {
			return fetchJobsiteBundle(ctx, s.store, id)
		},
		Validate: func(b *jobsiteBundle) error {
			return validateStruct(&b.jobsite)
		},
		Load: func(ctx context.Context, b *jobsiteBundle) error {
			log := s.logger.WithFields(logrus.Fields{"field": "reportsync", "jobsite": b.jobsite.ID})
			return s.wh.Tx(ctx, func(tx *warehouse.Warehouse) error {
				_, _, err := loadJobsite(ctx, tx, b, log)
				return err
			})
		},
		Delete: func(ctx context.Context, id string) error {
			return s.wh.Tx(ctx, func(tx *warehouse.Warehouse) error {
				return tx.ArchiveJobsite(ctx, id)
			})
		},
		Count: func(_ *jobsiteBundle, stats *Stats) {
			stats.Jobsites++
		},
		Logger: s.logger,
	}
}

// jobsiteMaterialBundle is a jobsite material with its owning jobsite.
type jobsiteMaterialBundle struct {
	jobsite *source.Jobsite
	materialBundle
}

func (s *Syncers) jobsiteMaterialHandler() Handler[jobsiteMaterialBundle] {
	return Handler[jobsiteMaterialBundle]{
		Entity: EntityJobsiteMaterial,
		Fetch: func(ctx context.Context, id string) (*jobsiteMaterialBundle, error) {
			doc, err := s.store.JobsiteMaterial(ctx, id)
			if err != nil || doc == nil {
				return nil, err
			}
			mb, err := fetchMaterialBundle(ctx, s.store, *doc)
			if err != nil {
				return nil, err
			}
			b := &jobsiteMaterialBundle{materialBundle: mb}
			if doc.Jobsite != "" {
				if b.jobsite, err = s.store.Jobsite(ctx, doc.Jobsite); err != nil {
					return nil, err
				}
			}
			return b, nil
		},
		Validate: func(b *jobsiteMaterialBundle) error {
			if err := validateStruct(&b.doc); err != nil {
				return err
			}
			return requireDoc(b.jobsite, "jobsite "+b.doc.Jobsite)
		},
		// A jobsite material its jobsite no longer lists is archived.
		Load: func(ctx context.Context, b *jobsiteMaterialBundle) error {
			return s.wh.Tx(ctx, func(tx *warehouse.Warehouse) error {
				if !slices.Contains(b.jobsite.Materials, b.doc.ID) {
					return tx.ArchiveJobsiteMaterial(ctx, b.doc.ID)
				}
				jobsiteId, err := loadJobsiteDimension(ctx, tx, *b.jobsite)
				if err != nil {
					return err
				}
				_, err = loadJobsiteMaterial(ctx, tx, jobsiteId, b.materialBundle)
				return err
			})
		},
		Delete: func(ctx context.Context, id string) error {
			return s.wh.Tx(ctx, func(tx *warehouse.Warehouse) error {
				return tx.ArchiveJobsiteMaterial(ctx, id)
			})
		},
		Logger: s.logger,
	}
}
