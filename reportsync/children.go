package reportsync

import (
	"context"
	"fmt"

	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/source"
	"github.com/mmdatafocus/sitesync/warehouse"
)

// fetchChild reads one child document and the report that lists it, and
// narrows the report bundle to that child.
func fetchChild[C any](
	ctx context.Context,
	store source.Store,
	field source.ChildField,
	id string,
	get func(context.Context, string) (*C, error),
	attach func(*reportBundle, C),
) (*reportBundle, error) {
	child, err := get(ctx, id)
	if err != nil || child == nil {
		return nil, err
	}
	report, err := store.DailyReportByChild(ctx, field, id)
	if err != nil {
		return nil, err
	}
	if report == nil {
		return nil, fmt.Errorf("%w: no daily report lists %s %s", ErrValidation, field, id)
	}
	b := &reportBundle{report: *report}
	attach(b, *child)
	if err := fetchReportContext(ctx, store, b); err != nil {
		return nil, err
	}
	return b, nil
}

type childSpec struct {
	entity   string
	fetch    func(ctx context.Context, id string) (*reportBundle, error)
	id       func(b *reportBundle) string
	validate func(b *reportBundle) error
	// load writes the single child once the report scope is in place and
	// reports whether it could be loaded.
	load   func(ctx context.Context, l *reportLoader) (bool, error)
	delete func(ctx context.Context, tx *warehouse.Warehouse, id string) error
}

func countChildren(b *reportBundle, stats *Stats) {
	if b.report.Archived {
		return
	}
	stats.add(b.childStats())
}

func (s *Syncers) childHandler(spec childSpec) Handler[reportBundle] {
	return Handler[reportBundle]{
		Entity: spec.entity,
		Fetch:  spec.fetch,
		Validate: func(b *reportBundle) error {
			if b.report.Archived {
				return nil
			}
			if err := spec.validate(b); err != nil {
				return err
			}
			return validateReportBundle(b)
		},
		Load: func(ctx context.Context, b *reportBundle) error {
			return s.wh.Tx(ctx, func(tx *warehouse.Warehouse) error {
				// The child of an archived report follows the report.
				if b.report.Archived {
					b.written = &Stats{}
					return spec.delete(ctx, tx, spec.id(b))
				}
				l := newReportLoader(tx, b, s.logger)
				if err := l.loadScope(ctx); err != nil {
					return err
				}
				ok, err := spec.load(ctx, l)
				if err != nil {
					return err
				}
				if !ok {
					return fmt.Errorf("%w: %s references missing documents", ErrValidation, spec.entity)
				}
				b.written = &l.stats
				return nil
			})
		},
		Delete: func(ctx context.Context, id string) error {
			return s.wh.Tx(ctx, func(tx *warehouse.Warehouse) error {
				return spec.delete(ctx, tx, id)
			})
		},
		Count:  countChildren,
		Logger: s.logger,
	}
}

func archiveFact(model any) func(context.Context, *warehouse.Warehouse, string) error {
	return func(ctx context.Context, tx *warehouse.Warehouse, id string) error {
		_, err := tx.ArchiveByMongoId(ctx, model, id)
		return err
	}
}

func (s *Syncers) employeeWorkHandler() Handler[reportBundle] {
	return s.childHandler(childSpec{
		entity: EntityEmployeeWork,
		fetch: func(ctx context.Context, id string) (*reportBundle, error) {
			return fetchChild(ctx, s.store, source.ChildEmployeeWork, id, s.store.EmployeeWork,
				func(b *reportBundle, c source.EmployeeWork) { b.employeeWork = []source.EmployeeWork{c} })
		},
		id:       func(b *reportBundle) string { return b.employeeWork[0].ID },
		validate: func(b *reportBundle) error { return validateStruct(&b.employeeWork[0]) },
		load: func(ctx context.Context, l *reportLoader) (bool, error) {
			return l.employeeWork(ctx, l.b.employeeWork[0])
		},
		delete: archiveFact(&models.FactEmployeeWork{}),
	})
}

func (s *Syncers) vehicleWorkHandler() Handler[reportBundle] {
	return s.childHandler(childSpec{
		entity: EntityVehicleWork,
		fetch: func(ctx context.Context, id string) (*reportBundle, error) {
			return fetchChild(ctx, s.store, source.ChildVehicleWork, id, s.store.VehicleWork,
				func(b *reportBundle, c source.VehicleWork) { b.vehicleWork = []source.VehicleWork{c} })
		},
		id:       func(b *reportBundle) string { return b.vehicleWork[0].ID },
		validate: func(b *reportBundle) error { return validateStruct(&b.vehicleWork[0]) },
		load: func(ctx context.Context, l *reportLoader) (bool, error) {
			return l.vehicleWork(ctx, l.b.vehicleWork[0])
		},
		delete: archiveFact(&models.FactVehicleWork{}),
	})
}

func (s *Syncers) productionHandler() Handler[reportBundle] {
	return s.childHandler(childSpec{
		entity: EntityProduction,
		fetch: func(ctx context.Context, id string) (*reportBundle, error) {
			return fetchChild(ctx, s.store, source.ChildProduction, id, s.store.Production,
				func(b *reportBundle, c source.Production) { b.production = []source.Production{c} })
		},
		id:       func(b *reportBundle) string { return b.production[0].ID },
		validate: func(b *reportBundle) error { return validateStruct(&b.production[0]) },
		load: func(ctx context.Context, l *reportLoader) (bool, error) {
			return l.production(ctx, l.b.production[0])
		},
		delete: archiveFact(&models.FactProduction{}),
	})
}

// A shipment can move between the costed and non-costed families, or lose
// its trucking reference; the families it no longer belongs to are archived.
func (s *Syncers) materialShipmentHandler() Handler[reportBundle] {
	return s.childHandler(childSpec{
		entity: EntityMaterialShipment,
		fetch: func(ctx context.Context, id string) (*reportBundle, error) {
			return fetchChild(ctx, s.store, source.ChildMaterialShipment, id, s.store.MaterialShipment,
				func(b *reportBundle, c source.MaterialShipment) { b.shipments = []source.MaterialShipment{c} })
		},
		id:       func(b *reportBundle) string { return b.shipments[0].ID },
		validate: func(b *reportBundle) error { return validateStruct(&b.shipments[0]) },
		load: func(ctx context.Context, l *reportLoader) (bool, error) {
			ship := l.b.shipments[0]
			res, err := l.shipment(ctx, ship)
			if err != nil {
				return false, err
			}
			stale := map[any]bool{
				&models.FactMaterialShipment{}:  !res.costed,
				&models.FactNonCostedMaterial{}: !res.nonCosted,
				&models.FactTrucking{}:          !res.trucking,
			}
			for model, archive := range stale {
				if !archive {
					continue
				}
				if _, err := l.tx.ArchiveByMongoId(ctx, model, ship.ID); err != nil {
					return false, err
				}
			}
			return res.costed || res.nonCosted, nil
		},
		delete: func(ctx context.Context, tx *warehouse.Warehouse, id string) error {
			return tx.ArchiveShipment(ctx, id)
		},
	})
}
