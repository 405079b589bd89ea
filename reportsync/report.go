package reportsync

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/source"
	"github.com/mmdatafocus/sitesync/warehouse"
)

// reportBundle is a daily report with every document needed to load it. A
// child handler fills only the one child it was asked about.
type reportBundle struct {
	report       source.DailyReport
	jobsite      *jobsiteBundle
	crew         *source.Crew
	employees    map[string]*source.Employee
	vehicles     map[string]*source.Vehicle
	employeeWork []source.EmployeeWork
	vehicleWork  []source.VehicleWork
	production   []source.Production
	shipments    []source.MaterialShipment
	// written is what Load wrote; nil until it commits.
	written *Stats
}

// fetchReportContext reads the jobsite, crew, employees and vehicles the
// children already in b reference.
func fetchReportContext(ctx context.Context, store source.Store, b *reportBundle) error {
	var err error
	if b.report.Jobsite != "" {
		if b.jobsite, err = fetchJobsiteBundle(ctx, store, b.report.Jobsite); err != nil {
			return err
		}
	}
	if b.report.Crew != "" {
		if b.crew, err = store.Crew(ctx, b.report.Crew); err != nil {
			return err
		}
	}

	b.employees = map[string]*source.Employee{}
	for _, w := range b.employeeWork {
		if w.Employee == "" || b.employees[w.Employee] != nil {
			continue
		}
		doc, err := store.Employee(ctx, w.Employee)
		if err != nil {
			return err
		}
		b.employees[w.Employee] = doc
	}
	b.vehicles = map[string]*source.Vehicle{}
	for _, w := range b.vehicleWork {
		if w.Vehicle == "" || b.vehicles[w.Vehicle] != nil {
			continue
		}
		doc, err := store.Vehicle(ctx, w.Vehicle)
		if err != nil {
			return err
		}
		b.vehicles[w.Vehicle] = doc
	}
	return nil
}

func fetchReportBundle(ctx context.Context, store source.Store, id string) (*reportBundle, error) {
	report, err := store.DailyReport(ctx, id)
	if err != nil || report == nil {
		return nil, err
	}
	b := &reportBundle{report: *report}
	if report.Archived {
		return b, nil
	}
	if b.employeeWork, err = store.EmployeeWorks(ctx, report.EmployeeWork); err != nil {
		return nil, err
	}
	if b.vehicleWork, err = store.VehicleWorks(ctx, report.VehicleWork); err != nil {
		return nil, err
	}
	if b.production, err = store.Productions(ctx, report.Production); err != nil {
		return nil, err
	}
	if b.shipments, err = store.MaterialShipments(ctx, report.MaterialShipment); err != nil {
		return nil, err
	}
	if err := fetchReportContext(ctx, store, b); err != nil {
		return nil, err
	}
	return b, nil
}

// validateReportBundle accepts any archived report, since loading one only
// archives it.
func validateReportBundle(b *reportBundle) error {
	if b.report.Archived {
		return nil
	}
	if err := validateStruct(&b.report); err != nil {
		return err
	}
	if b.jobsite == nil {
		return fmt.Errorf("%w: jobsite %s missing", ErrValidation, b.report.Jobsite)
	}
	return requireDoc(b.crew, "crew "+b.report.Crew)
}

// reportLoader writes one report's dimensions and facts inside a transaction.
type reportLoader struct {
	tx        *warehouse.Warehouse
	b         *reportBundle
	log       *logrus.Entry
	scope     warehouse.ReportScope
	materials map[string]warehouse.CostedMaterial
	employees map[string]uint
	vehicles  map[string]uint
	stats     Stats
}

func newReportLoader(tx *warehouse.Warehouse, b *reportBundle, logger *logrus.Logger) *reportLoader {
	return &reportLoader{
		tx: tx,
		b:  b,
		log: logger.WithFields(logrus.Fields{
			"field":        "reportsync",
			"daily_report": b.report.ID,
		}),
		employees: map[string]uint{},
		vehicles:  map[string]uint{},
	}
}

// loadScope upserts the jobsite (with its materials), crew and report grain.
func (l *reportLoader) loadScope(ctx context.Context) error {
	jobsiteId, materials, err := loadJobsite(ctx, l.tx, l.b.jobsite, l.log)
	if err != nil {
		return err
	}
	crewId, err := l.tx.UpsertCrew(ctx, *l.b.crew)
	if err != nil {
		return err
	}
	scope, err := l.tx.UpsertDailyReport(ctx, l.b.report, jobsiteId, crewId)
	if err != nil {
		return err
	}
	l.scope = scope
	l.materials = materials
	return nil
}

func (l *reportLoader) skip(kind, id string, reason error) {
	l.log.WithFields(logrus.Fields{"child": kind, "child_id": id}).WithError(reason).Warn("skipping child")
}

func (l *reportLoader) employeeWork(ctx context.Context, work source.EmployeeWork) (bool, error) {
	if err := validateStruct(&work); err != nil {
		l.skip("employee_work", work.ID, err)
		return false, nil
	}
	employeeId, ok := l.employees[work.Employee]
	if !ok {
		var found bool
		var err error
		employeeId, found, err = ensureEmployee(ctx, l.tx, work.Employee, l.b.employees[work.Employee])
		if err != nil {
			return false, err
		}
		if !found {
			l.skip("employee_work", work.ID, fmt.Errorf("%w: employee %s missing", ErrValidation, work.Employee))
			return false, nil
		}
		l.employees[work.Employee] = employeeId
	}
	if err := l.tx.UpsertEmployeeWork(ctx, l.scope, work, employeeId); err != nil {
		return false, err
	}
	l.stats.EmployeeWork++
	return true, nil
}

func (l *reportLoader) vehicleWork(ctx context.Context, work source.VehicleWork) (bool, error) {
	if err := validateStruct(&work); err != nil {
		l.skip("vehicle_work", work.ID, err)
		return false, nil
	}
	vehicleId, ok := l.vehicles[work.Vehicle]
	if !ok {
		var found bool
		var err error
		vehicleId, found, err = ensureVehicle(ctx, l.tx, work.Vehicle, l.b.vehicles[work.Vehicle])
		if err != nil {
			return false, err
		}
		if !found {
			l.skip("vehicle_work", work.ID, fmt.Errorf("%w: vehicle %s missing", ErrValidation, work.Vehicle))
			return false, nil
		}
		l.vehicles[work.Vehicle] = vehicleId
	}
	if err := l.tx.UpsertVehicleWork(ctx, l.scope, work, vehicleId); err != nil {
		return false, err
	}
	l.stats.VehicleWork++
	return true, nil
}

func (l *reportLoader) production(ctx context.Context, p source.Production) (bool, error) {
	if err := l.tx.UpsertProduction(ctx, l.scope, p); err != nil {
		return false, err
	}
	l.stats.Production++
	return true, nil
}

type shipmentResult struct {
	costed, nonCosted, trucking bool
}

// shipment loads the material fact (costed or not) and, when the shipment
// references a trucking schedule, its trucking fact.
func (l *reportLoader) shipment(ctx context.Context, s source.MaterialShipment) (shipmentResult, error) {
	var res shipmentResult
	if err := validateStruct(&s); err != nil {
		l.skip("material_shipment", s.ID, err)
		return res, nil
	}

	if s.NoJobsiteMaterial {
		if err := l.tx.UpsertNonCostedMaterial(ctx, l.scope, s); err != nil {
			return res, err
		}
		res.nonCosted = true
		l.stats.NonCostedMaterials++
	} else {
		material, ok := l.materials[s.JobsiteMaterial]
		if !ok {
			l.skip("material_shipment", s.ID, fmt.Errorf("%w: jobsite material %s missing", ErrValidation, s.JobsiteMaterial))
			return res, nil
		}
		if err := l.tx.UpsertMaterialShipment(ctx, l.scope, s, material); err != nil {
			return res, err
		}
		res.costed = true
		l.stats.MaterialShipments++
	}

	if warehouse.HasTrucking(s) {
		if err := l.tx.UpsertTrucking(ctx, l.scope, s); err != nil {
			return res, err
		}
		res.trucking = true
		l.stats.Trucking++
	}
	return res, nil
}

// loadAll upserts every child of the report and archives the facts of each
// family whose child is no longer listed.
func (l *reportLoader) loadAll(ctx context.Context) error {
	if err := l.loadScope(ctx); err != nil {
		return err
	}

	var employeeKeep, vehicleKeep, productionKeep, costedKeep, nonCostedKeep, truckingKeep []string
	for _, work := range l.b.employeeWork {
		ok, err := l.employeeWork(ctx, work)
		if err != nil {
			return err
		}
		if ok {
			employeeKeep = append(employeeKeep, work.ID)
		}
	}
	for _, work := range l.b.vehicleWork {
		ok, err := l.vehicleWork(ctx, work)
		if err != nil {
			return err
		}
		if ok {
			vehicleKeep = append(vehicleKeep, work.ID)
		}
	}
	for _, p := range l.b.production {
		ok, err := l.production(ctx, p)
		if err != nil {
			return err
		}
		if ok {
			productionKeep = append(productionKeep, p.ID)
		}
	}
	for _, s := range l.b.shipments {
		res, err := l.shipment(ctx, s)
		if err != nil {
			return err
		}
		if res.costed {
			costedKeep = append(costedKeep, s.ID)
		}
		if res.nonCosted {
			nonCostedKeep = append(nonCostedKeep, s.ID)
		}
		if res.trucking {
			truckingKeep = append(truckingKeep, s.ID)
		}
	}

	families := []struct {
		model any
		keep  []string
	}{
		{&models.FactEmployeeWork{}, employeeKeep},
		{&models.FactVehicleWork{}, vehicleKeep},
		{&models.FactProduction{}, productionKeep},
		{&models.FactMaterialShipment{}, costedKeep},
		{&models.FactNonCostedMaterial{}, nonCostedKeep},
		{&models.FactTrucking{}, truckingKeep},
	}
	for _, f := range families {
		n, err := l.tx.ArchiveOrphans(ctx, f.model, l.scope.DailyReportId, f.keep)
		if err != nil {
			return err
		}
		if n > 0 {
			l.log.WithFields(logrus.Fields{"family": fmt.Sprintf("%T", f.model), "archived": n}).Info("archived orphaned facts")
		}
	}
	return nil
}

// childStats is what Load wrote. In a dry run nothing was written, so it is
// worked out from the source documents alone; a child whose employee or
// vehicle is only known to the warehouse is not counted.
func (b *reportBundle) childStats() Stats {
	if b.written != nil {
		return *b.written
	}
	var st Stats
	for _, w := range b.employeeWork {
		if validateStruct(&w) == nil && b.employees[w.Employee] != nil {
			st.EmployeeWork++
		}
	}
	for _, w := range b.vehicleWork {
		if validateStruct(&w) == nil && b.vehicles[w.Vehicle] != nil {
			st.VehicleWork++
		}
	}
	st.Production += len(b.production)

	loadable := map[string]bool{}
	if b.jobsite != nil {
		for _, mb := range b.jobsite.materials {
			loadable[mb.doc.ID] = validateStruct(&mb.doc) == nil
		}
	}
	for _, s := range b.shipments {
		if validateStruct(&s) != nil {
			continue
		}
		switch {
		case s.NoJobsiteMaterial:
			st.NonCostedMaterials++
		case loadable[s.JobsiteMaterial]:
			st.MaterialShipments++
		default:
			continue
		}
		if warehouse.HasTrucking(s) {
			st.Trucking++
		}
	}
	return st
}

func countReport(b *reportBundle, stats *Stats) {
	if b.report.Archived {
		return
	}
	stats.Reports++
	stats.add(b.childStats())
}

func (s *Syncers) dailyReportHandler() Handler[reportBundle] {
	return Handler[reportBundle]{
		Entity: EntityDailyReport,
		Fetch: func(ctx context.Context, id string) (*reportBundle, error) {
			return fetchReportBundle(ctx, s.store, id)
		},
		Validate: validateReportBundle,
		// An archived source report is archived here too, as a backfill never
		// loads one.
		Load: func(ctx context.Context, b *reportBundle) error {
			return s.wh.Tx(ctx, func(tx *warehouse.Warehouse) error {
				if b.report.Archived {
					b.written = &Stats{}
					return tx.ArchiveDailyReport(ctx, b.report.ID)
				}
				l := newReportLoader(tx, b, s.logger)
				if err := l.loadAll(ctx); err != nil {
					return err
				}
				b.written = &l.stats
				return nil
			})
		},
		Delete: func(ctx context.Context, id string) error {
			return s.wh.Tx(ctx, func(tx *warehouse.Warehouse) error {
				return tx.ArchiveDailyReport(ctx, id)
			})
		},
		Count:  countReport,
		Logger: s.logger,
	}
}
