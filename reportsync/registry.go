package reportsync

import (
	"context"
	"fmt"
	"sort"

	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/sitesync/source"
	"github.com/mmdatafocus/sitesync/warehouse"
)

const (
	EntityEmployee         = "employee"
	EntityVehicle          = "vehicle"
	EntityJobsite          = "jobsite"
	EntityJobsiteMaterial  = "jobsite_material"
	EntityCrew             = "crew"
	EntityDailyReport      = "daily_report"
	EntityEmployeeWork     = "employee_work"
	EntityVehicleWork      = "vehicle_work"
	EntityMaterialShipment = "material_shipment"
	EntityProduction       = "production"
	EntityInvoice          = "invoice"
)

// Syncers holds what every handler reads from and writes to.
type Syncers struct {
	store  source.Store
	wh     *warehouse.Warehouse
	logger *logrus.Logger
}

type Registry struct {
	handlers map[string]Syncer
}

// NewRegistry registers a handler for every entity type.
func NewRegistry(store source.Store, wh *warehouse.Warehouse, logger *logrus.Logger) *Registry {
	s := &Syncers{store: store, wh: wh, logger: logger}
	r := &Registry{handlers: map[string]Syncer{}}
	r.Register(EntityEmployee, s.employeeHandler())
	r.Register(EntityVehicle, s.vehicleHandler())
	r.Register(EntityJobsite, s.jobsiteHandler())
	r.Register(EntityJobsiteMaterial, s.jobsiteMaterialHandler())
	r.Register(EntityCrew, s.crewHandler())
	r.Register(EntityDailyReport, s.dailyReportHandler())
	r.Register(EntityEmployeeWork, s.employeeWorkHandler())
	r.Register(EntityVehicleWork, s.vehicleWorkHandler())
	r.Register(EntityMaterialShipment, s.materialShipmentHandler())
	r.Register(EntityProduction, s.productionHandler())
	r.Register(EntityInvoice, s.invoiceHandler())
	return r
}

func (r *Registry) Register(entity string, h Syncer) {
	r.handlers[entity] = h
}

func (r *Registry) Lookup(entity string) (Syncer, bool) {
	h, ok := r.handlers[entity]
	return h, ok
}

// Sync routes one change event to its entity handler.
func (r *Registry) Sync(ctx context.Context, entity string, naturalId string, action Action) (Outcome, error) {
	h, ok := r.Lookup(entity)
	if !ok {
		return OutcomeFailed, fmt.Errorf("%w: %q", ErrUnknownEntity, entity)
	}
	return h.Sync(ctx, naturalId, action)
}

// Entities lists the registered entity names in sorted order.
func (r *Registry) Entities() []string {
	out := make([]string, 0, len(r.handlers))
	for e := range r.handlers {
		out = append(out, e)
	}
	sort.Strings(out)
	return out
}
