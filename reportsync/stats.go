package reportsync

import (
	"context"

	"github.com/mmdatafocus/sitesync/appctx"
)

// Stats counts what a run synced. It is not safe for concurrent use.
type Stats struct {
	Jobsites           int `json:"jobsites"`
	Reports            int `json:"reports"`
	EmployeeWork       int `json:"employeeWork"`
	VehicleWork        int `json:"vehicleWork"`
	MaterialShipments  int `json:"materialShipments"`
	NonCostedMaterials int `json:"nonCostedMaterials"`
	Trucking           int `json:"trucking"`
	Production         int `json:"production"`
	Invoices           int `json:"invoices"`
}

// Records is the number of synced rows across every family.
func (s Stats) Records() int {
	return s.Jobsites + s.Reports + s.EmployeeWork + s.VehicleWork + s.MaterialShipments +
		s.NonCostedMaterials + s.Trucking + s.Production + s.Invoices
}

func (s *Stats) add(o Stats) {
	s.Jobsites += o.Jobsites
	s.Reports += o.Reports
	s.EmployeeWork += o.EmployeeWork
	s.VehicleWork += o.VehicleWork
	s.MaterialShipments += o.MaterialShipments
	s.NonCostedMaterials += o.NonCostedMaterials
	s.Trucking += o.Trucking
	s.Production += o.Production
	s.Invoices += o.Invoices
}

var contextKeyStats = appctx.ContextKey("SyncStats")

// WithStats makes handlers add what they load to stats.
func WithStats(ctx context.Context, stats *Stats) context.Context {
	return appctx.Set(ctx, contextKeyStats, stats)
}

func statsFrom(ctx context.Context) *Stats {
	s, _ := ctx.Value(contextKeyStats).(*Stats)
	return s
}
