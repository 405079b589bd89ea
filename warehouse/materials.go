package warehouse

import (
	"context"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/source"
)

// CostedMaterial is a synced jobsite material a shipment is priced against.
type CostedMaterial struct {
	Id         uint
	MaterialId uint
	SupplierId uint
	CostType   models.CostType
}

type vehicleFields struct {
	source, vehicleType, vehicleCode string
}

func vehicleOf(doc source.MaterialShipment) vehicleFields {
	if doc.VehicleObject == nil {
		return vehicleFields{}
	}
	return vehicleFields{
		source:      doc.VehicleObject.Source,
		vehicleType: doc.VehicleObject.VehicleType,
		vehicleCode: doc.VehicleObject.VehicleCode,
	}
}

func (w *Warehouse) UpsertMaterialShipment(ctx context.Context, scope ReportScope, doc source.MaterialShipment, material CostedMaterial) error {
	vehicle := vehicleOf(doc)
	quantity := decimal.NewFromFloat(doc.Quantity)
	price, err := w.MaterialRateForDate(ctx, material.Id, material.CostType, vehicle.vehicleType, scope.Date)
	if err != nil {
		return err
	}
	row := models.FactMaterialShipment{
		MongoId:           doc.ID,
		DailyReportId:     scope.DailyReportId,
		JobsiteId:         scope.JobsiteId,
		CrewId:            scope.CrewId,
		JobsiteMaterialId: material.Id,
		MaterialId:        material.MaterialId,
		SupplierId:        material.SupplierId,
		WorkDate:          scope.Date,
		Quantity:          quantity,
		Unit:              doc.Unit,
		Tonnes:            ToTonnes(quantity, doc.Unit, vehicle.vehicleType),
		CostType:          material.CostType,
		Rate:              price.Rate,
		Estimated:         price.Estimated,
		TotalCost:         quantity.Mul(price.Rate),
		VehicleSource:     vehicle.source,
		VehicleType:       vehicle.vehicleType,
		VehicleCode:       vehicle.vehicleCode,
		SyncedAt:          w.now(),
	}
	_, err = upsert(ctx, w.db, &row, doc.ID,
		"daily_report_id", "jobsite_id", "crew_id", "jobsite_material_id", "material_id", "supplier_id",
		"work_date", "quantity", "unit", "tonnes", "cost_type", "rate", "estimated", "total_cost",
		"vehicle_source", "vehicle_type", "vehicle_code")
	return err
}

func (w *Warehouse) UpsertNonCostedMaterial(ctx context.Context, scope ReportScope, doc source.MaterialShipment) error {
	vehicle := vehicleOf(doc)
	quantity := decimal.NewFromFloat(doc.Quantity)
	row := models.FactNonCostedMaterial{
		MongoId:       doc.ID,
		DailyReportId: scope.DailyReportId,
		JobsiteId:     scope.JobsiteId,
		CrewId:        scope.CrewId,
		WorkDate:      scope.Date,
		ShipmentType:  doc.ShipmentType,
		SupplierName:  doc.Supplier,
		Quantity:      quantity,
		Unit:          doc.Unit,
		Tonnes:        ToTonnes(quantity, doc.Unit, vehicle.vehicleType),
		VehicleType:   vehicle.vehicleType,
		VehicleCode:   vehicle.vehicleCode,
		SyncedAt:      w.now(),
	}
	_, err := upsert(ctx, w.db, &row, doc.ID,
		"daily_report_id", "jobsite_id", "crew_id", "work_date", "shipment_type", "supplier_name",
		"quantity", "unit", "tonnes", "vehicle_type", "vehicle_code")
	return err
}

// HasTrucking reports whether a shipment carries a trucking rate reference.
func HasTrucking(doc source.MaterialShipment) bool {
	return doc.VehicleObject != nil && doc.VehicleObject.TruckingRateId != ""
}

// UpsertTrucking prices the haul of a shipment against the jobsite trucking
// schedule it references. Quantity schedules charge per unit shipped, hour
// schedules per hour between the shipment's start and end.
func (w *Warehouse) UpsertTrucking(ctx context.Context, scope ReportScope, doc source.MaterialShipment) error {
	if !HasTrucking(doc) {
		return nil
	}
	vehicle := vehicleOf(doc)
	scheduleId := doc.VehicleObject.TruckingRateId

	rate, found, err := w.TruckingRateForDate(ctx, scope.JobsiteId, scheduleId, scope.Date)
	if err != nil {
		return err
	}
	if !found {
		w.log(logrus.Fields{
			"shipment":    doc.ID,
			"schedule_id": scheduleId,
			"jobsite_id":  scope.JobsiteId,
		}).Warn("trucking schedule has no effective rate, using 0")
		rate = models.DimJobsiteTruckingRate{Rate: decimal.Zero, RateType: models.TruckingRateTypeQuantity}
	}

	quantity := decimal.NewFromFloat(doc.Quantity)
	hours := hoursBetweenPtr(doc.StartTime, doc.EndTime)
	cost := quantity.Mul(rate.Rate)
	if rate.RateType == models.TruckingRateTypeHour {
		cost = hours.Mul(rate.Rate)
	}

	row := models.FactTrucking{
		MongoId:       doc.ID,
		DailyReportId: scope.DailyReportId,
		JobsiteId:     scope.JobsiteId,
		CrewId:        scope.CrewId,
		WorkDate:      scope.Date,
		ScheduleId:    scheduleId,
		TruckingType:  rate.RateType,
		Quantity:      quantity,
		Hours:         hours,
		Rate:          rate.Rate,
		TotalCost:     cost,
		VehicleSource: vehicle.source,
		VehicleType:   vehicle.vehicleType,
		VehicleCode:   vehicle.vehicleCode,
		SyncedAt:      w.now(),
	}
	_, err = upsert(ctx, w.db, &row, doc.ID,
		"daily_report_id", "jobsite_id", "crew_id", "work_date", "schedule_id", "trucking_type",
		"quantity", "hours", "rate", "total_cost", "vehicle_source", "vehicle_type", "vehicle_code")
	return err
}
