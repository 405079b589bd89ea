package models

import (
	"gorm.io/gorm"
)

// MigrateTable creates or alters every warehouse table.
func MigrateTable(db *gorm.DB) error {
	return db.AutoMigrate(
		&DimJobsite{}, &DimCrew{}, &DimEmployee{}, &DimVehicle{}, &DimMaterial{}, &DimCompany{},
		&DimJobsiteMaterial{}, &DimDailyReport{},
		&DimEmployeeRate{}, &DimVehicleRate{}, &DimJobsiteMaterialRate{}, &DimJobsiteTruckingRate{},
		&FactEmployeeWork{}, &FactVehicleWork{}, &FactMaterialShipment{}, &FactNonCostedMaterial{},
		&FactTrucking{}, &FactProduction{}, &FactInvoice{},
		&SyncRun{}, &SyncError{},
	)
}
