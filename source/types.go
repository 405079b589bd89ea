package source

import "time"

// Document ids are ObjectIDs in Mongo; the driver decodes them as hex strings.

type Rate struct {
	Rate float64   `bson:"rate"`
	Date time.Time `bson:"date"`
}

type MaterialRate struct {
	Rate      float64   `bson:"rate"`
	Date      time.Time `bson:"date"`
	Estimated bool      `bson:"estimated"`
}

type DeliveredRateSchedule struct {
	ID    string         `bson:"_id"`
	Title string         `bson:"title"`
	Rates []MaterialRate `bson:"rates"`
}

type TruckingRate struct {
	Rate float64   `bson:"rate"`
	Date time.Time `bson:"date"`
	Type string    `bson:"type"`
}

type TruckingRateSchedule struct {
	ID    string         `bson:"_id"`
	Title string         `bson:"title"`
	Rates []TruckingRate `bson:"rates"`
}

type Jobsite struct {
	ID              string                 `bson:"_id" validate:"required"`
	Name            string                 `bson:"name" validate:"required"`
	Jobcode         string                 `bson:"jobcode"`
	Description     string                 `bson:"description"`
	Active          bool                   `bson:"active"`
	Archived        bool                   `bson:"archived"`
	TruckingRates   []TruckingRateSchedule `bson:"truckingRates"`
	Materials       []string               `bson:"materials"`
	RevenueInvoices []string               `bson:"revenueInvoices"`
	ExpenseInvoices []string               `bson:"expenseInvoices"`
}

type JobsiteMaterial struct {
	ID             string                  `bson:"_id" validate:"required"`
	Jobsite        string                  `bson:"jobsite" validate:"required"`
	Material       string                  `bson:"material" validate:"required"`
	Supplier       string                  `bson:"supplier" validate:"required"`
	Quantity       float64                 `bson:"quantity"`
	Unit           string                  `bson:"unit"`
	CostType       string                  `bson:"costType"`
	Delivered      bool                    `bson:"delivered"`
	Rates          []MaterialRate          `bson:"rates"`
	DeliveredRates []DeliveredRateSchedule `bson:"deliveredRates"`
	Invoices       []string                `bson:"invoices"`
}

type Material struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type Company struct {
	ID   string `bson:"_id"`
	Name string `bson:"name"`
}

type Crew struct {
	ID        string   `bson:"_id" validate:"required"`
	Name      string   `bson:"name" validate:"required"`
	Type      string   `bson:"type"`
	Employees []string `bson:"employees"`
	Vehicles  []string `bson:"vehicles"`
}

type Employee struct {
	ID       string `bson:"_id" validate:"required"`
	Name     string `bson:"name" validate:"required"`
	JobTitle string `bson:"jobTitle"`
	Rates    []Rate `bson:"rates"`
}

type Vehicle struct {
	ID            string `bson:"_id" validate:"required"`
	Name          string `bson:"name" validate:"required"`
	VehicleCode   string `bson:"vehicleCode"`
	VehicleType   string `bson:"vehicleType"`
	Rental        bool   `bson:"rental"`
	SourceCompany string `bson:"sourceCompany"`
	Rates         []Rate `bson:"rates"`
}

type DailyReport struct {
	ID               string    `bson:"_id" validate:"required"`
	Date             time.Time `bson:"date" validate:"required"`
	Jobsite          string    `bson:"jobsite" validate:"required"`
	Crew             string    `bson:"crew" validate:"required"`
	Approved         bool      `bson:"approved"`
	PayrollComplete  bool      `bson:"payrollComplete"`
	Archived         bool      `bson:"archived"`
	EmployeeWork     []string  `bson:"employeeWork"`
	VehicleWork      []string  `bson:"vehicleWork"`
	Production       []string  `bson:"production"`
	MaterialShipment []string  `bson:"materialShipment"`
}

type EmployeeWork struct {
	ID        string    `bson:"_id" validate:"required"`
	Employee  string    `bson:"employee" validate:"required"`
	JobTitle  string    `bson:"jobTitle"`
	StartTime time.Time `bson:"startTime"`
	EndTime   time.Time `bson:"endTime"`
}

type VehicleWork struct {
	ID        string     `bson:"_id" validate:"required"`
	Vehicle   string     `bson:"vehicle" validate:"required"`
	JobTitle  string     `bson:"jobTitle"`
	Hours     float64    `bson:"hours"`
	StartTime *time.Time `bson:"startTime"`
	EndTime   *time.Time `bson:"endTime"`
}

type Production struct {
	ID          string    `bson:"_id" validate:"required"`
	JobTitle    string    `bson:"jobTitle"`
	Quantity    float64   `bson:"quantity"`
	Unit        string    `bson:"unit"`
	StartTime   time.Time `bson:"startTime"`
	EndTime     time.Time `bson:"endTime"`
	Description string    `bson:"description"`
}

type VehicleObject struct {
	Source         string `bson:"source"`
	VehicleType    string `bson:"vehicleType"`
	VehicleCode    string `bson:"vehicleCode"`
	TruckingRateId string `bson:"truckingRateId"`
}

// MaterialShipment is either costed against a jobsite material or, when
// NoJobsiteMaterial is set, recorded with its free-text supplier only.
type MaterialShipment struct {
	ID                string         `bson:"_id" validate:"required"`
	ShipmentType      string         `bson:"shipmentType"`
	Supplier          string         `bson:"supplier"`
	Quantity          float64        `bson:"quantity"`
	Unit              string         `bson:"unit"`
	StartTime         *time.Time     `bson:"startTime"`
	EndTime           *time.Time     `bson:"endTime"`
	NoJobsiteMaterial bool           `bson:"noJobsiteMaterial"`
	JobsiteMaterial   string         `bson:"jobsiteMaterial" validate:"required_unless=NoJobsiteMaterial true"`
	VehicleObject     *VehicleObject `bson:"vehicleObject"`
}

type Invoice struct {
	ID            string    `bson:"_id" validate:"required"`
	Company       string    `bson:"company" validate:"required"`
	Date          time.Time `bson:"date"`
	InvoiceNumber string    `bson:"invoiceNumber"`
	Cost          float64   `bson:"cost"`
	Description   string    `bson:"description"`
	Internal      bool      `bson:"internal"`
	Accrual       bool      `bson:"accrual"`
}
