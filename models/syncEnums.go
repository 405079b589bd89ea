package models

type CostType string

const (
	CostTypeRate          CostType = "rate"
	CostTypeDeliveredRate CostType = "deliveredRate"
	CostTypeInvoice       CostType = "invoice"
)

type TruckingRateType string

const (
	TruckingRateTypeHour     TruckingRateType = "Hour"
	TruckingRateTypeQuantity TruckingRateType = "Quantity"
)

type InvoiceDirection string

const (
	InvoiceDirectionRevenue InvoiceDirection = "revenue"
	InvoiceDirectionExpense InvoiceDirection = "expense"
)

type InvoiceType string

const (
	InvoiceTypeExternal InvoiceType = "external"
	InvoiceTypeInternal InvoiceType = "internal"
	InvoiceTypeAccrual  InvoiceType = "accrual"
)
