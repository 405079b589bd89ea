package warehouse

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/source"
)

// InvoiceOwner is where an invoice was found: a jobsite list, or a jobsite
// material's list (which is always an expense).
type InvoiceOwner struct {
	JobsiteId         uint
	CompanyId         uint
	JobsiteMaterialId *uint
	Direction         models.InvoiceDirection
}

// InvoiceTypeOf derives the invoice type from its flags; accrual wins over
// internal.
func InvoiceTypeOf(doc source.Invoice) models.InvoiceType {
	switch {
	case doc.Accrual:
		return models.InvoiceTypeAccrual
	case doc.Internal:
		return models.InvoiceTypeInternal
	default:
		return models.InvoiceTypeExternal
	}
}

func (w *Warehouse) UpsertInvoice(ctx context.Context, doc source.Invoice, owner InvoiceOwner) error {
	row := models.FactInvoice{
		MongoId:           doc.ID,
		JobsiteId:         owner.JobsiteId,
		CompanyId:         owner.CompanyId,
		JobsiteMaterialId: owner.JobsiteMaterialId,
		Direction:         owner.Direction,
		InvoiceType:       InvoiceTypeOf(doc),
		Amount:            decimal.NewFromFloat(doc.Cost),
		InvoiceNumber:     doc.InvoiceNumber,
		InvoiceDate:       doc.Date.UTC(),
		Description:       doc.Description,
		SyncedAt:          w.now(),
	}
	_, err := upsert(ctx, w.db, &row, doc.ID,
		"jobsite_id", "company_id", "jobsite_material_id", "direction", "invoice_type",
		"amount", "invoice_number", "invoice_date", "description")
	return err
}
