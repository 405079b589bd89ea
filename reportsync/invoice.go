package reportsync

import (
	"context"
	"slices"

	"github.com/sirupsen/logrus"

	"github.com/mmdatafocus/sitesync/models"
	"github.com/mmdatafocus/sitesync/source"
	"github.com/mmdatafocus/sitesync/warehouse"
)

// invoiceBundle is an invoice with the owner found through containment. A
// jobsite-material owner makes it an expense on that material's jobsite. A
// nil jobsite means no list references the invoice any more.
type invoiceBundle struct {
	doc       source.Invoice
	company   *source.Company
	jobsite   *source.Jobsite
	material  *materialBundle
	direction models.InvoiceDirection
}

// findInvoiceOwner checks the jobsite revenue list, then the expense list,
// then jobsite material invoice lists.
func findInvoiceOwner(ctx context.Context, store source.Store, b *invoiceBundle) error {
	id := b.doc.ID
	lists := []struct {
		list      source.InvoiceList
		direction models.InvoiceDirection
	}{
		{source.InvoiceListRevenue, models.InvoiceDirectionRevenue},
		{source.InvoiceListExpense, models.InvoiceDirectionExpense},
	}
	for _, l := range lists {
		jobsite, err := store.JobsiteByInvoice(ctx, l.list, id)
		if err != nil {
			return err
		}
		if jobsite != nil {
			b.jobsite, b.direction = jobsite, l.direction
			return nil
		}
	}

	jm, err := store.JobsiteMaterialByInvoice(ctx, id)
	if err != nil || jm == nil {
		return err
	}
	if jm.Jobsite == "" {
		return nil
	}
	jobsite, err := store.Jobsite(ctx, jm.Jobsite)
	if err != nil || jobsite == nil || !slices.Contains(jobsite.Materials, jm.ID) {
		return err
	}
	mb, err := fetchMaterialBundle(ctx, store, *jm)
	if err != nil {
		return err
	}
	b.jobsite, b.material = jobsite, &mb
	b.direction = models.InvoiceDirectionExpense
	return nil
}

func fetchInvoiceBundle(ctx context.Context, store source.Store, id string) (*invoiceBundle, error) {
	doc, err := store.Invoice(ctx, id)
	if err != nil || doc == nil {
		return nil, err
	}
	b := &invoiceBundle{doc: *doc}
	if doc.Company != "" {
		if b.company, err = store.Company(ctx, doc.Company); err != nil {
			return nil, err
		}
	}
	if err := findInvoiceOwner(ctx, store, b); err != nil {
		return nil, err
	}
	return b, nil
}

func validateInvoiceBundle(b *invoiceBundle) error {
	if err := validateStruct(&b.doc); err != nil {
		return err
	}
	if b.material != nil {
		return validateStruct(&b.material.doc)
	}
	return nil
}

func (s *Syncers) invoiceHandler() Handler[invoiceBundle] {
	return Handler[invoiceBundle]{
		Entity: EntityInvoice,
		Fetch: func(ctx context.Context, id string) (*invoiceBundle, error) {
			return fetchInvoiceBundle(ctx, s.store, id)
		},
		Validate: validateInvoiceBundle,
		Load: func(ctx context.Context, b *invoiceBundle) error {
			if b.jobsite == nil {
				s.logger.WithFields(logrus.Fields{"field": "reportsync", "invoice": b.doc.ID}).Info("invoice has no owning jobsite, archiving")
				return s.wh.ArchiveInvoice(ctx, b.doc.ID)
			}
			return s.wh.Tx(ctx, func(tx *warehouse.Warehouse) error {
				jobsiteId, err := loadJobsiteDimension(ctx, tx, *b.jobsite)
				if err != nil {
					return err
				}
				companyId, err := ensureCompany(ctx, tx, b.doc.Company, b.company)
				if err != nil {
					return err
				}
				owner := warehouse.InvoiceOwner{
					JobsiteId: jobsiteId,
					CompanyId: companyId,
					Direction: b.direction,
				}
				if b.material != nil {
					m, err := loadJobsiteMaterial(ctx, tx, jobsiteId, *b.material)
					if err != nil {
						return err
					}
					owner.JobsiteMaterialId = &m.Id
				}
				return tx.UpsertInvoice(ctx, b.doc, owner)
			})
		},
		Delete: func(ctx context.Context, id string) error {
			return s.wh.ArchiveInvoice(ctx, id)
		},
		Count: func(b *invoiceBundle, stats *Stats) {
			if b.jobsite != nil {
				stats.Invoices++
			}
		},
		Logger: s.logger,
	}
}
