package source

import (
	"context"
	"fmt"
	"slices"
	"sort"
	"sync"
)

// MemoryStore is an in-process Store used by tests and dry runs over fixtures.
type MemoryStore struct {
	mu                sync.RWMutex
	jobsites          map[string]Jobsite
	jobsiteMaterials  map[string]JobsiteMaterial
	materials         map[string]Material
	companies         map[string]Company
	crews             map[string]Crew
	employees         map[string]Employee
	vehicles          map[string]Vehicle
	dailyReports      map[string]DailyReport
	invoices          map[string]Invoice
	employeeWorks     map[string]EmployeeWork
	vehicleWorks      map[string]VehicleWork
	productions       map[string]Production
	materialShipments map[string]MaterialShipment
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		jobsites:          map[string]Jobsite{},
		jobsiteMaterials:  map[string]JobsiteMaterial{},
		materials:         map[string]Material{},
		companies:         map[string]Company{},
		crews:             map[string]Crew{},
		employees:         map[string]Employee{},
		vehicles:          map[string]Vehicle{},
		dailyReports:      map[string]DailyReport{},
		invoices:          map[string]Invoice{},
		employeeWorks:     map[string]EmployeeWork{},
		vehicleWorks:      map[string]VehicleWork{},
		productions:       map[string]Production{},
		materialShipments: map[string]MaterialShipment{},
	}
}

// Put inserts or replaces documents by id.
func (m *MemoryStore) Put(docs ...any) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, doc := range docs {
		switch d := doc.(type) {
		case Jobsite:
			m.jobsites[d.ID] = d
		case JobsiteMaterial:
			m.jobsiteMaterials[d.ID] = d
		case Material:
			m.materials[d.ID] = d
		case Company:
			m.companies[d.ID] = d
		case Crew:
			m.crews[d.ID] = d
		case Employee:
			m.employees[d.ID] = d
		case Vehicle:
			m.vehicles[d.ID] = d
		case DailyReport:
			m.dailyReports[d.ID] = d
		case Invoice:
			m.invoices[d.ID] = d
		case EmployeeWork:
			m.employeeWorks[d.ID] = d
		case VehicleWork:
			m.vehicleWorks[d.ID] = d
		case Production:
			m.productions[d.ID] = d
		case MaterialShipment:
			m.materialShipments[d.ID] = d
		default:
			panic(fmt.Sprintf("source: unsupported document %T", doc))
		}
	}
}

// Remove deletes a document from the named collection.
func (m *MemoryStore) Remove(collection string, id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	switch collection {
	case CollectionJobsites:
		delete(m.jobsites, id)
	case CollectionJobsiteMaterials:
		delete(m.jobsiteMaterials, id)
	case CollectionMaterials:
		delete(m.materials, id)
	case CollectionCompanies:
		delete(m.companies, id)
	case CollectionCrews:
		delete(m.crews, id)
	case CollectionEmployees:
		delete(m.employees, id)
	case CollectionVehicles:
		delete(m.vehicles, id)
	case CollectionDailyReports:
		delete(m.dailyReports, id)
	case CollectionInvoices:
		delete(m.invoices, id)
	case CollectionEmployeeWorks:
		delete(m.employeeWorks, id)
	case CollectionVehicleWorks:
		delete(m.vehicleWorks, id)
	case CollectionProductions:
		delete(m.productions, id)
	case CollectionMaterialShipments:
		delete(m.materialShipments, id)
	}
}

func get[T any](mu *sync.RWMutex, docs map[string]T, id string) (*T, error) {
	mu.RLock()
	defer mu.RUnlock()
	doc, ok := docs[id]
	if !ok {
		return nil, nil
	}
	return &doc, nil
}

func getMany[T any](mu *sync.RWMutex, docs map[string]T, ids []string) ([]T, error) {
	mu.RLock()
	defer mu.RUnlock()
	var out []T
	for _, id := range ids {
		if doc, ok := docs[id]; ok {
			out = append(out, doc)
		}
	}
	return out, nil
}

func (m *MemoryStore) Jobsite(_ context.Context, id string) (*Jobsite, error) {
	return get(&m.mu, m.jobsites, id)
}

func (m *MemoryStore) JobsiteMaterial(_ context.Context, id string) (*JobsiteMaterial, error) {
	return get(&m.mu, m.jobsiteMaterials, id)
}

func (m *MemoryStore) JobsiteMaterials(_ context.Context, ids []string) ([]JobsiteMaterial, error) {
	return getMany(&m.mu, m.jobsiteMaterials, ids)
}

func (m *MemoryStore) Material(_ context.Context, id string) (*Material, error) {
	return get(&m.mu, m.materials, id)
}

func (m *MemoryStore) Company(_ context.Context, id string) (*Company, error) {
	return get(&m.mu, m.companies, id)
}

func (m *MemoryStore) Crew(_ context.Context, id string) (*Crew, error) {
	return get(&m.mu, m.crews, id)
}

func (m *MemoryStore) Employee(_ context.Context, id string) (*Employee, error) {
	return get(&m.mu, m.employees, id)
}

func (m *MemoryStore) Vehicle(_ context.Context, id string) (*Vehicle, error) {
	return get(&m.mu, m.vehicles, id)
}

func (m *MemoryStore) DailyReport(_ context.Context, id string) (*DailyReport, error) {
	return get(&m.mu, m.dailyReports, id)
}

func (m *MemoryStore) Invoice(_ context.Context, id string) (*Invoice, error) {
	return get(&m.mu, m.invoices, id)
}

func (m *MemoryStore) EmployeeWork(_ context.Context, id string) (*EmployeeWork, error) {
	return get(&m.mu, m.employeeWorks, id)
}

func (m *MemoryStore) VehicleWork(_ context.Context, id string) (*VehicleWork, error) {
	return get(&m.mu, m.vehicleWorks, id)
}

func (m *MemoryStore) Production(_ context.Context, id string) (*Production, error) {
	return get(&m.mu, m.productions, id)
}

func (m *MemoryStore) MaterialShipment(_ context.Context, id string) (*MaterialShipment, error) {
	return get(&m.mu, m.materialShipments, id)
}

func (m *MemoryStore) EmployeeWorks(_ context.Context, ids []string) ([]EmployeeWork, error) {
	return getMany(&m.mu, m.employeeWorks, ids)
}

func (m *MemoryStore) VehicleWorks(_ context.Context, ids []string) ([]VehicleWork, error) {
	return getMany(&m.mu, m.vehicleWorks, ids)
}

func (m *MemoryStore) Productions(_ context.Context, ids []string) ([]Production, error) {
	return getMany(&m.mu, m.productions, ids)
}

func (m *MemoryStore) MaterialShipments(_ context.Context, ids []string) ([]MaterialShipment, error) {
	return getMany(&m.mu, m.materialShipments, ids)
}

func (m *MemoryStore) DailyReportByChild(_ context.Context, field ChildField, childId string) (*DailyReport, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range sortedKeys(m.dailyReports) {
		r := m.dailyReports[id]
		var list []string
		switch field {
		case ChildEmployeeWork:
			list = r.EmployeeWork
		case ChildVehicleWork:
			list = r.VehicleWork
		case ChildProduction:
			list = r.Production
		case ChildMaterialShipment:
			list = r.MaterialShipment
		}
		if slices.Contains(list, childId) {
			return &r, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) JobsiteByInvoice(_ context.Context, list InvoiceList, invoiceId string) (*Jobsite, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range sortedKeys(m.jobsites) {
		j := m.jobsites[id]
		ids := j.RevenueInvoices
		if list == InvoiceListExpense {
			ids = j.ExpenseInvoices
		}
		if slices.Contains(ids, invoiceId) {
			return &j, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) JobsiteMaterialByInvoice(_ context.Context, invoiceId string) (*JobsiteMaterial, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, id := range sortedKeys(m.jobsiteMaterials) {
		jm := m.jobsiteMaterials[id]
		if slices.Contains(jm.Invoices, invoiceId) {
			return &jm, nil
		}
	}
	return nil, nil
}

func (m *MemoryStore) ScanJobsites(ctx context.Context, filter JobsiteFilter, fn func(*Jobsite) error) error {
	m.mu.RLock()
	var docs []Jobsite
	for _, id := range sortedKeys(m.jobsites) {
		if filter.JobsiteId != "" && id != filter.JobsiteId {
			continue
		}
		docs = append(docs, m.jobsites[id])
	}
	m.mu.RUnlock()

	for i := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(&docs[i]); err != nil {
			return err
		}
	}
	return nil
}

func (m *MemoryStore) ScanDailyReports(ctx context.Context, filter ReportFilter, fn func(*DailyReport) error) error {
	from, to := filter.Range()

	m.mu.RLock()
	var docs []DailyReport
	for _, r := range m.dailyReports {
		if r.Archived {
			continue
		}
		if filter.JobsiteId != "" && r.Jobsite != filter.JobsiteId {
			continue
		}
		if !from.IsZero() && (r.Date.Before(from) || !r.Date.Before(to)) {
			continue
		}
		docs = append(docs, r)
	}
	m.mu.RUnlock()

	sort.Slice(docs, func(i, j int) bool {
		if docs[i].Date.Equal(docs[j].Date) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].Date.Before(docs[j].Date)
	})
	if filter.Limit > 0 && len(docs) > filter.Limit {
		docs = docs[:filter.Limit]
	}

	for i := range docs {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := fn(&docs[i]); err != nil {
			return err
		}
	}
	return nil
}

func sortedKeys[T any](docs map[string]T) []string {
	keys := make([]string, 0, len(docs))
	for k := range docs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
