package source

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const scanBatchSize = 200

type MongoStore struct {
	db *mongo.Database
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{db: db}
}

func idValue(id string) any {
	if oid, err := primitive.ObjectIDFromHex(id); err == nil {
		return oid
	}
	return id
}

func idValues(ids []string) []any {
	out := make([]any, 0, len(ids))
	for _, id := range ids {
		out = append(out, idValue(id))
	}
	return out
}

func findOne[T any](ctx context.Context, coll *mongo.Collection, filter any) (*T, error) {
	var doc T
	err := coll.FindOne(ctx, filter).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	return &doc, nil
}

func findByID[T any](ctx context.Context, coll *mongo.Collection, id string) (*T, error) {
	return findOne[T](ctx, coll, bson.M{"_id": idValue(id)})
}

func findMany[T any](ctx context.Context, coll *mongo.Collection, ids []string) ([]T, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	cur, err := coll.Find(ctx, bson.M{"_id": bson.M{"$in": idValues(ids)}})
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", coll.Name(), err)
	}
	var docs []T
	if err := cur.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode %s: %w", coll.Name(), err)
	}
	return docs, nil
}

func (s *MongoStore) c(name string) *mongo.Collection {
	return s.db.Collection(name)
}

func (s *MongoStore) Jobsite(ctx context.Context, id string) (*Jobsite, error) {
	return findByID[Jobsite](ctx, s.c(CollectionJobsites), id)
}

func (s *MongoStore) JobsiteMaterial(ctx context.Context, id string) (*JobsiteMaterial, error) {
	return findByID[JobsiteMaterial](ctx, s.c(CollectionJobsiteMaterials), id)
}

func (s *MongoStore) JobsiteMaterials(ctx context.Context, ids []string) ([]JobsiteMaterial, error) {
	return findMany[JobsiteMaterial](ctx, s.c(CollectionJobsiteMaterials), ids)
}

func (s *MongoStore) Material(ctx context.Context, id string) (*Material, error) {
	return findByID[Material](ctx, s.c(CollectionMaterials), id)
}

func (s *MongoStore) Company(ctx context.Context, id string) (*Company, error) {
	return findByID[Company](ctx, s.c(CollectionCompanies), id)
}

func (s *MongoStore) Crew(ctx context.Context, id string) (*Crew, error) {
	return findByID[Crew](ctx, s.c(CollectionCrews), id)
}

func (s *MongoStore) Employee(ctx context.Context, id string) (*Employee, error) {
	return findByID[Employee](ctx, s.c(CollectionEmployees), id)
}

func (s *MongoStore) Vehicle(ctx context.Context, id string) (*Vehicle, error) {
	return findByID[Vehicle](ctx, s.c(CollectionVehicles), id)
}

func (s *MongoStore) DailyReport(ctx context.Context, id string) (*DailyReport, error) {
	return findByID[DailyReport](ctx, s.c(CollectionDailyReports), id)
}

func (s *MongoStore) Invoice(ctx context.Context, id string) (*Invoice, error) {
	return findByID[Invoice](ctx, s.c(CollectionInvoices), id)
}

func (s *MongoStore) EmployeeWork(ctx context.Context, id string) (*EmployeeWork, error) {
	return findByID[EmployeeWork](ctx, s.c(CollectionEmployeeWorks), id)
}

func (s *MongoStore) VehicleWork(ctx context.Context, id string) (*VehicleWork, error) {
	return findByID[VehicleWork](ctx, s.c(CollectionVehicleWorks), id)
}

func (s *MongoStore) Production(ctx context.Context, id string) (*Production, error) {
	return findByID[Production](ctx, s.c(CollectionProductions), id)
}

func (s *MongoStore) MaterialShipment(ctx context.Context, id string) (*MaterialShipment, error) {
	return findByID[MaterialShipment](ctx, s.c(CollectionMaterialShipments), id)
}

func (s *MongoStore) EmployeeWorks(ctx context.Context, ids []string) ([]EmployeeWork, error) {
	return findMany[EmployeeWork](ctx, s.c(CollectionEmployeeWorks), ids)
}

func (s *MongoStore) VehicleWorks(ctx context.Context, ids []string) ([]VehicleWork, error) {
	return findMany[VehicleWork](ctx, s.c(CollectionVehicleWorks), ids)
}

func (s *MongoStore) Productions(ctx context.Context, ids []string) ([]Production, error) {
	return findMany[Production](ctx, s.c(CollectionProductions), ids)
}

func (s *MongoStore) MaterialShipments(ctx context.Context, ids []string) ([]MaterialShipment, error) {
	return findMany[MaterialShipment](ctx, s.c(CollectionMaterialShipments), ids)
}

func (s *MongoStore) DailyReportByChild(ctx context.Context, field ChildField, childId string) (*DailyReport, error) {
	return findOne[DailyReport](ctx, s.c(CollectionDailyReports), bson.M{string(field): idValue(childId)})
}

func (s *MongoStore) JobsiteByInvoice(ctx context.Context, list InvoiceList, invoiceId string) (*Jobsite, error) {
	return findOne[Jobsite](ctx, s.c(CollectionJobsites), bson.M{string(list): idValue(invoiceId)})
}

func (s *MongoStore) JobsiteMaterialByInvoice(ctx context.Context, invoiceId string) (*JobsiteMaterial, error) {
	return findOne[JobsiteMaterial](ctx, s.c(CollectionJobsiteMaterials), bson.M{string(InvoiceListJobsiteMaterial): idValue(invoiceId)})
}

func (s *MongoStore) ScanJobsites(ctx context.Context, filter JobsiteFilter, fn func(*Jobsite) error) error {
	q := bson.M{}
	if filter.JobsiteId != "" {
		q["_id"] = idValue(filter.JobsiteId)
	}
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}).SetBatchSize(scanBatchSize)
	return scan(ctx, s.c(CollectionJobsites), q, opts, fn)
}

func (s *MongoStore) ScanDailyReports(ctx context.Context, filter ReportFilter, fn func(*DailyReport) error) error {
	q := bson.M{"archived": bson.M{"$ne": true}}
	if filter.JobsiteId != "" {
		q["jobsite"] = idValue(filter.JobsiteId)
	}
	if from, to := filter.Range(); !from.IsZero() {
		q["date"] = bson.M{"$gte": from, "$lt": to}
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "date", Value: 1}, {Key: "_id", Value: 1}}).
		SetBatchSize(scanBatchSize)
	if filter.Limit > 0 {
		opts.SetLimit(int64(filter.Limit))
	}
	return scan(ctx, s.c(CollectionDailyReports), q, opts, fn)
}

func scan[T any](ctx context.Context, coll *mongo.Collection, filter any, opts *options.FindOptions, fn func(*T) error) error {
	cur, err := coll.Find(ctx, filter, opts)
	if err != nil {
		return fmt.Errorf("scan %s: %w", coll.Name(), err)
	}
	defer cur.Close(ctx)

	for cur.Next(ctx) {
		var doc T
		if err := cur.Decode(&doc); err != nil {
			return fmt.Errorf("decode %s: %w", coll.Name(), err)
		}
		if err := fn(&doc); err != nil {
			return err
		}
	}
	return cur.Err()
}
