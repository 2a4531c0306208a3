package persistence

import (
	"context"
	"time"

	"social-scheduler/domain/model"
	"social-scheduler/domain/repository"

	"go.mongodb.org/mongo-driver/v2/mongo"
)

// AuditRepository appends dispatch attempt records to MongoDB. A nil client is
// tolerated so the scheduler keeps running when the audit store is down.
type AuditRepository struct {
	client     *mongo.Client
	database   string
	collection string
}

func NewAuditRepository(client *mongo.Client, database string) *AuditRepository {
	return &AuditRepository{client: client, database: database, collection: "dispatch_audits"}
}

func (r *AuditRepository) Record(ctx context.Context, audit *model.DispatchAudit) error {
	if r.client == nil {
		return nil
	}
	if audit.CreatedAt.IsZero() {
		audit.CreatedAt = time.Now().UTC()
	}
	coll := r.client.Database(r.database).Collection(r.collection)
	_, err := coll.InsertOne(ctx, audit)
	return err
}

var _ repository.IDispatchAudit = (*AuditRepository)(nil)
