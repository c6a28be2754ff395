// internal/app/store/mongodb/misc.go
package mongodb

import (
	"context"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type catalogView Store

func (v *catalogView) List(ctx context.Context) ([]models.Resource, error) {
	s := (*Store)(v)
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.resources().Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, failed("catalog list", err)
	}
	var out []models.Resource
	if err := cur.All(ctx, &out); err != nil {
		return nil, failed("catalog list", err)
	}
	return out, nil
}

type auditView Store

func (v *auditView) Log(ctx context.Context, e store.AuditEvent) error {
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	s := (*Store)(v)
	if _, err := s.audit().InsertOne(ctx, e); err != nil {
		return failed("audit log", err)
	}
	return nil
}

func (v *auditView) Query(ctx context.Context, f store.AuditFilter) ([]store.AuditEvent, error) {
	filter := bson.M{}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.EventType != "" {
		filter["event_type"] = f.EventType
	}
	if f.ActorID != nil {
		filter["actor_id"] = *f.ActorID
	}
	if f.UserID != nil {
		filter["user_id"] = *f.UserID
	}
	if f.GroupID != nil {
		filter["group_id"] = *f.GroupID
	}
	if f.StartTime != nil || f.EndTime != nil {
		ts := bson.M{}
		if f.StartTime != nil {
			ts["$gte"] = *f.StartTime
		}
		if f.EndTime != nil {
			ts["$lte"] = *f.EndTime
		}
		filter["timestamp"] = ts
	}

	s := (*Store)(v)
	opts := options.Find().SetSort(bson.D{{Key: "timestamp", Value: -1}, {Key: "_id", Value: -1}})
	cur, err := s.audit().Find(ctx, filter, page(opts, f.Limit, f.Offset))
	if err != nil {
		return nil, failed("audit query", err)
	}
	var out []store.AuditEvent
	if err := cur.All(ctx, &out); err != nil {
		return nil, failed("audit query", err)
	}
	return out, nil
}
