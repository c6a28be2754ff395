// internal/app/store/memstore/misc.go
package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/domain/models"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type catalogView Store

func (v *catalogView) List(ctx context.Context) ([]models.Resource, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]models.Resource(nil), s.resources...), nil
}

type auditView Store

func (v *auditView) Log(ctx context.Context, e store.AuditEvent) error {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()
	if e.ID.IsZero() {
		e.ID = primitive.NewObjectID()
	}
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}
	s.audit = append(s.audit, e)
	return nil
}

func (v *auditView) Query(ctx context.Context, f store.AuditFilter) ([]store.AuditEvent, error) {
	s := (*Store)(v)
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []store.AuditEvent
	for _, e := range s.audit {
		if f.Category != "" && e.Category != f.Category {
			continue
		}
		if f.EventType != "" && e.EventType != f.EventType {
			continue
		}
		if f.ActorID != nil && (e.ActorID == nil || *e.ActorID != *f.ActorID) {
			continue
		}
		if f.UserID != nil && (e.UserID == nil || *e.UserID != *f.UserID) {
			continue
		}
		if f.GroupID != nil && (e.GroupID == nil || *e.GroupID != *f.GroupID) {
			continue
		}
		if f.StartTime != nil && e.Timestamp.Before(*f.StartTime) {
			continue
		}
		if f.EndTime != nil && e.Timestamp.After(*f.EndTime) {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return page(out, f.Limit, f.Offset), nil
}
