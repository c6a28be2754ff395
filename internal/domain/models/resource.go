// internal/domain/models/resource.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Content categories used by the catalog. Resources carrying one of the
// named categories require the matching view permission; anything else
// (including CategoryPublic and categories this code has never heard of)
// is visible to every active user.
const (
	CategoryHR        = "hr"
	CategoryIT        = "it"
	CategoryFinance   = "finance"
	CategoryMarketing = "marketing"
	CategoryAdmin     = "admin"
	CategoryPublic    = "public"
)

// Resource is a content catalog entry. The catalog is owned elsewhere;
// this service only reads and filters it, never mutates entries.
type Resource struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Title       string             `bson:"title" json:"title"`
	TitleCI     string             `bson:"title_ci" json:"title_ci"`
	Category    string             `bson:"category" json:"category"`
	URL         string             `bson:"url,omitempty" json:"url,omitempty"`
	Description string             `bson:"description,omitempty" json:"description,omitempty"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
}
