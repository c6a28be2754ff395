// internal/app/bootstrap/dbdeps.go
package bootstrap

import (
	"github.com/dalemusser/accesshub/internal/app/store"
	"github.com/dalemusser/accesshub/internal/app/store/oauthstate"
	"go.mongodb.org/mongo-driver/mongo"
)

// DBDeps holds the backend dependencies for the app. MongoClient and
// MongoDatabase are nil when the memory backend is selected; everything
// downstream works through the Store and OAuthStates interfaces.
type DBDeps struct {
	MongoClient   *mongo.Client
	MongoDatabase *mongo.Database

	Store       store.Store
	OAuthStates oauthstate.Store
}
