// internal/app/bootstrap/appconfig.go
package bootstrap

import "time"

// AppConfig holds service-specific configuration for this WAFFLE app.
//
// WAFFLE's CoreConfig handles framework-level settings (HTTP ports, TLS,
// logging, CORS); AppConfig is everything specific to this application:
// the store backend, session cookies, OAuth credentials, and access
// policy knobs.
type AppConfig struct {
	// StoreBackend selects the persistence layer: "mongo" for production,
	// "memory" for local development without a database.
	StoreBackend string

	// MongoDB connection configuration, used when StoreBackend is "mongo".
	MongoURI         string
	MongoDatabase    string
	MongoMaxPoolSize uint64
	MongoMinPoolSize uint64

	// Session management configuration.
	SessionKey    string // secret key for signing session cookies
	SessionName   string // cookie name
	SessionDomain string // cookie domain (blank means current host)
	SessionMaxAge time.Duration

	// Google OAuth configuration.
	GoogleClientID     string
	GoogleClientSecret string

	// BaseURL is the externally visible origin, used to build the OAuth
	// callback URL.
	BaseURL string

	// Access policy configuration.
	OrgDomainSuffix string   // restrict sign-in to one email domain; blank allows any
	OwnerEmails     []string // addresses that receive the owner override
	DefaultRole     string   // role assigned on first sign-in

	// Audit logging destinations per category: all | db | log | off.
	AuditLogAuth   string
	AuditLogAdmin  string
	AuditLogAccess string

	// Store operation deadlines.
	TimeoutShort  time.Duration
	TimeoutMedium time.Duration
	TimeoutLong   time.Duration
}
