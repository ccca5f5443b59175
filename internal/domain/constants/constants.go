// Package constants holds configuration values shared across layers.
package constants

// Pub/Sub provider names accepted in config.
const (
	PubSubProviderLocal  = "local"
	PubSubProviderGoogle = "google"
)

// Storage drivers accepted in config.
const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"
)
