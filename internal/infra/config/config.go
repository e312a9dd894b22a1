// internal/infra/config/config.go
package config

import "os"

// Config holds the static configuration resolved once at startup.
type Config struct {
	Port                     string
	GCPCreds                 string
	FirestoreProjectID       string
	FirestoreCredentialsFile string

	// DeploymentID scopes every remote path (artifacts/{DeploymentID}/...).
	DeploymentID string

	// SessionToken is an optional pre-issued auth token. If empty the session
	// signs in anonymously.
	SessionToken string

	// SessionTokenSecret is an optional Secret Manager secret id holding the
	// session token. Takes effect only when SessionToken itself is empty.
	SessionTokenSecret string

	// CoverBucket is an optional GCS bucket for seeded cover images.
	// Empty disables the cover store.
	CoverBucket string
}

// Load reads the environment and returns a Config.
func Load() *Config {
	defaultProject := os.Getenv("GCP_PROJECT_ID")

	cfg := &Config{
		Port:                     getenvDefault("PORT", "8080"),
		GCPCreds:                 os.Getenv("GOOGLE_APPLICATION_CREDENTIALS"),
		FirestoreProjectID:       getenvDefault("FIRESTORE_PROJECT_ID", defaultProject),
		FirestoreCredentialsFile: os.Getenv("FIRESTORE_CREDENTIALS_FILE"),

		DeploymentID: getenvDefault("DEPLOYMENT_ID", "default-app-id"),

		SessionToken:       os.Getenv("SESSION_TOKEN"),
		SessionTokenSecret: os.Getenv("SESSION_TOKEN_SECRET"),

		CoverBucket: os.Getenv("COVER_BUCKET"),
	}

	return cfg
}

// GetFirestoreProjectID returns the Firestore/GCP project id.
func (c *Config) GetFirestoreProjectID() string {
	return c.FirestoreProjectID
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
