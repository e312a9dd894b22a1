// internal/platform/di/container.go
package di

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"cloud.google.com/go/firestore"
	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/storage"
	firebase "firebase.google.com/go/v4"
	firebaseauth "firebase.google.com/go/v4/auth"
	"google.golang.org/api/option"

	fs "bookstore/internal/adapters/out/firestore"
	"bookstore/internal/adapters/out/gcs"
	"bookstore/internal/application/cart"
	"bookstore/internal/application/catalog"
	"bookstore/internal/application/session"
	"bookstore/internal/application/writequeue"
	appcfg "bookstore/internal/infra/config"
	"bookstore/internal/platform/stream"
)

const (
	// Write queue policy for cart persistence and catalog seeding.
	writeMaxAttempts = 3
	writeBackoff     = 500 * time.Millisecond
)

// Container is the shared runtime wiring.
//   - owns external clients (Firestore/FirebaseAuth/SecretManager/GCS)
//   - owns the dispatcher, the write queue and the sync services
//
// Firestore is strict (return error). Firebase Auth, Secret Manager and GCS
// are best-effort (warn + continue); their features degrade individually.
type Container struct {
	Config    *appcfg.Config
	ProjectID string

	// Clients (owned; Close-managed)
	FirestoreClient *firestore.Client
	FirebaseApp     *firebase.App
	FirebaseAuth    *firebaseauth.Client
	SecretManager   *secretmanager.Client
	GCS             *storage.Client

	// Runtime
	Store      *fs.StoreFS
	Dispatcher *stream.Dispatcher
	Queue      *writequeue.Queue

	// Services
	Session *session.Manager
	Catalog *catalog.Service
}

// NewContainer initializes the wiring.
func NewContainer(ctx context.Context) (*Container, error) {
	cfg := appcfg.Load()
	if cfg == nil {
		return nil, errors.New("di: config is nil")
	}

	projectID := strings.TrimSpace(cfg.FirestoreProjectID)
	if projectID == "" {
		return nil, errors.New("di: projectID is empty (set FIRESTORE_PROJECT_ID or GCP_PROJECT_ID)")
	}

	c := &Container{
		Config:     cfg,
		ProjectID:  projectID,
		Dispatcher: stream.NewDispatcher(64),
	}

	// Credentials file (optional; mainly for local dev)
	credFile := strings.TrimSpace(cfg.FirestoreCredentialsFile)
	if credFile == "" {
		credFile = strings.TrimSpace(cfg.GCPCreds)
	}
	var clientOpts []option.ClientOption
	if credFile != "" {
		clientOpts = append(clientOpts, option.WithCredentialsFile(credFile))
		log.Printf("[di] Using credentials file for GCP clients: %s", redactPath(credFile))
	} else {
		log.Printf("[di] Using Application Default Credentials (no credentials file configured)")
	}

	// 1) Firestore (strict)
	{
		fsClient, err := firestore.NewClient(ctx, projectID, clientOpts...)
		if err != nil {
			c.Dispatcher.Close()
			return nil, fmt.Errorf("di: firestore.NewClient failed (project=%s): %w", projectID, err)
		}
		c.FirestoreClient = fsClient
		c.Store = fs.NewStoreFS(fsClient, c.Dispatcher)
		log.Printf("[di] Firestore connected project=%s", projectID)
	}

	// 2) Firebase App/Auth (best-effort)
	{
		fbCfg := &firebase.Config{ProjectID: projectID}
		fbApp, err := firebase.NewApp(ctx, fbCfg, clientOpts...)
		if err != nil {
			log.Printf("[di] WARN: firebase app init failed: %v", err)
		} else {
			c.FirebaseApp = fbApp
			authClient, err := fbApp.Auth(ctx)
			if err != nil {
				log.Printf("[di] WARN: firebase auth init failed: %v", err)
			} else {
				c.FirebaseAuth = authClient
				log.Printf("[di] Firebase Auth initialized")
			}
		}
	}

	// 3) Secret Manager (best-effort; only needed for SESSION_TOKEN_SECRET)
	{
		sm, err := secretmanager.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di] WARN: secretmanager.NewClient failed: %v (secret-held session token disabled)", err)
			sm = nil
		}
		c.SecretManager = sm
	}

	// 4) GCS (best-effort; only needed for COVER_BUCKET)
	{
		gcsClient, err := storage.NewClient(ctx, clientOpts...)
		if err != nil {
			log.Printf("[di] WARN: storage.NewClient failed: %v (cover store disabled)", err)
			gcsClient = nil
		}
		c.GCS = gcsClient
	}

	// 5) Session token: inline env value first, then Secret Manager.
	token := strings.TrimSpace(cfg.SessionToken)
	if token == "" && strings.TrimSpace(cfg.SessionTokenSecret) != "" {
		token = resolveSessionToken(ctx, c.SecretManager, projectID, cfg.SessionTokenSecret)
	}

	// 6) Runtime + services
	c.Queue = writequeue.New(ctx, writeMaxAttempts, writeBackoff)

	auth := fs.NewAuthFB(c.FirebaseAuth, c.Dispatcher)
	c.Session = session.NewManager(auth, token)

	var covers catalog.CoverStore
	if c.GCS != nil && strings.TrimSpace(cfg.CoverBucket) != "" {
		covers = gcs.NewCoverRepositoryGCS(c.GCS, cfg.CoverBucket)
		log.Printf("[di] cover store enabled bucket=%s", cfg.CoverBucket)
	}
	c.Catalog = catalog.NewService(c.Store, c.Store, covers, c.Queue, cfg.DeploymentID)

	return c, nil
}

// NewCart builds a cart service for the resolved session identity. Start
// returns cart.ErrNoIdentity when the session resolved without one.
func (c *Container) NewCart(identity string) *cart.Service {
	return cart.NewService(c.Store, c.Store, c.Queue, c.Config.DeploymentID, identity)
}

// Close releases services, the queue and every owned client.
func (c *Container) Close() {
	if c == nil {
		return
	}
	if c.Session != nil {
		c.Session.Close()
	}
	if c.Catalog != nil {
		c.Catalog.Close()
	}
	if c.Queue != nil {
		c.Queue.Close()
	}
	if c.Dispatcher != nil {
		c.Dispatcher.Close()
	}
	if c.FirestoreClient != nil {
		_ = c.FirestoreClient.Close()
	}
	if c.GCS != nil {
		_ = c.GCS.Close()
	}
	if c.SecretManager != nil {
		_ = c.SecretManager.Close()
	}
}

func redactPath(p string) string {
	if len(p) <= 12 {
		return "***"
	}
	return p[:6] + "..." + p[len(p)-6:]
}
