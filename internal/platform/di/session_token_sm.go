// internal/platform/di/session_token_sm.go
package di

import (
	"context"
	"log"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	secretmanagerpb "cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
)

// resolveSessionToken reads the pre-issued session token from Secret Manager.
// Any failure degrades to anonymous sign-in, so this only warns.
func resolveSessionToken(ctx context.Context, sm *secretmanager.Client, projectID, secretID string) string {
	if sm == nil {
		log.Printf("[di] WARN: SESSION_TOKEN_SECRET set but secret manager unavailable (falling back to anonymous sign-in)")
		return ""
	}

	prj := strings.TrimSpace(projectID)
	sid := strings.TrimSpace(secretID)
	if prj == "" || sid == "" {
		return ""
	}

	name := "projects/" + prj + "/secrets/" + sid + "/versions/latest"
	resp, err := sm.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		log.Printf("[di] WARN: AccessSecretVersion failed (%s): %v (falling back to anonymous sign-in)", name, err)
		return ""
	}
	if resp == nil || resp.Payload == nil {
		log.Printf("[di] WARN: empty secret payload (%s)", name)
		return ""
	}
	return strings.TrimSpace(string(resp.Payload.Data))
}
