// internal/adapters/out/gcs/cover_repository_gcs.go
package gcs

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"cloud.google.com/go/storage"
	"google.golang.org/api/googleapi"

	bookdom "bookstore/internal/domain/book"
)

// CoverRepositoryGCS hosts cover images for seeded books.
//
// Seeds arrive with external placeholder URLs; when a bucket is configured
// the seeder swaps those for self-hosted covers so the storefront does not
// depend on a third-party image host.
type CoverRepositoryGCS struct {
	Client *storage.Client
	Bucket string
}

func NewCoverRepositoryGCS(client *storage.Client, bucket string) *CoverRepositoryGCS {
	return &CoverRepositoryGCS{Client: client, Bucket: strings.TrimSpace(bucket)}
}

func (r *CoverRepositoryGCS) effectiveBucket() (string, error) {
	if r == nil || r.Client == nil {
		return "", errors.New("cover_repository_gcs: nil storage client")
	}
	b := strings.TrimSpace(r.Bucket)
	if b == "" {
		return "", errors.New("cover_repository_gcs: bucket is empty")
	}
	return b, nil
}

// EnsureCover uploads a generated placeholder cover for b (once; an existing
// object is kept as-is) and returns its public URL.
func (r *CoverRepositoryGCS) EnsureCover(ctx context.Context, b bookdom.Book) (string, error) {
	bucketName, err := r.effectiveBucket()
	if err != nil {
		return "", err
	}

	id := strings.TrimSpace(b.ID)
	if id == "" {
		return "", errors.New("cover_repository_gcs: book id is empty")
	}
	objName := "covers/" + id + ".svg"

	oh := r.Client.Bucket(bucketName).Object(objName).If(storage.Conditions{DoesNotExist: true})
	w := oh.NewWriter(ctx)
	w.ContentType = "image/svg+xml"

	_, _ = w.Write([]byte(coverSVG(b)))
	if err := w.Close(); err != nil {
		// 412 means the object already exists; the cover is idempotent.
		var gerr *googleapi.Error
		if !errors.As(err, &gerr) || gerr.Code != 412 {
			return "", err
		}
	}

	return "https://storage.googleapis.com/" + bucketName + "/" + objName, nil
}

func coverSVG(b bookdom.Book) string {
	return fmt.Sprintf(
		`<svg xmlns="http://www.w3.org/2000/svg" width="400" height="600" viewBox="0 0 400 600">`+
			`<rect width="400" height="600" fill="#1e293b"/>`+
			`<text x="200" y="280" fill="#d4d4d8" font-size="24" text-anchor="middle">%s</text>`+
			`<text x="200" y="330" fill="#94a3b8" font-size="16" text-anchor="middle">%s</text>`+
			`</svg>`,
		svgEscape(b.Title), svgEscape(b.Author),
	)
}

func svgEscape(s string) string {
	repl := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", `"`, "&quot;", "'", "&apos;")
	return repl.Replace(s)
}
