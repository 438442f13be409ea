// Package bundle prepares downloadable template bundles. A bundle is the
// zip archive a subject receives after a grant is recorded; preparation
// is lazy and idempotent so repeated claims reuse the stored archive.
package bundle

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"storefront/internal/domain"
	"storefront/internal/infra"
	"storefront/internal/storage"
	"storefront/pkg/zip"
)

// Service lazily materializes bundle archives into the store and hands
// out their public URLs.
type Service struct {
	store   *storage.FileStore
	baseURL string
	logger  infra.Logger
}

// NewService wires the bundle service. baseURL is the public prefix the
// archives are served under.
func NewService(store *storage.FileStore, baseURL string, logger infra.Logger) *Service {
	return &Service{
		store:   store,
		baseURL: strings.TrimRight(baseURL, "/"),
		logger:  logger,
	}
}

// ArchiveKey is the storage key for a template's bundle.
func ArchiveKey(templateKey string) string {
	return templateKey + ".zip"
}

// Prepare ensures the archive for the template exists in the store and
// returns its download URL. An already-stored archive is reused.
func (s *Service) Prepare(ctx context.Context, tpl domain.TemplateDescriptor) (string, error) {
	key := ArchiveKey(tpl.Key)
	ok, err := s.store.Exists(ctx, key)
	if err != nil {
		return "", fmt.Errorf("bundle: check archive: %w", err)
	}
	if !ok {
		data, err := buildArchive(tpl)
		if err != nil {
			return "", err
		}
		if _, err := s.store.Write(ctx, key, data); err != nil {
			return "", fmt.Errorf("bundle: store archive: %w", err)
		}
		s.logger.Info().
			Str("template_key", tpl.Key).
			Str("archive_key", key).
			Msg("bundle: archive materialized")
	}
	return s.baseURL + "/" + key, nil
}

// buildArchive assembles the bundle contents for a template. The archive
// carries the template manifest plus a starter scaffold; richer bundles
// are dropped into the store out of band under the same key and take
// precedence because Prepare never overwrites.
func buildArchive(tpl domain.TemplateDescriptor) ([]byte, error) {
	manifest, err := json.MarshalIndent(tpl, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("bundle: encode manifest: %w", err)
	}
	readme := fmt.Sprintf("# %s\n\n%s\n\nFeatures:\n", tpl.Name, tpl.Description)
	for _, f := range tpl.Features {
		readme += "- " + f + "\n"
	}
	data, err := zip.Archive([]zip.Entry{
		{Name: "template.json", Data: manifest},
		{Name: "README.md", Data: []byte(readme)},
	})
	if err != nil {
		return nil, fmt.Errorf("bundle: build archive: %w", err)
	}
	return data, nil
}
