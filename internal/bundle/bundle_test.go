package bundle

import (
	"archive/zip"
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"

	"storefront/internal/domain"
	"storefront/internal/storage"
)

func newService(t *testing.T) (*Service, string) {
	t.Helper()
	dir := t.TempDir()
	store, err := storage.NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore: %v", err)
	}
	return NewService(store, "http://localhost:8080/bundles/", zerolog.New(io.Discard)), dir
}

func proTemplate() domain.TemplateDescriptor {
	return domain.TemplateDescriptor{
		Key:          "tpl_pro_saas",
		Name:         "SaaS Starter",
		Description:  "Dashboard-first starter for SaaS products.",
		RequiredTier: domain.TierPro,
		Features:     []string{"auth pages", "billing screens"},
		PreviewKind:  domain.PreviewAnimated,
	}
}

func TestPrepareMaterializesArchive(t *testing.T) {
	svc, dir := newService(t)

	url, err := svc.Prepare(context.Background(), proTemplate())
	if err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	if url != "http://localhost:8080/bundles/tpl_pro_saas.zip" {
		t.Fatalf("url = %q", url)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "tpl_pro_saas.zip"))
	if err != nil {
		t.Fatalf("archive not written: %v", err)
	}
	zr, err := zip.NewReader(bytes.NewReader(raw), int64(len(raw)))
	if err != nil {
		t.Fatalf("open archive: %v", err)
	}
	names := map[string]bool{}
	for _, f := range zr.File {
		names[f.Name] = true
	}
	if !names["template.json"] || !names["README.md"] {
		t.Fatalf("archive entries = %v", names)
	}
}

func TestPrepareReusesStoredArchive(t *testing.T) {
	svc, dir := newService(t)

	// Simulate a richer bundle dropped into the store out of band.
	custom := []byte("prebuilt")
	if err := os.WriteFile(filepath.Join(dir, "tpl_pro_saas.zip"), custom, 0o644); err != nil {
		t.Fatalf("seed archive: %v", err)
	}

	if _, err := svc.Prepare(context.Background(), proTemplate()); err != nil {
		t.Fatalf("Prepare: %v", err)
	}
	raw, err := os.ReadFile(filepath.Join(dir, "tpl_pro_saas.zip"))
	if err != nil {
		t.Fatalf("read archive: %v", err)
	}
	if !bytes.Equal(raw, custom) {
		t.Fatal("prepare overwrote the stored archive")
	}
}

func TestPrepareIsIdempotent(t *testing.T) {
	svc, _ := newService(t)

	first, err := svc.Prepare(context.Background(), proTemplate())
	if err != nil {
		t.Fatalf("first Prepare: %v", err)
	}
	second, err := svc.Prepare(context.Background(), proTemplate())
	if err != nil {
		t.Fatalf("second Prepare: %v", err)
	}
	if first != second {
		t.Fatalf("urls differ: %q vs %q", first, second)
	}
}
