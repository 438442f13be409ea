package infra

import (
	"strings"
	"testing"
)

func TestExtractMarkerStripsHeader(t *testing.T) {
	query := "--sql cee0d3a7-6c4e-4bba-b976-791c27b83a99\nselect tier from subjects;"
	marker, trimmed, err := extractMarker(query)
	if err != nil {
		t.Fatalf("extractMarker: %v", err)
	}
	if marker != "cee0d3a7-6c4e-4bba-b976-791c27b83a99" {
		t.Fatalf("marker = %q", marker)
	}
	if strings.Contains(trimmed, "--sql") {
		t.Fatalf("marker left in query: %q", trimmed)
	}
}

func TestExtractMarkerRejectsUnmarkedQuery(t *testing.T) {
	for _, query := range []string{
		"",
		"select 1;",
		"--sql not-a-uuid\nselect 1;",
	} {
		if _, _, err := extractMarker(query); err == nil {
			t.Errorf("expected error for %q", query)
		}
	}
}
