package report

import (
	"strings"
	"testing"

	"user-insight/internal/domain"
)

func TestWriteCSV(t *testing.T) {
	rows := []domain.Row{
		{
			UserID:          7,
			Version:         1700000000,
			Occupation:      "data analysis",
			Industry:        "education",
			School:          "mit",
			PrimaryLanguage: "english",
			Major:           "physics",
			DegreeLevel:     "phd",
			Gender:          "unknown",
		},
	}

	var sb strings.Builder
	if err := WriteCSV(&sb, rows); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	lines := strings.Split(strings.TrimSpace(sb.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("expected header + 1 row, got %d lines", len(lines))
	}
	if lines[0] != "user_id,version,occupation,industry,school,primary_language,major,degree_level,gender" {
		t.Fatalf("unexpected header: %s", lines[0])
	}
	if lines[1] != "7,1700000000,data analysis,education,mit,english,physics,phd,unknown" {
		t.Fatalf("unexpected row: %s", lines[1])
	}
}

func TestWriteCSVEmpty(t *testing.T) {
	var sb strings.Builder
	if err := WriteCSV(&sb, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Count(sb.String(), "\n") != 1 {
		t.Fatalf("expected only the header line, got %q", sb.String())
	}
}
