package finalize_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/finalize"
)

func TestFinalizeWritesAndReadsBackFiles(t *testing.T) {
	dir := t.TempDir()
	competitorsPath := filepath.Join(dir, "final_competitors.txt")
	countriesPath := filepath.Join(dir, "final_countries.txt")

	records := []model.Record{
		{CountryID: 1, CompetitorID: 10, Score: 50},
		{CountryID: 2, CompetitorID: 20, Score: 90},
		{CountryID: 1, CompetitorID: 11, Score: 30},
	}

	result, err := finalize.Finalize(records, competitorsPath, countriesPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if _, err := os.Stat(competitorsPath); err != nil {
		t.Fatalf("expected competitors file to exist: %v", err)
	}
	if _, err := os.Stat(countriesPath); err != nil {
		t.Fatalf("expected countries file to exist: %v", err)
	}

	lines := strings.Split(strings.TrimRight(result.CompetitorsBody, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 competitor lines, got %d: %v", len(lines), lines)
	}
	if !strings.HasPrefix(lines[0], "2,20,90") {
		t.Errorf("expected highest scorer first, got %q", lines[0])
	}

	if !strings.Contains(result.CountriesBody, "1,80") {
		t.Errorf("expected country 1 total of 80 in %q", result.CountriesBody)
	}
	if !strings.Contains(result.CountriesBody, "2,90") {
		t.Errorf("expected country 2 total of 90 in %q", result.CountriesBody)
	}

	frame := result.Frame()
	if !strings.Contains(frame, result.CompetitorsBody) || !strings.Contains(frame, result.CountriesBody) {
		t.Errorf("expected frame to contain both bodies, got %q", frame)
	}
}

func TestFinalizeEmptyLedger(t *testing.T) {
	dir := t.TempDir()
	competitorsPath := filepath.Join(dir, "final_competitors.txt")
	countriesPath := filepath.Join(dir, "final_countries.txt")

	result, err := finalize.Finalize(nil, competitorsPath, countriesPath)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.CompetitorsBody != "" {
		t.Errorf("expected empty competitors body, got %q", result.CompetitorsBody)
	}
	if result.CountriesBody != "" {
		t.Errorf("expected empty countries body, got %q", result.CountriesBody)
	}
}

func TestFinalizeWriteFailure(t *testing.T) {
	dir := t.TempDir()
	// A path inside a non-existent directory forces os.WriteFile to fail.
	competitorsPath := filepath.Join(dir, "missing", "final_competitors.txt")
	countriesPath := filepath.Join(dir, "final_countries.txt")

	_, err := finalize.Finalize([]model.Record{{CountryID: 1, CompetitorID: 1, Score: 1}}, competitorsPath, countriesPath)
	if err == nil {
		t.Fatal("expected error for unwritable competitors path")
	}
}
