// Package finalize implements the FINAL_REQUEST dump: sort a snapshot
// of the ledger, write the two CSV-like output files, read them back
// off disk, and hand the caller the exact bytes a client will receive.
package finalize

import (
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/okian/podium/internal/domain/model"
	"github.com/okian/podium/internal/domain/protocol"
	"github.com/okian/podium/pkg/metrics"
)

// Result holds the two rendered file bodies and the combined frame sent
// back to the requesting connection.
type Result struct {
	CompetitorsBody string
	CountriesBody   string
}

// Frame renders the wire response for a FINAL_REQUEST: the competitors
// body, a newline, then the countries body.
func (r Result) Frame() string {
	return r.CompetitorsBody + "\n" + r.CountriesBody
}

// Finalize sorts records by score descending, writes competitorsPath and
// countriesPath, reads both back off disk, and returns their bodies.
// Reading the files back (rather than reusing the in-memory render) is
// deliberate: it exercises the real filesystem round trip the original
// implementation performs.
func Finalize(records []model.Record, competitorsPath, countriesPath string) (Result, error) {
	start := time.Now()
	defer func() {
		metrics.RecordFinalizeLatency(float64(time.Since(start).Milliseconds()))
	}()

	sorted := make([]model.Record, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Score > sorted[j].Score
	})

	var competitors strings.Builder
	for _, rec := range sorted {
		competitors.WriteString(protocol.RenderCompetitorLine(rec))
	}
	if err := os.WriteFile(competitorsPath, []byte(competitors.String()), 0o644); err != nil {
		metrics.RecordFinalizeError()
		return Result{}, fmt.Errorf("write competitors file: %w", err)
	}

	countries := renderCountryTotals(sorted)
	if err := os.WriteFile(countriesPath, []byte(countries), 0o644); err != nil {
		metrics.RecordFinalizeError()
		return Result{}, fmt.Errorf("write countries file: %w", err)
	}

	competitorsBack, err := os.ReadFile(competitorsPath)
	if err != nil {
		metrics.RecordFinalizeError()
		return Result{}, fmt.Errorf("read back competitors file: %w", err)
	}
	countriesBack, err := os.ReadFile(countriesPath)
	if err != nil {
		metrics.RecordFinalizeError()
		return Result{}, fmt.Errorf("read back countries file: %w", err)
	}

	metrics.RecordFinalize()

	return Result{
		CompetitorsBody: string(competitorsBack),
		CountriesBody:   string(countriesBack),
	}, nil
}

// renderCountryTotals recomputes country_scores from the sorted ledger.
// The countries file is explicitly not required to be sorted.
func renderCountryTotals(records []model.Record) string {
	sums := make(map[int32]int64, 16)
	order := make([]int32, 0, 16)
	for _, rec := range records {
		if _, ok := sums[rec.CountryID]; !ok {
			order = append(order, rec.CountryID)
		}
		sums[rec.CountryID] += int64(rec.Score)
	}

	var b strings.Builder
	for _, id := range order {
		totalLine := model.CountryTotal{CountryID: id, Score: sums[id]}
		b.WriteString(fmt.Sprintf("%d,%d\n", totalLine.CountryID, totalLine.Score))
	}
	return b.String()
}
