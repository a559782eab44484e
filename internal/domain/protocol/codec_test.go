package protocol

import (
	"testing"

	"github.com/okian/podium/internal/domain/model"
)

func TestParseHandshake(t *testing.T) {
	id, err := ParseHandshake("7\n")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if id != 7 {
		t.Errorf("expected 7, got %d", id)
	}

	if _, err := ParseHandshake("not-a-number"); err == nil {
		t.Error("expected error for non-integer handshake")
	}
}

func TestParseLineBatch(t *testing.T) {
	msg, err := ParseLine("1,50", 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if msg.Kind != KindBatch {
		t.Fatalf("expected KindBatch, got %v", msg.Kind)
	}
	want := model.Record{CountryID: 7, CompetitorID: 1, Score: 50}
	if msg.Batch != want {
		t.Errorf("expected %+v, got %+v", want, msg.Batch)
	}
}

func TestParseLineCommands(t *testing.T) {
	msg, err := ParseLine("REQUEST_RANKING", 1)
	if err != nil || msg.Kind != KindRankingRequest {
		t.Fatalf("expected KindRankingRequest, got %+v err=%v", msg, err)
	}

	msg, err = ParseLine("FINAL_REQUEST", 1)
	if err != nil || msg.Kind != KindFinalRequest {
		t.Fatalf("expected KindFinalRequest, got %+v err=%v", msg, err)
	}
}

func TestParseLineMalformed(t *testing.T) {
	cases := []string{"X,Y", "5", "5,5,5", ""}
	for _, line := range cases {
		if _, err := ParseLine(line, 1); err == nil {
			t.Errorf("expected error for malformed line %q", line)
		}
	}
}

func TestRenderRanking(t *testing.T) {
	totals := []model.CountryTotal{
		{CountryID: 1, Score: 50},
		{CountryID: 2, Score: 25},
	}
	got := RenderRanking(totals)
	want := "1,50\n2,25\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestRenderCompetitorLine(t *testing.T) {
	got := RenderCompetitorLine(model.Record{CountryID: 9, CompetitorID: 101, Score: 3})
	want := "9,101,3\n"
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}
