// Package protocol decodes and renders the line-oriented wire protocol
// spoken between clients and the aggregator server.
package protocol

import (
	"strconv"
	"strings"

	"github.com/okian/podium/internal/domain/model"
)

// Kind identifies which of the three post-handshake message shapes a
// line decoded to. The handshake line is decoded by ParseHandshake.
type Kind int

const (
	// KindBatch is a "<competitor_id>,<score>" record line.
	KindBatch Kind = iota
	// KindRankingRequest is the literal REQUEST_RANKING line.
	KindRankingRequest
	// KindFinalRequest is the literal FINAL_REQUEST line.
	KindFinalRequest
)

const (
	rankingRequestLine = "REQUEST_RANKING"
	finalRequestLine   = "FINAL_REQUEST"
)

// ParseHandshake parses the first line of a session into a country id.
func ParseHandshake(line string) (int32, error) {
	n, err := strconv.ParseInt(strings.TrimSpace(line), 10, 32)
	if err != nil {
		return 0, ErrMalformedHandshake
	}
	return int32(n), nil
}

// Message is a decoded post-handshake line.
type Message struct {
	Kind  Kind
	Batch model.Record // only populated when Kind == KindBatch
}

// ParseLine dispatches a post-handshake line by exact literal match,
// otherwise treats it as a batch record. countryID binds the record to
// the session that produced it.
func ParseLine(line string, countryID int32) (Message, error) {
	trimmed := strings.TrimSpace(line)
	switch trimmed {
	case rankingRequestLine:
		return Message{Kind: KindRankingRequest}, nil
	case finalRequestLine:
		return Message{Kind: KindFinalRequest}, nil
	}

	rec, err := parseBatchLine(trimmed, countryID)
	if err != nil {
		return Message{}, err
	}
	return Message{Kind: KindBatch, Batch: rec}, nil
}

// parseBatchLine parses a "<competitor_id>,<score>" pair. Any deviation
// from that exact shape is a malformed line and is silently droppable by
// the caller (logged, not fatal to the session).
func parseBatchLine(line string, countryID int32) (model.Record, error) {
	cid, score, ok := strings.Cut(line, ",")
	if !ok {
		return model.Record{}, ErrMalformedBatchLine
	}

	competitorID, err := strconv.ParseInt(strings.TrimSpace(cid), 10, 32)
	if err != nil {
		return model.Record{}, ErrMalformedBatchLine
	}

	value, err := strconv.ParseInt(strings.TrimSpace(score), 10, 32)
	if err != nil {
		return model.Record{}, ErrMalformedBatchLine
	}

	return model.Record{
		CountryID:    countryID,
		CompetitorID: int32(competitorID),
		Score:        int32(value),
	}, nil
}

// RenderRanking renders a sorted slice of country totals into the
// ranking payload wire format: one "<country_id>,<score>\n" line each.
func RenderRanking(totals []model.CountryTotal) string {
	var b strings.Builder
	for _, t := range totals {
		b.WriteString(strconv.FormatInt(int64(t.CountryID), 10))
		b.WriteByte(',')
		b.WriteString(strconv.FormatInt(t.Score, 10))
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderCompetitorLine renders one finalized competitor row.
func RenderCompetitorLine(r model.Record) string {
	var b strings.Builder
	b.WriteString(strconv.FormatInt(int64(r.CountryID), 10))
	b.WriteByte(',')
	b.WriteString(strconv.FormatInt(int64(r.CompetitorID), 10))
	b.WriteByte(',')
	b.WriteString(strconv.FormatInt(int64(r.Score), 10))
	b.WriteByte('\n')
	return b.String()
}

// IsRankingRequest reports whether the trimmed line is the literal
// REQUEST_RANKING command.
func IsRankingRequest(line string) bool {
	return strings.TrimSpace(line) == rankingRequestLine
}

// IsFinalRequest reports whether the trimmed line is the literal
// FINAL_REQUEST command.
func IsFinalRequest(line string) bool {
	return strings.TrimSpace(line) == finalRequestLine
}
