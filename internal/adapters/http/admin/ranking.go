package admin

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"
)

// rankingRow is one line of the wire ranking payload, "<country_id>,<score>",
// rendered as JSON for debugging.
type rankingRow struct {
	CountryID int32 `json:"country_id"`
	Score     int64 `json:"score"`
}

// RankingHandler serves a JSON view of the current ranking, parsed from
// the same payload the TCP REQUEST_RANKING command returns.
type RankingHandler struct {
	provider RankingProvider
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(provider RankingProvider) *RankingHandler {
	return &RankingHandler{provider: provider}
}

// HandleRanking handles GET /ranking requests.
func (h *RankingHandler) HandleRanking(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.NotFound(w, r)
		return
	}
	payload := h.provider.RequestRanking(r.Context())

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	_ = json.NewEncoder(w).Encode(parseRankingPayload(payload))
}

func parseRankingPayload(payload string) []rankingRow {
	lines := strings.Split(strings.TrimRight(payload, "\n"), "\n")
	rows := make([]rankingRow, 0, len(lines))
	for _, line := range lines {
		if line == "" {
			continue
		}
		parts := strings.SplitN(line, ",", 2)
		if len(parts) != 2 {
			continue
		}
		countryID, err := strconv.ParseInt(parts[0], 10, 32)
		if err != nil {
			continue
		}
		score, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			continue
		}
		rows = append(rows, rankingRow{CountryID: int32(countryID), Score: score})
	}
	return rows
}
