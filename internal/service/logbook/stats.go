package logbook

import (
	"math"
	"unicode/utf8"

	"github.com/zhouzirui/crystal-voice/backend/internal/model/turnlog"
)

// ComputeStats summarises records in stored order.
func ComputeStats(records []turnlog.Record) turnlog.Stats {
	stats := turnlog.Stats{TotalConversations: len(records)}
	if len(records) == 0 {
		return stats
	}

	sessions := make(map[string]struct{}, len(records))
	var responseChars int
	for _, rec := range records {
		sessions[rec.SessionID] = struct{}{}
		responseChars += utf8.RuneCountInString(rec.AIResponse)
		stats.TotalTokens += rec.Metadata.Tokens()
	}

	stats.SessionsCount = len(sessions)
	stats.AvgResponseLength = int(math.Round(float64(responseChars) / float64(len(records))))

	first := records[0].Timestamp
	last := records[len(records)-1].Timestamp
	stats.FirstLog = &first
	stats.LastLog = &last
	return stats
}
