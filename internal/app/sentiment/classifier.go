// Package sentiment turns free-text answers into mood zones, reason tags and
// keywords. The external text classifier only supplies a binary judgment;
// everything else here is deterministic.
package sentiment

import (
	"strings"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

// Zone thresholds on the judgment confidence.
const (
	happyThreshold      = 0.75
	sadThreshold        = 0.85
	leaningSadThreshold = 0.7
)

// MapZone maps a binary judgment and the answer text onto one of the six zones.
func MapZone(j domain.SentimentJudgment, text string, lex *Lexicon) domain.Zone {
	lower := strings.ToLower(text)

	var zone domain.Zone
	if j.Label == domain.LabelPositive {
		if j.Score > happyThreshold {
			zone = domain.ZoneHappy
		} else {
			zone = domain.ZoneLeaningHappy
		}
	} else {
		switch {
		case j.Score > sadThreshold:
			zone = domain.ZoneSad
		case j.Score > leaningSadThreshold:
			zone = domain.ZoneLeaningSad
		case containsAny(lower, lex.FrustrationMarkers):
			zone = domain.ZoneFrustrated
		default:
			zone = domain.ZoneNeutral
		}
	}

	if zone == domain.ZoneNeutral && containsAny(lower, lex.PositiveKeywords) {
		zone = domain.ZoneLeaningHappy
	}
	return zone
}

// ExtractReason returns the label of the first reason rule whose keyword
// occurs in text, or the lexicon default.
func ExtractReason(text string, lex *Lexicon) string {
	lower := strings.ToLower(text)
	for _, r := range lex.Reasons {
		if strings.Contains(lower, r.Keyword) {
			return r.Label
		}
	}
	return lex.DefaultReason
}

// MentionsCriticalTopic reports whether text mentions any critical topic.
func MentionsCriticalTopic(text string, topics []string) bool {
	return containsAny(strings.ToLower(text), topics)
}
