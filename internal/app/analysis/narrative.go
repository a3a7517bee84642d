package analysis

import (
	"fmt"
	"strings"

	"github.com/PabloGalante/vibe-agent/internal/domain"
)

const (
	maxNarrativeThemes   = 3
	maxNarrativeKeywords = 5
)

// moodExplanation renders the HR-facing summary of a session.
func moodExplanation(dominant domain.Zone, themes, keywords []string, negative, positive int, history []domain.Turn) string {
	var b strings.Builder

	switch {
	case dominant.IsPositive():
		b.WriteString("The employee appears to be generally satisfied. ")
	case dominant == domain.ZoneSad || dominant == domain.ZoneLeaningSad:
		b.WriteString("The employee appears to be experiencing dissatisfaction. ")
	case dominant == domain.ZoneFrustrated:
		b.WriteString("The employee shows signs of frustration. ")
	default:
		b.WriteString("The employee's sentiment is mixed or neutral. ")
	}

	switch n := len(themes); {
	case n == 1:
		fmt.Fprintf(&b, "Their main concern relates to %s. ", strings.ToLower(themes[0]))
	case n > maxNarrativeThemes:
		lower := lowerFirst(themes, maxNarrativeThemes)
		fmt.Fprintf(&b, "Their feedback highlights multiple issues including %s and %s. ",
			strings.Join(lower[:2], ", "), lower[2])
	case n > 1:
		fmt.Fprintf(&b, "Their feedback highlights issues with %s. ",
			strings.Join(lowerFirst(themes, maxNarrativeThemes), " and "))
	}

	if len(keywords) > 0 {
		k := keywords
		if len(k) > maxNarrativeKeywords {
			k = k[:maxNarrativeKeywords]
		}
		fmt.Fprintf(&b, "Key topics mentioned include %s. ", strings.Join(k, ", "))
	}

	shifts := moodShifts(history)
	if len(history) > 3 {
		if shifts > 2 {
			b.WriteString("Their responses showed significant mood variation across different topics. ")
		} else if shifts <= 1 {
			b.WriteString("Their sentiment remained consistent throughout the conversation. ")
		}
	}

	switch {
	case negative > positive*2:
		b.WriteString("This employee requires immediate attention to address their concerns.")
	case negative > positive:
		b.WriteString("A follow-up discussion is recommended to better understand their concerns.")
	case positive > negative*2:
		b.WriteString("This employee appears highly engaged and satisfied, representing a positive workplace example.")
	case positive > negative:
		b.WriteString("Overall, this employee seems satisfied, though there may be minor areas for improvement.")
	default:
		b.WriteString("Further engagement is recommended to better understand their perspective.")
	}

	return b.String()
}

// moodShifts counts zone changes between consecutive answers.
func moodShifts(history []domain.Turn) int {
	shifts := 0
	for i := 1; i < len(history); i++ {
		if history[i].Sentiment != history[i-1].Sentiment {
			shifts++
		}
	}
	return shifts
}

func lowerFirst(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	out := make([]string, len(items))
	for i, s := range items {
		out[i] = strings.ToLower(s)
	}
	return out
}
