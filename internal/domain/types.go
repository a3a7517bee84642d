package domain

import "time"

type SessionID string
type EmployeeID string

type Timestamp = time.Time

// DateLayout is the day format used for next-contact dates, vibe entries and history filters.
const DateLayout = "2006-01-02"

// SessionState is the position of a chat session in its lifecycle.
type SessionState string

const (
	StateAwaitingAnswer SessionState = "awaiting_answer" // initial, re-entered after each non-final answer
	StateCompleted      SessionState = "completed"       // terminal
)

// Zone is one of six ordered mood categories assigned to a single answer.
type Zone string

const (
	ZoneHappy        Zone = "Happy Zone"
	ZoneLeaningHappy Zone = "Leaning to Happy Zone"
	ZoneNeutral      Zone = "Neutral Zone (OK)"
	ZoneLeaningSad   Zone = "Leaning to Sad Zone"
	ZoneSad          Zone = "Sad Zone"
	ZoneFrustrated   Zone = "Frustrated Zone"
)

// Zones lists every zone from most positive to most negative.
// Iteration over sentiment counts always follows this order.
var Zones = []Zone{
	ZoneHappy,
	ZoneLeaningHappy,
	ZoneNeutral,
	ZoneLeaningSad,
	ZoneSad,
	ZoneFrustrated,
}

func (z Zone) IsNegative() bool {
	return z == ZoneSad || z == ZoneLeaningSad || z == ZoneFrustrated
}

func (z Zone) IsPositive() bool {
	return z == ZoneHappy || z == ZoneLeaningHappy
}

func (z Zone) Valid() bool {
	for _, known := range Zones {
		if z == known {
			return true
		}
	}
	return false
}

// MoodScore maps a zone onto the vibe meter scale, Happy (1) to Frustrated (6).
// Unknown zones score as neutral.
func (z Zone) MoodScore() int {
	switch z {
	case ZoneHappy:
		return 1
	case ZoneLeaningHappy:
		return 2
	case ZoneNeutral:
		return 3
	case ZoneLeaningSad:
		return 4
	case ZoneSad:
		return 5
	case ZoneFrustrated:
		return 6
	default:
		return 3
	}
}

// SentimentCounts holds how many answers fell into each zone.
type SentimentCounts map[Zone]int

// NewSentimentCounts returns counts with every zone present and zeroed.
func NewSentimentCounts() SentimentCounts {
	c := make(SentimentCounts, len(Zones))
	for _, z := range Zones {
		c[z] = 0
	}
	return c
}

func (c SentimentCounts) Total() int {
	total := 0
	for _, z := range Zones {
		total += c[z]
	}
	return total
}

// Negative is Sad + LeaningSad + Frustrated.
func (c SentimentCounts) Negative() int {
	return c[ZoneSad] + c[ZoneLeaningSad] + c[ZoneFrustrated]
}

// Positive is Happy + LeaningHappy.
func (c SentimentCounts) Positive() int {
	return c[ZoneHappy] + c[ZoneLeaningHappy]
}

// Clone returns an independent copy with every zone present.
func (c SentimentCounts) Clone() SentimentCounts {
	out := NewSentimentCounts()
	for _, z := range Zones {
		out[z] = c[z]
	}
	return out
}
