package classifier

import (
	"regexp"
	"strings"
	"time"

	"github.com/JonnyWalker81/lifeline/internal/models"
)

// DefaultMaxTextLength is the number of characters sent to the model.
const DefaultMaxTextLength = 512

var (
	whitespacePattern = regexp.MustCompile(`\s+`)
	emailPattern      = regexp.MustCompile(`\S+@\S+`)
	urlPattern        = regexp.MustCompile(`http\S+|www\S+`)
	// Everything outside letters, digits, whitespace and common punctuation.
	disallowedPattern = regexp.MustCompile("[^\\p{L}\\p{N}_\\s.:!?@#$%&*()+=\\-\\[\\]{};'\",<>/|\\\\`~^]")
)

// Preprocess normalizes whitespace, masks email addresses and URLs, drops
// unusual characters and truncates the result to maxLen characters. A
// maxLen of zero or less disables truncation.
func Preprocess(text string, maxLen int) string {
	text = strings.TrimSpace(whitespacePattern.ReplaceAllString(text, " "))
	text = emailPattern.ReplaceAllString(text, "[EMAIL]")
	text = urlPattern.ReplaceAllString(text, "[URL]")
	text = disallowedPattern.ReplaceAllString(text, "")

	if maxLen > 0 {
		if runes := []rune(text); len(runes) > maxLen {
			text = string(runes[:maxLen])
		}
	}
	return strings.TrimSpace(text)
}

// WithTemporalContext prefixes text with the part of day of ts and, on
// weekends, the day name.
func WithTemporalContext(text string, ts time.Time) string {
	var prefix string
	switch hour := ts.Hour(); {
	case hour >= 6 && hour < 12:
		prefix = "In the morning: "
	case hour >= 12 && hour < 17:
		prefix = "In the afternoon: "
	case hour >= 17 && hour < 22:
		prefix = "In the evening: "
	default:
		prefix = "Late at night: "
	}

	if wd := ts.Weekday(); wd == time.Saturday || wd == time.Sunday {
		prefix += "On " + wd.String() + " "
	}
	return prefix + text
}

// CategoryForHour picks the candidate label set that fits the time of day.
func CategoryForHour(hour int) models.Category {
	if hour >= 9 && hour < 22 {
		return models.CategoryGeneralActivities
	}
	return models.CategoryDailyRoutine
}
