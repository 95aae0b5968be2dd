package models

import (
	"fmt"
	"strings"
)

// Category selects the candidate label set handed to the activity classifier.
type Category string

const (
	CategoryDailyRoutine      Category = "daily_routine"
	CategoryLifeEvents        Category = "life_events"
	CategoryGeneralActivities Category = "general_activities"
)

// ActivityType groups labels into broader kinds of activity
type ActivityType string

const (
	ActivityTypeProductive     ActivityType = "productive"
	ActivityTypeLeisure        ActivityType = "leisure"
	ActivityTypeHealthWellness ActivityType = "health_wellness"
	ActivityTypeOther          ActivityType = "other"
)

var categoryLabels = map[Category][]string{
	CategoryDailyRoutine: {
		"Sleep", "Wake up", "Morning routine", "Breakfast", "Commuting",
		"Work", "Lunch", "Exercise", "Dinner", "Evening routine",
	},
	CategoryLifeEvents: {
		"Job change", "Travel", "Vacation", "Moving", "Relationship",
		"Education", "Health", "Family events", "Social gathering",
	},
	CategoryGeneralActivities: {
		"Work", "Travel", "Shopping", "Socializing", "Studying",
		"Entertainment", "Exercise", "Eating", "Sleeping",
	},
}

// labelKeywords are the words that typically lead the classifier to a label.
var labelKeywords = map[string][]string{
	"Work":          {"work", "office", "meeting", "project", "deadline", "email", "call"},
	"Exercise":      {"gym", "run", "workout", "fitness", "training", "sports"},
	"Travel":        {"flight", "airport", "hotel", "vacation", "trip", "destination"},
	"Eating":        {"lunch", "dinner", "breakfast", "food", "restaurant", "cooking"},
	"Shopping":      {"buy", "purchase", "store", "mall", "shopping", "amazon"},
	"Socializing":   {"friends", "party", "hangout", "social", "meet", "chat"},
	"Entertainment": {"movie", "show", "music", "game", "watch", "play"},
}

var labelActivityTypes = map[string]ActivityType{
	"Work":          ActivityTypeProductive,
	"Studying":      ActivityTypeProductive,
	"Meeting":       ActivityTypeProductive,
	"Entertainment": ActivityTypeLeisure,
	"Socializing":   ActivityTypeLeisure,
	"Shopping":      ActivityTypeLeisure,
	"Exercise":      ActivityTypeHealthWellness,
	"Eating":        ActivityTypeHealthWellness,
	"Sleeping":      ActivityTypeHealthWellness,
}

// Categories returns every known category in a stable order.
func Categories() []Category {
	return []Category{CategoryDailyRoutine, CategoryLifeEvents, CategoryGeneralActivities}
}

// ParseCategory converts a string to a Category. An empty string selects
// CategoryGeneralActivities.
func ParseCategory(s string) (Category, error) {
	if strings.TrimSpace(s) == "" {
		return CategoryGeneralActivities, nil
	}
	c := Category(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := categoryLabels[c]; !ok {
		return "", fmt.Errorf("unknown category %q", s)
	}
	return c, nil
}

// Labels returns a copy of the candidate label set for the category.
func (c Category) Labels() []string {
	labels, ok := categoryLabels[c]
	if !ok {
		labels = categoryLabels[CategoryGeneralActivities]
	}
	out := make([]string, len(labels))
	copy(out, labels)
	return out
}

// Keywords returns the keyword list associated with a label.
func Keywords(label string) []string {
	return labelKeywords[label]
}

// ActivityTypeOf returns the broader activity type of a label
func ActivityTypeOf(label string) ActivityType {
	if t, ok := labelActivityTypes[label]; ok {
		return t
	}
	return ActivityTypeOther
}
