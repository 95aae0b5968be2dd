package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format of a calendar date.
const DateLayout = "2006-01-02"

// Date is a calendar day with no time-of-day component. It is always stored
// at midnight UTC so day differences are exact multiples of 24 hours.
type Date struct {
	time.Time
}

// NewDate returns the date for the given year, month and day.
func NewDate(year int, month time.Month, day int) Date {
	return Date{time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar date of t in t's own location.
func DateOf(t time.Time) Date {
	y, m, d := t.Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, err
	}
	return Date{t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// Before reports whether d is earlier than o.
func (d Date) Before(o Date) bool { return d.Time.Before(o.Time) }

// After reports whether d is later than o.
func (d Date) After(o Date) bool { return d.Time.After(o.Time) }

// Equal reports whether d and o are the same day.
func (d Date) Equal(o Date) bool { return d.Time.Equal(o.Time) }

// AddDays returns the date n days after d.
func (d Date) AddDays(n int) Date {
	return Date{d.AddDate(0, 0, n)}
}

// DaysUntil returns the number of whole days from d to later.
func (d Date) DaysUntil(later Date) int {
	return int(later.Sub(d.Time) / (24 * time.Hour))
}

// MarshalJSON encodes the date as "YYYY-MM-DD".
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON decodes a "YYYY-MM-DD" string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// WeekKey identifies an ISO 8601 calendar week
type WeekKey struct {
	Year int `json:"year"`
	Week int `json:"week"`
}

// WeekOf returns the ISO week containing t.
func WeekOf(t time.Time) WeekKey {
	y, w := t.ISOWeek()
	return WeekKey{Year: y, Week: w}
}

func (k WeekKey) String() string {
	return fmt.Sprintf("%04d-W%02d", k.Year, k.Week)
}

// Less orders weeks chronologically.
func (k WeekKey) Less(o WeekKey) bool {
	if k.Year != o.Year {
		return k.Year < o.Year
	}
	return k.Week < o.Week
}

// Monday returns the first day of the ISO week.
func (k WeekKey) Monday() Date {
	// January 4th is always in ISO week 1.
	jan4 := NewDate(k.Year, time.January, 4)
	offset := (int(jan4.Weekday()) + 6) % 7
	return jan4.AddDays(-offset + (k.Week-1)*7)
}

// DailyAggregate summarizes a single calendar day of activity
type DailyAggregate struct {
	Date              Date             `json:"date"`
	EventCount        int              `json:"total_activities"`
	FirstHour         int              `json:"first_activity"`
	LastHour          int              `json:"last_activity"`
	ActiveHourCount   int              `json:"active_hours"`
	ActivityHistogram map[string]int   `json:"activities"`
	HourlyBreakdown   map[int][]string `json:"hourly_breakdown"`
}

// AnomalyKind tells whether a day was unusually busy or unusually quiet
type AnomalyKind string

const (
	AnomalyHighActivity AnomalyKind = "high_activity"
	AnomalyLowActivity  AnomalyKind = "low_activity"
)

// AnomalyRecord is a day whose event count deviates from its rolling baseline.
type AnomalyRecord struct {
	Date             Date        `json:"date"`
	Kind             AnomalyKind `json:"type"`
	Description      string      `json:"description"`
	ObservedCount    int         `json:"activity_count"`
	ExpectedBaseline float64     `json:"expected_count"`
	Severity         float64     `json:"severity"`
	Confidence       float64     `json:"confidence"`
}

// IntervalEvent is a run of consecutive days sharing a qualifying label.
type IntervalEvent struct {
	StartDate       Date   `json:"date"`
	EndDate         Date   `json:"end_date"`
	Type            string `json:"type"`
	QualifyingLabel string `json:"label"`
	Description     string `json:"description"`
	DurationDays    int    `json:"duration_days"`
}

// TrendDirection classifies the sign of a trend slope
type TrendDirection string

const (
	TrendIncreasing TrendDirection = "increasing"
	TrendDecreasing TrendDirection = "decreasing"
	TrendStable     TrendDirection = "stable"
)

// TrendScopeKind distinguishes the overall series from per-label series
type TrendScopeKind string

const (
	TrendScopeOverall  TrendScopeKind = "overall"
	TrendScopePerLabel TrendScopeKind = "label"
)

// TrendScope names the series a trend was fitted to. Label is empty for the
// overall series.
type TrendScope struct {
	Kind  TrendScopeKind `json:"kind"`
	Label string         `json:"label,omitempty"`
}

// TrendResult is the least-squares slope of a weekly count series.
type TrendResult struct {
	Scope     TrendScope     `json:"scope"`
	Slope     float64        `json:"slope"`
	Direction TrendDirection `json:"direction"`
	Points    int            `json:"points"`
}

// HourStats summarizes one boundary hour (first or last activity) across days.
// All fields are nil when there were no days to summarize.
type HourStats struct {
	Average    *float64 `json:"average,omitempty"`
	Std        *float64 `json:"std,omitempty"`
	MostCommon *int     `json:"most_common,omitempty"`
}

// DailyPatterns holds routine statistics for a snapshot of events.
type DailyPatterns struct {
	Empty          bool        `json:"empty"`
	DaysObserved   int         `json:"days_observed"`
	WakeUpTime     HourStats   `json:"wake_up_time"`
	SleepTime      HourStats   `json:"sleep_time"`
	HourlyActivity map[int]int `json:"hourly_activity"`
	PeakHours      []int       `json:"peak_hours"`
	QuietHours     []int       `json:"quiet_hours"`
}

// ActiveHours returns the number of hours that saw at least one event.
func (p DailyPatterns) ActiveHours() int {
	n := 0
	for _, count := range p.HourlyActivity {
		if count > 0 {
			n++
		}
	}
	return n
}

// InsightCategory represents the category of insight
type InsightCategory string

const (
	InsightCategorySleepPattern  InsightCategory = "sleep_pattern"
	InsightCategoryActivityLevel InsightCategory = "activity_level"
	InsightCategoryLifeEvents    InsightCategory = "life_events"
)

// InsightCode is the categorical outcome of an insight rule
type InsightCode string

const (
	InsightEarlyRiser           InsightCode = "early_riser"
	InsightLateStarter          InsightCode = "late_starter"
	InsightRegularMorning       InsightCode = "regular_morning_routine"
	InsightHighActivitySpread   InsightCode = "high_activity_spread"
	InsightConcentratedActivity InsightCode = "concentrated_activity"
	InsightModerateActivity     InsightCode = "moderate"
	InsightHighActivityPeriods  InsightCode = "high_activity_periods"
)

// Insight represents a computed insight
type Insight struct {
	Category    InsightCategory `json:"category"`
	Code        InsightCode     `json:"code"`
	Description string          `json:"description"`
	MetricValue float64         `json:"metric_value"`
}

// Insights groups the insights produced for one report. A nil entry means the
// upstream data did not support that insight.
type Insights struct {
	SleepPattern  *Insight `json:"sleep_pattern,omitempty"`
	ActivityLevel *Insight `json:"activity_level,omitempty"`
	LifeEvents    *Insight `json:"life_events,omitempty"`
}

// WeeklyVolume describes how many events fall into each ISO week
type WeeklyVolume struct {
	Weeks   int     `json:"weeks"`
	Average float64 `json:"average"`
	Std     float64 `json:"std"`
	Trend   float64 `json:"trend"`
}

// WeekendComparison contrasts weekend and weekday activity
type WeekendComparison struct {
	WeekendActivities map[string]int `json:"weekend_activities"`
	WeekdayActivities map[string]int `json:"weekday_activities"`
	WeekendAvgPerDay  float64        `json:"weekend_avg_per_day"`
	WeekdayAvgPerDay  float64        `json:"weekday_avg_per_day"`
}

// WeeklyPatterns represents day-of-week and week-level activity patterns
type WeeklyPatterns struct {
	ActivityByDay    map[string]map[string]int `json:"activity_by_day"` // weekday -> label -> count
	WeeklyVolume     WeeklyVolume              `json:"weekly_volume"`
	WeekendVsWeekday WeekendComparison         `json:"weekend_vs_weekday"`
}

// LabelCount pairs a label with an event count
type LabelCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// LabelShare describes one label's share of a set of events
type LabelShare struct {
	Count         int      `json:"count"`
	Percentage    float64  `json:"percentage"`
	AvgConfidence *float64 `json:"avg_confidence,omitempty"`
}

// MonthlyOverview summarizes one calendar month
type MonthlyOverview struct {
	Month                string                `json:"month"` // YYYY-MM
	TotalActivities      int                   `json:"total_activities"`
	UniqueDays           int                   `json:"unique_days"`
	AvgActivitiesPerDay  float64               `json:"avg_activities_per_day"`
	TopActivities        []LabelCount          `json:"top_activities"`
	ActivityDistribution map[string]LabelShare `json:"activity_distribution"`
	BusiestDay           Date                  `json:"busiest_day"`
	QuietestDay          Date                  `json:"quietest_day"`
}

// PatternShift marks a week whose label mix differs sharply from the week before
type PatternShift struct {
	Date        Date    `json:"date"`
	Week        string  `json:"week"`
	Type        string  `json:"type"`
	Severity    float64 `json:"severity"`
	Description string  `json:"description"`
}

// RoutineActivity is a label that recurs within a time-of-day window
type RoutineActivity struct {
	Activity          string  `json:"activity"`
	Frequency         int     `json:"frequency"`
	AverageConfidence float64 `json:"average_confidence"`
	Percentage        float64 `json:"percentage"`
}

// Routines lists recurring activities per time-of-day window
type Routines struct {
	Morning []RoutineActivity `json:"morning_routine"`
	Work    []RoutineActivity `json:"work_routine"`
	Evening []RoutineActivity `json:"evening_routine"`
	Weekend []RoutineActivity `json:"weekend_routine"`
}
