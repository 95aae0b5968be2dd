package models

import "time"

// TrendsSummary is the wire shape of the trend analysis. OverallTrend and
// TrendDirection are omitted when the overall weekly series was too short.
type TrendsSummary struct {
	OverallTrend               *float64                  `json:"overall_trend,omitempty"`
	TrendDirection             *TrendDirection           `json:"trend_direction,omitempty"`
	ActivitySpecificTrends     map[string]float64        `json:"activity_specific_trends"`
	ActivitySpecificDirections map[string]TrendDirection `json:"activity_specific_directions"`
	HourlyDistribution         map[int]int               `json:"hourly_distribution"`
	Results                    []TrendResult             `json:"results"`
}

// NewTrendsSummary folds trend results and the hour histogram of the
// analyzed events into the wire shape.
func NewTrendsSummary(results []TrendResult, hourly map[int]int) TrendsSummary {
	summary := TrendsSummary{
		ActivitySpecificTrends:     make(map[string]float64),
		ActivitySpecificDirections: make(map[string]TrendDirection),
		HourlyDistribution:         hourly,
		Results:                    results,
	}
	for _, r := range results {
		switch r.Scope.Kind {
		case TrendScopeOverall:
			slope, direction := r.Slope, r.Direction
			summary.OverallTrend = &slope
			summary.TrendDirection = &direction
		case TrendScopePerLabel:
			summary.ActivitySpecificTrends[r.Scope.Label] = r.Slope
			summary.ActivitySpecificDirections[r.Scope.Label] = r.Direction
		}
	}
	return summary
}

// Report is the combined result of one analysis call. Every top-level key is
// always present; an empty container means there was not enough signal.
type Report struct {
	ID            string           `json:"id"`
	Fingerprint   string           `json:"fingerprint"`
	CacheKey      string           `json:"cache_key"`
	GeneratedAt   time.Time        `json:"generated_at"`
	EventCount    int              `json:"event_count"`
	RejectedCount int              `json:"rejected_count"`
	Rejected      []RejectedRecord `json:"rejected"`

	WakeUpTime     HourStats       `json:"wake_up_time"`
	SleepTime      HourStats       `json:"sleep_time"`
	HourlyActivity map[int]int     `json:"hourly_activity"`
	PeakHours      []int           `json:"peak_hours"`
	QuietHours     []int           `json:"quiet_hours"`
	LifeEvents     []AnomalyRecord `json:"life_events"`
	IntervalEvents []IntervalEvent `json:"interval_events"`
	Trends         TrendsSummary   `json:"trends"`
	Insights       Insights        `json:"insights"`

	DailyTimeline   []DailyAggregate  `json:"daily_timeline"`
	WeeklyPatterns  WeeklyPatterns    `json:"weekly_patterns"`
	MonthlyOverview []MonthlyOverview `json:"monthly_overview"`
	PatternShifts   []PatternShift    `json:"pattern_shifts"`
	Routines        Routines          `json:"routines"`
}

// Normalize replaces nil containers with empty ones so that every key
// serializes as a container rather than null.
func (r *Report) Normalize() {
	if r.Rejected == nil {
		r.Rejected = []RejectedRecord{}
	}
	if r.HourlyActivity == nil {
		r.HourlyActivity = map[int]int{}
	}
	if r.PeakHours == nil {
		r.PeakHours = []int{}
	}
	if r.QuietHours == nil {
		r.QuietHours = []int{}
	}
	if r.LifeEvents == nil {
		r.LifeEvents = []AnomalyRecord{}
	}
	if r.IntervalEvents == nil {
		r.IntervalEvents = []IntervalEvent{}
	}
	if r.Trends.ActivitySpecificTrends == nil {
		r.Trends.ActivitySpecificTrends = map[string]float64{}
	}
	if r.Trends.ActivitySpecificDirections == nil {
		r.Trends.ActivitySpecificDirections = map[string]TrendDirection{}
	}
	if r.Trends.HourlyDistribution == nil {
		r.Trends.HourlyDistribution = map[int]int{}
	}
	if r.Trends.Results == nil {
		r.Trends.Results = []TrendResult{}
	}
	if r.DailyTimeline == nil {
		r.DailyTimeline = []DailyAggregate{}
	}
	if r.WeeklyPatterns.ActivityByDay == nil {
		r.WeeklyPatterns.ActivityByDay = map[string]map[string]int{}
	}
	if r.WeeklyPatterns.WeekendVsWeekday.WeekendActivities == nil {
		r.WeeklyPatterns.WeekendVsWeekday.WeekendActivities = map[string]int{}
	}
	if r.WeeklyPatterns.WeekendVsWeekday.WeekdayActivities == nil {
		r.WeeklyPatterns.WeekendVsWeekday.WeekdayActivities = map[string]int{}
	}
	if r.MonthlyOverview == nil {
		r.MonthlyOverview = []MonthlyOverview{}
	}
	if r.PatternShifts == nil {
		r.PatternShifts = []PatternShift{}
	}
	if r.Routines.Morning == nil {
		r.Routines.Morning = []RoutineActivity{}
	}
	if r.Routines.Work == nil {
		r.Routines.Work = []RoutineActivity{}
	}
	if r.Routines.Evening == nil {
		r.Routines.Evening = []RoutineActivity{}
	}
	if r.Routines.Weekend == nil {
		r.Routines.Weekend = []RoutineActivity{}
	}
}

// AnalyzeRequest is the body of an analysis request
type AnalyzeRequest struct {
	Events  []RawRecord     `json:"events"`
	Options *AnalyzeOptions `json:"options,omitempty"`
}

// AnalyzeOptions are per-request overrides of the configured analysis defaults
type AnalyzeOptions struct {
	QualifyingLabel *string `json:"qualifying_label,omitempty"`
	IncludeUnscored *bool   `json:"include_unscored,omitempty"`
	Timezone        *string `json:"timezone,omitempty"`
}
