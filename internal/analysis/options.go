// Package analysis derives routine statistics, volume anomalies, interval
// events, trends and insights from an eventstore snapshot. Every analyzer is
// a pure function of the store and its options; nothing is cached between
// calls.
package analysis

const (
	// DefaultRollingWindow is the number of dates in the centered baseline window.
	DefaultRollingWindow = 7

	// DefaultSigma is the deviation threshold in population standard deviations.
	DefaultSigma = 2.0

	// DefaultConfidenceDivisor maps severity onto [0, 1]: severity 3 is full confidence.
	DefaultConfidenceDivisor = 3.0

	// DefaultMinEvents is the minimum event count for anomaly detection.
	DefaultMinEvents = 10

	// DefaultMinTrendPoints is the minimum number of weeks for a trend.
	DefaultMinTrendPoints = 3

	// DefaultMinIntervalDays is the shortest run reported as an interval event.
	DefaultMinIntervalDays = 2

	// DefaultQualifyingLabel is the label merged into interval events.
	DefaultQualifyingLabel = "Travel"

	// DefaultShiftThreshold is the week-over-week share change reported as a pattern shift.
	DefaultShiftThreshold = 0.5

	// DefaultMinRoutineFrequency is how often a label must recur to count as a routine.
	DefaultMinRoutineFrequency = 2
)

// Options tune the analyzers. Start from DefaultOptions; a zero Options is
// valid but disables every minimum.
type Options struct {
	RollingWindow       int
	Sigma               float64
	ConfidenceDivisor   float64
	MinEvents           int
	MinTrendPoints      int
	MinIntervalDays     int
	QualifyingLabel     string
	ShiftThreshold      float64
	MinRoutineFrequency int

	// IncludeUnscored feeds events without a classifier confidence into the
	// anomaly detector and trend estimator.
	IncludeUnscored bool
}

// DefaultOptions returns the stock analysis settings
func DefaultOptions() Options {
	return Options{
		RollingWindow:       DefaultRollingWindow,
		Sigma:               DefaultSigma,
		ConfidenceDivisor:   DefaultConfidenceDivisor,
		MinEvents:           DefaultMinEvents,
		MinTrendPoints:      DefaultMinTrendPoints,
		MinIntervalDays:     DefaultMinIntervalDays,
		QualifyingLabel:     DefaultQualifyingLabel,
		ShiftThreshold:      DefaultShiftThreshold,
		MinRoutineFrequency: DefaultMinRoutineFrequency,
	}
}
