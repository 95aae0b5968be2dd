package analysis

import (
	"fmt"

	"github.com/JonnyWalker81/lifeline/internal/models"
)

// Insight thresholds
const (
	EarlyRiserHour        = 7.0
	LateStarterHour       = 9.0
	HighSpreadActiveHours = 14
	ConcentratedHours     = 8
)

// GenerateInsights classifies upstream numbers into categorical insights. It
// never recomputes statistics.
func GenerateInsights(patterns models.DailyPatterns, anomalies []models.AnomalyRecord) models.Insights {
	var insights models.Insights

	if !patterns.Empty && patterns.WakeUpTime.Average != nil {
		insights.SleepPattern = sleepPatternInsight(*patterns.WakeUpTime.Average)
	}

	if !patterns.Empty && len(patterns.HourlyActivity) > 0 {
		insights.ActivityLevel = activityLevelInsight(patterns.ActiveHours())
	}

	high := 0
	for _, a := range anomalies {
		if a.Kind == models.AnomalyHighActivity {
			high++
		}
	}
	if high > 0 {
		insights.LifeEvents = &models.Insight{
			Category:    models.InsightCategoryLifeEvents,
			Code:        models.InsightHighActivityPeriods,
			Description: fmt.Sprintf("Detected %d periods of unusually high activity.", high),
			MetricValue: float64(high),
		}
	}

	return insights
}

func sleepPatternInsight(avgWake float64) *models.Insight {
	insight := &models.Insight{
		Category:    models.InsightCategorySleepPattern,
		MetricValue: avgWake,
	}
	switch {
	case avgWake < EarlyRiserHour:
		insight.Code = models.InsightEarlyRiser
		insight.Description = "You're an early riser! Most activity starts before 7 AM."
	case avgWake > LateStarterHour:
		insight.Code = models.InsightLateStarter
		insight.Description = "You tend to start your day later, with activity beginning after 9 AM."
	default:
		insight.Code = models.InsightRegularMorning
		insight.Description = "You have a regular morning routine, starting around 7-9 AM."
	}
	return insight
}

func activityLevelInsight(activeHours int) *models.Insight {
	insight := &models.Insight{
		Category:    models.InsightCategoryActivityLevel,
		MetricValue: float64(activeHours),
	}
	switch {
	case activeHours > HighSpreadActiveHours:
		insight.Code = models.InsightHighActivitySpread
		insight.Description = "You maintain high activity levels throughout most of the day."
	case activeHours < ConcentratedHours:
		insight.Code = models.InsightConcentratedActivity
		insight.Description = "Your activity is concentrated in fewer hours of the day."
	default:
		insight.Code = models.InsightModerateActivity
		insight.Description = "You have moderate activity spread across the day."
	}
	return insight
}
