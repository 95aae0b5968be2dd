package models

// Confidence represents the confidence level of a classification
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// ConfidenceLevelOf buckets a classifier score.
func ConfidenceLevelOf(score float64) Confidence {
	switch {
	case score > 0.8:
		return ConfidenceHigh
	case score > 0.5:
		return ConfidenceMedium
	default:
		return ConfidenceLow
	}
}

// Classification is a successful classifier response for one text
type Classification struct {
	Label           string             `json:"label"`
	Confidence      float64            `json:"confidence"`
	AllPredictions  map[string]float64 `json:"all_predictions"`
	HighConfidence  bool               `json:"high_confidence"`
	ConfidenceLevel Confidence         `json:"confidence_level"`
	ActivityType    ActivityType       `json:"activity_type"`
	KeywordsFound   []string           `json:"keywords_found"`
}

// TextItem is a raw text with its timestamp, as supplied by an ingestion connector
type TextItem struct {
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
}

// ClassificationFailure records a text the classifier could not label
type ClassificationFailure struct {
	Index     int    `json:"index"`
	Timestamp string `json:"timestamp"`
	Text      string `json:"text"`
	Reason    string `json:"reason"`
}

// ClassificationBatch is the outcome of classifying many texts. Failures are
// kept apart from Records and never appear as records with a null label.
type ClassificationBatch struct {
	Records  []RawRecord             `json:"records"`
	Failures []ClassificationFailure `json:"failures"`
}

// ClassifyRequest is the body of a classification request
type ClassifyRequest struct {
	Items    []TextItem `json:"items" binding:"required"`
	Category string     `json:"category"`
}
