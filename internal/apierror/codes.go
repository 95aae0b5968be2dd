package apierror

// Error type URIs following the urn:lifeline:error:* pattern.
// These are used as the "type" field in RFC 9457 Problem Details.
const (
	// TypeValidation indicates the submitted events or options are unusable (400)
	TypeValidation = "urn:lifeline:error:validation"

	// TypeBadRequest indicates a malformed request body (400)
	TypeBadRequest = "urn:lifeline:error:bad_request"

	// TypeInvalidReportID indicates a report id that could not have been issued (400)
	TypeInvalidReportID = "urn:lifeline:error:invalid_report_id"

	// TypeNotFound indicates the requested report does not exist (404)
	TypeNotFound = "urn:lifeline:error:not_found"

	// TypeRateLimit indicates too many requests (429)
	TypeRateLimit = "urn:lifeline:error:rate_limit"

	// TypeInternal indicates an unexpected server error (500)
	TypeInternal = "urn:lifeline:error:internal"

	// TypeClassifierUnavailable indicates the upstream classifier is failing (502)
	TypeClassifierUnavailable = "urn:lifeline:error:classifier_unavailable"
)

// Titles for each error type - human-readable summaries
const (
	TitleValidation            = "Validation Error"
	TitleBadRequest            = "Bad Request"
	TitleInvalidReportID       = "Invalid Report ID"
	TitleNotFound              = "Resource Not Found"
	TitleRateLimit             = "Rate Limit Exceeded"
	TitleInternal              = "Internal Server Error"
	TitleClassifierUnavailable = "Classifier Unavailable"
)
