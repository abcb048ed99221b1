// Package log defines standard attribute keys for model-selection logging.
//
// Keys follow a dotted "category.name" convention so that log pipelines can
// filter on a prefix ("search.*", "data.*").
package log

// Operation context.
const (
	// ComponentKey identifies which package emitted the record.
	// Examples: "stepwise", "interaction", "ingest"
	ComponentKey = "ml.component"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ModelNameKey identifies the estimator type, e.g. "OLS".
	ModelNameKey = "model.name"
)

// Data shape.
const (
	// SamplesKey is the number of realizations (rows).
	SamplesKey = "data.samples"

	// FeaturesKey is the number of candidate columns.
	FeaturesKey = "data.features"

	// ResponseKey names the response column.
	ResponseKey = "data.response"

	// DegreeKey is the interaction degree used for expansion.
	DegreeKey = "data.interaction_degree"

	// ColumnKey names a single column, e.g. one dropped during ingest.
	ColumnKey = "data.column"
)

// Search progress.
const (
	// RoundKey is the 1-based round of the forward search.
	RoundKey = "search.round"

	// TermKey names the candidate or committed term.
	TermKey = "search.term"

	// ScoreKey is the adjusted R² of a trial model.
	ScoreKey = "search.score"

	// CurrentScoreKey is the adjusted R² of the committed model.
	CurrentScoreKey = "search.current_score"

	// CandidatesKey is the number of remaining candidates.
	CandidatesKey = "search.candidates"

	// SelectedTermsKey is the number of selected terms.
	SelectedTermsKey = "search.selected"

	// StopReasonKey explains why the search terminated.
	StopReasonKey = "search.stop_reason"
)

// Fit quality and performance.
const (
	// AdjustedR2Key records the adjusted R² of a fitted model.
	AdjustedR2Key = "metrics.adjusted_r2"

	// R2ScoreKey records R² of a fitted model.
	R2ScoreKey = "metrics.r2_score"

	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"
)

// Error context.
const (
	// ErrorCodeKey provides a structured error code for programmatic handling.
	ErrorCodeKey = "error.code"

	// SuggestionKey provides a hint for resolving the problem.
	SuggestionKey = "error.suggestion"
)

// Standard attribute values.
const (
	OperationFit    = "fit"
	OperationSelect = "select"
	OperationExpand = "expand"
	OperationIngest = "ingest"

	ErrorConfiguration  = "CONFIGURATION"
	ErrorUnidentifiable = "UNIDENTIFIABLE_MODEL"
	ErrorSingularMatrix = "SINGULAR_MATRIX"
)
