package model

// Classification is the category assigned to exactly one PageResult by the
// result classifier. Every result receives exactly one classification.
type Classification int

const (
	// ClassSuccess means the page carried usable content and belongs in
	// the report.
	ClassSuccess Classification = iota

	// ClassNotFound means the page was a 404, either by status code or by
	// recognized error-page content.
	ClassNotFound

	// ClassForbidden means access was denied (403), either by status code
	// or by recognized error-page content.
	ClassForbidden

	// ClassEmpty means the page produced no content. Empty pages are
	// excluded from the report and from the success/failure counters.
	ClassEmpty

	// ClassProcessingError means inspecting the result itself failed.
	// Such results are logged and skipped; they never abort the batch.
	ClassProcessingError
)

// String returns a short lowercase name for the classification.
func (c Classification) String() string {
	switch c {
	case ClassSuccess:
		return "success"
	case ClassNotFound:
		return "not_found"
	case ClassForbidden:
		return "forbidden"
	case ClassEmpty:
		return "empty"
	case ClassProcessingError:
		return "processing_error"
	default:
		return "unknown"
	}
}
