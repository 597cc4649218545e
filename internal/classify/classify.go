package classify

import (
	"net/http"
	"strings"

	"github.com/crawlmd/crawlmd/internal/model"
)

// Error-page body markers recognized when the status code is inconclusive.
const (
	notFoundMarker  = "404 Not Found"
	forbiddenMarker = "403 Forbidden"
)

// Classify decides which outcome category a single page result belongs to.
//
// Decision order, first match wins:
//  1. status 404 -> NotFound
//  2. status 403 -> Forbidden
//  3. content contains "404 Not Found" -> NotFound
//  4. content contains "403 Forbidden" -> Forbidden
//  5. no content -> Empty
//  6. otherwise -> Success
//
// A panic while inspecting the result is recovered locally and reported as
// ProcessingError for that result only; one bad result never invalidates
// the batch.
func Classify(r model.PageResult) (c model.Classification) {
	defer func() {
		if recover() != nil {
			c = model.ClassProcessingError
		}
	}()

	switch r.StatusCode {
	case http.StatusNotFound:
		return model.ClassNotFound
	case http.StatusForbidden:
		return model.ClassForbidden
	}

	text := r.Content()
	if strings.Contains(text, notFoundMarker) {
		return model.ClassNotFound
	}
	if strings.Contains(text, forbiddenMarker) {
		return model.ClassForbidden
	}
	if text == "" {
		return model.ClassEmpty
	}

	return model.ClassSuccess
}
