package services

import (
	"errors"
	"fmt"
	"strings"
)

// Failure markers. Every error produced by a pipeline stage is tagged with
// exactly one of these via Wrap so callers can classify it with errors.Is.
var (
	ErrUnreachableSource = errors.New("source unreachable")
	ErrExtraction        = errors.New("extraction failure")
	ErrSponsorFetch      = errors.New("sponsor segment fetch failure")
	ErrDownload          = errors.New("download failure")
	ErrProbe             = errors.New("probe failure")
	ErrMalformedProgress = errors.New("malformed progress line")
	ErrEncode            = errors.New("encode failure")
	ErrValidation        = errors.New("validation error")
	ErrConfiguration     = errors.New("configuration error")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of the
// exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrValidation
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// IsFatal reports whether err aborts the item it was raised for. Sponsor
// fetch failures and malformed progress lines degrade gracefully; everything
// else ends the job.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	switch {
	case errors.Is(err, ErrSponsorFetch), errors.Is(err, ErrMalformedProgress):
		return false
	default:
		return true
	}
}

// Kind returns a short stable label for the marker carried by err, suitable
// for summaries and structured log fields.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrUnreachableSource):
		return "unreachable_source"
	case errors.Is(err, ErrExtraction):
		return "extraction_failure"
	case errors.Is(err, ErrSponsorFetch):
		return "sponsor_fetch_failure"
	case errors.Is(err, ErrDownload):
		return "download_failure"
	case errors.Is(err, ErrProbe):
		return "probe_failure"
	case errors.Is(err, ErrMalformedProgress):
		return "malformed_progress_line"
	case errors.Is(err, ErrEncode):
		return "encode_failure"
	case errors.Is(err, ErrConfiguration):
		return "configuration_error"
	case errors.Is(err, ErrValidation):
		return "validation_error"
	default:
		return "unknown"
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "service failure"
	}
	return strings.Join(parts, ": ")
}
