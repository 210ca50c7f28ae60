package pipeline

import "strings"

// Stage is a step of the item lifecycle.
type Stage string

const (
	StageResolving        Stage = "resolving"
	StageFetchingSegments Stage = "fetching_segments"
	StageDownloading      Stage = "downloading"
	StageProbing          Stage = "probing"
	StageEncoding         Stage = "encoding"
	StageCleaningUp       Stage = "cleaning_up"
	StageSucceeded        Stage = "succeeded"
	StageFailed           Stage = "failed"
)

// Terminal reports whether the stage ends the lifecycle.
func (s Stage) Terminal() bool {
	return s == StageSucceeded || s == StageFailed
}

// Label renders the stage for humans, e.g. "Fetching Segments".
func (s Stage) Label() string {
	parts := strings.Fields(strings.ReplaceAll(string(s), "_", " "))
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
