// Package storage holds the S3-compatible resume store and the stored file
// naming shared by every file provider.
package storage

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9]`)

// FileName builds a unique, recognisable stored name:
// <timestamp>_<owner>_<label>_<original name>.
func FileName(at time.Time, ownerName, label, original string) string {
	if ownerName == "" {
		ownerName = "applicant"
	}
	if label == "" {
		label = "application"
	}
	ts := strings.NewReplacer(":", "-", ".", "-").Replace(at.UTC().Format("2006-01-02T15:04:05.000Z"))
	return fmt.Sprintf("%s_%s_%s_%s",
		ts,
		unsafeChars.ReplaceAllString(ownerName, "_"),
		unsafeChars.ReplaceAllString(label, "_"),
		original,
	)
}
