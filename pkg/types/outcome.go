package types

import (
	"errors"
	"fmt"
	"strings"

	"golang.org/x/text/cases"
)

// ErrInvalidStatus indicates a status name that does not map to a known Status.
var ErrInvalidStatus = errors.New("invalid job status")

// Status is the result of a job run.
type Status int

// Known job statuses.
const (
	StatusSuccess Status = iota
	StatusWarning
	StatusFailure
)

// statusWords maps each Status to the word used in messages and metrics labels.
var statusWords = map[Status]string{
	StatusSuccess: "Success",
	StatusWarning: "Warning",
	StatusFailure: "Failure",
}

// Statuses lists every known status in declaration order.
func Statuses() []Status {
	return []Status{StatusSuccess, StatusWarning, StatusFailure}
}

// String returns the capitalized status word, e.g. "Success".
func (s Status) String() string {
	if word, ok := statusWords[s]; ok {
		return word
	}

	return fmt.Sprintf("Status(%d)", int(s))
}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	_, ok := statusWords[s]

	return ok
}

// ParseStatus maps a status name to a Status, ignoring case and surrounding whitespace.
//
// Parameters:
//   - name: Status name such as "success", "WARNING" or "Failure".
//
// Returns:
//   - Status: Matching status.
//   - error: ErrInvalidStatus if the name is unknown.
func ParseStatus(name string) (Status, error) {
	folder := cases.Fold()
	folded := folder.String(strings.TrimSpace(name))

	for _, status := range Statuses() {
		if folder.String(status.String()) == folded {
			return status, nil
		}
	}

	return 0, fmt.Errorf("%w: %q", ErrInvalidStatus, name)
}

// Outcome is the result of a single job run as seen by a notifier.
type Outcome struct {
	Status  Status // Result of the run.
	Trigger string // Machine name of the job, e.g. "db_backup".
	Label   string // Human readable job name, e.g. "Database backup".
}
