package statusutil

import (
	"errors"
	"fmt"
	"strings"

	"jobtrack/internal/model"
)

var ErrInvalidStatus = errors.New("invalid status")

var ordered = []model.Status{
	model.StatusApplied,
	model.StatusInterview,
	model.StatusOffer,
	model.StatusRejected,
}

// Ordered returns the statuses in board column order.
func Ordered() []model.Status {
	return append([]model.Status(nil), ordered...)
}

func Normalize(s string) (model.Status, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("%w: empty", ErrInvalidStatus)
	}
	for _, st := range ordered {
		if strings.EqualFold(string(st), s) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %s", ErrInvalidStatus, s)
}

func Valid(s model.Status) bool {
	for _, st := range ordered {
		if st == s {
			return true
		}
	}
	return false
}

func Index(s model.Status) int {
	for i, st := range ordered {
		if st == s {
			return i
		}
	}
	return -1
}

func Label(s model.Status) string {
	if !Valid(s) {
		return "(unknown)"
	}
	return string(s)
}

// IsEndState reports whether no further progress is expected for the status.
func IsEndState(s model.Status) bool {
	return s == model.StatusOffer || s == model.StatusRejected
}
