package bt

import (
	"fmt"
	"strings"
)

// Status is the result of ticking a node.
type Status int

const (
	// Initialized is the status of a node that has not been ticked since it
	// was constructed or reset.
	Initialized Status = iota
	// Running indicates the node has not finished yet.
	Running
	// Succeeded indicates the node finished successfully.
	Succeeded
	// Failed indicates the node finished unsuccessfully.
	Failed
)

// IsDone returns true if the status is terminal (Succeeded or Failed).
func (s Status) IsDone() bool {
	return s == Succeeded || s == Failed
}

// String returns the lowercase label for the status.
func (s Status) String() string {
	switch s {
	case Initialized:
		return "initialized"
	case Running:
		return "running"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// ParseStatus is the inverse of [Status.String]. Matching is case-insensitive.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "initialized":
		return Initialized, nil
	case "running":
		return Running, nil
	case "succeeded":
		return Succeeded, nil
	case "failed":
		return Failed, nil
	default:
		return Initialized, fmt.Errorf("%w: %q", ErrUnknownStatus, s)
	}
}

// MarshalText encodes the status as its label.
func (s Status) MarshalText() ([]byte, error) {
	if s < Initialized || s > Failed {
		return nil, fmt.Errorf("%w: %d", ErrUnknownStatus, int(s))
	}
	return []byte(s.String()), nil
}

// UnmarshalText decodes a label produced by MarshalText.
func (s *Status) UnmarshalText(text []byte) error {
	v, err := ParseStatus(string(text))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
