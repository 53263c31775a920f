package spot

import (
	"errors"
	"fmt"
)

// Parse failure classes. Every *MetadataParseError wraps exactly one of them.
var (
	// ErrStructure means the filename did not split into the expected tokens.
	ErrStructure = errors.New("unexpected filename structure")
	// ErrValue means a token that should be numeric was not.
	ErrValue = errors.New("invalid numeric field")
	// ErrIndex means the trial/location token was too short.
	ErrIndex = errors.New("trial-location token too short")
	// ErrDate means the date token did not match MMDDYYYY.
	ErrDate = errors.New("invalid collection date")
)

// ErrInvalidScale is returned by New when the scale is not positive.
var ErrInvalidScale = errors.New("scale must be positive")

// MetadataParseError reports a filename that does not follow the spot grammar.
type MetadataParseError struct {
	// Location is the path or URI that was parsed.
	Location string

	// Token is the offending filename token, empty for structural failures.
	Token string

	// Err is one of ErrStructure, ErrValue, ErrIndex or ErrDate, possibly
	// wrapping the underlying strconv/time error.
	Err error
}

func (e *MetadataParseError) Error() string {
	if e.Token == "" {
		return fmt.Sprintf("metadata: %s: %v", e.Location, e.Err)
	}
	return fmt.Sprintf("metadata: %s: token %q: %v", e.Location, e.Token, e.Err)
}

func (e *MetadataParseError) Unwrap() error { return e.Err }

func parseError(location, token string, kind, cause error) error {
	err := kind
	if cause != nil {
		err = fmt.Errorf("%w: %v", kind, cause)
	}
	return &MetadataParseError{Location: location, Token: token, Err: err}
}
