package spot

import (
	"path"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

const (
	// diameterPrefix opens the first filename token.
	diameterPrefix = "dd"

	// extensionLength is the length of the trailing ".ext" that is dropped.
	extensionLength = 4

	// tokenSeparator splits the filename stem into fields.
	tokenSeparator = "_"

	// dateLayout is MMDDYYYY with no separators.
	dateLayout = "01022006"
)

// Metadata holds the experiment parameters encoded in a spot filename.
type Metadata struct {
	// DropletDiameterMicrons is the nominal droplet size (µm).
	DropletDiameterMicrons int `json:"droplet_diameter_microns"`

	// TrialNumber is the single-digit trial identifier.
	TrialNumber int `json:"trial_number"`

	// LocationNumber is the single-digit sampling location identifier.
	LocationNumber int `json:"location_number"`

	// DateCollected is the collection date at midnight UTC.
	DateCollected time.Time `json:"date_collected"`
}

// ParseFilename decodes the metadata fields from a spot scan location.
//
// Only the base name is examined, so local paths and s3:// URIs both work.
// The trailing four characters (".tif", ".png", ...) are dropped and the
// remaining stem must split on "_" into exactly three tokens:
//
//   - token 0: "dd" followed by a positive integer (droplet diameter)
//   - token 1: at least three characters; index 1 is the trial digit and
//     index 2 the location digit
//   - token 2: the collection date as MMDDYYYY
//
// Errors are *MetadataParseError values wrapping ErrStructure, ErrValue,
// ErrIndex or ErrDate.
func ParseFilename(location string) (Metadata, error) {
	base := path.Base(filepath.ToSlash(location))
	if len(base) <= extensionLength {
		return Metadata{}, parseError(location, "", ErrStructure, nil)
	}
	stem := base[:len(base)-extensionLength]

	tokens := strings.Split(stem, tokenSeparator)
	if len(tokens) != 3 {
		return Metadata{}, parseError(location, "", ErrStructure, nil)
	}

	diameter, err := parseDiameter(tokens[0])
	if err != nil {
		return Metadata{}, parseError(location, tokens[0], ErrValue, err)
	}

	trial, locationNumber, err := parseTrialLocation(tokens[1])
	if err != nil {
		return Metadata{}, &MetadataParseError{Location: location, Token: tokens[1], Err: err}
	}

	date, err := time.Parse(dateLayout, tokens[2])
	if err != nil {
		return Metadata{}, parseError(location, tokens[2], ErrDate, err)
	}

	return Metadata{
		DropletDiameterMicrons: diameter,
		TrialNumber:            trial,
		LocationNumber:         locationNumber,
		DateCollected:          date,
	}, nil
}

func parseDiameter(token string) (int, error) {
	if !strings.HasPrefix(token, diameterPrefix) {
		return 0, strconv.ErrSyntax
	}
	d, err := strconv.Atoi(strings.TrimPrefix(token, diameterPrefix))
	if err != nil {
		return 0, err
	}
	if d <= 0 {
		return 0, strconv.ErrRange
	}
	return d, nil
}

func parseTrialLocation(token string) (trial, location int, err error) {
	if len(token) < 3 {
		return 0, 0, ErrIndex
	}
	if trial, err = digit(token[1]); err != nil {
		return 0, 0, err
	}
	if location, err = digit(token[2]); err != nil {
		return 0, 0, err
	}
	return trial, location, nil
}

func digit(c byte) (int, error) {
	if c < '0' || c > '9' {
		return 0, ErrValue
	}
	return int(c - '0'), nil
}
