// Package labels picks room labels out of a drawing's text layer.
package labels

import (
	"bufio"
	"fmt"
	"io"
	"regexp"
	"strings"
)

const (
	minLabelLen = 2
	maxLabelLen = 32

	// ExactConfidence a label that is exactly one known room token.
	ExactConfidence = 0.95
	// PartialConfidence a label that only contains a known token.
	PartialConfidence = 0.85
)

var (
	labelPattern = regexp.MustCompile(`^[A-Z][A-Z0-9/\-\s]{1,30}$`)
	tokenSplit   = regexp.MustCompile(`[\s\-/]+`)
)

var roomTokens = map[string]struct{}{
	"BED": {}, "BEDROOM": {}, "MBR": {},
	"LIVING": {}, "DINING": {}, "KITCHEN": {},
	"BATH": {}, "BATHROOM": {}, "CLOSET": {}, "CL": {},
	"OFFICE": {}, "OFC": {},
	"MECH": {}, "MECHANICAL": {}, "ELEC": {}, "ELECTRICAL": {},
	"STORAGE": {}, "STOR": {},
	"HALL": {}, "CORRIDOR": {}, "STAIR": {}, "STAIRWAY": {},
	"LAUNDRY": {},
}

// Candidate a line accepted as a room label.
type Candidate struct {
	Label      string
	Confidence float64
}

// LooksLikeRoomLabel reports whether s (already trimmed) reads like a room tag.
func LooksLikeRoomLabel(s string) bool {
	if len(s) < minLabelLen || len(s) > maxLabelLen {
		return false
	}
	if !labelPattern.MatchString(s) {
		return false
	}
	for _, tok := range tokenSplit.Split(s, -1) {
		if _, ok := roomTokens[tok]; ok {
			return true
		}
	}
	return false
}

// Confidence scores an accepted label.
func Confidence(label string) float64 {
	if _, ok := roomTokens[label]; ok {
		return ExactConfidence
	}
	return PartialConfidence
}

// Scan reads r line by line and returns every room label in reading order.
// Repeated labels are kept; a drawing usually has more than one BED.
func Scan(r io.Reader) ([]Candidate, error) {
	var out []Candidate
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if !LooksLikeRoomLabel(line) {
			continue
		}
		out = append(out, Candidate{Label: line, Confidence: Confidence(line)})
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("scan text layer: %w", err)
	}
	return out, nil
}
