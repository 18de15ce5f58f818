// Package codec converts a field.Selection to and from the selection string shared
// with the scoring server and the nuclei counter.
//
// All numbers are original-image pixels. Records are joined by "_":
//
//	<x>x<y>y<diameter>pp<ki67><viewing flag><scoring flag>
//
// e.g. 3822x4856y4000pp0no_13474x4347y4000pp1no_34563x5981y4000pp2ns
package codec

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gpec/fieldselector/pkg/field"
)

const (
	Delimiter = "_"
	TagX      = "x"
	TagY      = "y"
	TagKi67   = "pp"

	TagViewingCurrent    = "c"
	TagViewingPreview    = "p"
	TagViewingNotCurrent = "n"

	TagScoringNotScored = "o"
	TagScoringScoring   = "i"
	TagScoringScored    = "s"
)

// Ki67 percent-positive levels as written on the wire.
const (
	Ki67LevelNegligible = 0
	Ki67LevelLow        = 1
	Ki67LevelMedium     = 2
	Ki67LevelHigh       = 3
	Ki67LevelHighest    = 4
)

// ErrMalformed matches every *ParseError via errors.Is.
var ErrMalformed = errors.New("codec: malformed selection string")

// ParseError reports a record that breaks the grammar.
type ParseError struct {
	Reason   string // what was being extracted
	Fragment string // offending part of the record
	Input    string // whole (trimmed) input
	Err      error  // underlying conversion error, if any
}

func (e *ParseError) Error() string {
	msg := fmt.Sprintf("codec: %s, parsing: (%s) within: %s", e.Reason, e.Fragment, e.Input)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

// Unwrap returns the conversion error, if any.
func (e *ParseError) Unwrap() error { return e.Err }

// Is matches ErrMalformed.
func (e *ParseError) Is(target error) bool { return target == ErrMalformed }

// Ki67Code returns the wire level for k. Unknown states encode as negligible.
func Ki67Code(k field.Ki67State) int {
	switch k {
	case field.HotSpot:
		return Ki67LevelHighest
	case field.High:
		return Ki67LevelHigh
	case field.Medium:
		return Ki67LevelMedium
	case field.Low:
		return Ki67LevelLow
	default:
		return Ki67LevelNegligible
	}
}

// Ki67FromCode maps a wire level to a state. Anything outside 0-4 is negligible.
func Ki67FromCode(code int) field.Ki67State {
	switch code {
	case Ki67LevelHighest:
		return field.HotSpot
	case Ki67LevelHigh:
		return field.High
	case Ki67LevelMedium:
		return field.Medium
	case Ki67LevelLow:
		return field.Low
	default:
		return field.Negligible
	}
}

// Decode parses a selection string. Empty or blank input yields an empty selection.
func Decode(input string) (field.Selection, error) {
	input = strings.TrimSpace(input)
	sel := field.Selection{}
	if input == "" {
		return sel, nil
	}

	records := strings.Split(input, Delimiter)
	// a trailing delimiter is tolerated
	for len(records) > 0 && records[len(records)-1] == "" {
		records = records[:len(records)-1]
	}

	for _, record := range records {
		f, err := decodeRecord(record, input)
		if err != nil {
			return nil, err
		}
		sel = append(sel, f)
	}
	return sel, nil
}

func decodeRecord(record, input string) (*field.FieldOfView, error) {
	parts := strings.Split(record, TagX)
	if len(parts) != 2 {
		return nil, &ParseError{Reason: "trying to get x value", Fragment: record, Input: input}
	}
	x, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, &ParseError{Reason: "trying to parse x value", Fragment: record, Input: input, Err: err}
	}

	parts = strings.Split(parts[1], TagY)
	if len(parts) != 2 {
		return nil, &ParseError{Reason: "trying to get y value", Fragment: record, Input: input}
	}
	y, err := strconv.Atoi(parts[0])
	if err != nil {
		return nil, &ParseError{Reason: "trying to parse y value", Fragment: record, Input: input, Err: err}
	}

	// the scoring flag is always the last character, so it is stripped first
	rest := parts[1]
	scoring := field.NotScored
	switch {
	case strings.HasSuffix(rest, TagScoringScoring):
		scoring = field.Scoring
		rest = strings.TrimSuffix(rest, TagScoringScoring)
	case strings.HasSuffix(rest, TagScoringScored):
		scoring = field.Scored
		rest = strings.TrimSuffix(rest, TagScoringScored)
	case strings.HasSuffix(rest, TagScoringNotScored):
		rest = strings.TrimSuffix(rest, TagScoringNotScored)
	}

	// a record ending in the bare Ki67 tag ("3pp") carries no viewing flag
	viewing := field.NotCurrent
	if !strings.HasSuffix(rest, TagKi67) {
		switch {
		case strings.HasSuffix(rest, TagViewingCurrent):
			viewing = field.Current
			rest = strings.TrimSuffix(rest, TagViewingCurrent)
		case strings.HasSuffix(rest, TagViewingPreview):
			viewing = field.Preview
			rest = strings.TrimSuffix(rest, TagViewingPreview)
		case strings.HasSuffix(rest, TagViewingNotCurrent):
			rest = strings.TrimSuffix(rest, TagViewingNotCurrent)
		}
	}

	diameterPart, ki67Part, ok := strings.Cut(rest, TagKi67)
	if !ok {
		return nil, &ParseError{Reason: "trying to get diameter value", Fragment: rest, Input: input}
	}
	diameter, err := strconv.Atoi(diameterPart)
	if err != nil {
		return nil, &ParseError{Reason: "trying to parse diameter value", Fragment: record, Input: input, Err: err}
	}

	ki67 := field.Negligible
	if code, err := strconv.Atoi(ki67Part); err == nil {
		ki67 = Ki67FromCode(code)
	}

	return field.New(x, y, diameter, viewing, scoring, ki67), nil
}

// Encode writes sel as a selection string. Both flags and the Ki67 level are
// always written; nil entries are skipped.
func Encode(sel field.Selection) string {
	var b strings.Builder
	for _, f := range sel {
		if f == nil {
			continue
		}
		if b.Len() > 0 {
			b.WriteString(Delimiter)
		}
		b.WriteString(strconv.Itoa(f.X()))
		b.WriteString(TagX)
		b.WriteString(strconv.Itoa(f.Y()))
		b.WriteString(TagY)
		b.WriteString(strconv.Itoa(f.Diameter()))
		b.WriteString(TagKi67)
		b.WriteString(strconv.Itoa(Ki67Code(f.Ki67State())))
		b.WriteString(viewingTag(f.ViewingState()))
		b.WriteString(scoringTag(f.ScoringState()))
	}
	return b.String()
}

func viewingTag(s field.ViewingState) string {
	switch s {
	case field.Current:
		return TagViewingCurrent
	case field.Preview:
		return TagViewingPreview
	default:
		return TagViewingNotCurrent
	}
}

func scoringTag(s field.ScoringState) string {
	switch s {
	case field.Scoring:
		return TagScoringScoring
	case field.Scored:
		return TagScoringScored
	default:
		return TagScoringNotScored
	}
}
