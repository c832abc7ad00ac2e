package marketdata

import (
	"fmt"
	"strings"
)

// Label is a single extremum tag.
type Label uint8

const (
	LabelHourHigh Label = 1 << iota
	LabelHourLow
	LabelDayHigh
	LabelDayLow
)

// AllLabels lists labels in classification check order.
var AllLabels = []Label{LabelHourHigh, LabelHourLow, LabelDayHigh, LabelDayLow}

func (l Label) String() string {
	switch l {
	case LabelHourHigh:
		return "HOUR_HIGH"
	case LabelHourLow:
		return "HOUR_LOW"
	case LabelDayHigh:
		return "DAY_HIGH"
	case LabelDayLow:
		return "DAY_LOW"
	default:
		return fmt.Sprintf("Label(%d)", uint8(l))
	}
}

// ParseLabel maps a label name back to its Label.
func ParseLabel(s string) (Label, error) {
	for _, l := range AllLabels {
		if l.String() == s {
			return l, nil
		}
	}
	return 0, fmt.Errorf("unknown label: %q", s)
}

// LabelSet is a set of extremum tags carried by one trade.
type LabelSet uint8

func NewLabelSet(labels ...Label) LabelSet {
	var s LabelSet
	for _, l := range labels {
		s = s.With(l)
	}
	return s
}

func (s LabelSet) With(l Label) LabelSet { return s | LabelSet(l) }
func (s LabelSet) Has(l Label) bool      { return s&LabelSet(l) != 0 }
func (s LabelSet) Empty() bool           { return s == 0 }

// Labels returns members in classification check order.
func (s LabelSet) Labels() []Label {
	out := make([]Label, 0, len(AllLabels))
	for _, l := range AllLabels {
		if s.Has(l) {
			out = append(out, l)
		}
	}
	return out
}

func (s LabelSet) String() string {
	return NotePolicyJoin.Format(s)
}

func (s LabelSet) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *LabelSet) UnmarshalText(text []byte) error {
	parsed, err := NotePolicyJoin.Parse(string(text))
	if err != nil {
		return err
	}
	*s = parsed
	return nil
}

// NotePolicy decides how a label set is collapsed into one text field.
type NotePolicy string

const (
	// NotePolicyJoin writes every label joined by NoteSeparator.
	NotePolicyJoin NotePolicy = "join"
	// NotePolicyPriority writes a single label; later checks win, so day
	// labels override hour labels and lows override highs.
	NotePolicyPriority NotePolicy = "priority"

	NoteSeparator = "|"
)

// ParseNotePolicy validates a configured policy name.
func ParseNotePolicy(raw string) (NotePolicy, error) {
	switch p := NotePolicy(strings.ToLower(strings.TrimSpace(raw))); p {
	case "":
		return NotePolicyJoin, nil
	case NotePolicyJoin, NotePolicyPriority:
		return p, nil
	default:
		return "", fmt.Errorf("unsupported note policy: %q", raw)
	}
}

// Format serializes the set. An empty set is an empty string.
func (p NotePolicy) Format(s LabelSet) string {
	labels := s.Labels()
	if len(labels) == 0 {
		return ""
	}
	if p == NotePolicyPriority {
		return labels[len(labels)-1].String()
	}
	names := make([]string, len(labels))
	for i, l := range labels {
		names[i] = l.String()
	}
	return strings.Join(names, NoteSeparator)
}

// Parse reads a note written by Format. Priority notes parse to the single
// label they kept.
func (p NotePolicy) Parse(note string) (LabelSet, error) {
	note = strings.TrimSpace(note)
	if note == "" {
		return 0, nil
	}
	var s LabelSet
	for _, part := range strings.Split(note, NoteSeparator) {
		l, err := ParseLabel(strings.TrimSpace(part))
		if err != nil {
			return 0, err
		}
		s = s.With(l)
	}
	return s, nil
}
