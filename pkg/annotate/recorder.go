package annotate

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"github.com/goliatone/go-fieldblocks/pkg/model"
	"github.com/goliatone/go-fieldblocks/pkg/visibility"
)

// SentinelPrefix starts every sentinel token.
const SentinelPrefix = "fbsentinel-"

var sentinelPattern = regexp.MustCompile(SentinelPrefix + `[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}-[0-9]+`)

// Recorded is one intercepted field value.
type Recorded struct {
	Key         string
	Type        model.FieldType
	Value       string
	Sentinel    bool
	Placeholder string
}

// Recorder collects the scalar values handed to a template, in the order the
// fields were resolved.
type Recorder struct {
	token   string
	entries []Recorded
}

// NewRecorder returns a Recorder with a fresh sentinel namespace.
func NewRecorder() *Recorder {
	return &Recorder{token: SentinelPrefix + uuid.NewString()}
}

// Intercept records value for field and returns what the template should
// receive. Empty scalars are swapped for a sentinel token so the field can
// still be located in the rendered markup. Composite values pass through
// unrecorded.
func (r *Recorder) Intercept(field model.FieldDefinition, value any) any {
	if r == nil || isComposite(value) {
		return value
	}
	text := strings.TrimSpace(visibility.String(value))
	entry := Recorded{
		Key:         field.Key,
		Type:        field.Type,
		Value:       text,
		Placeholder: field.Placeholder,
	}
	if text == "" {
		entry.Value = r.token + "-" + strconv.Itoa(len(r.entries))
		entry.Sentinel = true
		r.entries = append(r.entries, entry)
		return entry.Value
	}
	r.entries = append(r.entries, entry)
	return value
}

// Entries returns a copy of the recorded values.
func (r *Recorder) Entries() []Recorded {
	if r == nil {
		return nil
	}
	return append([]Recorded(nil), r.entries...)
}

// Len reports the number of recorded values.
func (r *Recorder) Len() int {
	if r == nil {
		return 0
	}
	return len(r.entries)
}

// StripSentinels removes every sentinel token from s.
func StripSentinels(s string) string {
	if !strings.Contains(s, SentinelPrefix) {
		return s
	}
	return sentinelPattern.ReplaceAllString(s, "")
}

// ContainsSentinel reports whether s still carries a sentinel token.
func ContainsSentinel(s string) bool {
	return sentinelPattern.MatchString(s)
}

func isComposite(value any) bool {
	switch value.(type) {
	case map[string]any, []any, []string, []map[string]any, map[string]string:
		return true
	default:
		return false
	}
}
