package timeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/jscyril/golang_lipsync_avatar/api"
	playerrors "github.com/jscyril/golang_lipsync_avatar/pkg/errors"
)

// Shape names the structure a viseme source was encoded in
type Shape string

const (
	ShapeList  Shape = "list"
	ShapeKeyed Shape = "keyed"
)

// Report describes what parsing found in a source
type Report struct {
	Shape   Shape
	Records int
	Dropped int
}

// Parse builds a Timeline from a viseme source. The source is either a list
// of {"offset", "viseme_id"} records or an object mapping stringified integer
// keys to such records. Numbers may be plain, numeric strings, or wrapped as
// np.int64(X). Records with an unusable offset are dropped. A source of any
// other shape yields an empty Timeline and a data format error.
func Parse(data []byte) (Timeline, error) {
	tl, _, err := ParseReport(data)
	return tl, err
}

// ParseReport is Parse plus a description of the source
func ParseReport(data []byte) (Timeline, Report, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var raw interface{}
	if err := dec.Decode(&raw); err != nil {
		return Timeline{}, Report{}, playerrors.DataFormat("decode visemes", "", err)
	}

	var records []interface{}
	var report Report
	switch v := raw.(type) {
	case []interface{}:
		report.Shape = ShapeList
		records = v
	case map[string]interface{}:
		report.Shape = ShapeKeyed
		records = keyedRecords(v)
	default:
		return Timeline{}, Report{}, playerrors.DataFormat("decode visemes", "", playerrors.ErrMalformedData)
	}

	report.Records = len(records)
	events := make([]api.VisemeEvent, 0, len(records))
	for _, rec := range records {
		ev, ok := toEvent(rec)
		if !ok {
			report.Dropped++
			continue
		}
		events = append(events, ev)
	}

	return New(events), report, nil
}

// LoadFile reads and parses a viseme source from disk. On any failure the
// returned Timeline is empty and the error says whether the file could not
// be read or could not be parsed.
func LoadFile(path string, logger zerolog.Logger) (Timeline, error) {
	name := filepath.Base(path)

	data, err := os.ReadFile(path)
	if err != nil {
		return Timeline{}, playerrors.AssetLoad("read visemes", name, err)
	}

	tl, report, err := ParseReport(data)
	if err != nil {
		var pe *playerrors.PlayerError
		if errors.As(err, &pe) {
			pe.Track = name
		}
		return Timeline{}, err
	}

	if report.Shape == ShapeKeyed {
		logger.Warn().Str("file", name).Msg("Converting keyed viseme object to list")
	}
	event := logger.Debug().
		Str("file", name).
		Str("shape", string(report.Shape)).
		Int("records", report.Records).
		Int("dropped", report.Dropped).
		Int("events", tl.Len())
	if tl.Len() > 0 {
		event = event.Str("first", describe(tl, 5))
	}
	event.Msg("Viseme timeline loaded")

	return tl, nil
}

// keyedRecords orders the values of a keyed source by integer key; keys that
// are not integers follow in lexical order.
func keyedRecords(m map[string]interface{}) []interface{} {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, aErr := strconv.Atoi(keys[i])
		b, bErr := strconv.Atoi(keys[j])
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return keys[i] < keys[j]
		}
	})

	records := make([]interface{}, 0, len(keys))
	for _, k := range keys {
		records = append(records, m[k])
	}
	return records
}

// maxOffsetMs bounds offsets to what a time.Duration can hold
const maxOffsetMs = float64(math.MaxInt64) / float64(time.Millisecond)

func toEvent(rec interface{}) (api.VisemeEvent, bool) {
	fields, ok := rec.(map[string]interface{})
	if !ok {
		return api.VisemeEvent{}, false
	}

	ms, ok := number(fields["offset"])
	if !ok || ms < 0 || ms >= maxOffsetMs {
		return api.VisemeEvent{}, false
	}

	return api.VisemeEvent{
		Offset:   time.Duration(ms * float64(time.Millisecond)),
		VisemeID: CanonicalID(fields["viseme_id"]),
	}, true
}

// number extracts a finite float from a decoded JSON value
func number(v interface{}) (float64, bool) {
	var s string
	switch n := v.(type) {
	case json.Number:
		s = n.String()
	case float64:
		return n, !math.IsNaN(n) && !math.IsInf(n, 0)
	case string:
		s = unwrap(n)
	default:
		return 0, false
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}

// unwrap strips the np.<type>(X) form numpy writes when its scalars are
// stringified.
func unwrap(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "np.") || !strings.HasSuffix(s, ")") {
		return s
	}
	open := strings.IndexByte(s, '(')
	if open < 0 {
		return s
	}
	return s[open+1 : len(s)-1]
}

// CanonicalID renders a viseme id in the form used for asset lookup: numeric
// ids in shortest decimal form, other strings trimmed, missing ids empty.
func CanonicalID(v interface{}) string {
	if v == nil {
		return ""
	}
	if f, ok := number(v); ok {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	if s, ok := v.(string); ok {
		return strings.TrimSpace(s)
	}
	return fmt.Sprint(v)
}

func describe(tl Timeline, n int) string {
	if n > tl.Len() {
		n = tl.Len()
	}
	parts := make([]string, 0, n)
	for i := 0; i < n; i++ {
		ev := tl.At(i)
		parts = append(parts, fmt.Sprintf("%dms:%s", ev.Offset.Milliseconds(), ev.VisemeID))
	}
	return strings.Join(parts, " ")
}
