package item

import (
	"fmt"
	"math"
	"reflect"
	"strings"
	"time"

	"github.com/araddon/dateparse"
	"github.com/google/uuid"
)

// Raw is an untrusted record as produced by a connector. Any field may be
// missing or carry a value of an unexpected shape.
type Raw map[string]any

// Raw field names understood by Normalize.
const (
	FieldID          = "id"
	FieldCategory    = "category"
	FieldTitle       = "title"
	FieldSummary     = "summary"
	FieldSource      = "source"
	FieldURL         = "url"
	FieldPublishedAt = "publishedAt"
	FieldTags        = "tags"
	FieldLocale      = "locale"
	FieldVerified    = "verified"
	FieldThumbnail   = "thumbnail"
	FieldType        = "type"
	FieldTickers     = "tickers"
)

// Zone used for timestamps that carry no offset.
var Zone = mustZone("Asia/Tokyo")

func mustZone(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		return time.FixedZone("JST", 9*60*60)
	}
	return loc
}

// String returns the stringified value of key, or "" when absent or nil.
func (r Raw) String(key string) string {
	return stringify(r[key])
}

// Has reports whether key is present with a non-nil value.
func (r Raw) Has(key string) bool {
	v, ok := r[key]
	return ok && v != nil
}

// SetDefault stores v under key unless the record already carries a
// non-empty value there.
func (r Raw) SetDefault(key string, v any) {
	switch cur := r[key].(type) {
	case []any:
		if len(cur) > 0 {
			return
		}
	case []string:
		if len(cur) > 0 {
			return
		}
	default:
		if strings.TrimSpace(r.String(key)) != "" {
			return
		}
	}
	r[key] = v
}

// Accept reports whether a raw record may enter the pipeline: it must carry
// a url and must not be explicitly unverified.
func Accept(r Raw) bool {
	if strings.TrimSpace(r.String(FieldURL)) == "" {
		return false
	}
	if v, ok := r[FieldVerified].(bool); ok && !v {
		return false
	}
	return true
}

// Normalize converts a raw record into an Item. It never fails; every field
// falls back to a documented default. Type and Issuer are left for the
// classifier when the record does not supply them.
func Normalize(r Raw) Item {
	it := Item{
		ID:          r.String(FieldID),
		Category:    Market,
		Title:       r.String(FieldTitle),
		Summary:     r.String(FieldSummary),
		Source:      r.String(FieldSource),
		URL:         r.String(FieldURL),
		PublishedAt: parseTime(r[FieldPublishedAt]),
		Tags:        stringSeq(r[FieldTags], MaxTags),
		Locale:      r.String(FieldLocale),
		Verified:    true,
		Thumbnail:   r.String(FieldThumbnail),
	}
	if c, ok := ParseCategory(r.String(FieldCategory)); ok {
		it.Category = c
	}
	if strings.TrimSpace(it.Title) == "" {
		it.Title = UnknownTitle
	}
	if it.Locale == "" {
		it.Locale = DefaultLocale
	}
	if v, ok := r[FieldVerified].(bool); ok && !v {
		it.Verified = false
	}
	if it.ID == "" {
		it.ID = PlaceholderID()
	}
	if s, ok := r[FieldType].(string); ok {
		it.Type = s
	}
	it.Tickers = strictStringSeq(r[FieldTickers])
	return it
}

// PlaceholderID returns a random temporary id. The store replaces it with a
// namespaced id on merge.
func PlaceholderID() string {
	return "tmp-" + uuid.NewString()
}

func stringify(v any) string {
	if rv := reflect.ValueOf(v); rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ""
	}
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case fmt.Stringer:
		return t.String()
	case float64:
		if t == math.Trunc(t) && math.Abs(t) < 1e15 {
			return fmt.Sprintf("%d", int64(t))
		}
		return fmt.Sprint(t)
	default:
		return fmt.Sprint(t)
	}
}

func stringSeq(v any, limit int) []string {
	var in []any
	switch t := v.(type) {
	case []string:
		for _, s := range t {
			in = append(in, s)
		}
	case []any:
		in = t
	default:
		return []string{}
	}
	out := make([]string, 0, min(len(in), limit))
	for _, e := range in {
		if len(out) == limit {
			break
		}
		s := strings.TrimSpace(stringify(e))
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out
}

func strictStringSeq(v any) []string {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...)
	case []any:
		out := make([]string, 0, len(t))
		for _, e := range t {
			s, ok := e.(string)
			if !ok {
				return nil
			}
			out = append(out, s)
		}
		return out
	}
	return nil
}

func parseTime(v any) *time.Time {
	var t time.Time
	switch x := v.(type) {
	case time.Time:
		t = x
	case *time.Time:
		if x == nil {
			return nil
		}
		t = *x
	case string:
		s := strings.TrimSpace(x)
		if s == "" {
			return nil
		}
		parsed, err := dateparse.ParseIn(s, Zone)
		if err != nil {
			return nil
		}
		t = parsed
	case float64:
		t = epoch(x)
	case int64:
		t = epoch(float64(x))
	case int:
		t = epoch(float64(x))
	default:
		return nil
	}
	if t.IsZero() {
		return nil
	}
	return &t
}

// epoch reads n as Unix milliseconds, or seconds for small magnitudes.
// Values outside the int64 millisecond range yield the zero time.
func epoch(n float64) time.Time {
	if math.IsNaN(n) || math.IsInf(n, 0) || math.Abs(n) >= math.MaxInt64 {
		return time.Time{}
	}
	if math.Abs(n) < 1e11 {
		return time.Unix(int64(n), 0).UTC()
	}
	return time.UnixMilli(int64(n)).UTC()
}
