package influx

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"
)

// Point is a single measurement sample.
//
// Tags index the point (keep cardinality low); Fields carry the values.
// A zero Time omits the timestamp and lets the server assign arrival time.
type Point struct {
	Measurement string
	Tags        map[string]string
	Fields      map[string]interface{}
	Time        time.Time
}

// EncodePoints serializes points into the line protocol wire body,
// one newline-terminated line per point:
//
//	measurement[,tag=val]* field=val[,field=val]* [timestamp]
//
// Encoding is deterministic (tag and field keys sorted) and side-effect
// free. Timestamps are written in nanoseconds; callers requesting a
// coarser precision on the write itself should truncate accordingly
// server-side via WriteOptions.Precision.
func EncodePoints(points []Point) []byte {
	var buf bytes.Buffer
	for _, p := range points {
		encodePoint(&buf, p)
	}
	return buf.Bytes()
}

func encodePoint(buf *bytes.Buffer, p Point) {
	buf.WriteString(escapeMeasurement(p.Measurement))

	// Tags (sorted for deterministic output and testability)
	tagKeys := make([]string, 0, len(p.Tags))
	for k := range p.Tags {
		tagKeys = append(tagKeys, k)
	}
	sort.Strings(tagKeys)
	for _, k := range tagKeys {
		buf.WriteByte(',')
		buf.WriteString(escapeTag(k))
		buf.WriteByte('=')
		buf.WriteString(escapeTag(p.Tags[k]))
	}

	// Fields (sorted for deterministic output)
	fieldKeys := make([]string, 0, len(p.Fields))
	for k := range p.Fields {
		fieldKeys = append(fieldKeys, k)
	}
	sort.Strings(fieldKeys)
	buf.WriteByte(' ')
	first := true
	for _, k := range fieldKeys {
		if !first {
			buf.WriteByte(',')
		}
		first = false
		buf.WriteString(escapeTag(k))
		buf.WriteByte('=')
		writeFieldValue(buf, p.Fields[k])
	}

	if !p.Time.IsZero() {
		buf.WriteByte(' ')
		fmt.Fprintf(buf, "%d", p.Time.UnixNano())
	}
	buf.WriteByte('\n')
}

func writeFieldValue(buf *bytes.Buffer, v interface{}) {
	switch val := v.(type) {
	case float64:
		fmt.Fprintf(buf, "%g", val)
	case float32:
		fmt.Fprintf(buf, "%g", val)
	case int:
		fmt.Fprintf(buf, "%di", val)
	case int64:
		fmt.Fprintf(buf, "%di", val)
	case bool:
		if val {
			buf.WriteString("true")
		} else {
			buf.WriteString("false")
		}
	case string:
		fmt.Fprintf(buf, "%q", val)
	default:
		fmt.Fprintf(buf, "%v", val)
	}
}

// escapeTag escapes special characters in tag keys/values per the line
// protocol: commas, equals signs and spaces are backslash-escaped.
// Newlines are stripped to prevent line protocol injection.
func escapeTag(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	s = strings.ReplaceAll(s, "=", "\\=")
	return s
}

// escapeMeasurement escapes special characters in measurement names.
// Equals signs are legal in measurements, so only spaces and commas are
// escaped. Newlines are stripped to prevent line protocol injection.
func escapeMeasurement(s string) string {
	s = strings.ReplaceAll(s, "\n", "")
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, " ", "\\ ")
	s = strings.ReplaceAll(s, ",", "\\,")
	return s
}
