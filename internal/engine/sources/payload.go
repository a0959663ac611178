package sources

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

// Payload is a raw caption response after boundary decoding.
// The set is closed: ListPayload, ObjectPayload, StringPayload.
type Payload interface {
	payloadKind() string
}

// ListPayload is a sequence of items, usually {text, start, duration} maps.
// Items of any other type are stringified.
type ListPayload struct {
	Items []any
}

// ObjectPayload is a single object carrying a text attribute and optional timed snippets.
type ObjectPayload struct {
	Text     string
	Snippets []engine.Segment
}

// StringPayload is an opaque body treated as one block of text.
type StringPayload struct {
	Raw string
}

func (ListPayload) payloadKind() string   { return "list" }
func (ObjectPayload) payloadKind() string { return "object" }
func (StringPayload) payloadKind() string { return "string" }

// DecodePayload classifies a caption response body. It never fails: bodies it
// cannot parse become a StringPayload.
//
// Recognized: timedtext XML (srv1 <text start dur>, srv3 <p t d>), json3
// {"events": [...]}, JSON arrays, and JSON objects with a "text" field.
func DecodePayload(body []byte) Payload {
	b := bytes.TrimSpace(bytes.TrimPrefix(body, []byte("\xef\xbb\xbf")))
	if len(b) == 0 {
		return StringPayload{}
	}

	switch b[0] {
	case '<':
		items, err := decodeTimedTextXML(b)
		if err == nil {
			return ListPayload{Items: items}
		}
		slog.Warn("youtube: timedtext XML not parseable, using raw text", slog.Any("err", err))
	case '[':
		var items []any
		if err := json.Unmarshal(b, &items); err == nil {
			return ListPayload{Items: items}
		}
	case '{':
		var obj map[string]any
		if err := json.Unmarshal(b, &obj); err == nil {
			if events, ok := obj["events"].([]any); ok {
				return ListPayload{Items: json3Items(events)}
			}
			if text, ok := obj["text"]; ok {
				return ObjectPayload{Text: stringify(text), Snippets: snippetsOf(obj["snippets"])}
			}
			if snippets, ok := obj["snippets"].([]any); ok {
				return ListPayload{Items: snippets}
			}
		}
	}
	return StringPayload{Raw: string(b)}
}

// Normalize converts any payload into non-empty, cleaned segments in order.
func Normalize(p Payload) []engine.Segment {
	var segs []engine.Segment
	switch v := p.(type) {
	case nil:
		return nil
	case ListPayload:
		segs = make([]engine.Segment, 0, len(v.Items))
		for _, item := range v.Items {
			segs = append(segs, itemSegment(item))
		}
	case ObjectPayload:
		if len(v.Snippets) > 0 {
			segs = append(segs, v.Snippets...)
		} else {
			segs = []engine.Segment{{Text: v.Text}}
		}
	case StringPayload:
		segs = []engine.Segment{{Text: v.Raw}}
	default:
		slog.Warn("youtube: unrecognized caption payload, treating as text", slog.String("type", fmt.Sprintf("%T", p)))
		segs = []engine.Segment{{Text: fmt.Sprint(p)}}
	}

	for i := range segs {
		segs[i].Text = engine.CleanCaption(segs[i].Text)
	}
	return engine.NonEmptySegments(segs)
}

// itemSegment converts one list item. Maps are read by key; anything else is
// stringified whole.
func itemSegment(item any) engine.Segment {
	switch v := item.(type) {
	case engine.Segment:
		return v
	case string:
		return engine.Segment{Text: v}
	case map[string]any:
		seg := engine.Segment{
			Start:    firstNumber(v, "start", "offset"),
			Duration: firstNumber(v, "duration", "dur"),
		}
		if text, ok := firstPresent(v, "text", "utf8"); ok {
			seg.Text = stringify(text)
		} else {
			slog.Warn("youtube: caption item without text, treating as text", slog.Int("keys", len(v)))
			seg.Text = stringify(v)
		}
		return seg
	default:
		slog.Warn("youtube: unrecognized caption item, treating as text", slog.String("type", fmt.Sprintf("%T", item)))
		return engine.Segment{Text: fmt.Sprint(item)}
	}
}

// --- timedtext XML ---

type timedTextDoc struct {
	Texts []ttText `xml:"text"`   // srv1: <transcript><text start="" dur="">
	Paras []ttPara `xml:"body>p"` // srv3: <timedtext><body><p t="" d="">
}

type ttText struct {
	Start string `xml:"start,attr"`
	Dur   string `xml:"dur,attr"`
	Text  string `xml:",chardata"`
}

type ttPara struct {
	T     string `xml:"t,attr"`
	D     string `xml:"d,attr"`
	Text  string `xml:",chardata"`
	Spans []struct {
		Text string `xml:",chardata"`
	} `xml:"s"`
}

func decodeTimedTextXML(b []byte) ([]any, error) {
	var doc timedTextDoc
	dec := xml.NewDecoder(bytes.NewReader(b))
	dec.Strict = false
	dec.Entity = xml.HTMLEntity
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("parse timedtext XML: %w", err)
	}

	items := make([]any, 0, len(doc.Texts)+len(doc.Paras))
	for _, t := range doc.Texts {
		items = append(items, map[string]any{
			"text":     t.Text,
			"start":    parseFloat(t.Start),
			"duration": parseFloat(t.Dur),
		})
	}
	for _, p := range doc.Paras {
		text := p.Text
		if len(p.Spans) > 0 {
			parts := make([]string, 0, len(p.Spans))
			for _, s := range p.Spans {
				parts = append(parts, s.Text)
			}
			text = strings.Join(parts, "")
		}
		items = append(items, map[string]any{
			"text":     text,
			"start":    parseFloat(p.T) / 1000,
			"duration": parseFloat(p.D) / 1000,
		})
	}
	return items, nil
}

// --- json3 ---

func json3Items(events []any) []any {
	items := make([]any, 0, len(events))
	for _, e := range events {
		ev, ok := e.(map[string]any)
		if !ok {
			continue
		}
		segs, ok := ev["segs"].([]any)
		if !ok {
			continue // window/style events carry no text
		}
		var sb strings.Builder
		for _, s := range segs {
			if m, ok := s.(map[string]any); ok {
				sb.WriteString(stringify(m["utf8"]))
			}
		}
		items = append(items, map[string]any{
			"text":     sb.String(),
			"start":    toFloat(ev["tStartMs"]) / 1000,
			"duration": toFloat(ev["dDurationMs"]) / 1000,
		})
	}
	return items
}

// --- coercion helpers ---

func snippetsOf(v any) []engine.Segment {
	list, ok := v.([]any)
	if !ok {
		return nil
	}
	out := make([]engine.Segment, 0, len(list))
	for _, item := range list {
		out = append(out, itemSegment(item))
	}
	return out
}

func firstPresent(m map[string]any, keys ...string) (any, bool) {
	for _, k := range keys {
		if v, ok := m[k]; ok && v != nil {
			return v, true
		}
	}
	return nil, false
}

func firstNumber(m map[string]any, keys ...string) float64 {
	if v, ok := firstPresent(m, keys...); ok {
		return toFloat(v)
	}
	return 0
}

func toFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case float32:
		return float64(n)
	case int:
		return float64(n)
	case int64:
		return float64(n)
	case json.Number:
		f, _ := n.Float64()
		return f
	case string:
		return parseFloat(n)
	}
	return 0
}

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0
	}
	return f
}

// stringify renders any decoded JSON value as text.
func stringify(v any) string {
	switch s := v.(type) {
	case nil:
		return ""
	case string:
		return s
	case map[string]any, []any:
		if b, err := json.Marshal(s); err == nil {
			return string(b)
		}
	}
	return fmt.Sprint(v)
}
