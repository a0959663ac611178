package sources

import (
	"reflect"
	"testing"

	"github.com/anatolykoptev/go_transcript/internal/engine"
)

func TestNormalizeShapesAreEquivalent(t *testing.T) {
	payloads := map[string]Payload{
		"list of dicts": ListPayload{Items: []any{
			map[string]any{"text": "hello world", "start": 0.0, "duration": 2.0},
		}},
		"text object": ObjectPayload{Text: "hello world"},
		"bare string": StringPayload{Raw: "hello world"},
	}
	for name, p := range payloads {
		t.Run(name, func(t *testing.T) {
			segs := Normalize(p)
			if len(segs) != 1 || segs[0].Text != "hello world" {
				t.Fatalf("Normalize() = %+v", segs)
			}
			if got := engine.JoinSegments(segs); got != "hello world" {
				t.Errorf("text = %q", got)
			}
		})
	}
}

func TestDecodePayloadShapes(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantKind string
	}{
		{"json list", `[{"text":"hello","start":0,"duration":1},{"text":"world","start":"1.0","duration":"1"}]`, "list"},
		{"json object", `{"text":"hello world"}`, "object"},
		{"bare string", `hello world`, "string"},
		{"srv1 xml", `<?xml version="1.0"?><transcript><text start="0" dur="1">hello</text><text start="1" dur="1">world</text></transcript>`, "list"},
		{"srv3 xml", `<timedtext format="3"><body><p t="0" d="1000">hello</p><p t="1000" d="1000"><s>wor</s><s>ld</s></p></body></timedtext>`, "list"},
		{"json3", `{"events":[{"tStartMs":0,"dDurationMs":1000,"segs":[{"utf8":"hello"}]},{"tStartMs":500},{"tStartMs":1000,"dDurationMs":1000,"segs":[{"utf8":"world"}]}]}`, "list"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DecodePayload([]byte(tt.body))
			if p.payloadKind() != tt.wantKind {
				t.Fatalf("kind = %q, want %q", p.payloadKind(), tt.wantKind)
			}
			text := engine.JoinSegments(Normalize(p))
			if text != "hello world" {
				t.Errorf("text = %q", text)
			}
		})
	}
}

func TestDecodeTimedTextTiming(t *testing.T) {
	body := `<timedtext format="3"><body><p t="1500" d="2000">first</p><p t="4000" d="500">second</p></body></timedtext>`
	got := Normalize(DecodePayload([]byte(body)))
	want := []engine.Segment{
		{Text: "first", Start: 1.5, Duration: 2},
		{Text: "second", Start: 4, Duration: 0.5},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Normalize() = %+v, want %+v", got, want)
	}
}

func TestNormalizeCleansAndFilters(t *testing.T) {
	p := ListPayload{Items: []any{
		map[string]any{"text": "  "},
		map[string]any{"text": "it&amp;#39;s <font color=\"#fff\">fine</font>"},
		"",
		map[string]any{"text": "\n"},
		map[string]any{"text": "next\nline"},
	}}
	got := Normalize(p)
	if len(got) != 2 {
		t.Fatalf("expected 2 segments, got %+v", got)
	}
	if got[0].Text != "it's fine" {
		t.Errorf("segment 0 = %q", got[0].Text)
	}
	if got[1].Text != "next line" {
		t.Errorf("segment 1 = %q", got[1].Text)
	}
}

func TestNormalizeNeverFails(t *testing.T) {
	p := ListPayload{Items: []any{
		42.0,
		[]any{"a", "b"},
		map[string]any{"caption": "no text key"},
		nil,
	}}
	got := Normalize(p)
	if len(got) == 0 {
		t.Fatal("expected stringified segments")
	}
	if got[0].Text != "42" {
		t.Errorf("number item = %q", got[0].Text)
	}

	if segs := Normalize(nil); segs != nil {
		t.Errorf("Normalize(nil) = %+v", segs)
	}
	if segs := Normalize(DecodePayload([]byte(`<transcript><text start="0">hello`))); len(segs) != 1 {
		t.Errorf("broken XML should degrade to one text segment, got %+v", segs)
	}
}

func TestObjectPayloadSnippets(t *testing.T) {
	p := DecodePayload([]byte(`{"text":"ignored when snippets exist","snippets":[{"text":"a","start":1,"duration":1},{"text":"b","start":2,"duration":1}]}`))
	got := Normalize(p)
	if len(got) != 2 || got[1].Start != 2 {
		t.Errorf("Normalize() = %+v", got)
	}
}
