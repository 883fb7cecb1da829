package codec

import (
	"reflect"
	"testing"
)

// testCodecs are the structured codecs, raw is tested separately
var testCodecs = map[string]func() ICodec{
	"JSON": NewJSONCodec,
	"YAML": NewYAMLCodec,
	"GOB":  NewGOBCodec,
}

type record struct {
	Name string
	Tags []string
}

func TestStructuredRoundTrip(t *testing.T) {
	for name, factory := range testCodecs {
		t.Run(name, func(t *testing.T) {
			c := factory()

			categories := []string{"English", "French", "Elvish"}
			data, err := c.Encode(categories)
			if err != nil {
				t.Fatalf("Failed to encode list: %v", err)
			}
			var gotList []string
			if err := c.Decode(data, &gotList); err != nil {
				t.Fatalf("Failed to decode list: %v", err)
			}
			if !reflect.DeepEqual(categories, gotList) {
				t.Errorf("List mismatch: expected %v, got %v", categories, gotList)
			}

			id := "3b241101-e2bb-4255-8caf-4136c566a962"
			data, err = c.Encode(id)
			if err != nil {
				t.Fatalf("Failed to encode string: %v", err)
			}
			var gotID string
			if err := c.Decode(data, &gotID); err != nil {
				t.Fatalf("Failed to decode string: %v", err)
			}
			if gotID != id {
				t.Errorf("String mismatch: expected %s, got %s", id, gotID)
			}

			rec := record{Name: "Legolas", Tags: []string{"rare"}}
			data, err = c.Encode(rec)
			if err != nil {
				t.Fatalf("Failed to encode struct: %v", err)
			}
			var gotRec record
			if err := c.Decode(data, &gotRec); err != nil {
				t.Fatalf("Failed to decode struct: %v", err)
			}
			if !reflect.DeepEqual(rec, gotRec) {
				t.Errorf("Struct mismatch: expected %+v, got %+v", rec, gotRec)
			}
		})
	}
}

func TestRawCodec(t *testing.T) {
	c := NewRawCodec()

	data, err := c.Encode([]byte("value"))
	if err != nil {
		t.Fatalf("Failed to encode bytes: %v", err)
	}
	var out []byte
	if err := c.Decode(data, &out); err != nil || string(out) != "value" {
		t.Errorf("Expected value, got %q (err: %v)", out, err)
	}

	data, _ = c.Encode("text")
	var s string
	if err := c.Decode(data, &s); err != nil || s != "text" {
		t.Errorf("Expected text, got %q (err: %v)", s, err)
	}

	if _, err := c.Encode(42); err == nil {
		t.Errorf("Encoding an int should fail")
	}
	var n int
	if err := c.Decode(data, &n); err == nil {
		t.Errorf("Decoding into *int should fail")
	}
}

func TestNew(t *testing.T) {
	for _, enc := range []Encoding{EncodingJSON, EncodingYAML, EncodingGob, EncodingRaw} {
		c, err := New(enc)
		if err != nil {
			t.Errorf("New(%s) failed: %v", enc, err)
			continue
		}
		if c.Encoding() != enc {
			t.Errorf("Expected encoding %s, got %s", enc, c.Encoding())
		}
	}

	if c, err := New(""); err != nil || c.Encoding() != EncodingJSON {
		t.Errorf("Empty encoding should default to json")
	}

	if _, err := New("xml"); err == nil {
		t.Errorf("Unknown encoding should fail")
	}
}
