package session

import (
	"math"
	"testing"
)

func TestNormalizeStructsBecomeMaps(t *testing.T) {
	type prefs struct {
		Theme string `json:"theme"`
		Size  int    `json:"size"`
	}
	v, err := Normalize(prefs{Theme: "dark", Size: 12})
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		t.Fatalf("want map, got %T", v)
	}
	if m["theme"] != "dark" || m["size"] != float64(12) {
		t.Fatalf("unexpected model: %v", m)
	}
}

func TestEqualAcrossNumericTypes(t *testing.T) {
	a, _ := Normalize(5)
	b, _ := Normalize(float64(5))
	if !Equal(a, b) {
		t.Fatalf("5 and 5.0 differ after normalization")
	}
	c, _ := Normalize(map[string]int{"n": 1})
	d, _ := Normalize(map[string]float64{"n": 1})
	if !Equal(c, d) {
		t.Fatalf("equivalent maps differ after normalization")
	}
}

func TestNormalizeRejectsUnserializable(t *testing.T) {
	if _, err := Normalize(make(chan int)); err == nil {
		t.Fatalf("channel accepted")
	}
	if _, err := Normalize(math.NaN()); err == nil {
		t.Fatalf("NaN accepted")
	}
}

func TestNormalizeNil(t *testing.T) {
	v, err := Normalize(nil)
	if err != nil || v != nil {
		t.Fatalf("nil round-trip: %v %v", v, err)
	}
}

func TestRecordRoundTrip(t *testing.T) {
	b, err := encodeRecord("k", map[string]interface{}{"a": float64(1)})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	v, err := decodeRecord(b)
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if v.(map[string]interface{})["a"] != float64(1) {
		t.Fatalf("value lost: %v", v)
	}
}
