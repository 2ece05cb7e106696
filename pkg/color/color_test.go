package color

import (
	"encoding/json"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want RGBA
	}{
		{"#282c34", Opaque(0x28, 0x2c, 0x34)},
		{"282C34", Opaque(0x28, 0x2c, 0x34)},
		{"#fff", Opaque(0xff, 0xff, 0xff)},
		{"#00000080", RGBA{0, 0, 0, 0x80}},
	}
	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.in, err)
		}
		if got != tt.want {
			t.Errorf("Parse(%q) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{"", "#12", "#gggggg", "#000000zz"} {
		if _, err := Parse(in); err == nil {
			t.Errorf("Parse(%q) succeeded, want error", in)
		}
	}
}

func TestFormatting(t *testing.T) {
	c := RGBA{0x12, 0xab, 0xef, 0xff}
	if got := c.Hex(); got != "#12abef" {
		t.Errorf("Hex() = %q", got)
	}
	if got := c.String(); got != "#12abef" {
		t.Errorf("String() = %q", got)
	}
	c.A = 0x40
	if got := c.String(); got != "#12abef40" {
		t.Errorf("String() with alpha = %q", got)
	}
	if got := c.Opacity(); got != 0.251 {
		t.Errorf("Opacity() = %v, want 0.251", got)
	}
	if got := Opaque(0xac, 0xb2, 0xbe).XParseColor(); got != "rgb:acac/b2b2/bebe" {
		t.Errorf("XParseColor() = %q", got)
	}
}

func TestJSONText(t *testing.T) {
	var v struct {
		C RGBA `json:"c"`
	}
	if err := json.Unmarshal([]byte(`{"c":"#010203"}`), &v); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if v.C != Opaque(1, 2, 3) {
		t.Errorf("decoded %+v", v.C)
	}
}
