package model

import (
	"reflect"
	"testing"
)

func TestEncodeWritingKeyDropsBlanks(t *testing.T) {
	parts := []Part{
		{Alternatives: []string{"to'g'ri", "", "javob"}},
		{Alternatives: []string{""}},
	}
	key, err := EncodeWritingKey(parts)
	if err != nil {
		t.Fatal(err)
	}
	if key != `[["to'g'ri","javob"],[]]` {
		t.Errorf("key = %s", key)
	}
}

func TestDecodeWritingKey(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []Part
	}{
		{
			name: "two parts",
			raw:  `[["a","b"],["c"]]`,
			want: []Part{{Alternatives: []string{"a", "b"}}, {Alternatives: []string{"c"}}},
		},
		{
			name: "empty inner array becomes editable blank",
			raw:  `[[]]`,
			want: []Part{{Alternatives: []string{""}}},
		},
		{
			name: "bare string element promoted to part",
			raw:  `["yolg'iz"]`,
			want: []Part{{Alternatives: []string{"yolg'iz"}}},
		},
		{
			name: "legacy plain string key",
			raw:  "eski javob",
			want: []Part{{Alternatives: []string{"eski javob"}}},
		},
		{
			name: "empty array key",
			raw:  `[]`,
			want: []Part{{Alternatives: []string{""}}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := DecodeWritingKey(tt.raw); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("DecodeWritingKey(%q) = %+v, want %+v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	parts := []Part{
		{Alternatives: []string{"bir", "ikki"}},
		{Alternatives: []string{"uch"}},
	}
	key, err := EncodeWritingKey(parts)
	if err != nil {
		t.Fatal(err)
	}
	if got := DecodeWritingKey(key); !reflect.DeepEqual(got, parts) {
		t.Errorf("round trip = %+v", got)
	}
}

func TestKeyPartCount(t *testing.T) {
	two := `[["a"],["b"]]`
	plain := "not json"
	empty := ""

	tests := []struct {
		raw  *string
		want int
	}{
		{nil, 0},
		{&empty, 0},
		{&plain, 0},
		{&two, 2},
	}
	for _, tt := range tests {
		if got := KeyPartCount(tt.raw); got != tt.want {
			t.Errorf("KeyPartCount(%v) = %d, want %d", tt.raw, got, tt.want)
		}
	}
}

func TestKindValid(t *testing.T) {
	for _, k := range []Kind{KindChoice, KindWriting, KindManual} {
		if !k.Valid() {
			t.Errorf("%s should be valid", k)
		}
	}
	if Kind("essay").Valid() {
		t.Error("unknown kind accepted")
	}
}
