package policy

import (
	"testing"

	"github.com/titulhq/titul-gateway/internal/model"
)

func TestCeiling(t *testing.T) {
	tests := []struct {
		subject string
		subType string
		want    int
	}{
		{"Matematika", "", 45},
		{"Ona tili va adabiyot", "", 45},
		{"Kimyo", SubTypeTur1, 40},
		{"Kimyo", SubTypeTur2, 43},
		{"Biologiya", SubTypeTur1, 40},
		{"Biologiya", SubTypeTur2, 43},
		{"Kimyo", "", 40},
	}
	for _, tt := range tests {
		if got := Ceiling(tt.subject, tt.subType); got != tt.want {
			t.Errorf("Ceiling(%s, %s) = %d, want %d", tt.subject, tt.subType, got, tt.want)
		}
	}
}

func TestHasSubTypes(t *testing.T) {
	if !HasSubTypes("Kimyo") || !HasSubTypes("Biologiya") {
		t.Error("Kimyo/Biologiya should carry sub types")
	}
	if HasSubTypes("Matematika") || HasSubTypes("Rus tili") {
		t.Error("other subjects should not carry sub types")
	}
}

func TestAppendedSlot(t *testing.T) {
	tests := []struct {
		subject string
		subType string
		number  int
		kind    model.Kind
		points  float64
	}{
		{"Matematika", "", 36, model.KindWriting, 2},
		{"Matematika", "", 45, model.KindWriting, 2},
		{"Fizika", "", 40, model.KindWriting, 2},
		{"Ona tili va adabiyot", "", 44, model.KindWriting, 2},
		{"Ona tili va adabiyot", "", 45, model.KindManual, 10},
		{"Rus tili", "", 45, model.KindManual, 10},
		{"Qoraqalpoq tili", "", 45, model.KindManual, 10},
		{"Kimyo", SubTypeTur1, 38, model.KindWriting, 2},
		{"Kimyo", SubTypeTur2, 40, model.KindWriting, 2},
		{"Kimyo", SubTypeTur2, 41, model.KindManual, 25},
		{"Kimyo", SubTypeTur2, 43, model.KindManual, 25},
		{"Biologiya", SubTypeTur2, 41, model.KindManual, 30},
		{"Biologiya", SubTypeTur2, 42, model.KindManual, 35},
		{"Biologiya", SubTypeTur2, 43, model.KindManual, 10},
	}
	for _, tt := range tests {
		kind, points := AppendedSlot(tt.subject, tt.subType, tt.number)
		if kind != tt.kind || points != tt.points {
			t.Errorf("AppendedSlot(%s, %s, %d) = %s/%v, want %s/%v",
				tt.subject, tt.subType, tt.number, kind, points, tt.kind, tt.points)
		}
	}
}
