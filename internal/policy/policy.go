// Package policy encodes the national exam-sheet rules that govern how
// many questions a test of a given subject may hold and what variant
// and point value each appended position takes.
package policy

import "github.com/titulhq/titul-gateway/internal/model"

// Subjects offered by the platform, as spelled in the authoring UI.
var Subjects = []string{
	"Matematika",
	"Tarix",
	"Ona tili va adabiyot",
	"Kimyo",
	"Biologiya",
	"Fizika",
	"Geografiya",
	"Rus tili",
	"Qoraqalpoq tili",
}

// SubType values for Kimyo/Biologiya two-round tests.
const (
	SubTypeTur1 = "tur1"
	SubTypeTur2 = "tur2"
)

// ChoiceBlockSize is the fixed leading block of choice questions every
// test starts from.
const ChoiceBlockSize = 35

var (
	scienceSubjects  = map[string]bool{"Matematika": true, "Fizika": true, "Geografiya": true, "Tarix": true}
	languageSubjects = map[string]bool{"Ona tili va adabiyot": true, "Rus tili": true, "Qoraqalpoq tili": true}
	chemBioSubjects  = map[string]bool{"Kimyo": true, "Biologiya": true}
)

// HasSubTypes reports whether the subject carries the tur1/tur2 split.
func HasSubTypes(subject string) bool {
	return chemBioSubjects[subject]
}

// Ceiling returns the highest question number a test of this subject
// may reach. Kimyo/Biologiya stop at 40 (tur1) or 43 (tur2); everything
// else runs to 45.
func Ceiling(subject, subType string) int {
	if chemBioSubjects[subject] {
		if subType == SubTypeTur2 {
			return 43
		}
		return 40
	}
	return 45
}

// AppendedSlot returns the variant and point value an appended question
// at the given number takes:
//   - science subjects: every position is Writing worth 2.0
//   - language subjects: position 45 is Manual worth 10, the rest Writing 2.0
//   - Kimyo/Biologiya under tur2: positions ≥41 are Manual (Kimyo 25,
//     otherwise 30 at 41, 35 at 42, 10 beyond)
//   - anything else: Writing worth 2.0
func AppendedSlot(subject, subType string, number int) (model.Kind, float64) {
	switch {
	case scienceSubjects[subject]:
		return model.KindWriting, 2.0
	case languageSubjects[subject]:
		if number == 45 {
			return model.KindManual, 10
		}
		return model.KindWriting, 2.0
	case chemBioSubjects[subject]:
		if subType == SubTypeTur2 && number >= 41 {
			if subject == "Kimyo" {
				return model.KindManual, 25
			}
			switch number {
			case 41:
				return model.KindManual, 30
			case 42:
				return model.KindManual, 35
			}
			return model.KindManual, 10
		}
		return model.KindWriting, 2.0
	}
	return model.KindWriting, 2.0
}
