// models/schedule_type.go
package models

// ScheduleType is the closed set of appointment categories.
type ScheduleType string

const (
	TypeESSubmit       ScheduleType = "ES_SUBMIT"
	TypeSPITest        ScheduleType = "SPI_TEST"
	TypeInterview1     ScheduleType = "INTERVIEW_1"
	TypeInterview2     ScheduleType = "INTERVIEW_2"
	TypeInterview3     ScheduleType = "INTERVIEW_3"
	TypeFinalInterview ScheduleType = "FINAL_INTERVIEW"
	TypeExplanation    ScheduleType = "EXPLANATION"
	TypeInternship     ScheduleType = "INTERNSHIP"
	TypeOther          ScheduleType = "OTHER"
)

type typeInfo struct {
	name  string
	glyph string
}

var typeTable = map[ScheduleType]typeInfo{
	TypeESSubmit:       {"ES提出", "📝"},
	TypeSPITest:        {"SPI試験", "✏️"},
	TypeInterview1:     {"一次面接", "👔"},
	TypeInterview2:     {"二次面接", "💼"},
	TypeInterview3:     {"三次面接", "🎯"},
	TypeFinalInterview: {"最終面接", "🏆"},
	TypeExplanation:    {"会社説明会", "🏢"},
	TypeInternship:     {"インターン", "📚"},
	TypeOther:          {"その他", "📅"},
}

// AllScheduleTypes lists every type in display order.
var AllScheduleTypes = []ScheduleType{
	TypeESSubmit, TypeSPITest, TypeInterview1, TypeInterview2, TypeInterview3,
	TypeFinalInterview, TypeExplanation, TypeInternship, TypeOther,
}

// ParseScheduleType maps a code to its type. Unknown codes become TypeOther.
func ParseScheduleType(code string) ScheduleType {
	t := ScheduleType(code)
	if _, ok := typeTable[t]; ok {
		return t
	}
	return TypeOther
}

func (t ScheduleType) Valid() bool {
	_, ok := typeTable[t]
	return ok
}

// DisplayName returns the Japanese label shown to users.
func (t ScheduleType) DisplayName() string {
	if info, ok := typeTable[t]; ok {
		return info.name
	}
	return typeTable[TypeOther].name
}

// Glyph returns the emoji used in reminder headers.
func (t ScheduleType) Glyph() string {
	if info, ok := typeTable[t]; ok {
		return info.glyph
	}
	return typeTable[TypeOther].glyph
}

func (t ScheduleType) String() string {
	return string(t)
}
