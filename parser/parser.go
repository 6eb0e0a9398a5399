// Package parser turns free-form chat text such as "3/15 トヨタ ES提出" into a
// schedule. It never touches storage and never returns errors: text that
// cannot be understood simply yields no result.
package parser

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"recruit-reminder-backend/models"
	"recruit-reminder-backend/utils"

	"github.com/google/uuid"
	"golang.org/x/text/width"
)

// UnknownCompany replaces an empty company name after keyword stripping.
const UnknownCompany = "未定の会社"

// rolloverWindow is how far in the past a month/day date may fall before it
// is read as next year's date.
const rolloverWindow = 7

var (
	// month/day must not be glued to a preceding digit or separator, otherwise
	// "2025/03/15" would be read as month 25.
	monthDayPattern = regexp.MustCompile(`(?:^|[^\d/\-])(\d{1,2})[/月](\d{1,2})日?`)
	fullDatePattern = regexp.MustCompile(`(\d{4})[/\-](\d{1,2})[/\-](\d{1,2})`)

	stripFullDate = regexp.MustCompile(`\d{4}[/\-]\d{1,2}[/\-]\d{1,2}`)
	stripMonthDay = regexp.MustCompile(`\d{1,2}[/月]\d{1,2}日?`)
)

// Extraction is the structured result of a successful parse.
type Extraction struct {
	Date        time.Time
	Type        models.ScheduleType
	TypeName    string
	CompanyName string
	// TypeMatched is false when Type fell back to OTHER.
	TypeMatched bool
}

// DateString renders Date as YYYY-MM-DD.
func (e Extraction) DateString() string {
	return e.Date.Format(models.DateLayout)
}

// Schedule builds an unsaved schedule owned by userID.
func (e Extraction) Schedule(userID uuid.UUID) models.Schedule {
	return models.Schedule{
		UserID:       userID,
		Type:         e.Type,
		CompanyName:  e.CompanyName,
		ScheduleDate: e.Date,
	}
}

// Parser extracts schedules from chat text relative to an injectable clock.
type Parser struct {
	now func() time.Time
}

// New returns a parser resolving relative dates against now. A nil now uses
// the wall clock.
func New(now func() time.Time) *Parser {
	if now == nil {
		now = time.Now
	}
	return &Parser{now: now}
}

// Parse returns the schedule described by text. It fails when no date can be
// resolved or when nothing in the text names a schedule type.
func (p *Parser) Parse(text string) (*Extraction, bool) {
	e, ok := p.Extract(text)
	if !ok || !e.TypeMatched {
		return nil, false
	}
	return e, true
}

// Extract is the lenient form of Parse: an unrecognised type becomes OTHER
// instead of failing. Only a missing date fails.
func (p *Parser) Extract(text string) (*Extraction, bool) {
	text = normalize(text)
	date, ok := p.extractDate(text)
	if !ok {
		return nil, false
	}
	typ, matched := ClassifyType(text)
	return &Extraction{
		Date:        date,
		Type:        typ,
		TypeName:    typ.DisplayName(),
		CompanyName: ExtractCompanyName(text),
		TypeMatched: matched,
	}, true
}

// LooksLikeSchedule reports whether an inbound message mentions anything the
// parser should try to register.
func LooksLikeSchedule(text string) bool {
	return containsAny(normalize(text), triggerWords)
}

// normalize folds full-width digits, Latin letters and punctuation to their
// narrow forms so "３／１５ ＥＳ" reads like "3/15 ES".
func normalize(text string) string {
	return width.Fold.String(text)
}

func (p *Parser) extractDate(text string) (time.Time, bool) {
	now := p.now()
	today := utils.BeginningOfDay(now)

	if m := monthDayPattern.FindStringSubmatch(text); m != nil {
		month, _ := strconv.Atoi(m[1])
		day, _ := strconv.Atoi(m[2])
		if d, ok := resolveMonthDay(today, month, day); ok {
			return d, true
		}
	}

	if m := fullDatePattern.FindStringSubmatch(text); m != nil {
		year, _ := strconv.Atoi(m[1])
		month, _ := strconv.Atoi(m[2])
		day, _ := strconv.Atoi(m[3])
		if d, ok := calendarDate(year, month, day, now.Location()); ok {
			return d, true
		}
	}

	switch {
	case strings.Contains(text, "明日") || strings.Contains(text, "あした"):
		return today.AddDate(0, 0, 1), true
	case strings.Contains(text, "今日") || strings.Contains(text, "きょう"):
		return today, true
	case strings.Contains(text, "来週"):
		// flat +7 days, not resolved to a weekday
		return today.AddDate(0, 0, 7), true
	}
	return time.Time{}, false
}

// resolveMonthDay places a month/day in the current year, or in the next one
// when it lies more than rolloverWindow days before today.
func resolveMonthDay(today time.Time, month, day int) (time.Time, bool) {
	loc := today.Location()
	d, ok := calendarDate(today.Year(), month, day, loc)
	if !ok {
		// 2/29 outside a leap year
		return calendarDate(today.Year()+1, month, day, loc)
	}
	// calendar dates, not timestamps: exactly seven days ago stays this year
	if d.Before(today.AddDate(0, 0, -rolloverWindow)) {
		if next, ok := calendarDate(today.Year()+1, month, day, loc); ok {
			return next, true
		}
	}
	return d, true
}

// calendarDate rejects dates time.Date would normalise, such as 2/30.
func calendarDate(year, month, day int, loc *time.Location) (time.Time, bool) {
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, loc)
	if d.Month() != time.Month(month) || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

// ClassifyType applies the ordered keyword rules. The second result is false
// when no rule matched and the type defaulted to OTHER.
func ClassifyType(text string) (models.ScheduleType, bool) {
	for _, r := range typeRules {
		if containsAny(text, r.Keywords) {
			return r.Type, true
		}
	}
	return models.TypeOther, false
}

// ExtractCompanyName strips keywords, dates and filler from text and returns
// what is left, or UnknownCompany when nothing is.
func ExtractCompanyName(text string) string {
	cleaned := text
	for _, k := range vocabulary {
		cleaned = strings.ReplaceAll(cleaned, k, " ")
	}
	cleaned = stripFullDate.ReplaceAllString(cleaned, " ")
	cleaned = stripMonthDay.ReplaceAllString(cleaned, " ")
	for _, w := range relativeWords {
		cleaned = strings.ReplaceAll(cleaned, w, " ")
	}
	for _, w := range fillerWords {
		cleaned = strings.ReplaceAll(cleaned, w, " ")
	}

	company := strings.Join(strings.Fields(cleaned), " ")
	if company == "" {
		return UnknownCompany
	}
	return company
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
