package parser

import (
	"sort"

	"recruit-reminder-backend/models"
)

type typeRule struct {
	Type     models.ScheduleType
	Keywords []string
}

// typeRules is evaluated top to bottom and the first hit wins. Round-specific
// interview words must stay above the row holding the bare word 面接.
var typeRules = []typeRule{
	{models.TypeFinalInterview, []string{"最終", "ファイナル"}},
	{models.TypeInterview3, []string{"三次", "3次"}},
	{models.TypeInterview2, []string{"二次", "2次"}},
	{models.TypeInterview1, []string{"一次", "1次"}},
	{models.TypeESSubmit, []string{"ES", "エントリーシート", "提出"}},
	{models.TypeSPITest, []string{"SPI", "Webテスト", "テスト", "試験"}},
	{models.TypeInterview1, []string{"初回", "面接"}},
	{models.TypeExplanation, []string{"説明会", "セミナー"}},
	{models.TypeInternship, []string{"インターンシップ", "インターン"}},
}

// triggerWords decide whether an inbound message is worth parsing at all.
var triggerWords = []string{"ES", "面接", "SPI", "説明会", "提出", "テスト"}

var relativeWords = []string{"明日", "あした", "今日", "きょう", "来週"}

var fillerWords = []string{"があります", "あります", "ですね", "です", "ます", "の", "が", "ね", "。", "、", ",", "!", "！"}

// vocabulary is every type keyword, longest first, so stripping インターンシップ
// never leaves シップ behind.
var vocabulary = buildVocabulary()

func buildVocabulary() []string {
	seen := map[string]bool{}
	var words []string
	for _, r := range typeRules {
		for _, k := range r.Keywords {
			if !seen[k] {
				seen[k] = true
				words = append(words, k)
			}
		}
	}
	sort.SliceStable(words, func(i, j int) bool {
		return len([]rune(words[i])) > len([]rune(words[j]))
	})
	return words
}
