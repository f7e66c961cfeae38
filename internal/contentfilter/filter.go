// Package contentfilter не пропускает в чат контактные данные,
// чтобы сделки не уходили с платформы.
package contentfilter

import (
	"regexp"
	"strings"
)

// Rule правило, по которому отклонено сообщение
type Rule string

const (
	RuleDigitRun    Rule = "digit_run"
	RulePhonePrefix Rule = "phone_prefix"
	RuleEmail       Rule = "email"
	RuleDomain      Rule = "domain"
)

var (
	digitRun = regexp.MustCompile(`\d{3,}`)

	// Мобильный номер: +62, 62 или 0, затем 8 и ещё не меньше семи цифр.
	// Цифры могут разделяться пробелом, точкой или дефисом, время вроде 08.30 не попадает.
	phonePrefix = regexp.MustCompile(`(?:\+62|\b62|\b0)[\s.\-]*8(?:[\s.\-]*\d){7,}`)

	domainSuffix = regexp.MustCompile(`(?i)\.(?:com|net|org|id|co|io|me|info|biz|xyz|ly|gg)\b`)
)

// Check проверяет текст сообщения. ok = true, если текст можно сохранять.
func Check(content string) (Rule, bool) {
	switch {
	case strings.Contains(content, "@"):
		return RuleEmail, false
	case phonePrefix.MatchString(content):
		return RulePhonePrefix, false
	case digitRun.MatchString(content):
		return RuleDigitRun, false
	case domainSuffix.MatchString(content):
		return RuleDomain, false
	default:
		return "", true
	}
}
