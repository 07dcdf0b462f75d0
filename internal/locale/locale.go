// internal/locale/locale.go
package locale

import (
	"regexp"
	"strings"
)

// Priority is the business ranking of audience locales: region-specific
// languages first, the global catch-all (en) last. Anything not listed
// sorts after everything that is.
var Priority = []string{
	"ru",
	"uk",
	"be",
	"kk",
	"uz",
	"ky",
	"tg",
	"hy",
	"az",
	"ka",
	"ro",
	"zh-hans",
	"zh-hant",
	"ja",
	"ko",
	"id",
	"ms",
	"th",
	"vi",
	"hi",
	"bn",
	"ur",
	"en",
}

var rankByLocale = func() map[string]int {
	m := make(map[string]int, len(Priority))
	for i, code := range Priority {
		m[code] = i
	}
	return m
}()

// Rank returns the priority position of a locale code. Unlisted locales get
// a rank strictly greater than every listed one. Total: no input errors.
func Rank(code string) int {
	if r, ok := rankByLocale[code]; ok {
		return r
	}
	return len(Priority) + 1
}

var localeRe = regexp.MustCompile(`^[a-z]{2}(-([A-Z]{2}|[a-z]{4}))?$`)

// Normalize lowercases the language part and canonicalizes the subtag:
// 2-letter regions go uppercase ("PT-br" -> "pt-BR"), 4-letter scripts go
// lowercase ("ZH-Hans" -> "zh-hans", matching the Priority entries).
func Normalize(value string) string {
	value = strings.TrimSpace(value)
	if value == "" {
		return ""
	}
	if language, subtag, ok := strings.Cut(value, "-"); ok {
		if len(subtag) == 4 {
			return strings.ToLower(language) + "-" + strings.ToLower(subtag)
		}
		return strings.ToLower(language) + "-" + strings.ToUpper(subtag)
	}
	return strings.ToLower(value)
}

// IsValid reports whether a normalized locale looks like "xx", "xx-YY" or
// "xx-ssss" (script subtag, as in zh-hans/zh-hant).
func IsValid(value string) bool {
	return localeRe.MatchString(value)
}
