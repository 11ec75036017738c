package field

import (
	"regexp"
	"strings"
)

var spaceRunRe = regexp.MustCompile(`\s+`)

// NormalizeKey приводит ключ к виду "dna_pass": нижний регистр,
// серии пробельных символов заменяются одним "_". Края обрезаются.
func NormalizeKey(raw string) string {
	s := strings.ToLower(strings.TrimSpace(raw))
	return spaceRunRe.ReplaceAllString(s, "_")
}
