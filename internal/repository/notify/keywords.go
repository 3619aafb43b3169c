package notify

import "strings"

// MaxKeywordRunes bounds each template keyword slot.
const MaxKeywordRunes = 20

// ExtractKeywords picks the two template keyword values from a summary.
// Blank lines and lines starting with "---" or "*" are skipped; the first
// remaining line becomes keyword1 and the next one keyword2 (a "###" header
// loses its marker). Both are cut to MaxKeywordRunes characters. Empty
// strings are returned when the summary has too few usable lines.
func ExtractKeywords(summary string) (string, string) {
	var keyword1, keyword2 string

	for _, line := range strings.Split(summary, "\n") {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" || strings.HasPrefix(line, "---") || strings.HasPrefix(line, "*") {
			continue
		}

		switch {
		case keyword1 == "":
			keyword1 = truncateRunes(line, MaxKeywordRunes)
		case strings.HasPrefix(line, "###"):
			keyword2 = truncateRunes(strings.TrimSpace(strings.ReplaceAll(line, "###", "")), MaxKeywordRunes)
		default:
			keyword2 = truncateRunes(line, MaxKeywordRunes)
		}

		if keyword2 != "" {
			break
		}
	}

	return keyword1, keyword2
}
