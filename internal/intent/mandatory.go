package intent

import "strings"

// mandatoryContextLimit bounds how much surrounding text is considered when
// deciding whether a toggle guards a strictly-necessary category. Category
// descriptions sit near the toggle; anything further away is noise.
const mandatoryContextLimit = 400

// Protected reports whether a control guards mandatory infrastructure and
// must never be toggled off. It scans the label plus nearby context for
// strictly-necessary wording, after blanking negated forms: a
// "Non-necessary cookies" toggle is exactly what the engine exists to turn
// off.
func Protected(label, context string) bool {
	hay := Normalize(label)
	if context != "" {
		hay += " " + Normalize(truncateRunes(context, mandatoryContextLimit))
	}
	for _, neg := range negatedMandatory {
		hay = strings.ReplaceAll(hay, neg, " ")
	}
	_, ok := containsAny(hay, mandatoryKeywords)
	return ok
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
