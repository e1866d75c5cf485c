// Package keyword extracts keywords from task titles and classifies them into categories.
package keyword

import (
	"strings"
	"unicode"

	"github.com/rcliao/nudge/internal/model"
)

// MinLength is the shortest token kept as a keyword, exclusive.
const MinLength = 2

// Rule maps a keyword set to a category.
type Rule struct {
	Keywords []string
	Category model.Category
}

// Rules are evaluated top-down; the first rule with a matching keyword wins.
var Rules = []Rule{
	{Keywords: []string{"email", "emails", "inbox", "reply", "respond", "newsletter"}, Category: model.CategoryEmail},
	{Keywords: []string{"meeting", "meet", "call", "standup", "sync", "interview", "appointment"}, Category: model.CategoryMeeting},
	{Keywords: []string{"write", "code", "research", "design", "develop", "analyze", "study", "report", "build", "draft"}, Category: model.CategoryDeepWork},
	{Keywords: []string{"pay", "bill", "bills", "invoice", "taxes", "form", "file", "schedule", "book", "renew", "budget"}, Category: model.CategoryAdmin},
	{Keywords: []string{"paint", "draw", "sketch", "music", "compose", "brainstorm", "photo", "video", "craft"}, Category: model.CategoryCreative},
	{Keywords: []string{"workout", "run", "gym", "yoga", "walk", "exercise", "swim", "bike", "stretch"}, Category: model.CategoryExercise},
	{Keywords: []string{"clean", "laundry", "groceries", "cook", "dishes", "family", "doctor", "dentist", "shopping"}, Category: model.CategoryPersonal},
}

// Extract returns the distinct lower-cased alphanumeric tokens of title longer
// than MinLength, in order of first appearance.
func Extract(title string) []string {
	fields := strings.FieldsFunc(strings.ToLower(title), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	var out []string
	seen := map[string]bool{}
	for _, f := range fields {
		if len(f) <= MinLength || seen[f] {
			continue
		}
		seen[f] = true
		out = append(out, f)
	}
	return out
}

// Classify returns the category of the first rule that matches any keyword.
func Classify(keywords []string) model.Category {
	for _, r := range Rules {
		if ContainsAny(keywords, r.Keywords...) {
			return r.Category
		}
	}
	return model.CategoryOther
}

// ClassifyTitle extracts keywords from title and classifies them.
func ClassifyTitle(title string) ([]string, model.Category) {
	kw := Extract(title)
	return kw, Classify(kw)
}

// ContainsAny reports whether keywords holds any of the candidates.
func ContainsAny(keywords []string, candidates ...string) bool {
	for _, k := range keywords {
		for _, c := range candidates {
			if k == c {
				return true
			}
		}
	}
	return false
}

// Overlap counts the keywords present in both a and b.
func Overlap(a, b []string) int {
	set := make(map[string]bool, len(a))
	for _, k := range a {
		set[k] = true
	}
	n := 0
	for _, k := range b {
		if set[k] {
			n++
			delete(set, k)
		}
	}
	return n
}
