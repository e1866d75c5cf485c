package strategy

import (
	"math/rand"

	"github.com/rcliao/nudge/internal/keyword"
)

type stepRule struct {
	keywords []string
	step     string
}

// tinySteps are checked in order; the first match wins.
var tinySteps = []stepRule{
	{[]string{"write", "report", "document", "draft", "essay"}, "Open a blank document and type one sentence"},
	{[]string{"email", "emails", "inbox"}, "Open your inbox and handle just the top message"},
	{[]string{"clean", "tidy", "laundry", "dishes"}, "Set a 2-minute timer and put five things away"},
	{[]string{"call", "phone"}, "Pull up the number and put the phone in front of you"},
	{[]string{"workout", "gym", "run", "exercise", "yoga"}, "Put on your workout clothes"},
	{[]string{"read", "study", "review"}, "Open it and read the first paragraph"},
	{[]string{"plan", "project"}, "Write the very next action on a sticky note"},
	{[]string{"pay", "bill", "bills", "taxes", "invoice"}, "Open the payment page"},
	{[]string{"meeting", "presentation", "slides"}, "Write down the one thing it has to get across"},
	{[]string{"code", "fix", "bug", "build"}, "Open the file where the change goes"},
}

var genericSteps = []string{
	"Set a 2-minute timer and just begin",
	"Clear a small space to work in",
	"Write down what done looks like",
	"Gather the one thing you need to start",
	"Take three deep breaths and do the first tiny thing",
}

// TinyFirstStep suggests the smallest possible action for the keywords.
func TinyFirstStep(kw []string, rng *rand.Rand) string {
	for _, r := range tinySteps {
		if keyword.ContainsAny(kw, r.keywords...) {
			return r.step
		}
	}
	return genericSteps[rng.Intn(len(genericSteps))]
}

var breakdownTriggers = []string{
	"report", "document", "email", "emails", "inbox", "clean", "tidy", "organize",
	"project", "plan", "meeting", "presentation", "prepare", "prep", "research", "write",
}

type template struct {
	keywords []string
	steps    []string
}

// templates are checked in order; the first match wins.
var templates = []template{
	{[]string{"report", "document", "documentation", "proposal"}, []string{
		"Outline the main sections",
		"Gather the notes and data you need",
		"Draft one section at a time",
		"Review and edit",
		"Format and send",
	}},
	{[]string{"email", "emails", "inbox"}, []string{
		"Archive anything you don't need",
		"Reply to anything that takes under 2 minutes",
		"Flag the ones that need real thought",
		"Block time for the flagged emails",
	}},
	{[]string{"clean", "tidy", "organize"}, []string{
		"Clear the surfaces",
		"Put away anything out of place",
		"Wipe everything down",
		"Take out the trash",
	}},
	{[]string{"project", "plan"}, []string{
		"Define what done looks like",
		"List the major pieces",
		"Pick the first piece",
		"Schedule time for it",
	}},
	{[]string{"meeting", "presentation", "prepare", "prep"}, []string{
		"Write down the goal",
		"List your talking points",
		"Gather the materials",
		"Review the agenda",
	}},
}

var genericTemplate = []string{
	"Decide what done looks like",
	"List every step you can think of",
	"Do the first step",
	"Take a short break",
	"Do the next step",
}

// BreakDown reports whether the task is worth splitting and, if so, suggests steps.
func BreakDown(kw []string, minutes int) (bool, []string) {
	if minutes < BreakdownMinutes && !keyword.ContainsAny(kw, breakdownTriggers...) {
		return false, nil
	}
	for _, t := range templates {
		if keyword.ContainsAny(kw, t.keywords...) {
			return true, append([]string(nil), t.steps...)
		}
	}
	return true, append([]string(nil), genericTemplate...)
}
