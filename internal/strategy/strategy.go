// Package strategy picks a way to get started on a task given its size, the
// user's energy and the time of day.
package strategy

import (
	"math/rand"
	"sort"
	"time"

	"github.com/rcliao/nudge/internal/keyword"
	"github.com/rcliao/nudge/internal/model"
)

// All lists the strategies in declaration order. Equal scores keep this order.
var All = []model.Strategy{
	{ID: model.StrategyTinyFirstStep, Name: "Tiny First Step", Description: "Do the smallest possible piece to break the inertia."},
	{ID: model.StrategySprint15, Name: "15-Minute Sprint", Description: "Work flat out for fifteen minutes, then reassess."},
	{ID: model.StrategyEatTheFrog, Name: "Eat the Frog", Description: "Tackle the hardest part first while you are fresh."},
	{ID: model.StrategyQuickWinsFirst, Name: "Quick Wins First", Description: "Knock out easy pieces to build momentum."},
	{ID: model.StrategyBreakItDown, Name: "Break It Down", Description: "Split the task into concrete steps before starting."},
	{ID: model.StrategyBodyDouble, Name: "Body Double", Description: "Work alongside someone, in person or on a call."},
	{ID: model.StrategyTimeBox, Name: "Time Box", Description: "Give it a fixed block of time and stop when it ends."},
	{ID: model.StrategyJustStart, Name: "Just Start", Description: "Skip the planning and dive in."},
}

// Lookup returns the strategy with the given id.
func Lookup(id model.StrategyID) (model.Strategy, bool) {
	for _, s := range All {
		if s.ID == id {
			return s, true
		}
	}
	return model.Strategy{}, false
}

const (
	ShortMinutes     = 15
	LongMinutes      = 45
	BreakdownMinutes = 30

	// MaxAlternatives is how many runner-up strategies an analysis lists.
	MaxAlternatives = 3
)

var openEndedKeywords = []string{"finish", "complete"}

// Input is everything the selector looks at for one task.
type Input struct {
	Title    string
	Priority model.Priority
	DueDate  *time.Time
	Estimate model.DurationEstimate
	Energy   model.EnergyLevel
	Now      time.Time
	// Attempts feed the learned bonus; may be empty.
	Attempts []model.StrategyAttempt
}

type factors struct {
	energy       model.EnergyLevel
	short        bool
	long         bool
	highPriority bool
	overdue      bool
	openEnded    bool
	hour         int
}

func factorsFor(in Input, kw []string) factors {
	overdue := in.DueDate != nil && in.DueDate.Before(in.Now)
	return factors{
		energy:       in.Energy,
		short:        in.Estimate.Minutes <= ShortMinutes,
		long:         in.Estimate.Minutes >= LongMinutes,
		highPriority: in.Priority == model.PriorityHigh,
		overdue:      overdue,
		openEnded:    keyword.ContainsAny(kw, openEndedKeywords...),
		hour:         in.Now.Hour(),
	}
}

// Scored is a strategy with its score for one task.
type Scored struct {
	Strategy model.Strategy `json:"strategy"`
	Score    int            `json:"score"`
}

func score(id model.StrategyID, f factors) int {
	s := 0
	add := func(cond bool, pts int) {
		if cond {
			s += pts
		}
	}
	low, medium, high := f.energy == model.EnergyLow, f.energy == model.EnergyMedium, f.energy == model.EnergyHigh

	switch id {
	case model.StrategyTinyFirstStep:
		add(low, 30)
		add(medium, 10)
		add(f.long, 20)
		add(f.openEnded, 10)
	case model.StrategySprint15:
		add(medium, 20)
		add(low, 15)
		add(f.long, 15)
		add(f.overdue, 10)
	case model.StrategyEatTheFrog:
		add(high, 35)
		add(f.highPriority, 20)
		add(f.long, 10)
		add(f.hour < 12, 15)
	case model.StrategyQuickWinsFirst:
		add(f.short, 30)
		add(low, 15)
		add(f.hour >= 13 && f.hour < 16, 10)
	case model.StrategyBreakItDown:
		add(f.long, 30)
		add(f.openEnded, 15)
		add(medium, 10)
	case model.StrategyBodyDouble:
		add(low, 20)
		add(f.overdue, 15)
		add(f.openEnded, 10)
	case model.StrategyTimeBox:
		add(medium, 20)
		add(f.openEnded, 20)
		add(f.long, 10)
		add(f.hour >= 18, 10)
	case model.StrategyJustStart:
		add(f.short, 20)
		add(f.overdue, 20)
		add(high, 10)
	}
	return s
}

// Rank scores every strategy for the task, best first. Ties keep declaration order.
func Rank(in Input) []Scored {
	f := factorsFor(in, keyword.Extract(in.Title))
	bonus := learnedBonus(in.Attempts)

	ranked := make([]Scored, len(All))
	for i, st := range All {
		ranked[i] = Scored{Strategy: st, Score: score(st.ID, f) + bonus[st.ID]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}

const (
	minAttemptsForBonus = 3
	successBonus        = 10
	failurePenalty      = -10
)

// learnedBonus rewards strategies that have worked for this user and
// penalizes ones that have not.
func learnedBonus(attempts []model.StrategyAttempt) map[model.StrategyID]int {
	type tally struct{ tries, wins int }
	counts := map[model.StrategyID]*tally{}
	for _, a := range attempts {
		t, ok := counts[a.Strategy]
		if !ok {
			t = &tally{}
			counts[a.Strategy] = t
		}
		t.tries++
		if a.Succeeded {
			t.wins++
		}
	}

	bonus := map[model.StrategyID]int{}
	for id, t := range counts {
		if t.tries < minAttemptsForBonus {
			continue
		}
		rate := float64(t.wins) / float64(t.tries)
		switch {
		case rate >= 0.7:
			bonus[id] = successBonus
		case rate <= 0.3:
			bonus[id] = failurePenalty
		}
	}
	return bonus
}

// Selector produces task attack analyses. The random source only picks the
// generic tiny first step when no keyword matches.
type Selector struct {
	rng *rand.Rand
}

// NewSelector creates a selector. A nil rng is seeded from the clock.
func NewSelector(rng *rand.Rand) *Selector {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Selector{rng: rng}
}

// Analyze builds the full recommendation for one task.
func (s *Selector) Analyze(in Input) model.TaskAttackAnalysis {
	kw := keyword.Extract(in.Title)
	ranked := Rank(in)

	a := model.TaskAttackAnalysis{
		Recommended:   ranked[0].Strategy,
		TinyFirstStep: TinyFirstStep(kw, s.rng),
		Estimate:      in.Estimate,
		EnergyMatch:   MatchEnergy(in.Energy, in.Estimate.Minutes, in.Priority),
		Timing:        Timing(in.Energy, in.DueDate != nil && in.DueDate.Before(in.Now), in.Now.Hour()),
	}
	for _, r := range ranked[1:] {
		if len(a.Alternatives) == MaxAlternatives {
			break
		}
		a.Alternatives = append(a.Alternatives, r.Strategy)
	}
	a.CanBreakDown, a.SubSteps = BreakDown(kw, in.Estimate.Minutes)
	return a
}
