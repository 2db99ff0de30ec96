package questiongen

import (
	"fmt"
	"strings"

	"github.com/abhisek/calcmaster/internal/symbolic"
)

// Topic names a question family.
type Topic string

const (
	TopicDerivatives    Topic = "derivatives"
	TopicIntegrals      Topic = "integrals"
	TopicLimits         Topic = "limits"
	TopicCriticalPoints Topic = "criticalpoints"

	// TopicGeneral labels a mixed quiz. No generator produces it.
	TopicGeneral Topic = "general"
)

// Topics lists the generator topics in display order.
var Topics = []Topic{TopicDerivatives, TopicIntegrals, TopicLimits, TopicCriticalPoints}

// ParseTopic accepts a topic name, tolerating the dashed and underscored
// spellings of critical points.
func ParseTopic(s string) (Topic, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "derivatives":
		return TopicDerivatives, nil
	case "integrals":
		return TopicIntegrals, nil
	case "limits":
		return TopicLimits, nil
	case "criticalpoints", "critical-points", "critical_points":
		return TopicCriticalPoints, nil
	case "general":
		return TopicGeneral, nil
	}
	return "", fmt.Errorf("unknown topic %q", s)
}

// Difficulty is a pool tier, or Mixed for the union of all tiers.
type Difficulty string

const (
	Easy   Difficulty = "easy"
	Medium Difficulty = "medium"
	Hard   Difficulty = "hard"
	Mixed  Difficulty = "mixed"
)

// ParseDifficulty maps a request value to a Difficulty. Unknown values
// are an error; callers that want the lenient behaviour fall back to
// Mixed themselves.
func ParseDifficulty(s string) (Difficulty, error) {
	switch d := Difficulty(strings.ToLower(strings.TrimSpace(s))); d {
	case Easy, Medium, Hard, Mixed:
		return d, nil
	}
	return "", fmt.Errorf("unknown difficulty %q", s)
}

var difficultyLabels = map[Difficulty]string{
	Easy:   "Easy 🟢",
	Medium: "Medium 🟡",
	Hard:   "Hard 🔴",
}

// Label returns the display label, e.g. "Medium 🟡".
func (d Difficulty) Label() string {
	if l, ok := difficultyLabels[d]; ok {
		return l
	}
	return "Mixed"
}

// Question is a multiple-choice question ready to send to a client.
type Question struct {
	// ID is the position of the question within its batch, starting at 1.
	ID int `json:"id"`

	// Text is the prompt. Math is wrapped in \( ... \) delimiters.
	Text string `json:"question" validate:"required,max=1000"`

	// Options holds exactly four distinct choices, one of them Correct.
	Options []string `json:"options" validate:"len=4,unique,dive,required"`

	// Correct is the text of the correct option.
	Correct string `json:"correct" validate:"required"`

	// Explanation is the worked solution shown after answering.
	Explanation string `json:"explanation" validate:"required,max=2000"`

	Topic      Topic      `json:"-"`
	Difficulty Difficulty `json:"-"`
}

// PoolEntry is one expression a generator may ask about.
type PoolEntry struct {
	Expr symbolic.Expr

	// Point is the limit point. Only limits use it.
	Point symbolic.Point

	// Expected is the answer used when the evaluator cannot produce one.
	// Limits and critical points set it.
	Expected string

	// Method selects the explanation template.
	Method string

	// Slip is a typical wrong antiderivative for this integrand. Optional.
	Slip symbolic.Expr

	// Tier is the pool tier the entry belongs to.
	Tier Difficulty
}

// Pool holds the entries of one topic grouped by tier.
type Pool struct {
	tiers map[Difficulty][]PoolEntry
}

// NewPool stamps each entry with its tier.
func NewPool(easy, medium, hard []PoolEntry) *Pool {
	p := &Pool{tiers: map[Difficulty][]PoolEntry{}}
	for d, entries := range map[Difficulty][]PoolEntry{Easy: easy, Medium: medium, Hard: hard} {
		stamped := make([]PoolEntry, len(entries))
		for i, e := range entries {
			e.Tier = d
			stamped[i] = e
		}
		p.tiers[d] = stamped
	}
	return p
}

// Entries returns the entries for d. Mixed is the union of all tiers.
func (p *Pool) Entries(d Difficulty) []PoolEntry {
	if d != Mixed {
		return p.tiers[d]
	}
	var all []PoolEntry
	for _, t := range []Difficulty{Easy, Medium, Hard} {
		all = append(all, p.tiers[t]...)
	}
	return all
}

// Size returns the number of entries in tier d.
func (p *Pool) Size(d Difficulty) int { return len(p.Entries(d)) }
