package moderation

import (
	"github.com/lewlew/lewlew-server/internal/models"
)

// Score categories returned by Sightengine.
const (
	CategoryNudity    = "nudity"
	CategoryWeapon    = "weapon"
	CategoryAlcohol   = "alcohol"
	CategoryDrugs     = "drugs"
	CategoryGore      = "gore"
	CategoryOffensive = "offensive"
	CategoryScam      = "scam"
)

// AutoRemoveThreshold gates automatic resolution. It is independent of the
// per-reason thresholds below: a branch can flag a violation at 0.31 and the
// report still waits for a human unless confidence reaches this bar.
const AutoRemoveThreshold = 0.8

// Scores holds per-category probabilities in [0,1]. A missing category
// counts as zero.
type Scores map[string]float64

func (s Scores) Get(category string) float64 {
	return s[category]
}

type rule struct {
	category  string
	threshold float64
}

type policy struct {
	violationType string
	rules         []rule
}

// reasonPolicies maps each report reason to the categories inspected and
// their thresholds. Any rule exceeding its threshold flags a violation.
// Visually graphic reasons use deliberately lower thresholds than borderline
// categories like general nudity.
var reasonPolicies = map[models.ReportReason]policy{
	models.ReasonInappropriateContent: {
		violationType: "nudity",
		rules:         []rule{{CategoryNudity, 0.6}},
	},
	models.ReasonViolence: {
		violationType: "violence_dangerous",
		rules: []rule{
			{CategoryWeapon, 0.7},
			{CategoryAlcohol, 0.7},
			{CategoryDrugs, 0.7},
			{CategoryGore, 0.6},
		},
	},
	models.ReasonGore: {
		violationType: "gore_blood",
		rules: []rule{
			{CategoryGore, 0.3},
			{CategoryWeapon, 0.4},
		},
	},
	models.ReasonHateSpeech: {
		violationType: "offensive",
		rules:         []rule{{CategoryOffensive, 0.7}},
	},
	models.ReasonSpam: {
		violationType: "spam",
		rules:         []rule{{CategoryScam, 0.7}},
	},
}

// fallbackPolicy covers "other" and any unrecognized reason with a strict
// general sweep.
var fallbackPolicy = policy{
	violationType: "policy_violation",
	rules: []rule{
		{CategoryNudity, 0.8},
		{CategoryWeapon, 0.8},
		{CategoryAlcohol, 0.8},
		{CategoryDrugs, 0.8},
		{CategoryOffensive, 0.8},
	},
}

func init() {
	// blood and graphic_violence share the gore branch.
	reasonPolicies[models.ReasonBlood] = reasonPolicies[models.ReasonGore]
	reasonPolicies[models.ReasonGraphicViolence] = reasonPolicies[models.ReasonGore]
	// harassment shares the offensive branch.
	reasonPolicies[models.ReasonHarassment] = reasonPolicies[models.ReasonHateSpeech]
}

// Verdict is the outcome of evaluating oracle scores against the policy for
// one report reason.
type Verdict struct {
	IsViolation   bool
	Confidence    float64
	ViolationType string
}

// Evaluate applies the reason-keyed policy table to a set of scores.
// Confidence is the maximum score across the matched branch's inspected
// categories when any rule triggers, zero otherwise.
func Evaluate(reason models.ReportReason, scores Scores) Verdict {
	p, ok := reasonPolicies[reason]
	if !ok {
		p = fallbackPolicy
	}

	violated := false
	maxScore := 0.0
	for _, r := range p.rules {
		score := scores.Get(r.category)
		if score > r.threshold {
			violated = true
		}
		if score > maxScore {
			maxScore = score
		}
	}

	if !violated {
		return Verdict{}
	}
	return Verdict{
		IsViolation:   true,
		Confidence:    maxScore,
		ViolationType: p.violationType,
	}
}

// ShouldAutoRemove reports whether a violation verdict is confident enough
// to resolve without a human.
func ShouldAutoRemove(v Verdict) bool {
	return v.IsViolation && v.Confidence >= AutoRemoveThreshold
}
