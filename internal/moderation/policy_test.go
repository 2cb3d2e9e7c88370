package moderation

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lewlew/lewlew-server/internal/models"
)

func TestEvaluate(t *testing.T) {
	tests := []struct {
		name          string
		reason        models.ReportReason
		scores        Scores
		wantViolation bool
		wantConf      float64
		wantType      string
	}{
		{
			name:          "nudity above threshold",
			reason:        models.ReasonInappropriateContent,
			scores:        Scores{CategoryNudity: 0.75},
			wantViolation: true,
			wantConf:      0.75,
			wantType:      "nudity",
		},
		{
			name:          "nudity just below threshold is safe",
			reason:        models.ReasonInappropriateContent,
			scores:        Scores{CategoryNudity: 0.59},
			wantViolation: false,
			wantConf:      0,
		},
		{
			name:          "gore branch triggers at low threshold",
			reason:        models.ReasonGore,
			scores:        Scores{CategoryGore: 0.31},
			wantViolation: true,
			wantConf:      0.31,
			wantType:      "gore_blood",
		},
		{
			name:          "blood shares the gore branch",
			reason:        models.ReasonBlood,
			scores:        Scores{CategoryWeapon: 0.45},
			wantViolation: true,
			wantConf:      0.45,
			wantType:      "gore_blood",
		},
		{
			name:          "graphic violence shares the gore branch",
			reason:        models.ReasonGraphicViolence,
			scores:        Scores{CategoryGore: 0.29},
			wantViolation: false,
		},
		{
			name:          "violence weapon at exactly threshold is safe",
			reason:        models.ReasonViolence,
			scores:        Scores{CategoryWeapon: 0.7},
			wantViolation: false,
		},
		{
			name:          "violence gore above its lower threshold",
			reason:        models.ReasonViolence,
			scores:        Scores{CategoryGore: 0.65, CategoryWeapon: 0.2},
			wantViolation: true,
			wantConf:      0.65,
			wantType:      "violence_dangerous",
		},
		{
			name:          "harassment shares the offensive branch",
			reason:        models.ReasonHarassment,
			scores:        Scores{CategoryOffensive: 0.85},
			wantViolation: true,
			wantConf:      0.85,
			wantType:      "offensive",
		},
		{
			name:          "spam inspects only scam",
			reason:        models.ReasonSpam,
			scores:        Scores{CategoryScam: 0.72, CategoryNudity: 0.99},
			wantViolation: true,
			wantConf:      0.72,
			wantType:      "spam",
		},
		{
			name:          "other reason sweeps strictly",
			reason:        models.ReasonOther,
			scores:        Scores{CategoryWeapon: 0.81},
			wantViolation: true,
			wantConf:      0.81,
			wantType:      "policy_violation",
		},
		{
			name:          "other reason ignores sub-threshold categories",
			reason:        models.ReasonOther,
			scores:        Scores{CategoryNudity: 0.79, CategoryDrugs: 0.79},
			wantViolation: false,
		},
		{
			name:          "unknown reason falls back to the general sweep",
			reason:        models.ReportReason("bogus"),
			scores:        Scores{CategoryOffensive: 0.9},
			wantViolation: true,
			wantConf:      0.9,
			wantType:      "policy_violation",
		},
		{
			name:          "confidence is the max inspected score",
			reason:        models.ReasonViolence,
			scores:        Scores{CategoryGore: 0.61, CategoryDrugs: 0.95},
			wantViolation: true,
			wantConf:      0.95,
			wantType:      "violence_dangerous",
		},
		{
			name:          "empty scores are safe",
			reason:        models.ReasonViolence,
			scores:        Scores{},
			wantViolation: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := Evaluate(tt.reason, tt.scores)
			assert.Equal(t, tt.wantViolation, v.IsViolation)
			if tt.wantViolation {
				assert.InDelta(t, tt.wantConf, v.Confidence, 1e-9)
				assert.Equal(t, tt.wantType, v.ViolationType)
			} else {
				assert.Zero(t, v.Confidence)
				assert.Empty(t, v.ViolationType)
			}
		})
	}
}

func TestShouldAutoRemove(t *testing.T) {
	assert.False(t, ShouldAutoRemove(Verdict{IsViolation: true, Confidence: 0.79}))
	assert.True(t, ShouldAutoRemove(Verdict{IsViolation: true, Confidence: 0.8}))
	assert.True(t, ShouldAutoRemove(Verdict{IsViolation: true, Confidence: 0.95}))
	// A safe verdict never auto-removes regardless of score.
	assert.False(t, ShouldAutoRemove(Verdict{IsViolation: false, Confidence: 0.99}))
}
