package membership

import (
	"math"

	"member-tracker-go/internal/domain/organization"
)

type EvaluationInput struct {
	MembershipType organization.MembershipType
	Threshold      int
	Points         int
	ReceivedBonus  []int64
	Requirements   []organization.MembershipRequirement
	Stats          map[string]TypeStats
}

type RequirementProgress struct {
	RequirementID   uint                         `json:"requirement_id,omitempty"`
	EventType       string                       `json:"event_type,omitempty"`
	RequirementType organization.RequirementType `json:"requirement_type"`
	Required        float64                      `json:"required"`
	Actual          float64                      `json:"actual"`
	Remaining       float64                      `json:"remaining"`
	Fulfilled       bool                         `json:"fulfilled"`
}

type AwardedBonus struct {
	BonusRuleID   uint `json:"bonus_rule_id"`
	RequirementID uint `json:"requirement_id"`
	Points        int  `json:"points"`
}

type Evaluation struct {
	IsActive       bool                  `json:"is_active"`
	Remaining      []RequirementProgress `json:"remaining"`
	Points         int                   `json:"points"`
	ReceivedBonus  []int64               `json:"received_bonus"`
	AwardedBonuses []AwardedBonus        `json:"awarded_bonuses"`
}

// Evaluate decides active status. Bonuses are awarded first, at most once
// per rule, so evaluating the same input twice yields the same points.
func Evaluate(in EvaluationInput) Evaluation {
	out := Evaluation{
		Points:         in.Points,
		ReceivedBonus:  append([]int64{}, in.ReceivedBonus...),
		Remaining:      []RequirementProgress{},
		AwardedBonuses: []AwardedBonus{},
	}

	received := make(map[int64]struct{}, len(in.ReceivedBonus))
	for _, id := range in.ReceivedBonus {
		received[id] = struct{}{}
	}

	for _, req := range in.Requirements {
		percent := in.Stats[req.EventType].Percent()
		for _, bonus := range req.Bonuses {
			if _, ok := received[int64(bonus.ID)]; ok {
				continue
			}
			if percent < bonus.ThresholdPercent {
				continue
			}
			received[int64(bonus.ID)] = struct{}{}
			out.Points += bonus.BonusPoints
			out.ReceivedBonus = append(out.ReceivedBonus, int64(bonus.ID))
			out.AwardedBonuses = append(out.AwardedBonuses, AwardedBonus{
				BonusRuleID:   bonus.ID,
				RequirementID: req.ID,
				Points:        bonus.BonusPoints,
			})
		}
	}

	if in.MembershipType == organization.MembershipAttendance {
		out.IsActive, out.Remaining = evaluateAttendance(in)
		return out
	}

	remaining := math.Max(0, float64(in.Threshold-out.Points))
	out.IsActive = out.Points >= in.Threshold
	out.Remaining = append(out.Remaining, RequirementProgress{
		RequirementType: organization.RequirementPoints,
		Required:        float64(in.Threshold),
		Actual:          float64(out.Points),
		Remaining:       remaining,
		Fulfilled:       out.IsActive,
	})
	return out
}

// evaluateAttendance requires every attendance_count and percentage
// requirement to hold. With none configured nobody is active.
func evaluateAttendance(in EvaluationInput) (bool, []RequirementProgress) {
	progress := make([]RequirementProgress, 0, len(in.Requirements))
	active := true
	applicable := 0

	for _, req := range in.Requirements {
		stats := in.Stats[req.EventType]

		var actual float64
		switch req.RequirementType {
		case organization.RequirementAttendanceCount:
			actual = float64(stats.Attended)
		case organization.RequirementPercentage:
			actual = stats.Percent()
		default:
			continue
		}

		applicable++
		fulfilled := actual >= req.Value
		if !fulfilled {
			active = false
		}
		progress = append(progress, RequirementProgress{
			RequirementID:   req.ID,
			EventType:       req.EventType,
			RequirementType: req.RequirementType,
			Required:        req.Value,
			Actual:          actual,
			Remaining:       math.Max(0, req.Value-actual),
			Fulfilled:       fulfilled,
		})
	}

	if applicable == 0 {
		return false, progress
	}
	return active, progress
}

// PointsPerAttendance sums the points requirements for eventType.
func PointsPerAttendance(requirements []organization.MembershipRequirement, eventType string) int {
	total := 0
	for _, req := range requirements {
		if req.RequirementType == organization.RequirementPoints && req.EventType == eventType {
			total += int(math.Round(req.Value))
		}
	}
	return total
}
