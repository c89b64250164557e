package pricing

import "github.com/angelmondragon/refurbstock-backend/pkg/enums"

// conditionLabels maps the internal grading to each platform's own wording.
// A missing entry means the platform does not accept that grade.
var conditionLabels = map[enums.Platform]map[enums.Condition]string{
	enums.PlatformX: {
		enums.ConditionNew:   "New",
		enums.ConditionGood:  "Good",
		enums.ConditionScrap: "Scrap",
	},
	enums.PlatformY: {
		enums.ConditionNew:    "3 stars (Excellent)",
		enums.ConditionGood:   "2 stars (Good)",
		enums.ConditionUsable: "1 star (Usable)",
	},
	enums.PlatformZ: {
		enums.ConditionNew:       "New",
		enums.ConditionExcellent: "As New",
		enums.ConditionGood:      "Good",
	},
}

// MapCondition returns the platform's label for condition.
func MapCondition(condition enums.Condition, platform enums.Platform) (string, bool) {
	label, ok := conditionLabels[platform][condition]
	return label, ok
}

// SupportedConditions lists the internal conditions a platform accepts.
func SupportedConditions(platform enums.Platform) []enums.Condition {
	labels := conditionLabels[platform]
	out := make([]enums.Condition, 0, len(labels))
	for _, condition := range []enums.Condition{
		enums.ConditionNew,
		enums.ConditionExcellent,
		enums.ConditionGood,
		enums.ConditionUsable,
		enums.ConditionScrap,
	} {
		if _, ok := labels[condition]; ok {
			out = append(out, condition)
		}
	}
	return out
}
