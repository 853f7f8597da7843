package agents

// gradeThresholds maps minimum scores to letter grades, highest first.
var gradeThresholds = []struct {
	min   float64
	grade string
}{
	{95, "A+"},
	{90, "A"},
	{85, "A-"},
	{80, "B+"},
	{75, "B"},
	{70, "B-"},
	{65, "C+"},
	{60, "C"},
	{55, "C-"},
	{40, "D"},
	{0, "F"},
}

// scoreToGrade converts a 0-100 score to a letter grade.
func scoreToGrade(score float64) string {
	for _, t := range gradeThresholds {
		if score >= t.min {
			return t.grade
		}
	}
	return "F"
}

// clampScore keeps a computed score within 0-100.
func clampScore(score float64) float64 {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
