package interview

import (
	"fmt"

	"career-coach/config"
	"career-coach/domain"
)

const (
	defaultFeedback = "Good effort on your answer."
	defaultScore    = 5
	defaultRole     = "professional"
)

var fallbackNextSteps = []string{"Review technical skills", "Conduct team interview", "Check references"}

func (s *Service) fallbackQuestion(slot int, role string) string {
	if sl, ok := s.plan.Slot(slot); ok {
		return config.WithRole(sl.FallbackQuestion, role)
	}
	return fmt.Sprintf("What motivated you to pursue a career as a %s?", role)
}

// fallbackEvaluation is the canned evaluation used when the model gives
// nothing usable. Its score is drawn from [5,7].
func (s *Service) fallbackEvaluation(question, role string, slot int) domain.Evaluation {
	var feedback []string
	if sl, ok := s.plan.Slot(slot); ok {
		for _, f := range sl.FallbackFeedback {
			feedback = append(feedback, config.WithRole(f, role))
		}
	} else {
		feedback = []string{
			"You provided a thoughtful answer.",
			fmt.Sprintf("For a %s position, try to include more specific examples.", role),
		}
	}

	return domain.Evaluation{
		Feedback: feedback,
		IdealAnswer: fmt.Sprintf("An ideal answer to %q would provide specific examples, quantifiable results, "+
			"and demonstrate clear alignment with %s responsibilities and requirements.", question, role),
		Score:        5 + s.randIntN(3),
		Strengths:    []string{"Clear communication", "Relevant experience"},
		Improvements: []string{"More specific examples", "Better structure"},
		Fallback:     true,
	}
}

// fallbackSummary is computed purely from the recorded answers.
func fallbackSummary(snap domain.SessionSnapshot, avg float64) domain.Summary {
	recommendation := "Additional evaluation needed"
	if avg >= 7 {
		recommendation = "Consider for next round"
	}

	var strengths, improvements []string
	for _, a := range snap.Answers {
		strengths = append(strengths, a.Strengths...)
		improvements = append(improvements, a.Improvements...)
	}

	return domain.Summary{
		OverallRating: domain.RatingFor(avg),
		Summary: fmt.Sprintf("Candidate completed a %d-question %s interview for %s position with an average score of %s/10.",
			len(snap.Answers), snap.Type, snap.Role, formatScore(avg)),
		KeyStrengths:        top(strengths, 3),
		AreasForImprovement: top(improvements, 3),
		Recommendation:      recommendation,
		NextSteps:           append([]string(nil), fallbackNextSteps...),
	}
}

func top(items []string, n int) []string {
	if len(items) > n {
		items = items[:n]
	}
	return append([]string{}, items...)
}
