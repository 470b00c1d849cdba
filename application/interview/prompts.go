package interview

import (
	"fmt"
	"strings"

	"career-coach/domain"
)

func questionPrompt(snap domain.SessionSnapshot, slot int, focus string) string {
	previous := ""
	if len(snap.Questions) > 0 {
		previous = fmt.Sprintf("\n\nPrevious questions asked: %s\n\nMake sure this question is COMPLETELY DIFFERENT from previous ones.",
			strings.Join(snap.Questions, "; "))
	}

	return fmt.Sprintf(`You are conducting a professional interview. This is question %d of %d.

Role: %s
Interview type: %s
Difficulty: %s
Question focus: %s

Ask a %s question suitable for a %s position.
Make it specific, relevant, and %s level difficulty.%s

Only output the QUESTION, nothing else.`,
		slot, domain.TotalSlots,
		snap.Role, snap.Type, snap.Difficulty, focus,
		focus, snap.Role, snap.Difficulty, previous)
}

func evaluationPrompt(role, interviewType string, slot int, question, answer string) string {
	number := "Question"
	if slot > 0 {
		number = fmt.Sprintf("Question #%d", slot)
	}
	return fmt.Sprintf(`You are an expert interviewer providing detailed feedback.

Role: %s
Interview type: %s
%s: %q
Candidate Answer: %q

Provide specific, actionable feedback and a unique ideal answer for THIS SPECIFIC question.

Respond ONLY in JSON format:
{
  "feedback": [
    "specific feedback point about their answer",
    "what they did well or could improve",
    "suggestions for better answering"
  ],
  "idealAnswer": "A comprehensive ideal answer specifically for this question, showing what a strong candidate would say",
  "score": 7,
  "strengths": ["strength1", "strength2"],
  "improvements": ["area1", "area2"]
}

The score is an integer from 0 to 10.`, role, interviewType, number, question, answer)
}

func summaryPrompt(snap domain.SessionSnapshot, duration int, avg float64) string {
	var performance strings.Builder
	for i, a := range snap.Answers {
		fmt.Fprintf(&performance, "\nQ%d: %s\nAnswer: %s\nScore: %d/10\nStrengths: %s\nImprovements: %s\n",
			i+1, a.Question, a.Answer, a.Score,
			strings.Join(a.Strengths, ", "), strings.Join(a.Improvements, ", "))
	}

	return fmt.Sprintf(`Generate a comprehensive interview summary for a %s candidate.

Interview Details:
- Role: %s
- Type: %s
- Duration: %d minutes
- Questions: %d
- Average Score: %.1f/10

Candidate Performance:
%s
Provide a JSON response with:
{
  "overallRating": "Excellent/Good/Average/Needs Improvement",
  "summary": "2-3 sentence overall assessment",
  "keyStrengths": ["strength1", "strength2", "strength3"],
  "areasForImprovement": ["area1", "area2", "area3"],
  "recommendation": "Hire/Consider/Pass recommendation with reasoning",
  "nextSteps": ["next step suggestions"]
}`, snap.Role, snap.Role, snap.Type, duration, len(snap.Answers), avg, performance.String())
}
