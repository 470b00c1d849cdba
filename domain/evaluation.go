package domain

// AnswerRecord is one evaluated answer, owned by its session.
type AnswerRecord struct {
	Question     string   `json:"question"`
	Answer       string   `json:"answer"`
	Feedback     []string `json:"feedback"`
	IdealAnswer  string   `json:"idealAnswer"`
	Score        int      `json:"score"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
}

func (a AnswerRecord) clone() AnswerRecord {
	a.Feedback = append([]string(nil), a.Feedback...)
	a.Strengths = append([]string(nil), a.Strengths...)
	a.Improvements = append([]string(nil), a.Improvements...)
	return a
}

// Evaluation is what the evaluator hands back to the client.
type Evaluation struct {
	Feedback     []string `json:"feedback"`
	IdealAnswer  string   `json:"idealAnswer"`
	Score        int      `json:"score"`
	Strengths    []string `json:"strengths"`
	Improvements []string `json:"improvements"`
	Fallback     bool     `json:"fallback,omitempty"`
}

// Record pairs the evaluation with the question and answer it judged.
func (e Evaluation) Record(question, answer string) AnswerRecord {
	return AnswerRecord{
		Question:     question,
		Answer:       answer,
		Feedback:     e.Feedback,
		IdealAnswer:  e.IdealAnswer,
		Score:        e.Score,
		Strengths:    e.Strengths,
		Improvements: e.Improvements,
	}.clone()
}

// Turn is the sequencer's reply to a start or resume call.
type Turn struct {
	Question       string `json:"question"`
	SessionID      string `json:"sessionId"`
	QuestionNumber int    `json:"questionNumber"`
	TotalQuestions int    `json:"totalQuestions"`
	Completed      bool   `json:"completed"`
	Fallback       bool   `json:"fallback,omitempty"`
	Message        string `json:"message,omitempty"`
}
