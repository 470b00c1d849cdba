package domain

// UsageMetrics counts what the service does. Implementations must be safe for
// concurrent use.
type UsageMetrics interface {
	IncrementInterviewsStarted()
	IncrementQuestionsAsked()
	IncrementAnswersEvaluated()
	IncrementInterviewsCompleted()
	IncrementFallbacks()
	IncrementAPICall(success bool)
}

type NopMetrics struct{}

func (NopMetrics) IncrementInterviewsStarted()   {}
func (NopMetrics) IncrementQuestionsAsked()      {}
func (NopMetrics) IncrementAnswersEvaluated()    {}
func (NopMetrics) IncrementInterviewsCompleted() {}
func (NopMetrics) IncrementFallbacks()           {}
func (NopMetrics) IncrementAPICall(bool)         {}
