package domain

// Resume is the structured form the resume parser asks the model for.
type Resume struct {
	Personal   ResumePersonal    `json:"personal"`
	Summary    string            `json:"summary"`
	Education  []ResumeEducation `json:"education"`
	Skills     []string          `json:"skills"`
	Experience []ResumeJob       `json:"experience"`
	Projects   []ResumeProject   `json:"projects"`
}

type ResumePersonal struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Phone    string `json:"phone"`
	Location string `json:"location"`
}

type ResumeEducation struct {
	Degree      string `json:"degree"`
	Institution string `json:"institution"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Details     string `json:"details"`
}

type ResumeJob struct {
	Title   string   `json:"title"`
	Company string   `json:"company"`
	Start   string   `json:"start"`
	End     string   `json:"end"`
	Bullets []string `json:"bullets"`
}

type ResumeProject struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Tech        []string `json:"tech"`
	Link        string   `json:"link"`
}

type ResumeParseResult struct {
	Parsed *Resume `json:"parsed,omitempty"`
	Error  string  `json:"error,omitempty"`
	Raw    string  `json:"raw,omitempty"`
}

type SkillDemand struct {
	Name   string `json:"name"`
	Demand int    `json:"demand"`
}

// TrendsReport is the industry trends analysis for one topic.
type TrendsReport struct {
	Overview       string        `json:"overview"`
	Roadmap        string        `json:"roadmap"`
	Certifications []string      `json:"certifications"`
	Skills         []SkillDemand `json:"skills"`
	Jobs           string        `json:"jobs"`
	News           []string      `json:"news"`
	Advice         string        `json:"advice"`
	MarketSize     string        `json:"marketSize"`
	Growth         string        `json:"growth"`
	JobGrowth      string        `json:"jobGrowth"`
	KeyTakeaways   []string      `json:"keyTakeaways"`
	Fallback       bool          `json:"fallback,omitempty"`
	Error          string        `json:"error,omitempty"`
}

type ProjectRequest struct {
	Idea       string `json:"idea"`
	Domain     string `json:"domain"`
	Duration   string `json:"duration"`
	TeamSize   string `json:"teamSize"`
	Complexity string `json:"complexity"`
}

type ProjectRole struct {
	Role             string   `json:"role"`
	Responsibilities []string `json:"responsibilities"`
}

type Milestone struct {
	Milestone string `json:"milestone"`
	Time      string `json:"time"`
}

// ProjectPlan is the planner's output.
type ProjectPlan struct {
	Overview     string        `json:"overview"`
	Requirements []string      `json:"requirements"`
	Roadmap      []string      `json:"roadmap"`
	Roles        []ProjectRole `json:"roles"`
	Timeline     []Milestone   `json:"timeline"`
	Deliverables []string      `json:"deliverables"`
	Risks        []string      `json:"risks"`
	Suggestions  string        `json:"suggestions"`
	Fallback     bool          `json:"fallback,omitempty"`
	Error        string        `json:"error,omitempty"`
}
