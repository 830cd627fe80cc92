package model

// Finding is one per-screenshot analysis result. Index ties the finding back
// to submission order, not to a specific URL, since screenshots are pooled
// across device profiles before analysis.
type Finding struct {
	Index       int    `json:"index"`
	IssuesFound bool   `json:"issues_found"`
	Details     string `json:"details"`
}

// Summary is the cross-screenshot reduction produced after all findings.
// AllPassed is true exactly when no finding reported issues; the vacuous
// empty-findings case is recorded as true by convention.
type Summary struct {
	Summary           string   `json:"summary"`
	CommonIssues      []string `json:"common_issues"`
	OverallAssessment string   `json:"overall_assessment"`
	AllPassed         bool     `json:"all_passed"`
}

// Report is the terminal analysis artifact. Findings preserve submission
// order and their count equals the number of screenshots submitted.
type Report struct {
	Findings []Finding `json:"findings"`
	Summary  Summary   `json:"summary"`
}
