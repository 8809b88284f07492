package mail

import (
	"fmt"
	"strings"
)

// NewApplicationEmail describes the mail sent to an employer when a
// candidate applies to one of their postings.
type NewApplicationEmail struct {
	EmployerName  string
	JobTitle      string
	CandidateName string
	CoverLetter   string
	ResumeURL     string
	JobLink       string
}

// Subject returns the email subject line.
func (e NewApplicationEmail) Subject() string {
	return "New Job Application for: " + e.JobTitle
}

// Body renders the plain-text email body.
func (e NewApplicationEmail) Body() string {
	coverLetter := strings.TrimSpace(e.CoverLetter)
	if coverLetter == "" {
		coverLetter = "(No cover letter provided)"
	}

	return fmt.Sprintf(`Hello %s,

You've just received a new job application for the position:

Position: %s
Candidate: %s

Cover Letter:
--------------------
%s
--------------------

Resume Link:
%s

View Job Posting:
%s

Please log in to your employer dashboard to review the full application details.

Kind regards,
The Next Step Team
`,
		e.EmployerName,
		e.JobTitle,
		e.CandidateName,
		coverLetter,
		e.ResumeURL,
		e.JobLink,
	)
}
