package sheets

import (
	"strconv"
	"strings"
	"time"

	"github.com/hexsyn/intake/internal/model"
)

// layout is the sheet and column layout of one submission kind
type layout struct {
	sheet   string
	headers []string
	row     func(sub *model.Submission) []any
}

var layouts = map[model.Kind]layout{
	model.KindApplication: {
		sheet: "Applications",
		headers: []string{
			"Timestamp", "First Name", "Last Name", "Email", "Phone", "University", "Major",
			"Graduation Year", "GPA", "Cover Letter", "LinkedIn", "Portfolio", "Availability",
			"Duration", "Transaction ID", "Payment Done", "Payment Amount", "Opportunity ID",
			"Opportunity Title", "Opportunity Company", "Owner Email", "Resume Link",
			"Resume File Name", "Submission ID",
		},
		row: func(sub *model.Submission) []any {
			a := sub.Form.(*model.Application)
			amount := a.PaymentAmount
			if amount == "" {
				amount = "0"
			}
			return []any{
				timestamp(sub), a.FirstName, a.LastName, a.Email, a.Phone, a.University, a.Major,
				a.GraduationYear, a.GPA, a.CoverLetter, a.LinkedIn, a.Portfolio, a.Availability,
				a.Duration, a.TransactionID, strconv.FormatBool(a.PaymentDone), amount,
				strconv.FormatInt(a.OpportunityID, 10), a.OpportunityTitle, a.OpportunityCompany,
				a.OwnerEmail, sub.ResumeLink(), resumeFileName(sub), sub.ID.String(),
			}
		},
	},
	model.KindCareerApplication: {
		sheet: "Career Applications",
		headers: []string{
			"Timestamp", "First Name", "Last Name", "Email", "Phone", "Location",
			"Experience Level", "Availability", "Salary Expectation", "Cover Letter",
			"Portfolio", "LinkedIn", "GitHub", "Agree to Terms", "Allow Contact",
			"Job ID", "Job Title", "Department", "Resume Link", "Resume File Name",
			"Submission ID",
		},
		row: func(sub *model.Submission) []any {
			c := sub.Form.(*model.CareerApplication)
			return []any{
				timestamp(sub), c.FirstName, c.LastName, c.Email, c.Phone, c.Location,
				c.Experience, c.Availability, c.Salary, c.CoverLetter,
				c.Portfolio, c.LinkedIn, c.GitHub, yesNo(c.AgreeToTerms), yesNo(c.AllowContact),
				strconv.FormatInt(c.JobID, 10), c.JobTitle, c.Department, sub.ResumeLink(),
				resumeFileName(sub), sub.ID.String(),
			}
		},
	},
	model.KindContact: {
		sheet: "ContactUs",
		headers: []string{
			"Timestamp", "First Name", "Last Name", "Email", "Phone",
			"Company", "Subject", "Inquiry Type", "Message", "Submission ID",
		},
		row: func(sub *model.Submission) []any {
			c := sub.Form.(*model.Contact)
			return []any{
				timestamp(sub), c.FirstName, c.LastName, c.Email, c.Phone,
				c.Company, c.Subject, c.InquiryType, c.Message, sub.ID.String(),
			}
		},
	},
	model.KindSubscription: {
		sheet:   "Subscriptions",
		headers: []string{"Timestamp", "Email", "Subscription Type", "Source", "Interests", "Submission ID"},
		row: func(sub *model.Submission) []any {
			s := sub.Form.(*model.Subscription)
			return []any{
				timestamp(sub), s.Email, s.SubscriptionType, s.Source,
				strings.Join(s.Interests, ", "), sub.ID.String(),
			}
		},
	},
}

func timestamp(sub *model.Submission) string {
	return sub.SubmittedAt.UTC().Format(time.RFC3339Nano)
}

func resumeFileName(sub *model.Submission) string {
	if sub.Upload == nil {
		return ""
	}
	return sub.Upload.FileName
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
