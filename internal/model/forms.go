package model

import (
	"strings"
	"time"
)

// Application is an internship application tied to a listed opportunity
type Application struct {
	FirstName          string `json:"firstName"`
	LastName           string `json:"lastName"`
	Email              string `json:"email"`
	Phone              string `json:"phone"`
	University         string `json:"university"`
	Major              string `json:"major"`
	GraduationYear     string `json:"graduationYear"`
	GPA                string `json:"gpa,omitempty"`
	CoverLetter        string `json:"coverLetter,omitempty"`
	Availability       string `json:"availability,omitempty"`
	Duration           string `json:"duration,omitempty"`
	LinkedIn           string `json:"linkedin,omitempty"`
	Portfolio          string `json:"portfolio,omitempty"`
	OpportunityID      int64  `json:"opportunityId"`
	OpportunityTitle   string `json:"opportunityTitle"`
	OpportunityCompany string `json:"opportunityCompany"`
	TransactionID      string `json:"transactionId,omitempty"`
	PaymentAmount      string `json:"paymentAmount,omitempty"`
	PaymentDone        bool   `json:"paymentDone"`
	OwnerEmail         string `json:"ownerEmail"`
}

func (a *Application) Kind() Kind             { return KindApplication }
func (a *Application) SubmitterEmail() string { return a.Email }
func (a *Application) SubmitterName() string  { return fullName(a.FirstName, a.LastName) }

// CareerApplication is an application for an open position at the company
type CareerApplication struct {
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Email        string `json:"email"`
	Phone        string `json:"phone"`
	Location     string `json:"location,omitempty"`
	Experience   string `json:"experience,omitempty"`
	Availability string `json:"availability,omitempty"`
	Salary       string `json:"salary,omitempty"`
	CoverLetter  string `json:"coverLetter,omitempty"`
	Portfolio    string `json:"portfolio,omitempty"`
	LinkedIn     string `json:"linkedin,omitempty"`
	GitHub       string `json:"github,omitempty"`
	AgreeToTerms bool   `json:"agreeToTerms"`
	AllowContact bool   `json:"allowContact"`
	JobID        int64  `json:"jobId"`
	JobTitle     string `json:"jobTitle,omitempty"`
	Department   string `json:"department,omitempty"`
}

func (c *CareerApplication) Kind() Kind             { return KindCareerApplication }
func (c *CareerApplication) SubmitterEmail() string { return c.Email }
func (c *CareerApplication) SubmitterName() string  { return fullName(c.FirstName, c.LastName) }

// Contact is a general inquiry
type Contact struct {
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	Phone       string `json:"phone,omitempty"`
	Company     string `json:"company,omitempty"`
	Subject     string `json:"subject"`
	Message     string `json:"message"`
	InquiryType string `json:"inquiryType"`
}

func (c *Contact) Kind() Kind             { return KindContact }
func (c *Contact) SubmitterEmail() string { return c.Email }
func (c *Contact) SubmitterName() string  { return fullName(c.FirstName, c.LastName) }

// InquiryLabel returns the display label of the inquiry type
func (c *Contact) InquiryLabel() string {
	return labelFor(inquiryLabels, c.InquiryType)
}

// Subscription is a mailing-list sign-up
type Subscription struct {
	Email            string     `json:"email"`
	SubscriptionType string     `json:"subscriptionType"`
	Source           string     `json:"source"`
	Timestamp        *time.Time `json:"timestamp,omitempty"`
	Interests        []string   `json:"interests"`
}

func (s *Subscription) Kind() Kind             { return KindSubscription }
func (s *Subscription) SubmitterEmail() string { return s.Email }
func (s *Subscription) SubmitterName() string  { return "" }

// TypeLabel returns the display label of the subscription type
func (s *Subscription) TypeLabel() string {
	return labelFor(subscriptionLabels, s.SubscriptionType)
}

// InterestLabels returns the display labels of the selected interests
func (s *Subscription) InterestLabels() []string {
	out := make([]string, 0, len(s.Interests))
	for _, i := range s.Interests {
		out = append(out, labelFor(interestLabels, i))
	}
	return out
}

var inquiryLabels = map[string]string{
	"general":     "General Inquiry",
	"internship":  "Internship Opportunities",
	"partnership": "Partnership",
	"support":     "Technical Support",
	"careers":     "Careers",
	"media":       "Media & Press",
}

var subscriptionLabels = map[string]string{
	"platform_updates": "Platform Updates",
	"newsletter":       "Newsletter",
	"opportunities":    "Opportunities",
	"announcements":    "Announcements",
}

var interestLabels = map[string]string{
	"platform_launch": "Platform Launch",
	"new_features":    "New Features",
	"opportunities":   "Opportunities",
	"partnerships":    "Partnerships",
	"events":          "Events",
	"updates":         "General Updates",
}

func labelFor(labels map[string]string, key string) string {
	if l, ok := labels[key]; ok {
		return l
	}
	return key
}

func fullName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
