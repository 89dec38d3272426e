package templates

import "github.com/hexsyn/intake/internal/model"

var sources = []source{
	{
		kind:    model.KindApplication,
		role:    model.RoleOwner,
		subject: `New Application Received: {{.Form.OpportunityTitle}} - {{.Form.FirstName}} {{.Form.LastName}}`,
		html: `{{define "title"}}New application for {{.Form.OpportunityTitle}}{{end}}
{{define "body"}}
<p>A new application was submitted for <strong>{{.Form.OpportunityTitle}}</strong> at {{.Form.OpportunityCompany}}.</p>
<table cellpadding="6" style="font-size:14px;">
  <tr><td><strong>Name</strong></td><td>{{.Form.FirstName}} {{.Form.LastName}}</td></tr>
  <tr><td><strong>Email</strong></td><td><a href="mailto:{{.Form.Email}}">{{.Form.Email}}</a></td></tr>
  <tr><td><strong>Phone</strong></td><td>{{.Form.Phone}}</td></tr>
  <tr><td><strong>University</strong></td><td>{{.Form.University}}</td></tr>
  <tr><td><strong>Major</strong></td><td>{{.Form.Major}}</td></tr>
  <tr><td><strong>Graduation year</strong></td><td>{{.Form.GraduationYear}}</td></tr>
  <tr><td><strong>GPA</strong></td><td>{{orDash .Form.GPA}}</td></tr>
  <tr><td><strong>Availability</strong></td><td>{{orDash .Form.Availability}}</td></tr>
  <tr><td><strong>Duration</strong></td><td>{{orDash .Form.Duration}}</td></tr>
  {{if .Form.LinkedIn}}<tr><td><strong>LinkedIn</strong></td><td><a href="{{.Form.LinkedIn}}">{{.Form.LinkedIn}}</a></td></tr>{{end}}
  {{if .Form.Portfolio}}<tr><td><strong>Portfolio</strong></td><td><a href="{{.Form.Portfolio}}">{{.Form.Portfolio}}</a></td></tr>{{end}}
  {{if .ResumeLink}}<tr><td><strong>Resume</strong></td><td><a href="{{.ResumeLink}}">View resume</a></td></tr>{{end}}
  <tr><td><strong>Payment</strong></td><td>{{if .Form.PaymentDone}}Completed{{else}}Pending{{end}}{{if .Form.TransactionID}} ({{.Form.TransactionID}}){{end}}</td></tr>
</table>
{{if .Form.CoverLetter}}<h3 style="font-size:16px;color:#1a1a2e;">Cover letter</h3><p style="white-space:pre-wrap;">{{.Form.CoverLetter}}</p>{{end}}
{{end}}`,
		text: `New application for {{.Form.OpportunityTitle}} at {{.Form.OpportunityCompany}}

Name: {{.Form.FirstName}} {{.Form.LastName}}
Email: {{.Form.Email}}
Phone: {{.Form.Phone}}
University: {{.Form.University}}
Major: {{.Form.Major}}
Graduation year: {{.Form.GraduationYear}}
GPA: {{orDash .Form.GPA}}
Availability: {{orDash .Form.Availability}}
Duration: {{orDash .Form.Duration}}
{{if .Form.LinkedIn}}LinkedIn: {{.Form.LinkedIn}}
{{end}}{{if .Form.Portfolio}}Portfolio: {{.Form.Portfolio}}
{{end}}{{if .ResumeLink}}Resume: {{.ResumeLink}}
{{end}}Payment: {{if .Form.PaymentDone}}Completed{{else}}Pending{{end}}
{{if .Form.CoverLetter}}
Cover letter:
{{.Form.CoverLetter}}
{{end}}
Submitted {{.SubmittedAt}} (ref {{.Submission.ID}})`,
	},
	{
		kind:    model.KindApplication,
		role:    model.RoleApplicant,
		subject: `Application Confirmed: {{.Form.OpportunityTitle}} at {{.Form.OpportunityCompany}}`,
		html: `{{define "title"}}Your application is in{{end}}
{{define "body"}}
<p>Hi {{.Form.FirstName}},</p>
<p>Thank you for applying for <strong>{{.Form.OpportunityTitle}}</strong> at {{.Form.OpportunityCompany}}. The hiring team has been notified and will review your application.</p>
<p>If your profile is a match you will hear from them directly at {{.Form.Email}}.</p>
<p>Best of luck,<br>The {{.AppName}} team</p>
{{end}}`,
		text: `Hi {{.Form.FirstName}},

Thank you for applying for {{.Form.OpportunityTitle}} at {{.Form.OpportunityCompany}}. The hiring team has been notified and will review your application.

If your profile is a match you will hear from them directly at {{.Form.Email}}.

Best of luck,
The {{.AppName}} team`,
	},
	{
		kind:    model.KindCareerApplication,
		role:    model.RoleAdmin,
		subject: `New Career Application: {{.Form.FirstName}} {{.Form.LastName}} - {{if .Form.JobTitle}}{{.Form.JobTitle}}{{else}}Job #{{.Form.JobID}}{{end}}`,
		html: `{{define "title"}}New career application{{end}}
{{define "body"}}
<p><strong>{{.Form.FirstName}} {{.Form.LastName}}</strong> applied for {{if .Form.JobTitle}}<strong>{{.Form.JobTitle}}</strong>{{else}}job #{{.Form.JobID}}{{end}}{{if .Form.Department}} ({{.Form.Department}}){{end}}.</p>
<table cellpadding="6" style="font-size:14px;">
  <tr><td><strong>Email</strong></td><td><a href="mailto:{{.Form.Email}}">{{.Form.Email}}</a></td></tr>
  <tr><td><strong>Phone</strong></td><td>{{.Form.Phone}}</td></tr>
  <tr><td><strong>Location</strong></td><td>{{orDash .Form.Location}}</td></tr>
  <tr><td><strong>Experience</strong></td><td>{{orDash .Form.Experience}}</td></tr>
  <tr><td><strong>Availability</strong></td><td>{{orDash .Form.Availability}}</td></tr>
  <tr><td><strong>Salary expectation</strong></td><td>{{orDash .Form.Salary}}</td></tr>
  {{if .Form.LinkedIn}}<tr><td><strong>LinkedIn</strong></td><td><a href="{{.Form.LinkedIn}}">{{.Form.LinkedIn}}</a></td></tr>{{end}}
  {{if .Form.GitHub}}<tr><td><strong>GitHub</strong></td><td><a href="{{.Form.GitHub}}">{{.Form.GitHub}}</a></td></tr>{{end}}
  {{if .Form.Portfolio}}<tr><td><strong>Portfolio</strong></td><td><a href="{{.Form.Portfolio}}">{{.Form.Portfolio}}</a></td></tr>{{end}}
  <tr><td><strong>Resume</strong></td><td>{{if .ResumeLink}}<a href="{{.ResumeLink}}">View resume</a>{{else}}Not provided{{end}}</td></tr>
  <tr><td><strong>May contact</strong></td><td>{{if .Form.AllowContact}}Yes{{else}}No{{end}}</td></tr>
</table>
{{if .Form.CoverLetter}}<h3 style="font-size:16px;color:#1a1a2e;">Cover letter</h3><p style="white-space:pre-wrap;">{{.Form.CoverLetter}}</p>{{end}}
{{end}}`,
		text: `New career application

Candidate: {{.Form.FirstName}} {{.Form.LastName}}
Position: {{if .Form.JobTitle}}{{.Form.JobTitle}}{{else}}Job #{{.Form.JobID}}{{end}}{{if .Form.Department}} ({{.Form.Department}}){{end}}
Email: {{.Form.Email}}
Phone: {{.Form.Phone}}
Location: {{orDash .Form.Location}}
Experience: {{orDash .Form.Experience}}
Availability: {{orDash .Form.Availability}}
Salary expectation: {{orDash .Form.Salary}}
Resume: {{if .ResumeLink}}{{.ResumeLink}}{{else}}Not provided{{end}}
May contact: {{if .Form.AllowContact}}Yes{{else}}No{{end}}
{{if .Form.CoverLetter}}
Cover letter:
{{.Form.CoverLetter}}
{{end}}`,
	},
	{
		kind:    model.KindCareerApplication,
		role:    model.RoleApplicant,
		subject: `Application Received - {{if .Form.JobTitle}}{{.Form.JobTitle}}{{else}}Job #{{.Form.JobID}}{{end}} at {{.AppName}}`,
		html: `{{define "title"}}Thanks for applying, {{.Form.FirstName}}{{end}}
{{define "body"}}
<p>We received your application for <strong>{{if .Form.JobTitle}}{{.Form.JobTitle}}{{else}}job #{{.Form.JobID}}{{end}}</strong>.</p>
<p>Our team reviews every application. If there is a fit we will reach out to schedule a conversation.</p>
{{if .ResumeLink}}<p>Your resume was received and attached to your application.</p>{{end}}
<p>Kind regards,<br>The {{.AppName}} team</p>
{{end}}`,
		text: `Thanks for applying, {{.Form.FirstName}}

We received your application for {{if .Form.JobTitle}}{{.Form.JobTitle}}{{else}}job #{{.Form.JobID}}{{end}}.

Our team reviews every application. If there is a fit we will reach out to schedule a conversation.
{{if .ResumeLink}}
Your resume was received and attached to your application.
{{end}}
Kind regards,
The {{.AppName}} team`,
	},
	{
		kind:    model.KindContact,
		role:    model.RoleAdmin,
		subject: `New Contact Form Submission: {{.Form.Subject}}`,
		html: `{{define "title"}}New contact message{{end}}
{{define "body"}}
<table cellpadding="6" style="font-size:14px;">
  <tr><td><strong>From</strong></td><td>{{.Form.FirstName}} {{.Form.LastName}} &lt;<a href="mailto:{{.Form.Email}}">{{.Form.Email}}</a>&gt;</td></tr>
  <tr><td><strong>Phone</strong></td><td>{{orDash .Form.Phone}}</td></tr>
  <tr><td><strong>Company</strong></td><td>{{orDash .Form.Company}}</td></tr>
  <tr><td><strong>Inquiry type</strong></td><td>{{.Form.InquiryLabel}}</td></tr>
  <tr><td><strong>Subject</strong></td><td>{{.Form.Subject}}</td></tr>
</table>
<p style="white-space:pre-wrap;border-left:3px solid #6c63ff;padding-left:12px;">{{.Form.Message}}</p>
<p>Reply directly to this email to answer {{.Form.FirstName}}.</p>
{{end}}`,
		text: `New contact message

From: {{.Form.FirstName}} {{.Form.LastName}} <{{.Form.Email}}>
Phone: {{orDash .Form.Phone}}
Company: {{orDash .Form.Company}}
Inquiry type: {{.Form.InquiryLabel}}
Subject: {{.Form.Subject}}

{{.Form.Message}}`,
	},
	{
		kind:    model.KindContact,
		role:    model.RoleUser,
		subject: `Thank you for contacting {{.AppName}} - We've received your message`,
		html: `{{define "title"}}We got your message{{end}}
{{define "body"}}
<p>Hi {{.Form.FirstName}},</p>
<p>Thanks for reaching out about <strong>{{.Form.Subject}}</strong>. A member of our team will get back to you soon.</p>
<table cellpadding="6" style="font-size:14px;">
  <tr><td><strong>Inquiry type</strong></td><td>{{.Form.InquiryLabel}}</td></tr>
  <tr><td><strong>Subject</strong></td><td>{{.Form.Subject}}</td></tr>
</table>
<p>Best regards,<br>The {{.AppName}} team</p>
{{end}}`,
		text: `Hi {{.Form.FirstName}},

Thanks for reaching out about "{{.Form.Subject}}". A member of our team will get back to you soon.

Inquiry type: {{.Form.InquiryLabel}}
Subject: {{.Form.Subject}}

Best regards,
The {{.AppName}} team`,
	},
	{
		kind:    model.KindSubscription,
		role:    model.RoleAdmin,
		subject: `New Subscription: {{.Form.Email}} - {{.Form.TypeLabel}}`,
		html: `{{define "title"}}New subscriber{{end}}
{{define "body"}}
<table cellpadding="6" style="font-size:14px;">
  <tr><td><strong>Email</strong></td><td><a href="mailto:{{.Form.Email}}">{{.Form.Email}}</a></td></tr>
  <tr><td><strong>Type</strong></td><td>{{.Form.TypeLabel}}</td></tr>
  <tr><td><strong>Source</strong></td><td>{{.Form.Source}}</td></tr>
  <tr><td><strong>Interests</strong></td><td>{{join .Form.InterestLabels ", "}}</td></tr>
  {{if .Form.Timestamp}}<tr><td><strong>Client time</strong></td><td>{{date .Form.Timestamp}}</td></tr>{{end}}
</table>
{{end}}`,
		text: `New subscriber

Email: {{.Form.Email}}
Type: {{.Form.TypeLabel}}
Source: {{.Form.Source}}
Interests: {{join .Form.InterestLabels ", "}}`,
	},
	{
		kind:    model.KindSubscription,
		role:    model.RoleUser,
		subject: `Welcome to {{.AppName}} Updates - Subscription Confirmed!`,
		html: `{{define "title"}}You're subscribed{{end}}
{{define "body"}}
<p>Thanks for subscribing to <strong>{{.Form.TypeLabel}}</strong>.</p>
<p>You'll hear from us about:</p>
<ul>{{range .Form.InterestLabels}}<li>{{.}}</li>{{end}}</ul>
<p>See you soon,<br>The {{.AppName}} team</p>
{{end}}`,
		text: `Thanks for subscribing to {{.Form.TypeLabel}}.

You'll hear from us about:
{{range .Form.InterestLabels}}- {{.}}
{{end}}
See you soon,
The {{.AppName}} team`,
	},
}
