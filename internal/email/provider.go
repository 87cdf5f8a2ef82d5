package email

// Provider sends transactional mail. Services depend on this interface so
// tests can swap in a recording mock.
type Provider interface {
	Send(email *Email) error
	SendTemplate(to []string, subject string, templateName string, data TemplateData) error

	SendVerification(to string, token string) error
	SendPasswordReset(to string, token string) error
	SendTrialEnding(to string, daysLeft int) error
	SendAffiliateApproved(to string, referralCode string) error
	SendAffiliateDenied(to string, note string) error

	Validate() error
	Close() error
}

// TemplateRenderer renders a named template with data.
type TemplateRenderer interface {
	Render(templateName string, data TemplateData) (string, error)
	AddTemplate(name string, template string) error
}
