package app

import "wagyu_backend/internal/email"

// MockEmailProvider is used in tests and when SMTP is not configured.
type MockEmailProvider struct{}

func (m *MockEmailProvider) Send(msg *email.Email) error { return nil }
func (m *MockEmailProvider) SendTemplate(to []string, subject string, templateName string, data email.TemplateData) error {
	return nil
}
func (m *MockEmailProvider) SendVerification(to string, token string) error          { return nil }
func (m *MockEmailProvider) SendPasswordReset(to string, token string) error         { return nil }
func (m *MockEmailProvider) SendTrialEnding(to string, daysLeft int) error           { return nil }
func (m *MockEmailProvider) SendAffiliateApproved(to string, referralCode string) error {
	return nil
}
func (m *MockEmailProvider) SendAffiliateDenied(to string, note string) error { return nil }
func (m *MockEmailProvider) Validate() error                                  { return nil }
func (m *MockEmailProvider) Close() error                                     { return nil }
