package email

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

// SMTPConfig holds the settings for the SMTP transport.
type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	FromEmail string
	FromName  string
	AppURL    string
}

// SMTPProvider implements Provider over gomail.
type SMTPProvider struct {
	config   *SMTPConfig
	dialer   *gomail.Dialer
	renderer TemplateRenderer
}

func NewSMTPProvider(config *SMTPConfig, renderer TemplateRenderer) *SMTPProvider {
	dialer := gomail.NewDialer(config.Host, config.Port, config.Username, config.Password)
	return &SMTPProvider{
		config:   config,
		dialer:   dialer,
		renderer: renderer,
	}
}

func (p *SMTPProvider) Send(email *Email) error {
	if err := p.Validate(); err != nil {
		return err
	}

	m := gomail.NewMessage()
	from := email.From
	if from == "" {
		from = m.FormatAddress(p.config.FromEmail, p.config.FromName)
	}
	m.SetHeader("From", from)
	m.SetHeader("To", email.To...)
	if len(email.Cc) > 0 {
		m.SetHeader("Cc", email.Cc...)
	}
	if len(email.Bcc) > 0 {
		m.SetHeader("Bcc", email.Bcc...)
	}
	m.SetHeader("Subject", email.Subject)

	if email.HTMLBody != "" {
		m.SetBody("text/html", email.HTMLBody)
		if email.Body != "" {
			m.AddAlternative("text/plain", email.Body)
		}
	} else {
		m.SetBody("text/plain", email.Body)
	}

	if err := p.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

func (p *SMTPProvider) SendTemplate(to []string, subject string, templateName string, data TemplateData) error {
	if p.renderer == nil {
		return fmt.Errorf("template renderer is not configured")
	}

	htmlBody, err := p.renderer.Render(templateName, data)
	if err != nil {
		return fmt.Errorf("failed to render template %s: %w", templateName, err)
	}

	return p.Send(&Email{
		To:       to,
		Subject:  subject,
		HTMLBody: htmlBody,
	})
}

func (p *SMTPProvider) SendVerification(to string, token string) error {
	return p.SendTemplate([]string{to}, "Verify your email", TemplateVerification, TemplateData{
		"VerifyURL": fmt.Sprintf("%s/verify-email?token=%s", p.config.AppURL, token),
	})
}

func (p *SMTPProvider) SendPasswordReset(to string, token string) error {
	return p.SendTemplate([]string{to}, "Reset your password", TemplatePasswordReset, TemplateData{
		"ResetURL": fmt.Sprintf("%s/reset-password?token=%s", p.config.AppURL, token),
	})
}

func (p *SMTPProvider) SendTrialEnding(to string, daysLeft int) error {
	return p.SendTemplate([]string{to}, "Your trial is ending soon", TemplateTrialEnding, TemplateData{
		"DaysLeft":   daysLeft,
		"UpgradeURL": fmt.Sprintf("%s/pricing", p.config.AppURL),
	})
}

func (p *SMTPProvider) SendAffiliateApproved(to string, referralCode string) error {
	return p.SendTemplate([]string{to}, "Your affiliate application was approved", TemplateAffiliateApproved, TemplateData{
		"ReferralCode": referralCode,
		"ReferralURL":  fmt.Sprintf("%s/signup?ref=%s", p.config.AppURL, referralCode),
	})
}

func (p *SMTPProvider) SendAffiliateDenied(to string, note string) error {
	return p.SendTemplate([]string{to}, "About your affiliate application", TemplateAffiliateDenied, TemplateData{
		"Note": note,
	})
}

func (p *SMTPProvider) Validate() error {
	if p.config.Host == "" {
		return fmt.Errorf("SMTP host is required")
	}
	if p.config.Port <= 0 || p.config.Port > 65535 {
		return fmt.Errorf("invalid SMTP port: %d", p.config.Port)
	}
	return nil
}

func (p *SMTPProvider) Close() error {
	return nil
}
