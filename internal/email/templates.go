package email

import (
	"fmt"
	"html/template"
	"strings"
	"sync"
)

// Template names registered by default.
const (
	TemplateVerification      = "verification"
	TemplatePasswordReset     = "password_reset"
	TemplateTrialEnding       = "trial_ending"
	TemplateAffiliateApproved = "affiliate_approved"
	TemplateAffiliateDenied   = "affiliate_denied"
)

var defaultTemplates = map[string]string{
	TemplateVerification: `<html><body>
<h2>Welcome to WagYu</h2>
<p>Confirm your email address to activate your account:</p>
<p><a href="{{.VerifyURL}}">Verify email</a></p>
<p>If you did not create an account, you can ignore this message.</p>
</body></html>`,

	TemplatePasswordReset: `<html><body>
<h2>Password reset</h2>
<p>Use the link below to choose a new password. The link expires in one hour.</p>
<p><a href="{{.ResetURL}}">Reset password</a></p>
<p>If you did not request this, your account is still safe.</p>
</body></html>`,

	TemplateTrialEnding: `<html><body>
<h2>Your trial ends in {{.DaysLeft}} day(s)</h2>
<p>Keep your journal and analytics by picking a plan before the trial runs out.</p>
<p><a href="{{.UpgradeURL}}">See plans</a></p>
</body></html>`,

	TemplateAffiliateApproved: `<html><body>
<h2>You're in</h2>
<p>Your affiliate application was approved. Your referral code is <b>{{.ReferralCode}}</b>.</p>
<p>Share this link to start earning: <a href="{{.ReferralURL}}">{{.ReferralURL}}</a></p>
</body></html>`,

	TemplateAffiliateDenied: `<html><body>
<h2>About your affiliate application</h2>
<p>We reviewed your application and can't approve it at this time.</p>
{{if .Note}}<p>{{.Note}}</p>{{end}}
<p>You're welcome to apply again later.</p>
</body></html>`,
}

// TemplateManager implements TemplateRenderer over html/template.
type TemplateManager struct {
	templates map[string]*template.Template
	mutex     sync.RWMutex
}

// NewTemplateManager returns a manager preloaded with the default templates.
func NewTemplateManager() *TemplateManager {
	tm := &TemplateManager{
		templates: make(map[string]*template.Template),
	}
	for name, body := range defaultTemplates {
		// All defaults parse; a failure here is a programming error.
		_ = tm.AddTemplate(name, body)
	}
	return tm
}

func (tm *TemplateManager) Render(templateName string, data TemplateData) (string, error) {
	tm.mutex.RLock()
	tpl, exists := tm.templates[templateName]
	tm.mutex.RUnlock()

	if !exists {
		return "", fmt.Errorf("template not found: %s", templateName)
	}

	var buf strings.Builder
	if err := tpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}
	return buf.String(), nil
}

func (tm *TemplateManager) AddTemplate(name string, templateStr string) error {
	tpl, err := template.New(name).Parse(templateStr)
	if err != nil {
		return fmt.Errorf("failed to parse template: %w", err)
	}

	tm.mutex.Lock()
	tm.templates[name] = tpl
	tm.mutex.Unlock()
	return nil
}
