package service

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/sociograph/auth-service/pkg/mailer"
)

// emailNotifier sends transactional mail through the SMTP mailer.
// Every send runs on its own goroutine; delivery failures are logged
// and never propagated to the request that triggered them.
type emailNotifier struct {
	mailer *mailer.Mailer
	logger *zap.Logger
}

// NewEmailNotifier creates a Notifier backed by the SMTP mailer.
func NewEmailNotifier(m *mailer.Mailer, logger *zap.Logger) Notifier {
	return &emailNotifier{mailer: m, logger: logger}
}

func (n *emailNotifier) dispatch(to, subject, htmlBody string) {
	go func() {
		if err := n.mailer.SendHTML([]string{to}, subject, htmlBody); err != nil {
			n.logger.Error("failed to send email",
				zap.String("to", to),
				zap.String("subject", subject),
				zap.Error(err),
			)
		}
	}()
}

func (n *emailNotifier) VerificationEmail(to, otp string) {
	n.dispatch(to, "Confirm Email", fmt.Sprintf(`
		<p>Welcome!</p>
		<p>Your email confirmation code is:</p>
		<h2>%s</h2>
		<p>The code expires shortly, so please use it soon.</p>
	`, otp))
}

func (n *emailNotifier) WelcomeEmail(to, username string) {
	n.dispatch(to, "Welcome", fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>Your email has been confirmed. Welcome aboard!</p>
	`, username))
}

func (n *emailNotifier) TwoFactorCode(to, otp string) {
	n.dispatch(to, "Login Verification", fmt.Sprintf(`
		<p>Your login verification code is:</p>
		<h2>%s</h2>
		<p>If you did not try to log in, please change your password.</p>
	`, otp))
}

func (n *emailNotifier) TwoFactorEnabled(to string) {
	n.dispatch(to, "Two-Step Verification Enabled", `
		<p>Two-step verification is now enabled on your account.</p>
		<p>From now on, logging in will require a code sent to this inbox.</p>
	`)
}

func (n *emailNotifier) PasswordResetRequest(to, otp string) {
	n.dispatch(to, "Password Recovery", fmt.Sprintf(`
		<p>We received a request to reset the password for your account.</p>
		<p>Your recovery code is:</p>
		<h2>%s</h2>
		<p>If you did not request a password reset, you can safely ignore this email.</p>
	`, otp))
}

func (n *emailNotifier) PasswordChanged(to string) {
	n.dispatch(to, "Password Changed", `
		<p>The password for your account has just been changed.</p>
		<p>If this was not you, please reset your password immediately.</p>
	`)
}

func (n *emailNotifier) EmailChangeVerification(to, otp string) {
	n.dispatch(to, "Confirm New Email", fmt.Sprintf(`
		<p>A request was made to use this address for an existing account.</p>
		<p>Your confirmation code is:</p>
		<h2>%s</h2>
	`, otp))
}

func (n *emailNotifier) EmailUpdated(to, username string) {
	n.dispatch(to, "Email Updated", fmt.Sprintf(`
		<p>Hi %s,</p>
		<p>The email address on your account has been updated. You will need
		to log in again with the new address.</p>
	`, username))
}
