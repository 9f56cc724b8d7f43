// internal/email/email.go
package email

import (
	"bytes"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"frontoffice/internal/config"
	"frontoffice/internal/logger"
)

const (
	defaultAlertRecipient = "admin@yourdomain.org"
	defaultAlertSender    = "alerts@yourdomain.org"
	defaultSendmail       = "/usr/sbin/sendmail"
)

// EmailConfig holds email configuration
type EmailConfig struct {
	AlertRecipient string
	AlertSender    string
	SendAlerts     bool
	MockMode       bool
	LogEmails      bool
	SendmailPath   string
}

// LoadEmailConfig loads email configuration from environment variables
func LoadEmailConfig() EmailConfig {
	return EmailConfig{
		AlertRecipient: getEnvOrDefault("EMAIL_ALERT_RECIPIENT", defaultAlertRecipient),
		AlertSender:    getEnvOrDefault("EMAIL_ALERT_SENDER", defaultAlertSender),
		SendAlerts:     getEnvOrDefault("SEND_ALERT_EMAILS", "false") == "true",
		MockMode:       getEnvOrDefault("EMAIL_MOCK_MODE", "false") == "true",
		LogEmails:      getEnvOrDefault("EMAIL_LOG_MODE", "true") == "true",
		SendmailPath:   getEnvOrDefault("SENDMAIL_PATH", defaultSendmail),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := config.GetEnvBasedSetting(key); value != "" {
		return value
	}
	return defaultValue
}

// Mailer sends plain-text mail through sendmail.
type Mailer struct {
	config EmailConfig
	// deliver hands a full message to the transport. Tests replace it.
	deliver func(message []byte) error
}

func NewMailer(cfg EmailConfig) *Mailer {
	m := &Mailer{config: cfg}
	m.deliver = m.sendmail
	return m
}

// SendAlert mails the administrators. It does nothing unless alerts are
// enabled.
func (m *Mailer) SendAlert(subject, body string) error {
	if !m.config.SendAlerts {
		logger.LogDebug("Alert emails disabled, not sending %q", subject)
		return nil
	}
	return m.SendMail(m.config.AlertRecipient, m.config.AlertSender, "[Front Office] "+subject, body)
}

// BackupFailed is the alert sent when the daily backup cannot be written.
func (m *Mailer) BackupFailed(err error) {
	body := fmt.Sprintf("The daily backup failed at %s.\n\nError: %v\n\nThe previous backups are untouched.",
		time.Now().Format("2006-01-02 15:04:05 MST"), err)
	if sendErr := m.SendAlert("Backup failed", body); sendErr != nil {
		logger.LogError("Failed to send backup alert: %v", sendErr)
	}
}

// SendMail sends an email using sendmail or logs it in mock mode
func (m *Mailer) SendMail(to, from, subject, body string) error {
	// Mock mode - just log it
	if m.config.MockMode {
		logger.LogInfo("========== MOCK EMAIL ==========")
		logger.LogInfo("To: %s", to)
		logger.LogInfo("From: %s", from)
		logger.LogInfo("Subject: %s", subject)
		for _, line := range strings.Split(body, "\n") {
			logger.LogInfo("   %s", line)
		}
		logger.LogInfo("================================")
		return nil
	}

	if m.config.LogEmails {
		logger.LogInfo("Sending email to %s with subject: %s", to, subject)
	}

	headers := []string{
		fmt.Sprintf("From: %s", from),
		fmt.Sprintf("To: %s", to),
		fmt.Sprintf("Subject: %s", subject),
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"utf-8\"",
		"",
	}
	message := strings.Join(headers, "\r\n") + body

	if err := m.deliver([]byte(message)); err != nil {
		return err
	}

	if m.config.LogEmails {
		logger.LogInfo("Email sent successfully to %s", to)
	}
	return nil
}

func (m *Mailer) sendmail(message []byte) error {
	cmd := exec.Command(m.config.SendmailPath, "-t")
	cmd.Stdin = bytes.NewReader(message)
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("sendmail command failed: %w", err)
	}
	return nil
}
