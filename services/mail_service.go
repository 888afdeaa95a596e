package services

import (
	"fmt"

	"asikh-oms/config"

	"gopkg.in/gomail.v2"
)

// SendPasswordResetMail delivers a reset code to the user's mailbox. When no
// SMTP sender is configured the mail is silently skipped so development
// setups do not need a mail server.
func SendPasswordResetMail(to, resetCode string) error {
	if config.SMTPSender == "" {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", config.SMTPSender)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", "ASIKH OMS password reset")
	msg.SetBody("text/plain", fmt.Sprintf(
		"Your password reset code is %s. It expires in 15 minutes.\n\nIf you did not request a reset, ignore this mail.", resetCode))

	dialer := gomail.NewDialer(config.SMTPHost, config.SMTPPort, config.SMTPSender, config.SMTPPassword)
	return dialer.DialAndSend(msg)
}
