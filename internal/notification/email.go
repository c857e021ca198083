package notification

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"

	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"

	"resellcorner/internal/models"
)

type EmailService struct {
	recipient string
}

func NewEmailService() *EmailService {
	return &EmailService{recipient: viper.GetString("ALERT_EMAIL")}
}

const alertEmailTemplate = `
<html>
<body style="font-family: Arial, sans-serif; color: #333; line-height: 1.6;">
	<div style="max-width: 600px; margin: 0 auto; padding: 20px; border: 1px solid #eee; border-radius: 10px;">
		<h2 style="color: #e91e63; margin-bottom: 20px;">Price Alert Triggered!</h2>
		<p>A product you are tracking has reached your target price:</p>
		<div style="background-color: #f9f9f9; padding: 15px; border-radius: 5px; margin: 20px 0;">
			<h3 style="margin-top: 0; color: #333;">{{.ProductName}}</h3>
			<p><b>Your target price:</b> {{printf "%.2f" .TargetPrice}} €</p>
			<p><b>Current price:</b> <span style="color: #e91e63; font-weight: bold; font-size: 1.2em;">{{printf "%.2f" .NewPrice}} €</span></p>
		</div>
		<p>This could be a good moment to source it.</p>
		<p style="margin-top: 30px; font-size: 0.9em; color: #777;">
			This notification was sent because you set a price alert on this product.
		</p>
	</div>
</body>
</html>`

// SendAlertEmail renders and sends the triggered-alert email to the
// configured recipient address.
func (es *EmailService) SendAlertEmail(event models.TriggeredAlertEvent) error {
	if es.recipient == "" {
		return fmt.Errorf("ALERT_EMAIL not configured")
	}

	t, err := template.New("alertEmail").Parse(alertEmailTemplate)
	if err != nil {
		return fmt.Errorf("failed to parse email template: %w", err)
	}

	var buf bytes.Buffer
	if err := t.Execute(&buf, event); err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	subject := fmt.Sprintf("Price Alert: %s reached %.2f €", event.ProductName, event.NewPrice)
	return es.sendMail(es.recipient, buf.String(), subject)
}

func (es *EmailService) sendMail(toEmail, htmlContent, subject string) error {
	logrus.WithFields(logrus.Fields{
		"to":      toEmail,
		"subject": subject,
	}).Info("Attempting to send email")

	senderMail := viper.GetString("EMAIL_SENDER")
	password := viper.GetString("EMAIL_APP_PASSWORD")
	smtpHost := viper.GetString("SMTP_HOST")
	smtpPort := viper.GetString("SMTP_PORT")

	if senderMail == "" || password == "" {
		return fmt.Errorf("email sender not configured")
	}

	headers := map[string]string{
		"From":         senderMail,
		"To":           toEmail,
		"Subject":      subject,
		"MIME-Version": "1.0",
		"Content-Type": "text/html; charset=\"utf-8\"",
	}

	config := &tls.Config{ServerName: smtpHost}
	auth := smtp.PlainAuth("", senderMail, password, smtpHost)

	client, err := smtp.Dial(smtpHost + ":" + smtpPort)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer client.Close()

	if err = client.StartTLS(config); err != nil {
		return fmt.Errorf("start tls: %w", err)
	}
	if err = client.Auth(auth); err != nil {
		return fmt.Errorf("smtp auth: %w", err)
	}
	if err = client.Mail(senderMail); err != nil {
		return fmt.Errorf("set sender: %w", err)
	}
	if err = client.Rcpt(toEmail); err != nil {
		return fmt.Errorf("set recipient: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("open data writer: %w", err)
	}

	var msg bytes.Buffer
	for k, v := range headers {
		msg.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	msg.WriteString("\r\n")
	msg.WriteString(htmlContent)

	if _, err = w.Write(msg.Bytes()); err != nil {
		return fmt.Errorf("write email content: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("close data writer: %w", err)
	}

	logrus.WithField("to", toEmail).Info("Email sent successfully")
	return nil
}
