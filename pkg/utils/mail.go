package utils

import (
	"fmt"
	"os"

	"github.com/mailjet/mailjet-apiv3-go/v4"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Ops notifications. Mailjet is the primary channel; plain SMTP is the
// fallback when Mailjet keys are not configured.

func NotifyDepositPaid(userEmail string, amount decimal.Decimal, chargeID string) {
	subject := "PIX deposit confirmed"
	body := fmt.Sprintf(`<body style="margin:0;padding:0;background:#f6f6f6;">
  <div style="max-width:600px;margin:0 auto;padding:32px;font-family:Arial,sans-serif;">
    <h1 style="font-size:24px;color:#111;">Deposito PIX confirmado</h1>
    <table cellpadding="0" cellspacing="0" border="0" style="width:100%%;margin:24px 0;">
      <tr>
        <td style="font-size:15px;color:#555;padding:6px 0;">Usuario:</td>
        <td style="font-size:15px;color:#111;font-weight:bold;padding:6px 0;">%s</td>
      </tr>
      <tr>
        <td style="font-size:15px;color:#555;padding:6px 0;">Valor (R$):</td>
        <td style="font-size:15px;color:#111;font-weight:bold;padding:6px 0;">%s</td>
      </tr>
      <tr>
        <td style="font-size:15px;color:#555;padding:6px 0;">Cobranca:</td>
        <td style="font-size:15px;color:#111;font-weight:bold;padding:6px 0;">%s</td>
      </tr>
    </table>
  </div>
</body>`, userEmail, amount.StringFixed(2), chargeID)

	sendOpsMail(subject, body)
}

func NotifyWithdrawalRequested(userEmail string, amount decimal.Decimal, pixKey string) {
	subject := "PIX withdrawal requested"
	body := fmt.Sprintf(`<body style="margin:0;padding:0;background:#f6f6f6;">
  <div style="max-width:600px;margin:0 auto;padding:32px;font-family:Arial,sans-serif;">
    <h1 style="font-size:24px;color:#111;">Saque PIX solicitado</h1>
    <table cellpadding="0" cellspacing="0" border="0" style="width:100%%;margin:24px 0;">
      <tr>
        <td style="font-size:15px;color:#555;padding:6px 0;">Usuario:</td>
        <td style="font-size:15px;color:#111;font-weight:bold;padding:6px 0;">%s</td>
      </tr>
      <tr>
        <td style="font-size:15px;color:#555;padding:6px 0;">Valor (R$):</td>
        <td style="font-size:15px;color:#111;font-weight:bold;padding:6px 0;">%s</td>
      </tr>
      <tr>
        <td style="font-size:15px;color:#555;padding:6px 0;">Chave PIX:</td>
        <td style="font-size:15px;color:#111;font-weight:bold;padding:6px 0;">%s</td>
      </tr>
    </table>
    <p style="font-size:14px;color:#555;">Processar manualmente no painel do adquirente.</p>
  </div>
</body>`, userEmail, amount.StringFixed(2), pixKey)

	sendOpsMail(subject, body)
}

func sendOpsMail(subject, body string) {
	fromEmail := os.Getenv("OPS_MAIL_FROM")
	toEmail := os.Getenv("OPS_MAIL_TO")
	if fromEmail == "" || toEmail == "" {
		logrus.Warn("OPS_MAIL_FROM/OPS_MAIL_TO not set, skipping ops mail")
		return
	}

	apiKey := os.Getenv("MAILJET_API_KEY")
	secretKey := os.Getenv("MAILJET_SECRET_KEY")
	if apiKey != "" && secretKey != "" {
		sendViaMailjet(apiKey, secretKey, fromEmail, toEmail, subject, body)
		return
	}
	sendViaSMTP(fromEmail, toEmail, subject, body)
}

func sendViaMailjet(apiKey, secretKey, fromEmail, toEmail, subject, body string) {
	mj := mailjet.NewMailjetClient(apiKey, secretKey)
	messagesInfo := []mailjet.InfoMessagesV31{
		{
			From: &mailjet.RecipientV31{
				Email: fromEmail,
				Name:  "ThunderBet",
			},
			To: &mailjet.RecipientsV31{
				{
					Email: toEmail,
				},
			},
			Subject:  subject,
			HTMLPart: body,
		},
	}
	messages := &mailjet.MessagesV31{Info: messagesInfo}
	if _, err := mj.SendMailV31(messages); err != nil {
		logrus.Errorf("failed to send ops mail via Mailjet: %s", err.Error())
		return
	}
	logrus.Infof("ops mail sent via Mailjet: %s", subject)
}

func sendViaSMTP(fromEmail, toEmail, subject, body string) {
	host := os.Getenv("SMTP_HOST")
	password := os.Getenv("SMTP_PASSWORD")
	if host == "" {
		logrus.Warn("SMTP_HOST not set, skipping ops mail")
		return
	}

	m := gomail.NewMessage()
	m.SetHeader("From", fromEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", subject)
	m.SetBody("text/html", body)

	d := gomail.NewDialer(host, 587, fromEmail, password)
	if err := d.DialAndSend(m); err != nil {
		logrus.Errorf("failed to send ops mail via SMTP: %s", err.Error())
		return
	}
	logrus.Infof("ops mail sent via SMTP: %s", subject)
}
