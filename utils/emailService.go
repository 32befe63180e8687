package utils

import (
	"fmt"
	"lmsync/config"
	"lmsync/syncer"
	"net/smtp"
	"strings"

	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"
)

// SendEmail delivers one HTML email. SendGrid is used when an API key is
// configured; otherwise it falls back to plain SMTP.
func SendEmail(to []string, subject string, htmlBody string) error {
	if config.AppConfig.SendgridAPIKey != "" {
		return sendViaSendgrid(to, subject, htmlBody)
	}
	return sendViaSMTP(to, subject, htmlBody)
}

func sendViaSendgrid(to []string, subject string, htmlBody string) error {
	from := sgmail.NewEmail("LMS Sync", config.AppConfig.EmailSender)
	client := sendgrid.NewSendClient(config.AppConfig.SendgridAPIKey)

	for _, recipient := range to {
		message := sgmail.NewSingleEmail(from, subject, sgmail.NewEmail("", recipient), "", htmlBody)
		resp, err := client.Send(message)
		if err != nil {
			return err
		}
		if resp.StatusCode >= 400 {
			return fmt.Errorf("sendgrid rejected email: status %d", resp.StatusCode)
		}
	}
	return nil
}

func sendViaSMTP(to []string, subject string, htmlBody string) error {
	smtpHost := "smtp.gmail.com"
	smtpPort := "587"

	from := config.AppConfig.EmailSender
	password := config.AppConfig.Password

	// MIME basics
	msg := "MIME-version: 1.0;\nContent-Type: text/html; charset=\"UTF-8\";\n"
	msg += fmt.Sprintf("From: LMS Sync <%s>\r\n", from)
	msg += fmt.Sprintf("To: %s\r\n", strings.Join(to, ","))
	msg += fmt.Sprintf("Subject: %s\r\n\r\n", subject)
	msg += htmlBody

	auth := smtp.PlainAuth("", from, password, smtpHost)

	return smtp.SendMail(smtpHost+":"+smtpPort, auth, from, to, []byte(msg))
}

// getEmailTemplate wraps report content in the shared HTML shell.
func getEmailTemplate(title string, bodyContent string) string {
	return fmt.Sprintf(`
	<!DOCTYPE html>
	<html>
	<head>
		<style>
			body { font-family: 'Helvetica Neue', Helvetica, Arial, sans-serif; background-color: #F6F6F6; margin: 0; padding: 0; }
			.container { max-width: 600px; margin: 40px auto; background: #FFFFFF; border-radius: 8px; overflow: hidden; box-shadow: 0 4px 15px rgba(0,0,0,0.05); }
			.header { background-color: #00004D; padding: 30px; text-align: center; }
			.header h1 { color: #FFFFFF; margin: 0; font-size: 24px; letter-spacing: 1px; }
			.content { padding: 40px 30px; color: #00004D; line-height: 1.6; }
			.content h2 { color: #00004D; margin-top: 0; }
			.footer { background-color: #F6F6F6; padding: 20px; text-align: center; font-size: 12px; color: #666666; border-top: 1px solid #E0E0E0; }
			.info-box { background: #E8F0FE; padding: 15px; border-radius: 4px; border-left: 4px solid #d7b56d; margin: 20px 0; }
			.failed { color: #B00020; font-weight: bold; }
		</style>
	</head>
	<body>
		<div class="container">
			<div class="header">
				<h1>%s</h1>
			</div>
			<div class="content">
				%s
			</div>
			<div class="footer">Automated message from the LMS sync service.</div>
		</div>
	</body>
	</html>
	`, title, bodyContent)
}

// SendSyncReportEmail mails a fleet run summary to the configured report
// recipient. A no-op when no recipient is configured.
func SendSyncReportEmail(fleet *syncer.FleetResult) error {
	if config.AppConfig.ReportEmail == "" {
		return nil
	}

	var failures strings.Builder
	for _, outcome := range fleet.Results {
		if !outcome.Success {
			failures.WriteString(fmt.Sprintf(`<li class="failed">%s (id %d): %s</li>`, outcome.ShortName, outcome.CourseID, outcome.Error))
		}
	}
	failureBlock := ""
	if failures.Len() > 0 {
		failureBlock = "<h2>Failed courses</h2><ul>" + failures.String() + "</ul>"
	}

	body := fmt.Sprintf(`
		<h2>Nightly LMS sync finished</h2>
		<div class="info-box">
			<p>Courses synced: <b>%d</b></p>
			<p>Succeeded: <b>%d</b></p>
			<p>Failed: <b>%d</b></p>
			<p>Duration: <b>%.2fs</b></p>
		</div>
		%s
	`, fleet.Total, fleet.Success, fleet.Failed, fleet.ProcessingTimeSeconds, failureBlock)

	subject := fmt.Sprintf("LMS sync report: %d/%d courses synced", fleet.Success, fleet.Total)
	return SendEmail([]string{config.AppConfig.ReportEmail}, subject, getEmailTemplate("LMS Sync Report", body))
}
