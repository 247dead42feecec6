package email

import (
	"fmt"
	"html"
	"strings"
)

const defaultAppName = "Helpdesk"

// InviteEmailData carries the credentials handed to a newly invited member.
type InviteEmailData struct {
	Name         string
	Email        string
	Username     string
	TempPassword string
	Role         string
	AppName      string
	BaseURL      string
}

// BuildInviteEmail creates the welcome message sent by the team invite flow.
func BuildInviteEmail(data InviteEmailData) Message {
	appName := orDefault(data.AppName, defaultAppName)
	name := orDefault(data.Name, "there")
	loginURL := strings.TrimRight(data.BaseURL, "/") + "/login"

	subject := fmt.Sprintf("You have been invited to %s", appName)

	textBody := fmt.Sprintf(`Hi %s,

You have been added to %s as %s.

Sign in at %s with:
  Username: %s
  Temporary password: %s

Please change your password after signing in.

Thanks,
The %s Team`,
		name, appName, data.Role, loginURL, data.Username, data.TempPassword, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">Hi %s,</h2>
    <p>You have been added to %s as <strong>%s</strong>.</p>
    <p style="background-color: #f3f4f6; padding: 10px 15px; border-radius: 4px; font-family: monospace;">
        Username: %s<br>
        Temporary password: %s
    </p>
    <p style="text-align: center; margin: 30px 0;">
        <a href="%s" style="background-color: #2563eb; color: white; padding: 12px 24px; text-decoration: none; border-radius: 6px; display: inline-block;">Sign in</a>
    </p>
    <p>Please change your password after signing in.</p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">Thanks,<br>The %s Team</p>
</body>
</html>`,
		esc(name), esc(appName), esc(data.Role), esc(data.Username), esc(data.TempPassword),
		esc(loginURL), esc(appName))

	return Message{
		To:       []string{data.Email},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
	}
}

// ActivityEmailData describes one ticket event for a single recipient.
type ActivityEmailData struct {
	RecipientName  string
	RecipientEmail string
	TicketRef      string
	TicketID       int
	TicketSubject  string
	ActorName      string
	Message        string
	AppName        string
	BaseURL        string
}

// BuildActivityEmail renders a ticket event notification, e.g. a reply or a
// status change.
func BuildActivityEmail(data ActivityEmailData) Message {
	appName := orDefault(data.AppName, defaultAppName)
	name := orDefault(data.RecipientName, "there")
	actor := orDefault(data.ActorName, "Someone")
	ticketURL := fmt.Sprintf("%s/tickets/%d", strings.TrimRight(data.BaseURL, "/"), data.TicketID)

	subject := fmt.Sprintf("[%s] %s: %s", appName, data.TicketRef, data.TicketSubject)

	textBody := fmt.Sprintf(`Hi %s,

%s: %s

View the ticket: %s

The %s Team`,
		name, actor, data.Message, ticketURL, appName)

	htmlBody := fmt.Sprintf(`<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #333; max-width: 600px; margin: 0 auto; padding: 20px;">
    <h2 style="color: #2563eb;">%s</h2>
    <p>Hi %s,</p>
    <p><strong>%s</strong>: %s</p>
    <p><a href="%s">View the ticket</a></p>
    <p style="color: #6b7280; font-size: 14px; margin-top: 30px;">The %s Team</p>
</body>
</html>`,
		esc(data.TicketRef+" "+data.TicketSubject), esc(name), esc(actor), esc(data.Message),
		esc(ticketURL), esc(appName))

	return Message{
		To:       []string{data.RecipientEmail},
		Subject:  subject,
		TextBody: textBody,
		HTMLBody: htmlBody,
		Thread:   &Thread{TicketID: data.TicketID},
	}
}

func orDefault(v, fallback string) string {
	if strings.TrimSpace(v) == "" {
		return fallback
	}
	return v
}

func esc(s string) string { return html.EscapeString(s) }
