package email

import (
	"context"
	"errors"
	"strings"
	"testing"
)

func TestBuildInviteEmail(t *testing.T) {
	m := BuildInviteEmail(InviteEmailData{
		Name:         "Nina <admin>",
		Email:        "nina@example.com",
		Username:     "nina",
		TempPassword: "s3cretPW",
		Role:         "agent",
		BaseURL:      "https://help.example.com/",
	})

	if got := m.To; len(got) != 1 || got[0] != "nina@example.com" {
		t.Fatalf("to = %v", got)
	}
	if m.Subject != "You have been invited to Helpdesk" {
		t.Fatalf("subject = %q", m.Subject)
	}
	for _, want := range []string{"nina", "s3cretPW", "https://help.example.com/login"} {
		if !strings.Contains(m.TextBody, want) {
			t.Errorf("text body missing %q", want)
		}
	}
	if strings.Contains(m.HTMLBody, "<admin>") {
		t.Error("html body must escape user input")
	}
}

func TestBuildActivityEmail(t *testing.T) {
	m := BuildActivityEmail(ActivityEmailData{
		RecipientName:  "John Smith",
		RecipientEmail: "john@example.com",
		TicketRef:      "#TK-2",
		TicketID:       2,
		TicketSubject:  "Payment processing error",
		ActorName:      "Adam Johnson",
		Message:        "Replied to John Smith on #TK-2",
		AppName:        "Acme Support",
		BaseURL:        "https://help.example.com",
	})

	if m.Subject != "[Acme Support] #TK-2: Payment processing error" {
		t.Fatalf("subject = %q", m.Subject)
	}
	if !strings.Contains(m.TextBody, "https://help.example.com/tickets/2") {
		t.Errorf("text body missing ticket link: %s", m.TextBody)
	}
	if m.Thread == nil || m.Thread.TicketID != 2 {
		t.Errorf("thread = %+v, want ticket 2", m.Thread)
	}
}

func TestComposeValidation(t *testing.T) {
	tests := []struct {
		name string
		from string
		msg  Message
	}{
		{"no from", "", Message{To: []string{"a@b.c"}, Subject: "s", TextBody: "b"}},
		{"no recipient", "help@b.c", Message{To: []string{" "}, Subject: "s", TextBody: "b"}},
		{"no subject", "help@b.c", Message{To: []string{"a@b.c"}, TextBody: "b"}},
		{"no body", "help@b.c", Message{To: []string{"a@b.c"}, Subject: "s"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := &Client{cfg: Config{From: tc.from}}
			_, err := c.compose(tc.msg)
			var invalid ErrInvalidMessage
			if !errors.As(err, &invalid) {
				t.Fatalf("got %v, want ErrInvalidMessage", err)
			}
		})
	}
}

func TestComposeThreadsByTicket(t *testing.T) {
	c := &Client{cfg: Config{From: "support@help.example.com", AppName: "Acme Support"}}
	msg, err := c.compose(Message{
		To:       []string{"john@example.com"},
		Subject:  "s",
		TextBody: "b",
		Thread:   &Thread{TicketID: 7},
	})
	if err != nil {
		t.Fatal(err)
	}
	want := "<ticket-7@help.example.com>"
	if got := msg.GetHeader("In-Reply-To"); len(got) != 1 || got[0] != want {
		t.Fatalf("In-Reply-To = %v, want %s", got, want)
	}
	if got := msg.GetHeader("Message-ID"); len(got) != 1 || !strings.HasSuffix(got[0], "@help.example.com>") {
		t.Fatalf("Message-ID = %v", got)
	}
	if got := msg.GetHeader("From"); len(got) != 1 || !strings.Contains(got[0], "Acme Support") {
		t.Fatalf("From = %v", got)
	}
}

func TestSendDisabled(t *testing.T) {
	c, err := New(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	if c.Enabled() {
		t.Fatal("default config must be disabled")
	}
	err = c.Send(context.Background(), Message{To: []string{"x@example.com"}, Subject: "s", TextBody: "b"})
	if !IsDisabled(err) {
		t.Fatalf("got %v, want ErrDisabled", err)
	}
}

func TestNewRequiresHostWhenEnabled(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Enabled = true
	cfg.From = "support@example.com"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error without smtp host")
	}

	cfg.SMTP.Host = "smtp.example.com"
	cfg.From = "not an address"
	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for malformed from")
	}
}
