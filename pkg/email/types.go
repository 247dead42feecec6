package email

import "fmt"

// Message is one outgoing notification. Thread, when set, makes every mail
// about the same ticket land in one conversation in the recipient's client.
type Message struct {
	To       []string
	ReplyTo  string
	Subject  string
	TextBody string
	HTMLBody string
	Thread   *Thread
}

// Thread ties a message to a ticket.
type Thread struct {
	TicketID int
}

// root is the synthetic Message-ID every mail about the ticket refers back to.
func (t Thread) root(domain string) string {
	return fmt.Sprintf("<ticket-%d@%s>", t.TicketID, domain)
}
