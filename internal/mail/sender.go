// Package mail renders and delivers outgoing e-mail.
package mail

import "context"

// Message is a rendered e-mail.
type Message struct {
	From    string
	To      string
	Subject string
	Text    string
	HTML    string
}

// Sender delivers a single message.
type Sender interface {
	Send(ctx context.Context, msg Message) error
}
