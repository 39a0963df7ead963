package model

import "github.com/polkiloo/routeshop/internal/domain/command"

// Button is an inline action attached to an outgoing message. URL buttons open a link instead.
type Button struct {
	Label  string
	Action command.Action
	URL    string
}

// Message is an outgoing chat notification.
type Message struct {
	ChatID  int64
	Text    string
	Buttons []Button
}
