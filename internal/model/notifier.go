package model

// Notifier delivers alert summaries to an operator channel.
type Notifier interface {
	Send(subject, body string) error
}
