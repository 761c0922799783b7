package core

import "net/mail"

// AppMetadata describes the site itself.
type AppMetadata struct {
	Name        string
	Tagline     string
	Description string
	URL         string

	// Transactional emails are always sent from and answered to these addresses.
	FromEmail    mail.Address
	ReplyToEmail mail.Address
}

var Meta = AppMetadata{
	Name:        "Lobito Corner",
	Tagline:     "Tutoring that meets you where you are",
	Description: "Lobito Corner connects students with qualified tutors for one-to-one and small group lessons.",
	URL:         "https://lobitocorner.com",

	FromEmail:    mail.Address{Name: "Lobito Corner", Address: "noreply@lobitocorner.com"},
	ReplyToEmail: mail.Address{Name: "Lobito Corner", Address: "hello@lobitocorner.com"},
}
