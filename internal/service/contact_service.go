package service

import (
	"context"
	"fmt"
	"html"

	"scaffold/internal/mailer"
	"scaffold/internal/models"
	"scaffold/internal/observability"
	"scaffold/internal/validation"
)

// ContactResult is the outcome of a contact submission.
type ContactResult string

const (
	ContactDelivered    ContactResult = "delivered"
	ContactEmailProblem ContactResult = "email_problem"
)

const acknowledgementSubject = "Thanks for contacting us."

const acknowledgementText = `This is an automated response confirming our receipt of your
contact form submission. Please do not reply to this message, as
replies are not monitored for this address. Your message will be
reviewed by a human and we'll get back to you soon!`

// ContactInput is the contact form.
type ContactInput struct {
	Email   string
	Name    string
	Message string
}

// ContactService forwards contact messages to the operator and acknowledges
// them to the sender.
type ContactService struct {
	sender mailer.Sender
}

func NewContactService(sender mailer.Sender) *ContactService {
	return &ContactService{sender: sender}
}

// Submit sends the message to the operator and, only if that succeeded, an
// acknowledgement to the submitter. Either failure yields ContactEmailProblem;
// there is no retry.
func (s *ContactService) Submit(ctx context.Context, in ContactInput) (ContactResult, error) {
	if err := validation.ValidateContact(in.Email, in.Name, in.Message); err != nil {
		return "", models.NewValidationError(err.Error())
	}

	subject := in.Name + " contact form submission"
	forwarded := s.send(ctx, mailer.Message{
		To:      s.sender.Address(),
		Subject: subject,
		Text:    in.Message,
		HTML: fmt.Sprintf("<html><head></head><body><h1>%s</h1><p>%s</p><br><p>Sent from: %s</p></body></html>",
			html.EscapeString(subject), html.EscapeString(in.Message), html.EscapeString(in.Email)),
	})
	if !forwarded {
		return ContactEmailProblem, nil
	}

	acknowledged := s.send(ctx, mailer.Message{
		To:      in.Email,
		Subject: acknowledgementSubject,
		Text:    acknowledgementText,
		HTML: fmt.Sprintf("<html><head></head><body><h1>%s</h1><p>%s</p><br><p>Best Regards,</p><p>Mailbot</p></body></html>",
			acknowledgementSubject, html.EscapeString(acknowledgementText)),
	})
	if !acknowledged {
		return ContactEmailProblem, nil
	}
	return ContactDelivered, nil
}

func (s *ContactService) send(ctx context.Context, msg mailer.Message) bool {
	ok := s.sender.Send(ctx, msg)
	observability.RecordResult(observability.MailDeliveries, ok)
	return ok
}
