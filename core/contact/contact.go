// Package contact handles the public contact form: every inquiry is acknowledged to its sender, and
// staff get a single digest per quiet period.
package contact

import (
	"context"
	"net/mail"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/lobitocorner/lobito/core"
	"github.com/lobitocorner/lobito/core/utils"
)

const ackExcerptLen = 280

var nowFunc = func() time.Time { return time.Now().UTC() } // mockable

type (
	Inquiry struct {
		Name       string    `form:"name" json:"name" validate:"required,max=120"`
		Email      string    `form:"email" json:"email" validate:"required,simple_email"`
		Message    string    `form:"message" json:"message" validate:"required,max=4000"`
		ReceivedAt time.Time `form:"-" json:"received_at"`
	}

	Service interface {
		Submit(ctx context.Context, inq Inquiry) error
		// Flush sends the pending staff digest right away, if any.
		Flush()
	}

	service struct {
		mailSvc core.EmailService
		staff   mail.Address
		digest  *utils.Debouncer[time.Time]

		mu      sync.Mutex
		pending []Inquiry
	}

	digestEntry struct {
		Name       string
		Email      string
		Message    string
		ReceivedAt string
	}
)

func (inq *Inquiry) Validate(validate *validator.Validate) error {
	inq.Name = core.CleanString(inq.Name)
	inq.Email = core.CleanString(inq.Email, true /* lower */)
	inq.Message = core.CleanString(inq.Message)
	return validate.Struct(inq)
}

func NewService(mailSvc core.EmailService, conf *core.Config) Service {
	svc := &service{
		mailSvc: mailSvc,
		staff:   conf.Email.StaffEmail(),
	}
	svc.digest = utils.NewDebouncer(conf.Email.DigestWindow, svc.sendDigest)
	return svc
}

// Submit acknowledges a validated inquiry and queues it for the staff digest.
func (svc *service) Submit(_ context.Context, inq Inquiry) error {
	if inq.ReceivedAt.IsZero() {
		inq.ReceivedAt = nowFunc()
	}

	svc.mu.Lock()
	svc.pending = append(svc.pending, inq)
	svc.mu.Unlock()
	svc.digest.Call(inq.ReceivedAt)

	svc.mailSvc.SendMessages(&core.EmailMessage{
		ID:           utils.GenerateID(),
		To:           []mail.Address{{Name: inq.Name, Address: inq.Email}},
		Subject:      "We received your message",
		TemplateName: "contact_ack",
		TemplateData: map[string]interface{}{
			"Name":    inq.Name,
			"Message": utils.Truncate(inq.Message, ackExcerptLen),
		},
	})
	return nil
}

func (svc *service) Flush() {
	if svc.digest.Cancel() {
		svc.sendDigest(nowFunc())
	}
}

func (svc *service) sendDigest(last time.Time) {
	svc.mu.Lock()
	inquiries := svc.pending
	svc.pending = nil
	svc.mu.Unlock()

	if len(inquiries) == 0 {
		return
	}
	entries := make([]digestEntry, 0, len(inquiries))
	for _, inq := range inquiries {
		entries = append(entries, digestEntry{
			Name:       inq.Name,
			Email:      inq.Email,
			Message:    inq.Message,
			ReceivedAt: utils.FormatDate(inq.ReceivedAt) + " " + inq.ReceivedAt.Format("15:04 MST"),
		})
	}
	svc.mailSvc.SendMessages(&core.EmailMessage{
		ID:           utils.GenerateID(),
		To:           []mail.Address{svc.staff},
		Subject:      "Contact form digest, last inquiry on " + utils.FormatDate(last),
		TemplateName: "contact_digest",
		TemplateData: map[string]interface{}{
			"Inquiries": entries,
		},
	})
}
