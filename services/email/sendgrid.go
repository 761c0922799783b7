package emailsvc

import (
	"fmt"
	"net/http"
	"net/mail"
	"sync"

	"github.com/kat-co/vala"
	"github.com/sendgrid/sendgrid-go"
	sgmail "github.com/sendgrid/sendgrid-go/helpers/mail"

	"github.com/lobitocorner/lobito/core"
)

var (
	host     = "https://api.sendgrid.com" // overridden in tests
	endpoint = "/v3/mail/send"
)

type SendgridService struct {
	key        string
	status     core.EmailConfigStatus
	from       *sgmail.Email
	replyTo    *sgmail.Email
	subjPrefix string
	logger     core.Logger
	wg         sync.WaitGroup
}

var _ core.EmailService = (*SendgridService)(nil)

// NewSendgridService builds the SendGrid client for apiKey. A missing or placeholder key is only warned
// about: the service is still returned but drops every message.
func NewSendgridService(apiKey string, logger core.Logger) *SendgridService {
	vala.BeginValidation().Validate(
		vala.IsNotNil(logger, "logger"),
	).CheckAndPanic()

	status := core.CheckEmailConfig(apiKey)
	if !status.Configured {
		logger.Warn(status.Message)
	}
	return &SendgridService{
		key:        apiKey,
		status:     status,
		from:       sgmail.NewEmail(core.Meta.FromEmail.Name, core.Meta.FromEmail.Address),
		replyTo:    sgmail.NewEmail(core.Meta.ReplyToEmail.Name, core.Meta.ReplyToEmail.Address),
		subjPrefix: "[" + core.Meta.Name + "] ",
		logger:     logger,
	}
}

func (svc *SendgridService) SendMessages(messages ...*core.EmailMessage) {
	for _, msg := range messages {
		msg := msg
		svc.wg.Add(1)
		go func() {
			defer svc.wg.Done()
			if err := msg.Render(); err != nil {
				svc.logger.Error(fmt.Sprintf("rendering email: %v", err), err)
				return
			}
			if !msg.HasRecipients() || !msg.HasContent() {
				return
			}
			if !svc.status.Configured {
				svc.logger.Warn(fmt.Sprintf("email %q to %s not sent: %s", msg.Subject, msg.To[0].Address, svc.status.Message))
				return
			}
			svc.send(*msg)
		}()
	}
}

// Wait blocks until every message handed to SendMessages has been processed.
func (svc *SendgridService) Wait() { svc.wg.Wait() }

func (svc *SendgridService) prepare(msg core.EmailMessage) *sgmail.SGMailV3 {
	p := sgmail.NewPersonalization()
	p.Subject = svc.subjPrefix + msg.Subject

	for _, to := range msg.To {
		p.AddTos(getSGEmail(to))
	}
	for _, cc := range msg.Cc {
		p.AddCCs(getSGEmail(cc))
	}
	for _, bcc := range msg.Bcc {
		p.AddBCCs(getSGEmail(bcc))
	}

	m := sgmail.NewV3Mail()
	m.SetFrom(svc.from)
	m.SetReplyTo(svc.replyTo)
	m.AddPersonalizations(p)
	if msg.ID != "" {
		m.SetHeader("X-Message-ID", msg.ID)
	}

	if msg.TextContent != "" {
		m.AddContent(sgmail.NewContent("text/plain", msg.TextContent))
	}
	if msg.HTMLContent != "" {
		m.AddContent(sgmail.NewContent("text/html", msg.HTMLContent))
	}
	return m
}

func getSGEmail(addr mail.Address) *sgmail.Email {
	return sgmail.NewEmail(addr.Name, addr.Address)
}

func (svc *SendgridService) send(msg core.EmailMessage) {
	req := sendgrid.GetRequest(svc.key, endpoint, host)
	req.Method = http.MethodPost
	req.Body = sgmail.GetRequestBody(svc.prepare(msg))

	res, err := sendgrid.API(req)
	if err != nil {
		svc.logger.Error(fmt.Sprintf("sending email: %v", err), err)
	} else if res.StatusCode >= http.StatusBadRequest {
		svc.logger.Error(fmt.Sprintf("sending email - status: %d - Body: %s", res.StatusCode, res.Body))
	}
}
