package email

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"html/template"
	"mime"
	"net/smtp"
	"strings"
	"time"

	"github.com/Domenick1991/flightbroker/config"
	"github.com/Domenick1991/flightbroker/internal/domain"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

//go:embed templates/*.html
var templatesFS embed.FS

var ticketTemplate = template.Must(template.ParseFS(templatesFS, "templates/ticket.html"))

type sendFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// Sender delivers ticket emails over SMTP.
type Sender struct {
	cfg  config.SMTPConfig
	send sendFunc
	log  logrus.FieldLogger
}

func NewSender(cfg config.SMTPConfig, log logrus.FieldLogger) *Sender {
	return &Sender{
		cfg:  cfg,
		send: smtp.SendMail,
		log:  log.WithField("component", "email"),
	}
}

func (s *Sender) SendTicket(ctx context.Context, notice domain.TicketNotice) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if notice.To == "" {
		return domain.Validation("ticket notice has no recipient")
	}

	msg, err := s.compose(notice)
	if err != nil {
		return err
	}

	var auth smtp.Auth
	if s.cfg.Username != "" {
		auth = smtp.PlainAuth("", s.cfg.Username, s.cfg.Password, s.cfg.Host)
	}
	if err := s.send(s.cfg.Addr(), auth, s.cfg.From, []string{notice.To}, msg); err != nil {
		s.log.WithError(err).WithFields(logrus.Fields{"pnr": notice.PNR, "booking_id": notice.BookingID}).Error("ticket email failed")
		return fmt.Errorf("send ticket email: %w", err)
	}

	s.log.WithFields(logrus.Fields{"pnr": notice.PNR, "booking_id": notice.BookingID}).Info("ticket email sent")
	return nil
}

func (s *Sender) compose(notice domain.TicketNotice) ([]byte, error) {
	body, err := RenderTicket(notice)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", s.cfg.From)
	fmt.Fprintf(&buf, "To: %s\r\n", notice.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", "Your e-ticket for PNR "+notice.PNR))
	fmt.Fprintf(&buf, "Date: %s\r\n", time.Now().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "Message-ID: <%s@%s>\r\n", uuid.NewString(), domainOf(s.cfg.From))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n")
	buf.WriteString("\r\n")
	buf.Write(body)
	return buf.Bytes(), nil
}

func RenderTicket(notice domain.TicketNotice) ([]byte, error) {
	var buf bytes.Buffer
	if err := ticketTemplate.Execute(&buf, notice); err != nil {
		return nil, fmt.Errorf("render ticket email: %w", err)
	}
	return buf.Bytes(), nil
}

func domainOf(addr string) string {
	if i := strings.LastIndex(addr, "@"); i >= 0 {
		return strings.TrimSuffix(addr[i+1:], ">")
	}
	return "localhost"
}
