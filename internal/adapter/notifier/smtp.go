package notifier

import (
	"context"
	"fmt"
	"net"
	"time"

	"creditos-backend/internal/domain/notification"
	"creditos-backend/internal/domain/solicitud"

	"github.com/wneessen/go-mail"
)

const defaultSMTPTimeout = 10 * time.Second

type SMTPConfig struct {
	Host string
	Port int
	User string
	Pass string
	From string
	// Timeout bounds a whole relay session, dial included. Zero means 10s.
	Timeout time.Duration
}

type sendFunc func(ctx context.Context, msg *mail.Msg) error

// SMTPSink sends HTML mail through a relay. One connection per message.
type SMTPSink struct {
	host    string
	port    int
	user    string
	pass    string
	from    string
	timeout time.Duration
	send    sendFunc
	now     func() time.Time
}

var _ notification.Sink = (*SMTPSink)(nil)

func NewSMTPSink(cfg SMTPConfig) *SMTPSink {
	s := &SMTPSink{
		host:    cfg.Host,
		port:    cfg.Port,
		user:    cfg.User,
		pass:    cfg.Pass,
		from:    cfg.From,
		timeout: cfg.Timeout,
		now:     time.Now,
	}
	if s.timeout <= 0 {
		s.timeout = defaultSMTPTimeout
	}
	s.send = s.dialAndSend
	return s
}

func (s *SMTPSink) SendToken(ctx context.Context, address, name, filingCode, token string) error {
	m, err := renderToken(address, name, filingCode, token, int(solicitud.TokenTTL/time.Minute))
	if err != nil {
		return err
	}
	return s.deliver(ctx, m)
}

func (s *SMTPSink) SendStatus(ctx context.Context, address, name, filingCode, state, reason string) error {
	m, err := renderStatus(address, name, filingCode, state, reason)
	if err != nil {
		return err
	}
	return s.deliver(ctx, m)
}

func (s *SMTPSink) deliver(ctx context.Context, m Email) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	msg, err := s.compose(m)
	if err != nil {
		return err
	}
	if err := s.send(ctx, msg); err != nil {
		return fmt.Errorf("smtp send to %s: %w", m.To, err)
	}
	return nil
}

func (s *SMTPSink) compose(m Email) (*mail.Msg, error) {
	msg := mail.NewMsg()
	if err := msg.From(s.from); err != nil {
		return nil, fmt.Errorf("smtp from %q: %w", s.from, err)
	}
	if err := msg.To(m.To); err != nil {
		return nil, fmt.Errorf("smtp to %q: %w", m.To, err)
	}
	msg.Subject(m.Subject)
	msg.SetDateWithValue(s.now())
	msg.SetBodyString(mail.TypeTextHTML, m.HTML)
	return msg, nil
}

func (s *SMTPSink) dialAndSend(ctx context.Context, msg *mail.Msg) error {
	opts := []mail.Option{
		mail.WithPort(s.port),
		mail.WithTimeout(s.timeout),
		mail.WithTLSPolicy(mail.TLSOpportunistic),
		mail.WithDialContextFunc(s.dialer(ctx)),
	}
	if s.user != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(s.user),
			mail.WithPassword(s.pass),
		)
	}
	c, err := mail.NewClient(s.host, opts...)
	if err != nil {
		return err
	}
	return c.DialAndSendWithContext(ctx, msg)
}

// dialer returns a dial func whose connection carries a deadline for the
// whole session and is closed as soon as ctx is done.
func (s *SMTPSink) dialer(ctx context.Context) mail.DialContextFunc {
	return func(dialCtx context.Context, network, address string) (net.Conn, error) {
		d := net.Dialer{Timeout: s.timeout}
		conn, err := d.DialContext(dialCtx, network, address)
		if err != nil {
			return nil, err
		}
		deadline := time.Now().Add(s.timeout)
		if dl, ok := ctx.Deadline(); ok && dl.Before(deadline) {
			deadline = dl
		}
		if err := conn.SetDeadline(deadline); err != nil {
			_ = conn.Close()
			return nil, err
		}
		stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
		return &ctxConn{Conn: conn, stop: stop}, nil
	}
}

type ctxConn struct {
	net.Conn
	stop func() bool
}

func (c *ctxConn) Close() error {
	c.stop()
	return c.Conn.Close()
}
