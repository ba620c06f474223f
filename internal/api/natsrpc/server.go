// Package natsrpc serves endpoints over NATS request/reply. Each operation is
// subscribed as <prefix>.<endpoint>.<operation> in a queue group so that
// replicas share the load.
package natsrpc

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"go.uber.org/fx"

	"github.com/Alijeyrad/wscontext/config"
	"github.com/Alijeyrad/wscontext/internal/dispatch"
	"github.com/Alijeyrad/wscontext/internal/service/session"
	"github.com/Alijeyrad/wscontext/pkg/authorize"
	"github.com/Alijeyrad/wscontext/pkg/epr"
	"github.com/Alijeyrad/wscontext/pkg/logs"
	"github.com/Alijeyrad/wscontext/pkg/observability"
	pasetotoken "github.com/Alijeyrad/wscontext/pkg/paseto"
	"github.com/Alijeyrad/wscontext/pkg/reqctx"
)

const (
	TransportNATS = "nats"

	HeaderRequestID     = "X-Request-Id"
	HeaderAuthorization = "Authorization"
	HeaderContentType   = "Content-Type"

	// HeaderStatus carries an HTTP status code on every reply.
	HeaderStatus = "Wsctx-Status"
	HeaderError  = "Wsctx-Error"
)

// Module provides the NATS transport to the fx graph.
var Module = fx.Module("nats", fx.Provide(NewServer))

type Params struct {
	fx.In

	Lifecycle  fx.Lifecycle
	Cfg        *config.Config
	Dispatcher *dispatch.Dispatcher
	Conn       *nats.Conn               `optional:"true"`
	Auth       authorize.IAuthorization `optional:"true"`
	PasetoMgr  *pasetotoken.Manager     `optional:"true"`
	Sessions   session.Service          `optional:"true"`
	Logger     *slog.Logger             `optional:"true"`
}

type Server struct {
	nc       *nats.Conn
	d        *dispatch.Dispatcher
	auth     authorize.IAuthorization
	mgr      *pasetotoken.Manager
	sessions session.Service
	required bool
	prefix   string
	queue    string
	logger   *slog.Logger

	// base parents every message context and is cancelled by Close.
	base   context.Context
	cancel context.CancelFunc

	subs []*nats.Subscription
}

// NewServer returns the transport. Without a connection (NATS disabled) the
// server exists but never subscribes.
func NewServer(p Params) *Server {
	s := New(p.Conn, p.Dispatcher, p.Cfg, p.Auth, p.PasetoMgr, p.Logger)
	if p.Cfg.Authentication.RequireSession {
		s.WithSessions(p.Sessions)
	}
	if p.Conn == nil {
		return s
	}

	p.Lifecycle.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return s.Subscribe()
		},
		OnStop: func(ctx context.Context) error {
			return s.Close()
		},
	})
	return s
}

func New(nc *nats.Conn, d *dispatch.Dispatcher, cfg *config.Config, auth authorize.IAuthorization, mgr *pasetotoken.Manager, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	base, cancel := context.WithCancel(context.Background())
	return &Server{
		base:     base,
		cancel:   cancel,
		nc:       nc,
		d:        d,
		auth:     auth,
		mgr:      mgr,
		required: cfg.Authentication.Required,
		prefix:   cfg.Nats.SubjectPrefix,
		queue:    cfg.Nats.QueueGroup,
		logger:   logger,
	}
}

// WithSessions makes s reject tokens whose session no longer exists.
func (s *Server) WithSessions(sessions session.Service) *Server {
	s.sessions = sessions
	return s
}

// Subject returns the subject an operation is served on.
func Subject(prefix, endpoint, operation string) string {
	return prefix + "." + endpoint + "." + operation
}

// Subscribe subscribes every registered operation.
func (s *Server) Subscribe() error {
	reg := s.d.Registry()
	for _, ep := range reg.Names() {
		for _, op := range reg.Operations(ep) {
			subject := Subject(s.prefix, ep, op)
			sub, err := s.nc.QueueSubscribe(subject, s.queue, s.handler(ep, op))
			if err != nil {
				_ = s.Unsubscribe()
				return fmt.Errorf("nats: subscribe %s: %w", subject, err)
			}
			s.subs = append(s.subs, sub)
		}
	}
	s.logger.Info("nats transport: started", "subscriptions", len(s.subs), "queue", s.queue)
	return nil
}

// Unsubscribe drains all subscriptions.
func (s *Server) Unsubscribe() error {
	var errs []error
	for _, sub := range s.subs {
		if err := sub.Drain(); err != nil {
			errs = append(errs, err)
		}
	}
	s.subs = nil
	return errors.Join(errs...)
}

// Close cancels the contexts of in-flight handlers and drains all
// subscriptions.
func (s *Server) Close() error {
	s.cancel()
	return s.Unsubscribe()
}

func (s *Server) handler(endpoint, operation string) nats.MsgHandler {
	return func(msg *nats.Msg) {
		reply := s.Serve(s.base, endpoint, operation, msg)
		if msg.Reply == "" {
			return
		}
		if err := msg.RespondMsg(reply); err != nil {
			s.logger.Warn("nats transport: reply failed", "subject", msg.Subject, "error", err)
		}
	}
}

// Serve handles one message and returns the reply to send.
func (s *Server) Serve(ctx context.Context, endpoint, operation string, msg *nats.Msg) *nats.Msg {
	headers := map[string][]string(msg.Header)

	ctx, span := observability.StartServerSpan(ctx, endpoint+"."+operation, headers)
	defer span.End()

	rid := msg.Header.Get(HeaderRequestID)
	if rid == "" {
		rid = uuid.NewString()
	}
	meta := &reqctx.RequestMeta{
		RequestID:   rid,
		Transport:   TransportNATS,
		RequestedAt: time.Now(),
	}
	ctx = reqctx.WithRequestMeta(ctx, meta)

	ctx, status := s.authenticate(ctx, msg.Header.Get(HeaderAuthorization))
	if status != 0 {
		return errorReply(rid, status, http.StatusText(status))
	}
	if status := s.authorize(ctx, endpoint, operation); status != 0 {
		return errorReply(rid, status, http.StatusText(status))
	}

	resp, err := s.d.Dispatch(ctx, &dispatch.Request{
		Endpoint:  endpoint,
		Operation: operation,
		Body:      msg.Data,
		Headers:   headers,
		Meta:      meta,
	})
	if err != nil {
		status, text := statusOf(err)
		if status == http.StatusInternalServerError {
			logs.FromContext(ctx, s.logger).Error("nats transport: request failed", "error", err)
		}
		return errorReply(rid, status, text)
	}

	out := nats.NewMsg("")
	out.Data = resp.Body
	for k, v := range resp.Headers {
		out.Header.Set(k, v)
	}
	if resp.ContentType != "" {
		out.Header.Set(HeaderContentType, resp.ContentType)
	}
	out.Header.Set(HeaderRequestID, rid)
	out.Header.Set(HeaderStatus, strconv.Itoa(http.StatusOK))
	observability.InjectHeaders(ctx, out.Header)
	return out
}

// authenticate mirrors the HTTP bearer check. A non-zero status rejects the message.
func (s *Server) authenticate(ctx context.Context, header string) (context.Context, int) {
	if s.mgr == nil {
		return ctx, 0
	}
	tok, ok := pasetotoken.BearerToken(header)
	if !ok {
		if s.required {
			return ctx, http.StatusUnauthorized
		}
		return ctx, 0
	}
	claims, err := s.mgr.VerifyAccess(tok)
	if err != nil {
		return ctx, http.StatusUnauthorized
	}
	if s.sessions != nil && claims.SessionID != nil {
		if _, err := s.sessions.Check(ctx, *claims.SessionID); err != nil {
			if !errors.Is(err, session.ErrSessionNotFound) {
				logs.FromContext(ctx, s.logger).Error("nats transport: session check failed", "error", err)
			}
			return ctx, http.StatusUnauthorized
		}
	}
	return reqctx.WithClaims(ctx, claims), 0
}

func (s *Server) authorize(ctx context.Context, endpoint, operation string) int {
	if s.auth == nil {
		return 0
	}
	subject := authorize.SubjectOrAnonymous(ctx)
	allowed, err := authorize.EnforceForEndpoint(ctx, s.auth, subject, endpoint,
		authorize.OperationResource(endpoint, operation), authorize.ActionInvoke)
	switch {
	case allowed:
		return 0
	case err != nil:
		logs.FromContext(ctx, s.logger).Error("nats transport: authorization failed", "error", err)
		return http.StatusInternalServerError
	case subject == authorize.AnonymousSubject:
		return http.StatusUnauthorized
	default:
		return http.StatusForbidden
	}
}

func statusOf(err error) (int, string) {
	switch {
	case errors.Is(err, dispatch.ErrEndpointNotFound), errors.Is(err, dispatch.ErrOperationNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, dispatch.ErrBadRequest), errors.Is(err, epr.ErrUnsupportedKind):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "handler timed out"
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

func errorReply(rid string, status int, text string) *nats.Msg {
	out := nats.NewMsg("")
	out.Header.Set(HeaderRequestID, rid)
	out.Header.Set(HeaderStatus, strconv.Itoa(status))
	out.Header.Set(HeaderError, text)
	return out
}
