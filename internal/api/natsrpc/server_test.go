package natsrpc

import (
	"context"
	"net/http"
	"strconv"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/wscontext/config"
	"github.com/Alijeyrad/wscontext/internal/dispatch"
	"github.com/Alijeyrad/wscontext/internal/service/session"
	"github.com/Alijeyrad/wscontext/pkg/epr"
	pasetotoken "github.com/Alijeyrad/wscontext/pkg/paseto"
	"github.com/Alijeyrad/wscontext/pkg/reqctx"
)

func newTestDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	refs, err := epr.NewBuilder(epr.KindW3C)
	require.NoError(t, err)

	reg := dispatch.NewRegistry()
	reg.MustRegister(dispatch.Endpoint{
		Name: "greeter",
		Operations: map[string]dispatch.Handler{
			"whoami": dispatch.HandlerFunc(func(ctx context.Context, req *dispatch.Request) (*dispatch.Response, error) {
				id, err := reqctx.CallerIdentity(ctx)
				if err != nil {
					return nil, err
				}
				view, err := reqctx.MessageContext(ctx)
				if err != nil {
					return nil, err
				}
				name := id.Name()
				if name == "" {
					name = "anonymous"
				}
				return &dispatch.Response{
					Body:        []byte(name + "|" + view[reqctx.PropTransport].(string) + "|" + string(req.Body)),
					ContentType: "text/plain",
				}, nil
			}),
		},
	})

	d, err := dispatch.New(dispatch.DefaultConfig(), dispatch.Deps{Registry: reg, References: refs})
	require.NoError(t, err)
	return d
}

func newTestManager(t *testing.T) *pasetotoken.Manager {
	t.Helper()
	keys := pasetotoken.NewLocalKeys()
	m, err := pasetotoken.New(pasetotoken.Config{
		Mode:      keys.Mode,
		Issuer:    "wsctx-test",
		Audience:  "endpoints",
		AccessTTL: time.Minute,
	}, keys)
	require.NoError(t, err)
	return m
}

func testConfig(required bool) *config.Config {
	cfg := &config.Config{}
	cfg.Nats.SubjectPrefix = "wsctx.endpoints"
	cfg.Nats.QueueGroup = "wsctx"
	cfg.Authentication.Required = required
	return cfg
}

func message(data string, headers map[string]string) *nats.Msg {
	msg := nats.NewMsg("wsctx.endpoints.greeter.whoami")
	msg.Data = []byte(data)
	for k, v := range headers {
		msg.Header.Set(k, v)
	}
	return msg
}

func status(t *testing.T, msg *nats.Msg) int {
	t.Helper()
	code, err := strconv.Atoi(msg.Header.Get(HeaderStatus))
	require.NoError(t, err)
	return code
}

func TestSubject(t *testing.T) {
	assert.Equal(t, "wsctx.endpoints.greeter.whoami", Subject("wsctx.endpoints", "greeter", "whoami"))
}

func TestServeAnonymous(t *testing.T) {
	s := New(nil, newTestDispatcher(t), testConfig(false), nil, newTestManager(t), nil)

	reply := s.Serve(context.Background(), "greeter", "whoami", message("hi", map[string]string{HeaderRequestID: "req-42"}))

	assert.Equal(t, http.StatusOK, status(t, reply))
	assert.Equal(t, "anonymous|nats|hi", string(reply.Data))
	assert.Equal(t, "req-42", reply.Header.Get(HeaderRequestID))
	assert.Equal(t, "text/plain", reply.Header.Get(HeaderContentType))
}

func TestServeAuthenticated(t *testing.T) {
	mgr := newTestManager(t)
	tok, err := mgr.IssueAccess(pasetotoken.Subject{Name: "alice"})
	require.NoError(t, err)

	s := New(nil, newTestDispatcher(t), testConfig(true), nil, mgr, nil)
	reply := s.Serve(context.Background(), "greeter", "whoami", message("", map[string]string{
		HeaderAuthorization: "Bearer " + tok,
	}))

	assert.Equal(t, http.StatusOK, status(t, reply))
	assert.Equal(t, "alice|nats|", string(reply.Data))
	assert.NotEmpty(t, reply.Header.Get(HeaderRequestID))
}

func TestServeRejects(t *testing.T) {
	mgr := newTestManager(t)
	refresh, err := mgr.IssueRefresh(pasetotoken.Subject{Name: "alice"})
	require.NoError(t, err)

	tests := []struct {
		name      string
		required  bool
		operation string
		headers   map[string]string
		want      int
	}{
		{"missing token when required", true, "whoami", nil, http.StatusUnauthorized},
		{"garbage token", false, "whoami", map[string]string{HeaderAuthorization: "Bearer nope"}, http.StatusUnauthorized},
		{"refresh token", false, "whoami", map[string]string{HeaderAuthorization: "Bearer " + refresh}, http.StatusUnauthorized},
		{"unknown operation", false, "missing", nil, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(nil, newTestDispatcher(t), testConfig(tt.required), nil, mgr, nil)
			reply := s.Serve(context.Background(), "greeter", tt.operation, message("", tt.headers))
			assert.Equal(t, tt.want, status(t, reply))
			assert.NotEmpty(t, reply.Header.Get(HeaderError))
			assert.Empty(t, reply.Data)
		})
	}
}

type fakeSessions struct {
	live map[uuid.UUID]string
}

func (f *fakeSessions) Create(context.Context, string) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (f *fakeSessions) Check(_ context.Context, id uuid.UUID) (string, error) {
	subject, ok := f.live[id]
	if !ok {
		return "", session.ErrSessionNotFound
	}
	return subject, nil
}

func (f *fakeSessions) Revoke(_ context.Context, id uuid.UUID) error {
	delete(f.live, id)
	return nil
}

func TestServeSessions(t *testing.T) {
	mgr := newTestManager(t)
	live, revoked := uuid.New(), uuid.New()
	sessions := &fakeSessions{live: map[uuid.UUID]string{live: "alice"}}

	tests := []struct {
		name    string
		session *uuid.UUID
		want    int
	}{
		{"live session", &live, http.StatusOK},
		{"revoked session", &revoked, http.StatusUnauthorized},
		{"no session claim", nil, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok, err := mgr.IssueAccess(pasetotoken.Subject{Name: "alice", SessionID: tt.session})
			require.NoError(t, err)

			s := New(nil, newTestDispatcher(t), testConfig(true), nil, mgr, nil).WithSessions(sessions)
			reply := s.Serve(context.Background(), "greeter", "whoami", message("", map[string]string{
				HeaderAuthorization: "Bearer " + tok,
			}))
			assert.Equal(t, tt.want, status(t, reply))
		})
	}
}

func TestCloseCancelsInFlightHandlers(t *testing.T) {
	refs, err := epr.NewBuilder(epr.KindW3C)
	require.NoError(t, err)

	started := make(chan struct{})
	done := make(chan error, 1)
	reg := dispatch.NewRegistry()
	reg.MustRegister(dispatch.Endpoint{
		Name: "greeter",
		Operations: map[string]dispatch.Handler{
			"wait": dispatch.HandlerFunc(func(ctx context.Context, _ *dispatch.Request) (*dispatch.Response, error) {
				close(started)
				<-ctx.Done()
				done <- ctx.Err()
				return nil, ctx.Err()
			}),
		},
	})
	cfg := dispatch.DefaultConfig()
	cfg.HandlerTimeout = 0
	d, err := dispatch.New(cfg, dispatch.Deps{Registry: reg, References: refs})
	require.NoError(t, err)

	s := New(nil, d, testConfig(false), nil, nil, nil)
	go s.handler("greeter", "wait")(message("", nil))

	<-started
	require.NoError(t, s.Close())

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("handler context was not cancelled by Close")
	}
}
