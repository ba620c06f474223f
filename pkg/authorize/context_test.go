package authorize

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/Alijeyrad/wscontext/pkg/reqctx"
)

// mockClaims implements reqctx.AuthClaims for testing
type mockClaims struct {
	userID  uuid.UUID
	expired bool
}

func (m *mockClaims) Name() string {
	if m.userID == uuid.Nil {
		return ""
	}
	return m.userID.String()
}
func (m *mockClaims) GetUserID() uuid.UUID     { return m.userID }
func (m *mockClaims) GetSessionID() *uuid.UUID { return nil }
func (m *mockClaims) GetTokenType() string     { return "access" }
func (m *mockClaims) IsExpired() bool          { return m.expired }

func TestSubjectFromContext(t *testing.T) {
	validUUID := uuid.New()

	tests := []struct {
		name        string
		setupCtx    func() context.Context
		wantSubject GroupSubject
		wantErr     bool
	}{
		{
			name: "valid claims",
			setupCtx: func() context.Context {
				return reqctx.WithClaims(context.Background(), &mockClaims{userID: validUUID})
			},
			wantSubject: GroupSubject(validUUID.String()),
		},
		{
			name: "no claims in context",
			setupCtx: func() context.Context {
				return context.Background()
			},
			wantErr: true,
		},
		{
			name: "expired claims",
			setupCtx: func() context.Context {
				return reqctx.WithClaims(context.Background(), &mockClaims{userID: validUUID, expired: true})
			},
			wantErr: true,
		},
		{
			name: "nil uuid in claims",
			setupCtx: func() context.Context {
				return reqctx.WithClaims(context.Background(), &mockClaims{userID: uuid.Nil})
			},
			wantErr: true,
		},
		{
			name: "scope identity wins over claims",
			setupCtx: func() context.Context {
				ctx := reqctx.WithClaims(context.Background(), &mockClaims{userID: uuid.New()})
				scope := reqctx.NewScope(reqctx.ScopeConfig{
					Identity: reqctx.IdentityOf(&mockClaims{userID: validUUID}),
				})
				return reqctx.WithScope(ctx, scope)
			},
			wantSubject: GroupSubject(validUUID.String()),
		},
		{
			name: "anonymous scope",
			setupCtx: func() context.Context {
				ctx := reqctx.WithClaims(context.Background(), &mockClaims{userID: validUUID})
				return reqctx.WithScope(ctx, reqctx.NewScope(reqctx.ScopeConfig{}))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := tt.setupCtx()
			subject, err := SubjectFromContext(ctx)
			if tt.wantErr {
				if err == nil {
					t.Error("Expected error but got nil")
				}
			} else {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				if subject != tt.wantSubject {
					t.Errorf("SubjectFromContext() = %q, want %q", subject, tt.wantSubject)
				}
			}
		})
	}
}

func TestUserIDFromContext(t *testing.T) {
	id := uuid.New()
	ctx := reqctx.WithClaims(context.Background(), &mockClaims{userID: id})

	got, err := UserIDFromContext(ctx)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if got != id {
		t.Errorf("UserIDFromContext() = %v, want %v", got, id)
	}

	if _, err := UserIDFromContext(context.Background()); err == nil {
		t.Error("Expected error for empty context")
	}
}

func TestDomainFromScope(t *testing.T) {
	if got := DomainFromScope(context.Background()); got != DomainSys {
		t.Errorf("DomainFromScope() outside a request = %q, want %q", got, DomainSys)
	}

	scope := reqctx.NewScope(reqctx.ScopeConfig{Endpoint: "greeter"})
	ctx := reqctx.WithScope(context.Background(), scope)
	if got := DomainFromScope(ctx); got != Domain("endpoint:greeter") {
		t.Errorf("DomainFromScope() = %q, want endpoint:greeter", got)
	}

	scope.End()
	if got := DomainFromScope(ctx); got != DomainSys {
		t.Errorf("DomainFromScope() after End = %q, want %q", got, DomainSys)
	}
}
