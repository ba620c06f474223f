package pasetotoken

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v3"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/wscontext/pkg/reqctx"
)

func newTestManager(t *testing.T, keys Keys) *Manager {
	t.Helper()
	m, err := New(Config{
		Mode:      keys.Mode,
		Issuer:    "wsctx-test",
		Audience:  "endpoints",
		AccessTTL: time.Minute,
	}, keys)
	require.NoError(t, err)
	return m
}

func TestIssueAndVerify(t *testing.T) {
	for name, keys := range map[string]Keys{
		"local":  NewLocalKeys(),
		"public": NewPublicKeys(),
	} {
		t.Run(name, func(t *testing.T) {
			m := newTestManager(t, keys)
			uid := uuid.New()
			sid := uuid.New()

			tok, err := m.IssueAccess(Subject{Name: "alice", UserID: uid, SessionID: &sid})
			require.NoError(t, err)

			claims, err := m.Verify(tok)
			require.NoError(t, err)
			assert.Equal(t, "alice", claims.Name())
			assert.Equal(t, uid, claims.GetUserID())
			require.NotNil(t, claims.GetSessionID())
			assert.Equal(t, sid, *claims.GetSessionID())
			assert.Equal(t, "access", claims.GetTokenType())
			assert.False(t, claims.IsExpired())
		})
	}
}

func TestSubjectDefaultsToUserID(t *testing.T) {
	m := newTestManager(t, NewLocalKeys())
	uid := uuid.New()

	tok, err := m.IssueRefresh(Subject{UserID: uid})
	require.NoError(t, err)

	claims, err := m.Verify(tok)
	require.NoError(t, err)
	assert.Equal(t, uid.String(), claims.Name())
	assert.Equal(t, TokenTypeRefresh, claims.Type)
	assert.Nil(t, claims.SessionID)

	_, err = m.IssueAccess(Subject{})
	assert.Error(t, err)
}

func TestVerifyRejectsForeignToken(t *testing.T) {
	issuer := newTestManager(t, NewLocalKeys())
	verifier := newTestManager(t, NewLocalKeys())

	tok, err := issuer.IssueAccess(Subject{Name: "alice"})
	require.NoError(t, err)

	_, err = verifier.Verify(tok)
	var invalid ErrInvalidToken
	assert.True(t, errors.As(err, &invalid), "got %v", err)
}

func TestNewValidatesConfig(t *testing.T) {
	_, err := New(Config{Mode: ModeLocal, Audience: "a"}, NewLocalKeys())
	assert.Error(t, err)

	_, err = New(Config{Mode: ModePublic, Issuer: "i", Audience: "a"}, NewLocalKeys())
	assert.Error(t, err)
}

func TestLoadKeys(t *testing.T) {
	_, err := LoadKeys(KeyStrings{Mode: ModeLocal})
	assert.Error(t, err)

	_, err = LoadKeys(KeyStrings{Mode: "v2"})
	assert.Error(t, err)

	local := NewLocalKeys()
	k, err := LoadKeys(KeyStrings{Mode: ModeLocal, SymmetricHex: local.Symmetric.ExportHex()})
	require.NoError(t, err)
	assert.Equal(t, ModeLocal, k.Mode)

	pub := NewPublicKeys()
	k, err = LoadKeys(KeyStrings{Mode: ModePublic, PublicHex: pub.Public.ExportHex()})
	require.NoError(t, err)
	assert.Nil(t, k.Secret)
	assert.NotNil(t, k.Public)
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		header string
		want   string
		ok     bool
	}{
		{"Bearer abc", "abc", true},
		{"bearer   abc ", "abc", true},
		{"Basic abc", "", false},
		{"Bearer", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := BearerToken(tt.header)
		assert.Equal(t, tt.ok, ok, tt.header)
		assert.Equal(t, tt.want, got, tt.header)
	}
}

func TestFiberAuth(t *testing.T) {
	m := newTestManager(t, NewLocalKeys())
	access, err := m.IssueAccess(Subject{Name: "alice"})
	require.NoError(t, err)
	refresh, err := m.IssueRefresh(Subject{Name: "alice"})
	require.NoError(t, err)

	newApp := func(required bool) *fiber.App {
		app := fiber.New()
		app.Use(FiberAuth(m, required))
		app.Get("/", func(c fiber.Ctx) error {
			claims := reqctx.ClaimsFromContext(c.Context())
			if claims == nil {
				return c.SendString("anonymous")
			}
			return c.SendString(claims.Name())
		})
		return app
	}

	tests := []struct {
		name     string
		required bool
		header   string
		want     int
	}{
		{"valid token", true, "Bearer " + access, http.StatusOK},
		{"missing token required", true, "", http.StatusUnauthorized},
		{"missing token optional", false, "", http.StatusOK},
		{"garbage token optional", false, "Bearer nope", http.StatusUnauthorized},
		{"refresh token rejected", true, "Bearer " + refresh, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := newApp(tt.required).Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestKeysHexRoundTrip(t *testing.T) {
	for _, mode := range []Mode{ModeLocal, ModePublic} {
		t.Run(string(mode), func(t *testing.T) {
			keys, err := NewKeys(mode)
			require.NoError(t, err)

			loaded, err := LoadKeys(keys.Hex())
			require.NoError(t, err)

			tok, err := newTestManager(t, keys).IssueAccess(Subject{Name: "alice"})
			require.NoError(t, err)
			claims, err := newTestManager(t, loaded).Verify(tok)
			require.NoError(t, err)
			assert.Equal(t, "alice", claims.Name())
		})
	}

	_, err := NewKeys("v2")
	assert.Error(t, err)
}

func TestVerifyAccess(t *testing.T) {
	m := newTestManager(t, NewLocalKeys())

	access, err := m.IssueAccess(Subject{Name: "alice"})
	require.NoError(t, err)
	claims, err := m.VerifyAccess(access)
	require.NoError(t, err)
	assert.Equal(t, "alice", claims.Name())

	refresh, err := m.IssueRefresh(Subject{Name: "alice"})
	require.NoError(t, err)
	_, err = m.VerifyAccess(refresh)
	assert.ErrorIs(t, err, ErrNotAccessToken)
}
