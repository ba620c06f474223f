package introspect

import (
	"context"
	"encoding/json"
	"encoding/xml"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/wscontext/internal/descriptor"
	"github.com/Alijeyrad/wscontext/internal/dispatch"
	"github.com/Alijeyrad/wscontext/pkg/authorize"
	"github.com/Alijeyrad/wscontext/pkg/epr"
	"github.com/Alijeyrad/wscontext/pkg/reqctx"
)

type claims string

func (c claims) Name() string             { return string(c) }
func (c claims) GetUserID() uuid.UUID     { return uuid.Nil }
func (c claims) GetSessionID() *uuid.UUID { return nil }
func (c claims) GetTokenType() string     { return "access" }
func (c claims) IsExpired() bool          { return false }

type roles map[string][]authorize.Role

type roleAuth struct {
	authorize.IAuthorization
	roles roles
}

func (a roleAuth) HasRole(_ context.Context, sub authorize.GroupSubject, role authorize.Role, dom authorize.Domain) (bool, error) {
	if dom != authorize.EndpointDomain(EndpointName) {
		return false, nil
	}
	for _, r := range a.roles[string(sub)] {
		if r == role {
			return true, nil
		}
	}
	return false, nil
}

type descriptors struct{}

func (descriptors) Lookup(_ context.Context, name string) (*descriptor.Record, error) {
	if name != EndpointName {
		return nil, descriptor.ErrNotFound
	}
	return &descriptor.Record{
		Name:    EndpointName,
		Address: "http://host/api/v1/endpoints/introspect",
		Descriptor: epr.Descriptor{
			InterfaceName: epr.QName{Namespace: "urn:wsctx", Local: "IntrospectPort"},
			ServiceName:   epr.QName{Namespace: "urn:wsctx", Local: "IntrospectService"},
			EndpointName:  "IntrospectPortBinding",
		},
	}, nil
}

func newDispatcher(t *testing.T) *dispatch.Dispatcher {
	t.Helper()
	refs, err := epr.NewBuilder(epr.KindW3C, epr.KindSubmission)
	require.NoError(t, err)

	reg := dispatch.NewRegistry()
	reg.MustRegister(New(nil).Endpoint())

	d, err := dispatch.New(dispatch.DefaultConfig(), dispatch.Deps{
		Registry:    reg,
		Descriptors: descriptors{},
		References:  refs,
		Auth:        roleAuth{roles: roles{"alice": {authorize.RoleEndpointCaller}}},
	})
	require.NoError(t, err)
	return d
}

func call(t *testing.T, ctx context.Context, op string, body string) (*dispatch.Response, error) {
	t.Helper()
	return newDispatcher(t).Dispatch(ctx, &dispatch.Request{
		Endpoint:  EndpointName,
		Operation: op,
		Body:      []byte(body),
		Headers:   map[string][]string{"X-App-Locale": {"fa"}, "Authorization": {"Bearer secret"}},
		Method:    "POST",
		Path:      "/api/v1/endpoints/introspect/" + op,
	})
}

func TestContext(t *testing.T) {
	resp, err := call(t, context.Background(), OpContext, "")
	require.NoError(t, err)
	assert.Equal(t, mimeJSON, resp.ContentType)

	var out struct {
		Properties map[string]any `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(resp.Body, &out))

	assert.Equal(t, false, out.Properties[reqctx.PropMessageOutbound])
	assert.Equal(t, OpContext, out.Properties[reqctx.PropWSDLOperation])
	assert.Equal(t, "fa", out.Properties["X-App-Locale"])
	assert.NotContains(t, out.Properties, "Authorization")
	assert.NotContains(t, out.Properties, reqctx.PropHTTPHeaders)
}

func TestWhoAmI(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		resp, err := call(t, context.Background(), OpWhoAmI, "")
		require.NoError(t, err)
		assert.JSONEq(t, `{"authenticated":false}`, string(resp.Body))
	})

	t.Run("authenticated", func(t *testing.T) {
		ctx := reqctx.WithClaims(context.Background(), claims("alice"))
		resp, err := call(t, ctx, OpWhoAmI, "")
		require.NoError(t, err)
		assert.JSONEq(t, `{"authenticated":true,"name":"alice"}`, string(resp.Body))
	})
}

func TestInRole(t *testing.T) {
	tests := []struct {
		name   string
		caller string
		body   string
		want   string
	}{
		{"member", "alice", `{"role":"role:endpoint:caller"}`, `{"role":"role:endpoint:caller","member":true}`},
		{"other role", "alice", `{"role":"role:endpoint:owner"}`, `{"role":"role:endpoint:owner","member":false}`},
		{"unknown role", "alice", `{"role":"wizard"}`, `{"role":"wizard","member":false}`},
		{"other caller", "bob", `{"role":"role:endpoint:caller"}`, `{"role":"role:endpoint:caller","member":false}`},
		{"anonymous", "", `{"role":"role:endpoint:caller"}`, `{"role":"role:endpoint:caller","member":false}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			if tt.caller != "" {
				ctx = reqctx.WithClaims(ctx, claims(tt.caller))
			}
			resp, err := call(t, ctx, OpInRole, tt.body)
			require.NoError(t, err)
			assert.JSONEq(t, tt.want, string(resp.Body))
		})
	}
}

func TestInRoleBadRequest(t *testing.T) {
	for _, body := range []string{"", "not json", `{"role":""}`} {
		_, err := call(t, context.Background(), OpInRole, body)
		assert.True(t, errors.Is(err, dispatch.ErrBadRequest), "body %q: %v", body, err)
	}
}

func TestReference(t *testing.T) {
	t.Run("default kind", func(t *testing.T) {
		resp, err := call(t, context.Background(), OpReference, "")
		require.NoError(t, err)
		assert.Equal(t, mimeXML, resp.ContentType)

		var ref struct {
			XMLName xml.Name
			Address string `xml:"Address"`
		}
		require.NoError(t, xml.Unmarshal(resp.Body, &ref))
		assert.Equal(t, "EndpointReference", ref.XMLName.Local)
		assert.Equal(t, epr.NamespaceW3C, ref.XMLName.Space)
		assert.Equal(t, "http://host/api/v1/endpoints/introspect", ref.Address)
	})

	t.Run("submission", func(t *testing.T) {
		resp, err := call(t, context.Background(), OpReference, `{"kind":"submission"}`)
		require.NoError(t, err)

		var ref struct{ XMLName xml.Name }
		require.NoError(t, xml.Unmarshal(resp.Body, &ref))
		assert.Equal(t, epr.NamespaceSubmission, ref.XMLName.Space)
	})

	t.Run("unknown kind", func(t *testing.T) {
		_, err := call(t, context.Background(), OpReference, `{"kind":"soap12"}`)
		assert.ErrorIs(t, err, dispatch.ErrBadRequest)
	})
}

func TestHandlersOutsideScope(t *testing.T) {
	s := New(nil)
	_, err := s.WhoAmI(context.Background(), &dispatch.Request{})
	assert.ErrorIs(t, err, reqctx.ErrInvalidState)
}
