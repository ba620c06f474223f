package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Alijeyrad/wscontext/internal/descriptor"
	"github.com/Alijeyrad/wscontext/pkg/authorize"
	"github.com/Alijeyrad/wscontext/pkg/epr"
	"github.com/Alijeyrad/wscontext/pkg/logs"
	"github.com/Alijeyrad/wscontext/pkg/observability"
	"github.com/Alijeyrad/wscontext/pkg/reqctx"
)

// Dispatcher routes requests to handlers. For every request it creates a
// scope, binds it to the handler's context and ends it when the handler
// returns, whether it returned normally, with an error or by panicking.
type Dispatcher struct {
	cfg         Config
	headers     headerPolicy
	registry    *Registry
	descriptors descriptor.Source
	refs        *epr.Builder
	auth        authorize.IAuthorization
	metrics     *observability.DispatchMetrics
	logger      *slog.Logger
}

// Deps are the collaborators of a Dispatcher. Descriptors, Auth and
// Metrics are optional: without Auth no caller is in any role.
type Deps struct {
	Registry    *Registry
	Descriptors descriptor.Source
	References  *epr.Builder
	Auth        authorize.IAuthorization
	Metrics     *observability.DispatchMetrics
	Logger      *slog.Logger
}

func New(cfg Config, deps Deps) (*Dispatcher, error) {
	if deps.Registry == nil {
		return nil, errors.New("dispatch: registry is required")
	}
	if deps.References == nil {
		return nil, errors.New("dispatch: reference builder is required")
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	return &Dispatcher{
		cfg:         cfg,
		headers:     newHeaderPolicy(cfg),
		registry:    deps.Registry,
		descriptors: deps.Descriptors,
		refs:        deps.References,
		auth:        deps.Auth,
		metrics:     deps.Metrics,
		logger:      deps.Logger,
	}, nil
}

// Registry returns the endpoints served by d.
func (d *Dispatcher) Registry() *Registry { return d.registry }

// Dispatch serves req. Caller claims, request metadata and trace info are
// read from ctx as the transport left them.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (*Response, error) {
	h, err := d.registry.Handler(req.Endpoint, req.Operation)
	if err != nil {
		return nil, err
	}

	if req.Meta == nil {
		if meta, ok := reqctx.RequestMetaFromContext(ctx); ok {
			req.Meta = meta
		}
	}

	rec := d.lookup(ctx, req.Endpoint)
	scope := reqctx.NewScope(reqctx.ScopeConfig{
		Endpoint:   req.Endpoint,
		Operation:  req.Operation,
		Meta:       req.Meta,
		Properties: d.buildProperties(ctx, req, rec),
		Identity:   reqctx.IdentityFromClaims(reqctx.ClaimsFromContext(ctx)),
		Roles:      d.roles(req.Endpoint),
		References: d.refs.For(rec.Endpoint()),
	})

	ctx = reqctx.WithScope(ctx, scope)
	defer scope.End()

	if d.cfg.HandlerTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.cfg.HandlerTimeout)
		defer cancel()
	}

	transport := ""
	if req.Meta != nil {
		transport = req.Meta.Transport
	}

	start := time.Now()
	d.metrics.ScopeStarted(ctx, req.Endpoint)

	resp, err := d.invoke(ctx, h, req)

	elapsed := time.Since(start)
	outcome := Outcome(err)
	d.metrics.ScopeEnded(ctx, req.Endpoint, req.Operation, transport, outcome, elapsed)

	log := logs.FromContext(ctx, d.logger)
	if err != nil {
		level := slog.LevelWarn
		if outcome == "panic" || outcome == "error" {
			level = slog.LevelError
		}
		log.Log(ctx, level, "dispatch failed",
			"outcome", outcome,
			"duration_ms", elapsed.Milliseconds(),
			"error", err,
		)
		return nil, err
	}
	log.Debug("dispatch finished", "duration_ms", elapsed.Milliseconds())

	if resp == nil {
		resp = &Response{}
	}
	return resp, nil
}

// Reference builds the reference of a registered endpoint outside any request,
// for describing endpoints to clients.
func (d *Dispatcher) Reference(ctx context.Context, endpoint string, kind epr.Kind) (epr.Reference, error) {
	if ops := d.registry.Operations(endpoint); ops == nil {
		return nil, fmt.Errorf("%w: %s", ErrEndpointNotFound, endpoint)
	}
	return d.refs.Build(kind, d.lookup(ctx, endpoint).Endpoint())
}

func (d *Dispatcher) invoke(ctx context.Context, h Handler, req *Request) (resp *Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			logs.FromContext(ctx, d.logger).Error("handler panic",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			resp, err = nil, fmt.Errorf("%w: %v", ErrHandlerPanic, r)
		}
	}()
	return h.Handle(ctx, req)
}

// lookup resolves the endpoint's descriptor. Without one the endpoint is
// still served and its reference carries only the default address.
func (d *Dispatcher) lookup(ctx context.Context, endpoint string) *descriptor.Record {
	if d.descriptors != nil {
		rec, err := d.descriptors.Lookup(ctx, endpoint)
		if err == nil {
			if rec.Address == "" {
				rec.Address = d.defaultAddress(endpoint)
			}
			return rec
		}
		if !errors.Is(err, descriptor.ErrNotFound) {
			logs.FromContext(ctx, d.logger).Warn("descriptor lookup failed",
				"endpoint", endpoint,
				"error", err,
			)
		}
	}
	return &descriptor.Record{Name: endpoint, Address: d.defaultAddress(endpoint)}
}

func (d *Dispatcher) defaultAddress(endpoint string) string {
	return strings.TrimRight(d.cfg.BaseURL, "/") + EndpointPath + endpoint
}

func (d *Dispatcher) roles(endpoint string) reqctx.RoleMembership {
	if d.auth == nil {
		return nil
	}
	return authorize.NewMembership(d.auth, endpoint)
}
