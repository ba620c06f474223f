package handler

import (
	"bytes"

	"github.com/gofiber/fiber/v3"

	"github.com/Alijeyrad/wscontext/internal/api/http/middleware"
	"github.com/Alijeyrad/wscontext/internal/dispatch"
	"github.com/Alijeyrad/wscontext/pkg/epr"
)

const mimeXML = "application/xml; charset=utf-8"

type EndpointHandler struct {
	d *dispatch.Dispatcher
}

func NewEndpointHandler(d *dispatch.Dispatcher) *EndpointHandler {
	return &EndpointHandler{d: d}
}

type endpointInfo struct {
	Name       string   `json:"name"`
	Operations []string `json:"operations"`
}

// List handles GET /endpoints
func (h *EndpointHandler) List(c fiber.Ctx) error {
	reg := h.d.Registry()
	names := reg.Names()
	out := make([]endpointInfo, 0, len(names))
	for _, n := range names {
		out = append(out, endpointInfo{Name: n, Operations: reg.Operations(n)})
	}
	return ok(c, out)
}

// Reference handles GET /endpoints/:endpoint/reference?kind=w3c|submission
func (h *EndpointHandler) Reference(c fiber.Ctx) error {
	kind := epr.KindW3C
	if q := c.Query("kind"); q != "" {
		k, err := epr.ParseKind(q)
		if err != nil {
			return badRequest(c, err.Error())
		}
		kind = k
	}

	ref, err := h.d.Reference(c.Context(), c.Params(middleware.ParamEndpoint), kind)
	if err != nil {
		return dispatchError(c, err)
	}

	out, err := epr.Marshal(ref)
	if err != nil {
		return dispatchError(c, err)
	}
	c.Set(fiber.HeaderContentType, mimeXML)
	return c.Send(out)
}

// Invoke handles POST /endpoints/:endpoint/:operation
func (h *EndpointHandler) Invoke(c fiber.Ctx) error {
	// fasthttp reuses the body buffer after the handler returns
	req := &dispatch.Request{
		Endpoint:  c.Params(middleware.ParamEndpoint),
		Operation: c.Params(middleware.ParamOperation),
		Body:      bytes.Clone(c.Body()),
		Headers:   c.GetReqHeaders(),
		Method:    c.Method(),
		Path:      c.Path(),
		Query:     string(c.Request().URI().QueryString()),
	}
	if meta, found := middleware.RequestMetaFromFiber(c); found {
		req.Meta = meta
	}

	resp, err := h.d.Dispatch(c.Context(), req)
	if err != nil {
		return dispatchError(c, err)
	}

	for k, v := range resp.Headers {
		c.Set(k, v)
	}
	ct := resp.ContentType
	if ct == "" {
		ct = fiber.MIMEOctetStream
	}
	c.Set(fiber.HeaderContentType, ct)
	return c.Status(fiber.StatusOK).Send(resp.Body)
}
