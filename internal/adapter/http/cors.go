package httpadapter

import (
	"context"
	"strings"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/protocol/consts"
)

// corsPolicy answers browser clients. An empty origin list allows any
// origin; otherwise the request origin is echoed back only when listed.
type corsPolicy struct {
	origins []string
}

const (
	corsAllowMethods = "GET,POST,OPTIONS"
	corsAllowHeaders = "Content-Type," + playerIDHeader
)

func newCORSPolicy(origins string) corsPolicy {
	var p corsPolicy
	for _, o := range strings.Split(origins, ",") {
		if o = strings.TrimSpace(o); o != "" && o != "*" {
			p.origins = append(p.origins, o)
		}
	}
	return p
}

func (p corsPolicy) allowOrigin(requested string) (string, bool) {
	if len(p.origins) == 0 {
		return "*", true
	}
	for _, o := range p.origins {
		if o == requested {
			return o, true
		}
	}
	return "", false
}

func (p corsPolicy) apply(ctx *app.RequestContext) {
	origin, ok := p.allowOrigin(string(ctx.GetHeader("Origin")))
	if !ok {
		return
	}
	h := &ctx.Response.Header
	h.Set("Access-Control-Allow-Origin", origin)
	if origin != "*" {
		h.Set("Vary", "Origin")
	}
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	h.Set("Access-Control-Max-Age", "600")
}

func (p corsPolicy) middleware() app.HandlerFunc {
	return func(c context.Context, ctx *app.RequestContext) {
		p.apply(ctx)
		if string(ctx.Method()) == consts.MethodOptions {
			ctx.AbortWithStatus(consts.StatusNoContent)
			return
		}
		ctx.Next(c)
	}
}
