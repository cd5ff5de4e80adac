package middleware

import (
	"regexp"

	"github.com/valyala/fasthttp"
)

var localhostOrigin = regexp.MustCompile(`^https?://localhost:\d+$`)

type CORSMiddleware struct {
	allowedOrigins []string
}

func NewCORSMiddleware(allowedOrigins []string) *CORSMiddleware {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return &CORSMiddleware{allowedOrigins: allowedOrigins}
}

func (cm *CORSMiddleware) Handle(next fasthttp.RequestHandler) fasthttp.RequestHandler {
	return func(ctx *fasthttp.RequestCtx) {
		origin := string(ctx.Request.Header.Peek("Origin"))

		switch {
		case cm.wildcard():
			ctx.Response.Header.Set("Access-Control-Allow-Origin", "*")
		case origin != "" && cm.isOriginAllowed(origin):
			ctx.Response.Header.Set("Access-Control-Allow-Origin", origin)
			ctx.Response.Header.Set("Vary", "Origin")
		}

		ctx.Response.Header.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		ctx.Response.Header.Set("Access-Control-Allow-Headers", "Content-Type, X-Request-ID")
		ctx.Response.Header.Set("Access-Control-Expose-Headers", "X-Request-ID")
		ctx.Response.Header.Set("Access-Control-Max-Age", "86400")

		if ctx.IsOptions() {
			ctx.SetStatusCode(fasthttp.StatusNoContent)
			return
		}

		next(ctx)
	}
}

func (cm *CORSMiddleware) wildcard() bool {
	return len(cm.allowedOrigins) == 1 && cm.allowedOrigins[0] == "*"
}

func (cm *CORSMiddleware) isOriginAllowed(origin string) bool {
	for _, allowed := range cm.allowedOrigins {
		if allowed == origin {
			return true
		}
		// "http://localhost:*" admits any local port
		if (allowed == "http://localhost:*" || allowed == "https://localhost:*") && localhostOrigin.MatchString(origin) {
			return true
		}
	}
	return false
}
