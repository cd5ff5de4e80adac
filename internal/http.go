package internal

import (
	"github.com/prappser/csvdrop/internal/health"
	"github.com/prappser/csvdrop/internal/middleware"
	"github.com/prappser/csvdrop/internal/pages"
	"github.com/prappser/csvdrop/internal/storage"
	"github.com/valyala/fasthttp"
)

func NewRequestHandler(config *Config, storageEndpoints *storage.Endpoints, healthEndpoints *health.Endpoints, pageEndpoints *pages.Endpoints) fasthttp.RequestHandler {
	corsMiddleware := middleware.NewCORSMiddleware(config.Server.AllowedOrigins)

	handler := func(ctx *fasthttp.RequestCtx) {
		path := string(ctx.Path())

		switch path {
		case "/api/upload":
			if ctx.IsPost() {
				storageEndpoints.Upload(ctx)
			} else {
				methodNotAllowed(ctx)
			}

		case "/":
			get(ctx, pageEndpoints.Home)
		case "/upload":
			get(ctx, pageEndpoints.Upload)
		case "/files":
			get(ctx, pageEndpoints.Files)
		case "/static/upload.js":
			get(ctx, pageEndpoints.Script)

		case "/health":
			get(ctx, healthEndpoints.Health)
		case "/status":
			get(ctx, healthEndpoints.Status)

		default:
			ctx.Error("Not Found", fasthttp.StatusNotFound)
		}
	}

	return middleware.Recovery(middleware.RequestID(middleware.Logging(corsMiddleware.Handle(handler))))
}

func get(ctx *fasthttp.RequestCtx, handler fasthttp.RequestHandler) {
	if ctx.IsGet() || ctx.IsHead() {
		handler(ctx)
		return
	}
	methodNotAllowed(ctx)
}

func methodNotAllowed(ctx *fasthttp.RequestCtx) {
	ctx.Error("Method Not Allowed", fasthttp.StatusMethodNotAllowed)
}
