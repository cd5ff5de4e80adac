package health

import (
	"github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
)

type Endpoints struct {
	version string
	backend string
}

func NewEndpoints(version, backend string) *Endpoints {
	return &Endpoints{
		version: version,
		backend: backend,
	}
}

type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
}

type StatusResponse struct {
	Health  string `json:"health"`
	Version string `json:"version"`
	Storage string `json:"storage"`
}

func (h *Endpoints) Health(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, HealthResponse{
		Status:  "ok",
		Version: h.version,
	})
}

// Status also reports which storage backend receives uploads.
func (h *Endpoints) Status(ctx *fasthttp.RequestCtx) {
	writeJSON(ctx, StatusResponse{
		Health:  "OK",
		Version: h.version,
		Storage: h.backend,
	})
}

func writeJSON(ctx *fasthttp.RequestCtx, payload any) {
	responseJSON, err := json.Marshal(payload)
	if err != nil {
		ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(responseJSON)
}
