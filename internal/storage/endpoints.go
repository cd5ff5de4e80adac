package storage

import (
	"errors"

	"github.com/goccy/go-json"
	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

const fileField = "file"

type Endpoints struct {
	service *Service
}

func NewEndpoints(service *Service) *Endpoints {
	return &Endpoints{
		service: service,
	}
}

func (e *Endpoints) Upload(ctx *fasthttp.RequestCtx) {
	form, err := ctx.MultipartForm()
	if err != nil {
		log.Error().Err(err).Msg("Failed to parse multipart form")
		writeError(ctx, fasthttp.StatusInternalServerError, MessageProcessFailed)
		return
	}

	files := form.File[fileField]
	if len(files) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, MessageNoFile)
		return
	}

	fileHeader := files[0]
	if !IsCSV(fileHeader.Filename) {
		writeError(ctx, fasthttp.StatusBadRequest, MessageNotCSV)
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		log.Error().Err(err).Str("fileName", fileHeader.Filename).Msg("Failed to open uploaded file")
		writeError(ctx, fasthttp.StatusInternalServerError, MessageProcessFailed)
		return
	}
	defer file.Close()

	req := &UploadRequest{
		Filename: fileHeader.Filename,
		Size:     fileHeader.Size,
	}

	stored, err := e.service.Upload(ctx, req, file)
	if err != nil {
		switch {
		case errors.Is(err, ErrNoFile):
			writeError(ctx, fasthttp.StatusBadRequest, MessageNoFile)
		case errors.Is(err, ErrNotCSV):
			writeError(ctx, fasthttp.StatusBadRequest, MessageNotCSV)
		case errors.Is(err, ErrStorage):
			log.Error().Err(err).Msg("Error saving file")
			writeError(ctx, fasthttp.StatusInternalServerError, MessageSaveFailed)
		default:
			log.Error().Err(err).Msg("Error processing upload")
			writeError(ctx, fasthttp.StatusInternalServerError, MessageProcessFailed)
		}
		return
	}

	writeJSON(ctx, fasthttp.StatusOK, stored)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, ErrorResponse{Error: message})
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, payload any) {
	body, err := json.Marshal(payload)
	if err != nil {
		ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}
