// Package pages renders the browser UI: the home page, the upload page with
// its client script, and the Files List.
package pages

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"

	"github.com/rs/zerolog/log"
	"github.com/valyala/fasthttp"
)

//go:embed templates/*.html static/*
var assets embed.FS

// MockFile is a Files List row. The list is fixed and not read from the
// upload directory.
type MockFile struct {
	ID         int
	Name       string
	UploadedAt string
	Size       string
	Status     string
}

var mockFiles = []MockFile{
	{ID: 1, Name: "sales_data_2023.csv", UploadedAt: "2023-12-20", Size: "1.2 MB", Status: "completed"},
	{ID: 2, Name: "customer_info.csv", UploadedAt: "2023-12-19", Size: "850 KB", Status: "completed"},
	{ID: 3, Name: "inventory_2023.csv", UploadedAt: "2023-12-18", Size: "2.1 MB", Status: "completed"},
	{ID: 4, Name: "transactions.csv", UploadedAt: "2023-12-17", Size: "3.4 MB", Status: "completed"},
}

type pageData struct {
	Title string
	Files []MockFile
}

type Endpoints struct {
	pages  map[string]*template.Template
	script []byte
}

func NewEndpoints() (*Endpoints, error) {
	pages := make(map[string]*template.Template)
	for _, name := range []string{"home", "upload", "files"} {
		tmpl, err := template.ParseFS(assets, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("failed to parse %s template: %w", name, err)
		}
		pages[name] = tmpl
	}

	script, err := assets.ReadFile("static/upload.js")
	if err != nil {
		return nil, fmt.Errorf("failed to read upload script: %w", err)
	}

	return &Endpoints{
		pages:  pages,
		script: script,
	}, nil
}

func (e *Endpoints) Home(ctx *fasthttp.RequestCtx) {
	e.render(ctx, "home", pageData{Title: "Home"})
}

func (e *Endpoints) Upload(ctx *fasthttp.RequestCtx) {
	e.render(ctx, "upload", pageData{Title: "Upload"})
}

func (e *Endpoints) Files(ctx *fasthttp.RequestCtx) {
	e.render(ctx, "files", pageData{Title: "Files", Files: mockFiles})
}

func (e *Endpoints) Script(ctx *fasthttp.RequestCtx) {
	ctx.SetContentType("application/javascript; charset=utf-8")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(e.script)
}

func (e *Endpoints) render(ctx *fasthttp.RequestCtx, name string, data pageData) {
	var buf bytes.Buffer
	if err := e.pages[name].ExecuteTemplate(&buf, "layout", data); err != nil {
		log.Error().Err(err).Str("page", name).Msg("Failed to render page")
		ctx.Error("Internal Server Error", fasthttp.StatusInternalServerError)
		return
	}

	ctx.SetContentType("text/html; charset=utf-8")
	ctx.SetStatusCode(fasthttp.StatusOK)
	ctx.SetBody(buf.Bytes())
}
