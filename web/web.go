// Package web holds the HTML templates and static assets, embedded in the binary.
package web

import (
	"embed"
	"io/fs"
	"net/http"
	"strings"

	html "github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"
)

//go:embed templates static
var files embed.FS

// Static is the /static file tree.
func Static() http.FileSystem {
	sub, err := fs.Sub(files, "static")
	if err != nil {
		panic(err)
	}
	return http.FS(sub)
}

// NewEngine returns the view engine. With devDir set, templates are read from disk
// and reloaded on every render.
func NewEngine(devDir string) *html.Engine {
	var engine *html.Engine
	if devDir != "" {
		engine = html.New(devDir, ".html")
		engine.Reload(true)
	} else {
		sub, err := fs.Sub(files, "templates")
		if err != nil {
			panic(err)
		}
		engine = html.NewFileSystem(http.FS(sub), ".html")
	}
	engine.AddFunc("money", func(d decimal.Decimal) string { return d.StringFixed(2) })
	engine.AddFunc("add", func(a, b int) int { return a + b })
	engine.AddFunc("sub", func(a, b int) int { return a - b })
	engine.AddFunc("title", func(s string) string {
		if s == "" {
			return s
		}
		return strings.ToUpper(s[:1]) + s[1:]
	})
	return engine
}
