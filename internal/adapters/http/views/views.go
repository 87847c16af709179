// Package views holds the server-rendered page templates.
package views

import (
	"embed"
	"net/http"

	"creditoya-web/internal/core/domain"
	"creditoya-web/internal/pkg/format"

	"github.com/gofiber/template/html/v2"
)

//go:embed *.html
var files embed.FS

// NewEngine returns the template engine with the page helpers registered
func NewEngine(reload bool) *html.Engine {
	engine := html.NewFileSystem(http.FS(files), ".html")
	engine.Reload(reload)
	engine.AddFuncMap(map[string]interface{}{
		"cop":   format.COPString,
		"bank":  domain.BankLabel,
		"date":  format.Date,
		"deref": deref,
	})
	return engine
}

// deref renders optional gateway strings, hiding the "not defined" sentinels
func deref(v *string) string {
	if !domain.IsDefined(v) {
		return ""
	}
	return *v
}
