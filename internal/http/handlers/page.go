package handlers

import (
	"bytes"
	"embed"
	"html/template"
	"net/http"
	"strings"
	"time"

	"github.com/dialboard/server/pkg/render"
	"github.com/labstack/echo/v4"
)

//go:embed templates/dashboard.html
var templates embed.FS

var pageTemplate = template.Must(template.New("dashboard.html").Funcs(template.FuncMap{
	"lower": strings.ToLower,
}).ParseFS(templates, "templates/dashboard.html"))

// DashboardPage renders the gauges as inline SVG. Geometry is computed
// server side, the page itself is static markup plus a small live
// refresh script.
func (b *Builder) DashboardPage(ec echo.Context) error {
	snapshot := b.gauges.Snapshot()
	view := render.BuildDashboard(snapshot, b.history.All(), time.Now().UTC())
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, view); err != nil {
		return err
	}
	return ec.HTML(http.StatusOK, buf.String())
}
