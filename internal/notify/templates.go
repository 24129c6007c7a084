package notify

import (
	"bytes"
	"embed"
	"io/fs"
	"net/http"

	html "github.com/gofiber/template/html/v2"
	"github.com/shopspring/decimal"
)

//go:embed templates/*.html
var templateFS embed.FS

// Templates renders the HTML email bodies.
type Templates struct {
	engine *html.Engine
}

func LoadTemplates() (*Templates, error) {
	sub, err := fs.Sub(templateFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("money", func(d decimal.Decimal) string { return "$" + d.StringFixed(2) })
	if err := engine.Load(); err != nil {
		return nil, err
	}
	return &Templates{engine: engine}, nil
}

func (t *Templates) Render(name string, data any) (string, error) {
	var buf bytes.Buffer
	if err := t.engine.Render(&buf, name, data); err != nil {
		return "", err
	}
	return buf.String(), nil
}
