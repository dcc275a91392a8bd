// Package web embeds the HTML templates and builds the view engine. Keeping
// the templates in the binary means the server and the handler tests render
// the exact same views with no working-directory games.
package web

import (
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	html "github.com/gofiber/template/html/v2"
)

//go:embed templates
var templates embed.FS

// Engine builds the template engine over the embedded template tree.
// Template names are paths without the .html extension, e.g. "posts/index".
func Engine() *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(fmt.Sprintf("embedded templates missing: %v", err))
	}

	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFunc("datetime", func(t time.Time) string {
		return t.Format("Jan 2, 2006 15:04")
	})
	engine.AddFunc("datevalue", func(t time.Time) string {
		// Value format for datetime-local inputs.
		return t.Format("2006-01-02T15:04")
	})
	return engine
}
