package oauth

import (
	"embed"
	"html/template"
	"log"
	"net/http"
)

//go:embed templates/*.html
var templatesFS embed.FS

var callbackTemplates = template.Must(template.ParseFS(templatesFS, "templates/*.html"))

// callbackPageData feeds the static browser-facing callback pages. Token
// material is never rendered.
type callbackPageData struct {
	Error            string
	ErrorDescription string
}

func renderCallbackPage(w http.ResponseWriter, status int, name string, data callbackPageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := callbackTemplates.ExecuteTemplate(w, name, data); err != nil {
		log.Printf("render callback page %s: %v", name, err)
	}
}
