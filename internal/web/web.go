/**
 * @description
 * This package serves the browser UI for vendor management: a login page with Google
 * sign-in, the vendor board, its static assets and a 404 page. All assets are embedded
 * into the binary. The UI holds no authoritative state; it talks to /api/vendors and
 * re-fetches after every mutation.
 */
package web

import (
	"bytes"
	"embed"
	"html/template"
	"io/fs"
	"log"
	"net/http"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// Options configures the UI handler.
type Options struct {
	GoogleClientID string
	// IsSignedIn reports whether the request carries a usable session.
	IsSignedIn func(r *http.Request) bool
}

// Handler renders the UI pages.
type Handler struct {
	opts      Options
	templates *template.Template
	static    http.Handler
}

type pageData struct {
	GoogleClientID string
}

// NewHandler parses the embedded templates.
func NewHandler(opts Options) (*Handler, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/*.html")
	if err != nil {
		return nil, err
	}
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		return nil, err
	}
	if opts.IsSignedIn == nil {
		opts.IsSignedIn = func(*http.Request) bool { return false }
	}
	return &Handler{
		opts:      opts,
		templates: tmpl,
		static:    http.StripPrefix("/static/", http.FileServer(http.FS(sub))),
	}, nil
}

// Index serves the vendor board, sending anonymous visitors to the login page.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	if !h.opts.IsSignedIn(r) {
		http.Redirect(w, r, "/login", http.StatusFound)
		return
	}
	h.render(w, http.StatusOK, "index.html")
}

// Login serves the Google sign-in page.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.opts.IsSignedIn(r) {
		http.Redirect(w, r, "/", http.StatusFound)
		return
	}
	h.render(w, http.StatusOK, "login.html")
}

// Static serves embedded assets under /static/.
func (h *Handler) Static(w http.ResponseWriter, r *http.Request) {
	h.static.ServeHTTP(w, r)
}

// NotFound serves the 404 page.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusNotFound, "404.html")
}

func (h *Handler) render(w http.ResponseWriter, status int, name string) {
	var buf bytes.Buffer
	if err := h.templates.ExecuteTemplate(&buf, name, pageData{GoogleClientID: h.opts.GoogleClientID}); err != nil {
		log.Printf("level=error component=web msg=\"template render failed\" template=%s err=%v", name, err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}
