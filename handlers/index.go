package handlers

import (
	"net/http"
)

// page fills the fields every view needs and drains pending flashes.
func (h *Handler) page(w http.ResponseWriter, r *http.Request, title string) PageData {
	s := h.session(r)
	flashes := popFlashes(s)
	if len(flashes) > 0 {
		if err := s.Save(r, w); err != nil {
			h.log.Error().Err(err).Msg("clear flashes")
		}
	}
	return PageData{Title: title, Year: h.now().Year(), Flashes: flashes}
}

func (h *Handler) render(w http.ResponseWriter, status int, name string, data PageData) {
	if err := h.views.Render(w, status, name, data); err != nil {
		h.log.Error().Err(err).Msg("render")
		http.Error(w, "Template error", http.StatusInternalServerError)
	}
}

// Home renders the landing page.
func (h *Handler) Home(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "index", h.page(w, r, ""))
}

// About renders the static about page.
func (h *Handler) About(w http.ResponseWriter, r *http.Request) {
	h.render(w, http.StatusOK, "about", h.page(w, r, "About"))
}
