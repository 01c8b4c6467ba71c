package handlers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"portfolio/db"
	"portfolio/models"
)

// formView describes one rendering of change_project.
type formView struct {
	Mode    string // add, edit or delete
	Action  string
	Project *models.Project
	Form    any
}

var formTitles = map[string]string{
	"add":    "Add project",
	"edit":   "Edit project",
	"delete": "Delete project",
}

// ProjectsPage renders every project in id order.
func (h *Handler) ProjectsPage(w http.ResponseWriter, r *http.Request) {
	list, err := h.store.List(r.Context())
	if err != nil {
		h.dbError(w, "ProjectsPage: list projects", err)
		return
	}
	data := h.page(w, r, "Projects")
	data.Projects = list
	h.render(w, http.StatusOK, "projects", data)
}

// Add shows the empty project form and creates a project on a valid,
// authorized submit.
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	v := formView{Mode: "add", Action: "/add", Form: ProjectForm{}}
	if r.Method != http.MethodPost {
		h.showForm(w, r, http.StatusOK, v, nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := bindProjectForm(r.PostForm)
	v.Form = form
	if !h.authorize(w, r, v, form.CSRFToken, form.Password) {
		return
	}
	p, err := h.store.Create(r.Context(), form.Fields())
	if err != nil {
		h.dbError(w, "Add: create project", err)
		return
	}
	h.log.Info().Int("id", p.ID).Str("title", p.Title).Msg("project created")
	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

// Edit shows the form pre-filled from the stored project and overwrites it
// on a valid, authorized submit.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	v := formView{
		Mode:    "edit",
		Action:  fmt.Sprintf("/edit/%d", p.ID),
		Project: &p,
		Form:    projectFormFromProject(p),
	}
	if r.Method != http.MethodPost {
		h.showForm(w, r, http.StatusOK, v, nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := bindProjectForm(r.PostForm)
	v.Form = form
	if !h.authorize(w, r, v, form.CSRFToken, form.Password) {
		return
	}
	if _, err := h.store.Update(r.Context(), p.ID, form.Fields()); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.dbError(w, fmt.Sprintf("Edit: update project %d", p.ID), err)
		return
	}
	h.log.Info().Int("id", p.ID).Msg("project updated")
	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

// Delete asks for the password and removes the project once it matches.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	p, ok := h.loadProject(w, r)
	if !ok {
		return
	}
	v := formView{
		Mode:    "delete",
		Action:  fmt.Sprintf("/delete/%d", p.ID),
		Project: &p,
		Form:    DeleteForm{},
	}
	if r.Method != http.MethodPost {
		h.showForm(w, r, http.StatusOK, v, nil)
		return
	}
	if err := r.ParseForm(); err != nil {
		http.Error(w, "Bad request", http.StatusBadRequest)
		return
	}
	form := bindDeleteForm(r.PostForm)
	v.Form = form
	if !h.authorize(w, r, v, form.CSRFToken, form.Password) {
		return
	}
	if err := h.store.Delete(r.Context(), p.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			http.NotFound(w, r)
			return
		}
		h.dbError(w, fmt.Sprintf("Delete: delete project %d", p.ID), err)
		return
	}
	h.log.Info().Int("id", p.ID).Msg("project deleted")
	http.Redirect(w, r, "/projects", http.StatusSeeOther)
}

// authorize validates the submitted form, then its form token, then the
// password. On failure it has already written the response.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, v formView, csrfToken, password string) bool {
	errs := h.forms.Validate(v.Form)
	if errs == nil {
		nonce, _ := h.session(r).Values[nonceKey].(string)
		if err := h.tokens.Verify(csrfToken, nonce, v.Action); err != nil {
			errs = FieldErrors{"csrf_token": "The CSRF token is invalid."}
		}
	}
	if errs != nil {
		h.showForm(w, r, http.StatusUnprocessableEntity, v, errs)
		return false
	}
	if !h.guard.Check(password) {
		h.log.Warn().Str("form", v.Action).Msg("incorrect password")
		h.flash(w, r, "Incorrect password!")
		http.Redirect(w, r, v.Action, http.StatusSeeOther)
		return false
	}
	return true
}

// showForm renders change_project with a fresh form token.
func (h *Handler) showForm(w http.ResponseWriter, r *http.Request, status int, v formView, errs FieldErrors) {
	s := h.session(r)
	flashes := popFlashes(s)
	nonce, fresh := formNonce(s)
	if fresh || len(flashes) > 0 {
		if err := s.Save(r, w); err != nil {
			h.log.Error().Err(err).Msg("save session")
		}
	}
	token, err := h.tokens.Issue(nonce, v.Action)
	if err != nil {
		h.log.Error().Err(err).Msg("issue form token")
		http.Error(w, "Server error", http.StatusInternalServerError)
		return
	}
	if errs == nil {
		errs = FieldErrors{}
	}
	h.render(w, status, "change_project", PageData{
		Title:     formTitles[v.Mode],
		Year:      h.now().Year(),
		Flashes:   flashes,
		Project:   v.Project,
		Mode:      v.Mode,
		Action:    v.Action,
		Form:      v.Form,
		Errors:    errs,
		CSRFToken: token,
	})
}

// loadProject resolves the {id} route variable. Unknown ids get 404.
func (h *Handler) loadProject(w http.ResponseWriter, r *http.Request) (models.Project, bool) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		http.NotFound(w, r)
		return models.Project{}, false
	}
	p, err := h.store.Get(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		http.NotFound(w, r)
		return models.Project{}, false
	}
	if err != nil {
		h.dbError(w, fmt.Sprintf("loadProject %d", id), err)
		return models.Project{}, false
	}
	return p, true
}

func (h *Handler) dbError(w http.ResponseWriter, what string, err error) {
	h.log.Error().Err(err).Msg(what)
	http.Error(w, "DB error", http.StatusInternalServerError)
}
