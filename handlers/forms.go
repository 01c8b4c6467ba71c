package handlers

import (
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"portfolio/models"
)

// ProjectForm is the add/edit form. The validate tags are the field rules.
type ProjectForm struct {
	Title     string `form:"title" validate:"required,max=250"`
	Subtitle  string `form:"subtitle" validate:"required,max=250"`
	ImgURL    string `form:"img_url" validate:"required,max=1000,weburl"`
	GitHubURL string `form:"github_url" validate:"required,max=1000,weburl"`
	Password  string `form:"password" validate:"required"`
	CSRFToken string `form:"csrf_token" validate:"required"`
}

// DeleteForm is the delete confirmation form.
type DeleteForm struct {
	Password  string `form:"password" validate:"required"`
	CSRFToken string `form:"csrf_token" validate:"required"`
}

// Fields returns the project columns carried by the form.
func (f ProjectForm) Fields() models.ProjectFields {
	return models.ProjectFields{
		Title:     f.Title,
		Subtitle:  f.Subtitle,
		ImgURL:    f.ImgURL,
		GitHubURL: f.GitHubURL,
	}
}

func projectFormFromProject(p models.Project) ProjectForm {
	return ProjectForm{
		Title:     p.Title,
		Subtitle:  p.Subtitle,
		ImgURL:    p.ImgURL,
		GitHubURL: p.GitHubURL,
	}
}

// bindProjectForm copies posted values into a ProjectForm. Text fields are
// trimmed so whitespace-only input counts as missing; the password is not.
func bindProjectForm(v url.Values) ProjectForm {
	return ProjectForm{
		Title:     strings.TrimSpace(v.Get("title")),
		Subtitle:  strings.TrimSpace(v.Get("subtitle")),
		ImgURL:    strings.TrimSpace(v.Get("img_url")),
		GitHubURL: strings.TrimSpace(v.Get("github_url")),
		Password:  v.Get("password"),
		CSRFToken: v.Get("csrf_token"),
	}
}

func bindDeleteForm(v url.Values) DeleteForm {
	return DeleteForm{
		Password:  v.Get("password"),
		CSRFToken: v.Get("csrf_token"),
	}
}

// FieldErrors maps a form field name to its message.
type FieldErrors map[string]string

// FormValidator runs the struct-tag rules and turns failures into
// per-field messages.
type FormValidator struct {
	v *validator.Validate
}

func NewFormValidator() *FormValidator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("form"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails on an empty tag or nil func.
	_ = v.RegisterValidation("weburl", isWebURL)
	return &FormValidator{v: v}
}

// isWebURL requires a scheme and a host.
func isWebURL(fl validator.FieldLevel) bool {
	u, err := url.Parse(fl.Field().String())
	if err != nil {
		return false
	}
	return u.Scheme != "" && u.Host != ""
}

// Validate returns nil when form passes every rule.
func (fv *FormValidator) Validate(form any) FieldErrors {
	err := fv.v.Struct(form)
	if err == nil {
		return nil
	}
	errs := FieldErrors{}
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		errs["form"] = err.Error()
		return errs
	}
	for _, fe := range verrs {
		if _, seen := errs[fe.Field()]; seen {
			continue
		}
		errs[fe.Field()] = message(fe)
	}
	return errs
}

func message(fe validator.FieldError) string {
	if fe.Field() == "csrf_token" {
		return "The CSRF token is missing."
	}
	switch fe.Tag() {
	case "required":
		return "This field is required."
	case "weburl":
		return "Invalid URL."
	case "max":
		return "Field cannot be longer than " + fe.Param() + " characters."
	}
	return "Invalid value."
}
