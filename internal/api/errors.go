package api

import (
	"net/http"

	"golang-export-scraper/pkg/errors"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// Problem types returned by the API
const (
	TypeValidation = "/errors/validation"
	TypeNotFound   = "/errors/not-found"
	TypeCorrupted  = "/errors/data/corrupted"
	TypeInternal   = "/errors/internal"
)

// ProblemDetails is an RFC 7807 error body
type ProblemDetails struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail,omitempty"`
	Instance string `json:"instance,omitempty"`
	TraceID  string `json:"trace_id,omitempty"`
}

// Render implements the render.Renderer interface
func (p *ProblemDetails) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, p.Status)
	return nil
}

func newProblem(r *http.Request, status int, typ, title, detail string) *ProblemDetails {
	return &ProblemDetails{
		Type:     typ,
		Title:    title,
		Status:   status,
		Detail:   detail,
		Instance: r.URL.Path,
		TraceID:  middleware.GetReqID(r.Context()),
	}
}

// problemFor maps dataset errors to HTTP problems
func problemFor(r *http.Request, err error) *ProblemDetails {
	se, ok := errors.AsScraperError(err)
	if !ok {
		return newProblem(r, http.StatusInternalServerError, TypeInternal, "Internal Error", err.Error())
	}

	switch se.Code {
	case errors.CodeFileNotFound:
		return newProblem(r, http.StatusNotFound, TypeNotFound, "Not Found", se.Message)
	case errors.CodeFileCorrupted, errors.CodeInvalidData:
		return newProblem(r, http.StatusInternalServerError, TypeCorrupted, "Dataset Corrupted", se.Message)
	default:
		return newProblem(r, http.StatusInternalServerError, TypeInternal, "Internal Error", se.Message)
	}
}
