package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/erd-studio/engine/internal/api/types"
	"github.com/erd-studio/engine/internal/services"
	"github.com/erd-studio/engine/internal/templates"
	"github.com/erd-studio/engine/pkg/utils"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

type ProjectsHandler struct {
	svc      services.ProjectService
	validate *validator.Validate
}

func NewProjectsHandler(svc services.ProjectService, v *validator.Validate) *ProjectsHandler {
	return &ProjectsHandler{svc: svc, validate: v}
}

func (h *ProjectsHandler) List(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	size, _ := strconv.Atoi(r.URL.Query().Get("page_size"))
	if page <= 0 {
		page = 1
	}
	if size <= 0 || size > maxPageSize {
		size = defaultPageSize
	}
	items, total, err := h.svc.ListProjects(r.Context(), &services.ProjectFilters{Page: page, PageSize: size})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, items, &types.Meta{Page: page, PageSize: size, Total: int64(total)})
}

func (h *ProjectsHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req types.ProjectCreateRequest
	if err := decode(w, r, h.validate, &req); err != nil {
		writeError(w, r, err)
		return
	}
	p, err := h.svc.CreateProject(r.Context(), &services.CreateProjectInput{
		Name:     req.Name,
		Template: templates.Name(req.Template),
	})
	if err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusCreated, p, nil)
}

func (h *ProjectsHandler) Get(w http.ResponseWriter, r *http.Request) {
	p, err := h.svc.GetProject(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, err)
		return
	}
	if tag, err := utils.ETag(p); err == nil {
		w.Header().Set("ETag", tag)
		if r.Header.Get("If-None-Match") == tag {
			w.WriteHeader(http.StatusNotModified)
			return
		}
	}
	writeData(w, r, http.StatusOK, p, nil)
}

func (h *ProjectsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.svc.DeleteProject(r.Context(), id); err != nil {
		writeError(w, r, err)
		return
	}
	writeData(w, r, http.StatusOK, map[string]string{"id": id}, nil)
}
