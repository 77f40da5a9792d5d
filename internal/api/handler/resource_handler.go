package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"resource_hub/internal/api/middleware"
	"resource_hub/internal/app/service"
	"resource_hub/internal/common"
	"resource_hub/internal/domain/model"
)

// allowed image formats, matched against both extension and MIME subtype
var allowedImageFormats = map[string]bool{
	"jpg":  true,
	"jpeg": true,
	"png":  true,
	"gif":  true,
	"webp": true,
}

type ResourceHandler struct {
	resourceService *service.ResourceService
	maxUploadBytes  int64
}

func NewResourceHandler(resourceService *service.ResourceService, maxUploadBytes int64) *ResourceHandler {
	return &ResourceHandler{resourceService: resourceService, maxUploadBytes: maxUploadBytes}
}

// RegisterRoutes mounts the five resource operations. Mutations are admin
// only; reads allow both roles.
func (h *ResourceHandler) RegisterRoutes(r chi.Router) {
	adminOnly := middleware.RequireRoles(model.RoleAdmin)
	anyRole := middleware.RequireRoles(model.RoleAdmin, model.RoleUser)

	r.With(adminOnly).Post("/createResource", h.create)
	r.With(adminOnly).Put("/updateResource/{resourceId}", h.update)
	r.With(adminOnly).Delete("/deleteResource/{resourceId}", h.delete)
	r.With(anyRole).Get("/getAllResources", h.list)
	r.With(anyRole).Get("/searchResources", h.search)
}

func (h *ResourceHandler) create(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusForbidden, "access denied")
		return
	}

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	req := service.CreateResourceRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
	}
	if err := req.Validate(); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	upload, err := h.imageFromForm(r, true)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.resourceService.Create(r.Context(), principal.ID, req, upload)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Resource created successfully.", res)
}

func (h *ResourceHandler) update(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusForbidden, "access denied")
		return
	}
	resourceID := chi.URLParam(r, "resourceId")

	if err := r.ParseMultipartForm(h.maxUploadBytes); err != nil {
		common.RespondWithError(w, http.StatusBadRequest, "Invalid multipart form: "+err.Error())
		return
	}
	req := service.UpdateResourceRequest{
		Title:       r.FormValue("title"),
		Description: r.FormValue("description"),
		OldPublicID: r.FormValue("oldPublicId"),
	}
	if err := req.Validate(); err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}

	upload, err := h.imageFromForm(r, false)
	if err != nil {
		common.RespondWithError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.resourceService.Update(r.Context(), principal.ID, resourceID, req, upload)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Resource updated successfully.", res)
}

func (h *ResourceHandler) delete(w http.ResponseWriter, r *http.Request) {
	principal, ok := middleware.GetPrincipalFromContext(r.Context())
	if !ok {
		common.RespondWithError(w, http.StatusForbidden, "access denied")
		return
	}
	resourceID := chi.URLParam(r, "resourceId")

	deleted, err := h.resourceService.Delete(r.Context(), principal.ID, resourceID)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Resource deleted successfully.", deleted)
}

func (h *ResourceHandler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	resources, err := h.resourceService.List(r.Context(), page, limit)
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "All resources fetched successfully.", resources)
}

func (h *ResourceHandler) search(w http.ResponseWriter, r *http.Request) {
	res, err := h.resourceService.Search(r.Context(), r.URL.Query().Get("search"))
	if err != nil {
		common.RespondWithError(w, common.HTTPStatusFromError(err), err.Error())
		return
	}
	common.RespondWithData(w, http.StatusOK, "Resources fetched successfully.", res)
}

// imageFromForm pulls the single "image" file out of the parsed form and
// checks size and format. A missing file errors only when required.
func (h *ResourceHandler) imageFromForm(r *http.Request, required bool) (*service.ImageUpload, error) {
	file, header, err := r.FormFile("image")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) && !required {
			return nil, nil
		}
		return nil, errors.New("please upload image")
	}

	if header.Size > h.maxUploadBytes {
		file.Close()
		return nil, errors.New("image exceeds the maximum upload size")
	}

	contentType := header.Header.Get("Content-Type")
	if !allowedImageFormat(header.Filename, contentType) {
		file.Close()
		return nil, errors.New("file format is not allowed")
	}

	return &service.ImageUpload{
		Filename:    header.Filename,
		ContentType: contentType,
		Body:        file,
	}, nil
}

func allowedImageFormat(filename, contentType string) bool {
	if i := strings.LastIndex(filename, "."); i >= 0 {
		if !allowedImageFormats[strings.ToLower(filename[i+1:])] {
			return false
		}
	} else {
		return false
	}
	if subtype, ok := strings.CutPrefix(contentType, "image/"); ok {
		return allowedImageFormats[strings.ToLower(subtype)]
	}
	return false
}
