package handlers

import (
	"net/http"

	"github.com/seekershq/seekers-backend/internal/services"
)

const maxUploadSize = 20 << 20 // 20 MB

type GalleryHandler struct {
	gallery *services.GalleryService
}

func NewGalleryHandler(gallery *services.GalleryService) *GalleryHandler {
	return &GalleryHandler{gallery: gallery}
}

// Upload accepts a multipart file and stores it in the caller's gallery.
// Field "file" carries the media; "is_private" selects the section.
func (h *GalleryHandler) Upload(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		respondValidation(w, "Invalid multipart form or file too large")
		return
	}
	file, _, err := r.FormFile("file")
	if err != nil {
		respondValidation(w, "File is required")
		return
	}
	defer file.Close()

	private := r.FormValue("is_private") == "true"

	item, err := h.gallery.Upload(r.Context(), userID, file, private)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusCreated, "Media uploaded", envelope{"item": item})
}

// List returns a user's gallery section. ?private=true is owner-only.
func (h *GalleryHandler) List(w http.ResponseWriter, r *http.Request) {
	viewerID, ok := authedUser(w, r)
	if !ok {
		return
	}
	ownerID, ok := pathUUID(w, r, "userID")
	if !ok {
		return
	}

	private := r.URL.Query().Get("private") == "true"

	items, err := h.gallery.List(r.Context(), viewerID, ownerID, private)
	if err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "", envelope{"items": items})
}

// Delete removes one of the caller's gallery items.
func (h *GalleryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := authedUser(w, r)
	if !ok {
		return
	}
	itemID, ok := pathUUID(w, r, "itemID")
	if !ok {
		return
	}

	if err := h.gallery.Delete(r.Context(), userID, itemID); err != nil {
		respondError(w, err)
		return
	}
	respondSuccess(w, http.StatusOK, "Media deleted", nil)
}
