package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/sirrobot01/dockdeck/pkg/resource"
)

type pullImageRequest struct {
	Image string `json:"image"`
}

func (s *Server) handleListImages(w http.ResponseWriter, r *http.Request) {
	images, err := s.dispatch.ListImages(r.Context())
	if err != nil {
		commandError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, images)
}

func (s *Server) handleRemoveImage(w http.ResponseWriter, r *http.Request) {
	force, err := boolQuery(r, "force", true)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "force must be a boolean")
		return
	}

	if err := s.dispatch.RemoveImage(r.Context(), chi.URLParam(r, "*"), force); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusOK, "removed")
}

func (s *Server) handlePullImage(w http.ResponseWriter, r *http.Request) {
	var req pullImageRequest
	if !decodeBody(w, r, &req) {
		return
	}

	stream := newEventStream(w)
	err := s.dispatch.PullImage(r.Context(), req.Image, func(ev resource.ProgressEvent) error {
		return stream.send("pull-progress", ev)
	})
	stream.finish(r, err)
}
