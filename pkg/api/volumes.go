package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createVolumeRequest struct {
	Name string `json:"name"`
}

func (s *Server) handleListVolumes(w http.ResponseWriter, r *http.Request) {
	volumes, err := s.dispatch.ListVolumes(r.Context())
	if err != nil {
		commandError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, volumes)
}

func (s *Server) handleCreateVolume(w http.ResponseWriter, r *http.Request) {
	var req createVolumeRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.dispatch.CreateVolume(r.Context(), req.Name); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusCreated, "created")
}

func (s *Server) handleRemoveVolume(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatch.RemoveVolume(r.Context(), chi.URLParam(r, "name")); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusOK, "removed")
}
