package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

type createNetworkRequest struct {
	Name   string `json:"name"`
	Driver string `json:"driver"`
}

type membershipRequest struct {
	Container string `json:"container"`
	Force     bool   `json:"force"`
}

func (s *Server) handleListNetworks(w http.ResponseWriter, r *http.Request) {
	networks, err := s.dispatch.ListNetworks(r.Context())
	if err != nil {
		commandError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, networks)
}

func (s *Server) handleCreateNetwork(w http.ResponseWriter, r *http.Request) {
	var req createNetworkRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.dispatch.CreateNetwork(r.Context(), req.Name, req.Driver); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusCreated, "created")
}

func (s *Server) handleRemoveNetwork(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatch.RemoveNetwork(r.Context(), chi.URLParam(r, "id")); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusOK, "removed")
}

func (s *Server) handleListNetworkMembers(w http.ResponseWriter, r *http.Request) {
	members, err := s.dispatch.ListNetworkMembers(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		commandError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, members)
}

func (s *Server) handleConnectNetwork(w http.ResponseWriter, r *http.Request) {
	var req membershipRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.dispatch.ConnectContainerToNetwork(r.Context(), req.Container, chi.URLParam(r, "id")); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusOK, "connected")
}

func (s *Server) handleDisconnectNetwork(w http.ResponseWriter, r *http.Request) {
	var req membershipRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.dispatch.DisconnectContainerFromNetwork(r.Context(), req.Container, chi.URLParam(r, "id"), req.Force); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusOK, "disconnected")
}
