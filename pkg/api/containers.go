package api

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/sirrobot01/dockdeck/pkg/dispatch"
)

type createContainerRequest struct {
	Image       string `json:"image"`
	PortMapping string `json:"portMapping"`
}

func (s *Server) handleListContainers(w http.ResponseWriter, r *http.Request) {
	containers, err := s.dispatch.ListContainers(r.Context())
	if err != nil {
		commandError(w, err)
		return
	}
	jsonResponse(w, http.StatusOK, containers)
}

func (s *Server) handleCreateContainer(w http.ResponseWriter, r *http.Request) {
	var req createContainerRequest
	if !decodeBody(w, r, &req) {
		return
	}

	if err := s.dispatch.CreateContainer(r.Context(), req.Image, req.PortMapping); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusCreated, "created")
}

func (s *Server) handleStartContainer(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatch.StartContainer(r.Context(), chi.URLParam(r, "name")); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusOK, "started")
}

func (s *Server) handleStopContainer(w http.ResponseWriter, r *http.Request) {
	timeout := dispatch.DefaultStopTimeout
	if v := r.URL.Query().Get("t"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			errorResponse(w, http.StatusBadRequest, "t must be a non-negative number of seconds")
			return
		}
		timeout = n
	}

	if err := s.dispatch.StopContainer(r.Context(), chi.URLParam(r, "name"), timeout); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusOK, "stopped")
}

func (s *Server) handleKillContainer(w http.ResponseWriter, r *http.Request) {
	signal := r.URL.Query().Get("signal")
	if err := s.dispatch.KillContainer(r.Context(), chi.URLParam(r, "name"), signal); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusOK, "killed")
}

func (s *Server) handlePauseContainer(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatch.PauseContainer(r.Context(), chi.URLParam(r, "name")); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusOK, "paused")
}

func (s *Server) handleUnpauseContainer(w http.ResponseWriter, r *http.Request) {
	if err := s.dispatch.UnpauseContainer(r.Context(), chi.URLParam(r, "name")); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusOK, "unpaused")
}

func (s *Server) handleDeleteContainer(w http.ResponseWriter, r *http.Request) {
	force, err := boolQuery(r, "force", true)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "force must be a boolean")
		return
	}
	volumes, err := boolQuery(r, "volumes", true)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "volumes must be a boolean")
		return
	}

	if err := s.dispatch.DeleteContainer(r.Context(), chi.URLParam(r, "name"), force, volumes); err != nil {
		commandError(w, err)
		return
	}
	statusResponse(w, http.StatusOK, "deleted")
}

func (s *Server) handleContainerLogs(w http.ResponseWriter, r *http.Request) {
	stream := newEventStream(w)
	err := s.dispatch.EmitLogs(r.Context(), chi.URLParam(r, "name"), func(line string) error {
		return stream.send("log", line)
	})
	stream.finish(r, err)
}
