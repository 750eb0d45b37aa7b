package api

import (
	"io"
	"net/http"
	"path"
	"strconv"
)

func (s *Server) handleListRegistrations(w http.ResponseWriter, r *http.Request) {
	regs, err := s.admin.ListRegistrations(r.Context(), r.URL.Query().Get("status"))
	if err != nil {
		s.writeServiceError(w, r, "api.list_registrations", err)
		return
	}
	writeJSON(w, http.StatusOK, regs)
}

func (s *Server) handleConfirm(w http.ResponseWriter, r *http.Request) {
	reg, err := s.admin.ConfirmPayment(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, "api.confirm_payment", err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func (s *Server) handleReject(w http.ResponseWriter, r *http.Request) {
	reg, err := s.admin.RejectPayment(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeServiceError(w, r, "api.reject_payment", err)
		return
	}
	writeJSON(w, http.StatusOK, reg)
}

func (s *Server) handleListPitches(w http.ResponseWriter, r *http.Request) {
	pitches, err := s.admin.ListPitches(r.Context())
	if err != nil {
		s.writeServiceError(w, r, "api.list_pitches", err)
		return
	}
	writeJSON(w, http.StatusOK, pitches)
}

func (s *Server) handleFile(w http.ResponseWriter, r *http.Request) {
	const op = "api.file"
	rc, obj, err := s.admin.OpenFile(r.Context(), r.PathValue("bucket"), r.PathValue("path"))
	if err != nil {
		s.writeServiceError(w, r, op, Wrap(op, err))
		return
	}
	defer rc.Close()

	if obj.ContentType != "" {
		w.Header().Set("Content-Type", obj.ContentType)
	}
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.Header().Set("Content-Disposition", `attachment; filename="`+path.Base(obj.Key)+`"`)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, rc)
}
