package api

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/okian/convention/internal/domain/model"
)

type verifyRequest struct {
	UID string `json:"uid"`
}

func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	const op = "api.verify_delegate"
	var req verifyRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4<<10)).Decode(&req); err != nil {
		s.writeServiceError(w, r, op, WrapKind(op, ErrBadRequest, err))
		return
	}
	d, err := s.deps.VerifyDelegate(r.Context(), req.UID)
	if err != nil {
		s.writeServiceError(w, r, op, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *Server) handleSubmitPitch(w http.ResponseWriter, r *http.Request) {
	const op = "api.submit_pitch"
	cleanup, err := ParseMultipart(w, r, s.maxUpload)
	defer cleanup()
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	video, err := FormUpload(r, "video")
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	defer CloseUpload(video)
	doc, err := FormUpload(r, "document")
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	defer CloseUpload(doc)

	agreed, _ := strconv.ParseBool(r.FormValue("agree"))
	p, err := s.deps.SubmitPitch(r.Context(), model.PitchSubmission{
		UID:      r.FormValue("uid"),
		Agreed:   agreed || r.FormValue("agree") == "on",
		Video:    video,
		Document: doc,
	})
	if err != nil {
		s.writeServiceError(w, r, op, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, p)
}
