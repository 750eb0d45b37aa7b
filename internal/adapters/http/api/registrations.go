package api

import "net/http"

// handleRegister handles POST /api/registrations (multipart).
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	const op = "api.register"
	cleanup, err := ParseMultipart(w, r, s.maxUpload)
	defer cleanup()
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	receipt, err := FormUpload(r, "receipt")
	if err != nil {
		s.writeServiceError(w, r, op, err)
		return
	}
	defer CloseUpload(receipt)

	reg, err := s.deps.Register(r.Context(), RegistrationForm(r), receipt)
	if err != nil {
		s.writeServiceError(w, r, op, Wrap(op, err))
		return
	}
	writeJSON(w, http.StatusCreated, reg)
}
