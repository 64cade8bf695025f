package handler

import "net/http"

// ListJourneyAudits handles GET /journeys/{journeyID}/audits.
// Audits are returned oldest first.
func (s *Server) ListJourneyAudits(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "journeyID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, paramBody(err))
		return
	}

	audits, err := s.audits.ListByJourney(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "journey not found")
		return
	}
	writeJSON(w, http.StatusOK, AuditList{Data: auditsToResponse(audits)})
}

// GetAudit handles GET /audits/{auditID}.
func (s *Server) GetAudit(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "auditID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, paramBody(err))
		return
	}

	a, err := s.audits.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "audit not found")
		return
	}
	writeJSON(w, http.StatusOK, auditToResponse(a))
}
