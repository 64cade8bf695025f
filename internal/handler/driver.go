package handler

import (
	"net/http"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
)

// CreateDriver handles POST /drivers.
func (s *Server) CreateDriver(w http.ResponseWriter, r *http.Request) {
	var body CreateDriverRequest
	if err := decodeBody(r, &body); err != nil {
		writeBodyError(w, err)
		return
	}

	d := domain.Driver{Name: body.Name}
	if body.LicenseNumber != nil {
		d.LicenseNumber = *body.LicenseNumber
	}
	if body.CompanyId != nil {
		d.CompanyID = *body.CompanyId
	}

	created, err := s.drivers.Create(r.Context(), d)
	if err != nil {
		s.writeError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusCreated, driverToResponse(created))
}

// GetDriver handles GET /drivers/{driverID}.
func (s *Server) GetDriver(w http.ResponseWriter, r *http.Request) {
	id, err := driverIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, paramBody(err))
		return
	}

	d, err := s.drivers.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusOK, driverToResponse(d))
}
