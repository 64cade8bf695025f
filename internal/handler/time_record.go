package handler

import (
	"errors"
	"net/http"

	openapi_types "github.com/oapi-codegen/runtime/types"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
)

// CreateTimeRecord handles POST /drivers/{driverID}/time-records.
func (s *Server) CreateTimeRecord(w http.ResponseWriter, r *http.Request) {
	driverID, err := driverIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, paramBody(err))
		return
	}
	var body CreateTimeRecordRequest
	if err := decodeBody(r, &body); err != nil {
		writeBodyError(w, err)
		return
	}
	rec, err := requestToTimeRecord(driverID, body)
	if err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody(err.Error()))
		return
	}

	created, err := s.records.Create(r.Context(), rec)
	if err != nil {
		s.writeError(w, r, err, "driver not found")
		return
	}
	writeJSON(w, http.StatusCreated, timeRecordToResponse(created))
}

// ListTimeRecords handles GET /drivers/{driverID}/time-records?date=YYYY-MM-DD.
func (s *Server) ListTimeRecords(w http.ResponseWriter, r *http.Request) {
	driverID, err := driverIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, paramBody(err))
		return
	}
	var date openapi_types.Date
	if err := queryParam(r, "date", true, &date); err != nil {
		writeJSON(w, http.StatusBadRequest, paramBody(err))
		return
	}

	records, err := s.records.ListByDriverAndDate(r.Context(), driverID, date.Time)
	if err != nil {
		s.writeError(w, r, err, "driver not found")
		return
	}

	data := make([]TimeRecord, len(records))
	for i, rec := range records {
		data[i] = timeRecordToResponse(rec)
	}
	writeJSON(w, http.StatusOK, TimeRecordList{Date: date, Data: data})
}

// requestToTimeRecord converts a CreateTimeRecordRequest body into a domain.TimeRecord.
// Returns an error if required fields are missing.
func requestToTimeRecord(driverID int64, body CreateTimeRecordRequest) (domain.TimeRecord, error) {
	if body.EventType == "" {
		return domain.TimeRecord{}, errors.New("event_type is required")
	}
	if body.EventTimestamp == nil {
		return domain.TimeRecord{}, errors.New("event_timestamp is required")
	}
	rec := domain.TimeRecord{
		DriverID:       driverID,
		EventType:      domain.EventType(body.EventType),
		EventTimestamp: body.EventTimestamp.UTC(),
	}
	if body.VehicleId != nil {
		rec.VehicleID = *body.VehicleId
	}
	if body.Location != nil {
		rec.Location = *body.Location
	}
	return rec, nil
}
