package handler

import (
	"net/http"

	"github.com/pkordes/driver-compliance/backend/internal/domain"
	"github.com/pkordes/driver-compliance/backend/internal/service"
)

// EvaluateJourney handles POST /drivers/{driverID}/journeys/evaluate.
// It evaluates the driver's stored time records for the requested date,
// records an audit, and returns both together with the derived intervals.
func (s *Server) EvaluateJourney(w http.ResponseWriter, r *http.Request) {
	driverID, err := driverIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, paramBody(err))
		return
	}
	var body EvaluateJourneyRequest
	if err := decodeBody(r, &body); err != nil {
		writeBodyError(w, err)
		return
	}
	if body.Date == nil {
		writeJSON(w, http.StatusUnprocessableEntity, requestBody("date is required"))
		return
	}
	var notes string
	if body.Notes != nil {
		notes = *body.Notes
	}

	eval, err := s.journeys.EvaluateDay(r.Context(), driverID, body.Date.Time, notes)
	if err != nil {
		s.writeError(w, r, err, "journey not found")
		return
	}
	writeJSON(w, http.StatusOK, evaluationToResponse(eval))
}

// ListJourneys handles GET /drivers/{driverID}/journeys.
// Supports ?page= and ?limit= query parameters (defaults: page=1, limit=20, max=100).
func (s *Server) ListJourneys(w http.ResponseWriter, r *http.Request) {
	driverID, err := driverIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, paramBody(err))
		return
	}
	var page, limit *int
	if err := queryParam(r, "page", false, &page); err != nil {
		writeJSON(w, http.StatusBadRequest, paramBody(err))
		return
	}
	if err := queryParam(r, "limit", false, &limit); err != nil {
		writeJSON(w, http.StatusBadRequest, paramBody(err))
		return
	}

	params := domain.NewPaginationParams(page, limit)
	journeys, total, err := s.journeys.ListByDriver(r.Context(), driverID, params)
	if err != nil {
		s.writeError(w, r, err, "driver not found")
		return
	}

	data := make([]Journey, len(journeys))
	for i, j := range journeys {
		data[i] = journeyToResponse(j)
	}
	writeJSON(w, http.StatusOK, JourneyList{
		Data: data,
		Pagination: Pagination{
			Page:  params.Page,
			Limit: params.Limit,
			Total: int(total),
			Pages: params.TotalPages(total),
		},
	})
}

// GetJourney handles GET /journeys/{journeyID}.
func (s *Server) GetJourney(w http.ResponseWriter, r *http.Request) {
	id, err := uuidParam(r, "journeyID")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, paramBody(err))
		return
	}

	j, err := s.journeys.GetByID(r.Context(), id)
	if err != nil {
		s.writeError(w, r, err, "journey not found")
		return
	}
	writeJSON(w, http.StatusOK, journeyToResponse(j))
}

func evaluationToResponse(e service.DayEvaluation) EvaluationResponse {
	intervals := make([]Interval, len(e.Intervals))
	for i, iv := range e.Intervals {
		intervals[i] = Interval{
			Kind:    string(iv.Kind),
			Start:   iv.Start,
			End:     iv.End,
			Minutes: iv.Minutes(),
		}
	}
	anomalies := make([]Anomaly, len(e.Anomalies))
	for i, a := range e.Anomalies {
		anomalies[i] = Anomaly{At: a.At, EventType: string(a.EventType), Message: a.Message}
	}
	return EvaluationResponse{
		Journey:   journeyToResponse(e.Journey),
		Audit:     auditToResponse(e.Audit),
		Intervals: intervals,
		Anomalies: anomalies,
	}
}
