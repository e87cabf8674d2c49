package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/revlens-lab/revlens/pkg/domain/model"
	"github.com/revlens-lab/revlens/pkg/utils/errutil"
)

func respondJSON(w http.ResponseWriter, r *http.Request, status int, body any) {
	data, err := json.Marshal(body)
	if err != nil {
		errutil.HandleHTTP(r.Context(), w, err, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(data) //nolint:errcheck // header already committed
}

// respondError maps domain errors onto HTTP status codes
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, model.ErrNotFound):
		status = http.StatusNotFound
	case errors.Is(err, model.ErrConcurrentModification),
		errors.Is(err, model.ErrAmbiguous),
		errors.Is(err, model.ErrCycleDetected):
		status = http.StatusConflict
	case errors.Is(err, model.ErrZeroTarget):
		status = http.StatusBadRequest
	}
	errutil.HandleHTTP(r.Context(), w, err, status)
}

// respondBadRequest reports malformed or unparseable request input
func respondBadRequest(w http.ResponseWriter, r *http.Request, err error) {
	errutil.HandleHTTP(r.Context(), w, err, http.StatusBadRequest)
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	return dec.Decode(dst)
}
