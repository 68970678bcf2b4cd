// Copyright (c) 2026 Krishi Mitra. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package advisory

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/taibuivan/krishimitra/internal/platform/apperr"
	requestutil "github.com/taibuivan/krishimitra/internal/platform/request"
	"github.com/taibuivan/krishimitra/internal/platform/respond"
	"github.com/taibuivan/krishimitra/internal/platform/validate"
	"github.com/taibuivan/krishimitra/pkg/pointer"
)

const msgCoordinatesRequired = "Latitude and longitude are required"

// Handler exposes the advisory engine over HTTP.
type Handler struct {
	engine *Engine
}

// NewHandler constructs a new [Handler].
func NewHandler(engine *Engine) *Handler {
	return &Handler{engine: engine}
}

// Routes mounts the advisory endpoints. The caller applies authentication.
//
// # Endpoints
//   - POST /suggest-crops : Crop suggestions for {lat, lon}.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()
	router.Post("/suggest-crops", handler.SuggestCrops)
	return router
}

// suggestRequest uses pointers so an explicit 0 is told apart from a missing field.
type suggestRequest struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

type suggestResponse struct {
	Success bool `json:"success"`
	*Recommendation
}

// SuggestCrops handles POST /api/suggest-crops.
func (handler *Handler) SuggestCrops(writer http.ResponseWriter, request *http.Request) {
	var body suggestRequest
	if err := requestutil.DecodeJSON(request, &body); err != nil {
		respond.Error(writer, request, err)
		return
	}

	if body.Lat == nil || body.Lon == nil {
		respond.Error(writer, request, apperr.ValidationError(msgCoordinatesRequired))
		return
	}

	validator := &validate.Validator{}
	validator.
		FloatRange("lat", *body.Lat, -90, 90).
		FloatRange("lon", *body.Lon, -180, 180)
	if err := validator.Err(); err != nil {
		respond.Error(writer, request, err)
		return
	}

	recommendation, err := handler.engine.Advise(request.Context(), Coordinate{
		Lat: pointer.Val(body.Lat),
		Lon: pointer.Val(body.Lon),
	})
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.OK(writer, suggestResponse{Success: true, Recommendation: recommendation})
}
