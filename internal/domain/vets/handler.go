package vets

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"farm-vet-appointments/internal/middleware"
	"farm-vet-appointments/internal/scheduling"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/vets", func(vr chi.Router) {
		vr.Get("/", listVetsHandler(svc))

		// Perfil propio (rol vet)
		vr.Put("/me", upsertProfileHandler(svc))
		vr.Put("/me/availability", setAvailabilityHandler(svc))
		vr.Delete("/me", removeProfileHandler(svc))

		vr.Get("/{vetID}", getVetHandler(svc))
		vr.Get("/{vetID}/slots", availableSlotsHandler(svc))
	})
}

type profileRequest struct {
	Name            string   `json:"name" validate:"required,max=120"`
	Specialization  string   `json:"specialization" validate:"max=120"`
	Phone           string   `json:"phone" validate:"max=40"`
	ServiceArea     string   `json:"service_area" validate:"max=200"`
	ConsultationFee *float64 `json:"consultation_fee" validate:"omitempty,gte=0"`
}

// availabilityRequest: claves sunday..saturday.
type availabilityRequest map[string]scheduling.DayAvailability

type vetResponse struct {
	ID              string                        `json:"id"`
	Name            string                        `json:"name"`
	Specialization  string                        `json:"specialization,omitempty"`
	Phone           string                        `json:"phone,omitempty"`
	ServiceArea     string                        `json:"service_area,omitempty"`
	ConsultationFee *float64                      `json:"consultation_fee,omitempty"`
	Availability    scheduling.WeeklyAvailability `json:"availability"`
	CreatedAt       time.Time                     `json:"created_at"`
	UpdatedAt       time.Time                     `json:"updated_at"`
}

type removeProfileResponse struct {
	VetID                 string `json:"vet_id"`
	CancelledAppointments int    `json:"cancelled_appointments"`
}

type slotsResponse struct {
	VetID    string   `json:"vet_id"`
	Date     string   `json:"date"`
	Duration int      `json:"duration"`
	Slots    []string `json:"slots"`
}

// upsertProfileHandler godoc
// @Summary Crear/actualizar mi perfil de veterinario
// @Tags vets
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param X-Debug-User-Role header string false "Solo en modo dev, debe ser vet"
// @Param payload body profileRequest true "Perfil"
// @Success 200 {object} vetResponse
// @Failure 400 {string} string "validación"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Router /vets/me [put]
func upsertProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req profileRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		v, err := svc.UpsertProfile(r.Context(), claims, ProfileInput{
			Name:            req.Name,
			Specialization:  req.Specialization,
			Phone:           req.Phone,
			ServiceArea:     req.ServiceArea,
			ConsultationFee: req.ConsultationFee,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVetResponse(v))
	}
}

// setAvailabilityHandler godoc
// @Summary Reemplazar mi disponibilidad semanal
// @Description Mapa sunday..saturday con start/end HH:MM y available. Sin start/end se usa 09:00-17:00.
// @Tags vets
// @Accept json
// @Produce json
// @Param payload body availabilityRequest true "Disponibilidad semanal"
// @Success 200 {object} vetResponse
// @Failure 400 {string} string "validación"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "vet not found"
// @Router /vets/me/availability [put]
func setAvailabilityHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		var req availabilityRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}

		v, err := svc.SetAvailability(r.Context(), claims, scheduling.WeeklyAvailability(req))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVetResponse(v))
	}
}

// removeProfileHandler godoc
// @Summary Dar de baja mi perfil de veterinario
// @Description Cancela las citas activas (cancelled_by=system) y borra el perfil.
// @Tags vets
// @Produce json
// @Success 200 {object} removeProfileResponse
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "vet not found"
// @Router /vets/me [delete]
func removeProfileHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := middleware.GetClaims(r.Context())
		if !ok || strings.TrimSpace(claims.UserID) == "" {
			http.Error(w, "unauthorized", http.StatusUnauthorized)
			return
		}

		n, err := svc.RemoveProfile(r.Context(), claims)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, removeProfileResponse{VetID: claims.UserID, CancelledAppointments: n})
	}
}

// listVetsHandler godoc
// @Summary Listar veterinarios
// @Tags vets
// @Produce json
// @Param specialization query string false "Filtra por especialidad"
// @Param limit query int false "1-200, por defecto 50"
// @Success 200 {array} vetResponse
// @Router /vets [get]
func listVetsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		filter := ListFilter{Specialization: q.Get("specialization")}
		if v := q.Get("limit"); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				filter.Limit = n
			}
		}

		items, err := svc.List(r.Context(), filter)
		if err != nil {
			http.Error(w, "internal error", http.StatusInternalServerError)
			return
		}

		out := make([]vetResponse, 0, len(items))
		for _, v := range items {
			out = append(out, toVetResponse(v))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getVetHandler godoc
// @Summary Ver veterinario
// @Tags vets
// @Produce json
// @Param vetID path string true "ID del veterinario"
// @Success 200 {object} vetResponse
// @Failure 404 {string} string "vet not found"
// @Router /vets/{vetID} [get]
func getVetHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		v, err := svc.GetByID(r.Context(), chi.URLParam(r, "vetID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toVetResponse(v))
	}
}

// availableSlotsHandler godoc
// @Summary Horarios libres del veterinario
// @Description Inicios HH:MM dentro del horario del día cuya duración no se solapa con citas activas. Día cerrado => lista vacía.
// @Tags vets
// @Produce json
// @Param vetID path string true "ID del veterinario"
// @Param date query string true "YYYY-MM-DD"
// @Param duration query int false "Minutos (15-240), por defecto 30"
// @Param step query int false "Paso entre candidatos en minutos, por defecto 30"
// @Success 200 {object} slotsResponse
// @Failure 400 {string} string "parámetros inválidos"
// @Failure 404 {string} string "vet not found"
// @Router /vets/{vetID}/slots [get]
func availableSlotsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		date, err := time.Parse("2006-01-02", strings.TrimSpace(q.Get("date")))
		if err != nil {
			http.Error(w, "date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		duration, err := intParam(q.Get("duration"), scheduling.DefaultStepMinutes)
		if err != nil {
			http.Error(w, "duration must be an integer", http.StatusBadRequest)
			return
		}
		step, err := intParam(q.Get("step"), scheduling.DefaultStepMinutes)
		if err != nil {
			http.Error(w, "step must be an integer", http.StatusBadRequest)
			return
		}

		vetID := chi.URLParam(r, "vetID")
		slots, err := svc.AvailableSlots(r.Context(), vetID, date, duration, step)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, slotsResponse{
			VetID:    vetID,
			Date:     date.Format("2006-01-02"),
			Duration: duration,
			Slots:    slots,
		})
	}
}

func intParam(v string, fallback int) (int, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return fallback, nil
	}
	return strconv.Atoi(v)
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidTimeFormat),
		errors.Is(err, ErrInvalidAvailability):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "vet not found", http.StatusNotFound)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toVetResponse(v Vet) vetResponse {
	week := v.Availability
	if week == nil {
		week = scheduling.WeeklyAvailability{}
	}
	return vetResponse{
		ID:              v.ID,
		Name:            v.Name,
		Specialization:  v.Specialization,
		Phone:           v.Phone,
		ServiceArea:     v.ServiceArea,
		ConsultationFee: v.ConsultationFee,
		Availability:    week,
		CreatedAt:       v.CreatedAt,
		UpdatedAt:       v.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
