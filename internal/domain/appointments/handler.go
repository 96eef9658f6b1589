package appointments

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"farm-vet-appointments/internal/middleware"
	"farm-vet-appointments/internal/ports/auth"
	"farm-vet-appointments/internal/ports/locking"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

func RegisterRoutes(r chi.Router, svc *Service) {
	r.Route("/appointments", func(ar chi.Router) {
		ar.Post("/", createAppointmentHandler(svc))
		ar.Get("/", listAppointmentsHandler(svc))

		ar.Get("/{appointmentID}", getAppointmentHandler(svc))
		ar.Patch("/{appointmentID}", updateAppointmentHandler(svc))
		ar.Delete("/{appointmentID}", deleteAppointmentHandler(svc))

		ar.Post("/{appointmentID}/status", transitionAppointmentHandler(svc))
		ar.Post("/{appointmentID}/cancel", cancelAppointmentHandler(svc))
		ar.Post("/{appointmentID}/reschedule", rescheduleAppointmentHandler(svc))
	})
}

// createAppointmentRequest tiene dos formas según el rol del actor:
// granjero envía vet_id, veterinario envía farmer_id.
type createAppointmentRequest struct {
	VetID    string `json:"vet_id"`
	FarmerID string `json:"farmer_id"`

	AnimalID   string `json:"animal_id"`
	AnimalName string `json:"animal_name" validate:"max=100"`

	ScheduledDate string `json:"scheduled_date" validate:"required"` // YYYY-MM-DD
	ScheduledTime string `json:"scheduled_time" validate:"required"` // HH:MM
	Duration      int    `json:"duration" validate:"omitempty,min=15,max=240"`

	AppointmentType Type     `json:"appointment_type" enums:"consultation,vaccination,checkup,emergency,surgery,follow-up"`
	Priority        Priority `json:"priority" enums:"low,normal,high,emergency"`
	Symptoms        string   `json:"symptoms" validate:"required,max=1000"`
	Description     string   `json:"description"`

	ConsultationFee *float64 `json:"consultation_fee" validate:"omitempty,gte=0"`
	TravelFee       *float64 `json:"travel_fee" validate:"omitempty,gte=0"`
}

type transitionRequest struct {
	Status Status `json:"status" validate:"required" enums:"accepted,rejected,in-progress,completed,cancelled"`
	Notes  string `json:"notes"`
}

type cancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type rescheduleRequest struct {
	ScheduledDate string `json:"scheduled_date" validate:"required"`
	ScheduledTime string `json:"scheduled_time" validate:"required"`
	Duration      int    `json:"duration" validate:"omitempty,min=15,max=240"`
}

type updateAppointmentRequest struct {
	AppointmentType *Type           `json:"appointment_type"`
	Priority        *Priority       `json:"priority"`
	Description     *string         `json:"description"`
	Diagnosis       *string         `json:"diagnosis"`
	Treatment       *string         `json:"treatment"`
	Prescriptions   *[]Prescription `json:"prescriptions"`
	VetNotes        *string         `json:"vet_notes"`
	FarmerNotes     *string         `json:"farmer_notes"`
	ConsultationFee *float64        `json:"consultation_fee" validate:"omitempty,gte=0"`
	TravelFee       *float64        `json:"travel_fee" validate:"omitempty,gte=0"`
}

// appointmentResponse representa una cita devuelta por la API.
type appointmentResponse struct {
	ID                 string         `json:"id"`
	FarmerID           string         `json:"farmer_id"`
	VetID              string         `json:"vet_id"`
	AnimalID           string         `json:"animal_id,omitempty"`
	AnimalName         string         `json:"animal_name,omitempty"`
	ScheduledDate      string         `json:"scheduled_date"`
	ScheduledTime      string         `json:"scheduled_time"`
	Duration           int            `json:"duration"`
	AppointmentType    Type           `json:"appointment_type"`
	Priority           Priority       `json:"priority"`
	Status             Status         `json:"status"`
	IsEmergency        bool           `json:"is_emergency"`
	Symptoms           string         `json:"symptoms"`
	Description        string         `json:"description,omitempty"`
	Diagnosis          string         `json:"diagnosis,omitempty"`
	Treatment          string         `json:"treatment,omitempty"`
	Prescriptions      []Prescription `json:"prescriptions"`
	VetNotes           string         `json:"vet_notes,omitempty"`
	FarmerNotes        string         `json:"farmer_notes,omitempty"`
	ConsultationFee    *float64       `json:"consultation_fee,omitempty"`
	TravelFee          *float64       `json:"travel_fee,omitempty"`
	TotalFee           *float64       `json:"total_fee,omitempty"`
	CancelledBy        CancelledBy    `json:"cancelled_by,omitempty"`
	CancellationReason string         `json:"cancellation_reason,omitempty"`
	AcceptedAt         *time.Time     `json:"accepted_at,omitempty"`
	RejectedAt         *time.Time     `json:"rejected_at,omitempty"`
	CompletedAt        *time.Time     `json:"completed_at,omitempty"`
	CancelledAt        *time.Time     `json:"cancelled_at,omitempty"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// createAppointmentHandler godoc
// @Summary Crear cita
// @Description Un granjero reserva con `vet_id`; un veterinario agenda para un granjero con `farmer_id`. Se rechaza con 409 si el veterinario ya tiene una cita activa que se solapa.
// @Tags appointments
// @Accept json
// @Produce json
// @Param X-Debug-User-ID header string false "Solo en modo dev, ID de usuario"
// @Param X-Debug-User-Role header string false "Solo en modo dev, rol (farmer|vet)"
// @Param Authorization header string false "Bearer token en producción"
// @Param payload body createAppointmentRequest true "Datos de la cita; scheduled_date YYYY-MM-DD, scheduled_time HH:MM"
// @Success 201 {object} appointmentResponse
// @Failure 400 {string} string "invalid json / validación"
// @Failure 401 {string} string "unauthorized"
// @Failure 403 {string} string "forbidden"
// @Failure 409 {string} string "scheduling conflict"
// @Router /appointments [post]
func createAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req createAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		date, err := time.Parse(dateLayout, strings.TrimSpace(req.ScheduledDate))
		if err != nil {
			http.Error(w, "scheduled_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		details := Details{
			AnimalID:        req.AnimalID,
			AnimalName:      req.AnimalName,
			ScheduledDate:   date,
			ScheduledTime:   req.ScheduledTime,
			Duration:        req.Duration,
			Type:            req.AppointmentType,
			Priority:        req.Priority,
			Symptoms:        req.Symptoms,
			Description:     req.Description,
			ConsultationFee: req.ConsultationFee,
			TravelFee:       req.TravelFee,
		}

		var in CreateRequest
		switch claims.Role {
		case auth.RoleFarmer:
			in = FarmerBooking{VetID: req.VetID, Details: details}
		case auth.RoleVet:
			in = VetBooking{FarmerID: req.FarmerID, Details: details}
		default:
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}

		a, err := svc.Book(r.Context(), claims, in)
		if err != nil {
			writeError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(a))
	}
}

// listAppointmentsHandler godoc
// @Summary Listar mis citas
// @Description Granjero: citas que pidió. Veterinario: citas asignadas. Filtros opcionales por estado y rango de fechas.
// @Tags appointments
// @Produce json
// @Param status query string false "CSV de estados (pending,accepted,...)"
// @Param from query string false "Fecha mínima YYYY-MM-DD"
// @Param to query string false "Fecha máxima YYYY-MM-DD"
// @Param limit query int false "1-200, por defecto 50"
// @Success 200 {array} appointmentResponse
// @Failure 400 {string} string "filtros inválidos"
// @Failure 401 {string} string "unauthorized"
// @Router /appointments [get]
func listAppointmentsHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		filter, err := parseListFilter(r)
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		items, err := svc.List(r.Context(), claims, filter)
		if err != nil {
			writeError(w, err)
			return
		}

		out := make([]appointmentResponse, 0, len(items))
		for _, a := range items {
			out = append(out, toAppointmentResponse(a))
		}
		writeJSON(w, http.StatusOK, out)
	}
}

// getAppointmentHandler godoc
// @Summary Ver cita
// @Tags appointments
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Success 200 {object} appointmentResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "appointment not found"
// @Router /appointments/{appointmentID} [get]
func getAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		a, err := svc.Get(r.Context(), claims, chi.URLParam(r, "appointmentID"))
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// updateAppointmentHandler godoc
// @Summary Actualizar datos de la cita
// @Description PATCH de clasificación y datos clínicos. Diagnóstico, tratamiento, recetas, notas del veterinario y tarifas solo los edita el veterinario; farmer_notes solo el granjero.
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Param payload body updateAppointmentRequest true "Campos a modificar"
// @Success 200 {object} appointmentResponse
// @Failure 400 {string} string "invalid json"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "appointment not found"
// @Router /appointments/{appointmentID} [patch]
func updateAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		dec := json.NewDecoder(r.Body)
		dec.DisallowUnknownFields()

		var req updateAppointmentRequest
		if err := dec.Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		a, err := svc.UpdateDetails(r.Context(), claims, chi.URLParam(r, "appointmentID"), DetailsPatch{
			Type:            req.AppointmentType,
			Priority:        req.Priority,
			Description:     req.Description,
			Diagnosis:       req.Diagnosis,
			Treatment:       req.Treatment,
			Prescriptions:   req.Prescriptions,
			VetNotes:        req.VetNotes,
			ConsultationFee: req.ConsultationFee,
			TravelFee:       req.TravelFee,
			FarmerNotes:     req.FarmerNotes,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// transitionAppointmentHandler godoc
// @Summary Cambiar estado de la cita
// @Description El veterinario acepta, rechaza, inicia o completa. Repetir el estado actual no modifica la cita.
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Param payload body transitionRequest true "Nuevo estado"
// @Success 200 {object} appointmentResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "appointment not found"
// @Failure 409 {string} string "invalid status transition"
// @Router /appointments/{appointmentID}/status [post]
func transitionAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req transitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		a, err := svc.Transition(r.Context(), claims, chi.URLParam(r, "appointmentID"), req.Status, req.Notes)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// cancelAppointmentHandler godoc
// @Summary Cancelar cita
// @Description Solo citas pending/accepted que empiezan en más de 2 horas.
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Param payload body cancelRequest false "Motivo"
// @Success 200 {object} appointmentResponse
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "appointment not found"
// @Failure 409 {string} string "appointment cannot be cancelled"
// @Router /appointments/{appointmentID}/cancel [post]
func cancelAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req cancelRequest
		if r.ContentLength != 0 {
			if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		a, err := svc.Cancel(r.Context(), claims, chi.URLParam(r, "appointmentID"), req.Reason)
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// rescheduleAppointmentHandler godoc
// @Summary Reprogramar cita
// @Description Solo citas pending/accepted que empiezan en más de 6 horas. El nuevo horario no puede solaparse con otra cita activa del veterinario.
// @Tags appointments
// @Accept json
// @Produce json
// @Param appointmentID path string true "ID de la cita"
// @Param payload body rescheduleRequest true "Nueva fecha/hora"
// @Success 200 {object} appointmentResponse
// @Failure 400 {string} string "validación"
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "appointment not found"
// @Failure 409 {string} string "conflict / not reschedulable"
// @Router /appointments/{appointmentID}/reschedule [post]
func rescheduleAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		var req rescheduleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			http.Error(w, "invalid json", http.StatusBadRequest)
			return
		}
		if err := validate.Struct(req); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}

		date, err := time.Parse(dateLayout, strings.TrimSpace(req.ScheduledDate))
		if err != nil {
			http.Error(w, "scheduled_date must be YYYY-MM-DD", http.StatusBadRequest)
			return
		}

		a, err := svc.Reschedule(r.Context(), claims, chi.URLParam(r, "appointmentID"), RescheduleInput{
			ScheduledDate: date,
			ScheduledTime: req.ScheduledTime,
			Duration:      req.Duration,
		})
		if err != nil {
			writeError(w, err)
			return
		}
		writeJSON(w, http.StatusOK, toAppointmentResponse(a))
	}
}

// deleteAppointmentHandler godoc
// @Summary Borrar cita
// @Tags appointments
// @Param appointmentID path string true "ID de la cita"
// @Success 204
// @Failure 403 {string} string "forbidden"
// @Failure 404 {string} string "appointment not found"
// @Router /appointments/{appointmentID} [delete]
func deleteAppointmentHandler(svc *Service) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		claims, ok := requireClaims(w, r)
		if !ok {
			return
		}

		if err := svc.Delete(r.Context(), claims, chi.URLParam(r, "appointmentID")); err != nil {
			writeError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	}
}

func parseListFilter(r *http.Request) (ListFilter, error) {
	q := r.URL.Query()

	filter := ListFilter{Limit: 50}
	if v := q.Get("limit"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 && n <= 200 {
			filter.Limit = n
		}
	}

	// status=pending,accepted
	if v := strings.TrimSpace(q.Get("status")); v != "" {
		for _, p := range strings.Split(v, ",") {
			s := Status(strings.TrimSpace(p))
			if s == "" {
				continue
			}
			if !s.Valid() {
				return ListFilter{}, errors.New("unknown status " + string(s))
			}
			filter.Statuses = append(filter.Statuses, s)
		}
	}

	if v := strings.TrimSpace(q.Get("from")); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return ListFilter{}, errors.New("from must be YYYY-MM-DD")
		}
		filter.From = &t
	}
	if v := strings.TrimSpace(q.Get("to")); v != "" {
		t, err := time.Parse(dateLayout, v)
		if err != nil {
			return ListFilter{}, errors.New("to must be YYYY-MM-DD")
		}
		filter.To = &t
	}

	return filter, nil
}

func requireClaims(w http.ResponseWriter, r *http.Request) (auth.Claims, bool) {
	claims, ok := middleware.GetClaims(r.Context())
	if !ok || strings.TrimSpace(claims.UserID) == "" {
		http.Error(w, "unauthorized", http.StatusUnauthorized)
		return auth.Claims{}, false
	}
	return claims, true
}

func writeError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrInvalidInput),
		errors.Is(err, ErrInvalidTimeFormat),
		errors.Is(err, ErrInvalidDuration),
		errors.Is(err, ErrMissingRequiredIdentity):
		http.Error(w, err.Error(), http.StatusBadRequest)
	case errors.Is(err, ErrForbidden):
		http.Error(w, "forbidden", http.StatusForbidden)
	case errors.Is(err, ErrNotFound):
		http.Error(w, "appointment not found", http.StatusNotFound)
	case errors.Is(err, ErrSchedulingConflict),
		errors.Is(err, ErrInvalidTransition),
		errors.Is(err, ErrNotCancellable),
		errors.Is(err, ErrNotReschedulable):
		http.Error(w, err.Error(), http.StatusConflict)
	case errors.Is(err, locking.ErrLockUnavailable):
		http.Error(w, "booking temporarily unavailable", http.StatusServiceUnavailable)
	default:
		http.Error(w, "internal error", http.StatusInternalServerError)
	}
}

func toAppointmentResponse(a Appointment) appointmentResponse {
	prescriptions := a.Prescriptions
	if prescriptions == nil {
		prescriptions = []Prescription{}
	}
	return appointmentResponse{
		ID:                 a.ID,
		FarmerID:           a.FarmerID,
		VetID:              a.VetID,
		AnimalID:           a.AnimalID,
		AnimalName:         a.AnimalName,
		ScheduledDate:      a.ScheduledDate.Format(dateLayout),
		ScheduledTime:      a.ScheduledTime,
		Duration:           a.Duration,
		AppointmentType:    a.Type,
		Priority:           a.Priority,
		Status:             a.Status,
		IsEmergency:        a.IsEmergency,
		Symptoms:           a.Symptoms,
		Description:        a.Description,
		Diagnosis:          a.Diagnosis,
		Treatment:          a.Treatment,
		Prescriptions:      prescriptions,
		VetNotes:           a.VetNotes,
		FarmerNotes:        a.FarmerNotes,
		ConsultationFee:    a.ConsultationFee,
		TravelFee:          a.TravelFee,
		TotalFee:           a.TotalFee,
		CancelledBy:        a.CancelledBy,
		CancellationReason: a.CancellationReason,
		AcceptedAt:         a.AcceptedAt,
		RejectedAt:         a.RejectedAt,
		CompletedAt:        a.CompletedAt,
		CancelledAt:        a.CancelledAt,
		CreatedAt:          a.CreatedAt,
		UpdatedAt:          a.UpdatedAt,
	}
}

// writeJSON está duplicado intencionalmente en handlers de distintos módulos
// para evitar crear paquetes/helpers compartidos demasiado pronto.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
