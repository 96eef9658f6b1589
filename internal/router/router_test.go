package router_test

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"slices"
	"testing"

	"farm-vet-appointments/internal/router"
)

// Lunes lejano para que las ventanas de cancelación no dependan del reloj.
const visitDay = "2027-03-01"

type actor struct {
	id   string
	role string
}

var (
	vet     = actor{id: "vet-1", role: "vet"}
	farmer  = actor{id: "farmer-1", role: "farmer"}
	farmer2 = actor{id: "farmer-2", role: "farmer"}
	nobody  = actor{}
)

func TestHTTP_EndToEnd_BookingLifecycle(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	setupVet(t, ts.URL)

	// 1) Sin citas, el primer hueco de la mañana está libre
	{
		slots := getSlots(t, ts.URL, "/vets/vet-1/slots?date="+visitDay+"&duration=60&step=30")
		if !slices.Contains(slots, "09:00") || !slices.Contains(slots, "10:00") {
			t.Fatalf("expected 09:00 and 10:00 free, got %v", slots)
		}
	}

	// 2) Farmer reserva 10:00-10:30
	first := bookAppointment(t, ts.URL, farmer, map[string]any{
		"vet_id":         vet.id,
		"animal_name":    "Lola",
		"scheduled_date": visitDay,
		"scheduled_time": "10:00",
		"duration":       30,
		"symptoms":       "cojera en pata trasera",
	})
	if first.Status != "pending" {
		t.Fatalf("expected pending, got %s", first.Status)
	}

	// 3) Otro farmer choca con 10:15 => 409
	{
		st, body := doReq(t, ts.URL, "POST", "/appointments", farmer2, map[string]any{
			"vet_id":         vet.id,
			"animal_name":    "Toro",
			"scheduled_date": visitDay,
			"scheduled_time": "10:15",
			"duration":       30,
			"symptoms":       "fiebre",
		})
		if st != http.StatusConflict {
			t.Fatalf("expected 409 overlapping booking, got %d body=%s", st, string(body))
		}
	}

	// 4) Hueco adyacente 10:30 es válido
	bookAppointment(t, ts.URL, farmer2, map[string]any{
		"vet_id":         vet.id,
		"animal_name":    "Toro",
		"scheduled_date": visitDay,
		"scheduled_time": "10:30",
		"duration":       30,
		"symptoms":       "fiebre",
	})

	// 5) Los huecos reflejan las reservas
	{
		slots := getSlots(t, ts.URL, "/vets/vet-1/slots?date="+visitDay+"&duration=60&step=30")
		if !slices.Contains(slots, "09:00") {
			t.Fatalf("expected 09:00 still free, got %v", slots)
		}
		if slices.Contains(slots, "09:30") || slices.Contains(slots, "10:00") {
			t.Fatalf("expected 09:30/10:00 taken, got %v", slots)
		}
	}

	// 6) Farmer no puede aceptar; el vet sí
	{
		st, _ := doReq(t, ts.URL, "POST", "/appointments/"+first.ID+"/status", farmer, map[string]any{
			"status": "accepted",
		})
		if st != http.StatusForbidden {
			t.Fatalf("expected 403 farmer accepting, got %d", st)
		}
	}
	{
		st, body := doReq(t, ts.URL, "POST", "/appointments/"+first.ID+"/status", vet, map[string]any{
			"status": "accepted",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 accept, got %d body=%s", st, string(body))
		}
		got := decodeAppointment(t, body)
		if got.Status != "accepted" || got.AcceptedAt == nil {
			t.Fatalf("expected accepted with accepted_at, got %+v", got)
		}
	}

	// 7) Otro farmer no ve la cita ajena
	{
		st, _ := doReq(t, ts.URL, "GET", "/appointments/"+first.ID, farmer2, nil)
		if st != http.StatusForbidden && st != http.StatusNotFound {
			t.Fatalf("expected 403/404 for foreign appointment, got %d", st)
		}
	}

	// 8) Farmer cancela y el horario queda libre
	{
		st, body := doReq(t, ts.URL, "POST", "/appointments/"+first.ID+"/cancel", farmer, map[string]any{
			"reason": "el animal mejoró",
		})
		if st != http.StatusOK {
			t.Fatalf("expected 200 cancel, got %d body=%s", st, string(body))
		}
		got := decodeAppointment(t, body)
		if got.Status != "cancelled" || got.CancelledBy != "farmer" {
			t.Fatalf("expected cancelled by farmer, got %+v", got)
		}
	}
	bookAppointment(t, ts.URL, farmer2, map[string]any{
		"vet_id":         vet.id,
		"animal_name":    "Toro",
		"scheduled_date": visitDay,
		"scheduled_time": "10:00",
		"duration":       30,
		"symptoms":       "revisión",
	})

	// 9) Cancelar de nuevo ya no es posible
	{
		st, _ := doReq(t, ts.URL, "POST", "/appointments/"+first.ID+"/cancel", farmer, nil)
		if st != http.StatusConflict {
			t.Fatalf("expected 409 cancelling twice, got %d", st)
		}
	}

	// 10) Listado del farmer
	{
		st, body := doReq(t, ts.URL, "GET", "/appointments?status=cancelled", farmer, nil)
		if st != http.StatusOK {
			t.Fatalf("expected 200 list, got %d body=%s", st, string(body))
		}
		var items []appointmentDTO
		_ = json.Unmarshal(body, &items)
		if len(items) != 1 || items[0].ID != first.ID {
			t.Fatalf("expected only the cancelled appointment, got %+v", items)
		}
	}
}

func TestHTTP_Booking_Validation(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	setupVet(t, ts.URL)

	base := func() map[string]any {
		return map[string]any{
			"vet_id":         vet.id,
			"animal_name":    "Lola",
			"scheduled_date": visitDay,
			"scheduled_time": "09:00",
			"symptoms":       "tos",
		}
	}

	cases := []struct {
		name   string
		mutate func(m map[string]any)
		want   int
	}{
		{"hora inválida", func(m map[string]any) { m["scheduled_time"] = "25:00" }, http.StatusBadRequest},
		{"minutos de un dígito", func(m map[string]any) { m["scheduled_time"] = "09:5" }, http.StatusBadRequest},
		{"sin identidad del animal", func(m map[string]any) { delete(m, "animal_name") }, http.StatusBadRequest},
		{"duración corta", func(m map[string]any) { m["duration"] = 10 }, http.StatusBadRequest},
		{"duración larga", func(m map[string]any) { m["duration"] = 300 }, http.StatusBadRequest},
		{"vet desconocido", func(m map[string]any) { m["vet_id"] = "ghost" }, http.StatusBadRequest},
		{"fecha inválida", func(m map[string]any) { m["scheduled_date"] = "01/03/2027" }, http.StatusBadRequest},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload := base()
			tc.mutate(payload)
			st, body := doReq(t, ts.URL, "POST", "/appointments", farmer, payload)
			if st != tc.want {
				t.Fatalf("expected %d, got %d body=%s", tc.want, st, string(body))
			}
		})
	}
}

func TestHTTP_List_ChronologicalWithUnpaddedTime(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	setupVet(t, ts.URL)

	for _, clock := range []string{"10:00", "9:30"} {
		bookAppointment(t, ts.URL, farmer, map[string]any{
			"vet_id":         vet.id,
			"animal_name":    "Lola",
			"scheduled_date": visitDay,
			"scheduled_time": clock,
			"symptoms":       "control",
		})
	}

	st, body := doReq(t, ts.URL, "GET", "/appointments", farmer, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 list, got %d body=%s", st, string(body))
	}
	var items []struct {
		ScheduledTime string `json:"scheduled_time"`
	}
	_ = json.Unmarshal(body, &items)
	if len(items) != 2 || items[0].ScheduledTime != "09:30" || items[1].ScheduledTime != "10:00" {
		t.Fatalf("expected [09:30 10:00], got %+v", items)
	}
}

func TestHTTP_Booking_EmergencyPriority(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	setupVet(t, ts.URL)

	got := bookAppointment(t, ts.URL, farmer, map[string]any{
		"vet_id":         vet.id,
		"animal_name":    "Vaca 12",
		"scheduled_date": visitDay,
		"scheduled_time": "11:00",
		"priority":       "emergency",
		"symptoms":       "parto complicado",
	})
	if !got.IsEmergency {
		t.Fatalf("expected is_emergency=true, got %+v", got)
	}
	if got.Duration != 30 {
		t.Fatalf("expected default duration 30, got %d", got.Duration)
	}
}

func TestHTTP_Unauthorized(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	for _, path := range []string{"/appointments", "/animals"} {
		st, _ := doReq(t, ts.URL, "GET", path, nobody, nil)
		if st != http.StatusUnauthorized {
			t.Fatalf("expected 401 on %s, got %d", path, st)
		}
	}

	st, body := doReq(t, ts.URL, "GET", "/health", nobody, nil)
	if st != http.StatusOK || string(body) != "ok" {
		t.Fatalf("expected health ok, got %d %q", st, string(body))
	}
}

func TestHTTP_VetProfile_RequiresVetRole(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	st, _ := doReq(t, ts.URL, "PUT", "/vets/me", farmer, map[string]any{"name": "Impostor"})
	if st != http.StatusForbidden {
		t.Fatalf("expected 403 farmer creating vet profile, got %d", st)
	}
}

func TestHTTP_Status_CancelledTwiceIsNoop(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	setupVet(t, ts.URL)
	a := bookAppointment(t, ts.URL, farmer, map[string]any{
		"vet_id":         vet.id,
		"animal_name":    "Lola",
		"scheduled_date": visitDay,
		"scheduled_time": "10:00",
		"duration":       30,
		"symptoms":       "fiebre",
	})

	for i := 0; i < 2; i++ {
		st, body := doReq(t, ts.URL, "POST", "/appointments/"+a.ID+"/status", vet, map[string]any{
			"status": "cancelled",
			"notes":  "tormenta",
		})
		if st != http.StatusOK {
			t.Fatalf("call %d: expected 200, got %d body=%s", i+1, st, string(body))
		}
		got := decodeAppointment(t, body)
		if got.Status != "cancelled" || got.CancelledBy != "vet" {
			t.Fatalf("call %d: expected cancelled by vet, got %+v", i+1, got)
		}
	}
}

func TestHTTP_VetRemoval_CancelsActiveAppointments(t *testing.T) {
	ts := httptest.NewServer(router.NewRouter(router.Options{AuthVerifier: nil}))
	defer ts.Close()

	setupVet(t, ts.URL)
	a := bookAppointment(t, ts.URL, farmer, map[string]any{
		"vet_id":         vet.id,
		"animal_name":    "Lola",
		"scheduled_date": visitDay,
		"scheduled_time": "10:00",
		"duration":       30,
		"symptoms":       "fiebre",
	})

	if st, _ := doReq(t, ts.URL, "DELETE", "/vets/me", farmer, nil); st != http.StatusForbidden {
		t.Fatalf("expected 403 farmer removing vet profile, got %d", st)
	}

	st, body := doReq(t, ts.URL, "DELETE", "/vets/me", vet, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 remove profile, got %d body=%s", st, string(body))
	}
	var res struct {
		VetID     string `json:"vet_id"`
		Cancelled int    `json:"cancelled_appointments"`
	}
	if err := json.Unmarshal(body, &res); err != nil || res.VetID != vet.id || res.Cancelled != 1 {
		t.Fatalf("unexpected removal response %s (err=%v)", string(body), err)
	}

	st, body = doReq(t, ts.URL, "GET", "/appointments/"+a.ID, farmer, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 get appointment, got %d body=%s", st, string(body))
	}
	if got := decodeAppointment(t, body); got.Status != "cancelled" || got.CancelledBy != "system" {
		t.Fatalf("expected cancelled by system, got %+v", got)
	}

	if st, _ := doReq(t, ts.URL, "GET", "/vets/"+vet.id, farmer, nil); st != http.StatusNotFound {
		t.Fatalf("expected 404 for removed vet, got %d", st)
	}
}

// --- helpers ---

type appointmentDTO struct {
	ID          string  `json:"id"`
	Status      string  `json:"status"`
	Duration    int     `json:"duration"`
	IsEmergency bool    `json:"is_emergency"`
	CancelledBy string  `json:"cancelled_by"`
	AcceptedAt  *string `json:"accepted_at"`
}

func setupVet(t *testing.T, baseURL string) {
	t.Helper()

	st, body := doReq(t, baseURL, "PUT", "/vets/me", vet, map[string]any{
		"name":           "Dra. Campos",
		"specialization": "bovinos",
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 upsert vet, got %d body=%s", st, string(body))
	}

	st, body = doReq(t, baseURL, "PUT", "/vets/me/availability", vet, map[string]any{
		"monday": map[string]any{"start": "09:00", "end": "12:00", "available": true},
	})
	if st != http.StatusOK {
		t.Fatalf("expected 200 set availability, got %d body=%s", st, string(body))
	}
}

func bookAppointment(t *testing.T, baseURL string, who actor, payload map[string]any) appointmentDTO {
	t.Helper()

	st, body := doReq(t, baseURL, "POST", "/appointments", who, payload)
	if st != http.StatusCreated {
		t.Fatalf("expected 201 create appointment, got %d body=%s", st, string(body))
	}
	a := decodeAppointment(t, body)
	if a.ID == "" {
		t.Fatalf("create appointment: missing id body=%s", string(body))
	}
	return a
}

func decodeAppointment(t *testing.T, body []byte) appointmentDTO {
	t.Helper()

	var a appointmentDTO
	if err := json.Unmarshal(body, &a); err != nil {
		t.Fatalf("decode appointment: %v body=%s", err, string(body))
	}
	return a
}

func getSlots(t *testing.T, baseURL, path string) []string {
	t.Helper()

	st, body := doReq(t, baseURL, "GET", path, farmer, nil)
	if st != http.StatusOK {
		t.Fatalf("expected 200 slots, got %d body=%s", st, string(body))
	}
	var resp struct {
		Slots []string `json:"slots"`
	}
	_ = json.Unmarshal(body, &resp)
	return resp.Slots
}

func doReq(t *testing.T, baseURL, method, path string, who actor, body any) (int, []byte) {
	t.Helper()

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal: %v", err)
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequest(method, baseURL+path, rdr)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if who.id != "" {
		req.Header.Set("X-Debug-User-ID", who.id)
		req.Header.Set("X-Debug-User-Role", who.role)
	}

	res, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer res.Body.Close()

	respBody, _ := io.ReadAll(res.Body)
	return res.StatusCode, respBody
}
