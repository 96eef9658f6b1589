package appointments

import "time"

const (
	MinDuration     = 15
	MaxDuration     = 240
	DefaultDuration = 30

	MaxSymptomsLen = 1000
)

// Status del ciclo de vida de una cita.
// @Enum pending, accepted, rejected, in-progress, completed, cancelled
type Status string

const (
	StatusPending    Status = "pending"
	StatusAccepted   Status = "accepted"
	StatusRejected   Status = "rejected"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusCancelled  Status = "cancelled"
)

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusRejected, StatusInProgress, StatusCompleted, StatusCancelled:
		return true
	}
	return false
}

// IsActive: estados que cuentan para detectar solapamientos.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusAccepted || s == StatusInProgress
}

func (s Status) IsTerminal() bool {
	return s == StatusCompleted || s == StatusRejected || s == StatusCancelled
}

// ActiveStatuses devuelve el conjunto activo en orden fijo (útil para queries).
func ActiveStatuses() []Status {
	return []Status{StatusPending, StatusAccepted, StatusInProgress}
}

// Type de consulta.
// @Enum consultation, vaccination, checkup, emergency, surgery, follow-up
type Type string

const (
	TypeConsultation Type = "consultation"
	TypeVaccination  Type = "vaccination"
	TypeCheckup      Type = "checkup"
	TypeEmergency    Type = "emergency"
	TypeSurgery      Type = "surgery"
	TypeFollowUp     Type = "follow-up"
)

func (t Type) Valid() bool {
	switch t {
	case TypeConsultation, TypeVaccination, TypeCheckup, TypeEmergency, TypeSurgery, TypeFollowUp:
		return true
	}
	return false
}

// Priority de la cita.
// @Enum low, normal, high, emergency
type Priority string

const (
	PriorityLow       Priority = "low"
	PriorityNormal    Priority = "normal"
	PriorityHigh      Priority = "high"
	PriorityEmergency Priority = "emergency"
)

func (p Priority) Valid() bool {
	switch p {
	case PriorityLow, PriorityNormal, PriorityHigh, PriorityEmergency:
		return true
	}
	return false
}

// CancelledBy indica quién canceló.
type CancelledBy string

const (
	CancelledByFarmer CancelledBy = "farmer"
	CancelledByVet    CancelledBy = "vet"
	CancelledBySystem CancelledBy = "system"
)

type Prescription struct {
	Medication   string `json:"medication"`
	Dosage       string `json:"dosage"`
	Frequency    string `json:"frequency"`
	Duration     string `json:"duration"`
	Instructions string `json:"instructions,omitempty"`
}

// Appointment es la unidad de agenda entre un granjero y un veterinario.
type Appointment struct {
	ID string

	FarmerID string
	VetID    string

	// Exactamente uno de los dos.
	AnimalID   string
	AnimalName string

	ScheduledDate time.Time // fecha de calendario (solo Y/M/D)
	ScheduledTime string    // HH:MM 24h
	Duration      int       // minutos

	Type        Type
	Priority    Priority
	Status      Status
	IsEmergency bool

	Symptoms      string
	Description   string
	Diagnosis     string
	Treatment     string
	Prescriptions []Prescription
	VetNotes      string
	FarmerNotes   string

	ConsultationFee *float64
	TravelFee       *float64
	TotalFee        *float64

	CancelledBy        CancelledBy
	CancellationReason string

	AcceptedAt  *time.Time
	RejectedAt  *time.Time
	CompletedAt *time.Time
	CancelledAt *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
