// Package docs registra la especificación OpenAPI servida en /swagger/*.
// Regenerar con: swag init -g cmd/api/main.go -o internal/docs
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "security": [{"BearerAuth": []}],
    "paths": {
        "/health": {
            "get": {"tags": ["health"], "summary": "Liveness", "responses": {"200": {"description": "ok"}}}
        },
        "/appointments": {
            "post": {
                "tags": ["appointments"],
                "summary": "Crear cita",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [{"in": "body", "name": "payload", "required": true, "schema": {"$ref": "#/definitions/createAppointmentRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/appointmentResponse"}},
                    "400": {"description": "validación"},
                    "401": {"description": "unauthorized"},
                    "403": {"description": "forbidden"},
                    "409": {"description": "scheduling conflict"}
                }
            },
            "get": {
                "tags": ["appointments"],
                "summary": "Listar mis citas",
                "produces": ["application/json"],
                "parameters": [
                    {"type": "string", "name": "status", "in": "query"},
                    {"type": "string", "name": "from", "in": "query"},
                    {"type": "string", "name": "to", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/appointmentResponse"}}}}
            }
        },
        "/appointments/{appointmentID}": {
            "get": {"tags": ["appointments"], "summary": "Ver cita", "parameters": [{"type": "string", "name": "appointmentID", "in": "path", "required": true}], "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/appointmentResponse"}}, "404": {"description": "appointment not found"}}},
            "patch": {"tags": ["appointments"], "summary": "Actualizar datos de la cita", "parameters": [{"type": "string", "name": "appointmentID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "forbidden"}}},
            "delete": {"tags": ["appointments"], "summary": "Borrar cita", "parameters": [{"type": "string", "name": "appointmentID", "in": "path", "required": true}], "responses": {"204": {"description": "No Content"}}}
        },
        "/appointments/{appointmentID}/status": {
            "post": {"tags": ["appointments"], "summary": "Cambiar estado de la cita", "parameters": [{"type": "string", "name": "appointmentID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "invalid status transition"}}}
        },
        "/appointments/{appointmentID}/cancel": {
            "post": {"tags": ["appointments"], "summary": "Cancelar cita", "parameters": [{"type": "string", "name": "appointmentID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "appointment cannot be cancelled"}}}
        },
        "/appointments/{appointmentID}/reschedule": {
            "post": {"tags": ["appointments"], "summary": "Reprogramar cita", "parameters": [{"type": "string", "name": "appointmentID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "conflict / not reschedulable"}}}
        },
        "/vets": {
            "get": {"tags": ["vets"], "summary": "Listar veterinarios", "responses": {"200": {"description": "OK"}}}
        },
        "/vets/me": {
            "put": {"tags": ["vets"], "summary": "Crear/actualizar mi perfil de veterinario", "responses": {"200": {"description": "OK"}, "403": {"description": "forbidden"}}},
            "delete": {"tags": ["vets"], "summary": "Dar de baja mi perfil de veterinario", "description": "Cancela las citas activas (cancelled_by=system) y borra el perfil.", "responses": {"200": {"description": "OK"}, "403": {"description": "forbidden"}, "404": {"description": "vet not found"}}}
        },
        "/vets/me/availability": {
            "put": {"tags": ["vets"], "summary": "Reemplazar mi disponibilidad semanal", "responses": {"200": {"description": "OK"}, "400": {"description": "validación"}}}
        },
        "/vets/{vetID}": {
            "get": {"tags": ["vets"], "summary": "Ver veterinario", "parameters": [{"type": "string", "name": "vetID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "vet not found"}}}
        },
        "/vets/{vetID}/slots": {
            "get": {
                "tags": ["vets"],
                "summary": "Horarios libres del veterinario",
                "parameters": [
                    {"type": "string", "name": "vetID", "in": "path", "required": true},
                    {"type": "string", "name": "date", "in": "query", "required": true},
                    {"type": "integer", "name": "duration", "in": "query"},
                    {"type": "integer", "name": "step", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}, "400": {"description": "parámetros inválidos"}}
            }
        },
        "/animals": {
            "post": {"tags": ["animals"], "summary": "Registrar animal", "responses": {"201": {"description": "Created"}}},
            "get": {"tags": ["animals"], "summary": "Listar mis animales", "responses": {"200": {"description": "OK"}}}
        },
        "/animals/{animalID}": {
            "get": {"tags": ["animals"], "summary": "Ver animal", "parameters": [{"type": "string", "name": "animalID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "patch": {"tags": ["animals"], "summary": "Actualizar animal", "parameters": [{"type": "string", "name": "animalID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        }
    },
    "definitions": {
        "createAppointmentRequest": {
            "type": "object",
            "required": ["scheduled_date", "scheduled_time", "symptoms"],
            "properties": {
                "vet_id": {"type": "string"},
                "farmer_id": {"type": "string"},
                "animal_id": {"type": "string"},
                "animal_name": {"type": "string"},
                "scheduled_date": {"type": "string", "example": "2026-10-19"},
                "scheduled_time": {"type": "string", "example": "10:00"},
                "duration": {"type": "integer", "minimum": 15, "maximum": 240},
                "appointment_type": {"type": "string", "enum": ["consultation", "vaccination", "checkup", "emergency", "surgery", "follow-up"]},
                "priority": {"type": "string", "enum": ["low", "normal", "high", "emergency"]},
                "symptoms": {"type": "string", "maxLength": 1000},
                "description": {"type": "string"},
                "consultation_fee": {"type": "number"},
                "travel_fee": {"type": "number"}
            }
        },
        "appointmentResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "farmer_id": {"type": "string"},
                "vet_id": {"type": "string"},
                "scheduled_date": {"type": "string"},
                "scheduled_time": {"type": "string"},
                "duration": {"type": "integer"},
                "appointment_type": {"type": "string"},
                "priority": {"type": "string"},
                "status": {"type": "string", "enum": ["pending", "accepted", "rejected", "in-progress", "completed", "cancelled"]},
                "is_emergency": {"type": "boolean"},
                "total_fee": {"type": "number"}
            }
        }
    }
}`

// SwaggerInfo contiene la metadata exportada de la API.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Farm Vet Appointments API",
	Description:      "Agenda de visitas veterinarias a campo: reservas, solapamientos y ciclo de vida de la cita.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
