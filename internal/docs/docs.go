// Package docs registra la especificación OpenAPI servida en /swagger/*.
// Generado con swag init a partir de las anotaciones de los handlers; se mantiene resumido.
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
    "paths": {
        "/babies": {
            "get": {"tags": ["babies"], "summary": "Listar mis bebés", "produces": ["application/json"], "responses": {"200": {"description": "OK"}, "401": {"description": "unauthorized"}}},
            "post": {"tags": ["babies"], "summary": "Registrar bebé", "consumes": ["application/json"], "produces": ["application/json"], "responses": {"201": {"description": "Created"}, "400": {"description": "invalid json"}, "401": {"description": "unauthorized"}}}
        },
        "/babies/{babyID}": {
            "get": {"tags": ["babies"], "summary": "Obtener bebé", "parameters": [{"type": "string", "name": "babyID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "403": {"description": "forbidden"}, "404": {"description": "baby not found"}}},
            "patch": {"tags": ["babies"], "summary": "Actualizar perfil (regenera el calendario si cambia birth_date)", "parameters": [{"type": "string", "name": "babyID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "400": {"description": "invalid input"}}}
        },
        "/babies/{babyID}/vaccines": {
            "get": {"tags": ["vaccines"], "summary": "Esquema de vacunación", "parameters": [{"type": "string", "name": "babyID", "in": "path", "required": true}, {"type": "string", "name": "status", "in": "query"}, {"type": "string", "name": "on", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/babies/{babyID}/vaccines/calendar": {
            "get": {"tags": ["vaccines"], "summary": "Cuadrícula mensual", "parameters": [{"type": "string", "name": "babyID", "in": "path", "required": true}, {"type": "string", "name": "month", "in": "query"}], "responses": {"200": {"description": "OK"}}}
        },
        "/babies/{babyID}/vaccines/summary": {
            "get": {"tags": ["vaccines"], "summary": "Resumen y próxima vacuna", "parameters": [{"type": "string", "name": "babyID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/babies/{babyID}/vaccines/regenerate": {
            "post": {"tags": ["vaccines"], "summary": "Regenerar esquema", "parameters": [{"type": "string", "name": "babyID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/babies/{babyID}/vaccines/{doseID}/apply": {
            "post": {"tags": ["vaccines"], "summary": "Marcar dosis aplicada", "parameters": [{"type": "string", "name": "babyID", "in": "path", "required": true}, {"type": "string", "name": "doseID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "not found"}}},
            "delete": {"tags": ["vaccines"], "summary": "Desmarcar dosis", "parameters": [{"type": "string", "name": "babyID", "in": "path", "required": true}, {"type": "string", "name": "doseID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "409": {"description": "dose is not applied"}}}
        },
        "/babies/{babyID}/vaccines/{doseID}/reminders": {
            "get": {"tags": ["vaccines"], "summary": "Recordatorios de la dosis", "parameters": [{"type": "string", "name": "babyID", "in": "path", "required": true}, {"type": "string", "name": "doseID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/babies/{babyID}/diary": {
            "get": {"tags": ["diary"], "summary": "Listar diario del bebé", "parameters": [{"type": "string", "name": "babyID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["diary"], "summary": "Registrar síntoma o hábito", "parameters": [{"type": "string", "name": "babyID", "in": "path", "required": true}], "responses": {"201": {"description": "Created"}}}
        },
        "/babies/{babyID}/diary/alerts": {
            "get": {"tags": ["diary"], "summary": "Alertas por síntomas recurrentes", "parameters": [{"type": "string", "name": "babyID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}}}
        },
        "/babies/{babyID}/diary/{entryID}/void": {
            "post": {"tags": ["diary"], "summary": "Anular un registro", "parameters": [{"type": "string", "name": "babyID", "in": "path", "required": true}, {"type": "string", "name": "entryID", "in": "path", "required": true}], "responses": {"200": {"description": "OK"}, "404": {"description": "entry not found"}}}
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Childcare Vaccines API",
	Description:      "Cartilla de vacunación (esquema nacional de México), recordatorios y diario de salud del bebé.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
