// Package docs registra la definición Swagger de la API JSON.
// Se regenera con: swag init -g cmd/muroro/main.go -o docs
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
        "/api/animals": {
            "get": {
                "description": "Animales del usuario autenticado, más recientes primero.",
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Listar animales",
                "parameters": [
                    {"type": "string", "description": "Bearer token", "name": "Authorization", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/animals.animalResponse"}}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "502": {"description": "error del backend", "schema": {"type": "string"}}
                }
            },
            "post": {
                "description": "Crea un animal del usuario autenticado. ` + "`type`" + ` y ` + "`breed`" + ` son obligatorios; ` + "`status`" + ` y ` + "`health_status`" + ` toman ` + "`active`" + ` y ` + "`healthy`" + ` por defecto. Autenticación: cookie de sesión o ` + "`Authorization: Bearer <token>`" + `.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["animals"],
                "summary": "Registrar un animal",
                "parameters": [
                    {"type": "string", "description": "Bearer token", "name": "Authorization", "in": "header"},
                    {"description": "Datos del animal; fechas en formato YYYY-MM-DD", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/animals.createAnimalRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/animals.animalResponse"}},
                    "400": {"description": "invalid json / campos requeridos", "schema": {"type": "string"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "502": {"description": "error del backend", "schema": {"type": "string"}}
                }
            }
        },
        "/api/animals/{animalID}": {
            "delete": {
                "description": "Borra un animal del usuario. Requiere ` + "`confirm=true`" + `: sin confirmación no se borra nada.",
                "tags": ["animals"],
                "summary": "Eliminar un animal",
                "parameters": [
                    {"type": "string", "description": "Bearer token", "name": "Authorization", "in": "header"},
                    {"type": "string", "description": "ID del animal", "name": "animalID", "in": "path", "required": true},
                    {"type": "boolean", "description": "Debe ser true", "name": "confirm", "in": "query", "required": true}
                ],
                "responses": {
                    "204": {"description": "borrado"},
                    "400": {"description": "confirmation required", "schema": {"type": "string"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "404": {"description": "animal not found", "schema": {"type": "string"}},
                    "502": {"description": "error del backend", "schema": {"type": "string"}}
                }
            }
        },
        "/api/dashboard": {
            "get": {
                "description": "Total de animales, huevos recolectados, stock de alimento y animales enfermos del usuario. Los aggregates sin datos vuelven como 0.",
                "produces": ["application/json"],
                "tags": ["dashboard"],
                "summary": "Resumen del tablero",
                "parameters": [
                    {"type": "string", "description": "Bearer token", "name": "Authorization", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/dashboard.statsResponse"}},
                    "401": {"description": "unauthorized", "schema": {"type": "string"}},
                    "502": {"description": "error del backend", "schema": {"type": "string"}}
                }
            }
        },
        "/api/session": {
            "get": {
                "description": "Devuelve loading, authenticated o unauthenticated y el usuario si lo hay. Nunca devuelve tokens.",
                "produces": ["application/json"],
                "tags": ["session"],
                "summary": "Estado de la sesión",
                "parameters": [
                    {"type": "string", "description": "Bearer token", "name": "Authorization", "in": "header"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/session.sessionResponse"}}
                }
            }
        }
    },
    "definitions": {
        "animals.animalResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "user_id": {"type": "string"},
                "type": {"type": "string", "enum": ["Cow", "Goat", "Chicken", "Roadrunner", "Sheep", "Pig"]},
                "breed": {"type": "string"},
                "name": {"type": "string"},
                "birth_date": {"type": "string"},
                "acquisition_date": {"type": "string"},
                "status": {"type": "string", "enum": ["active", "sold", "deceased", "transferred"]},
                "health_status": {"type": "string", "enum": ["healthy", "sick", "injured", "under_treatment"]},
                "notes": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "animals.createAnimalRequest": {
            "type": "object",
            "properties": {
                "type": {"type": "string", "example": "Cow"},
                "breed": {"type": "string", "example": "Holstein"},
                "name": {"type": "string", "example": "Bessie"},
                "birth_date": {"type": "string", "example": "2023-04-12"},
                "acquisition_date": {"type": "string", "example": "2024-01-05"},
                "status": {"type": "string", "example": "active"},
                "health_status": {"type": "string", "example": "healthy"},
                "notes": {"type": "string"}
            }
        },
        "dashboard.SickAnimal": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "type": {"type": "string"},
                "health_status": {"type": "string"}
            }
        },
        "dashboard.statsResponse": {
            "type": "object",
            "properties": {
                "total_animals": {"type": "integer"},
                "eggs_collected": {"type": "number"},
                "feed_stock": {"type": "number"},
                "feed_stock_label": {"type": "string", "example": "0 kg"},
                "sick_animals": {"type": "array", "items": {"$ref": "#/definitions/dashboard.SickAnimal"}}
            }
        },
        "session.sessionResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "authenticated"},
                "user_id": {"type": "string"},
                "email": {"type": "string"},
                "display_name": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Muroro Livestock API",
	Description:      "API JSON de Muroro Livestock: sesión, animales y tablero.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
