package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Focus Time Registration API",
        "description": "Capacity-aware registration service for focus-time activities",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Session", "description": "Authenticated session descriptor"},
        {"name": "Activities", "description": "Activity sections with live seat availability"},
        {"name": "Registrations", "description": "Student self-service registration"},
        {"name": "Teacher", "description": "Staff enrollment, rosters and exports"}
    ],
    "paths": {
        "/session": {
            "get": {
                "tags": ["Session"],
                "summary": "Describe the authenticated session",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/activities": {
            "get": {
                "tags": ["Activities"],
                "summary": "List activity sections with live seat availability",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/registrations": {
            "get": {
                "tags": ["Registrations"],
                "summary": "List the authenticated student's registrations",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Registrations"],
                "summary": "Register the authenticated student for an activity",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelfRegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Seats full or period taken", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Window closed or unresolved student", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/enrollments": {
            "post": {
                "tags": ["Teacher"],
                "summary": "Manually enroll a student into one or more activities",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TeacherEnrollRequest"}}
                ],
                "responses": {
                    "200": {"description": "Per-pair outcomes", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/rosters": {
            "get": {
                "tags": ["Teacher"],
                "summary": "List registrations grouped by activity",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/teacher/rosters/export": {
            "get": {
                "tags": ["Teacher"],
                "summary": "Export all rosters as CSV or PDF",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"], "default": "csv"}
                ],
                "responses": {
                    "200": {"description": "File download"}
                }
            }
        },
        "/teacher/students": {
            "get": {
                "tags": ["Teacher"],
                "summary": "List directory emails for the enrollment picker",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "SelfRegisterRequest": {
            "type": "object",
            "properties": {
                "choice": {"type": "string"},
                "period": {"type": "integer", "enum": [9, 10, 910]}
            },
            "required": ["choice", "period"]
        },
        "EnrollmentPair": {
            "type": "object",
            "properties": {
                "choice": {"type": "string"},
                "period": {"type": "integer", "enum": [9, 10, 910]}
            },
            "required": ["choice", "period"]
        },
        "TeacherEnrollRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "pairs": {
                    "type": "array",
                    "items": {"$ref": "#/definitions/EnrollmentPair"}
                }
            },
            "required": ["email", "pairs"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
