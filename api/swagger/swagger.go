package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "SST Backoffice API",
        "description": "Occupational health and safety backoffice",
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
        {"name": "Auth", "description": "Session and token management"},
        {"name": "Users", "description": "Backoffice operators"},
        {"name": "Catalogs", "description": "Name-only lookup tables"},
        {"name": "Companies", "description": "Client companies"},
        {"name": "Employees", "description": "Employees and assignments"},
        {"name": "Documents", "description": "Document templates and versions"},
        {"name": "Uploads", "description": "File attachments"},
        {"name": "MedicalExams", "description": "Occupational exams"},
        {"name": "Epis", "description": "Protective equipment"},
        {"name": "Deliveries", "description": "PPE deliveries and receipts"},
        {"name": "Events", "description": "Trainings and certificates"},
        {"name": "Occurrences", "description": "Safety occurrences"},
        {"name": "Technicians", "description": "Safety technicians"}
    ],
    "paths": {
        "/auth/login": {
            "post": {
                "tags": ["Auth"],
                "summary": "Authenticate and issue a bearer token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/LoginResponse"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Auth"],
                "summary": "Revoke the current bearer token",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/auth/check-token": {
            "get": {
                "tags": ["Auth"],
                "summary": "Validate the provided bearer token",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UserInfo"}},
                    "401": {"description": "Invalid or revoked token"}
                }
            }
        },
        "/auth/me": {
            "get": {
                "tags": ["Auth"],
                "summary": "Current user profile",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/UserInfo"}}
                }
            }
        },
        "/auth/change-password": {
            "post": {
                "tags": ["Auth"],
                "summary": "Change password and revoke every session",
                "security": [{"BearerAuth": []}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/companies": {
            "get": {
                "tags": ["Companies"],
                "summary": "List companies",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "company_group_id", "in": "query", "type": "string"},
                    {"name": "company_type_id", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "per_page", "in": "query", "type": "integer"},
                    {"name": "sort_by", "in": "query", "type": "string"},
                    {"name": "sort_order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ListEnvelope"}}
                }
            },
            "post": {
                "tags": ["Companies"],
                "summary": "Create company",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ValidationEnvelope"}}
                }
            }
        },
        "/companies/{id}": {
            "get": {
                "tags": ["Companies"],
                "summary": "Get company detail",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found"}}
            },
            "put": {
                "tags": ["Companies"],
                "summary": "Update company",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            },
            "delete": {
                "tags": ["Companies"],
                "summary": "Delete company",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/uploads": {
            "post": {
                "tags": ["Uploads"],
                "summary": "Upload a file attachment",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "file", "in": "formData", "required": true, "type": "file"},
                    {"name": "subject_type", "in": "formData", "required": true, "type": "string"},
                    {"name": "subject_id", "in": "formData", "required": true, "type": "string"}
                ],
                "responses": {
                    "201": {"description": "Created"},
                    "422": {"description": "Validation failure", "schema": {"$ref": "#/definitions/ValidationEnvelope"}}
                }
            }
        },
        "/uploads/view/{id}": {
            "get": {
                "tags": ["Uploads"],
                "summary": "Stream the stored file bytes",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "token", "in": "query", "type": "string"}
                ],
                "responses": {"200": {"description": "File bytes"}, "401": {"description": "Invalid or expired view token"}}
            }
        },
        "/uploads/{id}/status": {
            "patch": {
                "tags": ["Uploads"],
                "summary": "Move the upload to a new review status",
                "security": [{"BearerAuth": []}],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/epi-deliveries/{id}/receipt": {
            "get": {
                "tags": ["Deliveries"],
                "summary": "Download the signed delivery receipt as PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "PDF bytes"}}
            }
        },
        "/events/{id}/participants/{participantId}/certificate": {
            "get": {
                "tags": ["Events"],
                "summary": "Download a participant certificate as PDF",
                "security": [{"BearerAuth": []}],
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "participantId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {"200": {"description": "PDF bytes"}}
            }
        },
        "/occurrences/export": {
            "get": {
                "tags": ["Occurrences"],
                "summary": "Export occurrences as CSV",
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "responses": {"200": {"description": "CSV bytes"}}
            }
        }
    },
    "definitions": {
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"},
                "device_name": {"type": "string"}
            },
            "required": ["email", "password", "device_name"]
        },
        "LoginResponse": {
            "type": "object",
            "properties": {
                "token": {"type": "string"},
                "expires_in": {"type": "integer"},
                "issued_at": {"type": "string"},
                "user": {"$ref": "#/definitions/UserInfo"}
            }
        },
        "UserInfo": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "role": {"type": "string"}
            }
        },
        "ListEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "array", "items": {"type": "object"}},
                "total": {"type": "integer"},
                "page": {"type": "integer"},
                "per_page": {"type": "integer"}
            }
        },
        "ValidationEnvelope": {
            "type": "object",
            "properties": {
                "errors": {
                    "type": "object",
                    "additionalProperties": {"type": "string"}
                }
            }
        },
        "ErrorEnvelope": {
            "type": "object",
            "properties": {
                "error": {
                    "type": "object",
                    "properties": {
                        "code": {"type": "string"},
                        "message": {"type": "string"}
                    }
                }
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
