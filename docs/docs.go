// Package docs registers the OpenAPI description served under /swagger.
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
        "/jobs": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Transcribe media and generate notes",
                "parameters": [
                    {"type": "file", "name": "file", "in": "formData"},
                    {"type": "string", "name": "url", "in": "formData"},
                    {"enum": ["auto", "pl", "en", "de", "fr", "es"], "type": "string", "name": "input_language", "in": "formData"},
                    {"enum": ["pl", "en", "de", "fr", "es"], "type": "string", "name": "output_language", "in": "formData"},
                    {"type": "string", "name": "title", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "Job completed", "schema": {"$ref": "#/definitions/dto.JobResponse"}},
                    "402": {"description": "No credits left", "schema": {"$ref": "#/definitions/errors.APIError"}},
                    "413": {"description": "Media too large", "schema": {"$ref": "#/definitions/errors.APIError"}},
                    "415": {"description": "Unsupported format", "schema": {"$ref": "#/definitions/errors.APIError"}},
                    "422": {"description": "Corrupt media or invalid input", "schema": {"$ref": "#/definitions/errors.APIError"}},
                    "502": {"description": "Fetch, transcription or summarization failed", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/transcriptions": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transcriptions"],
                "summary": "List saved transcriptions",
                "responses": {
                    "200": {"description": "History", "schema": {"$ref": "#/definitions/dto.ListTranscriptionsResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["transcriptions"],
                "summary": "Save a transcription",
                "parameters": [
                    {"name": "transcription", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.SaveTranscriptionRequest"}}
                ],
                "responses": {
                    "201": {"description": "Transcription saved", "schema": {"$ref": "#/definitions/dto.TranscriptionResponse"}},
                    "422": {"description": "Validation error", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/transcriptions/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["transcriptions"],
                "summary": "Get transcription by ID",
                "parameters": [{"minimum": 1, "type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Transcription details", "schema": {"$ref": "#/definitions/dto.TranscriptionResponse"}},
                    "404": {"description": "Transcription not found", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/transcriptions/{id}/download": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/plain"],
                "tags": ["transcriptions"],
                "summary": "Download the summary file",
                "parameters": [{"minimum": 1, "type": "integer", "name": "id", "in": "path", "required": true}],
                "responses": {
                    "200": {"description": "Summary text", "schema": {"type": "string"}},
                    "404": {"description": "Transcription not found", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/transcriptions/{id}/analyses": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["jobs"],
                "summary": "Run a custom instruction over a saved transcription",
                "parameters": [
                    {"minimum": 1, "type": "integer", "name": "id", "in": "path", "required": true},
                    {"name": "analysis", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.AnalyzeRequest"}}
                ],
                "responses": {
                    "200": {"description": "Analysis completed", "schema": {"$ref": "#/definitions/dto.JobResponse"}},
                    "402": {"description": "No credits left", "schema": {"$ref": "#/definitions/errors.APIError"}},
                    "404": {"description": "Transcription not found", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        },
        "/credits": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["credits"],
                "summary": "Current balance and recent credit changes",
                "responses": {
                    "200": {"description": "Balance", "schema": {"$ref": "#/definitions/dto.CreditsResponse"}}
                }
            }
        },
        "/credits/topups": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["credits"],
                "summary": "Apply a completed payment",
                "parameters": [
                    {"name": "topup", "in": "body", "required": true, "schema": {"$ref": "#/definitions/dto.TopUpRequest"}}
                ],
                "responses": {
                    "200": {"description": "Credits granted", "schema": {"$ref": "#/definitions/dto.TopUpResponse"}},
                    "403": {"description": "Invalid webhook secret", "schema": {"$ref": "#/definitions/errors.APIError"}}
                }
            }
        }
    },
    "definitions": {
        "errors.APIError": {
            "type": "object",
            "properties": {
                "kind": {"type": "string"},
                "message": {"type": "string"},
                "code": {"type": "string"},
                "request_id": {"type": "string"},
                "details": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "dto.JobResponse": {
            "type": "object",
            "properties": {
                "job_id": {"type": "string"},
                "state": {"type": "string"},
                "title": {"type": "string"},
                "transcript": {"type": "string"},
                "language": {"type": "string"},
                "notes": {"type": "string"},
                "notes_language": {"type": "string"},
                "analysis": {"type": "string"},
                "saved_id": {"type": "integer"},
                "summary_url": {"type": "string"},
                "warnings": {"type": "array", "items": {"type": "string"}},
                "balance": {"type": "integer"},
                "history": {"type": "array", "items": {"$ref": "#/definitions/dto.TransitionResponse"}},
                "finished_at": {"type": "string"}
            }
        },
        "dto.TransitionResponse": {
            "type": "object",
            "properties": {
                "from": {"type": "string"},
                "to": {"type": "string"},
                "at": {"type": "string"}
            }
        },
        "dto.AnalyzeRequest": {
            "type": "object",
            "required": ["instruction"],
            "properties": {
                "instruction": {"type": "string", "maxLength": 4000},
                "include_previous_notes": {"type": "boolean"},
                "title": {"type": "string"}
            }
        },
        "dto.SaveTranscriptionRequest": {
            "type": "object",
            "required": ["title", "transcript"],
            "properties": {
                "title": {"type": "string", "maxLength": 200},
                "transcript": {"type": "string"},
                "notes": {"type": "string"}
            }
        },
        "dto.TranscriptionResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "title": {"type": "string"},
                "transcript": {"type": "string"},
                "notes": {"type": "string"},
                "custom_prompt": {"type": "string"},
                "custom_notes": {"type": "string"},
                "created_at": {"type": "string"}
            }
        },
        "dto.ListTranscriptionsResponse": {
            "type": "object",
            "properties": {
                "transcriptions": {"type": "array", "items": {"type": "object"}},
                "total": {"type": "integer"}
            }
        },
        "dto.CreditsResponse": {
            "type": "object",
            "properties": {
                "account_id": {"type": "integer"},
                "balance": {"type": "integer"},
                "transactions": {"type": "array", "items": {"type": "object"}}
            }
        },
        "dto.TopUpRequest": {
            "type": "object",
            "required": ["account_id", "units"],
            "properties": {
                "account_id": {"type": "integer", "minimum": 1},
                "units": {"type": "integer", "minimum": 1, "maximum": 100}
            }
        },
        "dto.TopUpResponse": {
            "type": "object",
            "properties": {
                "account_id": {"type": "integer"},
                "credits_added": {"type": "integer"},
                "balance": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Media Notes API",
	Description:      "Credit-gated transcription and note generation.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
