// Package docs registers the OpenAPI description served at /swagger.
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
        "/auth/token": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Authentication"],
                "summary": "Generate a JWT bearer token",
                "parameters": [
                    {
                        "description": "username",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.TokenRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Token successfully generated", "schema": {"$ref": "#/definitions/dto.TokenResponse"}},
                    "400": {"description": "Invalid request parameters", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/eligibility": {
            "get": {
                "security": [{"BearerAuth": []}],
                "description": "Returns every recorded decision for the customer, newest first.",
                "produces": ["application/json"],
                "tags": ["Eligibility"],
                "summary": "List decisions for a customer",
                "parameters": [
                    {"type": "string", "example": "Ann McKinsey", "description": "Customer name", "name": "customer", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "Decisions", "schema": {"type": "array", "items": {"$ref": "#/definitions/dto.DecisionResponse"}}},
                    "400": {"description": "Missing customer parameter", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "description": "Runs the savings, loan history and credit checks for a customer and records the decision.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Eligibility"],
                "summary": "Check mortgage eligibility",
                "parameters": [
                    {
                        "description": "Applicant and requested amount",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/dto.CheckEligibilityRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Decision recorded", "schema": {"$ref": "#/definitions/dto.DecisionResponse"}},
                    "400": {"description": "Invalid request payload", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "503": {"description": "A check could not be completed", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        },
        "/eligibility/{decisionID}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Eligibility"],
                "summary": "Retrieve a recorded decision",
                "parameters": [
                    {"type": "string", "format": "uuid", "description": "Decision ID", "name": "decisionID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "Decision details", "schema": {"$ref": "#/definitions/dto.DecisionResponse"}},
                    "400": {"description": "Invalid decision ID", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "404": {"description": "Decision not found", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}},
                    "500": {"description": "Internal server error", "schema": {"$ref": "#/definitions/dto.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "dto.CheckEligibilityRequest": {
            "type": "object",
            "properties": {
                "amount": {"type": "string", "example": "125000"},
                "name": {"type": "string", "example": "Ann McKinsey"}
            }
        },
        "dto.CheckResponse": {
            "type": "object",
            "properties": {
                "check": {"type": "string"},
                "evaluated": {"type": "boolean"},
                "passed": {"type": "boolean"}
            }
        },
        "dto.DecisionResponse": {
            "type": "object",
            "properties": {
                "amount": {"type": "string"},
                "checks": {"type": "array", "items": {"$ref": "#/definitions/dto.CheckResponse"}},
                "customerName": {"type": "string"},
                "decidedAt": {"type": "string"},
                "decisionId": {"type": "string"},
                "eligible": {"type": "boolean"},
                "mode": {"type": "string"},
                "outcome": {"type": "string"},
                "summary": {"type": "string"}
            }
        },
        "dto.ErrorDetail": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "dto.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"$ref": "#/definitions/dto.ErrorDetail"}
            }
        },
        "dto.TokenRequest": {
            "type": "object",
            "properties": {
                "username": {"type": "string"}
            }
        },
        "dto.TokenResponse": {
            "type": "object",
            "properties": {
                "expiresAt": {"type": "integer"},
                "token": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Mortgage Eligibility API",
	Description:      "Decides whether a customer may take out a mortgage of a given amount.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
