// Package docs holds the OpenAPI description served under /swagger.
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
        "/ping": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Health check",
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/budgets/compute": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Compute a draft without saving it",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/request.BudgetRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.ComputedResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/pkg.HTTPError"}}
                }
            }
        },
        "/budgets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "List budgets by owner",
                "parameters": [{"in": "query", "name": "owner_id", "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/response.BudgetResponse"}}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Create a DRAFT budget",
                "parameters": [{"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/request.BudgetRequest"}}],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.BudgetResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/pkg.HTTPError"}}
                }
            }
        },
        "/budgets/{id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Get a budget",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.BudgetResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/pkg.HTTPError"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Update a budget",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/request.BudgetRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.BudgetResponse"}},
                    "403": {"description": "Forbidden", "schema": {"$ref": "#/definitions/pkg.HTTPError"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/pkg.HTTPError"}}
                }
            },
            "delete": {
                "tags": ["budgets"],
                "summary": "Delete a DRAFT budget",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "query", "name": "expected_version", "required": true, "type": "integer"}
                ],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/budgets/{id}/computed": {
            "get": {
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Recompute a stored budget against the current catalog",
                "parameters": [{"in": "path", "name": "id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.ComputedResponse"}}}
            }
        },
        "/budgets/{id}/transitions": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["budgets"],
                "summary": "Move a budget along its lifecycle",
                "parameters": [
                    {"in": "path", "name": "id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "required": true, "schema": {"$ref": "#/definitions/request.TransitionRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.BudgetResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/pkg.HTTPError"}}
                }
            }
        },
        "/payments/{budget_id}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Latest payment of a budget",
                "parameters": [{"in": "path", "name": "budget_id", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/response.BillingPaymentResponse"}}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["payments"],
                "summary": "Charge the grand total of an approved budget",
                "parameters": [
                    {"in": "path", "name": "budget_id", "required": true, "type": "string"},
                    {"in": "body", "name": "body", "schema": {"$ref": "#/definitions/request.BillingPaymentCreateRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.BillingPaymentResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/pkg.HTTPError"}}
                }
            }
        }
    },
    "definitions": {
        "pkg.HTTPError": {
            "type": "object",
            "properties": {"code": {"type": "string"}, "message": {"type": "string"}, "details": {}}
        },
        "request.BudgetLineRequest": {
            "type": "object",
            "properties": {
                "product_id": {"type": "string"},
                "service_id": {"type": "string"},
                "quantity": {"type": "string", "example": "2"},
                "unit_price": {"type": "string", "example": "100.00"},
                "cost": {"type": "string"},
                "margin_percent": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "request.BudgetRequest": {
            "type": "object",
            "properties": {
                "client_id": {"type": "string"},
                "currency_id": {"type": "string"},
                "lines": {"type": "array", "items": {"$ref": "#/definitions/request.BudgetLineRequest"}},
                "tax_ids": {"type": "array", "items": {"type": "string"}},
                "agency_margin": {"type": "object", "properties": {"amount": {"type": "string"}, "percent": {"type": "string", "example": "10"}}},
                "validity": {"type": "object", "properties": {"start": {"type": "string", "example": "2026-01-31"}, "end": {"type": "string"}, "preset": {"type": "string", "example": "1M"}}},
                "requested_state": {"type": "string"},
                "version": {"type": "integer"},
                "expected_version": {"type": "integer"}
            }
        },
        "request.TransitionRequest": {
            "type": "object",
            "required": ["to", "expected_version"],
            "properties": {"to": {"type": "string", "example": "SENT"}, "expected_version": {"type": "integer"}}
        },
        "request.BillingPaymentCreateRequest": {
            "type": "object",
            "properties": {"mp_payload": {"type": "object"}}
        },
        "response.TotalsResponse": {
            "type": "object",
            "properties": {
                "subtotal": {"type": "string", "example": "250.00"},
                "taxes": {"type": "array", "items": {"type": "object"}},
                "tax_total": {"type": "string", "example": "60.00"},
                "agency_profit": {"type": "string", "example": "0.00"},
                "grand_total": {"type": "string", "example": "310.00"}
            }
        },
        "response.BudgetResponse": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "owner_id": {"type": "string"},
                "client_id": {"type": "string"},
                "currency_id": {"type": "string"},
                "lines": {"type": "array", "items": {"type": "object"}},
                "tax_ids": {"type": "array", "items": {"type": "string"}},
                "validity": {"type": "object"},
                "state": {"type": "string"},
                "totals": {"$ref": "#/definitions/response.TotalsResponse"},
                "version": {"type": "integer"},
                "warnings": {"type": "array", "items": {"type": "object"}}
            }
        },
        "response.ComputedResponse": {
            "type": "object",
            "properties": {
                "valid": {"type": "boolean"},
                "currency_id": {"type": "string"},
                "lines": {"type": "array", "items": {"type": "object"}},
                "totals": {"$ref": "#/definitions/response.TotalsResponse"},
                "agency_source": {"type": "string"},
                "validity": {"type": "object"},
                "state": {"type": "string"},
                "errors": {"type": "array", "items": {"type": "object"}},
                "warnings": {"type": "array", "items": {"type": "object"}}
            }
        },
        "response.BillingPaymentResponse": {
            "type": "object",
            "properties": {
                "payment_id": {"type": "string"},
                "budget_id": {"type": "string"},
                "amount": {"type": "string", "example": "310.00"},
                "currency_id": {"type": "string"},
                "date": {"type": "string"},
                "status": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/v1",
	Schemes:          []string{},
	Title:            "Budget Service API",
	Description:      "Budget pricing and lifecycle service backed by DynamoDB.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
