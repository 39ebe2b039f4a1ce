// Package docs registra el documento OpenAPI servido en /swagger/doc.json.
// Se mantiene a mano: al cambiar una ruta o un body, actualizar docTemplate.
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
        "/health": {"get": {"tags": ["ops"], "summary": "Liveness", "responses": {"200": {"description": "ok"}}}},
        "/me": {"get": {"tags": ["access"], "summary": "Current principal", "responses": {"200": {"description": "principal, home route and permissions"}, "401": {"description": "unauthorized"}}}},
        "/claims": {
            "get": {
                "tags": ["claims"],
                "summary": "List claims",
                "parameters": [
                    {"type": "string", "name": "status", "in": "query", "enum": ["pending", "inReview", "approved", "denied", "archived"]},
                    {"type": "string", "name": "q", "in": "query"},
                    {"type": "string", "name": "order", "in": "query", "enum": ["updated_desc", "updated_asc", "created_desc"]}
                ],
                "responses": {"200": {"description": "claims visible to the caller"}, "400": {"description": "invalid status or order"}}
            },
            "post": {
                "tags": ["claims"],
                "summary": "Create claim (admin)",
                "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/createClaimRequest"}}],
                "responses": {"201": {"description": "created"}, "400": {"description": "invalid input"}, "403": {"description": "forbidden"}}
            }
        },
        "/claims/{claimID}": {
            "get": {"tags": ["claims"], "summary": "Get claim", "parameters": [{"type": "string", "name": "claimID", "in": "path", "required": true}], "responses": {"200": {"description": "claim"}, "403": {"description": "not visible"}, "404": {"description": "not found"}}},
            "patch": {"tags": ["claims"], "summary": "Edit claim fields (owner)", "parameters": [{"type": "string", "name": "claimID", "in": "path", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "claim"}, "403": {"description": "not owner"}}}
        },
        "/claims/{claimID}/status": {
            "post": {"tags": ["lifecycle"], "summary": "Change claim status", "parameters": [{"type": "string", "name": "claimID", "in": "path", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/changeStatusRequest"}}], "responses": {"200": {"description": "claim + changed flag"}}}
        },
        "/claims/bulk-status": {
            "post": {"tags": ["lifecycle"], "summary": "Bulk status update", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/bulkStatusRequest"}}], "responses": {"200": {"description": "per-id report"}}}
        },
        "/claims/{claimID}/shares": {
            "get": {"tags": ["shares"], "summary": "Who the claim is shared with", "parameters": [{"type": "string", "name": "claimID", "in": "path", "required": true}], "responses": {"200": {"description": "shares"}}},
            "post": {"tags": ["shares"], "summary": "Share claim", "parameters": [{"type": "string", "name": "claimID", "in": "path", "required": true}, {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/shareRequest"}}], "responses": {"201": {"description": "share"}, "400": {"description": "self share"}, "409": {"description": "already shared"}}}
        },
        "/shares/{shareID}": {
            "delete": {"tags": ["shares"], "summary": "Remove share (sharer)", "parameters": [{"type": "string", "name": "shareID", "in": "path", "required": true}], "responses": {"204": {"description": "removed"}, "403": {"description": "not sharer"}}}
        },
        "/me/shared-claims": {"get": {"tags": ["shares"], "summary": "Claims shared with me", "responses": {"200": {"description": "newest share first"}}}},
        "/me/shared-claims/events": {"get": {"tags": ["shares"], "summary": "Server-Sent Events stream of new shares", "produces": ["text/event-stream"], "responses": {"200": {"description": "event stream"}}}},
        "/dashboard": {"get": {"tags": ["dashboard"], "summary": "Dashboard summary", "responses": {"200": {"description": "counts, recent claims, 6-month trend"}}}},
        "/agents": {
            "get": {"tags": ["agents"], "summary": "List agents", "parameters": [{"type": "string", "name": "role", "in": "query", "enum": ["admin", "agent"]}, {"type": "string", "name": "exclude", "in": "query"}], "responses": {"200": {"description": "agents"}}},
            "post": {"tags": ["agents"], "summary": "Provision agent (admin)", "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/createAgentRequest"}}], "responses": {"201": {"description": "agent"}, "409": {"description": "already exists"}}}
        },
        "/auth/sign-in": {"post": {"tags": ["auth"], "summary": "Sign in", "security": [], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"200": {"description": "session"}, "401": {"description": "invalid credentials"}}}},
        "/auth/sign-up": {"post": {"tags": ["auth"], "summary": "Sign up", "security": [], "parameters": [{"name": "payload", "in": "body", "required": true, "schema": {"type": "object"}}], "responses": {"201": {"description": "agent profile"}}}},
        "/auth/sign-out": {"post": {"tags": ["auth"], "summary": "Sign out", "responses": {"204": {"description": "signed out"}}}},
        "/auth/session": {"get": {"tags": ["auth"], "summary": "Current session", "responses": {"200": {"description": "principal"}, "401": {"description": "no session"}}}}
    },
    "definitions": {
        "createClaimRequest": {
            "type": "object",
            "required": ["policy_number", "claimant_name"],
            "properties": {
                "policy_number": {"type": "string"},
                "claimant_name": {"type": "string"},
                "claimant_email": {"type": "string"},
                "claimant_phone": {"type": "string"},
                "incident_date": {"type": "string", "example": "2025-03-14"},
                "description": {"type": "string"},
                "amount": {"type": "string", "example": "1250.00"},
                "status": {"type": "string", "enum": ["pending", "inReview", "approved", "denied", "archived"]}
            }
        },
        "changeStatusRequest": {
            "type": "object",
            "required": ["status"],
            "properties": {"status": {"type": "string", "enum": ["pending", "inReview", "approved", "denied", "archived"]}}
        },
        "bulkStatusRequest": {
            "type": "object",
            "required": ["ids", "status"],
            "properties": {
                "ids": {"type": "array", "items": {"type": "string"}},
                "status": {"type": "string", "enum": ["pending", "inReview", "approved", "denied", "archived"]}
            }
        },
        "shareRequest": {
            "type": "object",
            "required": ["recipient_id"],
            "properties": {"recipient_id": {"type": "string"}}
        },
        "createAgentRequest": {
            "type": "object",
            "required": ["name", "email"],
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "email": {"type": "string"},
                "role": {"type": "string", "enum": ["admin", "agent"]}
            }
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Claims Review API",
	Description:      "Insurance claims lifecycle and collaboration.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
