// Package docs registers the OpenAPI description of the HTTP API with swag.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/healthz": {
            "get": {
                "summary": "Liveness probe",
                "produces": ["text/plain"],
                "responses": {
                    "200": {"description": "ok"}
                }
            }
        },
        "/v1/settings": {
            "get": {
                "summary": "Show the stored cluster connection",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/settings"}},
                    "404": {"description": "Not configured", "schema": {"$ref": "#/definitions/error"}}
                }
            },
            "put": {
                "summary": "Store the cluster connection",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "connection", "required": true, "schema": {"$ref": "#/definitions/connection"}}
                ],
                "responses": {
                    "204": {"description": "Saved"},
                    "400": {"description": "Invalid connection", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/v1/check": {
            "post": {
                "summary": "Test connectivity to the stored cluster",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Reachable", "schema": {"$ref": "#/definitions/check"}},
                    "404": {"description": "Not configured", "schema": {"$ref": "#/definitions/error"}},
                    "502": {"description": "Cluster unreachable", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/v1/push": {
            "post": {
                "summary": "Send sheet rows to the cluster",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {"in": "body", "name": "push", "required": true, "schema": {"$ref": "#/definitions/push"}}
                ],
                "responses": {
                    "200": {"description": "Pushed", "schema": {"$ref": "#/definitions/result"}},
                    "400": {"description": "Invalid request", "schema": {"$ref": "#/definitions/error"}},
                    "422": {"description": "No data", "schema": {"$ref": "#/definitions/error"}},
                    "502": {"description": "Cluster error", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        }
    },
    "definitions": {
        "connection": {
            "type": "object",
            "required": ["host", "port"],
            "properties": {
                "host": {"type": "string"},
                "port": {"type": "integer"},
                "use_ssl": {"type": "boolean"},
                "username": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "settings": {
            "type": "object",
            "properties": {
                "host": {"type": "string"},
                "port": {"type": "integer"},
                "use_ssl": {"type": "boolean"},
                "username": {"type": "string"},
                "password": {"type": "string", "description": "redacted"},
                "was_checked": {"type": "boolean"}
            }
        },
        "check": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "push": {
            "type": "object",
            "required": ["index", "rows"],
            "properties": {
                "index": {"type": "string"},
                "type": {"type": "string"},
                "template": {"type": "string"},
                "header": {"type": "array", "items": {}},
                "rows": {"type": "array", "items": {"type": "array", "items": {}}},
                "ids": {"type": "array", "items": {}}
            }
        },
        "result": {
            "type": "object",
            "properties": {
                "ingest_id": {"type": "string"},
                "search_url": {"type": "string"},
                "documents": {"type": "integer"},
                "skipped": {"type": "integer"},
                "batches": {"type": "integer"},
                "rejected": {"type": "integer"}
            }
        },
        "error": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "row": {"type": "integer"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "sheet-ingest API",
	Description:      "Pushes spreadsheet rows into a search cluster through the bulk API.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
