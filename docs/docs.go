package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "schemes": {{ marshal .Schemes }},
    "paths": {
        "/invoke/save_options": {
            "post": {
                "tags": ["Commands"],
                "summary": "Save options",
                "description": "Persist the options object and update the in-memory copy",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "arguments",
                        "required": true,
                        "schema": {"$ref": "#/definitions/SaveOptionsRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "Saved; the body is null"},
                    "400": {"description": "Missing or malformed options", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "401": {"description": "Missing or invalid session token", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Encoding or write failure", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        },
        "/invoke/get_options": {
            "post": {
                "tags": ["Commands"],
                "summary": "Get options",
                "description": "Return the cached options object, or null when none was ever stored",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Options or null", "schema": {"$ref": "#/definitions/LotteryOptions"}}
                }
            }
        },
        "/options": {
            "get": {
                "tags": ["Options"],
                "summary": "Get options",
                "produces": ["application/json"],
                "responses": {
                    "200": {"description": "Options or null", "schema": {"$ref": "#/definitions/LotteryOptions"}}
                }
            },
            "put": {
                "tags": ["Options"],
                "summary": "Replace options",
                "consumes": ["application/json"],
                "parameters": [
                    {
                        "in": "body",
                        "name": "options",
                        "required": true,
                        "schema": {"$ref": "#/definitions/LotteryOptions"}
                    }
                ],
                "responses": {
                    "204": {"description": "Saved"},
                    "400": {"description": "Missing or malformed options", "schema": {"$ref": "#/definitions/ErrorResponse"}},
                    "500": {"description": "Encoding or write failure", "schema": {"$ref": "#/definitions/ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "LotteryOptions": {
            "type": "object",
            "required": ["groups"],
            "properties": {
                "groups": {"description": "Arbitrary JSON value owned by the UI"}
            }
        },
        "SaveOptionsRequest": {
            "type": "object",
            "required": ["options"],
            "properties": {
                "options": {"$ref": "#/definitions/LotteryOptions"}
            }
        },
        "ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header",
            "description": "Type 'Bearer' followed by a space and the session token"
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "127.0.0.1:4765",
	BasePath:         "/api/v1",
	Schemes:          []string{"http"},
	Title:            "Lottery System API",
	Description:      "Local options store for the lottery desktop application",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
