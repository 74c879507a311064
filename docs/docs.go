// Package docs registers the console's Swagger document with swag. It is
// maintained by hand alongside the handler annotations.
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
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Login",
                "parameters": [
                    {
                        "description": "Login credentials",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.loginRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/handler.authFailure"}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Logout",
                "parameters": [
                    {
                        "type": "boolean",
                        "description": "Await the upstream logout notification",
                        "name": "wait",
                        "in": "query"
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.logoutResponse"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Register",
                "parameters": [
                    {
                        "description": "Sign-up form",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.registerRequest"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/handler.authResponse"}},
                    "400": {"description": "Bad Request", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "409": {"description": "Conflict", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"$ref": "#/definitions/handler.authFailure"}}
                }
            }
        },
        "/auth/session": {
            "get": {
                "produces": ["application/json"],
                "tags": ["auth"],
                "summary": "Current session",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.sessionResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Liveness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        },
        "/health/ready": {
            "get": {
                "produces": ["application/json"],
                "tags": ["health"],
                "summary": "Readiness probe",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handlers.readinessResponse"}},
                    "503": {"description": "Service Unavailable", "schema": {"$ref": "#/definitions/handlers.readinessResponse"}}
                }
            }
        },
        "/profile": {
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["profile"],
                "summary": "Update profile",
                "parameters": [
                    {
                        "description": "Editable profile fields",
                        "name": "body",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/handler.profileRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.UserProfile"}},
                    "401": {"description": "Unauthorized", "schema": {"type": "object", "additionalProperties": {"type": "string"}}},
                    "422": {"description": "Unprocessable Entity", "schema": {"type": "object", "additionalProperties": {"type": "string"}}}
                }
            }
        }
    },
    "definitions": {
        "guard.MenuItem": {
            "type": "object",
            "properties": {
                "href": {"type": "string"},
                "label": {"type": "string"},
                "section": {"type": "string", "enum": ["main", "admin"]}
            }
        },
        "domain.ShopRef": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "name": {"type": "string"}
            }
        },
        "domain.UserProfile": {
            "type": "object",
            "properties": {
                "_id": {"type": "string"},
                "avatar": {"type": "string"},
                "createdAt": {"type": "string"},
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "isActive": {"type": "boolean"},
                "phone": {"type": "string"},
                "role": {"type": "string", "enum": ["user", "admin", "super_admin"]},
                "shops": {"type": "array", "items": {"$ref": "#/definitions/domain.ShopRef"}}
            }
        },
        "handler.authFailure": {
            "type": "object",
            "properties": {
                "error": {"type": "string"}
            }
        },
        "handler.authResponse": {
            "type": "object",
            "properties": {
                "redirect": {"type": "string"},
                "user": {"$ref": "#/definitions/domain.UserProfile"}
            }
        },
        "handler.loginRequest": {
            "type": "object",
            "required": ["user_email", "user_password"],
            "properties": {
                "user_email": {"type": "string"},
                "user_password": {"type": "string"}
            }
        },
        "handler.logoutResponse": {
            "type": "object",
            "properties": {
                "notified": {"type": "boolean"},
                "redirect": {"type": "string"}
            }
        },
        "handler.profileRequest": {
            "type": "object",
            "properties": {
                "avatar": {"type": "string"},
                "email": {"type": "string"},
                "fullName": {"type": "string", "maxLength": 120},
                "phone": {"type": "string", "maxLength": 32}
            }
        },
        "handler.registerRequest": {
            "type": "object",
            "required": ["user_email", "user_fullname", "user_password"],
            "properties": {
                "shopName": {"type": "string", "maxLength": 120},
                "theme": {"type": "string", "maxLength": 64},
                "user_email": {"type": "string"},
                "user_fullname": {"type": "string", "maxLength": 120},
                "user_password": {"type": "string", "minLength": 6},
                "user_phNo": {"type": "string", "maxLength": 32}
            }
        },
        "handler.sessionResponse": {
            "type": "object",
            "properties": {
                "authenticated": {"type": "boolean"},
                "is_admin": {"type": "boolean"},
                "is_super_admin": {"type": "boolean"},
                "loading": {"type": "boolean"},
                "menu": {"type": "array", "items": {"$ref": "#/definitions/guard.MenuItem"}},
                "user": {"$ref": "#/definitions/domain.UserProfile"}
            }
        },
        "handlers.dependencyStatus": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        },
        "handlers.readinessResponse": {
            "type": "object",
            "properties": {
                "dependencies": {"type": "object", "additionalProperties": {"$ref": "#/definitions/handlers.dependencyStatus"}},
                "status": {"type": "string"}
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
	Title:            "WebHub Admin Console",
	Description:      "Session and access control service for the WebHub admin console.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
