// Package docs registers the Swagger document served at /swagger/*any.
// Regenerate with: swag init -g cmd/numbersapi/main.go
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
        "/": {
            "get": {
                "produces": ["application/json"],
                "tags": ["System"],
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": true}}
                }
            }
        },
        "/api/auth/login": {
            "post": {
                "description": "Checks the password and returns a token (password auth mode)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Вход по паролю",
                "parameters": [
                    {"description": "Данные для входа", "name": "login", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/auth/login/start": {
            "post": {
                "description": "Sends a one-time login code to a registered email",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Начать вход",
                "parameters": [
                    {"description": "email", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CodeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/okResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/auth/login/verify": {
            "post": {
                "description": "Consumes the login code and returns a token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Подтвердить вход",
                "parameters": [
                    {"description": "email, code", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CodeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/auth/register": {
            "post": {
                "description": "Creates an account with a password (password auth mode)",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Регистрация по паролю",
                "parameters": [
                    {"description": "email, fullName, password", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/auth/register/start": {
            "post": {
                "description": "Sends a one-time registration code to the email",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Начать регистрацию",
                "parameters": [
                    {"description": "email, fullName, phone, company", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CodeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/okResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "429": {"description": "Too Many Requests", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/auth/register/verify": {
            "post": {
                "description": "Consumes the registration code, creates the account and returns a token",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Подтвердить регистрацию",
                "parameters": [
                    {"description": "email, code, fullName, phone, company", "name": "body", "in": "body", "required": true, "schema": {"$ref": "#/definitions/models.CodeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/models.AuthResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/me": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Текущий пользователь",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "object", "additionalProperties": {"$ref": "#/definitions/models.UserSummary"}}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/numbers": {
            "post": {
                "description": "Draws a random 8-digit value, stamps it with the next serial and stores it",
                "produces": ["application/json"],
                "tags": ["Numbers"],
                "summary": "Сохранить новое число",
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/models.NumberRecord"}},
                    "409": {"description": "Conflict", "schema": {"$ref": "#/definitions/errorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/numbers/all": {
            "get": {
                "description": "All records, newest first",
                "produces": ["application/json"],
                "tags": ["Numbers"],
                "summary": "Все значения",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/models.NumberRecord"}}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/numbers/last": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Numbers"],
                "summary": "Последнее значение",
                "responses": {
                    "200": {"description": "value or null", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/numbers/last/datetime": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Numbers"],
                "summary": "Время последнего значения",
                "responses": {
                    "200": {"description": "savedAt or null", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/numbers/second": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Numbers"],
                "summary": "Предпоследнее значение",
                "responses": {
                    "200": {"description": "value or null", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        },
        "/api/numbers/second/datetime": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Numbers"],
                "summary": "Время предпоследнего значения",
                "responses": {
                    "200": {"description": "savedAt or null", "schema": {"type": "object", "additionalProperties": true}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/errorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "errorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "okResponse": {
            "type": "object",
            "properties": {"ok": {"type": "boolean"}}
        },
        "models.AuthResponse": {
            "type": "object",
            "properties": {
                "ok": {"type": "boolean"},
                "token": {"type": "string"},
                "user": {"$ref": "#/definitions/models.UserSummary"}
            }
        },
        "models.CodeRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "company": {"type": "string"},
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "models.LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "models.NumberRecord": {
            "type": "object",
            "properties": {
                "id": {"type": "integer"},
                "savedAt": {"type": "string"},
                "serial": {"type": "integer"},
                "value": {"type": "integer"}
            }
        },
        "models.RegisterRequest": {
            "type": "object",
            "properties": {
                "company": {"type": "string"},
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "password": {"type": "string"},
                "phone": {"type": "string"}
            }
        },
        "models.UserSummary": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "fullName": {"type": "string"},
                "id": {"type": "integer"},
                "uuid": {"type": "string"}
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
	Title:            "Numbers API",
	Description:      "Serial-stamped numeric records and email-code authentication.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
