// Package docs registers the OpenAPI description served under /swagger/.
//
// Regenerate with: swag init -g internal/transport/http/http.go -o internal/docs
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
        "/translate": {
            "post": {
                "description": "Forwards the trimmed text to the translation provider. When the provider fails or returns the input unchanged the request fails with 503.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["translate"],
                "summary": "Translate English text to Kannada",
                "parameters": [
                    {
                        "description": "Text to translate",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/message.TranslationRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/message.TranslationResult"}},
                    "400": {"description": "Empty text or invalid JSON", "schema": {"$ref": "#/definitions/message.ErrorResponse"}},
                    "500": {"description": "Unexpected error", "schema": {"$ref": "#/definitions/message.ErrorResponse"}},
                    "503": {"description": "Translation unavailable", "schema": {"$ref": "#/definitions/message.ErrorResponse"}}
                }
            }
        },
        "/speak": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["audio/wav"],
                "tags": ["speech"],
                "summary": "Synthesize speech as a downloadable WAV file",
                "parameters": [
                    {
                        "description": "Text to speak",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/message.SpeechRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "WAV audio, attachment kannada_audio.wav", "schema": {"type": "file"}},
                    "400": {"description": "Empty text or invalid JSON", "schema": {"$ref": "#/definitions/message.ErrorResponse"}},
                    "500": {"description": "Synthesis failed", "schema": {"$ref": "#/definitions/message.ErrorResponse"}}
                }
            }
        },
        "/speak-stream": {
            "post": {
                "description": "The audio is fully buffered before the response is written.",
                "consumes": ["application/json"],
                "produces": ["audio/wav"],
                "tags": ["speech"],
                "summary": "Synthesize speech for inline playback",
                "parameters": [
                    {
                        "description": "Text to speak",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/message.SpeechRequest"}
                    }
                ],
                "responses": {
                    "200": {"description": "WAV audio", "schema": {"type": "file"}},
                    "400": {"description": "Empty text or invalid JSON", "schema": {"$ref": "#/definitions/message.ErrorResponse"}},
                    "500": {"description": "Synthesis failed", "schema": {"$ref": "#/definitions/message.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "message.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "Please enter text"}}
        },
        "message.SpeechRequest": {
            "type": "object",
            "properties": {"text": {"type": "string", "example": "ನಮಸ್ಕಾರ"}}
        },
        "message.TranslationRequest": {
            "type": "object",
            "properties": {"text": {"type": "string", "example": "Hello"}}
        },
        "message.TranslationResult": {
            "type": "object",
            "properties": {
                "english": {"type": "string", "example": "Hello"},
                "kannada": {"type": "string", "example": "ನಮಸ್ಕಾರ"}
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
	Title:            "kannadavoice API",
	Description:      "English to Kannada translation and speech synthesis.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
