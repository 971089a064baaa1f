package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Health Clarity Lead Intake API",
        "description": "Lead intake over a spreadsheet-backed store with chat notifications",
        "version": "1.0.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Leads", "description": "Lead intake and referral tracking"}
    ],
    "paths": {
        "/health": {
            "get": {
                "summary": "Health check",
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/ready": {
            "get": {
                "summary": "Readiness check",
                "responses": {
                    "200": {"description": "Ready"}
                }
            }
        },
        "/submit-lead": {
            "post": {
                "tags": ["Leads"],
                "summary": "Submit a lead intake form",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SubmitLeadRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/SubmitLeadResponse"}},
                    "400": {"description": "Consent missing or invalid contact", "schema": {"$ref": "#/definitions/APIError"}},
                    "429": {"description": "Submission limit reached", "schema": {"$ref": "#/definitions/APIError"}}
                }
            }
        },
        "/track-referral": {
            "post": {
                "tags": ["Leads"],
                "summary": "Track a referral source",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/TrackReferralRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/TrackReferralResponse"}}
                }
            }
        }
    },
    "definitions": {
        "SubmitLeadRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "contact": {"type": "string"},
                "city_state": {"type": "string"},
                "dob": {"type": "string"},
                "age": {"type": "integer"},
                "gender": {"type": "string"},
                "primary_goals": {"type": "array", "items": {"type": "string"}},
                "issue_duration": {"type": "string"},
                "lifestyle_discipline": {"type": "string"},
                "biggest_challenges": {"type": "array", "items": {"type": "string"}},
                "health_importance_score": {"type": "integer"},
                "past_attempts": {"type": "string"},
                "time_comfort": {"type": "string"},
                "preferred_languages": {"type": "array", "items": {"type": "string"}},
                "additional_notes": {"type": "string"},
                "consent": {"type": "boolean"}
            },
            "required": ["name", "contact", "city_state", "dob", "age", "gender", "primary_goals", "issue_duration", "lifestyle_discipline", "biggest_challenges", "health_importance_score", "past_attempts", "time_comfort", "preferred_languages", "consent"]
        },
        "SubmitLeadResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["NEW", "DUPLICATE"]},
                "lead_id": {"type": "string"}
            }
        },
        "TrackReferralRequest": {
            "type": "object",
            "properties": {
                "source": {"type": "string"}
            },
            "required": ["source"]
        },
        "TrackReferralResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
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
