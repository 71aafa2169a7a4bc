package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Presensi API",
        "description": "Attendance capture and reconciliation service",
        "version": "0.1.0"
    },
    "basePath": "/",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Authentication", "description": "Login and token issuance"},
        {"name": "Attendance", "description": "Manual, QR and NFC intake plus ledger reads"},
        {"name": "QR", "description": "QR capability token issuance"},
        {"name": "NFC", "description": "Card registrations and attendance sessions"},
        {"name": "Settings", "description": "Global configuration"}
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
                    "200": {"description": "Ready"},
                    "503": {"description": "Unavailable"}
                }
            }
        },
        "/api/v1/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate user",
                "responses": {
                    "200": {"description": "Issued token"},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/api/v1/attendance/manual": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Submit manual attendance",
                "responses": {
                    "201": {"description": "Record written"},
                    "400": {"description": "Missing evidence or invalid payload"},
                    "409": {"description": "Duplicate submission"},
                    "422": {"description": "Location rejected"}
                }
            }
        },
        "/api/v1/attendance/qr": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Submit QR attendance",
                "responses": {
                    "201": {"description": "Record written"},
                    "400": {"description": "Malformed token"},
                    "401": {"description": "Token expired"},
                    "409": {"description": "Duplicate submission"},
                    "422": {"description": "Location rejected"}
                }
            }
        },
        "/api/v1/attendance/nfc/tap": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Process an NFC card tap",
                "responses": {
                    "200": {"description": "Per-session outcomes"},
                    "403": {"description": "Card inactive"},
                    "404": {"description": "Card not registered"},
                    "410": {"description": "No usable session"}
                }
            }
        },
        "/api/v1/attendance/evidence": {
            "post": {
                "tags": ["Attendance"],
                "summary": "Upload photo evidence",
                "responses": {
                    "201": {"description": "Stored, URL returned"}
                }
            }
        },
        "/api/v1/attendance/me": {
            "get": {
                "tags": ["Attendance"],
                "summary": "List my attendance",
                "responses": {
                    "200": {"description": "Ledger records"}
                }
            }
        },
        "/api/v1/qr/tokens": {
            "post": {
                "tags": ["QR"],
                "summary": "Issue a QR capability token",
                "responses": {
                    "201": {"description": "Token issued"}
                }
            }
        },
        "/api/v1/nfc/cards": {
            "post": {
                "tags": ["NFC"],
                "summary": "Register an NFC card",
                "responses": {
                    "201": {"description": "Card registered"}
                }
            }
        },
        "/api/v1/nfc/sessions": {
            "post": {
                "tags": ["NFC"],
                "summary": "Activate an attendance session",
                "responses": {
                    "201": {"description": "Session activated"}
                }
            }
        },
        "/api/v1/nfc/sessions/usable": {
            "get": {
                "tags": ["NFC"],
                "summary": "List usable sessions",
                "responses": {
                    "200": {"description": "Sessions accepting taps"}
                }
            }
        },
        "/api/v1/settings/{key}": {
            "get": {
                "tags": ["Settings"],
                "summary": "Get a setting",
                "responses": {
                    "200": {"description": "Setting value"},
                    "404": {"description": "Unknown key"}
                }
            },
            "put": {
                "tags": ["Settings"],
                "summary": "Update a setting",
                "responses": {
                    "200": {"description": "Setting stored"}
                }
            }
        }
    }
}`

// SwaggerInfo holds exported swagger registration metadata.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Presensi API",
	Description:      "Attendance capture and reconciliation service",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
