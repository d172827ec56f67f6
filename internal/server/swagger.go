package server

import "github.com/swaggo/swag"

// @title georisk API
// @version 0.1
// @description Borromean geohazard risk scoring, lore scoring and batch assessment jobs.
// @BasePath /

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
        "/api/health": {
            "get": {
                "produces": ["application/json"],
                "summary": "Liveness probe",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/server.HealthResponse"}}}
            }
        },
        "/api/calculate-risk": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Compute the Borromean risk score for one set of inputs",
                "parameters": [{"in": "body", "name": "request", "required": true, "schema": {"$ref": "#/definitions/app.AssessmentRequest"}}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/server.CalculateRiskResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}
                }
            }
        },
        "/api/risks": {
            "get": {
                "produces": ["application/json"],
                "summary": "List stored assessments",
                "parameters": [
                    {"type": "string", "name": "site", "in": "query"},
                    {"type": "integer", "name": "limit", "in": "query"}
                ],
                "responses": {"200": {"description": "OK"}}
            }
        },
        "/api/risks/compare": {
            "get": {
                "produces": ["application/json"],
                "summary": "Diff two stored assessments",
                "parameters": [
                    {"type": "string", "name": "base", "in": "query", "required": true},
                    {"type": "string", "name": "head", "in": "query", "required": true}
                ],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}}
            }
        },
        "/api/sites": {
            "get": {"produces": ["application/json"], "summary": "List sites", "responses": {"200": {"description": "OK"}}},
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Register a site",
                "parameters": [{"in": "body", "name": "site", "required": true, "schema": {"$ref": "#/definitions/server.CreateSiteRequest"}}],
                "responses": {"201": {"description": "Created"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}}
            }
        },
        "/api/sites/{site}/lore": {
            "get": {
                "produces": ["application/json"],
                "summary": "List the lore records of a site",
                "parameters": [{"type": "string", "name": "site", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}}
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Score and store a lore record",
                "parameters": [{"type": "string", "name": "site", "in": "path", "required": true}],
                "responses": {"201": {"description": "Created"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}}
            }
        },
        "/api/sites/{site}/lore-signal": {
            "get": {
                "produces": ["application/json"],
                "summary": "Reduce a site's lore records to one signal",
                "parameters": [{"type": "string", "name": "site", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/app.LoreSignal"}}}
            }
        },
        "/api/lore/{id}/revisions": {
            "get": {
                "produces": ["application/json"],
                "summary": "Narrative revision history of a lore record",
                "parameters": [{"type": "string", "name": "id", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}}
            }
        },
        "/api/lore/score": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Score a lore record without storing it",
                "responses": {"200": {"description": "OK"}, "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}}
            }
        },
        "/api/jobs/batch": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "summary": "Start a batch assessment job",
                "parameters": [{"in": "body", "name": "batch", "required": true, "schema": {"$ref": "#/definitions/server.BatchJobRequest"}}],
                "responses": {"202": {"description": "Accepted"}}
            }
        },
        "/api/jobs/{jobID}": {
            "get": {
                "produces": ["application/json"],
                "summary": "Get a job snapshot",
                "parameters": [{"type": "string", "name": "jobID", "in": "path", "required": true}],
                "responses": {"200": {"description": "OK"}, "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/server.ErrorResponse"}}}
            },
            "delete": {
                "summary": "Cancel a job",
                "parameters": [{"type": "string", "name": "jobID", "in": "path", "required": true}],
                "responses": {"204": {"description": "No Content"}}
            }
        }
    },
    "definitions": {
        "app.AssessmentRequest": {
            "type": "object",
            "properties": {
                "slope_deg": {"type": "number", "example": 35},
                "curvature": {"type": "number", "example": 0.8},
                "lith_class": {"type": "integer", "example": 4},
                "rain_exceed": {"type": "number", "example": 0.9},
                "lore_signal": {"type": "number", "example": 0.6},
                "exposure": {"type": "number", "example": 0.7},
                "fragility": {"type": "number", "example": 0.5},
                "hazard_type": {"type": "string", "example": "landslide"},
                "compute_uncertainty": {"type": "boolean", "example": true},
                "n_samples": {"type": "integer", "example": 1000},
                "site_id": {"type": "string"},
                "location_lat": {"type": "number"},
                "location_lng": {"type": "number"},
                "date_observed": {"type": "string"}
            }
        },
        "server.BatchJobRequest": {
            "type": "object",
            "properties": {"requests": {"type": "array", "items": {"$ref": "#/definitions/app.AssessmentRequest"}}}
        },
        "server.CalculateRiskResponse": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean", "example": true},
                "message": {"type": "string", "example": "Risk calculated successfully"},
                "data": {"type": "object"}
            }
        },
        "server.CreateSiteRequest": {
            "type": "object",
            "properties": {
                "slug": {"type": "string", "example": "mill-creek"},
                "name": {"type": "string", "example": "Mill Creek Slope"},
                "hazard_type": {"type": "string", "example": "debris_flow"},
                "latitude": {"type": "number"},
                "longitude": {"type": "number"}
            }
        },
        "server.ErrorResponse": {
            "type": "object",
            "properties": {"error": {"type": "string", "example": "site not found"}}
        },
        "server.HealthResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "healthy"},
                "service": {"type": "string", "example": "georisk"},
                "timestamp": {"type": "string"}
            }
        },
        "app.LoreSignal": {
            "type": "object",
            "properties": {
                "site_id": {"type": "string"},
                "policy": {"type": "string", "example": "max"},
                "lore_signal": {"type": "number", "example": 0.53},
                "records": {"type": "integer", "example": 3}
            }
        }
    }
}`

// SwaggerInfo holds the exported Swagger info so clients can modify it.
var SwaggerInfo = &swag.Spec{
	Version:          "0.1",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "georisk API",
	Description:      "Borromean geohazard risk scoring, lore scoring and batch assessment jobs.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
