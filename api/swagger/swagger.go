package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "StarCoin API",
        "description": "Classroom star ledger, prize shop, lesson schedule and coin printing",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "Students", "description": "Roster, lesson ratings and balances"},
        {"name": "Shop", "description": "Prize redemption and refunds"},
        {"name": "Prizes", "description": "Prize catalog and stock"},
        {"name": "Classes", "description": "Classes and subgroups"},
        {"name": "Lessons", "description": "Lesson plans and their files"},
        {"name": "Coins", "description": "Printable coin sheets"},
        {"name": "Data", "description": "Export, import and backups"},
        {"name": "System", "description": "Runtime counters"}
    ],
    "paths": {
        "/students": {
            "get": {
                "tags": ["Students"],
                "summary": "List students with their balances",
                "parameters": [
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "subgroupId", "in": "query", "type": "string"},
                    {"name": "archived", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Students"],
                "summary": "Create student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/students/{id}": {
            "get": {
                "tags": ["Students"],
                "summary": "Get student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "put": {
                "tags": ["Students"],
                "summary": "Update student",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateStudentRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Students"],
                "summary": "Delete student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/students/{id}/lessons/{date}": {
            "put": {
                "tags": ["Students"],
                "summary": "Record attendance and stars for one lesson date",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "date", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RecordLessonRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/students/{id}/ledger": {
            "get": {
                "tags": ["Students"],
                "summary": "Star balance of a student",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/students/{id}/purchases": {
            "get": {
                "tags": ["Students"],
                "summary": "Purchase history, newest first",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/students/{id}/purchases/export": {
            "get": {
                "tags": ["Students"],
                "summary": "Download purchase history",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]}
                ],
                "responses": {"200": {"description": "File"}}
            }
        },
        "/students/{id}/purchases/{purchaseId}/refund": {
            "post": {
                "tags": ["Shop"],
                "summary": "Refund a purchase",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "purchaseId", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already refunded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/class-stats": {
            "get": {
                "tags": ["Students"],
                "summary": "Aggregate star statistics over a filtered roster",
                "parameters": [
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "subgroupId", "in": "query", "type": "string"},
                    {"name": "archived", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/shop/purchases": {
            "post": {
                "tags": ["Shop"],
                "summary": "Redeem a prize for a student",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PurchaseRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Insufficient balance, out of stock or archived", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/prizes": {
            "get": {
                "tags": ["Prizes"],
                "summary": "List prizes",
                "parameters": [{"name": "archived", "in": "query", "type": "boolean"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Prizes"],
                "summary": "Create prize",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PrizeRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/prizes/{id}": {
            "put": {
                "tags": ["Prizes"],
                "summary": "Replace prize",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PrizeRequest"}}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "delete": {
                "tags": ["Prizes"],
                "summary": "Delete prize",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"204": {"description": "No Content"}}
            }
        },
        "/classes": {
            "get": {
                "tags": ["Classes"],
                "summary": "List classes",
                "parameters": [{"name": "archived", "in": "query", "type": "boolean"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Classes"],
                "summary": "Create class",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ClassRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/classes/{id}/archive": {
            "post": {
                "tags": ["Classes"],
                "summary": "Archive class and drop its lessons from today on",
                "parameters": [{"name": "id", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/lessons": {
            "get": {
                "tags": ["Lessons"],
                "summary": "List lesson plans for a day or a date range",
                "parameters": [
                    {"name": "date", "in": "query", "type": "string"},
                    {"name": "from", "in": "query", "type": "string"},
                    {"name": "to", "in": "query", "type": "string"},
                    {"name": "classId", "in": "query", "type": "string"},
                    {"name": "subgroupId", "in": "query", "type": "string"},
                    {"name": "archived", "in": "query", "type": "boolean"}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            },
            "post": {
                "tags": ["Lessons"],
                "summary": "Schedule one or more lessons",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateLessonsRequest"}}
                ],
                "responses": {"201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/lessons/{id}": {
            "delete": {
                "tags": ["Lessons"],
                "summary": "Delete a lesson, or it and the later lessons of its series",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "mode", "in": "query", "type": "string", "enum": ["single", "future"]}
                ],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/lessons/{id}/files": {
            "post": {
                "tags": ["Lessons"],
                "summary": "Attach a file to a lesson plan",
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "413": {"description": "Too large", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/files/{token}": {
            "get": {
                "tags": ["Lessons"],
                "summary": "Download a lesson file through a signed link",
                "parameters": [{"name": "token", "in": "path", "required": true, "type": "string"}],
                "responses": {"200": {"description": "File"}, "403": {"description": "Invalid or expired token"}}
            }
        },
        "/coins/print": {
            "post": {
                "tags": ["Coins"],
                "summary": "Print a numbered batch of coins",
                "produces": ["application/pdf"],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PrintCoinsRequest"}}
                ],
                "responses": {"200": {"description": "PDF sheet"}}
            }
        },
        "/coins/next-batch": {
            "get": {
                "tags": ["Coins"],
                "summary": "Suggest the next batch number",
                "parameters": [{"name": "denomination", "in": "query", "type": "integer"}],
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        },
        "/data/export": {
            "get": {
                "tags": ["Data"],
                "summary": "Download every collection as a JSON snapshot",
                "responses": {"200": {"description": "Snapshot file"}}
            }
        },
        "/data/import": {
            "post": {
                "tags": ["Data"],
                "summary": "Replace the collections present in a snapshot",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Invalid snapshot", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/data/restore": {
            "post": {
                "tags": ["Data"],
                "summary": "Restore the automatic snapshot",
                "responses": {"204": {"description": "No Content"}, "404": {"description": "No backup"}}
            }
        },
        "/system/metrics": {
            "get": {
                "tags": ["System"],
                "summary": "Aggregated request, store and shop counters",
                "responses": {"200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}}
            }
        }
    },
    "definitions": {
        "CreateStudentRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "classId": {"type": "string"},
                "subgroupId": {"type": "string"}
            },
            "required": ["name"]
        },
        "RecordLessonRequest": {
            "type": "object",
            "properties": {
                "attended": {"type": "boolean"},
                "stars": {"type": "integer", "minimum": 0, "maximum": 5}
            }
        },
        "PurchaseRequest": {
            "type": "object",
            "properties": {
                "studentId": {"type": "string"},
                "prizeId": {"type": "string"}
            },
            "required": ["studentId", "prizeId"]
        },
        "PrizeRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "cost": {"type": "integer", "minimum": 1},
                "description": {"type": "string"},
                "emoji": {"type": "string"},
                "quantity": {"type": "integer", "minimum": 0, "x-nullable": true}
            },
            "required": ["name", "cost", "description"]
        },
        "ClassRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string"},
                "color": {"type": "string"}
            },
            "required": ["name"]
        },
        "CreateLessonsRequest": {
            "type": "object",
            "properties": {
                "classId": {"type": "string"},
                "subgroupId": {"type": "string"},
                "mode": {"type": "string", "enum": ["once", "weekly", "custom"]},
                "date": {"type": "string"},
                "dates": {"type": "array", "items": {"type": "string"}},
                "weeks": {"type": "integer", "minimum": 1, "maximum": 104},
                "time": {"type": "string"},
                "title": {"type": "string"},
                "description": {"type": "string"}
            },
            "required": ["classId", "mode"]
        },
        "PrintCoinsRequest": {
            "type": "object",
            "properties": {
                "batchNumber": {"type": "integer", "minimum": 1},
                "selections": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {
                            "denomination": {"type": "integer", "enum": [1, 2, 5, 10, 20, 50]},
                            "quantity": {"type": "integer", "minimum": 1, "maximum": 50}
                        }
                    }
                }
            },
            "required": ["batchNumber", "selections"]
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "meta": {"type": "object"}
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
