package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Registrar API",
        "description": "Course registration backend: prerequisite trees, enrollment, weekly schedules",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "tags": [
        {"name": "CourseTree", "description": "Prerequisite graph and catalog metadata"},
        {"name": "Enrollments", "description": "Registration and withdrawal workflow"},
        {"name": "Schedule", "description": "Time slot selection and weekly schedules"},
        {"name": "Semester", "description": "Semester policy and window settings"}
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
        "/course-tree": {
            "get": {
                "tags": ["CourseTree"],
                "summary": "Course dependency forest grouped by department",
                "parameters": [
                    {"name": "department", "in": "query", "type": "string"},
                    {"name": "level", "in": "query", "type": "integer"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/course-tree/{course_id}": {
            "get": {
                "tags": ["CourseTree"],
                "summary": "Direct prerequisites and subsequents of a course",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Course not found"}
                }
            }
        },
        "/course-tree/validate/{course_id}": {
            "get": {
                "tags": ["CourseTree"],
                "summary": "Check a prerequisite chain for circular dependencies",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/course-tree/{course_id}/prerequisites/{prereq_id}": {
            "post": {
                "tags": ["CourseTree"],
                "summary": "Link a prerequisite to a course",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"},
                    {"name": "prereq_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Linked"},
                    "400": {"description": "Circular dependency"},
                    "409": {"description": "Already linked"}
                }
            },
            "delete": {
                "tags": ["CourseTree"],
                "summary": "Unlink a prerequisite from a course",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"},
                    {"name": "prereq_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Unlinked"},
                    "404": {"description": "Not linked"}
                }
            }
        },
        "/course-tree/{course_id}/level": {
            "patch": {
                "tags": ["CourseTree"],
                "summary": "Set or clear the explicit level of a course",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateLevelRequest"}}
                ],
                "responses": {
                    "204": {"description": "Updated"}
                }
            }
        },
        "/course-tree/{course_id}/semesters": {
            "get": {
                "tags": ["CourseTree"],
                "summary": "Semesters a course is offered in",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "put": {
                "tags": ["CourseTree"],
                "summary": "Replace the semesters a course is offered in",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSemestersRequest"}}
                ],
                "responses": {
                    "204": {"description": "Updated"}
                }
            }
        },
        "/enrollments": {
            "post": {
                "tags": ["Enrollments"],
                "summary": "Register a student for a course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Registered", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Not eligible"},
                    "403": {"description": "Registration window closed"},
                    "409": {"description": "Already enrolled"}
                }
            }
        },
        "/enrollments/{course_id}": {
            "delete": {
                "tags": ["Enrollments"],
                "summary": "Withdraw a student from a course",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"},
                    {"name": "student_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "Withdrawn", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Deadline passed"},
                    "404": {"description": "No active enrollment"}
                }
            }
        },
        "/enrollments/student/{student_id}": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "List a student's enrollments",
                "parameters": [
                    {"name": "student_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/courses/available": {
            "get": {
                "tags": ["Enrollments"],
                "summary": "Per-course enrollment eligibility for a student",
                "parameters": [
                    {"name": "semester", "in": "query", "type": "string"},
                    {"name": "student_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Weekly schedule grouped by day",
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/slots": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Full slot catalog grouped by course",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Schedule"],
                "summary": "Select a time slot for an enrolled course",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/SelectSlotRequest"}}
                ],
                "responses": {
                    "201": {"description": "Selected", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Not enrolled or wrong course"},
                    "409": {"description": "Schedule conflict"}
                }
            }
        },
        "/schedule/slots/{course_id}/{type}": {
            "delete": {
                "tags": ["Schedule"],
                "summary": "Remove a selected slot",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"},
                    {"name": "type", "in": "path", "required": true, "type": "string"},
                    {"name": "student_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Removed"},
                    "404": {"description": "No selection"}
                }
            }
        },
        "/schedule/conflicts": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Pairwise time conflicts in the schedule",
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/recommendations": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Conflict-free slot recommendations across the student's enrollments",
                "parameters": [
                    {"name": "student_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/course/{course_id}/slots": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Available time slots of a course grouped by type",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/course/{course_id}/seats": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Remaining seats per time slot of a course",
                "parameters": [
                    {"name": "course_id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/schedule/export": {
            "get": {
                "tags": ["Schedule"],
                "summary": "Export the weekly schedule as CSV or PDF",
                "produces": ["text/csv", "application/pdf"],
                "parameters": [
                    {"name": "format", "in": "query", "type": "string", "enum": ["csv", "pdf"]},
                    {"name": "student_id", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File"}
                }
            }
        },
        "/semester": {
            "get": {
                "tags": ["Semester"],
                "summary": "Current semester policy and window settings",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Policy not configured"}
                }
            },
            "put": {
                "tags": ["Semester"],
                "summary": "Replace the semester policy",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateSemesterPolicyRequest"}}
                ],
                "responses": {
                    "200": {"description": "Updated", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "required": ["student_id", "course_id"],
            "properties": {
                "student_id": {"type": "string"},
                "course_id": {"type": "string"}
            }
        },
        "SelectSlotRequest": {
            "type": "object",
            "required": ["student_id", "course_id", "slot_id"],
            "properties": {
                "student_id": {"type": "string"},
                "course_id": {"type": "string"},
                "slot_id": {"type": "string"}
            }
        },
        "UpdateLevelRequest": {
            "type": "object",
            "properties": {
                "level": {"type": "integer", "minimum": 1, "maximum": 4}
            }
        },
        "UpdateSemestersRequest": {
            "type": "object",
            "required": ["semesters"],
            "properties": {
                "semesters": {
                    "type": "array",
                    "items": {"type": "string", "enum": ["Fall", "Spring", "Summer"]}
                }
            }
        },
        "UpdateSemesterPolicyRequest": {
            "type": "object",
            "required": ["current_semester", "academic_year"],
            "properties": {
                "current_semester": {"type": "string", "enum": ["Fall", "Spring", "Summer"]},
                "academic_year": {"type": "string"},
                "registration_enabled": {"type": "boolean"},
                "registration_start": {"type": "string", "format": "date-time"},
                "registration_end": {"type": "string", "format": "date-time"},
                "withdrawal_enabled": {"type": "boolean"},
                "withdrawal_start": {"type": "string", "format": "date-time"},
                "withdrawal_end": {"type": "string", "format": "date-time"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
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
