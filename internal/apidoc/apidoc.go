// Package apidoc builds the OpenAPI 3 document served at /api/v1/openapi.json
// and rendered by the Swagger UI page.
package apidoc

import (
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/jpcadena/aws-session-management/internal/config"
)

// Build assembles the API document and returns it marshaled as JSON.
func Build(cfg config.Config) ([]byte, error) {
	doc := document(cfg)
	raw, err := doc.MarshalJSON()
	if err != nil {
		return nil, fmt.Errorf("marshal api document: %w", err)
	}
	return raw, nil
}

func document(cfg config.Config) *openapi3.T {
	doc := &openapi3.T{
		OpenAPI: "3.0.3",
		Info: &openapi3.Info{
			Title:       config.APIName,
			Description: description(),
			Version:     config.APIVersion,
			License:     &openapi3.License{Name: "MIT"},
		},
		Tags: openapi3.Tags{
			{Name: "session", Description: sessionTagDescription()},
		},
		Paths: openapi3.NewPaths(
			openapi3.WithPath(config.APIPrefix+"/session", sessionPath()),
			openapi3.WithPath(config.APIPrefix+"/session/{user_id}", sessionByUserPath()),
			openapi3.WithPath(config.APIPrefix+"/health", healthPath()),
		),
	}

	if cfg.Contact != nil {
		doc.Info.Contact = &openapi3.Contact{
			Name:  cfg.Contact.Name,
			URL:   cfg.Contact.URL,
			Email: cfg.Contact.Email,
		}
	}
	if cfg.ServerURL != "" {
		doc.Servers = openapi3.Servers{
			{URL: cfg.ServerURL, Description: cfg.ServerDescription},
		}
	}
	return doc
}

func description() string {
	text := fmt.Sprintf("**%s** helps you do awesome stuff.🚀", config.APIName)
	text += "\n\nThis RESTful API provides a backend service for managing user" +
		" sessions on AWS DynamoDB, handling session-related operations such as" +
		" creating, updating and retrieving user session information."
	if img, err := ProjectImage(); err == nil {
		text += fmt.Sprintf("\n\n<img src=%q width=\"800px\" height=\"600px\"/>", img)
	}
	return text
}

func sessionTagDescription() string {
	text := "Session management."
	if img, err := SessionImage(); err == nil {
		text += fmt.Sprintf("\n\n<img src=%q width=\"150\" height=\"100\"/>", img)
	}
	return text
}

func sessionRequestSchema() *openapi3.Schema {
	userID := openapi3.NewStringSchema()
	userID.Title = "User ID"
	userID.Description = "The unique identifier of the user."

	action := openapi3.NewStringSchema()
	action.Title = "Action"
	action.Description = "The action performed by the user."

	schema := openapi3.NewObjectSchema().
		WithProperty("user_id", userID).
		WithProperty("action", action)
	schema.Title = "SessionRequest"
	schema.Required = []string{"user_id", "action"}
	return schema
}

func sessionResponseSchema() *openapi3.Schema {
	userID := openapi3.NewStringSchema()
	userID.Title = "User ID"
	userID.Description = "The unique identifier of the user."

	lastAction := openapi3.NewStringSchema()
	lastAction.Title = "Last Action"
	lastAction.Description = "The last action performed by the user."

	schema := openapi3.NewObjectSchema().
		WithProperty("user_id", userID).
		WithProperty("last_action", lastAction)
	schema.Title = "SessionResponse"
	schema.Required = []string{"user_id", "last_action"}
	return schema
}

func errorSchema() *openapi3.Schema {
	return openapi3.NewObjectSchema().WithProperty("detail", openapi3.NewStringSchema())
}

// sessionExamples mirrors the request body examples shown in the docs page.
func sessionExamples() openapi3.Examples {
	return openapi3.Examples{
		"normal": &openapi3.ExampleRef{Value: &openapi3.Example{
			Summary:     "A normal example",
			Description: "A **normal** user create object that works correctly.",
			Value: map[string]any{
				"user_id": "some_uuid",
				"action":  "some_action",
			},
		}},
		"converted": &openapi3.ExampleRef{Value: &openapi3.Example{
			Summary:     "An example with converted data",
			Description: "The API converts `integers` to actual `strings` automatically",
			Value: map[string]any{
				"user_id": 1,
				"action":  "converted_action",
			},
		}},
		"invalid": &openapi3.ExampleRef{Value: &openapi3.Example{
			Summary: "Invalid data is rejected with an error",
			Value: map[string]any{
				"user_id": "2004-12-31",
				"action":  true,
			},
		}},
	}
}

func jsonResponse(description string, schema *openapi3.Schema) *openapi3.ResponseRef {
	return &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription(description).
			WithContent(openapi3.NewContentWithJSONSchema(schema)),
	}
}

func sessionPath() *openapi3.PathItem {
	return &openapi3.PathItem{
		Post: &openapi3.Operation{
			Tags:        []string{"session"},
			Summary:     "Record a session action",
			Description: "Updates the session information of a user with the action performed.",
			OperationID: "recordSession",
			RequestBody: &openapi3.RequestBodyRef{
				Value: &openapi3.RequestBody{
					Description: "Session data to create",
					Required:    true,
					Content: openapi3.Content{
						"application/json": &openapi3.MediaType{
							Schema:   openapi3.NewSchemaRef("", sessionRequestSchema()),
							Examples: sessionExamples(),
						},
					},
				},
			},
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(201, jsonResponse("Session recorded", sessionResponseSchema())),
				openapi3.WithStatus(400, jsonResponse("Invalid request payload", errorSchema())),
				openapi3.WithStatus(503, jsonResponse("Session store unavailable", errorSchema())),
				openapi3.WithStatus(500, jsonResponse("Unexpected error", errorSchema())),
			),
		},
	}
}

func sessionByUserPath() *openapi3.PathItem {
	userID := openapi3.NewPathParameter("user_id").WithSchema(openapi3.NewStringSchema())
	userID.Description = "The unique identifier of the user."

	return &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"session"},
			Summary:     "Retrieve a session",
			Description: "Returns the last action recorded for a user.",
			OperationID: "getSession",
			Parameters:  openapi3.Parameters{&openapi3.ParameterRef{Value: userID}},
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(200, jsonResponse("Session found", sessionResponseSchema())),
				openapi3.WithStatus(404, jsonResponse("No session for the user", errorSchema())),
				openapi3.WithStatus(503, jsonResponse("Session store unavailable", errorSchema())),
				openapi3.WithStatus(500, jsonResponse("Unexpected error", errorSchema())),
			),
		},
	}
}

func healthPath() *openapi3.PathItem {
	statusSchema := openapi3.NewObjectSchema().WithProperty("status", openapi3.NewStringSchema())

	healthy := &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription("All dependencies are reachable").
			WithContent(openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: openapi3.NewSchemaRef("", statusSchema),
					Example: []any{
						map[string]any{"dynamodb": "healthy", "sqs": "healthy"},
					},
				},
			}),
	}
	unhealthy := &openapi3.ResponseRef{
		Value: openapi3.NewResponse().
			WithDescription("At least one dependency is failing").
			WithContent(openapi3.Content{
				"application/json": &openapi3.MediaType{
					Schema: openapi3.NewSchemaRef("", statusSchema),
					Example: []any{
						map[string]any{"status": "unhealthy", "sqs": "unhealthy"},
						map[string]any{"status": "healthy", "sqs": "unhealthy"},
						map[string]any{"status": "unhealthy", "sqs": "healthy"},
					},
				},
			}),
	}

	return &openapi3.PathItem{
		Get: &openapi3.Operation{
			Tags:        []string{"health"},
			Summary:     "Check service health",
			Description: "Checks the health of the application backend.",
			OperationID: "checkHealth",
			Responses: openapi3.NewResponses(
				openapi3.WithStatus(200, healthy),
				openapi3.WithStatus(503, unhealthy),
			),
		},
	}
}
