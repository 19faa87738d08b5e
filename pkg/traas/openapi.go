// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package traas

import (
	"net/http"
	"path"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3gen"
	"github.com/telekom/traas/pkg/api"
)

// openAPI builds the OpenAPI document describing the /start endpoint
func (t *Traas) openAPI() (*openapi3.T, error) {
	doc := &openapi3.T{
		OpenAPI: "3.0.0",
		Info: &openapi3.Info{
			Title:       "traas",
			Description: "Traceroute as a service. Traces the route back to the requesting client.",
			Version:     t.version,
		},
		Paths: openapi3.NewPaths(),
	}

	resultRef, err := openapi3gen.NewSchemaRefForValue(Result{}, nil)
	if err != nil {
		return nil, &api.ErrCreateOpenapiSchema{Name: "Result", Err: err}
	}
	errorRef, err := openapi3gen.NewSchemaRefForValue(ErrorResponse{}, nil)
	if err != nil {
		return nil, &api.ErrCreateOpenapiSchema{Name: "ErrorResponse", Err: err}
	}

	errResponse := func(desc string) *openapi3.ResponseRef {
		return &openapi3.ResponseRef{
			Value: openapi3.NewResponse().WithDescription(desc).WithJSONSchemaRef(errorRef),
		}
	}

	doc.AddOperation(path.Join("/", t.config.Api.BasePath, "start"), http.MethodGet, &openapi3.Operation{
		OperationID: "start",
		Summary:     "Trace the route to the requesting client",
		Responses: openapi3.NewResponses(
			openapi3.WithStatus(http.StatusOK, &openapi3.ResponseRef{
				Value: openapi3.NewResponse().WithDescription("The traced route").WithJSONSchemaRef(resultRef),
			}),
			openapi3.WithStatus(http.StatusBadRequest, errResponse("The client address cannot be traced")),
			openapi3.WithStatus(http.StatusBadGateway, errResponse("The traceroute could not be run")),
		),
	})
	return doc, nil
}
