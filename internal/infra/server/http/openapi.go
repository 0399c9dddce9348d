package httpserver

import "net/http"

func (s *httpServer) serveOpenAPI(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(openAPISpec))
}

const openAPISpec = `{
  "openapi": "3.0.3",
  "info": {
    "title": "materialcalc API",
    "version": "1.0.0",
    "description": "Area, volume and coverage estimates for landscaping and paint materials."
  },
  "paths": {
    "/estimate": {
      "post": {
        "summary": "Compute one estimate",
        "requestBody": {"required": true, "content": {"application/json": {"schema": {"$ref": "#/components/schemas/Input"}}}},
        "responses": {
          "200": {"description": "Valid estimate"},
          "422": {"description": "Input rejected; outcome.failure names the field"},
          "400": {"description": "Malformed JSON"},
          "413": {"description": "Body too large"},
          "429": {"description": "Rate limited"}
        }
      }
    },
    "/estimate/batch": {
      "post": {
        "summary": "Compute many estimates concurrently",
        "requestBody": {"required": true, "content": {"application/json": {"schema": {
          "type": "object",
          "properties": {"items": {"type": "array", "items": {"$ref": "#/components/schemas/Input"}}}
        }}}},
        "responses": {"200": {"description": "Outcomes in request order"}}
      }
    },
    "/materials": {"get": {"summary": "List material presets", "responses": {"200": {"description": "Presets"}}}},
    "/materials/{name}": {
      "get": {
        "summary": "Fetch one preset",
        "parameters": [{"name": "name", "in": "path", "required": true, "schema": {"type": "string"}}],
        "responses": {"200": {"description": "Preset"}, "404": {"description": "Unknown material"}}
      }
    },
    "/units": {"get": {"summary": "Accepted unit tags and shape fields", "responses": {"200": {"description": "Units"}}}},
    "/healthz": {"get": {"summary": "Liveness", "responses": {"200": {"description": "ok"}}}},
    "/ws/estimate": {"get": {"summary": "WebSocket stream of estimate frames", "responses": {"101": {"description": "Upgraded"}}}}
  },
  "components": {
    "schemas": {
      "Input": {
        "type": "object",
        "properties": {
          "calculator": {"type": "string", "enum": ["area", "volume", "coverage"]},
          "material": {"type": "string"},
          "shape": {"type": "string"},
          "dimensions": {"type": "object", "additionalProperties": {"type": "string"}},
          "lengthUnit": {"type": "string"},
          "depth": {"type": "string"},
          "depthUnit": {"type": "string"},
          "waste": {"type": "string"},
          "coats": {"type": "string"},
          "coverageRate": {"type": "string"},
          "rateAreaUnit": {"type": "string"},
          "bagSize": {"type": "string"},
          "bagUnit": {"type": "string"},
          "unitPrice": {"type": "string"},
          "priceBasis": {"type": "string", "enum": ["per_bag", "per_volume", "per_unit"]},
          "priceVolumeUnit": {"type": "string"},
          "areaUnit": {"type": "string"},
          "volumeUnit": {"type": "string"}
        },
        "required": ["shape", "dimensions"]
      }
    }
  }
}`
