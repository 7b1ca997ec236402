package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/soniahiltner/finance-tracker-sub001/internal/validate"
)

const ctxInputKey = "input"

// Validate applies a declarative schema to the request before the handler
// runs. On any violation it terminates with 400 and the complete list of
// field errors; on success the normalized request replaces the raw one and
// handlers read it via Input(c).
func Validate(schema *validate.Schema) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			body, err := decodeBody(c)
			if err != nil {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"success": false,
					"message": "Invalid request body",
				})
			}

			params := make(map[string]string)
			for _, name := range c.ParamNames() {
				params[name] = c.Param(name)
			}

			input, fieldErrs := schema.Apply(body, c.QueryParams(), params)
			if len(fieldErrs) > 0 {
				return c.JSON(http.StatusBadRequest, echo.Map{
					"success": false,
					"message": "Validation failed",
					"errors":  fieldErrs,
				})
			}

			c.Set(ctxInputKey, input)
			return next(c)
		}
	}
}

// Input returns the normalized request produced by the Validate stage.
func Input(c echo.Context) *validate.Request {
	if in, ok := c.Get(ctxInputKey).(*validate.Request); ok {
		return in
	}
	return &validate.Request{}
}

// decodeBody parses the JSON body into a generic map, keeping numbers in
// their textual form so the validator can check decimal places exactly as
// the client sent them. Requests without a body yield an empty map.
func decodeBody(c echo.Context) (map[string]any, error) {
	req := c.Request()
	if req.Body == nil || req.Method == http.MethodGet || req.Method == http.MethodDelete {
		return map[string]any{}, nil
	}
	raw, err := io.ReadAll(io.LimitReader(req.Body, 16<<20))
	_ = req.Body.Close()
	req.Body = io.NopCloser(bytes.NewReader(raw))
	if err != nil {
		return nil, err
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		return map[string]any{}, nil
	}

	body := make(map[string]any)
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	if err := dec.Decode(&body); err != nil {
		return nil, err
	}
	return body, nil
}
