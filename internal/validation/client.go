// Package validation checks client payloads before they reach storage or
// the decision engine.
package validation

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/Dan9191/credit-service/internal/models"
	"github.com/xeipuuv/gojsonschema"
)

const clientSchema = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["cpf", "nome", "score", "possuiRestricoes", "rendaMensal", "historicoPagamentos"],
  "properties": {
    "cpf": {"type": "string", "minLength": 11, "maxLength": 14},
    "nome": {"type": "string", "minLength": 3, "maxLength": 100},
    "score": {"type": "integer", "minimum": 300, "maximum": 1000},
    "possuiRestricoes": {"type": "boolean"},
    "rendaMensal": {"type": "number", "exclusiveMinimum": 0, "maximum": 9999999999.99, "multipleOf": 0.01},
    "historicoPagamentos": {
      "type": "object",
      "required": ["atrasos30Dias", "atrasos60Dias", "atrasos90Dias"],
      "properties": {
        "percentualEmDia": {"type": "number", "minimum": 0, "maximum": 1, "multipleOf": 0.0001},
        "atrasos30Dias": {"type": "integer", "minimum": 0, "maximum": 2147483647},
        "atrasos60Dias": {"type": "integer", "minimum": 0, "maximum": 2147483647},
        "atrasos90Dias": {"type": "integer", "minimum": 0, "maximum": 2147483647}
      }
    }
  }
}`

// clientPayload mirrors models.Client with integer fields kept as numbers,
// so exponent forms such as 7e2 decode once the schema has accepted them.
type clientPayload struct {
	CPF             string      `json:"cpf"`
	Name            string      `json:"nome"`
	Score           json.Number `json:"score"`
	HasRestrictions bool        `json:"possuiRestricoes"`
	MonthlyIncome   float64     `json:"rendaMensal"`
	PaymentHistory  struct {
		OnTimeRatio *float64    `json:"percentualEmDia"`
		Late30      json.Number `json:"atrasos30Dias"`
		Late60      json.Number `json:"atrasos60Dias"`
		Late90      json.Number `json:"atrasos90Dias"`
	} `json:"historicoPagamentos"`
}

// integer converts a number the schema already checked to be a bounded integer
func integer(n json.Number) int {
	f, _ := n.Float64()
	return int(f)
}

func (p *clientPayload) client() *models.Client {
	return &models.Client{
		CPF:             p.CPF,
		Name:            p.Name,
		Score:           integer(p.Score),
		HasRestrictions: p.HasRestrictions,
		MonthlyIncome:   p.MonthlyIncome,
		PaymentHistory: models.PaymentHistory{
			OnTimeRatio: p.PaymentHistory.OnTimeRatio,
			Late30:      integer(p.PaymentHistory.Late30),
			Late60:      integer(p.PaymentHistory.Late60),
			Late90:      integer(p.PaymentHistory.Late90),
		},
	}
}

// ErrMalformedPayload is returned when the body is not JSON at all
var ErrMalformedPayload = errors.New("malformed payload")

var schema = mustSchema(clientSchema)

func mustSchema(s string) *gojsonschema.Schema {
	compiled, err := gojsonschema.NewSchema(gojsonschema.NewStringLoader(s))
	if err != nil {
		panic(fmt.Sprintf("validation: invalid client schema: %v", err))
	}
	return compiled
}

// FieldError describes one invalid field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// Error lists every violation found in a payload
type Error struct {
	Fields []FieldError
}

func (e *Error) Error() string {
	parts := make([]string, len(e.Fields))
	for i, f := range e.Fields {
		parts[i] = f.Field + ": " + f.Message
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

// NormalizeCPF strips formatting and requires exactly 11 digits
func NormalizeCPF(cpf string) (string, error) {
	var b strings.Builder
	for _, r := range cpf {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	if b.Len() != 11 {
		return "", &Error{Fields: []FieldError{{Field: "cpf", Message: "CPF deve conter 11 dígitos"}}}
	}
	return b.String(), nil
}

// ValidateClient checks raw against the client schema and decodes it. The
// returned client carries a normalised CPF.
func ValidateClient(raw []byte) (*models.Client, error) {
	result, err := schema.Validate(gojsonschema.NewBytesLoader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
	}

	var fields []FieldError
	for _, desc := range result.Errors() {
		fields = append(fields, FieldError{Field: desc.Field(), Message: desc.Description()})
	}

	var client *models.Client
	if len(fields) == 0 {
		var payload clientPayload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedPayload, err)
		}
		client = payload.client()
		cpf, err := NormalizeCPF(client.CPF)
		if err != nil {
			var verr *Error
			errors.As(err, &verr)
			fields = append(fields, verr.Fields...)
		}
		client.CPF = cpf
	}

	if len(fields) > 0 {
		return nil, &Error{Fields: fields}
	}
	return client, nil
}

// CheckClient runs the schema against an already decoded client, as used by
// bulk imports.
func CheckClient(c *models.Client) (*models.Client, error) {
	raw, err := json.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("failed to encode client: %w", err)
	}
	return ValidateClient(raw)
}
