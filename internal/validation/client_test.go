package validation

import (
	"errors"
	"strings"
	"testing"

	"github.com/Dan9191/credit-service/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validPayload = `{
	"cpf": "123.456.789-01",
	"nome": "Maria Souza",
	"score": 700,
	"possuiRestricoes": false,
	"rendaMensal": 5000.5,
	"historicoPagamentos": {"percentualEmDia": 0.95, "atrasos30Dias": 1, "atrasos60Dias": 0, "atrasos90Dias": 0}
}`

func TestValidateClient_OK(t *testing.T) {
	client, err := ValidateClient([]byte(validPayload))
	require.NoError(t, err)

	assert.Equal(t, "12345678901", client.CPF)
	assert.Equal(t, "Maria Souza", client.Name)
	assert.Equal(t, 700, client.Score)
	assert.Equal(t, 5000.5, client.MonthlyIncome)
	require.NotNil(t, client.PaymentHistory.OnTimeRatio)
	assert.Equal(t, 0.95, *client.PaymentHistory.OnTimeRatio)
	assert.Equal(t, 1, client.PaymentHistory.Late30)
}

func TestValidateClient_OnTimeRatioOptional(t *testing.T) {
	client, err := ValidateClient([]byte(`{"cpf": "12345678901", "nome": "Joao", "score": 650,
		"possuiRestricoes": false, "rendaMensal": 3500,
		"historicoPagamentos": {"atrasos30Dias": 2, "atrasos60Dias": 0, "atrasos90Dias": 0}}`))
	require.NoError(t, err)
	assert.Nil(t, client.PaymentHistory.OnTimeRatio)
}

func TestValidateClient_Violations(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		field   string
	}{
		{"score below domain", `{"cpf":"12345678901","nome":"Ana","score":299,"possuiRestricoes":false,"rendaMensal":1,"historicoPagamentos":{"atrasos30Dias":0,"atrasos60Dias":0,"atrasos90Dias":0}}`, "score"},
		{"score above domain", `{"cpf":"12345678901","nome":"Ana","score":1001,"possuiRestricoes":false,"rendaMensal":1,"historicoPagamentos":{"atrasos30Dias":0,"atrasos60Dias":0,"atrasos90Dias":0}}`, "score"},
		{"zero income", `{"cpf":"12345678901","nome":"Ana","score":500,"possuiRestricoes":false,"rendaMensal":0,"historicoPagamentos":{"atrasos30Dias":0,"atrasos60Dias":0,"atrasos90Dias":0}}`, "rendaMensal"},
		{"negative lateness", `{"cpf":"12345678901","nome":"Ana","score":500,"possuiRestricoes":false,"rendaMensal":10,"historicoPagamentos":{"atrasos30Dias":0,"atrasos60Dias":-1,"atrasos90Dias":0}}`, "historicoPagamentos.atrasos60Dias"},
		{"short name", `{"cpf":"12345678901","nome":"Al","score":500,"possuiRestricoes":false,"rendaMensal":10,"historicoPagamentos":{"atrasos30Dias":0,"atrasos60Dias":0,"atrasos90Dias":0}}`, "nome"},
		{"cpf letters", `{"cpf":"1234567890a","nome":"Ana","score":500,"possuiRestricoes":false,"rendaMensal":10,"historicoPagamentos":{"atrasos30Dias":0,"atrasos60Dias":0,"atrasos90Dias":0}}`, "cpf"},
		{"long name", `{"cpf":"12345678901","nome":"` + strings.Repeat("a", 101) + `","score":500,"possuiRestricoes":false,"rendaMensal":10,"historicoPagamentos":{"atrasos30Dias":0,"atrasos60Dias":0,"atrasos90Dias":0}}`, "nome"},
		{"sub-cent income", `{"cpf":"12345678901","nome":"Ana","score":500,"possuiRestricoes":false,"rendaMensal":0.004,"historicoPagamentos":{"atrasos30Dias":0,"atrasos60Dias":0,"atrasos90Dias":0}}`, "rendaMensal"},
		{"fractional cents", `{"cpf":"12345678901","nome":"Ana","score":500,"possuiRestricoes":false,"rendaMensal":5000.505,"historicoPagamentos":{"atrasos30Dias":0,"atrasos60Dias":0,"atrasos90Dias":0}}`, "rendaMensal"},
		{"income above column", `{"cpf":"12345678901","nome":"Ana","score":500,"possuiRestricoes":false,"rendaMensal":10000000000,"historicoPagamentos":{"atrasos30Dias":0,"atrasos60Dias":0,"atrasos90Dias":0}}`, "rendaMensal"},
		{"lateness above column", `{"cpf":"12345678901","nome":"Ana","score":500,"possuiRestricoes":false,"rendaMensal":10,"historicoPagamentos":{"atrasos30Dias":2147483648,"atrasos60Dias":0,"atrasos90Dias":0}}`, "historicoPagamentos.atrasos30Dias"},
		{"ratio finer than column", `{"cpf":"12345678901","nome":"Ana","score":500,"possuiRestricoes":false,"rendaMensal":10,"historicoPagamentos":{"percentualEmDia":0.123456,"atrasos30Dias":0,"atrasos60Dias":0,"atrasos90Dias":0}}`, "historicoPagamentos.percentualEmDia"},
		{"ratio above one", `{"cpf":"12345678901","nome":"Ana","score":500,"possuiRestricoes":false,"rendaMensal":10,"historicoPagamentos":{"percentualEmDia":1.5,"atrasos30Dias":0,"atrasos60Dias":0,"atrasos90Dias":0}}`, "historicoPagamentos.percentualEmDia"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateClient([]byte(tt.payload))
			var verr *Error
			require.True(t, errors.As(err, &verr), "got %v", err)
			fields := make([]string, len(verr.Fields))
			for i, f := range verr.Fields {
				fields[i] = f.Field
			}
			assert.Contains(t, fields, tt.field)
		})
	}
}

func TestValidateClient_ExponentIntegers(t *testing.T) {
	client, err := ValidateClient([]byte(`{"cpf":"12345678901","nome":"Ana","score":7e2,"possuiRestricoes":false,
		"rendaMensal":1.25e3,"historicoPagamentos":{"atrasos30Dias":1e1,"atrasos60Dias":0,"atrasos90Dias":0.0}}`))
	require.NoError(t, err)
	assert.Equal(t, 700, client.Score)
	assert.Equal(t, 1250.0, client.MonthlyIncome)
	assert.Equal(t, 10, client.PaymentHistory.Late30)
	assert.Equal(t, 0, client.PaymentHistory.Late90)
}

func TestValidateClient_CentBoundaries(t *testing.T) {
	for _, income := range []string{"0.01", "1234.56", "9999999999.99"} {
		payload := `{"cpf":"12345678901","nome":"` + strings.Repeat("a", 100) + `","score":500,"possuiRestricoes":false,
			"rendaMensal":` + income + `,"historicoPagamentos":{"atrasos30Dias":0,"atrasos60Dias":0,"atrasos90Dias":0}}`
		_, err := ValidateClient([]byte(payload))
		assert.NoError(t, err, income)
	}
}

func TestValidateClient_MissingFieldsReportedTogether(t *testing.T) {
	_, err := ValidateClient([]byte(`{"cpf": "12345678901"}`))
	var verr *Error
	require.True(t, errors.As(err, &verr))
	assert.Len(t, verr.Fields, 5)
}

func TestValidateClient_Malformed(t *testing.T) {
	_, err := ValidateClient([]byte(`{not json`))
	assert.ErrorIs(t, err, ErrMalformedPayload)
}

func TestNormalizeCPF(t *testing.T) {
	cpf, err := NormalizeCPF("123.456.789-01")
	require.NoError(t, err)
	assert.Equal(t, "12345678901", cpf)

	_, err = NormalizeCPF("123")
	assert.Error(t, err)
}

func TestCheckClient(t *testing.T) {
	c := &models.Client{CPF: "123.456.789-01", Name: "Maria", Score: 500, MonthlyIncome: 100}
	checked, err := CheckClient(c)
	require.NoError(t, err)
	assert.Equal(t, "12345678901", checked.CPF)

	c.Score = 100
	_, err = CheckClient(c)
	assert.Error(t, err)
}
