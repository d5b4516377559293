package models

import "time"

// PaymentHistory holds a client's late payment counters
type PaymentHistory struct {
	OnTimeRatio *float64 `json:"percentualEmDia,omitempty"` // 0.0-1.0, absent in newer records
	Late30      int      `json:"atrasos30Dias"`
	Late60      int      `json:"atrasos60Dias"`
	Late90      int      `json:"atrasos90Dias"`
}

// Client represents a stored client credit record
type Client struct {
	CPF             string         `json:"cpf"`
	Name            string         `json:"nome"`
	Score           int            `json:"score"`
	HasRestrictions bool           `json:"possuiRestricoes"`
	MonthlyIncome   float64        `json:"rendaMensal"`
	PaymentHistory  PaymentHistory `json:"historicoPagamentos"`
	CreatedAt       *time.Time     `json:"createdAt,omitempty"`
	UpdatedAt       *time.Time     `json:"updatedAt,omitempty"`
}

// ClientList is the envelope used by GET /clientes and by client data files
type ClientList struct {
	Clients []Client `json:"clientes"`
}
