package models

// AnalysisRequest is the body of a credit analysis call
type AnalysisRequest struct {
	CPF string `json:"cpf"`
}

// AnalysisResponse is the credit analysis result returned to API clients
type AnalysisResponse struct {
	Approved    bool     `json:"aprovado"`
	Probability float64  `json:"probabilidade"`
	Limit       float64  `json:"limite"`
	Reasons     []string `json:"motivos"`
	Client      Client   `json:"cliente"`
}
