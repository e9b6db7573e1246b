package model

import "testing"

func TestValidateClaim(t *testing.T) {
	tests := []struct {
		name    string
		claim   *Claim
		wantErr bool
	}{
		{"nil claim", nil, true},
		{"valid minimal", &Claim{ID: "c1", Text: "an assertion"}, false},
		{"empty id", &Claim{Text: "an assertion"}, true},
		{"whitespace text", &Claim{ID: "c1", Text: "   "}, true},
		{"invalid primary quote", &Claim{ID: "c1", Text: "t",
			PrimaryQuote: &Quote{Text: ""}}, true},
		{"supporting quote confidence out of range", &Claim{ID: "c1", Text: "t",
			SupportingQuotes: []Quote{{Text: "q", Confidence: 1.5}}}, true},
		{"valid with quotes", &Claim{ID: "c1", Text: "t",
			PrimaryQuote:     &Quote{Text: "p", Confidence: 0.95},
			SupportingQuotes: []Quote{{Text: "s", Confidence: 0.4}}}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateClaim(tt.claim)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateClaim() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateQuoteConfidenceBounds(t *testing.T) {
	tests := []struct {
		confidence float64
		wantErr    bool
	}{
		{0, false},
		{1, false},
		{0.899999, false},
		{-0.01, true},
		{1.01, true},
	}
	for _, tt := range tests {
		err := ValidateQuote(&Quote{Text: "q", Confidence: tt.confidence})
		if (err != nil) != tt.wantErr {
			t.Errorf("confidence %v: error = %v, wantErr %v", tt.confidence, err, tt.wantErr)
		}
	}
}

func TestValidateMapping(t *testing.T) {
	tests := []struct {
		name    string
		mapping *SentenceClaimMapping
		wantErr bool
	}{
		{"nil mapping", nil, true},
		{"valid", &SentenceClaimMapping{SentenceID: "S_1", ClaimIDs: []string{"c1", "c2"}}, false},
		{"empty sentence id", &SentenceClaimMapping{ClaimIDs: []string{"c1"}}, true},
		{"no claims", &SentenceClaimMapping{SentenceID: "S_1"}, true},
		{"duplicate claim ids", &SentenceClaimMapping{SentenceID: "S_1", ClaimIDs: []string{"c1", "c1"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateMapping(tt.mapping)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateMapping() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
