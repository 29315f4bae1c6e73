package gemini

import (
	"errors"
	"testing"
)

func TestSimplifyStatus(t *testing.T) {
	tests := []struct {
		ComplexStatus int
		SimpleStatus  int
	}{
		{10, 10},
		{20, 20},
		{21, 20},
		{44, 40},
		{59, 50},
	}

	for _, tt := range tests {
		result := SimplifyStatus(tt.ComplexStatus)
		if result != tt.SimpleStatus {
			t.Errorf("Expected the simplified status of %d to be %d, got %d instead", tt.ComplexStatus, tt.SimpleStatus, result)
		}
	}
}

func TestIsStatusValid(t *testing.T) {
	tests := []struct {
		status int
		valid  bool
	}{
		{9, false},
		{10, true},
		{11, false},
		{21, true},
		{31, true},
		{44, true},
		{45, false},
		{59, true},
		{65, true},
		{66, false},
	}

	for _, tt := range tests {
		if got := IsStatusValid(tt.status); got != tt.valid {
			t.Errorf("IsStatusValid(%d) = %v, expected %v", tt.status, got, tt.valid)
		}
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		status   string
		expected StatusCategory
	}{
		{"1x", CategoryInput},
		{"2x", CategorySuccess},
		{"20", CategorySuccess},
		{"3x", CategoryRedirect},
		{"4x", CategoryTemporaryFailure},
		{"5x", CategoryPermanentFailure},
		{"6x", CategoryClientCertificateRequired},
		{"2", CategorySuccess},
	}

	for _, tt := range tests {
		cat, err := Classify(tt.status)
		if err != nil {
			t.Errorf("Classify(%q) returned error: %v", tt.status, err)
			continue
		}
		if cat != tt.expected {
			t.Errorf("Classify(%q) = %v, expected %v", tt.status, cat, tt.expected)
		}
	}
}

func TestClassifyUnknown(t *testing.T) {
	for _, status := range []string{"7x", "0x", "xx", " 2", ""} {
		_, err := Classify(status)
		var use *UnknownStatusError
		if !errors.As(err, &use) {
			t.Errorf("Classify(%q): expected UnknownStatusError, got %v", status, err)
			continue
		}
		if use.Status != status {
			t.Errorf("Classify(%q): error carries status %q", status, use.Status)
		}
	}
}

func TestHeaderCategoryIsNotCached(t *testing.T) {
	h := Header{Status: "30", Meta: "gemini://example.com/"}
	if cat, _ := h.Category(); cat != CategoryRedirect {
		t.Fatalf("expected redirect, got %v", cat)
	}
	h.Status = "20"
	if cat, _ := h.Category(); cat != CategorySuccess {
		t.Fatalf("expected success after changing status, got %v", cat)
	}
}
