package models

import (
	"errors"
	"testing"
	"time"
)

func validInquiry() Inquiry {
	return Inquiry{
		ID:          "inq-1",
		Name:        "Jane",
		Phone:       "15551234567",
		Email:       "jane@example.com",
		Company:     "Acme",
		InquiryType: InquiryTypeTechnicalSupport,
		Message:     "Need a quote",
		Status:      InquiryStatusNew,
		CreatedAt:   time.Now(),
	}
}

func TestInquiryValidate(t *testing.T) {
	inq := validInquiry()
	if err := inq.Validate(); err != nil {
		t.Errorf("Expected valid inquiry to pass validation, got %v", err)
	}
}

func TestInquiryValidateMissingFields(t *testing.T) {
	cases := []struct {
		name    string
		mutate  func(*Inquiry)
		wantErr error
	}{
		{"missing name", func(i *Inquiry) { i.Name = "" }, ErrMissingName},
		{"missing phone", func(i *Inquiry) { i.Phone = "" }, ErrMissingPhone},
		{"missing email", func(i *Inquiry) { i.Email = "" }, ErrMissingEmail},
		{"missing company", func(i *Inquiry) { i.Company = "" }, ErrMissingCompany},
		{"missing message", func(i *Inquiry) { i.Message = "" }, ErrMissingMessage},
		{"bad inquiry type", func(i *Inquiry) { i.InquiryType = "Sales" }, ErrInvalidInquiryType},
		{"bad status", func(i *Inquiry) { i.Status = "Closed" }, ErrInvalidStatus},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			inq := validInquiry()
			tc.mutate(&inq)
			if err := inq.Validate(); !errors.Is(err, tc.wantErr) {
				t.Errorf("Expected %v, got %v", tc.wantErr, err)
			}
		})
	}
}

func TestInquiryValidateOptionalFields(t *testing.T) {
	inq := validInquiry()
	inq.ProductCategory = ""
	inq.SpecificProduct = ""
	if err := inq.Validate(); err != nil {
		t.Errorf("Expected inquiry without product fields to validate, got %v", err)
	}
}

func TestIsValidInquiryType(t *testing.T) {
	for _, it := range []InquiryType{InquiryTypeProductCatalog, InquiryTypeTechnicalSupport, InquiryTypeCustomSolutions} {
		if !IsValidInquiryType(it) {
			t.Errorf("Expected %q to be valid", it)
		}
	}
	if IsValidInquiryType("product catalog") {
		t.Error("Inquiry types are case sensitive")
	}
	if IsValidInquiryType("") {
		t.Error("Empty inquiry type should be invalid")
	}
}

func TestIsValidInquiryStatus(t *testing.T) {
	for _, st := range []InquiryStatus{InquiryStatusNew, InquiryStatusInProgress, InquiryStatusResolved} {
		if !IsValidInquiryStatus(st) {
			t.Errorf("Expected %q to be valid", st)
		}
	}
	if IsValidInquiryStatus("Open") {
		t.Error("Unknown status should be invalid")
	}
}

func TestIsValidSessionState(t *testing.T) {
	valid := []SessionState{
		StateGreeting, StateMainMenu, StateProductCategory, StateProductSubcategory,
		StateCollectingName, StateCollectingEmail, StateCollectingCompany,
		StateCollectingMessage, StateFollowUp,
	}
	for _, s := range valid {
		if !IsValidSessionState(s) {
			t.Errorf("Expected state %q to be valid", s)
		}
	}
	if IsValidSessionState("completed") {
		t.Error("Unknown state should be invalid")
	}
}

func TestNewSession(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := NewSession("15551234567", now)

	if s.State != StateGreeting {
		t.Errorf("Expected new session in greeting state, got %q", s.State)
	}
	if s.UserID != "15551234567" {
		t.Errorf("Expected userID to be set, got %q", s.UserID)
	}
	if !s.CreatedAt.Equal(now) || !s.LastActivityAt.Equal(now) {
		t.Error("Expected timestamps initialized to now")
	}
	if s.Field(FieldName) != "" {
		t.Error("Expected no collected fields on a fresh session")
	}
}

func TestSessionResetForNewInquiry(t *testing.T) {
	s := NewSession("15551234567", time.Now())
	s.SetField(FieldName, "Jane")
	s.SetField(FieldEmail, "jane@example.com")
	s.SetField(FieldCompany, "Acme")
	s.SetField(FieldInquiryType, string(InquiryTypeProductCatalog))
	s.SetField(FieldProductCategory, "Industrial Machinery")
	s.SetField(FieldSpecificProduct, "CNC Milling Machine")
	s.SetField(FieldMessage, "Need a quote")

	s.ResetForNewInquiry()

	// Identity fields survive for the next inquiry
	if s.Field(FieldName) != "Jane" || s.Field(FieldEmail) != "jane@example.com" || s.Field(FieldCompany) != "Acme" {
		t.Error("Expected identity fields to survive reset")
	}
	// Inquiry-specific fields are cleared
	for _, key := range []FieldKey{FieldInquiryType, FieldProductCategory, FieldSpecificProduct, FieldMessage} {
		if s.Field(key) != "" {
			t.Errorf("Expected field %q to be cleared, got %q", key, s.Field(key))
		}
	}
}
