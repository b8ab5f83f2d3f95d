// Package models defines the core data structures for the intake bot.
//
// It includes the inquiry record, the normalized inbound event, and the
// per-user dialogue session shared across modules.
package models

import (
	"errors"
	"time"
)

// InquiryType identifies which branch of the intake dialogue produced an inquiry.
type InquiryType string

const (
	// InquiryTypeProductCatalog is set when the user browses the product catalog.
	InquiryTypeProductCatalog InquiryType = "Product Catalog"
	// InquiryTypeTechnicalSupport is set for technical support requests.
	InquiryTypeTechnicalSupport InquiryType = "Technical Support"
	// InquiryTypeCustomSolutions is set for custom solution requests.
	InquiryTypeCustomSolutions InquiryType = "Custom Solutions"
)

// IsValidInquiryType checks if the given inquiry type is supported.
func IsValidInquiryType(it InquiryType) bool {
	switch it {
	case InquiryTypeProductCatalog, InquiryTypeTechnicalSupport, InquiryTypeCustomSolutions:
		return true
	default:
		return false
	}
}

// InquiryStatus represents the triage status of a persisted inquiry.
type InquiryStatus string

const (
	// InquiryStatusNew is the initial status of every inquiry.
	InquiryStatusNew InquiryStatus = "New"
	// InquiryStatusInProgress indicates the inquiry is being worked on.
	InquiryStatusInProgress InquiryStatus = "In Progress"
	// InquiryStatusResolved indicates the inquiry has been handled.
	InquiryStatusResolved InquiryStatus = "Resolved"
)

// IsValidInquiryStatus checks if the given inquiry status is supported.
func IsValidInquiryStatus(st InquiryStatus) bool {
	switch st {
	case InquiryStatusNew, InquiryStatusInProgress, InquiryStatusResolved:
		return true
	default:
		return false
	}
}

// Error variables for better error handling and testability
var (
	ErrMissingName        = errors.New("inquiry name is required")
	ErrMissingPhone       = errors.New("inquiry phone is required")
	ErrMissingEmail       = errors.New("inquiry email is required")
	ErrMissingCompany     = errors.New("inquiry company is required")
	ErrMissingMessage     = errors.New("inquiry message is required")
	ErrInvalidInquiryType = errors.New("invalid inquiry type")
	ErrInvalidStatus      = errors.New("invalid inquiry status")
)

// Inquiry is the record produced by a completed intake dialogue.
// It is immutable once handed to the persistence layer.
type Inquiry struct {
	ID              string        `json:"id"`
	Name            string        `json:"name"`
	Phone           string        `json:"phone"`
	Email           string        `json:"email"`
	Company         string        `json:"company"`
	InquiryType     InquiryType   `json:"inquiry_type"`
	ProductCategory string        `json:"product_category,omitempty"`
	SpecificProduct string        `json:"specific_product,omitempty"`
	Message         string        `json:"message"`
	Status          InquiryStatus `json:"status"`
	CreatedAt       time.Time     `json:"created_at"`
}

// Validate performs comprehensive validation on an Inquiry structure.
func (i *Inquiry) Validate() error {
	if i.Name == "" {
		return ErrMissingName
	}
	if i.Phone == "" {
		return ErrMissingPhone
	}
	if i.Email == "" {
		return ErrMissingEmail
	}
	if i.Company == "" {
		return ErrMissingCompany
	}
	if !IsValidInquiryType(i.InquiryType) {
		return ErrInvalidInquiryType
	}
	if i.Message == "" {
		return ErrMissingMessage
	}
	if !IsValidInquiryStatus(i.Status) {
		return ErrInvalidStatus
	}
	return nil
}

// APIStatus represents the status of an API response.
type APIStatus string

const (
	// APIStatusOK indicates an API request completed successfully.
	APIStatusOK APIStatus = "ok"
	// APIStatusError indicates an API request failed with an error.
	APIStatusError APIStatus = "error"
)

// APIResponse represents a standard API response with a status and optional data.
type APIResponse struct {
	Status  string      `json:"status"`            // status of the API response
	Message string      `json:"message,omitempty"` // optional message for error responses or additional info
	Result  interface{} `json:"result,omitempty"`  // optional result data for successful responses
}

// Success creates a successful API response with optional result data.
func Success(result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Result: result}
}

// SuccessWithMessage creates a successful API response with a message and optional result data.
func SuccessWithMessage(message string, result interface{}) APIResponse {
	return APIResponse{Status: string(APIStatusOK), Message: message, Result: result}
}

// Error creates an error API response with a message.
func Error(message string) APIResponse {
	return APIResponse{Status: string(APIStatusError), Message: message}
}
