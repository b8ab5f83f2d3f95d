package models

import "time"

// SessionState identifies the current step of the intake dialogue.
type SessionState string

const (
	// StateGreeting is the initial state of every new session.
	StateGreeting SessionState = "greeting"
	// StateMainMenu waits for a main menu button selection.
	StateMainMenu SessionState = "main_menu"
	// StateProductCategory waits for a product category button selection.
	StateProductCategory SessionState = "product_category"
	// StateProductSubcategory waits for a specific product list selection.
	StateProductSubcategory SessionState = "product_subcategory"
	// StateCollectingName waits for the user's name.
	StateCollectingName SessionState = "collecting_name"
	// StateCollectingEmail waits for the user's email address.
	StateCollectingEmail SessionState = "collecting_email"
	// StateCollectingCompany waits for the user's company name.
	StateCollectingCompany SessionState = "collecting_company"
	// StateCollectingMessage waits for the inquiry description.
	StateCollectingMessage SessionState = "collecting_message"
	// StateFollowUp waits for a follow-up button selection after a completed inquiry.
	StateFollowUp SessionState = "follow_up"
)

// IsValidSessionState checks if the given session state is one of the defined states.
func IsValidSessionState(s SessionState) bool {
	switch s {
	case StateGreeting, StateMainMenu, StateProductCategory, StateProductSubcategory,
		StateCollectingName, StateCollectingEmail, StateCollectingCompany,
		StateCollectingMessage, StateFollowUp:
		return true
	default:
		return false
	}
}

// FieldKey names a collected dialogue field within a session.
type FieldKey string

const (
	FieldName            FieldKey = "name"
	FieldEmail           FieldKey = "email"
	FieldCompany         FieldKey = "company"
	FieldInquiryType     FieldKey = "inquiry_type"
	FieldProductCategory FieldKey = "product_category"
	FieldSpecificProduct FieldKey = "specific_product"
	FieldMessage         FieldKey = "message"
)

// Session holds the per-user dialogue state. Sessions are created lazily on
// the first inbound event from an unseen user and are mutated exclusively by
// the dialogue engine while the session store's per-user lock is held.
type Session struct {
	UserID         string
	State          SessionState
	Fields         map[FieldKey]string
	CreatedAt      time.Time
	LastActivityAt time.Time
}

// NewSession creates a fresh session in the greeting state.
func NewSession(userID string, now time.Time) *Session {
	return &Session{
		UserID:         userID,
		State:          StateGreeting,
		Fields:         make(map[FieldKey]string),
		CreatedAt:      now,
		LastActivityAt: now,
	}
}

// Field returns the collected value for key, or "" if not collected yet.
func (s *Session) Field(key FieldKey) string {
	if s.Fields == nil {
		return ""
	}
	return s.Fields[key]
}

// SetField records a collected value. Fields are append-only during a
// dialogue; only ResetForNewInquiry removes keys.
func (s *Session) SetField(key FieldKey, value string) {
	if s.Fields == nil {
		s.Fields = make(map[FieldKey]string)
	}
	s.Fields[key] = value
}

// ResetForNewInquiry clears inquiry-specific fields while retaining the
// user's identity fields (name, email, company) for a faster repeat inquiry.
func (s *Session) ResetForNewInquiry() {
	delete(s.Fields, FieldInquiryType)
	delete(s.Fields, FieldProductCategory)
	delete(s.Fields, FieldSpecificProduct)
	delete(s.Fields, FieldMessage)
}
