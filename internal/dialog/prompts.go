package dialog

import "github.com/guhanims/intakebot/internal/models"

// Selection identifiers for the main menu and follow-up button menus.
const (
	SelectionProducts   = "products"
	SelectionSupport    = "support"
	SelectionCustom     = "custom"
	SelectionNewInquiry = "new_inquiry"
	SelectionEndChat    = "end_chat"
)

// User-facing message texts.
const (
	msgWelcome        = "👋 Welcome to Guhan Industrial Manufacturing Solutions!"
	msgMainMenu       = "How can I assist you today?"
	msgCategoryMenu   = "Select a product category:"
	msgProductMenu    = "Select a specific product:"
	msgProductButton  = "View products"
	msgAskName        = "Please enter your name:"
	msgAskEmailFmt    = "Thanks %s! Please enter your email address."
	msgInvalidEmail   = "❌ Invalid email format. Please try again."
	msgEmptyInput     = "❌ Input cannot be empty. Please try again."
	msgAskCompany     = "Please enter your company name:"
	msgAskMessage     = "Please describe your inquiry:"
	msgConfirmation   = "✅ Inquiry received! We'll contact you within 24 hours."
	msgFollowUp       = "Need anything else?"
	msgFarewell       = "👋 Thank you for contacting us!"
	msgUnsupported    = "⚠️ Unsupported message type"
	msgTransientError = "⚠️ Temporary system error. Please try again."
	msgSessionReset   = "⚠️ Session reset. Let's start over."
)

// mainMenuButtons returns the three-option main menu.
func mainMenuButtons() []models.Button {
	return []models.Button{
		{ID: SelectionProducts, Title: "Product Catalog"},
		{ID: SelectionSupport, Title: "Technical Support"},
		{ID: SelectionCustom, Title: "Custom Solutions"},
	}
}

// followUpButtons returns the post-completion follow-up menu.
func followUpButtons() []models.Button {
	return []models.Button{
		{ID: SelectionNewInquiry, Title: "New Inquiry"},
		{ID: SelectionEndChat, Title: "End Chat"},
	}
}
