package models

// Button is a single reply-button option on an interactive button menu.
// WhatsApp allows at most three reply buttons per message.
type Button struct {
	ID    string `json:"id"`
	Title string `json:"title"`
}

// ListRow is a single selectable row in a list-menu section.
type ListRow struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
}

// ListSection groups rows of a list menu under a section title.
type ListSection struct {
	Title string    `json:"title"`
	Rows  []ListRow `json:"rows"`
}
