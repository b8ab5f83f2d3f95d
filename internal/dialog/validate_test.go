package dialog

import "testing"

func TestIsValidEmail(t *testing.T) {
	valid := []string{
		"a@b.co",
		"jane@example.com",
		"jane.doe+intake@sub.example.co.uk",
		"123@456.789",
	}
	for _, email := range valid {
		if !IsValidEmail(email) {
			t.Errorf("Expected %q to be valid", email)
		}
	}

	invalid := []string{
		"",
		"abc",
		"a@b",
		"@b.com",
		"a@.com",
		"a b@c.com",
		"a@b c.com",
		"a@@b.com",
		"jane@example.com extra",
	}
	for _, email := range invalid {
		if IsValidEmail(email) {
			t.Errorf("Expected %q to be invalid", email)
		}
	}
}
