package dialog

import (
	"errors"
	"testing"
	"time"

	"github.com/guhanims/intakebot/internal/models"
)

func completedSession() *models.Session {
	s := models.NewSession("15551234567", time.Now())
	s.SetField(models.FieldName, "Jane")
	s.SetField(models.FieldEmail, "jane@example.com")
	s.SetField(models.FieldCompany, "Acme")
	s.SetField(models.FieldInquiryType, string(models.InquiryTypeProductCatalog))
	s.SetField(models.FieldProductCategory, "Industrial Machinery")
	s.SetField(models.FieldSpecificProduct, "CNC Milling Machine")
	s.SetField(models.FieldMessage, "Need a quote")
	return s
}

func TestBuildInquiry(t *testing.T) {
	now := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	s := completedSession()

	inq, err := BuildInquiry(s, now)
	if err != nil {
		t.Fatalf("Expected inquiry to build, got %v", err)
	}

	if inq.ID == "" {
		t.Error("Expected generated ID")
	}
	if inq.Phone != s.UserID {
		t.Errorf("Expected phone from session userID, got %q", inq.Phone)
	}
	if inq.Status != models.InquiryStatusNew {
		t.Errorf("Expected new status, got %q", inq.Status)
	}
	if !inq.CreatedAt.Equal(now) {
		t.Errorf("Expected creation time %v, got %v", now, inq.CreatedAt)
	}
	if inq.ProductCategory != "Industrial Machinery" || inq.SpecificProduct != "CNC Milling Machine" {
		t.Errorf("Expected product fields carried over, got %+v", inq)
	}
}

func TestBuildInquiryUniqueIDs(t *testing.T) {
	s := completedSession()
	a, err := BuildInquiry(s, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	b, err := BuildInquiry(s, time.Now())
	if err != nil {
		t.Fatal(err)
	}
	if a.ID == b.ID {
		t.Error("Expected distinct IDs for distinct builds")
	}
}

func TestBuildInquiryMissingField(t *testing.T) {
	s := completedSession()
	s.Fields[models.FieldEmail] = ""

	_, err := BuildInquiry(s, time.Now())
	if err == nil {
		t.Fatal("Expected error for missing email")
	}
	if !errors.Is(err, models.ErrMissingEmail) {
		t.Errorf("Expected wrapped ErrMissingEmail, got %v", err)
	}
}
