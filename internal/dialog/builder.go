package dialog

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/guhanims/intakebot/internal/models"
)

// BuildInquiry assembles a persistable inquiry record from a completed
// session's collected fields. The state machine's ordering guarantees all
// mandatory fields are present by the time it calls this, but the check is
// kept as a defensive invariant: a validation failure here means a
// programming error, not bad user input.
func BuildInquiry(s *models.Session, now time.Time) (models.Inquiry, error) {
	inq := models.Inquiry{
		ID:              uuid.NewString(),
		Name:            s.Field(models.FieldName),
		Phone:           s.UserID,
		Email:           s.Field(models.FieldEmail),
		Company:         s.Field(models.FieldCompany),
		InquiryType:     models.InquiryType(s.Field(models.FieldInquiryType)),
		ProductCategory: s.Field(models.FieldProductCategory),
		SpecificProduct: s.Field(models.FieldSpecificProduct),
		Message:         s.Field(models.FieldMessage),
		Status:          models.InquiryStatusNew,
		CreatedAt:       now,
	}
	if err := inq.Validate(); err != nil {
		return models.Inquiry{}, fmt.Errorf("inquiry missing required field: %w", err)
	}
	return inq, nil
}
