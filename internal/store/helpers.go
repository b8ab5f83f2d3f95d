package store

import (
	"database/sql"
	"fmt"

	"github.com/guhanims/intakebot/internal/models"
)

// nilIfEmpty returns nil if s is empty, otherwise returns s.
// Used for nullable database columns.
func nilIfEmpty(s string) interface{} {
	if s == "" {
		return nil
	}
	return s
}

// scanInquiry scans an Inquiry from sql.Rows.
func scanInquiry(rows *sql.Rows) (models.Inquiry, error) {
	var inq models.Inquiry
	var inquiryType, status string
	var productCategory, specificProduct sql.NullString
	err := rows.Scan(
		&inq.ID, &inq.Name, &inq.Phone, &inq.Email, &inq.Company, &inquiryType,
		&productCategory, &specificProduct, &inq.Message, &status, &inq.CreatedAt,
	)
	if err != nil {
		return inq, fmt.Errorf("scan inquiry failed: %w", err)
	}
	inq.InquiryType = models.InquiryType(inquiryType)
	inq.Status = models.InquiryStatus(status)
	inq.ProductCategory = productCategory.String
	inq.SpecificProduct = specificProduct.String
	return inq, nil
}
