package models

import "time"

// Inquiry is a contact-form submission.
type Inquiry struct {
	ID        string
	Name      string
	Email     string
	Company   string
	Phone     string
	Service   string
	Message   string
	Status    string
	CreatedAt time.Time
}

// InquiryStatusNew is the status every inquiry is created with.
const InquiryStatusNew = "new"
