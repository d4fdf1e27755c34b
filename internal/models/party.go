package models

// Party is the contact block printed for the business issuing the invoice
// and for the client being billed.
type Party struct {
	// Name is required on both sides before an invoice can be finalized.
	Name string `json:"name"`

	// Address may span several lines; renderers keep the line breaks.
	Address string `json:"address"`

	Phone string `json:"phone"`
	Email string `json:"email"`
}
