package models

// CategoryGroup is a labelled set of suggested ledger categories.
type CategoryGroup struct {
	Label      string   `json:"label"`
	Categories []string `json:"categories"`
}

// SuggestedCategories is the fixed set offered when recording a transaction.
// Transaction.Category stays free-form.
var SuggestedCategories = []CategoryGroup{
	{Label: "Equipment & Instruments", Categories: []string{"Instruments", "Sound Equipment", "Recording Equipment", "Accessories", "Maintenance & Repairs"}},
	{Label: "Performance & Shows", Categories: []string{"Venue Rental", "Performance Fees", "Travel & Lodging", "Food & Catering", "Show Promotion"}},
	{Label: "Recording & Production", Categories: []string{"Studio Time", "Mixing & Mastering", "Distribution", "Music Videos"}},
	{Label: "Business & Marketing", Categories: []string{"Marketing & Advertising", "Website & Social Media", "Legal & Professional", "Insurance", "Business Expenses"}},
	{Label: "Revenue", Categories: []string{"Live Performance", "Music Sales", "Streaming Revenue", "Merchandise Sales", "Sponsorship", "Other Revenue"}},
}

// File categories accepted on upload.
const (
	FileCategoryGeneral    = "general"
	FileCategorySheetMusic = "sheet-music"
	FileCategoryRecordings = "recordings"
	FileCategoryDocuments  = "documents"
	FileCategoryPhotos     = "photos"
)

// FileCategories lists every accepted file category.
var FileCategories = []string{
	FileCategoryGeneral,
	FileCategorySheetMusic,
	FileCategoryRecordings,
	FileCategoryDocuments,
	FileCategoryPhotos,
}

// IsFileCategory reports whether c is an accepted file category.
func IsFileCategory(c string) bool {
	for _, fc := range FileCategories {
		if fc == c {
			return true
		}
	}
	return false
}

// All lists every model in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&Transaction{},
		&PasswordResetRequest{},
		&File{},
		&MailingListSubscriber{},
		&EmailCampaign{},
		&AuditLog{},
	}
}
