package model

// Similarity names the signal which linked customers inside a duplicate group
type Similarity string

const (
	// SimilarityName means customers were linked by fuzzy name likeness
	SimilarityName Similarity = "name"
	// SimilarityEmail means customers share the same email
	SimilarityEmail Similarity = "email"
	// SimilarityPhone means customers share the same phone number
	SimilarityPhone Similarity = "phone"
)

// DuplicateGroup is a cluster of customers believed to represent the same person.
// It is a query result, never persisted; Similarity/Score describe the strongest
// pairwise signal observed inside the group.
type DuplicateGroup struct {
	Group      []*CustomerWithStats `json:"group"`
	Similarity Similarity           `json:"similarity"`
	Score      float64              `json:"score"`
}

// MergedData is the operator-approved reconciled identity of the surviving customer
type MergedData struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Phone string `json:"phone"`
}

// MergeRequest asks to migrate source customer into target customer
type MergeRequest struct {
	TargetCustomerID string     `json:"targetCustomerId"`
	SourceCustomerID string     `json:"sourceCustomerId"`
	MergedData       MergedData `json:"mergedData"`
}

// MergeResult reports the outcome of a successful merge
type MergeResult struct {
	MergedCustomerID string        `json:"mergedCustomerId"`
	MergedRentals    int64         `json:"mergedRentals"`
	FinalStats       CustomerStats `json:"finalStats"`
}

// MergeSuggestion is a pre-filled merge proposal for the operator to review
type MergeSuggestion struct {
	Name              string             `json:"name"`
	Email             string             `json:"email"`
	Phone             string             `json:"phone"`
	PrimaryCustomer   *CustomerWithStats `json:"primaryCustomer"`
	SecondaryCustomer *CustomerWithStats `json:"secondaryCustomer"`
}
