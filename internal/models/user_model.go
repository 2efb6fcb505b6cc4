package models

// User is the per-account rotation document stored at users/{id}.
// Rotation fields are nil until the first cat has been generated.
type User struct {
	ID                     string  `json:"id" firestore:"-"` // Firebase Auth UID or bridge id, used as the document ID
	Email                  string  `json:"email" firestore:"email"`
	LastGeneratedCatID     *string `json:"lastGeneratedCatId" firestore:"lastGeneratedCatId"`
	LastGeneratedTimestamp *int64  `json:"lastGeneratedTimestamp" firestore:"lastGeneratedTimestamp"` // ms since epoch
}

// HasRotation reports whether a cat id and a non-zero timestamp are stored.
func (u *User) HasRotation() bool {
	return u.LastGeneratedCatID != nil && *u.LastGeneratedCatID != "" &&
		u.LastGeneratedTimestamp != nil && *u.LastGeneratedTimestamp > 0
}
