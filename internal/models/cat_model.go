package models

// Cat is a read-only record in the cats collection.
type Cat struct {
	ID          string `json:"id" firestore:"-"`
	Name        string `json:"name" firestore:"name"`
	Description string `json:"description" firestore:"description"`
	ImageURL    string `json:"imageUrl" firestore:"imageUrl"`
	Special     bool   `json:"special" firestore:"special"`
	BreedID     string `json:"breedId,omitempty" firestore:"breedId,omitempty"`
}

// DailyCat is the result of a rotation lookup.
type DailyCat struct {
	CatID       string `json:"catId"`
	Cat         *Cat   `json:"cat"`
	GeneratedAt int64  `json:"generatedAt"` // ms since epoch
	Reused      bool   `json:"reused"`
}
