package models

// AddBookmarkRequest represents the request body for bookmarking a cat.
type AddBookmarkRequest struct {
	CatID string `json:"catId" binding:"required"`
	Note  string `json:"note,omitempty"`
}

// CompleteSurveyRequest represents the request body for submitting the onboarding survey.
type CompleteSurveyRequest struct {
	Answers SurveyAnswers `json:"answers" binding:"required"`
}

// LoginRequest represents the request body for email/password sign-in.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// RegisterRequest represents the request body for email/password sign-up.
// Password length mirrors the Firebase Auth minimum.
type RegisterRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6"`
}

// PasswordResetRequest represents the request body for a password reset email.
type PasswordResetRequest struct {
	Email string `json:"email" binding:"required,email"`
}
