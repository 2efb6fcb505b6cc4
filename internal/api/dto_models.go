package api

import (
	"github.com/example/dailywhisker/internal/core"
	"github.com/example/dailywhisker/internal/models"
)

// ErrorResponse is a generic structure for returning errors via API.
type ErrorResponse struct {
	Error   string `json:"error"`             // A high-level error message
	Details string `json:"details,omitempty"` // More specific details about the error, if available
}

// SuccessResponse is a generic structure for simple success messages.
type SuccessResponse struct {
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// SettingsResponse is returned by GET /settings. Stored is false when defaults were served.
type SettingsResponse struct {
	Settings models.Settings `json:"settings"`
	Stored   bool            `json:"stored"`
}

// BookmarkResponse is returned by POST /bookmarks.
type BookmarkResponse struct {
	Bookmark *models.Bookmark `json:"bookmark"`
	Created  bool             `json:"created"`
}

// BookmarkListResponse is returned by GET /bookmarks.
type BookmarkListResponse struct {
	Window    models.TimeWindow        `json:"window"`
	Bookmarks []models.BookmarkWithCat `json:"bookmarks"`
}

// SurveyResponse adds the prompt flag and the questionnaire to the stored status.
type SurveyResponse struct {
	models.SurveyStatus
	ShowPrompt bool                    `json:"showPrompt"`
	Questions  []models.SurveyQuestion `json:"questions"`
}

func newSurveyResponse(status *models.SurveyStatus) SurveyResponse {
	return SurveyResponse{
		SurveyStatus: *status,
		ShowPrompt:   status.ShowPrompt(),
		Questions:    models.SurveyQuestions,
	}
}

// InitializeResponse is returned by POST /users/initialize.
type InitializeResponse struct {
	User    *models.User         `json:"user"`
	Survey  *models.SurveyStatus `json:"survey"`
	Created bool                 `json:"created"`
}

// ShareResponse is returned by POST /share.
type ShareResponse struct {
	Card *core.SharedCard `json:"card"`
}
