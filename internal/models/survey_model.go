package models

// SurveyAnswers holds the onboarding answers keyed by question.
type SurveyAnswers struct {
	FavoriteBreed string `json:"question1" firestore:"question1"`
	Personality   string `json:"question2" firestore:"question2"`
	FavoriteColor string `json:"question3" firestore:"question3"`
}

// SurveyQuestion describes one onboarding question.
type SurveyQuestion struct {
	Key    string `json:"key"`
	Prompt string `json:"prompt"`
}

// SurveyQuestions is the fixed onboarding questionnaire.
var SurveyQuestions = []SurveyQuestion{
	{Key: "question1", Prompt: "What is your favorite cat breed?"},
	{Key: "question2", Prompt: "What cat personality do you prefer?"},
	{Key: "question3", Prompt: "What is your favorite cat color?"},
}

// SurveyStatus is stored at users/{id}/survey/status.
type SurveyStatus struct {
	Skipped   bool           `json:"skipped" firestore:"skipped"`
	Completed bool           `json:"completed" firestore:"completed"`
	Retaking  bool           `json:"retaking" firestore:"retaking"`
	Answers   *SurveyAnswers `json:"answers,omitempty" firestore:"answers,omitempty"`
}

// ShowPrompt reports whether the onboarding survey should be offered.
func (s SurveyStatus) ShowPrompt() bool {
	return !s.Skipped && !s.Completed
}

// SurveyStatusPatch is a partial update of the survey document.
type SurveyStatusPatch struct {
	Skipped   *bool
	Completed *bool
	Retaking  *bool
	Answers   *SurveyAnswers
}
