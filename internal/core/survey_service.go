package core

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/example/dailywhisker/internal/db"
	"github.com/example/dailywhisker/internal/models"
)

const maxSurveyAnswerLength = 200

var ErrInvalidSurvey = errors.New("invalid survey answers")

type surveyService struct {
	surveyRepo db.SurveyRepository
}

// NewSurveyService creates a SurveyService.
func NewSurveyService(surveyRepo db.SurveyRepository) SurveyService {
	return &surveyService{surveyRepo: surveyRepo}
}

// GetStatus returns the survey state, creating the all-false document on first read.
func (s *surveyService) GetStatus(ctx context.Context, userID string) (*models.SurveyStatus, error) {
	status, err := s.surveyRepo.Get(ctx, userID)
	if err == nil {
		return status, nil
	}
	if !errors.Is(err, db.ErrNotFound) {
		return nil, err
	}

	initial := &models.SurveyStatus{}
	if err := s.surveyRepo.Create(ctx, userID, initial); err != nil {
		if errors.Is(err, db.ErrAlreadyExists) {
			return s.surveyRepo.Get(ctx, userID)
		}
		return nil, err
	}
	return initial, nil
}

// UpdateStatus merges the non-nil fields of patch and returns the resulting state.
func (s *surveyService) UpdateStatus(ctx context.Context, userID string, patch models.SurveyStatusPatch) (*models.SurveyStatus, error) {
	fields := map[string]interface{}{}
	if patch.Skipped != nil {
		fields["skipped"] = *patch.Skipped
	}
	if patch.Completed != nil {
		fields["completed"] = *patch.Completed
	}
	if patch.Retaking != nil {
		fields["retaking"] = *patch.Retaking
	}
	if patch.Answers != nil {
		fields["answers"] = map[string]interface{}{
			"question1": patch.Answers.FavoriteBreed,
			"question2": patch.Answers.Personality,
			"question3": patch.Answers.FavoriteColor,
		}
	}
	if len(fields) == 0 {
		return s.GetStatus(ctx, userID)
	}

	if err := s.surveyRepo.Merge(ctx, userID, fields); err != nil {
		return nil, err
	}
	return s.GetStatus(ctx, userID)
}

func (s *surveyService) Skip(ctx context.Context, userID string) (*models.SurveyStatus, error) {
	return s.UpdateStatus(ctx, userID, models.SurveyStatusPatch{
		Skipped:  boolPtr(true),
		Retaking: boolPtr(false),
	})
}

// Complete stores the answers and ends any retake in progress.
func (s *surveyService) Complete(ctx context.Context, userID string, answers models.SurveyAnswers) (*models.SurveyStatus, error) {
	cleaned, err := validateAnswers(answers)
	if err != nil {
		return nil, err
	}
	return s.UpdateStatus(ctx, userID, models.SurveyStatusPatch{
		Completed: boolPtr(true),
		Retaking:  boolPtr(false),
		Answers:   &cleaned,
	})
}

// Retake keeps the previous answers until a new submission replaces them.
func (s *surveyService) Retake(ctx context.Context, userID string) (*models.SurveyStatus, error) {
	return s.UpdateStatus(ctx, userID, models.SurveyStatusPatch{Retaking: boolPtr(true)})
}

func validateAnswers(a models.SurveyAnswers) (models.SurveyAnswers, error) {
	a.FavoriteBreed = strings.TrimSpace(a.FavoriteBreed)
	a.Personality = strings.TrimSpace(a.Personality)
	a.FavoriteColor = strings.TrimSpace(a.FavoriteColor)

	if a.FavoriteBreed == "" && a.Personality == "" && a.FavoriteColor == "" {
		return a, fmt.Errorf("%w: at least one answer is required", ErrInvalidSurvey)
	}
	for _, v := range []string{a.FavoriteBreed, a.Personality, a.FavoriteColor} {
		if utf8.RuneCountInString(v) > maxSurveyAnswerLength {
			return a, fmt.Errorf("%w: answers are limited to %d characters", ErrInvalidSurvey, maxSurveyAnswerLength)
		}
	}
	return a, nil
}

func boolPtr(b bool) *bool { return &b }
