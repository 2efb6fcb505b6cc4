package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"

	"github.com/example/dailywhisker/internal/models"
)

const (
	surveySubcollection = "survey"
	surveyDocID         = "status"
)

type firestoreSurveyRepository struct {
	client *firestore.Client
}

// NewFirestoreSurveyRepository creates a SurveyRepository over users/{id}/survey/status.
func NewFirestoreSurveyRepository(client *firestore.Client) SurveyRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for SurveyRepository.")
	}
	return &firestoreSurveyRepository{client: client}
}

func (r *firestoreSurveyRepository) doc(userID string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(surveySubcollection).Doc(surveyDocID)
}

func (r *firestoreSurveyRepository) Get(ctx context.Context, userID string) (*models.SurveyStatus, error) {
	docSnap, err := r.doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("survey status for user '%s': %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get survey status for user '%s': %w", userID, err)
	}
	var s models.SurveyStatus
	if err := docSnap.DataTo(&s); err != nil {
		return nil, fmt.Errorf("failed to decode survey status for user '%s': %w", userID, err)
	}
	return &s, nil
}

func (r *firestoreSurveyRepository) Create(ctx context.Context, userID string, s *models.SurveyStatus) error {
	_, err := r.doc(userID).Create(ctx, s)
	if err != nil {
		if isAlreadyExists(err) {
			return fmt.Errorf("survey status for user '%s': %w", userID, ErrAlreadyExists)
		}
		return fmt.Errorf("failed to create survey status for user '%s': %w", userID, err)
	}
	return nil
}

func (r *firestoreSurveyRepository) Merge(ctx context.Context, userID string, fields map[string]interface{}) error {
	if _, err := r.doc(userID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to update survey status for user '%s': %w", userID, err)
	}
	return nil
}
