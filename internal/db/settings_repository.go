package db

import (
	"context"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"

	"github.com/example/dailywhisker/internal/models"
)

const (
	settingsSubcollection = "settings"
	settingsDocID         = "preferences"
)

type firestoreSettingsRepository struct {
	client *firestore.Client
}

// NewFirestoreSettingsRepository creates a SettingsRepository over users/{id}/settings/preferences.
func NewFirestoreSettingsRepository(client *firestore.Client) SettingsRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for SettingsRepository.")
	}
	return &firestoreSettingsRepository{client: client}
}

func (r *firestoreSettingsRepository) doc(userID string) *firestore.DocumentRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(settingsSubcollection).Doc(settingsDocID)
}

func (r *firestoreSettingsRepository) Get(ctx context.Context, userID string) (*models.Settings, error) {
	docSnap, err := r.doc(userID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("settings for user '%s': %w", userID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get settings for user '%s': %w", userID, err)
	}
	var s models.Settings
	if err := docSnap.DataTo(&s); err != nil {
		return nil, fmt.Errorf("failed to decode settings for user '%s': %w", userID, err)
	}
	return &s, nil
}

func (r *firestoreSettingsRepository) Merge(ctx context.Context, userID string, fields map[string]interface{}) error {
	if _, err := r.doc(userID).Set(ctx, fields, firestore.MergeAll); err != nil {
		return fmt.Errorf("failed to save settings for user '%s': %w", userID, err)
	}
	return nil
}
