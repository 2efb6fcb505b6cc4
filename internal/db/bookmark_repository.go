package db

import (
	"context"
	"errors"
	"fmt"
	"log"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"github.com/example/dailywhisker/internal/models"
)

const bookmarksSubcollection = "bookmarks"

type firestoreBookmarkRepository struct {
	client *firestore.Client
}

// NewFirestoreBookmarkRepository creates a BookmarkRepository over users/{id}/bookmarks.
func NewFirestoreBookmarkRepository(client *firestore.Client) BookmarkRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for BookmarkRepository.")
	}
	return &firestoreBookmarkRepository{client: client}
}

func (r *firestoreBookmarkRepository) collection(userID string) *firestore.CollectionRef {
	return r.client.Collection(usersCollection).Doc(userID).Collection(bookmarksSubcollection)
}

func (r *firestoreBookmarkRepository) List(ctx context.Context, userID string) ([]models.Bookmark, error) {
	if userID == "" {
		return nil, errors.New("userID cannot be empty for List operation")
	}
	iter := r.collection(userID).OrderBy("timestamp", firestore.Asc).Documents(ctx)
	defer iter.Stop()

	bookmarks := []models.Bookmark{}
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list bookmarks for user '%s': %w", userID, err)
		}
		var b models.Bookmark
		if err := doc.DataTo(&b); err != nil {
			return nil, fmt.Errorf("failed to decode bookmark '%s': %w", doc.Ref.ID, err)
		}
		b.ID = doc.Ref.ID
		bookmarks = append(bookmarks, b)
	}
	return bookmarks, nil
}

// FindByCatID returns the first bookmark for catID, or ErrNotFound.
func (r *firestoreBookmarkRepository) FindByCatID(ctx context.Context, userID, catID string) (*models.Bookmark, error) {
	docs, err := r.collection(userID).Where("catId", "==", catID).Limit(1).Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("failed to query bookmarks for user '%s': %w", userID, err)
	}
	if len(docs) == 0 {
		return nil, fmt.Errorf("bookmark for cat '%s': %w", catID, ErrNotFound)
	}
	var b models.Bookmark
	if err := docs[0].DataTo(&b); err != nil {
		return nil, fmt.Errorf("failed to decode bookmark '%s': %w", docs[0].Ref.ID, err)
	}
	b.ID = docs[0].Ref.ID
	return &b, nil
}

func (r *firestoreBookmarkRepository) Create(ctx context.Context, userID string, bookmark *models.Bookmark) (string, error) {
	if userID == "" {
		return "", errors.New("userID cannot be empty for Create operation")
	}
	ref, _, err := r.collection(userID).Add(ctx, bookmark)
	if err != nil {
		return "", fmt.Errorf("failed to create bookmark for user '%s': %w", userID, err)
	}
	bookmark.ID = ref.ID
	return ref.ID, nil
}
