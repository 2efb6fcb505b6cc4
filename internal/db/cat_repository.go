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

const catsCollection = "cats"

type firestoreCatRepository struct {
	client *firestore.Client
}

// NewFirestoreCatRepository creates a CatRepository backed by the cats collection.
func NewFirestoreCatRepository(client *firestore.Client) CatRepository {
	if client == nil {
		log.Fatal("Firestore client is not initialized for CatRepository.")
	}
	return &firestoreCatRepository{client: client}
}

// ListIDs returns every document ID in the cats collection without loading field data.
func (r *firestoreCatRepository) ListIDs(ctx context.Context) ([]string, error) {
	iter := r.client.Collection(catsCollection).Select().Documents(ctx)
	defer iter.Stop()

	var ids []string
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list cat IDs: %w", err)
		}
		ids = append(ids, doc.Ref.ID)
	}
	return ids, nil
}

func (r *firestoreCatRepository) GetByID(ctx context.Context, catID string) (*models.Cat, error) {
	if catID == "" {
		return nil, errors.New("catID cannot be empty for GetByID operation")
	}
	docSnap, err := r.client.Collection(catsCollection).Doc(catID).Get(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("cat with ID '%s' not found: %w", catID, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get cat with ID '%s': %w", catID, err)
	}

	var cat models.Cat
	if err := docSnap.DataTo(&cat); err != nil {
		return nil, fmt.Errorf("failed to decode cat data for ID '%s': %w", catID, err)
	}
	cat.ID = docSnap.Ref.ID
	return &cat, nil
}

// Create adds a cat with an auto-generated ID.
func (r *firestoreCatRepository) Create(ctx context.Context, cat *models.Cat) (string, error) {
	ref, _, err := r.client.Collection(catsCollection).Add(ctx, cat)
	if err != nil {
		return "", fmt.Errorf("failed to create cat '%s': %w", cat.Name, err)
	}
	cat.ID = ref.ID
	return ref.ID, nil
}

// DeleteAll removes every document in the cats collection and returns how many were deleted.
func (r *firestoreCatRepository) DeleteAll(ctx context.Context) (int, error) {
	refs, err := r.client.Collection(catsCollection).DocumentRefs(ctx).GetAll()
	if err != nil {
		return 0, fmt.Errorf("failed to list cats for deletion: %w", err)
	}
	if len(refs) == 0 {
		return 0, nil
	}

	bw := r.client.BulkWriter(ctx)
	jobs := make([]*firestore.BulkWriterJob, 0, len(refs))
	for _, ref := range refs {
		job, err := bw.Delete(ref)
		if err != nil {
			bw.End()
			return 0, fmt.Errorf("failed to queue delete for cat '%s': %w", ref.ID, err)
		}
		jobs = append(jobs, job)
	}
	bw.End()

	deleted := 0
	for i, job := range jobs {
		if _, err := job.Results(); err != nil {
			return deleted, fmt.Errorf("failed to delete cat '%s': %w", refs[i].ID, err)
		}
		deleted++
	}
	return deleted, nil
}
