package db

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"testing"

	"cloud.google.com/go/firestore"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"github.com/example/dailywhisker/internal/config"
	"github.com/example/dailywhisker/internal/models"
)

func TestStatusMapping(t *testing.T) {
	notFound := status.Error(codes.NotFound, "no such document")
	exists := status.Error(codes.AlreadyExists, "document exists")

	assert.True(t, isNotFound(notFound))
	assert.True(t, isNotFound(fmt.Errorf("get: %w", notFound)))
	assert.False(t, isNotFound(exists))
	assert.False(t, isNotFound(errors.New("deadline exceeded")))
	assert.False(t, isNotFound(nil))

	assert.True(t, isAlreadyExists(exists))
	assert.False(t, isAlreadyExists(notFound))
}

func TestClientOptions(t *testing.T) {
	logger := zap.NewNop()

	opts, err := ClientOptions(config.FirebaseConfig{ProjectID: "p"}, logger)
	require.NoError(t, err)
	assert.Nil(t, opts)

	opts, err = ClientOptions(config.FirebaseConfig{CredentialsFile: "/does/not/exist.json"}, logger)
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	encoded := base64.StdEncoding.EncodeToString([]byte(`{"type":"service_account"}`))
	opts, err = ClientOptions(config.FirebaseConfig{CredentialsJSONBase64: encoded}, logger)
	require.NoError(t, err)
	assert.Len(t, opts, 1)

	_, err = ClientOptions(config.FirebaseConfig{CredentialsJSONBase64: "%%%not-base64"}, logger)
	assert.ErrorContains(t, err, "FIREBASE_SERVICE_ACCOUNT_JSON_BASE64")
}

// newEmulatorClient connects to the Firestore emulator under a fresh project so tests
// never see each other's documents.
func newEmulatorClient(t *testing.T) *firestore.Client {
	t.Helper()
	if os.Getenv("FIRESTORE_EMULATOR_HOST") == "" {
		t.Skip("FIRESTORE_EMULATOR_HOST not set")
	}
	client, err := firestore.NewClient(context.Background(), "dailywhisker-"+uuid.NewString()[:8])
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestUserRepository_Emulator(t *testing.T) {
	repo := NewFirestoreUserRepository(newEmulatorClient(t))
	ctx := context.Background()

	_, err := repo.GetByID(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Create(ctx, &models.User{ID: "u1", Email: "mia@example.com"}))
	require.ErrorIs(t, repo.Create(ctx, &models.User{ID: "u1"}), ErrAlreadyExists)

	user, err := repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, "u1", user.ID)
	assert.False(t, user.HasRotation())

	require.NoError(t, repo.UpdateRotation(ctx, "u1", "cat-7", 1710061200000))
	user, err = repo.GetByID(ctx, "u1")
	require.NoError(t, err)
	require.True(t, user.HasRotation())
	assert.Equal(t, "cat-7", *user.LastGeneratedCatID)
	assert.Equal(t, int64(1710061200000), *user.LastGeneratedTimestamp)
	assert.Equal(t, "mia@example.com", user.Email)
}

func TestCatRepository_Emulator(t *testing.T) {
	repo := NewFirestoreCatRepository(newEmulatorClient(t))
	ctx := context.Background()

	ids, err := repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)

	id, err := repo.Create(ctx, &models.Cat{Name: "Miso", Special: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, &models.Cat{Name: "Tofu"})
	require.NoError(t, err)

	ids, err = repo.ListIDs(ctx)
	require.NoError(t, err)
	assert.Len(t, ids, 2)

	cat, err := repo.GetByID(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Miso", cat.Name)
	assert.True(t, cat.Special)

	n, err := repo.DeleteAll(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = repo.GetByID(ctx, id)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookmarkRepository_Emulator(t *testing.T) {
	repo := NewFirestoreBookmarkRepository(newEmulatorClient(t))
	ctx := context.Background()

	for _, b := range []models.Bookmark{
		{CatID: "c2", Timestamp: 3000},
		{CatID: "c1", Note: "first", Timestamp: 1000},
		{CatID: "c3", Timestamp: 2000},
	} {
		b := b
		_, err := repo.Create(ctx, "u1", &b)
		require.NoError(t, err)
	}

	list, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 3)
	assert.Equal(t, []string{"c1", "c3", "c2"}, []string{list[0].CatID, list[1].CatID, list[2].CatID})

	found, err := repo.FindByCatID(ctx, "u1", "c1")
	require.NoError(t, err)
	assert.Equal(t, "first", found.Note)

	_, err = repo.FindByCatID(ctx, "u2", "c1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSettingsRepository_Emulator(t *testing.T) {
	repo := NewFirestoreSettingsRepository(newEmulatorClient(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Merge(ctx, "u1", map[string]interface{}{"catBorder": "rainbow", "updatedAt": int64(1)}))
	require.NoError(t, repo.Merge(ctx, "u1", map[string]interface{}{"appTheme": "dark", "updatedAt": int64(2)}))

	s, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, models.BorderRainbow, s.CatBorder)
	assert.Equal(t, models.ThemeDark, s.AppTheme)
	assert.Equal(t, int64(2), s.UpdatedAt)
}

func TestSurveyRepository_Emulator(t *testing.T) {
	repo := NewFirestoreSurveyRepository(newEmulatorClient(t))
	ctx := context.Background()

	_, err := repo.Get(ctx, "u1")
	require.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, repo.Create(ctx, "u1", &models.SurveyStatus{}))
	require.ErrorIs(t, repo.Create(ctx, "u1", &models.SurveyStatus{}), ErrAlreadyExists)

	require.NoError(t, repo.Merge(ctx, "u1", map[string]interface{}{"skipped": true}))
	st, err := repo.Get(ctx, "u1")
	require.NoError(t, err)
	assert.True(t, st.Skipped)
	assert.False(t, st.Completed)
	assert.False(t, st.ShowPrompt())
}
