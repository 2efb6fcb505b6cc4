package catapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/example/dailywhisker/internal/models"
)

func TestDefaultRoster(t *testing.T) {
	r, err := DefaultRoster()
	require.NoError(t, err)
	assert.Len(t, r.Cats, 50)
	assert.Len(t, r.Breeds, 8)
	assert.Equal(t, "Bella", r.Cats[0].Name)
	assert.Equal(t, "abys", r.Breeds[0].ID)
	for _, c := range r.Cats {
		assert.NotEmpty(t, c.Description, c.Name)
	}
}

func TestLoadRoster(t *testing.T) {
	dir := t.TempDir()
	good := filepath.Join(dir, "roster.yaml")
	require.NoError(t, os.WriteFile(good, []byte("breeds:\n  - id: siam\n    name: Siamese\ncats:\n  - name: Pip\n    description: Small.\n"), 0o600))
	r, err := LoadRoster(good)
	require.NoError(t, err)
	assert.Equal(t, "Pip", r.Cats[0].Name)

	empty := filepath.Join(dir, "empty.yaml")
	require.NoError(t, os.WriteFile(empty, []byte("breeds: []\ncats: []\n"), 0o600))
	_, err = LoadRoster(empty)
	assert.Error(t, err)

	_, err = LoadRoster(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}

func TestClientBreedImage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/images/search", r.URL.Path)
		assert.Equal(t, "1", r.URL.Query().Get("limit"))
		assert.Equal(t, "secret-key", r.Header.Get("x-api-key"))
		switch r.URL.Query().Get("breed_ids") {
		case "beng":
			_, _ = w.Write([]byte(`[{"id":"x1","url":"https://cdn2.thecatapi.com/images/x1.jpg"}]`))
		case "none":
			_, _ = w.Write([]byte(`[]`))
		default:
			w.WriteHeader(http.StatusTooManyRequests)
		}
	}))
	defer srv.Close()
	c := NewClient(srv.URL+"/", "secret-key", 5*time.Second)

	got, err := c.BreedImage(context.Background(), "beng")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn2.thecatapi.com/images/x1.jpg", got)

	got, err = c.BreedImage(context.Background(), "none")
	require.NoError(t, err)
	assert.Empty(t, got)

	_, err = c.BreedImage(context.Background(), "limited")
	assert.ErrorContains(t, err, "429")
}

type memCats struct {
	existing int
	created  []*models.Cat
	failAt   int
}

func (m *memCats) ListIDs(context.Context) ([]string, error) { return nil, nil }
func (m *memCats) GetByID(context.Context, string) (*models.Cat, error) {
	return nil, errors.New("not used")
}

func (m *memCats) Create(_ context.Context, cat *models.Cat) (string, error) {
	if m.failAt > 0 && len(m.created)+1 == m.failAt {
		return "", errors.New("write failed")
	}
	m.created = append(m.created, cat)
	return fmt.Sprintf("cat-%d", len(m.created)), nil
}

func (m *memCats) DeleteAll(context.Context) (int, error) {
	n := m.existing
	m.existing = 0
	return n, nil
}

type stubImages map[string]string

func (s stubImages) BreedImage(_ context.Context, breedID string) (string, error) {
	if breedID == "broken" {
		return "", errors.New("timeout")
	}
	return s[breedID], nil
}

func testRoster() *Roster {
	return &Roster{
		Breeds: []Breed{{ID: "siam"}, {ID: "broken"}, {ID: "bare"}},
		Cats:   []RosterEntry{{Name: "Pip", Description: "Small."}, {Name: "Tux", Description: "Formal."}},
	}
}

func TestSeed(t *testing.T) {
	repo := &memCats{existing: 7}
	s := NewSeeder(repo, stubImages{"siam": "https://img/siam.jpg"}, testRoster(), zap.NewNop())
	picks := []int{0, 1, 2}
	calls := 0
	s.pick = func(n int) int {
		p := picks[calls%len(picks)]
		calls++
		return p
	}

	res, err := s.Seed(context.Background(), 20)
	require.NoError(t, err)
	assert.Equal(t, 7, res.Deleted)
	require.Len(t, res.Created, 20)
	require.Len(t, repo.created, 20)

	assert.Equal(t, "Pip", repo.created[0].Name)
	assert.Equal(t, "Tux", repo.created[1].Name)
	assert.Equal(t, "Pip 2", repo.created[2].Name)
	assert.Equal(t, "https://img/siam.jpg", repo.created[0].ImageURL)
	assert.Equal(t, errorImagePlaceholder, repo.created[1].ImageURL)
	assert.Equal(t, noImagePlaceholder, repo.created[2].ImageURL)

	for i, c := range repo.created {
		assert.Equal(t, (i+1)%10 == 0, c.Special, "cat #%d", i+1)
	}
}

func TestSeedErrors(t *testing.T) {
	s := NewSeeder(&memCats{}, stubImages{}, testRoster(), zap.NewNop())
	_, err := s.Seed(context.Background(), 0)
	assert.Error(t, err)

	repo := &memCats{failAt: 3}
	s = NewSeeder(repo, stubImages{}, testRoster(), zap.NewNop())
	res, err := s.Seed(context.Background(), 5)
	assert.ErrorContains(t, err, "cat #3")
	assert.Len(t, res.Created, 2)
}
