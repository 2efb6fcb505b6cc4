package core

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"sync"

	"github.com/example/dailywhisker/internal/db"
	"github.com/example/dailywhisker/internal/models"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	users   map[string]models.User
	updates int
}

func newFakeUserRepo() *fakeUserRepo { return &fakeUserRepo{users: map[string]models.User{}} }

func (r *fakeUserRepo) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, fmt.Errorf("user '%s': %w", id, db.ErrNotFound)
	}
	return &u, nil
}

func (r *fakeUserRepo) Create(_ context.Context, u *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[u.ID]; ok {
		return fmt.Errorf("user '%s': %w", u.ID, db.ErrAlreadyExists)
	}
	r.users[u.ID] = *u
	return nil
}

func (r *fakeUserRepo) UpdateRotation(_ context.Context, id, catID string, ts int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u := r.users[id]
	u.ID = id
	u.LastGeneratedCatID = &catID
	u.LastGeneratedTimestamp = &ts
	r.users[id] = u
	r.updates++
	return nil
}

type fakeCatRepo struct {
	cats map[string]models.Cat
}

func newFakeCatRepo(ids ...string) *fakeCatRepo {
	r := &fakeCatRepo{cats: map[string]models.Cat{}}
	for _, id := range ids {
		r.cats[id] = models.Cat{ID: id, Name: "Cat " + id}
	}
	return r
}

func (r *fakeCatRepo) ListIDs(context.Context) ([]string, error) {
	ids := make([]string, 0, len(r.cats))
	for id := range r.cats {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids, nil
}

func (r *fakeCatRepo) GetByID(_ context.Context, id string) (*models.Cat, error) {
	c, ok := r.cats[id]
	if !ok {
		return nil, fmt.Errorf("cat '%s': %w", id, db.ErrNotFound)
	}
	return &c, nil
}

func (r *fakeCatRepo) Create(_ context.Context, c *models.Cat) (string, error) {
	id := fmt.Sprintf("cat-%d", len(r.cats)+1)
	c.ID = id
	r.cats[id] = *c
	return id, nil
}

func (r *fakeCatRepo) DeleteAll(context.Context) (int, error) {
	n := len(r.cats)
	r.cats = map[string]models.Cat{}
	return n, nil
}

type fakeBookmarkRepo struct {
	byUser map[string][]models.Bookmark
}

func newFakeBookmarkRepo() *fakeBookmarkRepo {
	return &fakeBookmarkRepo{byUser: map[string][]models.Bookmark{}}
}

func (r *fakeBookmarkRepo) List(_ context.Context, userID string) ([]models.Bookmark, error) {
	out := append([]models.Bookmark{}, r.byUser[userID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp < out[j].Timestamp })
	return out, nil
}

func (r *fakeBookmarkRepo) FindByCatID(_ context.Context, userID, catID string) (*models.Bookmark, error) {
	for _, b := range r.byUser[userID] {
		if b.CatID == catID {
			cp := b
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("bookmark for '%s': %w", catID, db.ErrNotFound)
}

func (r *fakeBookmarkRepo) Create(_ context.Context, userID string, b *models.Bookmark) (string, error) {
	b.ID = fmt.Sprintf("bm-%d", len(r.byUser[userID])+1)
	r.byUser[userID] = append(r.byUser[userID], *b)
	return b.ID, nil
}

type fakeSettingsRepo struct {
	docs map[string]map[string]interface{}
}

func newFakeSettingsRepo() *fakeSettingsRepo {
	return &fakeSettingsRepo{docs: map[string]map[string]interface{}{}}
}

func (r *fakeSettingsRepo) Get(_ context.Context, userID string) (*models.Settings, error) {
	doc, ok := r.docs[userID]
	if !ok {
		return nil, fmt.Errorf("settings '%s': %w", userID, db.ErrNotFound)
	}
	s := models.Settings{}
	if v, ok := doc["catBorder"].(string); ok {
		s.CatBorder = models.CatBorder(v)
	}
	if v, ok := doc["catBackground"].(string); ok {
		s.CatBackground = models.CatBackground(v)
	}
	if v, ok := doc["appTheme"].(string); ok {
		s.AppTheme = models.AppTheme(v)
	}
	if v, ok := doc["updatedAt"].(int64); ok {
		s.UpdatedAt = v
	}
	return &s, nil
}

func (r *fakeSettingsRepo) Merge(_ context.Context, userID string, fields map[string]interface{}) error {
	doc, ok := r.docs[userID]
	if !ok {
		doc = map[string]interface{}{}
		r.docs[userID] = doc
	}
	for k, v := range fields {
		doc[k] = v
	}
	return nil
}

type fakeSurveyRepo struct {
	docs map[string]models.SurveyStatus
}

func newFakeSurveyRepo() *fakeSurveyRepo {
	return &fakeSurveyRepo{docs: map[string]models.SurveyStatus{}}
}

func (r *fakeSurveyRepo) Get(_ context.Context, userID string) (*models.SurveyStatus, error) {
	s, ok := r.docs[userID]
	if !ok {
		return nil, fmt.Errorf("survey '%s': %w", userID, db.ErrNotFound)
	}
	return &s, nil
}

func (r *fakeSurveyRepo) Create(_ context.Context, userID string, s *models.SurveyStatus) error {
	if _, ok := r.docs[userID]; ok {
		return fmt.Errorf("survey '%s': %w", userID, db.ErrAlreadyExists)
	}
	r.docs[userID] = *s
	return nil
}

func (r *fakeSurveyRepo) Merge(_ context.Context, userID string, fields map[string]interface{}) error {
	s := r.docs[userID]
	for k, v := range fields {
		switch k {
		case "skipped":
			s.Skipped = v.(bool)
		case "completed":
			s.Completed = v.(bool)
		case "retaking":
			s.Retaking = v.(bool)
		case "answers":
			m := v.(map[string]interface{})
			s.Answers = &models.SurveyAnswers{
				FavoriteBreed: m["question1"].(string),
				Personality:   m["question2"].(string),
				FavoriteColor: m["question3"].(string),
			}
		}
	}
	r.docs[userID] = s
	return nil
}

type fakeIdentity struct {
	accounts  map[string]string // email -> password
	ids       map[string]string // email -> uid
	signedOut []string
}

func newFakeIdentity() *fakeIdentity {
	return &fakeIdentity{accounts: map[string]string{}, ids: map[string]string{}}
}

func (f *fakeIdentity) SignIn(_ context.Context, email, password string) (*AuthSession, error) {
	pw, ok := f.accounts[email]
	if !ok || pw != password {
		return nil, ErrInvalidCredentials
	}
	return &AuthSession{UserID: f.ids[email], Email: email, IDToken: "id-token-" + f.ids[email], ExpiresIn: 3600}, nil
}

func (f *fakeIdentity) SignUp(_ context.Context, email, password string) (string, error) {
	if _, ok := f.accounts[email]; ok {
		return "", ErrEmailAlreadyExists
	}
	if len(password) < 6 {
		return "", ErrWeakPassword
	}
	uid := fmt.Sprintf("uid-%d", len(f.accounts)+1)
	f.accounts[email] = password
	f.ids[email] = uid
	return uid, nil
}

func (f *fakeIdentity) SignOut(_ context.Context, uid string) error {
	f.signedOut = append(f.signedOut, uid)
	return nil
}

func (f *fakeIdentity) PasswordResetLink(_ context.Context, email string) (string, error) {
	if _, ok := f.accounts[email]; !ok {
		return "", ErrAccountNotFound
	}
	return "https://dailywhisker.test/reset?oobCode=abc", nil
}

type sentMail struct{ to, subject, body string }

type fakeMailer struct{ sent []sentMail }

func (m *fakeMailer) Send(_ context.Context, to, subject, body string) error {
	m.sent = append(m.sent, sentMail{to, subject, body})
	return nil
}

type fakeUploader struct {
	path, contentType string
	data              []byte
	err               error
}

func (u *fakeUploader) Upload(_ context.Context, path, contentType string, r io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		return "", err
	}
	u.path, u.contentType, u.data = path, contentType, buf.Bytes()
	return "https://storage.test/" + path, nil
}
