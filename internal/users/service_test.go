package users

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/carhive/carhive/internal/audit"
	"github.com/carhive/carhive/internal/platform/httpx"
	"github.com/carhive/carhive/internal/query"
)

type mockRepo struct {
	users  map[int64]User
	hashes map[int64]string
	writes int
	fail   error
}

func newMockRepo(users ...User) *mockRepo {
	m := &mockRepo{users: map[int64]User{}, hashes: map[int64]string{}}
	for _, u := range users {
		m.users[u.ID] = u
	}
	return m
}

func (m *mockRepo) List(_ context.Context, _ query.Params) (query.Page[User], error) {
	out := []User{}
	for _, u := range m.users {
		out = append(out, u)
	}
	return query.Page[User]{Data: out, Meta: query.NewMeta(1, 10, len(out))}, nil
}

func (m *mockRepo) ByID(_ context.Context, id int64) (*User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, httpx.ErrNotFound
	}
	return &u, nil
}

// Apply mirrors the real repository: one write, all touched fields together.
func (m *mockRepo) Apply(_ context.Context, id int64, change Change) error {
	m.writes++
	if m.fail != nil {
		return m.fail
	}
	u := m.users[id]
	if change.Username != nil {
		u.Username = *change.Username
	}
	if change.IsActive != nil {
		u.IsActive = *change.IsActive
	}
	if change.PasswordHash != nil {
		m.hashes[id] = *change.PasswordHash
	}
	m.users[id] = u
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id int64) error {
	delete(m.users, id)
	return nil
}

type captureRecorder struct {
	recs []audit.Record
}

func (c *captureRecorder) Record(_ context.Context, rec audit.Record) {
	c.recs = append(c.recs, rec)
}

func testUser(id int64, name string) User {
	return User{ID: id, Username: name, IsActive: true, CreatedAt: time.Now()}
}

func TestUpdatePartialPatch(t *testing.T) {
	repo := newMockRepo(testUser(2, "bob"))
	svc := NewService(repo, nil, nil)

	name := "robert"
	updated, err := svc.Update(context.Background(), 1, 2, Patch{Username: &name})
	require.NoError(t, err)
	require.Equal(t, "robert", updated.Username)
	require.True(t, updated.IsActive)

	active := false
	updated, err = svc.Update(context.Background(), 1, 2, Patch{IsActive: &active})
	require.NoError(t, err)
	require.Equal(t, "robert", updated.Username)
	require.False(t, updated.IsActive)
}

func TestUpdateHashesPassword(t *testing.T) {
	repo := newMockRepo(testUser(2, "bob"))
	svc := NewService(repo, nil, nil)

	password := "correct horse battery"
	_, err := svc.Update(context.Background(), 1, 2, Patch{Password: &password})
	require.NoError(t, err)

	hash := repo.hashes[2]
	require.NotEmpty(t, hash)
	require.NotEqual(t, password, hash)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)))
}

func TestUpdateMultiFieldIsSingleWrite(t *testing.T) {
	repo := newMockRepo(testUser(2, "bob"))
	svc := NewService(repo, nil, nil)

	name := "robert"
	password := "correct horse battery"
	active := false
	updated, err := svc.Update(context.Background(), 1, 2, Patch{
		Username: &name, Password: &password, IsActive: &active,
	})
	require.NoError(t, err)
	require.Equal(t, 1, repo.writes)
	require.Equal(t, "robert", updated.Username)
	require.False(t, updated.IsActive)
	require.NotEmpty(t, repo.hashes[2])
}

func TestUpdateFailedWriteLeavesNoPartialState(t *testing.T) {
	repo := newMockRepo(testUser(2, "bob"))
	repo.fail = errors.New("connection reset")
	svc := NewService(repo, nil, nil)

	name := "robert"
	password := "correct horse battery"
	active := false
	_, err := svc.Update(context.Background(), 1, 2, Patch{
		Username: &name, Password: &password, IsActive: &active,
	})
	require.Error(t, err)

	// None of the three fields may survive a failed write.
	require.Equal(t, "bob", repo.users[2].Username)
	require.True(t, repo.users[2].IsActive)
	require.Empty(t, repo.hashes)
}

func TestUpdateEmptyPatchSkipsWrite(t *testing.T) {
	repo := newMockRepo(testUser(2, "bob"))
	svc := NewService(repo, nil, nil)

	updated, err := svc.Update(context.Background(), 1, 2, Patch{})
	require.NoError(t, err)
	require.Equal(t, 0, repo.writes)
	require.Equal(t, "bob", updated.Username)
}

func TestUpdateUnknownUser(t *testing.T) {
	svc := NewService(newMockRepo(), nil, nil)

	name := "ghost"
	_, err := svc.Update(context.Background(), 1, 99, Patch{Username: &name})
	require.ErrorIs(t, err, httpx.ErrNotFound)
}

func TestDeleteRejectsSelf(t *testing.T) {
	repo := newMockRepo(testUser(1, "admin"))
	svc := NewService(repo, nil, nil)

	err := svc.Delete(context.Background(), 1, 1)
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Contains(t, repo.users, int64(1))
}

func TestDeleteRemovesUser(t *testing.T) {
	repo := newMockRepo(testUser(1, "admin"), testUser(2, "bob"))
	rec := &captureRecorder{}
	svc := NewService(repo, rec, nil)

	require.NoError(t, svc.Delete(context.Background(), 1, 2))
	require.NotContains(t, repo.users, int64(2))

	require.Len(t, rec.recs, 1)
	require.Equal(t, "delete", rec.recs[0].Action)
	require.Equal(t, "user", rec.recs[0].Entity)
	require.Equal(t, int64(2), rec.recs[0].EntityID)
	require.Equal(t, int64(1), rec.recs[0].ActorID)
}
