package memory

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jwalitptl/clinic-crm/internal/model"
	"github.com/jwalitptl/clinic-crm/internal/repository"
)

type item struct {
	ID   int64
	Name string
}

func newItemStore() *Store[item] {
	return NewStore(func(i *item) *int64 { return &i.ID })
}

func TestStoreInsertAssignsIncreasingIDs(t *testing.T) {
	s := newItemStore()

	a, err := s.Insert(item{Name: "a"}, nil)
	require.NoError(t, err)
	b, err := s.Insert(item{Name: "b"}, nil)
	require.NoError(t, err)

	assert.Equal(t, int64(1), a.ID)
	assert.Equal(t, int64(2), b.ID)

	got, err := s.Get(a.ID)
	require.NoError(t, err)
	assert.Equal(t, a, got)
}

func TestStoreNeverReusesIDsAfterDelete(t *testing.T) {
	s := newItemStore()

	first, _ := s.Insert(item{Name: "first"}, nil)
	require.NoError(t, s.Delete(first.ID))

	second, err := s.Insert(item{Name: "second"}, nil)
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	_, err = s.Get(first.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStoreUpdateKeepsID(t *testing.T) {
	s := newItemStore()
	created, _ := s.Insert(item{Name: "old"}, nil)

	updated, err := s.Update(created.ID, func(cur *item, _ []item) error {
		cur.ID = 42
		cur.Name = "new"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "new", updated.Name)

	_, err = s.Get(42)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestStoreUpdateErrorLeavesRecord(t *testing.T) {
	s := newItemStore()
	created, _ := s.Insert(item{Name: "keep"}, nil)
	boom := errors.New("boom")

	_, err := s.Update(created.ID, func(cur *item, _ []item) error {
		cur.Name = "changed"
		return boom
	})
	assert.ErrorIs(t, err, boom)

	got, _ := s.Get(created.ID)
	assert.Equal(t, "keep", got.Name)
}

func TestStoreDeleteMissing(t *testing.T) {
	s := newItemStore()
	s.Insert(item{Name: "a"}, nil)

	err := s.Delete(9999)
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Len(t, s.List(), 1)
}

func TestStoreListReturnsCopies(t *testing.T) {
	s := newItemStore()
	s.Insert(item{Name: "a"}, nil)

	list := s.List()
	list[0].Name = "mutated"

	got, _ := s.Get(1)
	assert.Equal(t, "a", got.Name)
}

func TestStoreConcurrentInserts(t *testing.T) {
	s := newItemStore()
	const n = 100

	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s.Insert(item{}, nil)
		}()
	}
	wg.Wait()

	seen := make(map[int64]bool)
	for _, it := range s.List() {
		assert.False(t, seen[it.ID], "duplicate id %d", it.ID)
		seen[it.ID] = true
	}
	assert.Len(t, seen, n)
}

func TestClientRepositoryDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository()

	require.NoError(t, repo.Create(ctx, &model.Client{Name: "John Smith", Email: "john@example.com"}))

	err := repo.Create(ctx, &model.Client{Name: "Other", Email: "john@example.com", Phone: "1"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)
	err = repo.Create(ctx, &model.Client{Name: "Third", Email: "john@example.com"})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	// Case differs, so this is a distinct address.
	assert.NoError(t, repo.Create(ctx, &model.Client{Email: "John@example.com"}))
}

func TestClientRepositoryUpdateEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewClientRepository()

	a := &model.Client{Name: "A", Email: "a@example.com"}
	b := &model.Client{Name: "B", Email: "b@example.com"}
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))

	_, err := repo.Update(ctx, b.ID, func(c *model.Client) error {
		c.Email = "a@example.com"
		return nil
	})
	assert.ErrorIs(t, err, repository.ErrDuplicateEmail)

	// Keeping its own email is not a collision.
	updated, err := repo.Update(ctx, a.ID, func(c *model.Client) error {
		c.Name = "A2"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "a@example.com", updated.Email)
	assert.Equal(t, "A2", updated.Name)
}

func TestAppointmentRepositoryDateRange(t *testing.T) {
	ctx := context.Background()
	repo := NewAppointmentRepository()

	for _, d := range []string{"2023-09-30", "2023-10-01", "2023-10-31", "2023-11-01"} {
		require.NoError(t, repo.Create(ctx, &model.Appointment{Date: d}))
	}

	got, err := repo.ListByDateRange(ctx, model.DateRange{Start: "2023-10-01", End: "2023-10-31"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2023-10-01", got[0].Date)
	assert.Equal(t, "2023-10-31", got[1].Date)
}

func TestUserRepositoryGetByEmail(t *testing.T) {
	ctx := context.Background()
	repo := NewUserRepository()

	require.NoError(t, repo.Create(ctx, &model.User{Email: "admin@example.com", Name: "Admin User"}))
	assert.ErrorIs(t, repo.Create(ctx, &model.User{Email: "admin@example.com"}), repository.ErrDuplicateEmail)

	u, err := repo.GetByEmail(ctx, "admin@example.com")
	require.NoError(t, err)
	assert.Equal(t, "Admin User", u.Name)

	_, err = repo.GetByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
