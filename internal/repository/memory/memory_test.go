package memory

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/studygroups-backend/internal/model"
	"github.com/stemsi/studygroups-backend/internal/repository"
)

func newStores(t *testing.T) (*StudyGroupRepository, *UserRepository) {
	t.Helper()
	users := NewUserRepository()
	return NewStudyGroupRepository(users), users
}

func draft(name string, subject model.Subject) model.NewStudyGroup {
	return model.NewStudyGroupDraft(name, subject, time.Now())
}

func TestStudyGroupRepository(t *testing.T) {
	ctx := context.Background()

	t.Run("ids follow creation order", func(t *testing.T) {
		groups, _ := newStores(t)

		first, err := groups.Create(ctx, draft("MathClub", model.SubjectMath))
		require.NoError(t, err)
		second, err := groups.Create(ctx, draft("ChemClub", model.SubjectChemistry))
		require.NoError(t, err)

		assert.Equal(t, 1, first.ID)
		assert.Equal(t, 2, second.ID)
	})

	t.Run("unique name and subject", func(t *testing.T) {
		groups, _ := newStores(t)

		_, err := groups.Create(ctx, draft("MathClub", model.SubjectMath))
		require.NoError(t, err)

		_, err = groups.Create(ctx, draft("MathClub", model.SubjectPhysics))
		assert.ErrorIs(t, err, repository.ErrDuplicateName)

		_, err = groups.Create(ctx, draft("OtherMath", model.SubjectMath))
		assert.ErrorIs(t, err, repository.ErrDuplicateSubject)

		all, err := groups.List(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 1)
	})

	t.Run("list by subject", func(t *testing.T) {
		groups, _ := newStores(t)
		_, _ = groups.Create(ctx, draft("MathClub", model.SubjectMath))
		_, _ = groups.Create(ctx, draft("PhysClub", model.SubjectPhysics))

		found, err := groups.ListBySubject(ctx, model.SubjectPhysics)
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "PhysClub", found[0].Name)

		none, err := groups.ListBySubject(ctx, model.SubjectChemistry)
		require.NoError(t, err)
		assert.NotNil(t, none)
		assert.Empty(t, none)
	})

	t.Run("get by id", func(t *testing.T) {
		groups, _ := newStores(t)
		created, _ := groups.Create(ctx, draft("MathClub", model.SubjectMath))

		got, err := groups.GetByID(ctx, created.ID)
		require.NoError(t, err)
		assert.Equal(t, "MathClub", got.Name)

		_, err = groups.GetByID(ctx, 42)
		assert.ErrorIs(t, err, repository.ErrNotFound)
	})

	t.Run("membership", func(t *testing.T) {
		groups, users := newStores(t)
		g, _ := groups.Create(ctx, draft("MathClub", model.SubjectMath))
		u := &model.User{Email: "alice@example.com", FirstName: "Alice"}
		require.NoError(t, users.Create(ctx, u))

		require.NoError(t, groups.AddMember(ctx, g.ID, u.ID))
		assert.ErrorIs(t, groups.AddMember(ctx, g.ID, u.ID), repository.ErrDuplicateMembership)
		assert.ErrorIs(t, groups.AddMember(ctx, g.ID, 99), repository.ErrNotFound)
		assert.ErrorIs(t, groups.AddMember(ctx, 99, u.ID), repository.ErrNotFound)

		got, _ := groups.GetByID(ctx, g.ID)
		require.Len(t, got.Members, 1)
		assert.Equal(t, "alice@example.com", got.Members[0].Email)

		stored, _ := users.GetByID(ctx, u.ID)
		assert.Equal(t, []int{g.ID}, stored.Groups)

		require.NoError(t, groups.RemoveMember(ctx, g.ID, u.ID))
		assert.ErrorIs(t, groups.RemoveMember(ctx, g.ID, u.ID), repository.ErrMembershipNotFound)

		got, _ = groups.GetByID(ctx, g.ID)
		assert.Empty(t, got.Members)
	})

	t.Run("returned groups are copies", func(t *testing.T) {
		groups, users := newStores(t)
		g, _ := groups.Create(ctx, draft("MathClub", model.SubjectMath))
		u := &model.User{Email: "alice@example.com"}
		_ = users.Create(ctx, u)
		_ = groups.AddMember(ctx, g.ID, u.ID)

		got, _ := groups.GetByID(ctx, g.ID)
		got.Members = nil

		again, _ := groups.GetByID(ctx, g.ID)
		assert.Len(t, again.Members, 1)
	})

	t.Run("canceled context", func(t *testing.T) {
		groups, _ := newStores(t)
		canceled, cancel := context.WithCancel(ctx)
		cancel()

		_, err := groups.List(canceled)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestStudyGroupRepository_ConcurrentCreateSameSubject(t *testing.T) {
	groups, _ := newStores(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	created := 0
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name := "Group" + string(rune('A'+i))
			if _, err := groups.Create(ctx, draft(name, model.SubjectMath)); err == nil {
				mu.Lock()
				created++
				mu.Unlock()
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 1, created)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	users := NewUserRepository()

	a := &model.User{Email: "a@example.com"}
	b := &model.User{Email: "b@example.com", LastName: "Bee"}
	require.NoError(t, users.Create(ctx, a))
	require.NoError(t, users.Create(ctx, b))
	assert.Equal(t, 1, a.ID)
	assert.Equal(t, 2, b.ID)

	assert.ErrorIs(t, users.Create(ctx, &model.User{Email: "a@example.com"}), repository.ErrDuplicateEmail)

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Bee", all[1].LastName)
	assert.Equal(t, []int{}, all[0].Groups)

	_, err = users.GetByID(ctx, 3)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}
