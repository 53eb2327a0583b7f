package cache

import (
	"context"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stemsi/studygroups-backend/internal/model"
)

func TestCachedRoundTripKeepsMembers(t *testing.T) {
	created := time.Date(2024, 2, 3, 4, 5, 6, 0, time.UTC)
	groups := []model.StudyGroup{
		{
			ID:        1,
			Name:      "MathMates",
			Subject:   model.SubjectMath,
			CreatedAt: created,
			Members:   []model.User{{ID: 4, Email: "d@example.com", FirstName: "Dee", Groups: []int{1}}},
		},
		{ID: 2, Name: "ChemClub", Subject: model.SubjectChemistry, CreatedAt: created, Members: []model.User{}},
	}

	got := fromCached(toCached(groups))

	require.Len(t, got, 2)
	assert.Equal(t, model.SubjectMath, got[0].Subject)
	assert.Equal(t, created, got[0].CreatedAt)
	require.Len(t, got[0].Members, 1)
	assert.Equal(t, "Dee", got[0].Members[0].FirstName)
	assert.Nil(t, got[0].Members[0].Groups)
	assert.NotNil(t, got[1].Members)
}

func TestStudyGroupCache_UnreachableRedis(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	defer rdb.Close()

	c := NewStudyGroupCache(rdb, time.Minute)
	ctx := context.Background()

	_, ok, err := c.GetList(ctx)
	assert.Error(t, err)
	assert.False(t, ok)
	_, err = c.Generation(ctx)
	assert.Error(t, err)
	stored, err := c.SetList(ctx, 0, nil)
	assert.Error(t, err)
	assert.False(t, stored)
	assert.Error(t, c.Invalidate(ctx))
}
