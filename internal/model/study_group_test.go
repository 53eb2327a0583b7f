package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewStudyGroupDraft_StampsUTC(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*60*60)
	now := time.Date(2024, 3, 1, 12, 0, 0, 0, loc)

	draft := NewStudyGroupDraft("ChemClub01", SubjectChemistry, now)

	assert.Equal(t, time.UTC, draft.CreatedAt.Location())
	assert.True(t, draft.CreatedAt.Equal(now))

	saved := draft.Saved(7)
	assert.Equal(t, 7, saved.ID)
	assert.Equal(t, "ChemClub01", saved.Name)
	assert.NotNil(t, saved.Members)
	assert.Empty(t, saved.Members)
}

func TestStudyGroup_Membership(t *testing.T) {
	g := StudyGroup{ID: 1, Name: "MathClub", Subject: SubjectMath}
	alice := User{ID: 1, Email: "alice@example.com"}
	bob := User{ID: 2, Email: "bob@example.com"}

	require.NoError(t, g.AddMember(alice))
	require.NoError(t, g.AddMember(bob))
	assert.ErrorIs(t, g.AddMember(alice), ErrAlreadyMember)
	assert.Equal(t, []int{1, 2}, g.MemberIDs())

	require.NoError(t, g.RemoveMember(1))
	assert.False(t, g.HasMember(1))
	assert.True(t, g.HasMember(2))
	assert.ErrorIs(t, g.RemoveMember(1), ErrNotAMember)

	require.NoError(t, g.AddMember(alice))
	assert.ElementsMatch(t, []int{1, 2}, g.MemberIDs())
}

func TestStudyGroup_CloneDoesNotAlias(t *testing.T) {
	g := StudyGroup{ID: 1, Members: []User{{ID: 1, Groups: []int{1}}}}

	c := g.Clone()
	require.NoError(t, c.RemoveMember(1))
	c.Members = append(c.Members, User{ID: 3})

	assert.Equal(t, []int{1}, g.MemberIDs())
}

func TestStudyGroup_ToResponse(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	g := StudyGroup{
		ID:        3,
		Name:      "PhysicsPals",
		Subject:   SubjectPhysics,
		CreatedAt: created,
		Members:   []User{{ID: 9, Email: "nine@example.com", FirstName: "Nina", Groups: []int{3}}},
	}

	data, err := json.Marshal(g.ToResponse())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, float64(3), decoded["id"])
	assert.Equal(t, "PhysicsPals", decoded["name"])
	assert.Equal(t, "Physics", decoded["subject"])
	assert.Equal(t, "2024-01-02T03:04:05Z", decoded["createdAt"])

	members := decoded["members"].([]any)
	require.Len(t, members, 1)
	member := members[0].(map[string]any)
	assert.Equal(t, "nine@example.com", member["email"])
	assert.NotContains(t, member, "groups")
}

func TestToStudyGroupResponses_NeverNil(t *testing.T) {
	out := ToStudyGroupResponses(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)

	u := User{ID: 1}
	assert.Equal(t, []int{}, u.ToResponse().Groups)
}
