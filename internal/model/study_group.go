package model

import (
	"errors"
	"time"
)

var (
	ErrAlreadyMember = errors.New("user is already a member of the study group")
	ErrNotAMember    = errors.New("user is not a member of the study group")
)

// StudyGroup is a persisted study group. Only a repository creates values with an ID;
// unsaved groups are represented by NewStudyGroup.
type StudyGroup struct {
	ID        int
	Name      string
	Subject   Subject
	CreatedAt time.Time
	Members   []User
}

// NewStudyGroup is a study group that has not been stored yet and therefore has no ID.
type NewStudyGroup struct {
	Name      string
	Subject   Subject
	CreatedAt time.Time
}

// NewStudyGroupDraft builds an unsaved group stamped with the UTC creation time.
func NewStudyGroupDraft(name string, subject Subject, now time.Time) NewStudyGroup {
	return NewStudyGroup{
		Name:      name,
		Subject:   subject,
		CreatedAt: now.UTC(),
	}
}

// Saved returns the stored form of the draft under the given id, with no members.
func (g NewStudyGroup) Saved(id int) StudyGroup {
	return StudyGroup{
		ID:        id,
		Name:      g.Name,
		Subject:   g.Subject,
		CreatedAt: g.CreatedAt,
		Members:   []User{},
	}
}

// HasMember reports whether userID is in the member set.
func (g *StudyGroup) HasMember(userID int) bool {
	for _, m := range g.Members {
		if m.ID == userID {
			return true
		}
	}
	return false
}

// AddMember adds u to the member set.
func (g *StudyGroup) AddMember(u User) error {
	if g.HasMember(u.ID) {
		return ErrAlreadyMember
	}
	g.Members = append(g.Members, u)
	return nil
}

// RemoveMember removes userID from the member set.
func (g *StudyGroup) RemoveMember(userID int) error {
	for i, m := range g.Members {
		if m.ID == userID {
			g.Members = append(g.Members[:i], g.Members[i+1:]...)
			return nil
		}
	}
	return ErrNotAMember
}

// MemberIDs returns the ids of all members.
func (g *StudyGroup) MemberIDs() []int {
	ids := make([]int, len(g.Members))
	for i, m := range g.Members {
		ids[i] = m.ID
	}
	return ids
}

// Clone returns a deep copy so callers can mutate members without aliasing.
func (g StudyGroup) Clone() StudyGroup {
	members := make([]User, len(g.Members))
	for i, m := range g.Members {
		members[i] = m.Clone()
	}
	g.Members = members
	return g
}

// CreateStudyGroupRequest is the payload for creating a study group.
type CreateStudyGroupRequest struct {
	Name    string `json:"name" binding:"required,notblank,between=5 30"`
	Subject string `json:"subject" binding:"required,notblank,subject"`
}

// SearchStudyGroupsRequest holds the query parameters for subject search.
type SearchStudyGroupsRequest struct {
	Subject string `form:"subject" json:"subject" binding:"required,notblank,subject"`
}

// MembershipRequest holds the ids for join and leave, taken from the query
// string or from the path.
type MembershipRequest struct {
	StudyGroupID int `form:"studyGroupId" uri:"studyGroupId" json:"studyGroupId" binding:"gt=0"`
	UserID       int `form:"userId" uri:"userId" json:"userId" binding:"gt=0"`
}

// StudyGroupResponse is the wire form of a study group. Members do not carry their
// own group lists, which keeps the payload acyclic.
type StudyGroupResponse struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	Subject   Subject          `json:"subject"`
	CreatedAt time.Time        `json:"createdAt"`
	Members   []MemberResponse `json:"members"`
}

// MemberResponse is a user as seen from a study group.
type MemberResponse struct {
	ID        int    `json:"id"`
	Email     string `json:"email"`
	FirstName string `json:"firstName,omitempty"`
	LastName  string `json:"lastName,omitempty"`
}

// CreatedStudyGroupResponse is returned after a successful create.
type CreatedStudyGroupResponse struct {
	ID int `json:"id"`
}

// ToResponse converts a group into its wire form.
func (g StudyGroup) ToResponse() StudyGroupResponse {
	members := make([]MemberResponse, len(g.Members))
	for i, m := range g.Members {
		members[i] = MemberResponse{
			ID:        m.ID,
			Email:     m.Email,
			FirstName: m.FirstName,
			LastName:  m.LastName,
		}
	}
	return StudyGroupResponse{
		ID:        g.ID,
		Name:      g.Name,
		Subject:   g.Subject,
		CreatedAt: g.CreatedAt,
		Members:   members,
	}
}

// ToStudyGroupResponses converts a slice of groups, never returning nil.
func ToStudyGroupResponses(groups []StudyGroup) []StudyGroupResponse {
	out := make([]StudyGroupResponse, len(groups))
	for i, g := range groups {
		out[i] = g.ToResponse()
	}
	return out
}
