// Package memory provides in-memory implementations of the repository contracts.
// They enforce the same uniqueness constraints as the PostgreSQL schema and assign
// ids in creation order, so services behave the same against either backend.
package memory

import (
	"context"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/stemsi/studygroups-backend/internal/model"
	"github.com/stemsi/studygroups-backend/internal/repository"
)

var (
	_ repository.StudyGroupRepository = (*StudyGroupRepository)(nil)
	_ repository.UserRepository       = (*UserRepository)(nil)
)

// UserRepository keeps users in a map keyed by id.
type UserRepository struct {
	mu      sync.RWMutex
	counter atomic.Int64
	users   map[int]model.User
	// memberships is shared with StudyGroupRepository to derive User.Groups.
	memberships *membershipIndex
}

// NewUserRepository creates an empty user store.
func NewUserRepository() *UserRepository {
	return &UserRepository{
		users:       make(map[int]model.User),
		memberships: newMembershipIndex(),
	}
}

// Create assigns the next id and stores u.
func (r *UserRepository) Create(ctx context.Context, u *model.User) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.users {
		if existing.Email == u.Email {
			return repository.ErrDuplicateEmail
		}
	}
	u.ID = int(r.counter.Add(1))
	stored := u.Clone()
	stored.Groups = nil
	r.users[u.ID] = stored
	return nil
}

// List returns users ordered by id.
func (r *UserRepository) List(ctx context.Context) ([]model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]model.User, 0, len(r.users))
	for _, u := range r.users {
		u = u.Clone()
		u.Groups = r.memberships.groupsOf(u.ID)
		users = append(users, u)
	}
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	return users, nil
}

// GetByID returns a copy of the user or repository.ErrNotFound.
func (r *UserRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	u, ok := r.users[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	u = u.Clone()
	u.Groups = r.memberships.groupsOf(id)
	return &u, nil
}

func (r *UserRepository) lookup(id int) (model.User, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	u, ok := r.users[id]
	return u, ok
}

// StudyGroupRepository keeps groups in a map keyed by id. Members are resolved
// against the UserRepository it was created with.
type StudyGroupRepository struct {
	mu      sync.RWMutex
	counter atomic.Int64
	groups  map[int]model.NewStudyGroup
	users   *UserRepository
}

// NewStudyGroupRepository creates an empty group store bound to users.
func NewStudyGroupRepository(users *UserRepository) *StudyGroupRepository {
	return &StudyGroupRepository{
		groups: make(map[int]model.NewStudyGroup),
		users:  users,
	}
}

// Create stores g under the next id, rejecting duplicate names and subjects.
func (r *StudyGroupRepository) Create(ctx context.Context, g model.NewStudyGroup) (*model.StudyGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, existing := range r.groups {
		if existing.Name == g.Name {
			return nil, repository.ErrDuplicateName
		}
		if existing.Subject == g.Subject {
			return nil, repository.ErrDuplicateSubject
		}
	}
	id := int(r.counter.Add(1))
	r.groups[id] = g
	saved := g.Saved(id)
	return &saved, nil
}

// List returns every group with members, ordered by id.
func (r *StudyGroupRepository) List(ctx context.Context) ([]model.StudyGroup, error) {
	return r.filter(ctx, func(model.NewStudyGroup) bool { return true })
}

// ListBySubject returns the groups for subject, ordered by id.
func (r *StudyGroupRepository) ListBySubject(ctx context.Context, subject model.Subject) ([]model.StudyGroup, error) {
	return r.filter(ctx, func(g model.NewStudyGroup) bool { return g.Subject == subject })
}

// GetByID returns the group with members or repository.ErrNotFound.
func (r *StudyGroupRepository) GetByID(ctx context.Context, id int) (*model.StudyGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	g, ok := r.groups[id]
	r.mu.RUnlock()
	if !ok {
		return nil, repository.ErrNotFound
	}
	saved := r.withMembers(id, g)
	return &saved, nil
}

// AddMember records the membership. Unknown ids behave like foreign key failures.
func (r *StudyGroupRepository) AddMember(ctx context.Context, groupID, userID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.RLock()
	_, ok := r.groups[groupID]
	r.mu.RUnlock()
	if !ok {
		return repository.ErrNotFound
	}
	if _, ok := r.users.lookup(userID); !ok {
		return repository.ErrNotFound
	}
	if !r.users.memberships.add(groupID, userID) {
		return repository.ErrDuplicateMembership
	}
	return nil
}

// RemoveMember deletes the membership.
func (r *StudyGroupRepository) RemoveMember(ctx context.Context, groupID, userID int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if !r.users.memberships.remove(groupID, userID) {
		return repository.ErrMembershipNotFound
	}
	return nil
}

func (r *StudyGroupRepository) filter(ctx context.Context, keep func(model.NewStudyGroup) bool) ([]model.StudyGroup, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	ids := make([]int, 0, len(r.groups))
	snapshot := make(map[int]model.NewStudyGroup, len(r.groups))
	for id, g := range r.groups {
		if keep(g) {
			ids = append(ids, id)
			snapshot[id] = g
		}
	}
	r.mu.RUnlock()

	sort.Ints(ids)
	out := make([]model.StudyGroup, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.withMembers(id, snapshot[id]))
	}
	return out, nil
}

func (r *StudyGroupRepository) withMembers(id int, g model.NewStudyGroup) model.StudyGroup {
	saved := g.Saved(id)
	for _, userID := range r.users.memberships.membersOf(id) {
		if u, ok := r.users.lookup(userID); ok {
			saved.Members = append(saved.Members, u.Clone())
		}
	}
	return saved
}

// membershipIndex is the in-memory equivalent of the study_group_members table.
// Members keep join order.
type membershipIndex struct {
	mu      sync.RWMutex
	members map[int][]int
}

func newMembershipIndex() *membershipIndex {
	return &membershipIndex{members: make(map[int][]int)}
}

func (m *membershipIndex) add(groupID, userID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.members[groupID] {
		if id == userID {
			return false
		}
	}
	m.members[groupID] = append(m.members[groupID], userID)
	return true
}

func (m *membershipIndex) remove(groupID, userID int) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	ids := m.members[groupID]
	for i, id := range ids {
		if id == userID {
			m.members[groupID] = append(ids[:i:i], ids[i+1:]...)
			return true
		}
	}
	return false
}

func (m *membershipIndex) membersOf(groupID int) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]int(nil), m.members[groupID]...)
}

func (m *membershipIndex) groupsOf(userID int) []int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	groups := []int{}
	for groupID, ids := range m.members {
		for _, id := range ids {
			if id == userID {
				groups = append(groups, groupID)
				break
			}
		}
	}
	sort.Ints(groups)
	return groups
}
