package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/stemsi/studygroups-backend/internal/model"
	"github.com/stemsi/studygroups-backend/internal/repository"
)

var (
	ErrNameTaken      = errors.New("a study group with this name already exists")
	ErrSubjectTaken   = errors.New("a study group for this subject already exists")
	ErrGroupNotFound  = errors.New("study group not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrAlreadyMember  = errors.New("user is already a member of this study group")
	ErrNotAMember     = errors.New("user is not a member of this study group")
	ErrInvalidSubject = errors.New("subject is not part of the subject enumeration")
)

// GroupCache caches the full study group list. Implementations must return copies.
// Invalidate must advance Generation, and SetList must refuse a write whose
// generation is no longer current (stored == false).
type GroupCache interface {
	GetList(ctx context.Context) ([]model.StudyGroup, bool, error)
	Generation(ctx context.Context) (int64, error)
	SetList(ctx context.Context, gen int64, groups []model.StudyGroup) (stored bool, err error)
	Invalidate(ctx context.Context) error
}

// Recorder receives operation outcomes and cache lookup results.
type Recorder interface {
	ObserveOperation(operation, outcome string)
	ObserveCacheLookup(result string)
}

// StudyGroupService enforces the study group invariants: unique names, one group per
// subject, and the join/leave membership transitions.
type StudyGroupService struct {
	groupRepo repository.StudyGroupRepository
	userRepo  repository.UserRepository
	cache     GroupCache
	recorder  Recorder
	now       func() time.Time
	log       zerolog.Logger
}

// Option customizes a StudyGroupService.
type Option func(*StudyGroupService)

// WithCache enables read-through caching of ListStudyGroups.
func WithCache(c GroupCache) Option {
	return func(s *StudyGroupService) { s.cache = c }
}

// WithRecorder reports operation outcomes to r.
func WithRecorder(r Recorder) Option {
	return func(s *StudyGroupService) { s.recorder = r }
}

// WithClock overrides the creation timestamp source.
func WithClock(now func() time.Time) Option {
	return func(s *StudyGroupService) { s.now = now }
}

func NewStudyGroupService(
	groupRepo repository.StudyGroupRepository,
	userRepo repository.UserRepository,
	log zerolog.Logger,
	opts ...Option,
) *StudyGroupService {
	s := &StudyGroupService{
		groupRepo: groupRepo,
		userRepo:  userRepo,
		now:       time.Now,
		log:       log.With().Str("component", "study_group_service").Logger(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// CreateStudyGroup stores a new group after checking name then subject uniqueness.
// A duplicate reported by the store (a concurrent create won) maps to the same errors.
func (s *StudyGroupService) CreateStudyGroup(ctx context.Context, name string, subject model.Subject) (group *model.StudyGroup, err error) {
	defer func() { s.observe("create", err) }()

	if !subject.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSubject, int(subject))
	}

	existing, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list study groups: %w", err)
	}
	for _, g := range existing {
		if g.Name == name {
			return nil, ErrNameTaken
		}
	}
	for _, g := range existing {
		if g.Subject == subject {
			return nil, ErrSubjectTaken
		}
	}

	group, err = s.groupRepo.Create(ctx, model.NewStudyGroupDraft(name, subject, s.now()))
	switch {
	case errors.Is(err, repository.ErrDuplicateName):
		return nil, ErrNameTaken
	case errors.Is(err, repository.ErrDuplicateSubject):
		return nil, ErrSubjectTaken
	case err != nil:
		return nil, fmt.Errorf("create study group: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info().
		Int("study_group_id", group.ID).
		Str("name", group.Name).
		Str("subject", group.Subject.String()).
		Msg("Study group created")
	return group, nil
}

// ListStudyGroups returns every group with its members.
func (s *StudyGroupService) ListStudyGroups(ctx context.Context) ([]model.StudyGroup, error) {
	if groups, ok := s.cachedList(ctx); ok {
		return groups, nil
	}

	// The generation is read before the store so a write committed during the
	// read invalidates it and the snapshot below is not cached.
	gen, fill := s.cacheGeneration(ctx)

	groups, err := s.groupRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list study groups: %w", err)
	}
	if groups == nil {
		groups = []model.StudyGroup{}
	}

	if fill {
		s.fillCache(ctx, gen, groups)
	}
	return groups, nil
}

// SearchStudyGroups returns the groups for subject. No match yields an empty slice.
func (s *StudyGroupService) SearchStudyGroups(ctx context.Context, subject model.Subject) ([]model.StudyGroup, error) {
	if !subject.Valid() {
		return nil, fmt.Errorf("%w: %d", ErrInvalidSubject, int(subject))
	}

	if all, ok := s.cachedList(ctx); ok {
		matched := []model.StudyGroup{}
		for _, g := range all {
			if g.Subject == subject {
				matched = append(matched, g)
			}
		}
		return matched, nil
	}

	groups, err := s.groupRepo.ListBySubject(ctx, subject)
	if err != nil {
		return nil, fmt.Errorf("search study groups: %w", err)
	}
	if groups == nil {
		groups = []model.StudyGroup{}
	}
	return groups, nil
}

// GetStudyGroup returns a single group with its members.
func (s *StudyGroupService) GetStudyGroup(ctx context.Context, id int) (*model.StudyGroup, error) {
	group, err := s.groupRepo.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get study group: %w", err)
	}
	return group, nil
}

// JoinStudyGroup moves the (group, user) pair from NotMember to Member.
// Checks run in order: group exists, user exists, user not already a member.
func (s *StudyGroupService) JoinStudyGroup(ctx context.Context, studyGroupID, userID int) (err error) {
	defer func() { s.observe("join", err) }()

	group, user, err := s.loadPair(ctx, studyGroupID, userID)
	if err != nil {
		return err
	}
	if err := group.AddMember(*user); errors.Is(err, model.ErrAlreadyMember) {
		return ErrAlreadyMember
	}

	err = s.groupRepo.AddMember(ctx, group.ID, user.ID)
	switch {
	case errors.Is(err, repository.ErrDuplicateMembership):
		return ErrAlreadyMember
	case errors.Is(err, repository.ErrNotFound):
		// Group or user vanished between the lookup and the insert.
		if _, _, lookupErr := s.loadPair(ctx, group.ID, user.ID); lookupErr != nil {
			return lookupErr
		}
		return fmt.Errorf("add member: %w", err)
	case err != nil:
		return fmt.Errorf("add member: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info().Int("study_group_id", group.ID).Int("user_id", user.ID).Msg("User joined study group")
	return nil
}

// LeaveStudyGroup moves the (group, user) pair from Member to NotMember.
// Leaving a group the user is not in is ErrNotAMember, not a no-op.
func (s *StudyGroupService) LeaveStudyGroup(ctx context.Context, studyGroupID, userID int) (err error) {
	defer func() { s.observe("leave", err) }()

	group, user, err := s.loadPair(ctx, studyGroupID, userID)
	if err != nil {
		return err
	}
	if err := group.RemoveMember(user.ID); errors.Is(err, model.ErrNotAMember) {
		return ErrNotAMember
	}

	err = s.groupRepo.RemoveMember(ctx, group.ID, user.ID)
	switch {
	case errors.Is(err, repository.ErrMembershipNotFound):
		return ErrNotAMember
	case err != nil:
		return fmt.Errorf("remove member: %w", err)
	}

	s.invalidate(ctx)
	s.log.Info().Int("study_group_id", group.ID).Int("user_id", user.ID).Msg("User left study group")
	return nil
}

// ListUsers returns every user known to the user store.
func (s *StudyGroupService) ListUsers(ctx context.Context) ([]model.User, error) {
	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	if users == nil {
		users = []model.User{}
	}
	return users, nil
}

func (s *StudyGroupService) loadPair(ctx context.Context, studyGroupID, userID int) (*model.StudyGroup, *model.User, error) {
	group, err := s.groupRepo.GetByID(ctx, studyGroupID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrGroupNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get study group: %w", err)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, ErrUserNotFound
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}
	return group, user, nil
}

func (s *StudyGroupService) cachedList(ctx context.Context) ([]model.StudyGroup, bool) {
	if s.cache == nil {
		return nil, false
	}
	groups, ok, err := s.cache.GetList(ctx)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Msg("Study group cache read failed")
		s.observeCache("error")
		return nil, false
	case !ok:
		s.observeCache("miss")
		return nil, false
	}
	s.observeCache("hit")
	return groups, true
}

func (s *StudyGroupService) cacheGeneration(ctx context.Context) (int64, bool) {
	if s.cache == nil {
		return 0, false
	}
	gen, err := s.cache.Generation(ctx)
	if err != nil {
		s.log.Warn().Err(err).Msg("Study group cache generation read failed")
		return 0, false
	}
	return gen, true
}

func (s *StudyGroupService) fillCache(ctx context.Context, gen int64, groups []model.StudyGroup) {
	stored, err := s.cache.SetList(ctx, gen, groups)
	switch {
	case err != nil:
		s.log.Warn().Err(err).Msg("Failed to cache study group list")
	case !stored:
		s.log.Debug().Int64("generation", gen).Msg("Study group list changed during read, not cached")
	}
}

func (s *StudyGroupService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx); err != nil {
		s.log.Warn().Err(err).Msg("Failed to invalidate study group cache")
	}
}

func (s *StudyGroupService) observe(operation string, err error) {
	if s.recorder == nil {
		return
	}
	s.recorder.ObserveOperation(operation, Outcome(err))
}

func (s *StudyGroupService) observeCache(result string) {
	if s.recorder != nil {
		s.recorder.ObserveCacheLookup(result)
	}
}

// Outcome names the result of an operation for metrics and logs.
func Outcome(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, ErrNameTaken):
		return "name_taken"
	case errors.Is(err, ErrSubjectTaken):
		return "subject_taken"
	case errors.Is(err, ErrGroupNotFound):
		return "group_not_found"
	case errors.Is(err, ErrUserNotFound):
		return "user_not_found"
	case errors.Is(err, ErrAlreadyMember):
		return "already_member"
	case errors.Is(err, ErrNotAMember):
		return "not_a_member"
	default:
		return "error"
	}
}
