package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/stemsi/studygroups-backend/internal/model"
)

var (
	ErrNotFound            = errors.New("record not found")
	ErrDuplicateName       = errors.New("study group with this name already exists")
	ErrDuplicateSubject    = errors.New("study group for this subject already exists")
	ErrDuplicateMembership = errors.New("membership already exists")
	ErrMembershipNotFound  = errors.New("membership not found")
	ErrDuplicateEmail      = errors.New("user with this email already exists")
)

// Constraint names from migrations/000001_init.up.sql.
const (
	constraintGroupName    = "study_groups_name_key"
	constraintGroupSubject = "study_groups_subject_key"
	constraintMembership   = "study_group_members_pkey"
	constraintUserEmail    = "users_email_key"
)

const (
	pgUniqueViolation     = "23505"
	pgForeignKeyViolation = "23503"
)

// StudyGroupRepository is the durable store of study groups and their memberships.
// Every group returned carries its members.
type StudyGroupRepository interface {
	Create(ctx context.Context, g model.NewStudyGroup) (*model.StudyGroup, error)
	List(ctx context.Context) ([]model.StudyGroup, error)
	ListBySubject(ctx context.Context, subject model.Subject) ([]model.StudyGroup, error)
	GetByID(ctx context.Context, id int) (*model.StudyGroup, error)
	AddMember(ctx context.Context, groupID, userID int) error
	RemoveMember(ctx context.Context, groupID, userID int) error
}

// UserRepository reads users owned by the user-management side. Create exists for seeding.
type UserRepository interface {
	List(ctx context.Context) ([]model.User, error)
	GetByID(ctx context.Context, id int) (*model.User, error)
	Create(ctx context.Context, u *model.User) error
}

// classifyPgError maps unique violations to the repository's duplicate errors by
// constraint name. pgx.ErrNoRows and foreign key violations become ErrNotFound.
// Other errors pass through.
func classifyPgError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return ErrNotFound
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	if pgErr.Code == pgForeignKeyViolation {
		return ErrNotFound
	}
	if pgErr.Code == pgUniqueViolation {
		switch pgErr.ConstraintName {
		case constraintGroupName:
			return ErrDuplicateName
		case constraintGroupSubject:
			return ErrDuplicateSubject
		case constraintMembership:
			return ErrDuplicateMembership
		case constraintUserEmail:
			return ErrDuplicateEmail
		}
	}
	return err
}
