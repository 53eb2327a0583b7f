package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/studygroups-backend/internal/model"
)

type studyGroupRepository struct {
	pool *pgxpool.Pool
}

// NewStudyGroupRepository creates a PostgreSQL-backed StudyGroupRepository.
func NewStudyGroupRepository(pool *pgxpool.Pool) StudyGroupRepository {
	return &studyGroupRepository{pool: pool}
}

// selectGroupsWithMembers joins members eagerly; groups without members come back
// with NULL user columns.
const selectGroupsWithMembers = `
	SELECT g.id, g.name, g.subject, g.created_at,
	       u.id, u.email, u.first_name, u.last_name
	FROM study_groups g
	LEFT JOIN study_group_members m ON m.study_group_id = g.id
	LEFT JOIN users u ON u.id = m.user_id`

func (r *studyGroupRepository) Create(ctx context.Context, g model.NewStudyGroup) (*model.StudyGroup, error) {
	var id int
	err := r.pool.QueryRow(ctx,
		`INSERT INTO study_groups (name, subject, created_at)
		 VALUES ($1, $2, $3)
		 RETURNING id`,
		g.Name, int(g.Subject), g.CreatedAt,
	).Scan(&id)
	if err != nil {
		return nil, classifyPgError(err)
	}
	saved := g.Saved(id)
	return &saved, nil
}

func (r *studyGroupRepository) List(ctx context.Context) ([]model.StudyGroup, error) {
	return r.query(ctx, selectGroupsWithMembers+` ORDER BY g.id, m.joined_at, u.id`)
}

func (r *studyGroupRepository) ListBySubject(ctx context.Context, subject model.Subject) ([]model.StudyGroup, error) {
	return r.query(ctx, selectGroupsWithMembers+` WHERE g.subject = $1 ORDER BY g.id, m.joined_at, u.id`, int(subject))
}

func (r *studyGroupRepository) GetByID(ctx context.Context, id int) (*model.StudyGroup, error) {
	groups, err := r.query(ctx, selectGroupsWithMembers+` WHERE g.id = $1 ORDER BY m.joined_at, u.id`, id)
	if err != nil {
		return nil, err
	}
	if len(groups) == 0 {
		return nil, ErrNotFound
	}
	return &groups[0], nil
}

func (r *studyGroupRepository) AddMember(ctx context.Context, groupID, userID int) error {
	tag, err := r.pool.Exec(ctx,
		`INSERT INTO study_group_members (study_group_id, user_id)
		 VALUES ($1, $2)
		 ON CONFLICT (study_group_id, user_id) DO NOTHING`,
		groupID, userID,
	)
	if err != nil {
		return classifyPgError(err)
	}
	return requireAffected(tag, ErrDuplicateMembership)
}

func (r *studyGroupRepository) RemoveMember(ctx context.Context, groupID, userID int) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM study_group_members WHERE study_group_id = $1 AND user_id = $2`,
		groupID, userID,
	)
	if err != nil {
		return err
	}
	return requireAffected(tag, ErrMembershipNotFound)
}

// groupMemberRow is one row of selectGroupsWithMembers. The user columns are
// NULL for a group without members.
type groupMemberRow struct {
	groupID   int
	name      string
	subject   int
	createdAt time.Time
	userID    *int
	email     *string
	firstName *string
	lastName  *string
}

// query scans the flattened group/member rows and folds them into groups.
func (r *studyGroupRepository) query(ctx context.Context, sql string, args ...any) ([]model.StudyGroup, error) {
	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var scanned []groupMemberRow
	for rows.Next() {
		var row groupMemberRow
		if err := rows.Scan(&row.groupID, &row.name, &row.subject, &row.createdAt,
			&row.userID, &row.email, &row.firstName, &row.lastName); err != nil {
			return nil, err
		}
		scanned = append(scanned, row)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return foldGroupRows(scanned)
}

// foldGroupRows groups rows by group id, keeping the order in which each group
// first appears and the row order of its members.
func foldGroupRows(rows []groupMemberRow) ([]model.StudyGroup, error) {
	groups := []model.StudyGroup{}
	index := make(map[int]int)
	for _, row := range rows {
		i, seen := index[row.groupID]
		if !seen {
			s := model.Subject(row.subject)
			if !s.Valid() {
				return nil, fmt.Errorf("study group %d: %w: %d", row.groupID, model.ErrUnknownSubject, row.subject)
			}
			groups = append(groups, model.StudyGroup{
				ID:        row.groupID,
				Name:      row.name,
				Subject:   s,
				CreatedAt: row.createdAt.UTC(),
				Members:   []model.User{},
			})
			i = len(groups) - 1
			index[row.groupID] = i
		}

		if row.userID != nil {
			groups[i].Members = append(groups[i].Members, model.User{
				ID:        *row.userID,
				Email:     deref(row.email),
				FirstName: deref(row.firstName),
				LastName:  deref(row.lastName),
			})
		}
	}
	return groups, nil
}

// requireAffected returns none when the command touched no rows.
func requireAffected(tag pgconn.CommandTag, none error) error {
	if tag.RowsAffected() == 0 {
		return none
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
