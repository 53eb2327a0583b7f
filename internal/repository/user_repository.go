package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/stemsi/studygroups-backend/internal/model"
)

type userRepository struct {
	pool *pgxpool.Pool
}

// NewUserRepository creates a PostgreSQL-backed UserRepository.
func NewUserRepository(pool *pgxpool.Pool) UserRepository {
	return &userRepository{pool: pool}
}

// List returns all users with the ids of the groups they belong to.
func (r *userRepository) List(ctx context.Context) ([]model.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT u.id, u.email, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
		        COALESCE(array_agg(m.study_group_id ORDER BY m.study_group_id)
		                 FILTER (WHERE m.study_group_id IS NOT NULL), '{}')
		 FROM users u
		 LEFT JOIN study_group_members m ON m.user_id = u.id
		 GROUP BY u.id
		 ORDER BY u.id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := []model.User{}
	for rows.Next() {
		var u model.User
		var groups []int32
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &groups); err != nil {
			return nil, err
		}
		u.Groups = toInts(groups)
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetByID retrieves a user by ID.
func (r *userRepository) GetByID(ctx context.Context, id int) (*model.User, error) {
	u := &model.User{}
	var groups []int32
	err := r.pool.QueryRow(ctx,
		`SELECT u.id, u.email, COALESCE(u.first_name, ''), COALESCE(u.last_name, ''),
		        COALESCE(array_agg(m.study_group_id ORDER BY m.study_group_id)
		                 FILTER (WHERE m.study_group_id IS NOT NULL), '{}')
		 FROM users u
		 LEFT JOIN study_group_members m ON m.user_id = u.id
		 WHERE u.id = $1
		 GROUP BY u.id`, id,
	).Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName, &groups)
	if err != nil {
		return nil, classifyPgError(err)
	}
	u.Groups = toInts(groups)
	return u, nil
}

// Create inserts a new user.
func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	err := r.pool.QueryRow(ctx,
		`INSERT INTO users (email, first_name, last_name)
		 VALUES ($1, NULLIF($2, ''), NULLIF($3, ''))
		 RETURNING id`,
		u.Email, u.FirstName, u.LastName,
	).Scan(&u.ID)
	return classifyPgError(err)
}

func toInts(in []int32) []int {
	out := make([]int, len(in))
	for i, v := range in {
		out[i] = int(v)
	}
	return out
}
