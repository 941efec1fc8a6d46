package registry

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"react2give/pkg/models"

	"github.com/go-sql-driver/mysql"
)

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const userColumns = `id, name, email, COALESCE(date_of_birth, ''), COALESCE(mobile_number, ''), COALESCE(gender, ''),
	COALESCE(age_group, ''), COALESCE(marital_status, ''), COALESCE(address, ''), COALESCE(profile_image_url, ''),
	role, created_at`

func scanUser(row interface{ Scan(...any) error }) (*models.User, error) {
	var u models.User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.DateOfBirth, &u.MobileNumber, &u.Gender,
		&u.AgeGroup, &u.MaritalStatus, &u.Address, &u.ProfileImageURL, &u.Role, &u.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (s *Store) CreateUser(ctx context.Context, u *models.User) error {
	if u.Role == "" {
		u.Role = models.RoleDonor
	}
	query := `INSERT INTO users (id, name, email, date_of_birth, mobile_number, gender, age_group,
			  marital_status, address, profile_image_url, role) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := s.db.ExecContext(ctx, query, u.ID, u.Name, u.Email, u.DateOfBirth, u.MobileNumber, u.Gender,
		u.AgeGroup, u.MaritalStatus, u.Address, u.ProfileImageURL, u.Role)
	if isDuplicate(err) {
		return ErrAlreadyExists
	}
	if err != nil {
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	u, err := scanUser(s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM users WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("query user: %w", err)
	}
	return u, nil
}

// UpdateUser replaces the editable profile fields. Email and role are not editable here.
func (s *Store) UpdateUser(ctx context.Context, u *models.User) error {
	if _, err := s.GetUser(ctx, u.ID); err != nil {
		return err
	}
	query := `UPDATE users SET name = ?, date_of_birth = ?, mobile_number = ?, gender = ?, age_group = ?,
			  marital_status = ?, address = ?, profile_image_url = ? WHERE id = ?`
	_, err := s.db.ExecContext(ctx, query, u.Name, u.DateOfBirth, u.MobileNumber, u.Gender, u.AgeGroup,
		u.MaritalStatus, u.Address, u.ProfileImageURL, u.ID)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	return nil
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM users ORDER BY created_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("query users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	return s.deleteByID(ctx, "users", id)
}

func (s *Store) deleteByID(ctx context.Context, table, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM "+table+" WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("delete from %s: %w", table, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return ErrNotFound
	}
	return nil
}

func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == 1062
}
