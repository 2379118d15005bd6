package database

import (
	"context"
)

const getUserByEmployeeID = `
SELECT id, name, email, employee_id, password_hash, role, status, created_at, updated_at
FROM users
WHERE employee_id = $1
`

func (q *Queries) GetUserByEmployeeID(ctx context.Context, employeeID string) (User, error) {
	row := q.db.QueryRow(ctx, getUserByEmployeeID, employeeID)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.EmployeeID, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const getUserByID = `
SELECT id, name, email, employee_id, password_hash, role, status, created_at, updated_at
FROM users
WHERE id = $1
`

func (q *Queries) GetUserByID(ctx context.Context, id int64) (User, error) {
	row := q.db.QueryRow(ctx, getUserByID, id)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.EmployeeID, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const listUsers = `
SELECT id, name, email, employee_id, password_hash, role, status, created_at, updated_at
FROM users
ORDER BY created_at DESC
`

func (q *Queries) ListUsers(ctx context.Context) ([]User, error) {
	rows, err := q.db.Query(ctx, listUsers)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	var items []User
	for rows.Next() {
		var u User
		if err := rows.Scan(&u.ID, &u.Name, &u.Email, &u.EmployeeID, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, err
		}
		items = append(items, u)
	}
	return items, rows.Err()
}

const countUsersByEmailOrEmployeeID = `
SELECT count(*) FROM users WHERE (email = $1 OR employee_id = $2) AND id <> $3
`

type CountUsersByEmailOrEmployeeIDParams struct {
	Email      string
	EmployeeID string
	ExcludeID  int64
}

// CountUsersByEmailOrEmployeeID reports how many other users already hold
// the given email or employee id. ExcludeID = 0 checks against everyone.
func (q *Queries) CountUsersByEmailOrEmployeeID(ctx context.Context, arg CountUsersByEmailOrEmployeeIDParams) (int64, error) {
	row := q.db.QueryRow(ctx, countUsersByEmailOrEmployeeID, arg.Email, arg.EmployeeID, arg.ExcludeID)
	var count int64
	err := row.Scan(&count)
	return count, err
}

const createUser = `
INSERT INTO users (name, email, employee_id, password_hash, role, status)
VALUES ($1, $2, $3, $4, $5, $6)
RETURNING id, name, email, employee_id, password_hash, role, status, created_at, updated_at
`

type CreateUserParams struct {
	Name         string
	Email        string
	EmployeeID   string
	PasswordHash string
	Role         string
	Status       string
}

func (q *Queries) CreateUser(ctx context.Context, arg CreateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, createUser,
		arg.Name, arg.Email, arg.EmployeeID, arg.PasswordHash, arg.Role, arg.Status)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.EmployeeID, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const updateUser = `
UPDATE users
SET name = $1, email = $2, employee_id = $3, role = $4, status = $5, updated_at = now()
WHERE id = $6
RETURNING id, name, email, employee_id, password_hash, role, status, created_at, updated_at
`

type UpdateUserParams struct {
	Name       string
	Email      string
	EmployeeID string
	Role       string
	Status     string
	ID         int64
}

func (q *Queries) UpdateUser(ctx context.Context, arg UpdateUserParams) (User, error) {
	row := q.db.QueryRow(ctx, updateUser,
		arg.Name, arg.Email, arg.EmployeeID, arg.Role, arg.Status, arg.ID)
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.EmployeeID, &u.PasswordHash, &u.Role, &u.Status, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

const updateUserPassword = `
UPDATE users SET password_hash = $1, updated_at = now() WHERE id = $2
RETURNING id
`

type UpdateUserPasswordParams struct {
	PasswordHash string
	ID           int64
}

func (q *Queries) UpdateUserPassword(ctx context.Context, arg UpdateUserPasswordParams) (int64, error) {
	row := q.db.QueryRow(ctx, updateUserPassword, arg.PasswordHash, arg.ID)
	var id int64
	err := row.Scan(&id)
	return id, err
}

const countActiveUsers = `
SELECT count(*) FROM users WHERE status = 'Active'
`

func (q *Queries) CountActiveUsers(ctx context.Context) (int64, error) {
	row := q.db.QueryRow(ctx, countActiveUsers)
	var count int64
	err := row.Scan(&count)
	return count, err
}
