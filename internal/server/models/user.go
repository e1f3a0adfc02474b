// Package models defines server-side data models persisted in the database
// and the projections returned to clients.
package models

// User is a registered portal account. PasswordHash holds the encoded
// credential and must never leave the server.
type User struct {
	ID           int64   `db:"id"`
	Username     string  `db:"username"`
	PasswordHash string  `db:"password"`
	FullName     string  `db:"full_name"`
	Email        string  `db:"email"`
	Mobile       string  `db:"mobile"`
	IsActive     bool    `db:"is_active"`
	LastLogin    *string `db:"last_login"`
}

// PublicUser is the client-facing projection of User.
type PublicUser struct {
	ID        int64   `json:"id"`
	Username  string  `json:"username"`
	FullName  string  `json:"fullName"`
	Email     string  `json:"email"`
	Mobile    string  `json:"mobile"`
	IsActive  bool    `json:"isActive"`
	LastLogin *string `json:"lastLogin"`
}

// Public strips the credential.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:        u.ID,
		Username:  u.Username,
		FullName:  u.FullName,
		Email:     u.Email,
		Mobile:    u.Mobile,
		IsActive:  u.IsActive,
		LastLogin: u.LastLogin,
	}
}
