package models

type Role string

const (
	RoleAdmin        Role = "admin"
	RoleCollaborator Role = "collaborator"
)

func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleCollaborator
}

// CanViewAllContent reports whether the role may list content owned by others.
func (r Role) CanViewAllContent() bool {
	return r == RoleAdmin
}

// CanManageContent reports whether the role may delete content it does not own.
func (r Role) CanManageContent() bool {
	return r == RoleAdmin
}

func (r Role) CanManageUsers() bool {
	return r == RoleAdmin
}

type User struct {
	ID        int       `json:"id"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Password  string    `json:"password"` // digest, never the plaintext
	Role      Role      `json:"role"`
	CreatedAt Timestamp `json:"created_at"`
}

// PublicUser is the shape returned to API clients.
type PublicUser struct {
	ID       int    `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Email:    u.Email,
		Role:     u.Role,
	}
}

// CanDelete reports whether u may delete the given content item.
func (u User) CanDelete(item ContentItem) bool {
	return item.OwnerID == u.ID || u.Role.CanManageContent()
}
