package models

import "time"

const (
	DefaultAdminUsername = "admin"
	DefaultAdminEmail    = "admin@inhouse52.com"
	// DefaultAdminDigest is the legacy SHA-256 digest of "admin123".
	DefaultAdminDigest = "240be518fabd2724ddb6f04eeb1da5967448d7e831c08c8fa822809f74c720a9"
)

// AppState is the whole persisted document.
type AppState struct {
	Users         []User        `json:"users"`
	Content       []ContentItem `json:"content"`
	NextUserID    int           `json:"next_user_id"`
	NextContentID int           `json:"next_content_id"`
}

// DefaultState is the bootstrap document used when nothing has been persisted yet.
func DefaultState(now time.Time) *AppState {
	return &AppState{
		Users: []User{{
			ID:        1,
			Username:  DefaultAdminUsername,
			Email:     DefaultAdminEmail,
			Password:  DefaultAdminDigest,
			Role:      RoleAdmin,
			CreatedAt: NewTimestamp(now),
		}},
		Content:       []ContentItem{},
		NextUserID:    2,
		NextContentID: 1,
	}
}

// Normalize repairs nil slices and counters that would reuse an existing id.
func (s *AppState) Normalize() {
	if s.Users == nil {
		s.Users = []User{}
	}
	if s.Content == nil {
		s.Content = []ContentItem{}
	}
	for _, u := range s.Users {
		if u.ID >= s.NextUserID {
			s.NextUserID = u.ID + 1
		}
	}
	for _, c := range s.Content {
		if c.ID >= s.NextContentID {
			s.NextContentID = c.ID + 1
		}
	}
	if s.NextUserID < 1 {
		s.NextUserID = 1
	}
	if s.NextContentID < 1 {
		s.NextContentID = 1
	}
}

// Clone returns a copy that shares no slices with s.
func (s *AppState) Clone() *AppState {
	out := &AppState{
		Users:         make([]User, len(s.Users)),
		Content:       make([]ContentItem, len(s.Content)),
		NextUserID:    s.NextUserID,
		NextContentID: s.NextContentID,
	}
	copy(out.Users, s.Users)
	copy(out.Content, s.Content)
	return out
}

func (s *AppState) UserByID(id int) (User, bool) {
	for _, u := range s.Users {
		if u.ID == id {
			return u, true
		}
	}
	return User{}, false
}

func (s *AppState) UserByUsername(username string) (User, bool) {
	for _, u := range s.Users {
		if u.Username == username {
			return u, true
		}
	}
	return User{}, false
}

func (s *AppState) UsernameTaken(username string) bool {
	_, ok := s.UserByUsername(username)
	return ok
}

func (s *AppState) EmailTaken(email string) bool {
	for _, u := range s.Users {
		if u.Email == email {
			return true
		}
	}
	return false
}

// AddUser assigns the next user id to u, appends it and advances the counter.
func (s *AppState) AddUser(u User) User {
	u.ID = s.NextUserID
	s.Users = append(s.Users, u)
	s.NextUserID++
	return u
}

// ReplaceUser overwrites the stored user with the same id.
func (s *AppState) ReplaceUser(u User) bool {
	for i := range s.Users {
		if s.Users[i].ID == u.ID {
			s.Users[i] = u
			return true
		}
	}
	return false
}

// AddContent assigns the next content id to item, appends it and advances the counter.
func (s *AppState) AddContent(item ContentItem) ContentItem {
	item.ID = s.NextContentID
	s.Content = append(s.Content, item)
	s.NextContentID++
	return item
}

func (s *AppState) ContentByID(id int) (ContentItem, bool) {
	for _, c := range s.Content {
		if c.ID == id {
			return c, true
		}
	}
	return ContentItem{}, false
}

func (s *AppState) ContentByOwner(ownerID int) []ContentItem {
	items := make([]ContentItem, 0)
	for _, c := range s.Content {
		if c.OwnerID == ownerID {
			items = append(items, c)
		}
	}
	return items
}

// RemoveContent filters the item with the given id out of the content list.
func (s *AppState) RemoveContent(id int) bool {
	kept := make([]ContentItem, 0, len(s.Content))
	removed := false
	for _, c := range s.Content {
		if c.ID == id {
			removed = true
			continue
		}
		kept = append(kept, c)
	}
	s.Content = kept
	return removed
}
