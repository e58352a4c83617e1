package models

// UploadsPrefix is the public mount point under which stored files are served.
const UploadsPrefix = "/uploads/"

type ContentItem struct {
	ID               int       `json:"id"`
	Title            string    `json:"title"`
	Description      string    `json:"description"`
	Type             string    `json:"type"`
	Path             string    `json:"path"`
	OriginalFilename string    `json:"original_filename"`
	OwnerID          int       `json:"owner_id"`
	CreatedAt        Timestamp `json:"created_at"`
}
