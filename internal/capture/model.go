package capture

import (
	"time"

	"github.com/triptally/triptally/internal/user"
)

// Capture is a shared trip photo or memory.
type Capture struct {
	ID         string    `json:"id"`
	TripID     string    `json:"tripId"`
	UploadedBy string    `json:"uploadedBy"`
	FileName   string    `json:"fileName"`
	FileURL    string    `json:"fileUrl"`
	Caption    string    `json:"caption,omitempty"`
	UploadedAt time.Time `json:"uploadedAt"`

	// Populated from the user directory
	UploadedByUser *user.User `json:"uploadedByUser,omitempty"`
}
