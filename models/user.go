package models

import "time"

type User struct {
	ID          int       `json:"id"`
	ExternalUID string    `json:"-"`
	DisplayName string    `json:"displayName"`
	AvatarURL   *string   `json:"avatarUrl,omitempty"`
	Bio         *string   `json:"bio,omitempty"`
	TwitterURL  *string   `json:"twitterUrl,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
