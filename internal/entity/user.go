package entity

import "time"

type User struct {
	ID        int       `json:"id"`
	Name      string    `json:"name"`
	Image     *string   `json:"image,omitempty"` // base64, как лежит в БД
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type CreateUserRequest struct {
	Name  string
	Image *string
}

// UserResponse - наружу картинка уходит только как imageBase64
type UserResponse struct {
	ID          int       `json:"id"`
	Name        string    `json:"name"`
	ImageBase64 *string   `json:"imageBase64,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type ListUsersResponse struct {
	Users      []UserResponse `json:"users"`
	Total      int            `json:"total"`
	Page       int            `json:"page"`
	Limit      int            `json:"limit"`
	TotalPages int            `json:"totalPages"`
}

type UserSummary struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

type UpdateImageResponse struct {
	Message string      `json:"message"`
	User    UserSummary `json:"user"`
}
