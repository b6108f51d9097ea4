package dto

import "anoa.com/nawhoknow/internal/entity"

type CreateUserInput struct {
	Username string `json:"username" form:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" form:"email" binding:"required,email"`
	Password string `json:"password" form:"password" binding:"required,min=8"`
	Role     string `json:"role" form:"role" binding:"required"`
}

type UpdateUserInput struct {
	Username string `json:"username" form:"username"`
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
	Role     string `json:"role" form:"role"`
	Points   *int   `json:"points" form:"points"`
}

type AdminUserResponse struct {
	User *entity.User `json:"user"`
	Role *entity.Role `json:"role"`
}
