package dto

type RegisterDTO struct {
	Name     string `json:"name" binding:"required"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=8"`
}

type ActivateDTO struct {
	ActivationToken string `json:"activation_token" binding:"required"`
	ActivationCode  string `json:"activation_code" binding:"required"`
}

type LoginDTO struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

type SocialAuthDTO struct {
	Email  string `json:"email" binding:"required,email"`
	Name   string `json:"name" binding:"required"`
	Avatar string `json:"avatar"`
}

type UpdateProfileDTO struct {
	Name  string `json:"name"`
	Email string `json:"email" binding:"omitempty,email"`
}

type UpdatePasswordDTO struct {
	OldPassword string `json:"oldPassword" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required,min=8"`
}

type UpdateAvatarDTO struct {
	Avatar string `json:"avatar" binding:"required"`
}
