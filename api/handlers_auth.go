package api

import (
	"net/http"

	"techhub/auth"
	"techhub/config"
	"techhub/models"
	"techhub/utils"

	"github.com/gin-gonic/gin"
)

// SessionResponse is the data returned by register and login.
type SessionResponse struct {
	User  models.Record `json:"user"`
	Token string        `json:"token"`
}

// --- Register ---

// RegisterHandler creates a new account and logs it in.
// @Summary      Register a New Account
// @Description  Creates a user account and returns it together with a session token, so the client is logged in straight away.
// @Description
// @Description  `name`, `email` and `password` are required. The password must be at least 6 characters.
// @Description  `role` may be `student` (default), `mentor` or `partner`. Admin accounts cannot be self-registered.
// @Description  The password is stored as a bcrypt hash and is never returned.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        user body auth.RegisterInput true "Account details"
// @Success      201  {object}  utils.Response{data=SessionResponse} "Registration successful"
// @Failure      400  {object}  utils.Response "Missing or invalid fields"
// @Failure      409  {object}  utils.Response "A user with this email already exists"
// @Failure      500  {object}  utils.Response "Server error or JWT secret missing"
// @Router       /api/auth/register [post]
func RegisterHandler(c *gin.Context, svc *auth.Service, cfg *config.Config) {
	var in auth.RegisterInput
	if !bindJSON(c, &in) {
		return
	}
	// No account is created without a signing secret.
	if err := svc.TokensConfigured(); err != nil {
		utils.RespondError(c, err)
		return
	}

	rec, err := svc.Register(in)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	token, err := svc.IssueToken(models.UserFromRecord(rec))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.GinOK(c, http.StatusCreated, "Registration successful", SessionResponse{User: rec, Token: token})
}

// --- Login ---

// LoginRequest is the login payload.
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginHandler exchanges credentials for a session token.
// @Summary      Log In
// @Description  Verifies email and password and returns the user with a signed session token (valid for the configured lifetime, 7 days by default).
// @Description  Send the token as `Authorization: Bearer <token>` on protected routes. Deactivated accounts are refused with 403.
// @Description  Attempts are rate limited per client IP.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Param        credentials body LoginRequest true "Email and password"
// @Success      200  {object}  utils.Response{data=SessionResponse} "Login successful"
// @Failure      400  {object}  utils.Response "Email or password missing"
// @Failure      401  {object}  utils.Response "Invalid email or password"
// @Failure      403  {object}  utils.Response "Account deactivated"
// @Failure      429  {object}  utils.Response "Too many login attempts"
// @Failure      500  {object}  utils.Response "Server error or JWT secret missing"
// @Router       /api/auth/login [post]
func LoginHandler(c *gin.Context, svc *auth.Service, cfg *config.Config) {
	var req LoginRequest
	if !bindJSON(c, &req) {
		return
	}
	user, err := svc.VerifyCredentials(req.Email, req.Password)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	token, err := svc.IssueToken(user)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.GinOK(c, http.StatusOK, "Login successful", SessionResponse{User: user.Public(), Token: token})
}

// --- Current User ---

// MeHandler returns the authenticated user's record.
// @Summary      Get Current User
// @Tags         Auth
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  utils.Response "The user, without password"
// @Failure      401  {object}  utils.Response "Missing or invalid token"
// @Failure      404  {object}  utils.Response "User not found"
// @Router       /api/auth/me [get]
func MeHandler(c *gin.Context, svc *auth.Service, cfg *config.Config) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	rec, err := svc.GetUser(claims.ID)
	if err != nil {
		respondErr(c, err, "User not found")
		return
	}
	utils.GinOK(c, http.StatusOK, "", rec)
}

// UpdateProfileHandler updates the caller's own profile.
// @Summary      Update Your Profile
// @Description  Changes any of `name`, `phone`, `bio`, `skills`, `interests`, `language`, `profileImage`.
// @Description  Empty values are ignored. Email, role, password and account state cannot be changed here.
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        profile body object true "Fields to change"
// @Success      200  {object}  utils.Response "Profile updated successfully"
// @Failure      400  {object}  utils.Response "Invalid request body"
// @Failure      401  {object}  utils.Response "Missing or invalid token"
// @Failure      404  {object}  utils.Response "User not found"
// @Router       /api/auth/profile [put]
func UpdateProfileHandler(c *gin.Context, svc *auth.Service, cfg *config.Config) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	fields := map[string]any{}
	if !bindJSON(c, &fields) {
		return
	}
	rec, err := svc.UpdateProfile(claims.ID, fields)
	if err != nil {
		respondErr(c, err, "User not found")
		return
	}
	utils.GinOK(c, http.StatusOK, "Profile updated successfully", rec)
}

// ChangePasswordRequest is the change-password payload.
type ChangePasswordRequest struct {
	OldPassword string `json:"oldPassword"`
	NewPassword string `json:"newPassword"`
}

// ChangePasswordHandler replaces the caller's password.
// @Summary      Change Password
// @Tags         Auth
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        passwords body ChangePasswordRequest true "Old and new password"
// @Success      200  {object}  utils.Response "Password changed successfully"
// @Failure      400  {object}  utils.Response "Missing fields, short new password or wrong old password"
// @Failure      401  {object}  utils.Response "Missing or invalid token"
// @Router       /api/auth/change-password [put]
func ChangePasswordHandler(c *gin.Context, svc *auth.Service, cfg *config.Config) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var req ChangePasswordRequest
	if !bindJSON(c, &req) {
		return
	}
	if err := svc.ChangePassword(claims.ID, req.OldPassword, req.NewPassword); err != nil {
		respondErr(c, err, "User not found")
		return
	}
	utils.GinOK(c, http.StatusOK, "Password changed successfully", nil)
}
