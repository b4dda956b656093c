package api

import (
	"net/http"

	"techhub/auth"
	"techhub/config"
	"techhub/utils"

	"github.com/gin-gonic/gin"
)

// DevTokenUser is the identity a dev token was issued for.
type DevTokenUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

// DevTokenResponse is returned by the dev admin-token helper.
type DevTokenResponse struct {
	Token string       `json:"token"`
	User  DevTokenUser `json:"user"`
}

// DevAdminTokenHandler issues a token for the first admin account, for local testing.
// @Summary      Development Admin Token
// @Description  Returns a session token for the first admin in the database. Disabled (403) in production.
// @Tags         Dev
// @Produce      json
// @Success      200  {object}  utils.Response{data=DevTokenResponse}
// @Failure      403  {object}  utils.Response "Not available in production"
// @Failure      404  {object}  utils.Response "No admin user found in DB"
// @Failure      500  {object}  utils.Response "JWT secret not configured"
// @Router       /dev/admin-token [get]
func DevAdminTokenHandler(c *gin.Context, svc *auth.Service, cfg *config.Config) {
	if cfg.IsProduction() {
		utils.GinForbidden(c, "Not available in production")
		return
	}
	admin, err := svc.FirstAdmin()
	if err != nil {
		respondErr(c, err, "No admin user found in DB")
		return
	}
	token, err := svc.IssueToken(admin)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.GinOK(c, http.StatusOK, "", DevTokenResponse{
		Token: token,
		User:  DevTokenUser{ID: admin.ID, Email: admin.Email, Role: string(admin.Role)},
	})
}
