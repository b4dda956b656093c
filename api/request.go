package api

import (
	"errors"
	"io"
	"net/http"

	"techhub/auth"
	"techhub/db"
	"techhub/models"
	"techhub/utils"

	"github.com/gin-gonic/gin"
)

// bindJSON decodes the request body into v. An empty body leaves v at its zero
// value so the handler's own required-field checks produce the message.
func bindJSON(c *gin.Context, v any) bool {
	if err := c.ShouldBindJSON(v); err != nil && !errors.Is(err, io.EOF) {
		utils.GinBadRequest(c, "Invalid request body")
		return false
	}
	return true
}

// currentClaims returns the caller's verified claims. Handlers behind Authenticate
// always have them; a miss is reported as unauthenticated.
func currentClaims(c *gin.Context) (*auth.Claims, bool) {
	claims, ok := auth.ClaimsFrom(c)
	if !ok {
		utils.RespondError(c, models.ErrUnauthenticated)
	}
	return claims, ok
}

// respondErr is RespondError with a resource-specific not-found message.
func respondErr(c *gin.Context, err error, notFound string) {
	if errors.Is(err, models.ErrNotFound) {
		utils.GinNotFound(c, notFound)
		return
	}
	utils.RespondError(c, err)
}

// filterQuery parses the repeated ?filter= parameter. On a bad filter it answers 400.
func filterQuery(c *gin.Context) (db.Query, bool) {
	q, err := db.ParseFilters(c.QueryArray("filter"))
	if err != nil {
		utils.GinBadRequest(c, err.Error())
		return nil, false
	}
	return q, true
}

// listCollection answers with every record of collection matching ?filter=.
func listCollection(c *gin.Context, database *db.Database, collection string, base db.Query) {
	q, ok := filterQuery(c)
	if !ok {
		return
	}
	recs, err := database.FindMany(collection, append(base[:len(base):len(base)], q...))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.GinList(c, recs)
}

// getRecord answers with the record addressed by the :id path parameter.
func getRecord(c *gin.Context, database *db.Database, collection, notFound string) {
	rec, err := database.FindByID(collection, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if rec == nil {
		utils.GinNotFound(c, notFound)
		return
	}
	utils.GinOK(c, http.StatusOK, "", rec)
}
