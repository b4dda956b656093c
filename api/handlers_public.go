package api

import (
	"net/http"

	"techhub/config"
	"techhub/db"
	"techhub/models"
	"techhub/utils"

	"github.com/gin-gonic/gin"
)

// RootHandler answers with the service banner.
func RootHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Youth Tech Hub API", "version": "1.0.0"})
}

// HealthHandler is the liveness check.
// @Summary      Health Check
// @Tags         Public
// @Produce      json
// @Success      200  {object}  utils.Response "ok"
// @Router       /health [get]
func HealthHandler(c *gin.Context) {
	utils.GinOK(c, http.StatusOK, "ok", nil)
}

// ListPublicTutorialsHandler lists tutorials.
// @Summary      List Tutorials
// @Description  Lists every tutorial. Narrow the list with one or more `filter` parameters of the form `field eq value`,
// @Description  for example `?filter=level eq "beginner"&filter=duration eq 30`. Strings may be quoted; numbers, `true`/`false` and `null` keep their type.
// @Description  Nested fields use dots: `?filter=author.name eq "Ann"`. All filters must match.
// @Tags         Public
// @Produce      json
// @Param        filter query []string false "field eq value" collectionFormat(multi)
// @Success      200  {object}  utils.Response "Tutorials with count"
// @Failure      400  {object}  utils.Response "Malformed filter"
// @Router       /api/public/tutorials [get]
func ListPublicTutorialsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	listCollection(c, database, models.CollectionTutorials, nil)
}

// GetPublicTutorialHandler returns one tutorial.
// @Summary      Get Tutorial
// @Tags         Public
// @Produce      json
// @Param        id path string true "Tutorial ID"
// @Success      200  {object}  utils.Response "The tutorial"
// @Failure      404  {object}  utils.Response "Tutorial not found"
// @Router       /api/public/tutorials/{id} [get]
func GetPublicTutorialHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	getRecord(c, database, models.CollectionTutorials, "Tutorial not found")
}

// ListPublicInternshipsHandler lists internships. Same filter syntax as tutorials.
// @Summary      List Internships
// @Tags         Public
// @Produce      json
// @Param        filter query []string false "field eq value" collectionFormat(multi)
// @Success      200  {object}  utils.Response "Internships with count"
// @Failure      400  {object}  utils.Response "Malformed filter"
// @Router       /api/public/internships [get]
func ListPublicInternshipsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	listCollection(c, database, models.CollectionInternships, nil)
}

// GetPublicInternshipHandler returns one internship.
// @Summary      Get Internship
// @Tags         Public
// @Produce      json
// @Param        id path string true "Internship ID"
// @Success      200  {object}  utils.Response "The internship"
// @Failure      404  {object}  utils.Response "Internship not found"
// @Router       /api/public/internships/{id} [get]
func GetPublicInternshipHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	getRecord(c, database, models.CollectionInternships, "Internship not found")
}

// PublicStats are the headline numbers shown on the landing page.
type PublicStats struct {
	TotalUsers        int `json:"totalUsers"`
	TotalTutorials    int `json:"totalTutorials"`
	TotalInternships  int `json:"totalInternships"`
	TotalApplications int `json:"totalApplications"`
}

// PublicStatsHandler returns collection sizes.
// @Summary      Public Statistics
// @Tags         Public
// @Produce      json
// @Success      200  {object}  utils.Response{data=PublicStats}
// @Router       /api/public/stats [get]
func PublicStatsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	doc, err := database.ReadAll()
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.GinOK(c, http.StatusOK, "", PublicStats{
		TotalUsers:        len(doc[models.CollectionUsers]),
		TotalTutorials:    len(doc[models.CollectionTutorials]),
		TotalInternships:  len(doc[models.CollectionInternships]),
		TotalApplications: len(doc[models.CollectionApplications]),
	})
}
