package api

import (
	"net/http"
	"strings"

	"techhub/auth"
	"techhub/config"
	"techhub/db"
	"techhub/models"
	"techhub/utils"

	"github.com/gin-gonic/gin"
)

// ========== USERS MANAGEMENT ==========

// AdminListUsersHandler lists users.
// @Summary      List Users
// @Description  Lists all users without passwords. `role` limits the list to one role; `search` matches name, email or bio case-insensitively.
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        role    query string false "student, mentor, partner or admin"
// @Param        search  query string false "Substring of name, email or bio"
// @Success      200  {object}  utils.Response "Users with count"
// @Failure      400  {object}  utils.Response "Invalid role"
// @Failure      403  {object}  utils.Response "Not an admin"
// @Router       /api/admin/users [get]
func AdminListUsersHandler(c *gin.Context, svc *auth.Service, cfg *config.Config) {
	users, err := svc.ListUsers(c.Query("role"), c.Query("search"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.GinList(c, users)
}

// AdminUserStatsHandler counts users per role.
// @Summary      User Statistics
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  utils.Response{data=auth.UserStats}
// @Router       /api/admin/users/stats [get]
func AdminUserStatsHandler(c *gin.Context, svc *auth.Service, cfg *config.Config) {
	stats, err := svc.UserStats()
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.GinOK(c, http.StatusOK, "", stats)
}

// AdminGetUserHandler returns one user.
// @Summary      Get User
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200  {object}  utils.Response "The user"
// @Failure      404  {object}  utils.Response "User not found"
// @Router       /api/admin/users/{id} [get]
func AdminGetUserHandler(c *gin.Context, svc *auth.Service, cfg *config.Config) {
	rec, err := svc.GetUser(c.Param("id"))
	if err != nil {
		respondErr(c, err, "User not found")
		return
	}
	utils.GinOK(c, http.StatusOK, "", rec)
}

// AdminDeleteUserHandler deletes a user other than the caller.
// @Summary      Delete User
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "User ID"
// @Success      200  {object}  utils.Response "User deleted successfully"
// @Failure      400  {object}  utils.Response "Cannot delete your own account"
// @Failure      404  {object}  utils.Response "User not found"
// @Router       /api/admin/users/{id} [delete]
func AdminDeleteUserHandler(c *gin.Context, svc *auth.Service, cfg *config.Config) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	if err := svc.DeleteUser(claims.ID, c.Param("id")); err != nil {
		respondErr(c, err, "User not found")
		return
	}
	utils.GinOK(c, http.StatusOK, "User deleted successfully", nil)
}

// RoleRequest changes a user's role.
type RoleRequest struct {
	Role string `json:"role"`
}

// AdminSetRoleHandler changes a user's role.
// @Summary      Change User Role
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id    path string      true "User ID"
// @Param        role  body RoleRequest true "New role"
// @Success      200  {object}  utils.Response "User role updated"
// @Failure      400  {object}  utils.Response "Invalid role"
// @Failure      404  {object}  utils.Response "User not found"
// @Router       /api/admin/users/{id}/role [put]
func AdminSetRoleHandler(c *gin.Context, svc *auth.Service, cfg *config.Config) {
	var req RoleRequest
	if !bindJSON(c, &req) {
		return
	}
	rec, err := svc.SetRole(c.Param("id"), req.Role)
	if err != nil {
		respondErr(c, err, "User not found")
		return
	}
	utils.GinOK(c, http.StatusOK, "User role updated", rec)
}

// StatusRequest activates or deactivates a user.
type StatusRequest struct {
	IsActive *bool `json:"isActive"`
}

// AdminSetStatusHandler activates or deactivates a user. Deactivated users cannot log in.
// @Summary      Activate or Deactivate User
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string        true "User ID"
// @Param        status  body StatusRequest true "isActive flag"
// @Success      200  {object}  utils.Response "User status updated"
// @Failure      400  {object}  utils.Response "isActive missing"
// @Failure      404  {object}  utils.Response "User not found"
// @Router       /api/admin/users/{id}/status [put]
func AdminSetStatusHandler(c *gin.Context, svc *auth.Service, cfg *config.Config) {
	var req StatusRequest
	if !bindJSON(c, &req) {
		return
	}
	if req.IsActive == nil {
		utils.GinBadRequest(c, "Please provide isActive")
		return
	}
	rec, err := svc.SetActive(c.Param("id"), *req.IsActive)
	if err != nil {
		respondErr(c, err, "User not found")
		return
	}
	utils.GinOK(c, http.StatusOK, "User status updated", rec)
}

// ========== TUTORIALS MANAGEMENT ==========

// TutorialRequest is the payload for creating a tutorial.
type TutorialRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
	Content     string  `json:"content"`
	Level       string  `json:"level"`
	Duration    float64 `json:"duration"`
	Image       string  `json:"image"`
}

// AdminListTutorialsHandler lists tutorials (with ?filter=).
// @Summary      List Tutorials (Admin)
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        filter query []string false "field eq value" collectionFormat(multi)
// @Success      200  {object}  utils.Response "Tutorials with count"
// @Router       /api/admin/tutorials [get]
func AdminListTutorialsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	listCollection(c, database, models.CollectionTutorials, nil)
}

// AdminCreateTutorialHandler creates a tutorial.
// @Summary      Create Tutorial
// @Description  `title`, `description` and `category` are required. Level defaults to `beginner`.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        tutorial body TutorialRequest true "Tutorial"
// @Success      201  {object}  utils.Response "Tutorial created successfully"
// @Failure      400  {object}  utils.Response "Missing fields"
// @Router       /api/admin/tutorials [post]
func AdminCreateTutorialHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var req TutorialRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Description) == "" || strings.TrimSpace(req.Category) == "" {
		utils.GinBadRequest(c, "Please provide title, description, and category")
		return
	}
	if req.Level == "" {
		req.Level = "beginner"
	}

	rec, err := database.Insert(models.CollectionTutorials, models.Record{
		"title":       req.Title,
		"description": req.Description,
		"category":    req.Category,
		"content":     req.Content,
		"level":       req.Level,
		"duration":    req.Duration,
		"image":       req.Image,
		"createdBy":   claims.ID,
		"enrolled":    0,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.GinOK(c, http.StatusCreated, "Tutorial created successfully", rec)
}

// updateRecord merges the JSON body into the :id record. createdAt cannot be changed.
func updateRecord(c *gin.Context, database *db.Database, collection, message, notFound string) {
	patch := models.Record{}
	if !bindJSON(c, &patch) {
		return
	}
	delete(patch, models.FieldCreatedAt)
	patch[models.FieldUpdatedAt] = models.Now()

	rec, found, err := database.Update(collection, c.Param("id"), patch)
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !found {
		utils.GinNotFound(c, notFound)
		return
	}
	utils.GinOK(c, http.StatusOK, message, rec)
}

// deleteRecord removes the :id record.
func deleteRecord(c *gin.Context, database *db.Database, collection, message, notFound string) {
	removed, err := database.Delete(collection, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !removed {
		utils.GinNotFound(c, notFound)
		return
	}
	utils.GinOK(c, http.StatusOK, message, nil)
}

// AdminUpdateTutorialHandler merges fields into a tutorial.
// @Summary      Update Tutorial
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id        path string true "Tutorial ID"
// @Param        tutorial  body object true "Fields to change"
// @Success      200  {object}  utils.Response "Tutorial updated successfully"
// @Failure      404  {object}  utils.Response "Tutorial not found"
// @Router       /api/admin/tutorials/{id} [put]
func AdminUpdateTutorialHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	updateRecord(c, database, models.CollectionTutorials, "Tutorial updated successfully", "Tutorial not found")
}

// AdminDeleteTutorialHandler deletes a tutorial.
// @Summary      Delete Tutorial
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Tutorial ID"
// @Success      200  {object}  utils.Response "Tutorial deleted successfully"
// @Failure      404  {object}  utils.Response "Tutorial not found"
// @Router       /api/admin/tutorials/{id} [delete]
func AdminDeleteTutorialHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	deleteRecord(c, database, models.CollectionTutorials, "Tutorial deleted successfully", "Tutorial not found")
}

// ========== INTERNSHIPS MANAGEMENT ==========

// AdminListInternshipsHandler lists internships (with ?filter=).
// @Summary      List Internships (Admin)
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        filter query []string false "field eq value" collectionFormat(multi)
// @Success      200  {object}  utils.Response "Internships with count"
// @Router       /api/admin/internships [get]
func AdminListInternshipsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	listCollection(c, database, models.CollectionInternships, nil)
}

// AdminCreateInternshipHandler posts an internship on behalf of the platform.
// @Summary      Create Internship
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        internship body InternshipRequest true "Internship details"
// @Success      201  {object}  utils.Response "Internship posted successfully"
// @Failure      400  {object}  utils.Response "Missing fields"
// @Router       /api/admin/internships [post]
func AdminCreateInternshipHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	createInternship(c, database)
}

// AdminUpdateInternshipHandler merges fields into an internship.
// @Summary      Update Internship
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id          path string true "Internship ID"
// @Param        internship  body object true "Fields to change"
// @Success      200  {object}  utils.Response "Internship updated successfully"
// @Failure      404  {object}  utils.Response "Internship not found"
// @Router       /api/admin/internships/{id} [put]
func AdminUpdateInternshipHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	updateRecord(c, database, models.CollectionInternships, "Internship updated successfully", "Internship not found")
}

// AdminDeleteInternshipHandler deletes an internship.
// @Summary      Delete Internship
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Internship ID"
// @Success      200  {object}  utils.Response "Internship deleted successfully"
// @Failure      404  {object}  utils.Response "Internship not found"
// @Router       /api/admin/internships/{id} [delete]
func AdminDeleteInternshipHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	deleteRecord(c, database, models.CollectionInternships, "Internship deleted successfully", "Internship not found")
}

// ========== APPLICATIONS MANAGEMENT ==========

// AdminListApplicationsHandler lists applications (with ?filter=, e.g. status eq pending).
// @Summary      List Applications
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        filter query []string false "field eq value" collectionFormat(multi)
// @Success      200  {object}  utils.Response "Applications with count"
// @Router       /api/admin/applications [get]
func AdminListApplicationsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	listCollection(c, database, models.CollectionApplications, nil)
}

// ApplicationStatusRequest sets an application's review status.
type ApplicationStatusRequest struct {
	Status string `json:"status"`
}

// AdminSetApplicationStatusHandler reviews an application.
// @Summary      Update Application Status
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id      path string                   true "Application ID"
// @Param        status  body ApplicationStatusRequest true "pending, approved or rejected"
// @Success      200  {object}  utils.Response "Application status updated"
// @Failure      400  {object}  utils.Response "Invalid status"
// @Failure      404  {object}  utils.Response "Application not found"
// @Router       /api/admin/applications/{id}/status [put]
func AdminSetApplicationStatusHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	var req ApplicationStatusRequest
	if !bindJSON(c, &req) {
		return
	}
	switch req.Status {
	case StatusPending, StatusApproved, StatusRejected:
	default:
		utils.GinBadRequest(c, "Invalid status")
		return
	}

	rec, found, err := database.Update(models.CollectionApplications, c.Param("id"), models.Record{
		"status":              req.Status,
		models.FieldUpdatedAt: models.Now(),
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !found {
		utils.GinNotFound(c, "Application not found")
		return
	}
	utils.GinOK(c, http.StatusOK, "Application status updated", rec)
}

// ========== MENTORSHIPS MANAGEMENT ==========

// MentorshipRequest assigns a student to a mentor.
type MentorshipRequest struct {
	MentorID  any `json:"mentorId" swaggertype:"string"`
	StudentID any `json:"studentId" swaggertype:"string"`
}

// AdminListMentorshipsHandler lists mentorships (with ?filter=).
// @Summary      List Mentorships
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        filter query []string false "field eq value" collectionFormat(multi)
// @Success      200  {object}  utils.Response "Mentorships with count"
// @Router       /api/admin/mentorships [get]
func AdminListMentorshipsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	listCollection(c, database, models.CollectionMentorships, nil)
}

// AdminCreateMentorshipHandler assigns a student to a mentor.
// @Summary      Create Mentorship
// @Description  `mentorId` must be a mentor account and `studentId` a student account. Each pair can exist once.
// @Tags         Admin
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        mentorship body MentorshipRequest true "Mentor and student"
// @Success      201  {object}  utils.Response "Mentorship created successfully"
// @Failure      400  {object}  utils.Response "Unknown mentor or student"
// @Failure      409  {object}  utils.Response "Mentorship already exists"
// @Router       /api/admin/mentorships [post]
func AdminCreateMentorshipHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	var req MentorshipRequest
	if !bindJSON(c, &req) {
		return
	}
	mentorID, studentID := models.IDString(req.MentorID), models.IDString(req.StudentID)
	if mentorID == "" || studentID == "" {
		utils.GinBadRequest(c, "Please provide mentorId and studentId")
		return
	}

	for _, ref := range []struct {
		id   string
		role models.Role
		msg  string
	}{
		{mentorID, models.RoleMentor, "mentorId must reference a mentor"},
		{studentID, models.RoleStudent, "studentId must reference a student"},
	} {
		rec, err := database.FindByID(models.CollectionUsers, ref.id)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		if rec == nil || models.Role(rec.String(models.FieldRole)) != ref.role {
			utils.GinBadRequest(c, ref.msg)
			return
		}
	}

	rec, inserted, err := database.InsertUnique(models.CollectionMentorships,
		db.WhereID("mentorId", mentorID).AndID("studentId", studentID),
		models.Record{
			"mentorId":  mentorID,
			"studentId": studentID,
			"status":    "active",
		})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if !inserted {
		utils.GinError(c, http.StatusConflict, "Mentorship already exists")
		return
	}
	utils.GinOK(c, http.StatusCreated, "Mentorship created successfully", rec)
}

// AdminDeleteMentorshipHandler removes a mentorship.
// @Summary      Delete Mentorship
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Mentorship ID"
// @Success      200  {object}  utils.Response "Mentorship deleted successfully"
// @Failure      404  {object}  utils.Response "Mentorship not found"
// @Router       /api/admin/mentorships/{id} [delete]
func AdminDeleteMentorshipHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	deleteRecord(c, database, models.CollectionMentorships, "Mentorship deleted successfully", "Mentorship not found")
}

// ========== DASHBOARD STATS ==========

// DashboardStats are the admin dashboard aggregates.
type DashboardStats struct {
	TotalUsers           int            `json:"totalUsers"`
	TotalTutorials       int            `json:"totalTutorials"`
	TotalInternships     int            `json:"totalInternships"`
	TotalApplications    int            `json:"totalApplications"`
	UsersByRole          map[string]int `json:"usersByRole"`
	ApplicationsByStatus map[string]int `json:"applicationsByStatus"`
}

// AdminStatsHandler returns dashboard aggregates.
// @Summary      Dashboard Statistics
// @Tags         Admin
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  utils.Response{data=DashboardStats}
// @Router       /api/admin/stats [get]
func AdminStatsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	doc, err := database.ReadAll()
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	stats := DashboardStats{
		TotalUsers:        len(doc[models.CollectionUsers]),
		TotalTutorials:    len(doc[models.CollectionTutorials]),
		TotalInternships:  len(doc[models.CollectionInternships]),
		TotalApplications: len(doc[models.CollectionApplications]),
		UsersByRole:       map[string]int{"students": 0, "mentors": 0, "partners": 0, "admins": 0},
		ApplicationsByStatus: map[string]int{
			StatusPending: 0, StatusApproved: 0, StatusRejected: 0,
		},
	}
	for _, u := range doc[models.CollectionUsers] {
		if role := u.String(models.FieldRole); role != "" {
			if _, ok := stats.UsersByRole[role+"s"]; ok {
				stats.UsersByRole[role+"s"]++
			}
		}
	}
	for _, a := range doc[models.CollectionApplications] {
		if _, ok := stats.ApplicationsByStatus[a.String("status")]; ok {
			stats.ApplicationsByStatus[a.String("status")]++
		}
	}
	utils.GinOK(c, http.StatusOK, "", stats)
}
