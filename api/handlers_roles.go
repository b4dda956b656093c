package api

import (
	"errors"
	"net/http"
	"strings"

	"techhub/auth"
	"techhub/config"
	"techhub/db"
	"techhub/logger"
	"techhub/models"
	"techhub/utils"

	"github.com/gin-gonic/gin"
)

var (
	errInternshipNotFound = errors.New("internship not found")
	errInternshipClosed   = errors.New("internship is not accepting applications")
	errAlreadyApplied     = errors.New("already applied to this internship")
)

// Application statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// InternshipOpen is the status of an internship accepting applications.
const InternshipOpen = "open"

// --- Student ---

// ApplyRequest is a student's application to an internship.
type ApplyRequest struct {
	InternshipID any    `json:"internshipId" swaggertype:"string"`
	CoverLetter  string `json:"coverLetter"`
}

// ApplyHandler submits an application for the calling student.
// @Summary      Apply to an Internship
// @Description  Creates a `pending` application for the caller and bumps the internship's `applicants` counter.
// @Description  The internship must exist and be `open`, and a student can apply to each internship only once.
// @Tags         Student
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        application body ApplyRequest true "Internship and cover letter"
// @Success      201  {object}  utils.Response "Application submitted successfully"
// @Failure      400  {object}  utils.Response "Missing internshipId or internship closed"
// @Failure      403  {object}  utils.Response "Not a student"
// @Failure      404  {object}  utils.Response "Internship not found"
// @Failure      409  {object}  utils.Response "Already applied"
// @Router       /api/student/applications [post]
func ApplyHandler(c *gin.Context, database *db.Database, svc *auth.Service, cfg *config.Config) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var req ApplyRequest
	if !bindJSON(c, &req) {
		return
	}
	if models.IDString(req.InternshipID) == "" {
		utils.GinBadRequest(c, "Please provide internshipId")
		return
	}

	student, err := svc.GetUser(claims.ID)
	if err != nil {
		respondErr(c, err, "User not found")
		return
	}

	// The checks, the insert and the applicant counter share one write lock.
	var app models.Record
	err = database.Transact(func(tx *db.Tx) error {
		internship := tx.FindByID(models.CollectionInternships, req.InternshipID)
		if internship == nil {
			return errInternshipNotFound
		}
		if status := internship.String("status"); status != "" && status != InternshipOpen {
			return errInternshipClosed
		}
		if tx.FindOne(models.CollectionApplications,
			db.WhereID("studentId", claims.ID).AndID("internshipId", internship.ID())) != nil {
			return errAlreadyApplied
		}

		app = tx.Insert(models.CollectionApplications, models.Record{
			"internshipId":    internship[models.FieldID],
			"internshipTitle": internship.String("title"),
			"studentId":       claims.ID,
			"studentName":     student.String(models.FieldName),
			"studentEmail":    student.String(models.FieldEmail),
			"coverLetter":     req.CoverLetter,
			"status":          StatusPending,
		})
		tx.Update(models.CollectionInternships, internship.ID(), models.Record{
			"applicants":          models.IDNumber(internship["applicants"]) + 1,
			models.FieldUpdatedAt: models.Now(),
		})
		return nil
	})
	switch {
	case errors.Is(err, errInternshipNotFound):
		utils.GinNotFound(c, "Internship not found")
		return
	case errors.Is(err, errInternshipClosed):
		utils.GinBadRequest(c, "Internship is not accepting applications")
		return
	case errors.Is(err, errAlreadyApplied):
		utils.GinError(c, http.StatusConflict, "You have already applied to this internship")
		return
	case err != nil:
		utils.RespondError(c, err)
		return
	}
	logger.Log.Infof("Student %s applied to internship %s", claims.ID, models.IDString(app["internshipId"]))

	utils.GinOK(c, http.StatusCreated, "Application submitted successfully", app)
}

// MyApplicationsHandler lists the calling student's applications.
// @Summary      List Your Applications
// @Tags         Student
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  utils.Response "Applications with count"
// @Router       /api/student/applications [get]
func MyApplicationsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	listCollection(c, database, models.CollectionApplications, db.WhereID("studentId", claims.ID))
}

// --- Mentor ---

// MentorStudentsHandler lists the students assigned to the calling mentor.
// @Summary      List Your Students
// @Description  Resolves the caller's mentorships to the student accounts (without passwords). Students that no longer exist are skipped.
// @Tags         Mentor
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  utils.Response "Students with count"
// @Failure      403  {object}  utils.Response "Not a mentor"
// @Router       /api/mentor/students [get]
func MentorStudentsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	mentorships, err := database.FindMany(models.CollectionMentorships, db.WhereID("mentorId", claims.ID))
	if err != nil {
		utils.RespondError(c, err)
		return
	}

	students := make([]models.Record, 0, len(mentorships))
	seen := map[string]bool{}
	for _, m := range mentorships {
		id := models.IDString(m["studentId"])
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true
		rec, err := database.FindByID(models.CollectionUsers, id)
		if err != nil {
			utils.RespondError(c, err)
			return
		}
		if rec != nil {
			students = append(students, rec.Without(models.FieldPassword))
		}
	}
	utils.GinList(c, students)
}

// --- Partner ---

// InternshipRequest is the payload for posting an internship.
type InternshipRequest struct {
	Title        string   `json:"title"`
	Company      string   `json:"company"`
	Description  string   `json:"description"`
	Requirements []string `json:"requirements"`
	Duration     string   `json:"duration"`
	Stipend      float64  `json:"stipend"`
	Location     string   `json:"location"`
}

// createInternship validates and stores an internship posted by the caller.
func createInternship(c *gin.Context, database *db.Database) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	var req InternshipRequest
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Title) == "" || strings.TrimSpace(req.Company) == "" || strings.TrimSpace(req.Description) == "" {
		utils.GinBadRequest(c, "Please provide title, company, and description")
		return
	}
	if req.Requirements == nil {
		req.Requirements = []string{}
	}
	if req.Duration == "" {
		req.Duration = "3 months"
	}
	if req.Location == "" {
		req.Location = "Remote"
	}

	rec, err := database.Insert(models.CollectionInternships, models.Record{
		"title":        req.Title,
		"company":      req.Company,
		"description":  req.Description,
		"requirements": req.Requirements,
		"duration":     req.Duration,
		"stipend":      req.Stipend,
		"location":     req.Location,
		"postedBy":     claims.ID,
		"applicants":   0,
		"status":       InternshipOpen,
	})
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	utils.GinOK(c, http.StatusCreated, "Internship posted successfully", rec)
}

// PostInternshipHandler posts an internship owned by the calling partner.
// @Summary      Post an Internship
// @Description  `title`, `company` and `description` are required. Defaults: duration `3 months`, location `Remote`, stipend 0.
// @Tags         Partner
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        internship body InternshipRequest true "Internship details"
// @Success      201  {object}  utils.Response "Internship posted successfully"
// @Failure      400  {object}  utils.Response "Missing fields"
// @Failure      403  {object}  utils.Response "Not a partner"
// @Router       /api/partner/internships [post]
func PostInternshipHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	createInternship(c, database)
}

// MyInternshipsHandler lists internships posted by the caller.
// @Summary      List Your Internships
// @Tags         Partner
// @Produce      json
// @Security     BearerAuth
// @Success      200  {object}  utils.Response "Internships with count"
// @Router       /api/partner/internships [get]
func MyInternshipsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	listCollection(c, database, models.CollectionInternships, db.WhereID("postedBy", claims.ID))
}

// InternshipApplicationsHandler lists applications to one of the caller's internships.
// @Summary      List Applications for Your Internship
// @Description  Only the partner who posted the internship (or an admin) may see its applications.
// @Tags         Partner
// @Produce      json
// @Security     BearerAuth
// @Param        id path string true "Internship ID"
// @Success      200  {object}  utils.Response "Applications with count"
// @Failure      403  {object}  utils.Response "Not your internship"
// @Failure      404  {object}  utils.Response "Internship not found"
// @Router       /api/partner/internships/{id}/applications [get]
func InternshipApplicationsHandler(c *gin.Context, database *db.Database, cfg *config.Config) {
	claims, ok := currentClaims(c)
	if !ok {
		return
	}
	internship, err := database.FindByID(models.CollectionInternships, c.Param("id"))
	if err != nil {
		utils.RespondError(c, err)
		return
	}
	if internship == nil {
		utils.GinNotFound(c, "Internship not found")
		return
	}
	if claims.Role != models.RoleAdmin && models.IDString(internship["postedBy"]) != claims.ID {
		utils.GinForbidden(c, "You can only view applications for your own internships")
		return
	}
	listCollection(c, database, models.CollectionApplications, db.WhereID("internshipId", internship.ID()))
}
