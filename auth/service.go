// Package auth holds account registration, credential checks, session tokens and
// the gin middleware that gates routes by role.
package auth

import (
	"fmt"
	"regexp"
	"strings"

	"techhub/config"
	"techhub/db"
	"techhub/logger"
	"techhub/models"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// Service implements the account operations on top of the record store.
type Service struct {
	db  *db.Database
	cfg *config.Config
}

// NewService creates the auth service.
func NewService(database *db.Database, cfg *config.Config) *Service {
	return &Service{db: database, cfg: cfg}
}

// RegisterInput is the self-registration payload.
type RegisterInput struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
	Language string `json:"language"`
}

// Register validates input, hashes the password and stores a new active user.
// The returned record never contains the password.
func (s *Service) Register(in RegisterInput) (models.Record, error) {
	if in.Name == "" || in.Email == "" || in.Password == "" {
		return nil, models.NewValidationError("Please provide name, email, and password")
	}
	if !emailPattern.MatchString(in.Email) {
		return nil, models.NewValidationError("Please provide a valid email address")
	}
	if len(in.Password) < MinPasswordLength {
		return nil, models.NewValidationError(fmt.Sprintf("Password must be at least %d characters long", MinPasswordLength))
	}

	role := models.RoleStudent
	if in.Role != "" {
		role = models.Role(in.Role)
		if models.ValidateRole(in.Role) != nil || role == models.RoleAdmin {
			return nil, models.NewValidationError("Role must be one of student, mentor or partner")
		}
	}
	language := in.Language
	if language == "" {
		language = "en"
	}

	existing, err := s.db.FindOne(models.CollectionUsers, db.Where(models.FieldEmail, in.Email))
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.ErrDuplicateEmail
	}

	hash, err := HashPassword(in.Password, s.cfg.BcryptCost)
	if err != nil {
		return nil, err
	}

	// The lookup above skips hashing for the common case; InsertUnique settles races.
	rec, inserted, err := s.db.InsertUnique(models.CollectionUsers, db.Where(models.FieldEmail, in.Email), models.Record{
		models.FieldName:         in.Name,
		models.FieldEmail:        in.Email,
		models.FieldPassword:     hash,
		models.FieldRole:         string(role),
		models.FieldPhone:        in.Phone,
		models.FieldLanguage:     language,
		models.FieldSkills:       []any{},
		models.FieldInterests:    []any{},
		models.FieldBio:          "",
		models.FieldProfileImage: "",
		models.FieldIsActive:     true,
	})
	if err != nil {
		return nil, err
	}
	if !inserted {
		return nil, models.ErrDuplicateEmail
	}
	logger.Log.Infof("Registered user ID: %s (%s)", rec.ID(), role)
	return rec.Without(models.FieldPassword), nil
}

// VerifyCredentials returns the user for a correct email/password pair. The
// password is checked before the account state.
func (s *Service) VerifyCredentials(email, password string) (*models.User, error) {
	if email == "" || password == "" {
		return nil, models.NewValidationError("Please provide email and password")
	}
	rec, err := s.db.FindOne(models.CollectionUsers, db.Where(models.FieldEmail, email))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, models.ErrInvalidCredentials
	}
	user := models.UserFromRecord(rec)
	if !verifyPassword(password, user.PasswordHash, s.cfg.PlaintextPasswordsAllowed()) {
		return nil, models.ErrInvalidCredentials
	}
	if !user.IsActive {
		return nil, models.ErrInactiveAccount
	}
	return user, nil
}

// IssueToken signs a session token for user.
func (s *Service) IssueToken(user *models.User) (string, error) {
	return GenerateJWT(user, s.cfg.JwtSecret, s.cfg.TokenLifetime)
}

// VerifyToken validates a session token and returns its claims.
func (s *Service) VerifyToken(token string) (*Claims, error) {
	return ValidateJWT(token, s.cfg.JwtSecret)
}

// TokensConfigured reports ErrConfiguration when no signing secret is set.
func (s *Service) TokensConfigured() error {
	if s.cfg.JwtSecret == "" {
		return fmt.Errorf("%w: JWT secret is not configured", models.ErrConfiguration)
	}
	return nil
}

// ChangePassword replaces the password of user id after checking the old one.
// The new password's length is validated before the old password is verified.
func (s *Service) ChangePassword(id, oldPassword, newPassword string) error {
	if oldPassword == "" || newPassword == "" {
		return models.NewValidationError("Please provide old and new password")
	}
	if len(newPassword) < MinPasswordLength {
		return models.NewValidationError(fmt.Sprintf("New password must be at least %d characters long", MinPasswordLength))
	}
	rec, err := s.db.FindByID(models.CollectionUsers, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	if !verifyPassword(oldPassword, rec.String(models.FieldPassword), s.cfg.PlaintextPasswordsAllowed()) {
		return models.ErrInvalidOldPassword
	}

	hash, err := HashPassword(newPassword, s.cfg.BcryptCost)
	if err != nil {
		return err
	}
	_, found, err := s.db.Update(models.CollectionUsers, id, models.Record{
		models.FieldPassword:  hash,
		models.FieldUpdatedAt: models.Now(),
	})
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	logger.Log.Infof("Password changed for user ID: %s", id)
	return nil
}

// profileFields are the only fields a user may change on their own profile.
var profileFields = []string{
	models.FieldName,
	models.FieldPhone,
	models.FieldBio,
	models.FieldSkills,
	models.FieldInterests,
	models.FieldLanguage,
	models.FieldProfileImage,
}

// UpdateProfile applies the allowed, non-empty fields to user id.
func (s *Service) UpdateProfile(id string, fields map[string]any) (models.Record, error) {
	patch := models.Record{}
	for _, f := range profileFields {
		v, ok := fields[f]
		if !ok || isEmpty(v) {
			continue
		}
		patch[f] = v
	}
	patch[models.FieldUpdatedAt] = models.Now()

	rec, found, err := s.db.Update(models.CollectionUsers, id, patch)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return rec.Without(models.FieldPassword), nil
}

func isEmpty(v any) bool {
	switch t := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(t) == ""
	default:
		return false
	}
}

// GetUser returns user id without its password.
func (s *Service) GetUser(id string) (models.Record, error) {
	rec, err := s.db.FindByID(models.CollectionUsers, id)
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	return rec.Without(models.FieldPassword), nil
}

// ListUsers returns users without passwords, optionally limited to one role and
// to a case-insensitive search over name, email and bio.
func (s *Service) ListUsers(role, search string) ([]models.Record, error) {
	var q db.Query
	if role != "" {
		if err := models.ValidateRole(role); err != nil {
			return nil, models.NewValidationError("Invalid role")
		}
		q = db.Where(models.FieldRole, role)
	}
	recs, err := s.db.FindMany(models.CollectionUsers, q)
	if err != nil {
		return nil, err
	}

	needle := strings.ToLower(strings.TrimSpace(search))
	if needle != "" {
		filtered := recs[:0:0]
		for _, rec := range recs {
			for _, f := range []string{models.FieldName, models.FieldEmail, models.FieldBio} {
				if strings.Contains(strings.ToLower(rec.String(f)), needle) {
					filtered = append(filtered, rec)
					break
				}
			}
		}
		recs = filtered
	}
	return models.Sanitize(recs), nil
}

// SetRole changes the role of user id.
func (s *Service) SetRole(id, role string) (models.Record, error) {
	if err := models.ValidateRole(role); err != nil {
		return nil, models.NewValidationError("Invalid role")
	}
	return s.patchUser(id, models.Record{models.FieldRole: role})
}

// SetActive enables or disables login for user id.
func (s *Service) SetActive(id string, active bool) (models.Record, error) {
	return s.patchUser(id, models.Record{models.FieldIsActive: active})
}

func (s *Service) patchUser(id string, patch models.Record) (models.Record, error) {
	patch[models.FieldUpdatedAt] = models.Now()
	rec, found, err := s.db.Update(models.CollectionUsers, id, patch)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("user %s: %w", id, models.ErrNotFound)
	}
	logger.Log.Infof("Updated user ID: %s", id)
	return rec.Without(models.FieldPassword), nil
}

// DeleteUser removes target on behalf of actor. Nobody can delete themselves.
func (s *Service) DeleteUser(actorID, targetID string) error {
	if models.IDString(actorID) == models.IDString(targetID) {
		return models.NewValidationError("Cannot delete your own account")
	}
	removed, err := s.db.Delete(models.CollectionUsers, targetID)
	if err != nil {
		return err
	}
	if !removed {
		return fmt.Errorf("user %s: %w", targetID, models.ErrNotFound)
	}
	return nil
}

// UserStats counts users per role and how many are active.
type UserStats struct {
	Total    int `json:"total"`
	Students int `json:"students"`
	Mentors  int `json:"mentors"`
	Partners int `json:"partners"`
	Admins   int `json:"admins"`
	Active   int `json:"active"`
}

// UserStats aggregates the users collection.
func (s *Service) UserStats() (UserStats, error) {
	recs, err := s.db.List(models.CollectionUsers)
	if err != nil {
		return UserStats{}, err
	}
	stats := UserStats{Total: len(recs)}
	for _, rec := range recs {
		switch models.Role(rec.String(models.FieldRole)) {
		case models.RoleStudent:
			stats.Students++
		case models.RoleMentor:
			stats.Mentors++
		case models.RolePartner:
			stats.Partners++
		case models.RoleAdmin:
			stats.Admins++
		}
		if rec.Bool(models.FieldIsActive) {
			stats.Active++
		}
	}
	return stats, nil
}

// FirstAdmin returns the first user holding the admin role, or ErrNotFound.
func (s *Service) FirstAdmin() (*models.User, error) {
	rec, err := s.db.FindOne(models.CollectionUsers, db.Where(models.FieldRole, string(models.RoleAdmin)))
	if err != nil {
		return nil, err
	}
	if rec == nil {
		return nil, fmt.Errorf("admin user: %w", models.ErrNotFound)
	}
	return models.UserFromRecord(rec), nil
}

// SeedAdminRecord builds the first-run admin from config with a hashed password.
func SeedAdminRecord(cfg *config.Config) (models.Record, error) {
	hash, err := HashPassword(cfg.SeedAdminPassword, cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	now := models.Now()
	return models.Record{
		models.FieldID:           "1",
		models.FieldName:         cfg.SeedAdminName,
		models.FieldEmail:        cfg.SeedAdminEmail,
		models.FieldPassword:     hash,
		models.FieldRole:         string(models.RoleAdmin),
		models.FieldPhone:        "",
		models.FieldLanguage:     "en",
		models.FieldSkills:       []any{},
		models.FieldInterests:    []any{},
		models.FieldBio:          "",
		models.FieldProfileImage: "",
		models.FieldIsActive:     true,
		models.FieldCreatedAt:    now,
		models.FieldUpdatedAt:    now,
	}, nil
}

// BootstrapAdmin inserts seed verbatim when not in production and there are no
// users yet. It reports whether anything was inserted.
func (s *Service) BootstrapAdmin(seed models.Record) (bool, error) {
	if s.cfg.IsProduction() {
		return false, nil
	}
	n, err := s.db.Count(models.CollectionUsers, nil)
	if err != nil {
		return false, err
	}
	if n > 0 {
		logger.Log.Info("Using existing users from database")
		return false, nil
	}
	if _, err := s.db.Insert(models.CollectionUsers, seed); err != nil {
		return false, err
	}
	logger.Log.Infof("Created default admin (%s)", seed.String(models.FieldEmail))
	return true, nil
}
