package models

import "fmt"

// Role is a user's access level. Admin satisfies every role check.
type Role string

const (
	RoleStudent Role = "student"
	RoleMentor  Role = "mentor"
	RolePartner Role = "partner"
	RoleAdmin   Role = "admin"
)

// Roles lists every valid role.
var Roles = []Role{RoleStudent, RoleMentor, RolePartner, RoleAdmin}

// ValidateRole checks that a role string is one of the allowed values.
func ValidateRole(role string) error {
	switch Role(role) {
	case RoleStudent, RoleMentor, RolePartner, RoleAdmin:
		return nil
	default:
		return fmt.Errorf("invalid role %q", role)
	}
}

// Satisfies reports whether a caller holding r passes a check for required.
func (r Role) Satisfies(required Role) bool {
	return r == RoleAdmin || r == required
}

// User fields as stored in the users collection.
const (
	FieldID           = "id"
	FieldName         = "name"
	FieldEmail        = "email"
	FieldPassword     = "password"
	FieldRole         = "role"
	FieldIsActive     = "isActive"
	FieldPhone        = "phone"
	FieldBio          = "bio"
	FieldSkills       = "skills"
	FieldInterests    = "interests"
	FieldProfileImage = "profileImage"
	FieldLanguage     = "language"
	FieldCreatedAt    = "createdAt"
	FieldUpdatedAt    = "updatedAt"
)

// User is a typed view over a users-collection record.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	IsActive     bool
	Record       Record // the full stored record, password included
}

// UserFromRecord builds the typed view of a users record.
func UserFromRecord(rec Record) *User {
	if rec == nil {
		return nil
	}
	return &User{
		ID:           rec.ID(),
		Name:         rec.String(FieldName),
		Email:        rec.String(FieldEmail),
		PasswordHash: rec.String(FieldPassword),
		Role:         Role(rec.String(FieldRole)),
		IsActive:     rec.Bool(FieldIsActive),
		Record:       rec,
	}
}

// Public returns the stored record without the password field.
func (u *User) Public() Record {
	if u == nil || u.Record == nil {
		return nil
	}
	return u.Record.Without(FieldPassword)
}

// Sanitize strips the password field from every record in the slice.
func Sanitize(records []Record) []Record {
	out := make([]Record, 0, len(records))
	for _, rec := range records {
		out = append(out, rec.Without(FieldPassword))
	}
	return out
}
