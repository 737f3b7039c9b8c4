package users

import (
	"fmt"
	"strings"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"
)

// RoleType is the single role a portal user holds
type RoleType string

const (
	RoleAdmin          RoleType = "admin"           // Manages users, projects and indicators
	RoleProjectManager RoleType = "project_manager" // Runs projects and reports their indicators
	RoleDonor          RoleType = "donor"           // Read-only view of funded projects
)

// Roles lists every valid role
var Roles = []RoleType{RoleAdmin, RoleProjectManager, RoleDonor}

func (r RoleType) Valid() bool {
	for _, role := range Roles {
		if r == role {
			return true
		}
	}
	return false
}

// DashboardPath is the page a user of this role lands on after login
func (r RoleType) DashboardPath() string {
	switch r {
	case RoleAdmin:
		return "/admin"
	case RoleProjectManager:
		return "/project-manager"
	case RoleDonor:
		return "/donor"
	}
	return "/"
}

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name"`
	Role         RoleType  `json:"role"`
	PasswordHash string    `json:"-"` // Only populated when the local identity provider owns credentials
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Patch holds the mutable profile fields; nil means unchanged
type Patch struct {
	FullName *string   `json:"full_name,omitempty"`
	Role     *RoleType `json:"role,omitempty"`
}

// Apply copies the set fields of p onto u
func (p Patch) Apply(u *User, now time.Time) {
	if p.FullName != nil {
		u.FullName = strings.TrimSpace(*p.FullName)
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	u.UpdatedAt = now
}

// NormaliseEmail lower-cases and trims an address so lookups are case-insensitive
func NormaliseEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidatePasswordStrength checks if password meets security requirements:
// - At least 8 characters long
// - Contains uppercase and lowercase letters
// - Contains at least one number
func ValidatePasswordStrength(password string) error {
	if len(password) < 8 {
		return fmt.Errorf("password must be at least 8 characters long")
	}

	var (
		hasUpper  bool
		hasLower  bool
		hasNumber bool
	)

	for _, char := range password {
		if unicode.IsUpper(char) {
			hasUpper = true
		} else if unicode.IsLower(char) {
			hasLower = true
		} else if unicode.IsDigit(char) {
			hasNumber = true
		}
	}

	if !hasUpper {
		return fmt.Errorf("password must contain at least one uppercase letter")
	}
	if !hasLower {
		return fmt.Errorf("password must contain at least one lowercase letter")
	}
	if !hasNumber {
		return fmt.Errorf("password must contain at least one number")
	}

	return nil
}

func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

func CheckPasswordHash(password, hash string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
	return err == nil
}

// CheckPassword checks a password against the user's stored hash
func (u *User) CheckPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	return CheckPasswordHash(password, u.PasswordHash)
}

func (u *User) HasRole(roles ...RoleType) bool {
	for _, r := range roles {
		if u.Role == r {
			return true
		}
	}
	return false
}
