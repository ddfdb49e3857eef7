package core

import (
	"net/netip"
	"regexp"
	"strings"

	"evalportal/internal/platform/apperr"
)

var emailPattern = regexp.MustCompile(`^[a-zA-Z0-9._%+-]+@[a-zA-Z0-9.-]+\.[a-zA-Z]{2,}$`)

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func ValidEmail(email string) bool {
	return emailPattern.MatchString(email)
}

// ValidIPv4 accepts dotted-quad addresses only.
func ValidIPv4(value string) bool {
	addr, err := netip.ParseAddr(value)
	return err == nil && addr.Is4()
}

func validateEmployee(in EmployeeInput, creating bool) error {
	switch {
	case strings.TrimSpace(in.FullName) == "":
		return apperr.Validation("fullName", "is required")
	case strings.TrimSpace(in.Email) == "":
		return apperr.Validation("email", "is required")
	case !ValidEmail(strings.TrimSpace(in.Email)):
		return apperr.Validation("email", "must be a valid email address")
	case !in.Role.Valid():
		return apperr.Validation("role", "must be one of admin, manager, employee")
	case strings.TrimSpace(in.DepartmentID) == "":
		return apperr.Validation("departmentId", "is required")
	case strings.TrimSpace(in.PositionID) == "":
		return apperr.Validation("positionId", "is required")
	case in.IPAddress != "" && !ValidIPv4(strings.TrimSpace(in.IPAddress)):
		return apperr.Validation("ipAddress", "must be an IPv4 address such as 192.168.1.1")
	case creating && in.Password == "":
		return apperr.Validation("password", "is required")
	case in.Password != "" && len(in.Password) < 8:
		return apperr.Validation("password", "must be at least 8 characters")
	}
	return nil
}
