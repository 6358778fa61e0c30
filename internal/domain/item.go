package domain

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultItemVersion is the version assigned to a freshly created item.
const DefaultItemVersion = "1.0.0"

// Item is one label being processed through the pipeline.
// CreatedBy is set once at creation and never changes. DepartmentID,
// once set, determines ADMIN-tier visibility; it is nullable for
// legacy data.
type Item struct {
	ID           uuid.UUID
	Name         string
	Type         string
	DepartmentID *string
	Version      string
	Description  *string
	CreatedBy    uuid.UUID
	UpdatedBy    uuid.UUID
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// BumpPatchVersion advances a major.minor.patch version by one patch
// level. Malformed versions reset to the default.
func BumpPatchVersion(version string) string {
	parts := strings.Split(version, ".")
	if len(parts) != 3 {
		return DefaultItemVersion
	}
	patch, err := strconv.Atoi(parts[2])
	if err != nil {
		return DefaultItemVersion
	}
	return fmt.Sprintf("%s.%s.%d", parts[0], parts[1], patch+1)
}

// ItemFilter restricts item listing to rows the caller may see.
// Both fields nil means unrestricted (SUPER_ADMIN).
type ItemFilter struct {
	DepartmentID *string
	CreatedBy    *uuid.UUID
}

// UserFilter restricts user listing.
// DepartmentID set: only that department (ADMIN). UserID set: only that
// account (USER). Both nil: unrestricted.
type UserFilter struct {
	DepartmentID *string
	UserID       *uuid.UUID
}
