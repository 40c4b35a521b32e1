// internal/merchant/merchant.go
package merchant

import "fmt"

// Merchant status: PendingApproval -> Approved is an admin action external
// to this layer; SuperAdministrator is reserved for the platform identity.
type Status string

const (
	StatusPendingApproval Status = "pending_approval"
	StatusApproved        Status = "approved"
	StatusSuperAdmin      Status = "super_administrator"
)

type Role string

const (
	RoleMerchant   Role = "merchant"
	RoleSuperAdmin Role = "super_admin"
)

// Merchant is the single aggregate active per session. The role field
// decides which dashboards an external consumer authorizes; this layer only
// preserves it faithfully.
type Merchant struct {
	ID               string  `json:"id"`
	Email            string  `json:"email"`
	BusinessName     string  `json:"businessName"`
	Phone            string  `json:"phone"`
	JoinedDate       string  `json:"joinedDate"`
	Status           Status  `json:"status"`
	SubscriptionType string  `json:"subscriptionType"`
	TotalRevenue     float64 `json:"totalRevenue"`
	TotalBookings    int     `json:"totalBookings"`
	TotalEvents      int     `json:"totalEvents"`
	Rating           float64 `json:"rating"`
	Role             Role    `json:"role"`
	PasswordHash     string  `json:"passwordHash,omitempty"`
}

// Update is a shallow-merge patch for the merchant profile. Nil fields keep
// their prior values; id, role and the password hash are never patched here.
type Update struct {
	Email            *string
	BusinessName     *string
	Phone            *string
	Status           *Status
	SubscriptionType *string
	TotalRevenue     *float64
	TotalBookings    *int
	TotalEvents      *int
	Rating           *float64
}

// ValidationError reports a required field that is missing or too short.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}

// AuthError reports a failed credential check.
type AuthError struct {
	Message string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("authentication failed: %s", e.Message)
}
