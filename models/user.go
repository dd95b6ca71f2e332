package models

import "time"

const (
	RoleFarmer = "farmer"
	RoleNGO    = "ngo"
)

type User struct {
	UserID   string `json:"userid" bson:"userid"`
	Name     string `json:"name" bson:"name"`
	Email    string `json:"email" bson:"email"`
	Password string `json:"-" bson:"password"`
	Role     string `json:"role" bson:"role"`
	Location string `json:"location,omitempty" bson:"location,omitempty"`
	Avatar   string `json:"avatar,omitempty" bson:"avatar,omitempty"`

	// NGO-only fields
	OrganizationName string   `json:"organizationName,omitempty" bson:"organizationName,omitempty"`
	NgoRegNumber     string   `json:"ngoRegNumber,omitempty" bson:"ngoRegNumber,omitempty"`
	MissionStatement string   `json:"missionStatement,omitempty" bson:"missionStatement,omitempty"`
	Capacity         string   `json:"capacity,omitempty" bson:"capacity,omitempty"`
	RequiredCrops    []string `json:"requiredCrops,omitempty" bson:"requiredCrops,omitempty"`

	RefreshToken  string    `json:"-" bson:"refresh_token,omitempty"`
	RefreshExpiry time.Time `json:"-" bson:"refresh_expiry,omitempty"`
	LastLogin     time.Time `json:"-" bson:"last_login,omitempty"`
	CreatedAt     time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt" bson:"updatedAt"`
}

// UserSnippet is the public profile slice embedded in other payloads
// (conversation lists, request listings).
type UserSnippet struct {
	UserID           string `json:"userid" bson:"userid"`
	Name             string `json:"name" bson:"name"`
	Email            string `json:"email" bson:"email"`
	Location         string `json:"location,omitempty" bson:"location,omitempty"`
	OrganizationName string `json:"organizationName,omitempty" bson:"organizationName,omitempty"`
}

// ConnectedFarmer summarises one farmer an NGO works with, derived from
// accepted requests.
type ConnectedFarmer struct {
	UserID          string    `json:"userid"`
	Name            string    `json:"name"`
	Village         string    `json:"village"`
	Email           string    `json:"email"`
	TotalCrops      int       `json:"totalCropsDonated"`
	ActiveListings  int       `json:"activeListings"`
	LastInteraction time.Time `json:"lastInteraction,omitempty"`
}
