// internal/domain/models/assignment.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Assignment roles. Owner and supervisor are the two required assignments
// created with every selection; they are immutable once written.
const (
	RoleProjectOwner = "owner"
	RoleSupervisor   = "supervisor"
	RoleTeamLeader   = "leader"
	RoleTeamMember   = "member"
	RoleSpecialist   = "specialist"
	RoleAdvisor      = "advisor"
	RoleStakeholder  = "stakeholder"
)

// IsValidAssignmentRole checks if a value is a known assignment role.
func IsValidAssignmentRole(role string) bool {
	switch role {
	case RoleProjectOwner, RoleSupervisor, RoleTeamLeader, RoleTeamMember,
		RoleSpecialist, RoleAdvisor, RoleStakeholder:
		return true
	}
	return false
}

// MemberAssignment places one user on the selected team.
type MemberAssignment struct {
	UserID     primitive.ObjectID `bson:"user_id" json:"user_id"`
	Role       string             `bson:"role" json:"role"`
	Required   bool               `bson:"required" json:"required"`
	Reason     string             `bson:"reason,omitempty" json:"reason,omitempty"`
	AssignedAt time.Time          `bson:"assigned_at" json:"assigned_at"`
}
