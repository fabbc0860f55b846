package model

// Role is a platform role carried in the access token.
type Role string

const (
	RoleAdmin         Role = "admin"
	RoleCentreManager Role = "centre_manager"
	RoleTrainer       Role = "trainer"
	RoleStudent       Role = "student"
	RoleJobSeeker     Role = "job_seeker"
	RoleEnterprise    Role = "enterprise"
)

var Roles = []Role{RoleAdmin, RoleCentreManager, RoleTrainer, RoleStudent, RoleJobSeeker, RoleEnterprise}

func (r Role) Valid() bool {
	for _, known := range Roles {
		if r == known {
			return true
		}
	}
	return false
}

// Role groups used by the route table.
var (
	SchedulerRoles = []Role{RoleAdmin, RoleCentreManager, RoleTrainer}
	ManagerRoles   = []Role{RoleAdmin, RoleCentreManager}
)
