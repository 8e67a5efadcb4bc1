// Package policy holds the authorization rules for recruitment resources.
// Every function is pure: callers load the resource first and pass the
// owner identifiers in.
package policy

const (
	RoleApplicant = "applicant"
	RoleRecruiter = "recruiter"
	RoleAdmin     = "admin"
)

// Actor is the authenticated principal making a request.
type Actor struct {
	ID   string
	Role string
}

// Anonymous reports whether no principal is attached.
func (a Actor) Anonymous() bool { return a.ID == "" }

func (a Actor) IsAdmin() bool { return a.Role == RoleAdmin }

// HasRole reports whether the actor holds any of roles.
func (a Actor) HasRole(roles ...string) bool {
	for _, r := range roles {
		if a.Role == r {
			return true
		}
	}
	return false
}

// ValidRole reports whether role is a known role.
func ValidRole(role string) bool {
	switch role {
	case RoleApplicant, RoleRecruiter, RoleAdmin:
		return true
	}
	return false
}

// Decision is the outcome of a policy check.
type Decision struct {
	Allowed bool
	Reason  string
}

func allow(reason string) Decision { return Decision{Allowed: true, Reason: reason} }
func deny(reason string) Decision  { return Decision{Allowed: false, Reason: reason} }

// CanCreateJob allows recruiters and admins to post jobs.
func CanCreateJob(a Actor) Decision {
	if a.HasRole(RoleRecruiter, RoleAdmin) {
		return allow("role")
	}
	return deny("role " + a.Role + " cannot post jobs")
}

// CanMutateJob covers update, delete, status change, duplicate and stats.
func CanMutateJob(a Actor, postedBy string) Decision {
	if a.IsAdmin() {
		return allow("admin")
	}
	if a.ID != "" && a.ID == postedBy {
		return allow("owner")
	}
	return deny("not the job owner")
}

// IsJobOwner reports whether a is the poster of the job. Anonymous actors never own.
func IsJobOwner(a Actor, postedBy string) bool {
	return a.ID != "" && a.ID == postedBy
}

// CanApply allows only applicants to submit applications.
func CanApply(a Actor) Decision {
	if a.Role == RoleApplicant {
		return allow("applicant")
	}
	return deny("only applicants can apply")
}

// CanAccessApplication covers read of an application.
func CanAccessApplication(a Actor, applicantID, jobOwnerID string) Decision {
	switch {
	case a.IsAdmin():
		return allow("admin")
	case a.ID != "" && a.ID == applicantID:
		return allow("applicant")
	case a.ID != "" && a.ID == jobOwnerID:
		return allow("job owner")
	default:
		return deny("not a party to this application")
	}
}

// CanDeleteApplication allows the applicant or an admin.
func CanDeleteApplication(a Actor, applicantID string) Decision {
	if a.IsAdmin() {
		return allow("admin")
	}
	if a.ID != "" && a.ID == applicantID {
		return allow("applicant")
	}
	return deny("only the applicant can delete an application")
}

// CanReviewApplication covers status changes, screening and recruiter-only
// fields: the job owner or an admin.
func CanReviewApplication(a Actor, jobOwnerID string) Decision {
	if a.IsAdmin() {
		return allow("admin")
	}
	if a.ID != "" && a.ID == jobOwnerID {
		return allow("job owner")
	}
	return deny("not the job owner")
}

// Scope is the set of application fields an actor may edit.
type Scope int

const (
	ScopeNone Scope = iota
	ScopeApplicant
	ScopeFull
)

// ApplicantEditableFields lists the fields an applicant may change on their own application.
var ApplicantEditableFields = []string{
	"coverLetter",
	"expectedSalary",
	"availabilityDate",
	"noticePeriod",
	"willingToRelocate",
}

// ApplicationUpdateScope decides which fields of an application a may update.
// Admins and the job owner get ScopeFull; the applicant gets ScopeApplicant.
func ApplicationUpdateScope(a Actor, applicantID, jobOwnerID string) Scope {
	switch {
	case a.IsAdmin():
		return ScopeFull
	case a.ID != "" && a.ID == jobOwnerID:
		return ScopeFull
	case a.ID != "" && a.ID == applicantID:
		return ScopeApplicant
	default:
		return ScopeNone
	}
}

// CanManageInterviews is role-based only: any recruiter or admin may
// mutate any interview.
func CanManageInterviews(a Actor) Decision {
	if a.HasRole(RoleRecruiter, RoleAdmin) {
		return allow("role")
	}
	return deny("only recruiters can manage interviews")
}

// CanViewInterview allows recruiters, admins and the interviewed applicant.
func CanViewInterview(a Actor, applicantID string) Decision {
	if a.HasRole(RoleRecruiter, RoleAdmin) {
		return allow("role")
	}
	if a.ID != "" && a.ID == applicantID {
		return allow("applicant")
	}
	return deny("not authorized to view this interview")
}

// CanManageUsers allows admins only.
func CanManageUsers(a Actor) Decision {
	if a.IsAdmin() {
		return allow("admin")
	}
	return deny("admin only")
}

// CanViewUser allows admins and the user themself.
func CanViewUser(a Actor, userID string) Decision {
	if a.IsAdmin() {
		return allow("admin")
	}
	if a.ID != "" && a.ID == userID {
		return allow("self")
	}
	return deny("not authorized to view this user")
}
