// Package access decides, before any storage access, whether a caller may perform an action.
package access

import (
	"github.com/insurecare/feedback-portal/internal/domain"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
)

// Kind is the resolved identity of a request.
type Kind string

const (
	KindAnonymous Kind = "anonymous"
	KindAdmin     Kind = "admin"
	KindAgent     Kind = "agent"
	KindFrontline Kind = "frontline"
)

// Caller is the per-request identity. Staff callers carry their linked profile as
// Target; a staff caller with no linked profile has a None target.
type Caller struct {
	Kind   Kind
	UserID int64
	Target domain.Target
}

// Anonymous is the caller of unauthenticated, pending, or revoked sessions.
func Anonymous() Caller { return Caller{Kind: KindAnonymous} }

func Admin(userID int64) Caller { return Caller{Kind: KindAdmin, UserID: userID} }

// Agent is a caller with role agent linked to agentID (0 when unlinked).
func Agent(userID, agentID int64) Caller {
	c := Caller{Kind: KindAgent, UserID: userID}
	if agentID > 0 {
		c.Target = domain.ForAgent(agentID)
	}
	return c
}

// Frontline is a caller with role frontline linked to employeeID (0 when unlinked).
func Frontline(userID, employeeID int64) Caller {
	c := Caller{Kind: KindFrontline, UserID: userID}
	if employeeID > 0 {
		c.Target = domain.ForEmployee(employeeID)
	}
	return c
}

// ForUser builds the caller for an authenticated account. Unapproved users are anonymous.
func ForUser(user *domain.User, profileID int64) Caller {
	if user == nil || !user.IsApproved {
		return Anonymous()
	}
	switch user.Role {
	case domain.RoleAdmin:
		return Admin(user.ID)
	case domain.RoleAgent:
		return Agent(user.ID, profileID)
	case domain.RoleFrontline:
		return Frontline(user.ID, profileID)
	}
	return Anonymous()
}

func (c Caller) IsAnonymous() bool { return c.Kind == KindAnonymous || c.Kind == "" }

func (c Caller) IsAdmin() bool { return c.Kind == KindAdmin }

// IsStaff reports agent and frontline callers.
func (c Caller) IsStaff() bool { return c.Kind == KindAgent || c.Kind == KindFrontline }

// Action names an operation guarded by the gate.
type Action string

const (
	ReadQuestions    Action = "questions.read"
	ReadProfile      Action = "profile.read"
	SearchProfiles   Action = "profile.search"
	ResolveCode      Action = "qr.resolve"
	SubmitRating     Action = "rating.submit"
	FileComplaint    Action = "complaint.file"
	ChangePassword   Action = "account.password"
	ReadOwnAccount   Action = "account.read"
	ListRatings      Action = "rating.list"
	ListComplaints   Action = "complaint.list"
	ReadComplaint    Action = "complaint.read"
	DownloadQR       Action = "qr.download"
	ReadStaffStats   Action = "dashboard.staff"
	ManageUsers      Action = "user.manage"
	ManageProfiles   Action = "profile.manage"
	ManageQuestions  Action = "question.manage"
	ManageComplaints Action = "complaint.manage"
	DeleteRating     Action = "rating.delete"
	PublishQR        Action = "qr.publish"
	ExportProfiles   Action = "profile.export"
	ReadAdminStats   Action = "dashboard.admin"
)

type audience int

const (
	public audience = iota
	authenticated
	staffOrAdmin
	staffOnly
	adminOnly
)

var policy = map[Action]audience{
	ReadQuestions:    public,
	ReadProfile:      public,
	SearchProfiles:   public,
	ResolveCode:      public,
	SubmitRating:     public,
	FileComplaint:    public,
	ChangePassword:   authenticated,
	ReadOwnAccount:   authenticated,
	ListRatings:      staffOrAdmin,
	ListComplaints:   staffOrAdmin,
	ReadComplaint:    staffOrAdmin,
	DownloadQR:       staffOrAdmin,
	ReadStaffStats:   staffOnly,
	ManageUsers:      adminOnly,
	ManageProfiles:   adminOnly,
	ManageQuestions:  adminOnly,
	ManageComplaints: adminOnly,
	DeleteRating:     adminOnly,
	PublishQR:        adminOnly,
	ExportProfiles:   adminOnly,
	ReadAdminStats:   adminOnly,
}

// Authorize fails closed: unknown actions are denied, anonymous callers get
// Unauthorized, and authenticated callers of the wrong role get Forbidden.
func Authorize(c Caller, action Action) error {
	aud, ok := policy[action]
	if !ok {
		return apperrors.NewForbidden("action not permitted")
	}
	if aud == public {
		return nil
	}
	if c.IsAnonymous() {
		return apperrors.NewUnauthorized("authentication required")
	}
	switch aud {
	case authenticated:
		return nil
	case staffOrAdmin:
		if c.IsAdmin() || c.IsStaff() {
			return nil
		}
	case staffOnly:
		if c.IsStaff() {
			return nil
		}
	case adminOnly:
		if c.IsAdmin() {
			return nil
		}
	}
	return apperrors.NewForbidden("insufficient role")
}

// OwnTarget returns the profile linked to a staff caller, or a profile-not-found
// error when the account has none.
func OwnTarget(c Caller) (domain.Target, error) {
	if !c.IsStaff() {
		return domain.Target{}, apperrors.NewForbidden("staff role required")
	}
	if c.Target.IsNone() {
		return domain.Target{}, apperrors.NewProfileNotFound()
	}
	return c.Target, nil
}

// Scope narrows a requested target filter to what the caller may read.
// Admins keep the requested filter (None means everything). Staff are pinned to
// their own profile; asking for any other target reports visible=false, and the
// caller must return an empty result without querying.
func Scope(c Caller, requested domain.Target) (target domain.Target, visible bool, err error) {
	if c.IsAdmin() {
		return requested, true, nil
	}
	own, err := OwnTarget(c)
	if err != nil {
		return domain.Target{}, false, err
	}
	if !requested.IsNone() && requested != own {
		return own, false, nil
	}
	return own, true, nil
}

// RequireTarget allows admins any target and staff only their own.
// Staff asking for another profile get Forbidden without any lookup.
func RequireTarget(c Caller, requested domain.Target) error {
	if c.IsAdmin() {
		return nil
	}
	own, err := OwnTarget(c)
	if err != nil {
		return err
	}
	if requested != own {
		return apperrors.NewForbidden("not your profile")
	}
	return nil
}
