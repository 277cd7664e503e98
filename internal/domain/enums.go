package domain

// UserType tells whether a user searches for housing or proposes one.
type UserType string

const (
	UserTypeSearch   UserType = "SEARCH"
	UserTypeProposal UserType = "PROPOSAL"
)

// UserStatus is the account state of a user.
type UserStatus string

const (
	UserStatusPending UserStatus = "PENDING"
	UserStatusEnabled UserStatus = "ENABLED"
	UserStatusBanned  UserStatus = "BANNED"
)

// Gender of a user.
type Gender string

const (
	GenderUnknown Gender = "UNKNOWN"
	GenderMale    Gender = "MALE"
	GenderFemale  Gender = "FEMALE"
)

// Roles granted to users.
const (
	RoleUser  = "USER"
	RoleAdmin = "ADMIN"
)

// AnnouncementType is the kind of housing offer.
type AnnouncementType string

const (
	AnnouncementTypeRent     AnnouncementType = "RENT"
	AnnouncementTypeSublease AnnouncementType = "SUBLEASE"
	AnnouncementTypeSharing  AnnouncementType = "SHARING"
)

// AnnouncementStatus is the publication state of an announcement.
type AnnouncementStatus string

const (
	AnnouncementStatusOpen   AnnouncementStatus = "OPEN"
	AnnouncementStatusClosed AnnouncementStatus = "CLOSED"
	AnnouncementStatusFilled AnnouncementStatus = "FILLED"
)

// GroupStatus tells whether a group accepts new members.
type GroupStatus string

const (
	GroupStatusOpen   GroupStatus = "OPEN"
	GroupStatusClosed GroupStatus = "CLOSED"
)

// InvitableType names the resources that can receive invitations.
type InvitableType string

const (
	InvitableAnnouncement InvitableType = "announcement"
	InvitableGroup        InvitableType = "group"
)

// VisitableType names the resources whose views are recorded.
type VisitableType string

const (
	VisitableAnnouncement VisitableType = "announcement"
	VisitableGroup        VisitableType = "group"
	VisitableUser         VisitableType = "user"
)

// InvitationStatus is the answer state of an invitation.
type InvitationStatus string

const (
	InvitationWaiting  InvitationStatus = "WAITING"
	InvitationAccepted InvitationStatus = "ACCEPTED"
	InvitationRefused  InvitationStatus = "REFUSED"
)

// InvitationSourceType tells which side initiated an invitation: the
// invitable owner inviting a user, or a searching user applying.
type InvitationSourceType string

const (
	SourceInvitable InvitationSourceType = "INVITABLE"
	SourceSearcher  InvitationSourceType = "SEARCHER"
)

// TokenReason is the purpose of a user token.
type TokenReason string

const (
	TokenRegistrationConfirmation TokenReason = "REGISTRATION_CONFIRMATION"
	TokenLostPassword             TokenReason = "LOST_PASSWORD"
)
