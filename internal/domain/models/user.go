package models

// ProfileType is the role a user registers with. It never changes after
// registration and decides which features are reachable.
type ProfileType string

const (
	ProfileCitizen    ProfileType = "CITIZEN"
	ProfileJudge      ProfileType = "JUDGE"
	ProfileLawyer     ProfileType = "LAWYER"
	ProfileLawStudent ProfileType = "LAW_STUDENT"
)

// ProfileTypes lists every valid profile type.
var ProfileTypes = []ProfileType{ProfileCitizen, ProfileJudge, ProfileLawyer, ProfileLawStudent}

// Valid reports whether p is one of the known profile types.
func (p ProfileType) Valid() bool {
	for _, known := range ProfileTypes {
		if p == known {
			return true
		}
	}
	return false
}

// Feature names a gated area of the application.
type Feature string

const (
	FeatureChat       Feature = "chat"
	FeatureDrafting   Feature = "drafting"
	FeatureResearch   Feature = "research"
	FeatureVoicenote  Feature = "voicenote"
	FeatureFindLawyer Feature = "findLawyer"
)

var featureAccess = map[Feature][]ProfileType{
	FeatureChat:       {ProfileCitizen, ProfileJudge, ProfileLawyer, ProfileLawStudent},
	FeatureDrafting:   {ProfileJudge, ProfileLawyer, ProfileLawStudent},
	FeatureResearch:   {ProfileJudge, ProfileLawyer, ProfileLawStudent},
	FeatureVoicenote:  {ProfileJudge, ProfileLawyer},
	FeatureFindLawyer: {ProfileCitizen, ProfileLawyer, ProfileLawStudent},
}

// CanAccess reports whether users of this profile may use feature f.
func (p ProfileType) CanAccess(f Feature) bool {
	for _, allowed := range featureAccess[f] {
		if allowed == p {
			return true
		}
	}
	return false
}

// Features returns the features reachable for this profile, in menu order.
func (p ProfileType) Features() []Feature {
	var out []Feature
	for _, f := range []Feature{FeatureChat, FeatureDrafting, FeatureResearch, FeatureVoicenote, FeatureFindLawyer} {
		if p.CanAccess(f) {
			out = append(out, f)
		}
	}
	return out
}

// User is a registered account. Email is stored lowercased and is unique.
type User struct {
	ID          string      `json:"id"`
	ProfileType ProfileType `json:"profileType"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
	Password    string      `json:"password"`
}

func (u *User) RecordID() string { return u.ID }

// RecencyMillis is zero: the user collection keeps insertion order.
func (u *User) RecencyMillis() int64 { return 0 }

// SessionUser is the user record without the password.
type SessionUser struct {
	ID          string      `json:"id"`
	ProfileType ProfileType `json:"profileType"`
	Email       string      `json:"email"`
	Phone       string      `json:"phone"`
}

// Session returns the password-free view of the user.
func (u *User) Session() *SessionUser {
	return &SessionUser{
		ID:          u.ID,
		ProfileType: u.ProfileType,
		Email:       u.Email,
		Phone:       u.Phone,
	}
}

// Complete reports whether every field of the session blob is present.
func (s *SessionUser) Complete() bool {
	return s != nil && s.ID != "" && s.Email != "" && s.Phone != "" && s.ProfileType.Valid()
}

// Welcome returns the greeting shown on an empty chat for this profile.
func (p ProfileType) Welcome() string {
	switch p {
	case ProfileCitizen:
		return "Welcome! As a citizen, I can help you with general legal queries, understand your rights, and guide you through the 'Find a Lawyer' feature to connect with legal professionals."
	case ProfileJudge:
		return "Welcome, Your Honor! Dharmabot is equipped to assist you with in-depth legal research, document analysis, drafting support, and reviewing voicenotes to streamline your judicial workflow."
	case ProfileLawyer:
		return "Welcome, Counsel! Leverage Dharmabot's full suite of tools, including legal research, document drafting, voicenote analysis, finding fellow legal professionals, and more to enhance your practice."
	case ProfileLawStudent:
		return "Welcome, future legal professional! As a law student, you have access to AI chat assistance, document drafting tools, and deep research capabilities to support your legal education and studies."
	default:
		return "I'm here to assist with your legal queries. Type your question below, upload documents, or select a previous chat."
	}
}
