package authz

import "fmt"

// Stage names a step of the pipeline.
type Stage string

const (
	StageExtractToken    Stage = "extract_token"
	StageVerifyToken     Stage = "verify_signature_and_expiry"
	StageConfirmIdentity Stage = "confirm_identity"
	StageCheckRevocation Stage = "check_revocation"
	StageCheckElevation  Stage = "check_elevation"
)

// Kind classifies a rejection; the HTTP layer maps it to a status code.
type Kind int

const (
	Unauthenticated Kind = iota
	Forbidden
	Internal
)

func (k Kind) String() string {
	switch k {
	case Unauthenticated:
		return "unauthenticated"
	case Forbidden:
		return "forbidden"
	default:
		return "internal"
	}
}

// Rejection terminates the pipeline at Stage.
type Rejection struct {
	Stage  Stage
	Kind   Kind
	UserID int64
	Err    error
}

func (r *Rejection) Error() string {
	return fmt.Sprintf("%s at %s: %v", r.Kind, r.Stage, r.Err)
}

func (r *Rejection) Unwrap() error { return r.Err }

func reject(stage Stage, kind Kind, userID int64, err error) *Rejection {
	return &Rejection{Stage: stage, Kind: kind, UserID: userID, Err: err}
}
