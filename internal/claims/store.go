package claims

import "context"

// Store is the persistence backend the repository writes through. The
// concrete implementation is the DynamoDB store; tests substitute fakes.
type Store interface {
	PutClaim(ctx context.Context, c Claim) error
	DeleteClaim(ctx context.Context, id string) error
	LoadAll(ctx context.Context) ([]Claim, error)
}

// FallbackStore is the local store consulted when the primary backend is
// unreachable at startup, and written by the create fallback path.
type FallbackStore interface {
	LoadAll() ([]Claim, error)
	SaveAll(claims []Claim) error
}

// Recorder receives repository telemetry. All methods must be safe on a nil
// implementation so telemetry stays optional.
type Recorder interface {
	MutationApplied(operation, result string)
	PersistenceFailure(operation string)
	LocalFallback()
	SetClaimCount(n int)
}
