package shared

import "errors"

// Malformed input: caused by untrusted remote data; fails the one activity or resolution being processed.
var (
	ErrUnresolvableReference      = errors.New("unresolvable reference")
	ErrCyclicReference            = errors.New("cyclic reference")
	ErrRecursionLimit             = errors.New("resolve recursion limit reached")
	ErrUnrecognizedLocalResource  = errors.New("unrecognized local resource")
	ErrInvalidActivityPubResponse = errors.New("invalid ActivityPub response")
	ErrUnexpectedType             = errors.New("unexpected object type")
	ErrInvalidActor               = errors.New("invalid actor")
	ErrUnknownTarget              = errors.New("unknown target")
	ErrMalformedActivity          = errors.New("malformed activity")
)

var (
	ErrFederationBlocked = errors.New("federation with host is blocked")
	ErrSigningFailed     = errors.New("signing failed")
)

var malformedInput = []error{
	ErrUnresolvableReference,
	ErrCyclicReference,
	ErrRecursionLimit,
	ErrUnrecognizedLocalResource,
	ErrInvalidActivityPubResponse,
	ErrUnexpectedType,
	ErrInvalidActor,
	ErrUnknownTarget,
	ErrMalformedActivity,
}

// IsMalformedInput tells if err stems from bad remote input rather than from our own state or the network.
func IsMalformedInput(err error) bool {
	for _, e := range malformedInput {
		if errors.Is(err, e) {
			return true
		}
	}
	return false
}
