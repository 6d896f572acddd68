package types

// Kind selects the template used to build the prompt and parse the reply.
type Kind string

const (
	KindPost       Kind = "post"
	KindThread     Kind = "thread"
	KindPoll       Kind = "poll"
	KindNewsletter Kind = "newsletter"
)

// ContentKinds are the kinds accepted by the generic content endpoint.
var ContentKinds = []Kind{KindPost, KindThread, KindPoll}

// ParseKind accepts only the generic content kinds. Newsletters have their own
// request shape and never arrive through this path.
func ParseKind(s string) (Kind, bool) {
	switch Kind(s) {
	case KindPost, KindThread, KindPoll:
		return Kind(s), true
	default:
		return "", false
	}
}

// Structured reports whether replies of this kind are parsed into fields
// rather than passed through as text.
func (k Kind) Structured() bool {
	return k == KindPoll
}

// LengthTier is the newsletter size bucket.
type LengthTier string

const (
	LengthShort  LengthTier = "short"
	LengthMedium LengthTier = "medium"
	LengthLong   LengthTier = "long"
)

// WordTarget returns the word-count range the model is asked to hit.
func (t LengthTier) WordTarget() string {
	switch t {
	case LengthShort:
		return "300-500"
	case LengthLong:
		return "800-1200"
	default:
		return "500-800"
	}
}
