package venue

import (
	"moonlend/core"
)

// Selector picks the venue strategy for a collateral token by its
// configured venue type.
type Selector struct {
	fixedCurve core.VenueStrategy
	router     core.VenueStrategy
}

// NewSelector new selector over the two concrete strategies
func NewSelector(fixedCurve, router core.VenueStrategy) *Selector {
	return &Selector{
		fixedCurve: fixedCurve,
		router:     router,
	}
}

// For strategy for the token
func (s *Selector) For(token *core.TokenConfig) core.VenueStrategy {
	if token.VenueType == core.VenueTypeFixedCurve {
		return s.fixedCurve
	}
	return s.router
}
