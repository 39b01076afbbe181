package corels

/*
Observer receives progress notifications from a running search. The
search itself never logs; callers that want progress output supply an
implementation and tests inject NullObserver.

All callbacks run synchronously on the goroutine driving the search, so
implementations should return quickly.
*/
type Observer interface {
	// SearchStarted fires once, after validation, before the first
	// iteration.
	SearchStarted(nrules, nsamples int, conf Config)
	// IncumbentUpdated fires whenever a better rule list is found.
	// The slice is owned by the search; copy it to retain it.
	IncumbentUpdated(objective float64, ruleList []uint16)
	// SearchFinished fires once from Finish with the final result.
	SearchFinished(res *Result)
}

// NullObserver ignores every notification.
type NullObserver struct{}

// SearchStarted implements Observer.
func (NullObserver) SearchStarted(nrules, nsamples int, conf Config) {}

// IncumbentUpdated implements Observer.
func (NullObserver) IncumbentUpdated(objective float64, ruleList []uint16) {}

// SearchFinished implements Observer.
func (NullObserver) SearchFinished(res *Result) {}
