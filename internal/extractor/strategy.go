package extractor

// strategy is one step of a fallback chain. It reports false when it could
// not produce a value so the next step gets a chance.
type strategy[T any] func() (T, bool)

// firstOf runs the chain in order and returns the first value produced.
func firstOf[T any](chain []strategy[T]) (T, bool) {
	for _, step := range chain {
		if v, ok := step(); ok {
			return v, true
		}
	}
	var zero T
	return zero, false
}
