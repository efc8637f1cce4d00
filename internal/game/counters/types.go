package counters

// CounterType names the counters tracked on board pieces.
type CounterType string

const (
	// CounterTypeDarkMark counts dark marks placed on a location.
	CounterTypeDarkMark CounterType = "dark-mark"
	// CounterTypeDamage counts damage dealt to a villain.
	CounterTypeDamage CounterType = "damage"
)
