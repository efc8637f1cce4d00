package counters

// Counter represents a non-negative count on a location or villain.
// A Max of zero means the counter is unbounded.
type Counter struct {
	Name  CounterType
	Count int
	Max   int
}

// NewCounter creates an empty counter with the given ceiling.
func NewCounter(name CounterType, max int) *Counter {
	if max < 0 {
		max = 0
	}
	return &Counter{
		Name: name,
		Max:  max,
	}
}

// Add adds up to amount to the counter without passing Max.
// Returns the amount actually added.
func (c *Counter) Add(amount int) int {
	if amount <= 0 {
		return 0
	}
	if c.Max > 0 && c.Count+amount > c.Max {
		amount = c.Max - c.Count
	}
	c.Count += amount
	return amount
}

// Remove removes up to amount from the counter.
// Will not allow count to go below 0. Returns the amount actually removed.
func (c *Counter) Remove(amount int) int {
	if amount <= 0 {
		return 0
	}
	if amount > c.Count {
		amount = c.Count
	}
	c.Count -= amount
	return amount
}

// Reached reports whether the counter sits at its ceiling.
func (c *Counter) Reached() bool {
	return c.Max > 0 && c.Count >= c.Max
}
