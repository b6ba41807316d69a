package bucket

// Counts maps bucket names to the number of scores that fell in them,
// preserving declaration order. It is read-only once built.
type Counts struct {
	names  []string
	counts []int
}

// Pair is one bucket name with its count.
type Pair struct {
	Name  string
	Count int
}

// Len returns the number of buckets.
func (c *Counts) Len() int { return len(c.names) }

// Names returns the bucket names in declaration order.
func (c *Counts) Names() []string {
	return append([]string(nil), c.names...)
}

// Values returns the counts in declaration order.
func (c *Counts) Values() []int {
	return append([]int(nil), c.counts...)
}

// Get returns the count for name.
func (c *Counts) Get(name string) (int, bool) {
	for i, n := range c.names {
		if n == name {
			return c.counts[i], true
		}
	}
	return 0, false
}

// Pairs returns every bucket with its count, in declaration order.
func (c *Counts) Pairs() []Pair {
	pairs := make([]Pair, len(c.names))
	for i, n := range c.names {
		pairs[i] = Pair{Name: n, Count: c.counts[i]}
	}
	return pairs
}

// Total is the number of counted scores.
func (c *Counts) Total() int {
	t := 0
	for _, n := range c.counts {
		t += n
	}
	return t
}

// Max is the largest single bucket count.
func (c *Counts) Max() int {
	m := 0
	for _, n := range c.counts {
		if n > m {
			m = n
		}
	}
	return m
}
