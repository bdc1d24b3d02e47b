package activity

import "sort"

const topN = 5

// computeStats always starts from scratch; results are never patched incrementally.
func computeStats(total int, filtered []Record) Stats {
	st := Stats{
		TotalLogs:    total,
		FilteredLogs: len(filtered),
	}

	var (
		durSum   int64
		durCount int
	)
	users := newCounter()
	resources := newCounter()

	for _, r := range filtered {
		switch r.Status {
		case StatusSuccess:
			st.SuccessCount++
		case StatusWarning:
			st.WarningCount++
		case StatusError:
			st.ErrorCount++
		case StatusInfo:
			st.InfoCount++
		}

		if r.DurationMs != nil {
			durSum += *r.DurationMs
			durCount++
		}
		users.add(r.User)
		resources.add(r.Resource)
	}

	if durCount > 0 {
		avg := float64(durSum) / float64(durCount)
		st.AverageResponseTime = &avg
	}
	st.TopUsers = users.top(topN)
	st.TopResources = resources.top(topN)
	return st
}

// counter tallies values while remembering first-seen order for tie breaks.
type counter struct {
	index  map[string]int
	counts []Count
}

func newCounter() *counter {
	return &counter{index: make(map[string]int)}
}

func (c *counter) add(v string) {
	if v == "" {
		return
	}
	if i, ok := c.index[v]; ok {
		c.counts[i].Count++
		return
	}
	c.index[v] = len(c.counts)
	c.counts = append(c.counts, Count{Value: v, Count: 1})
}

func (c *counter) top(n int) []Count {
	out := make([]Count, len(c.counts))
	copy(out, c.counts)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	if len(out) > n {
		out = out[:n]
	}
	return out
}
