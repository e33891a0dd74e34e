// internal/models/activity.go
package models

import "sort"

// Activity maps job_id to the cumulative seconds a seeker spent on it.
type Activity map[string]float64

// TopJobs returns up to n job ids ordered by time spent, highest first.
// Equal times are ordered by job id so the result is stable.
func (a Activity) TopJobs(n int) []string {
	if n <= 0 || len(a) == 0 {
		return nil
	}

	ids := make([]string, 0, len(a))
	for id := range a {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		if a[ids[i]] != a[ids[j]] {
			return a[ids[i]] > a[ids[j]]
		}
		return ids[i] < ids[j]
	})

	if len(ids) > n {
		ids = ids[:n]
	}
	return ids
}
