// Package score turns tracker and cookie counts into a score and grade
package score

import "gitlab.com/trackerker/trackerk"

// Penalties for each observed third party domain and cookie
const (
	TrackerPenalty = 8
	CookiePenalty  = 2
)

// Compute the score, 100 minus the penalties and never below 0
func Compute(trackers, cookies int) int {
	s := 100 - trackers*TrackerPenalty - cookies*CookiePenalty
	if s < 0 {
		return 0
	}
	return s
}

// GradeFor score
func GradeFor(score int) trackerk.Grade {
	switch {
	case score >= 90:
		return trackerk.GradeA
	case score >= 80:
		return trackerk.GradeB
	case score >= 70:
		return trackerk.GradeC
	case score >= 60:
		return trackerk.GradeD
	}
	return trackerk.GradeF
}
