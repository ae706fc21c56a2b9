package services

import (
	"fmt"
	"time"

	"github.com/itzRohit45/Student-Progress-Management/internal/models"
)

// Aggregate is the normalized view of one Codeforces fetch, ready to be
// persisted as a snapshot.
type Aggregate struct {
	Handle             string
	Contests           models.ContestList
	Submissions        models.SubmissionList
	TotalSolved        int
	SolvedByRating     models.RatingBuckets
	LastSubmissionDate *time.Time
}

// BuildSnapshot turns raw rating-change and submission payloads into a
// normalized snapshot. Pure and deterministic: no I/O, same inputs always
// produce the same output, and malformed submissions are filtered rather than
// rejected.
//
// Note on SolvedByRating: the buckets count every accepted rated submission,
// so a problem solved twice lands in its bucket twice, while TotalSolved
// dedups by (contestId, problemIndex). That mismatch is deliberate — it is
// what the product has always displayed.
func BuildSnapshot(handle string, rawContests []CFRatingChange, rawSubmissions []CFSubmission) Aggregate {
	agg := Aggregate{
		Handle:         handle,
		Contests:       make(models.ContestList, 0, len(rawContests)),
		Submissions:    make(models.SubmissionList, 0, len(rawSubmissions)),
		SolvedByRating: models.RatingBuckets{},
	}

	for _, rc := range rawContests {
		agg.Contests = append(agg.Contests, models.Contest{
			ContestID:    rc.ContestID,
			ContestName:  rc.ContestName,
			Rank:         rc.Rank,
			OldRating:    rc.OldRating,
			NewRating:    rc.NewRating,
			RatingChange: rc.NewRating - rc.OldRating,
			Date:         time.Unix(rc.RatingUpdateTimeSeconds, 0).UTC(),
		})
	}

	solved := make(map[string]bool)
	// per-contest distinct attempted / solved problems, for unsolved counts
	attemptedIn := make(map[int]map[string]bool)
	solvedIn := make(map[int]map[string]bool)

	for _, rs := range rawSubmissions {
		// Submissions without problem metadata carry nothing to aggregate.
		if rs.Problem == nil {
			continue
		}

		submittedAt := time.Unix(rs.CreationTimeSeconds, 0).UTC()
		if agg.LastSubmissionDate == nil || submittedAt.After(*agg.LastSubmissionDate) {
			t := submittedAt
			agg.LastSubmissionDate = &t
		}

		sub := models.Submission{
			SubmissionID:   rs.ID,
			ContestID:      rs.Problem.ContestID,
			ProblemIndex:   rs.Problem.Index,
			ProblemName:    rs.Problem.Name,
			ProblemRating:  rs.Problem.Rating,
			Verdict:        rs.Verdict,
			SubmissionDate: submittedAt,
		}
		agg.Submissions = append(agg.Submissions, sub)

		key := problemKey(sub.ContestID, sub.ProblemIndex)
		if attemptedIn[sub.ContestID] == nil {
			attemptedIn[sub.ContestID] = make(map[string]bool)
		}
		attemptedIn[sub.ContestID][key] = true

		if sub.Verdict == "OK" {
			solved[key] = true
			if solvedIn[sub.ContestID] == nil {
				solvedIn[sub.ContestID] = make(map[string]bool)
			}
			solvedIn[sub.ContestID][key] = true

			if sub.ProblemRating != nil {
				bucket := (*sub.ProblemRating / 100) * 100
				agg.SolvedByRating[bucket]++
			}
		}
	}

	agg.TotalSolved = len(solved)

	// Unsolved counts come from this pass's submissions only; never carried
	// over from a previous snapshot.
	for i := range agg.Contests {
		id := agg.Contests[i].ContestID
		agg.Contests[i].UnsolvedProblems = len(attemptedIn[id]) - len(solvedIn[id])
	}

	return agg
}

func problemKey(contestID int, index string) string {
	return fmt.Sprintf("%d-%s", contestID, index)
}
