package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
)

// Contest is one rated contest appearance, as stored inside a snapshot.
type Contest struct {
	ContestID        int       `json:"contestId"`
	ContestName      string    `json:"contestName"`
	Rank             int       `json:"rank"`
	OldRating        int       `json:"oldRating"`
	NewRating        int       `json:"newRating"`
	RatingChange     int       `json:"ratingChange"`
	Date             time.Time `json:"date"`
	UnsolvedProblems int       `json:"unsolvedProblems"`
}

// Submission is one judged submission. ProblemRating is nil for unrated
// problems. A problem is identified by the (ContestID, ProblemIndex) pair.
type Submission struct {
	SubmissionID   int64     `json:"submissionId"`
	ContestID      int       `json:"contestId"`
	ProblemIndex   string    `json:"problemIndex"`
	ProblemName    string    `json:"problemName"`
	ProblemRating  *int      `json:"problemRating"`
	Verdict        string    `json:"verdict"`
	SubmissionDate time.Time `json:"submissionDate"`
}

// JSONB column types. Contests and submissions are embedded in the snapshot
// row as ordered JSON arrays rather than child tables, so a sync replaces the
// whole snapshot with a single write.

type ContestList []Contest

func (l ContestList) Value() (driver.Value, error) {
	if l == nil {
		l = ContestList{}
	}
	return json.Marshal(l)
}

func (l *ContestList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

type SubmissionList []Submission

func (l SubmissionList) Value() (driver.Value, error) {
	if l == nil {
		l = SubmissionList{}
	}
	return json.Marshal(l)
}

func (l *SubmissionList) Scan(value interface{}) error {
	return scanJSON(value, l)
}

// RatingBuckets maps a 100-wide difficulty bucket (1200, 1300, ...) to the
// number of accepted rated submissions in it. Empty buckets are absent.
type RatingBuckets map[int]int

func (b RatingBuckets) Value() (driver.Value, error) {
	if b == nil {
		b = RatingBuckets{}
	}
	return json.Marshal(b)
}

func (b *RatingBuckets) Scan(value interface{}) error {
	return scanJSON(value, b)
}

func scanJSON(value, dest interface{}) error {
	if value == nil {
		return nil
	}
	switch v := value.(type) {
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported column type %T for JSON scan", value)
	}
}

// CodeforcesData is the per-student activity snapshot, 1:1 with Student.
// It always reflects exactly one fetch from the Codeforces API; every
// successful sync replaces the row wholesale.
type CodeforcesData struct {
	ID        string    `gorm:"primaryKey;type:text" json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`

	StudentID string `gorm:"uniqueIndex" json:"studentId"`
	Handle    string `json:"handle"`

	Contests       ContestList    `gorm:"type:jsonb" json:"contests"`
	Submissions    SubmissionList `gorm:"type:jsonb" json:"submissions"`
	TotalSolved    int            `gorm:"default:0" json:"totalSolved"`
	SolvedByRating RatingBuckets  `gorm:"type:jsonb" json:"solvedByRating"`

	LastSubmissionDate *time.Time `json:"lastSubmissionDate"`
}
