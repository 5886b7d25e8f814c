package entities

import (
	"strings"
	"time"
	"unicode/utf8"
)

// Score bounds accepted for a rating
const (
	MinScore = 1
	MaxScore = 5

	// MinCommentLength applies to the trimmed comment when one is given
	MinCommentLength = 3
)

// Rating is one student's score for a feedback post.
// A post holds at most one Rating per AuthorID.
type Rating struct {
	AuthorID    string    `json:"author_id"`
	AuthorName  string    `json:"author_name"`
	Score       int       `json:"score"`
	Comment     string    `json:"comment"`
	SubmittedAt time.Time `json:"submitted_at"`
}

// RatingAggregate summarizes a rating set. It is never edited directly,
// only recomputed from the ratings it describes.
type RatingAggregate struct {
	Count     int         `json:"count"`
	Mean      float64     `json:"mean"`
	Histogram map[int]int `json:"histogram"`
}

// ValidScore reports whether score lies in [MinScore, MaxScore]
func ValidScore(score int) bool {
	return score >= MinScore && score <= MaxScore
}

// CommentAcceptable reports whether a free-text comment may accompany a rating.
// Empty comments are allowed; otherwise the trimmed text needs MinCommentLength runes.
func CommentAcceptable(comment string) bool {
	trimmed := strings.TrimSpace(comment)
	return trimmed == "" || utf8.RuneCountInString(trimmed) >= MinCommentLength
}

// EmptyRatingAggregate returns the aggregate of a post nobody has rated
func EmptyRatingAggregate() RatingAggregate {
	return RatingAggregate{Histogram: emptyHistogram()}
}

// ComputeRatingAggregate derives count, mean and histogram from ratings.
// The mean is rounded half-up to one decimal using integer arithmetic.
// Scores outside the valid range still count but never land in the histogram.
func ComputeRatingAggregate(ratings []Rating) RatingAggregate {
	agg := EmptyRatingAggregate()
	if len(ratings) == 0 {
		return agg
	}

	sum := 0
	for _, r := range ratings {
		sum += r.Score
		if ValidScore(r.Score) {
			agg.Histogram[r.Score]++
		}
	}

	count := len(ratings)
	tenths := (sum*20 + count) / (2 * count)
	agg.Count = count
	agg.Mean = float64(tenths) / 10
	return agg
}

// UpsertRating returns a copy of ratings where the entry by r.AuthorID is
// replaced in place, or r is appended when the author has not rated yet.
func UpsertRating(ratings []Rating, r Rating) []Rating {
	out := make([]Rating, len(ratings), len(ratings)+1)
	copy(out, ratings)
	for i := range out {
		if out[i].AuthorID == r.AuthorID {
			out[i] = r
			return out
		}
	}
	return append(out, r)
}

func emptyHistogram() map[int]int {
	h := make(map[int]int, MaxScore)
	for s := MinScore; s <= MaxScore; s++ {
		h[s] = 0
	}
	return h
}
