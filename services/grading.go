package services

import (
	"math"

	"testlab/models"
)

// ComputeScore is the single source of truth for turning per-answer
// correctness flags into a percentage. It counts answers flagged correct,
// divides by the number of multiple-choice questions, and rounds half up.
// A test with no multiple-choice questions has no automatic score: the
// result is nil until an admin grades it.
//
// Both the submission path and the admin review recompute path call this
// function, so a stored score is always consistent with the stored flags.
func ComputeScore(answers []models.Answer, totalMultipleChoice int) *int {
	if totalMultipleChoice <= 0 {
		return nil
	}
	correct := 0
	for _, a := range answers {
		if a.IsCorrect != nil && *a.IsCorrect {
			correct++
		}
	}
	score := int(math.Round(float64(correct) / float64(totalMultipleChoice) * 100))
	return &score
}
