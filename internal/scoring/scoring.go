// Package scoring implements the point-award rule: guessers are paid
// for matching the respondent, the respondent is paid for being
// predictable.
package scoring

import "secondguess/backend/internal/models"

// ScoreSelections assigns points in place and returns every selection
// that needs to be persisted. Each non-respondent selection earns the
// full point value iff its option index matches the respondent's. The
// respondent earns the full point value iff at least half the guessers
// matched them (an exact 50% split counts).
//
// selections must be non-empty and must not include the respondent's
// own selection; callers enforce both before getting here.
func ScoreSelections(selections []*models.Selection, respondentSelection *models.Selection, points int) []*models.Selection {
	nCorrect := 0
	toUpdate := make([]*models.Selection, 0, len(selections)+1)
	for _, selection := range selections {
		awarded := 0
		if selection.OptionIdx == respondentSelection.OptionIdx {
			awarded = points
			nCorrect++
		}
		award := awarded
		selection.Points = &award
		toUpdate = append(toUpdate, selection)
	}

	respondentPoints := 0
	if float64(nCorrect)/float64(len(selections)) >= 0.5 {
		respondentPoints = points
	}
	respondentSelection.Points = &respondentPoints

	toUpdate = append(toUpdate, respondentSelection)
	return toUpdate
}
