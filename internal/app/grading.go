package app

import "quiz-share/internal/domain"

// Grade awards PointsPerQuestion for every index where the answer matches.
// Unanswered (nil) and missing answers never match.
func Grade(questions []domain.Question, answers []*bool) int {
	score := 0
	for i, question := range questions {
		if i >= len(answers) || answers[i] == nil {
			continue
		}
		if *answers[i] == question.Answer {
			score += domain.PointsPerQuestion
		}
	}
	return score
}
