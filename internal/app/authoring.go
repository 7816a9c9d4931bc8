package app

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"quiz-share/internal/domain"
)

// NormalizeNickname is the stored and compared form of a nickname.
func NormalizeNickname(nickname string) string {
	return strings.ToLower(strings.TrimSpace(nickname))
}

// ValidateDraft checks a draft before anything touches the store.
// The password must be PasswordLength characters; digits are not required.
func ValidateDraft(draft domain.QuizDraft) error {
	fields := make(map[string]string)

	if NormalizeNickname(draft.Nickname) == "" {
		fields["nickname"] = "required"
	}
	if utf8.RuneCountInString(draft.Password) != domain.PasswordLength {
		fields["password"] = fmt.Sprintf("must be exactly %d characters", domain.PasswordLength)
	}
	if len(draft.Questions) != domain.QuestionCount {
		fields["questions"] = fmt.Sprintf("must contain exactly %d questions", domain.QuestionCount)
	} else {
		for i, question := range draft.Questions {
			if strings.TrimSpace(question.Question) == "" {
				fields[fmt.Sprintf("questions[%d].question", i)] = "required"
			}
			if question.Answer == nil {
				fields[fmt.Sprintf("questions[%d].answer", i)] = "must be true or false"
			}
		}
	}

	if len(fields) > 0 {
		return &domain.ValidationError{Fields: fields}
	}
	return nil
}

// questionsFromDraft assumes the draft passed ValidateDraft.
func questionsFromDraft(drafts []domain.DraftQuestion) []domain.Question {
	questions := make([]domain.Question, len(drafts))
	for i, draft := range drafts {
		questions[i] = domain.Question{
			Question: strings.TrimSpace(draft.Question),
			Answer:   *draft.Answer,
		}
	}
	return questions
}
