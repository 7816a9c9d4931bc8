package http

import (
	"quiz-share/internal/domain"
)

type errorResponse struct {
	Error    string            `json:"error"`
	Redirect string            `json:"redirect,omitempty"`
	Fields   map[string]string `json:"fields,omitempty"`
}

type questionRequest struct {
	Question string `json:"question"`
	Answer   *bool  `json:"answer"`
}

type createQuizRequest struct {
	Nickname  string            `json:"nickname" validate:"required"`
	Password  string            `json:"password" validate:"required"`
	Questions []questionRequest `json:"questions" validate:"required,max=5"`
}

func (r createQuizRequest) draft() domain.QuizDraft {
	draft := domain.QuizDraft{
		Nickname:  r.Nickname,
		Password:  r.Password,
		Questions: make([]domain.DraftQuestion, len(r.Questions)),
	}
	for i, q := range r.Questions {
		draft.Questions[i] = domain.DraftQuestion{Question: q.Question, Answer: q.Answer}
	}
	return draft
}

type createQuizResponse struct {
	ID string `json:"id"`
}

type nicknameResponse struct {
	Nickname  string `json:"nickname"`
	Available bool   `json:"available"`
}

type submitResultRequest struct {
	SubmissionID string  `json:"submissionId" validate:"omitempty,max=64"`
	Name         string  `json:"name"`
	Answers      []*bool `json:"answers" validate:"max=5"`
}

type submitResultResponse struct {
	Result domain.Result `json:"result"`
}

// An empty password is a mismatch like any other (403), so no validation tags.
type deleteQuizRequest struct {
	Password string `json:"password"`
}

type adminSessionRequest struct {
	Secret string `json:"secret"`
}

type adminSessionResponse struct {
	Unlocked bool `json:"unlocked"`
}
