package domain

import "time"

const (
	// QuestionCount is the fixed number of questions in every quiz.
	QuestionCount = 5
	// PointsPerQuestion is awarded for each answer that matches.
	PointsPerQuestion = 20
	// PasswordLength is the exact length of a quiz password.
	PasswordLength = 4
	// PageSize is the number of entries per browse or results page.
	PageSize = 6
)

// Question is one true/false statement with its expected answer.
type Question struct {
	Question string `json:"question"`
	Answer   bool   `json:"answer"`
}

// Result is one graded submission. ID is the submission id of the grading event.
type Result struct {
	ID             string    `json:"id"`
	RespondentName string    `json:"respondentName"`
	Score          int       `json:"score"`
	SubmittedAt    time.Time `json:"submittedAt"`
}

// Quiz is the stored document: owner, password, questions and accumulated results.
type Quiz struct {
	ID        string     `json:"id"`
	Nickname  string     `json:"nickname"`
	Password  string     `json:"password"`
	Questions []Question `json:"questions"`
	Results   []Result   `json:"results"`
	CreatedAt time.Time  `json:"createdAt"`
}

// DraftQuestion is a question as entered by the author; Answer is nil until chosen.
type DraftQuestion struct {
	Question string `json:"question"`
	Answer   *bool  `json:"answer"`
}

// QuizDraft is the author's input to quiz creation.
type QuizDraft struct {
	Nickname  string
	Password  string
	Questions []DraftQuestion
}

// QuizSheet is what a respondent sees: question texts without answers.
type QuizSheet struct {
	ID        string   `json:"id"`
	Nickname  string   `json:"nickname"`
	Questions []string `json:"questions"`
}

// Submission carries one respondent's answers. A nil answer is unanswered.
type Submission struct {
	ID             string
	RespondentName string
	Answers        []*bool
}

// QuizSummary is a browse-list entry. Deletable is set for admin views.
type QuizSummary struct {
	ID          string `json:"id"`
	Nickname    string `json:"nickname"`
	ResultCount int    `json:"resultCount"`
	Deletable   bool   `json:"deletable"`
}

// Content returns a copy of the quiz without its results.
func (q Quiz) Content() Quiz {
	q.Results = nil
	questions := make([]Question, len(q.Questions))
	copy(questions, q.Questions)
	q.Questions = questions
	return q
}

// Sheet returns the respondent view of the quiz.
func (q Quiz) Sheet() QuizSheet {
	texts := make([]string, len(q.Questions))
	for i, question := range q.Questions {
		texts[i] = question.Question
	}
	return QuizSheet{ID: q.ID, Nickname: q.Nickname, Questions: texts}
}

// Summary returns the browse-list entry for the quiz.
func (q Quiz) Summary() QuizSummary {
	return QuizSummary{ID: q.ID, Nickname: q.Nickname, ResultCount: len(q.Results)}
}
