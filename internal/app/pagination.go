package app

import (
	"strings"

	"quiz-share/internal/domain"
)

// Page is one 1-based page of a collection.
type Page[T any] struct {
	Items       []T   `json:"items"`
	Number      int   `json:"page"`
	TotalPages  int   `json:"totalPages"`
	TotalItems  int   `json:"totalItems"`
	PageNumbers []int `json:"pageNumbers"`
	HasPrev     bool  `json:"hasPrev"`
	HasNext     bool  `json:"hasNext"`
}

// BrowsePage is a page of the quiz browse list.
type BrowsePage struct {
	Filter string `json:"filter"`
	Page[domain.QuizSummary]
}

// ResultsPage is a page of one quiz's results.
type ResultsPage struct {
	QuizID   string `json:"quizId"`
	Nickname string `json:"nickname"`
	Page[domain.Result]
}

// TotalPages is ceil(count/size).
func TotalPages(count, size int) int {
	if count <= 0 || size <= 0 {
		return 0
	}
	return (count + size - 1) / size
}

// ClampPage pins page into [1, totalPages]. With no pages it returns 1.
func ClampPage(page, totalPages int) int {
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}
	return page
}

// Paginate slices items into the requested page, clamping out-of-range pages.
func Paginate[T any](items []T, page, size int) Page[T] {
	if size <= 0 {
		size = domain.PageSize
	}
	total := len(items)
	pages := TotalPages(total, size)
	number := ClampPage(page, pages)

	start := min((number-1)*size, total)
	end := min(start+size, total)
	pageItems := make([]T, 0, end-start)
	pageItems = append(pageItems, items[start:end]...)

	numbers := make([]int, 0, pages)
	for i := 1; i <= pages; i++ {
		numbers = append(numbers, i)
	}

	return Page[T]{
		Items:       pageItems,
		Number:      number,
		TotalPages:  pages,
		TotalItems:  total,
		PageNumbers: numbers,
		HasPrev:     number > 1,
		HasNext:     number < pages,
	}
}

// FilterByNickname keeps quizzes whose nickname contains filter, ignoring case.
func FilterByNickname(quizzes []domain.Quiz, filter string) []domain.Quiz {
	needle := strings.ToLower(filter)
	filtered := make([]domain.Quiz, 0, len(quizzes))
	for _, quiz := range quizzes {
		if strings.Contains(strings.ToLower(quiz.Nickname), needle) {
			filtered = append(filtered, quiz)
		}
	}
	return filtered
}

// BrowseState is the per-session presentation state of the browse view.
type BrowseState struct {
	Filter string
	Page   int
}

func NewBrowseState() BrowseState {
	return BrowseState{Page: 1}
}

// WithFilter replaces the filter and goes back to the first page.
func (s BrowseState) WithFilter(filter string) BrowseState {
	s.Filter = filter
	s.Page = 1
	return s
}

func (s BrowseState) WithPage(page int) BrowseState {
	s.Page = page
	return s
}

func (s BrowseState) Prev() BrowseState {
	s.Page = max(s.Page-1, 1)
	return s
}

func (s BrowseState) Next(totalPages int) BrowseState {
	s.Page = ClampPage(s.Page+1, totalPages)
	return s
}
