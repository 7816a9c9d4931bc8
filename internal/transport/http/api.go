package http

import (
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"quiz-share/internal/app"
	"quiz-share/internal/domain"
)

// API serves the JSON endpoints over the quiz use cases.
type API struct {
	service  *app.QuizService
	validate *validator.Validate
	log      *zap.Logger
}

func NewAPI(service *app.QuizService, log *zap.Logger) *API {
	if log == nil {
		log = zap.NewNop()
	}
	return &API{service: service, validate: newValidator(), log: log}
}

func (a *API) HandleBrowse(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	state := app.NewBrowseState().WithFilter(r.URL.Query().Get("q")).WithPage(page)
	result, err := a.service.BrowseQuizzes(r.Context(), state)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) HandleCreateQuiz(w http.ResponseWriter, r *http.Request) {
	var req createQuizRequest
	if err := decodeJSON(r, a.validate, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	id, err := a.service.CreateQuiz(r.Context(), req.draft())
	if err != nil {
		a.fail(w, r, err)
		return
	}
	w.Header().Set("Location", "/api/quizzes/"+id)
	writeJSON(w, http.StatusCreated, createQuizResponse{ID: id})
}

func (a *API) HandleNickname(w http.ResponseWriter, r *http.Request) {
	nickname := r.PathValue("nickname")
	available, err := a.service.NicknameAvailable(r.Context(), nickname)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, nicknameResponse{Nickname: app.NormalizeNickname(nickname), Available: available})
}

func (a *API) HandleGetQuiz(w http.ResponseWriter, r *http.Request) {
	sheet, err := a.service.OpenQuiz(r.Context(), r.PathValue("id"))
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sheet)
}

func (a *API) HandleSubmitResult(w http.ResponseWriter, r *http.Request) {
	var req submitResultRequest
	if err := decodeJSON(r, a.validate, &req); err != nil {
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			err = invalidSubmission(verr)
		}
		a.fail(w, r, err)
		return
	}
	result, err := a.service.SubmitAnswers(r.Context(), r.PathValue("id"), domain.Submission{
		ID:             req.SubmissionID,
		RespondentName: req.Name,
		Answers:        req.Answers,
	})
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, submitResultResponse{Result: result})
}

func (a *API) HandleListResults(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	results, err := a.service.ListResults(r.Context(), r.PathValue("id"), page)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, results)
}

func (a *API) HandleDeleteQuiz(w http.ResponseWriter, r *http.Request) {
	var req deleteQuizRequest
	if err := decodeJSON(r, a.validate, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.service.DeleteQuiz(r.Context(), r.PathValue("id"), req.Password); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// HandleAdminSession checks the admin secret; a mismatch tells the client to go back home.
func (a *API) HandleAdminSession(w http.ResponseWriter, r *http.Request) {
	var req adminSessionRequest
	if err := decodeJSON(r, a.validate, &req); err != nil {
		a.fail(w, r, err)
		return
	}
	if err := a.service.UnlockAdmin(req.Secret); err != nil {
		writeJSON(w, http.StatusForbidden, errorResponse{Error: errorMessage(err), Redirect: "/"})
		return
	}
	writeJSON(w, http.StatusOK, adminSessionResponse{Unlocked: true})
}

func (a *API) HandleAdminBrowse(w http.ResponseWriter, r *http.Request) {
	page, err := parsePage(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}
	state := app.NewBrowseState().WithFilter(r.URL.Query().Get("q")).WithPage(page)
	result, err := a.service.AdminBrowse(r.Context(), r.Header.Get(adminSecretHeader), state)
	if err != nil {
		a.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (a *API) HandleAdminDelete(w http.ResponseWriter, r *http.Request) {
	if err := a.service.AdminDelete(r.Context(), r.Header.Get(adminSecretHeader), r.PathValue("id")); err != nil {
		a.fail(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (a *API) fail(w http.ResponseWriter, r *http.Request, err error) {
	if status := statusFor(err); status >= http.StatusInternalServerError {
		a.log.Error("request failed",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", status),
			zap.Error(err),
		)
	}
	writeServiceError(w, err)
}
