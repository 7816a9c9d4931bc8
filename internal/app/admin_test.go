package app_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quiz-share/internal/app"
	"quiz-share/internal/domain"
	"quiz-share/internal/infra/memory"
)

func TestAdminGateUnlock(t *testing.T) {
	gate := app.NewAdminGate("1234")
	assert.NoError(t, gate.Unlock("1234"))
	assert.ErrorIs(t, gate.Unlock("0000"), domain.ErrWrongPassword)
	assert.ErrorIs(t, gate.Unlock(""), domain.ErrWrongPassword)

	assert.ErrorIs(t, app.NewAdminGate("").Unlock(""), domain.ErrWrongPassword)

	var missing *app.AdminGate
	assert.ErrorIs(t, missing.Unlock("1234"), domain.ErrWrongPassword)
}

func TestAdminBrowseMarksEveryQuizDeletable(t *testing.T) {
	ctx := context.Background()
	service, _ := newTestService()
	mustCreate(t, service, "alice")
	mustCreate(t, service, "bob")

	_, err := service.AdminBrowse(ctx, "nope", app.NewBrowseState())
	require.ErrorIs(t, err, domain.ErrWrongPassword)

	page, err := service.AdminBrowse(ctx, adminSecret, app.NewBrowseState())
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	for _, item := range page.Items {
		assert.True(t, item.Deletable, item.Nickname)
	}
}

func TestAdminDeleteSkipsOwnerPassword(t *testing.T) {
	ctx := context.Background()
	store := memory.NewQuizStore()
	service := app.NewQuizService(store, app.NewAdminGate(adminSecret))
	id := mustCreate(t, service, "alice")

	require.ErrorIs(t, service.AdminDelete(ctx, "wrong", id), domain.ErrWrongPassword)
	_, err := store.GetQuiz(ctx, id)
	require.NoError(t, err)

	require.NoError(t, service.AdminDelete(ctx, adminSecret, id))
	_, err = store.GetQuiz(ctx, id)
	require.ErrorIs(t, err, domain.ErrQuizNotFound)
}

func TestUnlockAdmin(t *testing.T) {
	service, _ := newTestService()
	assert.NoError(t, service.UnlockAdmin(adminSecret))
	assert.ErrorIs(t, service.UnlockAdmin("4321"), domain.ErrWrongPassword)
}
