// internal/workers/data-access/query-user-activity/handler_test.go
package queryuseractivity

import (
	"context"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	apperrors "job-recommender/internal/common/errors"
	"job-recommender/internal/common/logger"
	"job-recommender/internal/repository"
)

func createTestLogger(t *testing.T) logger.Logger {
	return logger.NewZapAdapter(zaptest.NewLogger(t))
}

const sumQuery = `SELECT job_id, COALESCE(SUM(time_spent), 0) FROM seeker_activity WHERE email = $1 GROUP BY job_id`

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name      string
		email     string
		mockQuery func(mock sqlmock.Sqlmock)
		wantTop   []string
		wantAny   bool
	}{
		{
			name:  "aggregated activity",
			email: "Seeker@Example.com",
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(sumQuery)).
					WithArgs("seeker@example.com").
					WillReturnRows(sqlmock.NewRows([]string{"job_id", "total"}).
						AddRow("j1", 20.0).
						AddRow("j2", 300.0).
						AddRow("j3", 45.0).
						AddRow("j4", 5.0))
			},
			wantTop: []string{"j2", "j3", "j1"},
			wantAny: true,
		},
		{
			name:  "no activity",
			email: "new@example.com",
			mockQuery: func(mock sqlmock.Sqlmock) {
				mock.ExpectQuery(regexp.QuoteMeta(sumQuery)).
					WithArgs("new@example.com").
					WillReturnRows(sqlmock.NewRows([]string{"job_id", "total"}))
			},
			wantTop: []string{},
			wantAny: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, mock, err := sqlmock.New()
			require.NoError(t, err)
			defer db.Close()
			tt.mockQuery(mock)

			repo := repository.NewActivityRepository(db, nil, time.Minute, logger.NewNoOpLogger())
			h := NewHandler(LoadConfig(), repo, nil, createTestLogger(t))

			out, err := h.Execute(context.Background(), &Input{Email: tt.email})
			require.NoError(t, err)
			assert.Equal(t, tt.wantTop, out.TopJobIDs)
			assert.Equal(t, tt.wantAny, out.HasActivity)
			assert.NotNil(t, out.Activity)
			assert.NoError(t, mock.ExpectationsWereMet())
		})
	}
}

func TestHandler_Execute_Errors(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	mock.ExpectQuery(regexp.QuoteMeta(sumQuery)).
		WithArgs("a@b.io").
		WillReturnError(errors.New("connection refused"))

	repo := repository.NewActivityRepository(db, nil, time.Minute, logger.NewNoOpLogger())
	h := NewHandler(LoadConfig(), repo, nil, createTestLogger(t))

	_, err = h.Execute(context.Background(), &Input{Email: "a@b.io"})
	assert.Equal(t, apperrors.ErrCodeActivitySourceUnavailable, apperrors.CodeOf(err))

	_, err = h.Execute(context.Background(), &Input{Email: "  "})
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, apperrors.CodeOf(err))

	_, err = h.Execute(context.Background(), nil)
	assert.Equal(t, apperrors.ErrCodeInvalidRequest, apperrors.CodeOf(err))
}
