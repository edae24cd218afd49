// internal/workers/report/persist-score-result/handler_test.go
package persistscoreresult

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	stderrors "verification-workers/internal/common/errors"
	"verification-workers/internal/common/logger"
	"verification-workers/internal/scoring"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeIndexer struct {
	index string
	id    string
	body  []byte
	err   error
	calls int
}

func (f *fakeIndexer) IndexDocument(_ context.Context, index, id string, body []byte) error {
	f.calls++
	f.index = index
	f.id = id
	f.body = body
	return f.err
}

func newTestHandler(t *testing.T, indexer Indexer) (*Handler, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	h := NewHandler(LoadConfig(), logger.NewTestLogger(t), db, indexer)
	h.now = func() time.Time {
		return time.Date(2025, 6, 14, 10, 30, 0, 0, time.UTC)
	}
	return h, mock
}

func testInput() *Input {
	return &Input{
		ReportID: "rep-200",
		Strategy: "deterministic",
		Scores: scoring.Breakdown{
			Personal: 12, Business: 24, Banking: 9,
			Networth: 7.5, Debt: 10, EndUse: 10, References: 7,
		},
		Total:     79.5,
		Warnings:  []string{"no evidence found for category: debt"},
		Rationale: "field evaluation matched 31 rubric items",
	}
}

func TestExecutePersistsAndIndexes(t *testing.T) {
	indexer := &fakeIndexer{}
	h, mock := newTestHandler(t, indexer)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO verification_scores").
		WithArgs(sqlmock.AnyArg(), "rep-200", "deterministic",
			12.0, 24.0, 9.0, 7.5, 10.0, 10.0, 7.0, 79.5,
			"field evaluation matched 31 rubric items", "",
			sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO score_audit_log").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "rep-200",
			"score_persisted", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	output, err := h.Execute(context.Background(), testInput())
	require.NoError(t, err)

	assert.NotEmpty(t, output.ScoreID)
	assert.Equal(t, "rep-200", output.ReportID)
	assert.True(t, output.Indexed)
	assert.Equal(t, "2025-06-14T10:30:00Z", output.PersistedAt)

	assert.Equal(t, 1, indexer.calls)
	assert.Equal(t, "verification-scores", indexer.index)
	assert.Equal(t, output.ScoreID, indexer.id)

	var doc scoreDocument
	require.NoError(t, json.Unmarshal(indexer.body, &doc))
	assert.Equal(t, "rep-200", doc.ReportID)
	assert.InDelta(t, 79.5, doc.Total, 0.001)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteDuplicateScore(t *testing.T) {
	h, mock := newTestHandler(t, nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO verification_scores").
		WillReturnError(errors.New(`pq: duplicate key value violates unique constraint "verification_scores_report_strategy_key"`))
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), testInput())
	require.Error(t, err)

	var se *stderrors.StandardError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, stderrors.ErrCodeDuplicateScore, se.Code)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestExecuteInsertFailure(t *testing.T) {
	h, mock := newTestHandler(t, nil)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO verification_scores").
		WillReturnError(errors.New("pq: connection reset"))
	mock.ExpectRollback()

	_, err := h.Execute(context.Background(), testInput())
	require.Error(t, err)

	var se *stderrors.StandardError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, stderrors.ErrCodeScorePersistFailed, se.Code)
}

func TestExecuteIndexFailureDoesNotFailJob(t *testing.T) {
	indexer := &fakeIndexer{err: errors.New("es unavailable")}
	h, mock := newTestHandler(t, indexer)

	mock.ExpectBegin()
	mock.ExpectExec("INSERT INTO verification_scores").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("INSERT INTO score_audit_log").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	output, err := h.Execute(context.Background(), testInput())
	require.NoError(t, err)
	assert.False(t, output.Indexed)
}

func TestExecuteValidatesInput(t *testing.T) {
	h, _ := newTestHandler(t, nil)

	_, err := h.Execute(context.Background(), &Input{Strategy: "pattern"})
	assert.Error(t, err)

	_, err = h.Execute(context.Background(), &Input{ReportID: "rep-201"})
	assert.Error(t, err)
}
