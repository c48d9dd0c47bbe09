package services

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"jobcard_portal/internal/apperr"
	"jobcard_portal/internal/models"
	"jobcard_portal/internal/testutil"
)

func hseFixture(t *testing.T) (*fixture, *models.JobcardTask, []models.HseQuestion) {
	t.Helper()
	f := newFixture(t)
	node := testutil.SeedNode(t, f.db, f.item, nil, "1")
	task := testutil.SeedJobcard(t, f.db, node, "hot-work", f.member.ID)
	_, permits := testutil.SeedTopic(t, f.db, "Permits", "Permit issued?", "Gas test done?")
	_, ppe := testutil.SeedTopic(t, f.db, "PPE", "Gloves worn?")
	return f, task, append(permits, ppe...)
}

func TestChecklist(t *testing.T) {
	f, _, questions := hseFixture(t)

	checklist, err := f.hse.Checklist(context.Background(), f.member, "P-1042", "hot-work")
	require.NoError(t, err)

	require.Len(t, checklist.Topics, 2)
	assert.Equal(t, "PPE", checklist.Topics[0].Name)
	assert.Equal(t, "Permits", checklist.Topics[1].Name)
	assert.Len(t, checklist.Topics[1].Items, 2)
	assert.Nil(t, checklist.Topics[1].Items[0].Response)
	assert.Equal(t, models.HseSummary{Total: len(questions)}, checklist.Summary)
}

func TestAnswer(t *testing.T) {
	f, task, questions := hseFixture(t)
	ctx := context.Background()

	checklist, err := f.hse.Answer(ctx, f.member, "P-1042", "hot-work", AnswerRequest{Answers: []AnswerInput{
		{QuestionID: questions[0].ID, Answer: "YES"},
		{QuestionID: questions[1].ID, Answer: "no", Comment: " meter broken "},
	}})
	require.NoError(t, err)
	assert.Equal(t, models.HseSummary{Total: 3, Answered: 2, No: 1}, checklist.Summary)

	// Answering again overwrites.
	checklist, err = f.hse.Answer(ctx, f.member, "P-1042", "hot-work", AnswerRequest{Answers: []AnswerInput{
		{QuestionID: questions[1].ID, Answer: "yes"},
		{QuestionID: questions[2].ID, Answer: "na"},
	}})
	require.NoError(t, err)
	assert.Equal(t, models.HseSummary{Total: 3, Answered: 3, No: 0}, checklist.Summary)
	assert.True(t, checklist.Summary.Complete())

	responses, err := f.db.Hse().ListResponses(ctx, task.ID)
	require.NoError(t, err)
	assert.Len(t, responses, 3)
	for _, r := range responses {
		assert.Equal(t, f.member.ID, r.RespondedBy)
	}
}

func TestAnswerValidation(t *testing.T) {
	f, task, questions := hseFixture(t)
	ctx := context.Background()

	tests := []struct {
		name    string
		answers []AnswerInput
	}{
		{"unknown question", []AnswerInput{{QuestionID: uuid.New(), Answer: "yes"}}},
		{"bad answer", []AnswerInput{{QuestionID: questions[0].ID, Answer: "maybe"}}},
		{"duplicate", []AnswerInput{
			{QuestionID: questions[0].ID, Answer: "yes"},
			{QuestionID: questions[0].ID, Answer: "no"},
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.hse.Answer(ctx, f.member, "P-1042", "hot-work", AnswerRequest{Answers: tt.answers})
			assert.ErrorIs(t, err, apperr.ErrValidation)
		})
	}

	// A rejected batch writes nothing.
	responses, err := f.db.Hse().ListResponses(ctx, task.ID)
	require.NoError(t, err)
	assert.Empty(t, responses)

	_, err = f.hse.Answer(ctx, f.outside, "P-1042", "hot-work", AnswerRequest{Answers: []AnswerInput{{QuestionID: questions[0].ID, Answer: "yes"}}})
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestDeactivatedQuestion(t *testing.T) {
	f, _, questions := hseFixture(t)
	ctx := context.Background()

	_, err := f.hse.Answer(ctx, f.member, "P-1042", "hot-work", AnswerRequest{Answers: []AnswerInput{
		{QuestionID: questions[2].ID, Answer: "no"},
	}})
	require.NoError(t, err)

	inactive := false
	_, err = f.hse.UpdateQuestion(ctx, f.super, questions[2].ID, UpdateQuestionRequest{Active: &inactive})
	require.NoError(t, err)

	checklist, err := f.hse.Checklist(ctx, f.member, "P-1042", "hot-work")
	require.NoError(t, err)
	assert.Equal(t, models.HseSummary{Total: 2}, checklist.Summary)

	_, err = f.hse.Answer(ctx, f.member, "P-1042", "hot-work", AnswerRequest{Answers: []AnswerInput{
		{QuestionID: questions[2].ID, Answer: "yes"},
	}})
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestHseDefinitions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	_, err := f.hse.CreateTopic(ctx, f.admin1, TopicRequest{Name: "Lifting"})
	assert.ErrorIs(t, err, apperr.ErrForbidden)

	topic, err := f.hse.CreateTopic(ctx, f.super, TopicRequest{Name: " Lifting ", SortOrder: 2})
	require.NoError(t, err)
	assert.Equal(t, "Lifting", topic.Name)
	assert.True(t, topic.Active)

	_, err = f.hse.CreateTopic(ctx, f.super, TopicRequest{Name: "Lifting"})
	assert.ErrorIs(t, err, apperr.ErrConflict)

	question, err := f.hse.CreateQuestion(ctx, f.super, topic.ID, QuestionRequest{Prompt: "Lift plan approved?"})
	require.NoError(t, err)
	assert.Equal(t, topic.ID, question.TopicID)

	_, err = f.hse.CreateQuestion(ctx, f.super, uuid.New(), QuestionRequest{Prompt: "x"})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	reworded := "Lift plan signed?"
	updated, err := f.hse.UpdateQuestion(ctx, f.super, question.ID, UpdateQuestionRequest{Prompt: &reworded})
	require.NoError(t, err)
	assert.Equal(t, reworded, updated.Prompt)

	_, err = f.hse.UpdateQuestion(ctx, f.super, uuid.New(), UpdateQuestionRequest{Prompt: &reworded})
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	topics, err := f.hse.ListTopics(ctx, f.super)
	require.NoError(t, err)
	require.Len(t, topics, 1)
	assert.Len(t, topics[0].Questions, 1)
}

func TestSummarizeIgnoresInactiveAnswers(t *testing.T) {
	active := models.HseQuestion{ID: uuid.New(), Active: true}
	topics := []models.HseTopic{{ID: uuid.New(), Questions: []models.HseQuestion{active}}}
	responses := []models.HseResponse{
		{QuestionID: active.ID, Answer: models.AnswerNo},
		{QuestionID: uuid.New(), Answer: models.AnswerNo},
	}

	assert.Equal(t, models.HseSummary{Total: 1, Answered: 1, No: 1}, summarize(topics, responses))
}
