package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/repository"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
)

func TestAverageOfThreeSubmissions(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agent := f.agent(t, "Jane")
	q := f.question(t, domain.KindAgent)

	f.rate(t, agent.Target(), q.ID, 5, 3, 4)

	view, err := f.profiles.GetAgent(ctx, access.Anonymous(), agent.ID)
	require.NoError(t, err)
	assert.EqualValues(t, 3, view.Stats.Count)
	require.NotNil(t, view.Stats.Average)
	assert.Equal(t, 4.0, *view.Stats.Average)

	other := f.agent(t, "Ann")
	empty, err := f.ratings.Summary(ctx, other.Target())
	require.NoError(t, err)
	assert.Zero(t, empty.Count)
	assert.Nil(t, empty.Average)
}

func TestAverageIsRoundedToTwoDecimals(t *testing.T) {
	f := newFixture(t)
	agent := f.agent(t, "Jane")
	q := f.question(t, domain.KindAgent)
	f.rate(t, agent.Target(), q.ID, 5, 4, 4)

	stats, err := f.ratings.Summary(context.Background(), agent.Target())
	require.NoError(t, err)
	require.NotNil(t, stats.Average)
	assert.Equal(t, 4.33, *stats.Average)
}

func TestSubmitListsEveryFailingField(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agent := f.agent(t, "Jane")

	_, err := f.ratings.Submit(ctx, access.Anonymous(), SubmitRatingInput{
		AgentID:    &agent.ID,
		RaterName:  "J",
		RaterEmail: "not-an-email",
		RaterPhone: "123",
		Ratings:    []RatingAnswer{{QuestionID: 1, Value: 6}},
	})
	de := requireCode(t, err, apperrors.CodeValidation)
	for _, field := range []string{"rater_name", "rater_email", "rater_phone", "ratings[0].rating_value"} {
		assert.Contains(t, de.Details, field)
	}
}

func TestSubmitRequiresExactlyOneTarget(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agent := f.agent(t, "Jane")
	employee := f.employee(t, "Eve")
	q := f.question(t, domain.KindAgent)

	base := SubmitRatingInput{
		RaterName:  "Customer",
		RaterEmail: "c@x.com",
		RaterPhone: "0812345678901",
		Ratings:    []RatingAnswer{{QuestionID: q.ID, Value: 4}},
	}

	both := base
	both.AgentID, both.EmployeeID = &agent.ID, &employee.ID
	_, err := f.ratings.Submit(ctx, access.Anonymous(), both)
	de := requireCode(t, err, apperrors.CodeValidation)
	assert.Contains(t, de.Details, "target")

	_, err = f.ratings.Submit(ctx, access.Anonymous(), base)
	de = requireCode(t, err, apperrors.CodeValidation)
	assert.Contains(t, de.Details, "target")

	missing := base
	missing.AgentID = int64Ptr(agent.ID + 100)
	_, err = f.ratings.Submit(ctx, access.Anonymous(), missing)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestSubmitIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agent := f.agent(t, "Jane")
	active := f.question(t, domain.KindAgent)
	employeeQ := f.question(t, domain.KindEmployee)
	inactive := f.question(t, domain.KindAgent)
	off := false
	_, err := f.questions.Update(ctx, admin, inactive.ID, QuestionPatch{IsActive: &off})
	require.NoError(t, err)

	_, err = f.ratings.Submit(ctx, access.Anonymous(), SubmitRatingInput{
		AgentID:    &agent.ID,
		RaterName:  "Customer",
		RaterEmail: "c@x.com",
		RaterPhone: "0812345678901",
		Ratings: []RatingAnswer{
			{QuestionID: active.ID, Value: 5},
			{QuestionID: employeeQ.ID, Value: 4},
			{QuestionID: inactive.ID, Value: 3},
			{QuestionID: active.ID + 100, Value: 2},
		},
	})
	de := requireCode(t, err, apperrors.CodeValidation)
	assert.Len(t, de.Details, 3)
	assert.Contains(t, de.Details, "ratings[1].question_id")
	assert.Contains(t, de.Details, "ratings[2].question_id")
	assert.Contains(t, de.Details, "ratings[3].question_id")

	_, err = f.ratings.Submit(ctx, access.Anonymous(), SubmitRatingInput{
		AgentID:    &agent.ID,
		RaterName:  "Customer",
		RaterEmail: "c@x.com",
		RaterPhone: "0812345678901",
		Ratings:    []RatingAnswer{{QuestionID: active.ID, Value: 5}, {QuestionID: active.ID, Value: 1}},
	})
	de = requireCode(t, err, apperrors.CodeValidation)
	assert.Contains(t, de.Details, "ratings[1].question_id")

	stats, err := f.ratings.Summary(ctx, agent.Target())
	require.NoError(t, err)
	assert.Zero(t, stats.Count)
}

func TestStaffSeeOnlyTheirOwnRatings(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mine := f.agent(t, "Jane")
	theirs := f.agent(t, "Ann")
	q := f.question(t, domain.KindAgent)
	f.rate(t, mine.Target(), q.ID, 5)
	f.rate(t, theirs.Target(), q.ID, 2, 3)

	staff := access.Agent(10, mine.ID)

	page, err := f.ratings.List(ctx, staff, RatingListInput{Target: theirs.Target()})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
	assert.Empty(t, page.Items)

	page, err = f.ratings.List(ctx, staff, RatingListInput{})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)
	assert.Equal(t, mine.Target(), page.Items[0].Target)
	assert.Equal(t, q.Text, page.Items[0].QuestionText)

	page, err = f.ratings.List(ctx, admin, RatingListInput{PageRequest: PageRequest{Page: 1, Limit: 2}})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	assert.Equal(t, 2, page.TotalPages)
	assert.Len(t, page.Items, 2)

	_, err = f.ratings.List(ctx, access.Agent(11, 0), RatingListInput{})
	requireCode(t, err, apperrors.CodeProfileNotFound)

	_, err = f.ratings.List(ctx, access.Anonymous(), RatingListInput{})
	requireCode(t, err, apperrors.CodeUnauthorized)
}

func TestDeleteRatingIsAdminOnly(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agent := f.agent(t, "Jane")
	q := f.question(t, domain.KindAgent)
	f.rate(t, agent.Target(), q.ID, 4)

	ratings, _, err := f.store.Ratings().List(ctx, repository.RatingFilter{})
	require.NoError(t, err)
	require.Len(t, ratings, 1)

	err = f.ratings.Delete(ctx, access.Agent(10, agent.ID), ratings[0].ID)
	requireCode(t, err, apperrors.CodeForbidden)

	require.NoError(t, f.ratings.Delete(ctx, admin, ratings[0].ID))
	err = f.ratings.Delete(ctx, admin, ratings[0].ID)
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestQuestionsListedInOrderAndActiveForPublic(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	second, err := f.questions.Create(ctx, admin, QuestionInput{Text: "Second question", Type: domain.KindAgent, OrderIndex: 2})
	require.NoError(t, err)
	off := false
	hidden, err := f.questions.Create(ctx, admin, QuestionInput{Text: "Hidden question", Type: domain.KindAgent, OrderIndex: 0, IsActive: &off})
	require.NoError(t, err)
	first, err := f.questions.Create(ctx, admin, QuestionInput{Text: "First question", Type: domain.KindAgent, OrderIndex: 1})
	require.NoError(t, err)
	_, err = f.questions.Create(ctx, admin, QuestionInput{Text: "Employee question", Type: domain.KindEmployee})
	require.NoError(t, err)

	kind := domain.KindAgent
	public, err := f.questions.List(ctx, access.Anonymous(), &kind)
	require.NoError(t, err)
	require.Len(t, public, 2)
	assert.Equal(t, first.ID, public[0].ID)
	assert.Equal(t, second.ID, public[1].ID)

	all, err := f.questions.List(ctx, admin, &kind)
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.Equal(t, hidden.ID, all[0].ID)

	_, err = f.questions.Create(ctx, access.Anonymous(), QuestionInput{Text: "Sneaky question", Type: domain.KindAgent})
	requireCode(t, err, apperrors.CodeUnauthorized)
}
