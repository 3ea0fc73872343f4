package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/repository"
)

func seedAgent(t *testing.T, s *Store, name, email, code string) *domain.Agent {
	t.Helper()
	agent := &domain.Agent{Name: name, Email: email, QRCode: code}
	require.NoError(t, s.Agents().Create(context.Background(), agent))
	return agent
}

func seedQuestion(t *testing.T, s *Store, kind domain.ProfileKind, order int) *domain.Question {
	t.Helper()
	q := &domain.Question{Text: "How was it?", Type: kind, IsActive: true, OrderIndex: order}
	require.NoError(t, s.Questions().Create(context.Background(), q))
	return q
}

func TestAgentUniqueness(t *testing.T) {
	ctx := context.Background()
	s := New()
	seedAgent(t, s, "Jane", "jane@x.com", "code-1")

	err := s.Agents().Create(ctx, &domain.Agent{Name: "Other", Email: "other@x.com", QRCode: "code-1"})
	name, ok := repository.UniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, repository.ConstraintQRCodeRegistry, name)

	err = s.Agents().Create(ctx, &domain.Agent{Name: "Dup", Email: "jane@x.com", QRCode: "code-2"})
	name, ok = repository.UniqueViolation(err)
	require.True(t, ok)
	assert.Equal(t, repository.ConstraintAgentEmail, name)

	// Codes are global across kinds.
	err = s.Employees().Create(ctx, &domain.Employee{Name: "E", Email: "e@x.com", QRCode: "code-1"})
	_, ok = repository.UniqueViolation(err)
	assert.True(t, ok)
}

func TestAgentLinkRequiresExistingUser(t *testing.T) {
	missing := int64(42)
	err := New().Agents().Create(context.Background(), &domain.Agent{Name: "A", Email: "a@x.com", QRCode: "c", UserID: &missing})
	_, ok := repository.ForeignKeyViolation(err)
	assert.True(t, ok)
}

func TestDeleteAgentCascadesRatingsAndDetachesComplaints(t *testing.T) {
	ctx := context.Background()
	s := New()
	agent := seedAgent(t, s, "Jane", "jane@x.com", "code-1")
	q1 := seedQuestion(t, s, domain.KindAgent, 1)
	q2 := seedQuestion(t, s, domain.KindAgent, 2)

	require.NoError(t, s.Ratings().CreateBatch(ctx, []*domain.Rating{
		{RaterName: "Bob", Target: agent.Target(), QuestionID: q1.ID, Value: 5},
		{RaterName: "Bob", Target: agent.Target(), QuestionID: q2.ID, Value: 4},
	}))
	complaint := &domain.Complaint{Subject: "late", Target: agent.Target(), Status: domain.ComplaintStatusPending}
	require.NoError(t, s.Complaints().Create(ctx, complaint))

	require.NoError(t, s.Agents().Delete(ctx, agent.ID))

	_, total, err := s.Ratings().List(ctx, repository.RatingFilter{})
	require.NoError(t, err)
	assert.Zero(t, total)

	got, err := s.Complaints().GetByID(ctx, complaint.ID)
	require.NoError(t, err)
	assert.True(t, got.Target.IsNone())

	_, err = s.Agents().GetByID(ctx, agent.ID)
	assert.True(t, repository.IsNotFound(err))
}

func TestCreateBatchIsAllOrNothing(t *testing.T) {
	ctx := context.Background()
	s := New()
	agent := seedAgent(t, s, "Jane", "jane@x.com", "code-1")
	q := seedQuestion(t, s, domain.KindAgent, 1)

	err := s.Ratings().CreateBatch(ctx, []*domain.Rating{
		{Target: agent.Target(), QuestionID: q.ID, Value: 5},
		{Target: agent.Target(), QuestionID: q.ID + 100, Value: 3},
	})
	name, ok := repository.ForeignKeyViolation(err)
	require.True(t, ok)
	assert.Equal(t, repository.ConstraintRatingQuestionFK, name)

	stats, err := s.Ratings().Stats(ctx, agent.Target())
	require.NoError(t, err)
	assert.Zero(t, stats.Count)
	assert.Nil(t, stats.Average)
}

func TestRatingStats(t *testing.T) {
	ctx := context.Background()
	s := New()
	a := seedAgent(t, s, "Jane", "jane@x.com", "code-1")
	b := seedAgent(t, s, "Ann", "ann@x.com", "code-2")
	q := seedQuestion(t, s, domain.KindAgent, 1)

	var batch []*domain.Rating
	for _, v := range []int{5, 3, 4} {
		batch = append(batch, &domain.Rating{Target: a.Target(), QuestionID: q.ID, Value: v})
	}
	batch = append(batch, &domain.Rating{Target: b.Target(), QuestionID: q.ID, Value: 1})
	require.NoError(t, s.Ratings().CreateBatch(ctx, batch))

	stats, err := s.Ratings().Stats(ctx, a.Target())
	require.NoError(t, err)
	assert.EqualValues(t, 3, stats.Count)
	require.NotNil(t, stats.Average)
	assert.InDelta(t, 4.0, *stats.Average, 0.001)

	byProfile, err := s.Ratings().StatsByProfile(ctx, domain.KindAgent, []int64{a.ID, b.ID, 99})
	require.NoError(t, err)
	assert.Len(t, byProfile, 2)
	assert.EqualValues(t, 1, byProfile[b.ID].Count)

	totals, err := s.Stats().AdminTotals(ctx)
	require.NoError(t, err)
	assert.EqualValues(t, 2, totals.Agents)
	assert.EqualValues(t, 4, totals.Ratings)
	require.NotNil(t, totals.AverageRating)
	assert.InDelta(t, 3.25, *totals.AverageRating, 0.001)
}

func TestListsAreNewestFirstAndPaginated(t *testing.T) {
	ctx := context.Background()
	s := New()
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Minute)
	}
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Complaints().Create(ctx, &domain.Complaint{Subject: "s", Status: domain.ComplaintStatusPending}))
	}

	items, total, err := s.Complaints().List(ctx, repository.ComplaintFilter{Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, items, 2)
	assert.EqualValues(t, 3, items[0].ID)
	assert.EqualValues(t, 2, items[1].ID)
}

func TestQuestionOrderingAndCascade(t *testing.T) {
	ctx := context.Background()
	s := New()
	agent := seedAgent(t, s, "Jane", "jane@x.com", "code-1")
	second := seedQuestion(t, s, domain.KindAgent, 2)
	first := seedQuestion(t, s, domain.KindAgent, 1)
	seedQuestion(t, s, domain.KindEmployee, 0)

	kind := domain.KindAgent
	questions, err := s.Questions().List(ctx, repository.QuestionFilter{Type: &kind})
	require.NoError(t, err)
	require.Len(t, questions, 2)
	assert.Equal(t, first.ID, questions[0].ID)
	assert.Equal(t, second.ID, questions[1].ID)

	require.NoError(t, s.Ratings().CreateBatch(ctx, []*domain.Rating{{Target: agent.Target(), QuestionID: first.ID, Value: 2}}))
	require.NoError(t, s.Questions().Delete(ctx, first.ID))

	stats, err := s.Ratings().Stats(ctx, domain.NoTarget())
	require.NoError(t, err)
	assert.Zero(t, stats.Count)
}

func TestUserDeleteUnlinksProfile(t *testing.T) {
	ctx := context.Background()
	s := New()
	user := &domain.User{Name: "Jane", Email: "jane@x.com", Role: domain.RoleAgent}
	require.NoError(t, s.Users().Create(ctx, user))
	agent := &domain.Agent{Name: "Jane", Email: "jane@x.com", QRCode: "c", UserID: &user.ID}
	require.NoError(t, s.Agents().Create(ctx, agent))

	linked, err := s.Agents().GetByUserID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, agent.ID, linked.ID)

	require.NoError(t, s.Users().Delete(ctx, user.ID))
	got, err := s.Agents().GetByID(ctx, agent.ID)
	require.NoError(t, err)
	assert.Nil(t, got.UserID)
}
