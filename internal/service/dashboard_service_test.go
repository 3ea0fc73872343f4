package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/domain"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
)

func TestStaffStatsFollowWrites(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agent := f.agent(t, "Jane")
	q := f.question(t, domain.KindAgent)
	f.rate(t, agent.Target(), q.ID, 5)
	staff := access.Agent(3, agent.ID)

	stats, err := f.dashboard.StaffStats(ctx, staff)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.TotalRatings)
	assert.Equal(t, agent.Target(), stats.Target)

	// The cached entry is dropped by the submission event.
	f.rate(t, agent.Target(), q.ID, 3)
	_, err = f.complaints.File(ctx, access.Anonymous(), complaintInput(agent.Target()))
	require.NoError(t, err)

	stats, err = f.dashboard.StaffStats(ctx, staff)
	require.NoError(t, err)
	assert.EqualValues(t, 2, stats.TotalRatings)
	require.NotNil(t, stats.AverageRating)
	assert.Equal(t, 4.0, *stats.AverageRating)
	assert.EqualValues(t, 1, stats.TotalComplaints)
	assert.EqualValues(t, 1, stats.PendingComplaints)
	assert.Len(t, stats.RecentRatings, 2)
	assert.Equal(t, q.Text, stats.RecentRatings[0].QuestionText)

	_, err = f.dashboard.StaffStats(ctx, admin)
	requireCode(t, err, apperrors.CodeForbidden)
	_, err = f.dashboard.StaffStats(ctx, access.Agent(4, 0))
	requireCode(t, err, apperrors.CodeProfileNotFound)
}

func TestAdminStats(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agent := f.agent(t, "Jane")
	f.employee(t, "Eve")
	q := f.question(t, domain.KindAgent)
	f.rate(t, agent.Target(), q.ID, 4, 2)
	_, err := f.auth.Register(ctx, RegisterInput{Name: "Bob", Email: "bob@x.com", Password: "secret1", Role: domain.RoleAgent})
	require.NoError(t, err)

	stats, err := f.dashboard.AdminStats(ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Totals.Agents)
	assert.EqualValues(t, 1, stats.Totals.Employees)
	assert.EqualValues(t, 2, stats.Totals.Ratings)
	assert.EqualValues(t, 1, stats.Totals.PendingApprovals)
	require.NotNil(t, stats.Totals.AverageRating)
	assert.Equal(t, 3.0, *stats.Totals.AverageRating)
	assert.Len(t, stats.RecentRatings, 2)

	_, err = f.complaints.File(ctx, access.Anonymous(), complaintInput(domain.NoTarget()))
	require.NoError(t, err)
	stats, err = f.dashboard.AdminStats(ctx, admin)
	require.NoError(t, err)
	assert.EqualValues(t, 1, stats.Totals.Complaints)
	assert.EqualValues(t, 1, stats.Totals.PendingComplaints)

	_, err = f.dashboard.AdminStats(ctx, access.Agent(3, agent.ID))
	requireCode(t, err, apperrors.CodeForbidden)
}

func TestDashboardProfile(t *testing.T) {
	f := newFixture(t)
	agent := f.agent(t, "Jane")
	summary, err := f.dashboard.Profile(context.Background(), access.Agent(3, agent.ID))
	require.NoError(t, err)
	assert.Equal(t, agent.ID, summary.ID)
}
