package service

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insurecare/feedback-portal/internal/access"
	"github.com/insurecare/feedback-portal/internal/domain"
	"github.com/insurecare/feedback-portal/internal/qr"
	apperrors "github.com/insurecare/feedback-portal/pkg/util/errorutil"
)

var pngMagic = []byte{0x89, 'P', 'N', 'G'}

func TestScanResolvesToPublicSummary(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	employee := f.employee(t, "Eve")

	summary, err := f.qr.Scan(ctx, access.Anonymous(), qr.Payload(testBaseURL, domain.KindEmployee, employee.ID))
	require.NoError(t, err)
	assert.Equal(t, employee.ID, summary.ID)
	assert.Equal(t, "Claims", summary.Department)

	for _, payload := range []string{"", "https://portal.example.com/profile/agent/1", "/rate/agent/abc", "/rate/boss/1"} {
		_, err := f.qr.Scan(ctx, access.Anonymous(), payload)
		de := requireCode(t, err, apperrors.CodeInvalidCode)
		assert.Equal(t, 422, de.HTTPStatus)
	}

	_, err = f.qr.Scan(ctx, access.Anonymous(), "/rate/agent/999")
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestRenderProfileAccess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	mine := f.agent(t, "Jane Smith")
	theirs := f.agent(t, "Ann")

	image, err := f.qr.RenderProfile(ctx, admin, theirs.Target())
	require.NoError(t, err)
	assert.Equal(t, "Ann-qr-code.png", image.Filename)
	assert.Equal(t, "image/png", image.ContentType)
	assert.Equal(t, qr.Payload(testBaseURL, domain.KindAgent, theirs.ID), image.URI)
	assert.True(t, bytes.HasPrefix(image.Data, pngMagic))

	staff := access.Agent(7, mine.ID)
	own, err := f.qr.OwnCode(ctx, staff)
	require.NoError(t, err)
	assert.Equal(t, "Jane Smith-qr-code.png", own.Filename)

	_, err = f.qr.RenderProfile(ctx, staff, theirs.Target())
	requireCode(t, err, apperrors.CodeForbidden)

	_, err = f.qr.RenderProfile(ctx, access.Anonymous(), mine.Target())
	requireCode(t, err, apperrors.CodeUnauthorized)

	_, err = f.qr.RenderProfile(ctx, admin, domain.ForEmployee(404))
	requireCode(t, err, apperrors.CodeNotFound)
}

func TestPublishUploadsImage(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	agent := f.agent(t, "Jane")

	published, err := f.qr.Publish(ctx, admin, agent.Target())
	require.NoError(t, err)
	assert.NotEmpty(t, published.URL)
	obj, ok := f.objects.Get(published.Key)
	require.True(t, ok)
	assert.Equal(t, "image/png", obj.ContentType)
	assert.True(t, bytes.HasPrefix(obj.Body, pngMagic))

	f.qr.store = nil
	_, err = f.qr.Publish(ctx, admin, agent.Target())
	requireCode(t, err, apperrors.CodeUnavailable)
}
