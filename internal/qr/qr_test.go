package qr

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/insurecare/feedback-portal/internal/domain"
)

func TestPayload(t *testing.T) {
	assert.Equal(t, "https://portal.example.com/rate/agent/7", Payload("https://portal.example.com/", domain.KindAgent, 7))
	assert.Equal(t, "http://localhost:3000/rate/employee/12", Payload("http://localhost:3000", domain.KindEmployee, 12))
}

func TestResolveRoundTrip(t *testing.T) {
	for _, kind := range []domain.ProfileKind{domain.KindAgent, domain.KindEmployee} {
		for _, id := range []int64{1, 7, 42, 9_007_199_254_740_993} {
			target, err := Resolve(Payload("https://portal.example.com", kind, id))
			require.NoError(t, err)
			assert.Equal(t, domain.TargetFor(kind, id), target)
		}
	}
}

func TestResolveAcceptsPathsAndTrailingSlash(t *testing.T) {
	target, err := Resolve("/rate/employee/3")
	require.NoError(t, err)
	assert.Equal(t, domain.ForEmployee(3), target)

	target, err = Resolve("  http://localhost:3000/rate/agent/5/  ")
	require.NoError(t, err)
	assert.Equal(t, domain.ForAgent(5), target)
}

func TestResolveRejectsGarbage(t *testing.T) {
	tests := []struct {
		name    string
		payload string
	}{
		{name: "empty string", payload: ""},
		{name: "whitespace", payload: "   "},
		{name: "wrong path prefix", payload: "https://portal.example.com/profile/agent/7"},
		{name: "nested prefix", payload: "/api/rate/agent/7"},
		{name: "non numeric id", payload: "/rate/agent/abc"},
		{name: "signed id", payload: "/rate/agent/-7"},
		{name: "trailing content", payload: "/rate/agent/7x"},
		{name: "extra segment", payload: "/rate/agent/7/edit"},
		{name: "unknown kind", payload: "/rate/admin/7"},
		{name: "capitalised kind", payload: "/rate/Agent/7"},
		{name: "zero id", payload: "/rate/agent/0"},
		{name: "overflowing id", payload: "/rate/agent/99999999999999999999"},
		{name: "relative without slash", payload: "rate/agent/7"},
		{name: "non http scheme", payload: "ftp://host/rate/agent/7"},
		{name: "opaque token", payload: "6f1c1f0e-2c55-4b8a-9d1e-bb0b8d4c8a11"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Resolve(tt.payload)
			assert.ErrorIs(t, err, ErrInvalidCode)
		})
	}
}

func TestRenderProducesPNG(t *testing.T) {
	img, err := Render(Payload("http://localhost:3000", domain.KindAgent, 7))
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(img, []byte("\x89PNG\r\n\x1a\n")))

	again, err := Render(Payload("http://localhost:3000", domain.KindAgent, 7))
	require.NoError(t, err)
	assert.Equal(t, img, again, "rendering is deterministic")

	_, err = Render("")
	assert.Error(t, err)
}

func TestIssueIsUnique(t *testing.T) {
	seen := make(map[string]struct{})
	for i := 0; i < 1000; i++ {
		token := Issue()
		_, dup := seen[token]
		require.False(t, dup)
		seen[token] = struct{}{}
	}
}

func TestFilename(t *testing.T) {
	assert.Equal(t, "Jane Doe-qr-code.png", Filename("Jane Doe"))
	assert.Equal(t, "profile-qr-code.png", Filename("  "))
	assert.Equal(t, "a-b-qr-code.png", Filename(`a"b`))
}
