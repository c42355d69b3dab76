package analysis

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/civic-tools/civiceye/pkg/models/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Minimal PNG header; enough for media type detection.
var testImage = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0}

func candidateBody(t *testing.T, classification string) []byte {
	t.Helper()
	body, err := json.Marshal(map[string]any{
		"candidates": []map[string]any{{
			"content": map[string]any{
				"parts": []map[string]any{{"text": classification}},
			},
		}},
	})
	require.NoError(t, err)
	return body
}

// testClient wires a client to the given handler and records every delay the
// retry loop asks for instead of sleeping.
func testClient(t *testing.T, handler http.Handler) (*Client, *[]time.Duration) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewClient(Config{
		Endpoint:   srv.URL,
		APIKey:     "test-key",
		Model:      "test-model",
		HTTPClient: srv.Client(),
	})

	delays := make([]time.Duration, 0)
	c.sleep = func(_ context.Context, d time.Duration) bool {
		delays = append(delays, d)
		return true
	}
	return c, &delays
}

func TestClient_Analyze_FirstAttemptSuccess(t *testing.T) {
	var gotReq generateRequest

	c, delays := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write(candidateBody(t,
			`{"category":"Pothole","severity":"High","urgency_score":7,"summary":"Significant pavement crack"}`))
	}))

	got := c.Analyze(context.Background(), testImage, "large crack in sidewalk")

	assert.Equal(t, domain.Classification{
		Category:     domain.CategoryPothole,
		Severity:     domain.SeverityHigh,
		UrgencyScore: 7,
		Summary:      "Significant pavement crack",
	}, got)
	assert.Empty(t, *delays, "success on the first attempt must not wait")

	// Request shape: user text part, then the image tagged with its media type.
	require.Len(t, gotReq.Contents, 1)
	require.Len(t, gotReq.Contents[0].Parts, 2)
	assert.Equal(t, "User reported: large crack in sidewalk", gotReq.Contents[0].Parts[0].Text)
	require.NotNil(t, gotReq.Contents[0].Parts[1].InlineData)
	assert.Equal(t, "image/png", gotReq.Contents[0].Parts[1].InlineData.MimeType)
	assert.Equal(t, base64.StdEncoding.EncodeToString(testImage), gotReq.Contents[0].Parts[1].InlineData.Data)
	assert.Equal(t, "application/json", gotReq.GenerationConfig.ResponseMimeType)
	require.NotEmpty(t, gotReq.SystemInstruction.Parts)
	assert.NotEmpty(t, gotReq.SystemInstruction.Parts[0].Text)
}

func TestClient_Analyze_MissingDescriptionUsesPlaceholder(t *testing.T) {
	var gotReq generateRequest

	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotReq))
		_, _ = w.Write(candidateBody(t,
			`{"category":"Other","severity":"Low","urgency_score":1,"summary":"ok"}`))
	}))

	c.Analyze(context.Background(), testImage, "")

	require.Len(t, gotReq.Contents, 1)
	require.NotEmpty(t, gotReq.Contents[0].Parts)
	assert.Equal(t, "User reported: No description provided.", gotReq.Contents[0].Parts[0].Text)
}

func TestClient_Analyze_SucceedsOnAttemptK(t *testing.T) {
	for k := 1; k <= 5; k++ {
		t.Run(fmt.Sprintf("attempt %d", k), func(t *testing.T) {
			calls := 0
			c, delays := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				if calls < k {
					w.WriteHeader(http.StatusServiceUnavailable)
					return
				}
				_, _ = w.Write(candidateBody(t,
					`{"category":"Water Leakage","severity":"Medium","urgency_score":4,"summary":"burst pipe"}`))
			}))

			got := c.Analyze(context.Background(), testImage, "water on road")

			assert.Equal(t, domain.CategoryWaterLeakage, got.Category)
			assert.Equal(t, 4, got.UrgencyScore)
			assert.Equal(t, k, calls)
			assert.Equal(t, DefaultSchedule[:k-1], []time.Duration(*delays),
				"success on attempt %d must observe exactly %d delays", k, k-1)
		})
	}
}

func TestClient_Analyze_ExhaustionReturnsFallback(t *testing.T) {
	calls := 0
	c, delays := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusInternalServerError)
	}))

	got := c.Analyze(context.Background(), testImage, "anything")

	assert.Equal(t, Fallback(), got)
	assert.Equal(t, domain.Classification{
		Category:     domain.CategoryUnidentified,
		Severity:     domain.SeverityMedium,
		UrgencyScore: 5,
		Summary:      "AI analysis failed.",
	}, got)
	assert.Equal(t, 5, calls)
	assert.Equal(t, DefaultSchedule, []time.Duration(*delays))
}

func TestClient_Analyze_MalformedBodyIsFailedAttempt(t *testing.T) {
	calls := 0
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			_, _ = w.Write([]byte(`{"candidates": "not what you expect"`))
			return
		}
		_, _ = w.Write(candidateBody(t,
			`{"category":"Unsafe Area","severity":"Critical","urgency_score":10,"summary":"open manhole"}`))
	}))

	got := c.Analyze(context.Background(), testImage, "hole")

	assert.Equal(t, 2, calls)
	assert.Equal(t, domain.CategoryUnsafeArea, got.Category)
	assert.Equal(t, 10, got.UrgencyScore)
}

func TestClient_Analyze_SchemaViolationIsFailedAttempt(t *testing.T) {
	calls := 0
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			// Status 200 and well-formed JSON, but outside the fixed schema.
			_, _ = w.Write(candidateBody(t,
				`{"category":"Alien Invasion","severity":"High","urgency_score":99,"summary":"nope"}`))
			return
		}
		_, _ = w.Write(candidateBody(t,
			`{"category":"Garbage Overflow","severity":"Low","urgency_score":2,"summary":"full bin"}`))
	}))

	got := c.Analyze(context.Background(), testImage, "")

	assert.Equal(t, 2, calls)
	assert.Equal(t, domain.CategoryGarbageOverflow, got.Category)
}

func TestClient_Analyze_CancelledContextShortCircuits(t *testing.T) {
	calls := 0
	c, _ := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		w.WriteHeader(http.StatusBadGateway)
	}))
	c.sleep = func(ctx context.Context, _ time.Duration) bool { return false }

	got := c.Analyze(context.Background(), testImage, "")

	assert.Equal(t, 1, calls, "cancellation during the first wait must stop retrying")
	assert.Equal(t, Fallback(), got)
}

func TestClassificationValidate(t *testing.T) {
	valid := domain.Classification{
		Category:     domain.CategoryPothole,
		Severity:     domain.SeverityLow,
		UrgencyScore: 1,
		Summary:      "s",
	}
	require.NoError(t, valid.Validate())

	bad := valid
	bad.UrgencyScore = 0
	assert.Error(t, bad.Validate())

	bad = valid
	bad.UrgencyScore = 11
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Category = "Potholes"
	assert.Error(t, bad.Validate())

	bad = valid
	bad.Severity = "Severe"
	assert.Error(t, bad.Validate())
}
