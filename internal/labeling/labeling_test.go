package labeling

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/objones25/vectrend/internal/ranking"
	"github.com/objones25/vectrend/internal/record"
	"github.com/objones25/vectrend/internal/testutil"
	"github.com/objones25/vectrend/internal/trends"
)

type fakeLabeler struct {
	labels []string
	err    error
	calls  int
	groups [][]string
}

func (f *fakeLabeler) Label(_ context.Context, groups [][]string) ([]string, error) {
	f.calls++
	f.groups = groups
	if f.err != nil {
		return nil, f.err
	}
	return f.labels, nil
}

// makeResult builds n ranked groups; group i holds size texts "g{i}-{j}".
func makeResult(n, size int) *trends.Result {
	res := &trends.Result{K: n}
	for i := 0; i < n; i++ {
		g := ranking.Group{ClusterID: i, Count: size, CustomDensity: float64(n - i)}
		for j := 0; j < size; j++ {
			g.Records = append(g.Records, record.Record{
				ID:     record.IntID(i*size + j),
				Text:   fmt.Sprintf("g%d-%d", i, j),
				Vector: []float64{float64(i), float64(j)},
			})
		}
		res.Rankings = append(res.Rankings, g)
	}
	return res
}

func TestClassify(t *testing.T) {
	ctx := context.Background()

	t.Run("labels top clusters in rank order", func(t *testing.T) {
		fake := &fakeLabeler{labels: []string{"Billing issues", "Login errors"}}
		c := NewClassifier(fake, testutil.TestLogger(t))

		out, err := c.Classify(ctx, makeResult(4, 3), Options{NTopics: 2})
		require.NoError(t, err)
		require.Len(t, out, 2)

		assert.Equal(t, "Billing issues", out[0].Name)
		assert.Equal(t, 0, out[0].ClusterID)
		assert.Equal(t, 4.0, out[0].Score)
		assert.Equal(t, 3, out[0].Count)
		assert.Len(t, out[0].Records, 3)
		assert.Equal(t, "Login errors", out[1].Name)
		assert.Equal(t, 1, fake.calls)
		assert.Equal(t, []string{"g0-0", "g0-1", "g0-2"}, fake.groups[0])
	})

	t.Run("truncates texts per group", func(t *testing.T) {
		fake := &fakeLabeler{labels: []string{"a"}}
		c := NewClassifier(fake, testutil.TestLogger(t))

		out, err := c.Classify(ctx, makeResult(1, 15), Options{NTopics: 1, ElementsPerGroup: 5})
		require.NoError(t, err)
		require.Len(t, fake.groups, 1)
		assert.Len(t, fake.groups[0], 5)
		// records in the output are not truncated
		assert.Len(t, out[0].Records, 15)
	})

	t.Run("defaults apply", func(t *testing.T) {
		fake := &fakeLabeler{}
		c := NewClassifier(fake, testutil.TestLogger(t))

		out, err := c.Classify(ctx, makeResult(12, 11), Options{})
		require.NoError(t, err)
		assert.Len(t, out, DefaultTopics)
		assert.Len(t, fake.groups[0], DefaultElementsPerGroup)
	})

	t.Run("labeler error falls back to placeholder", func(t *testing.T) {
		fake := &fakeLabeler{err: errors.New("upstream unavailable")}
		c := NewClassifier(fake, testutil.TestLogger(t))

		out, err := c.Classify(ctx, makeResult(3, 2), Options{NTopics: 3})
		require.NoError(t, err)
		require.Len(t, out, 3)
		for _, cl := range out {
			assert.Equal(t, PlaceholderLabel, cl.Name)
		}
	})

	t.Run("short and blank labels fall back to placeholder", func(t *testing.T) {
		fake := &fakeLabeler{labels: []string{"  ", "Shipping"}}
		c := NewClassifier(fake, testutil.TestLogger(t))

		out, err := c.Classify(ctx, makeResult(3, 2), Options{NTopics: 3})
		require.NoError(t, err)
		assert.Equal(t, PlaceholderLabel, out[0].Name)
		assert.Equal(t, "Shipping", out[1].Name)
		assert.Equal(t, PlaceholderLabel, out[2].Name)
	})

	t.Run("too many topics", func(t *testing.T) {
		fake := &fakeLabeler{}
		c := NewClassifier(fake, testutil.TestLogger(t))

		_, err := c.Classify(ctx, makeResult(2, 2), Options{NTopics: 3})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrTooManyTopics)
		assert.Contains(t, err.Error(), "nTopics=3")
		assert.Contains(t, err.Error(), "clusters=2")
		assert.Zero(t, fake.calls)
	})

	t.Run("nil result", func(t *testing.T) {
		c := NewClassifier(&fakeLabeler{}, testutil.TestLogger(t))
		_, err := c.Classify(ctx, nil, Options{})
		assert.ErrorIs(t, err, ErrNilResult)
	})

	t.Run("result is not mutated", func(t *testing.T) {
		res := makeResult(2, 4)
		before := makeResult(2, 4)
		c := NewClassifier(&fakeLabeler{labels: []string{"x", "y"}}, testutil.TestLogger(t))

		_, err := c.Classify(ctx, res, Options{NTopics: 2, ElementsPerGroup: 1})
		require.NoError(t, err)
		assert.Equal(t, before, res)
	})
}

func TestBuildPrompt(t *testing.T) {
	p := BuildPrompt([][]string{{"late delivery", "box damaged"}, {"refund please"}})

	assert.Contains(t, p, "between 1-6 words")
	assert.Contains(t, p, "There are 2 groups.")
	assert.Contains(t, p, "Group 1:\nFeedback 1: late delivery\nFeedback 2: box damaged\n")
	assert.Contains(t, p, "Group 2:\nFeedback 1: refund please\n")
	assert.Regexp(t, `JSON Response:$`, p)
}

func TestParseLabels(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    []string
		wantErr bool
	}{
		{name: "plain array", content: `["A", "B"]`, want: []string{"A", "B"}},
		{name: "surrounding prose", content: "Sure! Here you go:\n[\"Refunds\", \"Delivery delays\"]\nHope it helps.", want: []string{"Refunds", "Delivery delays"}},
		{name: "code fence", content: "```json\n[\"One\"]\n```", want: []string{"One"}},
		{name: "trims labels", content: `["  spaced  "]`, want: []string{"spaced"}},
		{name: "non-string entries", content: `["ok", 3, null]`, want: []string{"ok", "", ""}},
		{name: "empty array", content: `[]`, want: []string{}},
		{name: "no array", content: "I cannot help with that", wantErr: true},
		{name: "broken json", content: `["unterminated]`, wantErr: true},
		{name: "reversed brackets", content: `] nothing [`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseLabels(tt.content)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrMalformedResponse)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "unchanged", in: "late delivery", want: "late delivery"},
		{name: "newlines collapse", in: "line one\n\nline  two\t", want: "line one line two"},
		{name: "zero width removed", in: "re\u200bfund\ufeff", want: "refund"},
		{name: "empty", in: "   ", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanText(tt.in))
		})
	}

	long := cleanText(strings.Repeat("é", maxPromptTextRunes+10))
	assert.Equal(t, maxPromptTextRunes+3, len([]rune(long)))
	assert.True(t, strings.HasSuffix(long, "..."))
}

func TestBuildPromptFlattensTexts(t *testing.T) {
	p := BuildPrompt([][]string{{"first line\nsecond line"}})
	assert.Contains(t, p, "Feedback 1: first line second line\n")
}
