package richtext

import (
	"testing"

	"github.com/agentic-research/notional/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const apiText = `[
  {
    "type": "text",
    "text": {"content": "Our milk is ", "link": null},
    "annotations": {"bold": false, "italic": false, "strikethrough": false, "underline": false, "code": false, "color": "default"},
    "plain_text": "Our milk is ",
    "href": null
  },
  {
    "type": "text",
    "text": {"content": "very", "link": null},
    "annotations": {"bold": true, "italic": false, "strikethrough": false, "underline": true, "code": false, "color": "default"},
    "plain_text": "very",
    "href": null
  },
  {
    "type": "text",
    "text": {"content": " old", "link": {"url": "https://en.wikipedia.org/wiki/Milk"}},
    "annotations": {"bold": false, "italic": false, "strikethrough": false, "underline": true, "code": false, "color": "default"},
    "plain_text": " old",
    "href": "https://en.wikipedia.org/wiki/Milk"
  }
]`

const apiMentions = `[
  {
    "type": "mention",
    "mention": {
      "type": "user",
      "user": {"object": "user", "id": "62e40b6e-3f05-494f-9220-d68a1995b54f", "name": "Alice", "avatar_url": null, "type": "person", "person": {"email": "alice@example.com"}}
    },
    "annotations": {"bold": false, "italic": false, "strikethrough": false, "underline": false, "code": false, "color": "default"},
    "plain_text": "@Alice",
    "href": null
  },
  {
    "type": "mention",
    "mention": {"type": "page", "page": {"id": "ec41280d-386e-4bcf-8706-f21704cd798b"}},
    "plain_text": "Groceries",
    "href": "https://www.notion.so/ec41280d386e4bcf8706f21704cd798b"
  },
  {
    "type": "mention",
    "mention": {"type": "date", "date": {"start": "2021-08-04", "end": null, "time_zone": null}},
    "plain_text": "2021-08-04",
    "href": null
  },
  {
    "type": "equation",
    "equation": {"expression": "e=mc^2"},
    "plain_text": "e=mc^2",
    "href": null
  }
]`

func TestParse_RoundTrip(t *testing.T) {
	for name, input := range map[string]string{
		"styled text": apiText,
		"mentions":    apiMentions,
		"minimal":     `[{"type":"text","text":{"content":"hi"}}]`,
		"implicit":    `[{"text":{"content":"no type"}}]`,
		"empty":       `[]`,
	} {
		t.Run(name, func(t *testing.T) {
			text, err := Parse([]byte(input))
			require.NoError(t, err)

			out, err := text.Serialize()
			require.NoError(t, err)
			assert.JSONEq(t, input, string(out))
		})
	}
}

func TestParse_MinimalIsByteIdentical(t *testing.T) {
	input := `[{"type":"text","text":{"content":"hi"}}]`
	text, err := Parse([]byte(input))
	require.NoError(t, err)

	out, err := text.Serialize()
	require.NoError(t, err)
	assert.Equal(t, input, string(out))
	assert.Equal(t, "hi", text.PlainText())
}

func TestParse_Mentions(t *testing.T) {
	text, err := Parse([]byte(apiMentions))
	require.NoError(t, err)
	require.Len(t, text, 4)

	assert.Equal(t, MentionUser, text[0].Mention.Type)
	assert.Equal(t, "alice@example.com", text[0].Mention.User.Email())
	assert.Equal(t, "ec41280d-386e-4bcf-8706-f21704cd798b", text[1].Mention.TargetID())
	assert.Equal(t, "2021-08-04", text[2].Mention.Date.Start)
	assert.Equal(t, TypeEquation, text[3].Type)
	assert.Equal(t, "@AliceGroceries2021-08-04e=mc^2", text.PlainText())
}

func TestParse_Errors(t *testing.T) {
	cases := map[string]string{
		"unknown mention":    `[{"type":"mention","mention":{"type":"template_mention","template_mention":{}},"plain_text":"x"}]`,
		"unknown annotation": `[{"type":"text","text":{"content":"x"},"annotations":{"blink":true}}]`,
		"bad annotation":     `[{"type":"text","text":{"content":"x"},"annotations":{"bold":"yes"}}]`,
		"unknown span":       `[{"type":"sparkle","sparkle":{}}]`,
		"missing payload":    `[{"type":"text"}]`,
		"not an array":       `{"type":"text"}`,
	}
	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(input))
			require.Error(t, err)
			var se *api.SchemaError
			assert.ErrorAs(t, err, &se)
		})
	}
}

func TestPlainText_IsPure(t *testing.T) {
	text, err := Parse([]byte(apiText))
	require.NoError(t, err)

	first := text.PlainText()
	second := text.PlainText()
	assert.Equal(t, first, second)
	assert.Equal(t, "Our milk is very old", first)
}

func TestPlainText_FollowsMutation(t *testing.T) {
	text, err := Parse([]byte(apiText))
	require.NoError(t, err)

	text[1].SetContent("quite")
	assert.Equal(t, "Our milk is quite old", text.PlainText())

	out, err := text.Serialize()
	require.NoError(t, err)
	again, err := Parse(out)
	require.NoError(t, err)
	assert.Equal(t, "quite", again[1].Content)
	assert.Contains(t, string(out), `"plain_text":"quite"`)
}

func TestAppend_PreservesBoundaries(t *testing.T) {
	base := FromString("hello")
	joined := base.Append(NewSpan(" "), NewSpan("world"))

	assert.Len(t, base, 1, "Append must not modify the receiver")
	assert.Len(t, joined, 3, "identically styled spans are not merged")
	assert.Equal(t, "hello world", joined.PlainText())

	both := joined.Concat(FromString("!", Bold))
	assert.Len(t, both, 4)
	assert.Equal(t, "hello world!", both.PlainText())
}

func TestSpan_SplitAt(t *testing.T) {
	s := NewSpan("héllo world", Bold, WithLink("https://example.com"))

	left, right, err := s.SplitAt(5)
	require.NoError(t, err)
	assert.Equal(t, "héllo", left.Content)
	assert.Equal(t, " world", right.Content)
	assert.True(t, right.Annotations.Bold)
	assert.Equal(t, "https://example.com", right.URL())

	right.Annotations.Italic = true
	assert.False(t, left.Annotations.Italic, "halves must not share annotations")

	_, _, err = s.SplitAt(42)
	assert.Error(t, err)

	_, _, err = NewEquation("x").SplitAt(0)
	assert.Error(t, err)
}

func TestText_Equal(t *testing.T) {
	a, err := Parse([]byte(apiText))
	require.NoError(t, err)

	b := Text{
		NewSpan("Our milk is "),
		NewSpan("very", Bold, Underline),
		NewSpan(" old", Underline, WithLink("https://en.wikipedia.org/wiki/Milk")),
	}
	assert.True(t, a.Equal(b))

	b[1] = NewSpan("very", Bold)
	assert.False(t, a.Equal(b))
}

func TestMarkdown(t *testing.T) {
	text := Text{
		NewSpan("this is "),
		NewSpan("really", Bold, Italic),
		NewSpan(" "),
		NewSpan("important ", Bold),
		NewSpan("code", Code),
		NewSpan(" and "),
		NewSpan("Search Me", WithLink("https://www.google.com/")),
		NewSpan(" "),
		NewSpan("gone", Strikethrough),
	}
	assert.Equal(t,
		"this is ***really*** **important** `code` and [Search Me](https://www.google.com/) ~~gone~~",
		text.Markdown())
}

func TestAnnotations_PartialRoundTrip(t *testing.T) {
	input := `[{"type":"text","text":{"content":"x"},"annotations":{"bold":true}}]`
	text, err := Parse([]byte(input))
	require.NoError(t, err)

	out, err := text.Serialize()
	require.NoError(t, err)
	assert.JSONEq(t, input, string(out))

	text[0].Annotations.Italic = true
	out, err = text.Serialize()
	require.NoError(t, err)
	assert.JSONEq(t, `[{"type":"text","text":{"content":"x"},"annotations":{"bold":true,"italic":true}}]`, string(out))
}
