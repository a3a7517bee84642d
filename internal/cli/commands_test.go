package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PabloGalante/vibe-agent/internal/bootstrap"
	"github.com/PabloGalante/vibe-agent/internal/config"
	"github.com/PabloGalante/vibe-agent/internal/domain"
)

// scriptedPrompter answers prompts from a fixed list, then reports EOF.
type scriptedPrompter struct {
	answers []string
	prompts []string
	history []string
}

func (s *scriptedPrompter) Prompt(prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	if len(s.answers) == 0 {
		return "", io.EOF
	}
	a := s.answers[0]
	s.answers = s.answers[1:]
	return a, nil
}

func (s *scriptedPrompter) AppendHistory(item string) { s.history = append(s.history, item) }
func (s *scriptedPrompter) Close() error               { return nil }

func testDeps(p *scriptedPrompter) Deps {
	return Deps{
		LoadConfig:  func() *config.Config { return &config.Config{Classifier: "rules"} },
		NewPrompter: func() Prompter { return p },
	}
}

func execute(t *testing.T, deps Deps, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd(deps)
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestChatRunsToFinalAnalysis(t *testing.T) {
	answers := make([]string, 20)
	for i := range answers {
		answers[i] = "I love my team and the work is great"
	}
	p := &scriptedPrompter{answers: answers}

	out, err := execute(t, testDeps(p), "chat", "--employee", "emp-1")
	require.NoError(t, err)

	// Positive answers close the session after five turns.
	assert.Len(t, p.history, 5)
	assert.Contains(t, out, `"overall_assessment"`)
	assert.Contains(t, out, `"responses_analyzed": 5`)
	assert.True(t, strings.HasPrefix(p.prompts[0], "Q1. "))
}

func TestChatSkipsBlankAnswersAndStopsOnEOF(t *testing.T) {
	p := &scriptedPrompter{answers: []string{"   ", "fine I guess"}}

	out, err := execute(t, testDeps(p), "chat", "--employee", "emp-2")
	require.NoError(t, err)

	assert.Equal(t, []string{"fine I guess"}, p.history)
	assert.Contains(t, out, "unfinished")
	assert.True(t, strings.HasPrefix(p.prompts[1], "Q1. "), "blank answers re-ask the same question")
}

func TestUnfinishedChatDiscardsSession(t *testing.T) {
	ctx := context.Background()
	app, err := bootstrap.New(ctx, &config.Config{Classifier: "rules"})
	require.NoError(t, err)
	defer app.Close()

	var out bytes.Buffer
	p := &scriptedPrompter{answers: []string{"it has been a long week"}}
	require.NoError(t, runChat(ctx, &out, p, app.Chat, "emp-3"))

	// First line: "Session <id> started. ..."
	fields := strings.Fields(out.String())
	require.GreaterOrEqual(t, len(fields), 2)
	_, err = app.Sessions.GetSession(ctx, domain.SessionID(fields[1]))
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestChatRequiresEmployee(t *testing.T) {
	_, err := execute(t, testDeps(&scriptedPrompter{}), "chat")
	assert.Error(t, err)
}

func TestAnalyzeCommand(t *testing.T) {
	out, err := execute(t, testDeps(nil), "analyze", "My", "manager", "is", "great")
	require.NoError(t, err)

	var res struct {
		Zone   domain.Zone `json:"zone"`
		Reason string      `json:"reason"`
		Model  string      `json:"model"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &res))
	assert.True(t, res.Zone.Valid())
	assert.Equal(t, "Management concerns", res.Reason)
	assert.Equal(t, "rules", res.Model)
}

func TestQuestionsCommand(t *testing.T) {
	out, err := execute(t, testDeps(nil), "questions")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	assert.GreaterOrEqual(t, len(lines), 7)
	assert.LessOrEqual(t, len(lines), 14)
}

func TestReportCommandUnknownEmployee(t *testing.T) {
	_, err := execute(t, testDeps(nil), "report", "ghost")
	assert.ErrorIs(t, err, domain.ErrEmployeeNotFound)
}
