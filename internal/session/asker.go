package session

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

// TerminalAsker prompts on Out and reads one line per question from In.
// An empty line keeps the shown current value.
type TerminalAsker struct {
	In  io.Reader
	Out io.Writer

	reader *bufio.Reader
}

func (t *TerminalAsker) Ask(label, current string) (string, error) {
	if t.reader == nil {
		t.reader = bufio.NewReader(t.In)
	}

	if current != "" {
		fmt.Fprintf(t.Out, "%s [%s]: ", label, current)
	} else {
		fmt.Fprintf(t.Out, "%s: ", label)
	}

	line, err := t.reader.ReadString('\n')
	if err != nil && (err != io.EOF || line == "") {
		return "", err
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return current, nil
	}
	return line, nil
}

// ScriptedAsker replays canned answers in order; once exhausted it keeps
// returning the current value, as if the user pressed enter. Used by tests.
type ScriptedAsker struct {
	Answers []string
	Asked   []string // labels in the order they were asked

	next int
}

func (s *ScriptedAsker) Ask(label, current string) (string, error) {
	s.Asked = append(s.Asked, label)
	if s.next >= len(s.Answers) {
		return current, nil
	}
	answer := s.Answers[s.next]
	s.next++
	if answer == "" {
		return current, nil
	}
	return answer, nil
}
