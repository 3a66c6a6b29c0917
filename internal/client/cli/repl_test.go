package cli

import (
	"bufio"
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRunREPL_DispatchesUntilExit(t *testing.T) {
	input := bufio.NewReader(strings.NewReader(strings.Join([]string{
		"help",
		"",
		"people list",
		"fail",
		"exit",
		"me",
	}, "\n")))

	var got [][]string
	exec := func(_ context.Context, args []string) error {
		got = append(got, args)
		if args[0] == "fail" {
			return errBoom{}
		}
		return nil
	}

	var out bytes.Buffer
	runREPL(context.Background(), exec, input, &out)

	assert.Equal(t, [][]string{{"help"}, {"people", "list"}, {"fail"}}, got)
	assert.Contains(t, out.String(), "error: boom")
	assert.Contains(t, out.String(), "Bye!")
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	calls := 0
	exec := func(context.Context, []string) error { calls++; return nil }

	var out bytes.Buffer
	runREPL(context.Background(), exec, bufio.NewReader(strings.NewReader("ping")), &out)

	assert.Equal(t, 1, calls)
}

func TestApp_RunWithoutArgsStartsPrompt(t *testing.T) {
	api := &fakeAPI{}
	app, out := newTestApp(api, "ping\nquit\n")

	assert.NoError(t, app.Run(context.Background(), nil))
	assert.Equal(t, []string{"ping"}, api.calls)
	assert.Contains(t, out.String(), "Server is up")
}
