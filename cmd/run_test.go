package main

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type controlsStub struct {
	calls   []string
	adjusts []int
}

func (stub *controlsStub) Start()       { stub.calls = append(stub.calls, "start") }
func (stub *controlsStub) TogglePause() { stub.calls = append(stub.calls, "toggle") }
func (stub *controlsStub) Skip()        { stub.calls = append(stub.calls, "skip") }
func (stub *controlsStub) Reset()       { stub.calls = append(stub.calls, "reset") }
func (stub *controlsStub) Adjust(deltaSeconds int) {
	stub.calls = append(stub.calls, "adjust")
	stub.adjusts = append(stub.adjusts, deltaSeconds)
}

func TestRunCommand(t *testing.T) {
	stub := &controlsStub{}

	for _, line := range []string{"p", "s", "x", "+", "-", "+90", "-15", ""} {
		quit, err := runCommand(line, stub)
		require.NoError(t, err, line)
		assert.False(t, quit, line)
	}

	assert.Equal(t, []string{"toggle", "skip", "reset", "adjust", "adjust", "adjust", "adjust"}, stub.calls)
	assert.Equal(t, []int{60, -60, 90, -15}, stub.adjusts)
}

func TestRunCommand_Quit(t *testing.T) {
	quit, err := runCommand("q", &controlsStub{})
	require.NoError(t, err)
	assert.True(t, quit)
}

func TestRunCommand_Unknown(t *testing.T) {
	stub := &controlsStub{}
	for _, line := range []string{"z", "+abc", "-0", "pause"} {
		_, err := runCommand(line, stub)
		assert.ErrorIs(t, err, errUnknownCommand, line)
	}
	assert.Empty(t, stub.calls)
}

func TestReadCommands_StopsOnQuit(t *testing.T) {
	stub := &controlsStub{}
	var out bytes.Buffer

	err := readCommands(context.Background(), strings.NewReader("p\nbogus\ns\nq\nx\n"), &out, stub)
	require.NoError(t, err)

	assert.Equal(t, []string{"toggle", "skip"}, stub.calls)
	assert.Contains(t, out.String(), "unknown command")
}

func TestReadCommands_EndsOnEOF(t *testing.T) {
	stub := &controlsStub{}
	err := readCommands(context.Background(), strings.NewReader("s\n"), &bytes.Buffer{}, stub)
	require.NoError(t, err)
	assert.Equal(t, []string{"skip"}, stub.calls)
}

func TestParseSwitch(t *testing.T) {
	for _, value := range []string{"on", "ON", "true", "yes", "1"} {
		on, err := parseSwitch(value)
		require.NoError(t, err)
		assert.True(t, on, value)
	}
	for _, value := range []string{"off", "false", "no", "0"} {
		on, err := parseSwitch(value)
		require.NoError(t, err)
		assert.False(t, on, value)
	}
	_, err := parseSwitch("loud")
	assert.Error(t, err)
}

func TestReadCommands_StartAgainAfterEndingSession(t *testing.T) {
	stub := &controlsStub{}

	err := readCommands(context.Background(), strings.NewReader("x\nr\np\nq\n"), &bytes.Buffer{}, stub)
	require.NoError(t, err)

	assert.Equal(t, []string{"reset", "start", "toggle"}, stub.calls)
}

func TestTaskAddRatingsHelpPointsAtSliders(t *testing.T) {
	for _, name := range []string{"energy", "distraction"} {
		flag := taskAddCmd.Flags().Lookup(name)
		require.NotNil(t, flag, name)
		assert.Contains(t, flag.Usage, "plans use the current sliders")
	}
}
