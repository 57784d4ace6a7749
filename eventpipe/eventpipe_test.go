package eventpipe

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestParseLine(t *testing.T) {
	cmd, err := parseLine("bits 0100 0000 1000 0000 0000 0000 10")
	require.NoError(t, err)
	require.Equal(t, OpFrame, cmd.Op)
	require.Equal(t, "01000000100000000000000010", cmd.Frame.String())

	cmd, err = parseLine("H10301 129 1")
	require.NoError(t, err)
	require.Equal(t, OpFrame, cmd.Op)
	require.Equal(t, 26, cmd.Frame.Len())
	require.Equal(t, uint64(129), cmd.Frame.Uint(1, 9))
	require.Equal(t, uint64(1), cmd.Frame.Uint(9, 25))

	for line, op := range map[string]Op{"clear": OpClear, "ENABLE": OpEnable, "disable": OpDisable} {
		cmd, err = parseLine(line)
		require.NoError(t, err)
		require.Equal(t, op, cmd.Op, line)
	}
}

func TestParseLine_Errors(t *testing.T) {
	for _, line := range []string{
		"bits",
		"bits 012",
		"hid 1",
		"hid 300 1",
		"hid 1 70000",
		"open",
	} {
		_, err := parseLine(line)
		require.Error(t, err, line)
	}
}

func TestEventPipe(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events")

	got := make(chan Command, 4)
	ep, err := New(Config{Path: path}, func(c Command) { got <- c })
	require.NoError(t, err)
	go ep.Start()

	w, err := os.OpenFile(path, os.O_WRONLY, 0)
	require.NoError(t, err)
	_, err = w.WriteString("# comment\nbogus\nbits 0101\nclear\n")
	require.NoError(t, err)
	require.NoError(t, w.Close())

	for _, want := range []Op{OpFrame, OpClear} {
		select {
		case c := <-got:
			require.Equal(t, want, c.Op)
		case <-time.After(2 * time.Second):
			t.Fatal("timed out waiting for command")
		}
	}

	require.NoError(t, ep.Close())
	_, err = os.Stat(path)
	require.True(t, os.IsNotExist(err))
}

func TestEventPipe_CloseWithWriterOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "events")

	got := make(chan Command, 1)
	ep, err := New(Config{Path: path}, func(c Command) { got <- c })
	require.NoError(t, err)

	done := make(chan struct{})
	go func() {
		ep.Start()
		close(done)
	}()

	w, err := os.OpenFile(path, os.O_WRONLY, 0)
	require.NoError(t, err)
	defer w.Close()
	_, err = w.WriteString("enable\n")
	require.NoError(t, err)

	select {
	case c := <-got:
		require.Equal(t, OpEnable, c.Op)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for command")
	}

	require.NoError(t, ep.Close())
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after Close")
	}
}

func TestNew_Disabled(t *testing.T) {
	ep, err := New(Config{}, nil)
	require.NoError(t, err)
	require.Nil(t, ep)
}
