package sink

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"tusk/credential"
)

var captured = time.Date(2026, 3, 14, 15, 9, 26, 0, time.UTC)

func hidRecord() Record {
	return NewRecord(credential.Credential{
		Kind:         credential.KindHID,
		Format:       "H10301",
		BitLength:    26,
		FacilityCode: 129,
		CardNumber:   1,
		Hex:          "2005020002",
		Raw:          "01000000100000000000000010",
	}, captured)
}

func gallagherRecord() Record {
	return NewRecord(credential.Credential{
		Kind:         credential.KindGallagher,
		Format:       "Cardax",
		BitLength:    96,
		FacilityCode: 1234,
		CardNumber:   56789,
		Hex:          "7fea00000000000000000000",
		Raw:          "0111",
		Gallagher:    &credential.GallagherFields{RegionCode: 3, IssueLevel: 2},
	}, captured.Add(time.Second))
}

func TestNewRecord(t *testing.T) {
	r := hidRecord()
	require.Len(t, r.ID, 26)
	require.Equal(t, "hid", r.CardType)
	require.Equal(t, captured, r.CapturedAt)
	require.Nil(t, r.RegionCode)
	require.Nil(t, r.IssueLevel)

	g := gallagherRecord()
	require.Equal(t, "gallagher", g.CardType)
	require.NotNil(t, g.RegionCode)
	require.Equal(t, uint8(3), *g.RegionCode)
	require.Equal(t, uint8(2), *g.IssueLevel)
	require.NotEqual(t, r.ID, g.ID)
}

func testSink(t *testing.T, s Sink) {
	ctx := context.Background()

	records, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Empty(t, records)

	want := []Record{hidRecord(), gallagherRecord()}
	for _, r := range want {
		require.NoError(t, s.Append(ctx, r))
	}

	records, err = s.ReadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, want, records)

	require.NoError(t, s.Clear(ctx))
	records, err = s.ReadAll(ctx)
	require.NoError(t, err)
	require.Empty(t, records)

	// Still writable after a clear.
	r := hidRecord()
	require.NoError(t, s.Append(ctx, r))
	records, err = s.ReadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []Record{r}, records)

	require.NoError(t, s.Close())
}

func TestJSONL(t *testing.T) {
	s, err := New(Config{Path: filepath.Join(t.TempDir(), "data", "cards.jsonl")})
	require.NoError(t, err)
	require.IsType(t, &JSONL{}, s)
	testSink(t, s)
}

func TestSQLite(t *testing.T) {
	s, err := New(Config{Type: "sqlite", Path: filepath.Join(t.TempDir(), "cards.db")})
	require.NoError(t, err)
	require.IsType(t, &SQLite{}, s)
	testSink(t, s)
}

func TestSQLite_Reopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.db")
	ctx := context.Background()

	s, err := NewSQLite(path)
	require.NoError(t, err)
	r := gallagherRecord()
	require.NoError(t, s.Append(ctx, r))
	require.NoError(t, s.Close())

	s, err = NewSQLite(path)
	require.NoError(t, err)
	defer s.Close()
	records, err := s.ReadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []Record{r}, records)
}

func TestJSONL_SkipsBadLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.jsonl")
	r := hidRecord()

	s, err := NewJSONL(path)
	require.NoError(t, err)
	defer s.Close()
	require.NoError(t, s.Append(context.Background(), r))

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	require.NoError(t, err)
	_, err = f.WriteString("\n{not json\n")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	records, err := s.ReadAll(context.Background())
	require.NoError(t, err)
	require.Equal(t, []Record{r}, records)
}

func TestJSONL_AppendAfterClose(t *testing.T) {
	s, err := NewJSONL(filepath.Join(t.TempDir(), "cards.jsonl"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.ErrorIs(t, s.Append(context.Background(), hidRecord()), os.ErrClosed)
}

func TestJSONL_ClearFromSecondHandle(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cards.jsonl")
	ctx := context.Background()

	daemon, err := NewJSONL(path)
	require.NoError(t, err)
	defer daemon.Close()
	require.NoError(t, daemon.Append(ctx, hidRecord()))

	cli, err := NewJSONL(path)
	require.NoError(t, err)
	require.NoError(t, cli.Clear(ctx))
	require.NoError(t, cli.Close())

	r := gallagherRecord()
	require.NoError(t, daemon.Append(ctx, r))

	records, err := daemon.ReadAll(ctx)
	require.NoError(t, err)
	require.Equal(t, []Record{r}, records)
}

func TestJSONL_ClearAfterClose(t *testing.T) {
	s, err := NewJSONL(filepath.Join(t.TempDir(), "cards.jsonl"))
	require.NoError(t, err)
	require.NoError(t, s.Close())
	require.ErrorIs(t, s.Clear(context.Background()), os.ErrClosed)
}

func TestNewRecord_SameMillisecondSorted(t *testing.T) {
	prev := hidRecord().ID
	for i := 0; i < 100; i++ {
		id := hidRecord().ID
		require.Greater(t, id, prev)
		prev = id
	}
}

func TestNew_Errors(t *testing.T) {
	_, err := New(Config{Type: "sqlite"})
	require.Error(t, err)

	_, err = New(Config{Type: "csv", Path: "x"})
	require.Error(t, err)
}
