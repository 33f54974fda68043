package usecase

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/eliteGoblin/parcel/internal/archive"
	"github.com/eliteGoblin/parcel/internal/domain"
	"github.com/eliteGoblin/parcel/internal/session"
)

// mockProcessManager implements domain.ProcessManager for testing
type mockProcessManager struct {
	count    int
	countErr error
	killed   int
	killErr  error
}

func (m *mockProcessManager) CountByName(string) (int, error) {
	return m.count, m.countErr
}

func (m *mockProcessManager) KillByName(string) (int, error) {
	if m.killErr != nil {
		return 0, m.killErr
	}
	m.killed = m.count
	return m.killed, nil
}

func (m *mockProcessManager) GetCurrentPID() int { return 1234 }

// mockOpener implements domain.FolderOpener for testing
type mockOpener struct {
	opened []string
}

func (m *mockOpener) OpenContaining(path string) error {
	m.opened = append(m.opened, path)
	return nil
}

// mockHistory implements domain.HistoryStore for testing
type mockHistory struct {
	records []domain.JobRecord
	addErr  error
}

func (m *mockHistory) Add(_ context.Context, rec domain.JobRecord) error {
	if m.addErr != nil {
		return m.addErr
	}
	m.records = append(m.records, rec)
	return nil
}

func (m *mockHistory) List(context.Context, int) ([]domain.JobRecord, error) {
	return m.records, nil
}

func (m *mockHistory) Close() error { return nil }

// nullEmitter implements domain.Emitter for testing
type nullEmitter struct{}

func (nullEmitter) Emit(string, any) error { return nil }

// okCodec implements domain.Codec for testing
type okCodec struct {
	compressed   bool
	decompressed int
}

func (c *okCodec) Compress(_ context.Context, _ []string, _ string, _ domain.CompressionKind, progress domain.ProgressFunc) error {
	c.compressed = true
	if progress != nil {
		progress(100, "done")
	}
	return nil
}

func (c *okCodec) Decompress(_ context.Context, _, _ string, progress domain.ProgressFunc) error {
	c.decompressed++
	if progress != nil {
		progress(100, "done")
	}
	return nil
}

func newTestSurface(pm domain.ProcessManager, history domain.HistoryStore) (*Surface, *okCodec, *session.Counters) {
	codec := &okCodec{}
	counters := session.NewCounters()
	runner := archive.NewRunner(codec, nullEmitter{}, zap.NewNop())
	s := NewSurface(runner, counters, pm, &mockOpener{}, history, "parcel", zap.NewNop())
	return s, codec, counters
}

func TestCompressRejectedWithMultipleInstances(t *testing.T) {
	s, codec, _ := newTestSurface(&mockProcessManager{count: 2}, nil)

	_, err := s.Compress(context.Background(), []string{"/a/1.txt"}, "out.zip", "Zip")

	assert.ErrorIs(t, err, domain.ErrMultipleInstances)
	assert.False(t, codec.compressed, "no filesystem write may happen")
}

func TestCompressRunsWithSingleInstance(t *testing.T) {
	history := &mockHistory{}
	s, codec, _ := newTestSurface(&mockProcessManager{count: 1}, history)

	msg, err := s.Compress(context.Background(), []string{"/a/1.txt"}, "out.zip", "Zip")
	require.NoError(t, err)

	assert.True(t, codec.compressed)
	assert.Contains(t, msg, filepath.Join("/a", "out.zip"))

	require.Len(t, history.records, 1)
	rec := history.records[0]
	assert.Equal(t, domain.JobSucceeded, rec.Status)
	assert.Equal(t, domain.KindZip, rec.Kind)
	assert.Equal(t, 1, rec.SourceCount)
	assert.NotEmpty(t, rec.ID)
}

func TestDecompressRecordsFailure(t *testing.T) {
	history := &mockHistory{}
	s, _, _ := newTestSurface(&mockProcessManager{count: 1}, history)

	// Empty batch is an error; the failure still lands in history.
	_, err := s.Decompress(context.Background(), nil)
	require.Error(t, err)

	require.Len(t, history.records, 1)
	assert.Equal(t, domain.JobFailed, history.records[0].Status)
}

func TestValidateKind(t *testing.T) {
	s, _, _ := newTestSurface(&mockProcessManager{count: 1}, nil)

	ok, err := s.ValidateKind([]string{"a", "b"}, "Gz")
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = s.ValidateKind([]string{"a"}, "Zip")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.ValidateKind([]string{"a", "b"}, "TarGz")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = s.ValidateKind([]string{"a"}, "Rar")
	assert.ErrorIs(t, err, domain.ErrUnsupportedKind)
}

func TestSupportedKinds(t *testing.T) {
	s, _, _ := newTestSurface(&mockProcessManager{count: 1}, nil)

	assert.Equal(t, []string{"Zip", "TarGz", "TarBr", "Gz", "Br", "Gzip", "Bzip2"}, s.SupportedKinds())
}

func TestCloseKillsAllInstances(t *testing.T) {
	pm := &mockProcessManager{count: 3}
	s, _, _ := newTestSurface(pm, nil)

	killed, err := s.Close()
	require.NoError(t, err)
	assert.Equal(t, 3, killed)
}

func TestAcknowledgeSetsCounter(t *testing.T) {
	s, _, counters := newTestSurface(&mockProcessManager{count: 1}, nil)

	s.Acknowledge(7)

	assert.Equal(t, int64(7), counters.Acknowledged())
}

func TestHistoryFailureDoesNotFailJob(t *testing.T) {
	history := &mockHistory{addErr: errors.New("db locked")}
	s, _, _ := newTestSurface(&mockProcessManager{count: 1}, history)

	_, err := s.Compress(context.Background(), []string{"/a/1.txt"}, "out.zip", "Zip")

	assert.NoError(t, err)
}
