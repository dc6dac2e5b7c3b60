package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lottery-system/backend/internal/adapters/repository"
	"github.com/lottery-system/backend/internal/domain/entities"
	"github.com/lottery-system/backend/internal/infrastructure/logger"
)

const testPath = "/data/lottery-system/data.json"

func newMemService(t *testing.T, fs afero.Fs) *OptionsService {
	t.Helper()
	require.NoError(t, fs.MkdirAll(filepath.Dir(testPath), 0o755))
	repo := repository.NewFileOptionsRepository(fs, testPath, logger.NewNop())
	return NewOptionsService(context.Background(), repo, logger.NewNop())
}

func mustOptions(t *testing.T, groups string) *entities.LotteryOptions {
	t.Helper()
	opts, err := entities.NewLotteryOptions(json.RawMessage(groups))
	require.NoError(t, err)
	return opts
}

func TestOptionsServiceColdStart(t *testing.T) {
	s := newMemService(t, afero.NewMemMapFs())

	got, ok := s.Get(context.Background())
	assert.False(t, ok)
	assert.Nil(t, got)
	assert.False(t, s.Loaded())
	assert.Equal(t, testPath, s.Path())
}

func TestOptionsServiceSeedsFromDisk(t *testing.T) {
	tests := []struct {
		name     string
		content  string
		wantOK   bool
		wantJSON string
	}{
		{name: "valid", content: `{"groups": {"A": ["x"]}}`, wantOK: true, wantJSON: `{"groups":{"A":["x"]}}`},
		{name: "null groups", content: `{"groups": null}`, wantOK: true, wantJSON: `{"groups":null}`},
		{name: "not json", content: `this is not json`},
		{name: "truncated", content: `{"groups": {"A": [`},
		{name: "empty file", content: ``},
		{name: "missing groups", content: `{"other": 1}`},
		{name: "wrong top-level type", content: `[1, 2, 3]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			require.NoError(t, afero.WriteFile(fs, testPath, []byte(tt.content), 0o644))

			s := newMemService(t, fs)
			got, ok := s.Get(context.Background())
			require.Equal(t, tt.wantOK, ok)
			if !tt.wantOK {
				assert.Nil(t, got)
				return
			}
			out, err := json.Marshal(got)
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(out))
		})
	}
}

func TestOptionsServiceRoundTrip(t *testing.T) {
	values := []string{
		`{"A": ["x", "y"]}`,
		`[1, 2.5, -3, 1e10, 18446744073709551616]`,
		`"plain"`,
		`true`,
		`null`,
		`{"nested": {"deep": [null, false, {"k": "v"}], "empty": {}, "list": []}}`,
	}

	for _, v := range values {
		t.Run(v, func(t *testing.T) {
			fs := afero.NewMemMapFs()
			s := newMemService(t, fs)
			ctx := context.Background()

			require.NoError(t, s.Save(ctx, mustOptions(t, v)))

			got, ok := s.Get(ctx)
			require.True(t, ok)
			assert.Equal(t, mustOptions(t, v), got)

			// A fresh store reading the same file sees the same value.
			reloaded, ok := newMemService(t, fs).Get(ctx)
			require.True(t, ok)
			assert.Equal(t, got, reloaded)
		})
	}
}

func TestOptionsServiceWritesPrettyJSON(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newMemService(t, fs)

	require.NoError(t, s.Save(context.Background(), mustOptions(t, `{"A": ["x", "y"]}`)))

	data, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	want := "{\n  \"groups\": {\n    \"A\": [\n      \"x\",\n      \"y\"\n    ]\n  }\n}"
	assert.Equal(t, want, string(data))
}

func TestOptionsServiceOverwrite(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newMemService(t, fs)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, mustOptions(t, `{"A": ["x", "y", "z"], "B": ["long entry"]}`)))
	require.NoError(t, s.Save(ctx, mustOptions(t, `{"C": []}`)))

	data, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"groups": {"C": []}}`, string(data))

	got, ok := s.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, mustOptions(t, `{"C": []}`), got)
}

func TestOptionsServiceKeepsCacheWhenWriteFails(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "lottery-system")
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, "data.json")

	repo := repository.NewFileOptionsRepository(afero.NewOsFs(), path, logger.NewNop())
	s := NewOptionsService(context.Background(), repo, logger.NewNop())
	ctx := context.Background()

	before := mustOptions(t, `{"A": ["x"]}`)
	require.NoError(t, s.Save(ctx, before))

	require.NoError(t, os.RemoveAll(dir))

	err := s.Save(ctx, mustOptions(t, `{"B": ["y"]}`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to write options file")

	got, ok := s.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, before, got)
	assert.Equal(t, 1.0, testutil.ToFloat64(s.savesTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(s.savesTotal.WithLabelValues("error")))
}

func TestOptionsServiceKeepsCacheWhenEncodingFails(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newMemService(t, fs)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, mustOptions(t, `"first"`)))

	err := s.Save(ctx, &entities.LotteryOptions{Groups: map[string]any{"bad": make(chan int)}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to encode options")

	got, ok := s.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, "first", got.Groups)

	data, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	assert.JSONEq(t, `{"groups": "first"}`, string(data))
}

func TestOptionsServiceRejectsNil(t *testing.T) {
	s := newMemService(t, afero.NewMemMapFs())
	require.ErrorIs(t, s.Save(context.Background(), nil), entities.ErrOptionsRequired)
}

func TestOptionsServiceGetReturnsCopy(t *testing.T) {
	s := newMemService(t, afero.NewMemMapFs())
	ctx := context.Background()

	input := mustOptions(t, `{"A": ["x"]}`)
	require.NoError(t, s.Save(ctx, input))

	// Mutating either the saved input or a returned value leaves the cache alone.
	input.Groups.(map[string]any)["A"] = "mutated"
	got, _ := s.Get(ctx)
	got.Groups.(map[string]any)["B"] = "added"

	again, ok := s.Get(ctx)
	require.True(t, ok)
	assert.Equal(t, mustOptions(t, `{"A": ["x"]}`), again)
}

func TestOptionsServiceConcurrentAccess(t *testing.T) {
	fs := afero.NewMemMapFs()
	s := newMemService(t, fs)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		opts := mustOptions(t, fmt.Sprintf(`{"n": [%d]}`, i))
		wg.Add(2)
		go func() {
			defer wg.Done()
			assert.NoError(t, s.Save(ctx, opts))
		}()
		go func() {
			defer wg.Done()
			s.Get(ctx)
		}()
	}
	wg.Wait()

	got, ok := s.Get(ctx)
	require.True(t, ok)

	data, err := afero.ReadFile(fs, testPath)
	require.NoError(t, err)
	want, err := json.Marshal(got)
	require.NoError(t, err)
	assert.JSONEq(t, string(want), string(data))
}
