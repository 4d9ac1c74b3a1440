package status

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "candela.status")
	in := Status{
		Temperature: 4123,
		Phase:       "transitioning_to_night",
		Target:      1500,
		Progress:    0.456,
		Instance:    "3f1c",
	}

	require.NoError(t, Write(path, in))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t,
		"temp=4123\nphase=transitioning_to_night\ntarget=1500\nprogress=0.46\ninstance=3f1c\n",
		string(data))

	out := Read(path)
	assert.Equal(t, 4123, out.Temperature)
	assert.Equal(t, "transitioning_to_night", out.Phase)
	assert.Equal(t, 1500, out.Target)
	assert.InDelta(t, 0.46, out.Progress, 1e-9)
	assert.Equal(t, "3f1c", out.Instance)
}

func TestRead_Lenient(t *testing.T) {
	missing := Read(filepath.Join(t.TempDir(), "nope"))
	assert.Equal(t, Status{Phase: "unknown"}, missing)

	path := filepath.Join(t.TempDir(), "candela.status")
	require.NoError(t, os.WriteFile(path, []byte("garbage\ntemp=abc\ntarget=2000\n"), 0o644))

	s := Read(path)
	assert.Equal(t, 0, s.Temperature)
	assert.Equal(t, "unknown", s.Phase)
	assert.Equal(t, 2000, s.Target)
}

func TestJSON(t *testing.T) {
	data, err := Status{Temperature: 2700, Phase: "night", Target: 2700, Progress: 1}.JSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{"temp":2700,"phase":"night","target":2700,"progress":1}`, string(data))

	data, err = Status{Progress: 0.333333}.JSON()
	require.NoError(t, err)
	assert.Contains(t, string(data), `"progress":0.33`)
}

func TestText(t *testing.T) {
	s := Status{Temperature: 6500, Phase: "day", Target: 6500, Progress: 1}
	assert.Equal(t, "temp=6500\nphase=day\ntarget=6500\nprogress=1.00", s.Text())
}
