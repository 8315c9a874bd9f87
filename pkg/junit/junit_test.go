package junit

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wvtest/wvrun/pkg/session"
)

func TestWriter_WriteFile_When_MixedResults(t *testing.T) {
	t.Parallel()

	w := NewWriter("wvtest")
	w.Section(session.Record{
		Where:    "t/db.t",
		What:     "open database",
		Duration: 1500 * time.Millisecond,
	})
	w.Section(session.Record{
		Where:    "t/net.t",
		What:     "resolve host",
		Duration: 40 * time.Millisecond,
		Failed:   true,
		Transcript: []string{
			`Testing "resolve host" in t/net.t:`,
			"! lookup refused FAILED",
		},
	})
	w.Totals(2, 1)

	path := filepath.Join(t.TempDir(), "results.xml")
	require.NoError(t, w.WriteFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	out := string(data)

	assert.Contains(t, out, `<testsuite name="wvtest" tests="2" failures="1">`)
	assert.Contains(t, out, `<testcase name="open database" classname="t/db.t" time="1.500">`)
	assert.Contains(t, out, `<testcase name="resolve host" classname="t/net.t" time="0.040">`)
	assert.Contains(t, out, "<![CDATA[")
	assert.Contains(t, out, "! lookup refused FAILED")
	// The passing case carries no failure element.
	assert.NotContains(t, out, `classname="t/db.t" time="1.500"><failure`)
}

func TestWriter_WriteFile_When_RunNotFinished(t *testing.T) {
	t.Parallel()

	w := NewWriter("wvtest")
	err := w.WriteFile(filepath.Join(t.TempDir(), "results.xml"))
	require.Error(t, err)
}
