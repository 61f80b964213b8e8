package harness

import (
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunWithGolden(t *testing.T) {
	paths, err := FindScenarios("testdata/scenarios")
	require.NoError(t, err)

	for _, path := range paths {
		name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
		t.Run(name, func(t *testing.T) {
			sc, err := LoadScenario(path)
			require.NoError(t, err)
			require.Equal(t, name, sc.Name, "golden files are named after the scenario")

			result, err := RunWithGolden(t, sc)
			require.NoError(t, err)
			assert.True(t, result.Pass, result.Errors)
		})
	}
}

func TestMarshalTrace_DropsEmptyFields(t *testing.T) {
	r := NewResult()
	r.AddEventTrace("associate", "alien~tag:a")
	r.AddStepTrace("has_tag", "alien", "", "a", false, nil)

	got, err := MarshalTrace("tiny", r)
	require.NoError(t, err)
	assert.Equal(t,
		`{"scenario_name":"tiny","trace":[`+
			`{"bean":"alien~tag:a","kind":"event","op":"associate","seq":1},`+
			`{"bean":"alien","kind":"step","op":"has_tag","result":false,"seq":2,"tags":"a"}]}`,
		string(got))
}
