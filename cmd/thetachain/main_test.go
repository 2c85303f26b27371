package main

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
	"gopkg.in/yaml.v3"

	"github.com/smallyu/go-theta-isogeny/internal/vector"
)

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"thetachain", "--loglevel", "error"}, args...))
	return out.String(), err
}

func TestRun(t *testing.T) {
	out, err := runApp(t, "run", "-j", "2", "../../testdata/small/split-21.yaml", "../../testdata/small/split-21.toml")
	require.NoError(t, err)

	dec := yaml.NewDecoder(bytes.NewBufferString(out))
	var reports []report
	for {
		var r report
		if err := dec.Decode(&r); err != nil {
			break
		}
		reports = append(reports, r)
	}
	require.Len(t, reports, 2)
	assert.Equal(t, "small-split-21", reports[0].Name)
	assert.Equal(t, "52010000", reports[0].A1)
	assert.Equal(t, "1a010000", reports[0].A2)
	assert.Equal(t, []vector.Image{{X1: "79004d01", X2: "09011100"}, {X1: "1601e300", X2: "7300a900"}}, reports[0].Images)
	assert.Equal(t, reports[0].Images, reports[1].Images)
	assert.Empty(t, reports[0].KernelImages)
}

func TestRunKernelImages(t *testing.T) {
	out, err := runApp(t, "run", "--kernel-images", "../../testdata/small/split-12.yaml")
	require.NoError(t, err)
	var r report
	require.NoError(t, yaml.Unmarshal([]byte(out), &r))
	assert.Len(t, r.KernelImages, 2)
}

func TestRunWithMetrics(t *testing.T) {
	out, err := runApp(t, "run", "--metrics", "127.0.0.1:0", "../../testdata/small/split-20.yaml")
	require.NoError(t, err)
	assert.Contains(t, out, "small-split-20")
}

func TestRunErrors(t *testing.T) {
	_, err := runApp(t, "run")
	assert.ErrorContains(t, err, "no vector files")

	_, err = runApp(t, "run", "--strategy", "greedy", "../../testdata/small/split-21.yaml")
	assert.ErrorContains(t, err, "unknown strategy")

	_, err = runApp(t, "run", "../../testdata/small/degenerate.yaml")
	assert.ErrorContains(t, err, "degenerate step")
}

func TestVerify(t *testing.T) {
	all := []string{
		"../../testdata/small/diagonal.yaml",
		"../../testdata/small/split-33.yaml",
		"../../testdata/small/split-21.yaml",
		"../../testdata/small/split-21.toml",
		"../../testdata/small/split-12.yaml",
		"../../testdata/small/split-20.yaml",
		"../../testdata/small/kani-5.yaml",
		"../../testdata/small/degenerate.yaml",
	}
	for _, mode := range []string{"given", "optimal", "balanced"} {
		t.Run(mode, func(t *testing.T) {
			_, err := runApp(t, append([]string{"verify", "--strategy", mode}, all...)...)
			assert.NoError(t, err)
		})
	}
	t.Run("inverse free", func(t *testing.T) {
		_, err := runApp(t, append([]string{"verify", "--inverse-free"}, all...)...)
		assert.NoError(t, err)
	})
}

func TestStrategyCommand(t *testing.T) {
	out, err := runApp(t, "strategy", "-n", "8")
	require.NoError(t, err)
	var r strategyReport
	require.NoError(t, yaml.Unmarshal([]byte(out), &r))
	assert.Equal(t, 8, r.N)
	assert.Equal(t, []int{7, 3, 1, 1, 1, 1, 1}, r.Strategy)
	assert.Equal(t, int64(3020785), r.Cost)
	assert.LessOrEqual(t, r.Cost, r.BalancedCost)
	assert.Empty(t, r.Ops)

	out, err = runApp(t, "strategy", "-n", "8", "--ops")
	require.NoError(t, err)
	r = strategyReport{}
	require.NoError(t, yaml.Unmarshal([]byte(out), &r))
	require.Len(t, r.Ops, 15)
	assert.Equal(t, []string{"double 7", "step 0", "double 3"}, r.Ops[:3])
	assert.Equal(t, "step 7", r.Ops[14])

	_, err = runApp(t, "strategy", "-n", "0")
	assert.Error(t, err)
}
