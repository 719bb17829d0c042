package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunValidate(t *testing.T) {
	testEnvironment(t)
	dir := t.TempDir()

	good := filepath.Join(dir, "kueche.obx")
	require.NoError(t, os.WriteFile(good, []byte(sampleOBX), 0644))
	empty := filepath.Join(dir, "flur.obx")
	require.NoError(t, os.WriteFile(empty, []byte(`<cutBuffer><items/></cutBuffer>`), 0644))
	foreign := filepath.Join(dir, "order.obx")
	require.NoError(t, os.WriteFile(foreign, []byte(`<order/>`), 0644))

	run := func(strict bool, files ...string) (string, error) {
		prev := strictValidate
		strictValidate = strict
		defer func() { strictValidate = prev }()

		var out bytes.Buffer
		cmd := &cobra.Command{}
		cmd.SetOut(&out)
		err := runValidate(cmd, files)
		return out.String(), err
	}

	out, err := run(false, good, empty)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ kueche.obx: 1 article(s), 0 error(s), 0 warning(s)")
	assert.Contains(t, out, "✓ flur.obx: 0 article(s), 0 error(s), 1 warning(s)")
	assert.Contains(t, out, "document contains no articles")

	out, err = run(true, good, empty)
	assert.EqualError(t, err, "1 of 2 file(s) invalid")
	assert.Contains(t, out, "✗ flur.obx")

	out, err = run(false, foreign)
	assert.EqualError(t, err, "1 of 1 file(s) invalid")
	assert.Contains(t, out, "not an OBX document")
}
