package cli_test

import (
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drsam94/mmbccr/internal/cli"
	"github.com/drsam94/mmbccr/internal/romtest"
	"github.com/drsam94/mmbccr/pkg/rom"
)

const bccProject = `{
	// chips and encounters
	"chipRange": {"ap": 30, "mb": 20},
	"encounters": {"randomizeChips": true, "randomizeOperators": true},
}`

func Test_Randomize_Writes_Reproducible_Output_When_Seed_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("mmrando.json", []byte(bccProject))
	c.WriteROM("in.gba", romtest.BCC(t, 1))

	stdout := c.MustRun("randomize", "in.gba", "a.gba", "--seed", "42")
	cli.AssertContains(t, stdout, "seed=42")

	c.MustRun("randomize", "in.gba", "b.gba", "--seed", "42")

	in := c.ReadROM("in.gba")
	a := c.ReadROM("a.gba")
	b := c.ReadROM("b.gba")

	assert.Equal(t, rom.GameBCC, a.Game())
	assert.True(t, bytes.Equal(a.Bytes(), b.Bytes()), "same seed, same bytes")
	assert.False(t, bytes.Equal(in.Bytes(), a.Bytes()))
}

func Test_Randomize_Prints_Seed_That_Reproduces_When_None_Given(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("mmrando.json", []byte(bccProject))
	c.WriteROM("in.gba", romtest.BCC(t, 2))

	stdout := c.MustRun("randomize", "in.gba", "a.gba")

	seed, ok := strings.CutPrefix(strings.SplitN(stdout, "\n", 2)[0], "seed=")
	require.True(t, ok, stdout)

	c.MustRun("randomize", "in.gba", "b.gba", "--seed", seed)
	assert.True(t, bytes.Equal(c.ReadROM("a.gba").Bytes(), c.ReadROM("b.gba").Bytes()))
}

func Test_Randomize_Leaves_No_Output_When_Input_Is_Unknown(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	junk := bytes.Clone(romtest.BCC(t, 3).Bytes())
	copy(junk[rom.SignatureOffset:], "NOT A GAME HEAD!")
	c.WriteFile("in.gba", junk)

	stderr := c.MustFail("randomize", "in.gba", "out.gba")
	cli.AssertContains(t, stderr, "unknown signature")

	_, err := os.Stat(c.Path("out.gba"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func Test_Randomize_Reads_Name_Pool_When_Names_Are_Randomized(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("names.txt", []byte("Blaster\nSpreader\n"))
	c.WriteFile("opts.ini", []byte("[Names]\nrandomizeNames = true\nchipNames = names.txt\n"))
	c.WriteROM("in.gba", romtest.BCC(t, 4))

	c.MustRun("-o", "opts.ini", "randomize", "in.gba", "out.gba", "--seed", "4")

	assert.False(t, bytes.Equal(c.ReadROM("in.gba").Bytes(), c.ReadROM("out.gba").Bytes()))
}

func Test_Randomize_Fails_When_Arguments_Are_Wrong(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteROM("in.gba", romtest.BCC(t, 5))

	cli.AssertContains(t, c.MustFail("randomize", "in.gba"), "randomize needs <in> and <out>")
	cli.AssertContains(t, c.MustFail("randomize", "in.gba", "in.gba"), "input and output must differ")
	cli.AssertContains(t, c.MustFail("randomize", "missing.gba", "out.gba"), "no such file")
}

func Test_Randomize_Rejects_Panels_When_Image_Is_BN2(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteFile("mmrando.json", []byte(`{"encounters": {"randomizePanels": true}}`))
	c.WriteROM("in.gba", romtest.BN2(t, 6))

	stderr := c.MustFail("randomize", "in.gba", "out.gba")
	cli.AssertContains(t, stderr, "unsupported option")

	_, err := os.Stat(c.Path("out.gba"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
