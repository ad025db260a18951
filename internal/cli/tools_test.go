package cli_test

import (
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/drsam94/mmbccr/internal/cli"
	"github.com/drsam94/mmbccr/internal/romtest"
)

func Test_Search_Finds_Signature_When_Pattern_Is_Hex(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteROM("bcc.gba", romtest.BCC(t, 1))

	// "BATTLE"
	stdout := c.MustRun("search", "bcc.gba", "42", "41", "54", "54", "4c", "45", "--hex")
	cli.AssertContains(t, stdout, "0xa0")

	// B, A, T, T as differences: -1, +19, 0.
	stdout = c.MustRun("search", "bcc.gba", "--delta", "--", "-1", "19", "0")
	cli.AssertContains(t, stdout, "0xa0")

	stdout = c.MustRun("search", "bcc.gba", "--stride", "-1", "--hex", "42", "54", "4c")
	cli.AssertContains(t, stdout, "stride=2")
	cli.AssertContains(t, stdout, "0xa0")
}

func Test_Search_Fails_When_Flags_Conflict(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)
	c.WriteROM("bcc.gba", romtest.BCC(t, 2))

	cli.AssertContains(t, c.MustFail("search", "bcc.gba", "1", "--delta", "--variable"), "cannot be used together")
	cli.AssertContains(t, c.MustFail("search", "bcc.gba", "300"), "bad pattern value")
	cli.AssertContains(t, c.MustFail("search", "bcc.gba"), "search needs")
}

func Test_Strconv_Round_Trips_When_Text_Is_Encodable(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	encoded := c.MustRun("strconv", "encode", "Ab0")
	assert.Equal(t, "005e 00ec 0001", encoded)

	assert.Equal(t, "Ab0", c.MustRun("strconv", "decode", encoded))
	assert.Equal(t, "Ab0", c.MustRun("strconv", "decode", "005e00ec0001"))

	narrow := c.MustRun("strconv", "encode", "A", "--dialect", "narrow")
	assert.Equal(t, "25", narrow)
	assert.Equal(t, "A", c.MustRun("strconv", "decode", "25", "--dialect", "narrow"))
}

func Test_Strconv_Fails_When_Input_Is_Bad(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	cli.AssertContains(t, c.MustFail("strconv", "decode", "005"), "not a multiple of 4")
	cli.AssertContains(t, c.MustFail("strconv", "decode", "zzzz"), "is not hex")
	cli.AssertContains(t, c.MustFail("strconv", "rot13", "x"), "action must be encode or decode")
	cli.AssertContains(t, c.MustFail("strconv", "encode", "x", "--dialect", "tiny"), "tiny")
}

func Test_Dist_Prints_Sorted_Histogram_When_Seeded(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	stdout := c.MustRun("dist", "uniform", "-n", "500", "-p", "20", "--seed", "3")

	total := 0
	prev := -1

	for _, line := range strings.Split(stdout, "\n") {
		key, count, ok := strings.Cut(line, ": ")
		require.True(t, ok, line)

		k, err := strconv.Atoi(key)
		require.NoError(t, err)

		n, err := strconv.Atoi(count)
		require.NoError(t, err)

		assert.Greater(t, k, prev, "keys ascend")
		assert.Zero(t, k%10)
		assert.True(t, k >= 80 && k <= 120, "key %d", k)

		prev = k
		total += n
	}

	assert.Equal(t, 500, total)
	assert.Equal(t, stdout, c.MustRun("dist", "uniform", "-n", "500", "-p", "20", "--seed", "3"))

	assert.Equal(t, "0: 10", c.MustRun("dist", "poisson", "-n", "10", "-p", "0"))
	cli.AssertContains(t, c.MustFail("dist", "normal"), "poisson or uniform")
}

func Test_Schema_And_Print_Config_Describe_Options_When_Invoked(t *testing.T) {
	t.Parallel()

	c := cli.NewCLI(t)

	cli.AssertContains(t, c.MustRun("schema"), `"chipRange"`)

	stdout := c.MustRun("print-config")
	cli.AssertContains(t, stdout, `"maxRejections": 10000`)
	cli.AssertContains(t, stdout, "(defaults only)")

	c.WriteFile("mmrando.json", []byte(`{"shops": {"randomize": true}}`))

	stdout = c.MustRun("print-config")
	cli.AssertContains(t, stdout, "project_options="+c.Path("mmrando.json"))
	cli.AssertContains(t, stdout, `"randomize": true`)
}
