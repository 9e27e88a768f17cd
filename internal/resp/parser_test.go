package resp

import (
	"bufio"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func reader(s string) *bufio.Reader {
	return bufio.NewReader(strings.NewReader(s))
}

func TestReadCommand_Set(t *testing.T) {
	cmd, err := ReadCommand(reader("*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n"))
	require.NoError(t, err)

	assert.Equal(t, &Command{Name: "SET", Key: "foo", Value: "bar"}, cmd)
}

func TestReadCommand_Get(t *testing.T) {
	cmd, err := ReadCommand(reader("*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n"))
	require.NoError(t, err)

	assert.Equal(t, &Command{Name: "GET", Key: "foo"}, cmd)
}

func TestReadCommand_Del(t *testing.T) {
	cmd, err := ReadCommand(reader("*2\r\n$3\r\nDEL\r\n$3\r\nfoo\r\n"))
	require.NoError(t, err)

	assert.Equal(t, &Command{Name: "DEL", Key: "foo"}, cmd)
}

func TestReadCommand_LowercaseName(t *testing.T) {
	cmd, err := ReadCommand(reader("*2\r\n$3\r\nget\r\n$3\r\nfoo\r\n"))
	require.NoError(t, err)

	assert.Equal(t, "GET", cmd.Name)
}

func TestReadCommand_EmptyValue(t *testing.T) {
	cmd, err := ReadCommand(reader("*3\r\n$3\r\nSET\r\n$1\r\nk\r\n$0\r\n\r\n"))
	require.NoError(t, err)

	assert.Equal(t, &Command{Name: "SET", Key: "k", Value: ""}, cmd)
}

func TestReadCommand_Malformed(t *testing.T) {
	cases := map[string]string{
		"not an array":        "$3\r\nGET\r\n",
		"bad array length":    "*x\r\n",
		"zero length array":   "*0\r\n",
		"oversized array":     "*4\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n$1\r\nx\r\n",
		"not a bulk string":   "*2\r\n+GET\r\n$3\r\nfoo\r\n",
		"bad bulk length":     "*2\r\n$3\r\nGET\r\n$x\r\nfoo\r\n",
		"missing crlf":        "*2\r\n$3\r\nGET\r\n$3\r\nfooxx",
		"unknown command":     "*2\r\n$4\r\nPING\r\n$3\r\nfoo\r\n",
		"set missing value":   "*2\r\n$3\r\nSET\r\n$3\r\nfoo\r\n",
		"get with extra args": "*3\r\n$3\r\nGET\r\n$3\r\nfoo\r\n$3\r\nbar\r\n",
		"bare lf line ending": "*2\n$3\r\nGET\r\n$3\r\nfoo\r\n",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ReadCommand(reader(input))
			assert.ErrorIs(t, err, ErrMalformed)
		})
	}
}

func TestReadCommand_EOF(t *testing.T) {
	_, err := ReadCommand(reader(""))
	assert.Error(t, err)
}

func TestWriteReplies(t *testing.T) {
	var sb strings.Builder

	require.NoError(t, WriteOK(&sb))
	assert.Equal(t, "+OK\r\n", sb.String())

	sb.Reset()
	require.NoError(t, WriteBulk(&sb, "value"))
	assert.Equal(t, "$5\r\nvalue\r\n", sb.String())

	sb.Reset()
	require.NoError(t, WriteError(&sb, "Key not found"))
	assert.Equal(t, "-ERR Key not found\r\n", sb.String())
}
