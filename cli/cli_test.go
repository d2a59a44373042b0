package cli

import (
	"bytes"
	"context"
	"encoding/json"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

// resetFlags restores every flag to its default so commands can run more
// than once in a test binary.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		_ = f.Value.Set(f.DefValue)
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

// run executes the root command with an empty config file and returns stdout
func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)

	configFile := filepath.Join(t.TempDir(), "config.ini")
	require.NoError(t, os.WriteFile(configFile, nil, 0644))

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(append([]string{"--config", configFile}, args...))
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetArgs(nil)
	})

	err := Execute(context.Background())
	return out.String(), err
}

func decodeResponse(t *testing.T, out string) map[string]interface{} {
	t.Helper()
	var resp map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(out), &resp), out)
	return resp
}

func TestParsePoint(t *testing.T) {
	x, y, err := parsePoint("10.5, 20")
	require.NoError(t, err)
	assert.Equal(t, 10.5, x)
	assert.Equal(t, 20.0, y)

	_, _, err = parsePoint("10")
	assert.Error(t, err)

	_, _, err = parsePoint("a,b")
	assert.Error(t, err)
}

func TestClassifyCmd(t *testing.T) {
	out, err := run(t, "classify", "100,100", "100,40")
	require.NoError(t, err)

	resp := decodeResponse(t, out)
	assert.Equal(t, "ok", resp["status"])
	data := resp["data"].(map[string]interface{})
	assert.Equal(t, "swipeup", data["gesture"])
	assert.Equal(t, 40.0, data["threshold"])
}

func TestClassifyCmd_ThresholdFlag(t *testing.T) {
	out, err := run(t, "classify", "10,10", "30,10", "--threshold", "5")
	require.NoError(t, err)

	data := decodeResponse(t, out)["data"].(map[string]interface{})
	assert.Equal(t, "swiperight", data["gesture"])
	assert.Equal(t, 5.0, data["threshold"])
}

func TestClassifyCmd_InvalidPoint(t *testing.T) {
	out, err := run(t, "classify", "10", "30,10")
	require.Error(t, err)
	assert.Equal(t, "error", decodeResponse(t, out)["status"])
}

func TestReplayCmd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "swipe.json")
	require.NoError(t, os.WriteFile(path, []byte(`{
		"events": [
			{"type": "mousedown", "pageX": 10, "pageY": 10},
			{"type": "mouseup", "pageX": 10, "pageY": 90}
		]
	}`), 0644))

	out, err := run(t, "replay", path)
	require.NoError(t, err)

	traces := decodeResponse(t, out)["data"].(map[string]interface{})["traces"].([]interface{})
	require.Len(t, traces, 1)
	gestures := traces[0].(map[string]interface{})["gestures"].([]interface{})
	assert.Equal(t, []interface{}{"swipedown"}, gestures)
}

func TestConfigCmd(t *testing.T) {
	t.Setenv("TOUCHSWEEP_THRESHOLD", "15")

	out, err := run(t, "config")
	require.NoError(t, err)

	data := decodeResponse(t, out)["data"].(map[string]interface{})
	assert.Equal(t, 15.0, data["threshold"])
	assert.Equal(t, "localhost:12000", data["listen"])
	assert.True(t, strings.HasSuffix(data["source"].(string), "config.ini"))
}

func TestAuthTokenCmds(t *testing.T) {
	keyring.MockInit()

	_, err := run(t, "auth", "token", "show")
	assert.Error(t, err)

	out, err := run(t, "auth", "token", "generate")
	require.NoError(t, err)
	token := strings.TrimSpace(out)
	assert.Len(t, token, tokenBytes*2)

	out, err = run(t, "auth", "token", "show")
	require.NoError(t, err)
	assert.Equal(t, token, strings.TrimSpace(out))

	stored, err := loadServerToken()
	require.NoError(t, err)
	assert.Equal(t, token, stored)

	out, err = run(t, "auth", "token", "delete")
	require.NoError(t, err)
	assert.Contains(t, out, "deleted")

	_, err = loadServerToken()
	assert.Error(t, err)
}

func TestServerStartCmd_AuthWithoutToken(t *testing.T) {
	keyring.MockInit()

	_, err := run(t, "server", "start", "--auth", "--listen", "localhost:0")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "auth token generate")
}

func TestServerStartCmd_PortInUse(t *testing.T) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	_, err = run(t, "server", "start", "--daemon", "--listen", l.Addr().String())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already in use")
}

func TestEnsurePortAvailable(t *testing.T) {
	assert.NoError(t, ensurePortAvailable("localhost:0"))
	assert.Error(t, ensurePortAvailable("not-a-port"))

	l, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer l.Close()

	assert.Error(t, ensurePortAvailable(l.Addr().String()))
}
