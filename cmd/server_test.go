package cmd

import (
	"bytes"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/json"
	"encoding/pem"
	"os"
	"path/filepath"
	"testing"

	"github.com/Daskott/vitals/server/auth/key"
	"github.com/Daskott/vitals/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type startRecorder struct {
	config  *shared.ServerConfig
	devMode bool
	calls   int
}

func (sr *startRecorder) start(config *shared.ServerConfig, devMode bool) {
	sr.config = config
	sr.devMode = devMode
	sr.calls++
}

func executeRootCmd(t *testing.T, args ...string) (*startRecorder, string, error) {
	t.Helper()

	recorder := &startRecorder{}
	buff := new(bytes.Buffer)

	cmd := createRootCmd(recorder.start)
	cmd.SetOut(buff)
	cmd.SetErr(buff)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return recorder, buff.String(), err
}

func writeConfigFile(t *testing.T, config map[string]interface{}) string {
	t.Helper()

	data, err := json.Marshal(config)
	require.Nil(t, err)

	configFile := filepath.Join(t.TempDir(), "server.json")
	require.Nil(t, os.WriteFile(configFile, data, 0600))

	return configFile
}

func testPrivateKeyPem(t *testing.T) string {
	t.Helper()

	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	require.Nil(t, err)

	return string(pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(privateKey)}))
}

func TestServerCmdDevMode(t *testing.T) {
	recorder, _, err := executeRootCmd(t, "server", "--dev")
	require.Nil(t, err)

	require.Equal(t, 1, recorder.calls)
	assert.True(t, recorder.devMode)
	assert.Equal(t, 3000, recorder.config.Vitals.Listener.Port)
	assert.Equal(t, 10, recorder.config.Vitals.BcryptCost)
	assert.Equal(t, []string{"*"}, recorder.config.Vitals.Cors.AllowedOrigins)
	assert.False(t, recorder.config.Google.Storage.EnableSqliteBackupAndSync)

	_, err = key.NewKeyPairFromRSAPrivateKeyPem([]byte(recorder.config.Vitals.PrivateKeyPem))
	assert.Nil(t, err, "Dev config should carry a usable private key")
}

func TestServerCmdEnvOverride(t *testing.T) {
	t.Setenv("VITALS_VITALS_LISTENER_PORT", "8080")

	recorder, _, err := executeRootCmd(t, "server", "--dev")
	require.Nil(t, err)
	assert.Equal(t, 8080, recorder.config.Vitals.Listener.Port)
}

func TestServerCmdConfigFile(t *testing.T) {
	privateKeyPem := testPrivateKeyPem(t)

	testCases := []struct {
		desc        string
		config      map[string]interface{}
		expectedErr string
	}{
		{
			desc: "Should start with a valid config",
			config: map[string]interface{}{
				"vitals": map[string]interface{}{
					"privateKeyPem": privateKeyPem,
					"listener":      map[string]interface{}{"port": 4000},
				},
			},
		},
		{
			desc: "Should fail without a private key",
			config: map[string]interface{}{
				"vitals": map[string]interface{}{
					"listener": map[string]interface{}{"port": 4000},
				},
			},
			expectedErr: "privateKeyPem",
		},
		{
			desc: "Should fail with an out of range port",
			config: map[string]interface{}{
				"vitals": map[string]interface{}{
					"privateKeyPem": privateKeyPem,
					"listener":      map[string]interface{}{"port": 70000},
				},
			},
			expectedErr: "port",
		},
		{
			desc: "Should fail with an out of range bcrypt cost",
			config: map[string]interface{}{
				"vitals": map[string]interface{}{
					"privateKeyPem": privateKeyPem,
					"bcryptCost":    2,
					"listener":      map[string]interface{}{"port": 4000},
				},
			},
			expectedErr: "bcryptCost",
		},
		{
			desc: "Should fail when backups are enabled without a bucket",
			config: map[string]interface{}{
				"vitals": map[string]interface{}{
					"privateKeyPem": privateKeyPem,
					"listener":      map[string]interface{}{"port": 4000},
				},
				"google": map[string]interface{}{
					"storage": map[string]interface{}{
						"enableSqliteBackupAndSync": true,
						"sqliteBackupSchedule":      "0 * * * *",
					},
				},
			},
			expectedErr: "bucket",
		},
	}

	for _, tcase := range testCases {
		t.Run(tcase.desc, func(t *testing.T) {
			recorder, out, err := executeRootCmd(t, "server", "--sconfig", writeConfigFile(t, tcase.config))

			if tcase.expectedErr != "" {
				require.NotNil(t, err)
				assert.Contains(t, out, tcase.expectedErr)
				assert.Equal(t, 0, recorder.calls)
				return
			}

			require.Nil(t, err)
			require.Equal(t, 1, recorder.calls)
			assert.False(t, recorder.devMode)
			assert.Equal(t, 4000, recorder.config.Vitals.Listener.Port)
			assert.Equal(t, privateKeyPem, recorder.config.Vitals.PrivateKeyPem)
			assert.Equal(t, []string{"*"}, recorder.config.Vitals.Cors.AllowedOrigins)
		})
	}
}

func TestServerCmdRequiresConfig(t *testing.T) {
	recorder, out, err := executeRootCmd(t, "server")

	require.NotNil(t, err)
	assert.Contains(t, out, "must set --sconfig or --dev")
	assert.Equal(t, 0, recorder.calls)

	_, out, err = executeRootCmd(t, "server", "--sconfig", filepath.Join(t.TempDir(), "missing.yml"))
	require.NotNil(t, err)
	assert.Contains(t, out, "error reading server config file")
}
