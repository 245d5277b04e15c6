package cdfmgr

import (
	"encoding/json"
	"io/ioutil"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var credentialEnvs = []string{
	"COGNITE_PROJECT",
	"COGNITE_TENANT_ID",
	"COGNITE_CLIENT_ID",
	"COGNITE_CLIENT_SECRET",
}

// setEnvs replaces the credential environment for one test and restores the
// previous values afterwards.
func setEnvs(t *testing.T, values map[string]string) {
	saved := make(map[string]string)
	for _, name := range append(credentialEnvs, "CDF_CLUSTER") {
		saved[name] = os.Getenv(name)
		os.Unsetenv(name)
	}
	t.Cleanup(func() {
		for name, value := range saved {
			if value == "" {
				os.Unsetenv(name)
			} else {
				os.Setenv(name, value)
			}
		}
	})

	for name, value := range values {
		os.Setenv(name, value)
	}
}

// countingTransport fails every request but remembers how many were
// attempted, so tests can prove no network call happened.
type countingTransport struct {
	calls int
}

func (self *countingTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	self.calls++
	return nil, errors.New("network disabled in test")
}

func quietLogger() logrus.FieldLogger {
	logger := logrus.New()
	logger.SetOutput(ioutil.Discard)
	return logger
}

func allCredentials() map[string]string {
	return map[string]string{
		"COGNITE_PROJECT":       "test-project",
		"COGNITE_TENANT_ID":     "tenant",
		"COGNITE_CLIENT_ID":     "client",
		"COGNITE_CLIENT_SECRET": "secret",
	}
}

func TestMissingCredentialFailsBeforeAnyNetworkCall(t *testing.T) {
	for _, omitted := range credentialEnvs {
		values := allCredentials()
		delete(values, omitted)
		setEnvs(t, values)

		transport := &countingTransport{}
		_, err := NewManager(map[string]interface{}{
			"logger":      quietLogger(),
			"http-client": &http.Client{Transport: transport},
		})

		require.Error(t, err, "expected failure when %s is unset", omitted)
		configErr, ok := err.(*ConfigError)
		require.True(t, ok, "expected *ConfigError when %s is unset, got %T", omitted, err)
		assert.Equal(t, []string{omitted}, configErr.Missing)
		assert.Equal(t, 0, transport.calls, "no network call may happen when %s is unset", omitted)
	}
}

func TestManagerConnectsAndVerifiesToken(t *testing.T) {
	setEnvs(t, allCredentials())

	inspections := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		inspections++
		assert.Equal(t, "/api/v1/token/inspect", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"subject":  "service-principal",
			"projects": []map[string]interface{}{{"projectUrlName": "test-project"}},
		})
	}))
	defer srv.Close()

	mgr, err := NewManager(map[string]interface{}{
		"logger":      quietLogger(),
		"http-client": srv.Client(),
		"base-url":    srv.URL,
	})

	require.NoError(t, err)
	defer mgr.Destroy()
	assert.Equal(t, 1, inspections)
	require.NotNil(t, mgr.Token)
	assert.Equal(t, "service-principal", mgr.Token.Subject)
	assert.NotNil(t, mgr.Client)
}

func TestRejectedTokenIsAnAuthError(t *testing.T) {
	setEnvs(t, allCredentials())

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"error": map[string]interface{}{"code": 401, "message": "token rejected"},
		})
	}))
	defer srv.Close()

	_, err := NewManager(map[string]interface{}{
		"logger":      quietLogger(),
		"http-client": srv.Client(),
		"base-url":    srv.URL,
	})

	require.Error(t, err)
	_, ok := err.(*AuthError)
	assert.True(t, ok, "expected *AuthError, got %T", err)
}

func TestClusterDefaultsToAPI(t *testing.T) {
	setEnvs(t, allCredentials())

	mgr := &CdfManager{}
	require.NoError(t, mgr.initConfig(nil))
	assert.Equal(t, "api", mgr.Cfg.GetString("cluster"))

	os.Setenv("CDF_CLUSTER", "westeurope-1")
	assert.Equal(t, "westeurope-1", mgr.Cfg.GetString("cluster"))
}

func TestBadOptionTypesAreRejected(t *testing.T) {
	setEnvs(t, allCredentials())

	_, err := NewManager(map[string]interface{}{"config-file": 42})
	assert.Error(t, err)

	_, err = NewManager(map[string]interface{}{"logger": "not a logger"})
	assert.Error(t, err)

	_, err = NewManager(map[string]interface{}{"http-client": "not a client"})
	assert.Error(t, err)
}
