package chef_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/shelfhq/shelf-cli/api"
	"github.com/shelfhq/shelf-cli/api/chef"
	"github.com/shelfhq/shelf-cli/errors"
)

func TestNewClientRequiresServerURL(t *testing.T) {
	_, err := chef.NewClient(chef.Credentials{}, api.NewClient(true))
	assert.Error(t, err)
	assert.Equal(t, errors.MissingConfiguration, errors.TypeOf(err))
	assert.Contains(t, err.Error(), "chef.server_url")
}

func TestValidateUploadNamesMissingAttribute(t *testing.T) {
	testcases := []struct {
		creds   chef.Credentials
		missing string
	}{
		{chef.Credentials{ClientName: "ci", ClientKey: "key"}, "chef.server_url"},
		{chef.Credentials{ServerURL: "https://chef.example.com", ClientKey: "key"}, "chef.client_name"},
		{chef.Credentials{ServerURL: "https://chef.example.com", ClientName: "ci"}, "chef.client_key"},
	}
	for _, tc := range testcases {
		err := chef.ValidateUpload(tc.creds)
		assert.Error(t, err)
		assert.Equal(t, errors.MissingConfiguration, errors.TypeOf(err))
		assert.Contains(t, err.Error(), tc.missing)
	}

	err := chef.ValidateUpload(chef.Credentials{
		ServerURL:  "https://chef.example.com",
		ClientName: "ci",
		ClientKey:  "key",
	})
	assert.NoError(t, err)
}

func TestUploadFailsBeforeNetworkWhenUnconfigured(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
	}))
	defer server.Close()

	client, err := chef.NewClient(chef.Credentials{ServerURL: server.URL}, api.NewClient(true))
	assert.NoError(t, err)

	err = client.Upload(nil)
	assert.Error(t, err)
	assert.Equal(t, errors.MissingConfiguration, errors.TypeOf(err))
	assert.Equal(t, 0, requests)
}

func TestUniverse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/universe", r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"ntp": {
				"0.9.0": {"download_url": "/tarballs/ntp-0.9.0.tar.gz", "dependencies": {}},
				"1.0.0": {"download_url": "/tarballs/ntp-1.0.0.tar.gz", "dependencies": {"logrotate": ">= 0.0.0"}}
			}
		}`))
	}))
	defer server.Close()

	client, err := chef.NewClient(chef.Credentials{ServerURL: server.URL + "/"}, api.NewClient(true))
	assert.NoError(t, err)

	universe, err := client.Universe()
	assert.NoError(t, err)
	assert.Len(t, universe["ntp"], 2)
	assert.Equal(t, "/tarballs/ntp-1.0.0.tar.gz", universe["ntp"]["1.0.0"].DownloadURL)
	assert.Equal(t, ">= 0.0.0", universe["ntp"]["1.0.0"].Dependencies["logrotate"])
}
