package databases

import (
	"context"
	"encoding/pem"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/stretchr/testify/suite"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"github.com/vnFuhung2903/vcs-search-toolkit/pkg/env"
)

type DatabasesSuite struct {
	suite.Suite
	ctx context.Context
}

func (suite *DatabasesSuite) SetupSuite() {
	suite.ctx = context.Background()
}

func TestDatabasesSuite(t *testing.T) {
	suite.Run(t, new(DatabasesSuite))
}

func (suite *DatabasesSuite) newTLSServer() (*httptest.Server, string, <-chan string) {
	authorization := make(chan string, 1)
	server := httptest.NewTLSServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case authorization <- r.Header.Get("Authorization"):
		default:
		}
		w.Header().Set("X-Elastic-Product", "Elasticsearch")
		w.WriteHeader(http.StatusOK)
	}))

	caPath := filepath.Join(suite.T().TempDir(), "ca.pem")
	caPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: server.Certificate().Raw})
	suite.Require().NoError(os.WriteFile(caPath, caPEM, 0o600))
	return server, caPath, authorization
}

func (suite *DatabasesSuite) TestConnectElasticsearchWithCACert() {
	server, caPath, authorization := suite.newTLSServer()
	defer server.Close()

	env := env.ElasticsearchEnv{
		ElasticsearchAddress: server.URL,
		ElasticsearchAPIKey:  "c2VjcmV0",
		ElasticsearchCACert:  caPath,
	}

	elasticsearchClient, err := NewElasticsearchFactory(env).ConnectElasticsearch()
	suite.Require().NoError(err)
	defer elasticsearchClient.Close()

	res, err := elasticsearchClient.Do(suite.ctx, esapi.PingRequest{})
	suite.Require().NoError(err)
	defer res.Body.Close()
	suite.Equal(http.StatusOK, res.StatusCode)
	suite.Equal("APIKey c2VjcmV0", <-authorization)
}

func (suite *DatabasesSuite) TestConnectElasticsearchWithoutCACertRejectsSelfSigned() {
	server, _, _ := suite.newTLSServer()
	defer server.Close()

	env := env.ElasticsearchEnv{
		ElasticsearchAddress: server.URL,
	}

	elasticsearchClient, err := NewElasticsearchFactory(env).ConnectElasticsearch()
	suite.Require().NoError(err)
	defer elasticsearchClient.Close()

	res, err := elasticsearchClient.Do(suite.ctx, esapi.PingRequest{})
	suite.Error(err)
	suite.Nil(res)
}

func (suite *DatabasesSuite) TestConnectElasticsearchMissingCACert() {
	env := env.ElasticsearchEnv{
		ElasticsearchAddress: "https://localhost:9200",
		ElasticsearchCACert:  filepath.Join(suite.T().TempDir(), "missing.pem"),
	}

	elasticsearchClient, err := NewElasticsearchFactory(env).ConnectElasticsearch()
	suite.Nil(elasticsearchClient)
	suite.ErrorIs(err, os.ErrNotExist)
	suite.Contains(err.Error(), "read ca certificate")
}

func (suite *DatabasesSuite) TestConnectElasticsearchInvalidCACert() {
	caPath := filepath.Join(suite.T().TempDir(), "ca.pem")
	suite.Require().NoError(os.WriteFile(caPath, []byte("not a certificate"), 0o600))

	env := env.ElasticsearchEnv{
		ElasticsearchAddress: "https://localhost:9200",
		ElasticsearchCACert:  caPath,
	}

	elasticsearchClient, err := NewElasticsearchFactory(env).ConnectElasticsearch()
	suite.Nil(elasticsearchClient)
	suite.ErrorContains(err, "no certificates found")
}

func (suite *DatabasesSuite) TestConnectElasticsearchInvalidAddress() {
	env := env.ElasticsearchEnv{
		ElasticsearchAddress: "://bad-address",
	}

	elasticsearchClient, err := NewElasticsearchFactory(env).ConnectElasticsearch()
	suite.Nil(elasticsearchClient)
	suite.Error(err)
}

func (suite *DatabasesSuite) TestConnectElasticsearch() {
	if testing.Short() {
		suite.T().Skip("skipping container test in short mode")
	}
	ctx := context.Background()

	req := testcontainers.ContainerRequest{
		Image:        "docker.elastic.co/elasticsearch/elasticsearch:8.17.4",
		ExposedPorts: []string{"9200/tcp"},
		Env: map[string]string{
			"discovery.type":         "single-node",
			"xpack.security.enabled": "false",
			"ES_JAVA_OPTS":           "-Xms512m -Xmx512m",
		},
		WaitingFor: wait.ForHTTP("/").WithPort("9200/tcp").WithStartupTimeout(2 * time.Minute),
	}
	elasticsearchContainer, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	suite.Require().NoError(err)
	defer func() { _ = elasticsearchContainer.Terminate(ctx) }()

	endpoint, err := elasticsearchContainer.Endpoint(ctx, "http")
	suite.Require().NoError(err)

	env := env.ElasticsearchEnv{
		ElasticsearchAddress: endpoint,
	}

	elasticsearchFactory := NewElasticsearchFactory(env)
	elasticsearchClient, err := elasticsearchFactory.ConnectElasticsearch()
	suite.Require().NoError(err)
	suite.NotNil(elasticsearchClient)
	defer elasticsearchClient.Close()

	res, err := elasticsearchClient.Do(ctx, esapi.PingRequest{})
	suite.Require().NoError(err)
	defer res.Body.Close()
	suite.False(res.IsError())
}
