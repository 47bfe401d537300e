package common

import (
	"net/http"

	"github.com/elastic/go-elasticsearch/v8"
	"go.elastic.co/apm/module/apmelasticsearch"

	"github.com/kalyan021004/todoboard/internal/config"
)

// NewClient builds the one elasticsearch.Client all the stores share. The
// transport is wrapped so every ES call shows up as a span on the active
// APM transaction.
func NewClient(conf config.ElasticsearchClient) (*elasticsearch.Client, error) {
	esClientConfig := elasticsearch.Config{
		Addresses: conf.Addresses,
		Transport: apmelasticsearch.WrapRoundTripper(http.DefaultTransport),
	}
	if conf.User != nil {
		esClientConfig.Username = conf.User.Name
		esClientConfig.Password = conf.User.Password
	}
	return elasticsearch.NewClient(esClientConfig)
}
