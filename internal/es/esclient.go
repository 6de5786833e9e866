package es

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/Skotchmaster/rad_plants/internal/config"
	"github.com/elastic/go-elasticsearch/v9"
)

func NewClient(ctx context.Context, cfg *config.Config) (*elasticsearch.Client, error) {
	log.Printf("connecting to Elasticsearch at %s", cfg.ESURL)

	esCfg := elasticsearch.Config{
		Addresses: []string{cfg.ESURL},
		Username:  cfg.ESUser,
		Password:  cfg.ESPassword,
	}

	client, err := elasticsearch.NewClient(esCfg)
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}

	log.Println("connected to Elasticsearch")
	return client, nil
}
