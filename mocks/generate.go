// Package mocks holds generated test doubles and synthetic data helpers.
package mocks

//go:generate mockgen -destination=./mock_datasource.go -package=mocks github.com/rxtech-lab/argo-core/internal/datasource DataSource
//go:generate mockgen -destination=./mock_exchange.go -package=mocks github.com/rxtech-lab/argo-core/internal/exchange ExchangeClient
