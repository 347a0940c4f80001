package store

//go:generate moq -pkg mocks -out ./mocks/chain_store_mock.go . ChainStore
