package blocksync

//go:generate moq -pkg mocks -out ./mocks/block_source_mock.go . BlockSource
