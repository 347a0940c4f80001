package sqlite

import (
	"errors"
	"time"

	"github.com/libsv/go-p2p/chaincfg/chainhash"

	"github.com/bitcoin-sv/chainstore/internal/chainstore/store"
)

var migrateModels = []any{
	&Block{},
	&Transaction{},
	&BlockTransaction{},
	&Output{},
	&Input{},
}

type Block struct {
	Hash    []byte `gorm:"primaryKey;size:32"`
	Height  int64  `gorm:"uniqueIndex;not null;check:height >= 0"`
	Version int32  `gorm:"not null"`
	Bits    uint32 `gorm:"not null"`
	Nonce   uint32 `gorm:"not null"`
	// Time is in unix seconds, the precision of a block header.
	Time       int64  `gorm:"not null"`
	MerkleRoot []byte `gorm:"size:32;not null"`
}

func (Block) TableName() string {
	return "blocks"
}

type Transaction struct {
	Hash     []byte `gorm:"primaryKey;size:32"`
	Version  int32  `gorm:"not null"`
	LockTime uint32 `gorm:"not null"`
}

func (Transaction) TableName() string {
	return "transactions"
}

type BlockTransaction struct {
	BlockHash       []byte `gorm:"primaryKey;size:32"`
	TransactionHash []byte `gorm:"primaryKey;size:32;index"`
	Index           int64  `gorm:"not null"`

	Block       *Block       `gorm:"foreignKey:BlockHash;references:Hash"`
	Transaction *Transaction `gorm:"foreignKey:TransactionHash;references:Hash"`
}

func (BlockTransaction) TableName() string {
	return "block_transactions"
}

type Output struct {
	TransactionHash []byte `gorm:"primaryKey;size:32"`
	Index           int64  `gorm:"primaryKey;autoIncrement:false"`
	Value           int64  `gorm:"not null"`
	Script          []byte `gorm:"not null"`

	Transaction *Transaction `gorm:"foreignKey:TransactionHash;references:Hash"`
}

func (Output) TableName() string {
	return "outputs"
}

type Input struct {
	TransactionHash []byte `gorm:"primaryKey;size:32"`
	Index           int64  `gorm:"primaryKey;autoIncrement:false"`
	OutputHash      []byte `gorm:"size:32;not null;index:ix_inputs_output_hash_output_index,priority:1"`
	OutputIndex     uint32 `gorm:"not null;index:ix_inputs_output_hash_output_index,priority:2"`
	Script          []byte `gorm:"not null"`
	Sequence        uint32 `gorm:"not null"`

	Transaction *Transaction `gorm:"foreignKey:TransactionHash;references:Hash"`
}

func (Input) TableName() string {
	return "inputs"
}

func toHash(b []byte) (chainhash.Hash, error) {
	h, err := chainhash.NewHash(b)
	if err != nil {
		return chainhash.Hash{}, errors.Join(store.ErrFailedToGetRows, err)
	}

	return *h, nil
}

func nonNil(b []byte) []byte {
	if b == nil {
		return []byte{}
	}

	return b
}

func blockToModel(b *store.Block) *Block {
	return &Block{
		Hash:       b.Hash.CloneBytes(),
		Height:     b.Height,
		Version:    b.Version,
		Bits:       b.Bits,
		Nonce:      b.Nonce,
		Time:       b.Time.Unix(),
		MerkleRoot: b.MerkleRoot.CloneBytes(),
	}
}

func blockFromModel(m Block) (*store.Block, error) {
	hash, err := toHash(m.Hash)
	if err != nil {
		return nil, err
	}

	merkleRoot, err := toHash(m.MerkleRoot)
	if err != nil {
		return nil, err
	}

	return &store.Block{
		Hash:       hash,
		Height:     m.Height,
		Version:    m.Version,
		Bits:       m.Bits,
		Nonce:      m.Nonce,
		Time:       time.Unix(m.Time, 0).UTC(),
		MerkleRoot: merkleRoot,
	}, nil
}

// transactionsToModels flattens transactions into the rows of the three tables they are stored in.
func transactionsToModels(txs []*store.Transaction) ([]Transaction, []Output, []Input) {
	var (
		txModels []Transaction
		outputs  []Output
		inputs   []Input
	)

	for _, tx := range txs {
		txModels = append(txModels, Transaction{
			Hash:     tx.Hash.CloneBytes(),
			Version:  tx.Version,
			LockTime: tx.LockTime,
		})

		for _, o := range tx.Outputs {
			outputs = append(outputs, Output{
				TransactionHash: o.TransactionHash.CloneBytes(),
				Index:           o.Index,
				Value:           o.Value,
				Script:          nonNil(o.Script),
			})
		}

		for _, in := range tx.Inputs {
			inputs = append(inputs, Input{
				TransactionHash: in.TransactionHash.CloneBytes(),
				Index:           in.Index,
				OutputHash:      in.OutputHash.CloneBytes(),
				OutputIndex:     in.OutputIndex,
				Script:          nonNil(in.Script),
				Sequence:        in.Sequence,
			})
		}
	}

	return txModels, outputs, inputs
}

func linksToModels(links []store.BlockTransaction) []BlockTransaction {
	models := make([]BlockTransaction, len(links))
	for i, l := range links {
		models[i] = BlockTransaction{
			BlockHash:       l.BlockHash.CloneBytes(),
			TransactionHash: l.TransactionHash.CloneBytes(),
			Index:           l.Index,
		}
	}

	return models
}
