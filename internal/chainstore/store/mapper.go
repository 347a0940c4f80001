package store

import (
	"errors"
	"fmt"

	"github.com/libsv/go-p2p/chaincfg/chainhash"
	"github.com/libsv/go-p2p/wire"
)

var ErrDuplicateTransaction = errors.New("transaction appears more than once in block")

// ToRows maps a block at height to its row form. Block and transaction hashes are
// computed from the current content, and every transaction, output and input gets
// its list position as index.
func ToRows(block *wire.MsgBlock, height int64) (*Block, error) {
	if err := ValidateAdd(block, height); err != nil {
		return nil, err
	}

	row := &Block{
		Hash:         block.BlockHash(),
		Height:       height,
		Version:      block.Header.Version,
		Bits:         block.Header.Bits,
		Nonce:        block.Header.Nonce,
		Time:         block.Header.Timestamp.UTC(),
		MerkleRoot:   block.Header.MerkleRoot,
		Transactions: make([]BlockTransaction, 0, len(block.Transactions)),
	}

	seen := make(map[chainhash.Hash]struct{}, len(block.Transactions))

	for i, msgTx := range block.Transactions {
		if msgTx == nil {
			return nil, errors.Join(ErrInvalidArgument, fmt.Errorf("transaction %d is nil", i))
		}

		tx := TransactionToRow(msgTx)

		if _, found := seen[tx.Hash]; found {
			return nil, errors.Join(ErrInvalidArgument, ErrDuplicateTransaction, fmt.Errorf("hash: %s", tx.Hash))
		}
		seen[tx.Hash] = struct{}{}

		row.Transactions = append(row.Transactions, BlockTransaction{
			BlockHash:       row.Hash,
			TransactionHash: tx.Hash,
			Index:           int64(i),
			Transaction:     tx,
		})
	}

	return row, nil
}

func TransactionToRow(msgTx *wire.MsgTx) *Transaction {
	tx := &Transaction{
		Hash:     msgTx.TxHash(),
		Version:  msgTx.Version,
		LockTime: msgTx.LockTime,
		Outputs:  make([]Output, len(msgTx.TxOut)),
		Inputs:   make([]Input, len(msgTx.TxIn)),
	}

	for i, out := range msgTx.TxOut {
		tx.Outputs[i] = Output{
			TransactionHash: tx.Hash,
			Index:           int64(i),
			Value:           out.Value,
			Script:          out.PkScript,
		}
	}

	for i, in := range msgTx.TxIn {
		tx.Inputs[i] = Input{
			TransactionHash: tx.Hash,
			Index:           int64(i),
			OutputHash:      in.PreviousOutPoint.Hash,
			OutputIndex:     in.PreviousOutPoint.Index,
			Script:          in.SignatureScript,
			Sequence:        in.Sequence,
		}
	}

	return tx
}

// FromRows rebuilds a block from its rows. previous is the block one height below,
// nil for genesis, and only provides the previous block hash.
func FromRows(data *Block, previous *Block) (*wire.MsgBlock, error) {
	if data == nil {
		return nil, errors.Join(ErrInvalidArgument, errors.New("block row is nil"))
	}

	if previous == nil && data.Height > 0 {
		return nil, errors.Join(ErrInconsistentChain, fmt.Errorf("no block below height %d", data.Height))
	}

	header := wire.BlockHeader{
		Version:    data.Version,
		MerkleRoot: data.MerkleRoot,
		Timestamp:  data.Time.UTC(),
		Bits:       data.Bits,
		Nonce:      data.Nonce,
	}

	if previous != nil {
		header.PrevBlock = previous.Hash
	}

	links := make([]BlockTransaction, len(data.Transactions))
	copy(links, data.Transactions)
	sortBlockTransactions(links)

	block := &wire.MsgBlock{
		Header:       header,
		Transactions: make([]*wire.MsgTx, 0, len(links)),
	}

	for _, link := range links {
		if link.Transaction == nil {
			return nil, errors.Join(ErrInconsistentChain, fmt.Errorf("transaction %s of block %s not loaded", link.TransactionHash, data.Hash))
		}

		block.Transactions = append(block.Transactions, TransactionFromRow(link.Transaction))
	}

	return block, nil
}

func TransactionFromRow(tx *Transaction) *wire.MsgTx {
	outputs := make([]Output, len(tx.Outputs))
	copy(outputs, tx.Outputs)
	SortOutputs(outputs)

	inputs := make([]Input, len(tx.Inputs))
	copy(inputs, tx.Inputs)
	SortInputs(inputs)

	msgTx := &wire.MsgTx{
		Version:  tx.Version,
		LockTime: tx.LockTime,
		TxOut:    make([]*wire.TxOut, len(outputs)),
		TxIn:     make([]*wire.TxIn, len(inputs)),
	}

	for i, out := range outputs {
		msgTx.TxOut[i] = &wire.TxOut{
			Value:    out.Value,
			PkScript: out.Script,
		}
	}

	for i, in := range inputs {
		msgTx.TxIn[i] = &wire.TxIn{
			PreviousOutPoint: wire.OutPoint{
				Hash:  in.OutputHash,
				Index: in.OutputIndex,
			},
			SignatureScript: in.Script,
			Sequence:        in.Sequence,
		}
	}

	return msgTx
}
