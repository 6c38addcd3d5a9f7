package ledger

import (
	"bytes"
	"encoding/binary"

	"github.com/iov-one/timevault"
	"github.com/iov-one/timevault/crypto"
	"github.com/iov-one/timevault/errors"
)

// Signature is an ed25519 signature of the transaction sign bytes.
type Signature struct {
	PubKey crypto.PublicKey
	Sig    []byte
}

// Transaction groups instructions that are executed atomically.
type Transaction struct {
	Instructions []Instruction
	Signatures   []Signature
}

// NewTransaction returns an unsigned transaction.
func NewTransaction(ixs ...Instruction) *Transaction {
	return &Transaction{Instructions: ixs}
}

// SignBytes returns the serialized instructions that each signer signs.
func (tx *Transaction) SignBytes() []byte {
	var buf bytes.Buffer
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], uint32(len(tx.Instructions)))
	buf.Write(scratch[:])
	for _, ix := range tx.Instructions {
		buf.Write(ix.ProgramID[:])
		binary.LittleEndian.PutUint32(scratch[:], uint32(len(ix.Accounts)))
		buf.Write(scratch[:])
		for _, m := range ix.Accounts {
			buf.Write(m.Address[:])
			var flags byte
			if m.IsSigner {
				flags |= 1
			}
			if m.IsWritable {
				flags |= 2
			}
			buf.WriteByte(flags)
		}
		binary.LittleEndian.PutUint32(scratch[:], uint32(len(ix.Data)))
		buf.Write(scratch[:])
		buf.Write(ix.Data)
	}
	return buf.Bytes()
}

// Sign adds a signature of every given key.
func (tx *Transaction) Sign(keys ...*crypto.PrivateKey) {
	msg := tx.SignBytes()
	for _, k := range keys {
		tx.Signatures = append(tx.Signatures, Signature{
			PubKey: k.PublicKey(),
			Sig:    k.Sign(msg),
		})
	}
}

// verify checks all signatures and that every account declared as a
// signer did sign.
func (tx *Transaction) verify() error {
	if len(tx.Instructions) == 0 {
		return errors.Wrap(errors.ErrInput, "no instructions")
	}
	msg := tx.SignBytes()
	signed := make(map[timevault.Address]bool, len(tx.Signatures))
	for i, s := range tx.Signatures {
		if !s.PubKey.Verify(msg, s.Sig) {
			return errors.Wrapf(errors.ErrUnauthorized, "signature %d of %s is invalid", i, s.PubKey.Address())
		}
		signed[s.PubKey.Address()] = true
	}
	for _, ix := range tx.Instructions {
		for _, m := range ix.Accounts {
			if m.IsSigner && !signed[m.Address] {
				return errors.Wrapf(errors.ErrMissingRequiredSignature, "account %s", m.Address)
			}
		}
	}
	return nil
}
