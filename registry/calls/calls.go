// Package calls implements the wire codec shared with external validator
// contracts.
//
// Two encodings live here. Outbound, the registry ledger sends the
// validator a validate request: a 4-byte method selector (first four bytes
// of the keccak-256 of the method signature) followed by the canonically
// encoded request fields. Inbound, validator contracts encode runtime calls
// as a (module index, call index) tag pair followed by the call's fields;
// the tags are a compatibility contract with deployed contracts and must
// not change.
//
// All integers are big-endian and fixed-width; variable-length fields carry
// a u32 length or count prefix. Field order is part of the contract.
package calls

import (
	"encoding/binary"
	"errors"
	"fmt"

	gethcrypto "github.com/ethereum/go-ethereum/crypto"

	"github.com/anchorage/registry-go/model/registry"
)

// Stable codec indices of the runtime modules and their calls, as deployed
// validator contracts encode them.
const (
	ModuleIndexNFT byte = 0x02

	CallIndexFinishMint byte = 0x02
)

// ValidateSignature is the canonical signature of the validator's entry
// point; its keccak-256 prefix selects the method.
const ValidateSignature = "validate(uint64,bytes32,address,bytes,bytes32[])"

// MethodIDLen is the length of a method selector.
const MethodIDLen = 4

// MethodID selects a method on a validator contract.
type MethodID [MethodIDLen]byte

// ValidateMethodID is the selector for ValidateSignature.
var ValidateMethodID = methodID(ValidateSignature)

func methodID(signature string) MethodID {
	var id MethodID
	copy(id[:], gethcrypto.Keccak256([]byte(signature))[:MethodIDLen])
	return id
}

var (
	// ErrUnknownCall is returned when the module or call index of an
	// inbound payload matches no known call.
	ErrUnknownCall = errors.New("unknown call")

	// ErrTruncatedPayload is returned when a payload ends before all
	// declared fields could be read.
	ErrTruncatedPayload = errors.New("truncated payload")

	// ErrTrailingBytes is returned when a payload carries data past the
	// last field.
	ErrTrailingBytes = errors.New("trailing bytes after payload")
)

// ValidateCall is the request sent to a validator: the mint parameters the
// validator approves or ignores.
type ValidateCall struct {
	UID      registry.RegistryID
	TokenID  registry.Hash
	Owner    registry.AccountID
	Metadata []byte
	Leaves   []registry.Hash
}

// Encode renders the call as selector || uid || tokenID || owner ‖
// len(metadata) || metadata || len(leaves) || leaves.
func (c ValidateCall) Encode() []byte {
	size := MethodIDLen + 8 + registry.HashLen + registry.AccountIDLen +
		4 + len(c.Metadata) + 4 + len(c.Leaves)*registry.HashLen

	buf := make([]byte, 0, size)
	buf = append(buf, ValidateMethodID[:]...)
	buf = binary.BigEndian.AppendUint64(buf, uint64(c.UID))
	buf = append(buf, c.TokenID[:]...)
	buf = append(buf, c.Owner[:]...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(c.Metadata)))
	buf = append(buf, c.Metadata...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(c.Leaves)))
	for _, leaf := range c.Leaves {
		buf = append(buf, leaf[:]...)
	}
	return buf
}

// DecodeValidate parses a validate request. It rejects payloads whose
// selector does not match ValidateMethodID.
func DecodeValidate(payload []byte) (ValidateCall, error) {
	var call ValidateCall

	r := reader{buf: payload}
	var selector MethodID
	err := r.read(selector[:])
	if err != nil {
		return call, err
	}
	if selector != ValidateMethodID {
		return call, fmt.Errorf("selector %x: %w", selector, ErrUnknownCall)
	}

	err = call.decodeFields(&r)
	if err != nil {
		return call, err
	}
	if r.remaining() != 0 {
		return call, fmt.Errorf("%d bytes: %w", r.remaining(), ErrTrailingBytes)
	}
	return call, nil
}

func (c *ValidateCall) decodeFields(r *reader) error {
	uid, err := r.readUint64()
	if err != nil {
		return fmt.Errorf("could not read uid: %w", err)
	}
	c.UID = registry.RegistryID(uid)

	err = r.read(c.TokenID[:])
	if err != nil {
		return fmt.Errorf("could not read token id: %w", err)
	}
	err = r.read(c.Owner[:])
	if err != nil {
		return fmt.Errorf("could not read owner: %w", err)
	}

	c.Metadata, err = r.readBytes()
	if err != nil {
		return fmt.Errorf("could not read metadata: %w", err)
	}

	count, err := r.readUint32()
	if err != nil {
		return fmt.Errorf("could not read leaf count: %w", err)
	}
	// The declared count bounds the allocation, so it must itself be
	// bounded by the bytes actually present.
	if uint64(count)*registry.HashLen > uint64(r.remaining()) {
		return fmt.Errorf("leaf count %d exceeds payload: %w", count, ErrTruncatedPayload)
	}
	c.Leaves = make([]registry.Hash, 0, count)
	for i := uint32(0); i < count; i++ {
		var leaf registry.Hash
		err = r.read(leaf[:])
		if err != nil {
			return fmt.Errorf("could not read leaf %d: %w", i, err)
		}
		c.Leaves = append(c.Leaves, leaf)
	}
	return nil
}

// FinishMintCall is the callback a validator dispatches into the runtime to
// finalize an approved mint.
type FinishMintCall struct {
	UID      registry.RegistryID
	TokenID  registry.Hash
	Owner    registry.AccountID
	Metadata []byte
}

// Encode renders the call with its (module, call) tag pair.
func (c FinishMintCall) Encode() []byte {
	size := 2 + 8 + registry.HashLen + registry.AccountIDLen + 4 + len(c.Metadata)

	buf := make([]byte, 0, size)
	buf = append(buf, ModuleIndexNFT, CallIndexFinishMint)
	buf = binary.BigEndian.AppendUint64(buf, uint64(c.UID))
	buf = append(buf, c.TokenID[:]...)
	buf = append(buf, c.Owner[:]...)
	buf = binary.BigEndian.AppendUint32(buf, uint32(len(c.Metadata)))
	buf = append(buf, c.Metadata...)
	return buf
}

// Call is a decoded inbound runtime call.
type Call interface {
	// isCall marks the closed set of decodable calls.
	isCall()
}

func (FinishMintCall) isCall() {}

// DecodeCall parses an inbound payload by its (module, call) tag pair.
// Unknown tags yield ErrUnknownCall.
func DecodeCall(payload []byte) (Call, error) {
	r := reader{buf: payload}
	tags := make([]byte, 2)
	err := r.read(tags)
	if err != nil {
		return nil, err
	}

	switch tags[0] {
	case ModuleIndexNFT:
		switch tags[1] {
		case CallIndexFinishMint:
			var call FinishMintCall
			err = call.decodeFields(&r)
			if err != nil {
				return nil, err
			}
			if r.remaining() != 0 {
				return nil, fmt.Errorf("%d bytes: %w", r.remaining(), ErrTrailingBytes)
			}
			return call, nil
		default:
			return nil, fmt.Errorf("call index %#x in module %#x: %w", tags[1], tags[0], ErrUnknownCall)
		}
	default:
		return nil, fmt.Errorf("module index %#x: %w", tags[0], ErrUnknownCall)
	}
}

func (c *FinishMintCall) decodeFields(r *reader) error {
	uid, err := r.readUint64()
	if err != nil {
		return fmt.Errorf("could not read uid: %w", err)
	}
	c.UID = registry.RegistryID(uid)

	err = r.read(c.TokenID[:])
	if err != nil {
		return fmt.Errorf("could not read token id: %w", err)
	}
	err = r.read(c.Owner[:])
	if err != nil {
		return fmt.Errorf("could not read owner: %w", err)
	}
	c.Metadata, err = r.readBytes()
	if err != nil {
		return fmt.Errorf("could not read metadata: %w", err)
	}
	return nil
}

// reader consumes fixed-width fields from a payload.
type reader struct {
	buf []byte
	off int
}

func (r *reader) remaining() int {
	return len(r.buf) - r.off
}

func (r *reader) read(dst []byte) error {
	if r.remaining() < len(dst) {
		return ErrTruncatedPayload
	}
	copy(dst, r.buf[r.off:])
	r.off += len(dst)
	return nil
}

func (r *reader) readUint64() (uint64, error) {
	b := make([]byte, 8)
	err := r.read(b)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(b), nil
}

func (r *reader) readUint32() (uint32, error) {
	b := make([]byte, 4)
	err := r.read(b)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(b), nil
}

func (r *reader) readBytes() ([]byte, error) {
	length, err := r.readUint32()
	if err != nil {
		return nil, err
	}
	if uint32(r.remaining()) < length {
		return nil, ErrTruncatedPayload
	}
	b := make([]byte, length)
	err = r.read(b)
	if err != nil {
		return nil, err
	}
	return b, nil
}
