// Package encoding serialises proof objects as canonical CBOR.
package encoding

import (
	"bytes"

	cbor "github.com/fxamacker/cbor/v2"
	"github.com/pkg/errors"
)

var encMode cbor.EncMode

func init() {
	em, err := cbor.CanonicalEncOptions().EncMode()
	if err != nil {
		// options are static, a failure is a developer error.
		panic(err)
	}
	encMode = em
}

// Encode encodes obj.
func Encode(obj interface{}) ([]byte, error) {
	enc := NewFxamackerCborEncoder()
	if err := enc.EncodeStruct(obj); err != nil {
		return nil, err
	}
	return enc.Bytes(), nil
}

// Decode decodes raw into obj, which must be a pointer.
func Decode(raw []byte, obj interface{}) error {
	dec := NewFxamackerCborDecoder(raw)
	return dec.DecodeStruct(obj)
}

// FxamackerCborEncoder is an object encoder that encodes objects based on the CBOR standard.
type FxamackerCborEncoder struct {
	b bytes.Buffer
}

// FxamackerCborDecoder is an object decoder that decodes objects based on the CBOR standard.
type FxamackerCborDecoder struct {
	raw []byte
}

// NewFxamackerCborEncoder creates a new `FxamackerCborEncoder`.
func NewFxamackerCborEncoder() *FxamackerCborEncoder {
	return &FxamackerCborEncoder{}
}

// NewFxamackerCborDecoder creates a new `FxamackerCborDecoder`.
func NewFxamackerCborDecoder(b []byte) *FxamackerCborDecoder {
	return &FxamackerCborDecoder{
		raw: b,
	}
}

// EncodeStruct encodes a struct.
func (encoder *FxamackerCborEncoder) EncodeStruct(obj interface{}) error {
	raw, err := encMode.Marshal(obj)
	if err != nil {
		return errors.Wrapf(err, "failed to encode %T", obj)
	}
	encoder.b.Write(raw)
	return nil
}

// Bytes returns the encoded bytes.
func (encoder *FxamackerCborEncoder) Bytes() []byte {
	return encoder.b.Bytes()
}

// DecodeStruct decodes a struct.
func (decoder *FxamackerCborDecoder) DecodeStruct(obj interface{}) error {
	if decoder.raw == nil {
		return errors.New("nothing left to decode")
	}
	if err := cbor.Unmarshal(decoder.raw, obj); err != nil {
		return errors.Wrapf(err, "failed to decode %T", obj)
	}
	// reset the bytes, nothing left with CBOR
	decoder.raw = nil
	return nil
}
