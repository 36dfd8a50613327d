package service

import (
	"encoding/binary"

	"github.com/pkg/errors"

	boomerang "github.com/MixinNetwork/boomerang-go"
)

// sealEnvelope prefixes body with the session id and its 2-byte big-endian
// length.
func sealEnvelope(id, body []byte) []byte {
	buf := make([]byte, 2, 2+len(id)+len(body))
	binary.BigEndian.PutUint16(buf, uint16(len(id)))
	buf = append(buf, id...)
	return append(buf, body...)
}

func openEnvelope(buf []byte) ([]byte, []byte, error) {
	if len(buf) < 2 {
		return nil, nil, errors.Wrap(boomerang.ErrMalformedInput, "envelope too short")
	}
	n := int(binary.BigEndian.Uint16(buf))
	if n != SessionIDSize || len(buf) < 2+n {
		return nil, nil, errors.Wrapf(boomerang.ErrMalformedInput, "session id of %d bytes", n)
	}
	return buf[2 : 2+n], buf[2+n:], nil
}
