package gateway

import (
	"errors"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
)

func TestError_As(t *testing.T) {
	inner := errors.New("dial tcp: connection refused")
	var err error = &Error{Kind: KindNetwork, Model: "small", Err: inner}
	err = eris.Wrap(err, "hybrid extract")

	var ge *Error
	assert.True(t, errors.As(err, &ge))
	assert.Equal(t, KindNetwork, ge.Kind)
	assert.True(t, errors.Is(err, inner))
	assert.Equal(t, KindNetwork, KindOf(err))
	assert.Equal(t, Kind(""), KindOf(inner))
}

func TestError_Message(t *testing.T) {
	e := &Error{Kind: KindParse, Model: "small", Err: errors.New("unexpected end of JSON input")}
	assert.Equal(t, "gateway: parse from model small: unexpected end of JSON input", e.Error())

	tr := &Error{Kind: KindTruncated, Model: "small", Err: errors.New("finish_reason \"length\"")}
	assert.Contains(t, tr.Error(), "truncated")
}
