package util

import (
	"errors"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNet(t *testing.T) {
	lsnr, lerr := net.Listen("tcp", "localhost:0")
	assert.NoError(t, lerr)
	defer lsnr.Close()

	t.Log("listening " + lsnr.Addr().String())

	go func() {
		cconn, cerr := net.Dial("tcp", lsnr.Addr().String())
		assert.NoError(t, cerr)

		cconn.Close()
	}()

	sconn, serr := lsnr.Accept()
	assert.NoError(t, serr)

	t.Run("check error", func(tt *testing.T) {
		sconn.Close()
		_, err := sconn.Write([]byte("Hi"))
		if assert.Error(tt, err) {
			assert.True(tt, IsNetworkError(err))
			assert.True(tt, IsNetworkClosed(err))
			assert.False(tt, IsNetworkTimeout(err))
		}
	})

	t.Run("refused", func(tt *testing.T) {
		addr := lsnr.Addr().String()
		lsnr.Close()
		_, err := net.Dial("tcp", addr)
		if assert.Error(tt, err) {
			assert.True(tt, IsNetworkError(err))
		}
	})

	t.Run("non-network error", func(tt *testing.T) {
		assert.False(tt, IsNetworkError(errors.New("payload too large")))
		assert.False(tt, IsNetworkClosed(errors.New("payload too large")))
	})
}

func TestGetFullyQualifiedDomainName(t *testing.T) {
	assert.NotEmpty(t, GetFullyQualifiedDomainName())
}
