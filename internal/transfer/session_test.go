package transfer_test

import (
	"context"
	"net"
	"net/textproto"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/ftpdeploy/internal/config"
	ferrors "git.home.luguber.info/inful/ftpdeploy/internal/foundation/errors"
	"git.home.luguber.info/inful/ftpdeploy/internal/transfer"
	"git.home.luguber.info/inful/ftpdeploy/internal/transfer/transfertest"
)

func TestIsPermanent(t *testing.T) {
	require.True(t, transfer.IsPermanent(&textproto.Error{Code: 550}))
	require.True(t, transfer.IsPermanent(ferrors.WrapError(&textproto.Error{Code: 553}, ferrors.CategoryTransfer, "x").Build()))
	require.False(t, transfer.IsPermanent(&textproto.Error{Code: 421}))
	require.False(t, transfer.IsPermanent(transfertest.ErrBoom))
	require.Equal(t, 0, transfer.ReplyCode(transfertest.ErrBoom))
	require.Equal(t, 550, transfer.ReplyCode(&textproto.Error{Code: 550}))
}

func TestRelease_QuitsGracefully(t *testing.T) {
	server := transfertest.NewServer()
	require.NoError(t, transfer.Release(server.NewSession()))
	require.Equal(t, 1, server.Quits)
	require.Equal(t, 0, server.Closes)
}

func TestRelease_ForcesCloseWhenQuitFails(t *testing.T) {
	server := transfertest.NewServer()
	server.QuitErr = transfertest.ErrBoom
	err := transfer.Release(server.NewSession())
	require.ErrorIs(t, err, transfertest.ErrBoom)
	require.Equal(t, 1, server.Quits)
	require.Equal(t, 1, server.Closes)
}

func TestRelease_Nil(t *testing.T) {
	require.NoError(t, transfer.Release(nil))
}

func TestConnect_UnreachableIsNetworkError(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().(*net.TCPAddr)
	require.NoError(t, ln.Close())

	target := config.Target{Host: "127.0.0.1", Port: addr.Port, User: "u", Password: "p", Timeout: 2 * time.Second}
	_, err = transfer.Connect(context.Background(), target, nil)
	require.Error(t, err)
	require.True(t, ferrors.HasCategory(err, ferrors.CategoryNetwork))
}
