//go:build !linux

package session

import "net"

func canPassFDs(net.Conn) bool { return false }

func rightsFor([]int) []byte { return nil }

func writeWithRights(net.Conn, []byte, []byte) (int, error) {
	return 0, ErrFDPassingUnsupported
}

func readWithRights(net.Conn, []byte) ([]int, error) {
	return nil, ErrFDPassingUnsupported
}

func closeFDs([]int) {}

func peerCredentials(net.Conn) (PeerCredentials, error) {
	return PeerCredentials{}, ErrFDPassingUnsupported
}
