package telemetry

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"

	"github.com/hyped-pod/podctl/internal/podlog"
	"github.com/hyped-pod/podctl/internal/store"
)

// lengthHeaderBytes is the width of the ASCII decimal length header
// prefixing every inbound message, framing raw net.Conn reads into
// discrete command tokens.
const lengthHeaderBytes = 8

// RunReceiver reads length-prefixed command tokens from conn and applies
// them to the telemetry-command record until ctx is cancelled, the
// connection is lost, or an unrecognised token is received. Grounded on
// recvloop.cpp's token-to-command-field dispatch; an unrecognised token or
// a lost connection both set telemetry's module status to CriticalFailure
// and return, exactly as spec.md §4.4 describes.
func RunReceiver(ctx context.Context, conn net.Conn, st *store.Store, log podlog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		token, err := readToken(conn)
		if err != nil {
			if err == io.EOF {
				log.Info("telemetry receiver: connection closed by ground station")
			} else {
				log.Error("telemetry receiver: read failed", "error", err)
			}
			markCriticalFailure(st)
			return fmt.Errorf("telemetry: receive: %w", err)
		}

		cmd := st.GetTelemetryCommand()
		if !applyToken(&cmd, token) {
			log.Error("telemetry receiver: unrecognised token", "token", token)
			cmd.ModuleStatus = store.CriticalFailure
			st.SetTelemetryCommand(cmd)
			return fmt.Errorf("telemetry: unrecognised token %q", token)
		}
		st.SetTelemetryCommand(cmd)
	}
}

// readToken reads one length-prefixed token: an 8-byte ASCII decimal length
// header, followed by that many bytes of the token itself.
func readToken(conn net.Conn) (string, error) {
	header := make([]byte, lengthHeaderBytes)
	if _, err := io.ReadFull(conn, header); err != nil {
		return "", err
	}
	n, err := strconv.Atoi(strings.TrimSpace(string(header)))
	if err != nil {
		return "", fmt.Errorf("telemetry: malformed length header %q: %w", header, err)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(conn, body); err != nil {
		return "", err
	}
	return strings.TrimSpace(string(body)), nil
}
