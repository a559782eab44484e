// Package client implements a protocol-conformant TCP driver for the
// aggregator's wire protocol: handshake, paced batch sends, a ranking
// request, and a final request.
package client

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/okian/podium/pkg/logger"
)

const (
	batchSize  = 20
	ioDeadline = 5 * time.Second
)

// Pair is one competitor id/score reading loaded from a fixture file.
type Pair struct {
	CompetitorID int
	Score        int
}

// Driver sends one country's competitor data to an aggregator server and
// reads back the ranking and final responses.
type Driver struct {
	conn      net.Conn
	reader    *bufio.Reader
	countryID int
	deltaX    time.Duration
	logger    logger.Logger
}

// Dial connects to addr and returns a Driver bound to countryID.
func Dial(addr string, countryID int, deltaX time.Duration) (*Driver, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial %s: %w", addr, err)
	}
	if tcpConn, ok := conn.(*net.TCPConn); ok {
		_ = tcpConn.SetNoDelay(true)
	}
	return &Driver{
		conn:      conn,
		reader:    bufio.NewReader(conn),
		countryID: countryID,
		deltaX:    deltaX,
		logger:    logger.Get().Named("client"),
	}, nil
}

// Close closes the underlying connection.
func (d *Driver) Close() error {
	return d.conn.Close()
}

// LoadCompetitors parses a whitespace-separated "<id> <score>" pair file.
func LoadCompetitors(path string) ([]Pair, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read competitors file: %w", err)
	}

	fields := strings.Fields(string(data))
	if len(fields)%2 != 0 {
		return nil, fmt.Errorf("competitors file has an odd number of fields")
	}

	pairs := make([]Pair, 0, len(fields)/2)
	for i := 0; i < len(fields); i += 2 {
		id, err := strconv.Atoi(fields[i])
		if err != nil {
			return nil, fmt.Errorf("invalid competitor id %q: %w", fields[i], err)
		}
		score, err := strconv.Atoi(fields[i+1])
		if err != nil {
			return nil, fmt.Errorf("invalid score %q: %w", fields[i+1], err)
		}
		pairs = append(pairs, Pair{CompetitorID: id, Score: score})
	}
	return pairs, nil
}

// SendCompetitorData writes the handshake line, then the competitor
// pairs in batches of 20, sleeping deltaX between batches.
func (d *Driver) SendCompetitorData(pairs []Pair) error {
	if err := d.write(strconv.Itoa(d.countryID) + "\n"); err != nil {
		return fmt.Errorf("send handshake: %w", err)
	}

	for i := 0; i < len(pairs); i += batchSize {
		end := i + batchSize
		if end > len(pairs) {
			end = len(pairs)
		}

		var b bytes.Buffer
		for _, p := range pairs[i:end] {
			fmt.Fprintf(&b, "%d,%d\n", p.CompetitorID, p.Score)
		}
		if err := d.write(b.String()); err != nil {
			return fmt.Errorf("send batch: %w", err)
		}
		d.logger.Debug(context.Background(), "sent competitor batch",
			logger.Int("country_id", d.countryID),
			logger.Int("batch_start", i),
			logger.Int("batch_size", end-i),
		)

		if end < len(pairs) {
			time.Sleep(d.deltaX)
		}
	}
	return nil
}

// RequestRanking sends REQUEST_RANKING and returns the single ranking
// line the server responds with.
func (d *Driver) RequestRanking() (string, error) {
	if err := d.write("REQUEST_RANKING\n"); err != nil {
		return "", fmt.Errorf("send ranking request: %w", err)
	}
	if err := d.conn.SetReadDeadline(time.Now().Add(ioDeadline)); err != nil {
		return "", fmt.Errorf("set read deadline: %w", err)
	}
	line, err := d.reader.ReadString('\n')
	if err != nil {
		return "", fmt.Errorf("read ranking response: %w", err)
	}
	return line, nil
}

// RequestFinalResults sends FINAL_REQUEST and reads the combined
// competitors/countries body. The server closes the connection once the
// final response is fully written, so reading to EOF yields exactly the
// complete frame.
func (d *Driver) RequestFinalResults() (string, error) {
	if err := d.write("FINAL_REQUEST\n"); err != nil {
		return "", fmt.Errorf("send final request: %w", err)
	}
	if err := d.conn.SetReadDeadline(time.Now().Add(ioDeadline)); err != nil {
		return "", fmt.Errorf("set read deadline: %w", err)
	}

	body, err := io.ReadAll(d.reader)
	if err != nil {
		return "", fmt.Errorf("read final response: %w", err)
	}
	return string(body), nil
}

func (d *Driver) write(s string) error {
	if err := d.conn.SetWriteDeadline(time.Now().Add(ioDeadline)); err != nil {
		return fmt.Errorf("set write deadline: %w", err)
	}
	_, err := d.conn.Write([]byte(s))
	return err
}
